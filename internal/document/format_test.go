package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatterMoney(t *testing.T) {
	f := NewFormatter("USD", "en")
	got := f.Money(d("1234.50"))
	assert.Contains(t, got, "$")
	assert.Contains(t, got, "1,234.50")
}

func TestFormatterFallbacks(t *testing.T) {
	// Unknown currency and locale must not fail the render.
	f := NewFormatter("???", "not-a-tag")
	got := f.Money(d("10"))
	assert.NotEmpty(t, got)
}

func TestFormatterNumberAndPercent(t *testing.T) {
	f := NewFormatter("EUR", "en")
	assert.Equal(t, "2.5", f.Number(d("2.5")))
	assert.Equal(t, "7.5%", f.Percent(d("7.5")))
}

func TestFormatterDate(t *testing.T) {
	f := NewFormatter("EUR", "en")
	assert.Equal(t, "2024-06-03", f.Date(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", f.Date(time.Time{}))
}

func TestFormatterStable(t *testing.T) {
	f := NewFormatter("GBP", "en")
	v := d("99.99")
	assert.Equal(t, f.Money(v), f.Money(v))
}
