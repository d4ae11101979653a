package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/document"
	"github.com/docpress/docpress/internal/res"
)

func testMeta() document.Metadata {
	return document.Metadata{
		Number:    "INV-7",
		IssueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:  "USD",
		Issuer:    document.Party{Name: "Acme", Address: "1 Road\nTown"},
		Counterparty: document.Party{
			Name: "Globex",
		},
	}
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNewChromeHeights(t *testing.T) {
	loader := res.NewLoader("")
	columns := []string{"Description", "Qty", "Unit", "Unit Price", "Tax", "Total"}

	t.Run("with column titles", func(t *testing.T) {
		c, err := NewChrome(context.Background(), testMeta(), document.KindFlatInvoice,
			columns, true, loader, "r1", nil)
		require.NoError(t, err)
		assert.InDelta(t, identityBandHeight+partiesBandHeight+chromeGap+titleBandHeight,
			c.HeaderHeight(), 0.001)
		assert.InDelta(t, titleBandHeight, c.TitleBandHeight(), 0.001)
		assert.InDelta(t, footerBandHeight, c.FooterHeight(), 0.001)
	})

	t.Run("without column titles", func(t *testing.T) {
		c, err := NewChrome(context.Background(), testMeta(), document.KindFlatInvoice,
			nil, false, loader, "r2", nil)
		require.NoError(t, err)
		assert.InDelta(t, identityBandHeight+partiesBandHeight+chromeGap, c.HeaderHeight(), 0.001)
		assert.Zero(t, c.TitleBandHeight())
	})
}

func TestNewChromeLogo(t *testing.T) {
	loader := res.NewLoader("")

	t.Run("data url logo is embedded", func(t *testing.T) {
		meta := testMeta()
		meta.LogoURL = pngDataURL(t)
		c, err := NewChrome(context.Background(), meta, document.KindFlatInvoice,
			nil, false, loader, "r3", nil)
		require.NoError(t, err)
		require.NotNil(t, c.logo)
		assert.NotEmpty(t, c.logo.data)
		// 40x20 source scales to the logo box preserving a 2:1 aspect.
		assert.InDelta(t, 2.0, c.logo.widthP/c.logo.height, 0.01)
	})

	t.Run("missing logo is skipped, not fatal", func(t *testing.T) {
		meta := testMeta()
		meta.LogoURL = "no-such-logo.png"
		c, err := NewChrome(context.Background(), meta, document.KindFlatInvoice,
			nil, false, loader, "r4", nil)
		require.NoError(t, err)
		assert.Nil(t, c.logo)
	})

	t.Run("canceled fetch fails the render", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		meta := testMeta()
		meta.LogoURL = "http://127.0.0.1:1/logo.png"
		_, err := NewChrome(ctx, meta, document.KindFlatInvoice,
			nil, false, loader, "r5", nil)
		require.Error(t, err)
		var terr *TimeoutError
		assert.ErrorAs(t, err, &terr)
		assert.Equal(t, "logo fetch", terr.Stage)
	})
}

func TestFitLogo(t *testing.T) {
	t.Run("tall logo capped by height", func(t *testing.T) {
		w, h := fitLogo(image.Rect(0, 0, 100, 400))
		assert.InDelta(t, logoMaxHeight, h, 0.001)
		assert.InDelta(t, 10, w, 0.001)
	})
	t.Run("wide logo capped by width", func(t *testing.T) {
		w, h := fitLogo(image.Rect(0, 0, 1000, 100))
		assert.InDelta(t, logoMaxWidth, w, 0.001)
		assert.InDelta(t, 14, h, 0.001)
	})
}

func TestSplitAddress(t *testing.T) {
	assert.Equal(t, []string{"1 Road", "Town"}, splitAddress("1 Road\n Town \n"))
	assert.Nil(t, splitAddress(""))
}
