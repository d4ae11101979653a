package document

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts and dates into the pre-formatted cell strings
// blocks carry. Formatting happens exactly once, here, so the renderer never
// reformats numbers and re-renders stay locale-stable.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a formatter for an ISO 4217 currency code and a BCP 47
// locale tag. Unknown codes fall back to USD, unknown tags to English; a
// render should not fail over display preferences.
func NewFormatter(currencyCode, locale string) *Formatter {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
	}
}

// Money formats a fixed-point amount with the document currency symbol.
func (f *Formatter) Money(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}

// Number formats a quantity without a currency symbol.
func (f *Formatter) Number(d decimal.Decimal) string {
	return d.String()
}

// Percent formats a tax/discount rate.
func (f *Formatter) Percent(d decimal.Decimal) string {
	return d.String() + "%"
}

// Date formats a date in ISO form; zero dates render empty.
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
