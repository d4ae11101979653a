package document

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects which composition and pagination rules apply to a document.
type Kind string

const (
	// KindFlatInvoice is a single table of line items with totals
	KindFlatInvoice Kind = "flat-invoice"
	// KindSectionedInvoice groups line items into titled sections
	KindSectionedInvoice Kind = "sectioned-invoice"
	// KindQuotation is a sectioned quotation with a trailing signature block
	KindQuotation Kind = "quotation"
	// KindBillOfQuantities follows the fixed BOQ print convention (one section per page)
	KindBillOfQuantities Kind = "bill-of-quantities"
	// KindDeliveryNote lists delivered items without monetary totals emphasis
	KindDeliveryNote Kind = "delivery-note"
	// KindStatement is a date-ordered debit/credit ledger with running balance
	KindStatement Kind = "statement"
)

// Title returns the display heading used in the page chrome.
func (k Kind) Title() string {
	switch k {
	case KindFlatInvoice, KindSectionedInvoice:
		return "Invoice"
	case KindQuotation:
		return "Quotation"
	case KindBillOfQuantities:
		return "Bill of Quantities"
	case KindDeliveryNote:
		return "Delivery Note"
	case KindStatement:
		return "Statement of Account"
	}
	return "Document"
}

// Party identifies one side of a business document.
type Party struct {
	Name    string
	Address string
	TaxID   string
}

// Metadata carries the document identity rendered in the page chrome.
type Metadata struct {
	Number       string
	IssueDate    time.Time
	DueDate      time.Time
	Currency     string // ISO 4217 code, e.g. "EUR"
	Issuer       Party
	Counterparty Party
	// LogoURL locates the issuer logo (file path, http(s) URL or data URL).
	// Empty means no logo in the chrome.
	LogoURL string
	// Notes is trailing free text; upstream editors may hand it over as an
	// HTML fragment, which the decomposer flattens to plain paragraphs.
	Notes string
}

// LineItem is one priced row of a section.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // percent
	TaxAmount   decimal.Decimal
	Discount    decimal.Decimal
	// LineTotal = quantity*unitPrice - discount + tax, rounded to 2 decimals
	LineTotal decimal.Decimal
}

// Subsection is an optional second grouping level inside a section.
type Subsection struct {
	Title    string
	Items    []LineItem
	Subtotal decimal.Decimal
}

// Section is an ordered group of line items. Order is significant and
// preserved all the way to the rendered output.
type Section struct {
	Title       string
	Subsections []Subsection
	Items       []LineItem
	LaborCost   decimal.Decimal
	// Total = sum(item.LineTotal) + LaborCost
	Total decimal.Decimal
}

// Totals carries the document-level sums.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Grand    decimal.Decimal
	// Paid/BalanceDue apply to invoice kinds only
	Paid       decimal.Decimal
	BalanceDue decimal.Decimal
	HasBalance bool
}

// Transaction is one row of a statement: either a debit (outstanding
// invoice) or a credit (recorded payment), with the running balance after it.
type Transaction struct {
	Date      time.Time
	Reference string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
}

// Model is the canonical structured representation of a priced document.
// It is immutable once built; the render pipeline never mutates it, so the
// same Model may feed any number of renders.
type Model struct {
	Kind     Kind
	Meta     Metadata
	Sections []Section
	// Transactions is populated for KindStatement only
	Transactions []Transaction
	Totals       Totals
	// TotalsMismatch is set when an upstream-declared grand total disagrees
	// with the sum of section totals. The engine renders the declared value
	// and logs the discrepancy; it never reconciles silently.
	TotalsMismatch bool
}
