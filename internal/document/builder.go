package document

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the loose upstream shape business-record mappers hand over.
// Numeric fields arrive as strings because upstream form layers do not
// guarantee typed numbers; Build is where they become decimals or fail.
type Record struct {
	Number       string
	IssueDate    time.Time
	DueDate      time.Time
	Currency     string
	Issuer       Party
	Counterparty Party
	LogoURL      string
	Notes        string

	Sections []RawSection

	// Declared totals from the upstream record; empty means "not declared".
	// A declared grand total that disagrees with the computed one is kept
	// and flagged, never overwritten.
	GrandTotal string
	Paid       string

	// Statement inputs: outstanding invoices (debits) and recorded
	// payments (credits). Merged and ordered by Build.
	Debits  []RawEntry
	Credits []RawEntry
}

// RawSection mirrors Section with unparsed amounts.
type RawSection struct {
	Title       string
	LaborCost   string
	Items       []RawItem
	Subsections []RawSubsection
}

// RawSubsection mirrors Subsection with unparsed amounts.
type RawSubsection struct {
	Title string
	Items []RawItem
}

// RawItem mirrors LineItem with unparsed amounts.
type RawItem struct {
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	TaxRate     string
	Discount    string
}

// RawEntry is one statement transaction before merging.
type RawEntry struct {
	Date      time.Time
	Reference string
	Amount    string
}

// ValidationError reports a malformed Record. It is fatal and raised before
// any layout work starts.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid document: " + e.Msg
	}
	return fmt.Sprintf("invalid document: %s: %s", e.Field, e.Msg)
}

// Build normalizes a Record into the canonical Model for the given kind.
//
// For statement kinds the debit and credit streams are merged, sorted by
// transaction date ascending with a stable tie-break on insertion order, and
// the running balance is computed as a prefix sum over debits-credits. All
// arithmetic is fixed-point decimal; no float accumulation.
func Build(rec Record, kind Kind) (*Model, error) {
	m := &Model{
		Kind: kind,
		Meta: Metadata{
			Number:       rec.Number,
			IssueDate:    rec.IssueDate,
			DueDate:      rec.DueDate,
			Currency:     rec.Currency,
			Issuer:       rec.Issuer,
			Counterparty: rec.Counterparty,
			LogoURL:      rec.LogoURL,
			Notes:        rec.Notes,
		},
	}

	if kind == KindStatement {
		if err := buildStatement(m, rec); err != nil {
			return nil, err
		}
		return m, nil
	}

	if len(rec.Sections) == 0 {
		return nil, &ValidationError{Field: "sections", Msg: "document has no sections"}
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	grand := decimal.Zero

	for si, rs := range rec.Sections {
		sec := Section{Title: rs.Title}

		labor, err := parseAmount(rs.LaborCost, true, fmt.Sprintf("sections[%d].laborCost", si))
		if err != nil {
			return nil, err
		}
		sec.LaborCost = labor

		secTotal := labor
		for ssi, rss := range rs.Subsections {
			sub := Subsection{Title: rss.Title}
			subTotal := decimal.Zero
			for ii, ri := range rss.Items {
				item, err := buildItem(ri, fmt.Sprintf("sections[%d].subsections[%d].items[%d]", si, ssi, ii))
				if err != nil {
					return nil, err
				}
				sub.Items = append(sub.Items, item)
				subTotal = subTotal.Add(item.LineTotal)
				subtotal = subtotal.Add(item.LineTotal.Sub(item.TaxAmount))
				tax = tax.Add(item.TaxAmount)
			}
			sub.Subtotal = subTotal
			secTotal = secTotal.Add(subTotal)
			sec.Subsections = append(sec.Subsections, sub)
		}

		for ii, ri := range rs.Items {
			item, err := buildItem(ri, fmt.Sprintf("sections[%d].items[%d]", si, ii))
			if err != nil {
				return nil, err
			}
			sec.Items = append(sec.Items, item)
			secTotal = secTotal.Add(item.LineTotal)
			subtotal = subtotal.Add(item.LineTotal.Sub(item.TaxAmount))
			tax = tax.Add(item.TaxAmount)
		}

		sec.Total = secTotal
		grand = grand.Add(secTotal)
		m.Sections = append(m.Sections, sec)
	}

	m.Totals.Subtotal = subtotal
	m.Totals.Tax = tax
	m.Totals.Grand = grand

	if rec.GrandTotal != "" {
		declared, err := parseAmount(rec.GrandTotal, false, "grandTotal")
		if err != nil {
			return nil, err
		}
		if !declared.Equal(grand) {
			// Render what we were given; the pipeline logs the discrepancy.
			m.TotalsMismatch = true
			m.Totals.Grand = declared
		}
	}

	if rec.Paid != "" {
		paid, err := parseAmount(rec.Paid, false, "paid")
		if err != nil {
			return nil, err
		}
		m.Totals.Paid = paid
		m.Totals.BalanceDue = m.Totals.Grand.Sub(paid)
		m.Totals.HasBalance = true
	}

	return m, nil
}

// buildItem parses one raw item and computes its line total:
// quantity*unitPrice - discount + tax, rounded to 2 decimals.
func buildItem(ri RawItem, path string) (LineItem, error) {
	qty, err := parseAmount(ri.Quantity, false, path+".quantity")
	if err != nil {
		return LineItem{}, err
	}
	price, err := parseAmount(ri.UnitPrice, false, path+".unitPrice")
	if err != nil {
		return LineItem{}, err
	}
	rate, err := parseAmount(ri.TaxRate, true, path+".taxRate")
	if err != nil {
		return LineItem{}, err
	}
	disc, err := parseAmount(ri.Discount, true, path+".discount")
	if err != nil {
		return LineItem{}, err
	}

	net := qty.Mul(price).Sub(disc)
	taxAmt := net.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)

	return LineItem{
		Description: ri.Description,
		Quantity:    qty,
		Unit:        ri.Unit,
		UnitPrice:   price,
		TaxRate:     rate,
		TaxAmount:   taxAmt,
		Discount:    disc,
		LineTotal:   net.Add(taxAmt).Round(2),
	}, nil
}

// buildStatement merges the debit/credit streams into a date-ordered
// transaction list with running balances. The empty stream is valid and
// yields a zero closing balance.
func buildStatement(m *Model, rec Record) error {
	type entry struct {
		tx    Transaction
		order int
	}
	merged := make([]entry, 0, len(rec.Debits)+len(rec.Credits))

	for i, d := range rec.Debits {
		amt, err := parseAmount(d.Amount, false, fmt.Sprintf("debits[%d].amount", i))
		if err != nil {
			return err
		}
		merged = append(merged, entry{
			tx:    Transaction{Date: d.Date, Reference: d.Reference, Debit: amt},
			order: len(merged),
		})
	}
	for i, c := range rec.Credits {
		amt, err := parseAmount(c.Amount, false, fmt.Sprintf("credits[%d].amount", i))
		if err != nil {
			return err
		}
		merged = append(merged, entry{
			tx:    Transaction{Date: c.Date, Reference: c.Reference, Credit: amt},
			order: len(merged),
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].tx.Date.Equal(merged[j].tx.Date) {
			return merged[i].order < merged[j].order
		}
		return merged[i].tx.Date.Before(merged[j].tx.Date)
	})

	balance := decimal.Zero
	for _, e := range merged {
		balance = balance.Add(e.tx.Debit).Sub(e.tx.Credit)
		e.tx.Balance = balance
		m.Transactions = append(m.Transactions, e.tx)
	}

	m.Totals.Grand = balance
	return nil
}

// parseAmount parses a decimal string. optional fields treat "" as zero;
// required fields reject it.
func parseAmount(s string, optional bool, field string) (decimal.Decimal, error) {
	if s == "" {
		if optional {
			return decimal.Zero, nil
		}
		return decimal.Zero, &ValidationError{Field: field, Msg: "missing amount"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Msg: "non-numeric amount " + fmt.Sprintf("%q", s)}
	}
	return d, nil
}
