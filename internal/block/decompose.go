package block

import (
	"github.com/docpress/docpress/internal/document"
)

// Options controls kind-specific decomposition choices. The values come from
// the per-kind policy table; the decomposer itself has no kind branches.
type Options struct {
	// HeaderBreak is the break policy for every section header after the
	// first. The first section header in a document is always exempt.
	HeaderBreak BreakBefore
	// Signature appends a trailing signature block (quotations, BOQs).
	Signature bool
	// Locale is the BCP 47 tag used for the one-time cell formatting.
	Locale string
}

// Decompose flattens a document model into the ordered block list the
// planner schedules. It is pure and total: it never fails for a well-formed
// model, and the same model yields the same blocks every call.
func Decompose(doc *document.Model, opts Options) []Block {
	f := document.NewFormatter(doc.Meta.Currency, opts.Locale)
	d := &decomposer{f: f, opts: opts}

	if doc.Kind == document.KindStatement {
		d.statement(doc)
	} else {
		d.sections(doc)
	}

	for _, para := range FlattenHTML(doc.Meta.Notes) {
		d.emit(Block{Type: TypeFreeText, Cells: []string{para}, Section: -1})
	}
	if opts.Signature {
		d.emit(Block{Type: TypeSignature, Cells: []string{"Authorized signature", "Date"}, Section: -1})
	}
	return d.blocks
}

type decomposer struct {
	f      *document.Formatter
	opts   Options
	blocks []Block
}

func (d *decomposer) emit(b Block) {
	b.KeepTogether = true
	b.Index = len(d.blocks)
	d.blocks = append(d.blocks, b)
}

func (d *decomposer) sections(doc *document.Model) {
	for si, sec := range doc.Sections {
		hdr := Block{Type: TypeSectionHeader, Cells: []string{sec.Title}, Section: si}
		if si > 0 {
			hdr.BreakBefore = d.opts.HeaderBreak
		}
		d.emit(hdr)

		if len(sec.Subsections) > 0 {
			for _, sub := range sec.Subsections {
				d.emit(Block{Type: TypeSubsectionHeader, Cells: []string{sub.Title}, Section: si})
				for _, it := range sub.Items {
					d.emit(d.itemRow(it, si))
				}
				d.emit(Block{
					Type:    TypeSubsectionSubtotal,
					Cells:   []string{"Subtotal " + sub.Title, d.f.Money(sub.Subtotal)},
					Section: si,
				})
			}
		} else {
			for _, it := range sec.Items {
				d.emit(d.itemRow(it, si))
			}
		}

		cells := []string{"Section total", d.f.Money(sec.Total)}
		if !sec.LaborCost.IsZero() {
			cells = []string{"Section total (incl. labor " + d.f.Money(sec.LaborCost) + ")", d.f.Money(sec.Total)}
		}
		d.emit(Block{Type: TypeSectionTotal, Cells: cells, Section: si})
	}

	d.emit(Block{Type: TypeGrandTotal, Cells: d.totalCells(doc), Section: -1})
}

func (d *decomposer) itemRow(it document.LineItem, section int) Block {
	return Block{
		Type: TypeRow,
		Cells: []string{
			it.Description,
			d.f.Number(it.Quantity),
			it.Unit,
			d.f.Money(it.UnitPrice),
			d.f.Percent(it.TaxRate),
			d.f.Money(it.LineTotal),
		},
		Section: section,
	}
}

// totalCells lays the document totals out as label/amount pairs flattened
// into one block, so the whole totals box stays atomic.
func (d *decomposer) totalCells(doc *document.Model) []string {
	cells := []string{
		"Subtotal", d.f.Money(doc.Totals.Subtotal),
		"Tax", d.f.Money(doc.Totals.Tax),
		"Grand total", d.f.Money(doc.Totals.Grand),
	}
	if doc.Totals.HasBalance {
		cells = append(cells,
			"Paid", d.f.Money(doc.Totals.Paid),
			"Balance due", d.f.Money(doc.Totals.BalanceDue),
		)
	}
	return cells
}

func (d *decomposer) statement(doc *document.Model) {
	d.emit(Block{Type: TypeSectionHeader, Cells: []string{doc.Kind.Title()}, Section: 0})
	for _, tx := range doc.Transactions {
		cells := []string{d.f.Date(tx.Date), tx.Reference, "", "", d.f.Money(tx.Balance)}
		if !tx.Debit.IsZero() {
			cells[2] = d.f.Money(tx.Debit)
		}
		if !tx.Credit.IsZero() {
			cells[3] = d.f.Money(tx.Credit)
		}
		d.emit(Block{Type: TypeRow, Cells: cells, Section: 0})
	}
	d.emit(Block{Type: TypeGrandTotal, Cells: []string{"Closing balance", d.f.Money(doc.Totals.Grand)}, Section: -1})
}
