package pagination

import (
	"github.com/docpress/docpress/internal/block"
	"github.com/docpress/docpress/internal/document"
)

// Policy is the per-kind rule set the planner and decomposer consult.
// Kind-specific behavior lives here, in one table, instead of per-kind
// rendering code paths.
type Policy struct {
	// HeaderBreak applies to every section header after the first.
	HeaderBreak block.BreakBefore
	// RepeatColumnTitles redraws the table column titles on every page.
	RepeatColumnTitles bool
	// Signature appends a trailing signature block.
	Signature bool
	// ColumnTitles are the table headings drawn by the chrome.
	ColumnTitles []string
}

var itemColumns = []string{"Description", "Qty", "Unit", "Unit Price", "Tax", "Total"}

var policies = map[document.Kind]Policy{
	document.KindFlatInvoice: {
		HeaderBreak:        block.BreakPreferred,
		RepeatColumnTitles: true,
		ColumnTitles:       itemColumns,
	},
	document.KindSectionedInvoice: {
		HeaderBreak:        block.BreakPreferred,
		RepeatColumnTitles: true,
		ColumnTitles:       itemColumns,
	},
	document.KindQuotation: {
		HeaderBreak:        block.BreakPreferred,
		RepeatColumnTitles: true,
		Signature:          true,
		ColumnTitles:       itemColumns,
	},
	document.KindDeliveryNote: {
		HeaderBreak:        block.BreakPreferred,
		RepeatColumnTitles: true,
		ColumnTitles:       itemColumns,
	},
	// BOQs follow a fixed print convention: every section after the first
	// starts its own page regardless of remaining space.
	document.KindBillOfQuantities: {
		HeaderBreak:        block.BreakAlways,
		RepeatColumnTitles: true,
		Signature:          true,
		ColumnTitles:       itemColumns,
	},
	document.KindStatement: {
		HeaderBreak:        block.BreakPreferred,
		RepeatColumnTitles: true,
		ColumnTitles:       []string{"Date", "Reference", "Debit", "Credit", "Balance"},
	},
}

// PolicyFor returns the policy for a document kind. Unknown kinds get the
// flowing defaults.
func PolicyFor(kind document.Kind) Policy {
	if p, ok := policies[kind]; ok {
		return p
	}
	return Policy{
		HeaderBreak:        block.BreakPreferred,
		RepeatColumnTitles: true,
		ColumnTitles:       itemColumns,
	}
}
