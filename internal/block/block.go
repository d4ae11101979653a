package block

// Type tags a block with its structural role. The tag is assigned when the
// block is created and is never re-derived from the formatted cell text.
type Type int

const (
	// TypeRow is one line item (or one statement transaction)
	TypeRow Type = iota
	// TypeSectionHeader opens a titled section
	TypeSectionHeader
	// TypeSubsectionHeader opens a titled subsection
	TypeSubsectionHeader
	// TypeSubsectionSubtotal closes a subsection
	TypeSubsectionSubtotal
	// TypeSectionTotal closes a section
	TypeSectionTotal
	// TypeGrandTotal is the document-level totals block
	TypeGrandTotal
	// TypeFreeText is a trailing note paragraph
	TypeFreeText
	// TypeSignature is the trailing signature block
	TypeSignature
)

func (t Type) String() string {
	switch t {
	case TypeRow:
		return "row"
	case TypeSectionHeader:
		return "section-header"
	case TypeSubsectionHeader:
		return "subsection-header"
	case TypeSubsectionSubtotal:
		return "subsection-subtotal"
	case TypeSectionTotal:
		return "section-total"
	case TypeGrandTotal:
		return "grand-total"
	case TypeFreeText:
		return "free-text"
	case TypeSignature:
		return "signature"
	}
	return "unknown"
}

// BreakBefore is the page-break policy a block carries into the planner.
type BreakBefore int

const (
	// BreakNever places the block wherever it fits
	BreakNever BreakBefore = iota
	// BreakPreferred starts a new page when the remaining space is insufficient
	BreakPreferred
	// BreakAlways forces a new page before the block on any non-empty page
	BreakAlways
)

func (b BreakBefore) String() string {
	switch b {
	case BreakPreferred:
		return "preferred"
	case BreakAlways:
		return "always"
	}
	return "never"
}

// Block is the smallest atomic unit the pagination planner schedules.
// Blocks are owned by the planner for the duration of one render and are
// never mutated after creation.
type Block struct {
	Type Type
	// Cells holds the pre-formatted cell values, currency already applied.
	Cells []string
	// KeepTogether forbids splitting the block across pages. True for every
	// type; rows are themselves keep-together units.
	KeepTogether bool
	BreakBefore  BreakBefore
	// Section is the index of the owning section, -1 for trailing blocks.
	Section int
	// Index is the block's position in decomposed order.
	Index int
}
