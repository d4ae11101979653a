package pagination

import (
	"log/slog"

	"github.com/docpress/docpress/internal/block"
)

// Measured is a block with the height the rendering backend measured for it.
// Boundaries records the internal line offsets (cumulative, from the block
// top) so the overflow path can slice at line edges instead of mid-glyph.
type Measured struct {
	Block      block.Block
	Height     float64
	Overflowed bool
	Boundaries []float64
}

// Page is one planned output page: an ordered slice of blocks plus the
// repeated-chrome flags the renderer honors.
type Page struct {
	Blocks               []Measured
	RepeatedHeader       bool
	RepeatedColumnTitles bool
}

// PageSize represents standard page sizes
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in points (1/72 inch)
var (
	PageSizeA4     = PageSize{Width: 595.28, Height: 841.89, Name: "A4"}
	PageSizeLetter = PageSize{Width: 612.00, Height: 792.00, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 612.00, Height: 1008.00, Name: "Legal"}
	PageSizeA3     = PageSize{Width: 841.89, Height: 1190.55, Name: "A3"}
	PageSizeA5     = PageSize{Width: 419.53, Height: 595.28, Name: "A5"}
)

// Paginator assigns measured blocks to pages under height, ordering and
// atomicity constraints. Given the same blocks and geometry it produces an
// identical plan every call.
type Paginator struct {
	PageSize PageSize
	// Margin is the uniform page margin; content height is Height - 2*Margin.
	Margin float64
	// HeaderHeight/FooterHeight reserve room for the repeated chrome.
	HeaderHeight float64
	FooterHeight float64
	// RepeatColumnTitles is propagated onto every planned page.
	RepeatColumnTitles bool

	Logger *slog.Logger
}

// NewPaginator creates a paginator for the given geometry.
func NewPaginator(size PageSize, margin, headerHeight, footerHeight float64) *Paginator {
	return &Paginator{
		PageSize:     size,
		Margin:       margin,
		HeaderHeight: headerHeight,
		FooterHeight: footerHeight,
	}
}

// ContentHeight is the vertical room available to blocks on a fresh page.
func (p *Paginator) ContentHeight() float64 {
	return p.PageSize.Height - 2*p.Margin - p.HeaderHeight - p.FooterHeight
}

func (p *Paginator) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Plan distributes blocks to pages. Greedy first-fit in block order, with a
// lookahead for section groups: a section whose whole run (header through
// section-total) fits a fresh page is never split across pages when a break
// can avoid it. Totals blocks keep at least one preceding row with them.
//
// A block taller than a full fresh page is placed anyway and marked
// Overflowed; the rendering backend slices it at recorded boundaries. That
// is the sole exception to atomicity and it is always logged.
func (p *Paginator) Plan(blocks []Measured) []*Page {
	if len(blocks) == 0 {
		return nil
	}

	avail := p.ContentHeight()
	var pages []*Page
	var cur *Page
	remaining := 0.0

	open := func() {
		cur = &Page{
			RepeatedHeader:       true,
			RepeatedColumnTitles: p.RepeatColumnTitles,
		}
		pages = append(pages, cur)
		remaining = avail
	}
	open()

	place := func(mb Measured) {
		cur.Blocks = append(cur.Blocks, mb)
		remaining -= mb.Height
	}

	for i := range blocks {
		mb := blocks[i]

		if mb.Block.BreakBefore == block.BreakAlways && len(cur.Blocks) > 0 {
			open()
		}

		// Section group lookahead: break early when the whole section fits
		// a fresh page but not the remaining space.
		if mb.Block.Type == block.TypeSectionHeader &&
			mb.Block.BreakBefore == block.BreakPreferred && len(cur.Blocks) > 0 {
			if gh := groupHeight(blocks, i); gh > remaining && gh <= avail {
				open()
			}
		}

		if mb.Height > remaining && len(cur.Blocks) > 0 {
			// A totals block never opens a page alone: pull the trailing
			// row along so the total stays adjacent to what it sums.
			var carry *Measured
			if isTotals(mb.Block.Type) && len(cur.Blocks) >= 2 {
				if last := cur.Blocks[len(cur.Blocks)-1]; last.Block.Type == block.TypeRow {
					c := last
					cur.Blocks = cur.Blocks[:len(cur.Blocks)-1]
					carry = &c
				}
			}
			open()
			if carry != nil {
				place(*carry)
			}
		}

		if mb.Height > remaining {
			// Oversized even on a fresh page. Place it and hand the split
			// to the renderer.
			mb.Overflowed = true
			p.logger().Warn("block taller than a full page, deferring split to renderer",
				"block_index", mb.Block.Index,
				"block_type", mb.Block.Type.String(),
				"height", mb.Height,
				"page_height", avail,
				"page", len(pages)-1)
		}

		place(mb)
	}

	return pages
}

func isTotals(t block.Type) bool {
	switch t {
	case block.TypeSubsectionSubtotal, block.TypeSectionTotal, block.TypeGrandTotal:
		return true
	}
	return false
}

// groupHeight sums the heights of a section run, from its header through
// its section-total (inclusive), stopping early at the next section header.
func groupHeight(blocks []Measured, start int) float64 {
	section := blocks[start].Block.Section
	h := 0.0
	for i := start; i < len(blocks); i++ {
		b := blocks[i].Block
		if i > start && b.Type == block.TypeSectionHeader {
			break
		}
		if b.Section != section && b.Section != -1 {
			break
		}
		h += blocks[i].Height
		if b.Type == block.TypeSectionTotal && b.Section == section {
			break
		}
	}
	return h
}
