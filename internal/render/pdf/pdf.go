package pdf

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/go-pdf/fpdf"
	"github.com/docpress/docpress/internal/block"
	"github.com/docpress/docpress/internal/pagination"
)

// Geometry is the page layout the renderer and planner share.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	// Margin is uniform on all four sides.
	Margin float64
	// HeaderHeight/FooterHeight reserve room for the repeated chrome and
	// are derived from the chrome template, not configured directly.
	HeaderHeight float64
	FooterHeight float64
}

// ContentWidth is the horizontal room available to block cells.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// ContentHeight is the vertical room available to blocks on one page.
func (g Geometry) ContentHeight() float64 {
	return g.PageHeight - 2*g.Margin - g.HeaderHeight - g.FooterHeight
}

// Type sizes and paddings, in points.
const (
	baseFontSize    = 9.0
	headerFontSize  = 11.0
	lineHeight      = baseFontSize * 1.5
	cellPadX        = 4.0
	blockPadY       = 4.0
	signatureHeight = 52.0
)

// Renderer draws planned pages into one fpdf document. A Renderer is
// render-scoped: it owns a single drawing surface and must not be shared
// between concurrent renders.
type Renderer struct {
	Doc      *fpdf.Fpdf
	Geo      Geometry
	RenderID string
	Debug    bool

	logger *slog.Logger
}

// NewRenderer creates a renderer with a fresh drawing surface for the given
// geometry.
func NewRenderer(geo Geometry, renderID string, logger *slog.Logger) *Renderer {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geo.PageWidth, Ht: geo.PageHeight},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AliasNbPages("")
	doc.SetFont("Helvetica", "", baseFontSize)

	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		Doc:      doc,
		Geo:      geo,
		RenderID: renderID,
		logger:   logger.With("render_id", renderID),
	}
}

// MeasurementError reports a block whose height could not be determined.
// It is recovered locally: the block gets a best-effort placeholder height
// and is flagged overflowed; the render as a whole proceeds.
type MeasurementError struct {
	BlockIndex int
	Err        error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("measure block %d: %v", e.BlockIndex, e.Err)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// TimeoutError reports a blocking render stage that hit its deadline.
type TimeoutError struct {
	Stage string
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("render timed out during %s: %v", e.Stage, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Measure determines each block's height with the same font metrics the
// drawing pass uses, so planned heights match drawn heights exactly.
// Boundaries record the bottom of each wrapped line, for overflow slicing.
//
// A block that cannot be measured is given one full content page as a
// placeholder height and marked overflowed, never dropped.
func (r *Renderer) Measure(blocks []block.Block) []pagination.Measured {
	out := make([]pagination.Measured, 0, len(blocks))
	for _, b := range blocks {
		h, bounds, err := r.measureBlock(b)
		m := pagination.Measured{Block: b, Height: h, Boundaries: bounds}
		if err != nil {
			merr := &MeasurementError{BlockIndex: b.Index, Err: err}
			r.logger.Warn("block measurement failed, using placeholder height",
				"block_index", b.Index,
				"block_type", b.Type.String(),
				"error", merr.Error())
			m.Height = r.Geo.ContentHeight()
			m.Boundaries = nil
			m.Overflowed = true
		}
		out = append(out, m)
	}
	return out
}

func (r *Renderer) measureBlock(b block.Block) (float64, []float64, error) {
	switch b.Type {
	case block.TypeRow:
		return r.measureWrapped(b, r.descColumnWidth(len(b.Cells)))
	case block.TypeFreeText:
		return r.measureWrapped(b, r.Geo.ContentWidth()-2*cellPadX)
	case block.TypeSectionHeader, block.TypeSubsectionHeader:
		return headerFontSize*1.8 + blockPadY, nil, nil
	case block.TypeSubsectionSubtotal, block.TypeSectionTotal:
		return lineHeight + 2*blockPadY, nil, nil
	case block.TypeGrandTotal:
		rows := len(b.Cells) / 2
		if rows < 1 {
			rows = 1
		}
		return float64(rows)*lineHeight + 2*blockPadY, nil, nil
	case block.TypeSignature:
		return signatureHeight, nil, nil
	}
	return 0, nil, fmt.Errorf("unknown block type %d", int(b.Type))
}

// measureWrapped measures a block whose first cell wraps over a column.
func (r *Renderer) measureWrapped(b block.Block, wrapWidth float64) (float64, []float64, error) {
	if wrapWidth <= 0 {
		return 0, nil, fmt.Errorf("non-positive wrap width %.2f", wrapWidth)
	}
	if len(b.Cells) == 0 {
		return 0, nil, fmt.Errorf("block has no cells")
	}
	r.Doc.SetFont("Helvetica", "", baseFontSize)
	lines := r.Doc.SplitText(b.Cells[0], wrapWidth)
	if len(lines) == 0 {
		lines = []string{""}
	}
	bounds := make([]float64, len(lines))
	for i := range lines {
		bounds[i] = float64(i+1) * lineHeight
	}
	return float64(len(lines))*lineHeight + blockPadY, bounds, nil
}

// descColumnWidth returns the wrap width of the first (description) column
// for a row with the given cell count.
func (r *Renderer) descColumnWidth(cells int) float64 {
	w := columnWidths(r.Geo, cells)
	if len(w) == 0 {
		return 0
	}
	return w[0] - 2*cellPadX
}

// columnWidths distributes the content width over row columns. The cell
// count selects the table shape: 6 for item rows, 5 for statement rows.
// The chrome uses the same widths for its repeated column titles.
func columnWidths(geo Geometry, cells int) []float64 {
	cw := geo.ContentWidth()
	var fractions []float64
	switch cells {
	case 6: // description, qty, unit, unit price, tax, total
		fractions = []float64{0.40, 0.08, 0.08, 0.16, 0.10, 0.18}
	case 5: // date, reference, debit, credit, balance
		fractions = []float64{0.15, 0.41, 0.15, 0.15, 0.14}
	default:
		if cells <= 0 {
			return nil
		}
		fractions = make([]float64, cells)
		for i := range fractions {
			fractions[i] = 1.0 / float64(cells)
		}
	}
	widths := make([]float64, len(fractions))
	for i, f := range fractions {
		widths[i] = cw * f
	}
	return widths
}

// RenderPage draws one planned page: chrome, column titles, then each block
// in plan order. Overflowed blocks take the raster path and may emit extra
// physical pages. The ctx deadline bounds the whole page; on expiry the
// partially drawn page is abandoned and a TimeoutError returned.
func (r *Renderer) RenderPage(ctx context.Context, page *pagination.Page, chrome *Chrome) error {
	if err := ctx.Err(); err != nil {
		return &TimeoutError{Stage: "page start", Err: err}
	}

	r.addChromePage(page, chrome)
	y := r.Geo.Margin + r.Geo.HeaderHeight

	for _, mb := range page.Blocks {
		if err := ctx.Err(); err != nil {
			return &TimeoutError{Stage: "block drawing", Err: err}
		}
		if mb.Overflowed {
			nextY, err := r.renderOverflow(ctx, mb, page, chrome, y)
			if err != nil {
				return err
			}
			y = nextY
			continue
		}
		r.renderBlock(mb, y)
		y += mb.Height
	}

	if r.Debug {
		r.logger.Debug("rendered page",
			"page", r.Doc.PageNo(),
			"blocks", len(page.Blocks))
	}
	return nil
}

// addChromePage starts a physical page and draws the repeated chrome on it.
func (r *Renderer) addChromePage(page *pagination.Page, chrome *Chrome) {
	r.Doc.AddPage()
	if page.RepeatedHeader {
		chrome.Draw(r.Doc, r.Geo)
	}
	if page.RepeatedColumnTitles {
		// Column titles occupy the bottom band of the chrome area, which
		// HeaderHeight already accounts for.
		chrome.DrawColumnTitles(r.Doc, r.Geo, r.Geo.Margin+r.Geo.HeaderHeight-chrome.TitleBandHeight())
	}
	chrome.DrawFooter(r.Doc, r.Geo)
}

func (r *Renderer) renderBlock(mb pagination.Measured, y float64) {
	b := mb.Block
	switch b.Type {
	case block.TypeRow:
		r.renderRow(b, y, mb.Height)
	case block.TypeSectionHeader:
		r.renderHeading(b, y, mb.Height, true)
	case block.TypeSubsectionHeader:
		r.renderHeading(b, y, mb.Height, false)
	case block.TypeSubsectionSubtotal, block.TypeSectionTotal:
		r.renderTotalLine(b, y, mb.Height, b.Type == block.TypeSectionTotal)
	case block.TypeGrandTotal:
		r.renderGrandTotal(b, y)
	case block.TypeFreeText:
		r.renderFreeText(b, y)
	case block.TypeSignature:
		r.renderSignature(y)
	}
}

func (r *Renderer) renderRow(b block.Block, y, h float64) {
	widths := columnWidths(r.Geo, len(b.Cells))
	x := r.Geo.Margin
	r.Doc.SetFont("Helvetica", "", baseFontSize)
	r.Doc.SetTextColor(0, 0, 0)

	for i, cell := range b.Cells {
		if i >= len(widths) {
			break
		}
		if i == 0 {
			lines := r.Doc.SplitText(cell, widths[0]-2*cellPadX)
			ly := y + baseFontSize
			for _, line := range lines {
				r.Doc.Text(x+cellPadX, ly, line)
				ly += lineHeight
			}
		} else {
			// Numeric columns are right-aligned.
			tw := r.Doc.GetStringWidth(cell)
			r.Doc.Text(x+widths[i]-cellPadX-tw, y+baseFontSize, cell)
		}
		x += widths[i]
	}

	r.Doc.SetDrawColor(220, 220, 220)
	r.Doc.SetLineWidth(0.4)
	r.Doc.Line(r.Geo.Margin, y+h, r.Geo.Margin+r.Geo.ContentWidth(), y+h)
}

func (r *Renderer) renderHeading(b block.Block, y, h float64, section bool) {
	size := headerFontSize
	if !section {
		size = baseFontSize + 1
	}
	if section {
		r.Doc.SetFillColor(235, 235, 235)
		r.Doc.Rect(r.Geo.Margin, y, r.Geo.ContentWidth(), h-blockPadY/2, "F")
	}
	r.Doc.SetFont("Helvetica", "B", size)
	r.Doc.SetTextColor(0, 0, 0)
	title := ""
	if len(b.Cells) > 0 {
		title = b.Cells[0]
	}
	r.Doc.Text(r.Geo.Margin+cellPadX, y+size*1.2, title)
}

func (r *Renderer) renderTotalLine(b block.Block, y, h float64, strong bool) {
	style := ""
	if strong {
		style = "B"
	}
	r.Doc.SetFont("Helvetica", style, baseFontSize)
	r.Doc.SetTextColor(0, 0, 0)
	if len(b.Cells) >= 2 {
		r.Doc.Text(r.Geo.Margin+cellPadX, y+blockPadY+baseFontSize, b.Cells[0])
		tw := r.Doc.GetStringWidth(b.Cells[1])
		r.Doc.Text(r.Geo.Margin+r.Geo.ContentWidth()-cellPadX-tw, y+blockPadY+baseFontSize, b.Cells[1])
	}
	r.Doc.SetDrawColor(120, 120, 120)
	r.Doc.SetLineWidth(0.6)
	r.Doc.Line(r.Geo.Margin, y+h, r.Geo.Margin+r.Geo.ContentWidth(), y+h)
}

func (r *Renderer) renderGrandTotal(b block.Block, y float64) {
	r.Doc.SetDrawColor(60, 60, 60)
	r.Doc.SetLineWidth(0.8)
	r.Doc.Line(r.Geo.Margin, y, r.Geo.Margin+r.Geo.ContentWidth(), y)

	ly := y + blockPadY + baseFontSize
	for i := 0; i+1 < len(b.Cells); i += 2 {
		label, amount := b.Cells[i], b.Cells[i+1]
		style := ""
		if label == "Grand total" || label == "Balance due" || label == "Closing balance" {
			style = "B"
		}
		r.Doc.SetFont("Helvetica", style, baseFontSize)
		r.Doc.Text(r.Geo.Margin+r.Geo.ContentWidth()*0.55, ly, label)
		tw := r.Doc.GetStringWidth(amount)
		r.Doc.Text(r.Geo.Margin+r.Geo.ContentWidth()-cellPadX-tw, ly, amount)
		ly += lineHeight
	}
}

func (r *Renderer) renderFreeText(b block.Block, y float64) {
	r.Doc.SetFont("Helvetica", "I", baseFontSize)
	r.Doc.SetTextColor(60, 60, 60)
	ly := y + baseFontSize
	if len(b.Cells) > 0 {
		for _, line := range r.Doc.SplitText(b.Cells[0], r.Geo.ContentWidth()-2*cellPadX) {
			r.Doc.Text(r.Geo.Margin+cellPadX, ly, line)
			ly += lineHeight
		}
	}
	r.Doc.SetTextColor(0, 0, 0)
}

func (r *Renderer) renderSignature(y float64) {
	w := r.Geo.ContentWidth()
	lineY := y + signatureHeight - 14
	r.Doc.SetDrawColor(0, 0, 0)
	r.Doc.SetLineWidth(0.6)
	r.Doc.Line(r.Geo.Margin, lineY, r.Geo.Margin+w*0.4, lineY)
	r.Doc.Line(r.Geo.Margin+w*0.6, lineY, r.Geo.Margin+w, lineY)

	r.Doc.SetFont("Helvetica", "", baseFontSize-1)
	r.Doc.Text(r.Geo.Margin, lineY+12, "Authorized signature")
	r.Doc.Text(r.Geo.Margin+w*0.6, lineY+12, "Date")
}
