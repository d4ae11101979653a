package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"codeberg.org/go-pdf/fpdf"
	"github.com/docpress/docpress/internal/pagination"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// rasterScale oversamples the offscreen surface for legibility once the
// slices are placed back at point size.
const rasterScale = 2.0

// renderOverflow handles the one escape hatch from block atomicity: a block
// taller than a full page. The block is drawn onto an offscreen raster
// surface, cut into page-sized slices at the line boundaries recorded during
// measurement, and the slices are embedded on consecutive pages.
//
// When no boundary information exists the cut falls back to fixed-height
// increments and may land mid-line; that path is logged separately so it is
// distinguishable from boundary slicing.
func (r *Renderer) renderOverflow(ctx context.Context, mb pagination.Measured, page *pagination.Page, chrome *Chrome, y float64) (float64, error) {
	pageBottom := r.Geo.PageHeight - r.Geo.Margin - r.Geo.FooterHeight
	first := pageBottom - y
	full := r.Geo.ContentHeight()

	surface, err := r.rasterizeBlock(mb)
	if err != nil {
		return 0, fmt.Errorf("rasterize overflowed block %d: %w", mb.Block.Index, err)
	}

	cuts, fallback := sliceOffsets(mb.Height, first, full, mb.Boundaries)
	if fallback {
		r.logger.Warn("no boundary information for overflowed block, fixed-height slicing",
			"block_index", mb.Block.Index,
			"block_type", mb.Block.Type.String(),
			"slices", len(cuts))
	} else {
		r.logger.Info("slicing overflowed block at line boundaries",
			"block_index", mb.Block.Index,
			"block_type", mb.Block.Type.String(),
			"slices", len(cuts))
	}

	start := 0.0
	for i, end := range cuts {
		if err := ctx.Err(); err != nil {
			return 0, &TimeoutError{Stage: "overflow slicing", Err: err}
		}
		if i > 0 {
			r.addChromePage(page, chrome)
			y = r.Geo.Margin + r.Geo.HeaderHeight
		}
		sliceH := end - start
		if err := r.placeSlice(surface, mb.Block.Index, i, start, sliceH, y); err != nil {
			return 0, err
		}
		y += sliceH
		start = end
	}
	return y, nil
}

// rasterizeBlock draws the block's wrapped text lines onto an RGBA surface
// sized to the measured block height.
func (r *Renderer) rasterizeBlock(mb pagination.Measured) (*image.RGBA, error) {
	w := int(r.Geo.ContentWidth() * rasterScale)
	h := int(mb.Height * rasterScale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("degenerate surface %dx%d", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    baseFontSize * rasterScale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	text := ""
	if len(mb.Block.Cells) > 0 {
		text = mb.Block.Cells[0]
	}
	lines := r.Doc.SplitText(text, r.Geo.ContentWidth()-2*cellPadX)
	for i, line := range lines {
		baseline := (float64(i)*lineHeight + baseFontSize) * rasterScale
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(int(cellPadX * rasterScale)),
			Y: fixed.I(int(baseline)),
		}
		drawer.DrawString(line)
	}
	return img, nil
}

// placeSlice crops one horizontal band off the surface and embeds it on the
// current page at y.
func (r *Renderer) placeSlice(surface *image.RGBA, blockIndex, sliceIndex int, start, height, y float64) error {
	y0 := int(start * rasterScale)
	y1 := int((start + height) * rasterScale)
	if y1 > surface.Bounds().Max.Y {
		y1 = surface.Bounds().Max.Y
	}
	if y1 <= y0 {
		return nil
	}

	band := image.NewRGBA(image.Rect(0, 0, surface.Bounds().Dx(), y1-y0))
	draw.Draw(band, band.Bounds(), surface, image.Pt(0, y0), draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, band); err != nil {
		return fmt.Errorf("encode slice %d of block %d: %w", sliceIndex, blockIndex, err)
	}

	name := fmt.Sprintf("overflow-%s-%d-%d", r.RenderID, blockIndex, sliceIndex)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	r.Doc.RegisterImageOptionsReader(name, opts, &buf)
	r.Doc.ImageOptions(name, r.Geo.Margin, y,
		r.Geo.ContentWidth(), float64(y1-y0)/rasterScale, false, opts, 0, "")
	return nil
}

// sliceOffsets picks the cut positions for an oversized block. Each slice
// ends at the greatest recorded boundary that fits its slot; first is the
// room on the block's own page, full the room on a fresh page. Without
// boundaries the cuts fall at fixed slot increments (fallback=true).
func sliceOffsets(total, first, full float64, boundaries []float64) (cuts []float64, fallback bool) {
	if total <= 0 {
		return nil, false
	}
	if first <= 0 {
		first = full
	}

	fallback = len(boundaries) == 0
	pos := 0.0
	slot := first
	for pos < total {
		limit := pos + slot
		if limit >= total {
			cuts = append(cuts, total)
			break
		}
		cut := limit
		if !fallback {
			best := -1.0
			for _, b := range boundaries {
				if b > pos && b <= limit {
					best = b
				}
			}
			if best > 0 {
				cut = best
			}
			// No boundary inside the slot: cut at the limit anyway rather
			// than looping forever on a single huge line.
		}
		cuts = append(cuts, cut)
		pos = cut
		slot = full
	}
	return cuts, fallback
}
