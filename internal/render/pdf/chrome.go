package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/docpress/docpress/internal/document"
	"github.com/docpress/docpress/internal/res"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// Chrome band heights in points.
const (
	identityBandHeight = 68.0
	partiesBandHeight  = 50.0
	titleBandHeight    = 16.0
	chromeGap          = 8.0
	footerBandHeight   = 18.0
	logoMaxHeight      = 40.0
	logoMaxWidth       = 140.0
)

// Chrome is the immutable per-render template for everything repeated on
// every page: issuer identity, document title block, counterparty, table
// column titles and the page-number footer. It is built once from the
// document metadata and redrawn identically per page, never recomputed.
type Chrome struct {
	title      string
	number     string
	issueDate  string
	dueDate    string
	issuer     document.Party
	bill       document.Party
	columns    []string
	withTitles bool

	logo *chromeLogo

	// registered tracks one-time image registration on the render-scoped
	// drawing surface; it is drawing state, not template content.
	registered bool
}

type chromeLogo struct {
	name   string
	data   []byte
	widthP float64
	height float64
}

// NewChrome builds the page chrome from document metadata. The logo, if
// any, is fetched through the loader under ctx: a deadline hit while an
// external logo never loads fails the render fast with a TimeoutError. A
// plain missing logo is logged and skipped; it never fails a render.
func NewChrome(ctx context.Context, meta document.Metadata, kind document.Kind, columns []string, withTitles bool, loader *res.Loader, renderID string, logger *slog.Logger) (*Chrome, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := document.NewFormatter(meta.Currency, "")
	c := &Chrome{
		title:      kind.Title(),
		number:     meta.Number,
		issueDate:  f.Date(meta.IssueDate),
		dueDate:    f.Date(meta.DueDate),
		issuer:     meta.Issuer,
		bill:       meta.Counterparty,
		columns:    columns,
		withTitles: withTitles,
	}

	if meta.LogoURL != "" {
		logo, err := loadLogo(ctx, loader, meta.LogoURL, renderID)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, &TimeoutError{Stage: "logo fetch", Err: err}
			}
			logger.Warn("logo unavailable, rendering chrome without it",
				"logo_url", meta.LogoURL,
				"document", meta.Number,
				"error", err.Error())
		} else {
			c.logo = logo
		}
	}

	return c, nil
}

// HeaderHeight is the vertical room the chrome claims at the top of every
// page; the planner subtracts it from the content height.
func (c *Chrome) HeaderHeight() float64 {
	h := identityBandHeight + partiesBandHeight + chromeGap
	if c.withTitles {
		h += titleBandHeight
	}
	return h
}

// FooterHeight is the room reserved for the page-number footer.
func (c *Chrome) FooterHeight() float64 {
	return footerBandHeight
}

// TitleBandHeight is the height of the column-title band inside the header.
func (c *Chrome) TitleBandHeight() float64 {
	if !c.withTitles {
		return 0
	}
	return titleBandHeight
}

// Draw paints the identity and parties bands at the top of the current page.
func (c *Chrome) Draw(doc *fpdf.Fpdf, geo Geometry) {
	x := geo.Margin
	y := geo.Margin

	issuerX := x
	if c.logo != nil {
		if !c.registered {
			doc.RegisterImageOptionsReader(c.logo.name,
				fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(c.logo.data))
			c.registered = true
		}
		doc.ImageOptions(c.logo.name, x, y, c.logo.widthP, c.logo.height,
			false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		issuerX = x + c.logo.widthP + 12
	}

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 11)
	doc.Text(issuerX, y+11, c.issuer.Name)
	doc.SetFont("Helvetica", "", 8)
	ly := y + 22
	for _, line := range splitAddress(c.issuer.Address) {
		doc.Text(issuerX, ly, line)
		ly += 10
	}
	if c.issuer.TaxID != "" {
		doc.Text(issuerX, ly, "Tax ID: "+c.issuer.TaxID)
	}

	// Right-hand title block
	right := geo.PageWidth - geo.Margin
	doc.SetFont("Helvetica", "B", 16)
	doc.Text(right-doc.GetStringWidth(c.title), y+16, c.title)
	doc.SetFont("Helvetica", "", 9)
	meta := []string{"No. " + c.number}
	if c.issueDate != "" {
		meta = append(meta, "Issued: "+c.issueDate)
	}
	if c.dueDate != "" {
		meta = append(meta, "Due: "+c.dueDate)
	}
	my := y + 30
	for _, line := range meta {
		doc.Text(right-doc.GetStringWidth(line), my, line)
		my += 11
	}

	// Parties band
	py := y + identityBandHeight
	doc.SetFont("Helvetica", "B", 8)
	doc.SetTextColor(110, 110, 110)
	doc.Text(x, py+8, "BILL TO")
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", 9)
	doc.Text(x, py+20, c.bill.Name)
	doc.SetFont("Helvetica", "", 8)
	by := py + 30
	for _, line := range splitAddress(c.bill.Address) {
		doc.Text(x, by, line)
		by += 10
	}
}

// DrawColumnTitles paints the table heading band at y.
func (c *Chrome) DrawColumnTitles(doc *fpdf.Fpdf, geo Geometry, y float64) {
	if !c.withTitles || len(c.columns) == 0 {
		return
	}
	doc.SetFillColor(40, 40, 40)
	doc.Rect(geo.Margin, y, geo.ContentWidth(), titleBandHeight, "F")

	widths := columnWidths(geo, len(c.columns))
	doc.SetFont("Helvetica", "B", 8)
	doc.SetTextColor(255, 255, 255)
	x := geo.Margin
	for i, title := range c.columns {
		if i >= len(widths) {
			break
		}
		if i == 0 {
			doc.Text(x+cellPadX, y+11, title)
		} else {
			doc.Text(x+widths[i]-cellPadX-doc.GetStringWidth(title), y+11, title)
		}
		x += widths[i]
	}
	doc.SetTextColor(0, 0, 0)
}

// DrawFooter paints the page-number footer. The total page count uses the
// fpdf page alias so slices added by the overflow path still count.
func (c *Chrome) DrawFooter(doc *fpdf.Fpdf, geo Geometry) {
	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(110, 110, 110)
	label := fmt.Sprintf("Page %d of {nb}", doc.PageNo())
	doc.Text((geo.PageWidth-doc.GetStringWidth(label))/2, geo.PageHeight-geo.Margin+10, label)
	doc.SetTextColor(0, 0, 0)
}

func splitAddress(addr string) []string {
	var out []string
	for _, line := range strings.Split(addr, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// loadLogo fetches and normalizes the issuer logo to PNG bytes at chrome
// size. SVG logos are rasterized; bitmap formats fpdf cannot embed natively
// (webp, tiff, bmp) are decoded and re-encoded.
func loadLogo(ctx context.Context, loader *res.Loader, urlStr, renderID string) (*chromeLogo, error) {
	resource, err := loader.LoadImage(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	var img image.Image
	if resource.MimeType == "image/svg+xml" || strings.HasSuffix(strings.ToLower(resource.URL), ".svg") {
		img, err = rasterizeSVG(resource.Data)
	} else {
		img, _, err = image.Decode(resource.GetReader())
	}
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", urlStr, err)
	}

	w, h := fitLogo(img.Bounds())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return &chromeLogo{
		name:   "chrome-logo-" + renderID,
		data:   buf.Bytes(),
		widthP: w,
		height: h,
	}, nil
}

// fitLogo scales pixel bounds into the chrome logo box, preserving aspect.
func fitLogo(b image.Rectangle) (w, h float64) {
	w = float64(b.Dx())
	h = float64(b.Dy())
	if w <= 0 || h <= 0 {
		return logoMaxWidth, logoMaxHeight
	}
	scale := logoMaxHeight / h
	if w*scale > logoMaxWidth {
		scale = logoMaxWidth / w
	}
	return w * scale, h * scale
}

// rasterizeSVG renders SVG bytes onto an RGBA surface sized from the icon's
// view box, scaled up for a crisp downsampled placement.
func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = logoMaxWidth, logoMaxHeight
	}
	w := int(vw * rasterScale)
	h := int(vh * rasterScale)
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
