package assemble

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docpress/docpress/internal/pagination"
	"github.com/docpress/docpress/internal/render/pdf"
)

// RenderError reports the page at which assembly failed. A failed page
// discards the whole artifact; a multi-page document with a silently
// missing page is worse than no document.
type RenderError struct {
	PageIndex int
	RenderID  string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: page %d failed: %v", e.RenderID, e.PageIndex, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Artifact is the finished multi-page output, one downloadable unit. It
// only ever exists complete: partial renders never produce an Artifact.
type Artifact struct {
	data      []byte
	pageCount int
}

// Bytes returns the encoded document.
func (a *Artifact) Bytes() []byte { return a.data }

// PageCount returns the number of physical pages, including any extra
// pages the overflow slicer emitted.
func (a *Artifact) PageCount() int { return a.pageCount }

// WriteTo writes the artifact to w.
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.data)
	return int64(n), err
}

// WriteFile writes the artifact to a file, creating the directory if needed.
func (a *Artifact) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return os.WriteFile(path, a.data, 0644)
}

// Assembler drives the renderer over a page plan and concatenates the
// result into one Artifact, preserving plan order exactly.
type Assembler struct {
	RenderID string
	Logger   *slog.Logger
}

// New creates an assembler for one render.
func New(renderID string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{RenderID: renderID, Logger: logger}
}

// Assemble renders every planned page in order into the renderer's surface
// and seals the result. On any page failure the partial document is
// discarded as a unit and a RenderError identifies the failing page.
func (a *Assembler) Assemble(ctx context.Context, r *pdf.Renderer, chrome *pdf.Chrome, pages []*pagination.Page) (*Artifact, error) {
	for i, page := range pages {
		if err := r.RenderPage(ctx, page, chrome); err != nil {
			a.Logger.Error("discarding partial artifact",
				"render_id", a.RenderID,
				"failed_page", i,
				"error", err.Error())
			return nil, &RenderError{PageIndex: i, RenderID: a.RenderID, Err: err}
		}
	}

	pageCount := r.Doc.PageCount()
	var buf bytes.Buffer
	if err := r.Doc.Output(&buf); err != nil {
		return nil, &RenderError{PageIndex: pageCount - 1, RenderID: a.RenderID, Err: err}
	}

	a.Logger.Info("artifact assembled",
		"render_id", a.RenderID,
		"planned_pages", len(pages),
		"physical_pages", pageCount,
		"bytes", buf.Len())

	return &Artifact{data: buf.Bytes(), pageCount: pageCount}, nil
}
