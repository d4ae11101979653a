package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docpress/docpress/internal/assemble"
	"github.com/docpress/docpress/internal/block"
	"github.com/docpress/docpress/internal/document"
	"github.com/docpress/docpress/internal/pagination"
	"github.com/docpress/docpress/internal/render/pdf"
	"github.com/docpress/docpress/internal/res"
)

// Engine is the main API for rendering business documents to paginated PDF
// artifacts. An Engine is safe for concurrent renders: each render owns its
// own drawing surface and context; only the options and the resource cache
// are shared.
type Engine struct {
	options Options
	loader  *res.Loader
}

// New creates a new render engine with default options
func New() *Engine {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new render engine with the specified options
func NewWithOptions(options Options) *Engine {
	loader := res.NewLoader("")
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	return &Engine{
		options: options,
		loader:  loader,
	}
}

// Build normalizes an upstream record into the canonical document model.
// It is a thin passthrough so callers do not need to import internal
// packages.
func (e *Engine) Build(rec document.Record, kind document.Kind) (*document.Model, error) {
	return document.Build(rec, kind)
}

// Render runs the full pipeline on a built model: decompose into blocks,
// measure, plan pages, draw, assemble. The model is read-only throughout;
// rendering the same model twice yields the same page plan and the same
// per-page block composition.
func (e *Engine) Render(ctx context.Context, model *document.Model) (*assemble.Artifact, error) {
	if model == nil {
		return nil, fmt.Errorf("nil document model")
	}

	renderID := uuid.NewString()
	logger := e.logger().With(
		"render_id", renderID,
		"document", model.Meta.Number,
		"kind", string(model.Kind),
	)

	if e.options.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.RenderTimeout)
		defer cancel()
	}

	if model.TotalsMismatch {
		// Upstream inconsistency, not ours to fix: render the declared
		// figure and leave a trail.
		logger.Warn("declared grand total disagrees with computed section totals, rendering declared value")
	}

	policy := pagination.PolicyFor(model.Kind)
	blocks := block.Decompose(model, block.Options{
		HeaderBreak: policy.HeaderBreak,
		Signature:   policy.Signature,
		Locale:      e.options.Locale,
	})

	geo := pdf.Geometry{
		PageWidth:  e.options.PageWidth,
		PageHeight: e.options.PageHeight,
		Margin:     e.options.Margin,
	}

	chrome, err := pdf.NewChrome(ctx, model.Meta, model.Kind,
		policy.ColumnTitles, policy.RepeatColumnTitles, e.loader, renderID, logger)
	if err != nil {
		return nil, err
	}
	geo.HeaderHeight = chrome.HeaderHeight()
	geo.FooterHeight = chrome.FooterHeight()

	renderer := pdf.NewRenderer(geo, renderID, logger)
	renderer.Debug = e.options.Debug

	measured := renderer.Measure(blocks)

	paginationEngine := pagination.NewEngine()
	paginationEngine.SetOptions(pagination.Options{
		PageWidth:          geo.PageWidth,
		PageHeight:         geo.PageHeight,
		Margin:             geo.Margin,
		HeaderHeight:       geo.HeaderHeight,
		FooterHeight:       geo.FooterHeight,
		RepeatColumnTitles: policy.RepeatColumnTitles,
		Logger:             logger,
	})
	pages := paginationEngine.Paginate(measured)

	assembler := assemble.New(renderID, logger)
	artifact, err := assembler.Assemble(ctx, renderer, chrome, pages)
	if err != nil {
		return nil, err
	}

	logger.Info("render complete", "pages", artifact.PageCount())
	return artifact, nil
}

// RenderRecord builds the model from an upstream record and renders it.
func (e *Engine) RenderRecord(ctx context.Context, rec document.Record, kind document.Kind) (*assemble.Artifact, error) {
	model, err := document.Build(rec, kind)
	if err != nil {
		return nil, err
	}
	return e.Render(ctx, model)
}

// RenderTo renders a model and writes the artifact to the specified writer
func (e *Engine) RenderTo(ctx context.Context, model *document.Model, output io.Writer) error {
	artifact, err := e.Render(ctx, model)
	if err != nil {
		return err
	}
	if _, err := artifact.WriteTo(output); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// RenderToFile renders a model and writes the artifact to the specified file
func (e *Engine) RenderToFile(ctx context.Context, model *document.Model, outputPath string) error {
	artifact, err := e.Render(ctx, model)
	if err != nil {
		return err
	}
	return artifact.WriteFile(outputPath)
}

// RenderBytes renders a model and returns the artifact bytes
func (e *Engine) RenderBytes(ctx context.Context, model *document.Model) ([]byte, error) {
	artifact, err := e.Render(ctx, model)
	if err != nil {
		return nil, err
	}
	return artifact.Bytes(), nil
}

// WithOptions returns a new engine with the specified options
func (e *Engine) WithOptions(options Options) *Engine {
	return NewWithOptions(options)
}

// WithOption returns a new engine with the specified option set
func (e *Engine) WithOption(option Option) *Engine {
	newOptions := e.options
	option(&newOptions)
	return NewWithOptions(newOptions)
}

// AddResourcePath adds a path to search for chrome assets
func (e *Engine) AddResourcePath(path string) *Engine {
	newOptions := e.options
	newOptions.ResourcePaths = append(newOptions.ResourcePaths, path)
	return NewWithOptions(newOptions)
}

func (e *Engine) logger() *slog.Logger {
	if e.options.Logger != nil {
		return e.options.Logger
	}
	return slog.Default()
}
