package pagination

import (
	"log/slog"
)

// Options represents options for the pagination engine
type Options struct {
	PageWidth  float64
	PageHeight float64
	// Margin is applied uniformly on all four sides.
	Margin             float64
	HeaderHeight       float64
	FooterHeight       float64
	RepeatColumnTitles bool
	Logger             *slog.Logger
}

// Engine handles the pagination process
type Engine struct {
	options Options
}

// NewEngine creates a new pagination engine
func NewEngine() *Engine {
	return &Engine{
		options: Options{
			PageWidth:  595.28, // Default A4 width in points
			PageHeight: 841.89,
			Margin:     36,
		},
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Paginate assigns measured blocks to pages under the configured geometry.
func (e *Engine) Paginate(blocks []Measured) []*Page {
	paginator := NewPaginator(
		PageSize{
			Width:  e.options.PageWidth,
			Height: e.options.PageHeight,
			Name:   "Custom",
		},
		e.options.Margin,
		e.options.HeaderHeight,
		e.options.FooterHeight,
	)
	paginator.RepeatColumnTitles = e.options.RepeatColumnTitles
	paginator.Logger = e.options.Logger

	return paginator.Plan(blocks)
}
