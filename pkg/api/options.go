package api

import (
	"log/slog"
	"time"
)

// Options represents configuration options for the document render engine
type Options struct {
	// Page dimensions in points
	PageWidth  float64
	PageHeight float64
	// Margin is uniform on all four sides; content height available to the
	// planner is always PageHeight - 2*Margin minus the chrome bands.
	Margin float64

	// Locale is the BCP 47 tag driving number and currency formatting.
	Locale string

	// RenderTimeout bounds every blocking render stage (logo fetch, raster
	// capture). Zero disables the bound.
	RenderTimeout time.Duration

	// Debug enables verbose per-page log records
	Debug bool

	// Logger receives structured render telemetry; nil means slog.Default()
	Logger *slog.Logger

	// Resource paths searched for local chrome assets (logo files)
	ResourcePaths []string
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// Default to A4 paper size (595.28 x 841.89 points)
		PageWidth:  PageSizeA4Width,
		PageHeight: PageSizeA4Height,

		// Default half-inch margin
		Margin: 36,

		Locale: "en",

		RenderTimeout: 30 * time.Second,

		Debug: false,

		ResourcePaths: []string{},
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargin sets the uniform page margin
func WithMargin(margin float64) Option {
	return func(o *Options) {
		o.Margin = margin
	}
}

// WithLocale sets the formatting locale
func WithLocale(locale string) Option {
	return func(o *Options) {
		o.Locale = locale
	}
}

// WithRenderTimeout bounds blocking render stages
func WithRenderTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.RenderTimeout = d
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithResourcePath adds a path to search for chrome assets
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// Standard page sizes in points (1/72 inch)
const (
	// A series
	PageSizeA3Width  = 841.89
	PageSizeA3Height = 1190.55
	PageSizeA4Width  = 595.28
	PageSizeA4Height = 841.89
	PageSizeA5Width  = 419.53
	PageSizeA5Height = 595.28

	// US Letter and Legal
	PageSizeLetterWidth  = 612
	PageSizeLetterHeight = 792
	PageSizeLegalWidth   = 612
	PageSizeLegalHeight  = 1008
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}
