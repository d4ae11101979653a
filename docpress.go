package docpress

import (
	"github.com/docpress/docpress/internal/assemble"
	"github.com/docpress/docpress/internal/document"
	"github.com/docpress/docpress/pkg/api"
)

type Engine = api.Engine
type Options = api.Options
type Option = api.Option

type Model = document.Model
type Record = document.Record
type RawSection = document.RawSection
type RawSubsection = document.RawSubsection
type RawItem = document.RawItem
type RawEntry = document.RawEntry
type Party = document.Party
type Kind = document.Kind
type Artifact = assemble.Artifact

func New() *Engine                           { return api.New() }
func NewWithOptions(options Options) *Engine { return api.NewWithOptions(options) }
func DefaultOptions() Options                { return api.DefaultOptions() }

// Build normalizes an upstream record into the canonical document model.
func Build(rec Record, kind Kind) (*Model, error) { return document.Build(rec, kind) }

const (
	KindFlatInvoice      = document.KindFlatInvoice
	KindSectionedInvoice = document.KindSectionedInvoice
	KindQuotation        = document.KindQuotation
	KindBillOfQuantities = document.KindBillOfQuantities
	KindDeliveryNote     = document.KindDeliveryNote
	KindStatement        = document.KindStatement
)

var (
	WithPageSize       = api.WithPageSize
	WithMargin         = api.WithMargin
	WithLocale         = api.WithLocale
	WithRenderTimeout  = api.WithRenderTimeout
	WithDebug          = api.WithDebug
	WithLogger         = api.WithLogger
	WithResourcePath   = api.WithResourcePath
	WithPageSizeA4     = api.WithPageSizeA4
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPageSizeLegal  = api.WithPageSizeLegal
)

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight
)
