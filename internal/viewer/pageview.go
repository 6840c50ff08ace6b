package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
)

// RenderingState tracks the progress of a page view
type RenderingState int

const (
	RenderingInitial RenderingState = iota
	RenderingRunning
	RenderingFinished
)

var (
	errNoPage       = errors.New("page view has no page")
	errAlreadyDrawn = errors.New("page view already drawn")
)

// PageViewOptions configures a PageView
type PageViewOptions struct {
	Container              *Container
	ID                     int
	Scale                  float64
	DefaultViewport        document.Viewport
	EventBus               *EventBus
	AnnotationLayerFactory AnnotationLayerFactory
	TextLayerFactory       TextLayerFactory
	RenderInteractiveForms bool
}

// PageView draws one page, with its annotation and text layers, into a container
type PageView struct {
	id                     int
	scale                  float64
	viewport               document.Viewport
	container              *Container
	eventBus               *EventBus
	annotationLayerFactory AnnotationLayerFactory
	textLayerFactory       TextLayerFactory
	renderInteractiveForms bool

	pdfPage         *document.Page
	annotationLayer *AnnotationLayer
	textLayer       *TextLayer
	state           RenderingState
}

// NewPageView creates a page view that is not bound to a page yet
func NewPageView(opts PageViewOptions) *PageView {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	return &PageView{
		id:                     opts.ID,
		scale:                  scale,
		viewport:               opts.DefaultViewport,
		container:              opts.Container,
		eventBus:               opts.EventBus,
		annotationLayerFactory: opts.AnnotationLayerFactory,
		textLayerFactory:       opts.TextLayerFactory,
		renderInteractiveForms: opts.RenderInteractiveForms,
	}
}

// ID returns the page number the view was created for
func (v *PageView) ID() int { return v.id }

// Scale returns the zoom factor
func (v *PageView) Scale() float64 { return v.scale }

// Viewport returns the scaled page size
func (v *PageView) Viewport() document.Viewport { return v.viewport }

// RenderingState returns the drawing progress
func (v *PageView) RenderingState() RenderingState { return v.state }

// PdfPage returns the bound page
func (v *PageView) PdfPage() *document.Page { return v.pdfPage }

// AnnotationLayer returns the rendered annotation layer, nil before Draw
func (v *PageView) AnnotationLayer() *AnnotationLayer { return v.annotationLayer }

// TextLayer returns the rendered text layer, nil before Draw
func (v *PageView) TextLayer() *TextLayer { return v.textLayer }

// SetPdfPage binds the view to a page and recomputes the viewport
func (v *PageView) SetPdfPage(p *document.Page) {
	v.pdfPage = p
	v.viewport = p.Viewport(v.scale)
}

// Draw renders the layers of the bound page and appends the view to its container
func (v *PageView) Draw(ctx context.Context) error {
	if v.pdfPage == nil {
		return errNoPage
	}
	if v.state != RenderingInitial {
		return errAlreadyDrawn
	}
	v.state = RenderingRunning

	if v.annotationLayerFactory != nil {
		builder := v.annotationLayerFactory.CreateAnnotationLayerBuilder(v.pdfPage, v.renderInteractiveForms)
		layer, err := builder.Render(ctx)
		if err != nil {
			v.state = RenderingInitial
			return fmt.Errorf("annotation layer: %w", err)
		}
		v.annotationLayer = layer
	}

	if v.textLayerFactory != nil {
		layer, err := v.textLayerFactory.CreateTextLayerBuilder(v.pdfPage).Render(ctx)
		if err != nil {
			// Form editing does not depend on the text layer.
			log.Printf("Text layer unavailable for page %d: %v", v.id, err)
			layer = &TextLayer{}
		}
		v.textLayer = layer
	}

	v.state = RenderingFinished

	if v.container != nil {
		v.container.Append(v)
	}
	if v.eventBus != nil {
		v.eventBus.Dispatch(EventPageRendered, Event{PageNumber: v.id})
	}
	return nil
}
