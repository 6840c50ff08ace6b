// Package viewer loads a PDF document and draws its pages, with interactive
// form controls, into a container that the form operations query by annotation id.
package viewer

import (
	"context"
	"fmt"
	"sync"

	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
)

// DefaultScale is the zoom factor applied to every page view
const DefaultScale = 1.2

// Options configures a Viewer
type Options struct {
	Scale                   float64
	MaxFileSize             int64
	DisableInteractiveForms bool
	AnnotationLayerFactory  AnnotationLayerFactory
	TextLayerFactory        TextLayerFactory
}

// Viewer owns the event bus and the container its page views are drawn into
type Viewer struct {
	scale                  float64
	maxFileSize            int64
	renderInteractiveForms bool
	annotationLayerFactory AnnotationLayerFactory
	textLayerFactory       TextLayerFactory
	eventBus               *EventBus

	mu        sync.RWMutex
	container *Container
}

// New creates a viewer with its own event bus and container
func New(opts Options) *Viewer {
	v := &Viewer{
		scale:                  opts.Scale,
		maxFileSize:            opts.MaxFileSize,
		renderInteractiveForms: !opts.DisableInteractiveForms,
		annotationLayerFactory: opts.AnnotationLayerFactory,
		textLayerFactory:       opts.TextLayerFactory,
		eventBus:               NewEventBus(),
		container:              NewContainer(),
	}
	if v.scale <= 0 {
		v.scale = DefaultScale
	}
	if v.annotationLayerFactory == nil {
		v.annotationLayerFactory = DefaultAnnotationLayerFactory{}
	}
	if v.textLayerFactory == nil {
		v.textLayerFactory = DefaultTextLayerFactory{}
	}
	return v
}

// EventBus returns the bus page views dispatch on
func (v *Viewer) EventBus() *EventBus { return v.eventBus }

// Container returns the container page views are drawn into
func (v *Viewer) Container() *Container {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.container
}

// Scale returns the zoom factor
func (v *Viewer) Scale() float64 { return v.scale }

// Load opens src and draws every page of it
func (v *Viewer) Load(ctx context.Context, src []byte) (*document.Document, error) {
	doc, err := document.Open(ctx, src, v.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return v.LoadDocument(ctx, doc)
}

// LoadDocument draws the pages of an opened document, one at a time and in
// page order, into a new container. The new container replaces the current
// one only once every page is drawn.
func (v *Viewer) LoadDocument(ctx context.Context, doc *document.Document) (*document.Document, error) {
	container := NewContainer()

	for i := 1; i <= doc.NumPages(); i++ {
		page, err := doc.Page(ctx, i)
		if err != nil {
			return nil, err
		}

		view := NewPageView(PageViewOptions{
			Container:              container,
			ID:                     i,
			Scale:                  v.scale,
			DefaultViewport:        page.Viewport(v.scale),
			EventBus:               v.eventBus,
			AnnotationLayerFactory: v.annotationLayerFactory,
			TextLayerFactory:       v.textLayerFactory,
			RenderInteractiveForms: v.renderInteractiveForms,
		})

		view.SetPdfPage(page)
		if err := view.Draw(ctx); err != nil {
			return nil, fmt.Errorf("failed to draw page %d: %w", i, err)
		}
	}

	v.mu.Lock()
	v.container = container
	v.mu.Unlock()

	v.eventBus.Dispatch(EventPagesLoaded, Event{PagesCount: doc.NumPages()})
	return doc, nil
}
