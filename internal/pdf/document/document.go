// Package document adapts pdfcpu (object model, write-back) and ledongthuc/pdf
// (text extraction) into the handle shared by the viewer and the form operations.
package document

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document is an opened PDF. It is safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	data     []byte
	pctx     *model.Context
	dims     []types.Dim
	pages    map[int]*Page
	storage  *AnnotationStorage
	textRead *ledongthuc.Reader
}

// Viewport is the size of a page at a given scale
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// newConfiguration returns the pdfcpu configuration used for every read
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Open parses data as a PDF document. A maxFileSize of zero disables the size check.
func Open(ctx context.Context, data []byte, maxFileSize int64) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DocumentError{Op: "open", Err: err}
	}
	if len(data) == 0 {
		return nil, &DocumentError{Op: "open", Err: ErrEmptyDocument}
	}
	if maxFileSize > 0 && int64(len(data)) > maxFileSize {
		return nil, &DocumentError{
			Op:  "open",
			Err: fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, len(data), maxFileSize),
		}
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	pctx, err := api.ReadContext(bytes.NewReader(buf), newConfiguration())
	if err != nil {
		return nil, &DocumentError{Op: "open", Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := pctx.EnsurePageCount(); err != nil {
		return nil, &DocumentError{Op: "open", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	dims, err := pctx.PageDims()
	if err != nil {
		return nil, &DocumentError{Op: "open", Err: fmt.Errorf("failed to read page dimensions: %w", err)}
	}

	return &Document{
		data:    buf,
		pctx:    pctx,
		dims:    dims,
		pages:   make(map[int]*Page),
		storage: NewAnnotationStorage(),
	}, nil
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return d.pctx.PageCount
}

// AnnotationStorage returns the per-document storage consulted by SaveDocument
func (d *Document) AnnotationStorage() *AnnotationStorage {
	return d.storage
}

// Size returns the size of the source document in bytes
func (d *Document) Size() int {
	return len(d.data)
}

// Page returns page pageNum (1-based)
func (d *Document) Page(ctx context.Context, pageNum int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DocumentError{Op: "page", Page: pageNum, Err: err}
	}
	if pageNum < 1 || pageNum > d.NumPages() {
		return nil, &DocumentError{Op: "page", Page: pageNum, Err: ErrInvalidPage}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pages[pageNum]; ok {
		return p, nil
	}

	p := &Page{doc: d, number: pageNum}
	if pageNum <= len(d.dims) {
		p.width = d.dims[pageNum-1].Width
		p.height = d.dims[pageNum-1].Height
	}
	d.pages[pageNum] = p
	return p, nil
}

// textReader lazily opens the text extraction reader. Callers hold d.mu.
func (d *Document) textReader() (*ledongthuc.Reader, error) {
	if d.textRead != nil {
		return d.textRead, nil
	}
	r, err := ledongthuc.NewReader(bytes.NewReader(d.data), int64(len(d.data)))
	if err != nil {
		return nil, err
	}
	d.textRead = r
	return r, nil
}

// Page is one page of a Document
type Page struct {
	doc         *Document
	number      int
	width       float64
	height      float64
	annotations []Annotation
	loaded      bool
}

// Number returns the 1-based page number
func (p *Page) Number() int {
	return p.number
}

// AnnotationStorage returns the storage of the owning document
func (p *Page) AnnotationStorage() *AnnotationStorage {
	return p.doc.storage
}

// Viewport returns the page size multiplied by scale
func (p *Page) Viewport(scale float64) Viewport {
	return Viewport{
		Width:  p.width * scale,
		Height: p.height * scale,
		Scale:  scale,
	}
}

// Annotations returns the annotations of the page in /Annots order.
// The result is parsed once and cached.
func (p *Page) Annotations(ctx context.Context) ([]Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DocumentError{Op: "annotations", Page: p.number, Err: err}
	}

	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	if !p.loaded {
		annots, err := pageAnnotations(p.doc.pctx, p.number)
		if err != nil {
			return nil, &DocumentError{Op: "annotations", Page: p.number, Err: err}
		}
		p.annotations = annots
		p.loaded = true
	}

	out := make([]Annotation, len(p.annotations))
	copy(out, p.annotations)
	return out, nil
}

// Text returns the plain text content of the page
func (p *Page) Text(ctx context.Context) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", &DocumentError{Op: "text", Page: p.number, Err: err}
	}

	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &DocumentError{Op: "text", Page: p.number, Err: fmt.Errorf("text extraction panicked: %v", r)}
		}
	}()

	r, err := p.doc.textReader()
	if err != nil {
		return "", &DocumentError{Op: "text", Page: p.number, Err: err}
	}

	page := r.Page(p.number)
	if page.V.IsNull() {
		return "", nil
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", &DocumentError{Op: "text", Page: p.number, Err: err}
	}
	return content, nil
}
