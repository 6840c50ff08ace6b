package pdf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-form/internal/download"
	"github.com/a3tai/mcp-pdf-form/internal/form"
	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
	"github.com/a3tai/mcp-pdf-form/internal/viewer"
)

// ErrNoDocument is returned by form operations before a document was loaded
var ErrNoDocument = errors.New("no document loaded")

// ServiceOptions configures a Service
type ServiceOptions struct {
	MaxFileSize int64
	Scale       float64
	// OutputDirectory receives saved forms; empty keeps them in memory only
	OutputDirectory string
	DownloadName    string
	RevokeDelay     time.Duration
}

// Service holds the single loaded form and orchestrates the viewer, the form
// reader and writer, and the exporter.
type Service struct {
	mu          sync.RWMutex
	maxFileSize int64
	viewer      *viewer.Viewer
	validator   *Validator
	exporter    *form.Exporter
	doc         *document.Document
	source      string
}

// NewService creates a new PDF form service with all components
func NewService(opts ServiceOptions) (*Service, error) {
	dlOpts := download.Options{RevokeDelay: opts.RevokeDelay}
	if opts.OutputDirectory != "" {
		sink, err := download.NewFileSink(opts.OutputDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to create download sink: %w", err)
		}
		dlOpts.Sink = sink
	}

	return &Service{
		maxFileSize: opts.MaxFileSize,
		viewer: viewer.New(viewer.Options{
			Scale:       opts.Scale,
			MaxFileSize: opts.MaxFileSize,
		}),
		validator: NewValidator(opts.MaxFileSize),
		exporter:  form.NewExporter(download.NewDownloader(dlOpts), opts.DownloadName),
	}, nil
}

// Load opens data and draws every page, replacing any previously loaded form
func (s *Service) Load(ctx context.Context, data []byte, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.viewer.Load(ctx, data)
	if err != nil {
		return err
	}

	s.doc = doc
	s.source = source
	log.Printf("Loaded %s: %d pages, %d controls", source, doc.NumPages(), s.viewer.Container().Len())
	return nil
}

// LoadFile validates and loads the form file at path
func (s *Service) LoadFile(ctx context.Context, path string) error {
	data, report, err := s.validator.ReadFile(path)
	if err != nil {
		return fmt.Errorf("invalid form file: %w", err)
	}
	if !report.HasForm {
		log.Printf("Warning: %s has no AcroForm, reads will return no fields", path)
	}
	return s.Load(ctx, data, path)
}

// Document returns the loaded document, or nil
func (s *Service) Document() *document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Viewer returns the viewer drawing the form
func (s *Service) Viewer() *viewer.Viewer {
	return s.viewer
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// ReadForm returns the current value of every form control
func (s *Service) ReadForm(ctx context.Context) (*ReadFormResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil {
		return nil, ErrNoDocument
	}

	values, err := form.ReadFormData(ctx, s.doc, s.viewer.Container())
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(values); err == nil {
		log.Printf("Read form data: %s", encoded)
	}

	return &ReadFormResult{
		Source: s.source,
		Values: values,
		Count:  len(values),
	}, nil
}

// WriteForm assigns req.Values to the matching controls and returns the resulting form state
func (s *Service) WriteForm(ctx context.Context, req WriteFormRequest) (*WriteFormResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoDocument
	}

	container := s.viewer.Container()
	if err := form.WriteFormData(ctx, s.doc, container, req.Values); err != nil {
		return nil, err
	}

	values, err := form.ReadFormData(ctx, s.doc, container)
	if err != nil {
		return nil, err
	}

	result := &WriteFormResult{
		Requested: len(req.Values),
		Values:    values,
	}
	seen := make(map[string]bool, len(req.Values))
	for _, v := range req.Values {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		if _, ok := container.Control(v.ID); ok {
			result.Applied++
		} else {
			result.Ignored = append(result.Ignored, v.ID)
		}
	}

	return result, nil
}

// SaveForm exports the form with its current values
func (s *Service) SaveForm(ctx context.Context, req SaveFormRequest) (*SaveFormResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNoDocument
	}

	dl, err := s.exporter.DownloadPDF(ctx, s.doc, s.viewer.Container(), req.FileName)
	if err != nil {
		return nil, err
	}
	return &SaveFormResult{Download: dl}, nil
}

// FormInfo describes the loaded form, its pages and the available tools
func (s *Service) FormInfo(ctx context.Context, serverName, version string) (*FormInfoResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil {
		return nil, ErrNoDocument
	}

	container := s.viewer.Container()
	pages := make([]PageInfo, 0, s.doc.NumPages())
	for _, view := range container.PageViews() {
		info := PageInfo{
			Number:   view.ID(),
			Viewport: view.Viewport(),
		}
		annots, err := view.PdfPage().Annotations(ctx)
		if err != nil {
			return nil, err
		}
		info.Annotations = len(annots)
		for _, a := range annots {
			if !a.IsWidget() {
				continue
			}
			info.Widgets++
			if _, ok := container.Control(a.ID); ok {
				info.Controls++
			}
		}
		pages = append(pages, info)
	}

	return &FormInfoResult{
		ServerName:     serverName,
		Version:        version,
		Source:         s.source,
		Size:           s.doc.Size(),
		MaxFileSize:    s.maxFileSize,
		PageCount:      s.doc.NumPages(),
		Pages:          pages,
		AvailableTools: availableTools(),
		UsageGuidance:  usageGuidance,
	}, nil
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "read",
			Description: "Read the current value of every form field",
			Usage:       "Use this tool to see which fields the form has and what they currently hold.",
			Parameters:  "none",
		},
		{
			Name:        "write",
			Description: "Fill form fields by annotation id",
			Usage: "Use this tool to set field values. Checkboxes and radio buttons take a boolean, " +
				"other fields take text. Unknown ids are ignored.",
			Parameters: "values (optional): array of {id, value}; a demo set is written when omitted",
		},
		{
			Name:        "save",
			Description: "Export the filled form as a PDF",
			Usage:       "Use this tool once the fields hold the wanted values.",
			Parameters:  "file_name (optional): name of the produced file (default newFile.pdf)",
		},
		{
			Name:        "form_info",
			Description: "Describe the loaded form",
			Usage:       "Use this tool to get page sizes and the number of fields per page.",
			Parameters:  "none",
		},
	}
}

const usageGuidance = `PDF Form Server Usage Guide:

1. Call 'read' to list the fields. Each record carries the annotation id
   (for example "285R"), the current value, the control type and the field name.

2. Call 'write' with an array of {id, value} records:
   - checkbox and radio controls: true / false
   - text and choice controls: a string
   Ids that match no field are ignored. Read-only fields keep their value.

3. Call 'read' again to check the result.

4. Call 'save' to produce the filled PDF.`
