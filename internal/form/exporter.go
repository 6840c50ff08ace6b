package form

import (
	"context"
	"fmt"

	"github.com/a3tai/mcp-pdf-form/internal/download"
	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
	"github.com/a3tai/mcp-pdf-form/internal/viewer"
)

// Exporter saves documents with the current control values and hands them to a downloader
type Exporter struct {
	downloader  *download.Downloader
	defaultName string
}

// NewExporter creates an exporter. An empty defaultName falls back to download.DefaultFileName.
func NewExporter(downloader *download.Downloader, defaultName string) *Exporter {
	if defaultName == "" {
		defaultName = download.DefaultFileName
	}
	return &Exporter{downloader: downloader, defaultName: defaultName}
}

// SaveDocument captures the current form values into the annotation storage
// of doc and returns the serialized document.
func (e *Exporter) SaveDocument(ctx context.Context, doc *document.Document, container *viewer.Container) ([]byte, error) {
	data, err := ReadFormData(ctx, doc, container)
	if err != nil {
		return nil, err
	}

	storage := doc.AnnotationStorage()
	for _, item := range data {
		storage.SetValue(item.ID, item.Value)
	}

	out, err := doc.SaveDocument(ctx, storage)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return out, nil
}

// DownloadPDF saves doc with the current form values and downloads it as fileName
func (e *Exporter) DownloadPDF(ctx context.Context, doc *document.Document, container *viewer.Container,
	fileName string,
) (*download.Download, error) {
	if fileName == "" {
		fileName = e.defaultName
	}

	data, err := e.SaveDocument(ctx, doc, container)
	if err != nil {
		return nil, err
	}

	return e.downloader.DownloadAsFile(ctx, data, fileName, download.MIMETypePDF)
}
