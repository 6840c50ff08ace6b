package download

import (
	"context"
	"fmt"
	"log"
	"time"
)

const (
	// DefaultFileName is used when a download has no name
	DefaultFileName = "newFile.pdf"
	// MIMETypePDF is the media type of exported documents
	MIMETypePDF = "application/pdf"
	// DefaultRevokeDelay is how long an object URL stays valid after the click
	DefaultRevokeDelay = 1500 * time.Millisecond
)

// Anchor is the transient download link clicked for each download
type Anchor struct {
	Download string
	Href     string
	Dataset  map[string]string
}

// Download describes a completed download
type Download struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	URL      string `json:"url"`
	Location string `json:"location,omitempty"`
	Size     int    `json:"size"`
	// Data is the downloaded content
	Data []byte `json:"-"`
}

// Options configures a Downloader
type Options struct {
	// Sink receives the downloads; nil keeps them in the blob store only
	Sink Sink
	// RevokeDelay defaults to DefaultRevokeDelay. A negative delay keeps object URLs alive.
	RevokeDelay time.Duration
}

// Downloader turns byte buffers into downloads
type Downloader struct {
	blobs       *BlobStore
	sink        Sink
	revokeDelay time.Duration
}

// NewDownloader creates a downloader
func NewDownloader(opts Options) *Downloader {
	delay := opts.RevokeDelay
	if delay == 0 {
		delay = DefaultRevokeDelay
	}
	return &Downloader{
		blobs:       NewBlobStore(),
		sink:        opts.Sink,
		revokeDelay: delay,
	}
}

// Blobs returns the object URL registry
func (d *Downloader) Blobs() *BlobStore {
	return d.blobs
}

// DownloadAsFile wraps data in a blob, clicks a download anchor for it and
// schedules the revocation of its object URL.
func (d *Downloader) DownloadAsFile(ctx context.Context, data []byte, fileName, mimeType string) (*Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fileName == "" {
		fileName = DefaultFileName
	}

	blob := NewBlob(data, mimeType)
	url := d.blobs.CreateObjectURL(blob)

	anchor := Anchor{
		Download: fileName,
		Href:     url,
		Dataset:  map[string]string{"downloadurl": fmt.Sprintf("%s:%s:%s", mimeType, fileName, url)},
	}

	result := &Download{
		Name:     fileName,
		MIMEType: mimeType,
		URL:      url,
		Size:     blob.Size(),
		Data:     blob.Data,
	}

	if d.sink != nil {
		location, err := d.sink.Save(ctx, anchor, blob)
		if err != nil {
			d.blobs.RevokeObjectURL(url)
			return nil, fmt.Errorf("failed to save download %s: %w", fileName, err)
		}
		result.Location = location
	}

	if d.revokeDelay > 0 {
		time.AfterFunc(d.revokeDelay, func() {
			d.blobs.RevokeObjectURL(url)
		})
	}

	log.Printf("Downloaded %s (%d bytes) as %s", fileName, result.Size, url)
	return result, nil
}
