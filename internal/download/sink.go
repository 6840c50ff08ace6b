package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives the blob behind a clicked download anchor
type Sink interface {
	Save(ctx context.Context, anchor Anchor, blob *Blob) (location string, err error)
}

// FileSink writes downloads into an output directory
type FileSink struct {
	validator *PathValidator
}

// NewFileSink creates a sink writing into directory
func NewFileSink(directory string) (*FileSink, error) {
	validator, err := NewPathValidator(directory)
	if err != nil {
		return nil, err
	}
	return &FileSink{validator: validator}, nil
}

// Directory returns the output directory
func (s *FileSink) Directory() string {
	return s.validator.Directory()
}

// Save writes the blob to <directory>/<anchor.Download>, replacing any existing file
func (s *FileSink) Save(ctx context.Context, anchor Anchor, blob *Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	location, err := s.validator.ResolveFileName(anchor.Download)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(location)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+anchor.Download+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close download: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set download permissions: %w", err)
	}
	if err := os.Rename(tmpName, location); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}

	return location, nil
}
