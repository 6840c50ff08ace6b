// Package download hands generated documents over as downloadable files:
// a blob registered under an object URL, clicked through a download anchor,
// and revoked after a delay.
package download

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Blob is an immutable chunk of bytes with a media type
type Blob struct {
	Data []byte
	Type string
}

// NewBlob copies data into a blob
func NewBlob(data []byte, mimeType string) *Blob {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Blob{Data: buf, Type: mimeType}
}

// Size returns the blob length in bytes
func (b *Blob) Size() int { return len(b.Data) }

// BlobStore maps object URLs to blobs
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]*Blob
}

// NewBlobStore creates an empty store
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]*Blob)}
}

// CreateObjectURL registers blob and returns its URL ("blob:<uuid>")
func (s *BlobStore) CreateObjectURL(blob *Blob) string {
	url := "blob:" + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[url] = blob
	return url
}

// Open returns the blob registered under url
func (s *BlobStore) Open(url string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRevoked, url)
	}
	return blob, nil
}

// RevokeObjectURL releases url. Revoking an unknown URL is a no-op.
func (s *BlobStore) RevokeObjectURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, url)
}

// Len returns the number of live object URLs
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
