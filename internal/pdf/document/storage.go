package document

import (
	"sort"
	"sync"
)

// AnnotationStorage maps annotation ids to values that override the
// field values stored in the document when it is saved.
type AnnotationStorage struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewAnnotationStorage creates an empty storage
func NewAnnotationStorage() *AnnotationStorage {
	return &AnnotationStorage{values: make(map[string]any)}
}

// GetValue returns the stored value for key, or defaultValue when none is set
func (s *AnnotationStorage) GetValue(key string, defaultValue any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key]; ok {
		return v
	}
	return defaultValue
}

// SetValue stores value under key
func (s *AnnotationStorage) SetValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Has reports whether a value is stored under key
func (s *AnnotationStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Size returns the number of stored values
func (s *AnnotationStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Serializable returns a snapshot of the stored values
func (s *AnnotationStorage) Serializable() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Keys returns the stored ids in sorted order
func (s *AnnotationStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
