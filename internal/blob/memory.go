package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores a copy of r's content under key.
func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader) error {
	k, err := SanitizeKey(key)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[k] = data
	s.mu.Unlock()
	return nil
}

// Get returns a reader over the blob stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	k, err := SanitizeKey(key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[k]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blob %q: %w", key, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the blob stored under key.
func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	k, err := SanitizeKey(key)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[k]
	delete(s.blobs, k)
	return ok, nil
}

// List returns the sorted keys starting with prefix.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
