// Package blob is the object-storage boundary: path-addressed upload,
// download and delete for file attachments and avatars. Production runs on
// an S3-compatible backend; tests use the in-memory store.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// Info describes a stored blob.
type Info struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	// URL is publicly resolvable; it is returned to the client on upload.
	URL string `json:"url,omitempty"`
}

// Store is the minimal surface the handlers need. Keys map to object keys
// directly, single bucket.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps blobs in a map; used by tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	data        []byte
	contentType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Put(_ context.Context, key string, r io.Reader, contentType string) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}
	s.mu.Lock()
	s.blobs[key] = memoryBlob{data: data, contentType: contentType}
	s.mu.Unlock()
	return Info{Key: key, Size: int64(len(data)), ContentType: contentType, URL: "memory://" + key}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Info, io.ReadCloser, error) {
	s.mu.RLock()
	b, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return Info{}, nil, fmt.Errorf("blob %s not found", key)
	}
	info := Info{Key: key, Size: int64(len(b.data)), ContentType: b.contentType, URL: "memory://" + key}
	return info, io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored blobs; test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
