package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// StubBlobStorage is an in-memory BlobStorage for development and tests
type StubBlobStorage struct {
	// BaseURL is used when fabricating signed URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
	mtimes  map[string]time.Time
}

// NewStubBlobStorage creates an empty in-memory storage
func NewStubBlobStorage() *StubBlobStorage {
	return &StubBlobStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
		mtimes:  make(map[string]time.Time),
	}
}

// List returns the objects under a key prefix, sorted by key
func (s *StubBlobStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if prefix == "" {
		return nil, errors.New("list prefix is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var objects []ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{
				Key:          key,
				Size:         int64(len(data)),
				LastModified: s.mtimes[key],
			})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// SignedURL fabricates a download URL for a key
func (s *StubBlobStorage) SignedURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(time.Hour)
	return s.BaseURL + "/" + key + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// Upload stores data under a key
func (s *StubBlobStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	s.mtimes[key] = time.Now()
	return nil
}

// Delete removes an object; missing keys are ignored
func (s *StubBlobStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.mtimes, key)
	return nil
}

// Ensure StubBlobStorage implements BlobStorage
var _ BlobStorage = (*StubBlobStorage)(nil)
