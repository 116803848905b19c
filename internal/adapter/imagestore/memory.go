package imagestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps uploads in memory. Used in tests and mock mode.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores the content and returns a mock URL.
func (s *MemoryStore) Upload(_ context.Context, content []byte, _, filename string) (string, error) {
	if len(content) > MaxUploadBytes {
		return "", fmt.Errorf("image exceeds %d byte limit", MaxUploadBytes)
	}

	key := uuid.New().String()
	s.mu.Lock()
	s.objects[key] = content
	s.mu.Unlock()

	return fmt.Sprintf("mock://images/%s/%s", key, filename), nil
}

// Get returns stored content by the key embedded in the URL. Test helper.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[key]
	return content, ok
}

// Len reports how many objects have been stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
