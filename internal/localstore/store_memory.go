package localstore

import (
	"context"
	"sync"

	"beatstore/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in process memory. One instance corresponds
// to one visitor.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[Key][]byte
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{docs: make(map[Key][]byte)}
}

func (s *InMemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.docs[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *InMemoryStore) Set(_ context.Context, key Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), value...)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}
