package store

import (
	"context"
	"sync"

	"beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

// InMemoryStore keeps products in a map; used by tests and the dev server.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[id.ItemKey]models.Product
}

func NewInMemory(seed ...models.Product) *InMemoryStore {
	s := &InMemoryStore{products: make(map[id.ItemKey]models.Product, len(seed))}
	for _, p := range seed {
		s.products[p.Key()] = p
	}
	return s
}

// ByIDs returns the products of type t with the given ids, in request order.
// Unknown ids are skipped.
func (s *InMemoryStore) ByIDs(_ context.Context, t id.ProductType, ids []id.ProductID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(ids))
	for _, pid := range ids {
		if p, ok := s.products[id.NewItemKey(pid, t)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.Key()] = p
	return nil
}
