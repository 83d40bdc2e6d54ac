package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
)

// InMemoryStore keeps saved items per user. Add and Remove are idempotent so
// concurrent tabs of the same user cannot corrupt the list.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[id.UserID]map[id.ItemKey]time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{items: make(map[id.UserID]map[id.ItemKey]time.Time)}
}

// Add inserts the item unless it is already present and reports whether a row
// was created.
func (s *InMemoryStore) Add(_ context.Context, item models.SavedItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userItems, ok := s.items[item.UserID]
	if !ok {
		userItems = make(map[id.ItemKey]time.Time)
		s.items[item.UserID] = userItems
	}
	if _, exists := userItems[item.Key()]; exists {
		return false, nil
	}
	userItems[item.Key()] = item.CreatedAt
	return true, nil
}

// Remove deletes the item if present; removing an absent item is not an error.
func (s *InMemoryStore) Remove(_ context.Context, userID id.UserID, key id.ItemKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userItems, ok := s.items[userID]; ok {
		delete(userItems, key)
	}
	return nil
}

// ListByUser returns the user's items oldest first.
func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]models.SavedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userItems := s.items[userID]
	out := make([]models.SavedItem, 0, len(userItems))
	for key, createdAt := range userItems {
		out = append(out, models.SavedItem{
			UserID:    userID,
			ItemID:    key.ID,
			ItemType:  key.Type,
			CreatedAt: createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Key().String() < out[j].Key().String()
	})
	return out, nil
}
