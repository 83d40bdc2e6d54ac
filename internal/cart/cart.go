// Package cart holds the shopper's cart: an ordered, duplicate-free list of
// items mirrored to local persistence on every change.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"beatstore/internal/localstore"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/platform/sentinel"
)

// Metrics receives cart counters.
type Metrics interface {
	IncrementItemsAdded()
	IncrementDuplicateAdds()
	IncrementPersistFailures()
	SetItems(count int)
}

// Store is the session's cart.
type Store struct {
	mu      sync.Mutex
	items   []Item
	local   localstore.Store
	logger  *slog.Logger
	metrics Metrics
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func New(local localstore.Store, opts ...Option) (*Store, error) {
	if local == nil {
		return nil, errors.New("local store is required")
	}
	s := &Store{
		local:  local,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Load replaces the in-memory cart with the persisted one. A missing or
// unreadable record leaves the cart empty.
func (s *Store) Load(ctx context.Context) {
	items, err := localstore.LoadJSON[[]Item](ctx, s.local, localstore.KeyCart)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load cart", "error", err)
		}
		return
	}
	seen := id.NewKeySet()
	for _, item := range items {
		if !item.ProductType.IsValid() || seen.Has(item.Key()) {
			continue
		}
		seen.Add(item.Key())
		s.items = append(s.items, item)
	}
}

// Add inserts item unless an entry with the same key exists, in which case it
// does nothing.
func (s *Store) Add(ctx context.Context, item Item) error {
	if !item.ProductType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid product type")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(item.Key()) >= 0 {
		if s.metrics != nil {
			s.metrics.IncrementDuplicateAdds()
		}
		return nil
	}
	s.items = append(s.items, item)
	if s.metrics != nil {
		s.metrics.IncrementItemsAdded()
	}
	s.persistLocked(ctx)
	return nil
}

// Remove deletes the entry for (productID, productType) if present.
func (s *Store) Remove(ctx context.Context, productID id.ProductID, productType id.ProductType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id.NewItemKey(productID, productType))
	if i < 0 {
		return
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.persistLocked(ctx)
}

// Clear empties the cart and deletes the persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.local.Delete(ctx, localstore.KeyCart); err != nil {
		s.persistFailed(ctx, err)
	}
	if s.metrics != nil {
		s.metrics.SetItems(0)
	}
}

// Total is the exact sum of item prices.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price)
	}
	return total
}

// Items returns a copy of the cart in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Contains(key id.ItemKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(key) >= 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexLocked(key id.ItemKey) int {
	return slices.IndexFunc(s.items, func(item Item) bool {
		return item.Key() == key
	})
}

func (s *Store) persistLocked(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	if err := localstore.SaveJSON(ctx, s.local, localstore.KeyCart, items); err != nil {
		s.persistFailed(ctx, err)
	}
	if s.metrics != nil {
		s.metrics.SetItems(len(s.items))
	}
}

func (s *Store) persistFailed(ctx context.Context, err error) {
	s.logger.ErrorContext(ctx, "failed to persist cart", "error", err)
	if s.metrics != nil {
		s.metrics.IncrementPersistFailures()
	}
}
