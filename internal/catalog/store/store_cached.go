package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

const productKeyPrefix = "beatstore:product:"

// Backend is the authoritative catalog behind the cache.
type Backend interface {
	ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]models.Product, error)
	Upsert(ctx context.Context, p models.Product) error
}

// CachedStore is a Redis read-through cache over a Backend. Cache errors
// degrade to backend reads.
type CachedStore struct {
	next   Backend
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(next Backend, client *redis.Client, ttl time.Duration, logger *slog.Logger) (*CachedStore, error) {
	if next == nil {
		return nil, errors.New("backend is required")
	}
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}, nil
}

func productKey(key id.ItemKey) string {
	return productKeyPrefix + key.String()
}

// ByIDs serves hits from Redis and fetches misses from the backend, keeping
// request order.
func (s *CachedStore) ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	keys := make([]string, len(ids))
	for i, pid := range ids {
		keys[i] = productKey(id.NewItemKey(pid, t))
	}

	found := make(map[id.ProductID]models.Product, len(ids))
	var misses []id.ProductID
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "product cache read failed", "error", err)
		misses = ids
	} else {
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			var p models.Product
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				misses = append(misses, ids[i])
				continue
			}
			found[p.ID] = p
		}
	}

	if len(misses) > 0 {
		fetched, err := s.next.ByIDs(ctx, t, misses)
		if err != nil {
			return nil, err
		}
		pipe := s.client.Pipeline()
		for _, p := range fetched {
			found[p.ID] = p
			if raw, err := json.Marshal(p); err == nil {
				pipe.Set(ctx, productKey(p.Key()), raw, s.ttl)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			s.logger.WarnContext(ctx, "product cache write failed", "error", err)
		}
	}

	out := make([]models.Product, 0, len(found))
	for _, pid := range ids {
		if p, ok := found[pid]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Upsert writes through to the backend and evicts the cached copy.
func (s *CachedStore) Upsert(ctx context.Context, p models.Product) error {
	if err := s.next.Upsert(ctx, p); err != nil {
		return err
	}
	if err := s.client.Del(ctx, productKey(p.Key())).Err(); err != nil {
		s.logger.WarnContext(ctx, "product cache eviction failed",
			"product", p.Key().String(),
			"error", err,
		)
	}
	return nil
}
