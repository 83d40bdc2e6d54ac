package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

func TestCachedStoreDegradesWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	backend := NewInMemory(models.Product{ID: 4, Type: id.ProductTypeBeat, Title: "Four", Price: decimal.RequireFromString("4")})
	s, err := NewCached(backend, client, time.Minute, nil)
	require.NoError(t, err)

	products, err := s.ByIDs(context.Background(), id.ProductTypeBeat, []id.ProductID{4})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Four", products[0].Title)

	require.NoError(t, s.Upsert(context.Background(), models.Product{ID: 5, Type: id.ProductTypeBeat, Title: "Five"}))
}

func TestNewCachedValidation(t *testing.T) {
	_, err := NewCached(nil, redis.NewClient(&redis.Options{}), time.Minute, nil)
	assert.Error(t, err)
	_, err = NewCached(NewInMemory(), nil, time.Minute, nil)
	assert.Error(t, err)
}
