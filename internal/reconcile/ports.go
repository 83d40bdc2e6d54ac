package reconcile

import (
	"context"

	"beatstore/internal/cart"
	catalog "beatstore/internal/catalog/models"
	saved "beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
)

// SavedItemsAPI is the authenticated user's server-side saved list.
// Add and Remove are idempotent. Implementations return
// sentinel.ErrUnauthorized when the session is not accepted.
type SavedItemsAPI interface {
	List(ctx context.Context) ([]saved.SavedItemView, error)
	Add(ctx context.Context, key id.ItemKey) error
	Remove(ctx context.Context, key id.ItemKey) error
}

// ProductLookup fetches current product detail by id. Unknown ids are
// omitted from the result.
type ProductLookup interface {
	ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]catalog.Product, error)
}

// CartAdder receives items moved out of the saved list.
type CartAdder interface {
	Add(ctx context.Context, item cart.Item) error
}

// Metrics receives reconciliation counters.
type Metrics interface {
	ObservePass(outcome string, seconds float64)
	AddSynced(n int)
	AddSyncFailures(n int)
	IncrementFallback(source string)
	IncrementServerWriteFailure(op string)
}
