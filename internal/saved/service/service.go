package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	catalog "beatstore/internal/catalog/models"
	"beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/requestcontext"
)

// Store persists saved items. Add and Remove must be idempotent.
type Store interface {
	Add(ctx context.Context, item models.SavedItem) (bool, error)
	Remove(ctx context.Context, userID id.UserID, key id.ItemKey) error
	ListByUser(ctx context.Context, userID id.UserID) ([]models.SavedItem, error)
}

// Catalog resolves product snapshots for saved-item views.
type Catalog interface {
	ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]catalog.Product, error)
}

// AddedCounter is notified when a saved item is newly inserted.
type AddedCounter interface {
	IncrementSavedItemsAdded()
}

// Service owns the server-side saved-items list of authenticated users.
type Service struct {
	store   Store
	catalog Catalog
	logger  *slog.Logger
	metrics AddedCounter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m AddedCounter) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, catalog Catalog, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("saved item store is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	svc := &Service{
		store:   store,
		catalog: catalog,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns the user's saved items with product snapshots, oldest first.
// Items whose product no longer exists are omitted from the view.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]models.SavedItemView, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list saved items")
	}

	idsByType := make(map[id.ProductType][]id.ProductID)
	for _, item := range items {
		idsByType[item.ItemType] = append(idsByType[item.ItemType], item.ItemID)
	}
	products := make(map[id.ItemKey]catalog.Product, len(items))
	for _, t := range id.ProductTypes {
		ids := idsByType[t]
		if len(ids) == 0 {
			continue
		}
		found, err := s.catalog.ByIDs(ctx, t, ids)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load saved products")
		}
		for k, p := range catalog.ByKey(found) {
			products[k] = p
		}
	}

	views := make([]models.SavedItemView, 0, len(items))
	for _, item := range items {
		product, ok := products[item.Key()]
		if !ok {
			s.logger.WarnContext(ctx, "saved item references missing product",
				"user_id", userID.String(),
				"item", item.Key().String(),
			)
			continue
		}
		views = append(views, models.SavedItemView{ItemID: item.ItemID, ItemType: item.ItemType, ItemData: product})
	}
	return views, nil
}

// Add saves an item for the user. Saving an already-saved item succeeds
// without changes; saving a product the catalog does not know is NotFound.
func (s *Service) Add(ctx context.Context, userID id.UserID, itemID id.ProductID, itemType string) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	t, err := id.ParseProductType(itemType)
	if err != nil {
		return err
	}
	if itemID <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid item id")
	}
	found, err := s.catalog.ByIDs(ctx, t, []id.ProductID{itemID})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up product")
	}
	if len(found) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	created, err := s.store.Add(ctx, models.SavedItem{
		UserID:    userID,
		ItemID:    itemID,
		ItemType:  t,
		CreatedAt: requestcontext.Now(ctx).UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save item")
	}
	if created && s.metrics != nil {
		s.metrics.IncrementSavedItemsAdded()
	}
	s.logger.InfoContext(ctx, "saved item added",
		"user_id", userID.String(),
		"item", id.NewItemKey(itemID, t).String(),
		"created", created,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Remove unsaves an item. Removing an item that is not saved succeeds.
func (s *Service) Remove(ctx context.Context, userID id.UserID, itemID id.ProductID, itemType string) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	t, err := id.ParseProductType(itemType)
	if err != nil {
		return err
	}
	if itemID <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid item id")
	}
	if err := s.store.Remove(ctx, userID, id.NewItemKey(itemID, t)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove saved item")
	}
	return nil
}
