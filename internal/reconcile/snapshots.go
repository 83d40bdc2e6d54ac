package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"

	catalog "beatstore/internal/catalog/models"
	"beatstore/internal/localstore"
	id "beatstore/pkg/domain"
)

var snapshotKeys = map[id.ProductType]localstore.Key{
	id.ProductTypeBeat:     localstore.KeySavedBeats,
	id.ProductTypeSoundKit: localstore.KeySavedSoundKits,
}

// snapshotStore keeps denormalized product snapshots of locally saved items,
// one document per product type.
type snapshotStore struct {
	local localstore.Store
}

// load returns all snapshots, beats first, each type in insertion order.
// Unreadable documents are reported but the readable ones are still returned.
func (s snapshotStore) load(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	var errs []error
	for _, t := range id.ProductTypes {
		products, err := s.loadType(ctx, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, products...)
	}
	return out, errors.Join(errs...)
}

func (s snapshotStore) loadType(ctx context.Context, t id.ProductType) ([]catalog.Product, error) {
	products, err := localstore.LoadJSONOrZero[[]catalog.Product](ctx, s.local, snapshotKeys[t])
	if err != nil {
		return nil, fmt.Errorf("load %s snapshots: %w", t, err)
	}
	return products, nil
}

// put appends p unless a snapshot with its key exists.
func (s snapshotStore) put(ctx context.Context, p catalog.Product) error {
	products, err := s.loadType(ctx, p.Type)
	if err != nil {
		products = nil
	}
	if slices.ContainsFunc(products, func(existing catalog.Product) bool {
		return existing.Key() == p.Key()
	}) {
		return nil
	}
	return localstore.SaveJSON(ctx, s.local, snapshotKeys[p.Type], append(products, p))
}

func (s snapshotStore) remove(ctx context.Context, key id.ItemKey) error {
	products, err := s.loadType(ctx, key.Type)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(products, func(p catalog.Product) bool {
		return p.Key() == key
	})
	if i < 0 {
		return nil
	}
	return localstore.SaveJSON(ctx, s.local, snapshotKeys[key.Type], slices.Delete(products, i, i+1))
}
