// Package localstore persists the anonymous visitor's cart and saved items as
// whole JSON documents under fixed keys.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"beatstore/pkg/platform/sentinel"
)

// Key names one persisted document.
type Key string

const (
	KeyCart           Key = "cart"
	KeySavedBeats     Key = "saved_beats"
	KeySavedSoundKits Key = "saved_sound_kits"
)

// Store is a whole-value key/value store. Get returns sentinel.ErrNotFound
// when the key is absent. Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
}

// LoadJSON reads and decodes the document under key.
func LoadJSON[T any](ctx context.Context, s Store, key Key) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// SaveJSON encodes v and replaces the document under key.
func SaveJSON[T any](ctx context.Context, s Store, key Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// LoadJSONOrZero is LoadJSON that treats a missing key as the zero value.
func LoadJSONOrZero[T any](ctx context.Context, s Store, key Key) (T, error) {
	v, err := LoadJSON[T](ctx, s, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}
