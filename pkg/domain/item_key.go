package domain

import (
	"strings"

	dErrors "beatstore/pkg/domain-errors"
)

// ItemKey is the identity of a cart entry or a saved entry: a product id is
// only unique within its product type.
type ItemKey struct {
	ID   ProductID   `json:"id"`
	Type ProductType `json:"type"`
}

// NewItemKey builds a key from its parts.
func NewItemKey(id ProductID, t ProductType) ItemKey {
	return ItemKey{ID: id, Type: t}
}

// String renders the key as "<type>:<id>".
func (k ItemKey) String() string {
	return string(k.Type) + ":" + k.ID.String()
}

// ParseItemKey parses the "<type>:<id>" form produced by String.
//
// Errors: returns CodeInvalidInput when either part is missing or invalid.
func ParseItemKey(s string) (ItemKey, error) {
	typ, rawID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ItemKey{}, dErrors.New(dErrors.CodeInvalidInput, "item key must look like <type>:<id>")
	}
	t, err := ParseProductType(typ)
	if err != nil {
		return ItemKey{}, err
	}
	pid, err := ParseProductID(rawID)
	if err != nil {
		return ItemKey{}, err
	}
	return NewItemKey(pid, t), nil
}

// KeySet is an insertion-ordered set of item keys.
type KeySet struct {
	order []ItemKey
	index map[ItemKey]struct{}
}

// NewKeySet returns a set holding keys, de-duplicated, in first-seen order.
func NewKeySet(keys ...ItemKey) *KeySet {
	s := &KeySet{index: make(map[ItemKey]struct{}, len(keys))}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts k and reports whether it was absent.
func (s *KeySet) Add(k ItemKey) bool {
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	s.order = append(s.order, k)
	return true
}

// Remove deletes k and reports whether it was present.
func (s *KeySet) Remove(k ItemKey) bool {
	if _, ok := s.index[k]; !ok {
		return false
	}
	delete(s.index, k)
	for i, existing := range s.order {
		if existing == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *KeySet) Has(k ItemKey) bool {
	_, ok := s.index[k]
	return ok
}

func (s *KeySet) Len() int {
	return len(s.order)
}

// Keys returns a copy of the members in insertion order.
func (s *KeySet) Keys() []ItemKey {
	return append([]ItemKey(nil), s.order...)
}

// Difference returns members of s that are not in other, in s's order.
func (s *KeySet) Difference(other *KeySet) []ItemKey {
	var out []ItemKey
	for _, k := range s.order {
		if !other.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Union returns a new set with s's members followed by other's new members.
func (s *KeySet) Union(other *KeySet) *KeySet {
	out := NewKeySet(s.order...)
	for _, k := range other.order {
		out.Add(k)
	}
	return out
}

// SubsetOf reports whether every member of s is in other.
func (s *KeySet) SubsetOf(other *KeySet) bool {
	for _, k := range s.order {
		if !other.Has(k) {
			return false
		}
	}
	return true
}
