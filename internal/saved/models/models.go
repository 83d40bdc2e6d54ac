package models

import (
	"time"

	catalog "beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

// SavedItem is the server-side wishlist record.
// Invariant: unique on (UserID, ItemID, ItemType).
type SavedItem struct {
	UserID    id.UserID
	ItemID    id.ProductID
	ItemType  id.ProductType
	CreatedAt time.Time
}

// Key returns the item identity within the user's list.
func (s SavedItem) Key() id.ItemKey {
	return id.NewItemKey(s.ItemID, s.ItemType)
}

// SavedItemView is the wire shape of one saved item: the key plus a product
// snapshot for display.
type SavedItemView struct {
	ItemID   id.ProductID    `json:"itemId"`
	ItemType id.ProductType  `json:"itemType"`
	ItemData catalog.Product `json:"itemData"`
}

// Key returns the item identity.
func (v SavedItemView) Key() id.ItemKey {
	return id.NewItemKey(v.ItemID, v.ItemType)
}

// AddSavedItemRequest is the POST body for saving an item.
type AddSavedItemRequest struct {
	ItemID   id.ProductID `json:"itemId"`
	ItemType string       `json:"itemType"`
}

// ListSavedItemsResponse is the GET response body.
type ListSavedItemsResponse struct {
	Items []SavedItemView `json:"items"`
}
