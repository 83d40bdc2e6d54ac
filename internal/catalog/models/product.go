package models

import (
	"github.com/shopspring/decimal"

	id "beatstore/pkg/domain"
)

// Variant is a purchasable option of a product (a license tier for beats, an
// edition for sound kits). Stock of zero or less means it cannot be bought.
type Variant struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Product is the catalog detail record. Saved-item and cart views embed a
// snapshot of it.
type Product struct {
	ID         id.ProductID    `json:"id"`
	Type       id.ProductType  `json:"type"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	ArtworkURL string          `json:"artworkUrl"`
	Variants   []Variant       `json:"variants,omitempty"`
}

// Key returns the product's identity.
func (p Product) Key() id.ItemKey {
	return id.NewItemKey(p.ID, p.Type)
}

// FirstAvailableVariant returns the first variant with positive stock.
func (p Product) FirstAvailableVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.Stock > 0 {
			return v, true
		}
	}
	return Variant{}, false
}

// ByKey indexes products by their identity.
func ByKey(products []Product) map[id.ItemKey]Product {
	out := make(map[id.ItemKey]Product, len(products))
	for _, p := range products {
		out[p.Key()] = p
	}
	return out
}

// LookupResponse is the body of GET /api/products.
type LookupResponse struct {
	Products []Product `json:"products"`
}
