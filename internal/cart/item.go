package cart

import (
	"github.com/shopspring/decimal"

	catalog "beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

// Item is one cart entry. At most one entry per ItemKey exists in a cart.
type Item struct {
	ProductID   id.ProductID    `json:"productId"`
	ProductType id.ProductType  `json:"productType"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	ArtworkURL  string          `json:"artworkUrl"`
	Variant     string          `json:"variant,omitempty"`
}

// Key returns the item's identity.
func (i Item) Key() id.ItemKey {
	return id.NewItemKey(i.ProductID, i.ProductType)
}

// ItemFromProduct builds a cart entry from a product snapshot and the chosen
// variant name.
func ItemFromProduct(p catalog.Product, variant string) Item {
	return Item{
		ProductID:   p.ID,
		ProductType: p.Type,
		Title:       p.Title,
		Price:       p.Price,
		ArtworkURL:  p.ArtworkURL,
		Variant:     variant,
	}
}
