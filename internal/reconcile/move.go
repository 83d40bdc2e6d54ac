package reconcile

import (
	"context"

	"beatstore/internal/cart"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
)

// MoveToCart adds the saved item identified by key to c using its first
// in-stock variant, then unsaves it. If the product has no stock, or the cart
// add fails, nothing changes.
func (r *Reconciler) MoveToCart(ctx context.Context, key id.ItemKey, c CartAdder) error {
	if !key.Type.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid product type")
	}
	products, err := r.products.ByIDs(ctx, key.Type, []id.ProductID{key.ID})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch product")
	}
	if len(products) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	product := products[0]

	variant, ok := product.FirstAvailableVariant()
	if !ok {
		return dErrors.New(dErrors.CodeUnavailable, "product is out of stock")
	}

	if err := c.Add(ctx, cart.ItemFromProduct(product, variant.Name)); err != nil {
		r.logger.WarnContext(ctx, "failed to move saved item to cart",
			"item", key.String(),
			"error", err,
		)
		return err
	}
	return r.Unsave(ctx, key)
}
