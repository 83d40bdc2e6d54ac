package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	catalog "beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

// Products is the public product lookup.
type Products struct {
	c *Client
}

// ByIDs returns the products of type t with the given ids. Unknown ids are
// omitted by the server.
func (p *Products) ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parts := make([]string, len(ids))
	for i, pid := range ids {
		parts[i] = pid.String()
	}
	query := url.Values{}
	query.Set("type", t.String())
	query.Set("ids", strings.Join(parts, ","))

	var resp catalog.LookupResponse
	if err := p.c.do(ctx, http.MethodGet, "/api/products", query, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Products, nil
}
