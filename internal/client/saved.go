package client

import (
	"context"
	"net/http"

	saved "beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
)

// SavedItems is the authenticated user's server-side saved list.
type SavedItems struct {
	c *Client
}

func (s *SavedItems) List(ctx context.Context) ([]saved.SavedItemView, error) {
	var resp saved.ListSavedItemsResponse
	if err := s.c.do(ctx, http.MethodGet, "/api/saved-items", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *SavedItems) Add(ctx context.Context, key id.ItemKey) error {
	body := saved.AddSavedItemRequest{ItemID: key.ID, ItemType: key.Type.String()}
	return s.c.do(ctx, http.MethodPost, "/api/saved-items", nil, body, nil, true)
}

func (s *SavedItems) Remove(ctx context.Context, key id.ItemKey) error {
	path := "/api/saved-items/" + key.Type.String() + "/" + key.ID.String()
	return s.c.do(ctx, http.MethodDelete, path, nil, nil, nil, true)
}
