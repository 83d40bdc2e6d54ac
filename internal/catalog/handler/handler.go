package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/platform/httputil"
	"beatstore/pkg/requestcontext"
)

// maxIDsPerLookup bounds a single product lookup request.
const maxIDsPerLookup = 100

// Store is the read side of the catalog the handler needs.
type Store interface {
	ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]models.Product, error)
}

// Handler serves public product lookups.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{store: store, logger: logger}
}

// Register mounts the catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/products", h.handleLookup)
}

// handleLookup serves GET /api/products?type=beat&ids=1,2,3.
func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	productType, err := id.ParseProductType(r.URL.Query().Get("type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ids, err := id.ParseProductIDs(r.URL.Query().Get("ids"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(ids) > maxIDsPerLookup {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "too many ids"))
		return
	}

	products, err := h.store.ByIDs(ctx, productType, ids)
	if err != nil {
		h.logger.ErrorContext(ctx, "product lookup failed",
			"request_id", requestID,
			"type", productType,
			"count", len(ids),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "product lookup failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.LookupResponse{Products: products})
}
