package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"beatstore/internal/platform/middleware"
	"beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
	"beatstore/pkg/platform/httputil"
	"beatstore/pkg/requestcontext"
)

// Service defines the saved-item operations the handler delegates to.
type Service interface {
	List(ctx context.Context, userID id.UserID) ([]models.SavedItemView, error)
	Add(ctx context.Context, userID id.UserID, itemID id.ProductID, itemType string) error
	Remove(ctx context.Context, userID id.UserID, itemID id.ProductID, itemType string) error
}

// Handler handles the authenticated saved-items endpoints.
type Handler struct {
	logger       *slog.Logger
	saved        Service
	jwtValidator middleware.JWTValidator
	writeLimit   func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithWriteLimit wraps the add and remove routes, after authentication.
func WithWriteLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.writeLimit = mw
	}
}

func New(saved Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		logger:       logger,
		saved:        saved,
		jwtValidator: jwtValidator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register registers the saved-items routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/saved-items", h.handleList)
		r.Group(func(r chi.Router) {
			if h.writeLimit != nil {
				r.Use(h.writeLimit)
			}
			r.Post("/api/saved-items", h.handleAdd)
			r.Delete("/api/saved-items/{itemType}/{itemId}", h.handleRemove)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	items, err := h.saved.List(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to list saved items", err)
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []models.SavedItemView{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.ListSavedItemsResponse{Items: items})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req models.AddSavedItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid add saved item request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.saved.Add(ctx, userID, req.ItemID, req.ItemType); err != nil {
		h.logFailure(ctx, "failed to add saved item", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	itemID, err := id.ParseProductID(chi.URLParam(r, "itemId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.saved.Remove(ctx, userID, itemID, chi.URLParam(r, "itemType")); err != nil {
		h.logFailure(ctx, "failed to remove saved item", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
