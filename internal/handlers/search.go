package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/models"
	pkghttp "github.com/BradenHooton/marquee/pkg/http"
	"github.com/go-chi/chi/v5"
)

// SearchServiceInterface defines the interface for search and history logic
type SearchServiceInterface interface {
	Search(ctx context.Context, userID string, kind models.SearchType, query string) ([]json.RawMessage, error)
	History(ctx context.Context, userID string) ([]models.SearchHistoryItem, error)
	RemoveHistoryItem(ctx context.Context, userID string, itemID int64) error
}

// SearchHandler serves the authenticated search routes
type SearchHandler struct {
	service SearchServiceInterface
}

func NewSearchHandler(service SearchServiceInterface) *SearchHandler {
	return &SearchHandler{service: service}
}

// RegisterRoutes registers the search routes. The router must already be
// behind the session middleware.
func (h *SearchHandler) RegisterRoutes(router chi.Router) {
	router.Route("/search", func(r chi.Router) {
		r.Get("/persons/{query}", h.SearchPersons)
		r.Get("/movies/{query}", h.SearchMovies)
		r.Get("/tvs/{query}", h.SearchTVs)
		r.Get("/history", h.History)
		r.Delete("/history/{id}", h.RemoveHistoryItem)
	})
}

func (h *SearchHandler) SearchPersons(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, models.SearchTypePerson)
}

func (h *SearchHandler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, models.SearchTypeMovie)
}

func (h *SearchHandler) SearchTVs(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, models.SearchTypeTV)
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request, kind models.SearchType) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	content, err := h.service.Search(r.Context(), user.ID, kind, chi.URLParam(r, "query"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "No results found")
		case errors.Is(err, models.ErrUpstream):
			pkghttp.WriteUpstreamError(w, "Internal Server Error")
		default:
			pkghttp.WriteInternalError(w, "Internal Server Error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"content": content})
}

// History returns the user's search history, oldest first
func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	items, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal Server Error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"content": items})
}

// RemoveHistoryItem deletes history entries by external item id
func (h *SearchHandler) RemoveHistoryItem(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid id")
		return
	}

	if err := h.service.RemoveHistoryItem(r.Context(), user.ID, itemID); err != nil {
		pkghttp.WriteInternalError(w, "Internal Server Error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{
		"message": "Item removed from search history",
	})
}
