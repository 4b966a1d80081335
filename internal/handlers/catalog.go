package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/services"
	pkghttp "github.com/BradenHooton/marquee/pkg/http"
	"github.com/go-chi/chi/v5"
)

// CatalogServiceInterface defines the interface for catalog browsing
type CatalogServiceInterface interface {
	Trending(ctx context.Context, kind services.MediaKind) (json.RawMessage, error)
	Trailers(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error)
	Details(ctx context.Context, kind services.MediaKind, id string) (json.RawMessage, error)
	Similar(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error)
	ByCategory(ctx context.Context, kind services.MediaKind, category string) ([]json.RawMessage, error)
}

// CatalogHandler serves the public movie or TV browsing routes
type CatalogHandler struct {
	service CatalogServiceInterface
	kind    services.MediaKind
}

func NewCatalogHandler(service CatalogServiceInterface, kind services.MediaKind) *CatalogHandler {
	return &CatalogHandler{service: service, kind: kind}
}

// RegisterRoutes mounts /movies or /tvs. Movie details live at /{id}/details,
// show details at /{id}.
func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	prefix := "/movies"
	detailsPath := "/{id}/details"
	if h.kind == services.MediaTV {
		prefix = "/tvs"
		detailsPath = "/{id}"
	}

	router.Route(prefix, func(r chi.Router) {
		r.Get("/trending", h.Trending)
		r.Get("/{id}/trailers", h.Trailers)
		r.Get(detailsPath, h.Details)
		r.Get("/{id}/similar", h.Similar)
		r.Get("/category/{category}", h.ByCategory)
	})
}

func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Trending(r.Context(), h.kind)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"content": content})
}

func (h *CatalogHandler) Trailers(w http.ResponseWriter, r *http.Request) {
	trailers, err := h.service.Trailers(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"trailers": trailers})
}

func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Details(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"content": content})
}

func (h *CatalogHandler) Similar(w http.ResponseWriter, r *http.Request) {
	similar, err := h.service.Similar(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"similar": similar})
}

func (h *CatalogHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.ByCategory(r.Context(), h.kind, chi.URLParam(r, "category"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"content": content})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	case errors.Is(err, models.ErrUpstream):
		pkghttp.WriteUpstreamError(w, "Internal Server Error")
	default:
		pkghttp.WriteInternalError(w, "Internal Server Error")
	}
}
