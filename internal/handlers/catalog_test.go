package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/marquee/internal/handlers"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func catalogRouter(svc handlers.CatalogServiceInterface) http.Handler {
	r := chi.NewRouter()
	handlers.NewCatalogHandler(svc, services.MediaMovie).RegisterRoutes(r)
	handlers.NewCatalogHandler(svc, services.MediaTV).RegisterRoutes(r)
	return r
}

func TestCatalog_Trending(t *testing.T) {
	var kinds []services.MediaKind
	svc := &handlers.MockCatalogService{
		TrendingFunc: func(ctx context.Context, kind services.MediaKind) (json.RawMessage, error) {
			kinds = append(kinds, kind)
			return json.RawMessage(`{"id":550}`), nil
		},
	}
	router := catalogRouter(svc)

	for _, path := range []string{"/movies/trending", "/tvs/trending"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

		var resp struct {
			Success bool            `json:"success"`
			Content json.RawMessage `json:"content"`
		}
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.True(t, resp.Success)
		assert.JSONEq(t, `{"id":550}`, string(resp.Content))
	}

	assert.Equal(t, []services.MediaKind{services.MediaMovie, services.MediaTV}, kinds)
}

func TestCatalog_DetailsPaths(t *testing.T) {
	var got []string
	svc := &handlers.MockCatalogService{
		DetailsFunc: func(ctx context.Context, kind services.MediaKind, id string) (json.RawMessage, error) {
			got = append(got, string(kind)+":"+id)
			return json.RawMessage(`{}`), nil
		},
	}
	router := catalogRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/movies/550/details", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/tvs/1399", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"movie:550", "tv:1399"}, got)
}

func TestCatalog_ResponseKeys(t *testing.T) {
	svc := &handlers.MockCatalogService{
		TrailersFunc: func(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error) {
			return []json.RawMessage{json.RawMessage(`{"key":"abc"}`)}, nil
		},
		SimilarFunc: func(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error) {
			return []json.RawMessage{json.RawMessage(`{"id":1}`)}, nil
		},
		ByCategoryFunc: func(ctx context.Context, kind services.MediaKind, category string) ([]json.RawMessage, error) {
			assert.Equal(t, "top_rated", category)
			return []json.RawMessage{}, nil
		},
	}
	router := catalogRouter(svc)

	tests := []struct {
		path string
		key  string
	}{
		{"/movies/550/trailers", "trailers"},
		{"/tvs/1399/similar", "similar"},
		{"/movies/category/top_rated", "content"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			var resp map[string]any
			handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
			assert.Contains(t, resp, tt.key)
		})
	}
}

func TestCatalog_Errors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"upstream 404", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"upstream failure", models.ErrUpstream, http.StatusInternalServerError, "upstream_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockCatalogService{
				TrailersFunc: func(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error) {
					return nil, tt.err
				},
			}

			w := httptest.NewRecorder()
			catalogRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/movies/999999/trailers", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedCode)
		})
	}
}
