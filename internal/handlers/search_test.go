package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/handlers"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchRouter mounts the search routes with a fixed user in context
func searchRouter(svc handlers.SearchServiceInterface, user *models.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(auth.WithUser(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	handlers.NewSearchHandler(svc).RegisterRoutes(r)
	return r
}

func TestSearch_RoutesToKind(t *testing.T) {
	tests := []struct {
		path string
		kind models.SearchType
	}{
		{"/search/persons/keanu", models.SearchTypePerson},
		{"/search/movies/matrix", models.SearchTypeMovie},
		{"/search/tvs/dark", models.SearchTypeTV},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var gotKind models.SearchType
			var gotQuery, gotUser string
			svc := &handlers.MockSearchService{
				SearchFunc: func(ctx context.Context, userID string, kind models.SearchType, query string) ([]json.RawMessage, error) {
					gotUser, gotKind, gotQuery = userID, kind, query
					return []json.RawMessage{json.RawMessage(`{"id":1}`)}, nil
				},
			}

			w := httptest.NewRecorder()
			searchRouter(svc, &models.User{ID: "user-1"}).ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			var resp struct {
				Success bool              `json:"success"`
				Content []json.RawMessage `json:"content"`
			}
			handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
			assert.True(t, resp.Success)
			assert.Len(t, resp.Content, 1)
			assert.Equal(t, tt.kind, gotKind)
			assert.Equal(t, "user-1", gotUser)
			assert.NotEmpty(t, gotQuery)
		})
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"no results", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"upstream failure", fmt.Errorf("%w: status 503", models.ErrUpstream), http.StatusInternalServerError, "upstream_error"},
		{"history write failed", models.ErrInternalServer, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockSearchService{
				SearchFunc: func(ctx context.Context, userID string, kind models.SearchType, query string) ([]json.RawMessage, error) {
					return nil, tt.err
				},
			}

			w := httptest.NewRecorder()
			searchRouter(svc, &models.User{ID: "user-1"}).ServeHTTP(w, httptest.NewRequest("GET", "/search/movies/zzz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedCode)
		})
	}
}

func TestSearch_RequiresUser(t *testing.T) {
	w := httptest.NewRecorder()
	searchRouter(&handlers.MockSearchService{}, nil).ServeHTTP(w, httptest.NewRequest("GET", "/search/history", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSearchHistory_List(t *testing.T) {
	svc := &handlers.MockSearchService{
		HistoryFunc: func(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
			return []models.SearchHistoryItem{
				{ItemID: 603, Title: "The Matrix", SearchType: models.SearchTypeMovie},
				{ItemID: 6384, Title: "Keanu Reeves", SearchType: models.SearchTypePerson},
			}, nil
		},
	}

	w := httptest.NewRecorder()
	searchRouter(svc, &models.User{ID: "user-1"}).ServeHTTP(w, httptest.NewRequest("GET", "/search/history", nil))

	var resp struct {
		Content []models.SearchHistoryItem `json:"content"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Content, 2)
	assert.Equal(t, int64(603), resp.Content[0].ItemID)
	assert.Equal(t, int64(6384), resp.Content[1].ItemID)
}

func TestSearchHistory_Remove(t *testing.T) {
	var gotID int64
	svc := &handlers.MockSearchService{
		RemoveHistoryItemFunc: func(ctx context.Context, userID string, itemID int64) error {
			gotID = itemID
			return nil
		},
	}
	router := searchRouter(svc, &models.User{ID: "user-1"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/search/history/603", nil))

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Item removed from search history", resp["message"])
	assert.Equal(t, int64(603), gotID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/search/history/abc", nil))
	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", "Invalid id")
}
