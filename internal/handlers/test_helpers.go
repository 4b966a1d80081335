package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/services"
	pkghttp "github.com/BradenHooton/marquee/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithUserContext attaches user to the request as the session middleware would
func WithUserContext(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks status, error code and message of a failure envelope
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.Equal(t, expectedMessage, resp.Message, "Error message mismatch")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignupFunc  func(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	LoginFunc   func(ctx context.Context, email, password string) (*services.AuthResult, error)
	LogoutFunc  func(ctx context.Context, accessToken string) error
	RefreshFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *MockAuthService) Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error) {
	if m.SignupFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SignupFunc(ctx, in)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, accessToken)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshFunc == nil {
		return "", models.ErrInvalidToken
	}
	return m.RefreshFunc(ctx, refreshToken)
}

// MockSearchService implements SearchServiceInterface for testing
type MockSearchService struct {
	SearchFunc            func(ctx context.Context, userID string, kind models.SearchType, query string) ([]json.RawMessage, error)
	HistoryFunc           func(ctx context.Context, userID string) ([]models.SearchHistoryItem, error)
	RemoveHistoryItemFunc func(ctx context.Context, userID string, itemID int64) error
}

func (m *MockSearchService) Search(ctx context.Context, userID string, kind models.SearchType, query string) ([]json.RawMessage, error) {
	if m.SearchFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SearchFunc(ctx, userID, kind, query)
}

func (m *MockSearchService) History(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
	if m.HistoryFunc == nil {
		return []models.SearchHistoryItem{}, nil
	}
	return m.HistoryFunc(ctx, userID)
}

func (m *MockSearchService) RemoveHistoryItem(ctx context.Context, userID string, itemID int64) error {
	if m.RemoveHistoryItemFunc == nil {
		return nil
	}
	return m.RemoveHistoryItemFunc(ctx, userID, itemID)
}

// MockCatalogService implements CatalogServiceInterface for testing
type MockCatalogService struct {
	TrendingFunc   func(ctx context.Context, kind services.MediaKind) (json.RawMessage, error)
	TrailersFunc   func(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error)
	DetailsFunc    func(ctx context.Context, kind services.MediaKind, id string) (json.RawMessage, error)
	SimilarFunc    func(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error)
	ByCategoryFunc func(ctx context.Context, kind services.MediaKind, category string) ([]json.RawMessage, error)
}

func (m *MockCatalogService) Trending(ctx context.Context, kind services.MediaKind) (json.RawMessage, error) {
	if m.TrendingFunc == nil {
		return json.RawMessage("null"), nil
	}
	return m.TrendingFunc(ctx, kind)
}

func (m *MockCatalogService) Trailers(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error) {
	if m.TrailersFunc == nil {
		return []json.RawMessage{}, nil
	}
	return m.TrailersFunc(ctx, kind, id)
}

func (m *MockCatalogService) Details(ctx context.Context, kind services.MediaKind, id string) (json.RawMessage, error) {
	if m.DetailsFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.DetailsFunc(ctx, kind, id)
}

func (m *MockCatalogService) Similar(ctx context.Context, kind services.MediaKind, id string) ([]json.RawMessage, error) {
	if m.SimilarFunc == nil {
		return []json.RawMessage{}, nil
	}
	return m.SimilarFunc(ctx, kind, id)
}

func (m *MockCatalogService) ByCategory(ctx context.Context, kind services.MediaKind, category string) ([]json.RawMessage, error) {
	if m.ByCategoryFunc == nil {
		return []json.RawMessage{}, nil
	}
	return m.ByCategoryFunc(ctx, kind, category)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	AvatarFoldersFunc func(ctx context.Context) ([]models.AvatarFolder, error)
	AvatarImagesFunc  func(ctx context.Context, folderPath string) ([]models.AvatarImage, error)
	UpdateAvatarFunc  func(ctx context.Context, userID, avatarURL string) (*models.User, error)
}

func (m *MockUserService) AvatarFolders(ctx context.Context) ([]models.AvatarFolder, error) {
	if m.AvatarFoldersFunc == nil {
		return []models.AvatarFolder{}, nil
	}
	return m.AvatarFoldersFunc(ctx)
}

func (m *MockUserService) AvatarImages(ctx context.Context, folderPath string) ([]models.AvatarImage, error) {
	if m.AvatarImagesFunc == nil {
		return []models.AvatarImage{}, nil
	}
	return m.AvatarImagesFunc(ctx, folderPath)
}

func (m *MockUserService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error) {
	if m.UpdateAvatarFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.UpdateAvatarFunc(ctx, userID, avatarURL)
}
