package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/handlers"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/services"
	pkgauth "github.com/BradenHooton/marquee/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookieConfig = auth.CookieConfig{Secure: true, SameSite: "none"}

func newAuthHandler(svc handlers.AuthServiceInterface) *handlers.AuthHandler {
	return handlers.NewAuthHandler(svc, testCookieConfig, 15*24*time.Hour)
}

func sessionResult() *services.AuthResult {
	return &services.AuthResult{
		User: &models.User{
			ID:           "user-1",
			Username:     "u1",
			Email:        "a@b.com",
			PasswordHash: "$2a$10$secret",
			Image:        "/avatar2.png",
		},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.RefreshTokenCookieName {
			return c
		}
	}
	return nil
}

// ============================================================================
// Signup
// ============================================================================

func TestSignup_Success(t *testing.T) {
	var got services.SignupInput
	mockAuth := &handlers.MockAuthService{
		SignupFunc: func(ctx context.Context, in services.SignupInput) (*services.AuthResult, error) {
			got = in
			return sessionResult(), nil
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/api/v1/auth/signup", handlers.SignupRequest{
		Email:    "a@b.com",
		Password: "secret1",
		Username: "u1",
	})
	w := httptest.NewRecorder()
	newAuthHandler(mockAuth).Signup(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "access-1", resp["accessToken"])

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", user["username"])
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "refresh-1")

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	assert.Equal(t, "u1", got.Username)
}

func TestSignup_ValidationMessages(t *testing.T) {
	tests := []struct {
		name            string
		body            handlers.SignupRequest
		expectedMessage string
	}{
		{"missing username", handlers.SignupRequest{Email: "a@b.com", Password: "secret1"}, "All fields are required"},
		{"missing password", handlers.SignupRequest{Email: "a@b.com", Username: "u1"}, "All fields are required"},
		{"missing wins over malformed", handlers.SignupRequest{Email: "nope", Password: "123"}, "All fields are required"},
		{"email without domain dot", handlers.SignupRequest{Email: "a@b", Password: "secret1", Username: "u1"}, "Invalid email"},
		{"email with whitespace", handlers.SignupRequest{Email: "a b@c.com", Password: "secret1", Username: "u1"}, "Invalid email"},
		{"short password", handlers.SignupRequest{Email: "a@b.com", Password: "12345", Username: "u1"}, "Password must be at least 6 characters"},
		{"whitespace username", handlers.SignupRequest{Email: "a@b.com", Password: "secret1", Username: "   "}, "All fields are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockAuth := &handlers.MockAuthService{
				SignupFunc: func(ctx context.Context, in services.SignupInput) (*services.AuthResult, error) {
					called = true
					return sessionResult(), nil
				},
			}

			req := handlers.NewTestRequest(t, "POST", "/api/v1/auth/signup", tt.body)
			w := httptest.NewRecorder()
			newAuthHandler(mockAuth).Signup(w, req)

			handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", tt.expectedMessage)
			assert.False(t, called)
			assert.Nil(t, refreshCookie(t, w))
		})
	}
}

func TestSignup_ServiceErrors(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{"email taken", models.ErrEmailTaken, 400, "conflict", "Email already exists"},
		{"username taken", models.ErrUsernameTaken, 400, "conflict", "Username already exists"},
		{"password too long", &pkgauth.PasswordValidationError{Reason: "must be at most 72 characters"}, 400, "bad_request", "Password must be at most 72 characters"},
		{"blank after trimming", fmt.Errorf("%w: email and username are required", models.ErrBadRequest), 400, "bad_request", "All fields are required"},
		{"store down", models.ErrInternalServer, 500, "internal_error", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &handlers.MockAuthService{
				SignupFunc: func(ctx context.Context, in services.SignupInput) (*services.AuthResult, error) {
					return nil, tt.err
				},
			}

			req := handlers.NewTestRequest(t, "POST", "/api/v1/auth/signup", handlers.SignupRequest{
				Email: "a@b.com", Password: "secret1", Username: "u1",
			})
			w := httptest.NewRecorder()
			newAuthHandler(mockAuth).Signup(w, req)

			handlers.AssertErrorResponse(t, w, tt.expectedStatus, tt.expectedCode, tt.expectedMessage)
		})
	}
}

func TestSignup_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader("{"))
	w := httptest.NewRecorder()
	newAuthHandler(&handlers.MockAuthService{}).Signup(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", "Invalid request body")
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResult, error) {
			return sessionResult(), nil
		},
	}

	req := handlers.NewTestRequest(t, "POST", "/api/v1/auth/login", handlers.LoginRequest{
		Email: "a@b.com", Password: "secret1",
	})
	w := httptest.NewRecorder()
	newAuthHandler(mockAuth).Login(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "access-1", resp["accessToken"])
	require.NotNil(t, refreshCookie(t, w))
}

func TestLogin_StatusAsymmetry(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"unknown email", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrong password", models.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &handlers.MockAuthService{
				LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResult, error) {
					return nil, tt.err
				},
			}

			req := handlers.NewTestRequest(t, "POST", "/api/v1/auth/login", handlers.LoginRequest{
				Email: "a@b.com", Password: "wrong1",
			})
			w := httptest.NewRecorder()
			newAuthHandler(mockAuth).Login(w, req)

			handlers.AssertErrorResponse(t, w, tt.expectedStatus, tt.expectedCode, "Invalid credentials")
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	req := handlers.NewTestRequest(t, "POST", "/api/v1/auth/login", handlers.LoginRequest{Email: "a@b.com"})
	w := httptest.NewRecorder()
	newAuthHandler(&handlers.MockAuthService{}).Login(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", "All fields are required")
}

// ============================================================================
// Logout
// ============================================================================

func TestLogout_Success(t *testing.T) {
	var gotToken string
	mockAuth := &handlers.MockAuthService{
		LogoutFunc: func(ctx context.Context, accessToken string) error {
			gotToken = accessToken
			return nil
		},
	}

	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer access-1")
	w := httptest.NewRecorder()
	newAuthHandler(mockAuth).Logout(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Logged out successfully", resp["message"])
	assert.Equal(t, "access-1", gotToken)

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestLogout_Unauthorized(t *testing.T) {
	w := httptest.NewRecorder()
	newAuthHandler(&handlers.MockAuthService{}).Logout(w, httptest.NewRequest("POST", "/api/v1/auth/logout", nil))
	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized", "Unauthorized - No Token Provided")

	mockAuth := &handlers.MockAuthService{
		LogoutFunc: func(ctx context.Context, accessToken string) error {
			return models.ErrUnauthorized
		},
	}
	req := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = httptest.NewRecorder()
	newAuthHandler(mockAuth).Logout(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized", "Unauthorized - Invalid Token")
	assert.Nil(t, refreshCookie(t, w))
}

// ============================================================================
// Auth check and refresh
// ============================================================================

func TestAuthCheck(t *testing.T) {
	handler := newAuthHandler(&handlers.MockAuthService{})

	w := httptest.NewRecorder()
	handler.AuthCheck(w, httptest.NewRequest("GET", "/api/v1/auth/auth-check", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := handlers.WithUserContext(httptest.NewRequest("GET", "/api/v1/auth/auth-check", nil), sessionResult().User)
	w = httptest.NewRecorder()
	handler.AuthCheck(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	user := resp["user"].(map[string]any)
	assert.Equal(t, "user-1", user["id"])
	assert.NotContains(t, user, "passwordHash")
}

func TestRefreshToken_Statuses(t *testing.T) {
	tests := []struct {
		name            string
		cookie          string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{"no cookie", "", nil, http.StatusUnauthorized, "Refresh token is required"},
		{"bad signature", "tampered", models.ErrInvalidToken, http.StatusUnauthorized, "Invalid refresh token"},
		{"expired token still stored", "expired", models.ErrInvalidToken, http.StatusUnauthorized, "Invalid refresh token"},
		{"stale token", "old", models.ErrForbidden, http.StatusForbidden, "Invalid refresh token"},
		{"store down", "r", models.ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &handlers.MockAuthService{
				RefreshFunc: func(ctx context.Context, refreshToken string) (string, error) {
					return "", tt.err
				},
			}

			req := httptest.NewRequest("POST", "/api/v1/auth/refresh-token", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			newAuthHandler(mockAuth).RefreshToken(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedMessage)
		})
	}
}

func TestRefreshToken_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (string, error) {
			assert.Equal(t, "refresh-2", refreshToken)
			return "access-3", nil
		},
	}

	req := httptest.NewRequest("POST", "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshTokenCookieName, Value: "refresh-2"})
	w := httptest.NewRecorder()
	newAuthHandler(mockAuth).RefreshToken(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "access-3", resp["accessToken"])
	assert.Nil(t, refreshCookie(t, w), "refresh must not touch the cookie")
}
