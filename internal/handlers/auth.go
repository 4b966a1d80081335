package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/services"
	pkgauth "github.com/BradenHooton/marquee/pkg/auth"
	pkghttp "github.com/BradenHooton/marquee/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service       AuthServiceInterface
	cookieConfig  auth.CookieConfig
	refreshMaxAge time.Duration
}

// NewAuthHandler creates a new AuthHandler. refreshMaxAge sets the refresh
// cookie lifetime and should match the refresh token expiry.
func NewAuthHandler(service AuthServiceInterface, cookieConfig auth.CookieConfig, refreshMaxAge time.Duration) *AuthHandler {
	return &AuthHandler{
		service:       service,
		cookieConfig:  cookieConfig,
		refreshMaxAge: refreshMaxAge,
	}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Email     string `json:"email" validate:"required,simpleemail"`
	Password  string `json:"password" validate:"required,min=6"`
	Username  string `json:"username" validate:"required,notblank"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup handles account creation
// @Summary Create an account
// @Accept json
// @Param request body SignupRequest true "Signup request"
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, signupValidationMessage(err))
		return
	}

	result, err := h.service.Signup(r.Context(), services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		var pwErr *pkgauth.PasswordValidationError
		switch {
		case errors.As(err, &pwErr):
			pkghttp.WriteBadRequest(w, "Password "+pwErr.Reason)
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "All fields are required")
		case errors.Is(err, models.ErrEmailTaken):
			pkghttp.WriteConflict(w, "Email already exists")
		case errors.Is(err, models.ErrUsernameTaken):
			pkghttp.WriteConflict(w, "Username already exists")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "User already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	h.writeSession(w, r, http.StatusCreated, result)
}

// Login handles user login
// @Summary User login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "All fields are required")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		// Unknown email and wrong password deliberately differ: 404 vs 400
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Invalid credentials")
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteError(w, http.StatusBadRequest, "invalid_credentials", "Invalid credentials")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	h.writeSession(w, r, http.StatusOK, result)
}

// Logout clears the stored refresh token and the refresh cookie. The bearer
// token is checked here rather than by the session middleware.
// @Summary Logout
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractBearerToken(r)
	if token == "" {
		pkghttp.WriteUnauthorized(w, "Unauthorized - No Token Provided")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Unauthorized - Invalid Token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.ClearRefreshTokenCookie(w, r, h.cookieConfig)
	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{
		"message": "Logged out successfully",
	})
}

// AuthCheck returns the user resolved by the session middleware
// @Summary Current user
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /auth/auth-check [get]
func (h *AuthHandler) AuthCheck(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{
		"user": models.NewUserResponse(user),
	})
}

// RefreshToken issues a new access token from the refresh cookie
// @Summary Refresh access token
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 403 {object} pkghttp.ErrorResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := auth.GetRefreshTokenCookie(r)
	if err != nil || refreshToken == "" {
		pkghttp.WriteUnauthorized(w, "Refresh token is required")
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidToken):
			pkghttp.WriteUnauthorized(w, "Invalid refresh token")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Invalid refresh token")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Refresh token is required")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{
		"accessToken": accessToken,
	})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, status int, result *services.AuthResult) {
	auth.SetRefreshTokenCookie(w, r, result.RefreshToken, h.refreshMaxAge, h.cookieConfig)
	pkghttp.WriteSuccess(w, status, map[string]any{
		"user":        models.NewUserResponse(result.User),
		"accessToken": result.AccessToken,
	})
}

// signupValidationMessage picks the client message for a signup validation
// failure. Missing fields win over malformed ones.
func signupValidationMessage(err error) string {
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		return "Invalid request body"
	}

	switch {
	case ve.HasTag("required"), ve.HasTag("notblank"):
		return "All fields are required"
	case ve.HasTag("simpleemail"):
		return "Invalid email"
	case ve.HasTag("min"):
		return "Password must be at least 6 characters"
	default:
		return ve.Error()
	}
}
