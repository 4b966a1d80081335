package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/models"
	pkghttp "github.com/BradenHooton/marquee/pkg/http"
	"github.com/go-chi/chi/v5"
)

// UserServiceInterface defines the interface for avatar logic
type UserServiceInterface interface {
	AvatarFolders(ctx context.Context) ([]models.AvatarFolder, error)
	AvatarImages(ctx context.Context, folderPath string) ([]models.AvatarImage, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error)
}

// UserHandler handles avatar listing and selection
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateAvatarRequest represents the request body for avatar selection
type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatarUrl" validate:"required"`
}

// RegisterPublicRoutes registers the avatar listing routes
func (h *UserHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/user/avatars/folders", h.AvatarFolders)
	router.Get("/user/avatars/list", h.AvatarList)
}

// RegisterProtectedRoutes registers routes that need a session
func (h *UserHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Put("/user/avatar", h.UpdateAvatar)
}

// AvatarFolders lists the avatar collections
//
// @Summary List avatar folders
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /user/avatars/folders [get]
func (h *UserHandler) AvatarFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.service.AvatarFolders(r.Context())
	if err != nil {
		pkghttp.WriteUpstreamError(w, "Failed to get avatar folders")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"folders": folders})
}

// AvatarList lists the images under ?path=
//
// @Summary List avatars in a folder
// @Param path query string true "Folder path"
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /user/avatars/list [get]
func (h *UserHandler) AvatarList(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.AvatarImages(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Path parameter is required")
			return
		}
		pkghttp.WriteUpstreamError(w, "Failed to fetch avatars")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{"images": images})
}

// UpdateAvatar sets the authenticated user's avatar
//
// @Summary Update avatar
// @Accept json
// @Param request body UpdateAvatarRequest true "Avatar"
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /user/avatar [put]
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req UpdateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "avatarUrl is required")
		return
	}

	updated, err := h.service.UpdateAvatar(r.Context(), user.ID, req.AvatarURL)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "avatarUrl is required")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Failed to update avatar")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, map[string]any{
		"user": models.NewUserResponse(updated),
	})
}
