package models

import (
	"time"
)

// User is the stored identity record. PasswordHash and RefreshToken never
// leave the server; use NewUserResponse for anything written to a client.
type User struct {
	ID                    string
	Username              string
	Email                 string
	PasswordHash          string
	FirstName             string
	LastName              string
	Image                 string
	SearchHistory         []SearchHistoryItem
	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// UserResponse is the sanitized user body returned by the API
type UserResponse struct {
	ID            string              `json:"id"`
	Username      string              `json:"username"`
	Email         string              `json:"email"`
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Image         string              `json:"image"`
	SearchHistory []SearchHistoryItem `json:"searchHistory"`
	CreatedAt     string              `json:"createdAt"`
	UpdatedAt     string              `json:"updatedAt"`
}

// NewUserResponse converts a user model to its response DTO
func NewUserResponse(user *User) *UserResponse {
	if user == nil {
		return nil
	}

	history := user.SearchHistory
	if history == nil {
		history = []SearchHistoryItem{}
	}

	return &UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Image:         user.Image,
		SearchHistory: history,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     user.UpdatedAt.Format(time.RFC3339),
	}
}
