package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload of both access and refresh tokens. The two kinds
// differ only in expiry and in which one the user record persists.
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
