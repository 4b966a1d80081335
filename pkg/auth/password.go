package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 10
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLen = 72
)

// ErrPasswordMismatch is returned by ComparePassword when the plaintext does not match
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordValidationError describes why a password was rejected
type PasswordValidationError struct {
	Reason string
}

func (e *PasswordValidationError) Error() string {
	return "invalid password: " + e.Reason
}

// HashPassword salts and hashes a plaintext password
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword checks a plaintext password against a stored hash.
// A wrong password yields ErrPasswordMismatch; a malformed hash yields a different error.
func ComparePassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// ValidatePassword enforces the signup length rules
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return &PasswordValidationError{Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLen)}
	}
	if len(password) > MaxPasswordLen {
		return &PasswordValidationError{Reason: fmt.Sprintf("must be at most %d characters", MaxPasswordLen)}
	}
	return nil
}
