package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{name: "exactly minimum length", password: "secret", shouldFail: false},
		{name: "long password", password: "a much longer passphrase", shouldFail: false},
		{name: "too short", password: "abc12", shouldFail: true},
		{name: "empty", password: "", shouldFail: true},
		{name: "over bcrypt limit", password: strings.Repeat("x", MaxPasswordLen+1), shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.shouldFail {
				var pve *PasswordValidationError
				assert.True(t, errors.As(err, &pve), "expected PasswordValidationError, got %v", err)
				assert.Contains(t, err.Error(), "invalid password")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, ComparePassword(hash, "secret1"))
	assert.ErrorIs(t, ComparePassword(hash, "secret2"), ErrPasswordMismatch)
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("secret1")
	require.NoError(t, err)
	second, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	err := ComparePassword("not-a-bcrypt-hash", "secret1")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrPasswordMismatch))
}
