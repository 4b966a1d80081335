package database

import (
	"errors"

	"github.com/BradenHooton/marquee/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Unique index names from the users migration
const (
	usersEmailKey    = "users_email_key"
	usersUsernameKey = "users_username_key"
)

// MapPostgresError translates driver errors into model sentinels
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case usersEmailKey:
				return models.ErrEmailTaken
			case usersUsernameKey:
				return models.ErrUsernameTaken
			}
			return models.ErrConflict
		case "23503", "23502", "23514": // foreign_key, not_null, check
			return models.ErrBadRequest
		}
	}

	return err
}
