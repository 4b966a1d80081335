package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/marquee/internal/database"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, image,
	refresh_token, refresh_token_expires_at, created_at, updated_at`

type UserRepository struct {
	pool    *pgxpool.Pool
	history *SearchHistoryRepository
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{
		pool:    db.Pool,
		history: NewSearchHistoryRepository(db),
	}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Image,
		&user.RefreshToken, &user.RefreshTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

// getOne runs a single-user query and attaches the user's search history
func (r *UserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user, err := scanUserRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	history, err := r.history.List(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}
	user.SearchHistory = history

	return user, nil
}

// validID reports whether id can name a row. Token claims carry arbitrary
// strings and Postgres rejects a non-UUID id with 22P02.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}

	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// Create inserts a new user. Duplicate email or username surfaces as
// models.ErrEmailTaken / models.ErrUsernameTaken from the unique indexes.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, image,
			refresh_token, refresh_token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	created, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Image,
		user.RefreshToken, user.RefreshTokenExpiresAt,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	created.SearchHistory = []models.SearchHistoryItem{}
	return created, nil
}

// SetRefreshToken replaces the user's single live refresh token
func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	if !validID(id) {
		return models.ErrNotFound
	}

	query := `
		UPDATE users SET refresh_token = $1, refresh_token_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, token, expiresAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	if !validID(id) {
		return models.ErrNotFound
	}

	query := `
		UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateImage(ctx context.Context, id, image string) (*models.User, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}

	query := `
		UPDATE users SET image = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, image, id))
	if err != nil {
		return nil, err
	}

	history, err := r.history.List(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}
	user.SearchHistory = history

	return user, nil
}

// PurgeExpiredRefreshTokens clears refresh tokens whose expiry is before now
func (r *UserRepository) PurgeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users SET refresh_token = NULL, refresh_token_expires_at = NULL
		WHERE refresh_token IS NOT NULL AND refresh_token_expires_at < $1
	`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired refresh tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
