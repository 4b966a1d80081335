//go:build integration

package repositories

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/marquee/internal/database"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDatabase starts a throwaway Postgres, applies migrations and
// returns a DB that is torn down with the test
func setupTestDatabase(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("marquee"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := database.NewFromPool(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, db.Migrate(ctx))

	return db
}

func newUser(username, email string) *models.User {
	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Image:        "/avatar1.png",
	}
}

func TestUserRepository_Integration(t *testing.T) {
	db := setupTestDatabase(t)
	users := NewUserRepository(db)
	history := NewSearchHistoryRepository(db)
	ctx := context.Background()

	created, err := users.Create(ctx, newUser("neo", "neo@matrix.io"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.SearchHistory)

	t.Run("unique indexes classify duplicates", func(t *testing.T) {
		_, err := users.Create(ctx, newUser("other", "neo@matrix.io"))
		assert.ErrorIs(t, err, models.ErrEmailTaken)

		_, err = users.Create(ctx, newUser("neo", "other@matrix.io"))
		assert.ErrorIs(t, err, models.ErrUsernameTaken)
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := users.GetByEmail(ctx, "neo@matrix.io")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		byName, err := users.GetByUsername(ctx, "neo")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)

		_, err = users.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = users.GetByEmail(ctx, "nobody@matrix.io")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("refresh token lifecycle", func(t *testing.T) {
		expires := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
		require.NoError(t, users.SetRefreshToken(ctx, created.ID, "r1", expires))

		got, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.RefreshToken)
		assert.Equal(t, "r1", *got.RefreshToken)

		require.NoError(t, users.ClearRefreshToken(ctx, created.ID))
		got, err = users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.RefreshToken)
	})

	t.Run("purge expired refresh tokens", func(t *testing.T) {
		require.NoError(t, users.SetRefreshToken(ctx, created.ID, "stale", time.Now().Add(-time.Minute)))

		cleared, err := users.PurgeExpiredRefreshTokens(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleared)

		got, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.RefreshToken)
	})

	t.Run("search history order and removal", func(t *testing.T) {
		now := time.Now().UTC()
		for _, item := range []models.SearchHistoryItem{
			{ItemID: 603, Title: "The Matrix", SearchType: models.SearchTypeMovie, CreatedAt: now},
			{ItemID: 6384, Title: "Keanu Reeves", SearchType: models.SearchTypePerson, CreatedAt: now},
			{ItemID: 603, Title: "The Matrix", SearchType: models.SearchTypeMovie, CreatedAt: now},
		} {
			require.NoError(t, history.Append(ctx, created.ID, item))
		}

		got, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, got.SearchHistory, 3)
		assert.Equal(t, int64(6384), got.SearchHistory[1].ItemID)

		removed, err := history.RemoveByItemID(ctx, created.ID, 603)
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		items, err := history.List(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(6384), items[0].ItemID)
	})

	t.Run("update image", func(t *testing.T) {
		updated, err := users.UpdateImage(ctx, created.ID, "https://cdn/new.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/new.png", updated.Image)

		_, err = users.UpdateImage(ctx, "00000000-0000-0000-0000-000000000000", "x")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
