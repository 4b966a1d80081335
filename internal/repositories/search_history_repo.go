package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/marquee/internal/database"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchHistoryRepository stores per-user search hits in insertion order
type SearchHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewSearchHistoryRepository(db *database.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{pool: db.Pool}
}

func (r *SearchHistoryRepository) Append(ctx context.Context, userID string, item models.SearchHistoryItem) error {
	query := `
		INSERT INTO search_history (user_id, item_id, image, title, search_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		userID, item.ItemID, item.Image, item.Title, string(item.SearchType), item.CreatedAt,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// List returns the user's history, oldest first
func (r *SearchHistoryRepository) List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
	query := `
		SELECT item_id, image, title, search_type, created_at
		FROM search_history WHERE user_id = $1 ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	items := make([]models.SearchHistoryItem, 0)
	for rows.Next() {
		var item models.SearchHistoryItem
		var searchType string
		if err := rows.Scan(&item.ItemID, &item.Image, &item.Title, &searchType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search history: %w", err)
		}
		item.SearchType = models.SearchType(searchType)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// RemoveByItemID deletes every history entry pointing at itemID
func (r *SearchHistoryRepository) RemoveByItemID(ctx context.Context, userID string, itemID int64) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM search_history WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
