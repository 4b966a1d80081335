package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/tmdb"
)

// MetadataClient is the read side of the movie metadata service
type MetadataClient interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	GetList(ctx context.Context, path string, query url.Values) (*tmdb.ListResponse, error)
}

// SearchHistoryRepository defines the interface for search history access
type SearchHistoryRepository interface {
	Append(ctx context.Context, userID string, item models.SearchHistoryItem) error
	List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error)
	RemoveByItemID(ctx context.Context, userID string, itemID int64) (int64, error)
}

// searchHit holds the fields of a search result kept in history
type searchHit struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"`
	PosterPath  *string `json:"poster_path"`
	ProfilePath *string `json:"profile_path"`
}

// historyItem maps the first hit to a history entry. People carry a profile
// image and a name, movies a poster and a title, shows a poster and a name.
func (h searchHit) historyItem(kind models.SearchType, now time.Time) models.SearchHistoryItem {
	item := models.SearchHistoryItem{
		ItemID:     h.ID,
		SearchType: kind,
		CreatedAt:  now,
	}

	switch kind {
	case models.SearchTypePerson:
		item.Image = derefString(h.ProfilePath)
		item.Title = h.Name
	case models.SearchTypeMovie:
		item.Image = derefString(h.PosterPath)
		item.Title = h.Title
	case models.SearchTypeTV:
		item.Image = derefString(h.PosterPath)
		item.Title = h.Name
	}

	return item
}

// SearchService runs searches against the metadata service and records hits
type SearchService struct {
	client  MetadataClient
	history SearchHistoryRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewSearchService(client MetadataClient, history SearchHistoryRepository, logger *slog.Logger) *SearchService {
	return &SearchService{
		client:  client,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Search queries the metadata service and appends the first hit to the
// user's history. No hits yields models.ErrNotFound.
func (s *SearchService) Search(ctx context.Context, userID string, kind models.SearchType, query string) ([]json.RawMessage, error) {
	if !kind.Valid() {
		return nil, models.ErrBadRequest
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")

	list, err := s.client.GetList(ctx, "/search/"+string(kind), params)
	if err != nil {
		s.logger.Error("search request failed", slog.String("search_type", string(kind)), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	if len(list.Results) == 0 {
		return nil, models.ErrNotFound
	}

	var first searchHit
	if err := json.Unmarshal(list.Results[0], &first); err != nil {
		s.logger.Error("unexpected search result shape", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}

	if err := s.history.Append(ctx, userID, first.historyItem(kind, s.now().UTC())); err != nil {
		s.logger.Error("failed to record search history", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return list.Results, nil
}

// History returns the user's search history, oldest first
func (s *SearchService) History(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
	items, err := s.history.List(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list search history", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return items, nil
}

// RemoveHistoryItem deletes every history entry for itemID. Removing an item
// that is not present is not an error.
func (s *SearchService) RemoveHistoryItem(ctx context.Context, userID string, itemID int64) error {
	removed, err := s.history.RemoveByItemID(ctx, userID, itemID)
	if err != nil {
		s.logger.Error("failed to remove search history item", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Debug("search history pruned", slog.String("user_id", userID), slog.Int64("removed", removed))
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
