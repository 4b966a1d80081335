package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strconv"

	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/tmdb"
)

// MediaKind selects the movie or TV half of the catalog
type MediaKind string

const (
	MediaMovie MediaKind = "movie"
	MediaTV    MediaKind = "tv"
)

// CatalogService proxies catalog browsing to the metadata service
type CatalogService struct {
	client MetadataClient
	logger *slog.Logger
	randN  func(n int) int
}

func NewCatalogService(client MetadataClient, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		logger: logger,
		randN:  rand.IntN,
	}
}

// Trending returns one random entry from today's trending list, or JSON null
// when the list is empty
func (s *CatalogService) Trending(ctx context.Context, kind MediaKind) (json.RawMessage, error) {
	list, err := s.client.GetList(ctx, "/trending/"+string(kind)+"/day", nil)
	if err != nil {
		return nil, s.upstreamError("trending", kind, err)
	}

	if len(list.Results) == 0 {
		return json.RawMessage("null"), nil
	}

	return list.Results[s.randN(len(list.Results))], nil
}

// Trailers returns the videos attached to a title
func (s *CatalogService) Trailers(ctx context.Context, kind MediaKind, id string) ([]json.RawMessage, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}

	list, err := s.client.GetList(ctx, "/"+string(kind)+"/"+id+"/videos", nil)
	if err != nil {
		return nil, s.upstreamError("trailers", kind, err)
	}
	return list.Results, nil
}

// Details returns the full record for a title
func (s *CatalogService) Details(ctx context.Context, kind MediaKind, id string) (json.RawMessage, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}

	body, err := s.client.Get(ctx, "/"+string(kind)+"/"+id, nil)
	if err != nil {
		return nil, s.upstreamError("details", kind, err)
	}
	return body, nil
}

// Similar returns the first page of titles similar to id
func (s *CatalogService) Similar(ctx context.Context, kind MediaKind, id string) ([]json.RawMessage, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}

	list, err := s.client.GetList(ctx, "/"+string(kind)+"/"+id+"/similar", firstPage())
	if err != nil {
		return nil, s.upstreamError("similar", kind, err)
	}
	return list.Results, nil
}

// ByCategory returns the first page of a named list such as "popular"
func (s *CatalogService) ByCategory(ctx context.Context, kind MediaKind, category string) ([]json.RawMessage, error) {
	list, err := s.client.GetList(ctx, "/"+string(kind)+"/"+url.PathEscape(category), firstPage())
	if err != nil {
		return nil, s.upstreamError("category", kind, err)
	}
	return list.Results, nil
}

// upstreamError maps an upstream 404 to models.ErrNotFound and everything
// else to models.ErrUpstream
func (s *CatalogService) upstreamError(op string, kind MediaKind, err error) error {
	if tmdb.IsNotFound(err) {
		return models.ErrNotFound
	}
	s.logger.Error("catalog request failed",
		slog.String("op", op),
		slog.String("kind", string(kind)),
		slog.Any("error", err))
	return fmt.Errorf("%w: %v", models.ErrUpstream, err)
}

func firstPage() url.Values {
	return url.Values{"page": {"1"}}
}

func validID(id string) bool {
	n, err := strconv.ParseInt(id, 10, 64)
	return err == nil && n > 0
}
