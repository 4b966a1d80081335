package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/marquee/internal/config"
)

// StatusError is returned when the metadata service answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: GET %s returned status %d", e.Path, e.StatusCode)
}

// IsNotFound reports whether err carries an upstream 404
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// ListResponse is the envelope of every paged TMDB list endpoint. Results are
// kept raw and relayed to clients unchanged.
type ListResponse struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// Client is a read-only TMDB v3 client. Responses are cached when a Cache is
// configured.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

// WithCache enables response caching
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithHTTPClient overrides the default http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(cfg *config.TMDBConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches path (e.g. "/movie/550") and returns the raw JSON body.
// The configured language is always sent.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if query == nil {
		query = url.Values{}
	}
	if c.language != "" && query.Get("language") == "" {
		query.Set("language", c.language)
	}

	endpoint := c.baseURL + path + "?" + query.Encode()
	cacheKey := "tmdb:" + path + "?" + query.Encode()

	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, cacheKey); err != nil {
			c.logger.Warn("tmdb cache read failed", slog.String("key", cacheKey), slog.Any("error", err))
		} else if ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tmdb response: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("tmdb returned invalid JSON for %s", path)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.Warn("tmdb cache write failed", slog.String("key", cacheKey), slog.Any("error", err))
		}
	}

	return body, nil
}

// GetList fetches a paged list endpoint
func (c *Client) GetList(ctx context.Context, path string, query url.Values) (*ListResponse, error) {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var list ListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb list: %w", err)
	}
	if list.Results == nil {
		list.Results = []json.RawMessage{}
	}

	return &list, nil
}

// Ping checks that the cache, if any, is reachable
func (c *Client) Ping(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Ping(ctx)
}
