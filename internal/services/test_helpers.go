package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/models"
	"github.com/BradenHooton/marquee/internal/tmdb"
	pkglogger "github.com/BradenHooton/marquee/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/google/uuid"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc           func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc     func(ctx context.Context, username string) (*models.User, error)
	CreateFunc            func(ctx context.Context, user *models.User) (*models.User, error)
	SetRefreshTokenFunc   func(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearRefreshTokenFunc func(ctx context.Context, id string) error
	UpdateImageFunc       func(ctx context.Context, id, image string) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	if m.SetRefreshTokenFunc != nil {
		return m.SetRefreshTokenFunc(ctx, id, token, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	if m.ClearRefreshTokenFunc != nil {
		return m.ClearRefreshTokenFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) UpdateImage(ctx context.Context, id, image string) (*models.User, error) {
	if m.UpdateImageFunc != nil {
		return m.UpdateImageFunc(ctx, id, image)
	}
	return nil, models.ErrInternalServer
}

// memoryUserRepository is a UserRepository backed by a map, enforcing the
// same uniqueness rules as the database
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*models.User)}
}

func (r *memoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, models.ErrEmailTaken
		}
		if u.Username == user.Username {
			return nil, models.ErrUsernameTaken
		}
	}
	stored := *user
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func (r *memoryUserRepository) SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.RefreshToken = &token
	u.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (r *memoryUserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.RefreshToken = nil
	u.RefreshTokenExpiresAt = nil
	return nil
}

func (r *memoryUserRepository) UpdateImage(ctx context.Context, id, image string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Image = image
	clone := *u
	return &clone, nil
}

// MockSearchHistoryRepository implements SearchHistoryRepository for testing
type MockSearchHistoryRepository struct {
	AppendFunc         func(ctx context.Context, userID string, item models.SearchHistoryItem) error
	ListFunc           func(ctx context.Context, userID string) ([]models.SearchHistoryItem, error)
	RemoveByItemIDFunc func(ctx context.Context, userID string, itemID int64) (int64, error)
}

func (m *MockSearchHistoryRepository) Append(ctx context.Context, userID string, item models.SearchHistoryItem) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, userID, item)
	}
	return nil
}

func (m *MockSearchHistoryRepository) List(ctx context.Context, userID string) ([]models.SearchHistoryItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []models.SearchHistoryItem{}, nil
}

func (m *MockSearchHistoryRepository) RemoveByItemID(ctx context.Context, userID string, itemID int64) (int64, error) {
	if m.RemoveByItemIDFunc != nil {
		return m.RemoveByItemIDFunc(ctx, userID, itemID)
	}
	return 0, nil
}

// MockMetadataClient implements MetadataClient for testing
type MockMetadataClient struct {
	GetFunc     func(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	GetListFunc func(ctx context.Context, path string, query url.Values) (*tmdb.ListResponse, error)
}

func (m *MockMetadataClient) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, path, query)
	}
	return json.RawMessage(`{}`), nil
}

func (m *MockMetadataClient) GetList(ctx context.Context, path string, query url.Values) (*tmdb.ListResponse, error) {
	if m.GetListFunc != nil {
		return m.GetListFunc(ctx, path, query)
	}
	return &tmdb.ListResponse{Results: []json.RawMessage{}}, nil
}

// MockAvatarStore implements AvatarStore for testing
type MockAvatarStore struct {
	ListFoldersFunc func(ctx context.Context) ([]models.AvatarFolder, error)
	ListImagesFunc  func(ctx context.Context, folderPath string) ([]models.AvatarImage, error)
}

func (m *MockAvatarStore) ListFolders(ctx context.Context) ([]models.AvatarFolder, error) {
	if m.ListFoldersFunc != nil {
		return m.ListFoldersFunc(ctx)
	}
	return []models.AvatarFolder{}, nil
}

func (m *MockAvatarStore) ListImages(ctx context.Context, folderPath string) ([]models.AvatarImage, error) {
	if m.ListImagesFunc != nil {
		return m.ListImagesFunc(ctx, folderPath)
	}
	return []models.AvatarImage{}, nil
}

// MockMailer implements Mailer for testing
type MockMailer struct {
	SendWelcomeEmailFunc func(ctx context.Context, email, username string) error
}

func (m *MockMailer) SendWelcomeEmail(ctx context.Context, email, username string) error {
	if m.SendWelcomeEmailFunc != nil {
		return m.SendWelcomeEmailFunc(ctx, email, username)
	}
	return nil
}

// MockSES implements SESAPI for testing
type MockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

// NewTestUser builds a user with timestamps set
func NewTestUser(id, username, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Username:      username,
		Email:         email,
		SearchHistory: []models.SearchHistoryItem{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-32-characters-long!!", 10*time.Minute, 15*24*time.Hour)
}

func newTestAuthService(repo UserRepository, mailer Mailer) *AuthService {
	logger := testLogger()
	return NewAuthService(repo, newTestTokenManager(), mailer, logger, pkglogger.NewAuditLogger(logger))
}
