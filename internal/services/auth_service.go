package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/models"
	pkgauth "github.com/BradenHooton/marquee/pkg/auth"
	pkglogger "github.com/BradenHooton/marquee/pkg/logger"
)

// DefaultAvatars is the fixed set new accounts pick from
var DefaultAvatars = []string{"/avatar1.png", "/avatar2.png", "/avatar3.png"}

const welcomeEmailTimeout = 10 * time.Second

// AuthService handles signup, login, logout and access token refresh
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	mailer      Mailer
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	pickAvatar  func() string
}

// NewAuthService creates a new AuthService. mailer may be nil.
func NewAuthService(repo UserRepository, tm *auth.TokenManager, mailer Mailer, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		mailer:      mailer,
		logger:      logger,
		auditLogger: auditLogger,
		pickAvatar: func() string {
			return DefaultAvatars[rand.IntN(len(DefaultAvatars))]
		},
	}
}

// SignupInput carries the fields accepted at signup
type SignupInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// AuthResult is a freshly issued session
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Signup creates an account and opens a session for it
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if email == "" || username == "" {
		s.logSignupFailure(email, "blank_field")
		return nil, fmt.Errorf("%w: email and username are required", models.ErrBadRequest)
	}

	if err := pkgauth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	// Fast path only; the unique indexes decide races
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logSignupFailure(email, "email_taken")
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		s.logSignupFailure(email, "username_taken")
		return nil, models.ErrUsernameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Image:        s.pickAvatar(),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logSignupFailure(email, "unique_violation")
			return nil, err
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result, err := s.issueSession(ctx, created)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", slog.String("user_id", created.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "signup",
		UserID:    created.ID,
		Email:     email,
		Success:   true,
	})

	s.sendWelcome(ctx, created)

	return result, nil
}

// Login verifies credentials and opens a session, replacing any previous
// refresh token. An unknown email yields models.ErrNotFound and a wrong
// password models.ErrInvalidCredentials; handlers report them differently.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: unknown email")
			s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Email:         email,
				FailureReason: "unknown_email",
			})
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, pkgauth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unusable", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.logger.Info("login failed: invalid credentials", slog.String("user_id", user.ID))
		s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "invalid_password",
		})
		return nil, models.ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return result, nil
}

// Logout verifies the access token and clears the user's stored refresh token
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(accessToken)
	if err != nil {
		return models.ErrUnauthorized
	}

	if err := s.repo.ClearRefreshToken(ctx, claims.UserID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to clear refresh token", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "logout",
		UserID:    claims.UserID,
		Success:   true,
	})
	return nil
}

// Refresh issues a new access token for a refresh token that verifies and
// still matches the one stored on the user. The stored token is not rotated.
//
// Returns models.ErrInvalidToken when verification fails and
// models.ErrForbidden when the user is gone or the token is stale.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshToken)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return "", models.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logRefreshFailure(claims.UserID, "user_not_found")
			return "", models.ErrForbidden
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		s.logRefreshFailure(user.ID, "stale_token")
		return "", models.ErrForbidden
	}

	accessToken, err := s.tm.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType: "token_refresh",
		UserID:    user.ID,
		Success:   true,
	})
	return accessToken, nil
}

// issueSession signs both tokens and persists the refresh token
func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.tm.GenerateAccessToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, expiresAt, err := s.tm.GenerateRefreshToken(user.ID)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.SetRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		s.logger.Error("failed to persist refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user.RefreshToken = &refreshToken
	user.RefreshTokenExpiresAt = &expiresAt

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// sendWelcome mails the new user without holding up the response
func (s *AuthService) sendWelcome(ctx context.Context, user *models.User) {
	if s.mailer == nil {
		return
	}

	userID, email, username := user.ID, user.Email, user.Username
	go func() {
		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeEmailTimeout)
		defer cancel()

		if err := s.mailer.SendWelcomeEmail(mailCtx, email, username); err != nil {
			s.logger.Warn("welcome email not sent", slog.String("user_id", userID), slog.Any("error", err))
		}
	}()
}

func (s *AuthService) logSignupFailure(email, reason string) {
	s.logger.Info("signup rejected", slog.String("reason", reason))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType:     "signup_failed",
		Email:         email,
		FailureReason: reason,
	})
}

func (s *AuthService) logRefreshFailure(userID, reason string) {
	s.logger.Info("token refresh rejected", slog.String("user_id", userID), slog.String("reason", reason))
	s.auditLogger.LogAuthEvent(pkglogger.AuditEvent{
		EventType:     "token_refresh_failed",
		UserID:        userID,
		FailureReason: reason,
	})
}
