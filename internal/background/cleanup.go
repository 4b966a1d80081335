package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RefreshTokenPurger clears refresh tokens whose expiry has passed
type RefreshTokenPurger interface {
	PurgeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// CleanupManager periodically clears expired refresh tokens from user records
type CleanupManager struct {
	users    RefreshTokenPurger
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(users RefreshTokenPurger, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		users:    users,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a cleanup immediately and then on every tick until stopped
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cleared, err := cm.users.PurgeExpiredRefreshTokens(cleanupCtx, cm.now())
	if err != nil {
		cm.logger.Error("failed to purge expired refresh tokens", slog.Any("error", err))
		return
	}

	if cleared > 0 {
		cm.logger.Info("expired refresh tokens cleared", slog.Int64("users", cleared))
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
