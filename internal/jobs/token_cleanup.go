package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenStore is the interface that wraps the token removal capability the
// cleanup job needs
type TokenStore interface {
	// DeleteOlderThan deletes refresh tokens created before the cutoff and
	// returns the number of rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenCleanup removes refresh tokens older than the retention period.
// Scheduled by the cron runner in main.
type TokenCleanup struct {
	store     TokenStore
	retention time.Duration
	logger    *zap.Logger
}

// NewTokenCleanup creates a new token cleanup job
func NewTokenCleanup(store TokenStore, retention time.Duration, logger *zap.Logger) *TokenCleanup {
	return &TokenCleanup{
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Run executes one cleanup pass
func (j *TokenCleanup) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	removed, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("token cleanup failed", zap.Error(err))
		return err
	}

	j.logger.Info("token cleanup completed",
		zap.Int64("removed", removed),
		zap.Time("cutoff", cutoff),
	)
	return nil
}
