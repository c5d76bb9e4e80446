package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type staleTokenDeleter interface {
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

// TokenCleanup periodically deletes verification tokens that were used or
// expired. It blocks until ctx is done
func TokenCleanup(ctx context.Context, t time.Duration, tokens staleTokenDeleter) {
	ticker := time.NewTicker(t)
	defer ticker.Stop()

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteStale(ctx, now)
			if err != nil {
				zap.L().Error("Failed to cleanup verification tokens", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Cleaned up verification tokens", zap.Int64("deleted", n))
			}
		}
	}
}
