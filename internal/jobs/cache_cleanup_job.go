package job

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/igscheduler/internal/service"
)

type CacheCleanupJob struct {
	store service.CacheStore
}

func NewCacheCleanupJob(store service.CacheStore) *CacheCleanupJob {
	return &CacheCleanupJob{store: store}
}

func (j *CacheCleanupJob) CleanupExpiredCache() {
	if _, err := j.Run(context.Background()); err != nil {
		slog.Error("failed to clean up cache", "error", err)
	}
}

func (j *CacheCleanupJob) Run(ctx context.Context) (int, error) {
	return j.store.SweepExpired(ctx)
}
