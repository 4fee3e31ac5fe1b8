package queue

import (
	"context"

	job "github.com/maheshrc27/igscheduler/internal/jobs"
)

// Publisher publishes one post immediately.
type Publisher interface {
	PublishNow(ctx context.Context, postID int64) (string, error)
}

type Queue struct {
	publisher Publisher
	jobs      map[string]func(ctx context.Context) error
}

func NewQueue(
	publish *job.PublishJob,
	cleanup *job.CacheCleanupJob,
	refresh *job.CacheRefreshJob,
	tokens *job.TokenRefreshJob) *Queue {
	return &Queue{
		publisher: publish,
		jobs: map[string]func(ctx context.Context) error{
			JobCheckScheduledPosts: func(ctx context.Context) error {
				_, err := publish.Run(ctx)
				return err
			},
			JobCleanupExpiredCache: func(ctx context.Context) error {
				_, err := cleanup.Run(ctx)
				return err
			},
			JobRefreshInstagramCache: func(ctx context.Context) error {
				_, err := refresh.Run(ctx)
				return err
			},
			JobRefreshTokens: func(ctx context.Context) error {
				_, err := tokens.Run(ctx)
				return err
			},
		},
	}
}

const (
	TaskTypePublishPost = "post:publish"
	taskTypeJobPrefix   = "job:"
)

const (
	JobCheckScheduledPosts   = "check_scheduled_posts"
	JobCleanupExpiredCache   = "cleanup_expired_cache"
	JobRefreshInstagramCache = "refresh_instagram_cache"
	JobRefreshTokens         = "refresh_tokens"
)

// JobNames lists every job that can be triggered on demand.
var JobNames = []string{JobCheckScheduledPosts, JobCleanupExpiredCache, JobRefreshInstagramCache, JobRefreshTokens}

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

func JobTaskType(name string) string {
	return taskTypeJobPrefix + name
}

func IsJobName(name string) bool {
	for _, n := range JobNames {
		if n == name {
			return true
		}
	}
	return false
}
