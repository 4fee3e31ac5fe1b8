package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/service"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// publishNowStatuses are the states a user may publish from immediately.
var publishNowStatuses = []string{models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusFailed}

// PublishJob advances due scheduled posts to published or failed.
type PublishJob struct {
	posts    repository.PostRepository
	media    repository.PostMediaRepository
	accounts service.AccountService
	settings service.SettingsService
	ig       service.InstagramService
	now      func() time.Time
}

type PublishSummary struct {
	Due       int
	Published int
	Failed    int
	Skipped   int
}

func NewPublishJob(
	posts repository.PostRepository,
	media repository.PostMediaRepository,
	accounts service.AccountService,
	settings service.SettingsService,
	ig service.InstagramService) *PublishJob {
	return &PublishJob{
		posts:    posts,
		media:    media,
		accounts: accounts,
		settings: settings,
		ig:       ig,
		now:      time.Now,
	}
}

// CheckScheduledPosts is the cron entry point.
func (j *PublishJob) CheckScheduledPosts() {
	if _, err := j.Run(context.Background()); err != nil {
		slog.Error("check scheduled posts failed", "error", err)
	}
}

// Run processes every post that is scheduled and due. Each post is claimed, and its outcome
// written, on its own; one failing post never stops the rest.
func (j *PublishJob) Run(ctx context.Context) (*PublishSummary, error) {
	logger := slog.With("run_id", runID())

	posts, err := j.posts.ListDue(ctx, j.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list due posts: %w", err)
	}

	summary := &PublishSummary{Due: len(posts)}
	logger.Info("starting check_scheduled_posts", "due", len(posts))

	for _, post := range posts {
		claimed, err := j.posts.Claim(ctx, post.ID, []string{models.PostStatusScheduled}, j.now())
		if err != nil {
			logger.Error("failed to claim post", "post_id", post.ID, "error", err)
			summary.Skipped++
			continue
		}
		if !claimed {
			logger.Info("post already claimed", "post_id", post.ID)
			summary.Skipped++
			continue
		}

		if _, err := j.publishClaimed(ctx, logger, post); err != nil {
			summary.Failed++
		} else {
			summary.Published++
		}
	}

	logger.Info("finished check_scheduled_posts",
		"published", summary.Published, "failed", summary.Failed, "skipped", summary.Skipped)
	return summary, nil
}

// PublishNow publishes a draft, scheduled or failed post immediately through the same
// claim and outcome writes as the scheduled path.
func (j *PublishJob) PublishNow(ctx context.Context, postID int64) (string, error) {
	logger := slog.With("run_id", runID(), "post_id", postID)

	post, err := j.posts.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}
	if post == nil {
		return "", service.ErrPostNotFound
	}

	claimed, err := j.posts.Claim(ctx, post.ID, publishNowStatuses, j.now())
	if err != nil {
		return "", err
	}
	if !claimed {
		return "", service.ErrPostNotClaimable
	}

	return j.publishClaimed(ctx, logger, post)
}

// publishClaimed runs after the post is committed as publishing. Every path ends with the
// post marked published or failed.
func (j *PublishJob) publishClaimed(ctx context.Context, logger *slog.Logger, post *models.Post) (string, error) {
	logger = logger.With("post_id", post.ID)

	instagramPostID, err := j.publish(ctx, logger, post)
	if err != nil {
		logger.Error("failed to publish post", "error", err)
		if markErr := j.posts.MarkFailed(ctx, post.ID, err.Error(), j.now()); markErr != nil {
			logger.Error("failed to mark post failed", "error", markErr)
		}
		return "", err
	}

	if err := j.markPublished(ctx, post.ID, instagramPostID); err != nil {
		logger.Error("published but failed to record outcome", "instagram_post_id", instagramPostID, "error", err)
		return instagramPostID, err
	}

	logger.Info("published post", "instagram_post_id", instagramPostID)
	return instagramPostID, nil
}

// markPublished tries the outcome write twice. If both fail, a note carrying the remote id
// is written so the post does not sit in publishing without explanation.
func (j *PublishJob) markPublished(ctx context.Context, postID int64, instagramPostID string) error {
	err := j.posts.MarkPublished(ctx, postID, instagramPostID, j.now())
	if err == nil {
		return nil
	}
	slog.Warn("retrying published outcome write", "post_id", postID, "error", err)

	if err = j.posts.MarkPublished(ctx, postID, instagramPostID, j.now()); err == nil {
		return nil
	}

	note := fmt.Sprintf("Published to Instagram as %s but the result could not be recorded: %v", instagramPostID, err)
	if noteErr := j.posts.SetErrorMessage(ctx, postID, note); noteErr != nil {
		slog.Error("failed to note unrecorded publish", "post_id", postID, "error", noteErr)
	}
	return err
}

func (j *PublishJob) publish(ctx context.Context, logger *slog.Logger, post *models.Post) (string, error) {
	team, err := j.accounts.ResolveOwner(ctx, post.UserID, post.TeamID)
	if err != nil {
		return "", err
	}

	creds, err := j.accounts.Credentials(team)
	if err != nil {
		logger.Error("instagram credentials unusable", "team_id", team.ID,
			"has_token", team.InstagramAccessToken != nil, "has_account_id", team.InstagramAccountID != nil)
		return "", err
	}

	attachments, err := j.media.ListByPostID(ctx, post.ID)
	if err != nil {
		return "", err
	}
	if len(attachments) == 0 {
		return "", service.ErrNoMediaItems
	}

	host := j.settings.PublicBaseURL(ctx)
	mediaURLs := make([]string, 0, len(attachments))
	for _, m := range attachments {
		mediaURLs = append(mediaURLs, MediaURL(host, m.ID))
	}

	logger.Info("publishing post", "team_id", team.ID, "media_count", len(mediaURLs), "app_host", host)
	return j.ig.Publish(ctx, creds.AccessToken, creds.AccountID, mediaURLs, post.Caption)
}

// MediaURL is the address under which this server serves a post attachment.
func MediaURL(host string, mediaID int64) string {
	return fmt.Sprintf("%s/api/posts/media/%d", host, mediaID)
}

func runID() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return "unknown"
	}
	return id
}
