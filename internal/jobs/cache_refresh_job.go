package job

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	refreshMediaLimit  = 25
	refreshConcurrency = 5
)

// CacheRefreshJob pulls the latest posts of every connected team into the cache.
type CacheRefreshJob struct {
	teams    repository.TeamRepository
	accounts service.AccountService
	ig       service.InstagramService
	cache    service.CacheService
}

func NewCacheRefreshJob(
	teams repository.TeamRepository,
	accounts service.AccountService,
	ig service.InstagramService,
	cache service.CacheService) *CacheRefreshJob {
	return &CacheRefreshJob{
		teams:    teams,
		accounts: accounts,
		ig:       ig,
		cache:    cache,
	}
}

func (j *CacheRefreshJob) RefreshInstagramCache() {
	if _, err := j.Run(context.Background()); err != nil {
		slog.Error("failed to refresh instagram cache", "error", err)
	}
}

// Run returns how many teams were refreshed. A failing team is logged and skipped.
func (j *CacheRefreshJob) Run(ctx context.Context) (int, error) {
	teams, err := j.teams.ListConnected(ctx)
	if err != nil {
		return 0, err
	}
	teams = uniqueAccounts(teams)

	var refreshed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for _, team := range teams {
		g.Go(func() error {
			if j.refreshTeam(gctx, team) {
				refreshed.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	slog.Info("instagram cache refresh completed", "teams", len(teams), "refreshed", refreshed.Load())
	return int(refreshed.Load()), nil
}

func (j *CacheRefreshJob) refreshTeam(ctx context.Context, team *models.Team) bool {
	creds, err := j.accounts.Credentials(team)
	if err != nil {
		slog.Debug("skipping cache refresh", "team_id", team.ID, "error", err)
		return false
	}

	posts, err := j.ig.ListMedia(ctx, creds.AccessToken, creds.AccountID, refreshMediaLimit)
	if err != nil {
		slog.Warn("failed to refresh cache", "team_id", team.ID, "error", err)
		return false
	}

	j.cache.CacheBatch(ctx, team.ID, posts)
	slog.Debug("refreshed cache", "team_id", team.ID, "posts", len(posts))
	return true
}

// uniqueAccounts keeps the first team per connected account, so no two refreshes write the
// same cached posts or image files at once.
func uniqueAccounts(teams []*models.Team) []*models.Team {
	seen := make(map[string]bool, len(teams))
	unique := make([]*models.Team, 0, len(teams))
	for _, team := range teams {
		if id := team.InstagramAccountID; id != nil && *id != "" {
			if seen[*id] {
				slog.Debug("skipping team sharing an account", "team_id", team.ID, "account_id", *id)
				continue
			}
			seen[*id] = true
		}
		unique = append(unique, team)
	}
	return unique
}
