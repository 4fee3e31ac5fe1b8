package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/service"
)

// tokenRefreshWindow is how far ahead of expiry a team's token is renewed.
const tokenRefreshWindow = 7 * 24 * time.Hour

type TokenRefreshJob struct {
	teams    repository.TeamRepository
	accounts service.AccountService
	now      func() time.Time
}

func NewTokenRefreshJob(teams repository.TeamRepository, accounts service.AccountService) *TokenRefreshJob {
	return &TokenRefreshJob{
		teams:    teams,
		accounts: accounts,
		now:      time.Now,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	if _, err := c.Run(context.Background()); err != nil {
		slog.Info(err.Error())
	}
}

func (c *TokenRefreshJob) Run(ctx context.Context) (int, error) {
	teams, err := c.teams.ListByTokenExpiry(ctx, c.now().Add(tokenRefreshWindow))
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	refreshed := 0

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, team := range teams {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(team *models.Team) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.accounts.RefreshToken(ctx, team); err != nil {
				slog.Info("Unable to refresh Instagram token", "team_id", team.ID, "error", err)
				return
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
		}(team)
	}

	wg.Wait()
	return refreshed, nil
}
