package service

import (
	"context"
	"io"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/transfer"
	"github.com/stretchr/testify/mock"
)

type mockCachedPostRepository struct {
	mock.Mock
}

func (m *mockCachedPostRepository) Upsert(ctx context.Context, ownerID int64, data models.PostData, now time.Time) (*models.CachedPost, error) {
	args := m.Called(ctx, ownerID, data, now)
	cached, _ := args.Get(0).(*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCachedPostRepository) SetImage(ctx context.Context, id int64, path, filename string) error {
	return m.Called(ctx, id, path, filename).Error(0)
}

func (m *mockCachedPostRepository) ListValid(ctx context.Context, ownerID int64, now time.Time, limit int) ([]*models.CachedPost, error) {
	args := m.Called(ctx, ownerID, now, limit)
	cached, _ := args.Get(0).([]*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCachedPostRepository) GetByID(ctx context.Context, id int64) (*models.CachedPost, error) {
	args := m.Called(ctx, id)
	cached, _ := args.Get(0).(*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCachedPostRepository) GetByInstagramPostID(ctx context.Context, instagramPostID string) (*models.CachedPost, error) {
	args := m.Called(ctx, instagramPostID)
	cached, _ := args.Get(0).(*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCachedPostRepository) DeleteExpired(ctx context.Context, now time.Time) ([]*models.CachedPost, error) {
	args := m.Called(ctx, now)
	cached, _ := args.Get(0).([]*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCachedPostRepository) DeleteByOwner(ctx context.Context, ownerID int64) ([]*models.CachedPost, error) {
	args := m.Called(ctx, ownerID)
	cached, _ := args.Get(0).([]*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCachedPostRepository) Stats(ctx context.Context, ownerID *int64, now time.Time) (*transfer.CacheStats, error) {
	args := m.Called(ctx, ownerID, now)
	stats, _ := args.Get(0).(*transfer.CacheStats)
	return stats, args.Error(1)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Fetch(ctx context.Context, url, name string) (string, error) {
	args := m.Called(ctx, url, name)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockBlobStore) Remove(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

type mockInstagramService struct {
	mock.Mock
}

func (m *mockInstagramService) ExchangeToken(ctx context.Context, shortLivedToken string) (*transfer.InstagramToken, error) {
	args := m.Called(ctx, shortLivedToken)
	token, _ := args.Get(0).(*transfer.InstagramToken)
	return token, args.Error(1)
}

func (m *mockInstagramService) ResolveAccountID(ctx context.Context, accessToken string) (string, error) {
	args := m.Called(ctx, accessToken)
	return args.String(0), args.Error(1)
}

func (m *mockInstagramService) ResolveAccountIDFromPage(ctx context.Context, accessToken, pageID string) (string, error) {
	args := m.Called(ctx, accessToken, pageID)
	return args.String(0), args.Error(1)
}

func (m *mockInstagramService) GetAccountInfo(ctx context.Context, accessToken, accountID string) (*transfer.InstagramAccountInfo, error) {
	args := m.Called(ctx, accessToken, accountID)
	info, _ := args.Get(0).(*transfer.InstagramAccountInfo)
	return info, args.Error(1)
}

func (m *mockInstagramService) ListMedia(ctx context.Context, accessToken, accountID string, limit int) ([]models.PostData, error) {
	args := m.Called(ctx, accessToken, accountID, limit)
	posts, _ := args.Get(0).([]models.PostData)
	return posts, args.Error(1)
}

func (m *mockInstagramService) Publish(ctx context.Context, accessToken, accountID string, mediaURLs []string, caption string) (string, error) {
	args := m.Called(ctx, accessToken, accountID, mediaURLs, caption)
	return args.String(0), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

type mockTeamRepository struct {
	mock.Mock
}

func (m *mockTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	args := m.Called(ctx, id)
	team, _ := args.Get(0).(*models.Team)
	return team, args.Error(1)
}

func (m *mockTeamRepository) GetByMemberUserID(ctx context.Context, userID int64) (*models.Team, bool, error) {
	args := m.Called(ctx, userID)
	team, _ := args.Get(0).(*models.Team)
	return team, args.Bool(1), args.Error(2)
}

func (m *mockTeamRepository) ListConnected(ctx context.Context) ([]*models.Team, error) {
	args := m.Called(ctx)
	teams, _ := args.Get(0).([]*models.Team)
	return teams, args.Error(1)
}

func (m *mockTeamRepository) ListByTokenExpiry(ctx context.Context, before time.Time) ([]*models.Team, error) {
	args := m.Called(ctx, before)
	teams, _ := args.Get(0).([]*models.Team)
	return teams, args.Error(1)
}

func (m *mockTeamRepository) SetCredentials(ctx context.Context, team *models.Team) error {
	return m.Called(ctx, team).Error(0)
}

func (m *mockTeamRepository) SetToken(ctx context.Context, teamID int64, oldAccessToken, accessToken string, expiresAt time.Time) error {
	return m.Called(ctx, teamID, oldAccessToken, accessToken, expiresAt).Error(0)
}

func (m *mockTeamRepository) ClearCredentials(ctx context.Context, teamID int64) error {
	return m.Called(ctx, teamID).Error(0)
}

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) GetByKey(ctx context.Context, key string) (*models.Setting, bool, error) {
	args := m.Called(ctx, key)
	setting, _ := args.Get(0).(*models.Setting)
	return setting, args.Bool(1), args.Error(2)
}
