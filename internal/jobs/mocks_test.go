package job

import (
	"context"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/service"
	"github.com/maheshrc27/igscheduler/internal/transfer"
	"github.com/stretchr/testify/mock"
)

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *mockPostRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	args := m.Called(ctx, now)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *mockPostRepository) Claim(ctx context.Context, postID int64, fromStatuses []string, now time.Time) (bool, error) {
	args := m.Called(ctx, postID, fromStatuses, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepository) MarkPublished(ctx context.Context, postID int64, instagramPostID string, publishedAt time.Time) error {
	return m.Called(ctx, postID, instagramPostID, publishedAt).Error(0)
}

func (m *mockPostRepository) MarkFailed(ctx context.Context, postID int64, errorMessage string, now time.Time) error {
	return m.Called(ctx, postID, errorMessage, now).Error(0)
}

func (m *mockPostRepository) SetErrorMessage(ctx context.Context, postID int64, errorMessage string) error {
	return m.Called(ctx, postID, errorMessage).Error(0)
}

type mockPostMediaRepository struct {
	mock.Mock
}

func (m *mockPostMediaRepository) GetByID(ctx context.Context, id int64) (*models.PostMedia, error) {
	args := m.Called(ctx, id)
	media, _ := args.Get(0).(*models.PostMedia)
	return media, args.Error(1)
}

func (m *mockPostMediaRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	args := m.Called(ctx, postID)
	media, _ := args.Get(0).([]*models.PostMedia)
	return media, args.Error(1)
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

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) ResolveOwner(ctx context.Context, userID int64, teamID *int64) (*models.Team, error) {
	args := m.Called(ctx, userID, teamID)
	team, _ := args.Get(0).(*models.Team)
	return team, args.Error(1)
}

func (m *mockAccountService) Credentials(team *models.Team) (*models.Credentials, error) {
	args := m.Called(team)
	creds, _ := args.Get(0).(*models.Credentials)
	return creds, args.Error(1)
}

func (m *mockAccountService) Status(ctx context.Context, team *models.Team) *transfer.InstagramStatus {
	status, _ := m.Called(ctx, team).Get(0).(*transfer.InstagramStatus)
	return status
}

func (m *mockAccountService) Connect(ctx context.Context, team *models.Team, req transfer.InstagramConnect) (*transfer.InstagramStatus, error) {
	args := m.Called(ctx, team, req)
	status, _ := args.Get(0).(*transfer.InstagramStatus)
	return status, args.Error(1)
}

func (m *mockAccountService) Disconnect(ctx context.Context, team *models.Team) error {
	return m.Called(ctx, team).Error(0)
}

func (m *mockAccountService) RefreshToken(ctx context.Context, team *models.Team) error {
	return m.Called(ctx, team).Error(0)
}

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) GetSetting(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockSettingsService) PublicBaseURL(ctx context.Context) string {
	return m.Called(ctx).String(0)
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

type mockCacheService struct {
	mock.Mock
}

func (m *mockCacheService) CacheOne(ctx context.Context, ownerID int64, data models.PostData) (*models.CachedPost, error) {
	args := m.Called(ctx, ownerID, data)
	cached, _ := args.Get(0).(*models.CachedPost)
	return cached, args.Error(1)
}

func (m *mockCacheService) CacheBatch(ctx context.Context, ownerID int64, posts []models.PostData) []*models.CachedPost {
	cached, _ := m.Called(ctx, ownerID, posts).Get(0).([]*models.CachedPost)
	return cached
}

func (m *mockCacheService) FetchWithCacheFallback(ctx context.Context, accessToken, accountID string, ownerID int64, limit int, useCache bool) service.FetchResult {
	return m.Called(ctx, accessToken, accountID, ownerID, limit, useCache).Get(0).(service.FetchResult)
}

func (m *mockCacheService) CacheProfilePicture(ctx context.Context, ownerID int64, url string) (string, bool) {
	args := m.Called(ctx, ownerID, url)
	return args.String(0), args.Bool(1)
}
