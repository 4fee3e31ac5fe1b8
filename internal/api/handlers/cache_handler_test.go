package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/service"
	"github.com/maheshrc27/igscheduler/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (m *mockCacheService) CacheBatch(ctx context.Context, ownerID int64, posts []models.PostData) []*models.CachedPost {
	cached, _ := m.Called(ctx, ownerID, posts).Get(0).([]*models.CachedPost)
	return cached
}

type ownerCacheStore struct {
	service.CacheStore
	stats    *transfer.CacheStats
	deleted  int
	err      error
	ownerIDs []int64
}

func (s *ownerCacheStore) Stats(ctx context.Context, ownerID *int64) (*transfer.CacheStats, error) {
	s.ownerIDs = append(s.ownerIDs, *ownerID)
	return s.stats, s.err
}

func (s *ownerCacheStore) InvalidateOwner(ctx context.Context, ownerID int64) (int, error) {
	s.ownerIDs = append(s.ownerIDs, ownerID)
	return s.deleted, s.err
}

type stubInstagramService struct {
	service.InstagramService
	posts []models.PostData
	err   error
}

func (s *stubInstagramService) ListMedia(ctx context.Context, accessToken, accountID string, limit int) ([]models.PostData, error) {
	return s.posts, s.err
}

func connectedAccounts() (*mockAccountService, *models.Team) {
	team := &models.Team{ID: 9}
	accounts := &mockAccountService{}
	accounts.On("ResolveOwner", mock.Anything, int64(3), (*int64)(nil)).Return(team, nil)
	accounts.On("Credentials", team).Return(&models.Credentials{OwnerID: 9, AccountID: "1784", AccessToken: "plain-token"}, nil)
	return accounts, team
}

func TestCacheStats(t *testing.T) {
	accounts, _ := connectedAccounts()
	store := &ownerCacheStore{stats: &transfer.CacheStats{Total: 3, Valid: 2, Expired: 1, ExpiryDays: 30}}

	app := newTestApp()
	app.Get("/stats", NewCacheHandler(accounts, store, &mockCacheService{}, nil).Stats)

	resp, body := doRequest(t, app, http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total":3,"valid":2,"expired":1,"expiry_days":30}`, string(body))
	assert.Equal(t, []int64{9}, store.ownerIDs)

	failing := &ownerCacheStore{err: errors.New("db down")}
	app = newTestApp()
	app.Get("/stats", NewCacheHandler(accounts, failing, &mockCacheService{}, nil).Stats)

	resp, body = doRequest(t, app, http.MethodGet, "/stats")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "db down")
}

func TestCacheStats_UnknownUser(t *testing.T) {
	accounts := &mockAccountService{}
	accounts.On("ResolveOwner", mock.Anything, int64(3), (*int64)(nil)).Return(nil, service.ErrUserNotFound)

	app := newTestApp()
	app.Get("/stats", NewCacheHandler(accounts, &ownerCacheStore{}, &mockCacheService{}, nil).Stats)

	resp, _ := doRequest(t, app, http.MethodGet, "/stats")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCacheClear(t *testing.T) {
	accounts, _ := connectedAccounts()
	store := &ownerCacheStore{deleted: 4}

	app := newTestApp()
	app.Post("/clear", NewCacheHandler(accounts, store, &mockCacheService{}, nil).Clear)

	resp, body := doRequest(t, app, http.MethodPost, "/clear")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Cache cleared","deleted":4}`, string(body))
	assert.Equal(t, []int64{9}, store.ownerIDs)

	failing := &ownerCacheStore{err: errors.New("db down")}
	app = newTestApp()
	app.Post("/clear", NewCacheHandler(accounts, failing, &mockCacheService{}, nil).Clear)

	resp, _ = doRequest(t, app, http.MethodPost, "/clear")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCacheRefresh(t *testing.T) {
	posts := []models.PostData{{ID: "p1"}, {ID: "p2"}}

	t.Run("caches fetched posts", func(t *testing.T) {
		accounts, _ := connectedAccounts()
		cache := &mockCacheService{}
		cache.On("CacheBatch", mock.Anything, int64(9), posts).Return([]*models.CachedPost{{ID: 1}})

		app := newTestApp()
		app.Post("/refresh", NewCacheHandler(accounts, &ownerCacheStore{}, cache, &stubInstagramService{posts: posts}).Refresh)

		resp, body := doRequest(t, app, http.MethodPost, "/refresh")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.Unmarshal(body, &out))
		assert.EqualValues(t, 2, out["fetched"])
		assert.EqualValues(t, 1, out["cached"])
		cache.AssertExpectations(t)
	})

	t.Run("remote failure", func(t *testing.T) {
		accounts, _ := connectedAccounts()
		cache := &mockCacheService{}
		ig := &stubInstagramService{err: &service.RemoteAPIError{StatusCode: 500, Body: "plain-token leaked"}}

		app := newTestApp()
		app.Post("/refresh", NewCacheHandler(accounts, &ownerCacheStore{}, cache, ig).Refresh)

		resp, body := doRequest(t, app, http.MethodPost, "/refresh")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Failed to fetch Instagram posts"}`, string(body))
		cache.AssertNotCalled(t, "CacheBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not connected", func(t *testing.T) {
		team := &models.Team{ID: 9}
		accounts := &mockAccountService{}
		accounts.On("ResolveOwner", mock.Anything, int64(3), (*int64)(nil)).Return(team, nil)
		accounts.On("Credentials", team).Return(nil, service.ErrTokenExpired)

		app := newTestApp()
		app.Post("/refresh", NewCacheHandler(accounts, &ownerCacheStore{}, &mockCacheService{}, &stubInstagramService{}).Refresh)

		resp, body := doRequest(t, app, http.MethodPost, "/refresh")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"`+service.ErrTokenExpired.Error()+`"}`, string(body))
	})
}
