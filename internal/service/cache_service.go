package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/igscheduler/internal/models"
)

// FetchSource tags where a FetchResult came from.
type FetchSource int

const (
	// SourceFresh: live graph API data, already written to the cache.
	SourceFresh FetchSource = iota
	// SourceCached: served from a valid cache without calling the graph API.
	SourceCached
	// SourceCachedFallback: the graph API failed and the cache answered instead.
	SourceCachedFallback
	// SourceUnavailable: the graph API failed and nothing was cached; Err holds the remote error.
	SourceUnavailable
)

func (s FetchSource) String() string {
	switch s {
	case SourceFresh:
		return "fresh"
	case SourceCached:
		return "cached"
	case SourceCachedFallback:
		return "cached_fallback"
	default:
		return "unavailable"
	}
}

type FetchResult struct {
	Source FetchSource
	Posts  []models.PostData
	Err    error
}

func (r FetchResult) FromCache() bool {
	return r.Source == SourceCached || r.Source == SourceCachedFallback
}

type CacheService interface {
	CacheOne(ctx context.Context, ownerID int64, data models.PostData) (*models.CachedPost, error)
	CacheBatch(ctx context.Context, ownerID int64, posts []models.PostData) []*models.CachedPost
	FetchWithCacheFallback(ctx context.Context, accessToken, accountID string, ownerID int64, limit int, useCache bool) FetchResult
	CacheProfilePicture(ctx context.Context, ownerID int64, url string) (string, bool)
}

type cacheService struct {
	store CacheStore
	blobs BlobStore
	ig    InstagramService
}

func NewCacheService(store CacheStore, blobs BlobStore, ig InstagramService) CacheService {
	return &cacheService{store: store, blobs: blobs, ig: ig}
}

// CacheOne writes the record first so its id can name the image, then downloads the image.
// A failed image download still leaves the metadata cached.
func (s *cacheService) CacheOne(ctx context.Context, ownerID int64, data models.PostData) (*models.CachedPost, error) {
	cached, err := s.store.Upsert(ctx, ownerID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to cache post %s: %w", data.ID, err)
	}

	if imageURL := data.ImageURL(); imageURL != "" {
		if blobPath, ok := s.store.DownloadBlob(ctx, imageURL, cached.ID); ok {
			if err := s.store.AttachImage(ctx, cached, blobPath); err != nil {
				slog.Error("failed to attach cached image", "cache_id", cached.ID, "error", err)
			}
		}
	}

	slog.Debug("cached post", "instagram_post_id", data.ID, "owner_id", ownerID)
	return cached, nil
}

func (s *cacheService) CacheBatch(ctx context.Context, ownerID int64, posts []models.PostData) []*models.CachedPost {
	cached := make([]*models.CachedPost, 0, len(posts))
	for _, data := range posts {
		c, err := s.CacheOne(ctx, ownerID, data)
		if err != nil {
			slog.Error("skipping post in cache batch", "owner_id", ownerID, "error", err)
			continue
		}
		cached = append(cached, c)
	}
	return cached
}

func (s *cacheService) FetchWithCacheFallback(ctx context.Context, accessToken, accountID string, ownerID int64, limit int, useCache bool) FetchResult {
	if useCache {
		if posts := s.validPosts(ctx, ownerID, limit); len(posts) > 0 {
			slog.Info("returning posts from cache", "owner_id", ownerID, "count", len(posts))
			return FetchResult{Source: SourceCached, Posts: posts}
		}
	}

	posts, err := s.ig.ListMedia(ctx, accessToken, accountID, limit)
	if err == nil {
		s.CacheBatch(ctx, ownerID, posts)
		return FetchResult{Source: SourceFresh, Posts: posts}
	}

	slog.Error("failed to fetch from instagram api", "owner_id", ownerID, "error", err)
	if cached := s.validPosts(ctx, ownerID, limit); len(cached) > 0 {
		slog.Warn("falling back to cached posts after api failure", "owner_id", ownerID)
		return FetchResult{Source: SourceCachedFallback, Posts: cached, Err: err}
	}
	return FetchResult{Source: SourceUnavailable, Err: err}
}

// CacheProfilePicture overwrites the owner's previous picture. It is not subject to expiry.
func (s *cacheService) CacheProfilePicture(ctx context.Context, ownerID int64, url string) (string, bool) {
	if url == "" {
		slog.Debug("no profile picture url", "owner_id", ownerID)
		return "", false
	}

	name := fmt.Sprintf("profile_pic_user_%d.%s", ownerID, imageExtension(url))
	blobPath, err := s.blobs.Fetch(ctx, url, name)
	if err != nil {
		slog.Error("failed to cache profile picture", "owner_id", ownerID, "error", err)
		return "", false
	}

	slog.Info("cached profile picture", "owner_id", ownerID, "path", blobPath)
	return blobPath, true
}

func (s *cacheService) validPosts(ctx context.Context, ownerID int64, limit int) []models.PostData {
	cached, err := s.store.GetValid(ctx, ownerID, limit)
	if err != nil {
		slog.Error("failed to read cache", "owner_id", ownerID, "error", err)
		return nil
	}

	posts := make([]models.PostData, 0, len(cached))
	for _, c := range cached {
		posts = append(posts, c.PostData)
	}
	return posts
}
