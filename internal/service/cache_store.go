package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/transfer"
)

// CacheStore persists cached posts together with their downloaded images.
type CacheStore interface {
	Upsert(ctx context.Context, ownerID int64, data models.PostData) (*models.CachedPost, error)
	DownloadBlob(ctx context.Context, url string, recordID int64) (string, bool)
	AttachImage(ctx context.Context, cached *models.CachedPost, blobPath string) error
	GetValid(ctx context.Context, ownerID int64, limit int) ([]*models.CachedPost, error)
	GetByID(ctx context.Context, id int64) (*models.CachedPost, error)
	GetByRemoteID(ctx context.Context, remotePostID string) (*models.CachedPost, error)
	OpenImage(ctx context.Context, cached *models.CachedPost) (io.ReadCloser, error)
	SweepExpired(ctx context.Context) (int, error)
	InvalidateOwner(ctx context.Context, ownerID int64) (int, error)
	Stats(ctx context.Context, ownerID *int64) (*transfer.CacheStats, error)
}

type cacheStore struct {
	repo  repository.CachedPostRepository
	blobs BlobStore
	now   func() time.Time
}

func NewCacheStore(repo repository.CachedPostRepository, blobs BlobStore) CacheStore {
	return &cacheStore{repo: repo, blobs: blobs, now: time.Now}
}

func (s *cacheStore) Upsert(ctx context.Context, ownerID int64, data models.PostData) (*models.CachedPost, error) {
	if data.ID == "" {
		return nil, errors.New("post data missing id")
	}
	return s.repo.Upsert(ctx, ownerID, data, s.now())
}

// DownloadBlob fetches url into the blob store under a name derived from recordID. Any
// failure is logged and reported as false.
func (s *cacheStore) DownloadBlob(ctx context.Context, url string, recordID int64) (string, bool) {
	name := fmt.Sprintf("ig_cache_%d.%s", recordID, imageExtension(url))
	blobPath, err := s.blobs.Fetch(ctx, url, name)
	if err != nil {
		slog.Error("failed to download image", "cache_id", recordID, "error", err)
		return "", false
	}

	slog.Info("cached image", "cache_id", recordID, "path", blobPath)
	return blobPath, true
}

// AttachImage points the record at blobPath. An image the record pointed at before is
// removed once the record no longer references it.
func (s *cacheStore) AttachImage(ctx context.Context, cached *models.CachedPost, blobPath string) error {
	filename := path.Base(blobPath)
	if err := s.repo.SetImage(ctx, cached.ID, blobPath, filename); err != nil {
		return err
	}

	previous := cached.CachedImagePath
	cached.CachedImagePath = &blobPath
	cached.ImageFilename = &filename

	if previous != nil && *previous != "" && *previous != blobPath {
		s.removeImage(ctx, cached.ID, *previous)
	}
	return nil
}

func (s *cacheStore) GetValid(ctx context.Context, ownerID int64, limit int) ([]*models.CachedPost, error) {
	return s.repo.ListValid(ctx, ownerID, s.now(), limit)
}

func (s *cacheStore) GetByID(ctx context.Context, id int64) (*models.CachedPost, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByRemoteID ignores expiry.
func (s *cacheStore) GetByRemoteID(ctx context.Context, remotePostID string) (*models.CachedPost, error) {
	return s.repo.GetByInstagramPostID(ctx, remotePostID)
}

func (s *cacheStore) OpenImage(ctx context.Context, cached *models.CachedPost) (io.ReadCloser, error) {
	if !cached.HasImage() {
		return nil, ErrCacheMiss
	}
	return s.blobs.Open(ctx, *cached.CachedImagePath)
}

func (s *cacheStore) SweepExpired(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.removeImages(ctx, deleted)

	slog.Info("cleared expired cache entries", "count", len(deleted))
	return len(deleted), nil
}

func (s *cacheStore) InvalidateOwner(ctx context.Context, ownerID int64) (int, error) {
	deleted, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	s.removeImages(ctx, deleted)

	slog.Info("invalidated cache entries", "owner_id", ownerID, "count", len(deleted))
	return len(deleted), nil
}

func (s *cacheStore) Stats(ctx context.Context, ownerID *int64) (*transfer.CacheStats, error) {
	return s.repo.Stats(ctx, ownerID, s.now())
}

// removeImages runs after the rows are gone. A missing file is not an error.
func (s *cacheStore) removeImages(ctx context.Context, deleted []*models.CachedPost) {
	for _, cached := range deleted {
		if cached.HasImage() {
			s.removeImage(ctx, cached.ID, *cached.CachedImagePath)
		}
	}
}

func (s *cacheStore) removeImage(ctx context.Context, cacheID int64, blobPath string) {
	err := s.blobs.Remove(ctx, blobPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("cache image already missing", "cache_id", cacheID, "path", blobPath)
	default:
		slog.Error("failed to delete cache image", "cache_id", cacheID, "path", blobPath, "error", err)
	}
}
