package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
)

// BlobDownloadTimeout bounds every image fetch.
const BlobDownloadTimeout = 10 * time.Second

// BlobStore keeps downloaded images addressable by the path it returns from Fetch.
type BlobStore interface {
	Fetch(ctx context.Context, url, name string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

type localBlobStore struct {
	dir    string
	client *grab.Client
}

func NewLocalBlobStore(dir string) (BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &localBlobStore{dir: dir, client: grab.NewClient()}, nil
}

func (s *localBlobStore) Fetch(ctx context.Context, url, name string) (string, error) {
	dst := filepath.Join(s.dir, name)
	if err := download(ctx, s.client, url, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *localBlobStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (s *localBlobStore) Remove(ctx context.Context, path string) error {
	return os.Remove(path)
}

// download fetches url into dst through a temporary file, so a failed fetch never
// truncates an image that is already cached under the same name.
func download(ctx context.Context, client *grab.Client, url, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, BlobDownloadTimeout)
	defer cancel()

	tmp := dst + ".part"
	req, err := grab.NewRequest(tmp, url)
	if err != nil {
		return fmt.Errorf("invalid download request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true

	resp := client.Do(req)
	if err := resp.Err(); err != nil {
		removeQuietly(tmp)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(resp.Filename, dst); err != nil {
		removeQuietly(resp.Filename)
		return fmt.Errorf("failed to store download: %w", err)
	}
	return nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove partial download", "path", path, "error", err)
	}
}
