package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/transfer"
)

type CachedPostRepository interface {
	Upsert(ctx context.Context, ownerID int64, data models.PostData, now time.Time) (*models.CachedPost, error)
	SetImage(ctx context.Context, id int64, path, filename string) error
	ListValid(ctx context.Context, ownerID int64, now time.Time, limit int) ([]*models.CachedPost, error)
	GetByID(ctx context.Context, id int64) (*models.CachedPost, error)
	GetByInstagramPostID(ctx context.Context, instagramPostID string) (*models.CachedPost, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]*models.CachedPost, error)
	DeleteByOwner(ctx context.Context, ownerID int64) ([]*models.CachedPost, error)
	Stats(ctx context.Context, ownerID *int64, now time.Time) (*transfer.CacheStats, error)
}

type cachedPostRepository struct {
	db *sql.DB
}

func NewCachedPostRepository(db *sql.DB) CachedPostRepository {
	return &cachedPostRepository{db: db}
}

const cachedPostColumns = `id, owner_id, instagram_post_id, post_data, cached_image_path, image_filename, created_at, updated_at, expires_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCachedPost(row rowScanner) (*models.CachedPost, error) {
	var c models.CachedPost
	err := row.Scan(&c.ID, &c.OwnerID, &c.InstagramPostID, &c.PostData, &c.CachedImagePath,
		&c.ImageFilename, &c.CreatedAt, &c.UpdatedAt, &c.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts the post or, when the instagram post id is already cached, refreshes its
// payload and retention window in place. The owner of an existing row is left unchanged.
func (r *cachedPostRepository) Upsert(ctx context.Context, ownerID int64, data models.PostData, now time.Time) (*models.CachedPost, error) {
	query := `
		INSERT INTO instagram_cache (owner_id, instagram_post_id, post_data, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $4, $5)
		ON CONFLICT (instagram_post_id) DO UPDATE
		SET post_data = EXCLUDED.post_data,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
		RETURNING ` + cachedPostColumns

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	cached, err := scanCachedPost(tx.QueryRowContext(ctx, query, ownerID, data.ID, data, now, now.Add(models.CacheExpiry)))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return cached, nil
}

func (r *cachedPostRepository) SetImage(ctx context.Context, id int64, path, filename string) error {
	query := `
		UPDATE instagram_cache
		SET cached_image_path = $1,
			image_filename = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, path, filename, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *cachedPostRepository) ListValid(ctx context.Context, ownerID int64, now time.Time, limit int) ([]*models.CachedPost, error) {
	query := `SELECT ` + cachedPostColumns + `
		FROM instagram_cache
		WHERE owner_id = $1 AND expires_at > $2
		ORDER BY updated_at DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectCachedPosts(rows)
}

func (r *cachedPostRepository) GetByID(ctx context.Context, id int64) (*models.CachedPost, error) {
	query := `SELECT ` + cachedPostColumns + ` FROM instagram_cache WHERE id = $1`

	cached, err := scanCachedPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return cached, nil
}

func (r *cachedPostRepository) GetByInstagramPostID(ctx context.Context, instagramPostID string) (*models.CachedPost, error) {
	query := `SELECT ` + cachedPostColumns + ` FROM instagram_cache WHERE instagram_post_id = $1`

	cached, err := scanCachedPost(r.db.QueryRowContext(ctx, query, instagramPostID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return cached, nil
}

// DeleteExpired removes every row with expires_at <= now and returns the removed rows so
// the caller can reclaim their images.
func (r *cachedPostRepository) DeleteExpired(ctx context.Context, now time.Time) ([]*models.CachedPost, error) {
	query := `DELETE FROM instagram_cache WHERE expires_at <= $1 RETURNING ` + cachedPostColumns
	return r.deleteReturning(ctx, query, now)
}

func (r *cachedPostRepository) DeleteByOwner(ctx context.Context, ownerID int64) ([]*models.CachedPost, error) {
	query := `DELETE FROM instagram_cache WHERE owner_id = $1 RETURNING ` + cachedPostColumns
	return r.deleteReturning(ctx, query, ownerID)
}

func (r *cachedPostRepository) deleteReturning(ctx context.Context, query string, args ...any) ([]*models.CachedPost, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	deleted, err := collectCachedPosts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return deleted, nil
}

func (r *cachedPostRepository) Stats(ctx context.Context, ownerID *int64, now time.Time) (*transfer.CacheStats, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE expires_at > $1) FROM instagram_cache`
	args := []any{now}

	if ownerID != nil {
		query += ` WHERE owner_id = $2`
		args = append(args, *ownerID)
	}

	stats := transfer.CacheStats{ExpiryDays: int(models.CacheExpiry / (24 * time.Hour))}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.Total, &stats.Valid)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	stats.Expired = stats.Total - stats.Valid
	return &stats, nil
}

func collectCachedPosts(rows *sql.Rows) ([]*models.CachedPost, error) {
	var posts []*models.CachedPost
	for rows.Next() {
		cached, err := scanCachedPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, cached)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}
