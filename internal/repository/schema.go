package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// EnsureCacheSchema creates the instagram_cache table and its indexes if they do not exist.
func EnsureCacheSchema(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS instagram_cache (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		instagram_post_id TEXT NOT NULL UNIQUE,
		post_data JSONB NOT NULL,
		cached_image_path TEXT,
		image_filename TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create instagram_cache table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_instagram_cache_owner_updated ON instagram_cache(owner_id, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_instagram_cache_expires_at ON instagram_cache(expires_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			slog.Warn("failed creating instagram_cache index", "error", err)
		}
	}
	return nil
}
