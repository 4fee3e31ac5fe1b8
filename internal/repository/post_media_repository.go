package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/igscheduler/internal/models"
)

type PostMediaRepository interface {
	GetByID(ctx context.Context, id int64) (*models.PostMedia, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error)
}

type postMediaRepository struct {
	db *sql.DB
}

func NewPostMediaRepository(db *sql.DB) PostMediaRepository {
	return &postMediaRepository{db: db}
}

const postMediaColumns = "id, post_id, filename, filepath, media_type, display_order, created_at"

func scanPostMedia(row rowScanner) (*models.PostMedia, error) {
	var pm models.PostMedia
	err := row.Scan(&pm.ID, &pm.PostID, &pm.FileName, &pm.FilePath, &pm.MediaType, &pm.DisplayOrder, &pm.CreatedAt)
	return &pm, err
}

func (r *postMediaRepository) GetByID(ctx context.Context, id int64) (*models.PostMedia, error) {
	query := "SELECT " + postMediaColumns + " FROM post_media WHERE id = $1"

	pm, err := scanPostMedia(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return pm, nil
}

// ListByPostID returns the post's attachments in display order; carousel children follow this order.
func (r *postMediaRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	query := "SELECT " + postMediaColumns + " FROM post_media WHERE post_id = $1 ORDER BY display_order, id"

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var attachments []*models.PostMedia
	for rows.Next() {
		pm, err := scanPostMedia(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		attachments = append(attachments, pm)
	}
	return attachments, rows.Err()
}
