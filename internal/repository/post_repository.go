package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/igscheduler/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	Claim(ctx context.Context, postID int64, fromStatuses []string, now time.Time) (bool, error)
	MarkPublished(ctx context.Context, postID int64, instagramPostID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, postID int64, errorMessage string, now time.Time) error
	SetErrorMessage(ctx context.Context, postID int64, errorMessage string) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, team_id, caption, scheduled_time, status, instagram_post_id, error_message, published_at, created_at, updated_at`

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var caption sql.NullString
	err := row.Scan(&post.ID, &post.UserID, &post.TeamID, &caption, &post.ScheduledTime, &post.Status,
		&post.InstagramPostID, &post.ErrorMessage, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.Caption = caption.String
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// ListDue returns scheduled posts whose scheduled time is at or before now.
func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND scheduled_time <= $2`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

// Claim moves the post into publishing if it is currently in one of fromStatuses.
// It reports false when another worker already moved the post on.
func (r *postRepository) Claim(ctx context.Context, postID int64, fromStatuses []string, now time.Time) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPublishing, now, postID, pq.Array(fromStatuses))
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) MarkPublished(ctx context.Context, postID int64, instagramPostID string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			instagram_post_id = $2,
			published_at = $3,
			error_message = NULL,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, instagramPostID, publishedAt, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, postID int64, errorMessage string, now time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			error_message = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, now, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetErrorMessage records a note on the post without changing its status.
func (r *postRepository) SetErrorMessage(ctx context.Context, postID int64, errorMessage string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET error_message = $1 WHERE id = $2`, errorMessage, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
