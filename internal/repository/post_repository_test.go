package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{
	"id", "user_id", "team_id", "caption", "scheduled_time", "status",
	"instagram_post_id", "error_message", "published_at", "created_at", "updated_at",
}

func TestPostRepository_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM posts WHERE status = \$1 AND scheduled_time <= \$2`).
		WithArgs(models.PostStatusScheduled, now).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(int64(1), int64(3), int64(9), "hello", now.Add(-time.Minute), "scheduled", nil, nil, nil, now, now).
			AddRow(int64(2), int64(3), nil, nil, now, "scheduled", nil, nil, nil, now, now))

	posts, err := NewPostRepository(db).ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "hello", posts[0].Caption)
	require.NotNil(t, posts[0].TeamID)
	assert.Equal(t, int64(9), *posts[0].TeamID)
	assert.Nil(t, posts[1].TeamID)
	assert.Empty(t, posts[1].Caption)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Claim(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	from := []string{models.PostStatusScheduled}

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "claimed", affected: 1, want: true},
		{name: "already taken", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`UPDATE posts SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = ANY\(\$4\)`).
				WithArgs(models.PostStatusPublishing, now, int64(5), pq.Array(from)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := NewPostRepository(db).Claim(context.Background(), 5, from, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_MarkPublishedClearsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)

	mock.ExpectExec(`SET status = \$1, instagram_post_id = \$2, published_at = \$3, error_message = NULL`).
		WithArgs(models.PostStatusPublished, "17900", at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostRepository(db).MarkPublished(context.Background(), 5, "17900", at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)

	mock.ExpectExec(`SET status = \$1, error_message = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(models.PostStatusFailed, "No media files attached", at, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostRepository(db).MarkFailed(context.Background(), 5, "No media files attached", at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_SetErrorMessageKeepsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE posts SET error_message = \$1 WHERE id = \$2`).
		WithArgs("Published to Instagram as 17900 but the result could not be recorded: timeout", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostRepository(db).SetErrorMessage(context.Background(), 5, "Published to Instagram as 17900 but the result could not be recorded: timeout")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM posts WHERE id = \$1`).WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	post, err := NewPostRepository(db).GetByID(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, post)
}
