package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teamRowColumns = []string{
	"id", "name", "instagram_account_id", "instagram_access_token", "instagram_username",
	"instagram_profile_picture", "token_expires_at", "created_at",
}

func TestTeamRepository_GetByMemberUserID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	memberColumns := append([]string{"team_id"}, teamRowColumns...)

	t.Run("no membership", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM team_members tm`).WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(memberColumns))

		team, member, err := NewTeamRepository(db).GetByMemberUserID(context.Background(), 3)
		assert.NoError(t, err)
		assert.False(t, member)
		assert.Nil(t, team)
	})

	t.Run("dangling membership", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM team_members tm`).WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(memberColumns).
				AddRow(int64(9), nil, nil, nil, nil, nil, nil, nil, nil))

		team, member, err := NewTeamRepository(db).GetByMemberUserID(context.Background(), 3)
		assert.NoError(t, err)
		assert.True(t, member)
		assert.Nil(t, team)
	})

	t.Run("connected team", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM team_members tm`).WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(memberColumns).
				AddRow(int64(9), int64(9), "acme", "1784", "enc-token", "acme_ig", nil, now.Add(time.Hour), now))

		team, member, err := NewTeamRepository(db).GetByMemberUserID(context.Background(), 3)
		require.NoError(t, err)
		assert.True(t, member)
		require.NotNil(t, team)

		creds := team.Credentials()
		require.NotNil(t, creds)
		assert.Equal(t, int64(9), creds.OwnerID)
		assert.Equal(t, "1784", creds.AccountID)
		assert.False(t, creds.Expired(now))
	})
}

func TestTeamRepository_SetTokenDetectsConcurrentChange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expires := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE teams SET instagram_access_token = \$1, token_expires_at = \$2 WHERE id = \$3 AND instagram_access_token = \$4`).
		WithArgs("new", expires, int64(9), "old").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = NewTeamRepository(db).SetToken(context.Background(), 9, "old", "new", expires)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepository_ListConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE t.instagram_account_id IS NOT NULL AND t.instagram_access_token IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows(teamRowColumns).
			AddRow(int64(1), "a", "11", "t1", nil, nil, nil, now).
			AddRow(int64(2), "b", "22", "t2", nil, nil, nil, now))

	teams, err := NewTeamRepository(db).ListConnected(context.Background())
	require.NoError(t, err)
	assert.Len(t, teams, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
