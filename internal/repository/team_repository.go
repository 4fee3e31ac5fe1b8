package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
)

type TeamRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	GetByMemberUserID(ctx context.Context, userID int64) (*models.Team, bool, error)
	ListConnected(ctx context.Context) ([]*models.Team, error)
	ListByTokenExpiry(ctx context.Context, before time.Time) ([]*models.Team, error)
	SetCredentials(ctx context.Context, team *models.Team) error
	SetToken(ctx context.Context, teamID int64, oldAccessToken, accessToken string, expiresAt time.Time) error
	ClearCredentials(ctx context.Context, teamID int64) error
}

type teamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) TeamRepository {
	return &teamRepository{db: db}
}

const teamColumns = `t.id, t.name, t.instagram_account_id, t.instagram_access_token, t.instagram_username, t.instagram_profile_picture, t.token_expires_at, t.created_at`

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.InstagramAccountID, &t.InstagramAccessToken,
		&t.InstagramUsername, &t.InstagramProfilePicture, &t.TokenExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.id = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return team, nil
}

// GetByMemberUserID returns the first team the user joined. The bool is false when the
// user has no membership at all.
func (r *teamRepository) GetByMemberUserID(ctx context.Context, userID int64) (*models.Team, bool, error) {
	query := `
		SELECT tm.team_id, ` + teamColumns + `
		FROM team_members tm
		LEFT JOIN teams t ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY tm.joined_at, tm.team_id
		LIMIT 1`

	var memberTeamID int64
	var t models.Team
	var id sql.NullInt64
	var name sql.NullString
	var createdAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&memberTeamID, &id, &name,
		&t.InstagramAccountID, &t.InstagramAccessToken, &t.InstagramUsername,
		&t.InstagramProfilePicture, &t.TokenExpiresAt, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	// membership row exists but points at a deleted team
	if !id.Valid {
		return nil, true, nil
	}
	t.ID = id.Int64
	t.Name = name.String
	t.CreatedAt = createdAt.Time
	return &t, true, nil
}

func (r *teamRepository) ListConnected(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams t
		WHERE t.instagram_account_id IS NOT NULL AND t.instagram_access_token IS NOT NULL
		ORDER BY t.id`
	return r.list(ctx, query)
}

func (r *teamRepository) ListByTokenExpiry(ctx context.Context, before time.Time) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams t
		WHERE t.instagram_access_token IS NOT NULL AND t.token_expires_at <= $1
		ORDER BY t.token_expires_at`
	return r.list(ctx, query, before)
}

func (r *teamRepository) list(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) SetCredentials(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET instagram_account_id = $1,
			instagram_access_token = $2,
			instagram_username = $3,
			instagram_profile_picture = $4,
			token_expires_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, team.InstagramAccountID, team.InstagramAccessToken,
		team.InstagramUsername, team.InstagramProfilePicture, team.TokenExpiresAt, team.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetToken swaps the access token only if it still matches oldAccessToken, so a concurrent
// reconnect is not overwritten by a refresh computed from the previous token.
func (r *teamRepository) SetToken(ctx context.Context, teamID int64, oldAccessToken, accessToken string, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE teams
		SET instagram_access_token = $1,
			token_expires_at = $2
		WHERE id = $3 AND instagram_access_token = $4
	`
	result, err := tx.ExecContext(ctx, query, accessToken, expiresAt, teamID, oldAccessToken)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no rows affected; team token changed concurrently")
		return errors.New("no rows affected; team token changed concurrently")
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *teamRepository) ClearCredentials(ctx context.Context, teamID int64) error {
	query := `
		UPDATE teams
		SET instagram_account_id = NULL,
			instagram_access_token = NULL,
			instagram_username = NULL,
			instagram_profile_picture = NULL,
			token_expires_at = NULL
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, teamID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
