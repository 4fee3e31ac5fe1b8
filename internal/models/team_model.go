package models

import (
	"time"
)

type Team struct {
	ID                      int64      `db:"id" json:"id"`
	Name                    string     `db:"name" json:"name"`
	InstagramAccountID      *string    `db:"instagram_account_id" json:"instagram_account_id,omitempty"`
	InstagramAccessToken    *string    `db:"instagram_access_token" json:"-"`
	InstagramUsername       *string    `db:"instagram_username" json:"instagram_username,omitempty"`
	InstagramProfilePicture *string    `db:"instagram_profile_picture" json:"instagram_profile_picture,omitempty"`
	TokenExpiresAt          *time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
}

// Credentials are the graph API access data of one owner. AccessToken is encrypted at rest.
type Credentials struct {
	OwnerID     int64
	AccountID   string
	AccessToken string
	ExpiresAt   *time.Time
}

// Credentials returns the team's stored credentials, or nil when the team has no connected account.
func (t *Team) Credentials() *Credentials {
	if t.InstagramAccountID == nil || *t.InstagramAccountID == "" ||
		t.InstagramAccessToken == nil || *t.InstagramAccessToken == "" {
		return nil
	}
	return &Credentials{
		OwnerID:     t.ID,
		AccountID:   *t.InstagramAccountID,
		AccessToken: *t.InstagramAccessToken,
		ExpiresAt:   t.TokenExpiresAt,
	}
}

func (c *Credentials) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

type TeamMember struct {
	TeamID   int64     `db:"team_id" json:"team_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
