package models

import "time"

type Post struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	TeamID          *int64     `db:"team_id" json:"team_id,omitempty"`
	Caption         string     `db:"caption" json:"caption"`
	ScheduledTime   time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Status          string     `db:"status" json:"status"` // draft, pending_approval, rejected, scheduled, publishing, published, failed
	InstagramPostID *string    `db:"instagram_post_id" json:"instagram_post_id,omitempty"`
	ErrorMessage    *string    `db:"error_message" json:"error_message,omitempty"`
	PublishedAt     *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type PostMedia struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	FileName     string    `db:"filename" json:"filename"`
	FilePath     string    `db:"filepath" json:"-"`
	MediaType    string    `db:"media_type" json:"media_type"` // image or video
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusDraft           = "draft"
	PostStatusPendingApproval = "pending_approval"
	PostStatusRejected        = "rejected"
	PostStatusScheduled       = "scheduled"
	PostStatusPublishing      = "publishing"
	PostStatusPublished       = "published"
	PostStatusFailed          = "failed"
)

// MaxCarouselItems is the graph API limit on children of one carousel container.
const MaxCarouselItems = 10
