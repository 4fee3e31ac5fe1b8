package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// CacheExpiry is the retention window of a cached post, counted from its last write.
const CacheExpiry = 30 * 24 * time.Hour

type CachedPost struct {
	ID              int64     `db:"id" json:"id"`
	OwnerID         int64     `db:"owner_id" json:"owner_id"`
	InstagramPostID string    `db:"instagram_post_id" json:"instagram_post_id"`
	PostData        PostData  `db:"post_data" json:"post_data"`
	CachedImagePath *string   `db:"cached_image_path" json:"-"`
	ImageFilename   *string   `db:"image_filename" json:"image_filename,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
	ExpiresAt       time.Time `db:"expires_at" json:"expires_at"`
}

// IsValid reports whether the entry is still inside its retention window at now.
// An entry is expired from ExpiresAt on.
func (c *CachedPost) IsValid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

func (c *CachedPost) HasImage() bool {
	return c.CachedImagePath != nil && *c.CachedImagePath != ""
}

// PostData is the metadata of one remote media item as returned by the graph API.
// Fields the service does not know about are kept in Extra and written back verbatim.
type PostData struct {
	ID            string `json:"id"`
	Caption       string `json:"caption,omitempty"`
	MediaType     string `json:"media_type,omitempty"`
	MediaURL      string `json:"media_url,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	Permalink     string `json:"permalink,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	LikeCount     *int64 `json:"like_count,omitempty"`
	CommentsCount *int64 `json:"comments_count,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ImageURL returns the media URL, falling back to the thumbnail (videos only carry a thumbnail image).
func (p PostData) ImageURL() string {
	if p.MediaURL != "" {
		return p.MediaURL
	}
	return p.ThumbnailURL
}

type postDataFields PostData

var knownPostDataKeys = []string{
	"id", "caption", "media_type", "media_url", "thumbnail_url",
	"permalink", "timestamp", "like_count", "comments_count",
}

func (p PostData) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(postDataFields(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(p.Extra)+len(knownPostDataKeys))
	for k, v := range p.Extra {
		merged[k] = v
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for k, v := range knownMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (p *PostData) UnmarshalJSON(data []byte) error {
	var fields postDataFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownPostDataKeys {
		delete(all, k)
	}

	*p = PostData(fields)
	if len(all) > 0 {
		p.Extra = all
	}
	return nil
}

// Value stores PostData as a JSONB document.
func (p PostData) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PostData) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = PostData{}
		return nil
	default:
		return errors.New("post_data: unsupported column type")
	}
}
