package transfer

import "github.com/maheshrc27/igscheduler/internal/models"

type CacheStats struct {
	Total      int64 `json:"total"`
	Valid      int64 `json:"valid"`
	Expired    int64 `json:"expired"`
	ExpiryDays int   `json:"expiry_days"`
}

type InstagramPostsResponse struct {
	Posts     []models.PostData `json:"posts"`
	Count     int               `json:"count"`
	FromCache bool              `json:"from_cache"`
}

type InstagramConnect struct {
	AccessToken        string `json:"access_token"`
	InstagramAccountID string `json:"instagram_account_id"`
	PageID             string `json:"page_id"`
}

type InstagramStatus struct {
	Connected         bool                  `json:"connected"`
	Expired           bool                  `json:"expired,omitempty"`
	Message           string                `json:"message,omitempty"`
	InstagramUsername string                `json:"instagram_username,omitempty"`
	AccountInfo       *InstagramAccountInfo `json:"account_info,omitempty"`
	TokenExpiresAt    string                `json:"token_expires_at,omitempty"`
}
