package transfer

import (
	"time"

	"github.com/maheshrc27/igscheduler/internal/models"
)

type InstagramToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type InstagramAccountInfo struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int64  `json:"followers_count"`
	MediaCount        int64  `json:"media_count"`
}

type InstagramErrorResponse struct {
	Error struct {
		Message        string `json:"message"`
		Type           string `json:"type"`
		Code           int    `json:"code"`
		ErrorSubcode   int    `json:"error_subcode"`
		IsTransient    bool   `json:"is_transient"`
		ErrorUserTitle string `json:"error_user_title"`
		ErrorUserMsg   string `json:"error_user_msg"`
		FbtraceID      string `json:"fbtrace_id"`
	} `json:"error"`
}

// Graph API responses.

type TokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type PageListResponse struct {
	Data []struct {
		ID                       string `json:"id"`
		Name                     string `json:"name"`
		InstagramBusinessAccount *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	} `json:"data"`
}

type PageResponse struct {
	ID                       string `json:"id"`
	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

type AccountListResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type MediaListResponse struct {
	Data []models.PostData `json:"data"`
}

type IDResponse struct {
	ID string `json:"id"`
}

// Graph API query parameters, encoded with go-querystring.

type TokenExchangeParams struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FbExchangeToken string `url:"fb_exchange_token"`
}

type FieldsParams struct {
	Fields      string `url:"fields,omitempty"`
	Limit       int    `url:"limit,omitempty"`
	AccessToken string `url:"access_token"`
}

type MediaContainerParams struct {
	ImageURL       string `url:"image_url,omitempty"`
	Caption        string `url:"caption,omitempty"`
	IsCarouselItem bool   `url:"is_carousel_item,omitempty"`
	MediaType      string `url:"media_type,omitempty"`
	Children       string `url:"children,omitempty"`
	AccessToken    string `url:"access_token"`
}

type MediaPublishParams struct {
	CreationID  string `url:"creation_id"`
	AccessToken string `url:"access_token"`
}
