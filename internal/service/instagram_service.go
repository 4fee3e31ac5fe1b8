package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	config "github.com/maheshrc27/igscheduler/configs"
	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/transfer"
)

const (
	longLivedTokenTTL       = 60 * 24 * time.Hour
	defaultTokenExpiresIn   = 5184000
	maxErrorBodyBytes       = 64 << 10
	accountFields           = "username,profile_picture_url,followers_count,media_count"
	mediaFields             = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,like_count,comments_count"
	pageFields              = "id,name,instagram_business_account"
	defaultAPIClientTimeout = 30 * time.Second
)

type InstagramService interface {
	ExchangeToken(ctx context.Context, shortLivedToken string) (*transfer.InstagramToken, error)
	ResolveAccountID(ctx context.Context, accessToken string) (string, error)
	ResolveAccountIDFromPage(ctx context.Context, accessToken, pageID string) (string, error)
	GetAccountInfo(ctx context.Context, accessToken, accountID string) (*transfer.InstagramAccountInfo, error)
	ListMedia(ctx context.Context, accessToken, accountID string, limit int) ([]models.PostData, error)
	Publish(ctx context.Context, accessToken, accountID string, mediaURLs []string, caption string) (string, error)
}

type instagramService struct {
	cfg    config.Instagram
	client *http.Client
	now    func() time.Time
}

func NewInstagramService(cfg config.Config, httpClient *http.Client) InstagramService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultAPIClientTimeout}
	}
	return &instagramService{
		cfg:    cfg.Instagram,
		client: httpClient,
		now:    time.Now,
	}
}

// ExchangeToken turns a short-lived token into a long-lived one. Without app credentials the
// input token is returned as is with a 60 day expiry.
func (ig *instagramService) ExchangeToken(ctx context.Context, shortLivedToken string) (*transfer.InstagramToken, error) {
	if !ig.cfg.HasAppCredentials() {
		slog.Warn("instagram app credentials not configured, keeping short-lived token")
		return &transfer.InstagramToken{
			AccessToken: shortLivedToken,
			ExpiresAt:   ig.now().Add(longLivedTokenTTL),
		}, nil
	}

	params := transfer.TokenExchangeParams{
		GrantType:       "fb_exchange_token",
		ClientID:        ig.cfg.AppID,
		ClientSecret:    ig.cfg.AppSecret,
		FbExchangeToken: shortLivedToken,
	}

	var result transfer.TokenExchangeResponse
	if err := ig.do(ctx, http.MethodGet, "/oauth/access_token", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}

	expiresIn := result.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultTokenExpiresIn
	}

	slog.Info("exchanged instagram token", "expires_in", expiresIn)
	return &transfer.InstagramToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   ig.now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// ResolveAccountID finds the business account behind a token, first through the user's pages,
// then through the direct account listing.
func (ig *instagramService) ResolveAccountID(ctx context.Context, accessToken string) (string, error) {
	var pages transfer.PageListResponse
	err := ig.do(ctx, http.MethodGet, "/me/accounts", transfer.FieldsParams{Fields: pageFields, AccessToken: accessToken}, &pages)
	if err != nil {
		slog.Debug("page lookup failed", "error", err)
	} else {
		for _, page := range pages.Data {
			if page.InstagramBusinessAccount != nil && page.InstagramBusinessAccount.ID != "" {
				slog.Info("found instagram business account", "account_id", page.InstagramBusinessAccount.ID, "page_id", page.ID)
				return page.InstagramBusinessAccount.ID, nil
			}
		}
	}

	var accounts transfer.AccountListResponse
	err = ig.do(ctx, http.MethodGet, "/me/instagram_accounts", transfer.FieldsParams{AccessToken: accessToken}, &accounts)
	if err != nil {
		slog.Debug("direct account lookup failed", "error", err)
	} else if len(accounts.Data) > 0 && accounts.Data[0].ID != "" {
		slog.Info("found instagram business account", "account_id", accounts.Data[0].ID)
		return accounts.Data[0].ID, nil
	}

	return "", fmt.Errorf("%w: please ensure you have a Facebook Page connected to an Instagram Business Account "+
		"and the token grants pages_show_list, instagram_basic and instagram_content_publish", ErrAccountNotFound)
}

func (ig *instagramService) ResolveAccountIDFromPage(ctx context.Context, accessToken, pageID string) (string, error) {
	var page transfer.PageResponse
	params := transfer.FieldsParams{Fields: "instagram_business_account", AccessToken: accessToken}
	if err := ig.do(ctx, http.MethodGet, "/"+pageID, params, &page); err != nil {
		return "", fmt.Errorf("failed to get instagram account: %w", err)
	}

	if page.InstagramBusinessAccount == nil || page.InstagramBusinessAccount.ID == "" {
		slog.Warn("page has no instagram business account", "page_id", pageID)
		return "", fmt.Errorf("%w for page %s", ErrAccountNotFound, pageID)
	}
	return page.InstagramBusinessAccount.ID, nil
}

func (ig *instagramService) GetAccountInfo(ctx context.Context, accessToken, accountID string) (*transfer.InstagramAccountInfo, error) {
	var info transfer.InstagramAccountInfo
	params := transfer.FieldsParams{Fields: accountFields, AccessToken: accessToken}
	if err := ig.do(ctx, http.MethodGet, "/"+accountID, params, &info); err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if info.ID == "" {
		info.ID = accountID
	}
	return &info, nil
}

func (ig *instagramService) ListMedia(ctx context.Context, accessToken, accountID string, limit int) ([]models.PostData, error) {
	var media transfer.MediaListResponse
	params := transfer.FieldsParams{Fields: mediaFields, Limit: limit, AccessToken: accessToken}
	if err := ig.do(ctx, http.MethodGet, "/"+accountID+"/media", params, &media); err != nil {
		return nil, fmt.Errorf("failed to get media list: %w", err)
	}

	slog.Info("retrieved instagram media", "account_id", accountID, "count", len(media.Data))
	return media.Data, nil
}

// Publish posts one image, or a carousel of 2 to 10 images, and returns the remote post id.
// Containers created before a failing step are not cleaned up.
func (ig *instagramService) Publish(ctx context.Context, accessToken, accountID string, mediaURLs []string, caption string) (string, error) {
	if len(mediaURLs) == 0 {
		return "", ErrNoMediaItems
	}
	if len(mediaURLs) > models.MaxCarouselItems {
		return "", ErrTooManyMediaItems
	}

	var containerID string
	if len(mediaURLs) == 1 {
		id, err := ig.createContainer(ctx, accountID, transfer.MediaContainerParams{
			ImageURL:    mediaURLs[0],
			Caption:     caption,
			AccessToken: accessToken,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create media container: %w", err)
		}
		containerID = id
	} else {
		childIDs := make([]string, 0, len(mediaURLs))
		for _, mediaURL := range mediaURLs {
			id, err := ig.createContainer(ctx, accountID, transfer.MediaContainerParams{
				ImageURL:       mediaURL,
				IsCarouselItem: true,
				AccessToken:    accessToken,
			})
			if err != nil {
				return "", fmt.Errorf("failed to create carousel item %d: %w", len(childIDs)+1, err)
			}
			childIDs = append(childIDs, id)
		}

		id, err := ig.createContainer(ctx, accountID, transfer.MediaContainerParams{
			MediaType:   "CAROUSEL",
			Children:    strings.Join(childIDs, ","),
			Caption:     caption,
			AccessToken: accessToken,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create carousel container: %w", err)
		}
		containerID = id
	}

	var result transfer.IDResponse
	params := transfer.MediaPublishParams{CreationID: containerID, AccessToken: accessToken}
	if err := ig.do(ctx, http.MethodPost, "/"+accountID+"/media_publish", params, &result); err != nil {
		return "", fmt.Errorf("failed to publish media: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("failed to publish media: empty id in response")
	}

	slog.Info("published instagram post", "account_id", accountID, "instagram_post_id", result.ID, "media_count", len(mediaURLs))
	return result.ID, nil
}

func (ig *instagramService) createContainer(ctx context.Context, accountID string, params transfer.MediaContainerParams) (string, error) {
	var result transfer.IDResponse
	if err := ig.do(ctx, http.MethodPost, "/"+accountID+"/media", params, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}
	return result.ID, nil
}

// do sends params as the query string, which the graph API accepts for both GET and POST.
func (ig *instagramService) do(ctx context.Context, method, path string, params any, out any) error {
	values, err := query.Values(params)
	if err != nil {
		return fmt.Errorf("error encoding params: %w", err)
	}

	reqURL := strings.TrimRight(ig.cfg.GraphURL, "/") + path + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		// url.Error carries the full URL including the access token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("HTTP request error: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := &RemoteAPIError{StatusCode: resp.StatusCode, Body: string(body)}
		slog.Info(apiErr.Error(), "path", path)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
