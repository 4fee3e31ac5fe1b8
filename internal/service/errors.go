package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maheshrc27/igscheduler/internal/transfer"
)

var (
	ErrAccountNotFound   = errors.New("no instagram business account found")
	ErrTooManyMediaItems = errors.New("maximum 10 images allowed in a carousel")
	ErrCacheMiss         = errors.New("no cached posts available")
	ErrPostNotClaimable  = errors.New("post is not in a publishable state")
	ErrPostNotFound      = errors.New("post not found")
	ErrMissingToken      = errors.New("missing access_token")
)

// Precondition failures. Their text is stored on failed posts as is.
var (
	ErrUserNotFound          = errors.New("User not found")
	ErrNoTeamMembership      = errors.New("User is not a member of any team")
	ErrTeamNotFound          = errors.New("Team not found")
	ErrInstagramNotConnected = errors.New("Instagram not connected")
	ErrTokenExpired          = errors.New("Instagram access token expired")
	ErrCredentialsUnreadable = errors.New("Instagram credentials could not be read, please reconnect")
	ErrNoMediaItems          = errors.New("No media files attached")
)

// RemoteAPIError is returned for every non-2xx graph API response.
type RemoteAPIError struct {
	StatusCode int
	Body       string
}

func (e *RemoteAPIError) Error() string {
	var resp transfer.InstagramErrorResponse
	if err := json.Unmarshal([]byte(e.Body), &resp); err == nil && resp.Error.Message != "" {
		return fmt.Sprintf("instagram api error (status %d): %s", e.StatusCode, resp.Error.Message)
	}
	return fmt.Sprintf("instagram api error: status %d", e.StatusCode)
}
