package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/igscheduler/configs"
	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/transfer"
	"github.com/maheshrc27/igscheduler/pkg/utils"
)

// AccountService manages the Instagram connection of a team, the owner of cached posts
// and of published content.
type AccountService interface {
	ResolveOwner(ctx context.Context, userID int64, teamID *int64) (*models.Team, error)
	Credentials(team *models.Team) (*models.Credentials, error)
	Status(ctx context.Context, team *models.Team) *transfer.InstagramStatus
	Connect(ctx context.Context, team *models.Team, req transfer.InstagramConnect) (*transfer.InstagramStatus, error)
	Disconnect(ctx context.Context, team *models.Team) error
	RefreshToken(ctx context.Context, team *models.Team) error
}

type accountService struct {
	cfg   config.Config
	users repository.UserRepository
	teams repository.TeamRepository
	ig    InstagramService
	cache CacheService
	store CacheStore
	now   func() time.Time
}

func NewAccountService(
	cfg config.Config,
	users repository.UserRepository,
	teams repository.TeamRepository,
	ig InstagramService,
	cache CacheService,
	store CacheStore) AccountService {
	return &accountService{
		cfg:   cfg,
		users: users,
		teams: teams,
		ig:    ig,
		cache: cache,
		store: store,
		now:   time.Now,
	}
}

// ResolveOwner returns the team acting for userID: teamID when given, otherwise the first
// team the user joined.
func (s *accountService) ResolveOwner(ctx context.Context, userID int64, teamID *int64) (*models.Team, error) {
	_, isExist, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrUserNotFound
	}

	if teamID != nil {
		team, err := s.teams.GetByID(ctx, *teamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, ErrTeamNotFound
		}
		return team, nil
	}

	team, isMember, err := s.teams.GetByMemberUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNoTeamMembership
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

// Credentials returns the team's credentials with the access token decrypted.
func (s *accountService) Credentials(team *models.Team) (*models.Credentials, error) {
	creds := team.Credentials()
	if creds == nil {
		return nil, ErrInstagramNotConnected
	}
	if creds.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	accessToken, err := utils.Decrypt(creds.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Error("failed to decrypt instagram token", "team_id", team.ID, "error", err)
		return nil, ErrCredentialsUnreadable
	}
	creds.AccessToken = accessToken
	return creds, nil
}

func (s *accountService) Status(ctx context.Context, team *models.Team) *transfer.InstagramStatus {
	creds, err := s.Credentials(team)
	switch {
	case errors.Is(err, ErrInstagramNotConnected):
		return &transfer.InstagramStatus{Connected: false, Message: "Instagram not connected"}
	case errors.Is(err, ErrTokenExpired):
		return &transfer.InstagramStatus{Connected: false, Expired: true, Message: "Access token expired"}
	case err != nil:
		return &transfer.InstagramStatus{Connected: false, Message: err.Error()}
	}

	info, err := s.ig.GetAccountInfo(ctx, creds.AccessToken, creds.AccountID)
	if err != nil {
		slog.Error("failed to verify instagram connection", "team_id", team.ID, "error", err)
		return &transfer.InstagramStatus{Connected: false, Message: "Failed to verify Instagram connection"}
	}

	status := &transfer.InstagramStatus{
		Connected:   true,
		AccountInfo: info,
	}
	if team.InstagramUsername != nil {
		status.InstagramUsername = *team.InstagramUsername
	}
	if creds.ExpiresAt != nil {
		status.TokenExpiresAt = creds.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return status
}

// Connect exchanges the token, resolves the business account (given directly, through a
// page, or detected from the token) and stores the encrypted credentials on the team.
func (s *accountService) Connect(ctx context.Context, team *models.Team, req transfer.InstagramConnect) (*transfer.InstagramStatus, error) {
	if req.AccessToken == "" {
		return nil, ErrMissingToken
	}

	token, err := s.ig.ExchangeToken(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}

	accountID := req.InstagramAccountID
	switch {
	case accountID != "":
		slog.Info("using provided instagram account id", "team_id", team.ID, "account_id", accountID)
	case req.PageID != "":
		accountID, err = s.ig.ResolveAccountIDFromPage(ctx, token.AccessToken, req.PageID)
	default:
		accountID, err = s.ig.ResolveAccountID(ctx, token.AccessToken)
	}
	if err != nil {
		return nil, err
	}

	info, err := s.ig.GetAccountInfo(ctx, token.AccessToken, accountID)
	if err != nil {
		return nil, err
	}

	encrypted, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt token: %w", err)
	}

	expiresAt := token.ExpiresAt
	team.InstagramAccountID = &accountID
	team.InstagramAccessToken = &encrypted
	team.InstagramUsername = &info.Username
	team.InstagramProfilePicture = &info.ProfilePictureURL
	team.TokenExpiresAt = &expiresAt
	if err := s.teams.SetCredentials(ctx, team); err != nil {
		return nil, err
	}

	s.cache.CacheProfilePicture(ctx, team.ID, info.ProfilePictureURL)

	slog.Info("instagram connected", "team_id", team.ID, "username", info.Username)
	return &transfer.InstagramStatus{
		Connected:         true,
		Message:           "Instagram connected successfully",
		InstagramUsername: info.Username,
		AccountInfo:       info,
		TokenExpiresAt:    expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *accountService) Disconnect(ctx context.Context, team *models.Team) error {
	if err := s.teams.ClearCredentials(ctx, team.ID); err != nil {
		return err
	}

	if _, err := s.store.InvalidateOwner(ctx, team.ID); err != nil {
		slog.Error("failed to invalidate cache on disconnect", "team_id", team.ID, "error", err)
	}
	return nil
}

// RefreshToken re-exchanges the team's current token for a new long-lived one.
func (s *accountService) RefreshToken(ctx context.Context, team *models.Team) error {
	creds := team.Credentials()
	if creds == nil {
		return ErrInstagramNotConnected
	}

	current, err := utils.Decrypt(creds.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return ErrCredentialsUnreadable
	}

	token, err := s.ig.ExchangeToken(ctx, current)
	if err != nil {
		return err
	}

	encrypted, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	return s.teams.SetToken(ctx, team.ID, creds.AccessToken, encrypted, token.ExpiresAt)
}
