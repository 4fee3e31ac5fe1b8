package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/igscheduler/internal/service"
	"github.com/maheshrc27/igscheduler/internal/transfer"
)

const (
	defaultPostsLimit = 25
	maxPostsLimit     = 100
)

type InstagramHandler struct {
	accounts service.AccountService
	cache    service.CacheService
}

func NewInstagramHandler(accounts service.AccountService, cache service.CacheService) *InstagramHandler {
	return &InstagramHandler{accounts: accounts, cache: cache}
}

func (h *InstagramHandler) Status(c *fiber.Ctx) error {
	team, ok, err := ownerTeam(c, h.accounts)
	if !ok {
		return err
	}

	return c.JSON(h.accounts.Status(c.Context(), team))
}

// Posts lists the account's recent media, answering from the cache when the graph API is
// unavailable.
func (h *InstagramHandler) Posts(c *fiber.Ctx) error {
	team, ok, err := ownerTeam(c, h.accounts)
	if !ok {
		return err
	}

	creds, err := h.accounts.Credentials(team)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	limit := c.QueryInt("limit", defaultPostsLimit)
	if limit <= 0 || limit > maxPostsLimit {
		limit = defaultPostsLimit
	}
	useCache := c.QueryBool("use_cache", true)

	result := h.cache.FetchWithCacheFallback(c.Context(), creds.AccessToken, creds.AccountID, team.ID, limit, useCache)
	if result.Source == service.SourceUnavailable {
		slog.Error("failed to fetch instagram posts", "team_id", team.ID, "error", result.Err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch Instagram posts",
		})
	}

	return c.JSON(transfer.InstagramPostsResponse{
		Posts:     result.Posts,
		Count:     len(result.Posts),
		FromCache: result.FromCache(),
	})
}

func (h *InstagramHandler) Connect(c *fiber.Ctx) error {
	team, ok, err := ownerTeam(c, h.accounts)
	if !ok {
		return err
	}

	var req transfer.InstagramConnect
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	status, err := h.accounts.Connect(c.Context(), team, req)
	if err != nil {
		slog.Error("instagram connection failed", "team_id", team.ID, "error", err)
		message := "Instagram connection failed: " + err.Error()
		if errors.Is(err, service.ErrMissingToken) {
			message = "Missing access_token"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": message,
		})
	}

	return c.JSON(fiber.Map{
		"message":            "Instagram connected successfully",
		"instagram_username": status.InstagramUsername,
		"account_info":       status.AccountInfo,
	})
}

func (h *InstagramHandler) Disconnect(c *fiber.Ctx) error {
	team, ok, err := ownerTeam(c, h.accounts)
	if !ok {
		return err
	}

	if err := h.accounts.Disconnect(c.Context(), team); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect Instagram",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Instagram disconnected successfully",
	})
}
