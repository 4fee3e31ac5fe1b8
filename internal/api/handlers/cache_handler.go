package handlers

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/igscheduler/internal/service"
)

type CacheHandler struct {
	accounts service.AccountService
	store    service.CacheStore
	cache    service.CacheService
	ig       service.InstagramService
}

func NewCacheHandler(
	accounts service.AccountService,
	store service.CacheStore,
	cache service.CacheService,
	ig service.InstagramService) *CacheHandler {
	return &CacheHandler{
		accounts: accounts,
		store:    store,
		cache:    cache,
		ig:       ig,
	}
}

func (h *CacheHandler) Stats(c *fiber.Ctx) error {
	team, ok, err := ownerTeam(c, h.accounts)
	if !ok {
		return err
	}

	stats, err := h.store.Stats(c.Context(), &team.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read cache stats",
		})
	}

	return c.JSON(stats)
}

func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	team, ok, err := ownerTeam(c, h.accounts)
	if !ok {
		return err
	}

	deleted, err := h.store.InvalidateOwner(c.Context(), team.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to clear cache",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cache cleared",
		"deleted": deleted,
	})
}

// Refresh re-fetches the team's recent media and caches it.
func (h *CacheHandler) Refresh(c *fiber.Ctx) error {
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

	posts, err := h.ig.ListMedia(c.Context(), creds.AccessToken, creds.AccountID, defaultPostsLimit)
	if err != nil {
		slog.Error("cache refresh failed", "team_id", team.ID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch Instagram posts",
		})
	}

	cached := h.cache.CacheBatch(c.Context(), team.ID, posts)
	return c.JSON(fiber.Map{
		"message": "Cache refreshed",
		"fetched": len(posts),
		"cached":  len(cached),
	})
}

// Image serves a cached post image with its original bytes.
func (h *CacheHandler) Image(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid id",
		})
	}

	cached, err := h.store.GetByID(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load cached post",
		})
	}
	if cached == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}

	image, err := h.store.OpenImage(c.Context(), cached)
	if errors.Is(err, service.ErrCacheMiss) || errors.Is(err, fs.ErrNotExist) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Image not found",
		})
	}
	if err != nil {
		slog.Error("failed to open cached image", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read image",
		})
	}
	defer image.Close()

	return sendBlob(c, image)
}
