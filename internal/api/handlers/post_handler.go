package handlers

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/queue"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/service"
)

type PostHandler struct {
	posts        repository.PostRepository
	media        repository.PostMediaRepository
	publisher    queue.Publisher
	AsynqClient  queue.Enqueuer
	uploadFolder string
}

func NewPostHandler(
	posts repository.PostRepository,
	media repository.PostMediaRepository,
	publisher queue.Publisher,
	asynqClient queue.Enqueuer,
	uploadFolder string) *PostHandler {
	return &PostHandler{
		posts:        posts,
		media:        media,
		publisher:    publisher,
		AsynqClient:  asynqClient,
		uploadFolder: uploadFolder,
	}
}

// Media serves an uploaded attachment. The graph API fetches published images from here, so
// the route is public.
func (h *PostHandler) Media(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid id",
		})
	}

	m, err := h.media.GetByID(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load media",
		})
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Media not found",
		})
	}

	f, err := os.Open(filepath.Join(h.uploadFolder, filepath.Base(m.FileName)))
	if errors.Is(err, fs.ErrNotExist) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Media not found",
		})
	}
	if err != nil {
		slog.Error("failed to open media", "media_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read media",
		})
	}
	defer f.Close()

	return sendBlob(c, f)
}

// Publish publishes one of the user's posts now. With ?async=true it is handed to the worker
// instead and the response only carries the task id.
func (h *PostHandler) Publish(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil || postID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid id",
		})
	}

	post, err := h.posts.GetByID(c.Context(), int64(postID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load post",
		})
	}
	if post == nil || post.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	if post.Status == models.PostStatusPublished {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post already published",
		})
	}

	if c.QueryBool("async", false) {
		info, err := queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, 0)
		if err != nil {
			slog.Error("failed to enqueue publish", "post_id", post.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "Publish queued",
			"task_id": info.ID,
		})
	}

	instagramPostID, err := h.publisher.PublishNow(c.Context(), post.ID)
	switch {
	case errors.Is(err, service.ErrPostNotClaimable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Post cannot be published in its current state",
		})
	case errors.Is(err, service.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	case err != nil:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":           "Post published successfully",
		"instagram_post_id": instagramPostID,
	})
}
