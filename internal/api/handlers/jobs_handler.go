package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/igscheduler/internal/queue"
)

type JobsHandler struct {
	AsynqClient queue.Enqueuer
}

func NewJobsHandler(asynqClient queue.Enqueuer) *JobsHandler {
	return &JobsHandler{AsynqClient: asynqClient}
}

func (h *JobsHandler) Trigger(c *fiber.Ctx) error {
	name := c.Params("name")
	if !queue.IsJobName(name) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown job",
		})
	}

	info, err := queue.EnqueueJob(h.AsynqClient, name)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Job already queued",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to queue job",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Job queued",
		"job":     name,
		"task_id": info.ID,
	})
}
