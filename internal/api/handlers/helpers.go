package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.ParseInt(c.Locals("user_id").(string), 10, 64)
	return userID
}

// ownerTeam resolves the team whose Instagram account the request acts on. On failure the
// error response has already been written and the returned error is nil or the send error.
func ownerTeam(c *fiber.Ctx, accounts service.AccountService) (*models.Team, bool, error) {
	team, err := accounts.ResolveOwner(c.Context(), GetUserID(c), nil)
	if err == nil {
		return team, true, nil
	}

	status := fiber.StatusInternalServerError
	message := "Unable to resolve team"
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNoTeamMembership), errors.Is(err, service.ErrTeamNotFound):
		status, message = fiber.StatusBadRequest, err.Error()
	}
	return nil, false, c.Status(status).JSON(fiber.Map{"error": message})
}

// sendBlob writes stored bytes unchanged with a sniffed Content-Type.
func sendBlob(c *fiber.Ctx, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}

	c.Set(fiber.HeaderContentType, service.DetectContentType(data))
	return c.Send(data)
}
