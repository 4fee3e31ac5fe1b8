package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/service"
)

type UserHandler struct {
	users    repository.UserRepository
	accounts service.AccountService
}

func NewUserHandler(users repository.UserRepository, accounts service.AccountService) *UserHandler {
	return &UserHandler{users: users, accounts: accounts}
}

// GetUserInfo returns the user and, when they belong to one, the team their posts publish to.
func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, found, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load user",
		})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": service.ErrUserNotFound.Error(),
		})
	}

	team, err := h.accounts.ResolveOwner(c.Context(), userID, nil)
	if err != nil && !errors.Is(err, service.ErrNoTeamMembership) && !errors.Is(err, service.ErrTeamNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to resolve team",
		})
	}

	return c.JSON(fiber.Map{
		"user": user,
		"team": team,
	})
}
