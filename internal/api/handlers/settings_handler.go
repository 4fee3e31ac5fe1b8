package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/service"
)

type SettingsHandler struct {
	s service.SettingsService
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{s: service}
}

func (h *SettingsHandler) GetSettingsInfo(c *fiber.Ctx) error {
	domain, stored, err := h.s.GetSetting(c.Context(), models.SettingAppDomain)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to load settings",
		})
	}

	return c.JSON(fiber.Map{
		"app_domain":        domain,
		"app_domain_stored": stored,
		"public_base_url":   h.s.PublicBaseURL(c.Context()),
	})
}
