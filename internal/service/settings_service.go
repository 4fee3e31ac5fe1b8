package service

import (
	"context"
	"strings"

	"github.com/maheshrc27/igscheduler/internal/models"
	"github.com/maheshrc27/igscheduler/internal/repository"
)

type SettingsService interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PublicBaseURL(ctx context.Context) string
}

type settingsService struct {
	sr          repository.SettingsRepository
	defaultHost string
}

// NewSettingsService takes the base URL used when no app_domain setting is stored.
func NewSettingsService(sr repository.SettingsRepository, defaultHost string) SettingsService {
	return &settingsService{
		sr:          sr,
		defaultHost: defaultHost,
	}
}

func (s *settingsService) GetSetting(ctx context.Context, key string) (string, bool, error) {
	setting, isExist, err := s.sr.GetByKey(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !isExist || setting.Value == nil || *setting.Value == "" {
		return "", false, nil
	}
	return *setting.Value, true, nil
}

// PublicBaseURL is the host the graph API uses to fetch post media from this server.
// A failed settings lookup falls back to the configured default.
func (s *settingsService) PublicBaseURL(ctx context.Context) string {
	host, ok, err := s.GetSetting(ctx, models.SettingAppDomain)
	if err != nil || !ok {
		host = s.defaultHost
	}
	return strings.TrimRight(host, "/")
}
