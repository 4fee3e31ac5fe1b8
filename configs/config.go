package config

import (
	"fmt"
	"os"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Instagram struct {
	AppID      string
	AppSecret  string
	APIVersion string
	GraphURL   string
}

type Intervals struct {
	Publish      time.Duration
	CacheCleanup time.Duration
	CacheRefresh time.Duration
	TokenRefresh time.Duration
}

type Config struct {
	Instagram        Instagram
	PostgresURI      string
	RedisURI         string
	Port             string
	FrontendURL      string
	AppHost          string
	UploadFolder     string
	CacheBackend     string
	CacheImageFolder string
	R2               R2
	Intervals        Intervals
	SecretKey        string
	CookieName       string
	LogLevel         string
}

const (
	CacheBackendLocal = "local"
	CacheBackendR2    = "r2"
)

func LoadConfig() *Config {
	apiVersion := getEnv("INSTAGRAM_API_VERSION", "v19.0")

	return &Config{
		Instagram: Instagram{
			AppID:      getEnv("INSTAGRAM_APP_ID", ""),
			AppSecret:  getEnv("INSTAGRAM_APP_SECRET", ""),
			APIVersion: apiVersion,
			GraphURL:   getEnv("INSTAGRAM_GRAPH_URL", fmt.Sprintf("https://graph.facebook.com/%s", apiVersion)),
		},
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		RedisURI:         getEnv("REDIS_URI", "localhost:6379"),
		Port:             getEnv("PORT", "3000"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		AppHost:          getEnv("APP_HOST", "http://127.0.0.1:5500"),
		UploadFolder:     getEnv("UPLOAD_FOLDER", "uploads"),
		CacheBackend:     getEnv("CACHE_BACKEND", CacheBackendLocal),
		CacheImageFolder: getEnv("CACHE_IMAGE_FOLDER", "cache/instagram_images"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		Intervals: Intervals{
			Publish:      getDuration("PUBLISH_INTERVAL", time.Minute),
			CacheCleanup: getDuration("CACHE_CLEANUP_INTERVAL", 6*time.Hour),
			CacheRefresh: getDuration("CACHE_REFRESH_INTERVAL", 30*time.Minute),
			TokenRefresh: getDuration("TOKEN_REFRESH_INTERVAL", 12*time.Hour),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "igscheduler_session"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}
}

// HasAppCredentials reports whether token exchange against the graph API is possible.
func (c Instagram) HasAppCredentials() bool {
	return c.AppID != "" && c.AppSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
