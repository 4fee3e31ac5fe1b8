package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/igscheduler/configs"
	"github.com/maheshrc27/igscheduler/internal/api/handlers"
	"github.com/maheshrc27/igscheduler/internal/api/middleware"
	job "github.com/maheshrc27/igscheduler/internal/jobs"
	"github.com/maheshrc27/igscheduler/internal/queue"
	"github.com/maheshrc27/igscheduler/internal/repository"
	"github.com/maheshrc27/igscheduler/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	setupLogger(cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	ctx := context.Background()
	if err := repository.EnsureCacheSchema(ctx, db); err != nil {
		log.Fatalf("Failed to prepare cache schema: %v", err)
	}

	blobs, err := newBlobStore(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to set up %s cache storage: %v", cfg.CacheBackend, err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("request failed", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	postRepo := repository.NewPostRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	cachedPostRepo := repository.NewCachedPostRepository(db)

	instagramService := service.NewInstagramService(*cfg, nil)
	cacheStore := service.NewCacheStore(cachedPostRepo, blobs)
	cacheService := service.NewCacheService(cacheStore, blobs, instagramService)
	settingsService := service.NewSettingsService(settingsRepo, cfg.AppHost)
	accountService := service.NewAccountService(*cfg, userRepo, teamRepo, instagramService, cacheService, cacheStore)

	publishJob := job.NewPublishJob(postRepo, postMediaRepo, accountService, settingsService, instagramService)
	cleanupJob := job.NewCacheCleanupJob(cacheStore)
	refreshJob := job.NewCacheRefreshJob(teamRepo, accountService, instagramService, cacheService)
	tokenJob := job.NewTokenRefreshJob(teamRepo, accountService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	instagram := handlers.NewInstagramHandler(accountService, cacheService)
	cache := handlers.NewCacheHandler(accountService, cacheStore, cacheService, instagramService)
	post := handlers.NewPostHandler(postRepo, postMediaRepo, publishJob, client, cfg.UploadFolder)
	jobs := handlers.NewJobsHandler(client)
	user := handlers.NewUserHandler(userRepo, accountService)
	settings := handlers.NewSettingsHandler(settingsService)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	// public: fetched by the graph API and by <img> tags
	app.Get("/api/posts/media/:id", post.Media)
	app.Get("/api/instagram/cache-image/:id", cache.Image)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/user/info", user.GetUserInfo)
	api.Get("/settings/info", settings.GetSettingsInfo)

	api.Get("/instagram/status", instagram.Status)
	api.Get("/instagram/posts", instagram.Posts)
	api.Post("/instagram/connect", instagram.Connect)
	api.Post("/instagram/disconnect", instagram.Disconnect)

	api.Get("/instagram/cache/stats", cache.Stats)
	api.Post("/instagram/cache/clear", cache.Clear)
	api.Post("/instagram/cache/refresh", cache.Refresh)

	api.Post("/posts/:id/publish", post.Publish)
	api.Post("/jobs/:name", jobs.Trigger)

	// cron jobs
	c := cron.New()
	addJob(c, cfg.Intervals.Publish, queue.JobCheckScheduledPosts, publishJob.CheckScheduledPosts)
	addJob(c, cfg.Intervals.CacheCleanup, queue.JobCleanupExpiredCache, cleanupJob.CleanupExpiredCache)
	addJob(c, cfg.Intervals.CacheRefresh, queue.JobRefreshInstagramCache, refreshJob.RefreshInstagramCache)
	addJob(c, cfg.Intervals.TokenRefresh, queue.JobRefreshTokens, tokenJob.RefreshTokens)
	c.Start()
	defer c.Stop()

	//queue
	queueW := queue.NewQueue(publishJob, cleanupJob, refreshJob, tokenJob)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	log.Println("Starting the Asynq server...")
	if err := server.Start(queueW.ServeMux()); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, server)
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func newBlobStore(ctx context.Context, cfg config.Config) (service.BlobStore, error) {
	if cfg.CacheBackend == config.CacheBackendR2 {
		r2, err := service.NewR2Service(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return r2, nil
	}
	return service.NewLocalBlobStore(cfg.CacheImageFolder)
}

func addJob(c *cron.Cron, every time.Duration, name string, run func()) {
	if err := c.AddFunc(fmt.Sprintf("@every %s", every), run); err != nil {
		log.Fatalf("Failed to schedule %s: %v", name, err)
	}
	slog.Info("scheduled job", "job", name, "every", every.String())
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	server.Shutdown()

	log.Println("Server shutdown complete.")
}
