package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showcase/internal/config"
	"showcase/internal/db"
	"showcase/internal/logger"
	"showcase/internal/middleware"
	"showcase/internal/router"
	"showcase/internal/services"
	"showcase/internal/storage"
	"showcase/internal/telemetry"
	"showcase/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// 日志配置依赖 config，这里只能直接输出到 stderr
		os.Stderr.WriteString("config load error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logging, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		logging.Fatal("Tracing setup failed", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logging.Warn("Tracing shutdown failed", zap.Error(err))
		}
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Database connection established")
	if err := db.Migrate(conn); err != nil {
		logging.Fatal("Failed to migrate database", zap.Error(err))
	}
	logging.Info("Database migration completed")
	if cfg.IsLocal() {
		if err := db.SeedDevUsers(conn, logging); err != nil {
			logging.Fatal("Failed to seed dev users", zap.Error(err))
		}
	}

	blobs, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	if cfg.IsLocal() {
		if err := blobs.EnsureBucket(ctx); err != nil {
			logging.Warn("Bucket bootstrap failed", zap.String("bucket", cfg.S3Bucket), zap.Error(err))
		}
	}

	renderer := utils.NewRenderer()
	featured, err := services.NewFeaturedService(conn, cfg.FeaturedLimit, cfg.FeaturedCacheTTL, logging)
	if err != nil {
		logging.Fatal("Featured cache creation failed", zap.Error(err))
	}
	go featured.Run(ctx)

	engine := services.NewNotificationEngine(logging)
	users := services.NewUserService(conn)
	notifications := services.NewNotificationService(conn)
	projects := services.NewProjectService(conn, renderer, featured)

	scheduler := services.NewScheduler(notifications, featured, cfg.NotificationRetention, logging)
	if err := scheduler.Register(cfg.PruneSchedule, cfg.FeaturedSchedule); err != nil {
		logging.Fatal("Invalid cron schedule", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.New(router.Deps{
		Auth:          middleware.NewAuthenticator(cfg.JWTSecret, cfg.IsLocal(), users, notifications, logging),
		Projects:      projects,
		Votes:         services.NewVoteService(conn, engine, featured, logging),
		Comments:      services.NewCommentService(conn, engine, projects, renderer),
		Notifications: notifications,
		Moderation:    services.NewModerationService(conn, projects, featured, logging),
		Uploads:       services.NewUploadService(blobs),
		Log:           logging,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logging.Info("Starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", zap.Error(err))
	}
}
