package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carauction/carauction-backend/config"
	"github.com/carauction/carauction-backend/internal/app/controller"
	"github.com/carauction/carauction-backend/internal/app/repository"
	"github.com/carauction/carauction-backend/internal/app/service"
	"github.com/carauction/carauction-backend/internal/db"
	"github.com/carauction/carauction-backend/internal/middleware"
	"github.com/carauction/carauction-backend/internal/router"
	"github.com/carauction/carauction-backend/internal/scheduler"
	"github.com/carauction/carauction-backend/internal/storage"
	"github.com/carauction/carauction-backend/internal/validation"
	ws "github.com/carauction/carauction-backend/internal/websocket"
	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/carauction/carauction-backend/pkg/mailer"
	appredis "github.com/carauction/carauction-backend/pkg/redis"
	"github.com/carauction/carauction-backend/pkg/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting car auction backend", map[string]interface{}{
		"environment":     cfg.Server.Environment,
		"port":            cfg.Server.Port,
		"log_level":       logLevel,
		"dispatch_policy": cfg.Codes.DispatchPolicy,
		"upload_backend":  cfg.Upload.Backend,
	})

	// Initialize database
	conn, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	hasher, err := util.NewCodeHasher(cfg.Codes.HMACSecret)
	if err != nil {
		logger.Fatal("Failed to initialize code hasher", err)
	}

	// Token blacklist is optional
	var revoker service.TokenRevoker
	var revocations middleware.RevocationChecker
	if cfg.Redis.Addr != "" {
		redisClient, err := appredis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		blacklist := appredis.NewBlacklist(redisClient)
		defer blacklist.Close()
		revoker, revocations = blacklist, blacklist
	} else {
		logger.Warn("REDIS_ADDR not set, signed-out tokens stay valid until they expire")
	}

	// Mail transport
	var mail mailer.Mailer
	if cfg.Mail.Enabled() {
		mail = mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	} else {
		logger.Warn("SMTP credentials not set, codes are written to the log")
		mail = mailer.NewLogMailer()
	}

	// Upload storage
	var store storage.Storage
	if cfg.Upload.Backend == config.UploadBackendS3 {
		store = storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
	} else {
		store = storage.NewLocalStorage(cfg.Upload.Dir, "/images")
	}

	hub := ws.NewHub()
	go hub.Run()

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(conn)
	adminRepo := repository.NewAdminRepository(conn)
	postRepo := repository.NewPostRepository(conn)

	// Initialize services
	codeOpts := service.CodeOptions{
		Hasher: hasher,
		Mailer: mail,
		Policy: service.DispatchPolicy(cfg.Codes.DispatchPolicy),
	}
	authService := service.NewAuthService(customerRepo, adminRepo, revoker, cfg.JWT.Secret, cfg.JWT.Expiry)
	verificationService := service.NewVerificationService(customerRepo, codeOpts)
	passwordResetService := service.NewPasswordResetService(customerRepo, codeOpts)
	postService := service.NewPostService(postRepo, customerRepo, hub)

	// Initialize controllers
	validation.Register()
	authController := controller.NewAuthController(
		authService,
		verificationService,
		passwordResetService,
		store,
		controller.CookieOptions{Secure: cfg.Server.IsProduction(), MaxAge: cfg.JWT.Expiry},
	)
	postController := controller.NewPostController(postService, store)
	feedController := controller.NewFeedController(hub, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations)

	engine := router.NewRouter(
		authController,
		postController,
		feedController,
		authMiddleware,
		cfg,
	).Setup()

	cleanup := scheduler.NewCodeCleanupScheduler(customerRepo, cfg.Codes.CleanupSchedule, nil)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start code cleanup scheduler", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	cleanup.Stop()
	hub.Stop()

	logger.Info("Server stopped successfully")
}
