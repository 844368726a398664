package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/templatehub/template-manager/internal/action"
	"github.com/templatehub/template-manager/internal/auth"
	"github.com/templatehub/template-manager/internal/comment"
	"github.com/templatehub/template-manager/internal/config"
	"github.com/templatehub/template-manager/internal/database"
	httpServer "github.com/templatehub/template-manager/internal/http"
	"github.com/templatehub/template-manager/internal/logging"
	"github.com/templatehub/template-manager/internal/ratelimit"
	"github.com/templatehub/template-manager/internal/template"
	"github.com/templatehub/template-manager/internal/user"
)

// @title           Template Manager API
// @version         1.0
// @description     REST API for managing design templates with versioning, comments, stars, and bookmarks.

// @contact.name   API Support
// @contact.email  support@templatemanager.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logging.SetDefault(logger)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := db.Client().Disconnect(disconnectCtx); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	resetTokenRepo := auth.NewResetTokenRepository(db)
	templateRepo := template.NewRepository(db)
	commentRepo := comment.NewRepository(db)
	actionRepo := action.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(
		redisClient,
		cfg.RateLimit.IPLimit,
		cfg.RateLimit.IPWindow,
		cfg.RateLimit.EmailCooldown,
	)

	// Initialize token codec and password hasher
	codec, err := auth.NewTokenCodec(cfg.Auth.TokenKey, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	hasher := auth.NewHasher()

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		resetTokenRepo,
		hasher,
		codec,
		logger,
		cfg.Auth.ResetTokenTTL,
	)

	// Seed the first-run admin account when the user collection is empty
	if err := seedAdmin(ctx, cfg.Bootstrap, userRepo, hasher, logger); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Sweep expired reset tokens in the background
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go authService.SweepExpiredResetTokens(sweepCtx, cfg.Auth.ResetSweepInterval)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:      auth.NewHandler(authService, rateLimiter, logger),
		Templates: template.NewHandler(templateRepo),
		Comments:  comment.NewHandler(commentRepo),
		Actions:   action.NewHandler(actionRepo, templateRepo),
		Users:     user.NewHandler(userRepo),
	}
	authMiddleware := auth.NewMiddleware(codec)

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// seedAdmin creates the initial admin account on an empty deployment.
// Skipped when BOOTSTRAP_ADMIN_PASSWORD is unset or users already exist.
func seedAdmin(ctx context.Context, cfg config.BootstrapConfig, repo *user.Repository, hasher *auth.Hasher, logger *logging.Logger) error {
	if cfg.AdminPassword == "" {
		return nil
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &user.User{
		Name:          "Admin User",
		Email:         cfg.AdminEmail,
		PasswordHash:  hash,
		Role:          user.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
		Preferences:   user.DefaultPreferences(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := repo.Insert(ctx, admin); err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	logger.Info("seeded admin account", "email", cfg.AdminEmail)
	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
