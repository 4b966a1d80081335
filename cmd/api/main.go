package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/marquee/internal/assets"
	"github.com/BradenHooton/marquee/internal/auth"
	"github.com/BradenHooton/marquee/internal/background"
	"github.com/BradenHooton/marquee/internal/config"
	"github.com/BradenHooton/marquee/internal/database"
	"github.com/BradenHooton/marquee/internal/handlers"
	middlewareCustom "github.com/BradenHooton/marquee/internal/middleware"
	"github.com/BradenHooton/marquee/internal/repositories"
	"github.com/BradenHooton/marquee/internal/routes"
	"github.com/BradenHooton/marquee/internal/services"
	"github.com/BradenHooton/marquee/internal/tmdb"
	pkglogger "github.com/BradenHooton/marquee/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	historyRepo := repositories.NewSearchHistoryRepository(db)

	// Metadata client, with Redis response cache when configured
	var tmdbOpts []tmdb.Option
	if cfg.Cache.RedisURL != "" {
		cache, err := tmdb.NewRedisCacheFromURL(cfg.Cache.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		defer cache.Close()
		tmdbOpts = append(tmdbOpts, tmdb.WithCache(cache, cfg.Cache.TTL))
		logger.Info("metadata cache enabled", slog.Duration("ttl", cfg.Cache.TTL))
	}
	metadata := tmdb.NewClient(&cfg.TMDB, logger, tmdbOpts...)

	// Avatar host is optional; the interface stays nil when disabled
	var avatars services.AvatarStore
	if cfg.Avatars.Enabled() {
		store, err := assets.NewS3Store(context.Background(), &cfg.Avatars)
		if err != nil {
			logger.Error("failed to initialize avatar store", slog.Any("error", err))
			os.Exit(1)
		}
		avatars = store
	} else {
		logger.Warn("AVATAR_BUCKET not set, avatar listing disabled")
	}

	// Welcome email is optional
	var mailer services.Mailer
	if cfg.Email.FromAddress != "" {
		sesMailer, err := services.NewSESMailer(context.Background(), cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.AppURL, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		mailer = sesMailer
	}

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenManager, mailer, logger, auditLogger)
	userService := services.NewUserService(userRepo, avatars, logger)
	searchService := services.NewSearchService(metadata, historyRepo, logger)
	catalogService := services.NewCatalogService(metadata, logger)

	// Initialize handlers
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Cookie.Domain,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSite,
	}
	apiHandlers := routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService, cookieConfig, cfg.Auth.RefreshTokenExpiry),
		Search: handlers.NewSearchHandler(searchService),
		Movies: handlers.NewCatalogHandler(catalogService, services.MediaMovie),
		TV:     handlers.NewCatalogHandler(catalogService, services.MediaTV),
		User:   handlers.NewUserHandler(userService),
	}
	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"database": db.HealthCheck,
		"cache":    metadata.Ping,
	})

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	routes.RegisterRoutes(router, apiHandlers, tokenManager, userRepo,
		middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Auth.RateLimitPerMinute}, logger)
	router.Get("/health", healthHandler.Health)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(userRepo, logger, cfg.Auth.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
