// Package main is the entry point for the wallpaper studio API server.
// It loads configuration, connects to services, wires the generation
// pipeline, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/cache"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/config"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/conversation"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/database"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/gateway"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/handlers"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/imaging"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/middleware"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/prompt"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/quota"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/router"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/session"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/storage"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/store"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// valkeyDB is the logical database used by the server; tests use 15.
const valkeyDB = 0

func main() {
	// A missing .env file is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Root context, cancelled on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// The stub identity must exist so its tier resolves.
	if err := database.Seed(db, cfg.DemoUserID); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (image cache, sessions, conversation epochs).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, valkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	imageCache := cache.NewImageCache(valkeyClient, cfg.CacheTTL)
	cache.StartSweeper(ctx, imageCache, cfg.CacheSweepInterval)

	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	limitStore := store.NewDailyLimitStore(db)
	wallpaperStore := store.NewWallpaperStore(db)
	libraryStore := store.NewLibraryStore(db)
	eventStore := store.NewGenerationLogStore(db)

	// Initialize the vendor registry with every configured vendor.
	vendors := ai.NewRegistry(cfg.AI())
	chats, images := vendors.Available()
	slog.Info("ai vendors initialized",
		"chat", cfg.ChatProvider,
		"image", cfg.ImageProvider,
		"custom_image", cfg.CustomImageProvider,
		"chat_available", chats,
		"image_available", images,
	)

	// Fall back to any keyed chat vendor when the configured one has no key.
	if _, err := vendors.Chat(); err != nil && len(chats) > 0 {
		if err := vendors.SetActiveChat(chats[0]); err == nil {
			slog.Warn("chat provider unavailable, falling back", "configured", cfg.ChatProvider, "using", chats[0])
		}
	}

	styles := style.Default()
	guard := quota.NewGuard(limitStore, userStore)

	deps := gateway.Deps{
		Compiler:    prompt.NewCompiler(styles),
		Styles:      styles,
		Quota:       gateway.GuardQuota{Guard: guard},
		Cache:       imageCache,
		Vendors:     vendors,
		Thumbnailer: imaging.NewThumbnailer(nil),
		Moderator:   vendors,
		Recorder:    wallpaperStore,
		Catalog:     libraryStore,
		EventLog:    eventStore,
	}

	// Connect to S3-compatible object storage (optional; vendor URLs are
	// kept when it is not configured).
	if cfg.S3Configured() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		deps.Rehoster = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, vendor image urls are served as-is")
	}

	chat := conversation.NewGuard(conversation.NewEngine(vendors), sessionStore)

	api := handlers.NewAPI(handlers.Deps{
		Styles:       styles,
		Generator:    gateway.New(deps),
		Quota:        guard,
		Conversation: chat,
		History:      wallpaperStore,
		Library:      libraryStore,
		Cache:        imageCache,
	})

	r := router.New(api, router.Options{
		Sessions:    sessionStore,
		DemoUserID:  cfg.DemoUserID,
		RateLimiter: middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute),
	})

	// WriteTimeout must cover a chat call plus an image generation with one
	// model-loading retry.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.VendorTimeout*2 + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
