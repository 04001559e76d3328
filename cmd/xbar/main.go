package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Yuki33825/x-music-bar/internal/api"
	"github.com/Yuki33825/x-music-bar/internal/channel"
	"github.com/Yuki33825/x-music-bar/internal/config"
	"github.com/Yuki33825/x-music-bar/internal/recipe"
	"github.com/Yuki33825/x-music-bar/internal/relay"
	"github.com/Yuki33825/x-music-bar/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ingredient catalog: database wins over file, file wins over the
	// built-in set. The show runs fine on the built-ins.
	catalog, source, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "source", source, "ingredients", len(catalog))
	if missing := recipe.MissingReferenceAxes(catalog); len(missing) > 0 {
		logger.Warn("catalog has no full-strength reference for some axes",
			"axes", strings.Join(missing, ","))
	}

	engine, err := recipe.NewEngine(recipe.Params{
		Sigma:     cfg.Engine.Sigma,
		VolumeMin: cfg.Engine.VolumeMin,
		VolumeMax: cfg.Engine.VolumeMax,
		MinPour:   cfg.Engine.MinPour,
	}, catalog)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	// Synchronization channel
	var ch channel.Client
	if cfg.Channel.URL != "" {
		nc, err := channel.NewNATSClient(ctx, cfg.Channel.URL, cfg.Channel.Bucket, logger)
		if err != nil {
			logger.Error("failed to connect to channel", "error", err)
			os.Exit(1)
		}
		ch = nc
		logger.Info("connected to channel", "url", cfg.Channel.URL, "bucket", cfg.Channel.Bucket)
	} else {
		ch = channel.NewMemoryClient()
		logger.Info("running on in-process channel")
	}
	defer ch.Close()

	// Relay
	rel := relay.New(ch, engine, cfg, logger)
	if err := rel.Start(ctx); err != nil {
		logger.Error("failed to start relay", "error", err)
		os.Exit(1)
	}
	defer rel.Stop()
	logger.Info("relay started", "min_interval", cfg.MinInterval())

	// API server
	router := api.NewRouter(rel, ch, cfg, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func loadCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]recipe.Ingredient, string, error) {
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, "", fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		catalog, err := db.LoadIngredients(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load ingredients: %w", err)
		}
		return catalog, "database", nil
	}
	if cfg.Catalog.Path != "" {
		catalog, err := recipe.LoadCatalogFile(cfg.Catalog.Path)
		if err != nil {
			return nil, "", err
		}
		return catalog, cfg.Catalog.Path, nil
	}
	return recipe.DefaultCatalog(), "builtin", nil
}
