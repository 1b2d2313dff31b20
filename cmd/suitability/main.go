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

	"github.com/MikeSquared-Agency/Suitability/internal/api"
	"github.com/MikeSquared-Agency/Suitability/internal/config"
	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/hermes"
	"github.com/MikeSquared-Agency/Suitability/internal/rulebase"
	"github.com/MikeSquared-Agency/Suitability/internal/scoring"
	"github.com/MikeSquared-Agency/Suitability/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional)
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		db = pg
		defer pg.Close()
		logger.Info("connected to database")
	} else {
		logger.Info("no database configured, evaluation history disabled")
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Engine
	rb, source, err := loadRuleBase(ctx, cfg, db)
	if err != nil {
		logger.Error("failed to load rule base", "error", err)
		os.Exit(1)
	}
	engine, err := fuzzy.NewEngine(rb, cfg.EngineOptions())
	if err != nil {
		logger.Error("invalid engine configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("rule base loaded", "name", rb.Name, "rules", len(rb.Rules), "source", source)

	scorer := scoring.NewScorer(engine, cfg.Engine.BatchWorkers, logger)
	reloader := scoring.NewReloader(scorer, db, hermesClient, cfg.Engine.RuleBasePath, cfg.ReloadInterval(), logger)
	reloader.Start(ctx)
	defer reloader.Stop()

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectRuleBaseReload, reloader.HandleReloadMessage); err != nil {
			logger.Warn("failed to subscribe to rule-base reloads", "error", err)
		}
	}

	// API server
	router := api.NewRouter(scorer, reloader, db, hermesClient, cfg.Server.AdminToken, logger)
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

// loadRuleBase picks the configured file, then the newest stored revision of
// the built-in rule base, then the built-in rule base itself.
func loadRuleBase(ctx context.Context, cfg *config.Config, db store.Store) (fuzzy.RuleBase, string, error) {
	if cfg.Engine.RuleBasePath != "" {
		rb, err := rulebase.Load(cfg.Engine.RuleBasePath)
		return rb, "file", err
	}

	def := rulebase.Default()
	if db != nil {
		rev, err := db.GetLatestRuleBase(ctx, def.Name)
		if err != nil {
			return fuzzy.RuleBase{}, "", fmt.Errorf("load stored rule base: %w", err)
		}
		if rev != nil {
			rb, err := rulebase.Parse(rev.Document)
			if err != nil {
				return fuzzy.RuleBase{}, "", fmt.Errorf("stored rule base revision %d: %w", rev.Revision, err)
			}
			return rb, fmt.Sprintf("store (revision %d)", rev.Revision), nil
		}
	}
	return def, "embedded", nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
