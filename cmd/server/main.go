package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mosdacbot/internal/config"
	"mosdacbot/internal/handler"
	"mosdacbot/internal/hub"
	"mosdacbot/internal/loader"
	"mosdacbot/internal/nlp"
	"mosdacbot/internal/responder"
	"mosdacbot/internal/service"
	"mosdacbot/internal/watcher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	catalogPath := flag.String("catalog", "", "Catalog file or SQLite database (overrides config)")
	seedDB := flag.String("seed-db", "", "Write the loaded catalog into this SQLite database and exit")
	initConfig := flag.Bool("init-config", false, "Write a default config file and exit")
	flag.Parse()

	if *initConfig {
		path := *configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return
	}

	cfg, loadedFrom, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if loadedFrom != "" {
		logger.Info("config loaded", zap.String("path", loadedFrom))
	}
	logger.Info("starting mosdacbot", zap.String("config", cfg.Summary()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fragment, err := loader.Load(ctx, cfg.Catalog.Path, cfg.Catalog.Format)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}

	if *seedDB != "" {
		if err := loader.Seed(ctx, *seedDB, fragment); err != nil {
			logger.Fatal("failed to seed database", zap.String("path", *seedDB), zap.Error(err))
		}
		logger.Info("database seeded",
			zap.String("path", *seedDB),
			zap.Int("nodes", len(fragment.Nodes)),
			zap.Int("edges", len(fragment.Edges)),
		)
		return
	}

	snap, err := service.BuildSnapshot(fragment)
	if err != nil {
		logger.Fatal("catalog failed validation", zap.Error(err))
	}

	classifier, composer, err := loadNLP(cfg.NLP)
	if err != nil {
		logger.Fatal("failed to load NLP configuration", zap.Error(err))
	}

	// Metrics
	var registry *prometheus.Registry
	var metrics *service.Metrics
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = service.NewMetrics(registry, cfg.Metrics.Namespace)
	}

	eventBus := service.NewEventBus()
	svc := service.NewHelpService(snap, service.Options{
		Classifier: classifier,
		Composer:   composer,
		EventBus:   eventBus,
		Metrics:    metrics,
		Logger:     logger.Named("service"),
	})

	// SSE hub fed from the event bus
	sseHub := hub.New(logger)
	go sseHub.Run(ctx)
	go sseHub.Forward(ctx, eventBus)

	if cfg.Catalog.Watch {
		w := watcher.New(cfg.Catalog.Path, func() {
			reloadCatalog(ctx, svc, cfg.Catalog, logger)
		}, logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	go sweepSessions(ctx, svc, cfg.Sessions, logger)

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.NewRouter(svc, handler.RouterConfig{
			CORSOrigins: cfg.Server.CORSOrigins,
			Registry:    registry,
			Metrics:     metrics,
			Events:      sseHub,
			Logger:      logger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// loadNLP builds the classifier and composer, applying file overrides when configured
func loadNLP(cfg config.NLPConfig) (*nlp.Classifier, *responder.Composer, error) {
	classifier := nlp.DefaultClassifier()
	if cfg.RulesPath != "" {
		rules, err := nlp.LoadRuleSet(cfg.RulesPath)
		if err != nil {
			return nil, nil, err
		}
		if classifier, err = nlp.NewClassifier(rules); err != nil {
			return nil, nil, err
		}
	}

	composer := responder.DefaultComposer()
	if cfg.TemplatesPath != "" {
		specs, err := responder.LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			return nil, nil, err
		}
		if composer, err = responder.NewComposer(specs); err != nil {
			return nil, nil, err
		}
	}

	return classifier, composer, nil
}

// reloadCatalog re-reads the catalog source. Errors leave the current catalog published.
func reloadCatalog(ctx context.Context, svc *service.HelpService, cfg config.CatalogConfig, logger *zap.Logger) {
	fragment, err := loader.Load(ctx, cfg.Path, cfg.Format)
	if err != nil {
		logger.Error("catalog reload failed, keeping current catalog", zap.String("path", cfg.Path), zap.Error(err))
		return
	}
	// Reload logs and publishes its own failure event
	_ = svc.Reload(fragment)
}

func sweepSessions(ctx context.Context, svc *service.HelpService, cfg config.SessionsConfig, logger *zap.Logger) {
	interval := cfg.SweepInterval.Duration()
	if interval <= 0 {
		logger.Info("session sweep disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.SweepSessions(cfg.IdleTimeout.Duration())
		case <-ctx.Done():
			return
		}
	}
}
