package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"aks-health-guardian/internal/analysis"
	"aks-health-guardian/internal/api"
	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/config"
	"aks-health-guardian/internal/logs"
	"aks-health-guardian/internal/metrics"
	"aks-health-guardian/internal/report"
	"aks-health-guardian/internal/retention"
	"aks-health-guardian/internal/schedule"
	"aks-health-guardian/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Logger
	logger, err := logs.New(logs.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		RingSize:   cfg.Logging.RingSize,
	})
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	// Metrics
	metricsRegistry := metrics.NewRegistry()

	// Cluster access
	collector, err := cluster.NewCollector(cfg.Collector.Kubeconfig, cfg.Collector.EventWindow, logger)
	if err != nil {
		log.Fatalf("build cluster collector: %v", err)
	}

	// Analysis
	tracker := analysis.NewEndpointTracker(
		cfg.Analyzer.EndpointFailureThreshold,
		cfg.Analyzer.EndpointSuccessThreshold,
	)
	var client analysis.CompletionClient
	if cfg.Analyzer.Azure.Endpoint != "" {
		client = analysis.NewAzureClient(analysis.AzureOptions{
			Endpoint:    cfg.Analyzer.Azure.Endpoint,
			APIKey:      cfg.Analyzer.Azure.APIKey,
			Deployment:  cfg.Analyzer.Azure.Deployment,
			APIVersion:  cfg.Analyzer.Azure.APIVersion,
			Temperature: cfg.Analyzer.Sampling.Temperature,
			TopP:        cfg.Analyzer.Sampling.TopP,
			MaxTokens:   cfg.Analyzer.Sampling.MaxTokens,
			Timeout:     cfg.Analyzer.Timeout,
		})
	} else {
		logger.Warn("no completion endpoint configured, using rule-based analysis only")
	}
	analyzer := analysis.NewAnalyzer(client, tracker, logger, metricsRegistry)

	// Run history
	history := store.NewStore(cfg.History.MaxSize, cfg.History.Retention, metricsRegistry)

	// Report delivery
	var deliverer schedule.Deliverer
	if cfg.Email.Enabled {
		deliverer = report.NewMailer(report.EmailOptions{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			From:        cfg.Email.From,
			Recipients:  cfg.Email.Recipients,
			Username:    cfg.Email.Username,
			Password:    cfg.Email.Password,
			MaxAttempts: cfg.Email.MaxAttempts,
			BaseBackoff: cfg.Email.BaseBackoff,
			MaxBackoff:  cfg.Email.MaxBackoff,
		}, logger, metricsRegistry)
	}

	// Scheduler
	runner := schedule.NewRunner(
		collector,
		analyzer,
		history,
		deliverer,
		cfg.Schedule.Interval,
		logger,
		metricsRegistry,
	)

	// History pruner
	pruner := retention.NewPruner(history, cfg.History.PruneInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runner.Start(ctx)
	go pruner.Start(ctx)

	// API
	handler := api.NewHandler(
		history,
		runner,
		tracker,
		metricsRegistry,
		logger,
	)
	mux := http.NewServeMux()
	httpHandler := api.RegisterRoutes(mux, handler)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpHandler,
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}
