// SOP tool server
// Serves hybrid SOP retrieval tools over JSON-RPC 2.0 on stdio
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nainya/sopmcp/internal/config"
	"github.com/nainya/sopmcp/internal/logger"
	"github.com/nainya/sopmcp/internal/metrics"
	"github.com/nainya/sopmcp/internal/resources"
	"github.com/nainya/sopmcp/internal/server"
	"github.com/nainya/sopmcp/pkg/websearch"
)

const version = "1.0.0"

var (
	configPath  = pflag.String("config", "config.yaml", "Configuration file path")
	indexDir    = pflag.String("index-dir", "", "Index directory (overrides config)")
	logLevel    = pflag.String("log-level", "", "Log level: debug, info, warn, error")
	pretty      = pflag.Bool("pretty", false, "Pretty-print logs for development")
	metricsPort = pflag.Int("metrics-port", 0, "Port for metrics and pprof, 0 disables")
)

func main() {
	pflag.Parse()

	// Best effort; a missing .env is not an error
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.GetGlobalLogger().Fatal("Failed to load config").Err(err).Str("path", *configPath).Send()
	}
	if *indexDir != "" {
		cfg.IndexDir = *indexDir
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *pretty {
		cfg.Log.Pretty = true
	}
	if *metricsPort != 0 {
		cfg.MetricsPort = *metricsPort
	}

	logger.InitGlobalLogger(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})
	log := logger.GetGlobalLogger()
	log.LogServerStart(cfg.IndexDir, version)

	store, err := resources.Load(cfg.IndexDir)
	if err != nil {
		log.Fatal("Failed to load resources").Err(err).Str("index_dir", cfg.IndexDir).Send()
	}

	web := websearch.NewClient(websearch.Config{
		Endpoint: cfg.WebSearch.Endpoint,
		APIKey:   os.Getenv(cfg.WebSearch.APIKeyEnv),
		Timeout:  time.Duration(cfg.WebSearch.TimeoutSecs) * time.Second,
	})
	if !web.Enabled() {
		log.Warn("Web search disabled").Str("api_key_env", cfg.WebSearch.APIKeyEnv).Send()
	}

	m := metrics.NewMetrics()
	srv := server.NewServer(store, web, log, m)

	var obs *server.ObservabilityServer
	if cfg.MetricsPort > 0 {
		obs = server.NewObservabilityServer(cfg.MetricsPort, m, log)
		go func() {
			if err := obs.Start(); err != nil {
				log.Error("Observability server stopped").Err(err).Send()
			}
		}()
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.LogServerShutdown()
		if obs != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obs.Shutdown(ctx)
		}
		os.Exit(0)
	}()

	log.LogServerReady(store.Table.Len(), store.Graph.Len())
	if err := srv.Serve(); err != nil {
		log.Fatal("Server loop failed").Err(err).Send()
	}
	log.LogServerShutdown()
}
