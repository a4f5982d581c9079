package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dollartrack/internal/config"
	"dollartrack/internal/server"
	"dollartrack/internal/storage/sqlite"
	"dollartrack/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	cfg, err := config.Open(os.Getenv("DOLLARTRACK_CONFIG_DIR"))
	if err != nil {
		slog.Error("Failed to open config directory", "error", err)
		os.Exit(1)
	}
	serverCfg, err := cfg.ServerConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	dbPath := getEnv("DB_PATH", "./data/dollar_tracker.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	metrics := server.NewMetrics(prometheus.DefaultRegisterer)

	// Metrics endpoint lives on its own HTTP listener, separate from the
	// tracker protocol.
	if metricsAddr := os.Getenv("METRICS_ADDR"); metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("Metrics listening", "address", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	srv := server.New(store, slog.Default(), metrics)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		slog.Info("Shutting down server")
		srv.Close()
	}()

	addr := fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port)
	if err := srv.ListenAndServe(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
