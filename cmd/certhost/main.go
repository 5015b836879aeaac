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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/dstanley/certhost/internal/adapter/driven/eventsapi"
	kafkanotify "github.com/dstanley/certhost/internal/adapter/driven/kafka"
	"github.com/dstanley/certhost/internal/adapter/driven/lognotify"
	"github.com/dstanley/certhost/internal/adapter/driven/memoryhost"
	"github.com/dstanley/certhost/internal/adapter/driven/profileapi"
	"github.com/dstanley/certhost/internal/adapter/driven/redishost"
	httphandler "github.com/dstanley/certhost/internal/adapter/driving/http"
	"github.com/dstanley/certhost/internal/application"
	"github.com/dstanley/certhost/internal/config"
	"github.com/dstanley/certhost/internal/convert"
	"github.com/dstanley/certhost/internal/domain/port/driven"
	"github.com/dstanley/certhost/internal/platform/metrics"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"events_platform_url", cfg.EventsPlatformURL,
		"poll_interval", cfg.PollInterval,
		"convert_mode", cfg.ConvertMode,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Metrics registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	// 4. Host store: Redis-backed with a synced mirror, or in-memory when no
	// Redis URL is configured.
	var hosts driven.HostStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				slog.Error("error closing redis client", "error", closeErr)
			}
		}()

		store := redishost.New(client, cfg.RedisPrefix)
		if _, err := store.GetAll(ctx); err != nil {
			slog.Warn("initial host table load failed, mirror starts empty", "error", err)
		}
		go store.StartSync(ctx)
		hosts = store
		slog.Info("redis host store ready", "prefix", cfg.RedisPrefix)
	} else {
		hosts = memoryhost.New()
		slog.Info("no redis url configured, using in-memory host store")
	}

	// 5. Notifier: Kafka when brokers are configured, log-only otherwise.
	var notifier driven.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kn, err := kafkanotify.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := kn.Close(); closeErr != nil {
				slog.Error("error closing kafka notifier", "error", closeErr)
			}
		}()
		notifier = kn
		slog.Info("kafka notifier ready", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		notifier = lognotify.New()
		slog.Info("no kafka brokers configured, notifications will be logged and dropped")
	}

	// 6. Converter.
	var converter driven.Converter
	switch cfg.ConvertMode {
	case "remote":
		converter = convert.NewRemote(cfg.ConvertURL, cfg.ConvertAPIKey, cfg.ConvertTimeout)
	default:
		converter = convert.NewLocal(cfg.ConvertTool, cfg.ConvertTimeout)
	}

	// 7. External service clients.
	feed := eventsapi.NewClient(cfg.EventsPlatformURL, cfg.HTTPTimeout)
	profiles := profileapi.NewClient(cfg.LoginURL, cfg.HTTPTimeout)

	// 8. Application services. The events window was validated at load time.
	after, before, err := cfg.EventsWindow()
	if err != nil {
		return err
	}
	candidates := application.NewCandidateService(feed, profiles, after, before)
	certs := application.NewCertificateService(hosts, converter, m, cfg.DefaultIssuer, cfg.DefaultIssuerRole)

	autogen := application.NewAutogenService(candidates, hosts, notifier, m, cfg.AppURL, cfg.DefaultIssuer, cfg.PollInterval)
	go autogen.Start(ctx)

	// 9. HTTP server.
	handler := httphandler.NewHandler(hosts, candidates, certs, version, slog.Default())
	router := httphandler.NewRouter(handler, reg, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("certhost started",
		"version", version,
		"listen_addr", cfg.ListenAddr,
		"poll_interval", cfg.PollInterval,
	)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
