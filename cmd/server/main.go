package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"taberna/internal/api"
	"taberna/internal/booking"
	"taberna/internal/cache"
	"taberna/internal/config"
	"taberna/internal/db"
	"taberna/internal/events"
	"taberna/internal/metrics"
)

func main() {
	cfgPath := os.Getenv("TABERNA_CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = newLogger(cfg)

	database, err := db.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureConfigDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seed config defaults")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	bus := events.NewBus(logger)
	responseCache := cache.New(rdb, cfg.CacheTTL(), logger)
	responseCache.InvalidateOn(bus)

	var capacity atomic.Int64
	capacity.Store(int64(cfg.SlotCapacity()))
	metrics.SetSlotCapacity(cfg.SlotCapacity())

	bookings := booking.NewService(database, func() int { return int(capacity.Load()) }, cfg.SlotStep(), logger)

	rps, burst := cfg.RateLimits()
	server := api.NewServer(database, bookings, responseCache, bus, api.Options{
		Timezone:          cfg.Timezone(),
		Environment:       cfg.Environment(),
		CORSOrigins:       cfg.Server.CORSOrigins,
		AdminUser:         cfg.Admin.Username,
		AdminPassword:     cfg.Admin.Password,
		AdminPasswordHash: cfg.Admin.PasswordHash,
		RateRPS:           rps,
		RateBurst:         burst,
	}, logger)

	err = config.Watch(ctx, cfgPath, 15*time.Second,
		func(next *config.Config) {
			prev := capacity.Swap(int64(next.SlotCapacity()))
			metrics.SetSlotCapacity(next.SlotCapacity())
			if prev != int64(next.SlotCapacity()) {
				logger.Info().Int64("from", prev).Int("to", next.SlotCapacity()).Msg("slot capacity reloaded")
			}
		},
		func(err error) { logger.Warn().Err(err).Msg("config reload skipped") },
	)
	if err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.PrometheusPort(), &logger)
	}

	if cfg.Backup.Enabled {
		backups := db.NewBackupService(database, db.BackupOptions{
			Enabled:       true,
			Schedule:      cfg.BackupSchedule(),
			Path:          cfg.BackupPath(),
			RetentionDays: cfg.BackupRetentionDays(),
		}, logger)
		go func() {
			if err := backups.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("backup scheduler stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port()),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("http shutdown error")
		}
	}()

	logger.Info().Int("port", cfg.Port()).Str("env", cfg.Environment()).Msg("taberna API started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server error")
	}
	logger.Info().Msg("taberna API stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil || cfg.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Logging.JSON {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
