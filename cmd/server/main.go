// Package main runs the smart-retail price prediction API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"smart-retail/internal/config"
	"smart-retail/internal/recommend"
	"smart-retail/internal/registry"
	"smart-retail/internal/server"
	"smart-retail/internal/store"
	"smart-retail/pkg/redis"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	handle := registry.NewHandle(registry.Load(cfg.ArtifactsDir))

	var recsIndex *recommend.Index
	if ix, err := recommend.LoadIndex(cfg.CatalogPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.CatalogPath).Msg("recommendation catalog unavailable")
	} else {
		recsIndex = ix
		log.Info().Int("items", ix.Count()).Msg("recommendation index loaded")
	}

	events := openEventStore(cfg)
	cache := openTrendCache(cfg)

	srv := server.New(server.Config{
		Registry:  handle,
		RecsIndex: recsIndex,
		Events:    events,
		Cache:     cache,
		CacheTTL:  time.Duration(cfg.TrendCacheTTLSec) * time.Second,
		Version:   version,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info().
		Int("port", cfg.Port).
		Str("version", version).
		Str("artifacts_dir", cfg.ArtifactsDir).
		Msg("Starting smart-retail API server")

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatal().Err(err).Msg("Server failed")
	case <-quit:
		log.Info().Msg("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
		if events != nil {
			events.Close()
		}
	}
}

func openEventStore(cfg *config.Config) *store.Store {
	if cfg.ClickHouseAddr == "" {
		return nil
	}
	events, err := store.NewStore(&store.Config{
		Host:     cfg.ClickHouseAddr,
		Port:     cfg.ClickHousePort,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		log.Warn().Err(err).Msg("event store disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := events.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("event store schema setup failed, store disabled")
		events.Close()
		return nil
	}
	log.Info().Str("host", cfg.ClickHouseAddr).Msg("prediction event store enabled")
	return events
}

func openTrendCache(cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rc := redis.Config{URL: cfg.RedisURL}
	cache, err := rc.New(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("trend cache disabled")
		return nil
	}
	log.Info().Msg("trend cache enabled")
	return cache
}
