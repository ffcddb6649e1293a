// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package main is the entry point for the Quoifaire server.
//
// Quoifaire recommends local events ("quoi faire ce soir ?") to users
// based on their stated preferences and interaction history. The server
// scores the event catalog per user, persists the resulting
// recommendation ledger, and serves it through a versioned JSON API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered loading (defaults, YAML file,
//     environment variables)
//  2. Logging: zerolog, JSON or console format
//  3. Database: DuckDB with the schema migrated in place
//  4. Stores: circuit-breaker wrapped store implementations
//  5. Cache (optional): Badger-backed response cache
//  6. Engine: the recommendation pipeline
//  7. HTTP server and ledger pruner under a suture supervision tree
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, waits for in-flight requests, then closes the
// cache and database.
//
// # Example Usage
//
//	export DATABASE_PATH=/data/quoifaire.duckdb
//	export SERVER_PORT=8080
//	export SERVER_CORS_ORIGINS=https://app.quoifaire.fr
//	./quoifaire-server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlarcin/quoifaire/internal/api"
	"github.com/mlarcin/quoifaire/internal/cache"
	"github.com/mlarcin/quoifaire/internal/config"
	"github.com/mlarcin/quoifaire/internal/database"
	"github.com/mlarcin/quoifaire/internal/logging"
	"github.com/mlarcin/quoifaire/internal/recommend"
	"github.com/mlarcin/quoifaire/internal/supervisor"
	"github.com/mlarcin/quoifaire/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("pruner_enabled", cfg.Pruner.Enabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Quoifaire")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// Store reads go through circuit breakers so a struggling database
	// degrades recommendations instead of hanging every request.
	stores := database.NewBreakerStores(db).Stores()

	var engineOpts []recommend.Option
	var respCache *cache.ResponseCache
	if cfg.Cache.Enabled {
		respCache, err = cache.Open(cfg.Cache.Path, cfg.Cache.TTL, logging.Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open response cache")
		}
		defer func() {
			if err := respCache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing response cache")
			}
		}()
		engineOpts = append(engineOpts, recommend.WithCache(respCache))
		logging.Info().Str("path", cfg.Cache.Path).Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, stores, logging.Logger(), engineOpts...)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	// The invalidator stays a nil interface when the cache is off; a
	// typed nil pointer would defeat the handlers' nil check.
	var invalidator api.Invalidator
	if respCache != nil {
		invalidator = respCache
	}

	handler := api.NewHandler(engine, db, invalidator, cfg.Recommend.Limits.DefaultLimit)
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RateLimitDisabled:  cfg.Server.RateLimitReqs == 0,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	if cfg.Pruner.Enabled {
		tree.AddMaintenanceService(services.NewPrunerService(
			db, cfg.Pruner.Interval, cfg.Pruner.Retention, logging.Logger()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor exited with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
