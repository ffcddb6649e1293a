// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package database

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mlarcin/quoifaire/internal/logging"
	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/models"
	"github.com/mlarcin/quoifaire/internal/recommend"
)

// BreakerStores wraps the database stores with per-store circuit
// breakers. When DuckDB stalls or errors repeatedly, the breaker opens
// and the engine degrades immediately instead of burning its store
// timeout on every request.
//
// The breaker uses real time for recovery windows. Tests exercise the
// unwrapped DB directly.
type BreakerStores struct {
	db *DB

	profiles     *gobreaker.CircuitBreaker[any]
	catalog      *gobreaker.CircuitBreaker[any]
	interactions *gobreaker.CircuitBreaker[any]
	ledger       *gobreaker.CircuitBreaker[any]
}

// NewBreakerStores wraps db and returns a store bundle for the engine.
func NewBreakerStores(db *DB) *BreakerStores {
	return &BreakerStores{
		db:           db,
		profiles:     newStoreBreaker("store-profiles"),
		catalog:      newStoreBreaker("store-catalog"),
		interactions: newStoreBreaker("store-interactions"),
		ledger:       newStoreBreaker("store-ledger"),
	}
}

// Stores returns the bundle wired for recommend.NewEngine.
func (b *BreakerStores) Stores() recommend.Stores {
	return recommend.Stores{
		Profiles:     b,
		Catalog:      b,
		Interactions: b,
		Ledger:       b,
	}
}

// newStoreBreaker builds one circuit breaker. It opens after a 60%
// failure rate over at least 10 requests, and probes recovery after 30
// seconds.
func newStoreBreaker(name string) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
}

// execute runs fn through cb and records outcome metrics.
func execute[T any](cb *gobreaker.CircuitBreaker[any], name string, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
		}
		return zero, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	out, _ := result.(T)
	return out, nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// GetProfile implements recommend.ProfileStore.
func (b *BreakerStores) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	return execute(b.profiles, "store-profiles", func() (*models.UserProfile, error) {
		return b.db.GetProfile(ctx, userID)
	})
}

// ListActiveUpcoming implements recommend.EventCatalog.
func (b *BreakerStores) ListActiveUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Event, error) {
	return execute(b.catalog, "store-catalog", func() ([]models.Event, error) {
		return b.db.ListActiveUpcoming(ctx, now, limit)
	})
}

// GetEvents implements recommend.EventCatalog.
func (b *BreakerStores) GetEvents(ctx context.Context, ids []int64) ([]models.Event, error) {
	return execute(b.catalog, "store-catalog", func() ([]models.Event, error) {
		return b.db.GetEvents(ctx, ids)
	})
}

// GetUserHistory implements recommend.InteractionStore.
func (b *BreakerStores) GetUserHistory(ctx context.Context, userID int64) ([]models.InteractionRecord, error) {
	return execute(b.interactions, "store-interactions", func() ([]models.InteractionRecord, error) {
		return b.db.GetUserHistory(ctx, userID)
	})
}

// GetEventCounts implements recommend.InteractionStore.
func (b *BreakerStores) GetEventCounts(ctx context.Context) (map[int64]int, error) {
	return execute(b.interactions, "store-interactions", func() (map[int64]int, error) {
		return b.db.GetEventCounts(ctx)
	})
}

// Upsert implements recommend.RecommendationLedger.
func (b *BreakerStores) Upsert(ctx context.Context, rec models.Recommendation) error {
	_, err := execute(b.ledger, "store-ledger", func() (struct{}, error) {
		return struct{}{}, b.db.Upsert(ctx, rec)
	})
	return err
}

// Recent implements recommend.RecommendationLedger.
func (b *BreakerStores) Recent(ctx context.Context, userID int64, since time.Time) ([]models.Recommendation, error) {
	return execute(b.ledger, "store-ledger", func() ([]models.Recommendation, error) {
		return b.db.Recent(ctx, userID, since)
	})
}
