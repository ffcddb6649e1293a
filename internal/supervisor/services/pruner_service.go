// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Pruner deletes stale unacted ledger rows. Satisfied by *database.DB.
type Pruner interface {
	PruneStale(ctx context.Context, now time.Time, retention time.Duration) (int64, error)
}

// PrunerService periodically prunes the recommendation ledger. A failed
// run is logged and retried on the next tick; the service itself only
// exits on context cancellation, so the supervisor never sees pruning
// errors as crashes.
type PrunerService struct {
	pruner    Pruner
	interval  time.Duration
	retention time.Duration
	logger    zerolog.Logger
}

// NewPrunerService creates the pruner service.
func NewPrunerService(pruner Pruner, interval, retention time.Duration, logger zerolog.Logger) *PrunerService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &PrunerService{
		pruner:    pruner,
		interval:  interval,
		retention: retention,
		logger:    logger.With().Str("component", "pruner").Logger(),
	}
}

// Serve implements suture.Service. One prune runs immediately on start
// so a restart loop does not indefinitely defer cleanup.
func (p *PrunerService) Serve(ctx context.Context) error {
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *PrunerService) prune(ctx context.Context) {
	pruned, err := p.pruner.PruneStale(ctx, time.Now(), p.retention)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error().Err(err).Msg("ledger prune failed")
		}
		return
	}
	if pruned > 0 {
		p.logger.Info().Int64("rows", pruned).Msg("pruned stale recommendations")
	}
}

// String implements fmt.Stringer for suture's log messages.
func (p *PrunerService) String() string {
	return "ledger-pruner"
}
