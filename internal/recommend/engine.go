// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/models"
)

// Engine is the recommendation facade. It validates requests, gathers
// data from the four stores, runs the scoring pipeline and persists the
// outcome. The engine degrades rather than fails: losing the profile or
// interaction store downgrades to popularity-only scoring, and only an
// unreachable event catalog prevents a ranking entirely.
type Engine struct {
	cfg    *Config
	stores Stores
	agg    *Aggregator
	cache  ResponseCache
	logger zerolog.Logger
	now    func() time.Time
}

// Option customizes engine construction.
type Option func(*Engine)

// WithCache attaches a response cache. Without one every request
// recomputes (modulo the persisted-ledger reuse path).
func WithCache(c ResponseCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithScorers overrides the default scorer set.
func WithScorers(scorers []Scorer) Option {
	return func(e *Engine) { e.agg = NewAggregator(e.cfg, scorers) }
}

// NewEngine creates an engine. The config is cloned and validated;
// stores must carry a non-nil catalog and ledger.
func NewEngine(cfg *Config, stores Stores, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if stores.Catalog == nil {
		return nil, fmt.Errorf("event catalog is required")
	}
	if stores.Ledger == nil {
		return nil, fmt.Errorf("recommendation ledger is required")
	}

	e := &Engine{
		cfg:    cfg.Clone(),
		stores: stores,
		logger: logger.With().Str("component", "recommend").Logger(),
		now:    time.Now,
	}
	e.agg = NewAggregator(e.cfg, DefaultScorers(e.cfg))

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Recommend computes a ranked, explained recommendation list.
//
// An error return means the request itself was invalid. Store failures
// never surface as errors: they show up as a degraded or unavailable
// Status on an otherwise well-formed response.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	if req.UserID <= 0 {
		return nil, ErrInvalidUserID
	}
	if req.Limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if req.Limit > e.cfg.Limits.MaxLimit {
		req.Limit = e.cfg.Limits.MaxLimit
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	start := e.now()
	log := e.logger.With().
		Str("request_id", req.RequestID).
		Int64("user_id", req.UserID).
		Str("refresh", req.Refresh.String()).
		Logger()

	if req.Refresh == RefreshCached && e.cache != nil {
		if resp, ok := e.cache.Get(req.UserID, cacheKey(req.UserID, req.Limit)); ok {
			metrics.CacheHits.Inc()
			resp.Metadata.RequestID = req.RequestID
			resp.Metadata.Reused = true
			resp.Metadata.LatencyMS = e.now().Sub(start).Milliseconds()
			return resp, nil
		}
		metrics.CacheMisses.Inc()
	}

	resp := e.compute(ctx, req, start, log)

	metrics.RecommendRequests.WithLabelValues(string(resp.Status), req.Refresh.String()).Inc()
	metrics.RecommendDuration.Observe(e.now().Sub(start).Seconds())

	if e.cache != nil && resp.Status == StatusOK {
		if req.Refresh == RefreshFresh {
			e.cache.InvalidateUser(req.UserID)
		}
		e.cache.Set(req.UserID, cacheKey(req.UserID, req.Limit), resp)
	}

	log.Info().
		Str("status", string(resp.Status)).
		Int("items", len(resp.Items)).
		Int("candidates", resp.TotalCandidates).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation computed")

	return resp, nil
}

func (e *Engine) compute(ctx context.Context, req Request, start time.Time, log zerolog.Logger) *Response {
	now := start

	events, err := e.listCandidates(ctx, now)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("catalog").Inc()
		log.Error().Err(err).Msg("event catalog unreachable")
		return e.respond(req, start, nil, StatusUnavailable, 0, 0, false)
	}

	recent, err := e.recentLedger(ctx, req.UserID, now)
	if err != nil {
		// Losing the ledger read costs reuse and cool-down exclusion,
		// nothing else.
		metrics.StoreErrors.WithLabelValues("ledger").Inc()
		log.Warn().Err(err).Msg("ledger read failed, skipping reuse and cool-down")
		recent = nil
	}

	if req.Refresh == RefreshCached {
		if items, ok := e.reuse(ctx, recent, req.Limit, now); ok {
			log.Debug().Int("items", len(items)).Msg("reusing persisted batch")
			return e.respond(req, start, items, StatusOK, len(items), 0, true)
		}
	}

	profile, history, counts, degraded := e.gatherSignal(ctx, req.UserID, log)

	weights := e.cfg.Weights
	if degraded || (!profile.HasSignal() && len(history) == 0) {
		// No personal signal at all, or the stores holding it are down.
		// A profile row with nothing filled in counts as no signal.
		weights = PopularityOnly()
	}

	if req.Refresh == RefreshCached {
		events = excludeActed(events, recent, now, e.cfg.Selection.Cooldown)
	}

	feats := NewFeatures(e.cfg, profile, history, counts, now)
	scored := make([]ScoredEvent, 0, len(events))
	for _, event := range events {
		scored = append(scored, e.agg.Score(event, feats.Extract(event), weights))
	}

	metrics.RecommendCandidates.Observe(float64(len(scored)))

	Rank(scored)
	items := Diversify(scored, req.Limit, e.cfg.Ranking.MaxPerCategory)

	persisted := e.persist(ctx, req.UserID, items, now, log)

	status := StatusOK
	switch {
	case degraded:
		status = StatusDegraded
	case len(items) == 0:
		status = StatusEmpty
	}

	return e.respond(req, start, items, status, len(scored), persisted, false)
}

// listCandidates fetches active upcoming events within the store timeout.
func (e *Engine) listCandidates(ctx context.Context, now time.Time) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
	defer cancel()
	return e.stores.Catalog.ListActiveUpcoming(ctx, now, e.cfg.Selection.MaxCandidates)
}

// recentLedger fetches the user's ledger rows inside the cool-down window.
func (e *Engine) recentLedger(ctx context.Context, userID int64, now time.Time) ([]models.Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
	defer cancel()
	return e.stores.Ledger.Recent(ctx, userID, now.Add(-e.cfg.Selection.Cooldown))
}

// gatherSignal reads the profile and interaction history. Any failure
// flips the request into degraded, popularity-only mode.
func (e *Engine) gatherSignal(ctx context.Context, userID int64, log zerolog.Logger) (profile *models.UserProfile, history []models.InteractionRecord, counts map[int64]int, degraded bool) {
	if e.stores.Profiles != nil {
		pctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
		p, err := e.stores.Profiles.GetProfile(pctx, userID)
		cancel()
		if err != nil {
			metrics.StoreErrors.WithLabelValues("profiles").Inc()
			log.Warn().Err(err).Msg("profile read failed, degrading to popularity-only")
			degraded = true
		} else {
			profile = p
		}
	}

	if e.stores.Interactions != nil {
		hctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
		h, err := e.stores.Interactions.GetUserHistory(hctx, userID)
		cancel()
		if err != nil {
			metrics.StoreErrors.WithLabelValues("interactions").Inc()
			log.Warn().Err(err).Msg("history read failed, degrading to popularity-only")
			degraded = true
		} else {
			history = h
		}

		cctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
		c, err := e.stores.Interactions.GetEventCounts(cctx)
		cancel()
		if err != nil {
			metrics.StoreErrors.WithLabelValues("interactions").Inc()
			log.Warn().Err(err).Msg("event counts read failed, popularity signal lost")
		} else {
			counts = c
		}
	}

	return profile, history, counts, degraded
}

// reuse rebuilds a response from persisted ledger rows. It succeeds only
// when a full batch of non-stale, unacted rows still maps onto live
// candidate events, which makes immediate repeat requests idempotent.
func (e *Engine) reuse(ctx context.Context, recent []models.Recommendation, limit int, now time.Time) ([]ScoredEvent, bool) {
	var fresh []models.Recommendation
	for i := range recent {
		if !recent[i].Acted() {
			fresh = append(fresh, recent[i])
		}
	}
	if len(fresh) < limit {
		return nil, false
	}

	ids := make([]int64, len(fresh))
	for i, rec := range fresh {
		ids[i] = rec.EventID
	}

	gctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
	events, err := e.stores.Catalog.GetEvents(gctx, ids)
	cancel()
	if err != nil {
		return nil, false
	}

	byID := make(map[int64]models.Event, len(events))
	for _, ev := range events {
		if ev.Candidate(now) {
			byID[ev.ID] = ev
		}
	}

	items := make([]ScoredEvent, 0, limit)
	for _, rec := range fresh {
		ev, ok := byID[rec.EventID]
		if !ok {
			continue
		}
		items = append(items, ScoredEvent{
			Event:      ev,
			MatchScore: rec.MatchScore,
			Reasons:    rec.Reasons,
		})
	}
	if len(items) < limit {
		return nil, false
	}

	// Same canonical order as a fresh computation, so an immediate
	// repeat request returns an identical list.
	Rank(items)
	return items[:limit], true
}

// excludeActed drops events whose ledger row was acted upon inside the
// cool-down window.
func excludeActed(events []models.Event, recent []models.Recommendation, now time.Time, cooldown time.Duration) []models.Event {
	if len(recent) == 0 {
		return events
	}
	excluded := make(map[int64]struct{})
	for i := range recent {
		if recent[i].Acted() && now.Sub(recent[i].UpdatedAt) < cooldown {
			excluded[recent[i].EventID] = struct{}{}
		}
	}
	if len(excluded) == 0 {
		return events
	}
	// The catalog owns the input slice, so filter into a fresh one.
	kept := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if _, skip := excluded[ev.ID]; !skip {
			kept = append(kept, ev)
		}
	}
	return kept
}

// persist writes the final ranking to the ledger. Each row gets one
// retry; failures are logged and swallowed so a ledger outage never
// costs the user their ranking.
func (e *Engine) persist(ctx context.Context, userID int64, items []ScoredEvent, now time.Time, log zerolog.Logger) int {
	persisted := 0
	for _, item := range items {
		rec := models.Recommendation{
			UserID:     userID,
			EventID:    item.Event.ID,
			MatchScore: item.MatchScore,
			Reasons:    item.Reasons,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err := e.upsert(ctx, rec)
		if err != nil {
			err = e.upsert(ctx, rec)
		}
		if err != nil {
			metrics.StoreErrors.WithLabelValues("ledger").Inc()
			log.Error().Err(err).Int64("event_id", rec.EventID).Msg("ledger upsert failed")
			continue
		}
		persisted++
	}
	return persisted
}

func (e *Engine) upsert(ctx context.Context, rec models.Recommendation) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
	defer cancel()
	return e.stores.Ledger.Upsert(ctx, rec)
}

func (e *Engine) respond(req Request, start time.Time, items []ScoredEvent, status Status, candidates, persisted int, reused bool) *Response {
	if items == nil {
		items = []ScoredEvent{}
	}
	return &Response{
		Items:           items,
		Status:          status,
		TotalCandidates: candidates,
		Persisted:       persisted,
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			UserID:    req.UserID,
			Refresh:   req.Refresh.String(),
			Reused:    reused,
			LatencyMS: e.now().Sub(start).Milliseconds(),
			Timestamp: start.UTC(),
		},
	}
}

func cacheKey(userID int64, limit int) string {
	return fmt.Sprintf("rec:%d:%d", userID, limit)
}
