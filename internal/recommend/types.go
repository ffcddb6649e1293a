// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/mlarcin/quoifaire/internal/models"
)

// Validation errors returned before any store access.
var (
	// ErrInvalidUserID indicates a non-positive user id.
	ErrInvalidUserID = errors.New("user id must be positive")

	// ErrInvalidLimit indicates a non-positive requested count.
	ErrInvalidLimit = errors.New("limit must be positive")
)

// RefreshMode selects between reusing the persisted ledger batch and
// recomputing from scratch.
type RefreshMode int

const (
	// RefreshCached reuses non-stale persisted recommendations when a
	// full batch exists, and honors the cool-down exclusion of acted-upon
	// rows when recomputing.
	RefreshCached RefreshMode = iota

	// RefreshFresh always recomputes and ignores the cool-down exclusion.
	RefreshFresh
)

// String returns a human-readable mode name.
func (m RefreshMode) String() string {
	switch m {
	case RefreshCached:
		return "cached"
	case RefreshFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// ParseRefreshMode maps the API-level refresh parameter onto a mode.
// Empty and unknown values default to RefreshCached.
func ParseRefreshMode(s string) RefreshMode {
	if s == "fresh" {
		return RefreshFresh
	}
	return RefreshCached
}

// Status describes the health of a recommendation response. An empty list
// is a normal, displayable state and is distinguished from the catalog
// being unreachable.
type Status string

const (
	// StatusOK means a full-fidelity personalized ranking.
	StatusOK Status = "ok"

	// StatusEmpty means the pipeline ran fine but no eligible events
	// exist right now.
	StatusEmpty Status = "empty"

	// StatusDegraded means profile or history reads failed and the
	// ranking fell back to popularity-only scoring.
	StatusDegraded Status = "degraded"

	// StatusUnavailable means the event catalog was unreachable and no
	// ranking could be computed at all.
	StatusUnavailable Status = "unavailable"
)

// FeatureSet is the comparable representation of one event/user pair.
// Every feature is normalized to [0,1]; flags carry context the scorers
// need for reason generation.
type FeatureSet struct {
	// CategoryAffinity is 1.0 for a preferred category, a saturating
	// interaction-derived value otherwise, 0 with no signal at all.
	CategoryAffinity float64 `json:"category_affinity"`

	// PriceFit is 1.0 for free or within-budget events, decaying above
	// the ceiling, and neutral (0.5) when no ceiling is stated.
	PriceFit float64 `json:"price_fit"`

	// GeoFit is 1.0 on a city match, 0.5 when either side is unknown,
	// 0 on an explicit mismatch.
	GeoFit float64 `json:"geo_fit"`

	// TemporalFit decays monotonically from 1.0 (imminent) toward 0 at
	// the lookahead horizon.
	TemporalFit float64 `json:"temporal_fit"`

	// NoveltyFit is 1.0 for never-seen events and penalizes events the
	// user viewed or clicked without saving.
	NoveltyFit float64 `json:"novelty_fit"`

	// Popularity is the log-scaled cross-user interaction volume.
	Popularity float64 `json:"popularity"`

	// Category is the event category, used to key affinity reason text.
	Category models.EventCategory `json:"-"`

	// PreferredCategory is set when the category is in the profile's
	// preferred set (as opposed to history-derived affinity).
	PreferredCategory bool `json:"-"`

	// Free is set for free events.
	Free bool `json:"-"`

	// HappeningSoon is set when the event starts within the soon window.
	HappeningSoon bool `json:"-"`
}

// ScoredEvent is one ranked, explained recommendation.
type ScoredEvent struct {
	// Event is the catalog row.
	Event models.Event `json:"event"`

	// MatchScore is the 0-100 aggregate, one decimal of precision.
	MatchScore float64 `json:"match_score"`

	// Reasons is the ordered explanation list, highest priority first.
	Reasons []models.Reason `json:"reasons"`

	// SubScores is the per-scorer breakdown, for diagnostics.
	SubScores map[string]float64 `json:"sub_scores,omitempty"`
}

// Request is one recommendation request.
type Request struct {
	// UserID is the user to recommend for.
	UserID int64 `json:"user_id"`

	// Limit is the requested count. It must be positive; callers
	// resolve their own defaults before building the request.
	Limit int `json:"limit,omitempty"`

	// Refresh selects reuse-vs-recompute behavior.
	Refresh RefreshMode `json:"refresh,omitempty"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response is the ordered, explained result of one request.
type Response struct {
	// Items is the ranked list, best match first.
	Items []ScoredEvent `json:"items"`

	// Status distinguishes healthy-empty, degraded and unavailable
	// results from full-fidelity ones.
	Status Status `json:"status"`

	// TotalCandidates is the size of the scored candidate pool.
	TotalCandidates int `json:"total_candidates"`

	// Persisted is how many ledger rows were written. It may be lower
	// than len(Items) after a persist failure; the ranking is still
	// valid.
	Persisted int `json:"persisted"`

	// Metadata carries timing and tracing information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	UserID    int64     `json:"user_id"`
	Refresh   string    `json:"refresh"`
	Reused    bool      `json:"reused,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// ProfileStore reads user profiles. Implemented by the database layer.
type ProfileStore interface {
	// GetProfile returns the profile, or (nil, nil) when the user has
	// no profile row.
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
}

// EventCatalog reads the event catalog.
type EventCatalog interface {
	// ListActiveUpcoming returns active events starting after now,
	// soonest first, capped at limit.
	ListActiveUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Event, error)

	// GetEvents returns the catalog rows for the given ids. Missing ids
	// are silently absent from the result.
	GetEvents(ctx context.Context, ids []int64) ([]models.Event, error)
}

// InteractionStore reads the append-only interaction log.
type InteractionStore interface {
	// GetUserHistory returns every interaction of one user, oldest
	// first.
	GetUserHistory(ctx context.Context, userID int64) ([]models.InteractionRecord, error)

	// GetEventCounts returns the total interaction count per event
	// across all users.
	GetEventCounts(ctx context.Context) (map[int64]int, error)
}

// RecommendationLedger persists recommendation outcomes.
type RecommendationLedger interface {
	// Upsert inserts or refreshes one (user, event) row atomically.
	// On conflict it updates score, reasons and updated_at only -
	// feedback flags already set must survive.
	Upsert(ctx context.Context, rec models.Recommendation) error

	// Recent returns the user's ledger rows updated at or after since,
	// best score first.
	Recent(ctx context.Context, userID int64, since time.Time) ([]models.Recommendation, error)
}

// ResponseCache caches whole responses keyed per request shape. The
// user id rides alongside the key so implementations can group entries
// for per-user invalidation. Implemented by the badger-backed cache
// package; optional.
type ResponseCache interface {
	Get(userID int64, key string) (*Response, bool)
	Set(userID int64, key string, resp *Response)
	InvalidateUser(userID int64)
}

// Stores bundles the engine's four read/write dependencies.
type Stores struct {
	Profiles     ProfileStore
	Catalog      EventCatalog
	Interactions InteractionStore
	Ledger       RecommendationLedger
}
