// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"fmt"
	"time"
)

// UnsavePolicy decides how a save followed by an unsave affects the
// novelty feature.
type UnsavePolicy string

const (
	// UnsaveZero erases the novelty credit entirely: an unsaved event
	// scores 0 on novelty, as if the user had rejected it outright.
	UnsaveZero UnsavePolicy = "zero"

	// UnsavePartial keeps a reduced credit, scaled by UnsavePenalty.
	UnsavePartial UnsavePolicy = "partial"
)

// Config contains all tunables for the matching engine. It is an explicit,
// immutable value passed into every scoring call - never a package global -
// so tests can substitute alternate weight sets deterministically.
type Config struct {
	// Weights defines the relative contribution of each feature.
	// Normalized at use, so they don't need to sum to 1.0.
	Weights Weights `json:"weights" koanf:"weights"`

	// Affinity contains category-affinity parameters.
	Affinity AffinityConfig `json:"affinity" koanf:"affinity"`

	// Temporal contains temporal-fit parameters.
	Temporal TemporalConfig `json:"temporal" koanf:"temporal"`

	// Novelty contains novelty-fit parameters.
	Novelty NoveltyConfig `json:"novelty" koanf:"novelty"`

	// Reasons contains reason-emission parameters.
	Reasons ReasonConfig `json:"reasons" koanf:"reasons"`

	// Selection contains candidate-selection parameters.
	Selection SelectionConfig `json:"selection" koanf:"selection"`

	// Ranking contains ranking and diversification parameters.
	Ranking RankingConfig `json:"ranking" koanf:"ranking"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// Weights defines the relative contribution of each feature to the match
// score. Personalization (category affinity, price fit) dominates;
// popularity is a cold-start fallback and tie-break signal only.
type Weights struct {
	CategoryAffinity float64 `json:"category_affinity" koanf:"category_affinity"`
	PriceFit         float64 `json:"price_fit" koanf:"price_fit"`
	GeoFit           float64 `json:"geo_fit" koanf:"geo_fit"`
	TemporalFit      float64 `json:"temporal_fit" koanf:"temporal_fit"`
	NoveltyFit       float64 `json:"novelty_fit" koanf:"novelty_fit"`
	Popularity       float64 `json:"popularity" koanf:"popularity"`
}

// PopularityOnly returns the degraded weight set used when no profile
// signal is available at all.
func PopularityOnly() Weights {
	return Weights{Popularity: 1.0}
}

// Sum returns the raw weight sum.
func (w Weights) Sum() float64 {
	return w.CategoryAffinity + w.PriceFit + w.GeoFit +
		w.TemporalFit + w.NoveltyFit + w.Popularity
}

// Normalize returns a copy with weights scaled to sum to 1.0.
// All-zero weights normalize to the default set.
func (w Weights) Normalize() Weights {
	sum := w.Sum()
	if sum == 0 {
		return DefaultConfig().Weights.Normalize()
	}
	return Weights{
		CategoryAffinity: w.CategoryAffinity / sum,
		PriceFit:         w.PriceFit / sum,
		GeoFit:           w.GeoFit / sum,
		TemporalFit:      w.TemporalFit / sum,
		NoveltyFit:       w.NoveltyFit / sum,
		Popularity:       w.Popularity / sum,
	}
}

// ToMap returns the weights keyed by scorer name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		ScorerCategoryAffinity: w.CategoryAffinity,
		ScorerPriceFit:         w.PriceFit,
		ScorerGeoFit:           w.GeoFit,
		ScorerTemporalFit:      w.TemporalFit,
		ScorerNoveltyFit:       w.NoveltyFit,
		ScorerPopularity:       w.Popularity,
	}
}

// AffinityConfig contains category-affinity parameters.
type AffinityConfig struct {
	// SaturationCount is the number of weighted interactions in a
	// category at which history-derived affinity reaches 1.0.
	// Default: 5.
	SaturationCount float64 `json:"saturation_count" koanf:"saturation_count"`
}

// TemporalConfig contains temporal-fit parameters.
type TemporalConfig struct {
	// LookaheadDays is the horizon within which temporal fit decays
	// from 1.0 to 0. Events beyond it score 0. Default: 30.
	LookaheadDays int `json:"lookahead_days" koanf:"lookahead_days"`

	// SoonWindow marks events as "happening soon" for reason
	// generation. Default: 48h.
	SoonWindow time.Duration `json:"soon_window" koanf:"soon_window"`
}

// NoveltyConfig contains novelty-fit parameters.
type NoveltyConfig struct {
	// SeenPenalty is the novelty value for events the user viewed or
	// clicked without saving. Default: 0.35.
	SeenPenalty float64 `json:"seen_penalty" koanf:"seen_penalty"`

	// SavedValue is the novelty value for events the user currently has
	// saved. Default: 0.55.
	SavedValue float64 `json:"saved_value" koanf:"saved_value"`

	// UnsavePolicy decides how save-then-unsave is treated.
	// Default: partial.
	UnsavePolicy UnsavePolicy `json:"unsave_policy" koanf:"unsave_policy"`

	// UnsavePenalty scales SavedValue under UnsavePartial. Default: 0.5.
	UnsavePenalty float64 `json:"unsave_penalty" koanf:"unsave_penalty"`
}

// ReasonConfig contains reason-emission parameters. A reason is only
// emitted when its sub-score crosses the notability threshold; mediocre
// signals stay silent to avoid noisy explanations.
type ReasonConfig struct {
	// Max is the number of reasons kept per recommendation. Default: 3.
	Max int `json:"max" koanf:"max"`

	// AffinityThreshold gates the category-match reason. Default: 0.7.
	AffinityThreshold float64 `json:"affinity_threshold" koanf:"affinity_threshold"`

	// PopularityThreshold gates the popular reason. Default: 0.8.
	PopularityThreshold float64 `json:"popularity_threshold" koanf:"popularity_threshold"`
}

// SelectionConfig contains candidate-selection parameters.
type SelectionConfig struct {
	// Cooldown is how long an acted-upon recommendation keeps its event
	// out of the candidate pool, and how long a persisted batch stays
	// reusable. Default: 24h.
	Cooldown time.Duration `json:"cooldown" koanf:"cooldown"`

	// MaxCandidates caps the scored pool. Default: 500.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`
}

// RankingConfig contains ranking and diversification parameters.
type RankingConfig struct {
	// MaxPerCategory is the advisory per-category cap in the returned
	// head of the list. Diversity never shrinks the result below the
	// requested count when enough candidates exist. Default: 2.
	MaxPerCategory int `json:"max_per_category" koanf:"max_per_category"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is what callers fill in when no count was asked
	// for; the engine itself rejects non-positive limits. Default: 10.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps the requested count. Default: 50.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// StoreTimeout bounds each store round-trip. Expiry is treated as
	// the store being unavailable. Default: 300ms.
	StoreTimeout time.Duration `json:"store_timeout" koanf:"store_timeout"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: Weights{
			CategoryAffinity: 0.30,
			PriceFit:         0.25,
			GeoFit:           0.15,
			TemporalFit:      0.15,
			NoveltyFit:       0.10,
			Popularity:       0.05,
		},
		Affinity: AffinityConfig{
			SaturationCount: 5,
		},
		Temporal: TemporalConfig{
			LookaheadDays: 30,
			SoonWindow:    48 * time.Hour,
		},
		Novelty: NoveltyConfig{
			SeenPenalty:   0.35,
			SavedValue:    0.55,
			UnsavePolicy:  UnsavePartial,
			UnsavePenalty: 0.5,
		},
		Reasons: ReasonConfig{
			Max:                 3,
			AffinityThreshold:   0.7,
			PopularityThreshold: 0.8,
		},
		Selection: SelectionConfig{
			Cooldown:      24 * time.Hour,
			MaxCandidates: 500,
		},
		Ranking: RankingConfig{
			MaxPerCategory: 2,
		},
		Limits: LimitsConfig{
			DefaultLimit: 10,
			MaxLimit:     50,
			StoreTimeout: 300 * time.Millisecond,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Weights.Sum() <= 0 {
		return fmt.Errorf("weights must have a positive sum, got %f", c.Weights.Sum())
	}
	for name, v := range c.Weights.ToMap() {
		if v < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %f", name, v)
		}
	}

	if c.Affinity.SaturationCount <= 0 {
		return fmt.Errorf("affinity.saturation_count must be positive, got %f", c.Affinity.SaturationCount)
	}

	if c.Temporal.LookaheadDays < 1 {
		return fmt.Errorf("temporal.lookahead_days must be positive, got %d", c.Temporal.LookaheadDays)
	}
	if c.Temporal.SoonWindow <= 0 {
		return fmt.Errorf("temporal.soon_window must be positive, got %v", c.Temporal.SoonWindow)
	}

	if c.Novelty.SeenPenalty < 0 || c.Novelty.SeenPenalty > 1 {
		return fmt.Errorf("novelty.seen_penalty must be in [0, 1], got %f", c.Novelty.SeenPenalty)
	}
	if c.Novelty.SavedValue < 0 || c.Novelty.SavedValue > 1 {
		return fmt.Errorf("novelty.saved_value must be in [0, 1], got %f", c.Novelty.SavedValue)
	}
	if c.Novelty.UnsavePenalty < 0 || c.Novelty.UnsavePenalty > 1 {
		return fmt.Errorf("novelty.unsave_penalty must be in [0, 1], got %f", c.Novelty.UnsavePenalty)
	}
	if c.Novelty.UnsavePolicy != UnsaveZero && c.Novelty.UnsavePolicy != UnsavePartial {
		return fmt.Errorf("novelty.unsave_policy must be %q or %q, got %q", UnsaveZero, UnsavePartial, c.Novelty.UnsavePolicy)
	}

	if c.Reasons.Max < 1 {
		return fmt.Errorf("reasons.max must be positive, got %d", c.Reasons.Max)
	}
	if c.Reasons.AffinityThreshold < 0 || c.Reasons.AffinityThreshold > 1 {
		return fmt.Errorf("reasons.affinity_threshold must be in [0, 1], got %f", c.Reasons.AffinityThreshold)
	}
	if c.Reasons.PopularityThreshold < 0 || c.Reasons.PopularityThreshold > 1 {
		return fmt.Errorf("reasons.popularity_threshold must be in [0, 1], got %f", c.Reasons.PopularityThreshold)
	}

	if c.Selection.Cooldown <= 0 {
		return fmt.Errorf("selection.cooldown must be positive, got %v", c.Selection.Cooldown)
	}
	if c.Selection.MaxCandidates < 1 {
		return fmt.Errorf("selection.max_candidates must be positive, got %d", c.Selection.MaxCandidates)
	}

	if c.Ranking.MaxPerCategory < 1 {
		return fmt.Errorf("ranking.max_per_category must be positive, got %d", c.Ranking.MaxPerCategory)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.StoreTimeout <= 0 {
		return fmt.Errorf("limits.store_timeout must be positive, got %v", c.Limits.StoreTimeout)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
// All nested structs contain only value types, so a field copy suffices.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
