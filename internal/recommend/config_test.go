// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"math"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestWeightsNormalize(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
	}{
		{"defaults", DefaultConfig().Weights},
		{"popularity only", PopularityOnly()},
		{"unnormalized", Weights{CategoryAffinity: 3, PriceFit: 2, Popularity: 5}},
		{"all zero falls back to defaults", Weights{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := tt.weights.Normalize().Sum()
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("Normalize().Sum() = %v, want 1.0", sum)
			}
		})
	}
}

func TestWeightsToMap(t *testing.T) {
	m := DefaultConfig().Weights.ToMap()
	want := []string{
		ScorerCategoryAffinity, ScorerPriceFit, ScorerGeoFit,
		ScorerTemporalFit, ScorerNoveltyFit, ScorerPopularity,
	}
	if len(m) != len(want) {
		t.Fatalf("ToMap() has %d entries, want %d", len(m), len(want))
	}
	for _, name := range want {
		if _, ok := m[name]; !ok {
			t.Errorf("ToMap() missing key %q", name)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"negative weight", func(c *Config) { c.Weights.GeoFit = -0.1 }, true},
		{"zero weight sum", func(c *Config) { c.Weights = Weights{} }, true},
		{"zero saturation", func(c *Config) { c.Affinity.SaturationCount = 0 }, true},
		{"zero lookahead", func(c *Config) { c.Temporal.LookaheadDays = 0 }, true},
		{"negative soon window", func(c *Config) { c.Temporal.SoonWindow = -time.Hour }, true},
		{"seen penalty above one", func(c *Config) { c.Novelty.SeenPenalty = 1.5 }, true},
		{"unknown unsave policy", func(c *Config) { c.Novelty.UnsavePolicy = "forget" }, true},
		{"zero max reasons", func(c *Config) { c.Reasons.Max = 0 }, true},
		{"affinity threshold above one", func(c *Config) { c.Reasons.AffinityThreshold = 1.1 }, true},
		{"zero cooldown", func(c *Config) { c.Selection.Cooldown = 0 }, true},
		{"zero max candidates", func(c *Config) { c.Selection.MaxCandidates = 0 }, true},
		{"zero max per category", func(c *Config) { c.Ranking.MaxPerCategory = 0 }, true},
		{"max limit below default", func(c *Config) { c.Limits.MaxLimit = 5 }, true},
		{"zero store timeout", func(c *Config) { c.Limits.StoreTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.Popularity = 0.9
	clone.Limits.DefaultLimit = 99

	if cfg.Weights.Popularity == 0.9 {
		t.Error("mutating clone weights changed the original")
	}
	if cfg.Limits.DefaultLimit == 99 {
		t.Error("mutating clone limits changed the original")
	}
}
