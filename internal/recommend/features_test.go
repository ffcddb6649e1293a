// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/mlarcin/quoifaire/internal/models"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCategoryAffinity(t *testing.T) {
	cfg := DefaultConfig()
	profile := &models.UserProfile{
		PreferredCategories: []models.EventCategory{models.CategoryMusic},
	}
	// Two saves and one view in theatre: 2*2.0 + 0.5 = 4.5 weighted.
	history := []models.InteractionRecord{
		{EventID: 1, Kind: models.InteractionSave, Category: models.CategoryTheatre},
		{EventID: 2, Kind: models.InteractionSave, Category: models.CategoryTheatre},
		{EventID: 3, Kind: models.InteractionView, Category: models.CategoryTheatre},
	}
	f := NewFeatures(cfg, profile, history, nil, testNow)

	tests := []struct {
		name          string
		category      models.EventCategory
		wantScore     float64
		wantPreferred bool
	}{
		{"preferred category scores full", models.CategoryMusic, 1.0, true},
		{"history-derived affinity", models.CategoryTheatre, 4.5 / 5.0, false},
		{"no signal scores zero", models.CategorySport, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := f.Extract(models.Event{ID: 100, Category: tt.category, StartDate: testNow.Add(24 * time.Hour)})
			if !almostEqual(fs.CategoryAffinity, tt.wantScore) {
				t.Errorf("CategoryAffinity = %v, want %v", fs.CategoryAffinity, tt.wantScore)
			}
			if fs.PreferredCategory != tt.wantPreferred {
				t.Errorf("PreferredCategory = %v, want %v", fs.PreferredCategory, tt.wantPreferred)
			}
		})
	}
}

func TestCategoryAffinitySaturates(t *testing.T) {
	cfg := DefaultConfig()
	history := make([]models.InteractionRecord, 0, 10)
	for i := range 10 {
		history = append(history, models.InteractionRecord{
			EventID: int64(i), Kind: models.InteractionSave, Category: models.CategoryFood,
		})
	}
	f := NewFeatures(cfg, nil, history, nil, testNow)

	fs := f.Extract(models.Event{Category: models.CategoryFood, StartDate: testNow.Add(time.Hour)})
	if fs.CategoryAffinity != 1.0 {
		t.Errorf("CategoryAffinity = %v, want saturation at 1.0", fs.CategoryAffinity)
	}
}

func TestPriceFit(t *testing.T) {
	cfg := DefaultConfig()
	budget50 := &models.UserProfile{BudgetCeiling: 50}

	tests := []struct {
		name    string
		profile *models.UserProfile
		event   models.Event
		want    float64
	}{
		{"free event", budget50, models.Event{IsFree: true, Price: 80}, 1.0},
		{"zero price counts as free", budget50, models.Event{Price: 0}, 1.0},
		{"within budget", budget50, models.Event{Price: 50}, 1.0},
		{"fifty percent over budget", budget50, models.Event{Price: 75}, 0.5},
		{"double the budget", budget50, models.Event{Price: 100}, 0},
		{"far beyond clamps at zero", budget50, models.Event{Price: 500}, 0},
		{"no budget stays neutral", nil, models.Event{Price: 30}, neutralFit},
		{"no budget but free", nil, models.Event{IsFree: true}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.event.StartDate = testNow.Add(time.Hour)
			f := NewFeatures(cfg, tt.profile, nil, nil, testNow)
			fs := f.Extract(tt.event)
			if !almostEqual(fs.PriceFit, tt.want) {
				t.Errorf("PriceFit = %v, want %v", fs.PriceFit, tt.want)
			}
		})
	}
}

func TestGeoFit(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name        string
		profileCity string
		eventCity   string
		want        float64
	}{
		{"same city", "Paris", "Paris", 1.0},
		{"case insensitive match", "paris", "PARIS", 1.0},
		{"different city", "Paris", "Lyon", 0},
		{"unknown profile city", "", "Paris", neutralFit},
		{"unknown event city", "Paris", "", neutralFit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var profile *models.UserProfile
			if tt.profileCity != "" {
				profile = &models.UserProfile{City: tt.profileCity}
			}
			f := NewFeatures(cfg, profile, nil, nil, testNow)
			fs := f.Extract(models.Event{City: tt.eventCity, StartDate: testNow.Add(time.Hour)})
			if !almostEqual(fs.GeoFit, tt.want) {
				t.Errorf("GeoFit = %v, want %v", fs.GeoFit, tt.want)
			}
		})
	}
}

func TestTemporalFit(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFeatures(cfg, nil, nil, nil, testNow)

	tests := []struct {
		name     string
		start    time.Time
		want     float64
		wantSoon bool
	}{
		{"tomorrow", testNow.Add(24 * time.Hour), 1.0 - 1.0/30.0, true},
		{"in a week", testNow.Add(7 * 24 * time.Hour), 1.0 - 7.0/30.0, false},
		{"at the horizon", testNow.Add(30 * 24 * time.Hour), 0, false},
		{"beyond the horizon", testNow.Add(60 * 24 * time.Hour), 0, false},
		{"already started", testNow.Add(-time.Hour), 0, false},
		{"within soon window", testNow.Add(36 * time.Hour), 1.0 - 1.5/30.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := f.Extract(models.Event{StartDate: tt.start})
			if !almostEqual(fs.TemporalFit, tt.want) {
				t.Errorf("TemporalFit = %v, want %v", fs.TemporalFit, tt.want)
			}
			if fs.HappeningSoon != tt.wantSoon {
				t.Errorf("HappeningSoon = %v, want %v", fs.HappeningSoon, tt.wantSoon)
			}
		})
	}
}

func TestNoveltyFit(t *testing.T) {
	history := []models.InteractionRecord{
		{EventID: 1, Kind: models.InteractionView},
		{EventID: 2, Kind: models.InteractionSave},
		{EventID: 3, Kind: models.InteractionSave},
		{EventID: 3, Kind: models.InteractionUnsave},
	}

	tests := []struct {
		name    string
		policy  UnsavePolicy
		eventID int64
		want    func(cfg *Config) float64
	}{
		{"never seen", UnsavePartial, 99, func(*Config) float64 { return 1.0 }},
		{"viewed without saving", UnsavePartial, 1, func(cfg *Config) float64 { return cfg.Novelty.SeenPenalty }},
		{"currently saved", UnsavePartial, 2, func(cfg *Config) float64 { return cfg.Novelty.SavedValue }},
		{"unsaved partial policy", UnsavePartial, 3, func(cfg *Config) float64 { return cfg.Novelty.SavedValue * cfg.Novelty.UnsavePenalty }},
		{"unsaved zero policy", UnsaveZero, 3, func(*Config) float64 { return 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Novelty.UnsavePolicy = tt.policy
			f := NewFeatures(cfg, nil, history, nil, testNow)
			fs := f.Extract(models.Event{ID: tt.eventID, StartDate: testNow.Add(time.Hour)})
			if want := tt.want(cfg); !almostEqual(fs.NoveltyFit, want) {
				t.Errorf("NoveltyFit = %v, want %v", fs.NoveltyFit, want)
			}
		})
	}
}

func TestNoveltyReSaveAfterUnsave(t *testing.T) {
	// Save, unsave, save again: latest state wins.
	history := []models.InteractionRecord{
		{EventID: 1, Kind: models.InteractionSave},
		{EventID: 1, Kind: models.InteractionUnsave},
		{EventID: 1, Kind: models.InteractionSave},
	}
	cfg := DefaultConfig()
	f := NewFeatures(cfg, nil, history, nil, testNow)
	fs := f.Extract(models.Event{ID: 1, StartDate: testNow.Add(time.Hour)})
	if !almostEqual(fs.NoveltyFit, cfg.Novelty.SavedValue) {
		t.Errorf("NoveltyFit = %v, want saved value %v", fs.NoveltyFit, cfg.Novelty.SavedValue)
	}
}

func TestPopularity(t *testing.T) {
	cfg := DefaultConfig()
	counts := map[int64]int{1: 100, 2: 10, 3: 0}
	f := NewFeatures(cfg, nil, nil, counts, testNow)

	top := f.Extract(models.Event{ID: 1, StartDate: testNow.Add(time.Hour)})
	mid := f.Extract(models.Event{ID: 2, StartDate: testNow.Add(time.Hour)})
	zero := f.Extract(models.Event{ID: 3, StartDate: testNow.Add(time.Hour)})

	if top.Popularity != 1.0 {
		t.Errorf("top Popularity = %v, want 1.0", top.Popularity)
	}
	if mid.Popularity <= 0 || mid.Popularity >= 1 {
		t.Errorf("mid Popularity = %v, want strictly between 0 and 1", mid.Popularity)
	}
	// Log scaling keeps a 10x count gap well above a 10x score gap.
	if mid.Popularity < 0.3 {
		t.Errorf("mid Popularity = %v, log scaling should compress the gap", mid.Popularity)
	}
	if zero.Popularity != 0 {
		t.Errorf("zero Popularity = %v, want 0", zero.Popularity)
	}
}

func TestPopularityEmptyCatalog(t *testing.T) {
	f := NewFeatures(DefaultConfig(), nil, nil, nil, testNow)
	fs := f.Extract(models.Event{ID: 1, StartDate: testNow.Add(time.Hour)})
	if fs.Popularity != 0 {
		t.Errorf("Popularity = %v, want 0 with no interaction data", fs.Popularity)
	}
}

func TestInteracted(t *testing.T) {
	history := []models.InteractionRecord{{EventID: 7, Kind: models.InteractionClick}}
	f := NewFeatures(DefaultConfig(), nil, history, nil, testNow)
	if !f.Interacted(7) {
		t.Error("Interacted(7) = false, want true")
	}
	if f.Interacted(8) {
		t.Error("Interacted(8) = true, want false")
	}
}
