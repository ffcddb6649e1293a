// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"math"
	"strings"
	"time"

	"github.com/mlarcin/quoifaire/internal/models"
)

// Interaction weights for history-derived category affinity. A save
// counts more than a click, a click more than a view.
const (
	weightView  = 0.5
	weightClick = 1.0
	weightSave  = 2.0
	weightShare = 2.0
	weightRate  = 1.5

	// neutralFit is the feature value when a signal is unknown on
	// either side (no budget stated, missing city).
	neutralFit = 0.5
)

// eventHistory is the per-event digest of a user's interaction history.
type eventHistory struct {
	seen    bool
	saved   bool
	unsaved bool
}

// Features is the per-request extraction context. It digests the profile
// and interaction history once, then derives a FeatureSet per candidate
// without touching any store. Build it with NewFeatures; the zero value
// behaves as an empty history with no profile.
type Features struct {
	cfg     *Config
	profile *models.UserProfile
	now     time.Time

	// categoryWeight is the summed interaction weight per category.
	categoryWeight map[models.EventCategory]float64

	// perEvent tracks what the user already did with each event.
	perEvent map[int64]eventHistory

	// maxPopularity is the highest interaction count across the catalog,
	// used to normalize popularity via log scaling.
	maxPopularity float64

	// counts is the raw interaction count per event.
	counts map[int64]int
}

// NewFeatures digests a profile, interaction history, and catalog-wide
// interaction counts into an extraction context. profile may be nil.
func NewFeatures(cfg *Config, profile *models.UserProfile, history []models.InteractionRecord, counts map[int64]int, now time.Time) *Features {
	f := &Features{
		cfg:            cfg,
		profile:        profile,
		now:            now,
		categoryWeight: make(map[models.EventCategory]float64),
		perEvent:       make(map[int64]eventHistory, len(history)),
		counts:         counts,
	}

	// History arrives ordered oldest first, so the last save/unsave
	// for an event wins.
	for _, rec := range history {
		f.categoryWeight[rec.Category] += interactionWeight(rec)

		eh := f.perEvent[rec.EventID]
		eh.seen = true
		switch rec.Kind {
		case models.InteractionSave:
			eh.saved = true
			eh.unsaved = false
		case models.InteractionUnsave:
			eh.saved = false
			eh.unsaved = true
		}
		f.perEvent[rec.EventID] = eh
	}

	for _, n := range counts {
		if v := float64(n); v > f.maxPopularity {
			f.maxPopularity = v
		}
	}

	return f
}

func interactionWeight(rec models.InteractionRecord) float64 {
	switch rec.Kind {
	case models.InteractionView:
		return weightView
	case models.InteractionClick:
		return weightClick
	case models.InteractionSave:
		return weightSave
	case models.InteractionShare:
		return weightShare
	case models.InteractionRate:
		if rec.Rating >= 4 {
			return weightRate
		}
		return 0
	case models.InteractionUnsave:
		return 0
	default:
		return 0
	}
}

// Extract derives the feature set for a single candidate event.
// All features land in [0, 1].
func (f *Features) Extract(event models.Event) FeatureSet {
	fs := FeatureSet{
		Category: event.Category,
		Free:     event.IsFree || event.Price == 0,
	}

	fs.CategoryAffinity, fs.PreferredCategory = f.categoryAffinity(event)
	fs.PriceFit = f.priceFit(event)
	fs.GeoFit = f.geoFit(event)
	fs.TemporalFit, fs.HappeningSoon = f.temporalFit(event)
	fs.NoveltyFit = f.noveltyFit(event)
	fs.Popularity = f.popularity(event)

	return fs
}

// categoryAffinity returns 1.0 for explicitly preferred categories.
// Otherwise it derives affinity from weighted interaction counts,
// saturating at the configured count so a handful of saves in a
// category reads as full interest.
func (f *Features) categoryAffinity(event models.Event) (score float64, preferred bool) {
	if f.profile.Prefers(event.Category) {
		return 1.0, true
	}
	w := f.categoryWeight[event.Category]
	score = w / f.cfg.Affinity.SaturationCount
	if score > 1.0 {
		score = 1.0
	}
	return score, false
}

// priceFit scores 1.0 for free events and events within budget, decays
// linearly above budget, and stays neutral when no budget is stated.
func (f *Features) priceFit(event models.Event) float64 {
	if event.IsFree || event.Price == 0 {
		return 1.0
	}
	if f.profile == nil || !f.profile.HasBudget() {
		return neutralFit
	}
	budget := f.profile.BudgetCeiling
	if event.Price <= budget {
		return 1.0
	}
	fit := 1.0 - (event.Price-budget)/budget
	if fit < 0 {
		return 0
	}
	return fit
}

// geoFit scores 1.0 on a city match, 0 on a mismatch, and neutral when
// either side is unknown. Comparison is case-insensitive.
func (f *Features) geoFit(event models.Event) float64 {
	if f.profile == nil || f.profile.City == "" || event.City == "" {
		return neutralFit
	}
	if strings.EqualFold(f.profile.City, event.City) {
		return 1.0
	}
	return 0
}

// temporalFit decays linearly over the lookahead horizon. Events
// starting within the soon window are flagged for reason generation.
func (f *Features) temporalFit(event models.Event) (score float64, soon bool) {
	until := event.StartDate.Sub(f.now)
	if until < 0 {
		return 0, false
	}
	soon = until <= f.cfg.Temporal.SoonWindow
	horizon := time.Duration(f.cfg.Temporal.LookaheadDays) * 24 * time.Hour
	if until >= horizon {
		return 0, soon
	}
	return 1.0 - float64(until)/float64(horizon), soon
}

// noveltyFit rewards events the user has not touched. Saved events keep
// a reduced value so a saved item can resurface without dominating, and
// save-then-unsave is penalized per the configured policy.
func (f *Features) noveltyFit(event models.Event) float64 {
	eh, ok := f.perEvent[event.ID]
	if !ok {
		return 1.0
	}
	switch {
	case eh.saved:
		return f.cfg.Novelty.SavedValue
	case eh.unsaved:
		if f.cfg.Novelty.UnsavePolicy == UnsaveZero {
			return 0
		}
		return f.cfg.Novelty.SavedValue * f.cfg.Novelty.UnsavePenalty
	default:
		return f.cfg.Novelty.SeenPenalty
	}
}

// popularity is log-scaled so a runaway hit does not flatten everything
// else to zero.
func (f *Features) popularity(event models.Event) float64 {
	if f.maxPopularity == 0 {
		return 0
	}
	n := float64(f.counts[event.ID])
	return math.Log1p(n) / math.Log1p(f.maxPopularity)
}

// Interacted reports whether the user has any recorded interaction with
// the event. The new-discovery reason keys off this.
func (f *Features) Interacted(eventID int64) bool {
	_, ok := f.perEvent[eventID]
	return ok
}
