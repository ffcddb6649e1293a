// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"github.com/mlarcin/quoifaire/internal/models"
)

// Scorer names, used as weight keys and sub-score labels.
const (
	ScorerCategoryAffinity = "category_affinity"
	ScorerPriceFit         = "price_fit"
	ScorerGeoFit           = "geo_fit"
	ScorerTemporalFit      = "temporal_fit"
	ScorerNoveltyFit       = "novelty_fit"
	ScorerPopularity       = "popularity"
)

// Reason codes. Codes are stable machine identifiers; texts are the
// French strings shown to users.
const (
	ReasonCategoryMatch = "category_match"
	ReasonFreeEvent     = "free_event"
	ReasonBudgetFit     = "budget_fit"
	ReasonNearYou       = "near_you"
	ReasonHappeningSoon = "happening_soon"
	ReasonPopular       = "popular"
	ReasonNewForYou     = "new_for_you"
)

// Scorer turns one extracted feature into a normalized score and,
// when the signal is notable, a user-facing reason. Scorers are pure:
// the same feature set always yields the same score and reasons.
type Scorer interface {
	// Name returns the scorer's weight key.
	Name() string

	// Score returns the feature value in [0, 1] and any reasons the
	// feature justifies.
	Score(fs FeatureSet) (float64, []models.Reason)
}

// DefaultScorers returns the full scorer set in evaluation order.
func DefaultScorers(cfg *Config) []Scorer {
	return []Scorer{
		&CategoryAffinityScorer{threshold: cfg.Reasons.AffinityThreshold},
		&PriceFitScorer{},
		&GeoFitScorer{},
		&TemporalFitScorer{},
		&NoveltyFitScorer{},
		&PopularityScorer{threshold: cfg.Reasons.PopularityThreshold},
	}
}

// categoryReasonText maps each category to its French explanation.
var categoryReasonText = map[models.EventCategory]string{
	models.CategoryMusic:      "Correspond à vos goûts musicaux",
	models.CategoryArt:        "Correspond à votre intérêt pour l'art",
	models.CategoryTheatre:    "Correspond à votre goût pour le théâtre",
	models.CategoryCinema:     "Correspond à votre goût pour le cinéma",
	models.CategorySport:      "Correspond à votre intérêt pour le sport",
	models.CategoryFood:       "Correspond à vos envies gourmandes",
	models.CategoryNightlife:  "Correspond à vos soirées préférées",
	models.CategoryConference: "Correspond à vos centres d'intérêt",
	models.CategoryFamily:     "Idéal pour une sortie en famille",
	models.CategoryOther:      "Correspond à vos centres d'intérêt",
}

// CategoryAffinityScorer scores how well the event's category matches
// the user's stated preferences and interaction history.
type CategoryAffinityScorer struct {
	threshold float64
}

func (s *CategoryAffinityScorer) Name() string { return ScorerCategoryAffinity }

func (s *CategoryAffinityScorer) Score(fs FeatureSet) (float64, []models.Reason) {
	if fs.CategoryAffinity < s.threshold && !fs.PreferredCategory {
		return fs.CategoryAffinity, nil
	}
	text, ok := categoryReasonText[fs.Category]
	if !ok {
		text = categoryReasonText[models.CategoryOther]
	}
	return fs.CategoryAffinity, []models.Reason{{Code: ReasonCategoryMatch, Text: text}}
}

// PriceFitScorer scores affordability against the user's budget.
type PriceFitScorer struct{}

func (s *PriceFitScorer) Name() string { return ScorerPriceFit }

func (s *PriceFitScorer) Score(fs FeatureSet) (float64, []models.Reason) {
	if fs.Free {
		return fs.PriceFit, []models.Reason{{Code: ReasonFreeEvent, Text: "Événement gratuit"}}
	}
	if fs.PriceFit >= 1.0 {
		return fs.PriceFit, []models.Reason{{Code: ReasonBudgetFit, Text: "Dans votre budget"}}
	}
	return fs.PriceFit, nil
}

// GeoFitScorer scores proximity between the event and the user's city.
type GeoFitScorer struct{}

func (s *GeoFitScorer) Name() string { return ScorerGeoFit }

func (s *GeoFitScorer) Score(fs FeatureSet) (float64, []models.Reason) {
	if fs.GeoFit >= 1.0 {
		return fs.GeoFit, []models.Reason{{Code: ReasonNearYou, Text: "Près de chez vous"}}
	}
	return fs.GeoFit, nil
}

// TemporalFitScorer favors events starting soon within the lookahead
// horizon.
type TemporalFitScorer struct{}

func (s *TemporalFitScorer) Name() string { return ScorerTemporalFit }

func (s *TemporalFitScorer) Score(fs FeatureSet) (float64, []models.Reason) {
	if fs.HappeningSoon {
		return fs.TemporalFit, []models.Reason{{Code: ReasonHappeningSoon, Text: "Bientôt"}}
	}
	return fs.TemporalFit, nil
}

// NoveltyFitScorer favors events the user has not interacted with.
type NoveltyFitScorer struct{}

func (s *NoveltyFitScorer) Name() string { return ScorerNoveltyFit }

func (s *NoveltyFitScorer) Score(fs FeatureSet) (float64, []models.Reason) {
	if fs.NoveltyFit >= 1.0 {
		return fs.NoveltyFit, []models.Reason{{Code: ReasonNewForYou, Text: "Nouveau pour vous"}}
	}
	return fs.NoveltyFit, nil
}

// PopularityScorer scores catalog-wide interaction volume.
type PopularityScorer struct {
	threshold float64
}

func (s *PopularityScorer) Name() string { return ScorerPopularity }

func (s *PopularityScorer) Score(fs FeatureSet) (float64, []models.Reason) {
	if fs.Popularity >= s.threshold && fs.Popularity > 0 {
		return fs.Popularity, []models.Reason{{Code: ReasonPopular, Text: "Très populaire en ce moment"}}
	}
	return fs.Popularity, nil
}
