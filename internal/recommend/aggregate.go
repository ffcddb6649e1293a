// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"math"
	"sort"

	"github.com/mlarcin/quoifaire/internal/models"
)

// Aggregator blends scorer outputs into a single 0-100 match score with
// an ordered, truncated reason list. Scorers carrying zero weight are
// skipped entirely: their sub-scores do not contribute and their reasons
// are never shown, so a popularity-only fallback cannot claim a
// personalized match.
type Aggregator struct {
	cfg     *Config
	scorers []Scorer
}

// NewAggregator builds an aggregator over the given scorer set.
func NewAggregator(cfg *Config, scorers []Scorer) *Aggregator {
	return &Aggregator{cfg: cfg, scorers: scorers}
}

// reasonCandidate pairs a reason with the sub-score that produced it,
// for ordering before truncation.
type reasonCandidate struct {
	reason models.Reason
	score  float64
}

// Score blends the scorers under the given weights and returns the
// scored event. Weights are normalized here, so callers pass raw sets.
func (a *Aggregator) Score(event models.Event, fs FeatureSet, weights Weights) ScoredEvent {
	wm := weights.Normalize().ToMap()

	var total float64
	subScores := make(map[string]float64, len(a.scorers))
	var candidates []reasonCandidate

	for _, scorer := range a.scorers {
		w := wm[scorer.Name()]
		if w == 0 {
			continue
		}
		score, reasons := scorer.Score(fs)
		subScores[scorer.Name()] = score
		total += w * score
		for _, r := range reasons {
			candidates = append(candidates, reasonCandidate{reason: r, score: score})
		}
	}

	return ScoredEvent{
		Event:      event,
		MatchScore: roundScore(total * 100),
		Reasons:    orderReasons(candidates, a.cfg.Reasons.Max),
		SubScores:  subScores,
	}
}

// orderReasons sorts by contributing sub-score descending, breaking ties
// on reason code for determinism, and keeps the top max entries.
func orderReasons(candidates []reasonCandidate, max int) []models.Reason {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].reason.Code < candidates[j].reason.Code
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	reasons := make([]models.Reason, len(candidates))
	for i, c := range candidates {
		reasons[i] = c.reason
	}
	return reasons
}

// roundScore rounds to one decimal place.
func roundScore(v float64) float64 {
	return math.Round(v*10) / 10
}
