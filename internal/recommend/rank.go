// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package recommend

import (
	"sort"

	"github.com/mlarcin/quoifaire/internal/models"
)

// Rank sorts scored events into the canonical order: match score
// descending, then start date ascending, then event ID ascending. The
// final two keys make equal-score orderings deterministic across runs.
func Rank(items []ScoredEvent) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].MatchScore != items[j].MatchScore {
			return items[i].MatchScore > items[j].MatchScore
		}
		if !items[i].Event.StartDate.Equal(items[j].Event.StartDate) {
			return items[i].Event.StartDate.Before(items[j].Event.StartDate)
		}
		return items[i].Event.ID < items[j].Event.ID
	})
}

// Diversify takes a ranked list and returns the top limit entries with
// at most maxPerCategory events per category. The cap is advisory:
// entries displaced by it queue up in rank order and backfill the tail,
// so the result is never shorter than min(limit, len(items)).
func Diversify(items []ScoredEvent, limit, maxPerCategory int) []ScoredEvent {
	if limit <= 0 || len(items) == 0 {
		return nil
	}
	if limit > len(items) {
		limit = len(items)
	}

	result := make([]ScoredEvent, 0, limit)
	perCategory := make(map[models.EventCategory]int)
	var deferred []ScoredEvent

	for _, item := range items {
		if len(result) == limit {
			break
		}
		if perCategory[item.Event.Category] >= maxPerCategory {
			deferred = append(deferred, item)
			continue
		}
		perCategory[item.Event.Category]++
		result = append(result, item)
	}

	// Backfill from the deferred queue, best ranked first, relaxing
	// the cap rather than returning a short list.
	for _, item := range deferred {
		if len(result) == limit {
			break
		}
		result = append(result, item)
	}

	return result
}
