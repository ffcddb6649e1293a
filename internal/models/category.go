// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package models

import "strings"

// EventCategory classifies events into a closed set of categories.
// The set is closed on purpose: category is a ranking and diversification
// key, so free-form values would silently break both.
type EventCategory string

const (
	CategoryMusic      EventCategory = "music"
	CategoryArt        EventCategory = "art"
	CategoryTheatre    EventCategory = "theatre"
	CategoryCinema     EventCategory = "cinema"
	CategorySport      EventCategory = "sport"
	CategoryFood       EventCategory = "food"
	CategoryNightlife  EventCategory = "nightlife"
	CategoryConference EventCategory = "conference"
	CategoryFamily     EventCategory = "family"
	CategoryOther      EventCategory = "other"
)

// AllCategories lists every valid category in declaration order.
var AllCategories = []EventCategory{
	CategoryMusic,
	CategoryArt,
	CategoryTheatre,
	CategoryCinema,
	CategorySport,
	CategoryFood,
	CategoryNightlife,
	CategoryConference,
	CategoryFamily,
	CategoryOther,
}

// Valid reports whether the category is one of the closed set.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryMusic, CategoryArt, CategoryTheatre, CategoryCinema,
		CategorySport, CategoryFood, CategoryNightlife, CategoryConference,
		CategoryFamily, CategoryOther:
		return true
	default:
		return false
	}
}

// ParseCategory maps a raw string onto the closed category set.
// Unknown values map to CategoryOther rather than failing: catalog rows
// are created by organizer tooling outside this codebase and must never
// make scoring crash.
func ParseCategory(s string) EventCategory {
	c := EventCategory(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}
