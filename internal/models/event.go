// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package models

import "time"

// Event is one row of the event catalog. Events are created and edited by
// organizer flows outside this codebase; the matching engine treats them as
// read-only.
type Event struct {
	// ID is the catalog identifier.
	ID int64 `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Category is one of the closed category set.
	Category EventCategory `json:"category"`

	// VenueName is the free-text venue name.
	VenueName string `json:"venue_name"`

	// City is the free-text city the event takes place in.
	City string `json:"city"`

	// Latitude and Longitude are optional geocoordinates.
	// Both are zero when the organizer did not geocode the venue.
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// StartDate and EndDate bound the event. A candidate event always has
	// StartDate in the future.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Price is the entry price in euros. Never negative.
	Price float64 `json:"price"`

	// IsFree marks free events. A free event may still carry a non-zero
	// Price for optional extras, so the flag is authoritative.
	IsFree bool `json:"is_free"`

	// IsActive marks events visible in the catalog. Inactive events are
	// never candidates.
	IsActive bool `json:"is_active"`

	// IsFeatured marks organizer-promoted events.
	IsFeatured bool `json:"is_featured"`
}

// Upcoming reports whether the event starts strictly after now.
func (e *Event) Upcoming(now time.Time) bool {
	return e.StartDate.After(now)
}

// Candidate reports whether the event is eligible for scoring at all:
// active and starting in the future.
func (e *Event) Candidate(now time.Time) bool {
	return e.IsActive && e.Upcoming(now)
}
