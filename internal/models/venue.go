// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package models

import "time"

// BadgeTier is the venue quality tier computed by the badge evaluator,
// a separate rubric-based subsystem. This codebase only reads the tier for
// display; it never computes or updates it.
type BadgeTier string

const (
	BadgeNone     BadgeTier = ""
	BadgeBronze   BadgeTier = "bronze"
	BadgeSilver   BadgeTier = "silver"
	BadgeGold     BadgeTier = "gold"
	BadgePlatinum BadgeTier = "platinum"
)

// Venue is a venue record as produced by organizer flows and the external
// badge evaluator.
type Venue struct {
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Badge     BadgeTier `json:"badge,omitempty"`
	BadgedAt  time.Time `json:"badged_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
