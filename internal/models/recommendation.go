// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package models

import "time"

// Reason is one human-readable justification attached to a recommendation.
// The Code is a stable machine identifier so downstream UIs can localize or
// restyle without re-parsing Text; Text is the French rendering shown by
// default. Insertion order within a recommendation is explanatory priority
// and is never reordered after write.
type Reason struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// Recommendation is one row of the recommendation ledger: the persisted
// outcome of scoring one event for one user, plus the feedback flags the UI
// sets afterwards. Exactly one live row exists per (user, event) pair.
//
// A repeat computation overwrites MatchScore, Reasons and UpdatedAt but
// must never clear Viewed/Clicked/Saved - feedback is sticky.
type Recommendation struct {
	UserID  int64 `json:"user_id"`
	EventID int64 `json:"event_id"`

	// MatchScore is the 0-100 aggregate, one decimal of precision.
	MatchScore float64 `json:"match_score"`

	// Reasons is the ordered explanation list, highest priority first.
	Reasons []Reason `json:"reasons"`

	// Viewed, Clicked and Saved are set by downstream UI actions, never
	// by the engine.
	Viewed  bool `json:"viewed"`
	Clicked bool `json:"clicked"`
	Saved   bool `json:"saved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Acted reports whether the user has acted on the recommendation in any
// way. Acted-upon rows leave the candidate pool for a cool-down window.
func (r *Recommendation) Acted() bool {
	return r.Viewed || r.Clicked || r.Saved
}
