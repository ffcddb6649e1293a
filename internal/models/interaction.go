// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package models

import (
	"fmt"
	"strings"
	"time"
)

// InteractionKind classifies one user-event interaction.
type InteractionKind string

const (
	InteractionView   InteractionKind = "view"
	InteractionClick  InteractionKind = "click"
	InteractionSave   InteractionKind = "save"
	InteractionUnsave InteractionKind = "unsave"
	InteractionShare  InteractionKind = "share"
	InteractionRate   InteractionKind = "rate"
)

// Valid reports whether the kind is one of the known set.
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionView, InteractionClick, InteractionSave,
		InteractionUnsave, InteractionShare, InteractionRate:
		return true
	default:
		return false
	}
}

// ParseInteractionKind parses a raw kind string.
func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
	return k, nil
}

// InteractionRecord is one row of the append-only interaction log.
// Records are never mutated after creation; an unsave logically supersedes
// an earlier save, but both rows persist and readers compute the current
// state by most-recent-wins.
type InteractionRecord struct {
	// UserID and EventID identify the pair.
	UserID  int64 `json:"user_id"`
	EventID int64 `json:"event_id"`

	// Kind is the interaction kind.
	Kind InteractionKind `json:"kind"`

	// Category is the interacted event's category, joined in at read
	// time. Not stored on the log row itself.
	Category EventCategory `json:"category,omitempty"`

	// Rating is set only for InteractionRate, range 1-5.
	Rating int `json:"rating,omitempty"`

	// CreatedAt is when the interaction occurred.
	CreatedAt time.Time `json:"created_at"`
}

// Positive reports whether the interaction is a positive preference signal
// (a save, a share, or a rating of 4 or better).
func (r *InteractionRecord) Positive() bool {
	switch r.Kind {
	case InteractionSave, InteractionShare:
		return true
	case InteractionRate:
		return r.Rating >= 4
	default:
		return false
	}
}
