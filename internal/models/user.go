// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package models

// NotificationSettings carries the per-user notification toggles.
// The engine never reads these; they ride along with the profile because
// the profile store returns whole rows.
type NotificationSettings struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// UserProfile is the engine's read-only view of a user. Profiles are
// mutated by onboarding and settings flows outside this codebase.
//
// A profile with no preferred categories and no city is valid: scoring
// degrades to neutral or popularity-only signals rather than failing.
type UserProfile struct {
	// ID is the user identifier.
	ID int64 `json:"id"`

	// DisplayName is shown in UIs; unused by scoring.
	DisplayName string `json:"display_name"`

	// City is the free-text home location. Empty when unset.
	City string `json:"city"`

	// BudgetCeiling is the stated spending ceiling in euros.
	// Zero means the user never stated one.
	BudgetCeiling float64 `json:"budget_ceiling"`

	// PreferredCategories is the unordered, unique set of categories the
	// user picked during onboarding. May be empty.
	PreferredCategories []EventCategory `json:"preferred_categories"`

	// Notifications holds the notification toggles.
	Notifications NotificationSettings `json:"notifications"`
}

// Prefers reports whether the category is in the preferred set.
func (p *UserProfile) Prefers(c EventCategory) bool {
	if p == nil {
		return false
	}
	for _, pc := range p.PreferredCategories {
		if pc == c {
			return true
		}
	}
	return false
}

// HasBudget reports whether the user stated a spending ceiling.
func (p *UserProfile) HasBudget() bool {
	return p != nil && p.BudgetCeiling > 0
}

// HasSignal reports whether the profile carries anything scoring can
// use. A row with no categories, city or budget is treated the same as
// no row at all.
func (p *UserProfile) HasSignal() bool {
	if p == nil {
		return false
	}
	return len(p.PreferredCategories) > 0 || p.City != "" || p.BudgetCeiling > 0
}
