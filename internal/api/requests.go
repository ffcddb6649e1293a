// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package api

import (
	"net/http"

	"github.com/mlarcin/quoifaire/internal/models"
	"github.com/mlarcin/quoifaire/internal/validation"
)

// RecommendationsParams carries the validated query parameters of the
// recommendations endpoint.
type RecommendationsParams struct {
	Limit   int    `validate:"min=1,max=50"`
	Refresh string `validate:"omitempty,oneof=cached fresh"`
}

// FeedbackRequest marks a recommendation as seen or acted on. Flags are
// OR-set on the ledger row; a set flag never reverts.
type FeedbackRequest struct {
	Action string `json:"action" validate:"required,oneof=viewed clicked saved"`
}

// InteractionRequest appends one interaction to the user's history.
type InteractionRequest struct {
	EventID int64  `json:"event_id" validate:"required,gt=0"`
	Kind    string `json:"kind" validate:"required,oneof=view click save unsave share rate"`
	Rating  int    `json:"rating,omitempty" validate:"min=0,max=5"`
}

// ProfileRequest replaces the user's stated preferences.
type ProfileRequest struct {
	DisplayName         string                      `json:"display_name" validate:"max=120"`
	City                string                      `json:"city" validate:"max=120"`
	BudgetCeiling       float64                     `json:"budget_ceiling" validate:"min=0"`
	PreferredCategories []models.EventCategory      `json:"preferred_categories" validate:"max=10,dive,oneof=music art theatre cinema sport food nightlife conference family other"`
	Notifications       models.NotificationSettings `json:"notifications"`
}

// EventRequest creates one catalog event. The ID comes from the
// organizer catalog, which owns identifier allocation.
type EventRequest struct {
	ID        int64   `json:"id" validate:"required,gt=0"`
	Title     string  `json:"title" validate:"required,max=200"`
	Category  string  `json:"category" validate:"required,oneof=music art theatre cinema sport food nightlife conference family other"`
	VenueName string  `json:"venue_name" validate:"max=200"`
	City      string  `json:"city" validate:"max=120"`
	Latitude  float64 `json:"latitude,omitempty" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude,omitempty" validate:"min=-180,max=180"`
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date,omitempty"`
	Price     float64 `json:"price" validate:"min=0"`
	IsFree    bool    `json:"is_free"`
	Featured  bool    `json:"is_featured"`
}

// validateRequest validates a request struct and, on failure, writes the
// VALIDATION_ERROR response. Returns false when the request was rejected.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}

	apiErr := verr.ToAPIError()
	respondJSON(w, r, http.StatusBadRequest, &models.APIResponse{
		Status: "error",
		Error:  apiErr,
	})
	return false
}
