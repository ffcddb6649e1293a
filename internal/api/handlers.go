// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mlarcin/quoifaire/internal/logging"
	"github.com/mlarcin/quoifaire/internal/models"
	"github.com/mlarcin/quoifaire/internal/recommend"
)

// handlerTimeout bounds every handler's downstream work.
const handlerTimeout = 10 * time.Second

// Recommender produces ranked recommendations. Satisfied by
// *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// Store is the slice of the database layer the handlers need.
// Satisfied by *database.DB.
type Store interface {
	Ping(ctx context.Context) error
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	ListActiveUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Event, error)
	InsertEvent(ctx context.Context, e *models.Event) error
	DeactivateEvent(ctx context.Context, id int64) error
	InsertInteraction(ctx context.Context, rec *models.InteractionRecord) error
	SetFeedback(ctx context.Context, userID, eventID int64, viewed, clicked, saved bool) (bool, error)
}

// Invalidator drops a user's cached recommendation responses. Satisfied by
// *cache.ResponseCache; nil when the cache is disabled.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// Handler holds the dependencies of all endpoints.
type Handler struct {
	engine       Recommender
	store        Store
	cache        Invalidator
	defaultLimit int
}

// NewHandler creates the API handler set. cache may be nil. defaultLimit
// fills in for an absent limit query parameter; the engine itself
// rejects non-positive limits.
func NewHandler(engine Recommender, store Store, cache Invalidator, defaultLimit int) *Handler {
	return &Handler{
		engine:       engine,
		store:        store,
		cache:        cache,
		defaultLimit: defaultLimit,
	}
}

// invalidate drops the user's cached responses if a cache is wired.
func (h *Handler) invalidate(userID int64) {
	if h.cache != nil {
		h.cache.InvalidateUser(userID)
	}
}

// GetRecommendations handles GET /api/v1/users/{userID}/recommendations.
//
// Degraded and unavailable outcomes are still HTTP 200: the payload's
// status field tells the client what fidelity it got, and an empty list
// with status "unavailable" beats a 5xx the UI cannot render.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt64(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	params := RecommendationsParams{
		Limit:   getIntParam(r, "limit", h.defaultLimit),
		Refresh: r.URL.Query().Get("refresh"),
	}
	if !validateRequest(w, r, &params) {
		return
	}

	req := recommend.Request{
		UserID:    userID,
		Limit:     params.Limit,
		Refresh:   recommend.ParseRefreshMode(params.Refresh),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid recommendation request", err)
		return
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: resp.Metadata.LatencyMS,
			Cached:      resp.Metadata.Reused,
		},
	})
}

// PostFeedback handles
// POST /api/v1/users/{userID}/recommendations/{eventID}/feedback.
func (h *Handler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt64(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}
	eventID, err := urlParamInt64(r, "eventID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_EVENT_ID", "Invalid event ID", err)
		return
	}

	var req FeedbackRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	found, err := h.store.SetFeedback(ctx, userID, eventID,
		req.Action == "viewed", req.Action == "clicked", req.Action == "saved")
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "FEEDBACK_ERROR", "Failed to record feedback", err)
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No recommendation for this user and event", nil)
		return
	}

	h.invalidate(userID)

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"user_id":  userID,
			"event_id": eventID,
			"action":   req.Action,
		},
	})
}

// PostInteraction handles POST /api/v1/users/{userID}/interactions.
func (h *Handler) PostInteraction(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt64(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	var req InteractionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	kind, err := models.ParseInteractionKind(req.Kind)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_KIND", "Invalid interaction kind", err)
		return
	}
	if kind == models.InteractionRate && req.Rating == 0 {
		respondError(w, r, http.StatusBadRequest, "INVALID_RATING", "Rating is required for rate interactions", nil)
		return
	}

	rec := models.InteractionRecord{
		UserID:    userID,
		EventID:   req.EventID,
		Kind:      kind,
		Rating:    req.Rating,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.store.InsertInteraction(ctx, &rec); err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERACTION_ERROR", "Failed to record interaction", err)
		return
	}

	h.invalidate(userID)

	respondJSON(w, r, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   rec,
	})
}

// GetProfile handles GET /api/v1/users/{userID}/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt64(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "PROFILE_ERROR", "Failed to load profile", err)
		return
	}
	if profile == nil {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   profile,
	})
}

// PutProfile handles PUT /api/v1/users/{userID}/profile. The payload
// replaces the stored preferences wholesale.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := urlParamInt64(r, "userID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID", err)
		return
	}

	var req ProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	profile := models.UserProfile{
		ID:                  userID,
		DisplayName:         req.DisplayName,
		City:                req.City,
		BudgetCeiling:       req.BudgetCeiling,
		PreferredCategories: req.PreferredCategories,
		Notifications:       req.Notifications,
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.store.SaveProfile(ctx, &profile); err != nil {
		respondError(w, r, http.StatusInternalServerError, "PROFILE_ERROR", "Failed to save profile", err)
		return
	}

	h.invalidate(userID)

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   profile,
	})
}

// ListEvents handles GET /api/v1/events. Returns active upcoming events
// ordered by start date.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", 100)
	if limit <= 0 || limit > 500 {
		respondError(w, r, http.StatusBadRequest, "INVALID_LIMIT", "Limit must be between 1 and 500", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	events, err := h.store.ListActiveUpcoming(ctx, time.Now(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "CATALOG_ERROR", "Failed to list events", err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"events": events,
			"count":  len(events),
		},
	})
}

// PostEvent handles POST /api/v1/events. Used by organizer tooling to
// seed the catalog.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_DATE", "start_date must be RFC3339", err)
		return
	}
	endDate := startDate
	if req.EndDate != "" {
		endDate, err = time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_DATE", "end_date must be RFC3339", err)
			return
		}
	}

	event := models.Event{
		ID:         req.ID,
		Title:      req.Title,
		Category:   models.ParseCategory(req.Category),
		VenueName:  req.VenueName,
		City:       req.City,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		StartDate:  startDate,
		EndDate:    endDate,
		Price:      req.Price,
		IsFree:     req.IsFree,
		IsActive:   true,
		IsFeatured: req.Featured,
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.store.InsertEvent(ctx, &event); err != nil {
		respondError(w, r, http.StatusInternalServerError, "CATALOG_ERROR", "Failed to create event", err)
		return
	}

	respondJSON(w, r, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   event,
	})
}

// DeleteEvent handles DELETE /api/v1/events/{eventID}. Deactivates the
// event; history referencing it is kept.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt64(r, "eventID")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_EVENT_ID", "Invalid event ID", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.store.DeactivateEvent(ctx, eventID); err != nil {
		respondError(w, r, http.StatusInternalServerError, "CATALOG_ERROR", "Failed to deactivate event", err)
		return
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"event_id": eventID,
			"active":   false,
		},
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	respondJSON(w, r, httpStatus, &models.APIResponse{
		Status: "success",
		Data: map[string]string{
			"status": status,
		},
	})
}

// HealthLive handles GET /api/v1/health/live. Always OK while the
// process accepts connections.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]string{
			"status": "alive",
		},
	})
}
