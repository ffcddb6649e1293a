// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mlarcin/quoifaire/internal/models"
	"github.com/mlarcin/quoifaire/internal/recommend"
)

func TestRateLimitExceeded(t *testing.T) {
	handler := NewHandler(
		&mockEngine{resp: &recommend.Response{Status: recommend.StatusOK}},
		&mockStore{},
		nil,
		10,
	)
	router := NewRouter(handler, &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  1,
		RateLimitWindow:    time.Minute,
	}).Setup()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/users/1/recommendations", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/users/1/recommendations", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}

	var envelope models.APIResponse
	if err := json.Unmarshal(second.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid 429 body: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("error = %+v, want RATE_LIMIT_EXCEEDED", envelope.Error)
	}
}

func TestRateLimitSkipsHealth(t *testing.T) {
	handler := NewHandler(&mockEngine{}, &mockStore{}, nil, 10)
	router := NewRouter(handler, &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  1,
		RateLimitWindow:    time.Minute,
	}).Setup()

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("health request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(&mockEngine{}, &mockStore{}, nil, 10)
	router := NewRouter(handler, nil).Setup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("/metrics body empty")
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := NewHandler(&mockEngine{}, &mockStore{}, nil, 10)
	router := NewRouter(handler, nil).Setup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
