// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlarcin/quoifaire/internal/middleware"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler *Handler
	chimw   *ChiMiddleware
}

// NewRouter creates a router. A nil mwConfig uses the middleware
// defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler: handler,
		chimw:   NewChiMiddleware(mwConfig),
	}
}

// Setup builds the chi route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(rt.chimw.CORS())

	// Health endpoints skip rate limiting so monitoring never trips it.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
	})

	// Prometheus scrape endpoint.
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// User-facing API.
	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Use(rt.chimw.RateLimit())
		r.Use(middleware.Prometheus)

		r.Get("/recommendations", rt.handler.GetRecommendations)
		r.Post("/recommendations/{eventID}/feedback", rt.handler.PostFeedback)
		r.Post("/interactions", rt.handler.PostInteraction)
		r.Get("/profile", rt.handler.GetProfile)
		r.Put("/profile", rt.handler.PutProfile)
	})

	// Catalog endpoints, used by the UI and organizer tooling.
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Use(rt.chimw.RateLimit())
		r.Use(middleware.Prometheus)

		r.Get("/", rt.handler.ListEvents)
		r.Post("/", rt.handler.PostEvent)
		r.Delete("/{eventID}", rt.handler.DeleteEvent)
	})

	return r
}
