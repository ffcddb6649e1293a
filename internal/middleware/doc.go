// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package middleware provides HTTP middleware shared across route groups:
// request ID propagation and Prometheus request instrumentation. CORS and
// rate limiting use the chi ecosystem directly and live in the api package.
package middleware
