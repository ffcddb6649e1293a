// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package api exposes the versioned JSON API over a chi router.
//
// Every endpoint answers with the models.APIResponse envelope. The router
// applies request ID propagation, CORS, per-IP rate limiting and Prometheus
// instrumentation; handlers stay thin and delegate to the recommendation
// engine and the database layer.
package api
