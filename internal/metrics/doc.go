// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

/*
Package metrics provides Prometheus metrics collection and export.

Metrics are registered once via promauto and exposed at the /metrics
endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation Engine:
  - recommend_requests_total: Computations (counter)
    Labels: status (ok, empty, degraded, unavailable), refresh (cached, fresh)
  - recommend_duration_seconds: Pipeline latency (histogram)
  - recommend_candidate_pool_size: Scored events per request (histogram)
  - recommend_store_errors_total: Store failures (counter)
    Labels: store (profiles, catalog, interactions, ledger)

Database:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table
  - ledger_rows_pruned_total: Stale ledger rows removed (counter)

Response Cache:
  - response_cache_hits_total / response_cache_misses_total (counters)
  - response_cache_evictions_total: Invalidations (counter)

HTTP API:
  - api_requests_total: Requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Circuit Breaker:
  - circuit_breaker_state: Current state (gauge), 0=closed 1=half-open 2=open
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total
*/
package metrics
