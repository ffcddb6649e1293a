// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package database provides DuckDB-backed persistence: user profiles,
// the event catalog, the append-only interaction log, and the
// recommendation ledger.
//
// The recommend package consumes these stores through its own
// interfaces; BreakerStores adds per-store circuit breakers on top so a
// stalled database degrades the engine instead of hanging it.
package database
