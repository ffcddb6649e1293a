// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package recommend implements the personalized event-matching engine.
//
// The engine is a stateless pipeline invoked once per request:
//
//	candidates -> features -> sub-scores -> weighted aggregate ->
//	rank + diversify -> persist -> response
//
// Feature extraction and scoring are pure functions of their inputs plus an
// immutable Config, so identical inputs always produce identical scores and
// reason ordering. The only mutation point is the ledger upsert, which is
// atomic per row and never erases user feedback flags.
//
// Store access goes through the small interfaces in types.go. The engine
// degrades rather than fails: a missing or unreachable profile store drops
// it to popularity-only scoring, an unreachable catalog yields an explicit
// "unavailable" response, and a failed ledger write is retried once, logged
// and swallowed - the computed ranking is still returned.
package recommend
