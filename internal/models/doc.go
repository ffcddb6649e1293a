// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

// Package models contains the shared domain types for Quoifaire.
//
// The types here mirror the relational schema owned by the surrounding
// application: user profiles, the event catalog, the append-only interaction
// log, and the recommendation ledger. The matching engine in
// internal/recommend reads and writes these types but never owns their
// persistence - that is the database package's job.
//
// All types are plain value types with no behavior beyond validation and
// formatting helpers, so they can cross package boundaries (engine, stores,
// API handlers) without import cycles.
package models
