// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

/*
schema.go - Database Schema Management

Tables:
  - users: Profile rows consumed read-only by the engine
    (city, budget, preferred categories as a JSON array)
  - events: The event catalog
  - interactions: Append-only interaction log, ids from a sequence
  - recommendations: The recommendation ledger, one live row per
    (user_id, event_id) with sticky feedback flags

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements; there is
a single source of truth and no migration machinery. Indexes cover the
candidate query (active + start_date), per-user history reads, and the
per-user ledger scan.
*/
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates tables, sequences and indexes.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaStatements() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", query, err)
		}
	}
	return nil
}

func schemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			budget_ceiling DOUBLE NOT NULL DEFAULT 0,
			preferred_categories TEXT NOT NULL DEFAULT '[]',
			notify_email BOOLEAN NOT NULL DEFAULT false,
			notify_push BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			venue_name TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			latitude DOUBLE NOT NULL DEFAULT 0,
			longitude DOUBLE NOT NULL DEFAULT 0,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			price DOUBLE NOT NULL DEFAULT 0,
			is_free BOOLEAN NOT NULL DEFAULT false,
			is_active BOOLEAN NOT NULL DEFAULT true,
			is_featured BOOLEAN NOT NULL DEFAULT false
		)`,

		`CREATE SEQUENCE IF NOT EXISTS interactions_id_seq`,

		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGINT PRIMARY KEY DEFAULT nextval('interactions_id_seq'),
			user_id BIGINT NOT NULL,
			event_id BIGINT NOT NULL,
			kind TEXT NOT NULL,
			rating INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS recommendations (
			user_id BIGINT NOT NULL,
			event_id BIGINT NOT NULL,
			match_score DOUBLE NOT NULL,
			reasons TEXT NOT NULL DEFAULT '[]',
			viewed BOOLEAN NOT NULL DEFAULT false,
			clicked BOOLEAN NOT NULL DEFAULT false,
			saved BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, event_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_candidates
			ON events (is_active, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user
			ON interactions (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_event
			ON interactions (event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_user_updated
			ON recommendations (user_id, updated_at)`,
	}
}
