// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/models"
)

// GetProfile returns the user's profile, or (nil, nil) when no profile
// row exists. The engine treats an absent profile as a cold-start user,
// not an error.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, display_name, city, budget_ceiling, preferred_categories,
		       notify_email, notify_push
		FROM users
		WHERE id = ?`, userID)

	var p models.UserProfile
	var categoriesJSON string
	err := row.Scan(&p.ID, &p.DisplayName, &p.City, &p.BudgetCeiling,
		&categoriesJSON, &p.Notifications.Email, &p.Notifications.Push)
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %d: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(categoriesJSON), &p.PreferredCategories); err != nil {
		return nil, fmt.Errorf("failed to decode preferred categories for user %d: %w", userID, err)
	}
	return &p, nil
}

// SaveProfile inserts or updates a profile row.
func (db *DB) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	categoriesJSON, err := json.Marshal(p.PreferredCategories)
	if err != nil {
		return fmt.Errorf("failed to encode preferred categories: %w", err)
	}

	// The timestamp is bound as a parameter; the driver rejects SQL
	// functions in the VALUES list of a parameterized upsert.
	now := time.Now().UTC()

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, display_name, city, budget_ceiling,
		                   preferred_categories, notify_email, notify_push, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			city = excluded.city,
			budget_ceiling = excluded.budget_ceiling,
			preferred_categories = excluded.preferred_categories,
			notify_email = excluded.notify_email,
			notify_push = excluded.notify_push,
			updated_at = excluded.updated_at`,
		p.ID, p.DisplayName, p.City, p.BudgetCeiling,
		string(categoriesJSON), p.Notifications.Email, p.Notifications.Push, now)
	metrics.RecordDBQuery("UPSERT", "users", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to save profile %d: %w", p.ID, err)
	}
	return nil
}
