// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/models"
)

// InsertInteraction appends one row to the interaction log. The log is
// append-only: an unsave never deletes the earlier save row.
func (db *DB) InsertInteraction(ctx context.Context, rec *models.InteractionRecord) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO interactions (user_id, event_id, kind, rating, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.UserID, rec.EventID, string(rec.Kind), rec.Rating, createdAt)
	metrics.RecordDBQuery("INSERT", "interactions", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// GetUserHistory returns every interaction of one user, oldest first,
// with the event category joined in for affinity scoring.
func (db *DB) GetUserHistory(ctx context.Context, userID int64) ([]models.InteractionRecord, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.user_id, i.event_id, i.kind, i.rating, i.created_at,
		       COALESCE(e.category, '')
		FROM interactions i
		LEFT JOIN events e ON e.id = i.event_id
		WHERE i.user_id = ?
		ORDER BY i.created_at, i.id`, userID)
	metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read history for user %d: %w", userID, err)
	}
	defer closeQuietly(rows)

	var history []models.InteractionRecord
	for rows.Next() {
		var rec models.InteractionRecord
		var kind, category string
		if err := rows.Scan(&rec.UserID, &rec.EventID, &kind, &rec.Rating,
			&rec.CreatedAt, &category); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		rec.Kind = models.InteractionKind(kind)
		rec.Category = models.ParseCategory(category)
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return history, nil
}

// GetEventCounts returns the total interaction count per event across
// all users, the raw material for the popularity signal.
func (db *DB) GetEventCounts(ctx context.Context) (map[int64]int, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT event_id, COUNT(*) FROM interactions GROUP BY event_id`)
	metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer closeQuietly(rows)

	counts := make(map[int64]int)
	for rows.Next() {
		var eventID int64
		var n int
		if err := rows.Scan(&eventID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan interaction count: %w", err)
		}
		counts[eventID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interaction counts: %w", err)
	}
	return counts, nil
}
