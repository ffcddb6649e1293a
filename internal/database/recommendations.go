// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package database

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/models"
)

// Upsert inserts or refreshes one ledger row. A single statement keeps
// the operation atomic under concurrent refreshes: on conflict only
// score, reasons and updated_at change, so feedback flags set by the UI
// survive every recomputation.
func (db *DB) Upsert(ctx context.Context, rec models.Recommendation) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	reasonsJSON, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	now := rec.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO recommendations
			(user_id, event_id, match_score, reasons, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, event_id) DO UPDATE SET
			match_score = excluded.match_score,
			reasons = excluded.reasons,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.EventID, rec.MatchScore, string(reasonsJSON),
		createdAt, now)
	metrics.RecordDBQuery("UPSERT", "recommendations", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to upsert recommendation (%d, %d): %w",
			rec.UserID, rec.EventID, err)
	}
	return nil
}

// Recent returns the user's ledger rows updated at or after since, best
// score first.
func (db *DB) Recent(ctx context.Context, userID int64, since time.Time) ([]models.Recommendation, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, event_id, match_score, reasons,
		       viewed, clicked, saved, created_at, updated_at
		FROM recommendations
		WHERE user_id = ? AND updated_at >= ?
		ORDER BY match_score DESC, event_id`, userID, since)
	metrics.RecordDBQuery("SELECT", "recommendations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read recommendations for user %d: %w", userID, err)
	}
	defer closeQuietly(rows)

	return scanRecommendations(rows)
}

// ListForUser returns the user's ledger rows, best score first, for the
// API listing endpoint.
func (db *DB) ListForUser(ctx context.Context, userID int64, limit int) ([]models.Recommendation, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, event_id, match_score, reasons,
		       viewed, clicked, saved, created_at, updated_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY match_score DESC, event_id
		LIMIT ?`, userID, limit)
	metrics.RecordDBQuery("SELECT", "recommendations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations for user %d: %w", userID, err)
	}
	defer closeQuietly(rows)

	return scanRecommendations(rows)
}

// SetFeedback turns on feedback flags for one ledger row. Flags only
// ever turn on here; un-doing feedback is expressed through the
// interaction log, not the ledger.
func (db *DB) SetFeedback(ctx context.Context, userID, eventID int64, viewed, clicked, saved bool) (bool, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE recommendations SET
			viewed = viewed OR ?,
			clicked = clicked OR ?,
			saved = saved OR ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND event_id = ?`,
		viewed, clicked, saved, userID, eventID)
	metrics.RecordDBQuery("UPDATE", "recommendations", time.Since(start), err)

	if err != nil {
		return false, fmt.Errorf("failed to set feedback (%d, %d): %w", userID, eventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// PruneStale deletes unacted ledger rows whose event has already
// started. Acted rows stay for product analytics; the pruner only
// removes rows that can never be shown again.
func (db *DB) PruneStale(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM recommendations
		WHERE NOT (viewed OR clicked OR saved)
		  AND (
			updated_at < ?
			OR EXISTS (
				SELECT 1 FROM events e
				WHERE e.id = recommendations.event_id AND e.start_date < ?
			)
		  )`, now.Add(-retention), now)
	metrics.RecordDBQuery("DELETE", "recommendations", time.Since(start), err)

	if err != nil {
		return 0, fmt.Errorf("failed to prune recommendations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		metrics.LedgerRowsPruned.Add(float64(n))
	}
	return n, nil
}

func scanRecommendations(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		var reasonsJSON string
		if err := rows.Scan(&rec.UserID, &rec.EventID, &rec.MatchScore,
			&reasonsJSON, &rec.Viewed, &rec.Clicked, &rec.Saved,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		if err := json.Unmarshal([]byte(reasonsJSON), &rec.Reasons); err != nil {
			return nil, fmt.Errorf("failed to decode reasons: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return recs, nil
}
