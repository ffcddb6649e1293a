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
	"strings"
	"time"

	"github.com/mlarcin/quoifaire/internal/metrics"
	"github.com/mlarcin/quoifaire/internal/models"
)

const eventColumns = `id, title, category, venue_name, city, latitude, longitude,
	start_date, end_date, price, is_free, is_active, is_featured`

func scanEvent(row interface{ Scan(...any) error }) (models.Event, error) {
	var e models.Event
	var category string
	err := row.Scan(&e.ID, &e.Title, &category, &e.VenueName, &e.City,
		&e.Latitude, &e.Longitude, &e.StartDate, &e.EndDate,
		&e.Price, &e.IsFree, &e.IsActive, &e.IsFeatured)
	if err != nil {
		return models.Event{}, err
	}
	e.Category = models.ParseCategory(category)
	return e, nil
}

// ListActiveUpcoming returns active events starting after now, soonest
// first, capped at limit.
func (db *DB) ListActiveUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Event, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE is_active AND start_date > ?
		ORDER BY start_date, id
		LIMIT ?`, now, limit)
	metrics.RecordDBQuery("SELECT", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer closeQuietly(rows)

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event by id, or (zero, false) when absent.
func (db *DB) GetEvent(ctx context.Context, id int64) (models.Event, bool, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	metrics.RecordDBQuery("SELECT", "events", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, false, nil
	}
	if err != nil {
		return models.Event{}, false, fmt.Errorf("failed to read event %d: %w", id, err)
	}
	return e, true, nil
}

// GetEvents returns the catalog rows for the given ids. Missing ids are
// silently absent from the result.
func (db *DB) GetEvents(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id IN (`+placeholders+`)`, args...)
	metrics.RecordDBQuery("SELECT", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read events by id: %w", err)
	}
	defer closeQuietly(rows)

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// InsertEvent adds a catalog row. Organizer tooling and test fixtures
// feed the catalog; the engine itself only reads it.
func (db *DB) InsertEvent(ctx context.Context, e *models.Event) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, string(e.Category), e.VenueName, e.City,
		e.Latitude, e.Longitude, e.StartDate, e.EndDate,
		e.Price, e.IsFree, e.IsActive, e.IsFeatured)
	metrics.RecordDBQuery("INSERT", "events", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to insert event %d: %w", e.ID, err)
	}
	return nil
}

// DeactivateEvent hides an event from the candidate pool without
// deleting its history.
func (db *DB) DeactivateEvent(ctx context.Context, id int64) error {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`UPDATE events SET is_active = false WHERE id = ?`, id)
	metrics.RecordDBQuery("UPDATE", "events", time.Since(start), err)

	if err != nil {
		return fmt.Errorf("failed to deactivate event %d: %w", id, err)
	}
	return nil
}
