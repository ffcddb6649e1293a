// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package database

import (
	"context"
	"testing"
	"time"

	"github.com/mlarcin/quoifaire/internal/models"
)

func TestUpsertInsertAndRefresh(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	rec := models.Recommendation{
		UserID: 42, EventID: 1, MatchScore: 87.5,
		Reasons:   []models.Reason{{Code: "near_you", Text: "Près de chez vous"}},
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// A refresh overwrites score and reasons.
	rec.MatchScore = 91.2
	rec.Reasons = []models.Reason{{Code: "free_event", Text: "Événement gratuit"}}
	rec.UpdatedAt = now.Add(time.Minute)
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	rows, err := db.Recent(ctx, 42, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want exactly one live row per pair", len(rows))
	}
	if rows[0].MatchScore != 91.2 {
		t.Errorf("MatchScore = %v, want refreshed 91.2", rows[0].MatchScore)
	}
	if len(rows[0].Reasons) != 1 || rows[0].Reasons[0].Code != "free_event" {
		t.Errorf("Reasons = %v, want refreshed reasons", rows[0].Reasons)
	}
}

func TestUpsertPreservesFeedbackFlags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := models.Recommendation{UserID: 42, EventID: 1, MatchScore: 80, CreatedAt: now, UpdatedAt: now}
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	updated, err := db.SetFeedback(ctx, 42, 1, false, false, true)
	if err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}
	if !updated {
		t.Fatal("SetFeedback() = false, want row updated")
	}

	// Recompute the same pair: the saved flag must survive.
	rec.MatchScore = 60
	rec.UpdatedAt = now.Add(time.Minute)
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("refresh Upsert() error = %v", err)
	}

	rows, err := db.Recent(ctx, 42, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if !rows[0].Saved {
		t.Error("Saved flag cleared by refresh, feedback must be sticky")
	}
	if rows[0].MatchScore != 60 {
		t.Errorf("MatchScore = %v, want refreshed 60", rows[0].MatchScore)
	}
}

func TestSetFeedbackOnlyTurnsFlagsOn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := models.Recommendation{UserID: 1, EventID: 1, MatchScore: 70, CreatedAt: now, UpdatedAt: now}
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if _, err := db.SetFeedback(ctx, 1, 1, true, false, false); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}
	// A later call with all-false flags must not clear the viewed flag.
	if _, err := db.SetFeedback(ctx, 1, 1, false, true, false); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	rows, err := db.Recent(ctx, 1, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if !rows[0].Viewed || !rows[0].Clicked {
		t.Errorf("flags = %+v, want viewed and clicked both on", rows[0])
	}
}

func TestSetFeedbackMissingRow(t *testing.T) {
	db := newTestDB(t)

	updated, err := db.SetFeedback(context.Background(), 999, 999, true, false, false)
	if err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}
	if updated {
		t.Error("SetFeedback() = true for a missing row")
	}
}

func TestRecentWindow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := models.Recommendation{UserID: 42, EventID: 1, MatchScore: 80,
		CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour)}
	fresh := models.Recommendation{UserID: 42, EventID: 2, MatchScore: 75,
		CreatedAt: now, UpdatedAt: now}
	for _, rec := range []models.Recommendation{old, fresh} {
		if err := db.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	rows, err := db.Recent(ctx, 42, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(rows) != 1 || rows[0].EventID != 2 {
		t.Errorf("rows = %v, want just the fresh row", rows)
	}
}

func TestListForUserOrdersByScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, rec := range []models.Recommendation{
		{UserID: 42, EventID: 1, MatchScore: 70, CreatedAt: now, UpdatedAt: now},
		{UserID: 42, EventID: 2, MatchScore: 90, CreatedAt: now, UpdatedAt: now},
		{UserID: 42, EventID: 3, MatchScore: 80, CreatedAt: now, UpdatedAt: now},
		{UserID: 7, EventID: 1, MatchScore: 99, CreatedAt: now, UpdatedAt: now},
	} {
		if err := db.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	rows, err := db.ListForUser(ctx, 42, 2)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(rows) != 2 || rows[0].EventID != 2 || rows[1].EventID != 3 {
		t.Errorf("rows = %v, want events [2 3]", rows)
	}
}

func TestPruneStale(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	seedEvents(t, db, now)

	// Event 3 already started; event 1 is upcoming.
	for _, rec := range []models.Recommendation{
		{UserID: 42, EventID: 3, MatchScore: 80, CreatedAt: now, UpdatedAt: now},
		{UserID: 42, EventID: 1, MatchScore: 90, CreatedAt: now, UpdatedAt: now},
		// Acted row for a past event survives pruning.
		{UserID: 7, EventID: 3, MatchScore: 85, CreatedAt: now, UpdatedAt: now},
	} {
		if err := db.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	if _, err := db.SetFeedback(ctx, 7, 3, false, true, false); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	pruned, err := db.PruneStale(ctx, now, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneStale() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	rows, err := db.ListForUser(ctx, 42, 10)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(rows) != 1 || rows[0].EventID != 1 {
		t.Errorf("remaining rows = %v, want just the upcoming event", rows)
	}
	acted, err := db.ListForUser(ctx, 7, 10)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(acted) != 1 {
		t.Error("acted row for past event was pruned")
	}
}

func TestBreakerStoresPassThrough(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)
	ctx := context.Background()

	bs := NewBreakerStores(db)
	stores := bs.Stores()

	events, err := stores.Catalog.ListActiveUpcoming(ctx, now, 100)
	if err != nil {
		t.Fatalf("ListActiveUpcoming() through breaker error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("len(events) = %d, want 2", len(events))
	}

	profile, err := stores.Profiles.GetProfile(ctx, 12345)
	if err != nil {
		t.Fatalf("GetProfile() through breaker error = %v", err)
	}
	if profile != nil {
		t.Errorf("profile = %v, want nil", profile)
	}

	rec := models.Recommendation{UserID: 1, EventID: 1, MatchScore: 50, CreatedAt: now, UpdatedAt: now}
	if err := stores.Ledger.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() through breaker error = %v", err)
	}
	rows, err := stores.Ledger.Recent(ctx, 1, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Recent() through breaker error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, want 1", len(rows))
	}
}
