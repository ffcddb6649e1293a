// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package database

import (
	"context"
	"testing"
	"time"

	"github.com/mlarcin/quoifaire/internal/config"
	"github.com/mlarcin/quoifaire/internal/models"
)

// newTestDB opens an in-memory DuckDB with the full schema.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{
		Path:         ":memory:",
		MaxMemory:    "256MB",
		Threads:      2,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestSchemaIdempotent(t *testing.T) {
	db := newTestDB(t)
	// Running schema creation twice must not error.
	if err := db.createSchema(); err != nil {
		t.Fatalf("second createSchema() error = %v", err)
	}
}

func TestProfileRoundtrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	profile := &models.UserProfile{
		ID:            42,
		DisplayName:   "Camille",
		City:          "Paris",
		BudgetCeiling: 50,
		PreferredCategories: []models.EventCategory{
			models.CategoryMusic, models.CategoryFood,
		},
		Notifications: models.NotificationSettings{Email: true},
	}
	if err := db.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := db.GetProfile(ctx, 42)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetProfile() = nil, want profile")
	}
	if got.City != "Paris" || got.BudgetCeiling != 50 {
		t.Errorf("profile = %+v, want city Paris budget 50", got)
	}
	if len(got.PreferredCategories) != 2 || got.PreferredCategories[0] != models.CategoryMusic {
		t.Errorf("PreferredCategories = %v", got.PreferredCategories)
	}
	if !got.Notifications.Email || got.Notifications.Push {
		t.Errorf("Notifications = %+v, want email only", got.Notifications)
	}
}

func TestProfileUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := &models.UserProfile{ID: 1, City: "Lyon"}
	if err := db.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	p.City = "Marseille"
	p.BudgetCeiling = 30
	if err := db.SaveProfile(ctx, p); err != nil {
		t.Fatalf("second SaveProfile() error = %v", err)
	}

	got, err := db.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.City != "Marseille" || got.BudgetCeiling != 30 {
		t.Errorf("profile = %+v, want updated row", got)
	}
}

func TestGetProfileAbsent(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetProfile(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetProfile() error = %v, absence is not an error", err)
	}
	if got != nil {
		t.Errorf("GetProfile() = %+v, want nil for absent user", got)
	}
}

func seedEvents(t *testing.T, db *DB, now time.Time) {
	t.Helper()
	ctx := context.Background()
	day := 24 * time.Hour
	events := []models.Event{
		{ID: 1, Title: "Jazz au Sunset", Category: models.CategoryMusic, City: "Paris",
			StartDate: now.Add(day), EndDate: now.Add(day + 3*time.Hour), Price: 25, IsActive: true},
		{ID: 2, Title: "Expo photo", Category: models.CategoryArt, City: "Paris",
			StartDate: now.Add(3 * day), EndDate: now.Add(3*day + 6*time.Hour), IsFree: true, IsActive: true},
		{ID: 3, Title: "Festival passé", Category: models.CategoryMusic, City: "Lyon",
			StartDate: now.Add(-day), EndDate: now.Add(-day + 5*time.Hour), IsActive: true},
		{ID: 4, Title: "Brouillon", Category: models.CategoryFood, City: "Paris",
			StartDate: now.Add(2 * day), EndDate: now.Add(2*day + time.Hour), IsActive: false},
	}
	for i := range events {
		if err := db.InsertEvent(ctx, &events[i]); err != nil {
			t.Fatalf("InsertEvent(%d) error = %v", events[i].ID, err)
		}
	}
}

func TestListActiveUpcoming(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)

	events, err := db.ListActiveUpcoming(context.Background(), now, 100)
	if err != nil {
		t.Fatalf("ListActiveUpcoming() error = %v", err)
	}
	// Past event 3 and inactive event 4 are excluded; soonest first.
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].ID != 1 || events[1].ID != 2 {
		t.Errorf("order = [%d %d], want [1 2]", events[0].ID, events[1].ID)
	}
	if events[0].Category != models.CategoryMusic {
		t.Errorf("Category = %v, want music", events[0].Category)
	}
}

func TestListActiveUpcomingLimit(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)

	events, err := db.ListActiveUpcoming(context.Background(), now, 1)
	if err != nil {
		t.Fatalf("ListActiveUpcoming() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != 1 {
		t.Errorf("events = %v, want just event 1", events)
	}
}

func TestGetEvents(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)

	events, err := db.GetEvents(context.Background(), []int64{1, 3, 999})
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	// Missing id 999 is silently absent.
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	none, err := db.GetEvents(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetEvents(nil) error = %v", err)
	}
	if none != nil {
		t.Errorf("GetEvents(nil) = %v, want nil", none)
	}
}

func TestDeactivateEvent(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)

	if err := db.DeactivateEvent(context.Background(), 1); err != nil {
		t.Fatalf("DeactivateEvent() error = %v", err)
	}
	events, err := db.ListActiveUpcoming(context.Background(), now, 100)
	if err != nil {
		t.Fatalf("ListActiveUpcoming() error = %v", err)
	}
	for _, e := range events {
		if e.ID == 1 {
			t.Error("deactivated event still listed")
		}
	}
}

func TestInteractionHistoryJoinsCategory(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)
	ctx := context.Background()

	recs := []models.InteractionRecord{
		{UserID: 42, EventID: 1, Kind: models.InteractionSave, CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 42, EventID: 2, Kind: models.InteractionView, CreatedAt: now.Add(-time.Hour)},
		{UserID: 7, EventID: 1, Kind: models.InteractionClick, CreatedAt: now},
	}
	for i := range recs {
		if err := db.InsertInteraction(ctx, &recs[i]); err != nil {
			t.Fatalf("InsertInteraction() error = %v", err)
		}
	}

	history, err := db.GetUserHistory(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	// Oldest first, with the event category joined in.
	if history[0].EventID != 1 || history[0].Kind != models.InteractionSave {
		t.Errorf("history[0] = %+v, want save of event 1", history[0])
	}
	if history[0].Category != models.CategoryMusic {
		t.Errorf("history[0].Category = %v, want music", history[0].Category)
	}
	if history[1].Category != models.CategoryArt {
		t.Errorf("history[1].Category = %v, want art", history[1].Category)
	}
}

func TestGetEventCounts(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	seedEvents(t, db, now)
	ctx := context.Background()

	for _, rec := range []models.InteractionRecord{
		{UserID: 1, EventID: 1, Kind: models.InteractionView},
		{UserID: 2, EventID: 1, Kind: models.InteractionSave},
		{UserID: 3, EventID: 2, Kind: models.InteractionClick},
	} {
		if err := db.InsertInteraction(ctx, &rec); err != nil {
			t.Fatalf("InsertInteraction() error = %v", err)
		}
	}

	counts, err := db.GetEventCounts(ctx)
	if err != nil {
		t.Fatalf("GetEventCounts() error = %v", err)
	}
	if counts[1] != 2 || counts[2] != 1 {
		t.Errorf("counts = %v, want {1:2, 2:1}", counts)
	}
}
