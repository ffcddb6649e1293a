// Quoifaire - Personalized Event Discovery
// Copyright 2026 M. Larcin (mlarcin)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlarcin/quoifaire

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockPruner implements Pruner for testing.
type mockPruner struct {
	calls  atomic.Int32
	pruned int64
	err    error
}

func (m *mockPruner) PruneStale(context.Context, time.Time, time.Duration) (int64, error) {
	m.calls.Add(1)
	return m.pruned, m.err
}

func TestPrunerServiceRunsImmediately(t *testing.T) {
	pruner := &mockPruner{pruned: 3}
	svc := NewPrunerService(pruner, time.Hour, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(time.Second)
	for pruner.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no prune within 1s of start")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestPrunerServiceTicks(t *testing.T) {
	pruner := &mockPruner{}
	svc := NewPrunerService(pruner, 10*time.Millisecond, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = svc.Serve(ctx)

	if got := pruner.calls.Load(); got < 2 {
		t.Errorf("prune calls = %d, want at least 2", got)
	}
}

func TestPrunerServiceSurvivesErrors(t *testing.T) {
	pruner := &mockPruner{err: errors.New("db busy")}
	svc := NewPrunerService(pruner, 10*time.Millisecond, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline exceeded", err)
	}
	if pruner.calls.Load() < 2 {
		t.Error("pruner stopped retrying after an error")
	}
}

func TestPrunerServiceDefaults(t *testing.T) {
	svc := NewPrunerService(&mockPruner{}, 0, 0, zerolog.Nop())

	if svc.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", svc.interval)
	}
	if svc.retention != 30*24*time.Hour {
		t.Errorf("retention = %v, want 720h", svc.retention)
	}
	if svc.String() != "ledger-pruner" {
		t.Errorf("String() = %q", svc.String())
	}
}
