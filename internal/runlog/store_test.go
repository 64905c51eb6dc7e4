package runlog_test

import (
	"context"
	"testing"
	"time"

	"ankisync/internal/config"
	"ankisync/internal/runlog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	return &cfg
}

func openStore(t *testing.T, cfg *config.Config) *runlog.Store {
	t.Helper()
	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t, testConfig(t))
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	runs := []runlog.Run{
		{
			RunID:      "run-a",
			Command:    "sync",
			Query:      `note:"Vocab" deck:*`,
			StartedAt:  base,
			FinishedAt: base.Add(3 * time.Second),
			Matched:    120,
			Processed:  120,
			Planned:    14,
			Applied:    14,
			Status:     runlog.StatusOK,
		},
		{
			RunID:      "run-b",
			Command:    "sync",
			Query:      `deck:*`,
			StartedAt:  base.Add(time.Minute),
			FinishedAt: base.Add(time.Minute + time.Second),
			Matched:    120,
			Processed:  10,
			Planned:    2,
			DryRun:     true,
			Status:     runlog.StatusOK,
		},
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	// Newest first.
	if got[0].RunID != "run-b" || got[1].RunID != "run-a" {
		t.Fatalf("unexpected order: %q then %q", got[0].RunID, got[1].RunID)
	}
	if !got[0].DryRun {
		t.Fatal("dry-run flag lost on round trip")
	}
	if got[1].Applied != 14 || got[1].Planned != 14 {
		t.Fatalf("counts lost on round trip: %+v", got[1])
	}
	if !got[1].StartedAt.Equal(base) {
		t.Fatalf("timestamp lost on round trip: %v", got[1].StartedAt)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openStore(t, testConfig(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		run := runlog.Run{
			RunID:      string(rune('a' + i)),
			Command:    "sync",
			StartedAt:  base.Add(time.Duration(i) * time.Second),
			FinishedAt: base.Add(time.Duration(i+1) * time.Second),
			Status:     runlog.StatusOK,
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	got, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(got))
	}
}

func TestRecordedFailureKeepsDetail(t *testing.T) {
	store := openStore(t, testConfig(t))
	ctx := context.Background()

	run := runlog.Run{
		RunID:      "run-fail",
		Command:    "relocate",
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
		Status:     runlog.StatusFailed,
		Detail:     "move cards to \"A::exercise\": collection locked",
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	got, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if got[0].Status != runlog.StatusFailed || got[0].Detail == "" {
		t.Fatalf("failure detail lost: %+v", got[0])
	}
}

func TestReopenKeepsExistingRows(t *testing.T) {
	cfg := testConfig(t)
	store := openStore(t, cfg)
	ctx := context.Background()

	run := runlog.Run{
		RunID:      "run-persist",
		Command:    "sync",
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
		Status:     runlog.StatusOK,
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened := openStore(t, cfg)
	got, err := reopened.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 1 || got[0].RunID != "run-persist" {
		t.Fatalf("rows lost across reopen: %+v", got)
	}
}
