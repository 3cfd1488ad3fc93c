package services

import (
	"context"
	"testing"
	"time"

	"brigade-backend/internal/models"
)

func seedRuns(t *testing.T, env *testEnv) time.Time {
	t.Helper()
	base := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	runs := []struct {
		group  string
		offset time.Duration
		time   float64
	}{
		{"zug-a", 0, 120},
		{"zug-b", time.Hour, 95},
		{"zug-a", 2 * time.Hour, 101},
		{"zug-c", 3 * time.Hour, 88},
		{"zug-a", 4 * time.Hour, 99},
		{"zug-b", 5 * time.Hour, 130},
	}
	for _, r := range runs {
		rec := &models.SessionRecord{
			GroupName:      r.group,
			Timestamp:      base.Add(r.offset),
			Time:           r.time,
			TimeWithErrors: r.time,
		}
		if err := env.stores.Sessions.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return base
}

func TestHistoryForGroup_FilteredAndDescending(t *testing.T) {
	env := newTestEnv(t, nil)
	seedRuns(t, env)

	history, err := env.reporting.HistoryForGroup(context.Background(), "zug-a")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 zug-a records, got %d", len(history))
	}
	for i, rec := range history {
		if rec.GroupName != "zug-a" {
			t.Errorf("record %d belongs to %q", i, rec.GroupName)
		}
		if i > 0 && !rec.Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("records %d and %d not strictly descending", i-1, i)
		}
	}
}

func TestLeaderboard_BoundedAndSorted(t *testing.T) {
	env := newTestEnv(t, nil)
	seedRuns(t, env)
	ctx := context.Background()

	top, err := env.reporting.Leaderboard(ctx, 4)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(top))
	}
	groups := map[string]bool{}
	for i, rec := range top {
		groups[rec.GroupName] = true
		if i > 0 && rec.Time < top[i-1].Time {
			t.Errorf("leaderboard not sorted at %d", i)
		}
	}
	if top[0].Time != 88 || len(groups) < 2 {
		t.Errorf("expected fastest run first and several groups, got %+v", top)
	}

	all, err := env.reporting.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("expected all 6 runs when limit exceeds total, got %d", len(all))
	}

	for _, bad := range []int{0, -1, maxLeaderboardSize + 1} {
		if _, err := env.reporting.Leaderboard(ctx, bad); err == nil {
			t.Errorf("expected limit %d to be rejected", bad)
		}
	}
}

func TestGroupedTimeSeries(t *testing.T) {
	env := newTestEnv(t, nil)
	base := seedRuns(t, env)

	series, groups, err := env.reporting.GroupedTimeSeries(context.Background())
	if err != nil {
		t.Fatalf("time series: %v", err)
	}

	if len(groups) != 3 || groups[0] != "zug-a" || groups[1] != "zug-b" || groups[2] != "zug-c" {
		t.Fatalf("unexpected group order: %v", groups)
	}

	a := series["zug-a"]
	if len(a.Times) != 3 || a.Times[0] != 120 || a.Times[1] != 101 || a.Times[2] != 99 {
		t.Errorf("unexpected zug-a times: %v", a.Times)
	}
	if !a.Timestamps[0].Equal(base) {
		t.Errorf("expected first zug-a timestamp %v, got %v", base, a.Timestamps[0])
	}
	if len(series["zug-b"].Times) != 2 || len(series["zug-c"].Times) != 1 {
		t.Errorf("unexpected series sizes: %+v", series)
	}
}

func TestHistoryEntries_ResolvesTexts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.stores.Violations.Upsert(ctx, &models.Violation{ID: 3, Text: "Verteiler falsch gesetzt", Time: 10})

	rec := &models.SessionRecord{
		GroupName:      "zug-a",
		Timestamp:      time.Date(2025, 4, 1, 18, 5, 9, 0, time.UTC),
		Time:           90,
		TimeWithErrors: 110,
	}
	rec.Errors.Set(3, 2)
	rec.Errors.Set(5, 1)
	if err := env.stores.Sessions.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := env.reporting.HistoryEntries(ctx, "zug-a")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Timestamp != "2025-04-01 18:05:09" {
		t.Errorf("unexpected timestamp format %q", e.Timestamp)
	}
	if e.TotalErrors != 3 || len(e.Errors) != 2 {
		t.Fatalf("expected two non-zero counters totalling 3, got %+v", e)
	}
	if e.Errors[0].ID != 3 || e.Errors[0].Count != 2 || e.Errors[0].Text != "Verteiler falsch gesetzt" {
		t.Errorf("unexpected first detail: %+v", e.Errors[0])
	}
	if e.Errors[1].Text != "Fehler 5" {
		t.Errorf("expected seeded default text, got %q", e.Errors[1].Text)
	}
}
