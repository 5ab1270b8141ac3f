package services

import (
	"context"
	"testing"
	"time"
)

func newWeightService(t *testing.T) (*WeightService, *ProfileService, uint) {
	t.Helper()
	db := newTestDB(t)
	user := seedUser(t, db)
	seedProfile(t, db, user.ID)
	profiles := NewProfileService(db, testClock)
	insights := NewInsightService(db, testClock, nil, nil, nil)
	svc := NewWeightService(db, testClock, profiles, insights, 7)
	return svc, profiles, user.ID
}

func TestLogWeightComputesChange(t *testing.T) {
	svc, profiles, userID := newWeightService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	first, err := svc.Log(ctx, userID, 80, "", "", now)
	if err != nil {
		t.Fatalf("first log: %v", err)
	}
	if first.ChangeKg != nil {
		t.Fatalf("first entry change = %v, want nil", *first.ChangeKg)
	}

	second, err := svc.Log(ctx, userID, 79.2, "", "", now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("second log: %v", err)
	}
	if second.ChangeKg == nil || *second.ChangeKg != -0.8 {
		t.Fatalf("change = %v, want -0.8", second.ChangeKg)
	}

	// Profile follows the newest weigh-in, with recomputed goals.
	profile, err := profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if profile.CurrentWeight != 79.2 {
		t.Fatalf("profile weight = %v, want 79.2", profile.CurrentWeight)
	}
	if profile.BMR >= 1805 {
		t.Fatalf("BMR not recomputed: %d", profile.BMR)
	}
}

func TestBackdatedWeightDoesNotRegressProfile(t *testing.T) {
	svc, profiles, userID := newWeightService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if _, err := svc.Log(ctx, userID, 79, "", "", now); err != nil {
		t.Fatalf("log: %v", err)
	}
	// A heavier weigh-in for yesterday lands behind the newest entry.
	if _, err := svc.Log(ctx, userID, 82, "", "yesterday", now); err != nil {
		t.Fatalf("backdated log: %v", err)
	}

	profile, err := profiles.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if profile.CurrentWeight != 79 {
		t.Fatalf("profile weight = %v, want 79 (newest entry)", profile.CurrentWeight)
	}
}

func TestLogWeightValidation(t *testing.T) {
	svc, _, userID := newWeightService(t)
	ctx := context.Background()

	if _, err := svc.Log(ctx, userID, 10, "", "", time.Now()); err == nil {
		t.Fatal("implausibly low weight accepted")
	}
	if _, err := svc.Log(ctx, userID, 500, "", "", time.Now()); err == nil {
		t.Fatal("implausibly high weight accepted")
	}
}

func TestWeightHistoryNewestFirst(t *testing.T) {
	svc, _, userID := newWeightService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	for i, w := range []float64{81, 80.5, 80} {
		if _, err := svc.Log(ctx, userID, w, "", "", now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	history, err := svc.History(ctx, userID, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0]["weight"] != 80.0 {
		t.Fatalf("first entry = %v, want newest (80)", history[0]["weight"])
	}
}
