package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newActivityService(t *testing.T, withProfile bool) (*ActivityService, uint) {
	t.Helper()
	db := newTestDB(t)
	user := seedUser(t, db)
	if withProfile {
		seedProfile(t, db, user.ID) // 80 kg
	}
	insights := NewInsightService(db, testClock, nil, nil, nil)
	svc := NewActivityService(db, testClock, insights, 7)
	return svc, user.ID
}

func TestLogActivityDerivesBurn(t *testing.T) {
	svc, userID := newActivityService(t, true)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	activity, err := svc.Log(ctx, userID, ActivityInput{Type: "running", DurationMin: 30, Intensity: "moderate"}, now)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	// 9.8 MET * 80 kg * 0.5 h = 392.
	if activity.CaloriesBurned != 392 {
		t.Fatalf("burn = %d, want 392", activity.CaloriesBurned)
	}
}

func TestLogActivityFallbackWeight(t *testing.T) {
	svc, userID := newActivityService(t, false)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	activity, err := svc.Log(ctx, userID, ActivityInput{Type: "running", DurationMin: 60, Intensity: "moderate"}, now)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	// No profile: 70 kg assumed, 9.8 * 70 = 686.
	if activity.CaloriesBurned != 686 {
		t.Fatalf("burn = %d, want 686", activity.CaloriesBurned)
	}
}

func TestLogActivityExplicitBurnWins(t *testing.T) {
	svc, userID := newActivityService(t, true)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	activity, err := svc.Log(ctx, userID, ActivityInput{Type: "gym", DurationMin: 45, Intensity: "high", CaloriesBurned: 500}, now)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if activity.CaloriesBurned != 500 {
		t.Fatalf("burn = %d, want caller's 500", activity.CaloriesBurned)
	}
}

func TestLogActivityNormalization(t *testing.T) {
	svc, userID := newActivityService(t, true)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	activity, err := svc.Log(ctx, userID, ActivityInput{Type: "Parkour", DurationMin: 30, Intensity: "extreme"}, now)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if activity.Type != "other" || activity.Intensity != "moderate" {
		t.Fatalf("normalized to %s/%s, want other/moderate", activity.Type, activity.Intensity)
	}
}

func TestLogActivityDurationBounds(t *testing.T) {
	svc, userID := newActivityService(t, true)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if _, err := svc.Log(ctx, userID, ActivityInput{Type: "walking", DurationMin: 0}, now); err == nil {
		t.Fatal("zero duration accepted")
	}
	if _, err := svc.Log(ctx, userID, ActivityInput{Type: "walking", DurationMin: 601}, now); err == nil {
		t.Fatal("11-hour duration accepted")
	}
	if _, err := svc.Log(ctx, userID, ActivityInput{Type: "walking", DurationMin: 600}, now); err != nil {
		t.Fatalf("boundary duration rejected: %v", err)
	}
}

func TestUpdateActivityRecomputesBurn(t *testing.T) {
	svc, userID := newActivityService(t, true)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	activity, err := svc.Log(ctx, userID, ActivityInput{Type: "running", DurationMin: 30, Intensity: "moderate"}, now)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	newDuration := 60
	updated, err := svc.Update(ctx, userID, activity.ID, ActivityPatch{DurationMin: &newDuration}, now)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// Doubled duration doubles the derived burn.
	if updated.CaloriesBurned != 784 {
		t.Fatalf("burn after update = %d, want 784", updated.CaloriesBurned)
	}
}

func TestActivityOwnership(t *testing.T) {
	svc, userID := newActivityService(t, true)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	activity, err := svc.Log(ctx, userID, ActivityInput{Type: "yoga", DurationMin: 20}, now)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := svc.Delete(ctx, userID+1, activity.ID, now); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrEntryNotFound", err)
	}
	if err := svc.Delete(ctx, userID, activity.ID, now); err != nil {
		t.Fatalf("own delete: %v", err)
	}
}
