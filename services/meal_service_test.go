package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newMealService(t *testing.T) (*MealService, *InsightService, uint) {
	t.Helper()
	db := newTestDB(t)
	user := seedUser(t, db)
	insights := NewInsightService(db, testClock, nil, nil, nil)
	svc := NewMealService(db, testClock, insights, 7, 3*time.Minute, 0.10)
	return svc, insights, user.ID
}

func TestMealPayloadCanonical(t *testing.T) {
	in := MealPayload{
		Name:         "Oatmeal",
		CaloriesKcal: 320,
		Protein:      12,
		MealType:     "brunch",
		Score:        15,
		Date:         "yesterday",
	}.Canonical()

	if in.Name != "Oatmeal" {
		t.Fatalf("name = %q", in.Name)
	}
	if in.Calories != 320 || in.Proteins != 12 {
		t.Fatalf("nutrients = %d kcal / %v g", in.Calories, in.Proteins)
	}
	if in.Type != "other" {
		t.Fatalf("unknown type normalized to %q, want other", in.Type)
	}
	if in.Score != 10 {
		t.Fatalf("score = %d, want clamp to 10", in.Score)
	}
	if in.RecordDate != "yesterday" {
		t.Fatalf("record date = %q", in.RecordDate)
	}
}

func TestMealPayloadCanonicalPrefersPrimary(t *testing.T) {
	in := MealPayload{MealName: "Soup", Name: "ignored", Calories: 150, CaloriesKcal: 999}.Canonical()
	if in.Name != "Soup" || in.Calories != 150 {
		t.Fatalf("primary fields lost: %+v", in)
	}
	// Score defaults to 5 when absent.
	if in.Score != 5 {
		t.Fatalf("default score = %d, want 5", in.Score)
	}
}

func TestMealPayloadCanonicalClampsNegatives(t *testing.T) {
	in := MealPayload{MealName: "Ghost meal", Calories: -500, WaterML: -100}.Canonical()
	if in.Calories != 0 {
		t.Fatalf("calories = %d, want clamp to 0", in.Calories)
	}
	if in.WaterML != 0 {
		t.Fatalf("water = %d, want clamp to 0", in.WaterML)
	}
}

func TestUpdateMealClampsNegativeCalories(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	meal, _, err := svc.Log(ctx, userID, MealInput{Name: "Toast", Calories: 180, Type: "breakfast", Score: 5}, now)
	if err != nil {
		t.Fatalf("log: %v", err)
	}

	bad := -50
	updated, err := svc.Update(ctx, userID, meal.ID, MealPatch{Calories: &bad}, now)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Calories != 0 {
		t.Fatalf("calories = %d, want clamp to 0", updated.Calories)
	}
}

func TestLogMealDuplicateSuppressed(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	first, dup, err := svc.Log(ctx, userID, MealInput{Name: "Oatmeal", Calories: 300, Type: "breakfast", Score: 5}, now)
	if err != nil || dup {
		t.Fatalf("first log: dup=%v err=%v", dup, err)
	}

	// Same name, calories within 10%, two minutes later.
	second, dup, err := svc.Log(ctx, userID, MealInput{Name: "oatmeal", Calories: 310, Type: "breakfast", Score: 5}, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second log: %v", err)
	}
	if !dup {
		t.Fatal("expected duplicate suppression")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate returned id %d, want existing %d", second.ID, first.ID)
	}

	// Calories outside tolerance is a distinct meal.
	third, dup, err := svc.Log(ctx, userID, MealInput{Name: "Oatmeal", Calories: 400, Type: "breakfast", Score: 5}, now.Add(2*time.Minute))
	if err != nil || dup {
		t.Fatalf("distinct log: dup=%v err=%v", dup, err)
	}
	if third.ID == first.ID {
		t.Fatal("distinct meal collapsed into existing entry")
	}
}

func TestDuplicateToleranceRelativeToIncoming(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	first, _, err := svc.Log(ctx, userID, MealInput{Name: "Pasta", Calories: 300, Type: "lunch", Score: 5}, now)
	if err != nil {
		t.Fatalf("first log: %v", err)
	}

	// |300-272|/272 is just over 10%, so 272 is a distinct meal even though
	// the gap measured against the stored 300 would pass.
	second, dup, err := svc.Log(ctx, userID, MealInput{Name: "Pasta", Calories: 272, Type: "lunch", Score: 5}, now.Add(time.Minute))
	if err != nil || dup {
		t.Fatalf("log 272: dup=%v err=%v", dup, err)
	}
	if second.ID == first.ID {
		t.Fatal("272 collapsed into the 300 entry")
	}

	// |300-330|/330 is just under 10%, so a 330 retry matches the stored 300.
	third, dup, err := svc.Log(ctx, userID, MealInput{Name: "Pasta", Calories: 330, Type: "lunch", Score: 5}, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("log 330: %v", err)
	}
	if !dup || third.ID != first.ID {
		t.Fatalf("330 should match 300 within 10%%: dup=%v id=%d", dup, third.ID)
	}
}

func TestLogMealDuplicateWindowExpires(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	first, _, err := svc.Log(ctx, userID, MealInput{Name: "Coffee", Calories: 50, Type: "other", Score: 5}, now)
	if err != nil {
		t.Fatalf("first log: %v", err)
	}
	second, dup, err := svc.Log(ctx, userID, MealInput{Name: "Coffee", Calories: 50, Type: "other", Score: 5}, now.Add(4*time.Minute))
	if err != nil || dup {
		t.Fatalf("log after window: dup=%v err=%v", dup, err)
	}
	if second.ID == first.ID {
		t.Fatal("suppression applied outside the window")
	}
}

func TestLogMealBackdatedSkipsDuplicateCheck(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if _, _, err := svc.Log(ctx, userID, MealInput{Name: "Dinner", Calories: 600, Type: "dinner", Score: 5}, now); err != nil {
		t.Fatalf("first log: %v", err)
	}
	meal, dup, err := svc.Log(ctx, userID, MealInput{Name: "Dinner", Calories: 600, Type: "dinner", Score: 5, RecordDate: "yesterday"}, now)
	if err != nil {
		t.Fatalf("backdated log: %v", err)
	}
	if dup {
		t.Fatal("backdated entry must bypass duplicate suppression")
	}
	// Pinned to yesterday's local noon, UTC+2.
	want := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)
	if !meal.AteAt.Equal(want) {
		t.Fatalf("backdated AteAt = %v, want %v", meal.AteAt, want)
	}
}

func TestLogMealInvalidRecordDateFallsBackToNow(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	meal, _, err := svc.Log(ctx, userID, MealInput{Name: "Lunch", Calories: 500, Type: "lunch", Score: 5, RecordDate: "2025-01-01"}, now)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !meal.AteAt.Equal(now) {
		t.Fatalf("AteAt = %v, want fallback to now", meal.AteAt)
	}
}

func TestMealMutationInvalidatesTodayCache(t *testing.T) {
	svc, insights, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if err := insights.Put(ctx, userID, InsightDaily, "stale narrative", now); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := svc.Log(ctx, userID, MealInput{Name: "Snack", Calories: 200, Type: "snack", Score: 5}, now); err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, ok, _ := insights.Get(ctx, userID, InsightDaily, now); ok {
		t.Fatal("today's cache survived a today mutation")
	}
}

func TestBackdatedMealKeepsTodayCache(t *testing.T) {
	svc, insights, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if err := insights.Put(ctx, userID, InsightDaily, "fresh narrative", now); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := svc.Log(ctx, userID, MealInput{Name: "Snack", Calories: 200, Type: "snack", Score: 5, RecordDate: "yesterday"}, now); err != nil {
		t.Fatalf("backdated log: %v", err)
	}
	if _, ok, _ := insights.Get(ctx, userID, InsightDaily, now); !ok {
		t.Fatal("backdated mutation cleared today's cache")
	}
}

func TestUpdateMealOwnership(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	meal, _, err := svc.Log(ctx, userID, MealInput{Name: "Toast", Calories: 180, Type: "breakfast", Score: 5}, now)
	if err != nil {
		t.Fatalf("log: %v", err)
	}

	// Another user cannot see or edit the entry.
	if _, err := svc.Update(ctx, userID+1, meal.ID, MealPatch{}, now); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("foreign update err = %v, want ErrEntryNotFound", err)
	}
	if err := svc.Delete(ctx, userID+1, meal.ID, now); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrEntryNotFound", err)
	}

	newCal := 220
	updated, err := svc.Update(ctx, userID, meal.ID, MealPatch{Calories: &newCal}, now)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Calories != 220 || updated.Name != "Toast" {
		t.Fatalf("partial update result: %+v", updated)
	}
}

func TestMealHistoryNewestFirst(t *testing.T) {
	svc, _, userID := newMealService(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"One", "Two", "Three"} {
		if _, _, err := svc.Log(ctx, userID, MealInput{Name: name, Calories: 100 * (i + 1), Type: "other", Score: 5}, now.Add(time.Duration(i)*10*time.Minute)); err != nil {
			t.Fatalf("log %s: %v", name, err)
		}
	}

	history, err := svc.History(ctx, userID, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0]["meal_name"] != "Three" {
		t.Fatalf("first entry = %v, want newest", history[0]["meal_name"])
	}
}
