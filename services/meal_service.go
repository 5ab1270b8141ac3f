package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/gorm"
)

// ErrEntryNotFound covers lookups of entries that do not exist or belong to
// another user. The two cases are deliberately indistinguishable.
var ErrEntryNotFound = errors.New("entry not found")

var mealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
	"other":     true,
}

// MealPayload accepts the loose field spellings different clients send.
// Canonical resolves each pair, preferring the primary name.
type MealPayload struct {
	MealName     string  `json:"meal_name"`
	Name         string  `json:"name"`
	Calories     float64 `json:"calories"`
	CaloriesKcal float64 `json:"calories_kcal"`
	Proteins     float64 `json:"proteins"`
	Protein      float64 `json:"protein"`
	Fats         float64 `json:"fats"`
	Fat          float64 `json:"fat"`
	Carbs        float64 `json:"carbs"`
	Carbohydrate float64 `json:"carbohydrates"`
	Fiber        float64 `json:"fiber"`
	WaterML      float64 `json:"water_ml"`
	MealType     string  `json:"meal_type"`
	Score        float64 `json:"healthiness_score"`
	Notes        string  `json:"notes"`
	RecordDate   string  `json:"record_date"`
	Date         string  `json:"date"`
}

// MealInput is the single normalized shape every write path works from.
type MealInput struct {
	Name       string
	Calories   int
	Proteins   float64
	Fats       float64
	Carbs      float64
	Fiber      float64
	WaterML    int
	Type       string
	Score      int
	Notes      string
	RecordDate string
}

// Canonical collapses the alias pairs and applies the defaults: unset
// nutrients stay zero, negative calories and water clamp to zero, type falls
// back to other, score defaults to 5 and is clamped into 1..10.
func (p MealPayload) Canonical() MealInput {
	in := MealInput{
		Name:       firstString(p.MealName, p.Name),
		Calories:   clampNonNegative(int(math.Round(firstFloat(p.Calories, p.CaloriesKcal)))),
		Proteins:   firstFloat(p.Proteins, p.Protein),
		Fats:       firstFloat(p.Fats, p.Fat),
		Carbs:      firstFloat(p.Carbs, p.Carbohydrate),
		Fiber:      p.Fiber,
		WaterML:    clampNonNegative(int(math.Round(p.WaterML))),
		Type:       strings.ToLower(strings.TrimSpace(p.MealType)),
		Notes:      strings.TrimSpace(p.Notes),
		RecordDate: strings.TrimSpace(firstString(p.RecordDate, p.Date)),
	}
	if !mealTypes[in.Type] {
		in.Type = "other"
	}
	score := p.Score
	if score == 0 {
		score = 5
	}
	in.Score = int(math.Round(math.Min(10, math.Max(1, score))))
	return in
}

func firstString(primary, alias string) string {
	if strings.TrimSpace(primary) != "" {
		return strings.TrimSpace(primary)
	}
	return strings.TrimSpace(alias)
}

func firstFloat(primary, alias float64) float64 {
	if primary != 0 {
		return primary
	}
	return alias
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// MealPatch carries a partial update. Nil means leave the field alone.
type MealPatch struct {
	Name     *string  `json:"meal_name"`
	Calories *int     `json:"calories"`
	Proteins *float64 `json:"proteins"`
	Fats     *float64 `json:"fats"`
	Carbs    *float64 `json:"carbs"`
	Fiber    *float64 `json:"fiber"`
	WaterML  *int     `json:"water_ml"`
	Type     *string  `json:"meal_type"`
	Score    *int     `json:"healthiness_score"`
	Notes    *string  `json:"notes"`
}

type MealService struct {
	db       *gorm.DB
	clock    utils.Clock
	insights *InsightService

	backdateLimitDays  int
	duplicateWindow    time.Duration
	duplicateTolerance float64
}

func NewMealService(db *gorm.DB, clock utils.Clock, insights *InsightService, backdateLimitDays int, dupWindow time.Duration, dupTolerance float64) *MealService {
	return &MealService{
		db:                 db,
		clock:              clock,
		insights:           insights,
		backdateLimitDays:  backdateLimitDays,
		duplicateWindow:    dupWindow,
		duplicateTolerance: dupTolerance,
	}
}

// Log records a meal. A non-backdated entry that repeats a just-logged one
// (same name, calories within tolerance, inside the trailing window) is
// suppressed: the existing row comes back with duplicate set, as a success.
func (s *MealService) Log(ctx context.Context, userID uint, in MealInput, now time.Time) (*models.Meal, bool, error) {
	if in.Name == "" {
		return nil, false, errors.New("meal_name is required")
	}

	ateAt := now.UTC()
	backdated := false
	if ts := utils.ParseRecordDate(in.RecordDate, now, s.clock, s.backdateLimitDays); ts != nil {
		ateAt = *ts
		backdated = true
	}

	if !backdated {
		if existing, err := s.findRecentDuplicate(ctx, userID, in, now); err != nil {
			return nil, false, err
		} else if existing != nil {
			return existing, true, nil
		}
	}

	meal := models.Meal{
		UserID:   userID,
		Name:     in.Name,
		Calories: in.Calories,
		Proteins: in.Proteins,
		Fats:     in.Fats,
		Carbs:    in.Carbs,
		Fiber:    in.Fiber,
		WaterML:  in.WaterML,
		Type:     in.Type,
		Score:    in.Score,
		Notes:    in.Notes,
		AteAt:    ateAt,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, false, err
	}
	s.invalidateIfToday(ctx, userID, ateAt, now)
	return &meal, false, nil
}

// LogWater records a plain water entry. It carries no calories and no
// healthiness score, so it never skews the nutrition rollups.
func (s *MealService) LogWater(ctx context.Context, userID uint, amountML int, recordDate string, now time.Time) (*models.Meal, error) {
	if amountML <= 0 {
		return nil, errors.New("amount_ml must be positive")
	}

	ateAt := now.UTC()
	if ts := utils.ParseRecordDate(recordDate, now, s.clock, s.backdateLimitDays); ts != nil {
		ateAt = *ts
	}

	meal := models.Meal{
		UserID:  userID,
		Name:    "Water",
		WaterML: amountML,
		Type:    "other",
		AteAt:   ateAt,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, err
	}
	s.invalidateIfToday(ctx, userID, ateAt, now)
	return &meal, nil
}

// Update applies a partial edit to the caller's own meal.
func (s *MealService) Update(ctx context.Context, userID, mealID uint, patch MealPatch, now time.Time) (*models.Meal, error) {
	meal, err := s.owned(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Calories != nil {
		updates["calories"] = clampNonNegative(*patch.Calories)
	}
	if patch.Proteins != nil {
		updates["proteins"] = *patch.Proteins
	}
	if patch.Fats != nil {
		updates["fats"] = *patch.Fats
	}
	if patch.Carbs != nil {
		updates["carbs"] = *patch.Carbs
	}
	if patch.Fiber != nil {
		updates["fiber"] = *patch.Fiber
	}
	if patch.WaterML != nil {
		updates["water_ml"] = clampNonNegative(*patch.WaterML)
	}
	if patch.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*patch.Type))
		if !mealTypes[t] {
			t = "other"
		}
		updates["type"] = t
	}
	if patch.Score != nil {
		updates["score"] = int(math.Min(10, math.Max(1, float64(*patch.Score))))
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if len(updates) == 0 {
		return meal, nil
	}

	if err := s.db.WithContext(ctx).Model(meal).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.invalidateIfToday(ctx, userID, meal.AteAt, now)
	return meal, nil
}

// Delete removes the caller's own meal.
func (s *MealService) Delete(ctx context.Context, userID, mealID uint, now time.Time) error {
	meal, err := s.owned(ctx, userID, mealID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(meal).Error; err != nil {
		return err
	}
	s.invalidateIfToday(ctx, userID, meal.AteAt, now)
	return nil
}

// History returns the caller's most recent meals, newest first.
func (s *MealService) History(ctx context.Context, userID uint, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = 10
	}
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ate_at DESC").
		Limit(limit).
		Find(&meals).Error
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(meals))
	for i := range meals {
		out = append(out, meals[i].ToDict())
	}
	return out, nil
}

func (s *MealService) owned(ctx context.Context, userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &meal, nil
}

// findRecentDuplicate looks for a meal with the same name and near-equal
// calories inside the trailing window. Comparison happens in Go so the
// tolerance rule stays in one place.
func (s *MealService) findRecentDuplicate(ctx context.Context, userID uint, in MealInput, now time.Time) (*models.Meal, error) {
	since := now.UTC().Add(-s.duplicateWindow)
	var recent []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at > ?", userID, since).
		Order("ate_at DESC").
		Find(&recent).Error
	if err != nil {
		return nil, err
	}
	for i := range recent {
		if !strings.EqualFold(recent[i].Name, in.Name) {
			continue
		}
		if caloriesClose(recent[i].Calories, in.Calories, s.duplicateTolerance) {
			return &recent[i], nil
		}
	}
	return nil, nil
}

// The tolerance is relative to the incoming entry, since that is the value
// the retrying client just resubmitted.
func caloriesClose(existing, incoming int, tolerance float64) bool {
	if incoming == 0 {
		return existing == 0
	}
	diff := math.Abs(float64(existing)-float64(incoming)) / float64(incoming)
	return diff <= tolerance
}

// invalidateIfToday drops today's cached insights when the touched entry
// logically belongs to today. Backdated work leaves the cache alone.
func (s *MealService) invalidateIfToday(ctx context.Context, userID uint, entryAt, now time.Time) {
	if s.clock.LocalDate(entryAt, now) != s.clock.LocalDate(now, now) {
		return
	}
	if err := s.insights.Invalidate(ctx, userID, now); err != nil {
		log.Printf("meal: insight invalidation failed: %v", err)
	}
}
