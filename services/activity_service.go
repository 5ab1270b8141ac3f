package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/gorm"
)

const (
	minActivityMinutes = 1
	maxActivityMinutes = 600
	fallbackWeightKg   = 70.0
)

var activityTypes = map[string]bool{
	"walking":  true,
	"running":  true,
	"cycling":  true,
	"gym":      true,
	"swimming": true,
	"yoga":     true,
	"other":    true,
}

// ActivityInput is a normalized activity-log request. CaloriesBurned zero
// means derive from the MET table.
type ActivityInput struct {
	Type           string `json:"activity_type"`
	DurationMin    int    `json:"duration_min"`
	Intensity      string `json:"intensity"`
	CaloriesBurned int    `json:"calories_burned"`
	Description    string `json:"description"`
	Notes          string `json:"notes"`
	RecordDate     string `json:"record_date"`
}

// ActivityPatch carries a partial edit. Nil leaves the field alone.
type ActivityPatch struct {
	Type           *string `json:"activity_type"`
	DurationMin    *int    `json:"duration_min"`
	Intensity      *string `json:"intensity"`
	CaloriesBurned *int    `json:"calories_burned"`
	Description    *string `json:"description"`
	Notes          *string `json:"notes"`
}

type ActivityService struct {
	db       *gorm.DB
	clock    utils.Clock
	insights *InsightService

	backdateLimitDays int
}

func NewActivityService(db *gorm.DB, clock utils.Clock, insights *InsightService, backdateLimitDays int) *ActivityService {
	return &ActivityService{db: db, clock: clock, insights: insights, backdateLimitDays: backdateLimitDays}
}

// Log records an activity. When the caller does not supply a burn figure it
// is derived from the MET table using the profile weight, falling back to
// 70 kg for users without a profile.
func (s *ActivityService) Log(ctx context.Context, userID uint, in ActivityInput, now time.Time) (*models.Activity, error) {
	if in.DurationMin < minActivityMinutes || in.DurationMin > maxActivityMinutes {
		return nil, errors.New("duration_min must be between 1 and 600")
	}

	actType := strings.ToLower(strings.TrimSpace(in.Type))
	if !activityTypes[actType] {
		actType = "other"
	}
	intensity := strings.ToLower(strings.TrimSpace(in.Intensity))
	if intensity != "low" && intensity != "high" {
		intensity = "moderate"
	}

	burned := in.CaloriesBurned
	if burned <= 0 {
		burned = utils.CaloriesBurned(actType, intensity, s.weightFor(ctx, userID), in.DurationMin)
	}

	doneAt := now.UTC()
	if ts := utils.ParseRecordDate(in.RecordDate, now, s.clock, s.backdateLimitDays); ts != nil {
		doneAt = *ts
	}

	activity := models.Activity{
		UserID:         userID,
		Type:           actType,
		DurationMin:    in.DurationMin,
		Intensity:      intensity,
		CaloriesBurned: burned,
		Description:    strings.TrimSpace(in.Description),
		Notes:          strings.TrimSpace(in.Notes),
		DoneAt:         doneAt,
	}
	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return nil, err
	}
	s.invalidateIfToday(ctx, userID, doneAt, now)
	return &activity, nil
}

// Update applies a partial edit to the caller's own activity. When duration,
// type or intensity change and the stored burn was MET-derived there is no
// way to tell, so the burn is recomputed unless the patch sets it directly.
func (s *ActivityService) Update(ctx context.Context, userID, activityID uint, patch ActivityPatch, now time.Time) (*models.Activity, error) {
	activity, err := s.owned(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}

	recompute := false
	if patch.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*patch.Type))
		if !activityTypes[t] {
			t = "other"
		}
		activity.Type = t
		recompute = true
	}
	if patch.DurationMin != nil {
		if *patch.DurationMin < minActivityMinutes || *patch.DurationMin > maxActivityMinutes {
			return nil, errors.New("duration_min must be between 1 and 600")
		}
		activity.DurationMin = *patch.DurationMin
		recompute = true
	}
	if patch.Intensity != nil {
		i := strings.ToLower(strings.TrimSpace(*patch.Intensity))
		if i != "low" && i != "high" {
			i = "moderate"
		}
		activity.Intensity = i
		recompute = true
	}
	if patch.Description != nil {
		activity.Description = *patch.Description
	}
	if patch.Notes != nil {
		activity.Notes = *patch.Notes
	}
	if patch.CaloriesBurned != nil && *patch.CaloriesBurned > 0 {
		activity.CaloriesBurned = *patch.CaloriesBurned
	} else if recompute {
		activity.CaloriesBurned = utils.CaloriesBurned(activity.Type, activity.Intensity, s.weightFor(ctx, userID), activity.DurationMin)
	}

	if err := s.db.WithContext(ctx).Save(activity).Error; err != nil {
		return nil, err
	}
	s.invalidateIfToday(ctx, userID, activity.DoneAt, now)
	return activity, nil
}

// Delete removes the caller's own activity.
func (s *ActivityService) Delete(ctx context.Context, userID, activityID uint, now time.Time) error {
	activity, err := s.owned(ctx, userID, activityID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(activity).Error; err != nil {
		return err
	}
	s.invalidateIfToday(ctx, userID, activity.DoneAt, now)
	return nil
}

// History returns the caller's most recent activities, newest first.
func (s *ActivityService) History(ctx context.Context, userID uint, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = 10
	}
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("done_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(activities))
	for i := range activities {
		out = append(out, activities[i].ToDict())
	}
	return out, nil
}

func (s *ActivityService) owned(ctx context.Context, userID, activityID uint) (*models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", activityID, userID).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &activity, nil
}

func (s *ActivityService) weightFor(ctx context.Context, userID uint) float64 {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil || profile.CurrentWeight <= 0 {
		return fallbackWeightKg
	}
	return profile.CurrentWeight
}

func (s *ActivityService) invalidateIfToday(ctx context.Context, userID uint, entryAt, now time.Time) {
	if s.clock.LocalDate(entryAt, now) != s.clock.LocalDate(now, now) {
		return
	}
	if err := s.insights.Invalidate(ctx, userID, now); err != nil {
		log.Printf("activity: insight invalidation failed: %v", err)
	}
}
