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

// WeightLogResult is a logged entry plus the delta against the previous one.
type WeightLogResult struct {
	Entry    *models.WeightEntry
	ChangeKg *float64
}

type WeightService struct {
	db       *gorm.DB
	clock    utils.Clock
	profiles *ProfileService
	insights *InsightService

	backdateLimitDays int
}

func NewWeightService(db *gorm.DB, clock utils.Clock, profiles *ProfileService, insights *InsightService, backdateLimitDays int) *WeightService {
	return &WeightService{db: db, clock: clock, profiles: profiles, insights: insights, backdateLimitDays: backdateLimitDays}
}

// Log records a weigh-in. When the entry is the newest on record it also
// refreshes the profile's current weight and every goal derived from it; a
// backdated entry behind a newer one leaves the profile alone.
func (s *WeightService) Log(ctx context.Context, userID uint, weightKg float64, notes, recordDate string, now time.Time) (*WeightLogResult, error) {
	if weightKg < 20 || weightKg > 400 {
		return nil, errors.New("weight must be between 20 and 400 kg")
	}

	recordedAt := now.UTC()
	if ts := utils.ParseRecordDate(recordDate, now, s.clock, s.backdateLimitDays); ts != nil {
		recordedAt = *ts
	}

	var latest models.WeightEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		First(&latest).Error
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := models.WeightEntry{
		UserID:     userID,
		Weight:     weightKg,
		Notes:      strings.TrimSpace(notes),
		RecordedAt: recordedAt,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}

	res := &WeightLogResult{Entry: &entry}
	if hadPrevious {
		change := math.Round((weightKg-latest.Weight)*10) / 10
		res.ChangeKg = &change
	}

	if !hadPrevious || !recordedAt.Before(latest.RecordedAt) {
		if err := s.profiles.SetCurrentWeight(ctx, userID, weightKg, now); err != nil {
			return nil, err
		}
	}
	s.invalidateIfToday(ctx, userID, recordedAt, now)
	return res, nil
}

// History returns the most recent weigh-ins, newest first.
func (s *WeightService) History(ctx context.Context, userID uint, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.WeightEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			"id":          e.ID,
			"weight":      e.Weight,
			"notes":       e.Notes,
			"recorded_at": e.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *WeightService) invalidateIfToday(ctx context.Context, userID uint, entryAt, now time.Time) {
	if s.clock.LocalDate(entryAt, now) != s.clock.LocalDate(now, now) {
		return
	}
	if err := s.insights.Invalidate(ctx, userID, now); err != nil {
		log.Printf("weight: insight invalidation failed: %v", err)
	}
}
