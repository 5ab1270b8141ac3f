package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/gorm"
)

// Insight kinds served by the narrative layer.
const (
	InsightDaily      = "daily"
	InsightWeek       = "week"
	InsightMonth      = "month"
	InsightTips       = "tips"
	InsightPrediction = "prediction"
)

// InsightService owns the per-(user, kind, local date) narrative cache and
// the calls out to the narrative collaborator. The cache only ever mutates
// for today's local date: once a day has passed its entries are history.
type InsightService struct {
	db    *gorm.DB
	clock utils.Clock
	gen   *NarrativeClient

	summaries   *SummaryService
	predictions *PredictionService
}

func NewInsightService(db *gorm.DB, clock utils.Clock, gen *NarrativeClient, summaries *SummaryService, predictions *PredictionService) *InsightService {
	return &InsightService{db: db, clock: clock, gen: gen, summaries: summaries, predictions: predictions}
}

// Get returns the cached narrative for (user, kind, today), if any.
func (s *InsightService) Get(ctx context.Context, userID uint, kind string, now time.Time) (string, bool, error) {
	var entry models.InsightCache
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND date = ?", userID, kind, s.clock.LocalDate(now, now)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Text, true, nil
}

// Put writes or replaces the narrative for (user, kind, today).
func (s *InsightService) Put(ctx context.Context, userID uint, kind, text string, now time.Time) error {
	date := s.clock.LocalDate(now, now)
	entry := models.InsightCache{UserID: userID, Kind: kind, Date: date, Text: text}
	return s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND date = ?", userID, kind, date).
		Assign(models.InsightCache{Text: text}).
		FirstOrCreate(&entry).Error
}

// Invalidate drops every cached kind for the user's current local day.
// Entries for past dates stay untouched.
func (s *InsightService) Invalidate(ctx context.Context, userID uint, now time.Time) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, s.clock.LocalDate(now, now)).
		Delete(&models.InsightCache{}).Error
}

// InsightResult is what the surfaces hand back: cached or fresh narrative,
// or, when the collaborator is down, the raw numbers it would have
// described, flagged as degraded.
type InsightResult struct {
	Kind     string      `json:"kind"`
	Date     string      `json:"date"`
	Text     string      `json:"text,omitempty"`
	Cached   bool        `json:"cached"`
	Degraded bool        `json:"degraded,omitempty"`
	Numbers  interface{} `json:"numbers,omitempty"`
}

// Insight serves the narrative for the given kind, regenerating on a cache
// miss. A collaborator failure never bubbles up as an error: the caller
// gets the computed numbers without prose instead.
func (s *InsightService) Insight(ctx context.Context, user *models.User, kind string, now time.Time) (*InsightResult, error) {
	res := &InsightResult{Kind: kind, Date: s.clock.LocalDate(now, now)}

	text, ok, err := s.Get(ctx, user.ID, kind, now)
	if err != nil {
		return nil, err
	}
	if ok {
		res.Text = text
		res.Cached = true
		return res, nil
	}

	numbers, prompt, err := s.buildPrompt(ctx, user, kind, now)
	if err != nil {
		return nil, err
	}
	res.Numbers = numbers

	generated, err := s.gen.Generate(ctx, insightSystemPrompt, prompt)
	if err != nil {
		res.Degraded = true
		return res, nil
	}
	res.Text = generated
	if err := s.Put(ctx, user.ID, kind, generated, now); err != nil {
		return nil, err
	}
	return res, nil
}

const insightSystemPrompt = "You are a concise nutrition coach. Reply with a short, practical analysis in plain text."

func (s *InsightService) buildPrompt(ctx context.Context, user *models.User, kind string, now time.Time) (interface{}, string, error) {
	switch kind {
	case InsightWeek:
		week, err := s.summaries.Week(ctx, user.ID, now)
		if err != nil {
			return nil, "", err
		}
		return week, fmt.Sprintf(
			"Review this week of nutrition tracking and summarize the trends: %+v", week.Totals), nil
	case InsightMonth:
		month, err := s.summaries.Month(ctx, user.ID, now)
		if err != nil {
			return nil, "", err
		}
		return month, fmt.Sprintf(
			"Review this month of nutrition tracking, %d days tracked, and summarize how it went: %+v", month.DaysTracked, month.Totals), nil
	case InsightTips:
		week, err := s.summaries.Week(ctx, user.ID, now)
		if err != nil {
			return nil, "", err
		}
		return week, fmt.Sprintf(
			"Give 3-5 practical nutrition tips based on this week of tracking data: %+v", week.Totals), nil
	case InsightPrediction:
		pred, err := s.predictions.Predict(ctx, user.ID, now)
		if err != nil {
			return nil, "", err
		}
		return pred, fmt.Sprintf(
			"Explain this weight trajectory to the user in a couple of sentences: %+v", pred), nil
	default: // daily
		today, err := s.summaries.Today(ctx, user.ID, now)
		if err != nil {
			return nil, "", err
		}
		return today, fmt.Sprintf(
			"Analyze today's nutrition and point out one thing to improve: %+v", today.Totals), nil
	}
}
