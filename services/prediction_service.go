package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/gorm"
)

// KcalPerKg is the energy equivalent of one kilogram of body mass.
const KcalPerKg = 7700.0

// deadBandKcal is the daily balance below which the trajectory is reported
// as stable rather than a real trend.
const deadBandKcal = 100

// minDaysOfData is the fewest distinct tracked days a projection needs.
const minDaysOfData = 3

// Prediction is the weight-trajectory projection over the stats window.
type Prediction struct {
	Sufficient       bool     `json:"sufficient"`
	DaysOfData       int      `json:"days_of_data"`
	AvgDailyCalories int      `json:"avg_daily_calories,omitempty"`
	TDEE             int      `json:"tdee,omitempty"`
	DailyDeficit     int      `json:"daily_deficit,omitempty"`
	Direction        string   `json:"direction,omitempty"`
	MonthlyChangeKg  float64  `json:"monthly_change_kg,omitempty"`
	WeeklyRateKg     float64  `json:"weekly_rate_kg,omitempty"`
	WeeksToTarget    *float64 `json:"weeks_to_target,omitempty"`
	AvgDailyProteins float64  `json:"avg_daily_proteins,omitempty"`
	ProteinPct       int      `json:"protein_pct,omitempty"`
	ProteinAdequacy  string   `json:"protein_adequacy,omitempty"`
	ConsistencyPct   int      `json:"consistency_pct,omitempty"`
	Consistency      string   `json:"consistency,omitempty"`
}

// PredictionService projects weight change from recent intake versus the
// profile's maintenance estimate.
type PredictionService struct {
	db         *gorm.DB
	clock      utils.Clock
	windowDays int
}

func NewPredictionService(db *gorm.DB, clock utils.Clock, windowDays int) *PredictionService {
	return &PredictionService{db: db, clock: clock, windowDays: windowDays}
}

// Predict builds the projection from the trailing stats window. Averages
// divide by days actually tracked, not by the window length, so a sparse
// week does not look like starvation.
func (s *PredictionService) Predict(ctx context.Context, userID uint, now time.Time) (*Prediction, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotSet
		}
		return nil, err
	}

	today := s.clock.LocalToday(now)
	start := s.clock.DayStartUTC(today.AddDate(0, 0, -(s.windowDays-1)), now)
	end := s.clock.DayStartUTC(today, now).Add(24 * time.Hour)

	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, start, end).
		Find(&meals).Error
	if err != nil {
		return nil, err
	}

	calsByDay := make(map[string]int)
	protByDay := make(map[string]float64)
	for _, m := range meals {
		date := s.clock.LocalDate(m.AteAt, now)
		calsByDay[date] += m.Calories
		protByDay[date] += m.Proteins
	}

	pred := &Prediction{DaysOfData: len(calsByDay)}
	if pred.DaysOfData < minDaysOfData {
		return pred, nil
	}
	pred.Sufficient = true

	totalCals := 0
	for _, c := range calsByDay {
		totalCals += c
	}
	totalProt := 0.0
	for _, p := range protByDay {
		totalProt += p
	}

	pred.AvgDailyCalories = int(math.Round(float64(totalCals) / float64(pred.DaysOfData)))
	pred.TDEE = profile.TDEE
	pred.DailyDeficit = profile.TDEE - pred.AvgDailyCalories

	switch {
	case pred.DailyDeficit > deadBandKcal:
		pred.Direction = "losing"
	case pred.DailyDeficit < -deadBandKcal:
		pred.Direction = "gaining"
	default:
		pred.Direction = "stable"
	}

	pred.MonthlyChangeKg = math.Round(float64(pred.DailyDeficit)*30/KcalPerKg*100) / 100
	pred.WeeklyRateKg = math.Round(float64(pred.DailyDeficit)*7/KcalPerKg*100) / 100

	if pred.WeeklyRateKg > 0 && profile.CurrentWeight > profile.TargetWeight {
		weeks := math.Round((profile.CurrentWeight-profile.TargetWeight)/pred.WeeklyRateKg*10) / 10
		pred.WeeksToTarget = &weeks
	}

	pred.AvgDailyProteins = math.Round(totalProt/float64(pred.DaysOfData)*10) / 10
	if profile.ProteinGoal > 0 {
		pred.ProteinPct = int(math.Round(pred.AvgDailyProteins / float64(profile.ProteinGoal) * 100))
		switch {
		case pred.ProteinPct >= 90:
			pred.ProteinAdequacy = "good"
		case pred.ProteinPct >= 70:
			pred.ProteinAdequacy = "ok"
		default:
			pred.ProteinAdequacy = "low"
		}
	}

	pred.ConsistencyPct = int(math.Round(float64(pred.DaysOfData) / float64(s.windowDays) * 100))
	switch {
	case pred.ConsistencyPct >= 80:
		pred.Consistency = "good"
	case pred.ConsistencyPct >= 50:
		pred.Consistency = "ok"
	default:
		pred.Consistency = "low"
	}
	return pred, nil
}
