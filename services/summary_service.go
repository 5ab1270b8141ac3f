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

// Totals is the per-window nutrient rollup shared by every summary shape.
type Totals struct {
	MealCount      int     `json:"meal_count"`
	TotalCalories  int     `json:"total_calories"`
	TotalProteins  float64 `json:"total_proteins"`
	TotalFats      float64 `json:"total_fats"`
	TotalCarbs     float64 `json:"total_carbs"`
	TotalFiber     float64 `json:"total_fiber"`
	TotalWaterML   int     `json:"total_water_ml"`
	AvgHealthiness float64 `json:"avg_healthiness"`
}

// GoalStatus compares a day's intake against the profile goals. Nil when the
// user has no profile yet.
type GoalStatus struct {
	DailyCalorieGoal  int `json:"daily_calorie_goal"`
	CaloriesRemaining int `json:"calories_remaining"`
	ProteinGoal       int `json:"protein_goal"`
}

// DaySummary is one local calendar day in full detail.
type DaySummary struct {
	Date        string                   `json:"date"`
	Totals      Totals                   `json:"totals"`
	Meals       []map[string]interface{} `json:"meals"`
	TotalBurned int                      `json:"total_burned"`
	NetCalories int                      `json:"net_calories"`
	Goal        *GoalStatus              `json:"goal,omitempty"`
}

// DayBreakdown is the compact per-day line inside week and month views.
type DayBreakdown struct {
	Date     string `json:"date"`
	Totals   Totals `json:"totals"`
	Burned   int    `json:"total_burned"`
	HasMeals bool   `json:"has_meals"`
}

// WeekSummary covers the trailing seven local days, today included.
type WeekSummary struct {
	StartDate        string         `json:"start_date"`
	EndDate          string         `json:"end_date"`
	Totals           Totals         `json:"totals"`
	Days             []DayBreakdown `json:"days"`
	AvgDailyCalories int            `json:"avg_daily_calories"`
	TotalBurned      int            `json:"total_burned"`
}

// MonthSummary covers the current local calendar month to date.
type MonthSummary struct {
	Month            string         `json:"month"`
	Totals           Totals         `json:"totals"`
	Days             []DayBreakdown `json:"days"`
	DaysTracked      int            `json:"days_tracked"`
	Consistency      float64        `json:"consistency"`
	AvgDailyCalories int            `json:"avg_daily_calories"`
	TotalBurned      int            `json:"total_burned"`
}

// SummaryService aggregates stored entries into day, week and month views.
// Rows are fetched by UTC window and bucketed into local dates in Go, using
// one offset resolved at call time so a window never straddles two rules.
type SummaryService struct {
	db    *gorm.DB
	clock utils.Clock
}

func NewSummaryService(db *gorm.DB, clock utils.Clock) *SummaryService {
	return &SummaryService{db: db, clock: clock}
}

// Today builds the full current-day summary including activity burn and the
// goal comparison when a profile exists.
func (s *SummaryService) Today(ctx context.Context, userID uint, now time.Time) (*DaySummary, error) {
	start, end := s.clock.TodayWindowUTC(now)

	meals, err := s.mealsIn(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	activities, err := s.activitiesIn(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	sum := &DaySummary{
		Date:   s.clock.LocalDate(now, now),
		Totals: rollUp(meals),
		Meals:  make([]map[string]interface{}, 0, len(meals)),
	}
	// Most recent first.
	for i := len(meals) - 1; i >= 0; i-- {
		sum.Meals = append(sum.Meals, meals[i].ToDict())
	}
	for _, a := range activities {
		sum.TotalBurned += a.CaloriesBurned
	}
	sum.NetCalories = sum.Totals.TotalCalories - sum.TotalBurned

	var profile models.Profile
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		sum.Goal = &GoalStatus{
			DailyCalorieGoal:  profile.DailyCalorieGoal,
			CaloriesRemaining: profile.DailyCalorieGoal - sum.Totals.TotalCalories,
			ProteinGoal:       profile.ProteinGoal,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return sum, nil
}

// Week builds the trailing-7-day view. Every day appears in the breakdown,
// most recent first, empty days included; the daily average always divides
// by seven.
func (s *SummaryService) Week(ctx context.Context, userID uint, now time.Time) (*WeekSummary, error) {
	start, end := s.clock.WeekWindowUTC(now)

	meals, err := s.mealsIn(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	activities, err := s.activitiesIn(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := groupMeals(meals, s.clock, now)
	burned := groupBurn(activities, s.clock, now)

	today := s.clock.LocalToday(now)
	sum := &WeekSummary{
		StartDate: today.AddDate(0, 0, -6).Format("2006-01-02"),
		EndDate:   today.Format("2006-01-02"),
		Totals:    rollUp(meals),
	}
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		dayMeals := byDate[date]
		sum.Days = append(sum.Days, DayBreakdown{
			Date:     date,
			Totals:   rollUp(dayMeals),
			Burned:   burned[date],
			HasMeals: len(dayMeals) > 0,
		})
		sum.TotalBurned += burned[date]
	}
	sum.AvgDailyCalories = int(math.Round(float64(sum.Totals.TotalCalories) / 7))
	return sum, nil
}

// Month builds the calendar-month-to-date view. Consistency is the share of
// days tracked since the first entry of the month, so a late start is not
// penalized for the empty days before it.
func (s *SummaryService) Month(ctx context.Context, userID uint, now time.Time) (*MonthSummary, error) {
	start, end := s.clock.MonthWindowUTC(now)

	meals, err := s.mealsIn(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	activities, err := s.activitiesIn(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := groupMeals(meals, s.clock, now)
	burned := groupBurn(activities, s.clock, now)

	today := s.clock.LocalToday(now)
	sum := &MonthSummary{
		Month:       today.Format("2006-01"),
		Totals:      rollUp(meals),
		DaysTracked: len(byDate),
	}

	firstTracked := ""
	for d := 1; d <= today.Day(); d++ {
		date := time.Date(today.Year(), today.Month(), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		dayMeals := byDate[date]
		if len(dayMeals) > 0 && firstTracked == "" {
			firstTracked = date
		}
		sum.Days = append(sum.Days, DayBreakdown{
			Date:     date,
			Totals:   rollUp(dayMeals),
			Burned:   burned[date],
			HasMeals: len(dayMeals) > 0,
		})
		sum.TotalBurned += burned[date]
	}
	// Most recent first, same ordering as the week view.
	for i, j := 0, len(sum.Days)-1; i < j; i, j = i+1, j-1 {
		sum.Days[i], sum.Days[j] = sum.Days[j], sum.Days[i]
	}

	if firstTracked != "" {
		first, _ := time.Parse("2006-01-02", firstTracked)
		elapsed := int(today.Sub(first).Hours()/24) + 1
		sum.Consistency = math.Round(float64(sum.DaysTracked)/float64(elapsed)*100) / 100
	}
	if sum.DaysTracked > 0 {
		sum.AvgDailyCalories = int(math.Round(float64(sum.Totals.TotalCalories) / float64(sum.DaysTracked)))
	}
	return sum, nil
}

func (s *SummaryService) mealsIn(ctx context.Context, userID uint, start, end time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, start, end).
		Order("ate_at ASC").
		Find(&meals).Error
	return meals, err
}

func (s *SummaryService) activitiesIn(ctx context.Context, userID uint, start, end time.Time) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND done_at >= ? AND done_at < ?", userID, start, end).
		Order("done_at ASC").
		Find(&activities).Error
	return activities, err
}

func rollUp(meals []models.Meal) Totals {
	var t Totals
	scored := 0
	scoreSum := 0
	for _, m := range meals {
		t.MealCount++
		t.TotalCalories += m.Calories
		t.TotalProteins += m.Proteins
		t.TotalFats += m.Fats
		t.TotalCarbs += m.Carbs
		t.TotalFiber += m.Fiber
		t.TotalWaterML += m.WaterML
		if m.Score > 0 {
			scored++
			scoreSum += m.Score
		}
	}
	if scored > 0 {
		t.AvgHealthiness = math.Round(float64(scoreSum)/float64(scored)*10) / 10
	}
	return t
}

func groupMeals(meals []models.Meal, clock utils.Clock, now time.Time) map[string][]models.Meal {
	byDate := make(map[string][]models.Meal)
	for _, m := range meals {
		date := clock.LocalDate(m.AteAt, now)
		byDate[date] = append(byDate[date], m)
	}
	return byDate
}

func groupBurn(activities []models.Activity, clock utils.Clock, now time.Time) map[string]int {
	burned := make(map[string]int)
	for _, a := range activities {
		burned[clock.LocalDate(a.DoneAt, now)] += a.CaloriesBurned
	}
	return burned
}
