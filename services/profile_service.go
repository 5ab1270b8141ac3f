package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/gorm"
)

// ErrProfileNotSet marks reads against a user who never ran profile setup.
var ErrProfileNotSet = errors.New("profile not set")

// ProfileValidationError lists required fields the caller left out. These
// are never defaulted: silently guessing height or sex would corrupt every
// derived goal.
type ProfileValidationError struct{ Missing []string }

func (e *ProfileValidationError) Error() string {
	return fmt.Sprintf("missing required profile fields: %s", strings.Join(e.Missing, ", "))
}

// ProfileInput carries the profile-set payload. GoalType and RateTier are
// optional and default to a moderate cut.
type ProfileInput struct {
	HeightCm      float64 `json:"height_cm"`
	CurrentWeight float64 `json:"current_weight"`
	TargetWeight  float64 `json:"target_weight"`
	BirthDate     string  `json:"birth_date"` // YYYY-MM-DD
	Sex           string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
	GoalType      string  `json:"goal_type"`
	RateTier      string  `json:"weight_loss_rate"`
}

type ProfileService struct {
	db    *gorm.DB
	clock utils.Clock
}

func NewProfileService(db *gorm.DB, clock utils.Clock) *ProfileService {
	return &ProfileService{db: db, clock: clock}
}

// Upsert validates the input, recomputes every derived field from the same
// snapshot and creates or replaces the user's profile.
func (s *ProfileService) Upsert(ctx context.Context, userID uint, in ProfileInput, now time.Time) (*models.Profile, error) {
	var missing []string
	if in.HeightCm <= 0 {
		missing = append(missing, "height_cm")
	}
	if in.CurrentWeight <= 0 {
		missing = append(missing, "current_weight")
	}
	if in.TargetWeight <= 0 {
		missing = append(missing, "target_weight")
	}
	if in.BirthDate == "" {
		missing = append(missing, "birth_date")
	}
	if in.Sex == "" {
		missing = append(missing, "gender")
	}
	if in.ActivityLevel == "" {
		missing = append(missing, "activity_level")
	}
	if len(missing) > 0 {
		return nil, &ProfileValidationError{Missing: missing}
	}

	birth, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return nil, &ProfileValidationError{Missing: []string{"birth_date"}}
	}

	if in.GoalType == "" {
		in.GoalType = "lose_weight"
	}
	if in.RateTier == "" {
		in.RateTier = "moderate"
	}

	var profile models.Profile
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile.UserID = userID
	profile.HeightCm = in.HeightCm
	profile.CurrentWeight = in.CurrentWeight
	profile.TargetWeight = in.TargetWeight
	profile.BirthDate = birth
	profile.Sex = strings.ToLower(strings.TrimSpace(in.Sex))
	profile.ActivityLevel = in.ActivityLevel
	profile.GoalType = in.GoalType
	profile.RateTier = in.RateTier
	s.recompute(&profile, now)

	if profile.ID == 0 {
		err = s.db.WithContext(ctx).Create(&profile).Error
	} else {
		err = s.db.WithContext(ctx).Save(&profile).Error
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotSet
		}
		return nil, err
	}
	return &profile, nil
}

// SetCurrentWeight refreshes the denormalized weight and the full derived
// block together. Missing profile is not an error here; weight can be
// logged before setup.
func (s *ProfileService) SetCurrentWeight(ctx context.Context, userID uint, weightKg float64, now time.Time) error {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	profile.CurrentWeight = weightKg
	s.recompute(&profile, now)
	return s.db.WithContext(ctx).Save(&profile).Error
}

// recompute derives BMR, TDEE and both goals from one input snapshot.
// Always all four; a partial update would leave the block inconsistent.
func (s *ProfileService) recompute(p *models.Profile, now time.Time) {
	age := utils.Age(p.BirthDate, s.clock.LocalNow(now))
	p.BMR = utils.BMR(p.CurrentWeight, p.HeightCm, age, p.Sex)
	p.TDEE = utils.TDEE(p.BMR, p.ActivityLevel)
	p.DailyCalorieGoal = utils.DailyCalorieGoal(p.TDEE, p.RateTier, p.GoalType)
	p.ProteinGoal = utils.ProteinGoal(p.TargetWeight)
}

// View is the profile as surfaced to clients, echoing inputs alongside the
// derived goals plus the BMI extras.
func (s *ProfileService) View(p *models.Profile) map[string]interface{} {
	out := map[string]interface{}{
		"height_cm":          p.HeightCm,
		"current_weight":     p.CurrentWeight,
		"target_weight":      p.TargetWeight,
		"birth_date":         p.BirthDate.Format("2006-01-02"),
		"gender":             p.Sex,
		"activity_level":     p.ActivityLevel,
		"goal_type":          p.GoalType,
		"weight_loss_rate":   p.RateTier,
		"bmr":                p.BMR,
		"tdee":               p.TDEE,
		"daily_calorie_goal": p.DailyCalorieGoal,
		"protein_goal":       p.ProteinGoal,
	}
	if bmi, err := utils.CalculateBMI(p.HeightCm, p.CurrentWeight); err == nil {
		out["bmi"] = bmi
		out["bmi_category"] = utils.BMICategory(bmi)
	}
	return out
}
