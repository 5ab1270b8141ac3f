package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/icynarco112-ux/calories-tracker/config"
	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testClock = utils.Clock{WinterOffsetHours: 2, SummerOffsetHours: 3}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{TelegramID: "100001", Code: "TESTCODE", Username: "tester"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return &user
}

func seedProfile(t *testing.T, db *gorm.DB, userID uint) *models.Profile {
	t.Helper()
	profile := models.Profile{
		UserID:           userID,
		HeightCm:         180,
		CurrentWeight:    80,
		TargetWeight:     75,
		BirthDate:        time.Date(1996, 3, 15, 0, 0, 0, 0, time.UTC),
		Sex:              "male",
		ActivityLevel:    "moderate",
		GoalType:         "lose_weight",
		RateTier:         "moderate",
		BMR:              1805,
		TDEE:             2798,
		DailyCalorieGoal: 2248,
		ProteinGoal:      120,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return &profile
}
