package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/icynarco112-ux/calories-tracker/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Settings collects the policy knobs of the tracker. The duplicate window,
// calorie tolerance and backdate bound are deliberate policy constants with
// env overrides rather than hardcoded literals.
type Settings struct {
	Port         string
	BotJWTSecret string

	// Fixed region offsets from UTC, in hours (EU-style DST rule).
	WinterOffsetHours int
	SummerOffsetHours int

	BackdateLimitDays int

	DuplicateWindow    time.Duration
	DuplicateTolerance float64 // fraction of calories, e.g. 0.10

	StatsWindowDays int

	AIBaseURL string
	AIKey     string
	AIModel   string
}

func Load() Settings {
	// .env is optional outside local development.
	_ = godotenv.Load()

	return Settings{
		Port:               envStr("PORT", "8787"),
		BotJWTSecret:       os.Getenv("BOT_JWT_SECRET"),
		WinterOffsetHours:  envInt("TZ_WINTER_OFFSET", 2),
		SummerOffsetHours:  envInt("TZ_SUMMER_OFFSET", 3),
		BackdateLimitDays:  envInt("BACKDATE_LIMIT_DAYS", 7),
		DuplicateWindow:    time.Duration(envInt("DUP_WINDOW_MINUTES", 3)) * time.Minute,
		DuplicateTolerance: envFloat("DUP_CALORIE_TOLERANCE", 0.10),
		StatsWindowDays:    envInt("STATS_WINDOW_DAYS", 7),
		AIBaseURL:          envStr("AI_BASE_URL", "https://api.openai.com/v1"),
		AIKey:              os.Getenv("AI_API_KEY"),
		AIModel:            envStr("AI_MODEL", "gpt-4o-mini"),
	}
}

func InitDB() *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envStr("DB_HOST", "localhost"),
		envStr("DB_USER", "calories"),
		os.Getenv("DB_PASSWORD"),
		envStr("DB_NAME", "calories_tracker"),
		envStr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	DB = db
	return db
}

// Migrate is split out so tests can run the same schema on SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Meal{},
		&models.Activity{},
		&models.WeightEntry{},
		&models.InsightCache{},
		&models.OpLog{},
	)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
