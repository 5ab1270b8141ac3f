package main

import (
	"fmt"
	"log"
	"os"

	"github.com/icynarco112-ux/calories-tracker/config"
	"github.com/icynarco112-ux/calories-tracker/controllers"
	"github.com/icynarco112-ux/calories-tracker/mcp"
	"github.com/icynarco112-ux/calories-tracker/routes"
	"github.com/icynarco112-ux/calories-tracker/services"
	"github.com/icynarco112-ux/calories-tracker/utils"
)

func main() {
	cfg := config.Load()

	// `mint-token` prints a fresh service token for the bot and exits.
	if len(os.Args) > 1 && os.Args[1] == "mint-token" {
		token, err := utils.GenerateServiceToken(cfg.BotJWTSecret, "telegram-bot")
		if err != nil {
			log.Fatalf("mint-token: %v", err)
		}
		fmt.Println(token)
		return
	}

	db := config.InitDB()

	clock := utils.Clock{
		WinterOffsetHours: cfg.WinterOffsetHours,
		SummerOffsetHours: cfg.SummerOffsetHours,
	}

	users := services.NewUserService(db)
	profiles := services.NewProfileService(db, clock)
	summaries := services.NewSummaryService(db, clock)
	predictions := services.NewPredictionService(db, clock, cfg.StatsWindowDays)
	narrative := services.NewNarrativeClient(cfg)
	insights := services.NewInsightService(db, clock, narrative, summaries, predictions)
	meals := services.NewMealService(db, clock, insights, cfg.BackdateLimitDays, cfg.DuplicateWindow, cfg.DuplicateTolerance)
	activities := services.NewActivityService(db, clock, insights, cfg.BackdateLimitDays)
	weights := services.NewWeightService(db, clock, profiles, insights, cfg.BackdateLimitDays)
	oplog := services.NewOpLogService(db)

	r := routes.SetupRouter(routes.Deps{
		BotJWTSecret: cfg.BotJWTSecret,
		Users:        users,
		Ops:          oplog,
		MCP:          mcp.NewHandler(users, profiles, meals, activities, weights, summaries, predictions, insights, oplog),
		User:         controllers.NewUserController(users),
		Profile:      controllers.NewProfileController(profiles),
		Meal:         controllers.NewMealController(meals),
		Activity:     controllers.NewActivityController(activities),
		Weight:       controllers.NewWeightController(weights),
		Summary:      controllers.NewSummaryController(summaries),
		Insight:      controllers.NewInsightController(insights, predictions),
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
