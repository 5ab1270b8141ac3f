package routes

import (
	"net/http"

	"github.com/icynarco112-ux/calories-tracker/controllers"
	"github.com/icynarco112-ux/calories-tracker/mcp"
	"github.com/icynarco112-ux/calories-tracker/middlewares"
	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the router wires together.
type Deps struct {
	BotJWTSecret string
	Users        *services.UserService
	Ops          *services.OpLogService
	MCP          *mcp.Handler
	User         *controllers.UserController
	Profile      *controllers.ProfileController
	Meal         *controllers.MealController
	Activity     *controllers.ActivityController
	Weight       *controllers.WeightController
	Summary      *controllers.SummaryController
	Insight      *controllers.InsightController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Tool-calling endpoint; identity travels as ?code= on the URL.
	r.POST("/mcp", d.MCP.Handle)

	// Bot-only routes behind the service token.
	bot := r.Group("/api")
	bot.Use(middlewares.FailureLog(d.Ops), middlewares.BotAuth(d.BotJWTSecret))
	{
		bot.POST("/register", d.User.Register)
		bot.GET("/users", d.User.List)
	}

	// Per-user routes authenticated by access code. Failures, auth misses
	// included, land in the diagnostic log.
	api := r.Group("/api")
	api.Use(middlewares.FailureLog(d.Ops), middlewares.CodeAuth(d.Users))
	{
		api.GET("/user", d.User.Me)

		api.POST("/profile", d.Profile.Set)
		api.GET("/profile", d.Profile.Get)

		api.POST("/meals", d.Meal.Log)
		api.GET("/meals", d.Meal.History)
		api.PUT("/meals/:id", d.Meal.Update)
		api.DELETE("/meals/:id", d.Meal.Delete)
		api.POST("/water", d.Meal.LogWater)

		api.POST("/activities", d.Activity.Log)
		api.GET("/activities", d.Activity.History)
		api.PUT("/activities/:id", d.Activity.Update)
		api.DELETE("/activities/:id", d.Activity.Delete)

		api.POST("/weight", d.Weight.Log)
		api.GET("/weight/history", d.Weight.History)

		api.GET("/today", d.Summary.Today)
		api.GET("/week", d.Summary.Week)
		api.GET("/month", d.Summary.Month)

		api.GET("/insight", d.Insight.Serve)
		api.GET("/predict", d.Insight.Predict)
	}

	return r
}
