package controllers

import (
	"net/http"
	"time"

	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

type InsightController struct {
	Svc         *services.InsightService
	Predictions *services.PredictionService
}

func NewInsightController(svc *services.InsightService, predictions *services.PredictionService) *InsightController {
	return &InsightController{Svc: svc, Predictions: predictions}
}

// Serve returns the narrative picked by ?kind= (daily when absent or
// unknown).
func (h *InsightController) Serve(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	kind := c.DefaultQuery("kind", services.InsightDaily)
	switch kind {
	case services.InsightWeek, services.InsightMonth, services.InsightTips, services.InsightPrediction:
	default:
		kind = services.InsightDaily
	}

	res, err := h.Svc.Insight(c.Request.Context(), user, kind, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Predict returns the raw numeric projection, without prose. The narrated
// version lives behind the insight surface.
func (h *InsightController) Predict(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	pred, err := h.Predictions.Predict(c.Request.Context(), user.ID, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pred)
}
