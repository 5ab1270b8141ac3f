package controllers

import (
	"net/http"
	"time"

	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

type WeightController struct {
	Svc *services.WeightService
}

func NewWeightController(svc *services.WeightService) *WeightController {
	return &WeightController{Svc: svc}
}

func (h *WeightController) Log(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body struct {
		Weight     float64 `json:"weight" binding:"required"`
		Notes      string  `json:"notes"`
		RecordDate string  `json:"record_date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Svc.Log(c.Request.Context(), user.ID, body.Weight, body.Notes, body.RecordDate, time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := gin.H{"weight": res.Entry.Weight}
	if res.ChangeKg != nil {
		out["change_kg"] = *res.ChangeKg
	}
	c.JSON(http.StatusCreated, out)
}

func (h *WeightController) History(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	entries, err := h.Svc.History(c.Request.Context(), user.ID, limitQuery(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
