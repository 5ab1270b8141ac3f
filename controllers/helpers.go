package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

// userFromCtx pulls the user the auth middleware resolved.
func userFromCtx(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func limitQuery(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return limit
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var validation *services.ProfileValidationError
	switch {
	case errors.Is(err, services.ErrEntryNotFound), errors.Is(err, services.ErrProfileNotSet):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
