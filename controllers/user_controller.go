package controllers

import (
	"net/http"

	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{Svc: svc}
}

// Register creates the user for a telegram account, or returns the existing
// one. The bot calls this; it sits behind the service-token guard.
func (h *UserController) Register(c *gin.Context) {
	var body struct {
		TelegramID string `json:"telegram_id" binding:"required"`
		Username   string `json:"username"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), body.TelegramID, body.Username)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"telegram_id": user.TelegramID,
		"username":    user.Username,
		"code":        user.Code,
	})
}

// Me returns the authenticated caller's identity.
func (h *UserController) Me(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"telegram_id": user.TelegramID,
		"username":    user.Username,
		"code":        user.Code,
	})
}

// List returns every registered user. Bot-only, used for broadcasts.
func (h *UserController) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"telegram_id": u.TelegramID, "username": u.Username})
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "count": len(out)})
}
