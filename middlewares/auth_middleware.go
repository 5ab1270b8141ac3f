package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CodeAuth resolves the calling user from an access code (query param or
// X-User-Code header) or, failing that, a telegram_id query param. Every
// miss gets the same 401 body so codes cannot be probed.
func CodeAuth(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user interface{}
			err  error
		)

		code := c.Query("code")
		if code == "" {
			code = c.GetHeader("X-User-Code")
		}
		if code != "" {
			user, err = users.ResolveByCode(c.Request.Context(), code)
		} else if tid := c.Query("telegram_id"); tid != "" {
			user, err = users.ResolveByTelegramID(c.Request.Context(), tid)
		} else {
			err = services.ErrNotAuthenticated
		}

		if err != nil {
			if errors.Is(err, services.ErrNotAuthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// BotAuth guards the bot-facing endpoints with an HS256 service token.
func BotAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured: BOT_JWT_SECRET not set"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		if service, _ := claims["service"].(string); service != "" {
			c.Set("service", service)
		}
		c.Next()
	}
}
