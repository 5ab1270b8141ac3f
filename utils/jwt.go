package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateServiceToken mints the HS256 token the chat-bot collaborator uses
// against the bot-facing endpoints.
func GenerateServiceToken(secret, service string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"service": service,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}
