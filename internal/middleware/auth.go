package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/example/mystore/internal/config"
	"github.com/example/mystore/internal/utils"
)

const (
	userContextKey  = "currentUserID"
	emailContextKey = "currentUserEmail"
)

// AuthMiddleware validates bearer tokens and loads the authenticated user
// identity into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		c.Locals(userContextKey, userID)
		c.Locals(emailContextKey, claims.Email)
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return primitive.NilObjectID, false
	}

	if id, ok := value.(primitive.ObjectID); ok {
		return id, true
	}

	return primitive.NilObjectID, false
}

// GetCurrentUserEmail extracts the authenticated user's email from context.
func GetCurrentUserEmail(c *fiber.Ctx) (string, bool) {
	if email, ok := c.Locals(emailContextKey).(string); ok && email != "" {
		return email, true
	}
	return "", false
}
