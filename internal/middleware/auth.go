package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/config"
	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "user_role"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token issued by the surrounding auth system and
// exposes the caller's identity and role to handlers.
func Auth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		token, err := jwt.ParseWithClaims(
			strings.TrimPrefix(header, "Bearer "),
			&claims{},
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.Server.JWTSecret), nil
			},
		)
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		tokenClaims, ok := token.Claims.(*claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token claims",
			})
		}

		userID, err := uuid.Parse(tokenClaims.Subject)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token subject",
			})
		}

		c.Locals(UserIDKey, userID)
		c.Locals(RoleKey, model.Role(tokenClaims.Role))

		return c.Next()
	}
}

// GetUserID returns the authenticated user's ID, or uuid.Nil outside Auth.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetRole(c *fiber.Ctx) model.Role {
	if role, ok := c.Locals(RoleKey).(model.Role); ok {
		return role
	}
	return ""
}
