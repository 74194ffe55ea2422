package middleware

import (
	"goldlegacy/internal/models"
	"goldlegacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the HTTP-only cookie carrying the signed session token.
const SessionCookie = "gl_token"

const localsUserKey = "current_user"

// CurrentUser resolves the session cookie into a user and stashes it in the
// request locals. It never rejects: an absent or invalid token just means no
// user, so public routes keep working.
func CurrentUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token != "" {
			if user := authService.UserFromToken(token); user != nil {
				c.Locals(localsUserKey, user)
			}
		}
		return c.Next()
	}
}

// UserFromContext returns the resolved user, or nil for anonymous requests.
func UserFromContext(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUserKey).(*models.User)
	return user
}

// AuthRequired rejects anonymous requests.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserFromContext(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No autenticado",
			})
		}
		return c.Next()
	}
}

// AdminRequired rejects requests without a valid ADMIN session.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No autorizado",
			})
		}
		return c.Next()
	}
}
