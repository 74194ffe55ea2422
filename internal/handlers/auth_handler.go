package handlers

import (
	"log"
	"time"

	"goldlegacy/internal/middleware"
	"goldlegacy/internal/services"
	"goldlegacy/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const googleStateCookie = "gl_google_state"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRoutes registers the auth routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/register", h.HandleRegister)
	auth.Post("/login", h.HandleLogin)
	auth.Post("/logout", h.HandleLogout)
	auth.Get("/me", h.HandleMe)
	auth.Get("/google", h.HandleGoogleStart)
	auth.Get("/google/callback", h.HandleGoogleCallback)
}

// setSessionCookie attaches the signed session token, valid for 7 days to
// match the token lifetime.
func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 7,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   c.Protocol() == "https",
	})
}

// HandleRegister creates an account and signs the caller in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	user, token, err := h.service.Register(input)
	if err != nil {
		return respondError(c, err, "Error al crear la cuenta")
	}

	setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// HandleLogin authenticates by email and password.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := validator.ValidateStruct(input); errs != nil {
		return respondValidation(c, errs)
	}

	user, token, err := h.service.Login(input.Email, input.Password)
	if err != nil {
		return respondError(c, err, "Error al iniciar sesión")
	}

	setSessionCookie(c, token)
	return c.JSON(fiber.Map{"user": user})
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"ok": true})
}

// HandleMe returns the signed-in user, or null for anonymous callers.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.UserFromContext(c)})
}

// HandleGoogleStart redirects to the Google consent screen with a CSRF state
// bound to a short-lived cookie.
func (h *AuthHandler) HandleGoogleStart(c *fiber.Ctx) error {
	if !h.service.GoogleConfigured() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Inicio de sesión con Google no está configurado",
		})
	}

	state := uuid.New().String()
	c.Cookie(&fiber.Cookie{
		Name:     googleStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	redirectURI := c.BaseURL() + "/api/v1/auth/google/callback"
	return c.Redirect(h.service.GoogleAuthURL(state, redirectURI), fiber.StatusTemporaryRedirect)
}

// HandleGoogleCallback finishes the OAuth flow and issues a session. OAuth
// failures redirect back to the login page with an error code instead of
// rendering JSON, since the browser lands here directly.
func (h *AuthHandler) HandleGoogleCallback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		return c.Redirect("/iniciar-sesion?error=google_denied", fiber.StatusTemporaryRedirect)
	}

	code := c.Query("code")
	state := c.Query("state")
	savedState := c.Cookies(googleStateCookie)
	c.Cookie(&fiber.Cookie{
		Name:    googleStateCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Now().Add(-time.Hour),
	})

	if code == "" || state == "" || savedState == "" || state != savedState {
		return c.Redirect("/iniciar-sesion?error=invalid_state", fiber.StatusTemporaryRedirect)
	}

	redirectURI := c.BaseURL() + "/api/v1/auth/google/callback"
	_, token, err := h.service.GoogleCallback(code, redirectURI)
	if err != nil {
		log.Printf("Google callback failed: %v", err)
		return c.Redirect("/iniciar-sesion?error=google_token", fiber.StatusTemporaryRedirect)
	}

	setSessionCookie(c, token)
	return c.Redirect("/", fiber.StatusTemporaryRedirect)
}
