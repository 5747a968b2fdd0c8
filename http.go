package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "authToken"

// DefaultCookieTTL mirrors the token lifetime (30 days).
const DefaultCookieTTL = 30 * 24 * time.Hour

// RegisterAuthRoutes mounts the four auth endpoints on the given router,
// usually an /api/auth group. Mount these BEFORE the protection
// middleware: they must stay reachable without a session.
func RegisterAuthRoutes(router fiber.Router, controller *AuthController) {
	router.Post("/register", controller.RegisterPost)
	router.Post("/login", controller.LoginPost)
	router.Get("/verify", controller.VerifyGet)
	router.Post("/logout", controller.LogoutPost)
}

func setTokenCookie(c *fiber.Ctx, token string, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Strict",
	})
}

// clearTokenCookie expires the session cookie. Attributes must match the
// ones it was set with or browsers keep the original around.
func clearTokenCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Strict",
	})
}
