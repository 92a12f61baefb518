package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// DefaultClientCookie names the cookie carrying the browser's client id.
	DefaultClientCookie = "fxw_client"

	clientIDKey    = "clientID"
	clientIDMaxAge = 365 * 24 * time.Hour
)

// ClientID identifies the browser by a random id kept in a cookie, so each
// browser gets its own preferences. Unknown or malformed ids are replaced.
func ClientID(cookieName string, secure bool) fiber.Handler {
	if cookieName == "" {
		cookieName = DefaultClientCookie
	}
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(clientIDMaxAge),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(clientIDKey, id)
		return c.Next()
	}
}

func clientID(c *fiber.Ctx) string {
	id, _ := c.Locals(clientIDKey).(string)
	return id
}
