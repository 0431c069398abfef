package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

const usernameKey = "username"

// Authenticator checks HTTP Basic credentials.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(username, password string) bool

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(username, password string) bool {
	return f(username, password)
}

// Config holds the authentication middleware settings.
type Config struct {
	Authenticator Authenticator
	// Realm is sent in the WWW-Authenticate challenge.
	Realm string
}

// New returns an HTTP Basic authentication middleware. The authenticated username is
// available to handlers through Username.
func New(cfg Config) fiber.Handler {
	realm := cfg.Realm
	if realm == "" {
		realm = "api"
	}
	return basicauth.New(basicauth.Config{
		Realm:           realm,
		Authorizer:      cfg.Authenticator.Authenticate,
		ContextUsername: usernameKey,
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="`+realm+`"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication credentials were not provided or are invalid.",
			})
		},
	})
}

// Username returns the authenticated username, or "" outside an authenticated route.
func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(usernameKey).(string)
	return name
}
