package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/internal/auth"
	"github.com/makeasinger/fretboard/pkg/response"
)

// Context locals set by the auth middlewares
const (
	localUserID = "userId"
	localEmail  = "email"
	localName   = "name"
)

// Authenticate validates the bearer token and stores the caller's identity
func Authenticate(a *auth.Authenticator) fiber.Handler {
	return authenticate(a, func(c *fiber.Ctx) string {
		return c.Get(fiber.HeaderAuthorization)
	})
}

// AuthenticateQuery is Authenticate for websocket upgrades, where browsers
// cannot set headers: the token may come from the "token" query parameter.
func AuthenticateQuery(a *auth.Authenticator) fiber.Handler {
	return authenticate(a, func(c *fiber.Ctx) string {
		if h := c.Get(fiber.HeaderAuthorization); h != "" {
			return h
		}
		if token := c.Query("token"); token != "" {
			return "Bearer " + token
		}
		return ""
	})
}

func authenticate(a *auth.Authenticator, header func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := a.Authenticate(header(c))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				return response.Unauthorized(c, "Missing authorization header")
			case errors.Is(err, auth.ErrMalformed):
				return response.Unauthorized(c, "Invalid authorization header format")
			case errors.Is(err, auth.ErrNotConfigured):
				return response.Unauthorized(c, "Authentication not configured")
			default:
				return response.Unauthorized(c, "Invalid or expired token")
			}
		}
		setIdentity(c, id.UserID, id.Email, id.Name)
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, userID, email, name string) {
	c.Locals(localUserID, userID)
	c.Locals(localEmail, email)
	c.Locals(localName, name)
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(localUserID).(string); ok {
		return userID
	}
	return ""
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals(localEmail).(string); ok {
		return email
	}
	return ""
}
