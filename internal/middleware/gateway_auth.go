package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/makeasinger/fretboard/pkg/response"
)

// Identity headers set by the gateway's ForwardAuth call to /auth/verify
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

// GatewayAuth trusts the identity headers added by the API gateway
func GatewayAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get(HeaderUserID)
		if userID == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}
		setIdentity(c, userID, c.Get(HeaderUserEmail), c.Get(HeaderUserName))
		return c.Next()
	}
}
