package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Noor-Islam16/Coupon-Backend/internal/services"
)

const identityContextKey = "currentIdentity"

// Auth validates the bearer token and loads the caller's identity into
// context.
func Auth(guard *services.SessionGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := guard.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		c.Locals(identityContextKey, identity)
		return c.Next()
	}
}

// RequireVerified rejects callers whose account is not verified. It must
// run after Auth.
func RequireVerified(guard *services.SessionGuard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if err := guard.RequireVerified(identity); err != nil {
			return err
		}
		return c.Next()
	}
}

// CurrentIdentity extracts the authenticated identity from context.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityContextKey).(services.Identity)
	return identity, ok
}
