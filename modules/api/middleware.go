package api

import (
	"github.com/example/task-tracker/domain/user"
	"github.com/gofiber/fiber/v2"
)

const (
	// IdentityContextKey is the key under which the verified caller is
	// stored in the Fiber context.
	IdentityContextKey = "identity"
)

// IdentityVerifier resolves an Authorization header to a verified caller.
type IdentityVerifier interface {
	Resolve(authorization string) (user.Identity, error)
}

// AuthMiddleware rejects requests without a valid bearer token. Verification
// happens in-process; no other module is consulted.
func AuthMiddleware(verifier IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := verifier.Resolve(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(IdentityContextKey, identity)
		return c.Next()
	}
}

// identityFrom returns the caller stored by AuthMiddleware.
func identityFrom(c *fiber.Ctx) (user.Identity, bool) {
	identity, ok := c.Locals(IdentityContextKey).(user.Identity)
	if !ok || identity.UserID == "" {
		return user.Identity{}, false
	}
	return identity, true
}
