package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/feedback-service/pkg/util/errorutil"
)

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFromFiber(c).IsAuthenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
