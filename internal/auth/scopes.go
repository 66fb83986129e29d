package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/support-kit/case-assistant/pkg/util"
)

// Scopes granted to orchestrator tokens.
const (
	ScopeCasesRead = "cases:read"
)

// RequireScope returns middleware that rejects principals missing the scope.
// Must run after AuthMiddleware.Handle.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.HasScope(scope) {
			return apperrors.NewForbidden("insufficient scope")
		}
		return c.Next()
	}
}
