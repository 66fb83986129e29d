package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/support-kit/case-assistant/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the orchestrator service
// identified by Subject, acting for the chat user in UserID.
type Principal struct {
	Subject string
	UserID  string
	Scopes  []string
}

// HasScope reports whether the principal was granted the scope.
func (p *Principal) HasScope(scope string) bool {
	for _, granted := range p.Scopes {
		if granted == scope {
			return true
		}
	}
	return false
}

// AuthMiddleware validates bearer tokens. No store lookups happen here;
// the token is the whole credential.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		Scopes:  claims.Scopes,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
