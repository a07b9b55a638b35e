package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

const principalKey = "auth.principal"

// Middleware authenticates requests via Bearer tokens.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle extracts and validates the Bearer token, attaching the account to
// the request context.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return errorutil.NewUnauthorized("missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return errorutil.NewUnauthorized("malformed authorization header")
	}
	account, err := m.tokens.ParseToken(token)
	if err != nil {
		return errorutil.NewUnauthorized("invalid or expired token")
	}
	c.Locals(principalKey, account)
	return c.Next()
}

// AccountFromContext returns the authenticated account, if any.
func AccountFromContext(c *fiber.Ctx) (domain.Account, bool) {
	account, ok := c.Locals(principalKey).(domain.Account)
	return account, ok
}

// RequireAdmin rejects non-administrator principals.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		if !ok || !account.IsAdmin() {
			return errorutil.NewForbidden("administrator required")
		}
		return c.Next()
	}
}
