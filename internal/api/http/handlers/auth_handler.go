package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-helpdesk/internal/api/dto"
	"github.com/spec-kit/it-helpdesk/internal/auth"
	"github.com/spec-kit/it-helpdesk/pkg/util/errorutil"
)

// AuthHandler serves department login.
type AuthHandler struct {
	roster *auth.Roster
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(roster *auth.Roster, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{roster: roster, tokens: tokens}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.Department == "" || req.Password == "" {
		return errorutil.NewValidationError("department and password required", nil)
	}

	account, err := h.roster.Login(req.Department, req.Password)
	if err != nil {
		return errorutil.NewUnauthorized("invalid department or password")
	}
	token, expiresAt, err := h.tokens.GenerateToken(account)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      account,
	}})
}

// Departments GET /auth/departments lists login choices for the sign-in form.
func (h *AuthHandler) Departments(c *fiber.Ctx) error {
	accounts := h.roster.Departments()
	items := make([]fiber.Map, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, fiber.Map{
			"name": a.Department,
			"role": a.Role,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": items})
}
