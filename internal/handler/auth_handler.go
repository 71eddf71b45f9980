package handler

import (
	"brass-inventory/internal/middleware"
	"brass-inventory/internal/model"
	"brass-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes read-only session information. Tokens are issued by the identity provider.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Token == "" {
		return badRequest(c, "Token is required")
	}

	claims, err := jwt.ValidateToken(req.Token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"valid": false, "error": err.Error(), "code": "UNAUTHORIZED"})
	}

	resp := fiber.Map{
		"valid":      true,
		"userId":     claims.Subject,
		"email":      claims.Email,
		"name":       claims.Name,
		"privileges": claims.Privileges,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	return c.JSON(resp)
}

// Me returns the caller as seen by the auth middleware.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := getActor(c)
	privileges, _ := c.Locals(middleware.LocalUserPrivileges).([]string)
	if privileges == nil {
		privileges = []string{}
	}
	return c.JSON(fiber.Map{
		"userId":     actor.ID,
		"email":      actor.Email,
		"name":       actor.Name,
		"privileges": privileges,
	})
}

// GetPrivileges lists every privilege code the API checks.
// GET /api/v1/privileges
func (h *AuthHandler) GetPrivileges(c *fiber.Ctx) error {
	return c.JSON(model.AllPrivileges)
}
