package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type AuthHandler struct {
	authService service.AuthService
	logg        *logger.Logger
}

func NewAuthHandler(authService service.AuthService, logg *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logg: logg}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(response)
}

// Profile returns the signed-in user and their permission codes
// GET /api/v1/auth/me
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	session, err := h.authService.Profile(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(session)
}

// ChangePassword replaces the caller's own password
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := h.authService.ChangePassword(c.UserContext(), middleware.PrincipalFrom(c), req); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
