package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type UserHandler struct {
	userService service.UserService
	logg        *logger.Logger
}

func NewUserHandler(userService service.UserService, logg *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, logg: logg}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.CreateUser(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// GetUsers lists every user, or looks one up with ?username=
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	p := middleware.PrincipalFrom(c)
	if username := c.Query("username"); username != "" {
		user, err := h.userService.SearchUser(c.UserContext(), p, username)
		if err != nil {
			return respondError(c, h.logg, err)
		}
		return c.JSON(user)
	}

	users, err := h.userService.ListUsers(c.UserContext(), p)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(users)
}

// GetUser handles getting user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	user, err := h.userService.GetUser(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(user)
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.userService.UpdateUser(c.UserContext(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user,
	})
}

// ResetPassword sets a new password for another user
// PUT /api/v1/users/:id/password
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	var req service.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := h.userService.ResetPassword(c.UserContext(), middleware.PrincipalFrom(c), id, req.NewPassword); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user")
	}
	if err := h.userService.DeleteUser(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
