package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/pkg/logger"
)

// PrincipalKey is the fiber local holding the authenticated *model.Principal.
const PrincipalKey = "principal"

// TokenValidator turns a bearer token into a principal.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error)
}

// RequireAuth validates the bearer token and stores the principal for downstream handlers.
func RequireAuth(tokens TokenValidator, logg *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		return authenticate(c, tokens, logg, parts[1])
	}
}

// RequireWebSocketAuth reads the token from the "token" query parameter, since
// browsers cannot set headers on a websocket upgrade.
func RequireWebSocketAuth(tokens TokenValidator, logg *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		return authenticate(c, tokens, logg, token)
	}
}

func authenticate(c *fiber.Ctx, tokens TokenValidator, logg *logger.Logger, token string) error {
	principal, err := tokens.ValidateToken(c.UserContext(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals(PrincipalKey, principal)
	if logg != nil {
		c.SetUserContext(logg.WithActor(c.UserContext(), principal.UserID, string(principal.Role)))
	}
	return c.Next()
}

// PrincipalFrom returns the principal stored by RequireAuth, or nil on public routes.
func PrincipalFrom(c *fiber.Ctx) *model.Principal {
	principal, _ := c.Locals(PrincipalKey).(*model.Principal)
	return principal
}
