package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	pkgerrors "go-warehouse-ms/pkg/errors"
	"go-warehouse-ms/pkg/logger"
)

// respondError writes the public view of err. Database errors are logged with
// their full chain and answered with a generic message only.
func respondError(c *fiber.Ctx, logg *logger.Logger, err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		logg.Error(c.UserContext(), "unhandled error", err)
		meta := pkgerrors.MetadataFor(pkgerrors.CodeInternal)
		return c.Status(meta.HTTPStatus).JSON(fiber.Map{"error": meta.PublicMessage, "code": pkgerrors.CodeInternal})
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	body := fiber.Map{"code": typed.Code()}
	switch typed.Code() {
	case pkgerrors.CodeExecution, pkgerrors.CodeConstraint, pkgerrors.CodeInternal:
		ctx := logg.WithFields(c.UserContext(), pkgerrors.Diagnose(err).Fields())
		logg.Error(ctx, "request failed", err)
		body["error"] = meta.PublicMessage
	default:
		body["error"] = typed.Message()
	}
	if meta.DetailsAllowed && typed.Details() != nil {
		body["details"] = typed.Details()
	}
	return c.Status(meta.HTTPStatus).JSON(body)
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and middleware.
func ErrorHandler(logg *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, logg, err)
	}
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + what + " ID"})
}
