package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type SupplierHandler struct {
	service service.SupplierService
	logg    *logger.Logger
}

func NewSupplierHandler(s service.SupplierService, logg *logger.Logger) *SupplierHandler {
	return &SupplierHandler{service: s, logg: logg}
}

// POST /api/v1/suppliers
func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.CreateSupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	created, err := h.service.CreateSupplier(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Supplier created", "data": created})
}

// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "supplier")
	}
	var req service.UpdateSupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	updated, err := h.service.UpdateSupplier(c.UserContext(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": updated})
}

// DELETE /api/v1/suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "supplier")
	}
	if err := h.service.DeleteSupplier(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}

func (h *SupplierHandler) GetSupplier(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "supplier")
	}
	found, err := h.service.GetSupplier(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(found)
}

// GET /api/v1/suppliers/search?supplier_name=
func (h *SupplierHandler) SearchSupplier(c *fiber.Ctx) error {
	value := c.Query("supplier_name")
	if value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "supplier_name is required"})
	}
	found, err := h.service.SearchSupplier(c.UserContext(), middleware.PrincipalFrom(c), value)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(found)
}

// ListSuppliers returns every supplier
func (h *SupplierHandler) ListSuppliers(c *fiber.Ctx) error {
	items, err := h.service.ListSuppliers(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(items)
}
