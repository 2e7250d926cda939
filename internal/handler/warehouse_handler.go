package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type WarehouseHandler struct {
	service service.WarehouseService
	logg    *logger.Logger
}

func NewWarehouseHandler(s service.WarehouseService, logg *logger.Logger) *WarehouseHandler {
	return &WarehouseHandler{service: s, logg: logg}
}

// POST /api/v1/warehouses
func (h *WarehouseHandler) CreateWarehouse(c *fiber.Ctx) error {
	var req service.CreateWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	created, err := h.service.CreateWarehouse(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Warehouse created", "data": created})
}

// UpdateWarehouse changes city or capacity. Capacity below current stock is refused by the service.
// PUT /api/v1/warehouses/:id
func (h *WarehouseHandler) UpdateWarehouse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "warehouse")
	}
	var req service.UpdateWarehouseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	updated, err := h.service.UpdateWarehouse(c.UserContext(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Warehouse updated", "data": updated})
}

// DELETE /api/v1/warehouses/:id
func (h *WarehouseHandler) DeleteWarehouse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "warehouse")
	}
	if err := h.service.DeleteWarehouse(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Warehouse deleted"})
}

// GET /api/v1/warehouses/:id
func (h *WarehouseHandler) GetWarehouse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "warehouse")
	}
	found, err := h.service.GetWarehouse(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(found)
}

// SearchWarehouse finds a warehouse by exact city
// GET /api/v1/warehouses/search?warehouse_city=
func (h *WarehouseHandler) SearchWarehouse(c *fiber.Ctx) error {
	value := c.Query("warehouse_city")
	if value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "warehouse_city is required"})
	}
	found, err := h.service.SearchWarehouse(c.UserContext(), middleware.PrincipalFrom(c), value)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(found)
}

// GET /api/v1/warehouses
func (h *WarehouseHandler) ListWarehouses(c *fiber.Ctx) error {
	items, err := h.service.ListWarehouses(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(items)
}
