package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type InventoryHandler struct {
	service service.InventoryService
	logg    *logger.Logger
}

func NewInventoryHandler(s service.InventoryService, logg *logger.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, logg: logg}
}

// AddInventory sets the stock of a product in a warehouse, both given by name
// POST /api/v1/inventory
func (h *InventoryHandler) AddInventory(c *fiber.Ctx) error {
	var req service.AddInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	inv, err := h.service.AddInventory(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Inventory saved", "data": inv})
}

// UpdateInventory
// PUT /api/v1/inventory/:id
func (h *InventoryHandler) UpdateInventory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "inventory")
	}
	var req service.UpdateInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	inv, err := h.service.UpdateInventory(c.UserContext(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Inventory updated", "data": inv})
}

// SearchInventory finds the row for a product name and warehouse city
// GET /api/v1/inventory/search
func (h *InventoryHandler) SearchInventory(c *fiber.Ctx) error {
	productName, warehouseCity := c.Query("product_name"), c.Query("warehouse_city")
	if productName == "" || warehouseCity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_name and warehouse_city are required"})
	}
	inv, err := h.service.SearchInventory(c.UserContext(), middleware.PrincipalFrom(c), productName, warehouseCity)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(inv)
}

// GET /api/v1/inventory/:id
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "inventory")
	}
	inv, err := h.service.GetInventory(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(inv)
}

// GET /api/v1/inventory
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	items, err := h.service.ListInventory(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(items)
}

// DELETE /api/v1/inventory/:id
func (h *InventoryHandler) DeleteInventory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "inventory")
	}
	if err := h.service.DeleteInventory(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Inventory deleted"})
}
