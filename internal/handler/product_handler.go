package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type ProductHandler struct {
	service service.ProductService
	logg    *logger.Logger
}

func NewProductHandler(s service.ProductService, logg *logger.Logger) *ProductHandler {
	return &ProductHandler{service: s, logg: logg}
}

// CreateProduct handles product creation
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	created, err := h.service.CreateProduct(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": created})
}

// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	updated, err := h.service.UpdateProduct(c.UserContext(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}
	if err := h.service.DeleteProduct(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}
	found, err := h.service.GetProduct(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(found)
}

// GET /api/v1/products/search?product_name=
func (h *ProductHandler) SearchProduct(c *fiber.Ctx) error {
	value := c.Query("product_name")
	if value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_name is required"})
	}
	found, err := h.service.SearchProduct(c.UserContext(), middleware.PrincipalFrom(c), value)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(found)
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	items, err := h.service.ListProducts(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(items)
}
