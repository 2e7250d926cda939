package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type OrderHandler struct {
	service service.OrderService
	logg    *logger.Logger
}

func NewOrderHandler(s service.OrderService, logg *logger.Logger) *OrderHandler {
	return &OrderHandler{service: s, logg: logg}
}

// CreateOrder opens a pending order with the supplier named in the body
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.CreateOrder(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order created", "data": order})
}

// GetOrders lists orders, or only one supplier's with ?supplier_name=
// GET /api/v1/orders
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	p := middleware.PrincipalFrom(c)
	if supplierName := c.Query("supplier_name"); supplierName != "" {
		orders, err := h.service.SearchOrdersBySupplier(c.UserContext(), p, supplierName)
		if err != nil {
			return respondError(c, h.logg, err)
		}
		return c.JSON(orders)
	}

	orders, err := h.service.ListOrders(c.UserContext(), p)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	order, err := h.service.GetOrder(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(order)
}

// UpdateOrderStatus
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	var req service.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	order, err := h.service.UpdateOrderStatus(c.UserContext(), middleware.PrincipalFrom(c), id, req.OrderStatus)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

// DELETE /api/v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	if err := h.service.DeleteOrder(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// AddOrderItem appends a line to the order in the path
// POST /api/v1/orders/:id/items
func (h *OrderHandler) AddOrderItem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	var req service.AddOrderItemRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	req.OrderID = id

	item, err := h.service.AddOrderItem(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order item added", "data": item})
}

// GET /api/v1/orders/:id/items
func (h *OrderHandler) GetOrderItems(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	items, err := h.service.ListOrderItems(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(items)
}

// DELETE /api/v1/order-items/:id
func (h *OrderHandler) DeleteOrderItem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order item")
	}
	if err := h.service.DeleteOrderItem(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Order item deleted"})
}

// GetBalanceReport returns total, paid and balance for every order
// GET /api/v1/reports/order-balances
func (h *OrderHandler) GetBalanceReport(c *fiber.Ctx) error {
	rows, err := h.service.BalanceReport(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(rows)
}
