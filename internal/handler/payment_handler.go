package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type PaymentHandler struct {
	service service.PaymentService
	logg    *logger.Logger
}

func NewPaymentHandler(s service.PaymentService, logg *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: s, logg: logg}
}

// RecordPayment pays part or all of an order's outstanding balance
// POST /api/v1/payments
func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	var req service.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	payment, err := h.service.RecordPayment(c.UserContext(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Payment recorded", "data": payment})
}

// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "payment")
	}
	payment, err := h.service.GetPayment(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(payment)
}

// GetOrderPayments returns the payment history of an order, newest first
// GET /api/v1/orders/:id/payments
func (h *PaymentHandler) GetOrderPayments(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}
	payments, err := h.service.ListPayments(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(payments)
}

// DELETE /api/v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "payment")
	}
	if err := h.service.DeletePayment(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{"message": "Payment deleted"})
}
