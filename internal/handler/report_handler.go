package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-warehouse-ms/internal/middleware"
	"go-warehouse-ms/internal/service"
	"go-warehouse-ms/pkg/logger"
)

type ReportHandler struct {
	service service.ReportService
	logg    *logger.Logger
}

func NewReportHandler(s service.ReportService, logg *logger.Logger) *ReportHandler {
	return &ReportHandler{service: s, logg: logg}
}

// GetDashboardStats returns overview statistics
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(stats)
}

// GetStockMovement returns every recorded stock movement, newest first
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	data, err := h.service.StockMovements(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(fiber.Map{
		"count": len(data),
		"data":  data,
	})
}

func (h *ReportHandler) GetLowStock(c *fiber.Ctx) error {
	data, err := h.service.LowStock(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return respondError(c, h.logg, err)
	}
	return c.JSON(data)
}
