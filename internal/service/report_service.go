package service

import (
	"context"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/logger"
)

type ReportService interface {
	StockMovements(ctx context.Context, p *model.Principal) ([]model.StockMovementEntry, error)
	DashboardStats(ctx context.Context, p *model.Principal) (*model.DashboardStats, error)
	LowStock(ctx context.Context, p *model.Principal) ([]model.LowStockProduct, error)
}

type reportService struct {
	acc  *store.Accessor
	logg *logger.Logger
}

func NewReportService(acc *store.Accessor, logg *logger.Logger) ReportService {
	return &reportService{acc: acc, logg: loggerOrNop(logg)}
}

// StockMovements returns the movement history joined with product, warehouse and performer names.
func (s *reportService) StockMovements(ctx context.Context, p *model.Principal) ([]model.StockMovementEntry, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceStockMovement)
	if err != nil {
		return nil, err
	}
	return store.QueryAs[model.StockMovementEntry](ctx, s.acc, store.StmtStockMovementReport, nil)
}

func (s *reportService) DashboardStats(ctx context.Context, p *model.Principal) (*model.DashboardStats, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}

	var stats model.DashboardStats
	if err := s.acc.Executor().Scan(ctx, store.StmtInventoryStats, nil, &stats); err != nil {
		return nil, err
	}
	stats.StockValue = stats.StockValue.Round(2)

	low, err := store.QueryAs[model.LowStockProduct](ctx, s.acc, store.StmtLowStockProducts, nil)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = int64(len(low))
	return &stats, nil
}

// LowStock lists products whose stock across all warehouses is below their reorder level.
func (s *reportService) LowStock(ctx context.Context, p *model.Principal) ([]model.LowStockProduct, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}
	return store.QueryAs[model.LowStockProduct](ctx, s.acc, store.StmtLowStockProducts, nil)
}
