package service

import (
	"context"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/logger"
)

type WarehouseService interface {
	CreateWarehouse(ctx context.Context, p *model.Principal, req CreateWarehouseRequest) (*model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, p *model.Principal, warehouseID int64, req UpdateWarehouseRequest) (*model.Warehouse, error)
	DeleteWarehouse(ctx context.Context, p *model.Principal, warehouseID int64) error
	GetWarehouse(ctx context.Context, p *model.Principal, warehouseID int64) (*model.Warehouse, error)
	SearchWarehouse(ctx context.Context, p *model.Principal, city string) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, p *model.Principal) ([]model.Warehouse, error)
}

type CreateWarehouseRequest struct {
	WarehouseCity string `json:"warehouse_city" validate:"required,max=100"`
	TotalCapacity int64  `json:"warehouse_total_capacity"`
}

type UpdateWarehouseRequest struct {
	WarehouseCity *string `json:"warehouse_city" validate:"omitempty,min=1,max=100"`
	TotalCapacity *int64  `json:"warehouse_total_capacity"`
}

type warehouseService struct {
	acc  *store.Accessor
	logg *logger.Logger
}

func NewWarehouseService(acc *store.Accessor, logg *logger.Logger) WarehouseService {
	return &warehouseService{acc: acc, logg: loggerOrNop(logg)}
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, p *model.Principal, req CreateWarehouseRequest) (*model.Warehouse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceWarehouse)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.TotalCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	id, err := s.acc.Insert(ctx, store.TableWarehouse, map[string]any{
		"warehouse_city":           req.WarehouseCity,
		"warehouse_total_capacity": req.TotalCapacity,
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "warehouse_id", id), "warehouse created")
	return s.view(ctx, s.acc, id)
}

// UpdateWarehouse changes city or capacity. Capacity cannot drop below the stock already held.
func (s *warehouseService) UpdateWarehouse(ctx context.Context, p *model.Principal, warehouseID int64, req UpdateWarehouseRequest) (*model.Warehouse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceWarehouse)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.TotalCapacity != nil && *req.TotalCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	var result *model.Warehouse
	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		_, total, err := lockWarehouseStock(ctx, tx, warehouseID)
		if err != nil {
			return err
		}
		if req.TotalCapacity != nil && *req.TotalCapacity < total {
			return ErrCapacityExceeded.WithDetails(map[string]any{
				"warehouse_id":  warehouseID,
				"capacity":      *req.TotalCapacity,
				"current_total": total,
			})
		}

		fields := map[string]any{}
		setIfPresent(fields, "warehouse_city", req.WarehouseCity)
		setIfPresent(fields, "warehouse_total_capacity", req.TotalCapacity)
		if err := tx.Update(ctx, store.TableWarehouse, "warehouse_id", warehouseID, fields); err != nil {
			return err
		}
		result, err = s.view(ctx, tx, warehouseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "warehouse_id", warehouseID), "warehouse updated")
	return result, nil
}

func (s *warehouseService) DeleteWarehouse(ctx context.Context, p *model.Principal, warehouseID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceWarehouse)
	if err != nil {
		return err
	}
	if err := s.acc.Delete(ctx, store.TableWarehouse, "warehouse_id", warehouseID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "warehouse_id", warehouseID), "warehouse deleted")
	return nil
}

func (s *warehouseService) GetWarehouse(ctx context.Context, p *model.Principal, warehouseID int64) (*model.Warehouse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceWarehouse)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.acc, warehouseID)
}

func (s *warehouseService) SearchWarehouse(ctx context.Context, p *model.Principal, city string) (*model.Warehouse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceWarehouse)
	if err != nil {
		return nil, err
	}
	warehouse, found, err := store.ViewAs[model.Warehouse](ctx, s.acc, store.TableWarehouse, "warehouse_city", city)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWarehouseNotFound.WithDetails(map[string]any{"warehouse_city": city})
	}
	return warehouse, nil
}

func (s *warehouseService) ListWarehouses(ctx context.Context, p *model.Principal) ([]model.Warehouse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceWarehouse)
	if err != nil {
		return nil, err
	}
	var warehouses []model.Warehouse
	if err := s.acc.ListInto(ctx, store.TableWarehouse, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (s *warehouseService) view(ctx context.Context, acc *store.Accessor, warehouseID int64) (*model.Warehouse, error) {
	warehouse, found, err := store.ViewAs[model.Warehouse](ctx, acc, store.TableWarehouse, "warehouse_id", warehouseID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWarehouseNotFound.WithDetails(map[string]any{"warehouse_id": warehouseID})
	}
	return warehouse, nil
}
