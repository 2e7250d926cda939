package service

import (
	"context"
	"fmt"
	"time"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/logger"
	"go-warehouse-ms/pkg/metrics"
)

const ruleInventoryCapacity = "inventory_capacity"

type InventoryService interface {
	AddInventory(ctx context.Context, p *model.Principal, req AddInventoryRequest) (*model.Inventory, error)
	UpdateInventory(ctx context.Context, p *model.Principal, inventoryID int64, req UpdateInventoryRequest) (*model.Inventory, error)
	SearchInventory(ctx context.Context, p *model.Principal, productName, warehouseCity string) (*model.Inventory, error)
	GetInventory(ctx context.Context, p *model.Principal, inventoryID int64) (*model.Inventory, error)
	ListInventory(ctx context.Context, p *model.Principal) ([]model.Inventory, error)
	DeleteInventory(ctx context.Context, p *model.Principal, inventoryID int64) error
}

type AddInventoryRequest struct {
	ProductName   string `json:"product_name" validate:"required"`
	WarehouseCity string `json:"warehouse_city" validate:"required"`
	StockLeft     int64  `json:"stock_left"`
}

type UpdateInventoryRequest struct {
	StockLeft int64 `json:"stock_left"`
}

type inventoryService struct {
	acc     *store.Accessor
	hub     Broadcaster
	logg    *logger.Logger
	metrics *metrics.RuleMetrics
}

func NewInventoryService(acc *store.Accessor, hub Broadcaster, logg *logger.Logger, m *metrics.RuleMetrics) InventoryService {
	return &inventoryService{
		acc:     acc,
		hub:     broadcasterOrNop(hub),
		logg:    loggerOrNop(logg),
		metrics: m,
	}
}

// AddInventory upserts the stock of a product in a warehouse. The warehouse row
// is locked while the capacity check and the write happen in one transaction.
func (s *inventoryService) AddInventory(ctx context.Context, p *model.Principal, req AddInventoryRequest) (*model.Inventory, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.StockLeft < 0 {
		return nil, ErrNegativeStock
	}

	// 1. Resolve names to keys
	productID, err := resolveProduct(ctx, s.acc, req.ProductName)
	if err != nil {
		return nil, err
	}
	warehouseID, err := resolveWarehouse(ctx, s.acc, req.WarehouseCity)
	if err != nil {
		return nil, err
	}

	// 2. Check capacity and write under the warehouse lock
	started := time.Now()
	var (
		result   *model.Inventory
		previous int64
	)
	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		capacity, total, err := lockWarehouseStock(ctx, tx, warehouseID)
		if err != nil {
			return err
		}

		existing, err := store.QueryAs[model.Inventory](ctx, tx, store.StmtInventoryByProductWarehouse, map[string]any{
			"product_id":   productID,
			"warehouse_id": warehouseID,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			previous = existing[0].StockLeft
		}

		if err := checkCapacity(warehouseID, capacity, total-previous, req.StockLeft); err != nil {
			return err
		}

		fields := map[string]any{
			"stock_left":     req.StockLeft,
			"last_restocked": time.Now().UTC(),
		}
		var inventoryID int64
		if len(existing) > 0 {
			inventoryID = existing[0].InventoryID
			if err := tx.Update(ctx, store.TableInventory, "inventory_id", inventoryID, fields); err != nil {
				return err
			}
		} else {
			fields["product_id"] = productID
			fields["warehouse_id"] = warehouseID
			if inventoryID, err = tx.Insert(ctx, store.TableInventory, fields); err != nil {
				return err
			}
		}

		if err := recordMovement(ctx, tx, productID, warehouseID, req.StockLeft-previous, p.UserID); err != nil {
			return err
		}

		result, _, err = store.ViewAs[model.Inventory](ctx, tx, store.TableInventory, "inventory_id", inventoryID)
		return err
	})
	observeRule(s.metrics, ruleInventoryCapacity, started, err)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"warehouse_id": warehouseID,
			"product_id":   productID,
			"requested":    req.StockLeft,
			"error":        err.Error(),
		}), "inventory write rejected")
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "inventory_id", result.InventoryID), "inventory stock set")
	s.publishStock(p, "inventory_set", result, previous, req.ProductName, req.WarehouseCity)
	return result, nil
}

// UpdateInventory replaces stock_left on an existing inventory row, re-checking capacity for the delta.
func (s *inventoryService) UpdateInventory(ctx context.Context, p *model.Principal, inventoryID int64, req UpdateInventoryRequest) (*model.Inventory, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}
	if req.StockLeft < 0 {
		return nil, ErrNegativeStock
	}

	started := time.Now()
	var (
		result   *model.Inventory
		previous int64
	)
	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		current, found, err := store.ViewAs[model.Inventory](ctx, tx, store.TableInventory, "inventory_id", inventoryID)
		if err != nil {
			return err
		}
		if !found {
			return ErrInventoryNotFound
		}

		capacity, total, err := lockWarehouseStock(ctx, tx, current.WarehouseID)
		if err != nil {
			return err
		}
		// re-read under the lock; the row may have moved since the first read
		current, found, err = store.ViewAs[model.Inventory](ctx, tx, store.TableInventory, "inventory_id", inventoryID)
		if err != nil {
			return err
		}
		if !found {
			return ErrInventoryNotFound
		}
		previous = current.StockLeft

		if err := checkCapacity(current.WarehouseID, capacity, total-previous, req.StockLeft); err != nil {
			return err
		}
		if err := tx.Update(ctx, store.TableInventory, "inventory_id", inventoryID, map[string]any{
			"stock_left":     req.StockLeft,
			"last_restocked": time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := recordMovement(ctx, tx, current.ProductID, current.WarehouseID, req.StockLeft-previous, p.UserID); err != nil {
			return err
		}

		result, _, err = store.ViewAs[model.Inventory](ctx, tx, store.TableInventory, "inventory_id", inventoryID)
		return err
	})
	observeRule(s.metrics, ruleInventoryCapacity, started, err)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"inventory_id": inventoryID,
			"requested":    req.StockLeft,
			"error":        err.Error(),
		}), "inventory update rejected")
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "inventory_id", inventoryID), "inventory stock updated")
	s.publishStock(p, "inventory_updated", result, previous, "", "")
	return result, nil
}

func (s *inventoryService) SearchInventory(ctx context.Context, p *model.Principal, productName, warehouseCity string) (*model.Inventory, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}
	productID, err := resolveProduct(ctx, s.acc, productName)
	if err != nil {
		return nil, err
	}
	warehouseID, err := resolveWarehouse(ctx, s.acc, warehouseCity)
	if err != nil {
		return nil, err
	}

	rows, err := store.QueryAs[model.Inventory](ctx, s.acc, store.StmtInventoryByProductWarehouse, map[string]any{
		"product_id":   productID,
		"warehouse_id": warehouseID,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrInventoryNotFound
	}
	return &rows[0], nil
}

func (s *inventoryService) GetInventory(ctx context.Context, p *model.Principal, inventoryID int64) (*model.Inventory, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}
	inv, found, err := store.ViewAs[model.Inventory](ctx, s.acc, store.TableInventory, "inventory_id", inventoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInventoryNotFound
	}
	return inv, nil
}

func (s *inventoryService) ListInventory(ctx context.Context, p *model.Principal) ([]model.Inventory, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceInventory)
	if err != nil {
		return nil, err
	}
	var items []model.Inventory
	if err := s.acc.ListInto(ctx, store.TableInventory, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteInventory removes the row and logs the remaining stock as an outbound movement.
func (s *inventoryService) DeleteInventory(ctx context.Context, p *model.Principal, inventoryID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceInventory)
	if err != nil {
		return err
	}

	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		current, found, err := store.ViewAs[model.Inventory](ctx, tx, store.TableInventory, "inventory_id", inventoryID)
		if err != nil || !found {
			return err
		}
		if err := recordMovement(ctx, tx, current.ProductID, current.WarehouseID, -current.StockLeft, p.UserID); err != nil {
			return err
		}
		return tx.Delete(ctx, store.TableInventory, "inventory_id", inventoryID)
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "inventory_id", inventoryID), "inventory deleted")
	s.hub.Publish(policy.ResourceInventory, map[string]any{
		"type":         "stock_update",
		"action":       "inventory_deleted",
		"inventory_id": inventoryID,
		"user":         actor(p),
		"message":      fmt.Sprintf("%s deleted inventory #%d", p.Username, inventoryID),
	})
	return nil
}

func (s *inventoryService) publishStock(p *model.Principal, action string, inv *model.Inventory, previous int64, productName, warehouseCity string) {
	if inv == nil {
		return
	}
	s.hub.Publish(policy.ResourceInventory, map[string]any{
		"type":   "stock_update",
		"action": action,
		"inventory": map[string]any{
			"id":             inv.InventoryID,
			"product_id":     inv.ProductID,
			"warehouse_id":   inv.WarehouseID,
			"product_name":   productName,
			"warehouse_city": warehouseCity,
			"old_stock":      previous,
			"new_stock":      inv.StockLeft,
		},
		"user":    actor(p),
		"message": fmt.Sprintf("%s set stock of inventory #%d to %d", p.Username, inv.InventoryID, inv.StockLeft),
	})
}

// lockWarehouseStock locks the warehouse row and returns its capacity and current stock total.
func lockWarehouseStock(ctx context.Context, tx *store.Accessor, warehouseID int64) (capacity, total int64, err error) {
	row, found, err := tx.LockRow(ctx, store.TableWarehouse, "warehouse_id", warehouseID)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, ErrWarehouseNotFound
	}
	capacity, _ = row.Int64("warehouse_total_capacity")

	var sum struct {
		Total int64 `gorm:"column:total"`
	}
	if err := tx.Executor().Scan(ctx, store.StmtWarehouseStockTotal, map[string]any{"warehouse_id": warehouseID}, &sum); err != nil {
		return 0, 0, err
	}
	return capacity, sum.Total, nil
}

// checkCapacity rejects a write that would push the warehouse total past its capacity.
// others is the stock already held by every other inventory row of the warehouse.
func checkCapacity(warehouseID, capacity, others, requested int64) error {
	if others+requested <= capacity {
		return nil
	}
	return ErrCapacityExceeded.WithDetails(map[string]any{
		"warehouse_id":  warehouseID,
		"capacity":      capacity,
		"current_total": others,
		"requested":     requested,
		"available":     capacity - others,
	})
}

// recordMovement appends a stock_movement row for a non-zero delta.
func recordMovement(ctx context.Context, tx *store.Accessor, productID, warehouseID, delta, performedBy int64) error {
	if delta == 0 {
		return nil
	}
	movement := model.MovementIn
	if delta < 0 {
		movement = model.MovementOut
		delta = -delta
	}
	fields := map[string]any{
		"product_id":    productID,
		"warehouse_id":  warehouseID,
		"movement_type": string(movement),
		"quantity":      delta,
	}
	if performedBy > 0 {
		fields["performed_by"] = performedBy
	}
	_, err := tx.Insert(ctx, store.TableStockMovement, fields)
	return err
}
