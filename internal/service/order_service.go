package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/logger"
	"go-warehouse-ms/pkg/metrics"
)

const ruleOrderStatus = "order_status"

type OrderService interface {
	CreateOrder(ctx context.Context, p *model.Principal, req CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, p *model.Principal, orderID int64) (*model.Order, error)
	ListOrders(ctx context.Context, p *model.Principal) ([]model.OrderSummary, error)
	SearchOrdersBySupplier(ctx context.Context, p *model.Principal, supplierName string) ([]model.OrderSummary, error)
	UpdateOrderStatus(ctx context.Context, p *model.Principal, orderID int64, status model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, p *model.Principal, orderID int64) error

	AddOrderItem(ctx context.Context, p *model.Principal, req AddOrderItemRequest) (*model.OrderItem, error)
	ListOrderItems(ctx context.Context, p *model.Principal, orderID int64) (*OrderItemsResponse, error)
	DeleteOrderItem(ctx context.Context, p *model.Principal, orderItemID int64) error

	BalanceReport(ctx context.Context, p *model.Principal) ([]model.OrderBalance, error)
}

type CreateOrderRequest struct {
	SupplierName string `json:"supplier_name" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus model.OrderStatus `json:"order_status" validate:"required,order_status"`
}

type AddOrderItemRequest struct {
	OrderID         int64            `json:"order_id" validate:"required,gt=0"`
	ProductName     string           `json:"product_name" validate:"required"`
	QuantityOrdered int64            `json:"quantity_ordered"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"` // defaults to the product's price
}

type OrderItemsResponse struct {
	OrderID int64                 `json:"order_id"`
	Items   []model.OrderItemLine `json:"items"`
	Total   decimal.Decimal       `json:"total"`
}

type orderService struct {
	acc     *store.Accessor
	hub     Broadcaster
	logg    *logger.Logger
	metrics *metrics.RuleMetrics
}

func NewOrderService(acc *store.Accessor, hub Broadcaster, logg *logger.Logger, m *metrics.RuleMetrics) OrderService {
	return &orderService{
		acc:     acc,
		hub:     broadcasterOrNop(hub),
		logg:    loggerOrNop(logg),
		metrics: m,
	}
}

// CreateOrder opens a pending order for the named supplier.
func (s *orderService) CreateOrder(ctx context.Context, p *model.Principal, req CreateOrderRequest) (*model.Order, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceOrder)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	supplierID, err := resolveSupplier(ctx, s.acc, req.SupplierName)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"supplier_id":  supplierID,
		"order_status": string(model.OrderPending),
	}
	if p.UserID > 0 {
		fields["created_by"] = p.UserID
	}
	orderID, err := s.acc.Insert(ctx, store.TableOrders, fields)
	if err != nil {
		return nil, err
	}

	order, err := s.viewOrder(ctx, s.acc, orderID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "order created")
	s.hub.Publish(policy.ResourceOrder, map[string]any{
		"type":     "order_update",
		"action":   "order_created",
		"order_id": orderID,
		"supplier": req.SupplierName,
		"user":     actor(p),
		"message":  fmt.Sprintf("%s created order #%d for %s", p.Username, orderID, req.SupplierName),
	})
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, p *model.Principal, orderID int64) (*model.Order, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceOrder)
	if err != nil {
		return nil, err
	}
	return s.viewOrder(ctx, s.acc, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, p *model.Principal) ([]model.OrderSummary, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceOrder)
	if err != nil {
		return nil, err
	}
	return store.QueryAs[model.OrderSummary](ctx, s.acc, store.StmtOrderSummaries, nil)
}

func (s *orderService) SearchOrdersBySupplier(ctx context.Context, p *model.Principal, supplierName string) ([]model.OrderSummary, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceOrder)
	if err != nil {
		return nil, err
	}
	return store.QueryAs[model.OrderSummary](ctx, s.acc, store.StmtOrdersBySupplierName, map[string]any{"supplier_name": supplierName})
}

// UpdateOrderStatus moves a pending order to received or cancelled.
func (s *orderService) UpdateOrderStatus(ctx context.Context, p *model.Principal, orderID int64, status model.OrderStatus) (*model.Order, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceOrder)
	if err != nil {
		return nil, err
	}
	if err := validate(UpdateOrderStatusRequest{OrderStatus: status}); err != nil {
		return nil, err
	}

	started := time.Now()
	var (
		result *model.Order
		from   model.OrderStatus
	)
	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		row, found, err := tx.LockRow(ctx, store.TableOrders, "order_id", orderID)
		if err != nil {
			return err
		}
		if !found {
			return ErrOrderNotFound
		}
		raw, _ := row.String("order_status")
		from = model.OrderStatus(raw)
		if !from.CanTransitionTo(status) {
			return ErrIllegalTransition.WithDetails(map[string]any{
				"from": raw,
				"to":   string(status),
			})
		}
		if err := tx.Update(ctx, store.TableOrders, "order_id", orderID, map[string]any{"order_status": string(status)}); err != nil {
			return err
		}
		result, err = s.viewOrder(ctx, tx, orderID)
		return err
	})
	observeRule(s.metrics, ruleOrderStatus, started, err)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID,
			"to":       string(status),
			"error":    err.Error(),
		}), "order status change rejected")
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": orderID,
		"from":     string(from),
		"to":       string(status),
	}), "order status changed")
	s.hub.Publish(policy.ResourceOrder, map[string]any{
		"type":     "order_update",
		"action":   "order_status_changed",
		"order_id": orderID,
		"from":     string(from),
		"to":       string(status),
		"user":     actor(p),
		"message":  fmt.Sprintf("%s marked order #%d as %s", p.Username, orderID, status),
	})
	return result, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, p *model.Principal, orderID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceOrder)
	if err != nil {
		return err
	}
	if err := s.acc.Delete(ctx, store.TableOrders, "order_id", orderID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "order deleted")
	return nil
}

// AddOrderItem appends a line to an existing order, pricing it from the product unless overridden.
func (s *orderService) AddOrderItem(ctx context.Context, p *model.Principal, req AddOrderItemRequest) (*model.OrderItem, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceOrderItem)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.QuantityOrdered <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if req.UnitPrice != nil && !req.UnitPrice.Equal(req.UnitPrice.Round(2)) {
		return nil, ErrSubCentAmount.WithDetails(map[string]any{"unit_price": req.UnitPrice.String()})
	}

	// 1. The order must exist
	if _, err := s.viewOrder(ctx, s.acc, req.OrderID); err != nil {
		return nil, err
	}

	// 2. Resolve product and price
	productID, err := resolveProduct(ctx, s.acc, req.ProductName)
	if err != nil {
		return nil, err
	}
	var price decimal.Decimal
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	} else {
		raw, found, err := s.acc.GetColumn(ctx, store.TableProducts, "unit_price", "product_id", productID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrProductNotFound
		}
		if price, err = store.AsDecimal(raw); err != nil {
			return nil, fmt.Errorf("decoding unit price: %w", err)
		}
	}

	// 3. Insert
	itemID, err := s.acc.Insert(ctx, store.TableOrderItems, map[string]any{
		"order_id":         req.OrderID,
		"product_id":       productID,
		"quantity_ordered": req.QuantityOrdered,
		"unit_price":       price.Round(2),
	})
	if err != nil {
		return nil, err
	}
	item, found, err := store.ViewAs[model.OrderItem](ctx, s.acc, store.TableOrderItems, "order_item_id", itemID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderItemNotFound
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":      req.OrderID,
		"order_item_id": itemID,
	}), "order item added")
	return item, nil
}

// ListOrderItems returns the lines of an order with product names, line totals and the order total.
func (s *orderService) ListOrderItems(ctx context.Context, p *model.Principal, orderID int64) (*OrderItemsResponse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceOrderItem)
	if err != nil {
		return nil, err
	}
	if _, err := s.viewOrder(ctx, s.acc, orderID); err != nil {
		return nil, err
	}

	lines, err := store.QueryAs[model.OrderItemLine](ctx, s.acc, store.StmtOrderItemLines, map[string]any{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for i := range lines {
		lines[i].Total = lines[i].Total.Round(2)
		total = total.Add(lines[i].Total)
	}
	return &OrderItemsResponse{OrderID: orderID, Items: lines, Total: total}, nil
}

func (s *orderService) DeleteOrderItem(ctx context.Context, p *model.Principal, orderItemID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceOrderItem)
	if err != nil {
		return err
	}
	ctx = s.logg.WithField(ctx, "order_item_id", orderItemID)

	raw, found, err := s.acc.GetColumn(ctx, store.TableOrderItems, "order_id", "order_item_id", orderItemID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	orderID, err := store.AsInt64(raw)
	if err != nil {
		return fmt.Errorf("decoding order id: %w", err)
	}

	// Payments already recorded must still fit the reduced total.
	started := time.Now()
	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		_, found, err := tx.LockRow(ctx, store.TableOrders, "order_id", orderID)
		if err != nil {
			return err
		}
		if !found {
			return ErrOrderNotFound
		}
		if err := tx.Delete(ctx, store.TableOrderItems, "order_item_id", orderItemID); err != nil {
			return err
		}
		total, err := sumMoney(ctx, tx, store.StmtOrderTotal, orderID)
		if err != nil {
			return err
		}
		paid, err := sumMoney(ctx, tx, store.StmtOrderPaid, orderID)
		if err != nil {
			return err
		}
		if paid.GreaterThan(total) {
			return ErrTotalBelowPaid.WithDetails(map[string]any{
				"order_id":     orderID,
				"new_total":    total.StringFixed(2),
				"already_paid": paid.StringFixed(2),
			})
		}
		return nil
	})
	observeRule(s.metrics, rulePaymentReconciliation, started, err)
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", orderID), "order item deleted")
	return nil
}

// BalanceReport lists every order with its total, amount paid and remaining balance.
func (s *orderService) BalanceReport(ctx context.Context, p *model.Principal) ([]model.OrderBalance, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourcePayment)
	if err != nil {
		return nil, err
	}
	rows, err := store.QueryAs[model.OrderBalance](ctx, s.acc, store.StmtOrderBalances, nil)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
		rows[i].Paid = rows[i].Paid.Round(2)
		rows[i].Balance = rows[i].Total.Sub(rows[i].Paid)
	}
	return rows, nil
}

func (s *orderService) viewOrder(ctx context.Context, acc *store.Accessor, orderID int64) (*model.Order, error) {
	order, found, err := store.ViewAs[model.Order](ctx, acc, store.TableOrders, "order_id", orderID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound.WithDetails(map[string]any{"order_id": orderID})
	}
	return order, nil
}
