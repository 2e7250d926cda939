package service

import (
	"context"
	"time"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	pkgerrors "go-warehouse-ms/pkg/errors"
	"go-warehouse-ms/pkg/logger"
	"go-warehouse-ms/pkg/metrics"
	"go-warehouse-ms/pkg/validator"
)

var (
	ErrProductNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	ErrWarehouseNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
	ErrSupplierNotFound  = pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	ErrInventoryNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
	ErrOrderNotFound     = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	ErrOrderItemNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	ErrPaymentNotFound   = pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	ErrUserNotFound      = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")

	ErrCapacityExceeded  = pkgerrors.New(pkgerrors.CodeConflict, "warehouse capacity exceeded")
	ErrOverpayment       = pkgerrors.New(pkgerrors.CodeConflict, "payment exceeds order balance")
	ErrTotalBelowPaid    = pkgerrors.New(pkgerrors.CodeConflict, "order total cannot drop below amount paid")
	ErrUsernameTaken     = pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	ErrCannotDeleteSelf  = pkgerrors.New(pkgerrors.CodeConflict, "cannot delete the signed-in user")
	ErrIllegalTransition = pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed")
	ErrOrderNotPayable   = pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot take payments")

	ErrOrderHasNoItems = pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	ErrNegativeStock   = pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	ErrInvalidQuantity = pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	ErrInvalidAmount   = pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	ErrSubCentAmount   = pkgerrors.New(pkgerrors.CodeValidation, "money values allow at most two decimal places")
	ErrInvalidPrice    = pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	ErrInvalidCapacity = pkgerrors.New(pkgerrors.CodeValidation, "capacity must be greater than zero")
)

// Broadcaster receives change events after a write commits. resource decides
// which roles may see the event.
type Broadcaster interface {
	Publish(resource policy.Resource, payload map[string]any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(policy.Resource, map[string]any) {}

func broadcasterOrNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

func loggerOrNop(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}

// authorize checks the policy and returns ctx carrying the principal's log fields.
func authorize(ctx context.Context, logg *logger.Logger, p *model.Principal, action policy.Action, resource policy.Resource) (context.Context, error) {
	if err := policy.Authorize(p, action, resource); err != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"action":   string(action),
			"resource": string(resource),
		}), "authorization denied")
		return ctx, err
	}
	return logg.WithActor(ctx, p.UserID, string(p.Role)), nil
}

func validate(req any) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, validator.Summary(errs)).WithDetails(errs)
	}
	return nil
}

func actor(p *model.Principal) map[string]any {
	return map[string]any{
		"id":       p.UserID,
		"username": p.Username,
		"role":     string(p.Role),
	}
}

func resolveProduct(ctx context.Context, acc *store.Accessor, name string) (int64, error) {
	id, found, err := acc.ResolveKey(ctx, store.TableProducts, "product_id", []string{"product_name"}, []any{name})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrProductNotFound.WithDetails(map[string]any{"product_name": name})
	}
	return id, nil
}

func resolveWarehouse(ctx context.Context, acc *store.Accessor, city string) (int64, error) {
	id, found, err := acc.ResolveKey(ctx, store.TableWarehouse, "warehouse_id", []string{"warehouse_city"}, []any{city})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrWarehouseNotFound.WithDetails(map[string]any{"warehouse_city": city})
	}
	return id, nil
}

func resolveSupplier(ctx context.Context, acc *store.Accessor, name string) (int64, error) {
	id, found, err := acc.ResolveKey(ctx, store.TableSuppliers, "supplier_id", []string{"supplier_name"}, []any{name})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrSupplierNotFound.WithDetails(map[string]any{"supplier_name": name})
	}
	return id, nil
}

// observeRule records the outcome of a business rule evaluation.
func observeRule(m *metrics.RuleMetrics, rule string, started time.Time, err error) {
	outcome := metrics.OutcomeAccepted
	switch {
	case err == nil:
	case pkgerrors.IsExecution(err) || pkgerrors.IsCode(err, pkgerrors.CodeInternal):
		outcome = metrics.OutcomeFailed
	default:
		outcome = metrics.OutcomeRejected
	}
	m.Observe(rule, outcome, time.Since(started))
}

// setIfPresent copies a non-nil optional field into a column map.
func setIfPresent[T any](fields map[string]any, column string, value *T) {
	if value != nil {
		fields[column] = *value
	}
}
