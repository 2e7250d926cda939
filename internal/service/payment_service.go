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

const rulePaymentReconciliation = "payment_reconciliation"

type PaymentService interface {
	RecordPayment(ctx context.Context, p *model.Principal, req RecordPaymentRequest) (*model.Payment, error)
	GetPayment(ctx context.Context, p *model.Principal, paymentID int64) (*model.Payment, error)
	ListPayments(ctx context.Context, p *model.Principal, orderID int64) ([]model.Payment, error)
	DeletePayment(ctx context.Context, p *model.Principal, paymentID int64) error
}

type RecordPaymentRequest struct {
	OrderID    int64           `json:"order_id" validate:"required,gt=0"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type paymentService struct {
	acc     *store.Accessor
	hub     Broadcaster
	logg    *logger.Logger
	metrics *metrics.RuleMetrics
}

func NewPaymentService(acc *store.Accessor, hub Broadcaster, logg *logger.Logger, m *metrics.RuleMetrics) PaymentService {
	return &paymentService{
		acc:     acc,
		hub:     broadcasterOrNop(hub),
		logg:    loggerOrNop(logg),
		metrics: m,
	}
}

// RecordPayment adds a payment against an order. The order row stays locked
// while the paid total is checked, so concurrent payments cannot overshoot.
func (s *paymentService) RecordPayment(ctx context.Context, p *model.Principal, req RecordPaymentRequest) (*model.Payment, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourcePayment)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.AmountPaid.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !req.AmountPaid.Equal(req.AmountPaid.Round(2)) {
		return nil, ErrSubCentAmount.WithDetails(map[string]any{"amount_paid": req.AmountPaid.String()})
	}
	ctx = s.logg.WithField(ctx, "order_id", req.OrderID)

	started := time.Now()
	var (
		result *model.Payment
		total  decimal.Decimal
		paid   decimal.Decimal
	)
	err = s.acc.Transaction(ctx, func(tx *store.Accessor) error {
		// 1. Lock the order
		order, found, err := tx.LockRow(ctx, store.TableOrders, "order_id", req.OrderID)
		if err != nil {
			return err
		}
		if !found {
			return ErrOrderNotFound
		}
		if status, _ := order.String("order_status"); status == string(model.OrderCancelled) {
			return ErrOrderNotPayable
		}

		// 2. Reconcile against the order total
		if total, err = sumMoney(ctx, tx, store.StmtOrderTotal, req.OrderID); err != nil {
			return err
		}
		if total.IsZero() {
			return ErrOrderHasNoItems
		}
		if paid, err = sumMoney(ctx, tx, store.StmtOrderPaid, req.OrderID); err != nil {
			return err
		}
		cumulative := paid.Add(req.AmountPaid)
		if cumulative.GreaterThan(total) {
			return ErrOverpayment.WithDetails(map[string]any{
				"order_total":  total.StringFixed(2),
				"already_paid": paid.StringFixed(2),
				"requested":    req.AmountPaid.StringFixed(2),
				"remaining":    total.Sub(paid).StringFixed(2),
			})
		}

		// 3. Insert with the derived status
		fields := map[string]any{
			"order_id":       req.OrderID,
			"amount_paid":    req.AmountPaid.Round(2),
			"payment_status": string(model.DerivePaymentStatus(cumulative, total)),
		}
		if p.UserID > 0 {
			fields["recorded_by"] = p.UserID
		}
		paymentID, err := tx.Insert(ctx, store.TablePayments, fields)
		if err != nil {
			return err
		}
		result, _, err = store.ViewAs[model.Payment](ctx, tx, store.TablePayments, "payment_id", paymentID)
		return err
	})
	observeRule(s.metrics, rulePaymentReconciliation, started, err)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"requested": req.AmountPaid.String(),
			"error":     err.Error(),
		}), "payment rejected")
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_id": result.PaymentID,
		"status":     string(result.PaymentStatus),
	}), "payment recorded")
	s.hub.Publish(policy.ResourcePayment, map[string]any{
		"type":   "payment_update",
		"action": "payment_recorded",
		"payment": map[string]any{
			"id":          result.PaymentID,
			"order_id":    result.OrderID,
			"amount_paid": result.AmountPaid.StringFixed(2),
			"status":      string(result.PaymentStatus),
			"order_total": total.StringFixed(2),
			"balance":     total.Sub(paid).Sub(result.AmountPaid).StringFixed(2),
		},
		"user":    actor(p),
		"message": fmt.Sprintf("%s recorded %s on order #%d", p.Username, result.AmountPaid.StringFixed(2), result.OrderID),
	})
	return result, nil
}

func (s *paymentService) GetPayment(ctx context.Context, p *model.Principal, paymentID int64) (*model.Payment, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourcePayment)
	if err != nil {
		return nil, err
	}
	payment, found, err := store.ViewAs[model.Payment](ctx, s.acc, store.TablePayments, "payment_id", paymentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments returns the payment history of an order, newest first.
func (s *paymentService) ListPayments(ctx context.Context, p *model.Principal, orderID int64) ([]model.Payment, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourcePayment)
	if err != nil {
		return nil, err
	}
	return store.QueryAs[model.Payment](ctx, s.acc, store.StmtPaymentHistory, map[string]any{"order_id": orderID})
}

func (s *paymentService) DeletePayment(ctx context.Context, p *model.Principal, paymentID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourcePayment)
	if err != nil {
		return err
	}
	if err := s.acc.Delete(ctx, store.TablePayments, "payment_id", paymentID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "payment_id", paymentID), "payment deleted")
	return nil
}

// sumMoney runs one of the order aggregate statements.
func sumMoney(ctx context.Context, acc *store.Accessor, stmt store.Statement, orderID int64) (decimal.Decimal, error) {
	var sum struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := acc.Executor().Scan(ctx, stmt, map[string]any{"order_id": orderID}, &sum); err != nil {
		return decimal.Zero, err
	}
	return sum.Total.Round(2), nil
}
