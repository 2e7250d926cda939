package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// DerivePaymentStatus reconciles the cumulative amount paid against the order total.
func DerivePaymentStatus(cumulative, total decimal.Decimal) PaymentStatus {
	switch {
	case cumulative.GreaterThanOrEqual(total):
		return PaymentCompleted
	case cumulative.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

type Payment struct {
	PaymentID     int64           `gorm:"column:payment_id;primaryKey" json:"payment_id"`
	OrderID       int64           `gorm:"column:order_id" json:"order_id"`
	AmountPaid    decimal.Decimal `gorm:"column:amount_paid" json:"amount_paid"`
	PaymentStatus PaymentStatus   `gorm:"column:payment_status" json:"payment_status"`
	PaymentDate   time.Time       `gorm:"column:payment_date" json:"payment_date"`
	RecordedBy    *int64          `gorm:"column:recorded_by" json:"recorded_by,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
