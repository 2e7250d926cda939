package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{OrderPending, OrderReceived, OrderCancelled}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// CanTransitionTo reports whether an order may move from s to next.
// Only pending orders move, and only to received or cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderPending && (next == OrderReceived || next == OrderCancelled)
}

type Order struct {
	OrderID     int64       `gorm:"column:order_id;primaryKey" json:"order_id"`
	SupplierID  *int64      `gorm:"column:supplier_id" json:"supplier_id,omitempty"`
	OrderDate   time.Time   `gorm:"column:order_date" json:"order_date"`
	OrderStatus OrderStatus `gorm:"column:order_status" json:"order_status"`
	CreatedBy   *int64      `gorm:"column:created_by" json:"created_by,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	OrderItemID     int64           `gorm:"column:order_item_id;primaryKey" json:"order_item_id"`
	OrderID         int64           `gorm:"column:order_id" json:"order_id"`
	ProductID       int64           `gorm:"column:product_id" json:"product_id"`
	QuantityOrdered int64           `gorm:"column:quantity_ordered" json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is quantity_ordered × unit_price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.QuantityOrdered))
}

// OrderSummary is an order joined with its supplier name and creator username.
type OrderSummary struct {
	OrderID      int64       `gorm:"column:order_id" json:"order_id"`
	SupplierName *string     `gorm:"column:supplier_name" json:"supplier_name"`
	OrderDate    time.Time   `gorm:"column:order_date" json:"order_date"`
	OrderStatus  OrderStatus `gorm:"column:order_status" json:"order_status"`
	CreatedBy    *string     `gorm:"column:created_by" json:"created_by"`
}

// OrderItemLine is one item of an order with its product name and line total.
type OrderItemLine struct {
	OrderItemID     int64           `gorm:"column:order_item_id" json:"order_item_id"`
	ProductName     string          `gorm:"column:product_name" json:"product_name"`
	QuantityOrdered int64           `gorm:"column:quantity_ordered" json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
	Total           decimal.Decimal `gorm:"column:total" json:"total"`
}

// OrderBalance is one row of the order balance report.
type OrderBalance struct {
	OrderID      int64           `gorm:"column:order_id" json:"order_id"`
	SupplierName *string         `gorm:"column:supplier_name" json:"supplier_name"`
	OrderDate    time.Time       `gorm:"column:order_date" json:"order_date"`
	OrderStatus  OrderStatus     `gorm:"column:order_status" json:"order_status"`
	Total        decimal.Decimal `gorm:"column:order_total" json:"total"`
	Paid         decimal.Decimal `gorm:"column:paid" json:"paid"`
	Balance      decimal.Decimal `gorm:"-" json:"balance"`
}
