package model

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

type StockMovement struct {
	MovementID   int64        `gorm:"column:movement_id;primaryKey" json:"movement_id"`
	ProductID    int64        `gorm:"column:product_id" json:"product_id"`
	WarehouseID  int64        `gorm:"column:warehouse_id" json:"warehouse_id"`
	MovementType MovementType `gorm:"column:movement_type" json:"movement_type"`
	Quantity     int64        `gorm:"column:quantity" json:"quantity"`
	MovementDate time.Time    `gorm:"column:movement_date" json:"movement_date"`
	PerformedBy  *int64       `gorm:"column:performed_by" json:"performed_by,omitempty"`
}

func (StockMovement) TableName() string {
	return "stock_movement"
}

// StockMovementEntry is a movement joined with product, warehouse and performer names.
type StockMovementEntry struct {
	MovementID    int64        `gorm:"column:movement_id" json:"movement_id"`
	ProductName   string       `gorm:"column:product_name" json:"product_name"`
	WarehouseCity string       `gorm:"column:warehouse_city" json:"warehouse_city"`
	MovementType  MovementType `gorm:"column:movement_type" json:"movement_type"`
	Quantity      int64        `gorm:"column:quantity" json:"quantity"`
	MovementDate  time.Time    `gorm:"column:movement_date" json:"movement_date"`
	PerformedBy   *string      `gorm:"column:performed_by" json:"performed_by"`
}
