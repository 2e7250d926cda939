package model

import "time"

type Warehouse struct {
	WarehouseID   int64  `gorm:"column:warehouse_id;primaryKey" json:"warehouse_id"`
	WarehouseCity string `gorm:"column:warehouse_city" json:"warehouse_city"`
	TotalCapacity int64  `gorm:"column:warehouse_total_capacity" json:"warehouse_total_capacity"`
}

func (Warehouse) TableName() string {
	return "warehouse"
}

// Inventory is the stock of one product held in one warehouse.
type Inventory struct {
	InventoryID   int64      `gorm:"column:inventory_id;primaryKey" json:"inventory_id"`
	ProductID     int64      `gorm:"column:product_id" json:"product_id"`
	WarehouseID   int64      `gorm:"column:warehouse_id" json:"warehouse_id"`
	StockLeft     int64      `gorm:"column:stock_left" json:"stock_left"`
	LastRestocked *time.Time `gorm:"column:last_restocked" json:"last_restocked,omitempty"`
}

func (Inventory) TableName() string {
	return "inventory"
}
