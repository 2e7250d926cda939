package model

import "github.com/shopspring/decimal"

// DashboardStats summarises stock across all warehouses.
type DashboardStats struct {
	TotalProducts   int64           `gorm:"column:total_products" json:"total_products"`
	TotalWarehouses int64           `gorm:"column:total_warehouses" json:"total_warehouses"`
	TotalStock      int64           `gorm:"column:total_stock" json:"total_stock"`
	StockValue      decimal.Decimal `gorm:"column:stock_value" json:"stock_value"`
	LowStockCount   int64           `gorm:"-" json:"low_stock_count"`
}

// LowStockProduct is a product whose stock across warehouses is below its reorder level.
type LowStockProduct struct {
	ProductID    int64  `gorm:"column:product_id" json:"product_id"`
	ProductName  string `gorm:"column:product_name" json:"product_name"`
	ReorderLevel int64  `gorm:"column:reorder_level" json:"reorder_level"`
	StockLeft    int64  `gorm:"column:stock_left" json:"stock_left"`
}
