package model

import "github.com/shopspring/decimal"

type Product struct {
	ProductID    int64           `gorm:"column:product_id;primaryKey" json:"product_id"`
	ProductName  string          `gorm:"column:product_name" json:"product_name"`
	Category     *string         `gorm:"column:category" json:"category,omitempty"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
	IsAvailable  bool            `gorm:"column:is_available" json:"is_available"`
	ReorderLevel *int            `gorm:"column:reorder_level" json:"reorder_level,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
