package model

type Supplier struct {
	SupplierID    int64   `gorm:"column:supplier_id;primaryKey" json:"supplier_id"`
	SupplierName  string  `gorm:"column:supplier_name" json:"supplier_name"`
	SupplierPhone *string `gorm:"column:supplier_phone" json:"supplier_phone,omitempty"`
	SupplierEmail *string `gorm:"column:supplier_email" json:"supplier_email,omitempty"`
	SupplierCity  *string `gorm:"column:supplier_city" json:"supplier_city,omitempty"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
