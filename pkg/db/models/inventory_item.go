package models

import "time"

// InventoryItem tracks the stock count per product in its own row so stock
// mutations do not rewrite the product record.
type InventoryItem struct {
	ProductID         int64     `gorm:"column:product_id;primaryKey"`
	Quantity          int       `gorm:"column:quantity;not null;default:0"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null;default:0"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
