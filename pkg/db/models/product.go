package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ProductCode *string         `gorm:"column:product_code"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	CategoryID  *int64          `gorm:"column:category_id"`
	IsAvailable bool            `gorm:"column:is_available;not null;default:false"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID"`
	Inventory   *InventoryItem  `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
