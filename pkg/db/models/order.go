package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qrobotics/qrobotics-backend/pkg/enums"
)

// Order is a checkout snapshot. Address fields are copied at checkout time so
// later edits to the address book do not rewrite order history.
type Order struct {
	ID         int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int64             `gorm:"column:user_id;not null"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Subtotal   decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Total      decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	ShipLine1  string            `gorm:"column:ship_line1;not null;default:''"`
	ShipLine2  *string           `gorm:"column:ship_line2"`
	ShipCity   string            `gorm:"column:ship_city;not null;default:''"`
	ShipState  string            `gorm:"column:ship_state;not null;default:''"`
	ShipPostal string            `gorm:"column:ship_postal;not null;default:''"`
	ShipPhone  *string           `gorm:"column:ship_phone"`
	Items      []OrderItem       `gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the purchased product at its checkout price. ProductID
// is nullable so deleting a product later does not orphan order history.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null"`
	ProductID *int64          `gorm:"column:product_id"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string { return "order_items" }
