package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
	"github.com/qrobotics/qrobotics-backend/pkg/pagination"
)

// OrderDTO is the API shape of a placed order.
type OrderDTO struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"userId"`
	Status    enums.OrderStatus `json:"status"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Total     decimal.Decimal   `json:"total"`
	Shipping  ShippingDTO       `json:"shipping"`
	Items     []OrderItemDTO    `json:"items"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ShippingDTO is the address snapshot taken at checkout.
type ShippingDTO struct {
	Line1  string  `json:"line1"`
	Line2  *string `json:"line2,omitempty"`
	City   string  `json:"city"`
	State  string  `json:"state"`
	Postal string  `json:"postal"`
	Phone  *string `json:"phone,omitempty"`
}

// OrderItemDTO is one purchased line at its checkout price. ProductID is nil
// when the product has since been deleted.
type OrderItemDTO struct {
	ID        int64           `json:"id"`
	ProductID *int64          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// ListResult is a page of orders with its pagination block.
type ListResult struct {
	Orders     []OrderDTO       `json:"orders"`
	Pagination pagination.Block `json:"pagination"`
}

// NewOrderDTO maps a stored order row to the API shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return &OrderDTO{
		ID:       order.ID,
		UserID:   order.UserID,
		Status:   order.Status,
		Subtotal: order.Subtotal,
		Total:    order.Total,
		Shipping: ShippingDTO{
			Line1:  order.ShipLine1,
			Line2:  order.ShipLine2,
			City:   order.ShipCity,
			State:  order.ShipState,
			Postal: order.ShipPostal,
			Phone:  order.ShipPhone,
		},
		Items:     items,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
