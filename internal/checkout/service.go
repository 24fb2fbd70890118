package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/internal/orders"
	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

// Service turns a cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, userID int64, input PlaceOrderInput) (*orders.OrderDTO, error)
}

// PlaceOrderInput selects the shipping address: a saved address book entry
// by id, or an inline address.
type PlaceOrderInput struct {
	AddressID int64
	Shipping  *ShippingInput
}

// ShippingInput is an inline shipping address.
type ShippingInput struct {
	Line1  string
	Line2  *string
	City   string
	State  string
	Postal string
	Phone  *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository interface {
	WithTx(tx *gorm.DB) *Repository
	CartLines(ctx context.Context, userID int64) ([]models.CartItem, error)
	ProductsByID(ctx context.Context, ids []int64) (map[int64]models.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) (ok, mirrored bool, err error)
	CreateOrder(ctx context.Context, order *models.Order) error
	ClearCart(ctx context.Context, userID int64) error
	FindAddress(ctx context.Context, id, userID int64) (*models.UserAddress, error)
}

type service struct {
	repo repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the checkout service.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// PlaceOrder snapshots the cart into an order, decrements stock, and clears
// the cart, all in one transaction. Item names and prices are copied so
// later catalog edits do not rewrite order history.
func (s *service) PlaceOrder(ctx context.Context, userID int64, input PlaceOrderInput) (*orders.OrderDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	shipping, err := s.resolveShipping(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	var placed *models.Order
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lines, err := repo.CartLines(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		ids := make([]int64, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		products, err := repo.ProductsByID(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}

		order := &models.Order{
			UserID:     userID,
			Status:     enums.OrderStatusPending,
			Subtotal:   decimal.Zero,
			Total:      decimal.Zero,
			ShipLine1:  shipping.Line1,
			ShipLine2:  shipping.Line2,
			ShipCity:   shipping.City,
			ShipState:  shipping.State,
			ShipPostal: shipping.Postal,
			ShipPhone:  shipping.Phone,
		}

		for _, line := range lines {
			product, ok := products[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "a cart item is no longer sold")
			}
			if !product.IsAvailable {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("%s is no longer available", product.Name))
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			productID := product.ID
			order.Items = append(order.Items, models.OrderItem{
				ProductID: &productID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
			})
			order.Subtotal = order.Subtotal.Add(lineTotal)

			decremented, mirrored, err := repo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !decremented {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock for %s", product.Name))
			}
			if !mirrored {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"product_id": product.ID,
				}), "inventory row missing or diverged during checkout")
			}
		}
		order.Total = order.Subtotal

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		if err := repo.ClearCart(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		placed = order
		return nil
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "place order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": placed.ID,
		"user_id":  userID,
		"total":    placed.Total.String(),
	}), "order placed")
	return orders.NewOrderDTO(placed), nil
}

func (s *service) resolveShipping(ctx context.Context, userID int64, input PlaceOrderInput) (*ShippingInput, error) {
	if input.AddressID > 0 {
		address, err := s.repo.FindAddress(ctx, input.AddressID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		return &ShippingInput{
			Line1:  address.Line1,
			Line2:  address.Line2,
			City:   address.City,
			State:  address.State,
			Postal: address.PostalCode,
			Phone:  address.Phone,
		}, nil
	}

	if input.Shipping == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	shipping := *input.Shipping
	if strings.TrimSpace(shipping.Line1) == "" ||
		strings.TrimSpace(shipping.City) == "" ||
		strings.TrimSpace(shipping.State) == "" ||
		strings.TrimSpace(shipping.Postal) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	return &shipping, nil
}
