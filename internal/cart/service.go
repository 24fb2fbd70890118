package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Service exposes cart operations for a signed-in user.
type Service interface {
	GetCart(ctx context.Context, userID int64) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID int64, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*CartDTO, error)
	Clear(ctx context.Context, userID int64) error
}

type repository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.CartItem, error)
	FindItem(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	DeleteItem(ctx context.Context, userID, productID int64) (int64, error)
	DeleteRows(ctx context.Context, ids []int64) error
	ClearUser(ctx context.Context, userID int64) error
	ProductsByID(ctx context.Context, ids []int64) (map[int64]models.Product, error)
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService builds the cart service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// CartDTO is the assembled cart with line totals.
type CartDTO struct {
	Items    []CartLineDTO   `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// CartLineDTO is one priced line. Prices come from the current product row,
// not a snapshot; the cart reprices on every read.
type CartLineDTO struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	IsAvailable bool            `json:"isAvailable"`
	AddedAt     time.Time       `json:"addedAt"`
}

// GetCart assembles the user's cart. Rows whose product has been deleted are
// pruned rather than surfaced as broken lines.
func (s *service) GetCart(ctx context.Context, userID int64) (*CartDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.assemble(ctx, userID)
}

// AddItem puts quantity units of the product in the cart, stacking onto an
// existing line. Quantity is capped at the available stock.
func (s *service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartDTO, error) {
	if err := validateLine(userID, productID, quantity); err != nil {
		return nil, err
	}

	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	target := quantity
	if existing != nil {
		target += existing.Quantity
	}
	target = capToStock(target, product)

	if existing != nil {
		if err := s.repo.UpdateQuantity(ctx, existing.ID, target); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
	} else {
		item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: target}
		if err := s.repo.Create(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
		}
	}

	return s.assemble(ctx, userID)
}

// UpdateItem sets the line quantity. Zero removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, productID int64, quantity int) (*CartDTO, error) {
	if userID <= 0 || productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	if err := s.repo.UpdateQuantity(ctx, existing.ID, capToStock(quantity, product)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.assemble(ctx, userID)
}

// RemoveItem drops the line. Removing a line that is not there is not an
// error; the cart ends in the requested state either way.
func (s *service) RemoveItem(ctx context.Context, userID, productID int64) (*CartDTO, error) {
	if userID <= 0 || productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if _, err := s.repo.DeleteItem(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return s.assemble(ctx, userID)
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.ClearUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) assemble(ctx context.Context, userID int64) (*CartDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := s.repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	cart := &CartDTO{Items: []CartLineDTO{}, Subtotal: decimal.Zero}
	var stale []int64
	for _, row := range rows {
		product, ok := products[row.ProductID]
		if !ok {
			stale = append(stale, row.ID)
			continue
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(row.Quantity)))
		cart.Items = append(cart.Items, CartLineDTO{
			ProductID:   product.ID,
			Name:        product.Name,
			UnitPrice:   product.Price,
			Quantity:    row.Quantity,
			LineTotal:   lineTotal,
			IsAvailable: product.IsAvailable,
			AddedAt:     row.CreatedAt,
		})
		cart.Subtotal = cart.Subtotal.Add(lineTotal)
		cart.Count += row.Quantity
	}

	if len(stale) > 0 {
		if err := s.repo.DeleteRows(ctx, stale); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "user_id", userID), "failed to prune stale cart lines", err)
		}
	}
	return cart, nil
}

func (s *service) loadSellableProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available")
	}
	return product, nil
}

func validateLine(userID, productID int64, quantity int) error {
	if userID <= 0 || productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

// capToStock clamps the requested quantity to the stock on hand. Products
// without an inventory row fall back to the quantity column.
func capToStock(quantity int, product *models.Product) int {
	stock := product.Quantity
	if product.Inventory != nil {
		stock = product.Inventory.Quantity
	}
	if stock > 0 && quantity > stock {
		return stock
	}
	return quantity
}
