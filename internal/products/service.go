package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/settle"
)

// Service exposes product management and the product deletion routine.
type Service interface {
	GetProduct(ctx context.Context, id int64) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) (*DeleteProductResult, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (*InventoryDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ProductCode *string
	Quantity    int
	CategoryID  *int64
	Tags        []string
	// IsAvailable overrides the quantity-derived flag when set.
	IsAvailable       *bool
	LowStockThreshold int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ProductCode *string
	Quantity    *int
	CategoryID  *int64
	ClearCode   bool
	ClearCat    bool
	Tags        *[]string
	IsAvailable *bool
}

// DeleteProductResult reports the routine's effect; Warning is set when one
// or more media destroys failed.
type DeleteProductResult struct {
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

// mediaDestroyer is the Media Store surface the routine needs.
type mediaDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	CreateWithInventory(ctx context.Context, product *models.Product, inventory *models.InventoryItem) error
	UpdateWithInventory(ctx context.Context, product *models.Product, inventory *models.InventoryItem) error
	ListImages(ctx context.Context, productID int64) ([]models.ProductImage, error)
	DeleteImages(ctx context.Context, productID int64) error
	DeleteInventory(ctx context.Context, productID int64) error
	Delete(ctx context.Context, id int64) error
	GetInventory(ctx context.Context, productID int64) (*models.InventoryItem, error)
	SetQuantity(ctx context.Context, productID int64, quantity int, available bool) error
}

type service struct {
	repo  repository
	media mediaDestroyer
	logg  *logger.Logger
}

// NewService constructs the product service.
func NewService(repo *Repository, media mediaDestroyer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if media == nil {
		return nil, fmt.Errorf("media store client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, media: media, logg: logg}, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := newProductDTO(*product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductFields(input.Name, input.Price, input.Quantity); err != nil {
		return nil, err
	}

	available := input.Quantity > 0
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		ProductCode: input.ProductCode,
		Quantity:    input.Quantity,
		CategoryID:  input.CategoryID,
		IsAvailable: available,
		Tags:        input.Tags,
	}
	inventory := &models.InventoryItem{
		Quantity:          input.Quantity,
		LowStockThreshold: input.LowStockThreshold,
	}

	if err := s.repo.CreateWithInventory(ctx, product, inventory); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.ClearCode {
		product.ProductCode = nil
	} else if input.ProductCode != nil {
		product.ProductCode = input.ProductCode
	}
	if input.ClearCat {
		product.CategoryID = nil
	} else if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}

	var inventory *models.InventoryItem
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
		product.IsAvailable = *input.Quantity > 0
		inventory = &models.InventoryItem{ProductID: id, Quantity: *input.Quantity}
		if product.Inventory != nil {
			inventory.LowStockThreshold = product.Inventory.LowStockThreshold
		}
	}
	// an explicit availability flag wins over the quantity-derived value
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}

	product.Images = nil
	product.Inventory = nil
	if err := s.repo.UpdateWithInventory(ctx, product, inventory); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product and everything hanging off it: remote
// media best-effort, then image rows, then the inventory row, then the
// product itself. Non-atomic by contract; retries converge.
func (s *service) DeleteProduct(ctx context.Context, id int64) (*DeleteProductResult, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithField(ctx, "product_id", id)

	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product images")
	}

	var outcomes settle.Results
	for _, image := range images {
		if image.PublicID == nil || *image.PublicID == "" {
			continue
		}
		publicID := *image.PublicID
		outcomes.Run(fmt.Sprintf("image %d", image.ID), func() error {
			return s.media.Destroy(ctx, publicID)
		})
	}
	if warning := outcomes.Warning(); warning != "" {
		s.logg.Warn(s.logg.WithField(ctx, "failures", len(outcomes.Failed())), "product media cleanup partially failed")
	}

	if err := s.repo.DeleteImages(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product image rows")
	}
	if err := s.repo.DeleteInventory(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory row")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product row")
	}

	s.logg.Info(ctx, "product deleted")

	return &DeleteProductResult{
		Message: fmt.Sprintf("product %q deleted", product.Name),
		Warning: outcomes.Warning(),
	}, nil
}

// SetQuantity reconciles stock: the stored quantity and the availability
// flag move together, available iff quantity > 0.
func (s *service) SetQuantity(ctx context.Context, id int64, quantity int) (*InventoryDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if _, err := s.loadProduct(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.SetQuantity(ctx, id, quantity, quantity > 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set quantity")
	}

	item, err := s.repo.GetInventory(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	dto := newInventoryDTO(*item, quantity > 0)
	return &dto, nil
}

func (s *service) loadProduct(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func validateProductFields(name string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	return nil
}
