package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// ProductDTO is the detailed product payload for admin and detail endpoints.
type ProductDTO struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	ProductCode *string           `json:"productCode,omitempty"`
	Quantity    int               `json:"quantity"`
	IsAvailable bool              `json:"isAvailable"`
	CategoryID  *int64            `json:"categoryId,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Images      []ProductImageDTO `json:"images"`
	Inventory   *InventoryDTO     `json:"inventory,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ProductImageDTO is one image entry on a product payload.
type ProductImageDTO struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"fileName,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
	Position  int    `json:"position"`
}

// InventoryDTO reports the stock state after an inventory operation.
type InventoryDTO struct {
	ProductID         int64     `json:"productId"`
	Quantity          int       `json:"quantity"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	IsAvailable       bool      `json:"isAvailable"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func newProductDTO(product models.Product) ProductDTO {
	images := make([]ProductImageDTO, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, ProductImageDTO{
			ID:        img.ID,
			URL:       img.URL,
			FileName:  img.FileName,
			IsPrimary: img.IsPrimary,
			Position:  img.Position,
		})
	}

	dto := ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		ProductCode: product.ProductCode,
		Quantity:    product.Quantity,
		IsAvailable: product.IsAvailable,
		CategoryID:  product.CategoryID,
		Tags:        product.Tags,
		Images:      images,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Inventory != nil {
		inv := newInventoryDTO(*product.Inventory, product.IsAvailable)
		dto.Inventory = &inv
	}
	return dto
}

func newInventoryDTO(item models.InventoryItem, available bool) InventoryDTO {
	return InventoryDTO{
		ProductID:         item.ProductID,
		Quantity:          item.Quantity,
		LowStockThreshold: item.LowStockThreshold,
		IsAvailable:       available,
		UpdatedAt:         item.UpdatedAt,
	}
}
