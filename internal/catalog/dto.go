package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/pagination"
)

// ProductView is the listing payload for one product, enriched with its
// images and category name.
type ProductView struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ProductCode  *string         `json:"productCode,omitempty"`
	Quantity     int             `json:"quantity"`
	IsAvailable  bool            `json:"isAvailable"`
	CategoryID   *int64          `json:"categoryId,omitempty"`
	CategoryName string          `json:"categoryName"`
	Tags         []string        `json:"tags,omitempty"`
	Images       []ImageView     `json:"images"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ImageView is one ordered image entry on a product view.
type ImageView struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"fileName,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
	Position  int    `json:"position"`
}

// ListResult is the full listing response body.
type ListResult struct {
	Products   []ProductView    `json:"products"`
	Pagination pagination.Block `json:"pagination"`
}

// UnknownCategoryName is attached when a product has no category or its
// category row is missing.
const UnknownCategoryName = "Unknown"

func newProductView(product models.Product, categoryName string, images []models.ProductImage) ProductView {
	views := make([]ImageView, 0, len(images))
	for _, img := range images {
		views = append(views, ImageView{
			ID:        img.ID,
			URL:       img.URL,
			FileName:  img.FileName,
			IsPrimary: img.IsPrimary,
			Position:  img.Position,
		})
	}
	if categoryName == "" {
		categoryName = UnknownCategoryName
	}
	return ProductView{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		Price:        product.Price,
		ProductCode:  product.ProductCode,
		Quantity:     product.Quantity,
		IsAvailable:  product.IsAvailable,
		CategoryID:   product.CategoryID,
		CategoryName: categoryName,
		Tags:         product.Tags,
		Images:       views,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
