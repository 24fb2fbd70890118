package products

import (
	"context"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Repository wraps product, product-image and inventory persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product with its images and inventory row.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		Preload("Inventory").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateWithInventory inserts the product and its inventory row in one
// transaction.
func (r *Repository) CreateWithInventory(ctx context.Context, product *models.Product, inventory *models.InventoryItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		inventory.ProductID = product.ID
		return tx.Save(inventory).Error
	})
}

// UpdateWithInventory saves the product and, when provided, its inventory row
// in one transaction.
func (r *Repository) UpdateWithInventory(ctx context.Context, product *models.Product, inventory *models.InventoryItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		if inventory == nil {
			return nil
		}
		inventory.ProductID = product.ID
		return tx.Save(inventory).Error
	})
}

// ListImages returns the product's image rows in stored order.
func (r *Repository) ListImages(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	var rows []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteImages removes all image rows for the product.
func (r *Repository) DeleteImages(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductImage{}).
		Error
}

// DeleteInventory removes the product's inventory row.
func (r *Repository) DeleteInventory(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.InventoryItem{}).
		Error
}

// Delete removes the product row itself.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Product{}).
		Error
}

// GetInventory returns the inventory row for the product.
func (r *Repository) GetInventory(ctx context.Context, productID int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SetQuantity updates the inventory row and the denormalized product columns
// in one transaction so quantity and availability stay consistent.
func (r *Repository) SetQuantity(ctx context.Context, productID int64, quantity int, available bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			Updates(map[string]any{"quantity": quantity, "is_available": available}).
			Error; err != nil {
			return err
		}
		result := tx.Model(&models.InventoryItem{}).
			Where("product_id = ?", productID).
			Update("quantity", quantity)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Create(&models.InventoryItem{ProductID: productID, Quantity: quantity}).Error
		}
		return nil
	})
}
