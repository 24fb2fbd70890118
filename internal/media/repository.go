package media

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Repository wraps image-row persistence for both owners (products and
// categories).
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

// CreateProductImage inserts the image row, claiming the primary flag and
// the next position when it is the product's first image.
func (r *Repository) CreateProductImage(ctx context.Context, image *models.ProductImage) (*models.ProductImage, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProductImage{}).
			Where("product_id = ?", image.ProductID).
			Count(&count).
			Error; err != nil {
			return err
		}
		image.IsPrimary = count == 0
		image.Position = int(count)
		return tx.Create(image).Error
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// CreateCategoryImage inserts the image row, claiming the primary flag when
// it is the category's first image.
func (r *Repository) CreateCategoryImage(ctx context.Context, image *models.CategoryImage) (*models.CategoryImage, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CategoryImage{}).
			Where("category_id = ?", image.CategoryID).
			Count(&count).
			Error; err != nil {
			return err
		}
		image.IsPrimary = count == 0
		return tx.Create(image).Error
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// FindProductImage loads one product image row.
func (r *Repository) FindProductImage(ctx context.Context, id int64) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// FindCategoryImage loads one category image row.
func (r *Repository) FindCategoryImage(ctx context.Context, id int64) (*models.CategoryImage, error) {
	var image models.CategoryImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteProductImage removes one product image row and promotes the next
// image to primary when the removed one held the flag.
func (r *Repository) DeleteProductImage(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", image.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if !image.IsPrimary {
			return nil
		}
		var next models.ProductImage
		err := tx.Where("product_id = ?", image.ProductID).
			Order("position ASC").
			Order("id ASC").
			First(&next).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		return tx.Model(&models.ProductImage{}).
			Where("id = ?", next.ID).
			Update("is_primary", true).
			Error
	})
}

// DeleteCategoryImage removes one category image row.
func (r *Repository) DeleteCategoryImage(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CategoryImage{}).
		Error
}

// ListOrphanProductImages returns image rows whose owning product no longer
// exists. These appear when a product deletion failed between steps.
func (r *Repository) ListOrphanProductImages(ctx context.Context, limit int) ([]models.ProductImage, error) {
	var rows []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id NOT IN (?)", r.db.Model(&models.Product{}).Select("id")).
		Order("id ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListOrphanCategoryImages returns image rows whose owning category no
// longer exists.
func (r *Repository) ListOrphanCategoryImages(ctx context.Context, limit int) ([]models.CategoryImage, error) {
	var rows []models.CategoryImage
	err := r.db.WithContext(ctx).
		Where("category_id NOT IN (?)", r.db.Model(&models.Category{}).Select("id")).
		Order("id ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ProductExists reports whether a product row with the given id exists.
func (r *Repository) ProductExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CategoryExists reports whether a category row with the given id exists.
func (r *Repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
