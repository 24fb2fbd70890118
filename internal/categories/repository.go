package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Repository wraps category persistence.
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

// FindByID loads a category without associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name with their images preloaded.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).
		Preload("Images").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// Create inserts a new category row.
func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update saves an existing category row.
func (r *Repository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CountProducts returns how many products currently reference the category.
func (r *Repository) CountProducts(ctx context.Context, categoryID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&total).
		Error
	return total, err
}

// ClearProductReferences nulls the category reference on every product in
// the category and returns the number of rows touched.
func (r *Repository) ClearProductReferences(ctx context.Context, categoryID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil)
	return result.RowsAffected, result.Error
}

// ListImages returns the category's image rows.
func (r *Repository) ListImages(ctx context.Context, categoryID int64) ([]models.CategoryImage, error) {
	var rows []models.CategoryImage
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteImages removes all image rows for the category.
func (r *Repository) DeleteImages(ctx context.Context, categoryID int64) error {
	return r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Delete(&models.CategoryImage{}).
		Error
}

// Delete removes the category row itself.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Category{}).
		Error
}
