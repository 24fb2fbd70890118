package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Repository persists cart rows and the product lookups the cart needs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListByUser returns the user's cart rows oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindItem returns the row for one user/product pair.
func (r *Repository) FindItem(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var row models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).
		Error
}

func (r *Repository) DeleteItem(ctx context.Context, userID, productID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// DeleteRows removes cart rows by id regardless of owner. Used when pruning
// lines whose product no longer exists.
func (r *Repository) DeleteRows(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.CartItem{}).
		Error
}

// ClearUser removes every cart row for the user.
func (r *Repository) ClearUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).
		Error
}

// ProductsByID loads products for the given ids keyed by id.
func (r *Repository) ProductsByID(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	out := map[int64]models.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindProduct loads one product with its stock row.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
