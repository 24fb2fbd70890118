package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Repository runs the row-level work of placing an order. Every method is
// expected to run inside the checkout transaction via WithTx.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CartLines returns the user's cart rows oldest first.
func (r *Repository) CartLines(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	return rows, err
}

// ProductsByID loads the cart's products with their stock rows, keyed by id.
func (r *Repository) ProductsByID(ctx context.Context, ids []int64) (map[int64]models.Product, error) {
	out := map[int64]models.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory").
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

// DecrementStock subtracts quantity from the product counter with a guard so
// concurrent checkouts cannot drive stock negative. ok is false when the
// guard found less stock than requested. The products counter is the
// authoritative one; the inventory row is a mirror, and mirrored reports
// whether it was actually updated so callers can flag the divergence.
func (r *Repository) DecrementStock(ctx context.Context, productID int64, quantity int) (ok, mirrored bool, err error) {
	scope := r.db.WithContext(ctx)
	result := scope.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity - ?", quantity),
			"is_available": gorm.Expr("quantity - ? > 0", quantity),
		})
	if result.Error != nil {
		return false, false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, false, nil
	}
	mirror := scope.Model(&models.InventoryItem{}).
		Where("product_id = ?", productID).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if mirror.Error != nil {
		return false, false, mirror.Error
	}
	return true, mirror.RowsAffected > 0, nil
}

// CreateOrder inserts the order and its item snapshots.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ClearCart removes every cart row for the user.
func (r *Repository) ClearCart(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).
		Error
}

// FindAddress loads a saved address scoped to its owner.
func (r *Repository) FindAddress(ctx context.Context, id, userID int64) (*models.UserAddress, error) {
	var row models.UserAddress
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
