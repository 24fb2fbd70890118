package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
)

// Repository persists orders and their item snapshots.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order and its items in one statement batch.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindForUser loads an order scoped to its owner.
func (r *Repository) FindForUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Find loads an order without an ownership scope.
func (r *Repository) Find(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListQuery narrows order listings.
type ListQuery struct {
	UserID int64
	Status enums.OrderStatus
	Offset int
	Limit  int
}

func (r *Repository) Count(ctx context.Context, query ListQuery) (int64, error) {
	var total int64
	err := r.scoped(ctx, query).Model(&models.Order{}).Count(&total).Error
	return total, err
}

// List returns a page of orders newest first.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Order, error) {
	var rows []models.Order
	err := r.scoped(ctx, query).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(query.Offset).
		Limit(query.Limit).
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatus sets the order status and reports whether a row matched.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *Repository) scoped(ctx context.Context, query ListQuery) *gorm.DB {
	scope := r.db.WithContext(ctx)
	if query.UserID > 0 {
		scope = scope.Where("user_id = ?", query.UserID)
	}
	if query.Status != "" {
		scope = scope.Where("status = ?", query.Status)
	}
	return scope
}
