package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// Repository persists user accounts and their address books.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ListAddresses returns the address book, default entry first.
func (r *Repository) ListAddresses(ctx context.Context, userID int64) ([]models.UserAddress, error) {
	var rows []models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&rows).
		Error
	return rows, err
}

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

func (r *Repository) CreateAddress(ctx context.Context, address *models.UserAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *Repository) UpdateAddress(ctx context.Context, address *models.UserAddress) error {
	return r.db.WithContext(ctx).Save(address).Error
}

func (r *Repository) DeleteAddress(ctx context.Context, id, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.UserAddress{})
	return result.RowsAffected, result.Error
}

// ClearDefault unsets the default flag on every address but keep.
func (r *Repository) ClearDefault(ctx context.Context, userID, keep int64) error {
	return r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("user_id = ? AND id <> ?", userID, keep).
		Update("is_default", false).
		Error
}
