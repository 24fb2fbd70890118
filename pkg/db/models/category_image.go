package models

import "time"

// CategoryImage stores images owned by a category, independently of the
// product image set.
type CategoryImage struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CategoryID int64     `gorm:"column:category_id;not null"`
	URL        string    `gorm:"column:url;not null"`
	PublicID   *string   `gorm:"column:public_id"`
	FileName   string    `gorm:"column:file_name;not null;default:''"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CategoryImage) TableName() string { return "category_images" }
