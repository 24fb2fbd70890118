package models

import "time"

// ProductImage stores ordered image entries for products. PublicID is the
// media store identifier used when the remote object has to be destroyed.
type ProductImage struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID int64     `gorm:"column:product_id;not null"`
	URL       string    `gorm:"column:url;not null"`
	PublicID  *string   `gorm:"column:public_id"`
	FileName  string    `gorm:"column:file_name;not null;default:''"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductImage) TableName() string { return "product_images" }
