package models

import "time"

// Category groups products. ParentID allows a hierarchy; deletion treats the
// tree as flat and only touches the category itself.
type Category struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;not null;unique"`
	Description string          `gorm:"column:description;not null;default:''"`
	ParentID    *int64          `gorm:"column:parent_id"`
	Images      []CategoryImage `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string { return "categories" }
