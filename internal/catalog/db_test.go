package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  parent_id INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  product_code TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  category_id INTEGER,
  is_available INTEGER NOT NULL DEFAULT 0,
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	productImages := `
CREATE TABLE IF NOT EXISTS product_images (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL,
  url TEXT NOT NULL,
  public_id TEXT,
  file_name TEXT NOT NULL DEFAULT '',
  is_primary INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(categories).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(productImages).Error)

	// shared cache keeps rows between tests, start each one clean
	require.NoError(t, db.Exec("DELETE FROM product_images").Error)
	require.NoError(t, db.Exec("DELETE FROM products").Error)
	require.NoError(t, db.Exec("DELETE FROM categories").Error)

	return db
}

func newCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

type productSeed struct {
	Name        string
	Description string
	Code        string
	CategoryID  *int64
	Available   bool
	CreatedAt   time.Time
}

func newProduct(t *testing.T, db *gorm.DB, seed productSeed) *models.Product {
	t.Helper()
	if seed.Name == "" {
		seed.Name = fmt.Sprintf("Product %d", time.Now().UnixNano())
	}
	if seed.CreatedAt.IsZero() {
		seed.CreatedAt = time.Now()
	}
	product := &models.Product{
		Name:        seed.Name,
		Description: seed.Description,
		Price:       decimal.NewFromInt(100),
		CategoryID:  seed.CategoryID,
		IsAvailable: seed.Available,
		CreatedAt:   seed.CreatedAt,
		UpdatedAt:   seed.CreatedAt,
	}
	if seed.Available {
		product.Quantity = 5
	}
	if seed.Code != "" {
		product.ProductCode = &seed.Code
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newProductImage(t *testing.T, db *gorm.DB, productID int64, position int, primary bool) *models.ProductImage {
	t.Helper()
	image := &models.ProductImage{
		ProductID: productID,
		URL:       fmt.Sprintf("https://cdn.example.com/p/%d/%d.png", productID, position),
		FileName:  fmt.Sprintf("%d.png", position),
		IsPrimary: primary,
		Position:  position,
	}
	require.NoError(t, db.Create(image).Error)
	return image
}
