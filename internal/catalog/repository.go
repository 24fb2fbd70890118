package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
)

// queryPredicate is the resolved WHERE clause for both the count and the page
// query. Term is already trimmed; CategoryID is nil when the filter is absent
// or could not be resolved.
type queryPredicate struct {
	CategoryID *int64
	Term       string
	CodeOnly   bool
}

// Repository runs the catalog read queries.
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

// ResolveCategoryID turns the raw category input into a concrete id. Numeric
// input is used directly; anything else is matched as a case-insensitive name
// fragment. A fragment with no match returns (nil, nil) so the caller can
// drop the filter silently.
func (r *Repository) ResolveCategoryID(ctx context.Context, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &id, nil
	}

	var category models.Category
	pattern := "%" + strings.ToLower(raw) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("id ASC").
		First(&category).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category.ID, nil
}

// CountProducts returns the total rows matching the predicate.
func (r *Repository) CountProducts(ctx context.Context, predicate queryPredicate) (int64, error) {
	var total int64
	err := r.applyPredicate(ctx, predicate).
		Model(&models.Product{}).
		Count(&total).
		Error
	return total, err
}

// ListPage returns one window of products ordered by availability then
// recency. Relevance re-sorting happens above this layer.
func (r *Repository) ListPage(ctx context.Context, predicate queryPredicate, offset, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.applyPredicate(ctx, predicate).
		Order("is_available DESC").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListProductImages returns one product's images. Admin views get the stored
// ordering; the storefront gets the primary image first.
func (r *Repository) ListProductImages(ctx context.Context, productID int64, view View) ([]models.ProductImage, error) {
	qb := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if view == ViewAdmin {
		qb = qb.Order("position ASC").Order("id ASC")
	} else {
		qb = qb.Order("is_primary DESC").Order("position ASC").Order("id ASC")
	}

	var rows []models.ProductImage
	err := qb.Find(&rows).Error
	return rows, err
}

// CategoryNames resolves category ids to names in one query.
func (r *Repository) CategoryNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *Repository) applyPredicate(ctx context.Context, predicate queryPredicate) *gorm.DB {
	qb := r.db.WithContext(ctx)
	if predicate.CategoryID != nil {
		qb = qb.Where("category_id = ?", *predicate.CategoryID)
	}
	if term := strings.TrimSpace(predicate.Term); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		if predicate.CodeOnly {
			qb = qb.Where("LOWER(product_code) LIKE ?", pattern)
		} else {
			qb = qb.Where(
				"(LOWER(product_code) LIKE ? OR LOWER(name) LIKE ? OR LOWER(description) LIKE ?)",
				pattern, pattern, pattern,
			)
		}
	}
	return qb
}
