package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategoryID(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	robotics := newCategory(t, db, "Robotics Kits")
	newCategory(t, db, "Sensors")

	t.Run("numeric id passes through", func(t *testing.T) {
		id, err := repo.ResolveCategoryID(ctx, "42")
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, int64(42), *id)
	})

	t.Run("name fragment matches case-insensitively", func(t *testing.T) {
		id, err := repo.ResolveCategoryID(ctx, "robot")
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, robotics.ID, *id)
	})

	t.Run("unmatched fragment resolves to nil without error", func(t *testing.T) {
		id, err := repo.ResolveCategoryID(ctx, "furniture")
		require.NoError(t, err)
		assert.Nil(t, id)
	})

	t.Run("blank input resolves to nil", func(t *testing.T) {
		id, err := repo.ResolveCategoryID(ctx, "  ")
		require.NoError(t, err)
		assert.Nil(t, id)
	})
}

func TestCountAndListPage(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	kits := newCategory(t, db, "Kits")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	oldAvailable := newProduct(t, db, productSeed{Name: "Old Gripper", Available: true, CreatedAt: base, CategoryID: &kits.ID})
	newAvailable := newProduct(t, db, productSeed{Name: "New Gripper", Available: true, CreatedAt: base.Add(48 * time.Hour), CategoryID: &kits.ID})
	unavailable := newProduct(t, db, productSeed{Name: "Sold Out Gripper", Available: false, CreatedAt: base.Add(96 * time.Hour), CategoryID: &kits.ID})
	newProduct(t, db, productSeed{Name: "Unrelated Widget", Available: true, CreatedAt: base})

	t.Run("count honours the predicate", func(t *testing.T) {
		total, err := repo.CountProducts(ctx, queryPredicate{CategoryID: &kits.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		total, err = repo.CountProducts(ctx, queryPredicate{Term: "gripper"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("page orders by availability then recency", func(t *testing.T) {
		rows, err := repo.ListPage(ctx, queryPredicate{CategoryID: &kits.ID}, 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		// the unavailable product was created last but still sorts after
		// both available ones
		assert.Equal(t, newAvailable.ID, rows[0].ID)
		assert.Equal(t, oldAvailable.ID, rows[1].ID)
		assert.Equal(t, unavailable.ID, rows[2].ID)
	})

	t.Run("offset window is applied", func(t *testing.T) {
		rows, err := repo.ListPage(ctx, queryPredicate{CategoryID: &kits.ID}, 2, 2)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, unavailable.ID, rows[0].ID)
	})

	t.Run("search term matches code, name and description", func(t *testing.T) {
		code := "GRP-77"
		desc := newProduct(t, db, productSeed{Name: "Spare Part", Description: "Fits every gripper model", Available: true, CreatedAt: base})
		coded := newProduct(t, db, productSeed{Name: "Accessory", Code: code, Available: true, CreatedAt: base})

		total, err := repo.CountProducts(ctx, queryPredicate{Term: "gripper"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)

		total, err = repo.CountProducts(ctx, queryPredicate{Term: "grp-77"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		rows, err := repo.ListPage(ctx, queryPredicate{Term: "grp-77"}, 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, coded.ID, rows[0].ID)

		rows, err = repo.ListPage(ctx, queryPredicate{Term: "every gripper"}, 0, 10)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, desc.ID, rows[0].ID)
	})

	t.Run("code-only predicate ignores name and description", func(t *testing.T) {
		total, err := repo.CountProducts(ctx, queryPredicate{Term: "gripper", CodeOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestListProductImagesOrdering(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := newProduct(t, db, productSeed{Name: "Camera Mount", Available: true})
	first := newProductImage(t, db, product.ID, 0, false)
	second := newProductImage(t, db, product.ID, 1, true)
	third := newProductImage(t, db, product.ID, 2, false)

	t.Run("admin view keeps stored ordering", func(t *testing.T) {
		images, err := repo.ListProductImages(ctx, product.ID, ViewAdmin)
		require.NoError(t, err)
		require.Len(t, images, 3)
		assert.Equal(t, first.ID, images[0].ID)
		assert.Equal(t, second.ID, images[1].ID)
		assert.Equal(t, third.ID, images[2].ID)
	})

	t.Run("store view puts the primary image first", func(t *testing.T) {
		images, err := repo.ListProductImages(ctx, product.ID, ViewStore)
		require.NoError(t, err)
		require.Len(t, images, 3)
		assert.Equal(t, second.ID, images[0].ID)
		assert.Equal(t, first.ID, images[1].ID)
		assert.Equal(t, third.ID, images[2].ID)
	})
}

func TestCategoryNames(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	kits := newCategory(t, db, "Kits")
	sensors := newCategory(t, db, "Sensors")

	names, err := repo.CategoryNames(ctx, []int64{kits.ID, sensors.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, "Kits", names[kits.ID])
	assert.Equal(t, "Sensors", names[sensors.ID])
	_, ok := names[9999]
	assert.False(t, ok)

	names, err = repo.CategoryNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}
