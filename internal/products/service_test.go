package products

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

type fakeRepo struct {
	product       *models.Product
	findErr       error
	images        []models.ProductImage
	listImagesErr error
	delImagesErr  error
	delInvErr     error
	deleteErr     error
	inventory     *models.InventoryItem
	calls         []string
}

func (f *fakeRepo) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	f.record("find")
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.product, nil
}

func (f *fakeRepo) CreateWithInventory(ctx context.Context, product *models.Product, inventory *models.InventoryItem) error {
	f.record("create")
	product.ID = 1
	f.product = product
	f.inventory = inventory
	return nil
}

func (f *fakeRepo) UpdateWithInventory(ctx context.Context, product *models.Product, inventory *models.InventoryItem) error {
	f.record("update")
	f.product = product
	if inventory != nil {
		f.inventory = inventory
	}
	return nil
}

func (f *fakeRepo) ListImages(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	f.record("listImages")
	return f.images, f.listImagesErr
}

func (f *fakeRepo) DeleteImages(ctx context.Context, productID int64) error {
	f.record("deleteImages")
	return f.delImagesErr
}

func (f *fakeRepo) DeleteInventory(ctx context.Context, productID int64) error {
	f.record("deleteInventory")
	return f.delInvErr
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.record("delete")
	return f.deleteErr
}

func (f *fakeRepo) GetInventory(ctx context.Context, productID int64) (*models.InventoryItem, error) {
	f.record("getInventory")
	if f.inventory == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.inventory, nil
}

func (f *fakeRepo) SetQuantity(ctx context.Context, productID int64, quantity int, available bool) error {
	f.record("setQuantity")
	f.inventory = &models.InventoryItem{ProductID: productID, Quantity: quantity}
	f.product.Quantity = quantity
	f.product.IsAvailable = available
	return nil
}

type fakeMedia struct {
	failFor   map[string]error
	destroyed []string
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	if err, ok := f.failFor[publicID]; ok {
		return err
	}
	return nil
}

func pid(v string) *string { return &v }

func newTestService(repo *fakeRepo, media *fakeMedia) Service {
	return &service{
		repo:  repo,
		media: media,
		logg:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestDeleteProductOrderOfOperations(t *testing.T) {
	repo := &fakeRepo{
		product: &models.Product{ID: 5, Name: "Servo Pack"},
		images: []models.ProductImage{
			{ID: 1, PublicID: pid("prod/a")},
			{ID: 2}, // local-only row, no remote object
		},
	}
	media := &fakeMedia{}
	svc := newTestService(repo, media)

	result, err := svc.DeleteProduct(context.Background(), 5)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Warning != "" {
		t.Fatalf("expected clean delete, got warning %q", result.Warning)
	}
	if len(media.destroyed) != 1 || media.destroyed[0] != "prod/a" {
		t.Fatalf("expected one destroy for prod/a, got %v", media.destroyed)
	}

	want := []string{"find", "listImages", "deleteImages", "deleteInventory", "delete"}
	if len(repo.calls) != len(want) {
		t.Fatalf("unexpected call sequence %v", repo.calls)
	}
	for i, name := range want {
		if repo.calls[i] != name {
			t.Fatalf("step %d: got %q, want %q", i, repo.calls[i], name)
		}
	}
}

func TestDeleteProductMediaFailureIsolation(t *testing.T) {
	repo := &fakeRepo{
		product: &models.Product{ID: 5, Name: "Servo Pack"},
		images: []models.ProductImage{
			{ID: 1, PublicID: pid("prod/a")},
			{ID: 2, PublicID: pid("prod/b")},
			{ID: 3, PublicID: pid("prod/c")},
		},
	}
	media := &fakeMedia{failFor: map[string]error{"prod/b": errors.New("503")}}
	svc := newTestService(repo, media)

	result, err := svc.DeleteProduct(context.Background(), 5)
	if err != nil {
		t.Fatalf("a failed destroy must not fail the routine: %v", err)
	}
	if len(media.destroyed) != 3 {
		t.Fatalf("all three destroys must be attempted, got %d", len(media.destroyed))
	}
	if !strings.Contains(result.Warning, "image 2") {
		t.Fatalf("warning should name the failed image, got %q", result.Warning)
	}
	// DB rows still removed
	for _, expected := range []string{"deleteImages", "deleteInventory", "delete"} {
		found := false
		for _, call := range repo.calls {
			if call == expected {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s to still run, calls %v", expected, repo.calls)
		}
	}
}

func TestDeleteProductNotFoundOnSecondCall(t *testing.T) {
	repo := &fakeRepo{findErr: gorm.ErrRecordNotFound}
	svc := newTestService(repo, &fakeMedia{})

	_, err := svc.DeleteProduct(context.Background(), 5)
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteProductRowFailuresAbort(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*fakeRepo)
		stage string
	}{
		{"list images", func(r *fakeRepo) { r.listImagesErr = errors.New("down") }, "list product images"},
		{"delete image rows", func(r *fakeRepo) { r.delImagesErr = errors.New("down") }, "delete product image rows"},
		{"delete inventory", func(r *fakeRepo) { r.delInvErr = errors.New("down") }, "delete inventory row"},
		{"delete product", func(r *fakeRepo) { r.deleteErr = errors.New("down") }, "delete product row"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{product: &models.Product{ID: 5, Name: "Servo"}}
			tc.mut(repo)
			svc := newTestService(repo, &fakeMedia{})

			_, err := svc.DeleteProduct(context.Background(), 5)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeDependency {
				t.Fatalf("expected dependency error, got %v", err)
			}
			if !strings.Contains(typed.Message(), tc.stage) {
				t.Fatalf("error should name the stage, got %q", typed.Message())
			}
		})
	}
}

func TestCreateProductDerivesAvailability(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeMedia{})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Servo Pack",
		Price:    decimal.NewFromInt(30),
		Quantity: 4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !repo.product.IsAvailable {
		t.Fatal("quantity > 0 must derive availability")
	}

	repo2 := &fakeRepo{}
	svc2 := newTestService(repo2, &fakeMedia{})
	off := false
	_, err = svc2.CreateProduct(context.Background(), CreateProductInput{
		Name:        "Preorder Kit",
		Price:       decimal.NewFromInt(99),
		Quantity:    10,
		IsAvailable: &off,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo2.product.IsAvailable {
		t.Fatal("explicit availability flag must win over the derived value")
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(&fakeRepo{}, &fakeMedia{})

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"blank name", CreateProductInput{Name: " ", Price: decimal.NewFromInt(1)}},
		{"negative price", CreateProductInput{Name: "X", Price: decimal.NewFromInt(-1)}},
		{"negative quantity", CreateProductInput{Name: "X", Price: decimal.NewFromInt(1), Quantity: -2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateProductQuantityReconcilesAvailability(t *testing.T) {
	repo := &fakeRepo{product: &models.Product{ID: 5, Name: "Servo", Quantity: 3, IsAvailable: true}}
	svc := newTestService(repo, &fakeMedia{})

	zero := 0
	_, err := svc.UpdateProduct(context.Background(), 5, UpdateProductInput{Quantity: &zero})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.product.IsAvailable {
		t.Fatal("zero quantity must flip availability off")
	}
	if repo.inventory == nil || repo.inventory.Quantity != 0 {
		t.Fatal("inventory row must track the new quantity")
	}
}

func TestSetQuantityReconciles(t *testing.T) {
	repo := &fakeRepo{product: &models.Product{ID: 5, Name: "Servo", Quantity: 0, IsAvailable: false}}
	svc := newTestService(repo, &fakeMedia{})

	dto, err := svc.SetQuantity(context.Background(), 5, 7)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !dto.IsAvailable || dto.Quantity != 7 {
		t.Fatalf("expected available with quantity 7, got %+v", dto)
	}

	if _, err := svc.SetQuantity(context.Background(), 5, -1); err == nil {
		t.Fatal("negative quantity must be rejected")
	}
}
