package categories

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

type fakeRepo struct {
	category      *models.Category
	findErr       error
	productCount  int64
	countErr      error
	clearedRows   int64
	clearErr      error
	images        []models.CategoryImage
	listImagesErr error
	delImagesErr  error
	deleteErr     error
	createErr     error
	updateErr     error
	calls         []string
}

func (f *fakeRepo) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeRepo) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	f.record("find")
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.category, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]models.Category, error) { return nil, nil }

func (f *fakeRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	category.ID = 1
	return category, nil
}

func (f *fakeRepo) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return category, nil
}

func (f *fakeRepo) CountProducts(ctx context.Context, categoryID int64) (int64, error) {
	f.record("count")
	return f.productCount, f.countErr
}

func (f *fakeRepo) ClearProductReferences(ctx context.Context, categoryID int64) (int64, error) {
	f.record("clear")
	return f.clearedRows, f.clearErr
}

func (f *fakeRepo) ListImages(ctx context.Context, categoryID int64) ([]models.CategoryImage, error) {
	f.record("listImages")
	return f.images, f.listImagesErr
}

func (f *fakeRepo) DeleteImages(ctx context.Context, categoryID int64) error {
	f.record("deleteImages")
	return f.delImagesErr
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.record("delete")
	return f.deleteErr
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

func newDeleteFixture(repo *fakeRepo, media *fakeMedia) Service {
	return &service{
		repo:  repo,
		media: media,
		logg:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestDeleteCategoryHappyPath(t *testing.T) {
	repo := &fakeRepo{
		category:     &models.Category{ID: 7, Name: "Arms"},
		productCount: 3,
		clearedRows:  3,
		images: []models.CategoryImage{
			{ID: 1, CategoryID: 7, PublicID: pid("cat/1")},
			{ID: 2, CategoryID: 7, PublicID: pid("cat/2")},
			{ID: 3, CategoryID: 7}, // no remote object
		},
	}
	media := &fakeMedia{}
	svc := newDeleteFixture(repo, media)

	result, err := svc.DeleteCategory(context.Background(), 7)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.ReassignedProducts != 3 {
		t.Fatalf("expected 3 reassigned products, got %d", result.ReassignedProducts)
	}
	if result.Warning != "" {
		t.Fatalf("expected no warning, got %q", result.Warning)
	}
	if !strings.Contains(result.Message, "Arms") || !strings.Contains(result.Message, "3 products") {
		t.Fatalf("message should summarize the effect: %q", result.Message)
	}
	if len(media.destroyed) != 2 {
		t.Fatalf("expected 2 media destroys, got %d", len(media.destroyed))
	}

	// children strictly before the parent
	want := []string{"find", "count", "clear", "listImages", "deleteImages", "delete"}
	if len(repo.calls) != len(want) {
		t.Fatalf("unexpected call sequence %v", repo.calls)
	}
	for i, name := range want {
		if repo.calls[i] != name {
			t.Fatalf("step %d: got %q, want %q (sequence %v)", i, repo.calls[i], name, repo.calls)
		}
	}
}

func TestDeleteCategorySkipsClearWhenEmpty(t *testing.T) {
	repo := &fakeRepo{category: &models.Category{ID: 7, Name: "Empty"}, productCount: 0}
	svc := newDeleteFixture(repo, &fakeMedia{})

	result, err := svc.DeleteCategory(context.Background(), 7)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.ReassignedProducts != 0 {
		t.Fatalf("expected 0 reassigned, got %d", result.ReassignedProducts)
	}
	for _, call := range repo.calls {
		if call == "clear" {
			t.Fatal("bulk update should be skipped when nothing references the category")
		}
	}
}

func TestDeleteCategoryMediaFailuresBecomeWarning(t *testing.T) {
	repo := &fakeRepo{
		category: &models.Category{ID: 7, Name: "Arms"},
		images: []models.CategoryImage{
			{ID: 1, PublicID: pid("cat/1")},
			{ID: 2, PublicID: pid("cat/2")},
			{ID: 3, PublicID: pid("cat/3")},
		},
	}
	media := &fakeMedia{failFor: map[string]error{"cat/2": errors.New("cdn timeout")}}
	svc := newDeleteFixture(repo, media)

	result, err := svc.DeleteCategory(context.Background(), 7)
	if err != nil {
		t.Fatalf("media failure must not fail the routine: %v", err)
	}
	if result.Warning == "" || !strings.Contains(result.Warning, "cdn timeout") {
		t.Fatalf("expected warning carrying the media failure, got %q", result.Warning)
	}
	if len(media.destroyed) != 3 {
		t.Fatalf("one failure must not short-circuit the batch, destroyed %d", len(media.destroyed))
	}
	// rows are still removed despite the failed destroy
	if repo.calls[len(repo.calls)-2] != "deleteImages" || repo.calls[len(repo.calls)-1] != "delete" {
		t.Fatalf("rows must still be deleted, calls %v", repo.calls)
	}
}

func TestDeleteCategoryNotFound(t *testing.T) {
	repo := &fakeRepo{findErr: gorm.ErrRecordNotFound}
	svc := newDeleteFixture(repo, &fakeMedia{})

	_, err := svc.DeleteCategory(context.Background(), 99)
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("second delete of a gone category must be NotFound, got %v", err)
	}
}

func TestDeleteCategoryRowFailuresAbort(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*fakeRepo)
		stage string
	}{
		{"count fails", func(r *fakeRepo) { r.countErr = errors.New("down") }, "count products"},
		{"clear fails", func(r *fakeRepo) { r.productCount = 2; r.clearErr = errors.New("down") }, "clear product"},
		{"list images fails", func(r *fakeRepo) { r.listImagesErr = errors.New("down") }, "list category images"},
		{"delete images fails", func(r *fakeRepo) { r.delImagesErr = errors.New("down") }, "delete category image rows"},
		{"delete row fails", func(r *fakeRepo) { r.deleteErr = errors.New("down") }, "delete category row"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{category: &models.Category{ID: 7, Name: "Arms"}}
			tc.mut(repo)
			svc := newDeleteFixture(repo, &fakeMedia{})

			_, err := svc.DeleteCategory(context.Background(), 7)
			if err == nil {
				t.Fatal("data store failure must abort")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeDependency {
				t.Fatalf("expected dependency error, got %v", err)
			}
			if !strings.Contains(typed.Message(), tc.stage) {
				t.Fatalf("error should name the failed stage, got %q", typed.Message())
			}
		})
	}
}

func TestDeleteCategoryValidatesID(t *testing.T) {
	svc := newDeleteFixture(&fakeRepo{}, &fakeMedia{})
	_, err := svc.DeleteCategory(context.Background(), 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCategoryValidatesName(t *testing.T) {
	svc := newDeleteFixture(&fakeRepo{}, &fakeMedia{})
	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCategoryDuplicateNameConflicts(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New(`pq: duplicate key value violates unique constraint "categories_name_key"`)}
	svc := newDeleteFixture(repo, &fakeMedia{})

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Arms"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
}

func TestUpdateCategoryDuplicateNameConflicts(t *testing.T) {
	repo := &fakeRepo{
		category:  &models.Category{ID: 7, Name: "Arms"},
		updateErr: errors.New(`pq: duplicate key value violates unique constraint "categories_name_key"`),
	}
	svc := newDeleteFixture(repo, &fakeMedia{})

	name := "Legs"
	_, err := svc.UpdateCategory(context.Background(), 7, UpdateCategoryInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	repo := &fakeRepo{category: &models.Category{ID: 7, Name: "Arms"}}
	svc := newDeleteFixture(repo, &fakeMedia{})

	self := int64(7)
	_, err := svc.UpdateCategory(context.Background(), 7, UpdateCategoryInput{ParentID: &self})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
