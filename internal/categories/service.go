package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db"
	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/settle"
)

// Service exposes category management and the category deletion routine.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id int64) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id int64) (*DeleteCategoryResult, error)
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *int64
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ParentID    *int64
	ClearParent bool
}

// DeleteCategoryResult reports the routine's effect. Warning is non-empty
// when one or more media destroys failed; the deletion itself still
// succeeded.
type DeleteCategoryResult struct {
	ReassignedProducts int64  `json:"reassignedProducts"`
	Message            string `json:"message"`
	Warning            string `json:"warning,omitempty"`
}

// mediaDestroyer is the Media Store surface the routine needs.
type mediaDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

type repository interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) (*models.Category, error)
	CountProducts(ctx context.Context, categoryID int64) (int64, error)
	ClearProductReferences(ctx context.Context, categoryID int64) (int64, error)
	ListImages(ctx context.Context, categoryID int64) ([]models.CategoryImage, error)
	DeleteImages(ctx context.Context, categoryID int64) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo  repository
	media mediaDestroyer
	logg  *logger.Logger
}

// NewService constructs the category service.
func NewService(repo *Repository, media mediaDestroyer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if media == nil {
		return nil, fmt.Errorf("media store client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, media: media, logg: logg}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newCategoryDTO(row))
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id int64) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := newCategoryDTO(*category)
	return &dto, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
		ParentID:    input.ParentID,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	dto := newCategoryDTO(*created)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.ClearParent {
		category.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
		}
		category.ParentID = input.ParentID
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	dto := newCategoryDTO(*updated)
	return &dto, nil
}

// DeleteCategory removes a category while keeping its products. Products are
// reassigned to "no category", image media is destroyed best-effort, then
// image rows and finally the category row are deleted. The steps are not one
// transaction; rerunning after a partial failure converges on the same end
// state.
func (s *service) DeleteCategory(ctx context.Context, id int64) (*DeleteCategoryResult, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithField(ctx, "category_id", id)

	// The count is informational only; it can go stale under concurrent
	// writes and the bulk update below is what actually reassigns.
	referencing, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products in category")
	}

	reassigned := int64(0)
	if referencing > 0 {
		reassigned, err = s.repo.ClearProductReferences(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear product category references")
		}
	}

	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list category images")
	}

	var outcomes settle.Results
	for _, image := range images {
		if image.PublicID == nil || *image.PublicID == "" {
			continue
		}
		publicID := *image.PublicID
		outcomes.Run(fmt.Sprintf("image %d", image.ID), func() error {
			return s.media.Destroy(ctx, publicID)
		})
	}
	if warning := outcomes.Warning(); warning != "" {
		s.logg.Warn(s.logg.WithField(ctx, "failures", len(outcomes.Failed())), "category media cleanup partially failed")
	}

	if err := s.repo.DeleteImages(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category image rows")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category row")
	}

	s.logg.Info(s.logg.WithField(ctx, "reassigned_products", reassigned), "category deleted")

	return &DeleteCategoryResult{
		ReassignedProducts: reassigned,
		Message:            fmt.Sprintf("category %q deleted, %d products reassigned to no category", category.Name, reassigned),
		Warning:            outcomes.Warning(),
	}, nil
}

func (s *service) loadCategory(ctx context.Context, id int64) (*models.Category, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}
