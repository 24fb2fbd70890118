package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/storage/cloudinary"
)

// OwnerKind selects which table an image operation targets.
type OwnerKind string

const (
	OwnerProduct  OwnerKind = "product"
	OwnerCategory OwnerKind = "category"
)

var allowedExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {}, ".gif": {},
}

// Service exposes image upload and removal against both stores.
type Service interface {
	UploadImage(ctx context.Context, input UploadInput) (*ImageDTO, error)
	DeleteImage(ctx context.Context, owner OwnerKind, imageID int64) (*DeleteImageResult, error)
}

// UploadInput models one multipart upload after controller validation.
type UploadInput struct {
	Owner    OwnerKind
	OwnerID  int64
	File     io.Reader
	FileName string
	Size     int64
}

// ImageDTO is the stored image payload.
type ImageDTO struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	IsPrimary bool      `json:"isPrimary"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeleteImageResult reports an image removal; Warning is set when the remote
// destroy failed but the row was removed anyway.
type DeleteImageResult struct {
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

type mediaStore interface {
	Upload(ctx context.Context, file io.Reader, fileName string) (*cloudinary.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

type repository interface {
	CreateProductImage(ctx context.Context, image *models.ProductImage) (*models.ProductImage, error)
	CreateCategoryImage(ctx context.Context, image *models.CategoryImage) (*models.CategoryImage, error)
	FindProductImage(ctx context.Context, id int64) (*models.ProductImage, error)
	FindCategoryImage(ctx context.Context, id int64) (*models.CategoryImage, error)
	DeleteProductImage(ctx context.Context, image *models.ProductImage) error
	DeleteCategoryImage(ctx context.Context, id int64) error
}

type ownerChecker interface {
	ProductExists(ctx context.Context, id int64) (bool, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo     repository
	owners   ownerChecker
	store    mediaStore
	logg     *logger.Logger
	maxBytes int64
}

// NewService constructs the media service.
func NewService(repo *Repository, owners ownerChecker, store mediaStore, logg *logger.Logger, maxUploadMB int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if owners == nil {
		return nil, fmt.Errorf("owner checker required")
	}
	if store == nil {
		return nil, fmt.Errorf("media store client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &service{
		repo:     repo,
		owners:   owners,
		store:    store,
		logg:     logg,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
	}, nil
}

// UploadImage pushes the bytes to the Media Store first and records the row
// after; a row is never written without a live remote object behind it.
func (s *service) UploadImage(ctx context.Context, input UploadInput) (*ImageDTO, error) {
	if input.OwnerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	ext := strings.ToLower(path.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type")
	}
	if input.Size > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d byte limit", s.maxBytes))
	}

	if err := s.ensureOwner(ctx, input.Owner, input.OwnerID); err != nil {
		return nil, err
	}

	uploaded, err := s.store.Upload(ctx, input.File, fileName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMediaDependency, err, "upload image to media store")
	}

	switch input.Owner {
	case OwnerCategory:
		image := &models.CategoryImage{
			CategoryID: input.OwnerID,
			URL:        uploaded.SecureURL,
			PublicID:   &uploaded.PublicID,
			FileName:   fileName,
		}
		if _, err := s.repo.CreateCategoryImage(ctx, image); err != nil {
			s.rollbackRemote(ctx, uploaded.PublicID)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category image row")
		}
		return &ImageDTO{
			ID:        image.ID,
			OwnerID:   image.CategoryID,
			URL:       image.URL,
			FileName:  image.FileName,
			IsPrimary: image.IsPrimary,
			CreatedAt: image.CreatedAt,
		}, nil
	default:
		image := &models.ProductImage{
			ProductID: input.OwnerID,
			URL:       uploaded.SecureURL,
			PublicID:  &uploaded.PublicID,
			FileName:  fileName,
		}
		if _, err := s.repo.CreateProductImage(ctx, image); err != nil {
			s.rollbackRemote(ctx, uploaded.PublicID)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product image row")
		}
		return &ImageDTO{
			ID:        image.ID,
			OwnerID:   image.ProductID,
			URL:       image.URL,
			FileName:  image.FileName,
			IsPrimary: image.IsPrimary,
			Position:  image.Position,
			CreatedAt: image.CreatedAt,
		}, nil
	}
}

// DeleteImage destroys the remote object best-effort, then removes the row.
func (s *service) DeleteImage(ctx context.Context, owner OwnerKind, imageID int64) (*DeleteImageResult, error) {
	if imageID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image id is required")
	}

	var publicID *string
	var remove func() error

	switch owner {
	case OwnerCategory:
		image, err := s.repo.FindCategoryImage(ctx, imageID)
		if err != nil {
			return nil, notFoundOr(err, "category image not found", "load category image")
		}
		publicID = image.PublicID
		remove = func() error { return s.repo.DeleteCategoryImage(ctx, imageID) }
	default:
		image, err := s.repo.FindProductImage(ctx, imageID)
		if err != nil {
			return nil, notFoundOr(err, "product image not found", "load product image")
		}
		publicID = image.PublicID
		remove = func() error { return s.repo.DeleteProductImage(ctx, image) }
	}

	warning := ""
	if publicID != nil && *publicID != "" {
		if err := s.store.Destroy(ctx, *publicID); err != nil {
			warning = fmt.Sprintf("remote object not removed: %v", err)
			s.logg.Warn(s.logg.WithField(ctx, "public_id", *publicID), "media destroy failed, row will be removed anyway")
		}
	}

	if err := remove(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image row")
	}

	return &DeleteImageResult{Message: "image deleted", Warning: warning}, nil
}

func (s *service) ensureOwner(ctx context.Context, owner OwnerKind, id int64) error {
	var exists bool
	var err error
	switch owner {
	case OwnerCategory:
		exists, err = s.owners.CategoryExists(ctx, id)
	default:
		exists, err = s.owners.ProductExists(ctx, id)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check image owner")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", owner))
	}
	return nil
}

// rollbackRemote best-effort destroys an object whose row insert failed so
// the stores do not diverge permanently.
func (s *service) rollbackRemote(ctx context.Context, publicID string) {
	if err := s.store.Destroy(ctx, publicID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "public_id", publicID), "rollback destroy failed, reconciliation job will retry")
	}
}

func notFoundOr(err error, notFoundMsg, stage string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, stage)
}
