package media

import (
	"context"
	"fmt"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/settle"
)

const reconcileBatchSize = 100

type orphanLister interface {
	ListOrphanProductImages(ctx context.Context, limit int) ([]models.ProductImage, error)
	ListOrphanCategoryImages(ctx context.Context, limit int) ([]models.CategoryImage, error)
	DeleteProductImage(ctx context.Context, image *models.ProductImage) error
	DeleteCategoryImage(ctx context.Context, id int64) error
}

// Reconciler sweeps image rows whose owning row is gone, destroying the
// remote object and removing the row. Deletions are not atomic across the
// two stores, so a crash mid-delete leaves rows behind for this job.
type Reconciler struct {
	repo  orphanLister
	store mediaStore
	logg  *logger.Logger
}

func NewReconciler(repo *Repository, store mediaStore, logg *logger.Logger) (*Reconciler, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("media store client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Reconciler{repo: repo, store: store, logg: logg}, nil
}

// Run removes one batch of orphaned image rows and returns how many were
// swept. Remote destroy failures skip the row so a later run can retry.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	swept := 0
	results := &settle.Results{}

	productRows, err := r.repo.ListOrphanProductImages(ctx, reconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list orphan product images: %w", err)
	}
	for i := range productRows {
		row := productRows[i]
		label := fmt.Sprintf("product image %d", row.ID)
		results.Run(label, func() error {
			if row.PublicID != nil && *row.PublicID != "" {
				if err := r.store.Destroy(ctx, *row.PublicID); err != nil {
					return err
				}
			}
			if err := r.repo.DeleteProductImage(ctx, &row); err != nil {
				return err
			}
			swept++
			return nil
		})
	}

	categoryRows, err := r.repo.ListOrphanCategoryImages(ctx, reconcileBatchSize)
	if err != nil {
		return swept, fmt.Errorf("list orphan category images: %w", err)
	}
	for i := range categoryRows {
		row := categoryRows[i]
		label := fmt.Sprintf("category image %d", row.ID)
		results.Run(label, func() error {
			if row.PublicID != nil && *row.PublicID != "" {
				if err := r.store.Destroy(ctx, *row.PublicID); err != nil {
					return err
				}
			}
			if err := r.repo.DeleteCategoryImage(ctx, row.ID); err != nil {
				return err
			}
			swept++
			return nil
		})
	}

	if !results.AllOK() {
		r.logg.Warn(r.logg.WithField(ctx, "detail", results.Warning()), "image reconciliation left rows for the next run")
	}
	return swept, nil
}
