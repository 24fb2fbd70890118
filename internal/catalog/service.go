package catalog

import (
	"context"
	"fmt"

	"github.com/qrobotics/qrobotics-backend/pkg/config"
	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/pagination"
)

// Service exposes the catalog read path.
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter) (*ListResult, error)
}

// reader is the repository surface the service needs; narrowed for tests.
type reader interface {
	ResolveCategoryID(ctx context.Context, raw string) (*int64, error)
	CountProducts(ctx context.Context, predicate queryPredicate) (int64, error)
	ListPage(ctx context.Context, predicate queryPredicate, offset, limit int) ([]models.Product, error)
	ListProductImages(ctx context.Context, productID int64, view View) ([]models.ProductImage, error)
	CategoryNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

type service struct {
	repo reader
	cfg  config.CatalogConfig
	logg *logger.Logger
}

// NewService constructs the catalog service.
func NewService(repo *Repository, cfg config.CatalogConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cfg: cfg, logg: logg}, nil
}

// ListProducts resolves filters, runs the count and page queries, applies the
// page-local relevance re-sort and enriches each row with images and its
// category name.
func (s *service) ListProducts(ctx context.Context, filter ListFilter) (*ListResult, error) {
	limit := pagination.NormalizeLimit(filter.Limit, s.defaultLimit(filter.View))
	page := pagination.NormalizePage(filter.Page)

	predicate, err := s.buildPredicate(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve category filter")
	}

	total, err := s.repo.CountProducts(ctx, predicate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	if total == 0 {
		return &ListResult{
			Products:   []ProductView{},
			Pagination: pagination.NewBlock(0, page, limit),
		}, nil
	}

	rows, err := s.repo.ListPage(ctx, predicate, pagination.Offset(page, limit), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products page")
	}

	if term, codeMode := filter.Term(); term != "" {
		if codeMode {
			rankByProductCode(rows, term)
		} else {
			rankBySearch(rows, term)
		}
	}

	views, err := s.enrich(ctx, rows, filter.View)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Products:   views,
		Pagination: pagination.NewBlock(total, page, limit),
	}, nil
}

func (s *service) defaultLimit(view View) int {
	if view == ViewAdmin {
		return s.cfg.AdminPageSize
	}
	return s.cfg.StorePageSize
}

// buildPredicate resolves the category input and picks the match term. An
// unresolvable category fragment drops the filter rather than erroring.
func (s *service) buildPredicate(ctx context.Context, filter ListFilter) (queryPredicate, error) {
	predicate := queryPredicate{}
	predicate.Term, predicate.CodeOnly = filter.Term()

	if raw := filter.CategoryFilter(); raw != "" {
		id, err := s.repo.ResolveCategoryID(ctx, raw)
		if err != nil {
			return predicate, err
		}
		if id == nil {
			s.logg.Warn(s.logg.WithField(ctx, "category", raw), "category filter did not resolve, dropping")
		}
		predicate.CategoryID = id
	}

	return predicate, nil
}

// enrich attaches images and category names. A failed image fetch degrades
// that product to an empty image list; a failed category lookup degrades the
// whole page to "Unknown" names.
func (s *service) enrich(ctx context.Context, rows []models.Product, view View) ([]ProductView, error) {
	categoryIDs := make([]int64, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if row.CategoryID == nil {
			continue
		}
		if _, ok := seen[*row.CategoryID]; ok {
			continue
		}
		seen[*row.CategoryID] = struct{}{}
		categoryIDs = append(categoryIDs, *row.CategoryID)
	}

	names, err := s.repo.CategoryNames(ctx, categoryIDs)
	if err != nil {
		s.logg.Error(ctx, "loading category names for listing", err)
		names = map[int64]string{}
	}

	views := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		images, err := s.repo.ListProductImages(ctx, row.ID, view)
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "product_id", row.ID), "loading product images for listing", err)
			images = nil
		}

		name := ""
		if row.CategoryID != nil {
			name = names[*row.CategoryID]
		}
		views = append(views, newProductView(row, name, images))
	}
	return views, nil
}
