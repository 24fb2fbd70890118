package controllers

import (
	"net/http"

	"github.com/qrobotics/qrobotics-backend/api/responses"
	"github.com/qrobotics/qrobotics-backend/api/validators"
	"github.com/qrobotics/qrobotics-backend/internal/catalog"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

// ListProducts serves the catalog listing for the given surface. Query
// parameters: category (id, name fragment or "all"), search, product_code,
// page, limit.
func ListProducts(svc catalog.Service, view catalog.View, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		// Bad paging inputs never reject the request; the catalog service
		// clamps them to sane values.
		page := validators.QueryIntOr(r, "page", 1)
		limit := validators.QueryIntOr(r, "limit", 0)

		query := r.URL.Query()
		result, err := svc.ListProducts(r.Context(), catalog.ListFilter{
			Category:    query.Get("category"),
			Search:      query.Get("search"),
			ProductCode: query.Get("product_code"),
			Page:        page,
			Limit:       limit,
			View:        view,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
