package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qrobotics/qrobotics-backend/internal/catalog"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/pagination"
)

type fakeCatalog struct {
	lastFilter catalog.ListFilter
}

func (f *fakeCatalog) ListProducts(_ context.Context, filter catalog.ListFilter) (*catalog.ListResult, error) {
	f.lastFilter = filter
	return &catalog.ListResult{
		Products:   []catalog.ProductView{},
		Pagination: pagination.NewBlock(0, 1, 12),
	}, nil
}

func TestListProductsToleratesBadPagingInputs(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	cases := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"zero page", "page=0", 0, 0},
		{"negative page", "page=-3", -3, 0},
		{"non-numeric page", "page=abc", 1, 0},
		{"zero limit", "limit=0", 1, 0},
		{"negative limit", "limit=-1", 1, -1},
		{"both garbage", "page=x&limit=y", 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeCatalog{}
			handler := ListProducts(fake, catalog.ViewStore, logg)

			req := httptest.NewRequest(http.MethodGet, "/store/products?"+tc.query, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("%q must not reject the request, got %d: %s", tc.query, rec.Code, rec.Body.String())
			}
			if fake.lastFilter.Page != tc.wantPage || fake.lastFilter.Limit != tc.wantLimit {
				t.Fatalf("filter page=%d limit=%d, want page=%d limit=%d",
					fake.lastFilter.Page, fake.lastFilter.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestListProductsForwardsSearchInputs(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	fake := &fakeCatalog{}
	handler := ListProducts(fake, catalog.ViewAdmin, logg)

	req := httptest.NewRequest(http.MethodGet, "/admin/products?category=12&search=gripper&product_code=QR-77&page=2&limit=6", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	got := fake.lastFilter
	if got.Category != "12" || got.Search != "gripper" || got.ProductCode != "QR-77" {
		t.Fatalf("search inputs not forwarded: %+v", got)
	}
	if got.Page != 2 || got.Limit != 6 || got.View != catalog.ViewAdmin {
		t.Fatalf("paging or view not forwarded: %+v", got)
	}
}
