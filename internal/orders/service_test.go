package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/pagination"
)

type fakeOrdersRepo struct {
	orders   map[int64]*models.Order
	countErr error
	listErr  error
	updated  []enums.OrderStatus
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[int64]*models.Order{}}
}

func (f *fakeOrdersRepo) FindForUser(_ context.Context, id, userID int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepo) Find(_ context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepo) Count(_ context.Context, query ListQuery) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var total int64
	for _, order := range f.orders {
		if matches(order, query) {
			total++
		}
	}
	return total, nil
}

func (f *fakeOrdersRepo) List(_ context.Context, query ListQuery) ([]models.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var rows []models.Order
	for id := int64(1); id <= int64(len(f.orders))+10; id++ {
		if order, ok := f.orders[id]; ok && matches(order, query) {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

func (f *fakeOrdersRepo) UpdateStatus(_ context.Context, id int64, status enums.OrderStatus) (int64, error) {
	order, ok := f.orders[id]
	if !ok {
		return 0, nil
	}
	order.Status = status
	f.updated = append(f.updated, status)
	return 1, nil
}

func matches(order *models.Order, query ListQuery) bool {
	if query.UserID > 0 && order.UserID != query.UserID {
		return false
	}
	if query.Status != "" && order.Status != query.Status {
		return false
	}
	return true
}

func newOrdersTestService(t *testing.T, repo *fakeOrdersRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return &service{repo: repo, logg: logg}
}

func seedOrder(repo *fakeOrdersRepo, id, userID int64, status enums.OrderStatus) {
	repo.orders[id] = &models.Order{
		ID:        id,
		UserID:    userID,
		Status:    status,
		Subtotal:  decimal.RequireFromString("10.00"),
		Total:     decimal.RequireFromString("10.00"),
		CreatedAt: time.Now(),
	}
}

func TestListUserOrdersScopesToOwner(t *testing.T) {
	repo := newFakeOrdersRepo()
	seedOrder(repo, 1, 10, enums.OrderStatusPending)
	seedOrder(repo, 2, 10, enums.OrderStatusShipped)
	seedOrder(repo, 3, 99, enums.OrderStatusPending)
	svc := newOrdersTestService(t, repo)

	result, err := svc.ListUserOrders(context.Background(), 10, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 orders for user 10, got %d", len(result.Orders))
	}
	if result.Pagination.TotalCount != 2 {
		t.Fatalf("expected total 2, got %d", result.Pagination.TotalCount)
	}
}

func TestListAllOrdersFiltersByStatus(t *testing.T) {
	repo := newFakeOrdersRepo()
	seedOrder(repo, 1, 10, enums.OrderStatusPending)
	seedOrder(repo, 2, 11, enums.OrderStatusShipped)
	svc := newOrdersTestService(t, repo)

	result, err := svc.ListAllOrders(context.Background(), "shipped", pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Orders) != 1 || result.Orders[0].ID != 2 {
		t.Fatalf("expected only the shipped order, got %+v", result.Orders)
	}

	if _, err := svc.ListAllOrders(context.Background(), "bogus", pagination.Params{}); err == nil {
		t.Fatal("expected an error for an unknown status filter")
	}
}

func TestGetUserOrderHidesOtherUsers(t *testing.T) {
	repo := newFakeOrdersRepo()
	seedOrder(repo, 1, 10, enums.OrderStatusPending)
	svc := newOrdersTestService(t, repo)

	if _, err := svc.GetUserOrder(context.Background(), 99, 1); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
	order, err := svc.GetUserOrder(context.Background(), 10, 1)
	if err != nil || order.ID != 1 {
		t.Fatalf("owner should see the order, got %+v err=%v", order, err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    enums.OrderStatus
		to      string
		wantErr pkgerrors.Code
	}{
		{"pending to processing", enums.OrderStatusPending, "processing", ""},
		{"processing to shipped", enums.OrderStatusProcessing, "shipped", ""},
		{"pending to cancelled", enums.OrderStatusPending, "cancelled", ""},
		{"pending to delivered", enums.OrderStatusPending, "delivered", pkgerrors.CodeConflict},
		{"delivered to pending", enums.OrderStatusDelivered, "pending", pkgerrors.CodeConflict},
		{"unknown status", enums.OrderStatusPending, "bogus", pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeOrdersRepo()
			seedOrder(repo, 1, 10, tc.from)
			svc := newOrdersTestService(t, repo)

			order, err := svc.UpdateStatus(context.Background(), 1, tc.to)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("transition should succeed: %v", err)
				}
				if string(order.Status) != tc.to {
					t.Fatalf("status = %s, want %s", order.Status, tc.to)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tc.wantErr {
				t.Fatalf("expected %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	repo := newFakeOrdersRepo()
	seedOrder(repo, 1, 10, enums.OrderStatusShipped)
	svc := newOrdersTestService(t, repo)

	order, err := svc.UpdateStatus(context.Background(), 1, "shipped")
	if err != nil {
		t.Fatalf("same-status update should be a no-op: %v", err)
	}
	if order.Status != enums.OrderStatusShipped {
		t.Fatalf("status = %s", order.Status)
	}
	if len(repo.updated) != 0 {
		t.Fatal("no write should happen for a same-status update")
	}
}
