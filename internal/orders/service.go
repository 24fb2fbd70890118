package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/qrobotics/qrobotics-backend/pkg/db/models"
	"github.com/qrobotics/qrobotics-backend/pkg/enums"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
	"github.com/qrobotics/qrobotics-backend/pkg/pagination"
)

const defaultPageSize = 20

// Service exposes order reads and the admin status workflow. Order creation
// lives in the checkout package.
type Service interface {
	ListUserOrders(ctx context.Context, userID int64, params pagination.Params) (*ListResult, error)
	GetUserOrder(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
	ListAllOrders(ctx context.Context, status string, params pagination.Params) (*ListResult, error)
	GetOrder(ctx context.Context, orderID int64) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (*OrderDTO, error)
}

type repository interface {
	FindForUser(ctx context.Context, id, userID int64) (*models.Order, error)
	Find(ctx context.Context, id int64) (*models.Order, error)
	Count(ctx context.Context, query ListQuery) (int64, error)
	List(ctx context.Context, query ListQuery) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) (int64, error)
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID int64, params pagination.Params) (*ListResult, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.list(ctx, ListQuery{UserID: userID}, params)
}

func (s *service) GetUserOrder(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	if userID <= 0 || orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}
	order, err := s.repo.FindForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListAllOrders(ctx context.Context, status string, params pagination.Params) (*ListResult, error) {
	query := ListQuery{}
	if status != "" {
		parsed, err := enums.ParseOrderStatus(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
		}
		query.Status = parsed
	}
	return s.list(ctx, query, params)
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*OrderDTO, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return NewOrderDTO(order), nil
}

// UpdateStatus moves the order along its lifecycle, rejecting transitions
// the state machine does not allow.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, status string) (*OrderDTO, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	target, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status == target {
		return NewOrderDTO(order), nil
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, target))
	}

	if _, err := s.repo.UpdateStatus(ctx, orderID, target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = target
	return NewOrderDTO(order), nil
}

func (s *service) list(ctx context.Context, query ListQuery, params pagination.Params) (*ListResult, error) {
	limit := pagination.NormalizeLimit(params.Limit, defaultPageSize)
	page := pagination.NormalizePage(params.Page)

	total, err := s.repo.Count(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if total == 0 {
		return &ListResult{Orders: []OrderDTO{}, Pagination: pagination.NewBlock(0, page, limit)}, nil
	}

	query.Offset = pagination.Offset(page, limit)
	query.Limit = limit
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return &ListResult{Orders: dtos, Pagination: pagination.NewBlock(total, page, limit)}, nil
}
