package order

import (
	"context"

	"storefront-api/internal/logger"
	"storefront-api/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	CreateFromCart(ctx context.Context, userID int64) (*Order, error)
	Cancel(ctx context.Context, userID, orderID int64) (*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, next Status) (*Order, error)
	Get(ctx context.Context, userID, orderID int64) (*Order, error)
	List(ctx context.Context, userID int64, status *Status, limit, page int32) ([]*Order, int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateFromCart is the checkout operation: it snapshots the cart into
// an immutable order. Stock is re-validated against current values
// inside the repository transaction, so a cart that went stale since
// add-time fails with an insufficient-stock error and changes nothing.
func (s *service) CreateFromCart(ctx context.Context, userID int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateFromCart"),
		zap.Int64("user_id", userID),
	)

	number := utils.GenerateOrderNumber()

	order, err := s.repo.CreateFromCart(ctx, userID, number)
	if err != nil {
		log.Warn("checkout failed", zap.Error(err))
		return nil, err
	}

	log.Info("checkout completed",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

// Cancel moves the caller's own order to cancelled. The status machine
// restricts this to pending and confirmed orders; cancellation restocks
// every item and is terminal.
func (s *service) Cancel(ctx context.Context, userID, orderID int64) (*Order, error) {
	return s.repo.UpdateStatus(ctx, orderID, &userID, StatusCancelled)
}

// UpdateStatus applies a transition without an ownership filter.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, next Status) (*Order, error) {
	return s.repo.UpdateStatus(ctx, orderID, nil, next)
}

func (s *service) Get(ctx context.Context, userID, orderID int64) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID, &userID)
}

func (s *service) List(ctx context.Context, userID int64, status *Status, limit, page int32) ([]*Order, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}

	return s.repo.ListOrders(ctx, userID, status, limit, page)
}
