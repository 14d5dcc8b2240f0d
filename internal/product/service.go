package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	GetProduct(ctx context.Context, productID int64, includeInactive bool) (*Product, error)
	GetList(ctx context.Context, opts ListOptions) ([]*Product, error)
	Search(ctx context.Context, opts SearchOptions) ([]*Product, error)
	Create(ctx context.Context, params CreateProductParams) (*Product, error)
	Update(ctx context.Context, params UpdateProductParams) (*Product, error)
	Deactivate(ctx context.Context, productID int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(ctx context.Context, productID int64, includeInactive bool) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, GetProductOptions{
		ProductID:       productID,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) GetList(ctx context.Context, opts ListOptions) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetList"),
	)

	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	products, err := s.repo.GetList(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Info("get product list success",
		zap.Int("count", len(products)),
		zap.Int32("page", opts.Page),
		zap.Int32("limit", opts.Limit),
		zap.Duration("duration", time.Since(start)),
	)

	return products, nil
}

func (s *service) Search(ctx context.Context, opts SearchOptions) ([]*Product, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	return s.repo.Search(ctx, opts)
}

func (s *service) Create(ctx context.Context, params CreateProductParams) (*Product, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if !params.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if params.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}

	return s.repo.Create(ctx, params)
}

func (s *service) Update(ctx context.Context, params UpdateProductParams) (*Product, error) {
	if params.ProductID == 0 {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}

	// Validate only provided fields
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if params.Price != nil && params.Price.Cmp(decimal.Zero) <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if params.Stock != nil && *params.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}

	if !params.hasAnyField() {
		return nil, ErrNoFieldsToUpdate
	}

	return s.repo.Update(ctx, params)
}

func (s *service) Deactivate(ctx context.Context, productID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Deactivate"),
		zap.Int64("product_id", productID),
	)

	if err := s.repo.Deactivate(ctx, productID); err != nil {
		log.Error("failed to deactivate product", zap.Error(err))
		return err
	}

	log.Info("product deactivated")
	return nil
}
