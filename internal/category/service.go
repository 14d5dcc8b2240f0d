package category

import (
	"context"
	"fmt"
	"strings"

	"storefront-api/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for categories.
type Service interface {
	GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	AddCategory(ctx context.Context, name string, description *string) (*Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetCategories"),
	)

	categories, err := s.repo.GetCategories(ctx, filter, limit, page)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, err
	}

	log.Info("GetCategories success", zap.Int("count", len(categories)))
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) AddCategory(ctx context.Context, name string, description *string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddCategory"),
		zap.String("name", name),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name cannot be empty", ErrInvalidInput)
	}

	c, err := s.repo.AddCategory(ctx, name, description)
	if err != nil {
		log.Error("failed to add category", zap.Error(err))
		return nil, err
	}

	log.Info("AddCategory success", zap.Int64("category_id", c.ID))
	return c, nil
}
