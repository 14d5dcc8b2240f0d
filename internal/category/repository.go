package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-api/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type Repository interface {
	GetCategories(ctx context.Context, filter *string, limit, page *int32) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	AddCategory(ctx context.Context, name string, description *string) (*Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCategories(
	ctx context.Context,
	filter *string,
	limit *int32,
	page *int32,
) ([]*Category, error) {

	// ---------- DEFAULTS ----------
	finalLimit := int32(20)
	finalPage := int32(1)

	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}

	finalOffset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
		zap.Int32("offset", finalOffset),
	)
	log.Debug("GetCategories started")

	// ---------- BASE QUERY ----------
	query := `
		SELECT
			c.id,
			c.name,
			c.description,
			c.created_at
		FROM categories c
	`

	where := []string{}
	args := []interface{}{}

	if filter != nil && *filter != "" {
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*filter+"%")
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY c.name ASC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, finalOffset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed GetCategories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	categories := make([]*Category, 0, finalLimit)

	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}

	return categories, nil
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) AddCategory(
	ctx context.Context,
	name string,
	description *string,
) (*Category, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("category_name", name),
	)
	log.Info("AddCategory started")

	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at
	`

	var c Category
	err := r.db.QueryRowContext(ctx, query, name, description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrCategoryExists
		}
		log.Error("AddCategory DB query failed", zap.Error(err))
		return nil, fmt.Errorf("add category failed: %w", err)
	}

	log.Info("AddCategory success",
		zap.Int64("category_id", c.ID),
	)

	return &c, nil
}
