package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-api/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetProduct(ctx context.Context, opts GetProductOptions) (*Product, error)
	GetList(ctx context.Context, opts ListOptions) ([]*Product, error)
	Search(ctx context.Context, opts SearchOptions) ([]*Product, error)
	Create(ctx context.Context, params CreateProductParams) (*Product, error)
	Update(ctx context.Context, params UpdateProductParams) (*Product, error)
	Deactivate(ctx context.Context, productID int64) error
	AdjustStock(ctx context.Context, productID int64, delta int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	id,
	name,
	description,
	price,
	stock,
	category_id,
	is_active,
	created_at,
	updated_at
`

// GetProduct returns (nil, nil) when no matching row exists; callers map
// that to their own not-found error.
func (r *repository) GetProduct(ctx context.Context, opts GetProductOptions) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if !opts.IncludeInactive {
		query += ` AND is_active = TRUE`
	}

	var p Product
	err := r.db.QueryRowContext(ctx, query, opts.ProductID).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.CategoryID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetList(ctx context.Context, opts ListOptions) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetList"),
	)

	start := time.Now()

	// ---------- pagination ----------
	finalLimit := int32(20)
	if opts.Limit > 0 {
		finalLimit = opts.Limit
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	finalPage := int32(1)
	if opts.Page > 0 {
		finalPage = opts.Page
	}

	offset := (finalPage - 1) * finalLimit

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if opts.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}

	if opts.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *opts.CategoryID)
	}

	query := `SELECT ` + productColumns + `
	FROM products
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY id ASC
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		log.Error("row scan failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(products)),
		zap.Duration("duration", time.Since(start)),
	)

	return products, nil
}

// Search matches the query as a case-insensitive substring of the
// product name or description, active products only.
func (r *repository) Search(ctx context.Context, opts SearchOptions) ([]*Product, error) {
	finalLimit := int32(20)
	if opts.Limit > 0 && opts.Limit <= 100 {
		finalLimit = opts.Limit
	}

	finalPage := int32(1)
	if opts.Page > 0 {
		finalPage = opts.Page
	}
	offset := (finalPage - 1) * finalLimit

	where := []string{
		"is_active = TRUE",
		"(name ILIKE $1 OR description ILIKE $1)",
	}
	args := []any{"%" + opts.Query + "%"}

	if opts.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *opts.CategoryID)
	}

	query := `SELECT ` + productColumns + `
	FROM products
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY name ASC
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *repository) Create(ctx context.Context, params CreateProductParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("name", params.Name),
	)

	query := `
	INSERT INTO products (name, description, price, stock, category_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + productColumns

	var p Product
	err := r.db.QueryRowContext(
		ctx,
		query,
		params.Name,
		params.Description,
		params.Price,
		params.Stock,
		params.CategoryID,
	).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.CategoryID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.Int64("product_id", p.ID))
	return &p, nil
}

func (r *repository) Update(ctx context.Context, params UpdateProductParams) (*Product, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}

	addSet := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.Price != nil {
		addSet("price", *params.Price)
	}
	if params.Stock != nil {
		addSet("stock", *params.Stock)
	}
	if params.CategoryID != nil {
		addSet("category_id", *params.CategoryID)
	}
	if params.IsActive != nil {
		addSet("is_active", *params.IsActive)
	}

	query := `
	UPDATE products
	SET ` + strings.Join(set, ", ") + `
	WHERE id = $` + fmt.Sprint(len(args)+1) + `
	RETURNING ` + productColumns

	args = append(args, params.ProductID)

	var p Product
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.CategoryID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Deactivate soft-deletes a product; historical orders keep referencing it.
func (r *repository) Deactivate(ctx context.Context, productID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *repository) AdjustStock(ctx context.Context, productID int64, delta int) error {
	return adjustStock(ctx, r.db, productID, delta)
}

// AdjustStockTx applies a guarded stock adjustment inside an existing
// transaction. Used by the order engine so the decrement commits or
// rolls back together with the order rows.
func AdjustStockTx(ctx context.Context, tx *sql.Tx, productID int64, delta int) error {
	return adjustStock(ctx, tx, productID, delta)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// adjustStock never lets stock go negative: the WHERE guard makes the
// loser of a concurrent decrement observe zero rows affected instead of
// overselling.
func adjustStock(ctx context.Context, q execQuerier, productID int64, delta int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
	`, delta, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing product from a failed stock guard.
	var available int
	err = q.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).
		Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	return &StockError{
		ProductID: productID,
		Requested: -delta,
		Available: available,
	}
}

func scanProducts(rows *sql.Rows) ([]*Product, error) {
	var products []*Product

	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.CategoryID,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
