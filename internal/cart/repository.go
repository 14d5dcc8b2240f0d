package cart

import (
	"context"
	"database/sql"
	"errors"

	"storefront-api/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetItem(ctx context.Context, userID, productID int64) (*CartItem, error)
	CreateItem(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*CartItem, error)
	SetQuantity(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	ListRows(ctx context.Context, userID int64) ([]CartRow, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetItem returns (nil, nil) when the user has no cart row for the product.
func (r *repository) GetItem(ctx context.Context, userID, productID int64) (*CartItem, error) {
	query := `
	SELECT
		id,
		user_id,
		product_id,
		quantity,
		created_at,
		updated_at
	FROM cart_items
	WHERE user_id = $1 AND product_id = $2
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateItem"),
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
	)

	query := `
	INSERT INTO cart_items (user_id, product_id, quantity)
	VALUES ($1, $2, $3)
	RETURNING
		id,
		user_id,
		product_id,
		quantity,
		created_at,
		updated_at
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, userID, productID, quantity).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create cart item", zap.Error(err))
		return nil, err
	}

	log.Info("cart item created", zap.Int64("cart_item_id", item.ID))
	return &item, nil
}

func (r *repository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (*CartItem, error) {
	query := `
	UPDATE cart_items
	SET quantity = $1,
	    updated_at = NOW()
	WHERE id = $2
	RETURNING
		id,
		user_id,
		product_id,
		quantity,
		created_at,
		updated_at
	`

	var item CartItem
	err := r.db.QueryRowContext(ctx, query, quantity, itemID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *repository) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND product_id = $3
	`, quantity, userID, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Remove is idempotent: removing an absent item is not an error.
func (r *repository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	return err
}

func (r *repository) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1
	`, userID)
	return err
}

func (r *repository) ListRows(ctx context.Context, userID int64) ([]CartRow, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListRows"),
		zap.Int64("user_id", userID),
	)

	query := `
	SELECT
		c.id,
		c.product_id,
		p.name,
		p.price,
		p.stock,
		c.quantity,
		c.created_at
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	WHERE c.user_id = $1
	ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []CartRow
	for rows.Next() {
		var row CartRow
		if err := rows.Scan(
			&row.ItemID,
			&row.ProductID,
			&row.ProductName,
			&row.UnitPrice,
			&row.Stock,
			&row.Quantity,
			&row.CreatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	return result, nil
}
