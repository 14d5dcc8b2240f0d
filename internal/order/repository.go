package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-api/internal/db"
	"storefront-api/internal/logger"
	"storefront-api/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	CreateFromCart(ctx context.Context, userID int64, number string) (*Order, error)
	GetOrder(ctx context.Context, orderID int64, owner *int64) (*Order, error)
	ListOrders(ctx context.Context, userID int64, status *Status, limit, page int32) ([]*Order, int64, error)
	UpdateStatus(ctx context.Context, orderID int64, owner *int64, next Status) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// cartLine is a cart item joined with its product at checkout time.
type cartLine struct {
	productID int64
	name      string
	quantity  int
	price     decimal.Decimal
	active    bool
}

// CreateFromCart converts the user's cart into an order inside a single
// transaction: guarded stock decrements, order + item inserts, and the
// cart delete all commit or roll back together. A concurrent checkout
// losing the race for the last unit observes a failed stock guard and
// the whole transaction rolls back.
func (r *repository) CreateFromCart(ctx context.Context, userID int64, number string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateFromCart"),
		zap.Int64("user_id", userID),
	)

	var order *Order

	err := db.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Load cart lines with current product data
		lines, err := loadCartLines(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// 2. Decrement stock per line; the guard re-validates against
		// current stock, not the stock seen at cart-add time.
		total := decimal.Zero
		for _, line := range lines {
			if !line.active {
				return fmt.Errorf("product %d: %w", line.productID, product.ErrProductNotFound)
			}
			if err := product.AdjustStockTx(ctx, tx, line.productID, -line.quantity); err != nil {
				return err
			}
			total = total.Add(line.price.Mul(decimal.NewFromInt(int64(line.quantity))))
		}

		// 3. Insert order
		o := &Order{
			UserID: userID,
			Number: number,
			Total:  total,
			Status: StatusPending,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders (user_id, number, total, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, o.UserID, o.Number, o.Total, o.Status).
			Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		// 4. Insert order items with the unit price frozen to the price
		// used in the total.
		for _, line := range lines {
			item := OrderItem{
				OrderID:     o.ID,
				ProductID:   line.productID,
				ProductName: line.name,
				Quantity:    line.quantity,
				UnitPrice:   line.price,
			}
			err = tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).
				Scan(&item.ID)
			if err != nil {
				return err
			}
			o.Items = append(o.Items, item)
		}

		// 5. Clear the cart
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM cart_items WHERE user_id = $1
		`, userID); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		log.Warn("checkout transaction aborted", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("number", order.Number),
		zap.String("total", order.Total.String()),
	)

	return order, nil
}

func loadCartLines(ctx context.Context, tx *sql.Tx, userID int64) ([]cartLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT c.product_id, p.name, c.quantity, p.price, p.is_active
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&line.productID, &line.name, &line.quantity, &line.price, &line.active); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// GetOrder loads an order with its items. A non-nil owner restricts the
// lookup to that user's orders; someone else's order reads as not found.
func (r *repository) GetOrder(ctx context.Context, orderID int64, owner *int64) (*Order, error) {
	query := `
		SELECT id, user_id, number, total, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	args := []any{orderID}
	if owner != nil {
		query += ` AND user_id = $2`
		args = append(args, *owner)
	}

	var o Order
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&o.ID, &o.UserID, &o.Number, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.product_id, oi.quantity, oi.unit_price, p.name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.ProductName); err != nil {
			return nil, err
		}
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) ListOrders(
	ctx context.Context,
	userID int64,
	status *Status,
	limit, page int32,
) ([]*Order, int64, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
		zap.Int64("user_id", userID),
		zap.Int32("limit", limit),
		zap.Int32("page", page),
	)

	offset := (page - 1) * limit

	where := "WHERE user_id = $1"
	args := []any{userID}

	if status != nil {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+where, args...).
		Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, number, total, status, created_at, updated_at
		FROM orders ` + where + `
		ORDER BY created_at DESC
		LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Number, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, 0, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	log.Info("list orders success", zap.Int("count", len(orders)))
	return orders, total, nil
}

// UpdateStatus moves an order through the status machine atomically.
// The order row is locked for the duration of the transaction so
// concurrent transitions serialize; a cancellation restocks every item
// in the same transaction.
func (r *repository) UpdateStatus(ctx context.Context, orderID int64, owner *int64, next Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", orderID),
		zap.String("next_status", string(next)),
	)

	var updated *Order

	err := db.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			SELECT id, user_id, number, total, status, created_at, updated_at
			FROM orders
			WHERE id = $1
		`
		args := []any{orderID}
		if owner != nil {
			query += ` AND user_id = $2`
			args = append(args, *owner)
		}
		query += ` FOR UPDATE`

		var o Order
		err := tx.QueryRowContext(ctx, query, args...).Scan(
			&o.ID, &o.UserID, &o.Number, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if !o.Status.CanTransitionTo(next) {
			return &TransitionError{From: o.Status, To: next}
		}

		// Cancellation returns every ordered unit to stock.
		if next == StatusCancelled {
			if err := restockItems(ctx, tx, o.ID); err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE orders
			SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING updated_at
		`, next, o.ID).Scan(&o.UpdatedAt)
		if err != nil {
			return err
		}

		o.Status = next
		updated = &o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("order status updated")
	return updated, nil
}

func restockItems(ctx context.Context, tx *sql.Tx, orderID int64) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type restock struct {
		productID int64
		quantity  int
	}
	var items []restock
	for rows.Next() {
		var it restock
		if err := rows.Scan(&it.productID, &it.quantity); err != nil {
			return err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, it := range items {
		if err := product.AdjustStockTx(ctx, tx, it.productID, it.quantity); err != nil {
			return err
		}
	}

	return nil
}
