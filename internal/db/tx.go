package db

import (
	"context"
	"database/sql"

	"storefront-api/internal/logger"

	"go.uber.org/zap"
)

// WithinTx runs fn inside a single transaction. The transaction commits
// only if fn returns nil; any error (or panic) rolls everything back, so
// no partial state is ever visible to other connections.
func WithinTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				logger.FromCtx(ctx).Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true
	return nil
}
