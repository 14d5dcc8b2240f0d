package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits when fn succeeds", func(t *testing.T) {
		database, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer database.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE things`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = WithinTx(ctx, database, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `UPDATE things`)
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when fn fails", func(t *testing.T) {
		database, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer database.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = WithinTx(ctx, database, func(tx *sql.Tx) error {
			return boom
		})

		assert.Equal(t, boom, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on panic", func(t *testing.T) {
		database, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer database.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = WithinTx(ctx, database, func(tx *sql.Tx) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
