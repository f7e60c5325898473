package util

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type TransactionCallback func(*sqlx.Tx) error

// Transaction runs cb in a transaction, committing if cb succeeds and rolling
// back otherwise.
func Transaction(ctx context.Context, db *sqlx.DB, cb TransactionCallback) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %w", err2, err)
		}

		return err
	}

	return tx.Commit()
}
