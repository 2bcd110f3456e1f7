package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/stockbook/internal/db"
)

// openStoreFile opens a store's database file and ensures its schema.
func openStoreFile(path string, schema db.Schema) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database, schema); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// rewrite replaces every row of table inside a single transaction. fill is
// called with an insert function bound to the prepared insertSQL statement.
func rewrite(ctx context.Context, database *sql.DB, table, insertSQL string, fill func(insert func(args ...any) error) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	err = fill(func(args ...any) error {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", table, err)
	}
	return nil
}
