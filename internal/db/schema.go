package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// Schema describes the tables of one store file. Version is stamped into
// PRAGMA user_version when the file is first created.
type Schema struct {
	Name    string
	Version int
	DDL     string
}

// ErrNewerSchema is returned when a file was written by a newer schema version.
var ErrNewerSchema = errors.New("database schema is newer than supported")

// ProductsSchema holds the product catalog.
var ProductsSchema = Schema{
	Name:    "products",
	Version: 1,
	DDL: `
CREATE TABLE IF NOT EXISTS products (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    category      TEXT NOT NULL DEFAULT '',
    price         TEXT NOT NULL,
    quantity      INTEGER NOT NULL CHECK (quantity >= 0),
    created_at    TEXT NOT NULL,
    last_modified TEXT NOT NULL
);
`,
}

// TransactionsSchema holds the transaction ledger. seq preserves insertion order.
var TransactionsSchema = Schema{
	Name:    "transactions",
	Version: 1,
	DDL: `
CREATE TABLE IF NOT EXISTS transactions (
    seq            INTEGER PRIMARY KEY,
    id             TEXT NOT NULL,
    product_id     TEXT NOT NULL,
    product_name   TEXT NOT NULL,
    type           TEXT NOT NULL CHECK (type IN ('PURCHASE', 'SALE', 'RESTOCK', 'ADJUSTMENT')),
    quantity       INTEGER NOT NULL,
    price_per_unit TEXT NOT NULL,
    total_amount   TEXT NOT NULL,
    timestamp      TEXT NOT NULL
);
`,
}

// ActivitySchema holds the activity log. seq preserves insertion order.
var ActivitySchema = Schema{
	Name:    "activity_log",
	Version: 1,
	DDL: `
CREATE TABLE IF NOT EXISTS activity_log (
    seq       INTEGER PRIMARY KEY,
    id        TEXT NOT NULL,
    action    TEXT NOT NULL,
    details   TEXT NOT NULL,
    timestamp TEXT NOT NULL
);
`,
}

// EnsureSchema creates the schema's tables if they don't already exist and
// stamps the schema version on fresh files. Files stamped with a newer
// version are refused.
func EnsureSchema(db *sql.DB, s Schema) error {
	version, err := UserVersion(db)
	if err != nil {
		return err
	}
	if version > s.Version {
		return fmt.Errorf("%s: file version %d, supported %d: %w", s.Name, version, s.Version, ErrNewerSchema)
	}

	if _, err := db.Exec(s.DDL); err != nil {
		return fmt.Errorf("creating %s schema: %w", s.Name, err)
	}

	if version < s.Version {
		// PRAGMA does not accept bound parameters.
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", s.Version)); err != nil {
			return fmt.Errorf("stamping %s schema version: %w", s.Name, err)
		}
	}
	return nil
}

// UserVersion returns the file's PRAGMA user_version.
func UserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
