package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/db"
	"github.com/erazemk/stockbook/internal/model"
)

// Ledger is the append-only list of stock transactions, in recording order.
type Ledger struct {
	mu           sync.Mutex
	db           *sql.DB
	path         string
	opts         options
	transactions []model.Transaction
}

// OpenLedger opens (or creates) the ledger file at path and loads its transactions.
func OpenLedger(ctx context.Context, path string, opts ...Option) (*Ledger, error) {
	database, err := openStoreFile(path, db.TransactionsSchema)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		db:   database,
		path: path,
		opts: buildOptions(opts),
	}
	if err := l.load(ctx); err != nil {
		database.Close()
		return nil, err
	}

	slog.Debug("ledger loaded", "path", path, "transactions", len(l.transactions))
	return l, nil
}

// Close closes the underlying database file.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends a transaction. Quantity is not validated here.
// On a persistence failure the transaction is still returned and kept in memory.
func (l *Ledger) Record(ctx context.Context, productID, productName string, typ model.TransactionType, quantity int, pricePerUnit decimal.Decimal) (model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := model.Transaction{
		ID:           l.opts.newID(),
		ProductID:    productID,
		ProductName:  productName,
		Type:         typ,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		TotalAmount:  pricePerUnit.Mul(decimal.NewFromInt(int64(quantity))),
		Timestamp:    l.opts.now(),
	}
	l.transactions = append(l.transactions, t)
	return t, l.persist(ctx)
}

// All returns every transaction in recording order.
func (l *Ledger) All() []model.Transaction {
	return l.where(func(model.Transaction) bool { return true })
}

// ByProduct returns the transactions for one product.
func (l *Ledger) ByProduct(productID string) []model.Transaction {
	return l.where(func(t model.Transaction) bool { return t.ProductID == productID })
}

// ByType returns the transactions of one type.
func (l *Ledger) ByType(typ model.TransactionType) []model.Transaction {
	return l.where(func(t model.Transaction) bool { return t.Type == typ })
}

// ByDateRange returns transactions stamped within [start, end].
func (l *Ledger) ByDateRange(start, end time.Time) []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return between(l.transactions, func(t model.Transaction) time.Time { return t.Timestamp }, start, end)
}

// TotalByType sums TotalAmount over transactions of one type.
func (l *Ledger) TotalByType(typ model.TransactionType) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, t := range l.transactions {
		if t.Type == typ {
			total = total.Add(t.TotalAmount)
		}
	}
	return total
}

// Recent returns the last n transactions in recording order.
func (l *Ledger) Recent(n int) []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return recent(l.transactions, n)
}

func (l *Ledger) where(keep func(model.Transaction) bool) []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filter(l.transactions, keep)
}

func (l *Ledger) load(ctx context.Context) error {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, product_id, product_name, type, quantity, price_per_unit, total_amount, timestamp
		 FROM transactions ORDER BY seq`,
	)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Transaction
		var price, total, timestamp string
		if err := rows.Scan(&t.ID, &t.ProductID, &t.ProductName, &t.Type, &t.Quantity, &price, &total, &timestamp); err != nil {
			return fmt.Errorf("scanning transaction: %w", err)
		}
		if t.PricePerUnit, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("transaction %q: parsing price: %w", t.ID, err)
		}
		if t.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return fmt.Errorf("transaction %q: parsing total: %w", t.ID, err)
		}
		if t.Timestamp, err = db.ParseTime(timestamp); err != nil {
			return fmt.Errorf("transaction %q: %w", t.ID, err)
		}
		l.transactions = append(l.transactions, t)
	}
	return rows.Err()
}

// persist rewrites the whole file from memory. Callers hold mu.
func (l *Ledger) persist(ctx context.Context) error {
	err := rewrite(ctx, l.db, "transactions",
		`INSERT INTO transactions (seq, id, product_id, product_name, type, quantity, price_per_unit, total_amount, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		func(insert func(args ...any) error) error {
			for i, t := range l.transactions {
				if err := insert(i+1, t.ID, t.ProductID, t.ProductName, string(t.Type), t.Quantity,
					db.FormatDecimal(t.PricePerUnit), db.FormatDecimal(t.TotalAmount), db.FormatTime(t.Timestamp)); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		slog.Error("failed to save ledger", "path", l.path, "error", err)
		return persistError("saving ledger", err)
	}
	slog.Debug("ledger saved", "path", l.path, "transactions", len(l.transactions))
	return nil
}
