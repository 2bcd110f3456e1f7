package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/model"
)

// Catalog stores products keyed by ID.
type Catalog interface {
	Add(ctx context.Context, p model.Product) error
	Remove(ctx context.Context, id string) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	AdjustQuantity(ctx context.Context, id string, delta int) (model.Product, error)
	Get(id string) (model.Product, error)
	All() []model.Product
	Search(keyword string) []model.Product
	ByCategory(category string) []model.Product
	LowStock(threshold int) []model.Product
	Categories() []string
	TotalValue() decimal.Decimal
	TotalProductCount() int
	TotalStockCount() int
}

// Ledger is the append-only transaction history.
type Ledger interface {
	Record(ctx context.Context, productID, productName string, typ model.TransactionType, quantity int, pricePerUnit decimal.Decimal) (model.Transaction, error)
	All() []model.Transaction
	ByProduct(productID string) []model.Transaction
	ByType(typ model.TransactionType) []model.Transaction
	ByDateRange(start, end time.Time) []model.Transaction
	TotalByType(typ model.TransactionType) decimal.Decimal
	Recent(n int) []model.Transaction
}

// ActivityLog is the append-only audit trail.
type ActivityLog interface {
	Record(ctx context.Context, action, details string) (model.ActivityLogEntry, error)
	All() []model.ActivityLogEntry
	ByDateRange(start, end time.Time) []model.ActivityLogEntry
	Recent(n int) []model.ActivityLogEntry
}
