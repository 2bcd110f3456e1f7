// Package inventory coordinates the product catalog, transaction ledger and
// activity log into validated stock operations.
//
// Each store persists independently and in the order catalog, ledger, activity
// log. There is no transaction spanning the three files: a crash between two
// writes can leave, for example, a changed stock level without its ledger row.
// A persistence failure does not undo the in-memory change; the remaining
// stores are still updated in memory so they agree with each other, and the
// failures are returned joined together, each matching store.ErrPersistence.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/model"
	"github.com/erazemk/stockbook/internal/store"
)

// Errors returned by the service. They alias the store errors so callers can
// match either.
var (
	ErrNotFound          = store.ErrNotFound
	ErrDuplicateKey      = store.ErrDuplicateKey
	ErrInsufficientStock = store.ErrInsufficientStock
	ErrPersistence       = store.ErrPersistence
	ErrInvalidInput      = store.ErrInvalidInput
)

// Service implements the inventory operations on top of the three stores.
type Service struct {
	catalog  Catalog
	ledger   Ledger
	activity ActivityLog
	clock    store.Clock
}

// NewService returns a service over the given stores. A nil clock uses the wall clock.
func NewService(catalog Catalog, ledger Ledger, activity ActivityLog, clock store.Clock) *Service {
	if clock == nil {
		clock = store.SystemClock
	}
	return &Service{
		catalog:  catalog,
		ledger:   ledger,
		activity: activity,
		clock:    clock,
	}
}

// Summary aggregates the catalog and the ledger.
type Summary struct {
	Products  int
	Units     int
	Value     decimal.Decimal
	Purchases decimal.Decimal
	Revenue   decimal.Decimal
}

// AddProduct validates and inserts a new product. Zero timestamps are set to now.
func (s *Service) AddProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if err := model.ValidateProduct(p); err != nil {
		return model.Product{}, invalid(err)
	}

	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.LastModified.IsZero() {
		p.LastModified = now
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.LastModified = p.LastModified.UTC()

	err := s.catalog.Add(ctx, p)
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		slog.Info("add rejected", "product_id", p.ID, "error", err)
		return model.Product{}, err
	}
	return p, s.audit(ctx, err, model.ActionAddProduct,
		fmt.Sprintf("Added product: %s (ID: %s)", p.Name, p.ID))
}

// UpdateProduct replaces an existing product and stamps LastModified.
// A zero CreatedAt keeps the stored creation time.
func (s *Service) UpdateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if err := model.ValidateProduct(p); err != nil {
		return model.Product{}, invalid(err)
	}

	current, err := s.catalog.Get(p.ID)
	if err != nil {
		slog.Info("update rejected", "product_id", p.ID, "error", err)
		return model.Product{}, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = current.CreatedAt
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.LastModified = s.now()

	err = s.catalog.Update(ctx, p)
	return p, s.audit(ctx, err, model.ActionUpdateProduct,
		fmt.Sprintf("Updated product: %s (ID: %s)", p.Name, p.ID))
}

// RemoveProduct deletes a product and returns it. Its transactions stay in the ledger.
func (s *Service) RemoveProduct(ctx context.Context, id string) (model.Product, error) {
	p, err := s.catalog.Remove(ctx, id)
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		slog.Info("remove rejected", "product_id", id, "error", err)
		return model.Product{}, err
	}
	return p, s.audit(ctx, err, model.ActionRemoveProduct,
		fmt.Sprintf("Removed product: %s (ID: %s)", p.Name, id))
}

// Purchase adds quantity units bought from supplier and records a PURCHASE.
func (s *Service) Purchase(ctx context.Context, id string, quantity int, supplier string) (model.Transaction, error) {
	if quantity <= 0 {
		return model.Transaction{}, invalid(fmt.Errorf("purchase quantity must be positive, got %d", quantity))
	}
	return s.move(ctx, id, quantity, model.TransactionPurchase, model.ActionPurchaseProduct,
		func(p model.Product) string {
			return fmt.Sprintf("Purchased %d units of %s from %s", quantity, p.Name, supplier)
		})
}

// Sell removes quantity units and records a SALE. Selling more than is in
// stock fails with ErrInsufficientStock and changes nothing.
func (s *Service) Sell(ctx context.Context, id string, quantity int) (model.Transaction, error) {
	if quantity <= 0 {
		return model.Transaction{}, invalid(fmt.Errorf("sale quantity must be positive, got %d", quantity))
	}
	return s.move(ctx, id, -quantity, model.TransactionSale, model.ActionSellProduct,
		func(p model.Product) string {
			return fmt.Sprintf("Sold %d units of %s", quantity, p.Name)
		})
}

// Restock adds quantity units and records a RESTOCK.
func (s *Service) Restock(ctx context.Context, id string, quantity int) (model.Transaction, error) {
	if quantity <= 0 {
		return model.Transaction{}, invalid(fmt.Errorf("restock quantity must be positive, got %d", quantity))
	}
	return s.move(ctx, id, quantity, model.TransactionRestock, model.ActionRestockProduct,
		func(p model.Product) string {
			return fmt.Sprintf("Restocked %d units of %s", quantity, p.Name)
		})
}

// Adjust corrects stock by delta (losses, counting errors) and records an
// ADJUSTMENT whose quantity is |delta|.
func (s *Service) Adjust(ctx context.Context, id string, delta int, reason string) (model.Transaction, error) {
	if delta == 0 {
		return model.Transaction{}, invalid(errors.New("adjustment must be non-zero"))
	}
	return s.move(ctx, id, delta, model.TransactionAdjustment, model.ActionAdjustStock,
		func(p model.Product) string {
			details := fmt.Sprintf("Adjusted stock of %s by %+d", p.Name, delta)
			if reason != "" {
				details += ": " + reason
			}
			return details
		})
}

// Product returns a product by ID.
func (s *Service) Product(id string) (model.Product, error) {
	return s.catalog.Get(id)
}

// Products returns every product ordered by ID.
func (s *Service) Products() []model.Product {
	return s.catalog.All()
}

// Search returns products matching keyword in name, description, category or ID.
func (s *Service) Search(keyword string) []model.Product {
	return s.catalog.Search(keyword)
}

// ByCategory returns products in category, ignoring case.
func (s *Service) ByCategory(category string) []model.Product {
	return s.catalog.ByCategory(category)
}

// LowStock returns products with quantity at or below threshold.
func (s *Service) LowStock(threshold int) []model.Product {
	return s.catalog.LowStock(threshold)
}

// Categories returns the distinct category names.
func (s *Service) Categories() []string {
	return s.catalog.Categories()
}

// TotalValue returns the catalog's stock value.
func (s *Service) TotalValue() decimal.Decimal {
	return s.catalog.TotalValue()
}

// TotalProductCount returns the number of products.
func (s *Service) TotalProductCount() int {
	return s.catalog.TotalProductCount()
}

// TotalStockCount returns the number of units in stock.
func (s *Service) TotalStockCount() int {
	return s.catalog.TotalStockCount()
}

// History returns the transactions recorded for a product, including removed ones.
func (s *Service) History(id string) []model.Transaction {
	return s.ledger.ByProduct(id)
}

// Transactions returns the whole ledger.
func (s *Service) Transactions() []model.Transaction {
	return s.ledger.All()
}

// TransactionsByType returns transactions of one type.
func (s *Service) TransactionsByType(typ model.TransactionType) []model.Transaction {
	return s.ledger.ByType(typ)
}

// TransactionsBetween returns transactions within [start, end].
func (s *Service) TransactionsBetween(start, end time.Time) []model.Transaction {
	return s.ledger.ByDateRange(start, end)
}

// RecentTransactions returns the last n transactions.
func (s *Service) RecentTransactions(n int) []model.Transaction {
	return s.ledger.Recent(n)
}

// Activity returns the whole activity log.
func (s *Service) Activity() []model.ActivityLogEntry {
	return s.activity.All()
}

// ActivityBetween returns log entries within [start, end].
func (s *Service) ActivityBetween(start, end time.Time) []model.ActivityLogEntry {
	return s.activity.ByDateRange(start, end)
}

// RecentActivity returns the last n log entries.
func (s *Service) RecentActivity(n int) []model.ActivityLogEntry {
	return s.activity.Recent(n)
}

// Summary returns stock totals and the purchase/revenue sums.
func (s *Service) Summary() Summary {
	return Summary{
		Products:  s.catalog.TotalProductCount(),
		Units:     s.catalog.TotalStockCount(),
		Value:     s.catalog.TotalValue(),
		Purchases: s.ledger.TotalByType(model.TransactionPurchase),
		Revenue:   s.ledger.TotalByType(model.TransactionSale),
	}
}

// move applies delta to a product's stock, records one transaction of typ and
// one activity entry.
func (s *Service) move(ctx context.Context, id string, delta int, typ model.TransactionType, action string, details func(model.Product) string) (model.Transaction, error) {
	p, err := s.catalog.AdjustQuantity(ctx, id, delta)
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		slog.Info("stock change rejected", "product_id", id, "type", typ, "delta", delta, "error", err)
		return model.Transaction{}, err
	}
	failures := []error{err}

	tx, err := s.ledger.Record(ctx, p.ID, p.Name, typ, abs(delta), p.Price)
	failures = append(failures, err)

	_, err = s.activity.Record(ctx, action, details(p))
	failures = append(failures, err)

	return tx, errors.Join(failures...)
}

// audit records an activity entry for a catalog change that succeeded in
// memory. A non-persistence err means nothing changed, so it is returned as is.
func (s *Service) audit(ctx context.Context, err error, action, details string) error {
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		slog.Info("operation rejected", "action", action, "error", err)
		return err
	}
	_, logErr := s.activity.Record(ctx, action, details)
	return errors.Join(err, logErr)
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
