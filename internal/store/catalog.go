package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/db"
	"github.com/erazemk/stockbook/internal/model"
)

// Catalog holds products keyed by ID and mirrors them to a SQLite file.
// Every mutation rewrites the file before returning.
type Catalog struct {
	mu       sync.Mutex
	db       *sql.DB
	path     string
	opts     options
	products map[string]model.Product
}

// OpenCatalog opens (or creates) the catalog file at path and loads its products.
func OpenCatalog(ctx context.Context, path string, opts ...Option) (*Catalog, error) {
	database, err := openStoreFile(path, db.ProductsSchema)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		db:       database,
		path:     path,
		opts:     buildOptions(opts),
		products: make(map[string]model.Product),
	}
	if err := c.load(ctx); err != nil {
		database.Close()
		return nil, err
	}

	slog.Debug("catalog loaded", "path", path, "products", len(c.products))
	return c, nil
}

// Close closes the underlying database file.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add inserts a new product.
func (c *Catalog) Add(ctx context.Context, p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[p.ID]; ok {
		return fmt.Errorf("product %q: %w", p.ID, ErrDuplicateKey)
	}
	c.products[p.ID] = p
	return c.persist(ctx)
}

// Remove deletes a product and returns it.
func (c *Catalog) Remove(ctx context.Context, id string) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	delete(c.products, id)
	return p, c.persist(ctx)
}

// Update replaces a stored product wholesale.
func (c *Catalog) Update(ctx context.Context, p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[p.ID]; !ok {
		return fmt.Errorf("product %q: %w", p.ID, ErrNotFound)
	}
	c.products[p.ID] = p
	return c.persist(ctx)
}

// AdjustQuantity adds delta (which may be negative) to a product's stock.
// A result below zero fails with ErrInsufficientStock and a result above
// math.MaxInt fails with ErrInvalidInput. Neither changes anything.
func (c *Catalog) AdjustQuantity(ctx context.Context, id string, delta int) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	if delta > 0 && p.Quantity > math.MaxInt-delta {
		return p, fmt.Errorf("product %q: adding %d to %d overflows: %w", id, delta, p.Quantity, ErrInvalidInput)
	}
	if p.Quantity+delta < 0 {
		return p, fmt.Errorf("product %q: have %d, need %d: %w", id, p.Quantity, -delta, ErrInsufficientStock)
	}

	p.Quantity += delta
	p.LastModified = c.opts.now()
	c.products[id] = p
	return p, c.persist(ctx)
}

// Get returns a product by ID.
func (c *Catalog) Get(id string) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// All returns every product ordered by ID.
func (c *Catalog) All() []model.Product {
	return c.where(func(model.Product) bool { return true })
}

// Search returns products whose name, description, category or ID contains
// keyword, ignoring case.
func (c *Catalog) Search(keyword string) []model.Product {
	return c.where(func(p model.Product) bool { return p.Matches(keyword) })
}

// ByCategory returns products in category, compared case-insensitively.
func (c *Catalog) ByCategory(category string) []model.Product {
	return c.where(func(p model.Product) bool { return strings.EqualFold(p.Category, category) })
}

// LowStock returns products with quantity at or below threshold.
func (c *Catalog) LowStock(threshold int) []model.Product {
	return c.where(func(p model.Product) bool { return p.Quantity <= threshold })
}

// Categories returns the distinct category names, sorted.
func (c *Catalog) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{})
	for _, p := range c.products {
		seen[p.Category] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// TotalValue returns the sum of price * quantity over all products.
func (c *Catalog) TotalValue() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, p := range c.products {
		total = total.Add(p.Value())
	}
	return total
}

// TotalProductCount returns the number of products.
func (c *Catalog) TotalProductCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.products)
}

// TotalStockCount returns the sum of all quantities, saturating at math.MaxInt.
func (c *Catalog) TotalStockCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, p := range c.products {
		if total > math.MaxInt-p.Quantity {
			return math.MaxInt
		}
		total += p.Quantity
	}
	return total
}

// where returns the products matching keep, ordered by ID. Callers must not hold mu.
func (c *Catalog) where(keep func(model.Product) bool) []model.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := []model.Product{}
	for _, id := range slices.Sorted(maps.Keys(c.products)) {
		if p := c.products[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) load(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, description, category, price, quantity, created_at, last_modified
		 FROM products`,
	)
	if err != nil {
		return fmt.Errorf("loading products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		var price, createdAt, lastModified string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &price, &p.Quantity, &createdAt, &lastModified); err != nil {
			return fmt.Errorf("scanning product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("product %q: parsing price: %w", p.ID, err)
		}
		if p.CreatedAt, err = db.ParseTime(createdAt); err != nil {
			return fmt.Errorf("product %q: %w", p.ID, err)
		}
		if p.LastModified, err = db.ParseTime(lastModified); err != nil {
			return fmt.Errorf("product %q: %w", p.ID, err)
		}
		c.products[p.ID] = p
	}
	return rows.Err()
}

// persist rewrites the whole file from the in-memory map. Callers hold mu.
func (c *Catalog) persist(ctx context.Context) error {
	err := rewrite(ctx, c.db, "products",
		`INSERT INTO products (id, name, description, category, price, quantity, created_at, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		func(insert func(args ...any) error) error {
			for _, id := range slices.Sorted(maps.Keys(c.products)) {
				p := c.products[id]
				if err := insert(p.ID, p.Name, p.Description, p.Category, db.FormatDecimal(p.Price), p.Quantity,
					db.FormatTime(p.CreatedAt), db.FormatTime(p.LastModified)); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		slog.Error("failed to save catalog", "path", c.path, "error", err)
		return persistError("saving catalog", err)
	}
	slog.Debug("catalog saved", "path", c.path, "products", len(c.products))
	return nil
}
