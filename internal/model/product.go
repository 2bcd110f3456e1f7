package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. ID is immutable once the product exists.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

// NewProduct returns a product stamped with now for both timestamps.
func NewProduct(id, name, description, category string, price decimal.Decimal, quantity int, now time.Time) Product {
	now = now.UTC()
	return Product{
		ID:           id,
		Name:         name,
		Description:  description,
		Category:     category,
		Price:        price,
		Quantity:     quantity,
		CreatedAt:    now,
		LastModified: now,
	}
}

// Value returns price * quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Matches reports whether keyword occurs, ignoring case, in the product's
// name, description, category or ID.
func (p Product) Matches(keyword string) bool {
	kw := strings.ToLower(keyword)
	for _, field := range []string{p.Name, p.Description, p.Category, p.ID} {
		if strings.Contains(strings.ToLower(field), kw) {
			return true
		}
	}
	return false
}

// ValidateProduct checks the fields a caller is allowed to set.
func ValidateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative, got %s", p.Price)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", p.Quantity)
	}
	return nil
}
