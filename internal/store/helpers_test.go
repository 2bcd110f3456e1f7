package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/model"
)

var epoch = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

// stepClock returns epoch, epoch+step, epoch+2*step, ...
type stepClock struct {
	next time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{next: epoch, step: step}
}

func (c *stepClock) Now() time.Time {
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%03d", prefix, n)
	}
}

func testPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func openTestCatalog(t *testing.T, path string, opts ...Option) *Catalog {
	t.Helper()
	c, err := OpenCatalog(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func openTestLedger(t *testing.T, path string, opts ...Option) *Ledger {
	t.Helper()
	l, err := OpenLedger(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func openTestActivityLog(t *testing.T, path string, opts ...Option) *ActivityLog {
	t.Helper()
	a, err := OpenActivityLog(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("OpenActivityLog: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func product(id, name, category, price string, quantity int) model.Product {
	return model.NewProduct(id, name, name+" description", category, decimal.RequireFromString(price), quantity, epoch)
}
