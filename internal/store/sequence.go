package store

import (
	"time"

	"github.com/erazemk/stockbook/internal/model"
)

// recent returns the last min(n, len(items)) elements in order.
func recent[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	from := max(len(items)-n, 0)
	out := make([]T, len(items)-from)
	copy(out, items[from:])
	return out
}

// filter returns the elements for which keep is true, preserving order.
func filter[T any](items []T, keep func(T) bool) []T {
	out := []T{}
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// between returns the elements whose timestamp lies in [start, end].
func between[T any](items []T, stamp func(T) time.Time, start, end time.Time) []T {
	return filter(items, func(item T) bool {
		return model.InRange(stamp(item), start, end)
	})
}
