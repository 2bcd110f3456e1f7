package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/stockbook/internal/db"
	"github.com/erazemk/stockbook/internal/model"
)

// ActivityLog is the append-only audit trail of administrative actions.
type ActivityLog struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	opts    options
	entries []model.ActivityLogEntry
}

// OpenActivityLog opens (or creates) the activity log file at path and loads its entries.
func OpenActivityLog(ctx context.Context, path string, opts ...Option) (*ActivityLog, error) {
	database, err := openStoreFile(path, db.ActivitySchema)
	if err != nil {
		return nil, err
	}

	a := &ActivityLog{
		db:   database,
		path: path,
		opts: buildOptions(opts),
	}
	if err := a.load(ctx); err != nil {
		database.Close()
		return nil, err
	}

	slog.Debug("activity log loaded", "path", path, "entries", len(a.entries))
	return a, nil
}

// Close closes the underlying database file.
func (a *ActivityLog) Close() error {
	return a.db.Close()
}

// Record appends an entry stamped with the current time.
func (a *ActivityLog) Record(ctx context.Context, action, details string) (model.ActivityLogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e := model.ActivityLogEntry{
		ID:        a.opts.newID(),
		Action:    action,
		Details:   details,
		Timestamp: a.opts.now(),
	}
	a.entries = append(a.entries, e)
	return e, a.persist(ctx)
}

// All returns every entry in recording order.
func (a *ActivityLog) All() []model.ActivityLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return filter(a.entries, func(model.ActivityLogEntry) bool { return true })
}

// ByDateRange returns entries stamped within [start, end].
func (a *ActivityLog) ByDateRange(start, end time.Time) []model.ActivityLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return between(a.entries, func(e model.ActivityLogEntry) time.Time { return e.Timestamp }, start, end)
}

// Recent returns the last n entries in recording order.
func (a *ActivityLog) Recent(n int) []model.ActivityLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return recent(a.entries, n)
}

func (a *ActivityLog) load(ctx context.Context) error {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, action, details, timestamp FROM activity_log ORDER BY seq`,
	)
	if err != nil {
		return fmt.Errorf("loading activity log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.ActivityLogEntry
		var timestamp string
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &timestamp); err != nil {
			return fmt.Errorf("scanning activity entry: %w", err)
		}
		if e.Timestamp, err = db.ParseTime(timestamp); err != nil {
			return fmt.Errorf("activity entry %q: %w", e.ID, err)
		}
		a.entries = append(a.entries, e)
	}
	return rows.Err()
}

func (a *ActivityLog) persist(ctx context.Context) error {
	err := rewrite(ctx, a.db, "activity_log",
		`INSERT INTO activity_log (seq, id, action, details, timestamp) VALUES (?, ?, ?, ?, ?)`,
		func(insert func(args ...any) error) error {
			for i, e := range a.entries {
				if err := insert(i+1, e.ID, e.Action, e.Details, db.FormatTime(e.Timestamp)); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		slog.Error("failed to save activity log", "path", a.path, "error", err)
		return persistError("saving activity log", err)
	}
	slog.Debug("activity log saved", "path", a.path, "entries", len(a.entries))
	return nil
}
