package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/stockbook/internal/model"
)

func TestActivityLogRecord(t *testing.T) {
	a := openTestActivityLog(t, testPath(t, "activity.db"),
		WithClock(newStepClock(time.Second)), WithIDGenerator(sequentialIDs("log")))

	e, err := a.Record(context.Background(), model.ActionAddProduct, "Added product: Widget (ID: P1)")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := model.ActivityLogEntry{
		ID:        "log001",
		Action:    model.ActionAddProduct,
		Details:   "Added product: Widget (ID: P1)",
		Timestamp: epoch,
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestActivityLogQueries(t *testing.T) {
	a := openTestActivityLog(t, testPath(t, "activity.db"),
		WithClock(newStepClock(time.Minute)), WithIDGenerator(sequentialIDs("log")))
	ctx := context.Background()

	for _, action := range []string{model.ActionAddProduct, model.ActionPurchaseProduct, model.ActionSellProduct, model.ActionRemoveProduct} {
		a.Record(ctx, action, "details")
	}

	ids := func(entries []model.ActivityLogEntry) []string {
		out := []string{}
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		name string
		got  []model.ActivityLogEntry
		want []string
	}{
		{"all", a.All(), []string{"log001", "log002", "log003", "log004"}},
		{"range", a.ByDateRange(epoch.Add(time.Minute), epoch.Add(3*time.Minute)), []string{"log002", "log003", "log004"}},
		{"range single instant", a.ByDateRange(epoch, epoch), []string{"log001"}},
		{"recent 0", a.Recent(0), []string{}},
		{"recent 3", a.Recent(3), []string{"log002", "log003", "log004"}},
		{"recent 10", a.Recent(10), []string{"log001", "log002", "log003", "log004"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ids(tt.got)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestActivityLogReload(t *testing.T) {
	path := testPath(t, "activity.db")
	ctx := context.Background()

	a, err := OpenActivityLog(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	a.Record(ctx, model.ActionAddProduct, "Added product: Widget (ID: P1)")
	a.Record(ctx, model.ActionSellProduct, "Sold 2 units of Widget")
	before := a.All()
	a.Close()

	reopened := openTestActivityLog(t, path)
	if diff := cmp.Diff(before, reopened.All()); diff != "" {
		t.Errorf("reloaded log mismatch (-want +got):\n%s", diff)
	}
}

func TestActivityLogPersistenceFailure(t *testing.T) {
	a := openTestActivityLog(t, testPath(t, "activity.db"))
	a.Close()

	_, err := a.Record(context.Background(), model.ActionAddProduct, "x")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(a.All()) != 1 {
		t.Errorf("expected entry kept in memory, got %d", len(a.All()))
	}
}
