package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// runCLI runs one stockbook invocation against dir, isolated from the
// caller's environment.
func runCLI(t *testing.T, dir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	for _, key := range []string{"STOCKBOOK_DATA_DIR", "STOCKBOOK_LOG_FILE", "STOCKBOOK_LOG_LEVEL", "STOCKBOOK_LOW_STOCK_THRESHOLD"} {
		t.Setenv(key, "")
	}

	var out, errOut bytes.Buffer
	full := append([]string{"-data", dir, "-env", filepath.Join(dir, "missing.env")}, args...)
	code = run(context.Background(), full, &out, &errOut)
	return out.String(), errOut.String(), code
}

// mustRun fails the test unless the invocation exits 0.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, errOut, code := runCLI(t, dir, args...)
	if code != 0 {
		t.Fatalf("stockbook %s: exit %d, stderr: %s", strings.Join(args, " "), code, errOut)
	}
	return out
}

func addWidget(t *testing.T, dir string) {
	t.Helper()
	mustRun(t, dir, "add", "-id", "P1", "-name", "Widget", "-category", "Tools", "-price", "9.99", "-qty", "10")
}

func TestPurchaseFlow(t *testing.T) {
	dir := t.TempDir()
	addWidget(t, dir)

	out := mustRun(t, dir, "purchase", "-id", "P1", "-qty", "5", "-supplier", "Acme")
	if !strings.Contains(out, "Purchase recorded") || !strings.Contains(out, "$49.95") {
		t.Errorf("purchase output = %q", out)
	}

	out = mustRun(t, dir, "show", "-id", "P1")
	for _, want := range []string{"Widget", "Quantity:", "15", "Purchase", "$49.95"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "summary")
	for _, want := range []string{"$149.85", "Purchases:", "$49.95", "Revenue:", "$0.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "logs")
	for _, want := range []string{"ADD_PRODUCT", "Purchased 5 units of Widget from Acme"} {
		if !strings.Contains(out, want) {
			t.Errorf("logs output missing %q:\n%s", want, out)
		}
	}
}

func TestOversellFails(t *testing.T) {
	dir := t.TempDir()
	addWidget(t, dir)

	_, errOut, code := runCLI(t, dir, "sell", "-id", "P1", "-qty", "20")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "insufficient stock") {
		t.Errorf("stderr = %q, want insufficient stock", errOut)
	}

	out := mustRun(t, dir, "transactions")
	if !strings.Contains(out, "No transactions found.") {
		t.Errorf("transactions after failed sale = %q", out)
	}
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	addWidget(t, dir)

	mustRun(t, dir, "update", "-id", "P1", "-price", "12.50")

	out := mustRun(t, dir, "list")
	for _, want := range []string{"Widget", "Tools", "$12.50", "$125.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestRemoveMissingProduct(t *testing.T) {
	dir := t.TempDir()

	_, errOut, code := runCLI(t, dir, "remove", "-id", "P2")
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Errorf("remove P2: exit %d, stderr %q", code, errOut)
	}

	out := mustRun(t, dir, "logs")
	if !strings.Contains(out, "No activity found.") {
		t.Errorf("logs after failed remove = %q", out)
	}
}

func TestTransactionFilters(t *testing.T) {
	dir := t.TempDir()
	addWidget(t, dir)
	mustRun(t, dir, "purchase", "-id", "P1", "-qty", "5", "-supplier", "Acme")
	mustRun(t, dir, "sell", "-id", "P1", "-qty", "3")
	mustRun(t, dir, "restock", "-id", "P1", "-qty", "2")

	out := mustRun(t, dir, "transactions", "-type", "sale")
	if !strings.Contains(out, "Sale") || strings.Contains(out, "Purchase") || strings.Contains(out, "Restock") {
		t.Errorf("-type sale output:\n%s", out)
	}

	out = mustRun(t, dir, "transactions", "-recent", "1")
	if !strings.Contains(out, "Restock") || strings.Contains(out, "Sale") {
		t.Errorf("-recent 1 output:\n%s", out)
	}

	out = mustRun(t, dir, "transactions", "-to", "2000-01-01")
	if !strings.Contains(out, "No transactions found.") {
		t.Errorf("-to 2000-01-01 output:\n%s", out)
	}

	_, errOut, code := runCLI(t, dir, "transactions", "-type", "gift")
	if code != 1 || !strings.Contains(errOut, "unknown transaction type") {
		t.Errorf("-type gift: exit %d, stderr %q", code, errOut)
	}
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "Usage: stockbook"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
		{"missing price", []string{"add", "-id", "P1", "-name", "Widget"}, "-price is required"},
		{"bad price", []string{"add", "-id", "P1", "-name", "Widget", "-price", "cheap"}, "invalid price"},
		{"zero quantity", []string{"restock", "-id", "P1", "-qty", "0"}, "invalid input"},
		{"search without keyword", []string{"search"}, "needs a keyword"},
		{"bad log level", []string{"-log-level", "loud", "list"}, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runCLI(t, dir, tt.args...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.want)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "whole day",
			from:      "2026-01-15",
			to:        "2026-01-15",
			wantStart: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "rfc3339 bounds are exact",
			from:      "2026-01-15T10:00:00Z",
			to:        "2026-01-15T12:00:00+02:00",
			wantStart: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{name: "reversed", from: "2026-02-01", to: "2026-01-01", wantErr: true},
		{name: "garbage", from: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseRange(tt.from, tt.to)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("range = [%v, %v], want [%v, %v]", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"49.95", "$49.95"},
		{"1234.5", "$1,234.50"},
		{"1000000", "$1,000,000.00"},
		{"-3.456", "-$3.46"},
	}
	for _, tt := range tests {
		if got := money(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("money(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
