package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEnsureSchemaStampsVersion(t *testing.T) {
	for _, s := range []Schema{ProductsSchema, TransactionsSchema, ActivitySchema} {
		database := NewTestDB(t, s)

		version, err := UserVersion(database)
		if err != nil {
			t.Fatalf("%s: UserVersion: %v", s.Name, err)
		}
		if version != s.Version {
			t.Errorf("%s: expected version %d, got %d", s.Name, s.Version, version)
		}

		var count int
		if err := database.QueryRow(`SELECT COUNT(*) FROM ` + s.Name).Scan(&count); err != nil {
			t.Errorf("%s: expected table to exist: %v", s.Name, err)
		}
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t, ProductsSchema)

	if err := EnsureSchema(database, ProductsSchema); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestEnsureSchemaRefusesNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.db")

	database, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if _, err := database.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}

	err = EnsureSchema(database, ProductsSchema)
	if !errors.Is(err, ErrNewerSchema) {
		t.Fatalf("expected ErrNewerSchema, got %v", err)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	local := time.FixedZone("CET", 3600)
	in := time.Date(2026, 3, 14, 15, 9, 26, 535897932, local)

	out, err := ParseTime(FormatTime(in))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("expected %v, got %v", in, out)
	}
	if out.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", out.Location())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestFormatDecimalKeepsScale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.40", "0.40"},
		{"9.99", "9.99"},
		{"49.950", "49.950"},
		{"120", "120"},
		{"-3.10", "-3.10"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		got := FormatDecimal(d)
		if got != tt.want {
			t.Errorf("FormatDecimal(%s) = %q, want %q", tt.in, got, tt.want)
		}
		back := decimal.RequireFromString(got)
		if back.Exponent() != d.Exponent() || !back.Equal(d) {
			t.Errorf("%s: reparsed as %s with exponent %d, want exponent %d", tt.in, back, back.Exponent(), d.Exponent())
		}
	}
}
