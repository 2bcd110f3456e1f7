package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/config"
	"github.com/erazemk/stockbook/internal/inventory"
	"github.com/erazemk/stockbook/internal/model"
)

// app is the state shared by every command.
type app struct {
	svc    *inventory.Service
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"add":          runAdd,
	"update":       runUpdate,
	"remove":       runRemove,
	"show":         runShow,
	"list":         runList,
	"search":       runSearch,
	"category":     runCategory,
	"categories":   runCategories,
	"low-stock":    runLowStock,
	"purchase":     runPurchase,
	"sell":         runSell,
	"restock":      runRestock,
	"adjust":       runAdjust,
	"transactions": runTransactions,
	"logs":         runLogs,
	"summary":      runSummary,
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("stockbook "+name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := a.flags("add")
	id := fs.String("id", "", "product ID")
	name := fs.String("name", "", "product name")
	desc := fs.String("desc", "", "description")
	category := fs.String("category", "", "category")
	price := fs.String("price", "", "unit price, e.g. 9.99")
	qty := fs.Int("qty", 0, "initial quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id, "name", *name, "price", *price); err != nil {
		return err
	}
	amount, err := parsePrice(*price)
	if err != nil {
		return err
	}

	p, err := a.svc.AddProduct(ctx, model.Product{
		ID:          *id,
		Name:        *name,
		Description: *desc,
		Category:    *category,
		Price:       amount,
		Quantity:    *qty,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", p.Name, p.ID)
	return nil
}

// runUpdate changes only the fields whose flags were given.
func runUpdate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("update")
	id := fs.String("id", "", "product ID")
	name := fs.String("name", "", "new name")
	desc := fs.String("desc", "", "new description")
	category := fs.String("category", "", "new category")
	price := fs.String("price", "", "new unit price")
	qty := fs.Int("qty", 0, "new quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	p, err := a.svc.Product(*id)
	if err != nil {
		return err
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			p.Name = *name
		case "desc":
			p.Description = *desc
		case "category":
			p.Category = *category
		case "price":
			p.Price, parseErr = parsePrice(*price)
		case "qty":
			p.Quantity = *qty
		}
	})
	if parseErr != nil {
		return parseErr
	}

	p, err = a.svc.UpdateProduct(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s (%s)\n", p.Name, p.ID)
	return nil
}

func runRemove(ctx context.Context, a *app, args []string) error {
	fs := a.flags("remove")
	id := fs.String("id", "", "product ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	p, err := a.svc.RemoveProduct(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s (%s)\n", p.Name, p.ID)
	return nil
}

func runShow(_ context.Context, a *app, args []string) error {
	fs := a.flags("show")
	id := fs.String("id", "", "product ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	p, err := a.svc.Product(*id)
	if err != nil {
		return err
	}
	printProduct(a.out, p)
	fmt.Fprintln(a.out)
	printTransactions(a.out, a.svc.History(p.ID))
	return nil
}

func runList(_ context.Context, a *app, args []string) error {
	if err := a.flags("list").Parse(args); err != nil {
		return err
	}
	printProducts(a.out, a.svc.Products())
	return nil
}

func runSearch(_ context.Context, a *app, args []string) error {
	fs := a.flags("search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	keyword := strings.Join(fs.Args(), " ")
	if keyword == "" {
		return errors.New("search needs a keyword")
	}
	printProducts(a.out, a.svc.Search(keyword))
	return nil
}

func runCategory(_ context.Context, a *app, args []string) error {
	fs := a.flags("category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	if name == "" {
		return errors.New("category needs a name")
	}
	printProducts(a.out, a.svc.ByCategory(name))
	return nil
}

func runCategories(_ context.Context, a *app, args []string) error {
	if err := a.flags("categories").Parse(args); err != nil {
		return err
	}
	categories := a.svc.Categories()
	if len(categories) == 0 {
		fmt.Fprintln(a.out, "No categories.")
		return nil
	}
	for _, c := range categories {
		if c == "" {
			c = "(none)"
		}
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func runLowStock(_ context.Context, a *app, args []string) error {
	fs := a.flags("low-stock")
	threshold := fs.Int("threshold", a.cfg.LowStockThreshold, "report products with at most this many units")
	if err := fs.Parse(args); err != nil {
		return err
	}
	printProducts(a.out, a.svc.LowStock(*threshold))
	return nil
}

func runPurchase(ctx context.Context, a *app, args []string) error {
	fs := a.flags("purchase")
	id := fs.String("id", "", "product ID")
	qty := fs.Int("qty", 0, "units bought")
	supplier := fs.String("supplier", "", "supplier name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	tx, err := a.svc.Purchase(ctx, *id, *qty, *supplier)
	if tx.ID != "" {
		printRecorded(a.out, tx)
	}
	return err
}

func runSell(ctx context.Context, a *app, args []string) error {
	fs := a.flags("sell")
	id := fs.String("id", "", "product ID")
	qty := fs.Int("qty", 0, "units sold")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	tx, err := a.svc.Sell(ctx, *id, *qty)
	if tx.ID != "" {
		printRecorded(a.out, tx)
	}
	return err
}

func runRestock(ctx context.Context, a *app, args []string) error {
	fs := a.flags("restock")
	id := fs.String("id", "", "product ID")
	qty := fs.Int("qty", 0, "units added")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	tx, err := a.svc.Restock(ctx, *id, *qty)
	if tx.ID != "" {
		printRecorded(a.out, tx)
	}
	return err
}

func runAdjust(ctx context.Context, a *app, args []string) error {
	fs := a.flags("adjust")
	id := fs.String("id", "", "product ID")
	delta := fs.Int("delta", 0, "stock correction, negative to remove units")
	reason := fs.String("reason", "", "reason for the correction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	tx, err := a.svc.Adjust(ctx, *id, *delta, *reason)
	if tx.ID != "" {
		printRecorded(a.out, tx)
	}
	return err
}

// runTransactions lists ledger rows. The most specific filter picks the
// query; every given filter is then applied to its result.
func runTransactions(_ context.Context, a *app, args []string) error {
	fs := a.flags("transactions")
	recent := fs.Int("recent", 0, "show only the last N transactions")
	typeName := fs.String("type", "", "purchase, sale, restock or adjustment")
	productID := fs.String("product", "", "product ID")
	from := fs.String("from", "", "start date (YYYY-MM-DD or RFC 3339)")
	to := fs.String("to", "", "end date, inclusive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var typ model.TransactionType
	if *typeName != "" {
		var err error
		if typ, err = model.ParseTransactionType(*typeName); err != nil {
			return err
		}
	}
	start, end, err := parseRange(*from, *to)
	if err != nil {
		return err
	}
	ranged := *from != "" || *to != ""

	var txs []model.Transaction
	switch {
	case *productID != "":
		txs = a.svc.History(*productID)
	case typ != "":
		txs = a.svc.TransactionsByType(typ)
	case ranged:
		txs = a.svc.TransactionsBetween(start, end)
	case *recent > 0:
		txs = a.svc.RecentTransactions(*recent)
	default:
		txs = a.svc.Transactions()
	}

	txs = keep(txs, func(tx model.Transaction) bool {
		return (typ == "" || tx.Type == typ) && (!ranged || model.InRange(tx.Timestamp, start, end))
	})
	printTransactions(a.out, last(txs, *recent))
	return nil
}

func runLogs(_ context.Context, a *app, args []string) error {
	fs := a.flags("logs")
	recent := fs.Int("recent", 0, "show only the last N entries")
	from := fs.String("from", "", "start date (YYYY-MM-DD or RFC 3339)")
	to := fs.String("to", "", "end date, inclusive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	start, end, err := parseRange(*from, *to)
	if err != nil {
		return err
	}

	var entries []model.ActivityLogEntry
	switch {
	case *from != "" || *to != "":
		entries = a.svc.ActivityBetween(start, end)
	case *recent > 0:
		entries = a.svc.RecentActivity(*recent)
	default:
		entries = a.svc.Activity()
	}
	printActivity(a.out, last(entries, *recent))
	return nil
}

func runSummary(_ context.Context, a *app, args []string) error {
	if err := a.flags("summary").Parse(args); err != nil {
		return err
	}
	printSummary(a.out, a.svc.Summary(), len(a.svc.LowStock(a.cfg.LowStockThreshold)), a.cfg.LowStockThreshold)
	return nil
}

// required takes name/value pairs and reports the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("-%s is required", pairs[i])
		}
	}
	return nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}
	return d, nil
}

// parseRange turns the -from/-to flags into an inclusive range. A bare date
// for -to covers the whole day. Missing bounds are open.
func parseRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

	if from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return start, end, err
		}
		start = t
	}
	if to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return start, end, err
		}
		end = t
		if dateOnly {
			end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("-to %s is before -from %s", to, from)
	}
	return start, end, nil
}

// parseDate accepts YYYY-MM-DD (UTC midnight) or RFC 3339 and reports which.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), false, nil
}

func keep[T any](items []T, ok func(T) bool) []T {
	out := items[:0:0]
	for _, item := range items {
		if ok(item) {
			out = append(out, item)
		}
	}
	return out
}

// last returns the final n items, or all of them when n <= 0.
func last[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[len(items)-n:]
}
