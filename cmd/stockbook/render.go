package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/erazemk/stockbook/internal/inventory"
	"github.com/erazemk/stockbook/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printProducts(w io.Writer, products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQTY\tVALUE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Category, money(p.Price), units(p.Quantity), money(p.Value()))
	}
	tw.Flush()
}

func printProduct(w io.Writer, p model.Product) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	fmt.Fprintf(tw, "Price:\t%s\n", money(p.Price))
	fmt.Fprintf(tw, "Quantity:\t%s\n", units(p.Quantity))
	fmt.Fprintf(tw, "Value:\t%s\n", money(p.Value()))
	fmt.Fprintf(tw, "Created:\t%s\n", stamp(p.CreatedAt))
	fmt.Fprintf(tw, "Modified:\t%s\n", stamp(p.LastModified))
	tw.Flush()
}

func printTransactions(w io.Writer, txs []model.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTIME\tTYPE\tPRODUCT\tQTY\tPRICE\tTOTAL")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s)\t%s\t%s\t%s\n",
			tx.ID, tx.Timestamp.Format(timeLayout), tx.Type.DisplayName(), tx.ProductName, tx.ProductID,
			units(tx.Quantity), money(tx.PricePerUnit), money(tx.TotalAmount))
	}
	tw.Flush()
}

func printRecorded(w io.Writer, tx model.Transaction) {
	fmt.Fprintf(w, "%s recorded: %s x %s @ %s = %s (transaction %s)\n",
		tx.Type.DisplayName(), tx.ProductName, units(tx.Quantity), money(tx.PricePerUnit), money(tx.TotalAmount), tx.ID)
}

func printActivity(w io.Writer, entries []model.ActivityLogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No activity found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tACTION\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Format(timeLayout), e.Action, e.Details)
	}
	tw.Flush()
}

func printSummary(w io.Writer, s inventory.Summary, lowStock, threshold int) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Products:\t%s\n", units(s.Products))
	fmt.Fprintf(tw, "Units in stock:\t%s\n", units(s.Units))
	fmt.Fprintf(tw, "Stock value:\t%s\n", money(s.Value))
	fmt.Fprintf(tw, "Purchases:\t%s\n", money(s.Purchases))
	fmt.Fprintf(tw, "Revenue:\t%s\n", money(s.Revenue))
	fmt.Fprintf(tw, "Low stock (<= %d):\t%s\n", threshold, units(lowStock))
	tw.Flush()
}

func units(n int) string {
	return humanize.Comma(int64(n))
}

// money renders d rounded to cents with thousands separators, e.g. $1,234.50.
func money(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	whole, cents, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + whole + "." + cents
	}
	return sign + "$" + humanize.Comma(n) + "." + cents
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.UTC().Format(timeLayout), humanize.Time(t))
}
