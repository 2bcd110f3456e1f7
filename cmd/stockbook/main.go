package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/erazemk/stockbook/internal/config"
	"github.com/erazemk/stockbook/internal/inventory"
	"github.com/erazemk/stockbook/internal/store"
)

const usage = `Usage: stockbook [global flags] <command> [flags]

Global flags:
  -data <dir>          Data directory (default: data, env STOCKBOOK_DATA_DIR)
  -log <path>          Append logs to this file (env STOCKBOOK_LOG_FILE)
  -log-level <level>   debug, info, warn or error (default: info)
  -env <file>          Read settings from this .env file (default: .env)

Products:
  add        -id -name [-desc] [-category] -price [-qty]
  update     -id [-name] [-desc] [-category] [-price] [-qty]
  remove     -id
  show       -id
  list
  search     <keyword>
  category   <name>
  categories
  low-stock  [-threshold]

Stock:
  purchase   -id -qty [-supplier]
  sell       -id -qty
  restock    -id -qty
  adjust     -id -delta [-reason]

Reports:
  transactions  [-recent N] [-type T] [-product ID] [-from DATE] [-to DATE]
  logs          [-recent N] [-from DATE] [-to DATE]
  summary

Run 'stockbook <command> -h' for the flags of a command.
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("stockbook", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	dataDir := global.String("data", "", "data directory")
	logPath := global.String("log", "", "log file path")
	logLevel := global.String("log-level", "", "log level")
	envFile := global.String("env", "", ".env file path")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if global.NArg() == 0 {
		global.Usage()
		return 1
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		global.Usage()
		return 1
	}

	// Load also validates, but flags may still fix what the environment got wrong.
	cfg, err := config.Load(*envFile)
	if cfg == nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logPath != "" {
		cfg.LogFile = *logPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	cleanup, err := setupLogger(stderr, level, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer cleanup()

	svc, closeStores, err := openInventory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open inventory", "data_dir", cfg.DataDir, "error", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer closeStores()

	a := &app{svc: svc, cfg: cfg, out: stdout, errOut: stderr}
	if err := cmd(ctx, a, global.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// openInventory opens the three store files under the data directory and
// builds a service over them. The returned function closes every store.
func openInventory(ctx context.Context, cfg *config.Config) (*inventory.Service, func(), error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, err
	}

	catalog, err := store.OpenCatalog(ctx, cfg.ProductsPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	ledger, err := store.OpenLedger(ctx, cfg.TransactionsPath())
	if err != nil {
		catalog.Close()
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	activity, err := store.OpenActivityLog(ctx, cfg.ActivityPath())
	if err != nil {
		ledger.Close()
		catalog.Close()
		return nil, nil, fmt.Errorf("opening activity log: %w", err)
	}

	closeAll := func() {
		activity.Close()
		ledger.Close()
		catalog.Close()
	}
	return inventory.NewService(catalog, ledger, activity, store.SystemClock), closeAll, nil
}
