package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/bizledger/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// ledgerTables must exist once every migration has been applied
var ledgerTables = []string{
	"clients", "suppliers", "stock_items", "grvs", "grv_items",
	"quotes", "quote_lines", "invoices", "invoice_lines", "payments",
}

type command struct {
	usage string
	// needsArg commands take one integer argument
	needsArg bool
	run      func(env *cliEnv, arg int) error
}

type cliEnv struct {
	db       *sql.DB
	migrator *migration.Migrator
	log      *zap.Logger
}

var commands = map[string]command{
	"up": {usage: "Apply all pending migrations", run: func(env *cliEnv, _ int) error {
		return env.migrator.Up()
	}},
	"down": {usage: "Roll back all migrations", run: func(env *cliEnv, _ int) error {
		return env.migrator.Down()
	}},
	"steps": {usage: "Apply n migrations (negative rolls back)", needsArg: true, run: func(env *cliEnv, n int) error {
		return env.migrator.Steps(n)
	}},
	"goto": {usage: "Migrate to a specific version", needsArg: true, run: func(env *cliEnv, v int) error {
		if v < 0 {
			return fmt.Errorf("version must not be negative: %d", v)
		}
		return env.migrator.GoTo(uint(v))
	}},
	"force": {usage: "Set the version without running migrations (clears the dirty flag)", needsArg: true, run: func(env *cliEnv, v int) error {
		return env.migrator.Force(v)
	}},
	"version": {usage: "Show the current migration version", run: printVersion},
	"check":   {usage: "Verify the ledger tables and the GRV duplicate guard exist", run: checkSchema},
}

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name := args[0]
	if name == "step" {
		name = "steps"
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	arg, err := parseArg(cmd, args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(name, cmd, arg, migrationsPath, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

func run(name string, cmd command, arg int, migrationsPath string, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	migrationsPath, err = resolveMigrationsPath(migrationsPath)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	log.Info("Migration CLI started",
		zap.String("command", name),
		zap.String("migrations_path", migrationsPath),
		zap.String("database", cfg.Database.DBName),
	)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return cmd.run(&cliEnv{db: db, migrator: m, log: log}, arg)
}

func parseArg(cmd command, rest []string) (int, error) {
	if !cmd.needsArg {
		return 0, nil
	}
	if len(rest) == 0 {
		return 0, errors.New("missing integer argument")
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", rest[0], err)
	}
	return n, nil
}

func printVersion(env *cliEnv, _ int) error {
	version, dirty, err := env.migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		env.log.Info("No migrations applied")
		return nil
	}
	env.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func checkSchema(env *cliEnv, _ int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var missing []string
	for _, table := range ledgerTables {
		var exists bool
		err := env.db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}

	var indexDef string
	err := env.db.QueryRowContext(ctx,
		`SELECT indexdef FROM pg_indexes WHERE tablename = 'grvs' AND indexname = 'idx_grv_supplier_reference'`,
	).Scan(&indexDef)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		missing = append(missing, "idx_grv_supplier_reference")
	case err != nil:
		return fmt.Errorf("check grv duplicate index: %w", err)
	case !strings.Contains(strings.ToUpper(indexDef), "UNIQUE"):
		return fmt.Errorf("idx_grv_supplier_reference is not unique: %s", indexDef)
	}

	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing: %s", strings.Join(missing, ", "))
	}
	env.log.Info("Ledger schema verified", zap.Int("tables", len(ledgerTables)))
	return nil
}

// resolveMigrationsPath falls back to ./migrations, then to migrations two levels above the binary
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Ledger database migration tool")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  migrate [flags] <command> [n]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, name := range names {
		cmd := commands[name]
		label := name
		if cmd.needsArg {
			label += " <n>"
		}
		fmt.Fprintf(out, "  %-14s %s\n", label, cmd.usage)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Connection settings come from config.toml or LEDGER_DATABASE_* variables.")
}
