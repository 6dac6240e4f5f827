package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/reporting"
	"ledger/internal/services"
)

const usage = `Usage: ledger [-db <db_path>] <command> [arguments]

Commands:
  register <user_id> [username]          register a user (no-op when known)
  add <user_id> <amount> <category>      record an expense
  report <user_id> <month|year>          totals per category for the period
  top <user_id>                          category with the largest all-time total
  stats <user_id> <month|year> [category] totals for the period, optionally one category
`

var errUsage = errors.New("invalid usage")

func main() {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	dbPath := fs.String("db", "", "Path to database file (overrides LEDGER_DB_PATH)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.SQLiteDBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cli.SetupLogger(stderr, cfg.LogLevel, log.ComponentCLI)
	if err != nil {
		return err
	}

	repo, err := cli.InitSQLite(logger, cfg)
	if err != nil {
		return err
	}
	svc := services.NewLedgerService(repo, cli.InitPublisher(logger, cfg))
	defer svc.Close()

	c := &command{
		ledger: svc,
		engine: reporting.NewEngine(repo),
		logger: logger,
		out:    stdout,
	}
	return c.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

type command struct {
	ledger *services.LedgerService
	engine *reporting.Engine
	logger *log.Logger
	out    io.Writer
}

var operations = map[string]string{
	"register": log.OpRegister,
	"add":      log.OpAddExpense,
	"report":   log.OpReport,
	"top":      log.OpTopCategory,
	"stats":    log.OpStats,
}

func (c *command) dispatch(ctx context.Context, name string, args []string) error {
	if op, ok := operations[name]; ok {
		c.logger.DebugContext(ctx, "Running command", log.FieldOperation, op, "args", args)
	}

	switch name {
	case "register":
		return c.register(ctx, args)
	case "add":
		return c.add(ctx, args)
	case "report":
		return c.report(ctx, args)
	case "top":
		return c.top(ctx, args)
	case "stats":
		return c.stats(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func (c *command) register(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: register <user_id> [username]", errUsage)
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	var username string
	if len(args) == 2 {
		username = args[1]
	}
	if err := c.ledger.RegisterUser(ctx, userID, username); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "User %d registered\n", userID)
	return nil
}

func (c *command) add(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: add <user_id> <amount> <category>", errUsage)
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(args[1])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[1], err)
	}
	// categories may contain spaces
	category := strings.Join(args[2:], " ")

	e, err := c.ledger.AddExpense(ctx, userID, amount.Decimal(), category)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Recorded %s in %s (id %d)\n", e.Amount, e.Category, e.ID)
	return nil
}

func (c *command) report(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: report <user_id> <month|year>", errUsage)
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	aggs, err := c.engine.Report(ctx, userID, args[1])
	if err != nil {
		return err
	}
	c.printAggregates(aggs, fmt.Sprintf("No expenses for %s", args[1]))
	return nil
}

func (c *command) top(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: top <user_id>", errUsage)
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	top, ok, err := c.engine.TopCategory(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "No expenses")
		return nil
	}
	fmt.Fprintf(c.out, "%s\t%s\n", top.Category, top.Total)
	return nil
}

func (c *command) stats(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: stats <user_id> <month|year> [category]", errUsage)
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return err
	}
	category := strings.Join(args[2:], " ")
	aggs, err := c.engine.Stats(ctx, userID, args[1], category)
	if err != nil {
		return err
	}
	c.printAggregates(aggs, fmt.Sprintf("No data for %s", args[1]))
	return nil
}

func (c *command) printAggregates(aggs []core.Aggregate, empty string) {
	if len(aggs) == 0 {
		fmt.Fprintln(c.out, empty)
		return
	}
	for _, a := range aggs {
		fmt.Fprintf(c.out, "%s\t%s\n", a.Category, a.Total)
	}
	fmt.Fprintf(c.out, "TOTAL\t%s\n", core.Sum(aggs))
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: user id %q is not a number", errUsage, s)
	}
	return id, nil
}
