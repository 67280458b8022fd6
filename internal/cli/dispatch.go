// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"triage/internal/backend/csvfile"
	"triage/internal/commands"
	"triage/internal/config"
	"triage/internal/exitcode"
	"triage/internal/logging"
	"triage/internal/store"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "dashboard"

// StoreFactory creates a Store from config.
// Used to inject the backend during dispatch.
type StoreFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.Store, error)

// CSVStoreFactory opens the CSV file store at cfg.StorePath.
// New tasks are stamped with cfg.Now, the instant read at dispatch.
func CSVStoreFactory(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.Store, error) {
	now := cfg.Now
	return csvfile.New(cfg.StorePath,
		csvfile.WithClock(func() time.Time { return now }),
		csvfile.WithDefaults(cfg.Defaults()),
		csvfile.WithLogger(logger),
	), nil
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  StoreFactory
	now      func() time.Time
}

// NewDispatcher creates a new dispatcher with the given registry and store factory.
// A nil factory uses CSVStoreFactory.
func NewDispatcher(registry *commands.Registry, factory StoreFactory) *Dispatcher {
	if factory == nil {
		factory = CSVStoreFactory
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		now:      time.Now,
	}
}

// SetClock replaces the clock read once per run (for testing).
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dashboard
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var storePath string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&storePath, "store", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	positionalArgs, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(out, "usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		return reportFlagError(errOut, err)
	}

	// Create config
	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.SetStorePath(storePath)
	cfg.Quiet = quiet
	cfg.Debug = debug
	cfg.Now = d.now()

	logger := logging.New(errOut, logging.Options{Debug: debug, Quiet: quiet})
	logger.Debug("dispatch", "command", cmd.Name(), "store", cfg.StorePath, "today", cfg.Today())

	st, err := d.factory(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: store error: %s\n", err)
		return exitcode.StoreError
	}

	// Load before running so a corrupt store never reaches command logic
	if cmd.NeedsStore() {
		if _, err := st.Load(ctx); err != nil {
			return commands.ReportError(errOut, err)
		}
	}

	// Run command
	return cmd.Run(ctx, cfg, st, positionalArgs, out, errOut)
}

// parseInterspersed parses flags that appear before or after positional
// arguments, as in "update 3 --priority P0". Everything after "--" is
// positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// reportFlagError prints a flag parse error in the CLI's error format.
func reportFlagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
