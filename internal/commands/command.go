// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"triage/internal/config"
	"triage/internal/store"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command works on the task collection.
	// The dispatcher loads the store before Run for these commands, so a
	// corrupt store aborts before any command logic runs.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (paths, defaults, start time).
	// st is always provided; it is loaded only if NeedsStore() returns true.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int
}
