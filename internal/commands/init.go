package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"triage/internal/config"
	"triage/internal/exitcode"
	"triage/internal/store"
)

func init() {
	Register(&InitCmd{})
}

// InitCmd implements the init command.
type InitCmd struct{}

func (c *InitCmd) Name() string      { return "init" }
func (c *InitCmd) Aliases() []string { return nil }
func (c *InitCmd) Synopsis() string  { return "Create an empty task store" }
func (c *InitCmd) Usage() string     { return "triage init" }
func (c *InitCmd) NeedsStore() bool  { return false }

func (c *InitCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *InitCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	created, err := st.Init(ctx)
	if err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		if created {
			fmt.Fprintf(out, "initialized: %s\n", cfg.StorePath)
		} else {
			fmt.Fprintf(out, "already initialized: %s\n", cfg.StorePath)
		}
	}
	return exitcode.Success
}
