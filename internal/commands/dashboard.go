package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"triage/internal/config"
	"triage/internal/exitcode"
	"triage/internal/output"
	"triage/internal/store"
	"triage/internal/view"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd implements the dashboard command.
// Also runs when triage is invoked without a command.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"dash"} }
func (c *DashboardCmd) Synopsis() string  { return "Show today, waiting, upcoming and backlog" }
func (c *DashboardCmd) Usage() string     { return "triage dashboard" }
func (c *DashboardCmd) NeedsStore() bool  { return true }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	output.FormatDashboard(out, view.Build(st.Tasks(), cfg.Today()))
	return exitcode.Success
}
