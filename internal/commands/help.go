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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "triage help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  triage                                      Show the dashboard
  triage init [common flags]
  triage add [common flags] --title <title> [task flags]
  triage update [common flags] <id> [task flags]
  triage done [common flags] <id>
  triage list [common flags] [--status <status>] [--priority P0-P3]
  triage dashboard [common flags]
  triage export [common flags] [--format yaml|json]
  triage help
  triage version

Task flags:
  --title <title>            What needs doing
  --priority P0-P3           P0 is most urgent (default P2)
  --due YYYY-MM-DD           Due date
  --person <name>            Who acts next (alias --owner)
  --status <status>          open, waiting or done
  --waiting-on <name>        Party being waited on; implies waiting
  --follow-up YYYY-MM-DD     When to chase
  --notes <text>             Free text
  With update, an empty value clears the field.

Common flags:
  --config <dir>   Override config directory
  --store <path>   Override task store file
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
