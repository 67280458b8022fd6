package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"triage/internal/config"
	"triage/internal/exitcode"
	"triage/internal/store"
	"triage/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	draft task.Draft
}

// SetDraft sets the flag values (for testing).
func (c *AddCmd) SetDraft(d task.Draft) {
	c.draft = d
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Add a task" }
func (c *AddCmd) Usage() string {
	return "triage add --title <title> [--priority P0-P3] [--due YYYY-MM-DD] [--person <name>] [--waiting-on <name>] [--follow-up YYYY-MM-DD] [--status <status>] [--notes <text>]"
}
func (c *AddCmd) NeedsStore() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.draft.Title, "title", "", "")
	fs.StringVar(&c.draft.Priority, "priority", "", "")
	fs.StringVar(&c.draft.Priority, "p", "", "")
	fs.StringVar(&c.draft.Due, "due", "", "")
	fs.StringVar(&c.draft.Owner, "person", "", "")
	fs.StringVar(&c.draft.Owner, "owner", "", "")
	fs.StringVar(&c.draft.WaitingOn, "waiting-on", "", "")
	fs.StringVar(&c.draft.FollowUp, "follow-up", "", "")
	fs.StringVar(&c.draft.Status, "status", "", "")
	fs.StringVar(&c.draft.Notes, "notes", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	d := c.draft

	// Positional words form the title when --title is absent
	if len(args) > 0 {
		if d.Title != "" {
			fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
			return exitcode.UserError
		}
		d.Title = strings.Join(args, " ")
	}
	if strings.TrimSpace(d.Title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	t, err := st.Add(ctx, d)
	if err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "added #%d: %s\n", t.ID, t.Title)
	}
	return exitcode.Success
}
