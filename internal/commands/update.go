package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"triage/internal/config"
	"triage/internal/exitcode"
	"triage/internal/store"
	"triage/internal/task"
)

func init() {
	Register(&UpdateCmd{})
}

// UpdateCmd implements the update command.
// Only flags given on the command line change the task; an empty value
// clears the field.
type UpdateCmd struct {
	changes task.Changes
}

// SetChanges sets the flag values (for testing).
func (c *UpdateCmd) SetChanges(ch task.Changes) {
	c.changes = ch
}

func (c *UpdateCmd) Name() string      { return "update" }
func (c *UpdateCmd) Aliases() []string { return []string{"edit"} }
func (c *UpdateCmd) Synopsis() string  { return "Change fields of a task" }
func (c *UpdateCmd) Usage() string {
	return "triage update <id> [--title <title>] [--priority P0-P3] [--due YYYY-MM-DD] [--person <name>] [--status <status>] [--waiting-on <name>] [--follow-up YYYY-MM-DD] [--notes <text>]"
}
func (c *UpdateCmd) NeedsStore() bool { return true }

func (c *UpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.changes = task.Changes{}
	fs.Func("title", "", setField(&c.changes.Title))
	fs.Func("priority", "", setField(&c.changes.Priority))
	fs.Func("p", "", setField(&c.changes.Priority))
	fs.Func("due", "", setField(&c.changes.Due))
	fs.Func("person", "", setField(&c.changes.Owner))
	fs.Func("owner", "", setField(&c.changes.Owner))
	fs.Func("status", "", setField(&c.changes.Status))
	fs.Func("waiting-on", "", setField(&c.changes.WaitingOn))
	fs.Func("follow-up", "", setField(&c.changes.FollowUp))
	fs.Func("notes", "", setField(&c.changes.Notes))
}

func (c *UpdateCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if c.changes.IsEmpty() {
		fmt.Fprintln(errOut, "error: no changes given")
		return exitcode.UserError
	}

	if _, err := st.Update(ctx, id, c.changes); err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "updated #%d\n", id)
	}
	return exitcode.Success
}

// setField records that a flag was given, even with an empty value.
func setField(dst **string) func(string) error {
	return func(v string) error {
		*dst = &v
		return nil
	}
}
