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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task done" }
func (c *DoneCmd) Usage() string     { return "triage done <id>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	done := string(task.StatusDone)
	t, err := st.Update(ctx, id, task.Changes{Status: &done})
	if err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "done #%d: %s\n", t.ID, t.Title)
	}
	return exitcode.Success
}
