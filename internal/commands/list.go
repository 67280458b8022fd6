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
	"triage/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	status   string
	priority string
}

// SetFilter sets the status and priority filters (for testing).
func (c *ListCmd) SetFilter(status, priority string) {
	c.status = status
	c.priority = priority
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "triage list [--status <status>] [--priority P0-P3]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	var (
		status   task.Status
		priority task.Priority
		err      error
	)
	if c.status != "" {
		if status, err = task.ParseStatus(c.status); err != nil {
			return ReportError(errOut, &task.ValidationError{Field: "status", Value: c.status, Reason: err.Error()})
		}
	}
	if c.priority != "" {
		if priority, err = task.ParsePriority(c.priority); err != nil {
			return ReportError(errOut, &task.ValidationError{Field: "priority", Value: c.priority, Reason: err.Error()})
		}
	}

	var tasks []task.Task
	for _, t := range st.Tasks() {
		if status != "" && t.Status != status {
			continue
		}
		if priority != "" && t.Priority != priority {
			continue
		}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatTable(out, tasks)
	return exitcode.Success
}
