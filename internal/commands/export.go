package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"triage/internal/config"
	"triage/internal/exitcode"
	"triage/internal/store"
	"triage/internal/task"
)

func init() {
	Register(&ExportCmd{})
}

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export is the document written by the export command.
type Export struct {
	Tasks []task.Task `json:"tasks" yaml:"tasks"`
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
}

// SetFormat sets the output format (for testing).
func (c *ExportCmd) SetFormat(format string) {
	c.format = format
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Write all tasks as YAML or JSON" }
func (c *ExportCmd) Usage() string     { return "triage export [--format yaml|json]" }
func (c *ExportCmd) NeedsStore() bool  { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", FormatYAML, "")
	fs.StringVar(&c.format, "f", FormatYAML, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, st store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	doc := Export{Tasks: st.Tasks()}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	var err error
	switch strings.ToLower(c.format) {
	case FormatYAML, "":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	default:
		fmt.Fprintf(errOut, "error: unknown format: %s\n", c.format)
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: export: %v\n", err)
		return exitcode.StoreError
	}
	return exitcode.Success
}
