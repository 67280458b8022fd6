package commands

import (
	"errors"
	"fmt"
	"io"

	"triage/internal/exitcode"
	"triage/internal/task"
)

// ReportError prints err as a one-line message and returns the matching exit code.
func ReportError(errOut io.Writer, err error) int {
	var (
		validation *task.ValidationError
		notFound   *task.NotFoundError
		parse      *task.ParseError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &notFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &parse):
		fmt.Fprintf(errOut, "error: corrupt store: %v\n", err)
		return exitcode.StoreError
	default:
		fmt.Fprintf(errOut, "error: store error: %v\n", err)
		return exitcode.StoreError
	}
}
