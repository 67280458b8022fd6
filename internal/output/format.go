// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"triage/internal/task"
	"triage/internal/view"
)

const (
	// DashboardRule frames the dashboard title.
	DashboardRule = "==="

	// emptySection is printed for a section with no tasks.
	emptySection = "  (none)"
)

// FormatTask formats a single task line: "#{ID} [{PRI}] {TITLE}".
func FormatTask(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "#%d [%s] %s\n", t.ID, t.Priority, normalizeTitle(t.Title))
}

// FormatTable formats tasks as the list table.
func FormatTable(w io.Writer, tasks []task.Task) {
	fmt.Fprintln(w, "  ID | Pri | Status  | Due        | Title")
	fmt.Fprintln(w, "-----|-----|---------|------------|------")
	for _, t := range tasks {
		due := t.Due.String()
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%4d | %-3s | %-7s | %-10s | %s\n", t.ID, t.Priority, t.Status, due, normalizeTitle(t.Title))
	}
}

// FormatDashboard formats the summary counts followed by every section.
func FormatDashboard(w io.Writer, d view.Dashboard) {
	fmt.Fprintf(w, "%s DASHBOARD %s %s\n", DashboardRule, d.Today, DashboardRule)
	s := d.Summary
	fmt.Fprintf(w, "Open: %d  Urgent: %d  Due today: %d  Overdue: %d  Waiting: %d\n",
		s.Open, s.Urgent, s.DueToday, s.Overdue, s.Waiting)

	section(w, "Today (overdue, due today, urgent)", d.Focus, func(t task.Task) string {
		return focusNote(t, d.Today)
	})
	section(w, "Waiting on", d.Waiting, waitingNote)
	section(w, "Upcoming", d.Upcoming, func(t task.Task) string {
		return fmt.Sprintf(" (due %s)", t.Due)
	})
	section(w, "Backlog", d.Backlog, func(task.Task) string { return "" })
}

func section(w io.Writer, title string, tasks []task.Task, note func(task.Task) string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", title)
	if len(tasks) == 0 {
		fmt.Fprintln(w, emptySection)
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "  #%d [%s] %s%s\n", t.ID, t.Priority, normalizeTitle(t.Title), note(t))
	}
}

func focusNote(t task.Task, today task.Date) string {
	g, _ := view.Classify(t, today)
	switch {
	case g == view.GroupOverdue:
		return fmt.Sprintf(" (overdue, due %s)", t.Due)
	case g == view.GroupDueToday:
		return " (due today)"
	case !t.Due.IsZero():
		return fmt.Sprintf(" (urgent, due %s)", t.Due)
	}
	return " (urgent)"
}

func waitingNote(t task.Task) string {
	var b strings.Builder
	switch {
	case t.WaitingOn != "":
		fmt.Fprintf(&b, " -> waiting on %s", normalizeTitle(t.WaitingOn))
	case t.Owner != "":
		fmt.Fprintf(&b, " -> follow up with %s", normalizeTitle(t.Owner))
	}
	if !t.FollowUp.IsZero() {
		fmt.Fprintf(&b, " (follow up %s)", t.FollowUp)
	}
	return b.String()
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
