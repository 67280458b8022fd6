package view

import "triage/internal/task"

// Summary holds the headline counts shown above the dashboard sections.
type Summary struct {
	Open     int // every task that is not done
	Urgent   int // active P0 tasks
	DueToday int
	Overdue  int
	Waiting  int // tasks with status waiting
}

// Dashboard is the full report for one reference date. It is derived from
// the store on every invocation and never persisted.
type Dashboard struct {
	Today    task.Date
	Summary  Summary
	Focus    []task.Task // overdue, due today, urgent
	Waiting  []task.Task
	Upcoming []task.Task
	Backlog  []task.Task
}

// Build composes all views for the given reference date.
func Build(tasks []task.Task, today task.Date) Dashboard {
	return Dashboard{
		Today:    today,
		Summary:  Summarize(tasks, today),
		Focus:    Today(tasks, today),
		Waiting:  Waiting(tasks, today),
		Upcoming: Upcoming(tasks, today),
		Backlog:  Backlog(tasks),
	}
}

// Summarize counts active tasks by category. A task may count in several.
func Summarize(tasks []task.Task, today task.Date) Summary {
	var s Summary
	for _, t := range tasks {
		if !t.Active() {
			continue
		}
		s.Open++
		if t.Priority == task.P0 {
			s.Urgent++
		}
		if t.DueOn(today) {
			s.DueToday++
		}
		if t.Overdue(today) {
			s.Overdue++
		}
		if t.Status == task.StatusWaiting {
			s.Waiting++
		}
	}
	return s
}
