// Package view computes the dashboard views over an in-memory task collection.
//
// Every function here is pure: it takes the tasks and the reference date
// explicitly, never reads the clock, and never modifies its input.
package view

import (
	"cmp"
	"slices"

	"triage/internal/task"
)

// TodayGroup classifies a task in the today view.
type TodayGroup int

const (
	GroupOverdue TodayGroup = iota
	GroupDueToday
	GroupUrgent
)

func (g TodayGroup) String() string {
	switch g {
	case GroupOverdue:
		return "overdue"
	case GroupDueToday:
		return "due today"
	case GroupUrgent:
		return "urgent"
	}
	return "unknown"
}

// Classify reports which today-view group t falls in, if any.
// Overdue takes precedence over the P0 rule.
func Classify(t task.Task, today task.Date) (TodayGroup, bool) {
	switch {
	case !t.Active():
		return 0, false
	case t.Overdue(today):
		return GroupOverdue, true
	case t.DueOn(today):
		return GroupDueToday, true
	case t.Priority == task.P0:
		return GroupUrgent, true
	}
	return 0, false
}

// Today returns the active tasks that are overdue, due today, or P0.
// Overdue tasks come first (oldest due date first), then tasks due today,
// then the remaining P0 tasks; within a group by priority, then id.
func Today(tasks []task.Task, today task.Date) []task.Task {
	type entry struct {
		t     task.Task
		group TodayGroup
	}
	var entries []entry
	for _, t := range tasks {
		if g, ok := Classify(t, today); ok {
			entries = append(entries, entry{t, g})
		}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.group, b.group); c != 0 {
			return c
		}
		if a.group == GroupOverdue {
			if c := a.t.Due.Compare(b.t.Due); c != 0 {
				return c
			}
		}
		return byPriorityThenID(a.t, b.t)
	})

	out := make([]task.Task, len(entries))
	for i, e := range entries {
		out[i] = e.t
	}
	return out
}

// Waiting returns active tasks blocked on someone else or whose follow-up
// date has been reached, sorted by follow-up date (unset last), then id.
// Overdue tasks are left out: they are already on the today view.
func Waiting(tasks []task.Task, today task.Date) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if !t.Active() || t.Overdue(today) {
			continue
		}
		if t.Status == task.StatusWaiting || t.FollowUpDue(today) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b task.Task) int {
		switch {
		case a.FollowUp.IsZero() && !b.FollowUp.IsZero():
			return 1
		case !a.FollowUp.IsZero() && b.FollowUp.IsZero():
			return -1
		}
		if c := a.FollowUp.Compare(b.FollowUp); c != 0 {
			return c
		}
		return task.CompareIDs(a, b)
	})
	return out
}

// Backlog returns open tasks with no due date that are not P0, sorted by
// priority, then creation time, then id.
func Backlog(tasks []task.Task) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.Status == task.StatusOpen && t.Due.IsZero() && t.Priority != task.P0 {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b task.Task) int {
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return task.CompareIDs(a, b)
	})
	return out
}

// Upcoming returns active, non-P0 tasks due after today, soonest first,
// then by priority and id.
func Upcoming(tasks []task.Task, today task.Date) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.Active() && t.Priority != task.P0 && !t.Due.IsZero() && t.Due.After(today) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b task.Task) int {
		if c := a.Due.Compare(b.Due); c != 0 {
			return c
		}
		return byPriorityThenID(a, b)
	})
	return out
}

func byPriorityThenID(a, b task.Task) int {
	if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
		return c
	}
	return task.CompareIDs(a, b)
}
