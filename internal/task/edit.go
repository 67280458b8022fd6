package task

import (
	"strings"
	"time"
)

// Draft holds the fields of a task being added, as typed by the user.
// Empty strings mean "not given".
type Draft struct {
	Title     string
	Priority  string
	Status    string
	Due       string
	Owner     string
	WaitingOn string
	FollowUp  string
	Notes     string
}

// Defaults supplies values for fields a Draft leaves empty.
type Defaults struct {
	Priority Priority
	Owner    string
}

// Build validates the draft and returns the new task with the given id and
// creation time. Any failure is a *ValidationError.
func (d Draft) Build(id int, createdAt time.Time, def Defaults) (Task, error) {
	t := Task{
		ID:        id,
		Priority:  def.Priority,
		Status:    StatusOpen,
		Owner:     normalizeText(def.Owner),
		CreatedAt: createdAt,
	}
	if !t.Priority.Valid() {
		t.Priority = DefaultPriority
	}

	t.Title = normalizeText(d.Title)
	if t.Title == "" {
		return Task{}, &ValidationError{Field: "title", Reason: "required"}
	}

	if d.Priority != "" {
		p, err := ParsePriority(d.Priority)
		if err != nil {
			return Task{}, &ValidationError{Field: "priority", Value: d.Priority, Reason: err.Error()}
		}
		t.Priority = p
	}

	var err error
	if t.Due, err = parseDateField("due", d.Due); err != nil {
		return Task{}, err
	}
	if t.FollowUp, err = parseDateField("follow_up_date", d.FollowUp); err != nil {
		return Task{}, err
	}

	if owner := normalizeText(d.Owner); owner != "" {
		t.Owner = owner
	}
	t.WaitingOn = normalizeText(d.WaitingOn)
	t.Notes = normalizeText(d.Notes)

	if d.Status != "" {
		st, err := ParseStatus(d.Status)
		if err != nil {
			return Task{}, &ValidationError{Field: "status", Value: d.Status, Reason: err.Error()}
		}
		t.Status = st
	} else if t.WaitingOn != "" {
		t.Status = StatusWaiting
	}

	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Changes holds the fields an update sets. A nil field is left unchanged;
// a pointer to "" clears an optional field.
type Changes struct {
	Title     *string
	Priority  *string
	Status    *string
	Due       *string
	Owner     *string
	WaitingOn *string
	FollowUp  *string
	Notes     *string
}

// IsEmpty reports whether no field is set.
func (c Changes) IsEmpty() bool {
	return c.Title == nil && c.Priority == nil && c.Status == nil && c.Due == nil &&
		c.Owner == nil && c.WaitingOn == nil && c.FollowUp == nil && c.Notes == nil
}

// Apply returns t with the changes applied. Validation matches Draft.Build;
// any failure is a *ValidationError and t is not modified.
func (c Changes) Apply(t Task) (Task, error) {
	if c.Title != nil {
		title := normalizeText(*c.Title)
		if title == "" {
			return Task{}, &ValidationError{Field: "title", Reason: "required"}
		}
		t.Title = title
	}
	if c.Priority != nil {
		p, err := ParsePriority(*c.Priority)
		if err != nil {
			return Task{}, &ValidationError{Field: "priority", Value: *c.Priority, Reason: err.Error()}
		}
		t.Priority = p
	}

	var err error
	if c.Due != nil {
		if t.Due, err = parseDateField("due", *c.Due); err != nil {
			return Task{}, err
		}
	}
	if c.FollowUp != nil {
		if t.FollowUp, err = parseDateField("follow_up_date", *c.FollowUp); err != nil {
			return Task{}, err
		}
	}
	if c.Owner != nil {
		t.Owner = normalizeText(*c.Owner)
	}
	if c.Notes != nil {
		t.Notes = normalizeText(*c.Notes)
	}
	if c.WaitingOn != nil {
		t.WaitingOn = normalizeText(*c.WaitingOn)
	}

	switch {
	case c.Status != nil:
		st, err := ParseStatus(*c.Status)
		if err != nil {
			return Task{}, &ValidationError{Field: "status", Value: *c.Status, Reason: err.Error()}
		}
		t.Status = st
	case c.WaitingOn != nil && t.WaitingOn != "" && t.Status == StatusOpen:
		t.Status = StatusWaiting
	case c.WaitingOn != nil && t.WaitingOn == "" && t.Status == StatusWaiting:
		t.Status = StatusOpen
	}

	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

func parseDateField(field, value string) (Date, error) {
	d, err := ParseDate(value)
	if err != nil {
		return Date{}, &ValidationError{Field: field, Value: value, Reason: err.Error()}
	}
	return d, nil
}

// normalizeText trims surrounding whitespace and folds CRLF line breaks to LF.
func normalizeText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}
