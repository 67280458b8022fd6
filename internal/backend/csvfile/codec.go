package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"triage/internal/task"
)

// Column names, in the order they are written.
const (
	ColID        = "id"
	ColTitle     = "title"
	ColPriority  = "priority"
	ColStatus    = "status"
	ColDue       = "due"
	ColOwner     = "owner"
	ColWaitingOn = "waiting_on"
	ColFollowUp  = "follow_up_date"
	ColCreatedAt = "created_at"
	ColNotes     = "notes"
)

// Columns is the header written on every save.
var Columns = []string{
	ColID, ColTitle, ColPriority, ColStatus, ColDue,
	ColOwner, ColWaitingOn, ColFollowUp, ColCreatedAt, ColNotes,
}

// requiredColumns must be present in any header.
var requiredColumns = []string{ColID, ColTitle, ColPriority, ColStatus}

// columnAliases maps older header names to current ones.
var columnAliases = map[string]string{
	"due_date":     ColDue,
	"created_date": ColCreatedAt,
	"person":       ColOwner,
}

// columnIndex maps a column name to its position in the file.
type columnIndex map[string]int

func (ix columnIndex) value(rec []string, col string) string {
	i, ok := ix[col]
	if !ok {
		return ""
	}
	return rec[i]
}

// fieldError is a bad value in one column of a record.
type fieldError struct {
	column string
	err    error
}

func (e *fieldError) Error() string { return e.column + ": " + e.err.Error() }

// decode reads a full store file. An empty input is an empty store.
func decode(r io.Reader, path string) ([]task.Task, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, csvError(path, err)
	}

	index, err := parseHeader(header)
	if err != nil {
		return nil, &task.ParseError{Path: path, Line: 1, Err: err}
	}

	var tasks []task.Task
	firstSeen := make(map[int]int) // id -> line
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(path, err)
		}
		line, _ := cr.FieldPos(0)

		t, err := decodeRecord(rec, index)
		if err != nil {
			var fe *fieldError
			if errors.As(err, &fe) {
				return nil, &task.ParseError{Path: path, Line: line, Column: fe.column, Err: fe.err}
			}
			return nil, &task.ParseError{Path: path, Line: line, Err: err}
		}
		if prev, ok := firstSeen[t.ID]; ok {
			return nil, &task.ParseError{
				Path:   path,
				Line:   line,
				Column: ColID,
				Err:    fmt.Errorf("duplicate id %d (first used on line %d)", t.ID, prev),
			}
		}
		firstSeen[t.ID] = line
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &task.ParseError{Path: path, Line: pe.StartLine, Err: pe.Err}
	}
	return &task.ParseError{Path: path, Err: err}
}

// parseHeader resolves column names to positions. Columns may appear in any
// order; unknown and repeated columns are rejected so a later save never
// drops data.
func parseHeader(header []string) (columnIndex, error) {
	known := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		known[c] = true
	}

	index := make(columnIndex, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown column %q", raw)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", raw)
		}
		index[name] = i
	}

	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}
	return index, nil
}

func decodeRecord(rec []string, index columnIndex) (task.Task, error) {
	var t task.Task

	rawID := strings.TrimSpace(index.value(rec, ColID))
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		return t, &fieldError{ColID, fmt.Errorf("invalid id %q: must be a positive integer", rawID)}
	}
	t.ID = id

	t.Title = index.value(rec, ColTitle)

	rawPriority := index.value(rec, ColPriority)
	if t.Priority, err = task.ParsePriority(rawPriority); err != nil {
		return t, &fieldError{ColPriority, fmt.Errorf("invalid priority %q: %w", rawPriority, err)}
	}

	t.Status = task.StatusOpen
	if rawStatus := index.value(rec, ColStatus); strings.TrimSpace(rawStatus) != "" {
		if t.Status, err = task.ParseStatus(rawStatus); err != nil {
			return t, &fieldError{ColStatus, fmt.Errorf("invalid status %q: %w", rawStatus, err)}
		}
	}

	for _, df := range []struct {
		col string
		dst *task.Date
	}{
		{ColDue, &t.Due},
		{ColFollowUp, &t.FollowUp},
	} {
		raw := index.value(rec, df.col)
		if *df.dst, err = task.ParseDate(raw); err != nil {
			return t, &fieldError{df.col, fmt.Errorf("invalid date %q: %w", raw, err)}
		}
	}

	rawCreated := index.value(rec, ColCreatedAt)
	if t.CreatedAt, err = parseTimestamp(rawCreated); err != nil {
		return t, &fieldError{ColCreatedAt, fmt.Errorf("invalid timestamp %q: %w", rawCreated, err)}
	}

	t.Owner = index.value(rec, ColOwner)
	t.WaitingOn = index.value(rec, ColWaitingOn)
	t.Notes = index.value(rec, ColNotes)

	if err := t.Validate(); err != nil {
		var ve *task.ValidationError
		if errors.As(err, &ve) {
			return t, &fieldError{ve.Field, err}
		}
		return t, err
	}
	return t, nil
}

// parseTimestamp accepts RFC 3339, or a bare date as older files stored it.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(task.DateLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp or YYYY-MM-DD")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// encode writes the header and one record per task.
func encode(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, t := range tasks {
		rec := []string{
			strconv.Itoa(t.ID),
			t.Title,
			string(t.Priority),
			string(t.Status),
			t.Due.String(),
			t.Owner,
			t.WaitingOn,
			t.FollowUp.String(),
			formatTimestamp(t.CreatedAt),
			t.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
