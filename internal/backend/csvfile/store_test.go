package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"triage/internal/task"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasks.csv")
	return New(path, WithClock(func() time.Time { return testNow })), path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	drafts := []task.Draft{
		{Title: "Plain task", Priority: "P1", Due: "2026-10-19"},
		{Title: `Call "Bob", re: budget`, Priority: "P0", Owner: "Bob, Jr."},
		{Title: "Multi\nline\ntitle", Notes: "first line\nsecond, with comma"},
		{Title: "Waiting task", WaitingOn: "Legal \"team\"", FollowUp: "2026-10-18"},
		{Title: "Finished", Status: "done", Due: "2026-01-01"},
	}
	for _, d := range drafts {
		if _, err := s.Add(ctx, d); err != nil {
			t.Fatalf("Add(%q): %v", d.Title, err)
		}
	}
	want := s.Tasks()

	reopened := New(path)
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}

	// A second save of the loaded collection writes identical bytes.
	before := readFile(t, path)
	if err := reopened.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if after := readFile(t, path); !bytes.Equal(before, after) {
		t.Errorf("save after load changed the file\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestEncodeDecodeQuoting(t *testing.T) {
	tasks := []task.Task{
		{
			ID:        7,
			Title:     `He said "ship it", then left`,
			Priority:  task.P3,
			Status:    task.StatusWaiting,
			WaitingOn: "a,b",
			Due:       task.NewDate(2026, time.March, 4),
			CreatedAt: testNow,
			Notes:     "line one\n\"quoted\" line two",
		},
	}

	var buf bytes.Buffer
	if err := encode(&buf, tasks); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"He said ""ship it"", then left"`) {
		t.Errorf("expected doubled quotes in output, got:\n%s", buf.String())
	}

	got, err := decode(&buf, "tasks.csv")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("got %+v, want %+v", got, tasks)
	}
}

func TestLoadColumnsByName(t *testing.T) {
	s, path := newTestStore(t)
	writeFile(t, path, strings.Join([]string{
		"status,person,title,due_date,id,priority,created_date",
		"open,Ana,Write report,2026-10-20,4,p1,2026-10-01",
		"waiting,,Chase invoice,,9,P2,",
	}, "\n")+"\n")

	// The second row has no waiting_on column at all, so waiting is invalid.
	_, err := s.Load(context.Background())
	var pe *task.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Line != 3 || pe.Column != ColWaitingOn {
		t.Errorf("expected line 3 column waiting_on, got line %d column %q", pe.Line, pe.Column)
	}

	writeFile(t, path, strings.Join([]string{
		"status,person,title,due_date,id,priority,created_date,waiting_on",
		"open,Ana,Write report,2026-10-20,4,p1,2026-10-01,",
		"waiting,,Chase invoice,,9,P2,,Finance",
	}, "\n")+"\n")

	got, err := New(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	first := got[0]
	if first.ID != 4 || first.Title != "Write report" || first.Owner != "Ana" || first.Priority != task.P1 {
		t.Errorf("unexpected first task: %+v", first)
	}
	if first.Due != task.NewDate(2026, time.October, 20) {
		t.Errorf("due: got %v", first.Due)
	}
	if y, m, d := first.CreatedAt.Date(); y != 2026 || m != time.October || d != 1 {
		t.Errorf("created_at: got %v", first.CreatedAt)
	}
	if got[1].ID != 9 || got[1].Status != task.StatusWaiting || got[1].WaitingOn != "Finance" {
		t.Errorf("unexpected second task: %+v", got[1])
	}
}

func TestLoadParseErrors(t *testing.T) {
	const header = "id,title,priority,status,due,owner,waiting_on,follow_up_date,created_at,notes\n"
	const good = "1,Fine,P1,open,,,,,,\n"

	tests := []struct {
		name       string
		content    string
		wantLine   int
		wantColumn string
		wantMsg    string
	}{
		{"invalid priority", header + good + "2,Bad,P7,open,,,,,,\n", 3, ColPriority, "P7"},
		{"malformed due", header + good + "2,Bad,P1,open,2026-13-01,,,,,\n", 3, ColDue, "2026-13-01"},
		{"malformed follow-up", header + "1,Bad,P1,open,,,,tomorrow,,\n", 2, ColFollowUp, "tomorrow"},
		{"duplicate id", header + good + "1,Again,P2,open,,,,,,\n", 3, ColID, "duplicate id 1"},
		{"non-numeric id", header + "x1,Bad,P1,open,,,,,,\n", 2, ColID, "x1"},
		{"empty title", header + "1,  ,P1,open,,,,,,\n", 2, ColTitle, "required"},
		{"invalid status", header + "1,Bad,P1,todo,,,,,,\n", 2, ColStatus, "todo"},
		{"waiting without party", header + "1,Bad,P1,waiting,,,,,,\n", 2, ColWaitingOn, "required"},
		{"bad timestamp", header + "1,Bad,P1,open,,,,,yesterday,\n", 2, ColCreatedAt, "yesterday"},
		{"unknown column", "id,title,priority,status,colour\n", 1, "", "unknown column"},
		{"duplicate column", "id,title,priority,status,due,due_date\n", 1, "", "duplicate column"},
		{"missing column", "id,title,status\n", 1, "", "missing required column \"priority\""},
		{"field count", header + good + "2,Short,P1\n", 3, "", "wrong number of fields"},
		{"bare quote", header + good + "2,Bad \"quote\" here,P1,open,,,,,,\n", 3, "", "bare \""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path := newTestStore(t)
			writeFile(t, path, tt.content)

			_, err := s.Load(context.Background())
			var pe *task.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("line: got %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
			if pe.Column != tt.wantColumn {
				t.Errorf("column: got %q, want %q (%v)", pe.Column, tt.wantColumn, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error %q should name the file", err)
			}
		})
	}
}

func TestLoadFieldCountIsCSVError(t *testing.T) {
	s, path := newTestStore(t)
	writeFile(t, path, "id,title,priority,status\n1,a,P1,open\n2,b\n")

	_, err := s.Load(context.Background())
	if !errors.Is(err, csv.ErrFieldCount) {
		t.Errorf("expected csv.ErrFieldCount in chain, got %v", err)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, path := newTestStore(t)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tasks, got %d", len(got))
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Load must not create the file, stat err = %v", err)
	}
}

func TestLoadEmptyFileIsEmpty(t *testing.T) {
	s, path := newTestStore(t)
	writeFile(t, path, "")

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tasks, got %d", len(got))
	}
}

func TestAddAssignsUniqueIDsAcrossInvocations(t *testing.T) {
	ctx := context.Background()
	_, path := newTestStore(t)

	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		// A fresh Store per add mirrors separate CLI invocations.
		s := New(path)
		if _, err := s.Load(ctx); err != nil {
			t.Fatalf("Load: %v", err)
		}
		added, err := s.Add(ctx, task.Draft{Title: "task"})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if seen[added.ID] {
			t.Fatalf("duplicate id %d", added.ID)
		}
		seen[added.ID] = true

		if i == 1 {
			done := "done"
			if _, err := s.Update(ctx, added.ID, task.Changes{Status: &done}); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}

	tasks, err := New(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, tk := range tasks {
		if tk.ID != i+1 {
			t.Errorf("task %d: got id %d, want %d", i, tk.ID, i+1)
		}
	}
}

func TestAddDefaultsAndTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	s := New(path,
		WithClock(func() time.Time { return testNow.Add(123 * time.Millisecond) }),
		WithDefaults(task.Defaults{Priority: task.P3, Owner: "me"}),
	)

	got, err := s.Add(context.Background(), task.Draft{Title: "  Capture idea  "})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got.ID != 1 || got.Title != "Capture idea" || got.Priority != task.P3 || got.Owner != "me" || got.Status != task.StatusOpen {
		t.Errorf("unexpected task: %+v", got)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, testNow)
	}
}

func TestAddValidationErrorWritesNothing(t *testing.T) {
	s, path := newTestStore(t)

	_, err := s.Add(context.Background(), task.Draft{Title: "x", Priority: "urgent"})
	var ve *task.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "priority" {
		t.Errorf("field: got %q", ve.Field)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("store file should not exist after failed add")
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("in-memory collection should be unchanged")
	}
}

func TestUpdateNotFoundLeavesFileUnchanged(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	if _, err := s.Add(ctx, task.Draft{Title: "only"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := readFile(t, path)

	p := "P0"
	_, err := s.Update(ctx, 42, task.Changes{Priority: &p})
	var nf *task.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.ID != 42 {
		t.Errorf("NotFoundError.ID: got %d", nf.ID)
	}
	if after := readFile(t, path); !bytes.Equal(before, after) {
		t.Errorf("file changed after failed update")
	}
}

func TestUpdateValidationErrorLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	if _, err := s.Add(ctx, task.Draft{Title: "only"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := readFile(t, path)
	wantTasks := s.Tasks()

	waiting := "waiting"
	_, err := s.Update(ctx, 1, task.Changes{Status: &waiting})
	var ve *task.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !bytes.Equal(before, readFile(t, path)) {
		t.Errorf("file changed after failed update")
	}
	if !reflect.DeepEqual(s.Tasks(), wantTasks) {
		t.Errorf("in-memory collection changed after failed update")
	}
}

func TestUpdateAppliesChanges(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	if _, err := s.Add(ctx, task.Draft{Title: "Review contract", Due: "2026-10-25"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	who, follow, clear := "Legal", "2026-10-22", ""
	got, err := s.Update(ctx, 1, task.Changes{WaitingOn: &who, FollowUp: &follow, Due: &clear})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != task.StatusWaiting || got.WaitingOn != "Legal" || !got.Due.IsZero() {
		t.Errorf("unexpected task: %+v", got)
	}

	reloaded, err := New(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(reloaded[0], got) {
		t.Errorf("persisted %+v, want %+v", reloaded[0], got)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	created, err := s.Init(ctx)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !created {
		t.Error("expected first Init to create the file")
	}
	wantHeader := strings.Join(Columns, ",") + "\n"
	if got := string(readFile(t, path)); got != wantHeader {
		t.Errorf("header: got %q, want %q", got, wantHeader)
	}

	if _, err := s.Add(ctx, task.Draft{Title: "keep me"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := readFile(t, path)

	created, err = New(path).Init(ctx)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if created {
		t.Error("second Init should be a no-op")
	}
	if !bytes.Equal(before, readFile(t, path)) {
		t.Error("second Init changed the file")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Add(ctx, task.Draft{Title: "t"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "tasks.csv" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only tasks.csv, got %v", names)
	}
}

func TestSaveFailureKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)
	if _, err := s.Add(ctx, task.Draft{Title: "original"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := readFile(t, path)

	// Replacing the store path with a non-empty directory makes the rename fail.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.MkdirAll(filepath.Join(blocked, "child"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	bad := New(blocked)
	bad.loaded = true
	bad.tasks = s.Tasks()
	if err := bad.Save(ctx); err == nil {
		t.Fatal("expected save onto a directory to fail")
	}
	entries, _ := os.ReadDir(filepath.Dir(blocked))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}

	if !bytes.Equal(before, readFile(t, path)) {
		t.Error("unrelated store changed")
	}
}

func TestCanceledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load: expected context.Canceled, got %v", err)
	}
	if _, err := s.Add(ctx, task.Draft{Title: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Add: expected context.Canceled, got %v", err)
	}
}
