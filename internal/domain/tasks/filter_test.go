package tasks

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

func sampleTasks() []*models.Task {
	return []*models.Task{
		{ID: 1, Title: "Send Invoice", Status: models.StatusAssigned, Priority: models.PriorityHigh, AssignerID: 1, AssigneeID: 2},
		{ID: 2, Title: "Fix bug", Description: "blocked by INVOICE service", Status: models.StatusCompleted, Priority: models.PriorityLow, AssignerID: 2, AssigneeID: 1},
		{ID: 3, Title: "Write docs", Status: models.StatusCompleted, Priority: models.PriorityHigh, AssignerID: 1, AssigneeID: 1},
		{ID: 12, Title: "Deploy", Description: "after #3", Status: models.StatusInProgress, Priority: models.PriorityMedium, AssignerID: 3, AssigneeID: 3},
	}
}

func matchIDs(f Filter, tasks []*models.Task) []int64 {
	var ids []int64
	for _, task := range tasks {
		if f.Match(task) {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

func TestFilterMatch(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"empty", Filter{}, []int64{1, 2, 3, 12}},
		{"status", Filter{Status: models.StatusCompleted}, []int64{2, 3}},
		{"priority", Filter{Priority: models.PriorityHigh}, []int64{1, 3}},
		{"search title or description", Filter{Search: "invoice"}, []int64{1, 2}},
		{"search and status", Filter{Search: "invoice", Status: models.StatusCompleted}, []int64{2}},
		{"status and priority", Filter{Status: models.StatusCompleted, Priority: models.PriorityHigh}, []int64{3}},
		{"ticket id", Filter{Search: "#12"}, []int64{12}},
		{"ticket id also matches text", Filter{Search: "#3"}, []int64{3, 12}},
		{"no match", Filter{Search: "nothing"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchIDs(tt.filter, tasks); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("matched %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("  invoice ", "Completed", "")
	if err != nil {
		t.Fatalf("ParseFilter() error = %v", err)
	}
	want := Filter{Search: "invoice", Status: models.StatusCompleted}
	if f != want {
		t.Errorf("ParseFilter() = %+v, want %+v", f, want)
	}

	if _, err := ParseFilter("", "completed", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("lowercase status error = %v, want ErrInvalidInput", err)
	}
	if _, err := ParseFilter("", "", "Urgent"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown priority error = %v, want ErrInvalidInput", err)
	}
}

func TestFilterWhere(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		sql    string
		args   []any
	}{
		{"empty", Filter{}, "", nil},
		{
			"status and priority",
			Filter{Status: models.StatusAssigned, Priority: models.PriorityLow},
			"t.status = $1 AND t.priority = $2",
			[]any{"Assigned", "Low"},
		},
		{
			"search escapes wildcards",
			Filter{Search: `50%_off\`},
			"(t.title ILIKE $1 OR t.description ILIKE $1)",
			[]any{`%50\%\_off\\%`},
		},
		{
			"ticket id",
			Filter{Search: "#7", Status: models.StatusCompleted},
			"t.status = $1 AND (t.title ILIKE $2 OR t.description ILIKE $2 OR t.id = $3)",
			[]any{"Completed", "%#7%", int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.Where()
			if sql != tt.sql {
				t.Errorf("Where() sql = %q, want %q", sql, tt.sql)
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("Where() args = %#v, want %#v", args, tt.args)
			}
		})
	}
}

// Search text is literal in both renditions: LIKE wildcards in the term
// are escaped for Postgres and never special in memory.
func TestFilterMatchAgreesWithWhereOnWildcards(t *testing.T) {
	f := Filter{Search: "50%_off"}
	tasks := []*models.Task{
		{ID: 1, Title: "Apply 50%_off coupon"},
		{ID: 2, Title: "Apply 50 percent off coupon"},
		{ID: 3, Title: "Apply 50%xoff coupon"},
	}
	if got := matchIDs(f, tasks); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("Match ids = %v, want [1]", got)
	}

	_, args := f.Where()
	if want := []any{`%50\%\_off%`}; !reflect.DeepEqual(args, want) {
		t.Errorf("Where args = %v, want %v", args, want)
	}
}

func TestPartition(t *testing.T) {
	assigned, created := Partition(sampleTasks(), 1)

	var assignedIDs, createdIDs []int64
	for _, task := range assigned {
		assignedIDs = append(assignedIDs, task.ID)
	}
	for _, task := range created {
		createdIDs = append(createdIDs, task.ID)
	}

	if want := []int64{2, 3}; !reflect.DeepEqual(assignedIDs, want) {
		t.Errorf("assigned = %v, want %v", assignedIDs, want)
	}
	if want := []int64{1, 3}; !reflect.DeepEqual(createdIDs, want) {
		t.Errorf("created = %v, want %v", createdIDs, want)
	}

	if got := Project(ViewAll, sampleTasks(), 1); len(got) != 4 {
		t.Errorf("Project(all) returned %d tasks", len(got))
	}
	if _, err := ParseView("mine"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseView() error = %v, want ErrInvalidInput", err)
	}
}

func drawTask(rt *rapid.T, id int64) *models.Task {
	words := []string{"invoice", "Invoice", "bug", "docs", "deploy", ""}
	return &models.Task{
		ID:          id,
		Title:       rapid.SampledFrom(words).Draw(rt, "title"),
		Description: rapid.SampledFrom(words).Draw(rt, "description"),
		Status:      rapid.SampledFrom(statuses).Draw(rt, "status"),
		Priority:    rapid.SampledFrom(priorities).Draw(rt, "priority"),
	}
}

// TestPropertyFilterComposesByAnd verifies that a combined filter matches
// exactly the tasks matched by each of its single-field parts.
func TestPropertyFilterComposesByAnd(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := drawTask(rt, rapid.Int64Range(1, 100).Draw(rt, "id"))
		f := Filter{
			Search:   rapid.SampledFrom([]string{"", "invoice", "BUG", "o"}).Draw(rt, "search"),
			Status:   rapid.SampledFrom(append([]models.TaskStatus{""}, statuses...)).Draw(rt, "filter_status"),
			Priority: rapid.SampledFrom(append([]models.TaskPriority{""}, priorities...)).Draw(rt, "filter_priority"),
		}

		parts := Filter{Search: f.Search}.Match(task) &&
			Filter{Status: f.Status}.Match(task) &&
			Filter{Priority: f.Priority}.Match(task)
		if f.Match(task) != parts {
			rt.Fatalf("filter %+v on %+v: combined = %v, parts = %v", f, task, f.Match(task), parts)
		}
	})
}

// TestPropertyStatusFilterIsExact verifies that a status filter only ever
// admits tasks with exactly that status.
func TestPropertyStatusFilterIsExact(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := rapid.SampledFrom(statuses).Draw(rt, "filter_status")
		task := drawTask(rt, 1)

		if (Filter{Status: status}).Match(task) != (task.Status == status) {
			rt.Fatalf("status %q matched task with status %q", status, task.Status)
		}
	})
}
