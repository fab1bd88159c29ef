package tasks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var ticketPattern = regexp.MustCompile(`^#(\d+)$`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter restricts a task listing. Zero-valued fields impose no restriction
// and the non-empty ones compose by logical AND.
type Filter struct {
	Search   string
	Status   models.TaskStatus
	Priority models.TaskPriority
}

// ParseFilter builds a Filter from raw query values. Empty values are
// ignored, unknown statuses and priorities wrap ErrInvalidInput.
func ParseFilter(search, status, priority string) (Filter, error) {
	f := Filter{Search: strings.TrimSpace(search)}

	if status != "" {
		s, err := ParseStatus(status)
		if err != nil {
			return Filter{}, err
		}
		f.Status = s
	}

	if priority != "" {
		p, err := ParsePriority(priority)
		if err != nil {
			return Filter{}, err
		}
		f.Priority = p
	}

	return f, nil
}

// ticketID reports the task id named by a "#<id>" search term.
func (f Filter) ticketID() (int64, bool) {
	m := ticketPattern.FindStringSubmatch(f.Search)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Match evaluates the filter against a single task in memory. It accepts
// exactly the rows the condition rendered by Where selects, for callers
// that hold tasks outside of Postgres.
func (f Filter) Match(task *models.Task) bool {
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if f.Search == "" {
		return true
	}

	needle := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(task.Title), needle) ||
		strings.Contains(strings.ToLower(task.Description), needle) {
		return true
	}
	id, ok := f.ticketID()
	return ok && task.ID == id
}

// Where renders the filter as a SQL condition over the tasks table aliased
// as "t". Placeholders are numbered from 1. It returns an empty string when
// the filter is empty.
func (f Filter) Where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	placeholder := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "t.status = "+placeholder(string(f.Status)))
	}
	if f.Priority != "" {
		conds = append(conds, "t.priority = "+placeholder(string(f.Priority)))
	}
	if f.Search != "" {
		pattern := placeholder("%" + likeEscaper.Replace(f.Search) + "%")
		cond := "t.title ILIKE " + pattern + " OR t.description ILIKE " + pattern
		if id, ok := f.ticketID(); ok {
			cond += " OR t.id = " + placeholder(id)
		}
		conds = append(conds, "("+cond+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return strings.Join(conds, " AND "), args
}

type View string

const (
	ViewAll      View = ""
	ViewAssigned View = "assigned"
	ViewCreated  View = "created"
)

func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewAll, ViewAssigned, ViewCreated:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown view %q", ErrInvalidInput, s)
	}
}

// Partition splits tasks into those assigned to userID and those created
// by userID. A task the user assigned to themselves lands in both. Order
// is preserved.
func Partition(tasks []*models.Task, userID int64) (assigned, created []*models.Task) {
	for _, task := range tasks {
		if task.AssigneeID == userID {
			assigned = append(assigned, task)
		}
		if task.AssignerID == userID {
			created = append(created, task)
		}
	}
	return assigned, created
}

// Project applies view to tasks for userID.
func Project(view View, tasks []*models.Task, userID int64) []*models.Task {
	assigned, created := Partition(tasks, userID)
	switch view {
	case ViewAssigned:
		return assigned
	case ViewCreated:
		return created
	default:
		return tasks
	}
}
