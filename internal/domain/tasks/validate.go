package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var ErrInvalidInput = errors.New("invalid task input")

const (
	DueDateLayout  = time.DateOnly
	maxTitleLength = 255
)

var (
	statuses   = []models.TaskStatus{models.StatusAssigned, models.StatusInProgress, models.StatusCompleted}
	priorities = []models.TaskPriority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}
)

// Draft is the unvalidated content of a task as submitted by a client.
type Draft struct {
	Title       string
	Description string
	Priority    string
	DueDate     string
	AssigneeID  int64
}

// Fields are the editable fields of a task after validation.
type Fields struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     time.Time
	AssigneeID  int64
}

// Validate checks that every required field is present and well-formed.
// The returned error wraps ErrInvalidInput.
func (d Draft) Validate() (Fields, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Fields{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return Fields{}, fmt.Errorf("%w: title is longer than %d characters", ErrInvalidInput, maxTitleLength)
	}

	if strings.TrimSpace(d.Priority) == "" {
		return Fields{}, fmt.Errorf("%w: priority is required", ErrInvalidInput)
	}
	priority, err := ParsePriority(d.Priority)
	if err != nil {
		return Fields{}, err
	}

	if strings.TrimSpace(d.DueDate) == "" {
		return Fields{}, fmt.Errorf("%w: due date is required", ErrInvalidInput)
	}
	dueDate, err := ParseDueDate(d.DueDate)
	if err != nil {
		return Fields{}, err
	}

	if d.AssigneeID <= 0 {
		return Fields{}, fmt.Errorf("%w: assignee is required", ErrInvalidInput)
	}

	return Fields{
		Title:       title,
		Description: d.Description,
		Priority:    priority,
		DueDate:     dueDate,
		AssigneeID:  d.AssigneeID,
	}, nil
}

// ParseStatus accepts exactly one of the enumerated statuses, case-sensitive.
func ParseStatus(s string) (models.TaskStatus, error) {
	for _, status := range statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

func ParsePriority(s string) (models.TaskPriority, error) {
	for _, priority := range priorities {
		if string(priority) == s {
			return priority, nil
		}
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, s)
}

// ParseDueDate accepts a calendar date (2006-01-02) or an RFC 3339
// timestamp, which is truncated to its date.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DueDateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: due date %q is not a date", ErrInvalidInput, s)
}
