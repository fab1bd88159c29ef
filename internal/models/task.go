package models

import "time"

type TaskStatus string

const (
	StatusAssigned   TaskStatus = "Assigned"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID           int64
	Title        string
	Description  string
	Status       TaskStatus
	Priority     TaskPriority
	DueDate      time.Time
	AssignerID   int64
	AssignerName string
	AssigneeID   int64
	AssigneeName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
