package models

import "time"

// Status is a named workflow state shared across all projects.
type Status struct {
	ID              int
	Name            string
	Color           string // Hex color code (e.g., "#7D56F4")
	OrderIndex      int
	IsDefaultForNew bool
	IsCompleted     bool
	IsCancelled     bool
	IsActive        bool
	CreatedAt       time.Time
}

// StatusTransition is a directed allow/deny rule between two statuses.
// The absence of a rule for a pair means the transition is allowed.
type StatusTransition struct {
	FromStatusID int
	ToStatusID   int
	IsAllowed    bool
}

// Seed status names required at system initialization.
const (
	StatusBacklog    = "BACKLOG"
	StatusTodo       = "TODO"
	StatusInProgress = "IN PROGRESS"
	StatusDone       = "DONE"
	StatusCancelled  = "CANCELLED"
)
