package models

import "time"

// Epic is a mid-level grouping of work items within a project,
// analogous to a feature or initiative.
type Epic struct {
	ID         int
	ProjectID  int
	Key        string // e.g. "PROJ-E4"
	Summary    string
	AssigneeID *int
	StatusID   int
	Priority   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EpicSummary is a DTO for epic listings with aggregate progress.
type EpicSummary struct {
	ID            int
	Key           string
	Summary       string
	StatusID      int
	StatusName    string
	Priority      int
	ItemCount     int
	DoneItemCount int
}
