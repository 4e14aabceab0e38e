package models

import (
	"time"

	"github.com/thenoetrevino/plank/internal/types"
)

// WorkItem is the atomic unit of planned work: a task, bug, or subtask.
// Subtasks carry a ParentID pointing at a task or bug; tasks and bugs
// never have a parent.
type WorkItem struct {
	ID          int
	ProjectID   int
	EpicID      *int
	ParentID    *int
	Type        types.WorkItemType
	Key         string // e.g. "PROJ-12"
	Summary     string
	Description string
	AssigneeID  *int
	ReporterID  int
	StatusID    int
	Priority    int
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkItemSummary is a DTO for board cards and list views.
type WorkItemSummary struct {
	ID           int
	Key          string
	Summary      string
	Type         types.WorkItemType
	Priority     int
	StatusID     int
	EpicID       *int
	AssigneeID   *int
	AssigneeName string
	DueDate      *time.Time
}

// WorkItemDetail is a DTO for the full item view.
type WorkItemDetail struct {
	WorkItem
	StatusName   string
	EpicKey      string
	ParentKey    string
	AssigneeName string
	ReporterName string
	Children     []*WorkItemSummary
}
