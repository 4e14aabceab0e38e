package models

import "time"

// Board is the kanban visualization of a project's work items.
// Exactly one board exists per project.
type Board struct {
	ID          int
	ProjectID   int
	Name        string
	Description string
	CreatedAt   time.Time
}

// BoardColumn maps one status to a position on a board. RowVersion is an
// opaque concurrency token: it is returned with every read, must be
// echoed back on every write, and changes on every committed update.
type BoardColumn struct {
	ID          int
	BoardID     int
	StatusID    int
	Name        string // Status name at render time
	OrderIndex  int
	WIPLimit    *int
	IsCollapsed bool
	RowVersion  string
}

// BoardColumnView is a column populated with the work items currently
// in its status, ordered for display.
type BoardColumnView struct {
	BoardColumn
	Items []*WorkItemSummary
}

// BoardView is the full board projection returned to clients.
type BoardView struct {
	Board   Board
	Columns []*BoardColumnView
}

// BoardFilter narrows the work items included in a board view. All
// supplied filters are combined with AND.
type BoardFilter struct {
	EpicIDs     []int
	AssigneeIDs []int
	Search      string
}

// Empty reports whether no filter criteria were supplied.
func (f BoardFilter) Empty() bool {
	return len(f.EpicIDs) == 0 && len(f.AssigneeIDs) == 0 && f.Search == ""
}
