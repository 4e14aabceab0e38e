package types

// ID type aliases provide semantic meaning and reduce repetitive int conversions.
// These aliases document what each integer represents in the domain model.

// ProjectID identifies a unique project in the system
type ProjectID int

// EpicID identifies a unique epic within a project
type EpicID int

// WorkItemID identifies a unique work item (task, bug, or subtask)
type WorkItemID int

// StatusID identifies a workflow status shared across projects
type StatusID int

// BoardID identifies a project's kanban board
type BoardID int

// BoardColumnID identifies a column on a board
type BoardColumnID int

// UserID identifies a user resolved by the external identity collaborator
type UserID int

// WorkItemType classifies a work item as a task, bug, or subtask
type WorkItemType int

// Work item type constants
const (
	WorkItemTask    WorkItemType = 1
	WorkItemBug     WorkItemType = 2
	WorkItemSubtask WorkItemType = 3
)

// String returns the display name for a work item type.
func (t WorkItemType) String() string {
	switch t {
	case WorkItemTask:
		return "Task"
	case WorkItemBug:
		return "Bug"
	case WorkItemSubtask:
		return "Subtask"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the known work item types.
func (t WorkItemType) Valid() bool {
	return t == WorkItemTask || t == WorkItemBug || t == WorkItemSubtask
}

// Priority constants (1 = trivial, 5 = critical)
const (
	PriorityTrivial  = 1
	PriorityLow      = 2
	PriorityMedium   = 3
	PriorityHigh     = 4
	PriorityCritical = 5
)

// MaxSubtaskDepth is the maximum parent-chain depth for work items.
// Only one level of subtask nesting is modeled: subtask -> task/bug.
const MaxSubtaskDepth = 1
