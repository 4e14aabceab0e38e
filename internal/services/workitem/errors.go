package workitem

import "github.com/thenoetrevino/plank/internal/apperr"

// Work-item-related errors
var (
	// Validation errors
	ErrInvalidWorkItemID = apperr.New(apperr.KindBadRequest, "invalid work item ID")
	ErrInvalidProjectID  = apperr.New(apperr.KindBadRequest, "invalid project ID")
	ErrEmptySummary      = apperr.New(apperr.KindBadRequest, "work item summary cannot be empty")
	ErrSummaryTooLong    = apperr.New(apperr.KindBadRequest, "work item summary cannot exceed 255 characters")
	ErrInvalidPriority   = apperr.New(apperr.KindBadRequest, "priority must be between 1 and 5")
	ErrInvalidType       = apperr.New(apperr.KindBadRequest, "work item type must be Task, Bug, or Subtask")

	// Business logic errors
	ErrWorkItemNotFound = apperr.New(apperr.KindNotFound, "work item not found")
	ErrProjectNotFound  = apperr.New(apperr.KindNotFound, "project not found")
	ErrProjectInactive  = apperr.New(apperr.KindBadRequest, "project is archived")
	ErrEpicNotFound     = apperr.New(apperr.KindBadRequest, "epic does not exist")
	ErrParentNotFound   = apperr.New(apperr.KindBadRequest, "parent work item does not exist")
	ErrHasChildren      = apperr.New(apperr.KindBadRequest, "work item still has subtasks; remove or re-parent them first")
	ErrAssigneeNotFound = apperr.New(apperr.KindBadRequest, "assignee does not exist")
	ErrTransitionDenied = apperr.New(apperr.KindBadRequest, "status transition is not allowed")
)
