package epic

import "github.com/thenoetrevino/plank/internal/apperr"

// Epic-related errors
var (
	// Validation errors
	ErrInvalidEpicID    = apperr.New(apperr.KindBadRequest, "invalid epic ID")
	ErrInvalidProjectID = apperr.New(apperr.KindBadRequest, "invalid project ID")
	ErrEmptySummary     = apperr.New(apperr.KindBadRequest, "epic summary cannot be empty")
	ErrSummaryTooLong   = apperr.New(apperr.KindBadRequest, "epic summary cannot exceed 255 characters")
	ErrInvalidPriority  = apperr.New(apperr.KindBadRequest, "priority must be between 1 and 5")

	// Business logic errors
	ErrEpicNotFound     = apperr.New(apperr.KindNotFound, "epic not found")
	ErrProjectNotFound  = apperr.New(apperr.KindNotFound, "project not found")
	ErrProjectInactive  = apperr.New(apperr.KindBadRequest, "project is archived")
	ErrEpicHasWorkItems = apperr.New(apperr.KindBadRequest, "epic still has linked work items; reassign or remove them first")
	ErrNotProjectOwner  = apperr.New(apperr.KindForbidden, "only the project owner may delete an epic")
	ErrAssigneeNotFound = apperr.New(apperr.KindBadRequest, "assignee does not exist")
	ErrTransitionDenied = apperr.New(apperr.KindBadRequest, "status transition is not allowed")
)
