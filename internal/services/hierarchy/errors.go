package hierarchy

import "github.com/thenoetrevino/plank/internal/apperr"

// Hierarchy rule violations. All are client errors: the placement the
// caller asked for is invalid and nothing was mutated.
var (
	ErrSubtaskNeedsParent   = apperr.New(apperr.KindBadRequest, "subtask must have a parent of type Task or Bug")
	ErrSubtaskParentType    = apperr.New(apperr.KindBadRequest, "subtask parent must be a Task or Bug, not another Subtask")
	ErrTopLevelHasParent    = apperr.New(apperr.KindBadRequest, "a Task or Bug cannot have a parent work item")
	ErrParentCycle          = apperr.New(apperr.KindBadRequest, "parent assignment would create a cycle")
	ErrParentChainTooDeep   = apperr.New(apperr.KindBadRequest, "only one level of subtask nesting is allowed")
	ErrParentDifferentProj  = apperr.New(apperr.KindBadRequest, "parent work item must belong to the same project")
	ErrEpicDifferentProject = apperr.New(apperr.KindBadRequest, "epic must belong to the same project as the work item")
	ErrSelfParent           = apperr.New(apperr.KindBadRequest, "a work item cannot be its own parent")
	ErrUnknownWorkItemType  = apperr.New(apperr.KindBadRequest, "unknown work item type")
)
