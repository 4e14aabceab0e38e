// Package hierarchy enforces the Project -> Epic -> WorkItem -> Subtask
// containment rules. Validation is pure: failures are returned before
// any caller mutates state.
package hierarchy

import (
	"context"

	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/types"
)

// ParentLookup resolves a work item's parent link during the cycle
// walk. Satisfied by *database.WorkItemRepo.
type ParentLookup interface {
	GetWorkItemParentID(ctx context.Context, id int) (*int, error)
}

// ValidateParentAssignment checks that a work item's type and its
// prospective parent agree: subtasks require a Task or Bug parent,
// tasks and bugs must be top-level. parent is nil when no parent is
// being assigned.
func ValidateParentAssignment(itemType types.WorkItemType, parent *models.WorkItem) error {
	switch itemType {
	case types.WorkItemSubtask:
		if parent == nil {
			return ErrSubtaskNeedsParent
		}
		if parent.Type == types.WorkItemSubtask {
			return ErrSubtaskParentType
		}
		return nil
	case types.WorkItemTask, types.WorkItemBug:
		if parent != nil {
			return ErrTopLevelHasParent
		}
		return nil
	default:
		return ErrUnknownWorkItemType
	}
}

// ValidateNoCycle walks the parent chain starting at proposedParentID
// and fails if itemID appears, or if the chain would exceed the single
// permitted level of subtask nesting. The walk is bounded so malformed
// data can never cause unbounded recursion.
func ValidateNoCycle(ctx context.Context, lookup ParentLookup, itemID, proposedParentID int) error {
	if itemID == proposedParentID {
		return ErrSelfParent
	}

	// Count links above the proposed parent. Any ancestor at all means
	// the item would sit deeper than the single permitted subtask
	// level; the bound keeps the walk finite on malformed data.
	current := proposedParentID
	for ancestors := 0; ancestors <= types.MaxSubtaskDepth; ancestors++ {
		parentID, err := lookup.GetWorkItemParentID(ctx, current)
		if err != nil {
			return err
		}
		if parentID == nil {
			return nil
		}
		if *parentID == itemID {
			return ErrParentCycle
		}
		if ancestors+1 >= types.MaxSubtaskDepth {
			return ErrParentChainTooDeep
		}
		current = *parentID
	}
	return ErrParentChainTooDeep
}

// ValidateEpicAssignment checks that the epic, when provided, belongs
// to the work item's project.
func ValidateEpicAssignment(itemProjectID int, epic *models.Epic) error {
	if epic == nil {
		return nil
	}
	if epic.ProjectID != itemProjectID {
		return ErrEpicDifferentProject
	}
	return nil
}

// ValidateSameProject checks that a prospective parent belongs to the
// same project as the child.
func ValidateSameProject(itemProjectID int, parent *models.WorkItem) error {
	if parent != nil && parent.ProjectID != itemProjectID {
		return ErrParentDifferentProj
	}
	return nil
}
