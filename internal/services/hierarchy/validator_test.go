package hierarchy

import (
	"context"
	"errors"
	"testing"

	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/types"
)

// mapLookup is an in-memory ParentLookup for tests: itemID -> parentID.
type mapLookup map[int]*int

func (m mapLookup) GetWorkItemParentID(_ context.Context, id int) (*int, error) {
	return m[id], nil
}

func intPtr(i int) *int { return &i }

func TestValidateParentAssignment(t *testing.T) {
	t.Parallel()

	task := &models.WorkItem{ID: 1, Type: types.WorkItemTask}
	bug := &models.WorkItem{ID: 2, Type: types.WorkItemBug}
	subtask := &models.WorkItem{ID: 3, Type: types.WorkItemSubtask}

	tests := []struct {
		name     string
		itemType types.WorkItemType
		parent   *models.WorkItem
		wantErr  error
	}{
		{"subtask under task", types.WorkItemSubtask, task, nil},
		{"subtask under bug", types.WorkItemSubtask, bug, nil},
		{"subtask without parent", types.WorkItemSubtask, nil, ErrSubtaskNeedsParent},
		{"subtask under subtask", types.WorkItemSubtask, subtask, ErrSubtaskParentType},
		{"task without parent", types.WorkItemTask, nil, nil},
		{"task with parent", types.WorkItemTask, task, ErrTopLevelHasParent},
		{"bug with parent", types.WorkItemBug, task, ErrTopLevelHasParent},
		{"unknown type", types.WorkItemType(99), nil, ErrUnknownWorkItemType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParentAssignment(tt.itemType, tt.parent)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateNoCycle_DirectCycle(t *testing.T) {
	t.Parallel()

	// B is a child of A; re-parenting A under B must fail.
	lookup := mapLookup{2: intPtr(1)} // B(2) -> A(1)

	err := ValidateNoCycle(context.Background(), lookup, 1, 2)
	if !errors.Is(err, ErrParentCycle) {
		t.Errorf("Expected ErrParentCycle, got %v", err)
	}
}

func TestValidateNoCycle_SelfParent(t *testing.T) {
	t.Parallel()

	err := ValidateNoCycle(context.Background(), mapLookup{}, 1, 1)
	if !errors.Is(err, ErrSelfParent) {
		t.Errorf("Expected ErrSelfParent, got %v", err)
	}
}

func TestValidateNoCycle_TopLevelParentOK(t *testing.T) {
	t.Parallel()

	// Parent 2 has no parent of its own.
	err := ValidateNoCycle(context.Background(), mapLookup{}, 1, 2)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValidateNoCycle_TooDeep(t *testing.T) {
	t.Parallel()

	// Parent 2 is itself a child of 3: assigning under it would nest
	// beyond the single subtask level.
	lookup := mapLookup{2: intPtr(3)}

	err := ValidateNoCycle(context.Background(), lookup, 1, 2)
	if !errors.Is(err, ErrParentChainTooDeep) {
		t.Errorf("Expected ErrParentChainTooDeep, got %v", err)
	}
}

func TestValidateNoCycle_MalformedLoopTerminates(t *testing.T) {
	t.Parallel()

	// 2 -> 3 -> 2: a loop not involving the item. The bounded walk must
	// terminate with a failure rather than spin.
	lookup := mapLookup{2: intPtr(3), 3: intPtr(2)}

	err := ValidateNoCycle(context.Background(), lookup, 1, 2)
	if !errors.Is(err, ErrParentChainTooDeep) {
		t.Errorf("Expected ErrParentChainTooDeep, got %v", err)
	}
}

func TestValidateEpicAssignment(t *testing.T) {
	t.Parallel()

	sameProject := &models.Epic{ID: 1, ProjectID: 10}
	otherProject := &models.Epic{ID: 2, ProjectID: 20}

	if err := ValidateEpicAssignment(10, nil); err != nil {
		t.Errorf("Expected nil epic to pass, got %v", err)
	}
	if err := ValidateEpicAssignment(10, sameProject); err != nil {
		t.Errorf("Expected same-project epic to pass, got %v", err)
	}
	if err := ValidateEpicAssignment(10, otherProject); !errors.Is(err, ErrEpicDifferentProject) {
		t.Errorf("Expected ErrEpicDifferentProject, got %v", err)
	}
}

func TestValidateSameProject(t *testing.T) {
	t.Parallel()

	parent := &models.WorkItem{ID: 5, ProjectID: 10, Type: types.WorkItemTask}

	if err := ValidateSameProject(10, parent); err != nil {
		t.Errorf("Expected same-project parent to pass, got %v", err)
	}
	if err := ValidateSameProject(20, parent); !errors.Is(err, ErrParentDifferentProj) {
		t.Errorf("Expected ErrParentDifferentProj, got %v", err)
	}
	if err := ValidateSameProject(20, nil); err != nil {
		t.Errorf("Expected nil parent to pass, got %v", err)
	}
}
