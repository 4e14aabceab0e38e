package project

import (
	"context"
	"errors"
	"testing"

	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/testutil"
)

const (
	ownerID    = 1
	strangerID = 2
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	directory := identity.NewStaticDirectory([]identity.User{
		{ID: ownerID, DisplayName: "Ada"},
		{ID: strangerID, DisplayName: "Sam"},
	})
	return NewService(db, directory, nil)
}

func TestCreateProject(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	created, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		Key:  "test",
		Name: "Test Project",
	}, ownerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.Key != "TEST" {
		t.Errorf("Expected key to be uppercased to TEST, got %q", created.Key)
	}
	if created.OwnerID != ownerID {
		t.Errorf("Expected owner %d, got %d", ownerID, created.OwnerID)
	}
	if !created.IsActive || created.IsArchived {
		t.Error("Expected new project to be active and unarchived")
	}
}

func TestCreateProject_DuplicateKey(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	if _, err := svc.CreateProject(context.Background(), CreateProjectRequest{Key: "TEST", Name: "One"}, ownerID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := svc.CreateProject(context.Background(), CreateProjectRequest{Key: "test", Name: "Two"}, ownerID)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for case-insensitive collision, got %v", err)
	}
}

func TestCreateProject_InvalidKey(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	for _, key := range []string{"", "A", "1AB", "TOOLONGKEY123", "BAD-KEY"} {
		_, err := svc.CreateProject(context.Background(), CreateProjectRequest{Key: key, Name: "X"}, ownerID)
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Expected ErrInvalidKey for %q, got %v", key, err)
		}
	}
}

func TestSetArchived_OwnerOnly(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	created, err := svc.CreateProject(context.Background(), CreateProjectRequest{Key: "ARCH", Name: "Archive me"}, ownerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.SetArchived(context.Background(), created.ID, true, strangerID); !errors.Is(err, ErrNotProjectOwner) {
		t.Errorf("Expected ErrNotProjectOwner, got %v", err)
	}

	if err := svc.SetArchived(context.Background(), created.ID, true, ownerID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reloaded, err := svc.GetProject(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reloaded.IsArchived || reloaded.IsActive {
		t.Error("Expected project to be archived and inactive")
	}

	// Unarchive restores visibility.
	if err := svc.SetArchived(context.Background(), created.ID, false, ownerID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	reloaded, _ = svc.GetProject(context.Background(), created.ID)
	if reloaded.IsArchived || !reloaded.IsActive {
		t.Error("Expected project to be active after unarchive")
	}
}

func TestDeleteProject_GuardsAndOwnership(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	directory := identity.NewStaticDirectory([]identity.User{{ID: ownerID, DisplayName: "Ada"}})
	svc := NewService(db, directory, nil)

	created, err := svc.CreateProject(context.Background(), CreateProjectRequest{Key: "DEL", Name: "Doomed"}, ownerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	todo := testutil.StatusID(t, db, models.StatusTodo)
	itemID := testutil.CreateTestWorkItem(t, db, created.ID, "DEL-1", 1, todo)

	if err := svc.DeleteProject(context.Background(), created.ID, strangerID); !errors.Is(err, ErrNotProjectOwner) {
		t.Errorf("Expected ErrNotProjectOwner, got %v", err)
	}
	if err := svc.DeleteProject(context.Background(), created.ID, ownerID); !errors.Is(err, ErrProjectHasChildren) {
		t.Errorf("Expected ErrProjectHasChildren, got %v", err)
	}

	// Empty the project, then deletion succeeds.
	if _, err := db.ExecContext(context.Background(), "DELETE FROM work_items WHERE id = ?", itemID); err != nil {
		t.Fatalf("Failed to remove work item: %v", err)
	}
	if err := svc.DeleteProject(context.Background(), created.ID, ownerID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = svc.GetProject(context.Background(), created.ID)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound after delete, got %v", err)
	}
}

func TestListProjectSummaries_Counts(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	directory := identity.NewStaticDirectory([]identity.User{{ID: ownerID, DisplayName: "Ada"}})
	svc := NewService(db, directory, nil)

	created, err := svc.CreateProject(context.Background(), CreateProjectRequest{Key: "SUM", Name: "Summary"}, ownerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	todo := testutil.StatusID(t, db, models.StatusTodo)
	testutil.CreateTestEpic(t, db, created.ID, "SUM-E1", todo)
	testutil.CreateTestWorkItem(t, db, created.ID, "SUM-1", 1, todo)
	testutil.CreateTestWorkItem(t, db, created.ID, "SUM-2", 1, todo)

	summaries, err := svc.ListProjectSummaries(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 summary, got %d", len(summaries))
	}

	s := summaries[0]
	if s.EpicCount != 1 {
		t.Errorf("Expected 1 epic, got %d", s.EpicCount)
	}
	if s.WorkItemCount != 2 {
		t.Errorf("Expected 2 work items, got %d", s.WorkItemCount)
	}
	if s.OwnerName != "Ada" {
		t.Errorf("Expected owner name Ada, got %q", s.OwnerName)
	}
}
