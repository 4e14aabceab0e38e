package status

import (
	"context"
	"errors"
	"testing"

	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/testutil"
)

func TestEnsureDefaultStatuses_Idempotent(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	// Seeds already ran in SetupTestDB; run twice more.
	if err := svc.EnsureDefaultStatuses(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := svc.EnsureDefaultStatuses(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	statuses, err := svc.ListStatuses(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(statuses) != 5 {
		t.Errorf("Expected exactly 5 seed statuses, got %d", len(statuses))
	}

	names := map[string]bool{}
	for _, s := range statuses {
		names[s.Name] = true
	}
	for _, want := range []string{
		models.StatusBacklog, models.StatusTodo, models.StatusInProgress,
		models.StatusDone, models.StatusCancelled,
	} {
		if !names[want] {
			t.Errorf("Expected seed status %q to exist", want)
		}
	}
}

func TestCreateStatus(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	created, err := svc.CreateStatus(context.Background(), CreateStatusRequest{
		Name:       "IN REVIEW",
		Color:      "#7D56F4",
		OrderIndex: 10,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected status ID to be set")
	}
	if created.Name != "IN REVIEW" {
		t.Errorf("Expected name 'IN REVIEW', got %q", created.Name)
	}
	if !created.IsActive {
		t.Error("Expected new status to be active")
	}
}

func TestCreateStatus_DuplicateNameCaseInsensitive(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.CreateStatus(context.Background(), CreateStatusRequest{Name: "todo"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
}

func TestCreateStatus_EmptyName(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.CreateStatus(context.Background(), CreateStatusRequest{Name: "   "})
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
}

func TestDeleteStatus_InUse(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)
	projectID := testutil.CreateTestProject(t, db, "TEST", 1)
	testutil.CreateTestWorkItem(t, db, projectID, "TEST-1", 1, todo)

	err := svc.DeleteStatus(context.Background(), todo)
	if !errors.Is(err, ErrStatusInUse) {
		t.Errorf("Expected ErrStatusInUse, got %v", err)
	}
}

func TestDeleteStatus_Unreferenced(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	id := testutil.CreateTestStatus(t, db, "TEMPORARY", 99)
	if err := svc.DeleteStatus(context.Background(), id); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := svc.GetStatus(context.Background(), id)
	if !errors.Is(err, ErrStatusNotFound) {
		t.Errorf("Expected ErrStatusNotFound after delete, got %v", err)
	}
}

func TestValidateTransition_SelfAlwaysAllowed(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)

	ok, err := svc.ValidateTransition(context.Background(), todo, todo)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Error("Expected self-transition to always be allowed")
	}
}

func TestValidateTransition_PermissiveDefault(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)
	done := testutil.StatusID(t, db, models.StatusDone)

	// No rule exists for the pair, so the move is allowed.
	ok, err := svc.ValidateTransition(context.Background(), todo, done)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Error("Expected transition with no explicit rule to be allowed")
	}
}

func TestValidateTransition_ExplicitDeny(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)
	done := testutil.StatusID(t, db, models.StatusDone)

	if err := svc.SetTransition(context.Background(), todo, done, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ok, err := svc.ValidateTransition(context.Background(), todo, done)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Error("Expected explicitly denied transition to be rejected")
	}

	// The reverse direction carries no rule and stays allowed.
	ok, err = svc.ValidateTransition(context.Background(), done, todo)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Error("Expected reverse direction to remain allowed")
	}
}

func TestSetTransition_UpsertFlipsRule(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)
	done := testutil.StatusID(t, db, models.StatusDone)

	if err := svc.SetTransition(context.Background(), todo, done, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := svc.SetTransition(context.Background(), todo, done, true); err != nil {
		t.Fatalf("Expected upsert to succeed, got %v", err)
	}

	ok, err := svc.ValidateTransition(context.Background(), todo, done)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Error("Expected flipped rule to allow the transition")
	}
}

func TestSetTransition_SelfRejected(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)

	err := svc.SetTransition(context.Background(), todo, todo, false)
	if !errors.Is(err, ErrSelfTransition) {
		t.Errorf("Expected ErrSelfTransition, got %v", err)
	}
}

func TestGetAllowedTransitions(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	todo := testutil.StatusID(t, db, models.StatusTodo)
	done := testutil.StatusID(t, db, models.StatusDone)
	cancelled := testutil.StatusID(t, db, models.StatusCancelled)

	if err := svc.SetTransition(context.Background(), todo, cancelled, false); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	allowed, err := svc.GetAllowedTransitions(context.Background(), todo)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ids := map[int]bool{}
	for _, s := range allowed {
		ids[s.ID] = true
	}
	if ids[cancelled] {
		t.Error("Expected denied target to be excluded")
	}
	if !ids[done] {
		t.Error("Expected unruled target to be included")
	}
	if !ids[todo] {
		t.Error("Expected the source status itself to be included")
	}
}

func TestGetDefaultStatus(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	svc := NewService(db, nil)

	def, err := svc.GetDefaultStatus(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if def.Name != models.StatusTodo {
		t.Errorf("Expected TODO as default status, got %q", def.Name)
	}
}
