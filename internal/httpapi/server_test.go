package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/services/board"
	"github.com/thenoetrevino/plank/internal/services/epic"
	"github.com/thenoetrevino/plank/internal/services/project"
	"github.com/thenoetrevino/plank/internal/services/status"
	"github.com/thenoetrevino/plank/internal/services/workitem"
	"github.com/thenoetrevino/plank/internal/testutil"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	directory := identity.NewStaticDirectory([]identity.User{
		{ID: 1, DisplayName: "Ada"},
		{ID: 2, DisplayName: "Sam"},
	})
	statuses := status.NewService(db, nil)
	projects := project.NewService(db, directory, nil)
	epics := epic.NewService(db, statuses, directory, nil)
	items := workitem.NewService(db, statuses, directory, nil)
	boards := board.NewService(db, statuses, items, nil)

	srv := NewServer(projects, epics, items, statuses, boards, identity.ContextResolver{}, nil)
	return srv.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, userID int) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID > 0 {
		req.Header.Set("X-User-ID", fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateProject_RequiresActor(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, "POST", "/api/projects", map[string]string{"key": "TEST", "name": "Test"}, 0)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without actor header, got %d", rec.Code)
	}

	rec = doJSON(t, handler, "POST", "/api/projects", map[string]string{"key": "TEST", "name": "Test"}, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.Key != "TEST" {
		t.Errorf("Expected key TEST, got %q", created.Key)
	}
}

func TestGetProject_ErrorMapping(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	// Non-numeric and non-positive ids are 400, not 404.
	for _, path := range []string{"/api/projects/abc", "/api/projects/0", "/api/projects/-3"} {
		rec := doJSON(t, handler, "GET", path, nil, 1)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}

	rec := doJSON(t, handler, "GET", "/api/projects/9999", nil, 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing project, got %d", rec.Code)
	}
}

func TestWorkItemLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, "POST", "/api/projects", map[string]string{"key": "WEB", "name": "Web"}, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var proj models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
		t.Fatalf("Failed to decode project: %v", err)
	}

	rec = doJSON(t, handler, "POST", "/api/workitems", map[string]any{
		"project_id": proj.ID,
		"type":       1,
		"summary":    "Build login",
	}, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item models.WorkItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("Failed to decode work item: %v", err)
	}
	if item.Key != "WEB-1" {
		t.Errorf("Expected key WEB-1, got %q", item.Key)
	}

	// Assign to Sam.
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/workitems/%d/assign", item.ID), map[string]any{"assignee_id": 2}, 1)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// Unknown assignee is a 400.
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/workitems/%d/assign", item.ID), map[string]any{"assignee_id": 404}, 1)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown assignee, got %d", rec.Code)
	}

	// Detail view includes the resolved names.
	rec = doJSON(t, handler, "GET", fmt.Sprintf("/api/workitems/%d", item.ID), nil, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, handler, "DELETE", fmt.Sprintf("/api/workitems/%d", item.ID), nil, 1)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransitionDenied_MapsTo400(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, "POST", "/api/projects", map[string]string{"key": "FLOW", "name": "Flow"}, 1)
	var proj models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
		t.Fatalf("Failed to decode project: %v", err)
	}

	rec = doJSON(t, handler, "POST", "/api/workitems", map[string]any{
		"project_id": proj.ID, "type": 1, "summary": "Gated",
	}, 1)
	var item models.WorkItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("Failed to decode work item: %v", err)
	}

	// Find the TODO and DONE seed statuses.
	rec = doJSON(t, handler, "GET", "/api/statuses", nil, 1)
	var statuses []models.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("Failed to decode statuses: %v", err)
	}
	byName := make(map[string]int)
	for _, st := range statuses {
		byName[st.Name] = st.ID
	}

	rec = doJSON(t, handler, "POST", "/api/statuses/transitions", map[string]any{
		"from_status_id": byName[models.StatusTodo],
		"to_status_id":   byName[models.StatusDone],
		"is_allowed":     false,
	}, 1)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/workitems/%d/status", item.ID),
		map[string]any{"status_id": byName[models.StatusDone]}, 1)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for denied transition, got %d", rec.Code)
	}
}

func TestBoardColumnConflict_MapsTo409(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	rec := doJSON(t, handler, "POST", "/api/projects", map[string]string{"key": "BRD", "name": "Board"}, 1)
	var proj models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
		t.Fatalf("Failed to decode project: %v", err)
	}

	rec = doJSON(t, handler, "POST", fmt.Sprintf("/api/projects/%d/board", proj.ID), map[string]string{"name": "Main"}, 1)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, "GET", fmt.Sprintf("/api/projects/%d/board/view", proj.ID), nil, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var view struct {
		Columns []struct {
			ID         int    `json:"ID"`
			RowVersion string `json:"RowVersion"`
		}
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode board view: %v", err)
	}
	if len(view.Columns) == 0 {
		t.Fatal("Expected board view to have columns")
	}
	col := view.Columns[0]

	colPath := fmt.Sprintf("/api/projects/%d/board/columns/%d", proj.ID, col.ID)
	rec = doJSON(t, handler, "PUT", colPath, map[string]any{
		"wip_limit":   3,
		"row_version": col.RowVersion,
	}, 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Replaying the old token conflicts.
	rec = doJSON(t, handler, "PUT", colPath, map[string]any{
		"wip_limit":   5,
		"row_version": col.RowVersion,
	}, 1)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for stale row version, got %d", rec.Code)
	}
}

func TestBoardRoutes_ProjectScoped(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	setup := func(key string) (projectID, itemID, columnID int, rowVersion string) {
		rec := doJSON(t, handler, "POST", "/api/projects", map[string]string{"key": key, "name": key}, 1)
		var proj models.Project
		if err := json.Unmarshal(rec.Body.Bytes(), &proj); err != nil {
			t.Fatalf("Failed to decode project: %v", err)
		}
		rec = doJSON(t, handler, "POST", fmt.Sprintf("/api/projects/%d/board", proj.ID), map[string]string{"name": "Main"}, 1)
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		rec = doJSON(t, handler, "POST", "/api/workitems", map[string]any{
			"project_id": proj.ID, "type": 1, "summary": "Scoped item",
		}, 1)
		var item models.WorkItem
		if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
			t.Fatalf("Failed to decode work item: %v", err)
		}
		rec = doJSON(t, handler, "GET", fmt.Sprintf("/api/projects/%d/board/view", proj.ID), nil, 1)
		var view struct {
			Columns []struct {
				ID         int    `json:"ID"`
				RowVersion string `json:"RowVersion"`
			}
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("Failed to decode board view: %v", err)
		}
		return proj.ID, item.ID, view.Columns[0].ID, view.Columns[0].RowVersion
	}

	_, itemID, columnID, rowVersion := setup("ONE")
	otherID, _, _, _ := setup("TWO")

	// Non-numeric project segments are rejected before any domain call.
	rec := doJSON(t, handler, "PUT", fmt.Sprintf("/api/projects/abc/board/workitems/%d/move", itemID),
		map[string]any{"status_id": 1}, 1)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric project id on move, got %d", rec.Code)
	}
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/projects/abc/board/columns/%d", columnID),
		map[string]any{"wip_limit": 3, "row_version": rowVersion}, 1)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-numeric project id on column update, got %d", rec.Code)
	}

	// A project with no board is a 404, not a silent success.
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/projects/424242/board/columns/%d", columnID),
		map[string]any{"wip_limit": 3, "row_version": rowVersion}, 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown project, got %d", rec.Code)
	}

	// Resources cannot be reached through another project's URL.
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/projects/%d/board/columns/%d", otherID, columnID),
		map[string]any{"wip_limit": 3, "row_version": rowVersion}, 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for column of another board, got %d", rec.Code)
	}
	rec = doJSON(t, handler, "PUT", fmt.Sprintf("/api/projects/%d/board/workitems/%d/move", otherID, itemID),
		map[string]any{"status_id": 1}, 1)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for item of another project, got %d", rec.Code)
	}
}
