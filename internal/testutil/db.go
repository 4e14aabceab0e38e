// Package testutil provides in-memory database fixtures shared by the
// service and repository tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/thenoetrevino/plank/internal/database"
)

// SetupTestDB creates an in-memory database with the full schema and
// the five seed statuses.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()

	// Enable foreign key constraints
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if _, err := db.ExecContext(ctx, database.Schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := database.SeedDefaultStatuses(ctx, db); err != nil {
		t.Fatalf("Failed to seed statuses: %v", err)
	}

	return db
}

// CreateTestProject creates a project with its counter row and returns its ID.
func CreateTestProject(t *testing.T, db *sql.DB, key string, ownerID int) int {
	t.Helper()

	result, err := db.ExecContext(context.Background(),
		"INSERT INTO projects (key, name, owner_id) VALUES (?, ?, ?)",
		key, key+" project", ownerID)
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	projectID, _ := result.LastInsertId()

	_, err = db.ExecContext(context.Background(),
		"INSERT INTO project_counters (project_id) VALUES (?)", projectID)
	if err != nil {
		t.Fatalf("Failed to initialize project counter: %v", err)
	}
	return int(projectID)
}

// StatusID looks up a seed status by name.
func StatusID(t *testing.T, db *sql.DB, name string) int {
	t.Helper()

	var id int
	err := db.QueryRowContext(context.Background(),
		"SELECT id FROM statuses WHERE name = ? COLLATE NOCASE", name).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to look up status %q: %v", name, err)
	}
	return id
}

// CreateTestStatus inserts an extra status and returns its ID.
func CreateTestStatus(t *testing.T, db *sql.DB, name string, orderIndex int) int {
	t.Helper()

	result, err := db.ExecContext(context.Background(),
		"INSERT INTO statuses (name, order_index) VALUES (?, ?)", name, orderIndex)
	if err != nil {
		t.Fatalf("Failed to create test status: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// CreateTestEpic inserts an epic and returns its ID.
func CreateTestEpic(t *testing.T, db *sql.DB, projectID int, key string, statusID int) int {
	t.Helper()

	result, err := db.ExecContext(context.Background(),
		"INSERT INTO epics (project_id, key, summary, status_id) VALUES (?, ?, ?, ?)",
		projectID, key, "Epic "+key, statusID)
	if err != nil {
		t.Fatalf("Failed to create test epic: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// CreateTestWorkItem inserts a work item and returns its ID.
func CreateTestWorkItem(t *testing.T, db *sql.DB, projectID int, key string, typeID, statusID int) int {
	t.Helper()

	result, err := db.ExecContext(context.Background(),
		`INSERT INTO work_items (project_id, type_id, key, summary, reporter_id, status_id)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		projectID, typeID, key, "Item "+key, statusID)
	if err != nil {
		t.Fatalf("Failed to create test work item: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// SetWorkItemParent links a work item under a parent directly in the store.
func SetWorkItemParent(t *testing.T, db *sql.DB, itemID, parentID int) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		"UPDATE work_items SET parent_id = ? WHERE id = ?", parentID, itemID)
	if err != nil {
		t.Fatalf("Failed to set work item parent: %v", err)
	}
}
