package database

import (
	"context"
	"database/sql"
)

// Schema is the complete database schema. Exposed so test helpers can
// build an identical in-memory database.
const Schema = `
	-- Projects table
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_archived BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-project counters for work item and epic key sequences
	CREATE TABLE IF NOT EXISTS project_counters (
		project_id INTEGER PRIMARY KEY,
		next_item_number INTEGER NOT NULL DEFAULT 1,
		next_epic_number INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	-- Workflow statuses, shared across all projects
	CREATE TABLE IF NOT EXISTS statuses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		color TEXT NOT NULL DEFAULT '#6B7280',
		order_index INTEGER NOT NULL DEFAULT 0,
		is_default_for_new BOOLEAN NOT NULL DEFAULT 0,
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		is_cancelled BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Explicit transition rules; absence of a row means allowed
	CREATE TABLE IF NOT EXISTS status_transitions (
		from_status_id INTEGER NOT NULL,
		to_status_id INTEGER NOT NULL,
		is_allowed BOOLEAN NOT NULL DEFAULT 1,
		PRIMARY KEY (from_status_id, to_status_id),
		FOREIGN KEY (from_status_id) REFERENCES statuses(id) ON DELETE CASCADE,
		FOREIGN KEY (to_status_id) REFERENCES statuses(id) ON DELETE CASCADE
	);

	-- Epics table
	CREATE TABLE IF NOT EXISTS epics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		key TEXT NOT NULL UNIQUE,
		summary TEXT NOT NULL,
		assignee_id INTEGER,
		status_id INTEGER NOT NULL,
		priority INTEGER NOT NULL DEFAULT 3,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id),
		FOREIGN KEY (status_id) REFERENCES statuses(id)
	);

	-- Work items table (tasks, bugs, subtasks)
	CREATE TABLE IF NOT EXISTS work_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		epic_id INTEGER,
		parent_id INTEGER,
		type_id INTEGER NOT NULL DEFAULT 1,
		key TEXT NOT NULL UNIQUE,
		summary TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		assignee_id INTEGER,
		reporter_id INTEGER NOT NULL,
		status_id INTEGER NOT NULL,
		priority INTEGER NOT NULL DEFAULT 3,
		due_date TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id),
		FOREIGN KEY (epic_id) REFERENCES epics(id) ON DELETE SET NULL,
		FOREIGN KEY (parent_id) REFERENCES work_items(id),
		FOREIGN KEY (status_id) REFERENCES statuses(id)
	);

	-- Boards table (exactly one per project)
	CREATE TABLE IF NOT EXISTS boards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	-- Board columns: one per status per board, with a concurrency token
	CREATE TABLE IF NOT EXISTS board_columns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id INTEGER NOT NULL,
		status_id INTEGER NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		wip_limit INTEGER,
		is_collapsed BOOLEAN NOT NULL DEFAULT 0,
		row_version TEXT NOT NULL,
		UNIQUE (board_id, status_id),
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE,
		FOREIGN KEY (status_id) REFERENCES statuses(id)
	);

	-- Indexes for efficient queries
	CREATE INDEX IF NOT EXISTS idx_work_items_project_status ON work_items(project_id, status_id);
	CREATE INDEX IF NOT EXISTS idx_work_items_epic ON work_items(epic_id);
	CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id);
	CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items(status_id);
	CREATE INDEX IF NOT EXISTS idx_epics_project ON epics(project_id);
	CREATE INDEX IF NOT EXISTS idx_epics_status ON epics(status_id);
	CREATE INDEX IF NOT EXISTS idx_board_columns_board ON board_columns(board_id, order_index);
`

// runMigrations creates the database schema and seeds default statuses
func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return err
	}
	return SeedDefaultStatuses(ctx, db)
}

// defaultStatuses are the five statuses required at system
// initialization. Users may add more later.
var defaultStatuses = []struct {
	name            string
	color           string
	orderIndex      int
	isDefaultForNew bool
	isCompleted     bool
	isCancelled     bool
}{
	{"BACKLOG", "#6B7280", 0, false, false, false},
	{"TODO", "#3B82F6", 1, true, false, false},
	{"IN PROGRESS", "#EAB308", 2, false, false, false},
	{"DONE", "#22C55E", 3, false, true, false},
	{"CANCELLED", "#EF4444", 4, false, false, true},
}

// SeedDefaultStatuses idempotently ensures the seed statuses exist.
// Repeated calls never duplicate: the insert is skipped when a status
// with the same name (case-insensitive) is already present.
func SeedDefaultStatuses(ctx context.Context, db DBTX) error {
	for _, s := range defaultStatuses {
		_, err := db.ExecContext(ctx, `
			INSERT INTO statuses (name, color, order_index, is_default_for_new, is_completed, is_cancelled, is_active)
			SELECT ?, ?, ?, ?, ?, ?, 1
			WHERE NOT EXISTS (SELECT 1 FROM statuses WHERE name = ? COLLATE NOCASE)`,
			s.name, s.color, s.orderIndex, s.isDefaultForNew, s.isCompleted, s.isCancelled, s.name,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
