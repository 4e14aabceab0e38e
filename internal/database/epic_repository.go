package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/plank/internal/models"
)

// EpicRepo handles pure data access for epics.
type EpicRepo struct {
	db DBTX
}

// NewEpicRepo creates an epic repository on db.
func NewEpicRepo(db DBTX) *EpicRepo {
	return &EpicRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *EpicRepo) WithTx(tx *sql.Tx) *EpicRepo {
	return &EpicRepo{db: tx}
}

const epicColumns = `id, project_id, key, summary, assignee_id, status_id, priority, created_at, updated_at`

func scanEpic(row interface{ Scan(...any) error }) (*models.Epic, error) {
	e := &models.Epic{}
	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Key, &e.Summary,
		&e.AssigneeID, &e.StatusID, &e.Priority, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// NextEpicNumber claims the next epic sequence number for a project.
// The caller must run this inside the same transaction as the insert so
// concurrent creations serialize on the counter row.
func (r *EpicRepo) NextEpicNumber(ctx context.Context, projectID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`UPDATE project_counters
		 SET next_epic_number = next_epic_number + 1
		 WHERE project_id = ?
		 RETURNING next_epic_number - 1`,
		projectID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to claim epic number for project %d: %w", projectID, err)
	}
	return n, nil
}

// InsertEpic persists a new epic and returns it with timestamps.
func (r *EpicRepo) InsertEpic(ctx context.Context, e *models.Epic) (*models.Epic, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO epics (project_id, key, summary, assignee_id, status_id, priority)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ProjectID, e.Key, e.Summary, e.AssigneeID, e.StatusID, e.Priority,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create epic: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetEpicByID(ctx, int(id))
}

// GetEpicByID retrieves an epic by ID.
func (r *EpicRepo) GetEpicByID(ctx context.Context, id int) (*models.Epic, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+epicColumns+` FROM epics WHERE id = ?`, id)
	return scanEpic(row)
}

// GetEpicsByProject retrieves all epics for a project ordered by key.
func (r *EpicRepo) GetEpicsByProject(ctx context.Context, projectID int) ([]*models.Epic, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+epicColumns+` FROM epics WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get epics for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var epics []*models.Epic
	for rows.Next() {
		e, err := scanEpic(rows)
		if err != nil {
			return nil, err
		}
		epics = append(epics, e)
	}
	return epics, rows.Err()
}

// UpdateEpic updates an epic's summary, assignee, and priority.
func (r *EpicRepo) UpdateEpic(ctx context.Context, id int, summary string, assigneeID *int, priority int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE epics
		 SET summary = ?, assignee_id = ?, priority = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		summary, assigneeID, priority, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update epic %d: %w", id, err)
	}
	return nil
}

// UpdateEpicStatus moves an epic to a new status.
func (r *EpicRepo) UpdateEpicStatus(ctx context.Context, id, statusID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE epics
		 SET status_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		statusID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update epic %d status: %w", id, err)
	}
	return nil
}

// DeleteEpic removes an epic. Callers must enforce the no-linked-items
// guard first.
func (r *EpicRepo) DeleteEpic(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM epics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete epic %d: %w", id, err)
	}
	return nil
}

// CountEpicWorkItems returns the number of work items linked to an epic.
func (r *EpicRepo) CountEpicWorkItems(ctx context.Context, epicID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_items WHERE epic_id = ?`, epicID).Scan(&count)
	return count, err
}

// ListEpicSummaries returns a project's epics with status names and
// work item progress counts. Item counts come from one grouped query
// joined in memory.
func (r *EpicRepo) ListEpicSummaries(ctx context.Context, projectID int) ([]*models.EpicSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.key, e.summary, e.status_id, s.name, e.priority
		 FROM epics e
		 JOIN statuses s ON s.id = e.status_id
		 WHERE e.project_id = ?
		 ORDER BY e.id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list epics for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var summaries []*models.EpicSummary
	byID := make(map[int]*models.EpicSummary)
	for rows.Next() {
		s := &models.EpicSummary{}
		if err := rows.Scan(&s.ID, &s.Key, &s.Summary, &s.StatusID, &s.StatusName, &s.Priority); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	countRows, err := r.db.QueryContext(ctx,
		`SELECT w.epic_id, COUNT(*), SUM(s.is_completed)
		 FROM work_items w
		 JOIN statuses s ON s.id = w.status_id
		 WHERE w.project_id = ? AND w.epic_id IS NOT NULL
		 GROUP BY w.epic_id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count epic work items: %w", err)
	}
	defer countRows.Close()

	for countRows.Next() {
		var epicID, total, done int
		if err := countRows.Scan(&epicID, &total, &done); err != nil {
			return nil, err
		}
		if s, ok := byID[epicID]; ok {
			s.ItemCount = total
			s.DoneItemCount = done
		}
	}
	return summaries, countRows.Err()
}
