package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thenoetrevino/plank/internal/models"
)

// WorkItemRepo handles pure data access for work items.
type WorkItemRepo struct {
	db DBTX
}

// NewWorkItemRepo creates a work item repository on db.
func NewWorkItemRepo(db DBTX) *WorkItemRepo {
	return &WorkItemRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *WorkItemRepo) WithTx(tx *sql.Tx) *WorkItemRepo {
	return &WorkItemRepo{db: tx}
}

const workItemColumns = `id, project_id, epic_id, parent_id, type_id, key, summary, description,
	assignee_id, reporter_id, status_id, priority, due_date, created_at, updated_at`

func scanWorkItem(row interface{ Scan(...any) error }) (*models.WorkItem, error) {
	w := &models.WorkItem{}
	err := row.Scan(
		&w.ID, &w.ProjectID, &w.EpicID, &w.ParentID, &w.Type, &w.Key,
		&w.Summary, &w.Description, &w.AssigneeID, &w.ReporterID,
		&w.StatusID, &w.Priority, &w.DueDate, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NextItemNumber claims the next work item sequence number for a
// project. Must run inside the same transaction as the insert so
// concurrent creations serialize on the counter row; the UNIQUE index
// on key is the backstop.
func (r *WorkItemRepo) NextItemNumber(ctx context.Context, projectID int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`UPDATE project_counters
		 SET next_item_number = next_item_number + 1
		 WHERE project_id = ?
		 RETURNING next_item_number - 1`,
		projectID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to claim item number for project %d: %w", projectID, err)
	}
	return n, nil
}

// InsertWorkItem persists a new work item and returns it with timestamps.
func (r *WorkItemRepo) InsertWorkItem(ctx context.Context, w *models.WorkItem) (*models.WorkItem, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO work_items (project_id, epic_id, parent_id, type_id, key, summary,
			description, assignee_id, reporter_id, status_id, priority, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ProjectID, w.EpicID, w.ParentID, w.Type, w.Key, w.Summary,
		w.Description, w.AssigneeID, w.ReporterID, w.StatusID, w.Priority, w.DueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create work item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetWorkItemByID(ctx, int(id))
}

// GetWorkItemByID retrieves a work item by ID.
func (r *WorkItemRepo) GetWorkItemByID(ctx context.Context, id int) (*models.WorkItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workItemColumns+` FROM work_items WHERE id = ?`, id)
	return scanWorkItem(row)
}

// GetWorkItemParentID returns the parent link for a work item, or nil.
// Used by the cycle check's ancestor walk.
func (r *WorkItemRepo) GetWorkItemParentID(ctx context.Context, id int) (*int, error) {
	var parentID *int
	err := r.db.QueryRowContext(ctx,
		`SELECT parent_id FROM work_items WHERE id = ?`, id).Scan(&parentID)
	if err != nil {
		return nil, err
	}
	return parentID, nil
}

// GetWorkItemDetail retrieves the full item view with joined names and
// children in two queries.
func (r *WorkItemRepo) GetWorkItemDetail(ctx context.Context, id int) (*models.WorkItemDetail, error) {
	d := &models.WorkItemDetail{}
	var epicKey, parentKey sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT w.id, w.project_id, w.epic_id, w.parent_id, w.type_id, w.key, w.summary,
			w.description, w.assignee_id, w.reporter_id, w.status_id, w.priority,
			w.due_date, w.created_at, w.updated_at,
			s.name, e.key, p.key
		 FROM work_items w
		 JOIN statuses s ON s.id = w.status_id
		 LEFT JOIN epics e ON e.id = w.epic_id
		 LEFT JOIN work_items p ON p.id = w.parent_id
		 WHERE w.id = ?`,
		id,
	).Scan(
		&d.ID, &d.ProjectID, &d.EpicID, &d.ParentID, &d.Type, &d.Key, &d.Summary,
		&d.Description, &d.AssigneeID, &d.ReporterID, &d.StatusID, &d.Priority,
		&d.DueDate, &d.CreatedAt, &d.UpdatedAt,
		&d.StatusName, &epicKey, &parentKey,
	)
	if err != nil {
		return nil, err
	}
	d.EpicKey = epicKey.String
	d.ParentKey = parentKey.String

	children, err := r.GetWorkItemChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Children = children
	return d, nil
}

// GetWorkItemChildren returns lightweight summaries of an item's
// direct children.
func (r *WorkItemRepo) GetWorkItemChildren(ctx context.Context, parentID int) ([]*models.WorkItemSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, summary, type_id, priority, status_id, epic_id, assignee_id, due_date
		 FROM work_items WHERE parent_id = ? ORDER BY id`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get children of work item %d: %w", parentID, err)
	}
	defer rows.Close()
	return scanWorkItemSummaries(rows)
}

// CountWorkItemChildren returns the number of direct children.
func (r *WorkItemRepo) CountWorkItemChildren(ctx context.Context, parentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_items WHERE parent_id = ?`, parentID).Scan(&count)
	return count, err
}

// GetWorkItemSummaries returns all of a project's work items matching
// the filter in a single query. Filters are conjunctive; the board
// engine partitions the result by status in memory.
func (r *WorkItemRepo) GetWorkItemSummaries(ctx context.Context, projectID int, filter models.BoardFilter) ([]*models.WorkItemSummary, error) {
	var sb strings.Builder
	sb.WriteString(
		`SELECT id, key, summary, type_id, priority, status_id, epic_id, assignee_id, due_date
		 FROM work_items WHERE project_id = ?`)
	args := []any{projectID}

	if len(filter.EpicIDs) > 0 {
		sb.WriteString(` AND epic_id IN (` + placeholders(len(filter.EpicIDs)) + `)`)
		for _, id := range filter.EpicIDs {
			args = append(args, id)
		}
	}
	if len(filter.AssigneeIDs) > 0 {
		sb.WriteString(` AND assignee_id IN (` + placeholders(len(filter.AssigneeIDs)) + `)`)
		for _, id := range filter.AssigneeIDs {
			args = append(args, id)
		}
	}
	if filter.Search != "" {
		sb.WriteString(` AND (summary LIKE ? ESCAPE '\' OR key LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}
	sb.WriteString(` ORDER BY priority DESC, id`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get work items for project %d: %w", projectID, err)
	}
	defer rows.Close()
	return scanWorkItemSummaries(rows)
}

func scanWorkItemSummaries(rows *sql.Rows) ([]*models.WorkItemSummary, error) {
	var items []*models.WorkItemSummary
	for rows.Next() {
		s := &models.WorkItemSummary{}
		if err := rows.Scan(
			&s.ID, &s.Key, &s.Summary, &s.Type, &s.Priority,
			&s.StatusID, &s.EpicID, &s.AssigneeID, &s.DueDate,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// escapeLike escapes LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// UpdateWorkItemFields updates summary, description, priority, and due
// date in one statement.
func (r *WorkItemRepo) UpdateWorkItemFields(ctx context.Context, id int, summary, description string, priority int, dueDate any) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE work_items
		 SET summary = ?, description = ?, priority = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		summary, description, priority, dueDate, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work item %d: %w", id, err)
	}
	return nil
}

// UpdateWorkItemStatus moves a work item to a new status.
func (r *WorkItemRepo) UpdateWorkItemStatus(ctx context.Context, id, statusID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE work_items
		 SET status_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		statusID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work item %d status: %w", id, err)
	}
	return nil
}

// UpdateWorkItemParent re-parents a work item (nil clears the link).
func (r *WorkItemRepo) UpdateWorkItemParent(ctx context.Context, id int, parentID *int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE work_items
		 SET parent_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		parentID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work item %d parent: %w", id, err)
	}
	return nil
}

// UpdateWorkItemEpic links or unlinks an epic.
func (r *WorkItemRepo) UpdateWorkItemEpic(ctx context.Context, id int, epicID *int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE work_items
		 SET epic_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		epicID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work item %d epic: %w", id, err)
	}
	return nil
}

// UpdateWorkItemAssignee sets or clears the assignee.
func (r *WorkItemRepo) UpdateWorkItemAssignee(ctx context.Context, id int, assigneeID *int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE work_items
		 SET assignee_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		assigneeID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update work item %d assignee: %w", id, err)
	}
	return nil
}

// DeleteWorkItem removes a work item. Callers must enforce the
// no-children guard first.
func (r *WorkItemRepo) DeleteWorkItem(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work item %d: %w", id, err)
	}
	return nil
}
