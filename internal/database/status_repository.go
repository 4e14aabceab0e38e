package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/plank/internal/models"
)

// StatusRepo handles pure data access for statuses and transition rules.
type StatusRepo struct {
	db DBTX
}

// NewStatusRepo creates a status repository on db.
func NewStatusRepo(db DBTX) *StatusRepo {
	return &StatusRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *StatusRepo) WithTx(tx *sql.Tx) *StatusRepo {
	return &StatusRepo{db: tx}
}

const statusColumns = `id, name, color, order_index, is_default_for_new, is_completed, is_cancelled, is_active, created_at`

func scanStatus(row interface{ Scan(...any) error }) (*models.Status, error) {
	s := &models.Status{}
	err := row.Scan(
		&s.ID, &s.Name, &s.Color, &s.OrderIndex,
		&s.IsDefaultForNew, &s.IsCompleted, &s.IsCancelled, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateStatus inserts a new status. The unique index on name (NOCASE)
// rejects case-insensitive duplicates.
func (r *StatusRepo) CreateStatus(ctx context.Context, name, color string, orderIndex int, isDefaultForNew, isCompleted, isCancelled bool) (*models.Status, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO statuses (name, color, order_index, is_default_for_new, is_completed, is_cancelled)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, color, orderIndex, isDefaultForNew, isCompleted, isCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create status: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetStatusByID(ctx, int(id))
}

// UpdateStatus updates a status's name, color, order and flags.
func (r *StatusRepo) UpdateStatus(ctx context.Context, s *models.Status) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE statuses
		 SET name = ?, color = ?, order_index = ?, is_default_for_new = ?,
		     is_completed = ?, is_cancelled = ?, is_active = ?
		 WHERE id = ?`,
		s.Name, s.Color, s.OrderIndex, s.IsDefaultForNew,
		s.IsCompleted, s.IsCancelled, s.IsActive, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status %d: %w", s.ID, err)
	}
	return nil
}

// GetStatusByID retrieves a status by ID.
func (r *StatusRepo) GetStatusByID(ctx context.Context, id int) (*models.Status, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE id = ?`, id)
	return scanStatus(row)
}

// GetStatusByName retrieves a status by name, case-insensitively.
func (r *StatusRepo) GetStatusByName(ctx context.Context, name string) (*models.Status, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE name = ? COLLATE NOCASE`, name)
	return scanStatus(row)
}

// GetAllStatuses retrieves statuses ordered by order index. When
// activeOnly is set, inactive statuses are excluded.
func (r *StatusRepo) GetAllStatuses(ctx context.Context, activeOnly bool) ([]*models.Status, error) {
	query := `SELECT ` + statusColumns + ` FROM statuses`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY order_index, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*models.Status
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// GetDefaultStatus returns the status flagged as default for new items.
func (r *StatusRepo) GetDefaultStatus(ctx context.Context) (*models.Status, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		 WHERE is_default_for_new = 1 AND is_active = 1
		 ORDER BY order_index LIMIT 1`)
	return scanStatus(row)
}

// DeleteStatus removes a status. Callers must check references first.
func (r *StatusRepo) DeleteStatus(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete status %d: %w", id, err)
	}
	return nil
}

// CountStatusReferences returns how many epics, work items, and board
// columns currently reference the status.
func (r *StatusRepo) CountStatusReferences(ctx context.Context, statusID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM epics WHERE status_id = ?) +
			(SELECT COUNT(*) FROM work_items WHERE status_id = ?) +
			(SELECT COUNT(*) FROM board_columns WHERE status_id = ?)`,
		statusID, statusID, statusID,
	).Scan(&count)
	return count, err
}

// UpsertTransition creates or replaces the rule for the ordered pair.
func (r *StatusRepo) UpsertTransition(ctx context.Context, fromID, toID int, isAllowed bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO status_transitions (from_status_id, to_status_id, is_allowed)
		 VALUES (?, ?, ?)
		 ON CONFLICT (from_status_id, to_status_id) DO UPDATE SET is_allowed = excluded.is_allowed`,
		fromID, toID, isAllowed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transition %d->%d: %w", fromID, toID, err)
	}
	return nil
}

// GetTransition returns the explicit rule for the pair, or nil when no
// rule exists (which means the transition is allowed by default).
func (r *StatusRepo) GetTransition(ctx context.Context, fromID, toID int) (*models.StatusTransition, error) {
	t := &models.StatusTransition{}
	err := r.db.QueryRowContext(ctx,
		`SELECT from_status_id, to_status_id, is_allowed
		 FROM status_transitions
		 WHERE from_status_id = ? AND to_status_id = ?`,
		fromID, toID,
	).Scan(&t.FromStatusID, &t.ToStatusID, &t.IsAllowed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTransitionsFrom returns all explicit rules leaving fromID.
func (r *StatusRepo) GetTransitionsFrom(ctx context.Context, fromID int) ([]*models.StatusTransition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT from_status_id, to_status_id, is_allowed
		 FROM status_transitions WHERE from_status_id = ?`,
		fromID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions from %d: %w", fromID, err)
	}
	defer rows.Close()

	var transitions []*models.StatusTransition
	for rows.Next() {
		t := &models.StatusTransition{}
		if err := rows.Scan(&t.FromStatusID, &t.ToStatusID, &t.IsAllowed); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}
