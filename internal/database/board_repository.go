package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/plank/internal/models"
)

// BoardRepo handles pure data access for boards and their columns.
type BoardRepo struct {
	db DBTX
}

// NewBoardRepo creates a board repository on db.
func NewBoardRepo(db DBTX) *BoardRepo {
	return &BoardRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *BoardRepo) WithTx(tx *sql.Tx) *BoardRepo {
	return &BoardRepo{db: tx}
}

// CreateBoard inserts the board row for a project. The UNIQUE index on
// project_id enforces the one-board-per-project invariant at the store.
func (r *BoardRepo) CreateBoard(ctx context.Context, projectID int, name, description string) (*models.Board, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (project_id, name, description) VALUES (?, ?, ?)`,
		projectID, name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetBoardByID(ctx, int(id))
}

// GetBoardByID retrieves a board by ID.
func (r *BoardRepo) GetBoardByID(ctx context.Context, id int) (*models.Board, error) {
	b := &models.Board{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, description, created_at FROM boards WHERE id = ?`, id,
	).Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBoardByProject retrieves the board for a project, or sql.ErrNoRows.
func (r *BoardRepo) GetBoardByProject(ctx context.Context, projectID int) (*models.Board, error) {
	b := &models.Board{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, description, created_at FROM boards WHERE project_id = ?`,
		projectID,
	).Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// InsertBoardColumn adds a column mapping a status onto a board.
func (r *BoardRepo) InsertBoardColumn(ctx context.Context, boardID, statusID, orderIndex int, rowVersion string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO board_columns (board_id, status_id, order_index, row_version)
		 VALUES (?, ?, ?, ?)`,
		boardID, statusID, orderIndex, rowVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to create board column: %w", err)
	}
	return nil
}

const boardColumnSelect = `
	SELECT c.id, c.board_id, c.status_id, s.name, c.order_index, c.wip_limit, c.is_collapsed, c.row_version
	FROM board_columns c
	JOIN statuses s ON s.id = c.status_id`

func scanBoardColumn(row interface{ Scan(...any) error }) (*models.BoardColumn, error) {
	c := &models.BoardColumn{}
	err := row.Scan(
		&c.ID, &c.BoardID, &c.StatusID, &c.Name,
		&c.OrderIndex, &c.WIPLimit, &c.IsCollapsed, &c.RowVersion,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetBoardColumns retrieves a board's columns ordered by position.
func (r *BoardRepo) GetBoardColumns(ctx context.Context, boardID int) ([]*models.BoardColumn, error) {
	rows, err := r.db.QueryContext(ctx,
		boardColumnSelect+` WHERE c.board_id = ? ORDER BY c.order_index, c.id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for board %d: %w", boardID, err)
	}
	defer rows.Close()

	var columns []*models.BoardColumn
	for rows.Next() {
		c, err := scanBoardColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// GetBoardColumnByID retrieves a single column.
func (r *BoardRepo) GetBoardColumnByID(ctx context.Context, id int) (*models.BoardColumn, error) {
	row := r.db.QueryRowContext(ctx, boardColumnSelect+` WHERE c.id = ?`, id)
	return scanBoardColumn(row)
}

// HasColumnForStatus reports whether the board maps statusID to a column.
func (r *BoardRepo) HasColumnForStatus(ctx context.Context, boardID, statusID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM board_columns WHERE board_id = ? AND status_id = ?)`,
		boardID, statusID,
	).Scan(&exists)
	return exists, err
}

// MaxColumnOrderIndex returns the highest order index on the board, or
// -1 when the board has no columns.
func (r *BoardRepo) MaxColumnOrderIndex(ctx context.Context, boardID int) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), -1) FROM board_columns WHERE board_id = ?`,
		boardID,
	).Scan(&max)
	return max, err
}

// UpdateBoardColumnGuarded writes WIP limit and collapsed state only if
// the stored row version still matches. Returns the number of rows
// written: zero means the caller's read was stale (or the column is
// gone) and the write was rejected.
func (r *BoardRepo) UpdateBoardColumnGuarded(ctx context.Context, id int, wipLimit *int, isCollapsed bool, expectedVersion, newVersion string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE board_columns
		 SET wip_limit = ?, is_collapsed = ?, row_version = ?
		 WHERE id = ? AND row_version = ?`,
		wipLimit, isCollapsed, newVersion, id, expectedVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update board column %d: %w", id, err)
	}
	return result.RowsAffected()
}

// UpdateBoardColumnOrder rewrites a column's position and rotates its
// row version. Used inside the reorder transaction.
func (r *BoardRepo) UpdateBoardColumnOrder(ctx context.Context, id, orderIndex int, newVersion string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE board_columns SET order_index = ?, row_version = ? WHERE id = ?`,
		orderIndex, newVersion, id,
	)
	if err != nil {
		return fmt.Errorf("failed to reorder board column %d: %w", id, err)
	}
	return nil
}
