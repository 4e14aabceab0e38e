// Package board projects a project's work items onto kanban columns.
// Columns carry opaque row-version tokens; writes that echo a stale
// token are rejected so concurrent edits never silently overwrite each
// other.
package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/services/status"
	"github.com/thenoetrevino/plank/internal/services/workitem"
)

// Service defines all board operations
type Service interface {
	// Read operations
	GetBoard(ctx context.Context, projectID int) (*models.Board, error)
	GetBoardView(ctx context.Context, projectID int, filter models.BoardFilter) (*models.BoardView, error)

	// Write operations
	CreateBoard(ctx context.Context, projectID int, name, description string) (*models.Board, error)
	UpdateColumn(ctx context.Context, req UpdateColumnRequest) (*models.BoardColumn, error)
	ReorderColumns(ctx context.Context, boardID int, orderedColumnIDs []int) error
	MoveWorkItem(ctx context.Context, projectID, itemID, toStatusID, actingUserID int) error
}

// UpdateColumnRequest carries a column write plus the row version the
// caller read. The write is rejected if the version no longer matches,
// or if the column does not belong to BoardID.
type UpdateColumnRequest struct {
	BoardID     int
	ColumnID    int
	WIPLimit    *int
	IsCollapsed bool
	RowVersion  string
}

// service implements Service interface
type service struct {
	db          *sql.DB
	repo        *database.BoardRepo
	projects    *database.ProjectRepo
	statuses    status.Service
	items       workitem.Service
	eventClient events.Publisher
}

// NewService creates a new board service
func NewService(db *sql.DB, statuses status.Service, items workitem.Service, eventClient events.Publisher) Service {
	return &service{
		db:          db,
		repo:        database.NewBoardRepo(db),
		projects:    database.NewProjectRepo(db),
		statuses:    statuses,
		items:       items,
		eventClient: eventClient,
	}
}

// GetBoard retrieves the board for a project
func (s *service) GetBoard(ctx context.Context, projectID int) (*models.Board, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	b, err := s.repo.GetBoardByProject(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	return b, err
}

// CreateBoard creates a project's board with one column per active
// status, ordered by the registry's order. The unique index on
// project_id backstops the one-board rule under concurrent creates.
func (s *service) CreateBoard(ctx context.Context, projectID int, name, description string) (*models.Board, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	if _, err := s.projects.GetProjectByID(ctx, projectID); errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	} else if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBoardByProject(ctx, projectID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for existing board: %w", err)
	}
	if existing != nil {
		return nil, ErrBoardExists
	}

	statuses, err := s.statuses.ListStatuses(ctx, true)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	repoTx := s.repo.WithTx(tx)

	created, err := repoTx.CreateBoard(ctx, projectID, name, description)
	if err != nil {
		return nil, err
	}
	for i, st := range statuses {
		if err := repoTx.InsertBoardColumn(ctx, created.ID, st.ID, i, uuid.NewString()); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishBoardEvent(projectID, created.ID)
	return created, nil
}

// GetBoardView returns the full board projection. Statuses added to
// the registry after board creation get columns appended on the fly,
// so the view always covers every active status. Items come from one
// bulk query and are partitioned across columns in memory.
func (s *service) GetBoardView(ctx context.Context, projectID int, filter models.BoardFilter) (*models.BoardView, error) {
	b, err := s.GetBoard(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.syncColumns(ctx, b.ID); err != nil {
		return nil, err
	}
	columns, err := s.repo.GetBoardColumns(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListWorkItems(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[int][]*models.WorkItemSummary)
	for _, item := range items {
		byStatus[item.StatusID] = append(byStatus[item.StatusID], item)
	}

	view := &models.BoardView{Board: *b}
	for _, col := range columns {
		view.Columns = append(view.Columns, &models.BoardColumnView{
			BoardColumn: *col,
			Items:       byStatus[col.StatusID],
		})
	}
	return view, nil
}

// syncColumns appends a column for every active status the board does
// not map yet. Existing columns and their order are left alone.
func (s *service) syncColumns(ctx context.Context, boardID int) error {
	statuses, err := s.statuses.ListStatuses(ctx, true)
	if err != nil {
		return err
	}

	next, err := s.repo.MaxColumnOrderIndex(ctx, boardID)
	if err != nil {
		return fmt.Errorf("failed to read column order: %w", err)
	}
	next++

	for _, st := range statuses {
		mapped, err := s.repo.HasColumnForStatus(ctx, boardID, st.ID)
		if err != nil {
			return err
		}
		if mapped {
			continue
		}
		if err := s.repo.InsertBoardColumn(ctx, boardID, st.ID, next, uuid.NewString()); err != nil {
			return err
		}
		next++
	}
	return nil
}

// UpdateColumn writes a column's WIP limit and collapsed state. The
// caller must echo the row version it read; a mismatch means someone
// else committed first and the write is rejected with a conflict.
func (s *service) UpdateColumn(ctx context.Context, req UpdateColumnRequest) (*models.BoardColumn, error) {
	if req.BoardID <= 0 {
		return nil, ErrInvalidBoardID
	}
	if req.ColumnID <= 0 {
		return nil, ErrInvalidColumnID
	}
	if req.WIPLimit != nil && *req.WIPLimit < 1 {
		return nil, ErrInvalidWIPLimit
	}

	current, err := s.repo.GetBoardColumnByID(ctx, req.ColumnID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrColumnNotFound
	}
	if err != nil {
		return nil, err
	}
	if current.BoardID != req.BoardID {
		return nil, ErrColumnNotFound
	}

	affected, err := s.repo.UpdateBoardColumnGuarded(ctx, req.ColumnID,
		req.WIPLimit, req.IsCollapsed, req.RowVersion, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrColumnStale
	}

	updated, err := s.repo.GetBoardColumnByID(ctx, req.ColumnID)
	if err != nil {
		return nil, err
	}

	board, err := s.repo.GetBoardByID(ctx, current.BoardID)
	if err != nil {
		return nil, err
	}
	s.publishBoardEvent(board.ProjectID, board.ID)
	return updated, nil
}

// ReorderColumns rewrites the board's column order in one transaction.
// The caller must list every column of the board exactly once; every
// column's row version rotates so concurrent single-column edits fail
// their version check instead of landing on a moved column.
func (s *service) ReorderColumns(ctx context.Context, boardID int, orderedColumnIDs []int) error {
	if boardID <= 0 {
		return ErrInvalidBoardID
	}

	board, err := s.repo.GetBoardByID(ctx, boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBoardNotFound
	}
	if err != nil {
		return err
	}

	columns, err := s.repo.GetBoardColumns(ctx, boardID)
	if err != nil {
		return err
	}
	if len(orderedColumnIDs) != len(columns) {
		return ErrColumnSetMismatch
	}
	known := make(map[int]bool, len(columns))
	for _, c := range columns {
		known[c.ID] = true
	}
	seen := make(map[int]bool, len(orderedColumnIDs))
	for _, id := range orderedColumnIDs {
		if !known[id] || seen[id] {
			return ErrColumnSetMismatch
		}
		seen[id] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	repoTx := s.repo.WithTx(tx)
	for i, id := range orderedColumnIDs {
		if err := repoTx.UpdateBoardColumnOrder(ctx, id, i, uuid.NewString()); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishBoardEvent(board.ProjectID, board.ID)
	return nil
}

// MoveWorkItem drags an item to the column for toStatusID. The item
// must belong to projectID, the project's board must map the status,
// and the status service's transition rules then decide whether the
// move is legal. WIP limits are advisory and never block a move.
func (s *service) MoveWorkItem(ctx context.Context, projectID, itemID, toStatusID, actingUserID int) error {
	if projectID <= 0 {
		return ErrInvalidProjectID
	}

	item, err := s.items.GetWorkItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.ProjectID != projectID {
		return workitem.ErrWorkItemNotFound
	}

	b, err := s.GetBoard(ctx, projectID)
	if err != nil {
		return err
	}
	mapped, err := s.repo.HasColumnForStatus(ctx, b.ID, toStatusID)
	if err != nil {
		return err
	}
	if !mapped {
		return ErrNoColumnForStatus
	}

	if err := s.items.UpdateWorkItemStatus(ctx, itemID, toStatusID, actingUserID); err != nil {
		return err
	}

	s.publishBoardEvent(item.ProjectID, b.ID)
	return nil
}

// publishBoardEvent publishes a board change (if an event client exists)
func (s *service) publishBoardEvent(projectID, boardID int) {
	if s.eventClient == nil {
		return
	}
	s.eventClient.Publish(events.Event{Type: events.TypeBoardChanged, ProjectID: projectID, EntityID: boardID})
}
