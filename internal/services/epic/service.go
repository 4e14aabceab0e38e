// Package epic manages mid-level groupings of work items within a
// project. Epic keys are derived from the project key and a serialized
// per-project sequence.
package epic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/services/status"
	"github.com/thenoetrevino/plank/internal/types"
)

// Service defines all epic-related business operations
type Service interface {
	// Read operations
	GetEpic(ctx context.Context, id int) (*models.Epic, error)
	ListEpics(ctx context.Context, projectID int) ([]*models.Epic, error)
	ListEpicSummaries(ctx context.Context, projectID int) ([]*models.EpicSummary, error)

	// Write operations
	CreateEpic(ctx context.Context, req CreateEpicRequest, actingUserID int) (*models.Epic, error)
	UpdateEpic(ctx context.Context, req UpdateEpicRequest, actingUserID int) error
	UpdateEpicStatus(ctx context.Context, id, newStatusID, actingUserID int) error
	DeleteEpic(ctx context.Context, id, actingUserID int) error
}

// CreateEpicRequest encapsulates data for creating an epic
type CreateEpicRequest struct {
	ProjectID  int
	Summary    string
	AssigneeID *int
	StatusID   int // Optional: 0 means use the registry default
	Priority   int // Optional: 0 means medium
}

// UpdateEpicRequest encapsulates data for updating an epic.
// Pointer fields are optional - nil means don't update.
type UpdateEpicRequest struct {
	EpicID     int
	Summary    *string
	AssigneeID **int
	Priority   *int
}

// service implements Service interface
type service struct {
	db          *sql.DB
	repo        *database.EpicRepo
	projects    *database.ProjectRepo
	statuses    status.Service
	directory   identity.Directory
	eventClient events.Publisher
}

// NewService creates a new epic service
func NewService(db *sql.DB, statuses status.Service, directory identity.Directory, eventClient events.Publisher) Service {
	return &service{
		db:          db,
		repo:        database.NewEpicRepo(db),
		projects:    database.NewProjectRepo(db),
		statuses:    statuses,
		directory:   directory,
		eventClient: eventClient,
	}
}

// GetEpic retrieves an epic by ID
func (s *service) GetEpic(ctx context.Context, id int) (*models.Epic, error) {
	if id <= 0 {
		return nil, ErrInvalidEpicID
	}
	e, err := s.repo.GetEpicByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEpicNotFound
	}
	return e, err
}

// ListEpics retrieves all epics for a project
func (s *service) ListEpics(ctx context.Context, projectID int) ([]*models.Epic, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	return s.repo.GetEpicsByProject(ctx, projectID)
}

// ListEpicSummaries retrieves a project's epics with progress counts
func (s *service) ListEpicSummaries(ctx context.Context, projectID int) ([]*models.EpicSummary, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	return s.repo.ListEpicSummaries(ctx, projectID)
}

// CreateEpic creates an epic with a project-scoped key. The sequence
// claim and the insert share one transaction so concurrent creations
// cannot collide on a key.
func (s *service) CreateEpic(ctx context.Context, req CreateEpicRequest, actingUserID int) (*models.Epic, error) {
	if err := s.validateCreateEpic(req); err != nil {
		return nil, err
	}

	project, err := s.projects.GetProjectByID(ctx, req.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if !project.IsActive {
		return nil, ErrProjectInactive
	}

	if err := s.checkAssignee(ctx, req.AssigneeID); err != nil {
		return nil, err
	}

	statusID := req.StatusID
	if statusID == 0 {
		def, err := s.statuses.GetDefaultStatus(ctx)
		if err != nil {
			return nil, err
		}
		statusID = def.ID
	} else if _, err := s.statuses.GetStatus(ctx, statusID); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == 0 {
		priority = types.PriorityMedium
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

	seq, err := repoTx.NextEpicNumber(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	created, err := repoTx.InsertEpic(ctx, &models.Epic{
		ProjectID:  project.ID,
		Key:        fmt.Sprintf("%s-E%d", project.Key, seq),
		Summary:    strings.TrimSpace(req.Summary),
		AssigneeID: req.AssigneeID,
		StatusID:   statusID,
		Priority:   priority,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishEpicEvent(created.ProjectID, created.ID)
	return created, nil
}

// UpdateEpic updates an epic's summary, assignee, and priority
func (s *service) UpdateEpic(ctx context.Context, req UpdateEpicRequest, actingUserID int) error {
	current, err := s.GetEpic(ctx, req.EpicID)
	if err != nil {
		return err
	}

	summary := current.Summary
	if req.Summary != nil {
		summary = strings.TrimSpace(*req.Summary)
		if summary == "" {
			return ErrEmptySummary
		}
		if len(summary) > 255 {
			return ErrSummaryTooLong
		}
	}

	assignee := current.AssigneeID
	if req.AssigneeID != nil {
		assignee = *req.AssigneeID
		if err := s.checkAssignee(ctx, assignee); err != nil {
			return err
		}
	}

	priority := current.Priority
	if req.Priority != nil {
		priority = *req.Priority
		if priority < 1 || priority > 5 {
			return ErrInvalidPriority
		}
	}

	if err := s.repo.UpdateEpic(ctx, current.ID, summary, assignee, priority); err != nil {
		return err
	}

	s.publishEpicEvent(current.ProjectID, current.ID)
	return nil
}

// UpdateEpicStatus moves an epic through the status state machine
func (s *service) UpdateEpicStatus(ctx context.Context, id, newStatusID, actingUserID int) error {
	current, err := s.GetEpic(ctx, id)
	if err != nil {
		return err
	}
	target, err := s.statuses.GetStatus(ctx, newStatusID)
	if err != nil {
		return err
	}

	allowed, err := s.statuses.ValidateTransition(ctx, current.StatusID, newStatusID)
	if err != nil {
		return err
	}
	if !allowed {
		from, err := s.statuses.GetStatus(ctx, current.StatusID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %q to %q", ErrTransitionDenied, from.Name, target.Name)
	}

	if err := s.repo.UpdateEpicStatus(ctx, id, newStatusID); err != nil {
		return err
	}

	s.publishEpicEvent(current.ProjectID, id)
	return nil
}

// DeleteEpic removes an epic that no work items reference. Only the
// project owner may delete.
func (s *service) DeleteEpic(ctx context.Context, id, actingUserID int) error {
	current, err := s.GetEpic(ctx, id)
	if err != nil {
		return err
	}

	owner, err := s.projects.IsProjectOwner(ctx, current.ProjectID, actingUserID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotProjectOwner
	}

	linked, err := s.repo.CountEpicWorkItems(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count linked work items: %w", err)
	}
	if linked > 0 {
		return ErrEpicHasWorkItems
	}

	if err := s.repo.DeleteEpic(ctx, id); err != nil {
		return err
	}

	s.publishEpicEvent(current.ProjectID, id)
	return nil
}

func (s *service) validateCreateEpic(req CreateEpicRequest) error {
	if req.ProjectID <= 0 {
		return ErrInvalidProjectID
	}
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		return ErrEmptySummary
	}
	if len(summary) > 255 {
		return ErrSummaryTooLong
	}
	if req.Priority != 0 && (req.Priority < 1 || req.Priority > 5) {
		return ErrInvalidPriority
	}
	return nil
}

// checkAssignee validates the assignee against the user directory
func (s *service) checkAssignee(ctx context.Context, assigneeID *int) error {
	if assigneeID == nil || s.directory == nil {
		return nil
	}
	exists, err := s.directory.UserExists(ctx, *assigneeID)
	if err != nil {
		return fmt.Errorf("failed to look up assignee: %w", err)
	}
	if !exists {
		return ErrAssigneeNotFound
	}
	return nil
}

// publishEpicEvent publishes an epic change (if an event client exists)
func (s *service) publishEpicEvent(projectID, epicID int) {
	if s.eventClient == nil {
		return
	}
	s.eventClient.Publish(events.Event{Type: events.TypeEpicChanged, ProjectID: projectID, EntityID: epicID})
}
