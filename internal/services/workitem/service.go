// Package workitem manages tasks, bugs, and subtasks: the leaves of the
// planning hierarchy. Every mutation re-validates placement rules
// before touching the store.
package workitem

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/models"
	"github.com/thenoetrevino/plank/internal/services/hierarchy"
	"github.com/thenoetrevino/plank/internal/services/status"
	"github.com/thenoetrevino/plank/internal/types"
)

// Service defines all work-item business operations
type Service interface {
	// Read operations
	GetWorkItem(ctx context.Context, id int) (*models.WorkItem, error)
	GetWorkItemDetail(ctx context.Context, id int) (*models.WorkItemDetail, error)
	ListWorkItems(ctx context.Context, projectID int, filter models.BoardFilter) ([]*models.WorkItemSummary, error)

	// Write operations
	CreateWorkItem(ctx context.Context, req CreateWorkItemRequest, reporterID int) (*models.WorkItem, error)
	UpdateWorkItem(ctx context.Context, req UpdateWorkItemRequest, actingUserID int) error
	UpdateWorkItemStatus(ctx context.Context, id, newStatusID, actingUserID int) error
	UpdateWorkItemParent(ctx context.Context, id int, parentID *int, actingUserID int) error
	UpdateWorkItemEpic(ctx context.Context, id int, epicID *int, actingUserID int) error
	AssignWorkItem(ctx context.Context, id int, assigneeID *int, actingUserID int) error
	DeleteWorkItem(ctx context.Context, id, actingUserID int) error
}

// CreateWorkItemRequest encapsulates data for creating a work item
type CreateWorkItemRequest struct {
	ProjectID   int
	Type        types.WorkItemType
	Summary     string
	Description string
	EpicID      *int
	ParentID    *int
	AssigneeID  *int
	StatusID    int // Optional: 0 means use the registry default
	Priority    int // Optional: 0 means medium
	DueDate     *time.Time
}

// UpdateWorkItemRequest encapsulates data for updating a work item.
// Pointer fields are optional - nil means don't update.
type UpdateWorkItemRequest struct {
	WorkItemID  int
	Summary     *string
	Description *string
	Priority    *int
	DueDate     **time.Time
}

// service implements Service interface
type service struct {
	db          *sql.DB
	repo        *database.WorkItemRepo
	projects    *database.ProjectRepo
	epics       *database.EpicRepo
	statuses    status.Service
	directory   identity.Directory
	eventClient events.Publisher
}

// NewService creates a new work item service
func NewService(db *sql.DB, statuses status.Service, directory identity.Directory, eventClient events.Publisher) Service {
	return &service{
		db:          db,
		repo:        database.NewWorkItemRepo(db),
		projects:    database.NewProjectRepo(db),
		epics:       database.NewEpicRepo(db),
		statuses:    statuses,
		directory:   directory,
		eventClient: eventClient,
	}
}

// GetWorkItem retrieves a work item by ID
func (s *service) GetWorkItem(ctx context.Context, id int) (*models.WorkItem, error) {
	if id <= 0 {
		return nil, ErrInvalidWorkItemID
	}
	w, err := s.repo.GetWorkItemByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkItemNotFound
	}
	return w, err
}

// GetWorkItemDetail retrieves the full item view with joined names,
// resolved assignee/reporter names, and direct children
func (s *service) GetWorkItemDetail(ctx context.Context, id int) (*models.WorkItemDetail, error) {
	if id <= 0 {
		return nil, ErrInvalidWorkItemID
	}
	d, err := s.repo.GetWorkItemDetail(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkItemNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.directory != nil {
		if d.AssigneeID != nil {
			if d.AssigneeName, err = s.directory.DisplayName(ctx, *d.AssigneeID); err != nil {
				return nil, fmt.Errorf("failed to resolve assignee name: %w", err)
			}
		}
		if d.ReporterName, err = s.directory.DisplayName(ctx, d.ReporterID); err != nil {
			return nil, fmt.Errorf("failed to resolve reporter name: %w", err)
		}
		for _, child := range d.Children {
			if child.AssigneeID == nil {
				continue
			}
			if child.AssigneeName, err = s.directory.DisplayName(ctx, *child.AssigneeID); err != nil {
				return nil, fmt.Errorf("failed to resolve assignee name: %w", err)
			}
		}
	}
	return d, nil
}

// ListWorkItems returns a project's items matching the filter
func (s *service) ListWorkItems(ctx context.Context, projectID int, filter models.BoardFilter) ([]*models.WorkItemSummary, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	return s.repo.GetWorkItemSummaries(ctx, projectID, filter)
}

// CreateWorkItem creates a work item with a project-scoped key. All
// placement rules run before the insert; the sequence claim and the
// insert share one transaction so keys never collide.
func (s *service) CreateWorkItem(ctx context.Context, req CreateWorkItemRequest, reporterID int) (*models.WorkItem, error) {
	if err := s.validateCreateWorkItem(req); err != nil {
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

	parent, err := s.loadParent(ctx, req.ParentID)
	if err != nil {
		return nil, err
	}
	if err := hierarchy.ValidateParentAssignment(req.Type, parent); err != nil {
		return nil, err
	}
	if err := hierarchy.ValidateSameProject(req.ProjectID, parent); err != nil {
		return nil, err
	}
	if parent != nil {
		if err := hierarchy.ValidateNoCycle(ctx, s.repo, 0, parent.ID); err != nil {
			return nil, err
		}
	}

	epic, err := s.loadEpic(ctx, req.EpicID)
	if err != nil {
		return nil, err
	}
	if err := hierarchy.ValidateEpicAssignment(req.ProjectID, epic); err != nil {
		return nil, err
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

	seq, err := repoTx.NextItemNumber(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	created, err := repoTx.InsertWorkItem(ctx, &models.WorkItem{
		ProjectID:   project.ID,
		EpicID:      req.EpicID,
		ParentID:    req.ParentID,
		Type:        req.Type,
		Key:         fmt.Sprintf("%s-%d", project.Key, seq),
		Summary:     strings.TrimSpace(req.Summary),
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		ReporterID:  reporterID,
		StatusID:    statusID,
		Priority:    priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishItemEvent(created.ProjectID, created.ID)
	return created, nil
}

// UpdateWorkItem updates an item's summary, description, priority, and
// due date
func (s *service) UpdateWorkItem(ctx context.Context, req UpdateWorkItemRequest, actingUserID int) error {
	current, err := s.GetWorkItem(ctx, req.WorkItemID)
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

	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}

	priority := current.Priority
	if req.Priority != nil {
		priority = *req.Priority
		if priority < 1 || priority > 5 {
			return ErrInvalidPriority
		}
	}

	dueDate := current.DueDate
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	if err := s.repo.UpdateWorkItemFields(ctx, current.ID, summary, description, priority, dueDate); err != nil {
		return err
	}

	s.publishItemEvent(current.ProjectID, current.ID)
	return nil
}

// UpdateWorkItemStatus moves a work item through the status state machine
func (s *service) UpdateWorkItemStatus(ctx context.Context, id, newStatusID, actingUserID int) error {
	current, err := s.GetWorkItem(ctx, id)
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

	if err := s.repo.UpdateWorkItemStatus(ctx, id, newStatusID); err != nil {
		return err
	}

	s.publishItemEvent(current.ProjectID, id)
	return nil
}

// UpdateWorkItemParent re-parents a work item after re-running every
// placement rule. A nil parentID clears the link, which only top-level
// types permit.
func (s *service) UpdateWorkItemParent(ctx context.Context, id int, parentID *int, actingUserID int) error {
	current, err := s.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}

	parent, err := s.loadParent(ctx, parentID)
	if err != nil {
		return err
	}
	if err := hierarchy.ValidateParentAssignment(current.Type, parent); err != nil {
		return err
	}
	if err := hierarchy.ValidateSameProject(current.ProjectID, parent); err != nil {
		return err
	}
	if parent != nil {
		if err := hierarchy.ValidateNoCycle(ctx, s.repo, current.ID, parent.ID); err != nil {
			return err
		}
	}

	if err := s.repo.UpdateWorkItemParent(ctx, id, parentID); err != nil {
		return err
	}

	s.publishItemEvent(current.ProjectID, id)
	return nil
}

// UpdateWorkItemEpic links a work item to an epic in the same project,
// or clears the link
func (s *service) UpdateWorkItemEpic(ctx context.Context, id int, epicID *int, actingUserID int) error {
	current, err := s.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}

	epic, err := s.loadEpic(ctx, epicID)
	if err != nil {
		return err
	}
	if err := hierarchy.ValidateEpicAssignment(current.ProjectID, epic); err != nil {
		return err
	}

	if err := s.repo.UpdateWorkItemEpic(ctx, id, epicID); err != nil {
		return err
	}

	s.publishItemEvent(current.ProjectID, id)
	return nil
}

// AssignWorkItem sets or clears the assignee
func (s *service) AssignWorkItem(ctx context.Context, id int, assigneeID *int, actingUserID int) error {
	current, err := s.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkAssignee(ctx, assigneeID); err != nil {
		return err
	}

	if err := s.repo.UpdateWorkItemAssignee(ctx, id, assigneeID); err != nil {
		return err
	}

	s.publishItemEvent(current.ProjectID, id)
	return nil
}

// DeleteWorkItem removes a work item that has no subtasks
func (s *service) DeleteWorkItem(ctx context.Context, id, actingUserID int) error {
	current, err := s.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.repo.CountWorkItemChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if children > 0 {
		return ErrHasChildren
	}

	if err := s.repo.DeleteWorkItem(ctx, id); err != nil {
		return err
	}

	s.publishItemEvent(current.ProjectID, id)
	return nil
}

func (s *service) validateCreateWorkItem(req CreateWorkItemRequest) error {
	if req.ProjectID <= 0 {
		return ErrInvalidProjectID
	}
	if !req.Type.Valid() {
		return ErrInvalidType
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

// loadParent resolves an optional parent reference
func (s *service) loadParent(ctx context.Context, parentID *int) (*models.WorkItem, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := s.repo.GetWorkItemByID(ctx, *parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParentNotFound
	}
	return parent, err
}

// loadEpic resolves an optional epic reference
func (s *service) loadEpic(ctx context.Context, epicID *int) (*models.Epic, error) {
	if epicID == nil {
		return nil, nil
	}
	epic, err := s.epics.GetEpicByID(ctx, *epicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEpicNotFound
	}
	return epic, err
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

// publishItemEvent publishes a work item change (if an event client exists)
func (s *service) publishItemEvent(projectID, itemID int) {
	if s.eventClient == nil {
		return
	}
	s.eventClient.Publish(events.Event{Type: events.TypeWorkItemChanged, ProjectID: projectID, EntityID: itemID})
}
