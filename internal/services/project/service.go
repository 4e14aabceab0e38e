// Package project manages the top-level containers for epics and work
// items. Project keys are immutable after creation and seed the keys of
// everything underneath.
package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/models"
)

// Service defines all project-related business operations
type Service interface {
	// Read operations
	GetProject(ctx context.Context, id int) (*models.Project, error)
	GetProjectByKey(ctx context.Context, key string) (*models.Project, error)
	ListProjectSummaries(ctx context.Context) ([]*models.ProjectSummary, error)
	IsProjectOwner(ctx context.Context, projectID, userID int) (bool, error)

	// Write operations
	CreateProject(ctx context.Context, req CreateProjectRequest, ownerID int) (*models.Project, error)
	SetArchived(ctx context.Context, id int, archived bool, actingUserID int) error
	DeleteProject(ctx context.Context, id, actingUserID int) error
}

// CreateProjectRequest encapsulates data for creating a project
type CreateProjectRequest struct {
	Key         string
	Name        string
	Description string
}

// keyPattern constrains project keys after uppercasing.
var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// service implements Service interface
type service struct {
	db          *sql.DB
	repo        *database.ProjectRepo
	directory   identity.Directory
	eventClient events.Publisher
}

// NewService creates a new project service
func NewService(db *sql.DB, directory identity.Directory, eventClient events.Publisher) Service {
	return &service{
		db:          db,
		repo:        database.NewProjectRepo(db),
		directory:   directory,
		eventClient: eventClient,
	}
}

// GetProject retrieves a project by ID
func (s *service) GetProject(ctx context.Context, id int) (*models.Project, error) {
	if id <= 0 {
		return nil, ErrInvalidProjectID
	}
	p, err := s.repo.GetProjectByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

// GetProjectByKey retrieves a project by its unique key
func (s *service) GetProjectByKey(ctx context.Context, key string) (*models.Project, error) {
	p, err := s.repo.GetProjectByKey(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

// IsProjectOwner reports whether userID owns the project
func (s *service) IsProjectOwner(ctx context.Context, projectID, userID int) (bool, error) {
	owner, err := s.repo.IsProjectOwner(ctx, projectID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrProjectNotFound
	}
	return owner, err
}

// ListProjectSummaries returns all projects with child counts and
// resolved owner names
func (s *service) ListProjectSummaries(ctx context.Context) ([]*models.ProjectSummary, error) {
	summaries, err := s.repo.ListProjectSummaries(ctx)
	if err != nil {
		return nil, err
	}

	if s.directory != nil {
		for _, sum := range summaries {
			name, err := s.directory.DisplayName(ctx, sum.OwnerID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve owner name: %w", err)
			}
			sum.OwnerName = name
		}
	}
	return summaries, nil
}

// CreateProject creates a new project and its key-sequence counter in
// one transaction
func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest, ownerID int) (*models.Project, error) {
	key := strings.ToUpper(strings.TrimSpace(req.Key))
	if !keyPattern.MatchString(key) {
		return nil, ErrInvalidKey
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	existing, err := s.repo.GetProjectByKey(ctx, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check project key: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateKey
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

	project, err := repoTx.CreateProjectRecord(ctx, key, strings.TrimSpace(req.Name), req.Description, ownerID)
	if err != nil {
		return nil, err
	}
	if err := repoTx.InitializeProjectCounter(ctx, project.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishProjectEvent(project.ID)
	return project, nil
}

// SetArchived archives or unarchives a project. Archiving only toggles
// visibility; nothing is deleted.
func (s *service) SetArchived(ctx context.Context, id int, archived bool, actingUserID int) error {
	if err := s.requireOwner(ctx, id, actingUserID); err != nil {
		return err
	}

	if err := s.repo.SetProjectArchived(ctx, id, archived); err != nil {
		return err
	}

	s.publishProjectEvent(id)
	return nil
}

// DeleteProject removes an empty project. Projects still holding epics
// or work items cannot be deleted; their children must be removed first.
func (s *service) DeleteProject(ctx context.Context, id, actingUserID int) error {
	if err := s.requireOwner(ctx, id, actingUserID); err != nil {
		return err
	}

	epics, err := s.repo.CountProjectEpics(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count epics: %w", err)
	}
	items, err := s.repo.CountProjectWorkItems(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count work items: %w", err)
	}
	if epics > 0 || items > 0 {
		return ErrProjectHasChildren
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.publishProjectEvent(id)
	return nil
}

// requireOwner loads the project and checks ownership
func (s *service) requireOwner(ctx context.Context, projectID, userID int) error {
	if projectID <= 0 {
		return ErrInvalidProjectID
	}
	owner, err := s.IsProjectOwner(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotProjectOwner
	}
	return nil
}

// publishProjectEvent publishes a project change (if an event client exists)
func (s *service) publishProjectEvent(projectID int) {
	if s.eventClient == nil {
		return
	}
	s.eventClient.Publish(events.Event{Type: events.TypeProjectChanged, ProjectID: projectID, EntityID: projectID})
}
