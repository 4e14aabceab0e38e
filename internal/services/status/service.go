// Package status owns the registry of workflow statuses and the
// directed graph of transition rules between them. Transitions are
// permissive by default: a pair with no explicit rule is allowed.
package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/models"
)

// Service defines all status-registry operations
type Service interface {
	// Read operations
	GetStatus(ctx context.Context, id int) (*models.Status, error)
	ListStatuses(ctx context.Context, activeOnly bool) ([]*models.Status, error)
	GetDefaultStatus(ctx context.Context) (*models.Status, error)
	GetAllowedTransitions(ctx context.Context, fromID int) ([]*models.Status, error)
	ValidateTransition(ctx context.Context, fromID, toID int) (bool, error)

	// Write operations
	CreateStatus(ctx context.Context, req CreateStatusRequest) (*models.Status, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.Status, error)
	DeleteStatus(ctx context.Context, id int) error
	SetTransition(ctx context.Context, fromID, toID int, isAllowed bool) error
	EnsureDefaultStatuses(ctx context.Context) error
}

// CreateStatusRequest encapsulates data for creating a status
type CreateStatusRequest struct {
	Name            string
	Color           string
	OrderIndex      int
	IsDefaultForNew bool
	IsCompleted     bool
	IsCancelled     bool
}

// UpdateStatusRequest encapsulates data for updating a status.
// Pointer fields are optional - nil means don't update.
type UpdateStatusRequest struct {
	StatusID   int
	Name       *string
	Color      *string
	OrderIndex *int
	IsActive   *bool
}

// service implements Service interface
type service struct {
	db          *sql.DB
	repo        *database.StatusRepo
	eventClient events.Publisher
}

// NewService creates a new status service
func NewService(db *sql.DB, eventClient events.Publisher) Service {
	return &service{
		db:          db,
		repo:        database.NewStatusRepo(db),
		eventClient: eventClient,
	}
}

// GetStatus retrieves a single status
func (s *service) GetStatus(ctx context.Context, id int) (*models.Status, error) {
	if id <= 0 {
		return nil, ErrInvalidStatusID
	}
	st, err := s.repo.GetStatusByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatusNotFound
	}
	return st, err
}

// ListStatuses retrieves all statuses ordered by position
func (s *service) ListStatuses(ctx context.Context, activeOnly bool) ([]*models.Status, error) {
	return s.repo.GetAllStatuses(ctx, activeOnly)
}

// GetDefaultStatus returns the status new items start in
func (s *service) GetDefaultStatus(ctx context.Context) (*models.Status, error) {
	st, err := s.repo.GetDefaultStatus(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDefaultStatus
	}
	return st, err
}

// CreateStatus creates a new status after checking for name collisions
func (s *service) CreateStatus(ctx context.Context, req CreateStatusRequest) (*models.Status, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(name) > 50 {
		return nil, ErrNameTooLong
	}

	// Name uniqueness is case-insensitive; the NOCASE unique index is
	// the backstop for concurrent creates.
	existing, err := s.repo.GetStatusByName(ctx, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check status name: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	created, err := s.repo.CreateStatus(ctx, name, req.Color, req.OrderIndex,
		req.IsDefaultForNew, req.IsCompleted, req.IsCancelled)
	if err != nil {
		return nil, err
	}

	s.publishStatusEvent(created.ID)
	return created, nil
}

// UpdateStatus updates a status's mutable fields
func (s *service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.Status, error) {
	current, err := s.GetStatus(ctx, req.StatusID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		if len(name) > 50 {
			return nil, ErrNameTooLong
		}
		existing, err := s.repo.GetStatusByName(ctx, name)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to check status name: %w", err)
		}
		if existing != nil && existing.ID != current.ID {
			return nil, ErrDuplicateName
		}
		current.Name = name
	}
	if req.Color != nil {
		current.Color = *req.Color
	}
	if req.OrderIndex != nil {
		current.OrderIndex = *req.OrderIndex
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateStatus(ctx, current); err != nil {
		return nil, err
	}

	s.publishStatusEvent(current.ID)
	return current, nil
}

// DeleteStatus removes a status that nothing references
func (s *service) DeleteStatus(ctx context.Context, id int) error {
	if _, err := s.GetStatus(ctx, id); err != nil {
		return err
	}

	refs, err := s.repo.CountStatusReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count status references: %w", err)
	}
	if refs > 0 {
		return ErrStatusInUse
	}

	if err := s.repo.DeleteStatus(ctx, id); err != nil {
		return err
	}

	s.publishStatusEvent(id)
	return nil
}

// SetTransition creates or replaces the explicit rule for the ordered
// pair. Self-transitions carry no rule; they are always allowed.
func (s *service) SetTransition(ctx context.Context, fromID, toID int, isAllowed bool) error {
	if fromID <= 0 || toID <= 0 {
		return ErrInvalidStatusID
	}
	if fromID == toID {
		return ErrSelfTransition
	}
	if _, err := s.GetStatus(ctx, fromID); err != nil {
		return err
	}
	if _, err := s.GetStatus(ctx, toID); err != nil {
		return err
	}

	if err := s.repo.UpsertTransition(ctx, fromID, toID, isAllowed); err != nil {
		return err
	}

	s.publishStatusEvent(fromID)
	return nil
}

// ValidateTransition reports whether moving from one status to another
// is allowed: a no-op move is always allowed, a pair with no explicit
// rule is allowed, and otherwise the rule decides.
func (s *service) ValidateTransition(ctx context.Context, fromID, toID int) (bool, error) {
	if fromID == toID {
		return true, nil
	}

	rule, err := s.repo.GetTransition(ctx, fromID, toID)
	if err != nil {
		return false, fmt.Errorf("failed to look up transition %d->%d: %w", fromID, toID, err)
	}
	if rule == nil {
		return true, nil
	}
	return rule.IsAllowed, nil
}

// GetAllowedTransitions returns every status reachable from fromID:
// targets of explicit allowed rules plus every status with no rule at
// all for the pair.
func (s *service) GetAllowedTransitions(ctx context.Context, fromID int) ([]*models.Status, error) {
	if _, err := s.GetStatus(ctx, fromID); err != nil {
		return nil, err
	}

	all, err := s.repo.GetAllStatuses(ctx, true)
	if err != nil {
		return nil, err
	}
	rules, err := s.repo.GetTransitionsFrom(ctx, fromID)
	if err != nil {
		return nil, err
	}

	ruleByTarget := make(map[int]*models.StatusTransition, len(rules))
	for _, r := range rules {
		ruleByTarget[r.ToStatusID] = r
	}

	var allowed []*models.Status
	for _, st := range all {
		if st.ID == fromID {
			allowed = append(allowed, st)
			continue
		}
		rule, hasRule := ruleByTarget[st.ID]
		if !hasRule || rule.IsAllowed {
			allowed = append(allowed, st)
		}
	}
	return allowed, nil
}

// EnsureDefaultStatuses idempotently seeds the five required statuses
func (s *service) EnsureDefaultStatuses(ctx context.Context) error {
	return database.SeedDefaultStatuses(ctx, s.db)
}

// publishStatusEvent publishes a status change (if an event client exists)
func (s *service) publishStatusEvent(statusID int) {
	if s.eventClient == nil {
		return
	}
	s.eventClient.Publish(events.Event{Type: events.TypeStatusChanged, EntityID: statusID})
}
