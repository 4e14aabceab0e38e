package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/plank/internal/models"
)

// ProjectRepo handles pure data access for projects.
// No business logic, no events, no validation - just database operations.
type ProjectRepo struct {
	db DBTX
}

// NewProjectRepo creates a project repository on db.
func NewProjectRepo(db DBTX) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ProjectRepo) WithTx(tx *sql.Tx) *ProjectRepo {
	return &ProjectRepo{db: tx}
}

const projectColumns = `id, key, name, description, owner_id, is_active, is_archived, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(
		&p.ID, &p.Key, &p.Name, &p.Description, &p.OwnerID,
		&p.IsActive, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProjectRecord inserts a project record (without its counter row).
func (r *ProjectRepo) CreateProjectRecord(ctx context.Context, key, name, description string, ownerID int) (*models.Project, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (key, name, description, owner_id) VALUES (?, ?, ?, ?)`,
		key, name, description, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetProjectByID(ctx, int(id))
}

// InitializeProjectCounter creates the key-sequence row for a project.
func (r *ProjectRepo) InitializeProjectCounter(ctx context.Context, projectID int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_counters (project_id) VALUES (?)`, projectID)
	if err != nil {
		return fmt.Errorf("failed to initialize project counter: %w", err)
	}
	return nil
}

// GetProjectByID retrieves a project by ID.
func (r *ProjectRepo) GetProjectByID(ctx context.Context, id int) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectByKey retrieves a project by its unique key (case-insensitive).
func (r *ProjectRepo) GetProjectByKey(ctx context.Context, key string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE key = ? COLLATE NOCASE`, key)
	return scanProject(row)
}

// GetAllProjects retrieves all projects ordered by key.
func (r *ProjectRepo) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SetProjectArchived toggles a project's archived/active flags.
func (r *ProjectRepo) SetProjectArchived(ctx context.Context, id int, archived bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects
		 SET is_archived = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		archived, !archived, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", id, err)
	}
	return nil
}

// DeleteProject removes a project. Callers must enforce the
// no-child-entities guard first.
func (r *ProjectRepo) DeleteProject(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	return nil
}

// IsProjectOwner reports whether userID owns the project.
func (r *ProjectRepo) IsProjectOwner(ctx context.Context, projectID, userID int) (bool, error) {
	var ownerID int
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM projects WHERE id = ?`, projectID).Scan(&ownerID)
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}

// CountProjectEpics returns the number of epics in a project.
func (r *ProjectRepo) CountProjectEpics(ctx context.Context, projectID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM epics WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// CountProjectWorkItems returns the number of work items in a project.
func (r *ProjectRepo) CountProjectWorkItems(ctx context.Context, projectID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_items WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// ListProjectSummaries returns all projects with epic and work item
// counts. Counts come from two grouped aggregate queries joined in
// memory, never one query per project.
func (r *ProjectRepo) ListProjectSummaries(ctx context.Context) ([]*models.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, key, name, owner_id, is_archived FROM projects ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []*models.ProjectSummary
	byID := make(map[int]*models.ProjectSummary)
	for rows.Next() {
		s := &models.ProjectSummary{}
		if err := rows.Scan(&s.ID, &s.Key, &s.Name, &s.OwnerID, &s.IsArchived); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.fillCounts(ctx, byID, `SELECT project_id, COUNT(*) FROM epics GROUP BY project_id`, func(s *models.ProjectSummary, n int) {
		s.EpicCount = n
	}); err != nil {
		return nil, err
	}
	if err := r.fillCounts(ctx, byID, `SELECT project_id, COUNT(*) FROM work_items GROUP BY project_id`, func(s *models.ProjectSummary, n int) {
		s.WorkItemCount = n
	}); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *ProjectRepo) fillCounts(ctx context.Context, byID map[int]*models.ProjectSummary, query string, assign func(*models.ProjectSummary, int)) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to count project children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, count int
		if err := rows.Scan(&projectID, &count); err != nil {
			return err
		}
		if s, ok := byID[projectID]; ok {
			assign(s, count)
		}
	}
	return rows.Err()
}
