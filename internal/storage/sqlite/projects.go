package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/triplan/internal/models"
)

const projectColumns = `id, title, destination, description, start_date, end_date, status, private, image_link, owner_id, created_at`

// CreateProject persists a new project and its collaborators.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *models.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProject(ctx, tx, project); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CloneProject persists project together with copies of items in one
// transaction. Either everything is written or nothing is.
func (s *SQLiteStore) CloneProject(ctx context.Context, project *models.Project, items []models.ItineraryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProject(ctx, tx, project); err != nil {
		return err
	}
	for i := range items {
		items[i].ProjectID = project.ID
		if err := insertItinerary(ctx, tx, &items[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertProject(ctx context.Context, tx *sql.Tx, project *models.Project) error {
	// Generate IDs if not set
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt == 0 {
		project.CreatedAt = time.Now().Unix()
	}
	if project.Status == "" {
		project.Status = models.ProjectPlanning
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		project.ID, project.Title, project.Destination, project.Description,
		formatTime(project.StartDate), formatTime(project.EndDate), string(project.Status),
		project.Private, project.ImageLink, project.OwnerID, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return insertCollaborators(ctx, tx, project.ID, project.Collaborators)
}

func insertCollaborators(ctx context.Context, tx *sql.Tx, projectID string, collaborators []models.UserRef) error {
	for i, c := range collaborators {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO project_collaborators (project_id, user_id, email, position) VALUES (?, ?, ?, ?)",
			projectID, c.ID, c.Email, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert collaborator: %w", err)
		}
	}
	return nil
}

// GetProject retrieves a project by ID, including its collaborators.
func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?",
		projectID,
	)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	collaborators, err := s.collaborators(ctx, []string{project.ID})
	if err != nil {
		return nil, err
	}
	project.Collaborators = collaborators[project.ID]
	return project, nil
}

// ListProjects returns all projects, newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	var ids []string
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
		ids = append(ids, project.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	collaborators, err := s.collaborators(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		p.Collaborators = collaborators[p.ID]
	}
	return projects, nil
}

// collaborators loads collaborators for the given projects keyed by project ID.
func (s *SQLiteStore) collaborators(ctx context.Context, projectIDs []string) (map[string][]models.UserRef, error) {
	out := make(map[string][]models.UserRef, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, user_id, email FROM project_collaborators
		 WHERE project_id IN (`+placeholders(len(projectIDs))+`)
		 ORDER BY project_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get collaborators: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID string
		var ref models.UserRef
		if err := rows.Scan(&projectID, &ref.ID, &ref.Email); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		out[projectID] = append(out[projectID], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collaborators: %w", err)
	}
	return out, nil
}

// UpdateProject updates an existing project. Collaborators are replaced.
func (s *SQLiteStore) UpdateProject(ctx context.Context, project *models.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET title = ?, destination = ?, description = ?, start_date = ?, end_date = ?,
		 status = ?, private = ?, image_link = ? WHERE id = ?`,
		project.Title, project.Destination, project.Description,
		formatTime(project.StartDate), formatTime(project.EndDate), string(project.Status),
		project.Private, project.ImageLink, project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return notFound("project", project.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_collaborators WHERE project_id = ?", project.ID); err != nil {
		return fmt.Errorf("failed to clear collaborators: %w", err)
	}
	if err := insertCollaborators(ctx, tx, project.ID, project.Collaborators); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddCollaborator adds user to the project. Adding an existing collaborator is a no-op.
func (s *SQLiteStore) AddCollaborator(ctx context.Context, projectID string, user models.UserRef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT MAX(position) + 1 FROM project_collaborators WHERE project_id = ?), 0)
		 FROM projects WHERE id = ?`,
		projectID, projectID,
	).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("project", projectID)
	}
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO project_collaborators (project_id, user_id, email, position) VALUES (?, ?, ?, ?)",
		projectID, user.ID, user.Email, next,
	)
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteProject removes a project; itineraries, bills and chats cascade.
func (s *SQLiteStore) DeleteProject(ctx context.Context, projectID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound("project", projectID)
	}
	return nil
}

// CompleteProjectsEndedBefore marks finished trips as Completed.
func (s *SQLiteStore) CompleteProjectsEndedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// RFC 3339 UTC strings compare in time order
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM projects WHERE status = ? AND end_date != '' AND end_date < ?",
		string(models.ProjectPlanning), formatTime(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find ended projects: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ended projects: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"UPDATE projects SET status = ? WHERE id = ?",
			string(models.ProjectCompleted), id,
		); err != nil {
			return nil, fmt.Errorf("failed to complete project %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var start, end, status string
	if err := row.Scan(&p.ID, &p.Title, &p.Destination, &p.Description, &start, &end,
		&status, &p.Private, &p.ImageLink, &p.OwnerID, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if p.EndDate, err = parseTime(end); err != nil {
		return nil, err
	}
	p.Status = models.ProjectStatus(status)
	return p, nil
}
