package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
)

type projectsRepo struct {
	db dbtx
}

const projectColumns = `id, client_id, name, status, budget, balance, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Status, &p.Budget, &p.Balance, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *projectsRepo) GetProject(ctx context.Context, id string) (domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return domain.Project{}, mapNotFound(err)
	}
	return p, nil
}

func (r *projectsRepo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return r.queryProjects(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
}

func (r *projectsRepo) ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error) {
	return r.queryProjects(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE client_id = ? ORDER BY id`, clientID)
}

func (r *projectsRepo) queryProjects(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, status, budget, balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Name, int(p.Status), p.Budget, p.Balance, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *projectsRepo) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, status = ?, budget = ?, balance = ?, updated_at = ? WHERE id = ?`,
		p.Name, int(p.Status), p.Budget, p.Balance, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *projectsRepo) SetBalanceStatus(ctx context.Context, id string, balance float64, status domain.ProjectStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET balance = ?, status = ?, updated_at = ? WHERE id = ?`,
		balance, int(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *projectsRepo) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *projectsRepo) CountPayments(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE project_id = ?`, projectID,
	).Scan(&n)
	return n, err
}

// requireRowAffected maps zero-row updates/deletes onto ErrNotFound so the
// services get a consistent answer from both drivers.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
