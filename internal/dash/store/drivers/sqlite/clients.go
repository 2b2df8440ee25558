package sqlite

import (
	"context"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
)

type clientsRepo struct {
	db dbtx
}

func (r *clientsRepo) GetClient(ctx context.Context, id string) (domain.Client, error) {
	var c domain.Client
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at, updated_at FROM clients WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, created_at, updated_at FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *clientsRepo) UpdateClient(ctx context.Context, id, name, email string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		name, email, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *clientsRepo) CountProjects(ctx context.Context, clientID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE client_id = ?`, clientID,
	).Scan(&n)
	return n, err
}
