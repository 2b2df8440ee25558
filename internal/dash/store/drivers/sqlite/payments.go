package sqlite

import (
	"context"

	"github.com/fernlabs/clientdash/internal/dash/domain"
)

type paymentsRepo struct {
	db dbtx
}

const paymentColumns = `id, project_id, date, amount, type, created_at`

func scanPayment(row interface{ Scan(...any) error }) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.ProjectID, &p.Date, &p.Amount, &p.Type, &p.CreatedAt)
	return p, err
}

func (r *paymentsRepo) GetPayment(ctx context.Context, id string) (domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	return p, nil
}

func (r *paymentsRepo) ListPaymentsByProject(ctx context.Context, projectID string) ([]domain.Payment, error) {
	return r.queryPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE project_id = ? ORDER BY id`, projectID)
}

func (r *paymentsRepo) ListPaymentsByClient(ctx context.Context, clientID string) ([]domain.Payment, error) {
	return r.queryPayments(ctx,
		`SELECT p.id, p.project_id, p.date, p.amount, p.type, p.created_at
		 FROM payments p
		 JOIN projects pr ON pr.id = p.project_id
		 WHERE pr.client_id = ?
		 ORDER BY p.id`, clientID)
}

func (r *paymentsRepo) queryPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentsRepo) CreatePayment(ctx context.Context, p domain.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, project_id, date, amount, type, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ProjectID, p.Date, p.Amount, p.Type, p.CreatedAt,
	)
	return err
}

func (r *paymentsRepo) UpdatePayment(ctx context.Context, id string, amount float64, date, ptype string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET amount = ?, date = ?, type = ? WHERE id = ?`,
		amount, date, ptype, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *paymentsRepo) DeletePayment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *paymentsRepo) SumPaymentsByProject(ctx context.Context, projectID string) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE project_id = ?`, projectID,
	).Scan(&sum)
	return sum, err
}
