package sqlite

import (
	"context"

	"github.com/fernlabs/clientdash/internal/dash/domain"
)

type logsRepo struct {
	db dbtx
}

func (r *logsRepo) AppendLog(ctx context.Context, e domain.LogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO logs (action, detail, created_at) VALUES (?, ?, ?)`,
		e.Action, e.Detail, e.CreatedAt,
	)
	return err
}

func (r *logsRepo) ListLogs(ctx context.Context, limit, offset int) ([]domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, detail, created_at FROM logs ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *logsRepo) TrimLogs(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM logs WHERE id NOT IN (SELECT id FROM logs ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	return err
}
