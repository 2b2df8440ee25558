package service

import (
	"context"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// DefaultLogRetention caps the audit trail so it cannot grow without bound.
const DefaultLogRetention = 1000

const defaultLogPageSize = 100

// AuditService records and lists audit log entries. Domain services append
// their own entries inside their transactions; this service covers the
// standalone paths (the admin log endpoint and the listing API) and the
// retention trim.
type AuditService struct {
	Store store.Store

	// Retention is the maximum number of entries kept. Zero or negative
	// means DefaultLogRetention.
	Retention int
}

func newLogEntry(action, detail string) domain.LogEntry {
	return domain.LogEntry{
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

// Record appends an entry and trims the trail back to the retention cap.
func (s *AuditService) Record(ctx context.Context, action, detail string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Logs().AppendLog(ctx, newLogEntry(action, detail)); err != nil {
			return err
		}
		return tx.Logs().TrimLogs(ctx, s.retention())
	})
	if err != nil {
		l.Error("failed to record audit entry", "error", err, "action", action)
		return err
	}

	l.Info("audit entry recorded", "action", action, "detail", detail)
	return nil
}

// List returns entries newest first. A non-positive limit falls back to a
// sane page size.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = defaultLogPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Logs().ListLogs(ctx, limit, offset)
}

// Trim enforces the retention cap, used by housekeeping.
func (s *AuditService) Trim(ctx context.Context) error {
	return s.Store.Logs().TrimLogs(ctx, s.retention())
}

func (s *AuditService) retention() int {
	if s.Retention <= 0 {
		return DefaultLogRetention
	}
	return s.Retention
}
