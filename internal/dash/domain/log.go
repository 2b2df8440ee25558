package domain

import "time"

// Audit log actions. The set is open (admin-log accepts arbitrary tags), but
// everything the service writes itself uses one of these.
const (
	ActionClientCreate  = "CLIENT_CREATE"
	ActionClientUpdate  = "CLIENT_UPDATE"
	ActionClientDelete  = "CLIENT_DELETE"
	ActionProjectCreate = "PROJECT_CREATE"
	ActionProjectUpdate = "PROJECT_UPDATE"
	ActionProjectDelete = "PROJECT_DELETE"
	ActionPaymentCreate = "PAYMENT_CREATE"
	ActionPaymentUpdate = "PAYMENT_UPDATE"
	ActionPaymentDelete = "PAYMENT_DELETE"
	ActionLinkGenerated = "LINK_GENERATED"
	ActionClientAccess  = "CLIENT_ACCESS"
	ActionAccessDenied  = "ACCESS_DENIED"
	ActionDeleteBlocked = "DELETE_BLOCKED"
	ActionLoginDenied   = "LOGIN_DENIED"
	ActionAdminLog      = "ADMIN_LOG"
)

// LogEntry is one append-only audit record. It is written as a side effect of
// mutations and access checks and is never read back by business logic.
type LogEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
