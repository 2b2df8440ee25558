package domain

import "time"

// Roles. Only admins can mutate data or mint client links; the role is an
// explicit column rather than something inferred from having a session.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User is a dashboard operator account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // argon2id, PHC encoded
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
