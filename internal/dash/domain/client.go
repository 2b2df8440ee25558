package domain

import "time"

// Client is a customer of the studio. Clients own projects and can be handed
// a temporary access token to view their own financial data.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
