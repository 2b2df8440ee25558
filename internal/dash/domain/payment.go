package domain

import "time"

// Payment records money received against a project. Amounts are always
// positive; corrections are made by editing or deleting the payment, which
// re-adjusts the owning project's balance.
type Payment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"` // free-form label: transfer, cash, ...
	CreatedAt time.Time `json:"created_at"`
}
