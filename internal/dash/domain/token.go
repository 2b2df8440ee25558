package domain

import "time"

// AccessToken grants time-limited read-only access to one client's projects
// and payments. The token string is the identity; there is no signature and
// no renewal, expiry is absolute.
type AccessToken struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t AccessToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ClientData is the read-only snapshot returned to a client presenting a
// valid token.
type ClientData struct {
	Client   Client    `json:"client"`
	Projects []Project `json:"projects"`
	Payments []Payment `json:"payments"`
}
