package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProjectStatus mirrors the stored integer flag: 1 while money is still owed,
// 0 once the balance hits zero.
type ProjectStatus int

const (
	StatusClosed ProjectStatus = 0
	StatusActive ProjectStatus = 1
)

func (s ProjectStatus) String() string {
	if s == StatusActive {
		return "Active"
	}
	return "Closed"
}

// MarshalJSON renders the status as its label rather than the raw flag.
func (s ProjectStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts both the label ("Active"/"Closed") and the stored
// integer form.
func (s *ProjectStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		parsed, err := ParseProjectStatus(label)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	var flag int
	if err := json.Unmarshal(data, &flag); err != nil {
		return fmt.Errorf("invalid project status: %s", data)
	}
	if flag == 0 {
		*s = StatusClosed
	} else {
		*s = StatusActive
	}
	return nil
}

// ParseProjectStatus converts a status label to its flag value.
func ParseProjectStatus(label string) (ProjectStatus, error) {
	switch label {
	case "Active":
		return StatusActive, nil
	case "Closed":
		return StatusClosed, nil
	default:
		return StatusClosed, fmt.Errorf("unknown project status %q", label)
	}
}

// StatusForBalance derives the status a project must carry for the given
// balance. This is the only rule relating the two fields.
func StatusForBalance(balance float64) ProjectStatus {
	if balance == 0 {
		return StatusClosed
	}
	return StatusActive
}

// Project tracks a piece of work sold to a client. Balance is derived state:
// max(0, budget minus the sum of recorded payments), and Status is Closed
// exactly when Balance is zero.
type Project struct {
	ID        string        `json:"id"`
	ClientID  string        `json:"client_id"`
	Name      string        `json:"name"`
	Status    ProjectStatus `json:"status"`
	Budget    float64       `json:"budget"`
	Balance   float64       `json:"balance"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
