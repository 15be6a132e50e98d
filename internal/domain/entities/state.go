package entities

import "time"

// RuntimeState records whether the companion is globally paused, and who
// changed that last. It is persisted so a pause survives restarts.
type RuntimeState struct {
	Paused    bool      `json:"paused"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}
