package entities

import "time"

// Version is one immutable snapshot in a store's append-only history.
// IDs are strictly increasing within a store and are never reused, even
// across rollbacks; the store's current version is always its highest ID.
type Version[T any] struct {
	ID        int       `json:"id"`
	Payload   T         `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	Note      string    `json:"note"`
}
