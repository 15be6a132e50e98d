// Package entities contains core domain data structures.
package entities

import "time"

// Message is a single chat message as seen by the companion, regardless of
// which transport delivered it.
type Message struct {
	ConversationKey string    `json:"conversation_key"`
	Author          string    `json:"author"`
	AuthorID        string    `json:"author_id,omitempty"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
}
