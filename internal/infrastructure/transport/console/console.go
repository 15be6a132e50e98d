// Package console provides a terminal-backed Transport for local runs.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// historyCap bounds the per-conversation message ring.
const historyCap = 200

// Transport prints outgoing messages to a writer and keeps an in-memory
// history ring per conversation. Inbound messages are fed in via Record.
type Transport struct {
	out io.Writer

	mu      sync.Mutex
	history map[string][]entities.Message
}

// NewTransport creates a console transport writing to out.
func NewTransport(out io.Writer) *Transport {
	return &Transport{
		out:     out,
		history: make(map[string][]entities.Message),
	}
}

// Record adds an inbound message to the conversation's history.
func (t *Transport) Record(msg entities.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendLocked(msg)
}

// SendText prints the reply and records it in the history.
func (t *Transport) SendText(_ context.Context, conversationKey, text string) error {
	t.mu.Lock()
	t.appendLocked(entities.Message{
		ConversationKey: conversationKey,
		Author:          "ethan",
		AuthorID:        "ethan",
		Text:            text,
	})
	t.mu.Unlock()

	if _, err := fmt.Fprintf(t.out, "ethan> %s\n", text); err != nil {
		return fmt.Errorf("writing reply: %w", err)
	}
	return nil
}

// SendVoice prints a voice-message placeholder; the console cannot play
// audio.
func (t *Transport) SendVoice(_ context.Context, conversationKey string, speech ports.Speech, title string) error {
	t.mu.Lock()
	t.appendLocked(entities.Message{
		ConversationKey: conversationKey,
		Author:          "ethan",
		AuthorID:        "ethan",
		Text:            title,
	})
	t.mu.Unlock()

	if _, err := fmt.Fprintf(t.out, "ethan> [voice ~%ds] %s\n", int(speech.Duration.Seconds()), title); err != nil {
		return fmt.Errorf("writing voice reply: %w", err)
	}
	return nil
}

// NotifyTyping prints a typing pulse.
func (t *Transport) NotifyTyping(_ context.Context, _ string) error {
	if _, err := fmt.Fprintln(t.out, "ethan is typing..."); err != nil {
		return fmt.Errorf("writing typing pulse: %w", err)
	}
	return nil
}

// RecentMessages returns the newest limit messages, oldest first.
func (t *Transport) RecentMessages(_ context.Context, conversationKey string, limit int) ([]entities.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	history := t.history[conversationKey]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]entities.Message{}, history...), nil
}

func (t *Transport) appendLocked(msg entities.Message) {
	key := msg.ConversationKey
	history := append(t.history[key], msg)
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}
	t.history[key] = history
}
