package ports

import (
	"context"

	"github.com/leo4life/ethan-core/internal/domain/entities"
)

// Transport delivers text to a conversation and exposes its recent history.
// Concrete chat networks plug in behind this interface; the core never
// depends on a specific one.
type Transport interface {
	// SendText delivers a plain text reply to the conversation.
	SendText(ctx context.Context, conversationKey, text string) error

	// SendVoice delivers synthesized speech with a human-readable title.
	SendVoice(ctx context.Context, conversationKey string, speech Speech, title string) error

	// NotifyTyping triggers the conversation's typing indicator once. The
	// indicator expires on its own after a transport-specific timeout, so
	// callers re-trigger it while a reply is still being prepared.
	NotifyTyping(ctx context.Context, conversationKey string) error

	// RecentMessages returns up to limit recent messages, oldest first.
	RecentMessages(ctx context.Context, conversationKey string, limit int) ([]entities.Message, error)
}
