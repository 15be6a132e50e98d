package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

const (
	// DefaultHistoryLimit is how many recent messages are fetched as
	// context for a reply.
	DefaultHistoryLimit = 20

	// fallbackReply is sent when generation fails, instead of staying
	// silent on an addressed message.
	fallbackReply = "beep boop... my brain short circuited. say again?"
)

// reMentionToken matches raw user-mention tokens so generated replies never
// ping anyone directly.
var reMentionToken = regexp.MustCompile(`<@!?\d+>`)

// reMassMention matches channel-wide mention keywords, case-insensitively.
var reMassMention = regexp.MustCompile(`(?i)@(everyone|here)`)

// SanitizeReply strips mention tokens from generated text and defuses
// channel-wide mentions.
func SanitizeReply(text string) string {
	text = reMentionToken.ReplaceAllString(text, "")
	text = reMassMention.ReplaceAllString(text, "at $1")
	return strings.TrimSpace(text)
}

// ChatResponder assembles context from the stores, calls the generation
// capability and delivers the result over the transport. It is invoked by
// the scheduler once a burst's silence window has elapsed.
type ChatResponder struct {
	transport    ports.Transport
	generator    ports.Generator
	prompt       *PromptService
	knowledge    *KnowledgeService
	historyLimit int
	log          zerolog.Logger
}

// NewChatResponder creates a responder. historyLimit <= 0 selects the
// default.
func NewChatResponder(transport ports.Transport, generator ports.Generator, prompt *PromptService, knowledge *KnowledgeService, historyLimit int, log zerolog.Logger) *ChatResponder {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &ChatResponder{
		transport:    transport,
		generator:    generator,
		prompt:       prompt,
		knowledge:    knowledge,
		historyLimit: historyLimit,
		log:          log,
	}
}

// Respond generates and delivers a reply for the final message of a burst.
// The transcript comes from the transport's history, not from the burst, so
// superseded messages still reach the model as context. Generation errors
// degrade to a fallback line; speech errors degrade to text.
func (r *ChatResponder) Respond(ctx context.Context, msg entities.Message) error {
	key := msg.ConversationKey

	transcript, err := r.transport.RecentMessages(ctx, key, r.historyLimit)
	if err != nil {
		r.log.Warn().Err(err).Str("conversation", key).Msg("history fetch failed; replying to the trigger alone")
		transcript = []entities.Message{msg}
	}
	if len(transcript) == 0 {
		transcript = []entities.Message{msg}
	}

	instructions := ""
	if v, ok := r.prompt.Current(ctx); ok {
		instructions = v.Payload
	}
	known := r.knowledge.CurrentFacts(ctx)

	reply, err := r.generator.GenerateReply(ctx, transcript, instructions, known)
	if err != nil {
		r.log.Error().Err(err).Str("conversation", key).Msg("reply generation failed")
		if sendErr := r.transport.SendText(ctx, key, fallbackReply); sendErr != nil {
			return fmt.Errorf("sending fallback reply: %w", sendErr)
		}
		return nil
	}

	text := SanitizeReply(reply.Text)
	if text == "" {
		// The model chose silence.
		return nil
	}

	if reply.WantsVoice {
		if delivered := r.tryVoice(ctx, key, text); delivered {
			return nil
		}
	}
	if err := r.transport.SendText(ctx, key, text); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}

// tryVoice attempts speech synthesis and delivery, reporting success. Any
// failure falls back to text.
func (r *ChatResponder) tryVoice(ctx context.Context, key, text string) bool {
	speech, err := r.generator.SynthesizeSpeech(ctx, text)
	if err != nil {
		r.log.Warn().Err(err).Str("conversation", key).Msg("speech synthesis failed; falling back to text")
		return false
	}
	if speech == nil {
		return false
	}
	if err := r.transport.SendVoice(ctx, key, *speech, text); err != nil {
		r.log.Warn().Err(err).Str("conversation", key).Msg("voice delivery failed; falling back to text")
		return false
	}
	return true
}
