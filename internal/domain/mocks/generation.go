package mocks

import (
	"context"
	"sync"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// Generator is a mock implementation of ports.Generator.
type Generator struct {
	mu sync.Mutex

	// GenerateReply return values.
	Reply    *ports.Reply
	ReplyErr error

	// ExtractFacts return values.
	Facts      []string
	ExtractErr error

	// SynthesizeSpeech return values.
	Speech    *ports.Speech
	SpeechErr error

	// Recorded inputs.
	ReplyCalls      []entities.Message
	LastTranscript  []entities.Message
	LastInstruction string
	LastKnown       entities.FactList
	SpokenTexts     []string
}

// GenerateReply records the call and returns the configured reply or error.
func (m *Generator) GenerateReply(_ context.Context, transcript []entities.Message, instructions string, known entities.FactList) (*ports.Reply, error) {
	m.mu.Lock()
	if len(transcript) > 0 {
		m.ReplyCalls = append(m.ReplyCalls, transcript[len(transcript)-1])
	}
	m.LastTranscript = transcript
	m.LastInstruction = instructions
	m.LastKnown = known
	m.mu.Unlock()
	if m.ReplyErr != nil {
		return nil, m.ReplyErr
	}
	if m.Reply != nil {
		return m.Reply, nil
	}
	return &ports.Reply{Text: "ok"}, nil
}

// ExtractFacts returns the configured facts or error.
func (m *Generator) ExtractFacts(_ context.Context, transcript []entities.Message, known entities.FactList) ([]string, error) {
	m.mu.Lock()
	m.LastTranscript = transcript
	m.LastKnown = known
	m.mu.Unlock()
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Facts, nil
}

// SynthesizeSpeech returns the configured speech or error.
func (m *Generator) SynthesizeSpeech(_ context.Context, text string) (*ports.Speech, error) {
	m.mu.Lock()
	m.SpokenTexts = append(m.SpokenTexts, text)
	m.mu.Unlock()
	if m.SpeechErr != nil {
		return nil, m.SpeechErr
	}
	return m.Speech, nil
}

// Replies returns a copy of the trigger messages GenerateReply saw.
func (m *Generator) Replies() []entities.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Message{}, m.ReplyCalls...)
}
