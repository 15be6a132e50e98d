// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// SentText records one SendText call.
type SentText struct {
	ConversationKey string
	Text            string
}

// SentVoice records one SendVoice call.
type SentVoice struct {
	ConversationKey string
	Speech          ports.Speech
	Title           string
}

// Transport is a mock implementation of ports.Transport. It records every
// delivery and typing pulse and returns the configured history or errors.
type Transport struct {
	mu sync.Mutex

	// Configured behavior.
	History    map[string][]entities.Message
	SendErr    error
	VoiceErr   error
	TypingErr  error
	HistoryErr error

	// Recorded calls.
	Texts        []SentText
	Voices       []SentVoice
	TypingPulses map[string]int
}

// NewTransport creates an empty mock transport.
func NewTransport() *Transport {
	return &Transport{
		History:      make(map[string][]entities.Message),
		TypingPulses: make(map[string]int),
	}
}

// SendText records the delivery or returns the configured error.
func (m *Transport) SendText(_ context.Context, conversationKey, text string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	m.Texts = append(m.Texts, SentText{ConversationKey: conversationKey, Text: text})
	m.mu.Unlock()
	return nil
}

// SendVoice records the delivery or returns the configured error.
func (m *Transport) SendVoice(_ context.Context, conversationKey string, speech ports.Speech, title string) error {
	if m.VoiceErr != nil {
		return m.VoiceErr
	}
	m.mu.Lock()
	m.Voices = append(m.Voices, SentVoice{ConversationKey: conversationKey, Speech: speech, Title: title})
	m.mu.Unlock()
	return nil
}

// NotifyTyping counts the pulse or returns the configured error.
func (m *Transport) NotifyTyping(_ context.Context, conversationKey string) error {
	if m.TypingErr != nil {
		return m.TypingErr
	}
	m.mu.Lock()
	m.TypingPulses[conversationKey]++
	m.mu.Unlock()
	return nil
}

// RecentMessages returns the configured history or error.
func (m *Transport) RecentMessages(_ context.Context, conversationKey string, limit int) ([]entities.Message, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.History[conversationKey]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]entities.Message{}, history...), nil
}

// SentTexts returns a copy of the recorded text deliveries.
func (m *Transport) SentTexts() []SentText {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentText{}, m.Texts...)
}

// SentVoices returns a copy of the recorded voice deliveries.
func (m *Transport) SentVoices() []SentVoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentVoice{}, m.Voices...)
}

// Pulses returns how many typing pulses the conversation received.
func (m *Transport) Pulses(conversationKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.TypingPulses[conversationKey]
}
