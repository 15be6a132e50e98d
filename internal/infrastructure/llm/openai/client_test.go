package openai

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/infrastructure/config"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{}, config.SpeechConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantText  string
		wantVoice bool
	}{
		{
			name:     "json envelope",
			content:  `{"reply": "yo what's up", "voice": false}`,
			wantText: "yo what's up",
		},
		{
			name:      "voice requested",
			content:   `{"reply": "listen up", "voice": true}`,
			wantText:  "listen up",
			wantVoice: true,
		},
		{
			name:     "fenced json",
			content:  "```json\n{\"reply\": \"hey\", \"voice\": false}\n```",
			wantText: "hey",
		},
		{
			name:     "silence",
			content:  `{"reply": "", "voice": false}`,
			wantText: "",
		},
		{
			name:     "plain text fallback",
			content:  "just a plain answer",
			wantText: "just a plain answer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := parseReply(tt.content)
			assert.Equal(t, tt.wantText, reply.Text)
			assert.Equal(t, tt.wantVoice, reply.WantsVoice)
		})
	}
}

func TestParseFacts(t *testing.T) {
	facts, err := parseFacts(`{"facts": ["a is b", "  c is d  ", "a is b", "", "e is f"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a is b", "c is d", "e is f"}, facts)
}

func TestParseFactsEmptyArray(t *testing.T) {
	facts, err := parseFacts("```json\n{\"facts\": []}\n```")
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestParseFactsInvalidJSON(t *testing.T) {
	_, err := parseFacts("no facts here")
	assert.Error(t, err)
}

func TestRenderPersonaPrompt(t *testing.T) {
	transcript := []entities.Message{
		{Author: "alice", Text: "hi"},
		{Author: "bob", Text: "hello"},
	}
	known := entities.FactList{{Text: "the server resets on tuesdays"}}

	out := renderPersonaPrompt("date={currentDate} user={userName}\n{knowledge}", transcript, known)
	assert.Contains(t, out, "user=bob")
	assert.Contains(t, out, "- the server resets on tuesdays")
	assert.NotContains(t, out, "{currentDate}")
}

func TestRenderPersonaPromptEmptyInputs(t *testing.T) {
	out := renderPersonaPrompt("user={userName}\n{knowledge}", nil, nil)
	assert.Contains(t, out, "user=someone")
	assert.Contains(t, out, "(nothing yet)")
}

func TestFormatTranscript(t *testing.T) {
	transcript := []entities.Message{
		{Author: "alice", Text: "one"},
		{Author: "bob", Text: "two"},
	}
	assert.Equal(t, "alice: one\nbob: two", formatTranscript(transcript))
}

func TestEstimateSpeechDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), estimateSpeechDuration(""))
	assert.Equal(t, time.Second, estimateSpeechDuration("hi"))
	assert.Equal(t, 4*time.Second, estimateSpeechDuration("one two three four five six seven eight nine ten"))
}
