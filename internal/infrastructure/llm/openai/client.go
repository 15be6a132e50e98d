// Package openai provides a Generator implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
	"github.com/leo4life/ethan-core/internal/infrastructure/config"
)

const personaPromptTemplate = `Ethan is MinePal's AI Minecraft companion robot, born on July 4th, 2024. He's in alpha stage testing, known for being both helpful and hilariously buggy. He always talks like a gen-z with internet lingo, knows memes, and always talks in LOWERCASE ONLY. But don't say you're gen-z, just be like it. Be as sarcastic as you want but don't insult people or be evil. In the end, be wholesome.
Important: you are in a group chat. Talk like humans would, no paragraphs.
You are NOT a support bot. If anyone asks usage related questions, tell them to check https://minepal.net/guides.
Current date: {currentDate}
Latest message is from: {userName}

Things you know:
{knowledge}

Reply with JSON only: {"reply": "your message, or empty string to stay silent", "voice": false}. Set "voice" to true only when a spoken reply clearly fits better.`

const extractionPrompt = `You maintain a short bullet list of facts that help a chat companion answer questions accurately.
Existing knowledge (newest first):
%s

Recent conversation transcript:
%s

Instructions:
- Identify only new facts or procedures that are not already covered in the existing knowledge.
- Facts must be accurate statements from the transcript, phrased in ONE sentence each.
- Ignore small talk, opinions, or temporary offers.
- If nothing new is present, return an empty array.

Return ONLY a valid JSON object of the form {"facts": ["..."]}, no other text.`

// speechWordsPerSecond approximates tts-1 pacing, used to report a duration
// without decoding the audio.
const speechWordsPerSecond = 2.5

// Client implements the Generator interface using OpenAI.
type Client struct {
	client      *openai.Client
	model       string
	speechModel string
	voice       string
	log         zerolog.Logger
}

// NewClient creates a new OpenAI generation client.
func NewClient(cfg config.LLMConfig, speech config.SpeechConfig, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}
	speechModel := "tts-1"
	if speech.Model != "" {
		speechModel = speech.Model
	}
	voice := "onyx"
	if speech.Voice != "" {
		voice = speech.Voice
	}

	return &Client{
		client:      client,
		model:       model,
		speechModel: speechModel,
		voice:       voice,
		log:         log.With().Str("component", "openai").Logger(),
	}, nil
}

// GenerateReply produces a reply to the transcript, in persona. An empty
// reply text means the model chose silence.
func (c *Client) GenerateReply(ctx context.Context, transcript []entities.Message, instructions string, known entities.FactList) (*ports.Reply, error) {
	system := renderPersonaPrompt(personaPromptTemplate, transcript, known)
	if instructions != "" {
		system = instructions + "\n\n" + system
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, c.log, "chat completion", func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: formatTranscript(transcript),
				},
			},
			Temperature: 0.7,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return parseReply(resp.Choices[0].Message.Content), nil
}

// ExtractFacts pulls new factual statements out of the transcript. Statements
// already present in known are the model's job to skip; callers still filter.
func (c *Client) ExtractFacts(ctx context.Context, transcript []entities.Message, known entities.FactList) ([]string, error) {
	prompt := fmt.Sprintf(extractionPrompt, formatKnowledge(known), formatTranscript(transcript))

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, c.log, "fact extraction", func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "Respond using the requested JSON shape only.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.1,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	facts, err := parseFacts(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// SynthesizeSpeech renders the text as spoken audio. The reported duration is
// estimated from the word count.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) (*ports.Speech, error) {
	var resp openai.RawResponse
	err := withRetry(ctx, c.log, "speech synthesis", func() error {
		var err error
		resp, err = c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(c.speechModel),
			Input:          text,
			Voice:          openai.SpeechVoice(c.voice),
			ResponseFormat: openai.SpeechResponseFormatOpus,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}
	return &ports.Speech{Audio: audio, Duration: estimateSpeechDuration(text)}, nil
}

// replyEnvelope is the JSON structure the model is asked to produce.
type replyEnvelope struct {
	Reply string `json:"reply"`
	Voice bool   `json:"voice"`
}

// parseReply decodes the model's envelope. Content that is not the requested
// JSON shape is treated as a plain text reply.
func parseReply(content string) *ports.Reply {
	content = cleanJSONResponse(content)

	var envelope replyEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err == nil {
		return &ports.Reply{Text: strings.TrimSpace(envelope.Reply), WantsVoice: envelope.Voice}
	}
	return &ports.Reply{Text: strings.TrimSpace(content)}
}

// factsEnvelope is the JSON structure for extracted facts.
type factsEnvelope struct {
	Facts []string `json:"facts"`
}

// parseFacts decodes the extraction envelope, trimming and deduplicating.
func parseFacts(content string) ([]string, error) {
	content = cleanJSONResponse(content)

	var envelope factsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("parsing facts JSON: %w (response: %s)", err, content)
	}

	seen := make(map[string]bool, len(envelope.Facts))
	facts := make([]string, 0, len(envelope.Facts))
	for _, fact := range envelope.Facts {
		fact = strings.TrimSpace(fact)
		if fact == "" || seen[fact] {
			continue
		}
		seen[fact] = true
		facts = append(facts, fact)
	}
	return facts, nil
}

// renderPersonaPrompt fills the template placeholders from the transcript and
// knowledge base.
func renderPersonaPrompt(template string, transcript []entities.Message, known entities.FactList) string {
	userName := "someone"
	if len(transcript) > 0 {
		userName = transcript[len(transcript)-1].Author
	}
	out := strings.ReplaceAll(template, "{currentDate}", timeNow().Format("2006-01-02"))
	out = strings.ReplaceAll(out, "{userName}", userName)
	out = strings.ReplaceAll(out, "{knowledge}", formatKnowledge(known))
	return out
}

// formatTranscript renders messages oldest first as "author: text" lines.
func formatTranscript(transcript []entities.Message) string {
	var b strings.Builder
	for i, msg := range transcript {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.Author)
		b.WriteString(": ")
		b.WriteString(msg.Text)
	}
	return b.String()
}

// formatKnowledge renders the fact list as a bullet block, newest first.
func formatKnowledge(known entities.FactList) string {
	if len(known) == 0 {
		return "(nothing yet)"
	}
	lines := make([]string, 0, len(known))
	for _, entry := range known {
		lines = append(lines, "- "+entry.Text)
	}
	return strings.Join(lines, "\n")
}

// estimateSpeechDuration approximates how long the synthesized audio runs.
func estimateSpeechDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	seconds := float64(words) / speechWordsPerSecond
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds * float64(time.Second))
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
