package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// PromptMaxVersions bounds the instruction document history: the current
// version plus twenty previous ones.
const PromptMaxVersions = 21

// legacyPrompt is the pre-history single-document shape. Its camelCase keys
// are kept readable indefinitely.
type legacyPrompt struct {
	Text          string `json:"text"`
	Version       int    `json:"version"`
	UpdatedAt     string `json:"updatedAt"`
	UpdatedBy     string `json:"updatedBy"`
	CommitMessage string `json:"commitMessage"`
}

// decodeLegacyPrompt recognizes the legacy single-document prompt blob.
func decodeLegacyPrompt(data []byte) (string, int, time.Time, string, bool) {
	var raw legacyPrompt
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", 0, time.Time{}, "", false
	}
	if raw.Text == "" && raw.Version == 0 {
		return "", 0, time.Time{}, "", false
	}
	createdAt := timeNow().UTC()
	if t, err := time.Parse(time.RFC3339, raw.UpdatedAt); err == nil {
		createdAt = t
	}
	author := raw.UpdatedBy
	if author == "" {
		author = "unknown"
	}
	id := raw.Version
	if id < 1 {
		id = 1
	}
	return raw.Text, id, createdAt, author, true
}

// PromptService manages the versioned instruction document.
type PromptService struct {
	store *VersionStore[string]
}

// NewPromptService creates the prompt store over the given blob.
func NewPromptService(blob ports.Blob, log zerolog.Logger) *PromptService {
	return &PromptService{
		store: NewVersionStore(blob, VersionStoreOptions[string]{
			MaxKept: PromptMaxVersions,
			Legacy:  decodeLegacyPrompt,
			IsEmpty: func(text string) bool { return text == "" },
			Logger:  log.With().Str("store", "prompt").Logger(),
		}),
	}
}

// Current returns the latest prompt version, or ok=false when none is set.
func (s *PromptService) Current(ctx context.Context) (entities.Version[string], bool) {
	return s.store.Current(ctx)
}

// Get returns a specific prompt version by id.
func (s *PromptService) Get(ctx context.Context, id int) (entities.Version[string], bool) {
	return s.store.Get(ctx, id)
}

// List returns kept prompt versions, newest first.
func (s *PromptService) List(ctx context.Context) []entities.Version[string] {
	return s.store.List(ctx)
}

// Save appends a new prompt version.
func (s *PromptService) Save(ctx context.Context, text, author, note string) (entities.Version[string], error) {
	return s.store.Append(ctx, text, author, note)
}

// Rollback appends a new version copying an older one's text.
func (s *PromptService) Rollback(ctx context.Context, id int, author string) (entities.Version[string], bool, error) {
	return s.store.Rollback(ctx, id, author, "")
}
