package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// KnowledgeMaxVersions bounds the fact-list history: the current version
// plus ten previous ones.
const KnowledgeMaxVersions = 11

// legacyFactEntry is an element of the pre-history bare-array knowledge
// blob, with its string timestamp.
type legacyFactEntry struct {
	Text    string `json:"text"`
	AddedAt string `json:"added_at"`
}

// decodeLegacyFacts recognizes the legacy bare-array knowledge blob.
func decodeLegacyFacts(data []byte) (entities.FactList, int, time.Time, string, bool) {
	var raw []legacyFactEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, time.Time{}, "", false
	}
	list := make(entities.FactList, 0, len(raw))
	for _, e := range raw {
		addedAt := time.Time{}
		if t, err := time.Parse(time.RFC3339, e.AddedAt); err == nil {
			addedAt = t
		}
		list = append(list, entities.FactEntry{Text: e.Text, AddedAt: addedAt})
	}
	return list.Normalize(), 1, timeNow().UTC(), "unknown", true
}

// KnowledgeService manages the versioned fact list.
type KnowledgeService struct {
	store *VersionStore[entities.FactList]
}

// NewKnowledgeService creates the knowledge store over the given blob.
func NewKnowledgeService(blob ports.Blob, log zerolog.Logger) *KnowledgeService {
	return &KnowledgeService{
		store: NewVersionStore(blob, VersionStoreOptions[entities.FactList]{
			MaxKept: KnowledgeMaxVersions,
			Legacy:  decodeLegacyFacts,
			IsEmpty: func(list entities.FactList) bool { return len(list) == 0 },
			Logger:  log.With().Str("store", "knowledge").Logger(),
		}),
	}
}

// Current returns the latest fact list version, or ok=false when none exists.
func (s *KnowledgeService) Current(ctx context.Context) (entities.Version[entities.FactList], bool) {
	return s.store.Current(ctx)
}

// CurrentFacts returns the latest fact list payload, or nil when none exists.
func (s *KnowledgeService) CurrentFacts(ctx context.Context) entities.FactList {
	v, ok := s.store.Current(ctx)
	if !ok {
		return nil
	}
	return v.Payload
}

// Get returns a specific knowledge version by id.
func (s *KnowledgeService) Get(ctx context.Context, id int) (entities.Version[entities.FactList], bool) {
	return s.store.Get(ctx, id)
}

// List returns kept knowledge versions, newest first.
func (s *KnowledgeService) List(ctx context.Context) []entities.Version[entities.FactList] {
	return s.store.List(ctx)
}

// AppendFacts merges the entries into the current fact list and appends a
// new version. Entries already known by text are discarded; when nothing is
// new, no version is written and the current one is returned with added=0.
func (s *KnowledgeService) AppendFacts(ctx context.Context, entries []entities.FactEntry, author, note string) (entities.Version[entities.FactList], int, error) {
	current, _ := s.store.Current(ctx)
	merged, added := current.Payload.Merge(entries...)
	if added == 0 {
		return current, 0, nil
	}
	version, err := s.store.Append(ctx, merged, author, note)
	if err != nil {
		return entities.Version[entities.FactList]{}, 0, err
	}
	return version, added, nil
}

// Replace appends a new version holding the given list, normalized.
func (s *KnowledgeService) Replace(ctx context.Context, list entities.FactList, author, note string) (entities.Version[entities.FactList], error) {
	return s.store.Append(ctx, list.Normalize(), author, note)
}

// Rollback appends a new version copying an older one's fact list.
func (s *KnowledgeService) Rollback(ctx context.Context, id int, author, note string) (entities.Version[entities.FactList], bool, error) {
	return s.store.Rollback(ctx, id, author, note)
}
