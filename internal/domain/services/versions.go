// Package services contains domain business logic.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// LegacyDecoder attempts to interpret a blob written before versioned
// history existed. On success it returns the payload for a single
// synthesized version, the version id to assign it, its creation time and
// author. Implementations return ok=false when the bytes are not a
// recognized legacy shape.
type LegacyDecoder[T any] func(data []byte) (payload T, id int, createdAt time.Time, author string, ok bool)

// VersionStoreOptions configures a VersionStore.
type VersionStoreOptions[T any] struct {
	// MaxKept bounds the history length; older versions are evicted first.
	MaxKept int
	// Legacy, when set, is tried on blobs that are not in canonical shape.
	Legacy LegacyDecoder[T]
	// IsEmpty, when set, decides whether a migrated legacy payload gets the
	// "empty import" note instead of "legacy import".
	IsEmpty func(T) bool
	Logger  zerolog.Logger
}

// storeState is the canonical on-disk shape of a store.
type storeState[T any] struct {
	NextID  int                   `json:"next_id"`
	History []entities.Version[T] `json:"history"`
}

// VersionStore is a generic append-only history with bounded retention,
// backed by a single durable blob. Append is the only mutator; rollback is
// an append of an older payload, so history is never truncated by it.
type VersionStore[T any] struct {
	blob ports.Blob
	opts VersionStoreOptions[T]
	log  zerolog.Logger

	// writeMu serializes the load/append read-modify-write cycle, including
	// the durable write. mu guards only the in-memory snapshot so readers
	// never wait on storage.
	writeMu sync.Mutex
	mu      sync.RWMutex
	loaded  bool
	nextID  int
	history []entities.Version[T]
}

// NewVersionStore creates a store over the given blob. State is loaded
// lazily on first use.
func NewVersionStore[T any](blob ports.Blob, opts VersionStoreOptions[T]) *VersionStore[T] {
	if opts.MaxKept < 1 {
		opts.MaxKept = 1
	}
	return &VersionStore[T]{
		blob: blob,
		opts: opts,
		log:  opts.Logger,
	}
}

// Current returns the highest-id version, or ok=false when history is empty.
func (s *VersionStore[T]) Current(ctx context.Context) (entities.Version[T], bool) {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		var zero entities.Version[T]
		return zero, false
	}
	return s.history[len(s.history)-1], true
}

// Get returns the version with the given id, or ok=false.
func (s *VersionStore[T]) Get(ctx context.Context, id int) (entities.Version[T], bool) {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.history {
		if v.ID == id {
			return v, true
		}
	}
	var zero entities.Version[T]
	return zero, false
}

// List returns all kept versions, newest first.
func (s *VersionStore[T]) List(ctx context.Context) []entities.Version[T] {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Version[T], 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// Append assigns the next id, persists the whole store atomically and
// returns the new version. When the durable write fails, the in-memory
// state is left untouched and the error is returned.
func (s *VersionStore[T]) Append(ctx context.Context, payload T, author, note string) (entities.Version[T], error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.loadLocked(ctx)

	s.mu.RLock()
	nextID := s.nextID
	history := append([]entities.Version[T]{}, s.history...)
	s.mu.RUnlock()

	version := entities.Version[T]{
		ID:        nextID,
		Payload:   payload,
		CreatedAt: timeNow().UTC(),
		Author:    author,
		Note:      note,
	}
	history = append(history, version)
	if len(history) > s.opts.MaxKept {
		history = history[len(history)-s.opts.MaxKept:]
	}

	state := storeState[T]{NextID: version.ID + 1, History: history}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		var zero entities.Version[T]
		return zero, fmt.Errorf("encoding store: %w", err)
	}
	if err := s.blob.Write(ctx, data); err != nil {
		var zero entities.Version[T]
		return zero, fmt.Errorf("writing store: %w", err)
	}

	s.mu.Lock()
	s.nextID = state.NextID
	s.history = history
	s.mu.Unlock()
	return version, nil
}

// Rollback appends a new version whose payload copies version id. The note
// defaults to "rollback to vN: <original note>". It returns ok=false when
// the id is unknown; the original version is left untouched either way.
func (s *VersionStore[T]) Rollback(ctx context.Context, id int, author, note string) (entities.Version[T], bool, error) {
	target, ok := s.Get(ctx, id)
	if !ok {
		var zero entities.Version[T]
		return zero, false, nil
	}
	if note == "" {
		note = strings.TrimSpace(fmt.Sprintf("rollback to v%d: %s", target.ID, target.Note))
	}
	version, err := s.Append(ctx, target.Payload, author, note)
	return version, true, err
}

// ensureLoaded loads state on first use, serialized with appends.
func (s *VersionStore[T]) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.loadLocked(ctx)
}

// loadLocked reads and decodes the blob. Missing or corrupt storage yields
// an empty store; a recognized legacy shape becomes a one-version history
// that is not persisted until the first write. Callers hold writeMu.
func (s *VersionStore[T]) loadLocked(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	nextID, history := s.decode(ctx)

	s.mu.Lock()
	s.loaded = true
	s.nextID = nextID
	s.history = history
	s.mu.Unlock()
}

func (s *VersionStore[T]) decode(ctx context.Context) (int, []entities.Version[T]) {
	data, err := s.blob.Read(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.log.Warn().Err(err).Msg("reading store failed; starting empty")
		}
		return 1, nil
	}

	var state storeState[T]
	if err := json.Unmarshal(data, &state); err == nil && (state.NextID > 0 || len(state.History) > 0) {
		history := state.History
		sort.SliceStable(history, func(i, j int) bool { return history[i].ID < history[j].ID })
		nextID := 1
		if n := len(history); n > 0 {
			nextID = history[n-1].ID + 1
		}
		if state.NextID > nextID {
			nextID = state.NextID
		}
		return nextID, history
	}

	if s.opts.Legacy != nil {
		if payload, id, createdAt, author, ok := s.opts.Legacy(data); ok {
			if id < 1 {
				id = 1
			}
			note := "legacy import"
			if s.opts.IsEmpty != nil && s.opts.IsEmpty(payload) {
				note = "empty import"
			}
			version := entities.Version[T]{
				ID:        id,
				Payload:   payload,
				CreatedAt: createdAt,
				Author:    author,
				Note:      note,
			}
			s.log.Info().Int("id", id).Msg("migrated legacy store blob")
			return id + 1, []entities.Version[T]{version}
		}
	}

	s.log.Warn().Msg("store blob is not in a known shape; starting empty")
	return 1, nil
}
