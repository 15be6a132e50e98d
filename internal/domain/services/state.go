package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// StateService persists the global paused flag and caches it in memory.
// Missing or corrupt state reads as "running".
type StateService struct {
	blob ports.Blob
	log  zerolog.Logger

	mu     sync.Mutex
	loaded bool
	state  entities.RuntimeState
}

// NewStateService creates the runtime state store over the given blob.
func NewStateService(blob ports.Blob, log zerolog.Logger) *StateService {
	return &StateService{blob: blob, log: log.With().Str("store", "state").Logger()}
}

// State returns the current runtime state.
func (s *StateService) State(ctx context.Context) entities.RuntimeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	return s.state
}

// IsPaused reports whether replies are globally paused.
func (s *StateService) IsPaused(ctx context.Context) bool {
	return s.State(ctx).Paused
}

// SetPaused flips the paused flag and persists it. It returns the resulting
// state and whether anything changed; setting the current value writes
// nothing. A failed durable write leaves the cached state untouched.
func (s *StateService) SetPaused(ctx context.Context, paused bool, by string) (entities.RuntimeState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)

	if s.state.Paused == paused {
		return s.state, false, nil
	}

	next := entities.RuntimeState{
		Paused:    paused,
		UpdatedAt: timeNow().UTC(),
		UpdatedBy: by,
	}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return s.state, false, err
	}
	if err := s.blob.Write(ctx, data); err != nil {
		return s.state, false, err
	}
	s.state = next
	return next, true, nil
}

func (s *StateService) loadLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.state = entities.RuntimeState{UpdatedAt: timeNow().UTC(), UpdatedBy: "system"}

	data, err := s.blob.Read(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.log.Warn().Err(err).Msg("reading runtime state failed; assuming running")
		}
		return
	}
	var state entities.RuntimeState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn().Err(err).Msg("runtime state blob is corrupt; assuming running")
		return
	}
	s.state = state
}
