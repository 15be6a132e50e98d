package handlers

import (
	"context"
	"fmt"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/services"
)

// StateHandler handles the global pause/resume commands.
type StateHandler struct {
	service *services.StateService
}

// NewStateHandler creates a new state handler.
func NewStateHandler(service *services.StateService) *StateHandler {
	return &StateHandler{
		service: service,
	}
}

// Pause stops deferred replies globally. changed=false means replies were
// already paused.
func (h *StateHandler) Pause(ctx context.Context, by string) (entities.RuntimeState, bool, error) {
	state, changed, err := h.service.SetPaused(ctx, true, by)
	if err != nil {
		return state, false, fmt.Errorf("pausing replies: %w", err)
	}
	return state, changed, nil
}

// Resume re-enables deferred replies globally. changed=false means replies
// were already running.
func (h *StateHandler) Resume(ctx context.Context, by string) (entities.RuntimeState, bool, error) {
	state, changed, err := h.service.SetPaused(ctx, false, by)
	if err != nil {
		return state, false, fmt.Errorf("resuming replies: %w", err)
	}
	return state, changed, nil
}

// State returns the current runtime state.
func (h *StateHandler) State(ctx context.Context) entities.RuntimeState {
	return h.service.State(ctx)
}
