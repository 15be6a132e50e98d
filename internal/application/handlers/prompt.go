package handlers

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/services"
)

// PromptHandler handles administrative operations on the instruction
// document.
type PromptHandler struct {
	service *services.PromptService
}

// NewPromptHandler creates a new prompt handler.
func NewPromptHandler(service *services.PromptService) *PromptHandler {
	return &PromptHandler{
		service: service,
	}
}

// View returns the current prompt version, or a specific one when id > 0.
func (h *PromptHandler) View(ctx context.Context, id int) (entities.Version[string], error) {
	if id > 0 {
		version, ok := h.service.Get(ctx, id)
		if !ok {
			return entities.Version[string]{}, ErrVersionNotFound
		}
		return version, nil
	}
	version, ok := h.service.Current(ctx)
	if !ok {
		return entities.Version[string]{}, ErrVersionNotFound
	}
	return version, nil
}

// History returns up to limit kept versions, newest first.
func (h *PromptHandler) History(ctx context.Context, limit int) []entities.Version[string] {
	versions := h.service.List(ctx)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions
}

// Replace validates the uploaded text and appends it as a new version.
func (h *PromptHandler) Replace(ctx context.Context, payload []byte, author, note string) (entities.Version[string], error) {
	if len(payload) > MaxUploadBytes {
		return entities.Version[string]{}, ErrPayloadTooLarge
	}
	if !utf8.Valid(payload) {
		return entities.Version[string]{}, ErrWrongContentType
	}

	version, err := h.service.Save(ctx, string(payload), author, note)
	if err != nil {
		return entities.Version[string]{}, fmt.Errorf("saving prompt: %w", err)
	}
	return version, nil
}

// Rollback appends a new version copying an older one's text.
func (h *PromptHandler) Rollback(ctx context.Context, id int, author string) (entities.Version[string], error) {
	version, ok, err := h.service.Rollback(ctx, id, author)
	if err != nil {
		return entities.Version[string]{}, fmt.Errorf("rolling back prompt: %w", err)
	}
	if !ok {
		return entities.Version[string]{}, ErrVersionNotFound
	}
	return version, nil
}
