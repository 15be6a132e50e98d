package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/services"
)

// KnowledgeHandler handles administrative operations on the fact store.
type KnowledgeHandler struct {
	service *services.KnowledgeService
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(service *services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{
		service: service,
	}
}

// View returns the current knowledge version, or a specific one when id > 0.
func (h *KnowledgeHandler) View(ctx context.Context, id int) (entities.Version[entities.FactList], error) {
	if id > 0 {
		version, ok := h.service.Get(ctx, id)
		if !ok {
			return entities.Version[entities.FactList]{}, ErrVersionNotFound
		}
		return version, nil
	}
	version, ok := h.service.Current(ctx)
	if !ok {
		return entities.Version[entities.FactList]{}, ErrVersionNotFound
	}
	return version, nil
}

// History returns up to limit kept versions, newest first.
func (h *KnowledgeHandler) History(ctx context.Context, limit int) []entities.Version[entities.FactList] {
	versions := h.service.List(ctx)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions
}

// Replace validates the uploaded JSON array of fact entries and appends it as
// a new version.
func (h *KnowledgeHandler) Replace(ctx context.Context, payload []byte, author, note string) (entities.Version[entities.FactList], error) {
	if len(payload) > MaxUploadBytes {
		return entities.Version[entities.FactList]{}, ErrPayloadTooLarge
	}

	var list entities.FactList
	if err := json.Unmarshal(payload, &list); err != nil {
		return entities.Version[entities.FactList]{}, ErrWrongContentType
	}

	version, err := h.service.Replace(ctx, list, author, note)
	if err != nil {
		return entities.Version[entities.FactList]{}, fmt.Errorf("saving knowledge: %w", err)
	}
	return version, nil
}

// Rollback appends a new version copying an older one's fact list.
func (h *KnowledgeHandler) Rollback(ctx context.Context, id int, author string) (entities.Version[entities.FactList], error) {
	version, ok, err := h.service.Rollback(ctx, id, author, "")
	if err != nil {
		return entities.Version[entities.FactList]{}, fmt.Errorf("rolling back knowledge: %w", err)
	}
	if !ok {
		return entities.Version[entities.FactList]{}, ErrVersionNotFound
	}
	return version, nil
}
