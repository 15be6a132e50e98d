package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/leo4life/ethan-core/internal/domain/entities"
)

// ApprovalRegistry holds open learn-review sessions in memory, keyed by a
// fresh opaque id. Sessions live until every item has been decided or the
// process restarts. All mutation goes through the registry so callers only
// ever see copies.
type ApprovalRegistry struct {
	mu       sync.Mutex
	sessions map[string]*entities.ApprovalSession
}

// NewApprovalRegistry creates an empty registry.
func NewApprovalRegistry() *ApprovalRegistry {
	return &ApprovalRegistry{sessions: make(map[string]*entities.ApprovalSession)}
}

// Create registers a new session with all items pending. skipped records how
// many candidates were not shown to the reviewer.
func (r *ApprovalRegistry) Create(initiator string, texts []string, skipped int) entities.ApprovalSession {
	items := make([]entities.ApprovalItem, len(texts))
	for i, text := range texts {
		items[i] = entities.ApprovalItem{Text: text, Status: entities.ApprovalPending}
	}
	session := &entities.ApprovalSession{
		ID:           uuid.New().String(),
		Initiator:    initiator,
		Items:        items,
		SkippedCount: skipped,
		CreatedAt:    timeNow().UTC(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return copySession(session)
}

// Get returns a copy of the session, or ok=false when it does not exist.
func (r *ApprovalRegistry) Get(id string) (entities.ApprovalSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return entities.ApprovalSession{}, false
	}
	return copySession(session), true
}

// Decide transitions one item out of pending. Unknown sessions and
// out-of-range indexes yield ok=false; deciding an already-decided item
// returns it unchanged. Both are no-ops, not errors.
func (r *ApprovalRegistry) Decide(id string, index int, approve bool) (entities.ApprovalItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || index < 0 || index >= len(session.Items) {
		return entities.ApprovalItem{}, false
	}
	item := &session.Items[index]
	if item.Status != entities.ApprovalPending {
		return *item, true
	}
	if approve {
		item.Status = entities.ApprovalApproved
	} else {
		item.Status = entities.ApprovalRejected
	}
	return *item, true
}

// IsComplete reports whether no item is pending. A session that no longer
// exists counts as complete.
func (r *ApprovalRegistry) IsComplete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return true
	}
	return session.PendingCount() == 0
}

// Remove purges the session. Called once, after completion has been
// observed and the commit side-effect has run.
func (r *ApprovalRegistry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func copySession(session *entities.ApprovalSession) entities.ApprovalSession {
	out := *session
	out.Items = append([]entities.ApprovalItem{}, session.Items...)
	return out
}
