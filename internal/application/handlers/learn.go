package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
	"github.com/leo4life/ethan-core/internal/domain/services"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

const (
	// DefaultLearnFetchLimit is how many recent messages a learn pass
	// fetches from the transport.
	DefaultLearnFetchLimit = 50

	// DefaultLearnWindow is how many of the fetched messages are analyzed,
	// newest kept.
	DefaultLearnWindow = 30

	// maxShownCandidates caps how many candidates one session presents for
	// review; overflow is recorded on the session as skipped.
	maxShownCandidates = 10
)

// LearnHandler drives the learn workflow: extract candidate facts from recent
// conversation, open a review session, and commit approved facts.
type LearnHandler struct {
	transport  ports.Transport
	generator  ports.Generator
	knowledge  *services.KnowledgeService
	registry   *services.ApprovalRegistry
	fetchLimit int
	window     int
	log        zerolog.Logger
}

// NewLearnHandler creates a new learn handler. fetchLimit and window <= 0
// select the defaults.
func NewLearnHandler(transport ports.Transport, generator ports.Generator, knowledge *services.KnowledgeService, registry *services.ApprovalRegistry, fetchLimit, window int, log zerolog.Logger) *LearnHandler {
	if fetchLimit <= 0 {
		fetchLimit = DefaultLearnFetchLimit
	}
	if window <= 0 {
		window = DefaultLearnWindow
	}
	return &LearnHandler{
		transport:  transport,
		generator:  generator,
		knowledge:  knowledge,
		registry:   registry,
		fetchLimit: fetchLimit,
		window:     window,
		log:        log,
	}
}

// Propose extracts candidate facts from the conversation's recent messages
// and opens an approval session for them. ErrNoCandidates is returned when
// nothing new turns up.
func (h *LearnHandler) Propose(ctx context.Context, conversationKey, initiator string) (entities.ApprovalSession, error) {
	messages, err := h.transport.RecentMessages(ctx, conversationKey, h.fetchLimit)
	if err != nil {
		return entities.ApprovalSession{}, fmt.Errorf("fetching recent messages: %w", err)
	}
	if len(messages) > h.window {
		messages = messages[len(messages)-h.window:]
	}
	if len(messages) == 0 {
		return entities.ApprovalSession{}, ErrNoCandidates
	}

	known := h.knowledge.CurrentFacts(ctx)
	candidates, err := h.generator.ExtractFacts(ctx, messages, known)
	if err != nil {
		return entities.ApprovalSession{}, fmt.Errorf("extracting facts: %w", err)
	}

	fresh := make([]string, 0, len(candidates))
	for _, text := range candidates {
		text = strings.TrimSpace(text)
		if text == "" || known.Contains(text) {
			continue
		}
		fresh = append(fresh, text)
	}
	if len(fresh) == 0 {
		return entities.ApprovalSession{}, ErrNoCandidates
	}

	skipped := 0
	if len(fresh) > maxShownCandidates {
		skipped = len(fresh) - maxShownCandidates
		fresh = fresh[:maxShownCandidates]
	}

	session := h.registry.Create(initiator, fresh, skipped)
	h.log.Info().
		Str("session", session.ID).
		Str("initiator", initiator).
		Int("candidates", len(fresh)).
		Int("skipped", skipped).
		Msg("learn session opened")
	return session, nil
}

// DecideResult reports the outcome of one decision.
type DecideResult struct {
	Session   entities.ApprovalSession
	Item      entities.ApprovalItem
	Completed bool
	Committed int
}

// Decide records one approve/reject on an open session. Only the initiator
// may decide. When the last item leaves pending, approved facts are committed
// to the knowledge store and the session is removed; a failed commit keeps
// the session so the decision can be retried.
func (h *LearnHandler) Decide(ctx context.Context, sessionID string, actor string, index int, approve bool) (DecideResult, error) {
	session, ok := h.registry.Get(sessionID)
	if !ok {
		return DecideResult{}, ErrSessionNotFound
	}
	if session.Initiator != actor {
		return DecideResult{}, ErrNotInitiator
	}

	item, ok := h.registry.Decide(sessionID, index, approve)
	if !ok {
		// Out-of-range index: report the session unchanged.
		return DecideResult{Session: session, Completed: false}, nil
	}

	if !h.registry.IsComplete(sessionID) {
		session, _ = h.registry.Get(sessionID)
		return DecideResult{Session: session, Item: item}, nil
	}

	session, _ = h.registry.Get(sessionID)
	committed, err := h.commit(ctx, session)
	if err != nil {
		return DecideResult{Session: session, Item: item, Completed: true}, err
	}
	h.registry.Remove(sessionID)
	return DecideResult{Session: session, Item: item, Completed: true, Committed: committed}, nil
}

// commit merges the session's approved facts into the knowledge store.
func (h *LearnHandler) commit(ctx context.Context, session entities.ApprovalSession) (int, error) {
	approved := session.ApprovedTexts()
	if len(approved) == 0 {
		return 0, nil
	}

	now := timeNow().UTC()
	entries := make([]entities.FactEntry, 0, len(approved))
	for _, text := range approved {
		entries = append(entries, entities.FactEntry{Text: text, AddedAt: now})
	}

	note := fmt.Sprintf("learn session %s (%d new)", session.ID, len(entries))
	_, added, err := h.knowledge.AppendFacts(ctx, entries, session.Initiator, note)
	if err != nil {
		return 0, fmt.Errorf("committing approved facts: %w", err)
	}
	return added, nil
}
