package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

const (
	// DefaultSilenceWindow is how long a conversation must stay quiet
	// before the deferred reply fires.
	DefaultSilenceWindow = 3 * time.Second

	// DefaultTypingRefresh re-triggers the typing indicator while a reply
	// is pending or being generated. It must stay shorter than the
	// transport's own indicator timeout so the indicator never visibly
	// expires mid-wait.
	DefaultTypingRefresh = 8 * time.Second
)

// Responder turns the final message of a burst into a delivered reply.
type Responder interface {
	Respond(ctx context.Context, msg entities.Message) error
}

// pauseReader reports whether replies are globally paused. Satisfied by
// StateService.
type pauseReader interface {
	IsPaused(ctx context.Context) bool
}

// pendingReply tracks the deferred reply for one conversation. Only the
// flush carrying the entry's current token may execute; earlier tokens are
// stale and no-op.
type pendingReply struct {
	msg    entities.Message
	token  uint64
	timer  *time.Timer
	typing *typingLoop // nil when the indicator could not start
}

// SchedulerOptions overrides the fixed timing constants, for tests.
type SchedulerOptions struct {
	SilenceWindow time.Duration
	TypingRefresh time.Duration
	Logger        zerolog.Logger
}

// ReplyScheduler collapses a burst of messages per conversation into a
// single generated reply, fired once the silence window elapses, keeping a
// typing indicator alive throughout the wait.
type ReplyScheduler struct {
	transport ports.Transport
	responder Responder
	pause     pauseReader
	silence   time.Duration
	refresh   time.Duration
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	pending   map[string]*pendingReply
	lastToken uint64
}

// NewReplyScheduler creates a scheduler. Call Shutdown to cancel all
// pending replies when the process exits.
func NewReplyScheduler(transport ports.Transport, responder Responder, pause pauseReader, opts SchedulerOptions) *ReplyScheduler {
	if opts.SilenceWindow <= 0 {
		opts.SilenceWindow = DefaultSilenceWindow
	}
	if opts.TypingRefresh <= 0 {
		opts.TypingRefresh = DefaultTypingRefresh
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReplyScheduler{
		transport: transport,
		responder: responder,
		pause:     pause,
		silence:   opts.SilenceWindow,
		refresh:   opts.TypingRefresh,
		log:       opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]*pendingReply),
	}
}

// OnMessage schedules a deferred reply for the message's conversation. A
// pending entry is refreshed in place: its remembered message is replaced
// and its timer re-armed under a fresh token, while the running typing
// indicator is kept. A new entry starts the indicator; failure to start it
// never blocks scheduling.
func (s *ReplyScheduler) OnMessage(msg entities.Message) {
	key := msg.ConversationKey

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.pending[key]; ok {
		entry.timer.Stop()
		entry.msg = msg
		entry.token = s.nextTokenLocked()
		entry.timer = s.armTimerLocked(key, entry.token)
		return
	}

	entry := &pendingReply{msg: msg, token: s.nextTokenLocked()}
	entry.typing = s.startTyping(key)
	entry.timer = s.armTimerLocked(key, entry.token)
	s.pending[key] = entry
}

// OnActivity re-arms the silence timer for a pending reply without
// replacing the remembered message. Activity in a conversation with no
// pending reply is ignored.
func (s *ReplyScheduler) OnActivity(conversationKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[conversationKey]
	if !ok {
		return
	}
	entry.timer.Stop()
	entry.token = s.nextTokenLocked()
	entry.timer = s.armTimerLocked(conversationKey, entry.token)
}

// PendingCount returns the number of conversations with a deferred reply.
func (s *ReplyScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown cancels every pending reply and stops its typing indicator.
func (s *ReplyScheduler) Shutdown() {
	s.mu.Lock()
	for key, entry := range s.pending {
		entry.timer.Stop()
		if entry.typing != nil {
			entry.typing.Stop()
		}
		delete(s.pending, key)
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *ReplyScheduler) nextTokenLocked() uint64 {
	s.lastToken++
	return s.lastToken
}

func (s *ReplyScheduler) armTimerLocked(key string, token uint64) *time.Timer {
	return time.AfterFunc(s.silence, func() {
		s.flush(key, token)
	})
}

// flush executes the deferred reply scheduled under token. A missing entry
// or a token mismatch means this timer was superseded: no-op. The entry is
// removed before generating so a new burst during generation starts clean,
// and the typing indicator is always stopped, whatever generation does.
func (s *ReplyScheduler) flush(key string, token uint64) {
	s.mu.Lock()
	entry, ok := s.pending[key]
	if !ok || entry.token != token {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	defer func() {
		if entry.typing != nil {
			entry.typing.Stop()
		}
	}()

	if s.pause != nil && s.pause.IsPaused(s.ctx) {
		return
	}
	if err := s.responder.Respond(s.ctx, entry.msg); err != nil {
		s.log.Error().Err(err).Str("conversation", key).Msg("deferred reply failed")
	}
}

// typingLoop keeps a conversation's typing indicator alive by re-triggering
// it on a fixed cadence until stopped. Stop is safe to call more than once.
type typingLoop struct {
	stop chan struct{}
	once sync.Once
}

func (l *typingLoop) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// startTyping fires the indicator immediately so it shows during the
// debounce wait, then refreshes it until stopped. Transport errors are
// logged and otherwise ignored.
func (s *ReplyScheduler) startTyping(key string) *typingLoop {
	loop := &typingLoop{stop: make(chan struct{})}
	go func() {
		if err := s.transport.NotifyTyping(s.ctx, key); err != nil {
			s.log.Debug().Err(err).Str("conversation", key).Msg("typing indicator failed")
		}
		ticker := time.NewTicker(s.refresh)
		defer ticker.Stop()
		for {
			select {
			case <-loop.stop:
				return
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.transport.NotifyTyping(s.ctx, key); err != nil {
					s.log.Debug().Err(err).Str("conversation", key).Msg("typing indicator failed")
				}
			}
		}
	}()
	return loop
}
