package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leo4life/ethan-core/internal/application/handlers"
	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/services"
	llm "github.com/leo4life/ethan-core/internal/infrastructure/llm/openai"
	"github.com/leo4life/ethan-core/internal/infrastructure/transport/console"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk with ethan in the terminal",
		Long: `Starts an interactive session. Plain lines are chat messages; replies are
debounced so quick bursts get a single answer. Commands:

  /pause       stop replying globally
  /start       resume replying
  /learn       extract facts from the recent conversation for review
  /approve N   approve candidate N of the open learn session
  /reject N    reject candidate N of the open learn session
  /quit        leave the session`,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	return withInternalDeps(func(d *internalDeps) error {
		ctx := cmd.Context()

		generator, err := llm.NewClient(d.Config.LLM, d.Config.Speech, d.Log)
		if err != nil {
			return fmt.Errorf("creating llm client: %w", err)
		}

		transport := console.NewTransport(os.Stdout)
		responder := services.NewChatResponder(transport, generator, d.promptService, d.knowledgeService, d.Config.Chat.HistoryLimit, d.Log)
		scheduler := services.NewReplyScheduler(transport, responder, d.stateService, services.SchedulerOptions{Logger: d.Log})
		defer scheduler.Shutdown()

		registry := services.NewApprovalRegistry()
		learn := handlers.NewLearnHandler(transport, generator, d.knowledgeService, registry,
			d.Config.Chat.LearnFetchLimit, d.Config.Chat.LearnWindow, d.Log)

		session := &chatSession{
			deps:      d,
			transport: transport,
			scheduler: scheduler,
			learn:     learn,
			registry:  registry,
		}

		fmt.Printf("Chatting as %s. /quit to leave.\n", globalUser)
		return session.loop(ctx)
	})
}

// chatSession holds the state of one interactive run.
type chatSession struct {
	deps      *internalDeps
	transport *console.Transport
	scheduler *services.ReplyScheduler
	learn     *handlers.LearnHandler
	registry  *services.ApprovalRegistry

	// openSession is the id of the learn session awaiting decisions, if any.
	openSession string
}

func (s *chatSession) loop(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				// Commands count as conversation activity: they push the
				// pending reply's silence window out without replacing
				// the remembered message.
				s.scheduler.OnActivity(localConversationKey)
				if quit := s.dispatch(ctx, line); quit {
					return nil
				}
				continue
			}
			msg := entities.Message{
				ConversationKey: localConversationKey,
				Author:          globalUser,
				AuthorID:        globalUser,
				Text:            line,
				Timestamp:       time.Now(),
			}
			s.transport.Record(msg)
			s.scheduler.OnMessage(msg)
		}
	}
}

// dispatch runs one slash command, reporting whether the session should end.
func (s *chatSession) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/pause":
		s.runPause(ctx)
	case "/start":
		s.runResume(ctx)
	case "/learn":
		s.runLearn(ctx)
	case "/approve", "/reject":
		s.runDecide(ctx, fields)
	default:
		fmt.Printf("Unknown command %s\n", fields[0])
	}
	return false
}

func (s *chatSession) runPause(ctx context.Context) {
	_, changed, err := s.deps.State.Pause(ctx, globalUser)
	if err != nil {
		fmt.Printf("Pause failed: %v\n", err)
		return
	}
	if !changed {
		fmt.Println("Already paused.")
		return
	}
	fmt.Println("Paused.")
}

func (s *chatSession) runResume(ctx context.Context) {
	_, changed, err := s.deps.State.Resume(ctx, globalUser)
	if err != nil {
		fmt.Printf("Resume failed: %v\n", err)
		return
	}
	if !changed {
		fmt.Println("Already running.")
		return
	}
	fmt.Println("Resumed.")
}

func (s *chatSession) runLearn(ctx context.Context) {
	session, err := s.learn.Propose(ctx, localConversationKey, globalUser)
	if errors.Is(err, handlers.ErrNoCandidates) {
		fmt.Println("No new facts detected.")
		return
	}
	if err != nil {
		fmt.Printf("Learn failed: %v\n", err)
		return
	}
	s.openSession = session.ID
	fmt.Println("Approve any new knowledge points below.")
	printLearnSession(session)
}

func (s *chatSession) runDecide(ctx context.Context, fields []string) {
	if s.openSession == "" {
		fmt.Println("No open learn session. Run /learn first.")
		return
	}
	if len(fields) != 2 {
		fmt.Printf("Usage: %s N\n", fields[0])
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		fmt.Printf("Usage: %s N\n", fields[0])
		return
	}
	approve := fields[0] == "/approve"

	result, err := s.learn.Decide(ctx, s.openSession, globalUser, n-1, approve)
	if err != nil {
		fmt.Printf("Decision failed: %v\n", err)
		return
	}
	if !result.Completed {
		printLearnSession(result.Session)
		return
	}
	s.openSession = ""
	if result.Committed > 0 {
		fmt.Printf("Session complete: %d fact(s) added to knowledge.\n", result.Committed)
	} else {
		fmt.Println("Session complete: nothing approved.")
	}
}

func printLearnSession(session entities.ApprovalSession) {
	for i, item := range session.Items {
		fmt.Printf("%d. %s - %s\n", i+1, item.Text, formatStatus(item.Status))
	}
	if session.SkippedCount > 0 {
		fmt.Printf("(%d more candidate(s) not shown)\n", session.SkippedCount)
	}
}

func formatStatus(status entities.ApprovalStatus) string {
	switch status {
	case entities.ApprovalApproved:
		return "approved"
	case entities.ApprovalRejected:
		return "rejected"
	default:
		return "pending"
	}
}
