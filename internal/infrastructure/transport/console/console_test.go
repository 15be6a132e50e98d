package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/ports"
)

func TestSendTextPrintsAndRecords(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	transport := NewTransport(&out)

	require.NoError(t, transport.SendText(ctx, "local", "hello"))
	assert.Equal(t, "ethan> hello\n", out.String())

	history, err := transport.RecentMessages(ctx, "local", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ethan", history[0].Author)
	assert.Equal(t, "hello", history[0].Text)
}

func TestRecordFeedsHistoryOldestFirst(t *testing.T) {
	ctx := context.Background()
	transport := NewTransport(&bytes.Buffer{})

	transport.Record(entities.Message{ConversationKey: "local", Author: "alice", Text: "one"})
	transport.Record(entities.Message{ConversationKey: "local", Author: "alice", Text: "two"})
	transport.Record(entities.Message{ConversationKey: "local", Author: "alice", Text: "three"})

	history, err := transport.RecentMessages(ctx, "local", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Text)
	assert.Equal(t, "three", history[1].Text)
}

func TestConversationsAreIndependent(t *testing.T) {
	ctx := context.Background()
	transport := NewTransport(&bytes.Buffer{})

	transport.Record(entities.Message{ConversationKey: "a", Text: "for a"})

	history, err := transport.RecentMessages(ctx, "b", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSendVoicePrintsPlaceholder(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	transport := NewTransport(&out)

	speech := ports.Speech{Audio: []byte{1, 2}, Duration: 3 * time.Second}
	require.NoError(t, transport.SendVoice(ctx, "local", speech, "listen up"))
	assert.Equal(t, "ethan> [voice ~3s] listen up\n", out.String())
}

func TestNotifyTypingPrintsPulse(t *testing.T) {
	var out bytes.Buffer
	transport := NewTransport(&out)

	require.NoError(t, transport.NotifyTyping(context.Background(), "local"))
	assert.Equal(t, "ethan is typing...\n", out.String())
}
