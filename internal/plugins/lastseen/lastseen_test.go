package lastseen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butler/internal/seen"
	"butler/internal/transport"
)

type brokenStore struct{ seen.MemoryStore }

func (*brokenStore) Last(context.Context, string) (seen.Event, error) {
	return seen.Event{}, errors.New("connection reset")
}

func newPlugin(store seen.Store) *Plugin {
	p := New(store)
	p.now = func() time.Time { return time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC) }
	return p
}

func TestSeen_RecordsAndAnswers(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(seen.NewMemoryStore())

	require.NoError(t, p.Observe(ctx, transport.Message{Kind: transport.KindJoin, Nick: "Jan", Channel: "#b"}))
	require.NoError(t, p.Observe(ctx, transport.Message{Kind: transport.KindPrivmsg, Nick: "jan", Channel: "#b", Text: "hello"}))
	require.NoError(t, p.Observe(ctx, transport.Message{Kind: transport.KindPrivmsg, Nick: "NickServ", Text: "identify"}))

	reply, err := p.Handle(ctx, transport.Message{Kind: transport.KindPrivmsg, Nick: "piet", Text: "!seen JAN"})
	require.NoError(t, err)
	assert.Equal(t, `Last seen at 2024-03-09 15:04:05 UTC doing saying "hello" in #b`, reply.Body)

	reply, err = p.Handle(ctx, transport.Message{Kind: transport.KindPrivmsg, Text: "!lastseen nickserv"})
	require.NoError(t, err)
	assert.Equal(t, "I have not seen nickserv.", reply.Body)
}

func TestSeen_Usage(t *testing.T) {
	p := newPlugin(seen.NewMemoryStore())
	reply, err := p.Handle(context.Background(), transport.Message{Kind: transport.KindPrivmsg, Text: "!seen"})
	require.NoError(t, err)
	assert.Equal(t, "Usage: !seen NICK", reply.Body)
}

func TestSeen_StoreError(t *testing.T) {
	p := newPlugin(&brokenStore{})
	_, err := p.Handle(context.Background(), transport.Message{Kind: transport.KindPrivmsg, Text: "!seen jan"})
	assert.ErrorContains(t, err, "connection reset")
}

func TestSeen_IgnoresOtherCommands(t *testing.T) {
	p := newPlugin(seen.NewMemoryStore())
	reply, err := p.Handle(context.Background(), transport.Message{Kind: transport.KindPrivmsg, Text: "!seenx jan"})
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestSeen_PrivateMessagesAreNotRecorded(t *testing.T) {
	ctx := context.Background()
	store := seen.NewMemoryStore()
	p := newPlugin(store)

	require.NoError(t, p.Observe(ctx, transport.Message{Kind: transport.KindPrivmsg, Nick: "jan", Text: "my password is hunter2", ReplyTo: "jan"}))

	_, err := store.Last(ctx, "jan")
	assert.ErrorIs(t, err, seen.ErrNotFound)
}
