package elo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butler/internal/cache"
	"butler/internal/core"
	"butler/internal/plugins"
	"butler/internal/providers/clubelo"
	"butler/internal/transport"
)

func clubs(n int) []clubelo.Entry {
	names := []string{"Man City", "Real Madrid", "Bayern", "Liverpool", "Arsenal", "Inter", "Barcelona", "Leverkusen"}
	out := make([]clubelo.Entry, n)
	for i := range out {
		name := fmt.Sprintf("Club %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		out[i] = clubelo.Entry{Position: i + 1, Club: name, Elo: float64(2000 - i)}
	}
	return out
}

func newPlugin(entries []clubelo.Entry, err error) *Plugin {
	provider := core.ProviderFunc[[]clubelo.Entry](func(context.Context) ([]clubelo.Entry, error) { return entries, err })
	return New(cache.NewRefresher[[]clubelo.Entry]("elo", 12*time.Hour, provider), 3, 5)
}

func ask(t *testing.T, p *Plugin, text string) *plugins.Reply {
	t.Helper()
	reply, err := p.Handle(context.Background(), transport.Message{Kind: transport.KindPrivmsg, Text: text, ReplyTo: "#b"})
	require.NoError(t, err)
	return reply
}

func TestElo_Top(t *testing.T) {
	reply := ask(t, newPlugin(clubs(20), nil), "!elo")
	assert.Equal(t, "[ELO] 1. Man City 2000pts; 2. Real Madrid 1999pts; 3. Bayern 1998pts", reply.Body)
}

func TestElo_Position(t *testing.T) {
	reply := ask(t, newPlugin(clubs(620), nil), "!elo 612")
	assert.Equal(t, "[ELO] 609. Club 609 1392pts; 610. Club 610 1391pts; 611. Club 611 1390pts; 612. Club 612 1389pts; 613. Club 613 1388pts; 614. Club 614 1387pts", reply.Body)

	reply = ask(t, newPlugin(clubs(620), nil), "!elo 9999")
	assert.Contains(t, reply.Body, "620. Club 620")
	assert.Contains(t, reply.Body, "[ELO] 615. Club 615")
}

func TestElo_Search(t *testing.T) {
	reply := ask(t, newPlugin(clubs(20), nil), "!elo MAD")
	assert.Equal(t, "[ELO] 2. Real Madrid 1999pts", reply.Body)

	reply = ask(t, newPlugin(clubs(20), nil), "!elo genk")
	assert.Equal(t, "[ELO] No club found for your query", reply.Body)
}

func TestElo_SearchIsCapped(t *testing.T) {
	reply := ask(t, newPlugin(clubs(620), nil), "!elo club")
	assert.Equal(t, "Too many clubs (612). Showing first 5.", reply.Notice)
	assert.Equal(t, "[ELO] 9. Club 9 1992pts; 10. Club 10 1991pts; 11. Club 11 1990pts; 12. Club 12 1989pts; 13. Club 13 1988pts", reply.Body)

	reply = ask(t, newPlugin(clubs(12), nil), "!elo club 1")
	assert.Empty(t, reply.Notice)
	assert.Equal(t, "[ELO] 10. Club 10 1991pts; 11. Club 11 1990pts; 12. Club 12 1989pts", reply.Body)
}

func TestElo_NoData(t *testing.T) {
	reply := ask(t, newPlugin(nil, errors.New("timeout")), "!elo")
	assert.Equal(t, "[ELO] "+plugins.NoDataMessage, reply.Body)
}

func TestElo_NotAddressed(t *testing.T) {
	assert.Nil(t, ask(t, newPlugin(clubs(3), nil), "!games"))
}
