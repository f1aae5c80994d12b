package games

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
	gametree "butler/internal/games"
	"butler/internal/plugins"
	"butler/internal/query"
	"butler/internal/transport"
)

var now = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

func fixture() gametree.Tree {
	return gametree.Tree{Countries: []gametree.Country{
		{Name: "Belgium", Competitions: []gametree.Competition{
			{Name: "Jupiler Pro League", Games: []gametree.Game{
				{Home: "Anderlecht", Away: "Genk", Start: now.Add(-2 * time.Hour), Status: gametree.Ended, HomeScore: gametree.Score(2), AwayScore: gametree.Score(1)},
				{Home: "Gent", Away: "Antwerp", Start: now.Add(3 * time.Hour), Status: gametree.Upcoming},
			}},
		}},
		{Name: "England", Competitions: []gametree.Competition{
			{Name: "Premier League", Games: []gametree.Game{
				{Home: "Arsenal", Away: "Brentford", Start: now.Add(-30 * time.Minute), Status: gametree.Ongoing, Elapsed: "31'", HomeScore: gametree.Score(1), AwayScore: gametree.Score(0)},
			}},
			{Name: "Championship", Games: []gametree.Game{
				{Home: "Leeds", Away: "Club Brugge B", Start: now.Add(-48 * time.Hour), Status: gametree.Ended, HomeScore: gametree.Score(0), AwayScore: gametree.Score(0)},
			}},
		}},
	}}
}

func newPlugin(t *testing.T, provider core.Provider[gametree.Tree], opts Options) *Plugin {
	t.Helper()
	data := cache.NewRefresher("games", 2*time.Minute, provider, cache.WithClock[gametree.Tree](func() time.Time { return now }))
	opts.Now = func() time.Time { return now }
	return New(data, query.NewParser(query.DefaultShortcuts()), opts)
}

func staticTree(tree gametree.Tree) core.Provider[gametree.Tree] {
	return core.ProviderFunc[gametree.Tree](func(context.Context) (gametree.Tree, error) { return tree, nil })
}

func say(text string) transport.Message {
	return transport.Message{Kind: transport.KindPrivmsg, Nick: "jan", Channel: "#b", ReplyTo: "#b", Text: text}
}

func TestHandle_IgnoresOtherCommands(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{})
	for _, text := range []string{"!elo", "games", "!gamesx"} {
		reply, err := p.Handle(context.Background(), say(text))
		require.NoError(t, err)
		assert.Nil(t, reply, text)
	}
}

func TestHandle_EmptyQueryListsCountries(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{})

	reply, err := p.Handle(context.Background(), say("!games"))
	require.NoError(t, err)
	assert.Equal(t, "Check out some places: Belgium, England", reply.Body)
}

func TestHandle_EmptyQueryNothingToday(t *testing.T) {
	tree := gametree.Tree{Countries: []gametree.Country{{Name: "Italy", Competitions: []gametree.Competition{
		{Name: "Serie A", Games: []gametree.Game{{Home: "Roma", Away: "Lazio", Start: now.Add(72 * time.Hour)}}},
	}}}}
	p := newPlugin(t, staticTree(tree), Options{})

	reply, err := p.Handle(context.Background(), say("!game"))
	require.NoError(t, err)
	assert.Equal(t, emptyToday, reply.Body)
}

func TestHandle_FreeTermsAcrossCompetitions(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{})

	reply, err := p.Handle(context.Background(), say("!games brugge @done"))
	require.NoError(t, err)
	assert.Empty(t, reply.Notice)
	assert.Equal(t, "<England> [Championship] (FT) Leeds 0-0 Club Brugge B", reply.Body)
}

func TestHandle_ShortcutAndModifier(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{})

	reply, err := p.Handle(context.Background(), say("!games epl @live"))
	require.NoError(t, err)
	assert.Equal(t, "<England> [Premier League] (31') Arsenal 1-0 Brentford", reply.Body)
}

func TestHandle_NoResults(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{})

	reply, err := p.Handle(context.Background(), say("!games --country San Marino"))
	require.NoError(t, err)
	assert.Equal(t, noResults, reply.Body)
}

func TestHandle_Aliases(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{Aliases: map[string]string{
		"!genk": "genk",
		"EPL":   "--country England --competition Premier League",
	}})

	reply, err := p.Handle(context.Background(), say("!genk"))
	require.NoError(t, err)
	assert.Equal(t, "<Belgium> [Jupiler Pro League] (FT) Anderlecht 2-1 Genk", reply.Body)

	reply, err = p.Handle(context.Background(), say("!epl"))
	require.NoError(t, err)
	assert.Contains(t, reply.Body, "Arsenal")
	assert.NotContains(t, reply.Body, "Leeds")
}

func TestHandle_TooManyGames(t *testing.T) {
	var list []gametree.Game
	for i := 0; i < 25; i++ {
		list = append(list, gametree.Game{Home: fmt.Sprintf("Home%d", i), Away: "Away", Start: now, Status: gametree.Upcoming})
	}
	tree := gametree.Tree{Countries: []gametree.Country{{Name: "Belgium", Competitions: []gametree.Competition{{Name: "Reserves", Games: list}}}}}
	p := newPlugin(t, staticTree(tree), Options{MaxItems: 20})

	reply, err := p.Handle(context.Background(), say("!games away"))
	require.NoError(t, err)
	assert.Equal(t, "Too many games (25). Showing first 20.", reply.Notice)
	assert.Contains(t, reply.Body, "Home19")
	assert.NotContains(t, reply.Body, "Home20")
}

func TestHandle_NeverPopulated(t *testing.T) {
	failing := core.ProviderFunc[gametree.Tree](func(context.Context) (gametree.Tree, error) {
		return gametree.Tree{}, errors.New("connection refused")
	})
	p := newPlugin(t, failing, Options{})

	reply, err := p.Handle(context.Background(), say("!games"))
	require.NoError(t, err)
	assert.Equal(t, plugins.NoDataMessage, reply.Body)
}

func TestHelp(t *testing.T) {
	p := newPlugin(t, staticTree(fixture()), Options{})
	assert.Equal(t, "games", p.Name())
	assert.NotEmpty(t, p.Help())
}
