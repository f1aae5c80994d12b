package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"butler/config"
)

func defaultConfig(t *testing.T) *config.LoadResult {
	t.Helper()
	t.Setenv("BUTLER_CONFIG", "")
	result, err := config.LoadFile("")
	require.NoError(t, err)
	return result
}

func pluginNames(a *App) []string {
	var names []string
	for _, p := range a.Dispatcher().Plugins() {
		names = append(names, p.Name())
	}
	return names
}

func TestNew_RequiresTransport(t *testing.T) {
	_, err := New(context.Background(), Config{AppConfig: defaultConfig(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transport enabled")

	_, err = New(context.Background(), Config{})
	require.Error(t, err)
}

func TestNew_DefaultPlugins(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Config.Server.Enabled = true

	a, err := New(context.Background(), Config{AppConfig: cfg})
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Shutdown(context.Background())) }()

	assert.Equal(t, []string{"help", "games", "elo", "seen", "time", "units"}, pluginNames(a))
}

func TestNew_OptionalPlugins(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Config.Server.Enabled = true
	pc := &cfg.Config.Plugins
	pc.LeagueTable.Enabled = true
	pc.LeagueTable.Leagues = map[string]config.TableSourceConfig{
		"belgium": {Alias: []string{"jpl"}, URL: "http://127.0.0.1:1/jpl"},
	}
	pc.Fantasy.Enabled = true
	pc.Fantasy.Predictor.URL = "http://127.0.0.1:1/predictor"
	pc.SimpleReply.Rules = []config.ReplyRuleConfig{{Triggers: []string{"ping"}, Replies: []string{"pong"}}}

	a, err := New(context.Background(), Config{AppConfig: cfg})
	require.NoError(t, err)
	defer a.Shutdown(context.Background())

	assert.Equal(t, []string{"help", "games", "elo", "leaguetable", "fantasy", "seen", "time", "units", "simple_reply"}, pluginNames(a))
}

func TestRun_Console(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Config.Console.Enabled = true
	cfg.Config.Plugins.SimpleReply.Rules = []config.ReplyRuleConfig{{Triggers: []string{"ping"}, Replies: []string{"pong"}}}

	var out bytes.Buffer
	a, err := New(context.Background(), Config{
		AppConfig: cfg,
		Stdin:     strings.NewReader("ping\n!help\n!seen console\nquit\n"),
		Stdout:    &out,
	})
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "pong", lines[0])
	assert.Equal(t, "Plugins: help, games, elo, seen, time, units, simple_reply", lines[1])
	// console lines are private messages and are not recorded
	assert.Equal(t, "I have not seen console.", lines[2])
}
