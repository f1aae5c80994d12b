package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	result, err := LoadFile("")
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	cfg := result.Config
	assert.Equal(t, "", result.Path)
	assert.Equal(t, 400, cfg.Chat.MaxMessageBytes)
	assert.Equal(t, 20, cfg.Chat.MaxItems)
	assert.Equal(t, 10*time.Hour, cfg.Plugins.Games.WindowBefore)
	assert.Equal(t, 16*time.Hour, cfg.Plugins.Games.WindowAfter)
	assert.Equal(t, "--country England --competition Premier League", cfg.Plugins.Games.Aliases["!epl"])
	assert.Equal(t, "memory", cfg.Storage.Type)
}

func TestLoadFile_YAMLWithExpansion(t *testing.T) {
	t.Setenv("TEST_BUTLER_NICK", "kevin")
	path := writeConfig(t, `
irc:
  enabled: true
  nick: "${TEST_BUTLER_NICK}"
  channels: ["#football"]
server:
  port: "${TEST_BUTLER_PORT:-9999}"
plugins:
  elo:
    ttl: 6h
  leaguetable:
    enabled: true
    leagues:
      jpl:
        alias: ["jpl", "belgium"]
        url: "https://example.com/jpl"
    competitions:
      euro:
        alias: ["euro"]
        groups:
          a: "https://example.com/euro/a"
  simplereply:
    rules:
      - triggers: ["hello butler"]
        replies: ["hi"]
`)

	result, err := LoadFile(path)
	require.NoError(t, err)
	cfg := result.Config

	assert.Equal(t, path, result.Path)
	assert.True(t, cfg.IRC.Enabled)
	assert.Equal(t, "kevin", cfg.IRC.Nick)
	assert.Equal(t, []string{"#football"}, cfg.IRC.Channels)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 6*time.Hour, cfg.Plugins.Elo.TTL)
	// untouched defaults survive a partial file
	assert.Equal(t, 15, cfg.Plugins.Elo.TopCount)
	assert.Equal(t, "https://example.com/jpl", cfg.Plugins.LeagueTable.Leagues["jpl"].URL)
	assert.Equal(t, "https://example.com/euro/a", cfg.Plugins.LeagueTable.Competitions["euro"].Groups["a"])
	require.Len(t, cfg.Plugins.SimpleReply.Rules, 1)
	assert.Equal(t, []string{"hi"}, cfg.Plugins.SimpleReply.Rules[0].Replies)
}

func TestLoadFile_EnvBeatsFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	path := writeConfig(t, "server:\n  port: \"9090\"\n")

	result, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", result.Config.Server.Port)
}

func TestLoadFile_EnableToggles(t *testing.T) {
	t.Setenv("IRC_ENABLED", "true")
	t.Setenv("CONSOLE_ENABLED", "1")
	t.Setenv("SERVER_ENABLED", "false")
	path := writeConfig(t, "server:\n  enabled: true\n")

	result, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, result.Config.IRC.Enabled)
	assert.True(t, result.Config.Console.Enabled)
	assert.False(t, result.Config.Server.Enabled)
}

func TestLoadFile_InvalidBoolOverride(t *testing.T) {
	t.Setenv("IRC_ENABLED", "sometimes")

	_, err := LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid IRC_ENABLED")
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "server: [", wantErr: "failed to parse config file"},
		{name: "bad log format", content: "logging:\n  format: xml\n", wantErr: "invalid logging.format"},
		{name: "zero message bytes", content: "chat:\n  max_message_bytes: 0\n", wantErr: "max_message_bytes"},
		{name: "unknown location", content: "chat:\n  location: Mars/Olympus\n", wantErr: "invalid chat.location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_UsesBUTLERCONFIG(t *testing.T) {
	path := writeConfig(t, "console:\n  enabled: true\n")
	t.Setenv("BUTLER_CONFIG", path)

	result, err := Load()
	require.NoError(t, err)
	assert.True(t, result.Config.Console.Enabled)
}
