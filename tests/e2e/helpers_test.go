//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"butler/internal/server"
)

const masterKey = "e2e-master-key"

// API endpoints
const (
	commandsPath = "/v1/commands"
	healthPath   = "/health"
	metricsPath  = "/metrics"
)

// sendCommand posts text as nick in channel and returns the raw response.
func sendCommand(t *testing.T, key string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, botURL+commandsPath, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// command sends an authorized command and decodes the bot's answer.
func command(t *testing.T, nick, channel, text string) server.CommandResponse {
	t.Helper()
	resp := sendCommand(t, masterKey, server.CommandRequest{Text: text, Nick: nick, Channel: channel})
	defer closeBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out server.CommandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// joined concatenates every message of a reply, for content assertions
// that should not depend on chunk boundaries.
func joined(resp server.CommandResponse) string {
	return strings.Join(resp.Messages, "\n")
}

// closeBody is a helper to close response body in defer statements.
func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
