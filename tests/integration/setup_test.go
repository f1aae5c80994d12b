//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"butler/config"
	"butler/internal/app"
	"butler/internal/server"
)

// TestBotFixture holds a running bot with the HTTP command API enabled.
type TestBotFixture struct {
	ServerURL string
	App       *app.App

	// PgPool and MongoDb are set for the matching DBType, for assertions.
	PgPool  *pgxpool.Pool
	MongoDb *mongo.Database
	DBType  string

	cancelFunc context.CancelFunc
}

// SetupTestBot starts the bot with its seen store on dbType
// ("postgresql" or "mongodb").
func SetupTestBot(t *testing.T, dbType string) *TestBotFixture {
	t.Helper()

	ctx, cancel := context.WithCancel(GetTestContext())

	port, err := findAvailablePort()
	require.NoError(t, err, "failed to find available port")

	application, err := app.New(ctx, app.Config{AppConfig: buildAppConfig(t, dbType, port)})
	require.NoError(t, err, "failed to create app")

	go func() {
		_ = application.Run(ctx)
	}()

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.NoError(t, waitForServer(serverURL+"/health"), "server failed to become healthy")

	fixture := &TestBotFixture{
		ServerURL:  serverURL,
		App:        application,
		DBType:     dbType,
		cancelFunc: cancel,
	}
	switch dbType {
	case "postgresql":
		fixture.PgPool = GetPostgreSQLPool()
	case "mongodb":
		fixture.MongoDb = GetMongoDatabase()
	}

	t.Cleanup(func() { fixture.Shutdown(t) })
	return fixture
}

// Shutdown stops the bot and releases its storage connection.
func (f *TestBotFixture) Shutdown(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if f.App != nil {
		_ = f.App.Shutdown(ctx)
		f.App = nil
	}
	if f.cancelFunc != nil {
		f.cancelFunc()
	}
}

// Command posts text to the command API as nick in channel.
func (f *TestBotFixture) Command(t *testing.T, nick, channel, text string) server.CommandResponse {
	t.Helper()

	body, err := json.Marshal(server.CommandRequest{Text: text, Nick: nick, Channel: channel})
	require.NoError(t, err)

	resp, err := http.Post(f.ServerURL+"/v1/commands", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out server.CommandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func buildAppConfig(t *testing.T, dbType string, port int) *config.LoadResult {
	t.Helper()
	t.Setenv("BUTLER_CONFIG", "")

	result, err := config.LoadFile("")
	require.NoError(t, err)
	cfg := result.Config

	cfg.Server.Enabled = true
	cfg.Server.Port = fmt.Sprintf("%d", port)
	cfg.IRC.Enabled = false
	cfg.Console.Enabled = false
	cfg.Logging.Format = "json"

	cfg.Storage.Type = dbType
	switch dbType {
	case "postgresql":
		cfg.Storage.PostgreSQL.URL = pgURL
	case "mongodb":
		cfg.Storage.MongoDB.URL = mongoURL
		cfg.Storage.MongoDB.Database = databaseName
	}
	return result
}

func waitForServer(healthURL string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < 50; i++ {
		resp, err := client.Get(healthURL)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not become healthy within timeout")
}

func findAvailablePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = listener.Close() }()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
