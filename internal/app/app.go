// Package app wires configuration, plugins, storage and transports into a
// running bot and controls its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"butler/config"
	"butler/internal/bot"
	"butler/internal/seen"
	"butler/internal/server"
	"butler/internal/transport"
)

// App represents the bot with all its dependencies.
type App struct {
	config     *config.Config
	seen       *seen.Result
	dispatcher *bot.Dispatcher
	server     *server.Server
	irc        *transport.IRC
	ircSender  transport.Sender
	console    *transport.Console

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the options for creating an App.
type Config struct {
	// AppConfig is the result of config.Load.
	AppConfig *config.LoadResult

	// Stdin and Stdout back the console transport. They default to the
	// process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.AppConfig == nil || cfg.AppConfig.Config == nil {
		return nil, fmt.Errorf("app config is required")
	}
	appCfg := cfg.AppConfig.Config
	if !appCfg.Server.Enabled && !appCfg.IRC.Enabled && !appCfg.Console.Enabled {
		return nil, fmt.Errorf("no transport enabled: enable at least one of server, irc or console")
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	app := &App{config: appCfg}

	var store seen.Store
	if appCfg.Plugins.Seen.Enabled {
		seenResult, err := seen.New(ctx, appCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize seen store: %w", err)
		}
		app.seen = seenResult
		store = seenResult.Store
	}

	ps, err := buildPlugins(appCfg, store)
	if err != nil {
		if app.seen != nil {
			if closeErr := app.seen.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to build plugins: %w (also: seen close error: %v)", err, closeErr)
			}
		}
		return nil, fmt.Errorf("failed to build plugins: %w", err)
	}
	app.dispatcher = bot.New(ps, bot.Config{MaxMessageBytes: appCfg.Chat.MaxMessageBytes})

	if appCfg.Server.Enabled {
		app.server = server.New(app.dispatcher, &server.Config{
			MasterKey:       appCfg.Server.MasterKey,
			MetricsEnabled:  appCfg.Metrics.Enabled,
			MetricsEndpoint: appCfg.Metrics.Endpoint,
			BodySizeLimit:   appCfg.Server.BodySizeLimit,
		})
	}
	if appCfg.IRC.Enabled {
		app.irc = transport.NewIRC(transport.IRCConfig{
			Server:   appCfg.IRC.Server,
			TLS:      appCfg.IRC.TLS,
			Nick:     appCfg.IRC.Nick,
			User:     appCfg.IRC.User,
			RealName: appCfg.IRC.RealName,
			Password: appCfg.IRC.Password,
			Channels: appCfg.IRC.Channels,
		})
		app.ircSender = transport.NewRateLimited(app.irc, appCfg.IRC.MessagesPerSecond, appCfg.IRC.Burst)
	}
	if appCfg.Console.Enabled {
		app.console = transport.NewConsole(cfg.Stdin, cfg.Stdout, appCfg.Console.Nick, appCfg.Console.Prompt)
	}

	app.logStartupInfo()
	return app, nil
}

// Run starts every enabled transport and blocks until ctx is cancelled or
// one of them stops. The console stopping (EOF or "quit") ends Run without
// error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	if a.server != nil {
		addr := ":" + a.config.Server.Port
		go func() {
			slog.Info("starting server", "address", addr)
			if err := a.server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server failed to start: %w", err)
				return
			}
			errCh <- nil
		}()
	}
	if a.irc != nil {
		go func() {
			errCh <- a.irc.Run(ctx, func(ctx context.Context, msg transport.Message) {
				if err := a.dispatcher.Submit(ctx, msg, a.ircSender); err != nil {
					slog.Warn("dropping irc message", "nick", msg.Nick, "error", err)
				}
			})
		}()
	}
	if a.console != nil {
		go func() {
			errCh <- a.console.Run(ctx, func(ctx context.Context, msg transport.Message) {
				res, err := a.dispatcher.Dispatch(ctx, msg, a.console)
				if err != nil {
					slog.Warn("console command failed", "error", err)
					return
				}
				if res.Err != nil {
					slog.Debug("console command finished with errors", "request_id", res.RequestID, "error", res.Err)
				}
			})
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully tears down app components in dependency order:
// the HTTP server stops accepting commands, the dispatcher finishes the
// message in progress, then the seen store is closed.
//
// Shutdown is idempotent. It attempts every step and returns the joined
// failures.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down bot...")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher close: %w", err))
		}
	}
	if a.seen != nil {
		if err := a.seen.Close(); err != nil {
			slog.Error("seen store close error", "error", err)
			errs = append(errs, fmt.Errorf("seen close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	slog.Info("shutdown complete")
	return nil
}

// Dispatcher returns the message dispatcher.
func (a *App) Dispatcher() *bot.Dispatcher {
	return a.dispatcher
}

func (a *App) logStartupInfo() {
	cfg := a.config

	names := make([]string, 0, len(a.dispatcher.Plugins()))
	for _, p := range a.dispatcher.Plugins() {
		names = append(names, p.Name())
	}
	slog.Info("plugins loaded", "plugins", names)

	if a.server != nil {
		if cfg.Server.MasterKey == "" {
			slog.Warn("BUTLER_MASTER_KEY not set, command API is unauthenticated")
		} else {
			slog.Info("authentication enabled", "mode", "master_key")
		}
		if cfg.Metrics.Enabled {
			slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
		}
	}
	if a.irc != nil {
		slog.Info("irc enabled", "server", cfg.IRC.Server, "nick", cfg.IRC.Nick, "channels", cfg.IRC.Channels,
			"messages_per_second", cfg.IRC.MessagesPerSecond)
	}
	if a.seen != nil {
		slog.Info("seen store configured", "type", cfg.Storage.Type)
	}
}
