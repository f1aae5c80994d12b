// Package main is the entry point for the butler chat bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"butler/config"
	"butler/internal/app"
	"butler/internal/logging"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	configPath := flag.String("config", "", "Path to config.yaml (default: $BUTLER_CONFIG, ./config.yaml, ./config/config.yaml)")
	consoleFlag := flag.Bool("console", false, "Read commands from stdin instead of the configured transports")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("butler %s (%s)\n", version, commit)
		os.Exit(0)
	}

	var (
		result *config.LoadResult
		err    error
	)
	if *configPath != "" {
		result, err = config.LoadFile(*configPath)
	} else {
		result, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := result.Config

	if *consoleFlag {
		cfg.Console.Enabled = true
		cfg.IRC.Enabled = false
		cfg.Server.Enabled = false
	}

	logger, err := logging.New(logging.Options{Format: cfg.Logging.Format, Level: cfg.Logging.Level})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	slog.Info("starting butler", "version", version, "commit", commit, "config", result.Path)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := app.New(ctx, app.Config{AppConfig: result})
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	runErr := bot.Run(ctx)
	if runErr != nil {
		slog.Error("bot stopped", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bot.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
