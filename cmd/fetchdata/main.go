// Package main provides a CLI tool that fetches one provider document,
// prints what the bot would parse out of it and optionally records the raw
// body as a test fixture.
// Usage:
//
//	go run ./cmd/fetchdata \
//	  -provider=table \
//	  -url=https://int.soccerway.com/national/belgium/pro-league/ \
//	  -output=tests/contract/testdata/soccerway/pro-league.html
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"butler/internal/chatfmt"
	"butler/internal/httpclient"
	"butler/internal/providers/clubelo"
	"butler/internal/providers/espn"
	"butler/internal/providers/soccerway"
	"butler/internal/providers/uefa"
)

// parsers turn a raw body into printable lines.
var parsers = map[string]func(raw []byte) ([]string, error){
	"elo": func(raw []byte) ([]string, error) {
		entries, err := clubelo.Parse(raw)
		return lines(entries), err
	},
	"table": func(raw []byte) ([]string, error) {
		rows, err := soccerway.Parse(raw)
		return lines(rows), err
	},
	"games": func(raw []byte) ([]string, error) {
		gs, err := espn.ParseScoreboard(raw)
		if err != nil {
			return nil, err
		}
		clock := chatfmt.Clock{Now: time.Now()}
		out := make([]string, len(gs))
		for i, g := range gs {
			out[i] = chatfmt.FormatGame(g, clock)
		}
		return out, nil
	},
	"fantasy": func(raw []byte) ([]string, error) {
		entries, err := uefa.ParseFantasy(raw)
		return lines(entries), err
	},
	"predictor": func(raw []byte) ([]string, error) {
		entries, err := uefa.ParsePredictor(raw)
		return lines(entries), err
	},
}

func lines[E fmt.Stringer](items []E) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}

func main() {
	provider := flag.String("provider", "table", "Parser to use (elo, table, games, fantasy, predictor)")
	url := flag.String("url", "", "Document URL (required)")
	output := flag.String("output", "", "Save the raw body to this file")
	header := flag.String("header", "", "Extra request header as Name:Value")
	timeout := flag.Duration("timeout", 30*time.Second, "Request timeout")
	flag.Parse()

	if *url == "" {
		fmt.Fprintln(os.Stderr, "Error: -url flag is required")
		flag.Usage()
		os.Exit(1)
	}
	parse, ok := parsers[*provider]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown provider %q\n", *provider)
		os.Exit(1)
	}

	headers := map[string]string{}
	if *header != "" {
		name, value, found := strings.Cut(*header, ":")
		if !found {
			fmt.Fprintf(os.Stderr, "Error: header must look like Name:Value, got %q\n", *header)
			os.Exit(1)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fetcher := httpclient.NewFetcher(*provider, httpclient.NewHTTPClient(nil), "butler-fetchdata/1.0")
	fmt.Printf("Fetching %s...\n", *url)
	raw, err := fetcher.Get(ctx, *url, headers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Received %d bytes\n", len(raw))

	if *output != "" {
		if err := writeOutput(*output, raw); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Raw body saved to %s\n", *output)
	}

	out, err := parse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing: %v\n", err)
		os.Exit(1)
	}
	for _, line := range out {
		fmt.Println(line)
	}
	fmt.Printf("%d entries\n", len(out))
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
