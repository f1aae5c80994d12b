// Package clubelo fetches the daily club Elo ranking published by clubelo.com.
package clubelo

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"butler/internal/core"
	"butler/internal/httpclient"
)

const source = "clubelo"

// Entry is one club in the ranking. Position is the 1-based row number in
// the published file.
type Entry struct {
	Position int
	Club     string
	Country  string
	Level    int
	Elo      float64
	From     string
	To       string
}

// Rank implements ranking.Entry.
func (e Entry) Rank() int { return e.Position }

// Label implements ranking.Entry.
func (e Entry) Label() string { return e.Club }

func (e Entry) String() string {
	return fmt.Sprintf("%d. %s %.0fpts", e.Position, e.Club, e.Elo)
}

// Provider downloads the ranking for the current day.
type Provider struct {
	fetcher *httpclient.Fetcher
	baseURL string
	now     func() time.Time
	memo    httpclient.ParseMemo[[]Entry]
}

// New creates a provider reading from baseURL (e.g. http://api.clubelo.com).
func New(baseURL string, fetcher *httpclient.Fetcher) *Provider {
	return &Provider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Fetch implements core.Provider.
func (p *Provider) Fetch(ctx context.Context) ([]Entry, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, p.now().UTC().Format("2006-01-02"))
	raw, err := p.fetcher.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return p.memo.Parse(raw, Parse)
}

// Parse reads a ranking in the clubelo CSV format
// (Rank,Club,Country,Level,Elo,From,To, with header). The Rank column is
// ignored in favour of row order, since clubelo leaves it empty for clubs
// outside the top levels.
func Parse(raw []byte) ([]Entry, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		return nil, core.NewParseError(source, "missing header", err)
	}

	var entries []Entry
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.NewParseError(source, "malformed csv", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 7 {
			return nil, core.NewParseError(source, fmt.Sprintf("row %d has %d fields, want 7", len(entries)+1, len(record)), nil)
		}
		elo, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			return nil, core.NewParseError(source, fmt.Sprintf("row %d: bad elo %q", len(entries)+1, record[4]), err)
		}
		level, _ := strconv.Atoi(strings.TrimSpace(record[3]))
		entries = append(entries, Entry{
			Position: len(entries) + 1,
			Club:     record[1],
			Country:  record[2],
			Level:    level,
			Elo:      elo,
			From:     record[5],
			To:       record[6],
		})
	}

	if len(entries) == 0 {
		return nil, core.NewParseError(source, "empty ranking", nil)
	}
	return entries, nil
}
