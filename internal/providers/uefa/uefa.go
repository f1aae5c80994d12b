// Package uefa reads private league leaderboards from the UEFA fantasy
// and match predictor games.
//
// Both APIs only answer once the session cookies set by the public
// leaderboard page are present, so every fetch first requests that page
// through a client with a cookie jar.
package uefa

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tidwall/gjson"

	"butler/internal/chatfmt"
	"butler/internal/core"
	"butler/internal/httpclient"
)

const (
	fantasySource   = "uefa-fantasy"
	predictorSource = "uefa-predictor"
)

// Endpoint describes one leaderboard.
type Endpoint struct {
	// WarmupURL is the human-facing page requested before URL. Optional.
	WarmupURL string
	URL       string
	Cookie    string
	Headers   map[string]string
}

func (e Endpoint) headers() map[string]string {
	h := make(map[string]string, len(e.Headers)+1)
	for k, v := range e.Headers {
		h[k] = v
	}
	if e.Cookie != "" {
		h["Cookie"] = e.Cookie
	}
	return h
}

func fetch(ctx context.Context, fetcher *httpclient.Fetcher, ep Endpoint) ([]byte, error) {
	headers := ep.headers()
	if ep.WarmupURL != "" {
		if _, err := fetcher.Get(ctx, ep.WarmupURL, headers); err != nil {
			slog.Debug("leaderboard warm-up request failed", "source", fetcher.Source, "error", err)
		}
	}
	return fetcher.Get(ctx, ep.URL, headers)
}

// FantasyEntry is one team in a fantasy league. Points are kept as text
// since the API reports them as strings and leaves them empty before the
// first matchday.
type FantasyEntry struct {
	Position int
	Team     string
	Manager  string
	Points   string
}

// Rank implements ranking.Entry.
func (e FantasyEntry) Rank() int { return e.Position }

// Label implements ranking.Entry.
func (e FantasyEntry) Label() string { return e.Team }

func (e FantasyEntry) String() string {
	if e.Points == "" {
		return fmt.Sprintf("%d. %s no pts", e.Position, chatfmt.PreventHighlight(e.Team))
	}
	return fmt.Sprintf("%d. %s %spts", e.Position, chatfmt.PreventHighlight(e.Team), e.Points)
}

// Fantasy fetches a fantasy league leaderboard.
type Fantasy struct {
	fetcher  *httpclient.Fetcher
	endpoint Endpoint
	memo     httpclient.ParseMemo[[]FantasyEntry]
}

// NewFantasy creates a fantasy leaderboard provider. The fetcher's client
// should carry a cookie jar.
func NewFantasy(ep Endpoint, fetcher *httpclient.Fetcher) *Fantasy {
	return &Fantasy{fetcher: fetcher, endpoint: ep}
}

// Fetch implements core.Provider.
func (f *Fantasy) Fetch(ctx context.Context) ([]FantasyEntry, error) {
	raw, err := fetch(ctx, f.fetcher, f.endpoint)
	if err != nil {
		return nil, err
	}
	return f.memo.Parse(raw, ParseFantasy)
}

// ParseFantasy reads data.value.rest from a leaderboard response. An error
// document ({"status": ..., "title": ...}) becomes a fetch error.
func ParseFantasy(raw []byte) ([]FantasyEntry, error) {
	doc, err := parseDocument(fantasySource, raw)
	if err != nil {
		return nil, err
	}
	rest := doc.Get("data.value.rest")
	if !rest.IsArray() {
		return nil, core.NewParseError(fantasySource, "missing data.value.rest", nil)
	}

	entries := make([]FantasyEntry, 0, len(rest.Array()))
	for i, item := range rest.Array() {
		pos, err := strconv.Atoi(item.Get("rankNo").String())
		if err != nil {
			return nil, core.NewParseError(fantasySource, fmt.Sprintf("entry %d: bad rankNo %q", i, item.Get("rankNo").String()), err)
		}
		entries = append(entries, FantasyEntry{
			Position: pos,
			Team:     item.Get("teamName").String(),
			Manager:  item.Get("fullName").String(),
			Points:   item.Get("overallPoints").String(),
		})
	}
	if len(entries) == 0 {
		return nil, core.NewParseError(fantasySource, "empty leaderboard", nil)
	}
	return entries, nil
}

// PredictorEntry is one player in a predictor league.
type PredictorEntry struct {
	Position       int
	User           string
	Points         int
	MatchdayPoints int
}

// Rank implements ranking.Entry.
func (e PredictorEntry) Rank() int { return e.Position }

// Label implements ranking.Entry.
func (e PredictorEntry) Label() string { return e.User }

func (e PredictorEntry) String() string {
	return fmt.Sprintf("%d. %s %dpts (md: %d)", e.Position, chatfmt.PreventHighlight(e.User), e.Points, e.MatchdayPoints)
}

// Predictor fetches a match predictor league leaderboard.
type Predictor struct {
	fetcher  *httpclient.Fetcher
	endpoint Endpoint
	memo     httpclient.ParseMemo[[]PredictorEntry]
}

// NewPredictor creates a predictor leaderboard provider.
func NewPredictor(ep Endpoint, fetcher *httpclient.Fetcher) *Predictor {
	return &Predictor{fetcher: fetcher, endpoint: ep}
}

// Fetch implements core.Provider.
func (p *Predictor) Fetch(ctx context.Context) ([]PredictorEntry, error) {
	raw, err := fetch(ctx, p.fetcher, p.endpoint)
	if err != nil {
		return nil, err
	}
	return p.memo.Parse(raw, ParsePredictor)
}

// ParsePredictor reads data.items from a predictor leaderboard. Null
// point totals count as zero.
func ParsePredictor(raw []byte) ([]PredictorEntry, error) {
	doc, err := parseDocument(predictorSource, raw)
	if err != nil {
		return nil, err
	}
	items := doc.Get("data.items")
	if !items.IsArray() {
		return nil, core.NewParseError(predictorSource, "missing data.items", nil)
	}

	entries := make([]PredictorEntry, 0, len(items.Array()))
	for i, item := range items.Array() {
		pos := item.Get("position")
		if pos.Type != gjson.Number {
			return nil, core.NewParseError(predictorSource, fmt.Sprintf("entry %d: missing position", i), nil)
		}
		user := item.Get("gh_user_data.username")
		if !user.Exists() {
			return nil, core.NewParseError(predictorSource, fmt.Sprintf("entry %d: missing username", i), nil)
		}
		entries = append(entries, PredictorEntry{
			Position:       int(pos.Int()),
			User:           user.String(),
			Points:         int(item.Get("points").Int()),
			MatchdayPoints: int(item.Get("current_md_points").Int()),
		})
	}
	if len(entries) == 0 {
		return nil, core.NewParseError(predictorSource, "empty leaderboard", nil)
	}
	return entries, nil
}

func parseDocument(source string, raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, core.NewParseError(source, "invalid json", nil)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.Get("data").Exists() && doc.Get("status").Exists() {
		return gjson.Result{}, core.NewFetchError(source, int(doc.Get("status").Int()),
			fmt.Sprintf("api error: %s", doc.Get("title").String()), nil)
	}
	return doc, nil
}
