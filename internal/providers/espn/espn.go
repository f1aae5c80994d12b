// Package espn builds the fixtures tree from ESPN's public soccer
// scoreboard feeds, one feed per league.
package espn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"butler/internal/core"
	"butler/internal/games"
	"butler/internal/httpclient"
)

const source = "espn"

// League binds a scoreboard slug (e.g. "eng.1") to the labels used in the
// games tree.
type League struct {
	Slug        string
	Country     string
	Competition string
}

// Provider fetches every configured league and merges them into one tree.
type Provider struct {
	fetcher *httpclient.Fetcher
	baseURL string
	leagues []League
	// Days is how far back and forward the requested date range reaches.
	Days int
	now  func() time.Time

	mu sync.Mutex
	// last holds the latest good games per league slug, served again when
	// that league's feed fails.
	last map[string][]games.Game
}

// New creates a provider for leagues served under baseURL.
func New(baseURL string, leagues []League, fetcher *httpclient.Fetcher) *Provider {
	return &Provider{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		leagues: leagues,
		Days:    1,
		now:     time.Now,
		last:    make(map[string][]games.Game),
	}
}

func (p *Provider) scoreboardURL(slug string) string {
	today := p.now().UTC()
	from := today.AddDate(0, 0, -p.Days).Format("20060102")
	to := today.AddDate(0, 0, p.Days).Format("20060102")
	return fmt.Sprintf("%s/soccer/%s/scoreboard?dates=%s-%s", p.baseURL, slug, from, to)
}

// Fetch implements core.Provider. A league that fails keeps the games of
// its last good fetch, or is left out if it never had one. The fetch only
// fails when every league does.
func (p *Provider) Fetch(ctx context.Context) (games.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var (
		tree games.Tree
		errs []error
	)
	for _, league := range p.leagues {
		list, err := p.fetchLeague(ctx, league.Slug)
		if err == nil {
			p.last[league.Slug] = list
			tree = addCompetition(tree, league, list)
			continue
		}
		errs = append(errs, err)
		prev, ok := p.last[league.Slug]
		slog.Warn("league feed failed", "source", source, "league", league.Slug, "stale", ok, "error", err)
		if ok {
			tree = addCompetition(tree, league, prev)
		}
	}
	if len(p.leagues) > 0 && len(errs) == len(p.leagues) {
		return games.Tree{}, core.NewFetchError(source, 0, "all league feeds failed", errors.Join(errs...))
	}
	return tree, nil
}

func (p *Provider) fetchLeague(ctx context.Context, slug string) ([]games.Game, error) {
	raw, err := p.fetcher.Get(ctx, p.scoreboardURL(slug), nil)
	if err != nil {
		return nil, err
	}
	return ParseScoreboard(raw)
}

func addCompetition(tree games.Tree, league League, list []games.Game) games.Tree {
	if len(list) == 0 {
		return tree
	}
	comp := games.Competition{Name: league.Competition, Games: list}
	for i := range tree.Countries {
		if tree.Countries[i].Name == league.Country {
			tree.Countries[i].Competitions = append(tree.Countries[i].Competitions, comp)
			return tree
		}
	}
	tree.Countries = append(tree.Countries, games.Country{Name: league.Country, Competitions: []games.Competition{comp}})
	return tree
}

// ParseScoreboard converts one scoreboard document into games, in feed order.
func ParseScoreboard(raw []byte) ([]games.Game, error) {
	if !gjson.ValidBytes(raw) {
		return nil, core.NewParseError(source, "invalid json", nil)
	}
	doc := gjson.ParseBytes(raw)
	events := doc.Get("events")
	if !events.IsArray() {
		return nil, core.NewParseError(source, "missing events array", nil)
	}

	var (
		list     []games.Game
		parseErr error
	)
	events.ForEach(func(_, event gjson.Result) bool {
		g, err := parseEvent(event)
		if err != nil {
			parseErr = err
			return false
		}
		list = append(list, g)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return list, nil
}

func parseEvent(event gjson.Result) (games.Game, error) {
	start, err := parseStart(event.Get("date").String())
	if err != nil {
		return games.Game{}, core.NewParseError(source, fmt.Sprintf("event %s: bad date", event.Get("id").String()), err)
	}

	g := games.Game{Start: start}
	g.Status, g.Elapsed = parseStatus(event.Get("status"))

	competitors := event.Get("competitions.0.competitors").Array()
	if len(competitors) != 2 {
		return games.Game{}, core.NewParseError(source, fmt.Sprintf("event %s: expected 2 competitors, got %d", event.Get("id").String(), len(competitors)), nil)
	}
	for _, c := range competitors {
		name := c.Get("team.displayName").String()
		score := parseScore(c.Get("score"))
		if g.Status == games.Upcoming || g.Status == games.Postponed || g.Status == games.Cancelled {
			score = nil
		}
		if c.Get("homeAway").String() == "home" {
			g.Home, g.HomeScore = name, score
		} else {
			g.Away, g.AwayScore = name, score
		}
	}
	return g, nil
}

func parseStart(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z07:00", s)
}

func parseStatus(status gjson.Result) (games.Status, string) {
	switch status.Get("type.name").String() {
	case "STATUS_POSTPONED":
		return games.Postponed, ""
	case "STATUS_CANCELED", "STATUS_ABANDONED":
		return games.Cancelled, ""
	}
	switch status.Get("type.state").String() {
	case "in":
		if status.Get("type.name").String() == "STATUS_HALFTIME" {
			return games.Ongoing, "HT"
		}
		return games.Ongoing, status.Get("displayClock").String()
	case "post":
		return games.Ended, ""
	default:
		return games.Upcoming, ""
	}
}

// parseScore accepts both the string and numeric score encodings.
func parseScore(v gjson.Result) *int {
	switch v.Type {
	case gjson.Number:
		return games.Score(int(v.Int()))
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return nil
		}
		return games.Score(n)
	default:
		return nil
	}
}
