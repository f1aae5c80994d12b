package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"butler/config"
	"butler/internal/cache"
	gametree "butler/internal/games"
	"butler/internal/httpclient"
	"butler/internal/plugins"
	"butler/internal/plugins/clock"
	"butler/internal/plugins/elo"
	"butler/internal/plugins/fantasy"
	"butler/internal/plugins/games"
	"butler/internal/plugins/help"
	"butler/internal/plugins/lastseen"
	"butler/internal/plugins/leaguetable"
	"butler/internal/plugins/simplereply"
	"butler/internal/plugins/units"
	"butler/internal/providers/clubelo"
	"butler/internal/providers/espn"
	"butler/internal/providers/soccerway"
	"butler/internal/providers/uefa"
	"butler/internal/query"
	"butler/internal/seen"
)

// buildPlugins creates the enabled plugins in dispatch order. The help
// plugin comes first and documents every other plugin.
func buildPlugins(cfg *config.Config, store seen.Store) ([]plugins.Plugin, error) {
	loc, err := time.LoadLocation(cfg.Chat.Location)
	if err != nil {
		return nil, fmt.Errorf("chat location: %w", err)
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.HTTP.Timeout
	clientCfg.ResponseHeaderTimeout = cfg.HTTP.ResponseHeaderTimeout
	client := httpclient.NewHTTPClient(&clientCfg)
	fetcher := func(source string) *httpclient.Fetcher {
		return httpclient.NewFetcher(source, client, cfg.HTTP.UserAgent)
	}

	h := help.New()
	list := []plugins.Plugin{h}
	add := func(p plugins.Plugin) {
		list = append(list, p)
		h.Add(p)
		slog.Info("plugin enabled", "plugin", p.Name())
	}

	pc := cfg.Plugins
	if pc.Games.Enabled {
		leagues := make([]espn.League, len(pc.Games.Leagues))
		for i, l := range pc.Games.Leagues {
			leagues[i] = espn.League{Slug: l.Slug, Country: l.Country, Competition: l.Competition}
		}
		provider := espn.New(pc.Games.BaseURL, leagues, fetcher("espn"))
		data := cache.NewRefresher[gametree.Tree]("games", pc.Games.TTL, provider,
			cache.WithTimeout[gametree.Tree](cfg.HTTP.Timeout))
		add(games.New(data, query.NewParser(query.DefaultShortcuts()), games.Options{
			Window:   gametree.Window{Before: pc.Games.WindowBefore, After: pc.Games.WindowAfter},
			Location: loc,
			MaxItems: cfg.Chat.MaxItems,
			Aliases:  pc.Games.Aliases,
		}))
	}

	if pc.Elo.Enabled {
		data := cache.NewRefresher[[]clubelo.Entry]("elo", pc.Elo.TTL, clubelo.New(pc.Elo.URL, fetcher("clubelo")),
			cache.WithTimeout[[]clubelo.Entry](cfg.HTTP.Timeout))
		add(elo.New(data, pc.Elo.TopCount, cfg.Chat.MaxItems))
	}

	if pc.LeagueTable.Enabled {
		add(leaguetable.New(tableSources(pc.LeagueTable, fetcher("soccerway"), cfg.HTTP.Timeout)))
	}

	if pc.Fantasy.Enabled {
		p := buildFantasy(pc.Fantasy, clientCfg, cfg.HTTP)
		if p != nil {
			add(p)
		}
	}

	if pc.Seen.Enabled && store != nil {
		add(lastseen.New(store))
	}

	if pc.Time.Enabled {
		add(clock.New())
	}

	if pc.Units.Enabled {
		add(units.New(units.DefaultShortcuts()))
	}

	if pc.SimpleReply.Enabled && len(pc.SimpleReply.Rules) > 0 {
		rules := make([]simplereply.Rule, len(pc.SimpleReply.Rules))
		for i, r := range pc.SimpleReply.Rules {
			rules[i] = simplereply.Rule{Triggers: r.Triggers, Replies: r.Replies}
		}
		add(simplereply.New(rules))
	}

	return list, nil
}

// tableSources builds one cache per league table page. Sources are sorted
// by name so that startup logs are stable.
func tableSources(cfg config.LeagueTableConfig, fetcher *httpclient.Fetcher, timeout time.Duration) []leaguetable.Source {
	table := func(name, url string) *cache.Refresher[[]soccerway.Row] {
		return cache.NewRefresher[[]soccerway.Row]("table:"+name, cfg.TTL, soccerway.NewTable(url, fetcher),
			cache.WithTimeout[[]soccerway.Row](timeout))
	}

	var sources []leaguetable.Source
	for name, league := range cfg.Leagues {
		sources = append(sources, leaguetable.Source{
			Name:    name,
			Aliases: league.Alias,
			Groups:  []leaguetable.Group{{Data: table(name, league.URL)}},
		})
	}
	for name, comp := range cfg.Competitions {
		src := leaguetable.Source{Name: name, Aliases: comp.Alias}
		for group, url := range comp.Groups {
			src.Groups = append(src.Groups, leaguetable.Group{Name: group, Data: table(name+":"+group, url)})
		}
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources
}

// buildFantasy returns nil when neither leaderboard is configured. Each
// leaderboard gets its own cookie jar.
func buildFantasy(cfg config.FantasyConfig, clientCfg httpclient.ClientConfig, httpCfg config.HTTPConfig) *fantasy.Plugin {
	cookieClient := func() *http.Client {
		c := clientCfg
		c.WithCookies = true
		return httpclient.NewHTTPClient(&c)
	}
	endpoint := func(lb config.LeaderboardConfig) uefa.Endpoint {
		return uefa.Endpoint{WarmupURL: lb.WarmupURL, URL: lb.URL, Cookie: lb.Cookie, Headers: lb.Headers}
	}

	var (
		fantasyData   *cache.Refresher[[]uefa.FantasyEntry]
		predictorData *cache.Refresher[[]uefa.PredictorEntry]
	)
	if cfg.Fantasy.URL != "" {
		f := httpclient.NewFetcher("uefa-fantasy", cookieClient(), httpCfg.UserAgent)
		fantasyData = cache.NewRefresher[[]uefa.FantasyEntry]("fantasy", cfg.TTL, uefa.NewFantasy(endpoint(cfg.Fantasy), f),
			cache.WithTimeout[[]uefa.FantasyEntry](httpCfg.Timeout))
	}
	if cfg.Predictor.URL != "" {
		f := httpclient.NewFetcher("uefa-predictor", cookieClient(), httpCfg.UserAgent)
		predictorData = cache.NewRefresher[[]uefa.PredictorEntry]("predictor", cfg.TTL, uefa.NewPredictor(endpoint(cfg.Predictor), f),
			cache.WithTimeout[[]uefa.PredictorEntry](httpCfg.Timeout))
	}
	if fantasyData == nil && predictorData == nil {
		slog.Warn("fantasy plugin enabled without any leaderboard url")
		return nil
	}
	return fantasy.New(fantasyData, predictorData, cfg.TopCount)
}
