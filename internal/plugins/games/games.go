// Package games answers !games queries over the fixtures feed.
package games

import (
	"context"
	"strings"
	"time"

	"butler/internal/cache"
	"butler/internal/chatfmt"
	gametree "butler/internal/games"
	"butler/internal/plugins"
	"butler/internal/query"
	"butler/internal/transport"
)

const (
	noResults  = "Your !games query returned no results."
	emptyToday = "I've got nothing today. Go outside and enjoy the weather."
)

// Options tunes filtering and rendering.
type Options struct {
	Window   gametree.Window
	Location *time.Location
	MaxItems int
	// Aliases maps extra triggers (without "!") to the query they stand
	// for, e.g. "epl" -> "--country England --competition Premier League".
	Aliases map[string]string
	Now     func() time.Time
}

// Plugin is the games command.
type Plugin struct {
	data     *cache.Refresher[gametree.Tree]
	parser   *query.Parser
	triggers plugins.Triggers
	aliases  map[string]string
	opts     Options
}

// New creates the plugin over a fixtures cache.
func New(data *cache.Refresher[gametree.Tree], parser *query.Parser, opts Options) *Plugin {
	if opts.Window == (gametree.Window{}) {
		opts.Window = gametree.DefaultWindow
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	aliases := make(map[string]string, len(opts.Aliases))
	for k, v := range opts.Aliases {
		aliases[strings.ToLower(strings.TrimPrefix(k, "!"))] = v
	}
	return &Plugin{
		data:     data,
		parser:   parser,
		triggers: plugins.NewTriggers("game", "games"),
		aliases:  aliases,
		opts:     opts,
	}
}

func (p *Plugin) Name() string { return "games" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "!games", Description: "List countries for which there is information today."},
		{Command: "!games QUERY", Description: "Search for games matching query. Optionally combine with @modifiers or shortcuts"},
		{Command: "!games --country NAME --competition NAME", Description: "Only show games of the given country and/or competition."},
		{Command: "!games @yday", Description: "Match yesterday's games."},
		{Command: "!games @today", Description: "Match today's games."},
		{Command: "!games @tomorrow", Description: "Match tomorrow's games."},
		{Command: "!games @done", Description: "Match games which are finished."},
		{Command: "!games @live", Description: "Match games currently ongoing."},
		{Command: "!games @soon", Description: "Match games yet to start."},
		{Command: "!games @bytime", Description: "Sort games by kickoff instead of grouping them."},
	}
}

// Handle answers !game, !games and the configured aliases.
func (p *Plugin) Handle(ctx context.Context, msg transport.Message) (*plugins.Reply, error) {
	args, ok := p.match(msg)
	if !ok {
		return nil, nil
	}

	tree, ok := p.data.Get(ctx)
	if !ok {
		return plugins.Text(plugins.NoDataMessage), nil
	}

	now := p.opts.Now()
	filter := gametree.Filter{Now: now, Location: p.opts.Location, Window: p.opts.Window}

	if args == "" {
		todays := filter.Apply(tree, query.Query{Time: query.SlidingWindow})
		if todays.Empty() {
			return plugins.Text(emptyToday), nil
		}
		return plugins.Text("Check out some places: " + strings.Join(todays.CountryNames(), ", ")), nil
	}

	q := p.parser.Parse(args)
	filtered := filter.Apply(tree, q)
	if filtered.Empty() {
		return plugins.Text(noResults), nil
	}
	notice, body := chatfmt.RenderGames(filtered, q.Order, p.opts.MaxItems, chatfmt.Clock{Now: now, Location: p.opts.Location})
	return &plugins.Reply{Notice: notice, Body: body}, nil
}

func (p *Plugin) match(msg transport.Message) (string, bool) {
	if _, args, ok := p.triggers.Match(msg); ok {
		return args, true
	}
	if msg.Kind != transport.KindPrivmsg {
		return "", false
	}
	trigger, args, ok := plugins.ParseCommand(msg.Text)
	if !ok {
		return "", false
	}
	expansion, ok := p.aliases[trigger]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(expansion + " " + args), true
}
