// Package elo answers !elo with the clubelo.com ranking.
package elo

import (
	"context"
	"strconv"

	"butler/internal/cache"
	"butler/internal/chatfmt"
	"butler/internal/plugins"
	"butler/internal/providers/clubelo"
	"butler/internal/ranking"
	"butler/internal/transport"
)

const prefix = "[ELO] "

// Plugin is the elo command.
type Plugin struct {
	data     *cache.Refresher[[]clubelo.Entry]
	triggers plugins.Triggers
	top      int
	maxItems int
}

// New creates the plugin. top is how many clubs a bare !elo lists and
// maxItems caps the clubs a search answers with.
func New(data *cache.Refresher[[]clubelo.Entry], top, maxItems int) *Plugin {
	if top <= 0 {
		top = 15
	}
	if maxItems <= 0 {
		maxItems = 20
	}
	return &Plugin{data: data, triggers: plugins.NewTriggers("elo"), top: top, maxItems: maxItems}
}

func (p *Plugin) Name() string { return "elo" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "!elo", Description: "Show the top few teams ranked by clubelo."},
		{Command: "!elo QUERY", Description: "Search for teams matching QUERY and list their clubelo."},
		{Command: "!elo POSITION", Description: "Show the teams around the POSITIONth place."},
	}
}

func (p *Plugin) Handle(ctx context.Context, msg transport.Message) (*plugins.Reply, error) {
	_, args, ok := p.triggers.Match(msg)
	if !ok {
		return nil, nil
	}

	entries, ok := p.data.Get(ctx)
	if !ok {
		return plugins.Text(prefix + plugins.NoDataMessage), nil
	}

	if args == "" {
		return plugins.Text(chatfmt.JoinItems(prefix, plugins.Strings(ranking.Top(entries, p.top)))), nil
	}
	if n, err := strconv.Atoi(args); err == nil {
		window := ranking.WindowAround(entries, n, ranking.DefaultWindowSize)
		return plugins.Text(chatfmt.JoinItems(prefix, plugins.Strings(window))), nil
	}
	found := ranking.Search(entries, args)
	if len(found) == 0 {
		return plugins.Text(prefix + "No club found for your query"), nil
	}
	reply := &plugins.Reply{}
	if len(found) > p.maxItems {
		reply.Notice = chatfmt.TooManyNotice("clubs", len(found), p.maxItems)
		found = found[:p.maxItems]
	}
	reply.Body = chatfmt.JoinItems(prefix, plugins.Strings(found))
	return reply, nil
}
