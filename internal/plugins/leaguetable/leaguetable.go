// Package leaguetable answers !table with scraped league standings.
package leaguetable

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"butler/internal/cache"
	"butler/internal/chatfmt"
	"butler/internal/plugins"
	"butler/internal/providers/soccerway"
	"butler/internal/ranking"
	"butler/internal/transport"
)

// Group is one standings table with its own cache.
type Group struct {
	Name string
	Data *cache.Refresher[[]soccerway.Row]
}

// Source is a league (one unnamed group) or a competition with several
// named groups, reachable through its aliases.
type Source struct {
	Name    string
	Aliases []string
	Groups  []Group
}

// Plugin is the league table command.
type Plugin struct {
	sources  map[string]*Source
	names    []string
	triggers plugins.Triggers
}

// New creates the plugin. Groups of each source are listed by name.
func New(sources []Source) *Plugin {
	p := &Plugin{
		sources:  make(map[string]*Source),
		triggers: plugins.NewTriggers("table", "ranking", "standings"),
	}
	for i := range sources {
		src := &sources[i]
		sort.SliceStable(src.Groups, func(a, b int) bool { return src.Groups[a].Name < src.Groups[b].Name })
		p.sources[strings.ToLower(src.Name)] = src
		for _, alias := range src.Aliases {
			p.sources[strings.ToLower(alias)] = src
		}
		p.names = append(p.names, src.Name)
	}
	sort.Strings(p.names)
	return p
}

func (p *Plugin) Name() string { return "leaguetable" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "!table", Description: "List the tables I know about."},
		{Command: "!table NAME", Description: "Show the top of the table NAME."},
		{Command: "!table NAME POSITION", Description: "Show the teams around POSITION in table NAME."},
		{Command: "!table NAME TEAM", Description: "Show the teams around TEAM in table NAME."},
		{Command: "!table NAME GROUP [POSITION|TEAM]", Description: "Same, for one group of a competition."},
	}
}

func (p *Plugin) Handle(ctx context.Context, msg transport.Message) (*plugins.Reply, error) {
	_, args, ok := p.triggers.Match(msg)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return plugins.Text("Tables: " + strings.Join(p.names, ", ")), nil
	}

	alias := fields[0]
	src, ok := p.sources[strings.ToLower(alias)]
	if !ok {
		return plugins.Text(fmt.Sprintf("Unknown table %s. Tables: %s", alias, strings.Join(p.names, ", "))), nil
	}
	rest := fields[1:]

	if len(src.Groups) == 1 {
		return p.answer(ctx, alias, src.Groups[0], rest), nil
	}
	if len(rest) > 0 {
		for _, g := range src.Groups {
			if strings.EqualFold(g.Name, rest[0]) {
				return p.answer(ctx, alias, g, rest[1:]), nil
			}
		}
	}
	if len(rest) == 0 {
		groups := make([]string, len(src.Groups))
		for i, g := range src.Groups {
			groups[i] = g.Name
		}
		return plugins.Text(fmt.Sprintf("Groups in %s: %s. Try !table %s GROUP", alias, strings.Join(groups, ", "), alias)), nil
	}

	// A team name without group: look in every group.
	team := strings.Join(rest, " ")
	anyData := false
	for _, g := range src.Groups {
		rows, ok := g.Data.Get(ctx)
		if !ok {
			continue
		}
		anyData = true
		if reply, found := teamWindow(label(src, g), rows, team); found {
			return reply, nil
		}
	}
	if !anyData {
		return plugins.Text(plugins.NoDataMessage), nil
	}
	return plugins.Text(fmt.Sprintf("Team not found in %s.", alias)), nil
}

func (p *Plugin) answer(ctx context.Context, alias string, g Group, rest []string) *plugins.Reply {
	rows, ok := g.Data.Get(ctx)
	if !ok {
		return plugins.Text(plugins.NoDataMessage)
	}
	src := p.sources[strings.ToLower(alias)]
	prefix := label(src, g)

	if len(rest) == 0 {
		return render(prefix, ranking.WindowAround(rows, 1, ranking.DefaultWindowSize))
	}
	if len(rest) == 1 {
		if n, err := strconv.Atoi(rest[0]); err == nil {
			return render(prefix, ranking.WindowAround(rows, n, ranking.DefaultWindowSize))
		}
	}
	if reply, found := teamWindow(prefix, rows, strings.Join(rest, " ")); found {
		return reply
	}
	return plugins.Text(fmt.Sprintf("Team not found in %s.", alias))
}

func teamWindow(prefix string, rows []soccerway.Row, team string) (*plugins.Reply, bool) {
	rank, ok := ranking.FindRankByLabel(rows, team)
	if !ok {
		return nil, false
	}
	pos, ok := ranking.PositionOf(rows, rank)
	if !ok {
		return nil, false
	}
	return render(prefix, ranking.WindowAround(rows, pos, ranking.DefaultWindowSize)), true
}

func label(src *Source, g Group) string {
	if g.Name == "" {
		return "[" + src.Name + "] "
	}
	return "[" + src.Name + " " + g.Name + "] "
}

func render(prefix string, rows []soccerway.Row) *plugins.Reply {
	return plugins.Text(chatfmt.JoinItems(prefix, plugins.Strings(rows)))
}
