// Package help lists plugins and their commands.
package help

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"butler/internal/plugins"
	"butler/internal/transport"
)

// Documented is anything that can describe its commands.
type Documented interface {
	Name() string
	Help() []plugins.HelpEntry
}

// Plugin is the help command.
type Plugin struct {
	order    []string
	entries  map[string][]plugins.HelpEntry
	triggers plugins.Triggers
}

// New creates the help plugin, which documents itself first.
func New() *Plugin {
	p := &Plugin{
		entries:  make(map[string][]plugins.HelpEntry),
		triggers: plugins.NewTriggers("help"),
	}
	p.Add(p)
	return p
}

// Add registers the help of d. Names are case-insensitive and adding a name
// twice replaces its entries.
func (p *Plugin) Add(d Documented) {
	name := strings.ToLower(d.Name())
	if _, ok := p.entries[name]; !ok {
		p.order = append(p.order, name)
	}
	p.entries[name] = d.Help()
}

func (p *Plugin) Name() string { return "help" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "!help", Description: "Shows a list of plugins for which some help exists"},
		{Command: "!help PLUGINNAME", Description: "Shows a list of commands for the given plugin"},
		{Command: "!help PLUGINNAME INDEX", Description: "Shows the INDEXth command for the given plugin. Zero-based."},
	}
}

func (p *Plugin) Handle(_ context.Context, msg transport.Message) (*plugins.Reply, error) {
	_, args, ok := p.triggers.Match(msg)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(args)

	switch {
	case len(fields) == 0:
		return plugins.Text("Plugins: " + strings.Join(p.order, ", ")), nil

	case len(fields) >= 2:
		if pos, err := strconv.Atoi(fields[1]); err == nil {
			return plugins.Text(p.entry(fields[0], pos)), nil
		}
	}
	return plugins.Text(p.commands(fields[0])), nil
}

func (p *Plugin) commands(name string) string {
	name = strings.ToLower(name)
	entries := p.entries[name]
	if len(entries) == 0 {
		return "No help found for " + name
	}
	cmds := make([]string, len(entries))
	for i, e := range entries {
		cmds[i] = e.Command
	}
	return fmt.Sprintf("Plugin %s: %s. Try !help %s NUMBER", name, strings.Join(cmds, ", "), name)
}

func (p *Plugin) entry(name string, pos int) string {
	name = strings.ToLower(name)
	entries := p.entries[name]
	if pos < 0 || pos >= len(entries) {
		return fmt.Sprintf("No help found at position %d for %s", pos, name)
	}
	e := entries[pos]
	return fmt.Sprintf("Command %q in %s: %s", e.Command, name, e.Description)
}
