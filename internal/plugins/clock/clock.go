// Package clock tells the time in UTC.
package clock

import (
	"context"
	"time"

	"butler/internal/plugins"
	"butler/internal/transport"
)

const gmtTease = "Lol GMT, get with the times, grandpa. "

// Plugin is the time command.
type Plugin struct {
	triggers plugins.Triggers
	now      func() time.Time
}

// New creates the plugin.
func New() *Plugin {
	return &Plugin{triggers: plugins.NewTriggers("time", "utc", "now", "gmt"), now: time.Now}
}

func (p *Plugin) Name() string { return "time" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "!time / !utc / !now", Description: "Show the current time in UTC"},
		{Command: "!gmt", Description: "GMT is deprecated."},
	}
}

func (p *Plugin) Handle(_ context.Context, msg transport.Message) (*plugins.Reply, error) {
	trigger, args, ok := p.triggers.Match(msg)
	if !ok || args != "" {
		return nil, nil
	}
	text := "It is currently " + p.now().UTC().Format("Monday 02 January 2006 15:04:05") + " UTC."
	if trigger == "gmt" {
		text = gmtTease + text
	}
	return plugins.Text(text), nil
}
