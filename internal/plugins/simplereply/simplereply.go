// Package simplereply answers fixed trigger phrases with canned replies.
package simplereply

import (
	"context"
	"math/rand/v2"
	"strings"

	"butler/internal/plugins"
	"butler/internal/transport"
)

// Rule maps trigger phrases to possible replies. Triggers match the whole
// message, ignoring case and surrounding spaces.
type Rule struct {
	Triggers []string
	Replies  []string
}

// Plugin is the canned reply plugin.
type Plugin struct {
	rules []Rule
	pick  func(n int) int
}

// New creates the plugin. Rules without replies are dropped.
func New(rules []Rule) *Plugin {
	p := &Plugin{pick: rand.IntN}
	for _, r := range rules {
		if len(r.Replies) > 0 && len(r.Triggers) > 0 {
			p.rules = append(p.rules, r)
		}
	}
	return p
}

func (p *Plugin) Name() string { return "simple_reply" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "various text triggers", Description: "Various replies that require but a static string"},
	}
}

func (p *Plugin) Handle(_ context.Context, msg transport.Message) (*plugins.Reply, error) {
	if msg.Kind != transport.KindPrivmsg {
		return nil, nil
	}
	text := strings.TrimSpace(msg.Text)
	for _, r := range p.rules {
		for _, trigger := range r.Triggers {
			if strings.EqualFold(trigger, text) {
				return plugins.Text(r.Replies[p.pick(len(r.Replies))]), nil
			}
		}
	}
	return nil, nil
}
