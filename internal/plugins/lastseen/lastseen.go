// Package lastseen records what every nick did last and answers !seen.
package lastseen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"butler/internal/plugins"
	"butler/internal/seen"
	"butler/internal/transport"
)

var kinds = map[transport.Kind]seen.Kind{
	transport.KindPrivmsg: seen.KindMessage,
	transport.KindNotice:  seen.KindNotice,
	transport.KindJoin:    seen.KindJoin,
	transport.KindPart:    seen.KindPart,
	transport.KindQuit:    seen.KindQuit,
	transport.KindNick:    seen.KindNick,
	transport.KindTopic:   seen.KindTopic,
}

// Plugin is the seen command and event recorder.
type Plugin struct {
	store    seen.Store
	triggers plugins.Triggers
	now      func() time.Time
}

// New creates the plugin over store.
func New(store seen.Store) *Plugin {
	return &Plugin{store: store, triggers: plugins.NewTriggers("seen", "lastseen"), now: time.Now}
}

func (p *Plugin) Name() string { return "seen" }

func (p *Plugin) Help() []plugins.HelpEntry {
	return []plugins.HelpEntry{
		{Command: "!seen NICK", Description: "Check what I saw NICK most recently do."},
	}
}

func (p *Plugin) Handle(ctx context.Context, msg transport.Message) (*plugins.Reply, error) {
	_, args, ok := p.triggers.Match(msg)
	if !ok {
		return nil, nil
	}
	nick, _, _ := strings.Cut(args, " ")
	if nick == "" {
		return plugins.Text("Usage: !seen NICK"), nil
	}

	event, err := p.store.Last(ctx, nick)
	if errors.Is(err, seen.ErrNotFound) {
		return plugins.Text(fmt.Sprintf("I have not seen %s.", nick)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", nick, err)
	}
	return plugins.Text(event.String()), nil
}

// Observe records msg as its sender's latest event.
func (p *Plugin) Observe(ctx context.Context, msg transport.Message) error {
	kind, ok := kinds[msg.Kind]
	if !ok || msg.Nick == "" || seen.Ignored(msg.Nick) {
		return nil
	}
	// private messages stay private
	if (kind == seen.KindMessage || kind == seen.KindNotice) && msg.Channel == "" {
		return nil
	}
	return p.store.Record(ctx, seen.Event{
		Nick:    msg.Nick,
		Kind:    kind,
		Channel: msg.Channel,
		Text:    msg.Text,
		When:    p.now().UTC(),
	})
}
