// Package plugins defines the contract between the dispatcher and the
// command plugins living in its subpackages.
package plugins

import (
	"context"
	"fmt"
	"strings"

	"butler/internal/transport"
)

// NoDataMessage answers a command whose data source never returned a
// usable snapshot.
const NoDataMessage = "No data available yet, try again later."

// HelpEntry documents one command.
type HelpEntry struct {
	Command     string
	Description string
}

// Reply is a plugin's answer. Notice, when set, is sent on its own before
// Body; both are chunked by the dispatcher.
type Reply struct {
	Notice string
	Body   string
}

// Text returns a reply with only a body.
func Text(body string) *Reply {
	return &Reply{Body: body}
}

// Plugin answers commands. Handle returns nil when the message is not
// addressed to the plugin.
type Plugin interface {
	Name() string
	Help() []HelpEntry
	Handle(ctx context.Context, msg transport.Message) (*Reply, error)
}

// Observer is implemented by plugins that want to see every incoming
// event, commands or not. Observe runs after Handle.
type Observer interface {
	Observe(ctx context.Context, msg transport.Message) error
}

// ParseCommand splits "!Trigger some args" into ("trigger", "some args").
// ok is false when text is not a command.
func ParseCommand(text string) (trigger, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "!") || len(text) == 1 {
		return "", "", false
	}
	trigger, args, _ = strings.Cut(text[1:], " ")
	return strings.ToLower(trigger), strings.TrimSpace(args), true
}

// Triggers is a case-insensitive set of command names without "!".
type Triggers map[string]bool

// NewTriggers builds a set from names.
func NewTriggers(names ...string) Triggers {
	t := make(Triggers, len(names))
	for _, n := range names {
		t[strings.ToLower(strings.TrimPrefix(n, "!"))] = true
	}
	return t
}

// Match parses msg and reports whether it is one of the triggers.
func (t Triggers) Match(msg transport.Message) (trigger, args string, ok bool) {
	if msg.Kind != transport.KindPrivmsg {
		return "", "", false
	}
	trigger, args, ok = ParseCommand(msg.Text)
	if !ok || !t[trigger] {
		return "", "", false
	}
	return trigger, args, true
}

// Strings renders each entry with its String method.
func Strings[E fmt.Stringer](entries []E) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
