// Package seen remembers the most recent thing every nick was seen doing.
package seen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound indicates no event was recorded for a nick.
var ErrNotFound = errors.New("nick not seen")

// Kind is the kind of chat event.
type Kind string

const (
	KindMessage Kind = "message"
	KindNotice  Kind = "notice"
	KindJoin    Kind = "join"
	KindPart    Kind = "part"
	KindQuit    Kind = "quit"
	KindNick    Kind = "nick"
	KindTopic   Kind = "topic"
)

// Event is the last recorded action of a nick.
type Event struct {
	Nick    string    `json:"nick"`
	Kind    Kind      `json:"kind"`
	Channel string    `json:"channel,omitempty"`
	Text    string    `json:"text,omitempty"`
	When    time.Time `json:"when"`
}

// Describe renders what the nick was doing, e.g. `saying "hi" in #belgium`.
func (e Event) Describe() string {
	switch e.Kind {
	case KindMessage:
		return fmt.Sprintf("saying %q in %s", e.Text, e.Channel)
	case KindNotice:
		return fmt.Sprintf("sending notice %q to %s", e.Text, e.Channel)
	case KindJoin:
		return "joining " + e.Channel
	case KindPart:
		if e.Text != "" {
			return fmt.Sprintf("leaving %s (%s)", e.Channel, e.Text)
		}
		return "leaving " + e.Channel
	case KindQuit:
		if e.Text != "" {
			return fmt.Sprintf("quitting (%s)", e.Text)
		}
		return "quitting"
	case KindNick:
		return "changing nick to " + e.Text
	case KindTopic:
		return fmt.Sprintf("setting the topic of %s to %q", e.Channel, e.Text)
	default:
		return string(e.Kind)
	}
}

func (e Event) String() string {
	return fmt.Sprintf("Last seen at %s doing %s", e.When.UTC().Format("2006-01-02 15:04:05 MST"), e.Describe())
}

// Store persists the last event per nick. Nicks compare case-insensitively.
type Store interface {
	Record(ctx context.Context, event Event) error
	Last(ctx context.Context, nick string) (Event, error)
	Close() error
}

// Key normalizes a nick for lookups.
func Key(nick string) string {
	return strings.ToLower(strings.TrimSpace(nick))
}

// ignored lists service nicks whose events are never recorded.
var ignored = map[string]bool{
	"nickserv":         true,
	"chanserv":         true,
	"freenode-connect": true,
}

// Ignored reports whether events from nick are dropped.
func Ignored(nick string) bool {
	return ignored[Key(nick)]
}

func validate(e Event) error {
	if Key(e.Nick) == "" {
		return fmt.Errorf("event nick is required")
	}
	if e.Kind == "" {
		return fmt.Errorf("event kind is required")
	}
	return nil
}

func serializeEvent(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return b, nil
}

func deserializeEvent(raw []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}
