// Package transport connects the bot to chat networks. Every transport
// turns incoming traffic into Messages and accepts outgoing text through
// Sender.
package transport

import (
	"context"
	"strings"
)

// Kind is the kind of incoming event.
type Kind int

const (
	KindPrivmsg Kind = iota
	KindNotice
	KindJoin
	KindPart
	KindQuit
	KindNick
	KindTopic
)

func (k Kind) String() string {
	switch k {
	case KindPrivmsg:
		return "privmsg"
	case KindNotice:
		return "notice"
	case KindJoin:
		return "join"
	case KindPart:
		return "part"
	case KindQuit:
		return "quit"
	case KindNick:
		return "nick"
	case KindTopic:
		return "topic"
	default:
		return "unknown"
	}
}

// Origin is where a message entered the bot.
type Origin int

const (
	OriginChat Origin = iota
	// OriginAPI messages come from the HTTP command API, where the caller
	// picks Nick and Channel.
	OriginAPI
)

// Message is one incoming event.
type Message struct {
	Kind Kind
	// Nick is the sender.
	Nick string
	// Channel is the channel the event happened in, empty for private
	// messages and network-wide events (quit, nick).
	Channel string
	// Text is the message body, the part/quit reason, the new nick or the
	// new topic.
	Text string
	// ReplyTo is where answers go: the channel, or the sender for private
	// messages.
	ReplyTo string
	Origin  Origin
}

// IsCommand reports whether m is a chat message starting with "!".
func (m Message) IsCommand() bool {
	return m.Kind == KindPrivmsg && strings.HasPrefix(strings.TrimSpace(m.Text), "!")
}

// Sender delivers one line of text to a target.
type Sender interface {
	Send(ctx context.Context, target, text string) error
}

// Handler receives incoming messages from a transport.
type Handler func(ctx context.Context, msg Message)
