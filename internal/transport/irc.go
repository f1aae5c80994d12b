package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"

	"butler/internal/core"
)

// DefaultNickRegainInterval is how often a bot that lost its nick tries to
// take it back.
const DefaultNickRegainInterval = 5 * time.Minute

// IRCConfig configures an IRC connection.
type IRCConfig struct {
	Server   string
	TLS      bool
	Nick     string
	User     string
	RealName string
	Password string
	Channels []string

	// NickRegainInterval defaults to DefaultNickRegainInterval.
	NickRegainInterval time.Duration
}

// IRC is an IRC network connection.
type IRC struct {
	conn        *ircevent.Connection
	channels    []string
	nick        string
	regainEvery time.Duration
}

// NewIRC prepares a connection. Nothing is dialled until Run.
func NewIRC(cfg IRCConfig) *IRC {
	conn := &ircevent.Connection{
		Server:      cfg.Server,
		UseTLS:      cfg.TLS,
		Nick:        cfg.Nick,
		User:        cfg.User,
		RealName:    cfg.RealName,
		Password:    cfg.Password,
		QuitMessage: "bye",
	}
	if cfg.TLS {
		conn.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	every := cfg.NickRegainInterval
	if every <= 0 {
		every = DefaultNickRegainInterval
	}
	return &IRC{conn: conn, channels: cfg.Channels, nick: cfg.Nick, regainEvery: every}
}

// Send implements Sender with a PRIVMSG.
func (c *IRC) Send(_ context.Context, target, text string) error {
	if err := c.conn.Privmsg(target, text); err != nil {
		return core.NewTransportError("irc", fmt.Sprintf("privmsg to %s", target), err)
	}
	return nil
}

// Run connects, joins the configured channels and feeds incoming events
// to handle until ctx is cancelled.
func (c *IRC) Run(ctx context.Context, handle Handler) error {
	c.conn.AddConnectCallback(func(ircmsg.Message) {
		for _, ch := range c.channels {
			if err := c.conn.Join(ch); err != nil {
				slog.Warn("irc join failed", "channel", ch, "error", err)
				continue
			}
			slog.Info("irc joined", "channel", ch)
		}
	})
	for _, command := range []string{"PRIVMSG", "NOTICE", "JOIN", "PART", "QUIT", "NICK", "TOPIC"} {
		c.conn.AddCallback(command, func(e ircmsg.Message) {
			msg, ok := FromIRC(e, c.conn.CurrentNick())
			if !ok {
				return
			}
			handle(ctx, msg)
		})
	}

	c.conn.AddCallback(ircevent.ERR_NICKNAMEINUSE, func(ircmsg.Message) {
		slog.Warn("irc nick in use", "nick", c.nick, "current", c.conn.CurrentNick())
	})

	if err := c.conn.Connect(); err != nil {
		return core.NewTransportError("irc", "connect to "+c.conn.Server, err)
	}
	slog.Info("irc connected", "server", c.conn.Server, "nick", c.conn.CurrentNick())

	go func() {
		<-ctx.Done()
		c.conn.Quit()
	}()
	go regainNick(ctx, c.regainEvery, c.nick, c.conn.CurrentNick, func(nick string) error {
		return c.conn.Send("NICK", nick)
	})
	c.conn.Loop()
	return nil
}

// regainNick asks for desired on every tick while the server knows the bot
// under another name.
func regainNick(ctx context.Context, every time.Duration, desired string, current func() string, send func(string) error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := current()
			if !needsRegain(now, desired) {
				continue
			}
			slog.Info("irc regaining nick", "current", now, "nick", desired)
			if err := send(desired); err != nil {
				slog.Warn("irc nick change failed", "nick", desired, "error", err)
			}
		}
	}
}

// needsRegain is false before registration, when current is still empty.
func needsRegain(current, desired string) bool {
	return current != "" && desired != "" && current != desired
}

// FromIRC converts a raw IRC event. Events from self and unknown commands
// are dropped.
func FromIRC(e ircmsg.Message, self string) (Message, bool) {
	nick := e.Nick()
	if nick == "" || strings.EqualFold(nick, self) {
		return Message{}, false
	}
	param := func(i int) string {
		if i < len(e.Params) {
			return e.Params[i]
		}
		return ""
	}

	msg := Message{Nick: nick}
	switch e.Command {
	case "PRIVMSG", "NOTICE":
		msg.Kind = KindPrivmsg
		if e.Command == "NOTICE" {
			msg.Kind = KindNotice
		}
		target := param(0)
		msg.Text = param(1)
		msg.ReplyTo = nick
		if isChannel(target) {
			msg.Channel = target
			msg.ReplyTo = target
		}
	case "JOIN":
		msg.Kind = KindJoin
		msg.Channel = param(0)
	case "PART":
		msg.Kind = KindPart
		msg.Channel = param(0)
		msg.Text = param(1)
	case "QUIT":
		msg.Kind = KindQuit
		msg.Text = param(0)
	case "NICK":
		msg.Kind = KindNick
		msg.Text = param(0)
	case "TOPIC":
		msg.Kind = KindTopic
		msg.Channel = param(0)
		msg.Text = param(1)
	default:
		return Message{}, false
	}
	return msg, true
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
