// Package bot runs incoming chat messages through the plugins.
//
// All messages pass through a single dispatch loop, so plugins handle one
// message at a time and their caches need no locking.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"butler/internal/chatfmt"
	"butler/internal/metrics"
	"butler/internal/plugins"
	"butler/internal/transport"
)

// ErrClosed is returned by Dispatch and Submit after Close.
var ErrClosed = errors.New("dispatcher closed")

// Config tunes the dispatcher.
type Config struct {
	// MaxMessageBytes is the per-message limit replies are chunked to.
	MaxMessageBytes int
	// QueueSize is how many messages may wait for the loop.
	QueueSize int
}

// Result describes what the bot answered to one message.
type Result struct {
	RequestID string
	Messages  []string
	// Err joins plugin and send failures. Messages holds every reply
	// line even when some of them failed to send.
	Err error
}

type request struct {
	ctx    context.Context
	msg    transport.Message
	sender transport.Sender
	done   chan Result
}

// Dispatcher owns the plugins and the loop feeding them.
type Dispatcher struct {
	plugins  []plugins.Plugin
	maxBytes int
	requests chan request
	done     chan struct{}
	wg       sync.WaitGroup

	// mu orders enqueueing against Close: once closed is set, nothing
	// new reaches requests and the loop can drain what is left.
	mu     sync.RWMutex
	closed bool
}

// New starts a dispatcher over ps. Plugins see each message in order.
func New(ps []plugins.Plugin, cfg Config) *Dispatcher {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = chatfmt.DefaultMaxBytes
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	d := &Dispatcher{
		plugins:  ps,
		maxBytes: cfg.MaxMessageBytes,
		requests: make(chan request, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

// Plugins returns the registered plugins.
func (d *Dispatcher) Plugins() []plugins.Plugin {
	return d.plugins
}

// Dispatch queues msg and waits until it has been handled. Replies go to
// msg.ReplyTo through sender; a nil sender only collects them in the
// Result.
func (d *Dispatcher) Dispatch(ctx context.Context, msg transport.Message, sender transport.Sender) (Result, error) {
	req := request{ctx: ctx, msg: msg, sender: sender, done: make(chan Result, 1)}
	if err := d.enqueue(ctx, req); err != nil {
		return Result{}, err
	}

	select {
	case res := <-req.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Submit queues msg without waiting for it to be handled. Replies go
// through sender.
func (d *Dispatcher) Submit(ctx context.Context, msg transport.Message, sender transport.Sender) error {
	return d.enqueue(ctx, request{ctx: ctx, msg: msg, sender: sender})
}

func (d *Dispatcher) enqueue(ctx context.Context, req request) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages, handles everything already queued and
// waits for the loop to exit. It is idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.done)
	d.mu.Unlock()

	d.wg.Wait()
	return nil
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case req := <-d.requests:
			d.handle(req)
		case <-d.done:
			for {
				select {
				case req := <-d.requests:
					d.handle(req)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handle(req request) {
	res := d.process(req.ctx, req.msg, req.sender)
	if req.done != nil {
		req.done <- res
	}
}

func (d *Dispatcher) process(ctx context.Context, msg transport.Message, sender transport.Sender) Result {
	res := Result{RequestID: uuid.NewString()}
	log := slog.With("request_id", res.RequestID, "nick", msg.Nick, "reply_to", msg.ReplyTo)

	var errs []error
	if msg.Kind == transport.KindPrivmsg {
		for _, p := range d.plugins {
			reply, err := p.Handle(ctx, msg)
			if err != nil {
				log.Error("plugin failed", "plugin", p.Name(), "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				continue
			}
			if reply == nil {
				continue
			}

			metrics.Commands.WithLabelValues(p.Name()).Inc()
			lines := chatfmt.Compose(reply.Notice, reply.Body, d.maxBytes)
			log.Info("command answered", "plugin", p.Name(), "command", msg.Text, "messages", len(lines))
			res.Messages = append(res.Messages, lines...)

			if sender != nil {
				if err := send(ctx, sender, msg.ReplyTo, lines); err != nil {
					log.Warn("sending reply failed", "plugin", p.Name(), "error", err)
					errs = append(errs, err)
				}
			}
		}
	}

	if msg.Origin != transport.OriginAPI {
		d.observe(ctx, log, msg)
	}

	res.Err = errors.Join(errs...)
	return res
}

// observe feeds msg to every Observer. API messages never get here: their
// sender identity is whatever the caller claimed.
func (d *Dispatcher) observe(ctx context.Context, log *slog.Logger, msg transport.Message) {
	for _, p := range d.plugins {
		o, ok := p.(plugins.Observer)
		if !ok {
			continue
		}
		if err := o.Observe(ctx, msg); err != nil {
			log.Warn("observer failed", "plugin", p.Name(), "kind", msg.Kind.String(), "error", err)
		}
	}
}

// send delivers every line, continuing past failures.
func send(ctx context.Context, sender transport.Sender, target string, lines []string) error {
	var errs []error
	for i, line := range lines {
		if err := sender.Send(ctx, target, line); err != nil {
			metrics.MessagesSent.WithLabelValues(metrics.ResultFailure).Inc()
			errs = append(errs, fmt.Errorf("message %d/%d: %w", i+1, len(lines), err))
			continue
		}
		metrics.MessagesSent.WithLabelValues(metrics.ResultSuccess).Inc()
	}
	return errors.Join(errs...)
}
