package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Console reads commands from a reader, typically stdin, and prints replies.
type Console struct {
	in          io.Reader
	out         io.Writer
	nick        string
	prompt      string
	interactive bool

	mu sync.Mutex
}

// NewConsole builds a console over in and out. The prompt is only shown
// when in is a terminal.
func NewConsole(in io.Reader, out io.Writer, nick, prompt string) *Console {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Console{in: in, out: out, nick: nick, prompt: prompt, interactive: interactive}
}

// Send implements Sender.
func (c *Console) Send(_ context.Context, _, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, text)
	return err
}

// Run reads lines until EOF, "quit" or ctx cancellation. Each non-empty
// line reaches handle as a private message from the console nick.
func (c *Console) Run(ctx context.Context, handle Handler) error {
	scanner := bufio.NewScanner(c.in)
	for {
		c.showPrompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		handle(ctx, Message{Kind: KindPrivmsg, Nick: c.nick, Text: line, ReplyTo: c.nick})
	}
}

func (c *Console) showPrompt() {
	if !c.interactive || c.prompt == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, c.prompt)
}
