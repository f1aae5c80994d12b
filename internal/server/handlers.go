// Package server exposes the bot over HTTP: a command endpoint that runs a
// chat line through the plugins, a health check and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"butler/internal/bot"
	"butler/internal/core"
	"butler/internal/transport"
)

// DefaultNick is the sender name used for API commands without one.
const DefaultNick = "api"

// Dispatcher runs a message through the plugins and collects the replies.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg transport.Message, sender transport.Sender) (bot.Result, error)
}

// CommandRequest is the body of POST /v1/commands.
type CommandRequest struct {
	Text    string `json:"text"`
	Nick    string `json:"nick,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// CommandResponse lists the chat messages the bot would have sent, in order.
type CommandResponse struct {
	RequestID string   `json:"request_id"`
	Messages  []string `json:"messages"`
}

// Handler holds the HTTP handlers
type Handler struct {
	dispatcher Dispatcher
}

// NewHandler creates a new handler with the given dispatcher
func NewHandler(dispatcher Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
	}
}

// Command handles POST /v1/commands
func (h *Handler) Command(c echo.Context) error {
	var req CommandRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidCommandError("invalid request body: "+err.Error(), err))
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return handleError(c, core.NewInvalidCommandError("text is required", nil))
	}
	if req.Nick == "" {
		req.Nick = DefaultNick
	}

	msg := transport.Message{
		Kind:    transport.KindPrivmsg,
		Nick:    req.Nick,
		Channel: req.Channel,
		Text:    req.Text,
		ReplyTo: req.Nick,
		Origin:  transport.OriginAPI,
	}
	if req.Channel != "" {
		msg.ReplyTo = req.Channel
	}

	res, err := h.dispatcher.Dispatch(c.Request().Context(), msg, nil)
	if err != nil {
		return handleError(c, err)
	}
	if res.Err != nil {
		slog.Warn("command finished with errors", "request_id", res.RequestID, "error", res.Err)
	}

	messages := res.Messages
	if messages == nil {
		messages = []string{}
	}
	return c.JSON(http.StatusOK, CommandResponse{RequestID: res.RequestID, Messages: messages})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleError converts bot errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var botErr *core.BotError
	if errors.As(err, &botErr) {
		return c.JSON(botErr.HTTPStatusCode(), botErr.ToJSON())
	}
	if errors.Is(err, bot.ErrClosed) {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "unavailable",
				"message": "bot is shutting down",
			},
		})
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				slog.Warn("http request", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Info("http request", attrs...)
			return nil
		},
	}
}
