// Package core holds the error taxonomy and the contracts shared by data
// providers, caches and plugins.
package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeFetch indicates a network or upstream failure while fetching provider data
	ErrorTypeFetch ErrorType = "fetch_error"
	// ErrorTypeParse indicates the provider response did not have the expected shape
	ErrorTypeParse ErrorType = "parse_error"
	// ErrorTypeTransport indicates a chat message could not be delivered
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeNotFound indicates the requested entity does not exist
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeInvalidCommand indicates a malformed command from a user
	ErrorTypeInvalidCommand ErrorType = "invalid_command_error"
)

// BotError is the base error type for all bot errors
type BotError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	// Source names the provider or transport involved, if any.
	Source string `json:"source,omitempty"`
	// StatusCode is the upstream HTTP status for fetch errors.
	StatusCode int `json:"-"`
	// Original error for debugging (not exposed to users)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *BotError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("[%s] %s", e.Source, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements the error unwrapping interface
func (e *BotError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error to a status for the command API.
func (e *BotError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidCommand:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeFetch, ErrorTypeParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *BotError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewFetchError creates a new fetch error. statusCode is zero when no response was received.
func NewFetchError(source string, statusCode int, message string, err error) *BotError {
	return &BotError{
		Type:       ErrorTypeFetch,
		Message:    message,
		Source:     source,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewParseError creates a new parse error
func NewParseError(source string, message string, err error) *BotError {
	return &BotError{
		Type:    ErrorTypeParse,
		Message: message,
		Source:  source,
		Err:     err,
	}
}

// NewTransportError creates a new transport error
func NewTransportError(transport string, message string, err error) *BotError {
	return &BotError{
		Type:    ErrorTypeTransport,
		Message: message,
		Source:  transport,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *BotError {
	return &BotError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInvalidCommandError creates a new invalid command error
func NewInvalidCommandError(message string, err error) *BotError {
	return &BotError{
		Type:    ErrorTypeInvalidCommand,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err wraps a BotError of type t.
func IsType(err error, t ErrorType) bool {
	var botErr *BotError
	return errors.As(err, &botErr) && botErr.Type == t
}

// IsFetchError reports whether err wraps a fetch error.
func IsFetchError(err error) bool { return IsType(err, ErrorTypeFetch) }

// IsParseError reports whether err wraps a parse error.
func IsParseError(err error) bool { return IsType(err, ErrorTypeParse) }
