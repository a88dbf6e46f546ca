package review

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/tildaslashalef/revu/internal/gemini"
)

// ErrorKind classifies an error surfaced by the orchestrator
type ErrorKind string

const (
	// ErrKindAPIKey indicates an invalid or rejected credential
	ErrKindAPIKey ErrorKind = "API_KEY"
	// ErrKindNetwork indicates a connectivity failure, including timeouts
	ErrKindNetwork ErrorKind = "NETWORK"
	// ErrKindResponseParsing indicates malformed JSON from the model despite
	// a declared schema
	ErrKindResponseParsing ErrorKind = "RESPONSE_PARSING"
	// ErrKindBadRequest indicates the service rejected the request (HTTP 400)
	ErrKindBadRequest ErrorKind = "BAD_REQUEST"
	// ErrKindUnknown covers everything else
	ErrKindUnknown ErrorKind = "UNKNOWN"
)

// ErrEmptySnippet is returned locally, before any network call, when the
// submitted code is empty or blank.
var ErrEmptySnippet = errors.New("snippet is empty; paste or upload some code first")

// ErrMissingAPIKey is returned at construction time when no credential is
// configured. The orchestrator must not be built without one.
var ErrMissingAPIKey = errors.New("gemini API key is not configured")

// Error is a user-facing error with a classified kind
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a classified error with an explicit kind
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Classify maps a transport or interpretation error to a classified Error.
// Structured signals (API error codes, context/net error types) are preferred;
// message-text matching is the fallback for novel errors.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(ErrKindNetwork, "the request timed out; try again in a moment", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(ErrKindNetwork, "the request timed out; try again in a moment", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewError(ErrKindNetwork, "could not reach the review service; check your connection", err)
	}

	return classifyByMessage(err)
}

func classifyAPIError(apiErr *gemini.APIError) *Error {
	detail := apiErr.ErrorDetail
	if detail == nil {
		return NewError(ErrKindUnknown, "the review service returned an unexpected error", apiErr)
	}

	// Gemini reports a bad credential as 400 INVALID_ARGUMENT with an
	// "API key not valid" message, so the key check runs before the
	// status-code switch.
	msg := strings.ToLower(detail.Message)
	if detail.Status == "UNAUTHENTICATED" || detail.Status == "PERMISSION_DENIED" || strings.Contains(msg, "api key") {
		return NewError(ErrKindAPIKey, "the configured API key was rejected by the service", apiErr)
	}

	switch detail.Code {
	case http.StatusBadRequest:
		return NewError(ErrKindBadRequest, "the review service rejected the request as malformed", apiErr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewError(ErrKindAPIKey, "the configured API key was rejected by the service", apiErr)
	default:
		return NewError(ErrKindUnknown, fmt.Sprintf("the review service failed: %s", detail.Message), apiErr)
	}
}

// classifyByMessage is the best-effort substring heuristic kept for transport
// errors that expose no structured code.
func classifyByMessage(err error) *Error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "api key"), strings.Contains(msg, "api_key"):
		return NewError(ErrKindAPIKey, "the configured API key was rejected by the service", err)
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network"):
		return NewError(ErrKindNetwork, "could not reach the review service; check your connection", err)
	default:
		return NewError(ErrKindUnknown, "something went wrong while talking to the review service", err)
	}
}
