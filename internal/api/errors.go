package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GenericMessage is shown when nothing better can be derived from a failure
const GenericMessage = "Something went wrong. Please try again."

// Kind tags the class of a failed request
type Kind int

const (
	// KindTransport means no response was received
	KindTransport Kind = iota + 1
	// KindHTTP means the backend answered with a status >= 400
	KindHTTP
	// KindDecode means a 2xx body could not be decoded
	KindDecode
	// KindCanceled means the caller's context was canceled
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ErrAbsolutePath is returned when a caller passes a full URL instead of a
// path relative to the configured base URL.
var ErrAbsolutePath = errors.New("request path must be relative to the API base URL")

// Error is the single failure shape returned by Client. Message is already
// derived for display; Status and Body keep the raw response for callers
// that need finer handling.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Body    []byte
	Method  string
	Path    string
	// FromServer is true when Message came from the response body
	FromServer bool

	cause error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsError extracts an *Error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsCanceled reports whether err came from a canceled request
func IsCanceled(err error) bool {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind == KindCanceled
	}
	return false
}

// MessageOf returns the display message for err
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

// ServerMessage returns the backend-provided message for err when there is
// one, and fallback otherwise.
func ServerMessage(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && apiErr.FromServer && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// noticeFor maps a status to the global notification text, if any
func noticeFor(status int) (string, bool) {
	switch {
	case status == http.StatusUnauthorized:
		return "Authentication required. Please sign in.", true
	case status == http.StatusForbidden:
		return "You do not have permission to perform this action.", true
	case status == http.StatusNotFound:
		return "The requested resource was not found.", true
	case status >= 500:
		return "Server error. Please try again later.", true
	default:
		return "", false
	}
}

// messageFromBody derives a message from a structured error body,
// preferring "detail" over "message".
func messageFromBody(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	if msg := rawText(payload.Detail); msg != "" {
		return msg, true
	}
	if msg := rawText(payload.Message); msg != "" {
		return msg, true
	}
	return "", false
}

// rawText flattens the shapes FastAPI uses for detail: a string, an object
// with msg or message, or a list of either.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var parts []string
		for _, item := range list {
			if msg := rawText(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		return obj.Message
	}
	return ""
}
