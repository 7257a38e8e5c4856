// Package forms holds screen drafts: the in-memory, not yet submitted state
// of each form, its client-side validation and the backend-shaped payload
// derived from it.
package forms

import (
	"errors"
	"strings"
)

// MinPasswordLength is the shortest password the client accepts
const MinPasswordLength = 8

var (
	ErrRequired         = errors.New("required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

// ValidationError maps fields to messages. Fields keep the order they were
// reported in.
type ValidationError struct {
	Fields map[string]string
	order  []string
	causes []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, f := range e.order {
		msgs = append(msgs, e.Fields[f])
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the sentinel causes to errors.Is
func (e *ValidationError) Unwrap() []error {
	return e.causes
}

// Field returns the message for name, "" when it is valid
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// add records the first failure of a field
func (e *ValidationError) add(field, msg string, cause error) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, seen := e.Fields[field]; seen {
		return
	}
	e.Fields[field] = msg
	e.order = append(e.order, field)
	if cause != nil {
		e.causes = append(e.causes, cause)
	}
}

func (e *ValidationError) require(field, label, value string) {
	if strings.TrimSpace(value) == "" {
		e.add(field, label+" is required", ErrRequired)
	}
}

func (e *ValidationError) err() error {
	if len(e.order) == 0 {
		return nil
	}
	return e
}

// CheckPassword checks a new password against its confirmation. A mismatch
// is reported before length.
func CheckPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Toggle adds v when absent and removes it when present
func Toggle[T comparable](set []T, v T) []T {
	out := make([]T, 0, len(set)+1)
	found := false
	for _, x := range set {
		if x == v {
			found = true
			continue
		}
		out = append(out, x)
	}
	if !found {
		out = append(out, v)
	}
	return out
}
