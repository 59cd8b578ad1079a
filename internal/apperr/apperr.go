// Package apperr defines the error taxonomy shared by the repository, service
// and HTTP layers. Every failure the API reports is one *Error with a Kind;
// the HTTP error formatter switches on that Kind exactly once.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Reason names the constraint behind a KindConflict error.
type Reason string

const (
	ReasonDuplicateName Reason = "DUPLICATE_NAME"
	ReasonMissingParent Reason = "MISSING_PARENT"
)

// Error is the tagged error value.
type Error struct {
	Kind    Kind
	Message string
	// Field is the offending input field, if any.
	Field string
	// Fields holds every field-level message of a validation failure.
	Fields map[string]string
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a single bad input field.
func Validation(message, field string) *Error {
	e := &Error{Kind: KindValidation, Message: message, Field: field}
	if field != "" {
		e.Fields = map[string]string{field: message}
	}
	return e
}

// ValidationFields reports every failing field at once. The message lists the
// field messages in field-name order so it is stable across calls.
func ValidationFields(fields map[string]string) *Error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fields[name])
	}

	e := &Error{Kind: KindValidation, Message: strings.Join(msgs, "; "), Fields: fields}
	if len(names) == 1 {
		e.Field = names[0]
	}
	return e
}

// NotFound reports an absent entity, e.g. "Subject with ID 4 not found".
func NotFound(resource string, id any) *Error {
	msg := resource + " not found"
	if id != nil {
		msg = fmt.Sprintf("%s with ID %v not found", resource, id)
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a uniqueness or referential violation.
func Conflict(reason Reason, message string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: message, Field: "name"}
}

// Storage wraps an unclassified storage failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: "Database operation failed: " + op, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
