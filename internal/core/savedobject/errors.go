package savedobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies repository errors.
type Kind string

const (
	KindBadRequest      Kind = "bad_request"
	KindUnsupportedType Kind = "unsupported_type"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindStorageFailure  Kind = "storage_failure"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnsupportedType = errors.New("unsupported saved object type")
	ErrNotFound        = errors.New("saved object not found")
	ErrConflict        = errors.New("saved object conflict")
	ErrStorageFailure  = errors.New("storage failure")
)

// Error is the typed error returned by every repository operation.
type Error struct {
	Kind    Kind
	Type    string
	ID      string
	Message string

	// NotOverwritable marks a conflict on an object that lives outside the caller namespace.
	NotOverwritable bool
	// Removed marks the NotFound returned after DeleteFromNamespaces deleted the object.
	Removed bool

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindStorageFailure {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindBadRequest:
		return ErrBadRequest
	case KindUnsupportedType:
		return ErrUnsupportedType
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	default:
		return ErrStorageFailure
	}
}

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindBadRequest, KindUnsupportedType:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MarshalJSON renders the error payload used in bulk and conflict responses.
func (e *Error) MarshalJSON() ([]byte, error) {
	payload := struct {
		StatusCode int            `json:"statusCode"`
		Error      string         `json:"error"`
		Message    string         `json:"message"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		StatusCode: e.StatusCode(),
		Error:      http.StatusText(e.StatusCode()),
		Message:    e.Error(),
	}
	if e.NotOverwritable {
		payload.Metadata = map[string]any{"isNotOverwritable": true}
	}
	return json.Marshal(payload)
}

// NewBadRequest reports malformed options.
func NewBadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NewUnsupportedType reports a type that is not allow-listed.
func NewUnsupportedType(typ string) *Error {
	return &Error{
		Kind:    KindUnsupportedType,
		Type:    typ,
		Message: fmt.Sprintf("Unsupported saved object type: '%s'", typ),
	}
}

// NewNotFound reports a missing record.
func NewNotFound(typ, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Type:    typ,
		ID:      id,
		Message: fmt.Sprintf("Saved object [%s/%s] not found", typ, id),
	}
}

// NewConflict reports an id collision or a namespace preflight failure.
func NewConflict(typ, id string) *Error {
	return &Error{
		Kind:    KindConflict,
		Type:    typ,
		ID:      id,
		Message: fmt.Sprintf("Saved object [%s/%s] conflict", typ, id),
	}
}

// NewStorageFailure wraps an I/O or driver error.
func NewStorageFailure(op string, err error) *Error {
	return &Error{Kind: KindStorageFailure, Message: op, Err: err}
}

// AsError converts any error into an *Error. Errors that are not already typed
// become storage failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewStorageFailure("storage operation failed", err)
}

// KindOf returns the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}

func IsBadRequest(err error) bool      { return errors.Is(err, ErrBadRequest) }
func IsUnsupportedType(err error) bool { return errors.Is(err, ErrUnsupportedType) }
func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsStorageFailure(err error) bool  { return errors.Is(err, ErrStorageFailure) }

// IsObjectRemoved reports whether err is the terminal NotFound returned after
// DeleteFromNamespaces removed the last namespace and deleted the object.
func IsObjectRemoved(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound && e.Removed
}
