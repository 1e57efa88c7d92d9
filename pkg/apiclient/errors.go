package apiclient

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind is the closed set of failure classes a call can end in.
type Kind int

const (
	// KindUnclassified covers network errors, cancellations and anything not
	// matched below. The original error is kept in Err.
	KindUnclassified Kind = iota
	// KindTimeout means the request timeout or the context deadline elapsed.
	KindTimeout
	// KindAuthExpired means the backend answered 401 or 403.
	KindAuthExpired
	// KindValidation means a 400 answer carrying a field keyed errors map.
	KindValidation
	// KindServerError means a 5xx answer. Backend detail is dropped.
	KindServerError
	// KindClientError means any other 4xx answer, or a successful answer
	// whose body reports failure.
	KindClientError
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindAuthExpired:
		return "auth_expired"
	case KindValidation:
		return "validation"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	case KindUnclassified:
		return "unclassified"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the only error type a Client call returns.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	// Title is the backend's title for a validation failure.
	Title string
	// FieldErrors maps each invalid field to its joined messages. Only set
	// for KindValidation.
	FieldErrors map[string]string
	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for _, field := range slices.Sorted(maps.Keys(e.FieldErrors)) {
			parts = append(parts, field+": "+e.FieldErrors[field])
		}

		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}

	return e.Message
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so sentinels such as ErrTimeout can be
// used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Message == "" && t.StatusCode == 0
}

// Sentinels usable with errors.Is.
var (
	ErrTimeout      = &Error{Kind: KindTimeout}
	ErrAuthExpired  = &Error{Kind: KindAuthExpired}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrServerError  = &Error{Kind: KindServerError}
	ErrClientError  = &Error{Kind: KindClientError}
	ErrUnclassified = &Error{Kind: KindUnclassified}
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired  = errors.New("base URL is required")
	ErrInvalidBaseURL   = errors.New("base URL must be an absolute http(s) URL")
	ErrUploadRequired   = errors.New("upload content is required")
	ErrKeyNotFound      = errors.New("key not found")
	ErrNilTransformer   = errors.New("transformer is nil")
	ErrNoDurableStorage = errors.New("no durable storage configured")
)

// KindOf returns the kind of err, or KindUnclassified when err is not an *Error.
func KindOf(err error) Kind {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return KindUnclassified
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return isKind(err, KindTimeout)
}

// IsAuthExpired reports whether err is an expired session.
func IsAuthExpired(err error) bool {
	return isKind(err, KindAuthExpired)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return isKind(err, KindValidation)
}

// IsServerError reports whether err is a server error.
func IsServerError(err error) bool {
	return isKind(err, KindServerError)
}

// IsClientError reports whether err is a client error.
func IsClientError(err error) bool {
	return isKind(err, KindClientError)
}

// FieldErrorsOf returns the per-field messages of a validation failure.
func FieldErrorsOf(err error) map[string]string {
	apiErr := &Error{}
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
		return apiErr.FieldErrors
	}

	return nil
}

func isKind(err error, kind Kind) bool {
	apiErr := &Error{}
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}

	return false
}
