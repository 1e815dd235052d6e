// Package apperror defines the error kinds shared by every module and the
// transports in front of them.
package apperror

import (
	"errors"
	"fmt"
	"strings"

	monoerrors "github.com/go-monolith/mono/pkg/errors"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation is returned for bad input shape or size limits.
	ErrValidation = errors.New("validation failed")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated covers a missing, malformed, expired or invalid token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound covers missing rows and rows owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrTransientStorage wraps store failures the caller may retry.
	ErrTransientStorage = errors.New("storage temporarily unavailable")
)

// Kind is the tagged classification of an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindEmailTaken
	KindInvalidCredentials
	KindUnauthenticated
	KindNotFound
	KindTransientStorage
)

var kinds = []struct {
	kind Kind
	err  error
}{
	{KindValidation, ErrValidation},
	{KindEmailTaken, ErrEmailTaken},
	{KindInvalidCredentials, ErrInvalidCredentials},
	{KindUnauthenticated, ErrUnauthenticated},
	{KindNotFound, ErrNotFound},
	{KindTransientStorage, ErrTransientStorage},
}

// String returns a stable, machine-readable name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindEmailTaken:
		return "email_taken"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindTransientStorage:
		return "transient_storage"
	default:
		return "unknown"
	}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// Validation builds an ErrValidation with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Transient wraps a store failure as ErrTransientStorage.
func Transient(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransientStorage, op, err)
}

// FromRemote rebuilds a typed error from one that crossed the service bus,
// where only the message survives. Errors that already carry a kind, and
// messages that match none, are returned unchanged.
func FromRemote(err error) error {
	if err == nil || KindOf(err) != KindUnknown {
		return err
	}
	detail := remoteMessage(err)
	if sentinel, _ := locate(detail); sentinel != nil {
		return &remoteError{kind: sentinel, msg: err.Error(), detail: detail}
	}
	return err
}

// Reason returns the detail that follows the kind's message, e.g. the
// "title is required" part of a validation error.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	msg := remoteMessage(err)
	sentinel, i := locate(msg)
	if sentinel == nil {
		return ""
	}
	rest := msg[i+len(sentinel.Error()):]
	return strings.TrimPrefix(rest, ": ")
}

// Fault is an expected failure carried inside a service response instead of
// as a handler error, so the bus does not report it as one.
type Fault struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AsFault turns an expected error into a Fault. Storage and unclassified
// errors are returned as they are and stay handler errors.
func AsFault(err error) (*Fault, error) {
	switch kind := KindOf(err); kind {
	case KindUnknown, KindTransientStorage:
		return nil, err
	default:
		return &Fault{Kind: kind.String(), Message: err.Error()}, nil
	}
}

// Err rebuilds the typed error described by f. A nil Fault is a nil error.
func (f *Fault) Err() error {
	if f == nil {
		return nil
	}
	for _, k := range kinds {
		if k.kind.String() == f.Kind {
			return &remoteError{kind: k.err, msg: f.Message, detail: f.Message}
		}
	}
	return errors.New(f.Message)
}

// remoteMessage returns the handler's own message when err came back from
// the bus, without the service prefix and error-type suffix mono adds.
func remoteMessage(err error) string {
	var re *remoteError
	if errors.As(err, &re) {
		return re.detail
	}
	if remote, ok := monoerrors.GetRemoteError(err); ok {
		return remote.Message
	}
	return err.Error()
}

// locate finds the sentinel whose message appears earliest in msg. Wrapped
// causes follow the sentinel, so the earliest match is the outermost kind.
func locate(msg string) (error, int) {
	var (
		found error
		at    = -1
	)
	for _, k := range kinds {
		i := strings.Index(msg, k.err.Error())
		if i >= 0 && (at < 0 || i < at) {
			found, at = k.err, i
		}
	}
	return found, at
}

type remoteError struct {
	kind   error
	msg    string
	detail string
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.kind }
