package media

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the player wraps exactly one of them.
var (
	ErrConfig       = errors.New("config error")
	ErrSDKLoad      = errors.New("sdk load error")
	ErrAdapterInit  = errors.New("adapter init error")
	ErrInvalidState = errors.New("invalid state error")
)

// Error carries an error kind together with the operation and cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns err as an *Error of the given kind. Errors that already carry the kind are returned unchanged.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// InvalidState builds an ErrInvalidState error for the given operation.
func InvalidState(op string, format string, args ...any) error {
	return &Error{Kind: ErrInvalidState, Op: op, Err: fmt.Errorf(format, args...)}
}
