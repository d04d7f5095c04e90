package runtime

import (
	"errors"
	"fmt"

	"github.com/charly-lang/charly/pkg/ast"
)

var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrLockedScope       = errors.New("locked scope")
	ErrNotAFunction      = errors.New("not a function")
	ErrNotAnObject       = errors.New("not an object")
	ErrNotAnArray        = errors.New("not an array")
	ErrArity             = errors.New("wrong number of arguments")
	ErrIndexOutOfBounds  = errors.New("index out of bounds")
	ErrModuleLoad        = errors.New("module load failed")
	ErrInvalidType       = errors.New("invalid type")
)

// Error is an evaluation failure. Kind is one of the sentinel errors above and
// is what errors.Is matches against.
type Error struct {
	Kind     error
	Message  string
	Location ast.Location
	Cause    error
}

func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Location.Line == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Location, msg)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// At sets the location unless one is already recorded.
func (e *Error) At(loc ast.Location) *Error {
	if e.Location.Line == 0 {
		e.Location = loc
	}
	return e
}
