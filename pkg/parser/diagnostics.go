package parser

import (
	"errors"
	"fmt"

	"github.com/charly-lang/charly/pkg/ast"
)

var ErrIncompleteParse = errors.New("incomplete parse")

// IncompleteParseError is the error form of an incomplete-parse diagnostic,
// for callers that treat unparsed input as fatal.
type IncompleteParseError struct {
	Message  string
	Location ast.Location
}

func (e *IncompleteParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func (e *IncompleteParseError) Is(target error) bool {
	return target == ErrIncompleteParse
}

// CheckComplete returns the first diagnostic of prog as an error.
func CheckComplete(prog *ast.Program) error {
	if prog == nil || len(prog.Diagnostics) == 0 {
		return nil
	}
	d := prog.Diagnostics[0]
	return &IncompleteParseError{Message: d.Message, Location: d.Location}
}
