package lexer

import (
	"errors"
	"fmt"

	"github.com/charly-lang/charly/pkg/ast"
)

// ErrLexical is matched by every error Analyse returns.
var ErrLexical = errors.New("lexical error")

// Error reports source text no token rule accepts.
type Error struct {
	Text     string
	Location ast.Location
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: could not parse input: (%s)", e.Location, e.Text)
}

func (e *Error) Is(target error) bool {
	return target == ErrLexical
}
