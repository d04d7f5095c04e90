package interpreter

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/runtime"
)

// SourceLoader is the file-system collaborator used by require and load.
type SourceLoader interface {
	// Resolve maps target, relative to dir, to the absolute path of a file.
	Resolve(dir, target string) (string, error)
	// Load reads the file at an absolute path returned by Resolve.
	Load(path string) (*ast.File, error)
}

// Interpreter evaluates optimized programs against a shared root scope.
type Interpreter struct {
	root     *runtime.Scope
	session  *runtime.Session
	loader   SourceLoader
	stdout   io.Writer
	stdin    *bufio.Reader
	logger   *slog.Logger
	renderer *lipgloss.Renderer
	strict   bool
	builtins map[string]builtin
}

type Option func(*Interpreter)

func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.stdout = w }
}

func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) { i.stdin = bufio.NewReader(r) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithLoader(loader SourceLoader) Option {
	return func(i *Interpreter) { i.loader = loader }
}

// WithColor forces colorize output on or off instead of detecting it from
// the output writer.
func WithColor(enabled bool) Option {
	return func(i *Interpreter) {
		profile := termenv.Ascii
		if enabled {
			profile = termenv.ANSI
		}
		i.renderer = lipgloss.NewRenderer(i.stdout)
		i.renderer.SetColorProfile(profile)
	}
}

// WithStrict makes incomplete parses of required, loaded and evaluated
// sources fatal.
func WithStrict(strict bool) Option {
	return func(i *Interpreter) { i.strict = strict }
}

// New returns an interpreter with an empty root scope and session.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		root:    runtime.NewScope(nil),
		session: runtime.NewSession(),
		stdout:  os.Stdout,
		stdin:   bufio.NewReader(os.Stdin),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.renderer == nil {
		i.renderer = lipgloss.NewRenderer(i.stdout)
	}
	i.builtins = defaultBuiltins()
	return i
}

// RootScope returns the scope shared by every top-level program.
func (i *Interpreter) RootScope() *runtime.Scope {
	return i.root
}

func (i *Interpreter) Session() *runtime.Session {
	return i.session
}

// Evaluate runs programs in order against the root scope and returns the
// value of the last one. Programs flagged as not executable are skipped.
func (i *Interpreter) Evaluate(programs []*ast.Program) (runtime.Value, error) {
	var last runtime.Value = runtime.Null
	for _, prog := range programs {
		path := ""
		if prog.File != nil && !prog.File.Virtual {
			path = prog.File.Path
		}
		var (
			val runtime.Value
			err error
		)
		if path != "" {
			val, err = i.evaluateRecorded(prog, path)
		} else {
			val, err = i.EvaluateProgram(prog, i.root)
		}
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

// EvaluateProgram runs the top-level block of prog in scope.
func (i *Interpreter) EvaluateProgram(prog *ast.Program, scope *runtime.Scope) (runtime.Value, error) {
	if prog == nil || !prog.ShouldExecute {
		return runtime.Null, nil
	}
	if scope == nil {
		scope = i.root
	}
	i.logger.Debug("executing program", "file", prog.File.Filename)
	block := prog.Child(prog.Root(), 0)
	if block == ast.NoNode {
		return runtime.Null, nil
	}
	val, err := i.evaluateBlock(prog, block, scope)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("program finished", "file", prog.File.Filename, "result", runtime.Stringify(val))
	return val, nil
}

// locate attaches the location of id to evaluation errors that lack one.
func locate(prog *ast.Program, id ast.NodeID, err error) error {
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		rtErr.At(prog.Location(id))
	}
	return err
}
