package interpreter

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/parser"
	"github.com/charly-lang/charly/pkg/runtime"
)

const virtualDirectory = "/VIRTUAL"

// VirtualFile wraps source text that does not come from disk. Each call gets
// a unique name so virtual files never share a session entry.
func VirtualFile(content, directory string) *ast.File {
	name := "VIRTUAL-" + uuid.NewString()
	return &ast.File{
		Content:   content,
		Filename:  name,
		Directory: directory,
		Path:      filepath.Join(virtualDirectory, name),
		Virtual:   true,
	}
}

func builtinRequire(i *Interpreter, ctx *callContext, args []runtime.Value) (runtime.Value, error) {
	target, err := stringArg("require", args[0])
	if err != nil {
		return nil, err
	}
	return i.loadModule(ctx, target, true)
}

func builtinLoad(i *Interpreter, ctx *callContext, args []runtime.Value) (runtime.Value, error) {
	target, err := stringArg("load", args[0])
	if err != nil {
		return nil, err
	}
	return i.loadModule(ctx, target, false)
}

// loadModule resolves target relative to the calling file and runs it in the
// root scope. With cached set, a path already in the session returns its
// recorded value instead. The path is recorded as null before evaluation so
// a cyclic require sees the in-progress file as already loaded.
func (i *Interpreter) loadModule(ctx *callContext, target string, cached bool) (runtime.Value, error) {
	if i.loader == nil {
		return nil, runtime.Errorf(runtime.ErrModuleLoad, "cannot load '%s': no source loader configured", target)
	}
	path, err := i.loader.Resolve(ctx.directory(), target)
	if err != nil {
		return nil, &runtime.Error{Kind: runtime.ErrModuleLoad, Message: "failed to import file " + target, Cause: err}
	}
	if cached {
		if val, ok := i.session.ReturnValue(path); ok {
			i.logger.Debug("module cache hit", "path", path)
			return val, nil
		}
	}

	file, err := i.loader.Load(path)
	if err != nil {
		return nil, &runtime.Error{Kind: runtime.ErrModuleLoad, Message: "failed to import file " + path, Cause: err}
	}
	prog, err := i.parse(file)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("loading module", "path", path, "cached", cached)
	return i.evaluateRecorded(prog, path)
}

// evaluateRecorded runs prog in the root scope with path marked as in
// progress. On failure the session entry is restored to what it was before,
// so a later require reports the error again instead of a cached null.
func (i *Interpreter) evaluateRecorded(prog *ast.Program, path string) (runtime.Value, error) {
	previous, loaded := i.session.ReturnValue(path)
	if !loaded {
		i.session.Record(path, runtime.Null)
	}
	val, err := i.EvaluateProgram(prog, i.root)
	if err != nil {
		if loaded {
			i.session.Record(path, previous)
		} else {
			i.session.Forget(path)
		}
		return nil, err
	}
	i.session.Record(path, val)
	return val, nil
}

// builtinEval parses its argument as a virtual file and runs it in the
// caller's scope.
func builtinEval(i *Interpreter, ctx *callContext, args []runtime.Value) (runtime.Value, error) {
	source, err := stringArg("eval", args[0])
	if err != nil {
		return nil, err
	}
	prog, err := i.parse(VirtualFile(source, ctx.directory()))
	if err != nil {
		return nil, err
	}
	return i.EvaluateProgram(prog, ctx.scope)
}

func (i *Interpreter) parse(file *ast.File) (*ast.Program, error) {
	prog, err := parser.Parse(file, parser.WithLogger(i.logger))
	if err != nil {
		return nil, err
	}
	for _, d := range prog.Diagnostics {
		i.logger.Warn("incomplete parse", "file", file.Filename, "line", d.Location.Line, "detail", d.Message)
	}
	if i.strict {
		if err := parser.CheckComplete(prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}
