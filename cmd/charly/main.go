package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/driver"
	"github.com/charly-lang/charly/pkg/interpreter"
	"github.com/charly-lang/charly/pkg/parser"
)

const cliToolVersion = "charly 0.0.0-dev"

type options struct {
	continueOnError bool
	strict          bool
	noexec          bool
	dumpAST         bool
	dumpTokens      bool
	debug           bool
	noColor         bool
	eval            string
	files           []string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "--help", "-h":
			printUsage(os.Stdout)
			return 0
		case "--version", "-V", "version":
			fmt.Fprintln(os.Stdout, cliToolVersion)
			return 0
		case "deps":
			return runDeps(args[1:])
		case "run":
			args = args[1:]
		}
	}
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		printUsage(os.Stderr)
		return 1
	}
	return runEntry(opts)
}

func parseFlags(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--continue":
			opts.continueOnError = true
		case "--strict":
			opts.strict = true
		case "--noexec":
			opts.noexec = true
		case "--ast":
			opts.dumpAST = true
		case "--tokens":
			opts.dumpTokens = true
		case "--log":
			opts.debug = true
		case "--nocolor":
			opts.noColor = true
		case "-e", "--eval":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a source argument", arg)
			}
			i++
			opts.eval = args[i]
		case "--":
			opts.files = append(opts.files, args[i+1:]...)
			return opts, nil
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return opts, fmt.Errorf("unknown flag %q", arg)
			}
			opts.files = append(opts.files, arg)
		}
	}
	return opts, nil
}

// runEntry parses every source up front, then evaluates them in order
// against one interpreter so top-level bindings carry over between files.
func runEntry(opts options) int {
	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		settings = defaultSettings()
	}
	color := settings.colorEnabled() && !opts.noColor && os.Getenv("NO_COLOR") == ""
	report := newReporter(os.Stderr, color)

	level, err := settings.logLevel()
	if err != nil {
		report.warnf("%v", err)
	}
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := newLogger(os.Stderr, level)
	strict := opts.strict || settings.Strict

	cwd, err := os.Getwd()
	if err != nil {
		report.errorf("failed to determine working directory: %v", err)
		return 1
	}

	entries := append([]string(nil), opts.files...)
	anchor := cwd
	if len(entries) > 0 {
		anchor = filepath.Dir(entries[0])
	}
	manifest, err := loadManifestFrom(anchor)
	if err != nil && !errors.Is(err, driver.ErrManifestNotFound) {
		report.errorf("failed to load manifest: %v", err)
		return 1
	}
	if len(entries) == 0 && opts.eval == "" {
		if manifest == nil {
			report.errorf("charly requires a source file (%s not found)", driver.ManifestName)
			printUsage(os.Stderr)
			return 1
		}
		entries = append(entries, manifest.MainPath())
	}

	resolver, err := newResolver(manifest, settings, logger)
	if err != nil {
		report.errorf("%v", err)
		return 1
	}

	var files []*ast.File
	var paths []string
	if manifest != nil {
		paths = append(paths, manifest.PreludePaths()...)
	}
	paths = append(paths, entries...)
	for _, path := range paths {
		file, err := driver.ReadFile(path)
		if err != nil {
			report.errorf("%v", err)
			return 1
		}
		files = append(files, file)
	}
	if opts.eval != "" {
		files = append(files, interpreter.VirtualFile(opts.eval, cwd))
	}

	failed := false
	var programs []*ast.Program
	for _, file := range files {
		prog, err := parseFile(file, opts, strict, logger, report)
		if err != nil {
			report.errorf("%v", err)
			if !opts.continueOnError {
				return 1
			}
			failed = true
			continue
		}
		programs = append(programs, prog)
	}
	if opts.noexec {
		return exitCode(failed)
	}

	interpOpts := []interpreter.Option{
		interpreter.WithStdout(os.Stdout),
		interpreter.WithStdin(os.Stdin),
		interpreter.WithLogger(logger),
		interpreter.WithLoader(resolver),
		interpreter.WithStrict(strict),
	}
	if !color {
		interpOpts = append(interpOpts, interpreter.WithColor(false))
	}
	interp := interpreter.New(interpOpts...)
	for _, prog := range programs {
		if _, err := interp.Evaluate([]*ast.Program{prog}); err != nil {
			report.errorf("%v", err)
			if !opts.continueOnError {
				return 1
			}
			failed = true
		}
	}
	return exitCode(failed)
}

func parseFile(file *ast.File, opts options, strict bool, logger *slog.Logger, report *reporter) (*ast.Program, error) {
	if opts.dumpTokens {
		tokens, err := parser.Tokens(file)
		if err != nil {
			return nil, err
		}
		for _, tok := range tokens {
			if !tok.Skippable() {
				fmt.Fprintln(os.Stdout, tok.String())
			}
		}
	}
	prog, err := parser.Parse(file, parser.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if strict {
		if err := parser.CheckComplete(prog); err != nil {
			return nil, err
		}
	}
	for _, d := range prog.Diagnostics {
		report.warnf("%s: %s", d.Location, d.Message)
	}
	if opts.dumpAST {
		if err := writeAST(os.Stdout, prog); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func writeAST(w io.Writer, prog *ast.Program) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(prog.Dump(prog.Root())); err != nil {
		return fmt.Errorf("encode ast: %w", err)
	}
	return enc.Close()
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	manifestPath, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

// newResolver wires the manifest's dependencies into the require resolver.
// Without a manifest only relative targets resolve.
func newResolver(manifest *driver.Manifest, settings Settings, logger *slog.Logger) (*driver.Resolver, error) {
	opts := []driver.ResolverOption{driver.WithResolverLogger(logger)}
	if manifest == nil || len(manifest.Dependencies) == 0 {
		return driver.NewResolver(opts...), nil
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	cacheDir, err := resolveCacheDir(settings)
	if err != nil {
		return nil, err
	}
	roots, err := driver.DependencyRoots(manifest, lock, cacheDir)
	if err != nil {
		return nil, err
	}
	return driver.NewResolver(append(opts, driver.WithDependencies(roots))...), nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func exitCode(failed bool) int {
	if failed {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  charly [flags] [file.charly ...]")
	fmt.Fprintln(w, "  charly [flags] -e <source>")
	fmt.Fprintln(w, "  charly deps install")
	fmt.Fprintln(w, "  charly version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --continue  keep running the remaining files after an error")
	fmt.Fprintln(w, "  --strict    treat unparsed input as an error")
	fmt.Fprintln(w, "  --noexec    parse only")
	fmt.Fprintln(w, "  --ast       print the optimized syntax tree as YAML")
	fmt.Fprintln(w, "  --tokens    print the token stream")
	fmt.Fprintln(w, "  --log       debug logging on stderr")
	fmt.Fprintln(w, "  --nocolor   disable colored output")
}
