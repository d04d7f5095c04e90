package parser

import (
	"log/slog"
	"strings"

	"github.com/charly-lang/charly/pkg/ast"
	"github.com/charly-lang/charly/pkg/lexer"
	"github.com/charly-lang/charly/pkg/optimizer"
)

// Parser builds the raw syntax tree of a single file from its tokens.
type Parser struct {
	tokens   []lexer.Token
	prog     *ast.Program
	memo     map[memoKey]memoEntry
	furthest int
	g        grammar
}

type config struct {
	logger *slog.Logger
}

type Option func(*config)

// WithLogger routes phase timings to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Parse lexes, parses and optimizes file. The returned Program may carry an
// incomplete-parse diagnostic; only lexical errors are returned as errors.
func Parse(file *ast.File, opts ...Option) (*ast.Program, error) {
	cfg := newConfig(opts)
	prog, err := parse(file, cfg)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("optimizing", "file", file.Filename)
	return optimizer.Optimize(prog), nil
}

// ParseRaw is Parse without the optimizer passes.
func ParseRaw(file *ast.File, opts ...Option) (*ast.Program, error) {
	return parse(file, newConfig(opts))
}

// Tokens returns the lexer output for file, whitespace and comments included.
func Tokens(file *ast.File) ([]lexer.Token, error) {
	return lexer.Analyse(file)
}

func parse(file *ast.File, cfg config) (*ast.Program, error) {
	cfg.logger.Debug("lexing", "file", file.Filename)
	tokens, err := lexer.Analyse(file)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("parsing", "file", file.Filename, "tokens", len(tokens))
	return ParseTokens(file, tokens, cfg.logger), nil
}

// ParseTokens runs the grammar over an already lexed token stream.
func ParseTokens(file *ast.File, tokens []lexer.Token, logger *slog.Logger) *ast.Program {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Parser{
		tokens: tokens,
		prog:   ast.NewProgram(file),
		memo:   make(map[memoKey]memoEntry),
	}
	p.buildGrammar()

	if p.skip(0) >= len(tokens) {
		p.prog.ShouldExecute = false
		return p.prog
	}

	end, _ := p.g.block(cursor{pos: 0, node: p.prog.Root()})
	if rest := p.skip(end.pos); rest < len(tokens) {
		d := incomplete(tokens, rest)
		if p.furthest > rest {
			d.Location = tokens[p.furthest].Location
		}
		p.prog.Diagnostics = append(p.prog.Diagnostics, d)
		logger.Debug("incomplete parse", "file", file.Filename, "at", d.Location.String())
	}
	return p.prog
}

const remainderWindow = 8

func incomplete(tokens []lexer.Token, from int) ast.Diagnostic {
	var parts []string
	for i := from; i < len(tokens) && len(parts) < remainderWindow; i++ {
		if !tokens[i].Skippable() {
			parts = append(parts, tokens[i].Text)
		}
	}
	return ast.Diagnostic{
		Message:  "could not parse remainder: " + strings.Join(parts, " "),
		Location: tokens[from].Location,
	}
}
