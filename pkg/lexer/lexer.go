package lexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charly-lang/charly/pkg/ast"
)

// rule classifies a candidate substring. full matches a complete token;
// partial, when set, matches strings that are not yet a token but can still
// grow into one (an unterminated string, a lone '!').
type rule struct {
	kind    Kind
	full    *regexp.Regexp
	partial *regexp.Regexp
}

// Ordered by priority: on equal length the earlier rule wins.
var rules = []rule{
	{kind: Comment, full: regexp.MustCompile(`^#[^\n]*$`)},
	{kind: Keyword, full: regexp.MustCompile(`^(let|func|if|else|while|class)$`)},
	{kind: Null, full: regexp.MustCompile(`^null$`)},
	{kind: Numeric, full: regexp.MustCompile(`^-?\d+(\.\d+)?$`), partial: regexp.MustCompile(`^(-|-?\d+\.)$`)},
	{kind: String, full: regexp.MustCompile(`^"(\\.|[^"\\])*"$`), partial: regexp.MustCompile(`^"(\\.|[^"\\])*\\?$`)},
	{kind: Boolean, full: regexp.MustCompile(`^(true|false)$`)},
	{kind: Assignment, full: regexp.MustCompile(`^=$`)},
	{kind: Operator, full: regexp.MustCompile(`^(\+|-|\*\*|\*|/|%)$`)},
	{kind: Comparator, full: regexp.MustCompile(`^(>=|<=|==|!=|>|<)$`), partial: regexp.MustCompile(`^!$`)},
	{kind: Semicolon, full: regexp.MustCompile(`^;$`)},
	{kind: Comma, full: regexp.MustCompile(`^,$`)},
	{kind: Dot, full: regexp.MustCompile(`^\.$`)},
	{kind: Identifier, full: regexp.MustCompile(`^[A-Za-z_]\w*$`)},
	{kind: LeftParen, full: regexp.MustCompile(`^\($`)},
	{kind: RightParen, full: regexp.MustCompile(`^\)$`)},
	{kind: LeftCurly, full: regexp.MustCompile(`^\{$`)},
	{kind: RightCurly, full: regexp.MustCompile(`^\}$`)},
	{kind: LeftBracket, full: regexp.MustCompile(`^\[$`)},
	{kind: RightBracket, full: regexp.MustCompile(`^\]$`)},
	{kind: Whitespace, full: regexp.MustCompile(`^\s+$`)},
}

// Analyse splits file content into tokens. At each position the candidate
// grows one character at a time while some rule can still accept it; the
// longest complete match becomes the token. Whitespace and comments are kept.
func Analyse(file *ast.File) ([]Token, error) {
	input := file.Content
	var tokens []Token
	line := 1
	cursor := 0
	var previous Kind

	for cursor < len(input) {
		binaryMinus := previous.endsOperand()

		matchLen := 0
		var matchKind Kind
		forward := 0
		for cursor+forward < len(input) {
			_, size := utf8.DecodeRuneInString(input[cursor+forward:])
			forward += size
			candidate := input[cursor : cursor+forward]
			kind, complete, viable := classify(candidate, binaryMinus)
			if complete {
				matchLen, matchKind = forward, kind
			}
			if !viable {
				break
			}
		}

		if matchLen == 0 {
			end := cursor + forward
			if nl := strings.IndexByte(input[cursor:end], '\n'); nl > 0 {
				end = cursor + nl
			}
			return tokens, &Error{
				Text:     input[cursor:end],
				Location: ast.Location{Filename: file.Filename, Line: line},
			}
		}

		text := input[cursor : cursor+matchLen]
		tokens = append(tokens, Token{
			Kind:     matchKind,
			Text:     text,
			Location: ast.Location{Filename: file.Filename, Line: line},
		})
		if !tokens[len(tokens)-1].Skippable() {
			previous = matchKind
		}
		line += strings.Count(text, "\n")
		cursor += matchLen
	}

	return tokens, nil
}

// classify returns the highest-priority rule fully matching candidate and
// whether any rule could still match a longer candidate.
func classify(candidate string, binaryMinus bool) (kind Kind, complete, viable bool) {
	for _, r := range rules {
		if r.kind == Numeric && binaryMinus && strings.HasPrefix(candidate, "-") {
			continue
		}
		if r.full.MatchString(candidate) {
			if !complete {
				kind, complete = r.kind, true
			}
			viable = true
			continue
		}
		if r.partial != nil && r.partial.MatchString(candidate) {
			viable = true
		}
	}
	return kind, complete, viable
}

// Unquote strips the quotes of a string token and resolves backslash escapes.
// Unknown escapes keep the escaped character.
func Unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = text[1 : len(text)-1]
	}
	if !strings.Contains(text, `\`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 == len(text) {
			b.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
