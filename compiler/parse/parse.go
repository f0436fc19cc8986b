package parse

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/hemantkunda/Compilers/compiler/ast"
	"github.com/hemantkunda/Compilers/compiler/scan"
)

type (
	// TokenSource produces tokens on demand.
	// Next must return an end token once the input is exhausted.
	TokenSource interface {
		HasNext() bool
		Next() (scan.Token, error)
	}

	// Parser is a recursive descent parser with one token of lookahead.
	Parser struct {
		src TokenSource

		cur scan.Token
		idx int

		globals []string
		seen    map[string]struct{}
		inProc  bool
	}

	UnexpectedError struct {
		Want  scan.Token
		Got   scan.Token
		Index int
	}
)

var ErrGrammar = errors.New("grammar error")

// Tokens the grammar matches on.
var (
	tokSemicolon = scan.Token{Lexeme: ";", Kind: scan.EOL}
	tokComma     = scan.Token{Lexeme: ",", Kind: scan.Comma}
	tokOpen      = scan.Token{Lexeme: "(", Kind: scan.ParenExp}
	tokClose     = scan.Token{Lexeme: ")", Kind: scan.ParenExp}
	tokAssign    = scan.Token{Lexeme: ":=", Kind: scan.Operand}
	tokDot       = scan.Token{Lexeme: ".", Kind: scan.End}
	tokIdent     = scan.Token{Lexeme: "identifier", Kind: scan.Identifier}
	tokNumber    = scan.Token{Lexeme: "number", Kind: scan.Number}
	tokRelation  = scan.Token{Lexeme: "relational operator", Kind: scan.Operand}
	tokStatement = scan.Token{Lexeme: "statement", Kind: scan.Keyword}
)

func ParseFile(ctx context.Context, name string) (*ast.Program, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return Parse(ctx, text)
}

// Parse parses a whole program from text.
func Parse(ctx context.Context, text []byte) (*ast.Program, error) {
	p, err := New(ctx, scan.New(text))
	if err != nil {
		return nil, err
	}

	return p.ParseProgram(ctx)
}

// New creates a parser and reads the first token.
func New(ctx context.Context, src TokenSource) (p *Parser, err error) {
	p = &Parser{
		src:  src,
		seen: make(map[string]struct{}),
	}

	err = p.read(ctx)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Index is the number of tokens consumed so far.
func (p *Parser) Index() int { return p.idx }

// Current is the lookahead token.
func (p *Parser) Current() scan.Token { return p.cur }

// Done reports whether the input is exhausted.
func (p *Parser) Done() bool { return p.cur.Kind == scan.End }

// Globals returns names of global variables seen so far in first seen order.
func (p *Parser) Globals() []string { return p.globals }

func (p *Parser) read(ctx context.Context) (err error) {
	if !p.src.HasNext() {
		p.cur = scan.EndToken
		return nil
	}

	p.cur, err = p.src.Next()
	if err != nil {
		return errors.Wrap(err, "token %d", p.idx)
	}

	tlog.V("parse").Printw("token", "idx", p.idx, "tok", p.cur)

	return nil
}

// eat consumes the current token if it is of the same kind as want.
func (p *Parser) eat(ctx context.Context, want scan.Token) error {
	if !p.cur.SameKind(want) {
		return p.unexpected(want)
	}

	p.idx++

	return p.read(ctx)
}

// keyword consumes the keyword word.
func (p *Parser) keyword(ctx context.Context, word string) error {
	want := scan.Token{Lexeme: word, Kind: scan.Keyword}

	if !p.cur.Is(scan.Keyword, word) {
		return p.unexpected(want)
	}

	return p.eat(ctx, want)
}

// ident consumes an identifier and returns its name.
func (p *Parser) ident(ctx context.Context) (string, error) {
	name := p.cur.Lexeme

	err := p.eat(ctx, tokIdent)
	if err != nil {
		return "", err
	}

	return name, nil
}

// terminator consumes the statement terminator.
// It may be omitted right before the end of the program.
func (p *Parser) terminator(ctx context.Context) error {
	if p.cur.Kind == scan.End {
		return nil
	}

	return p.eat(ctx, tokSemicolon)
}

func (p *Parser) global(name string) {
	if p.inProc {
		return
	}

	if _, ok := p.seen[name]; ok {
		return
	}

	p.seen[name] = struct{}{}
	p.globals = append(p.globals, name)
}

func (p *Parser) unexpected(want scan.Token) error {
	return &UnexpectedError{
		Want:  want,
		Got:   p.cur,
		Index: p.idx,
	}
}

func (p *Parser) errorf(f string, args ...any) error {
	return errors.Wrap(ErrGrammar, "token %d: %s", p.idx, fmt.Sprintf(f, args...))
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("expected %s, found %v at token %d", e.Want.Lexeme, e.Got, e.Index)
}

func (e *UnexpectedError) Unwrap() error { return ErrGrammar }
