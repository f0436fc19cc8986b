package scan

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	// Scanner splits source text into tokens on demand.
	Scanner struct {
		b []byte
		i int

		done bool // end token produced
	}

	Error struct {
		Pos  int
		Char byte
		Msg  string
	}
)

var ErrLexical = errors.New("lexical error")

func New(text []byte) *Scanner {
	return &Scanner{b: text}
}

func (s *Scanner) HasNext() bool {
	return !s.done && s.i < len(s.b)
}

// Pos returns the offset of the next unread byte.
func (s *Scanner) Pos() int {
	return s.i
}

// Next returns the next token.
// Once the input is exhausted or the terminating dot was read
// it keeps returning EndToken.
func (s *Scanner) Next() (t Token, err error) {
	if s.done {
		return EndToken, nil
	}

	s.i, err = s.skipSpaces(s.i)
	if err != nil {
		return t, err
	}

	if s.i == len(s.b) {
		s.done = true
		return EndToken, nil
	}

	st := s.i
	c := s.b[st]

	switch {
	case isDigit(c):
		return s.number(st)
	case isLetter(c):
		return s.word(st)
	}

	switch c {
	case '(', ')':
		return s.tok(st, st+1, ParenExp), nil
	case ',':
		return s.tok(st, st+1, Comma), nil
	case ';':
		return s.tok(st, st+1, EOL), nil
	case '.':
		s.done = true
		return s.tok(st, st+1, End), nil
	case '+', '-', '*', '/', '%':
		return s.tok(st, st+1, MathOperand), nil
	case '=':
		return s.tok(st, st+1, Operand), nil
	case '<':
		if s.peek(st+1) == '=' || s.peek(st+1) == '>' {
			return s.tok(st, st+2, Operand), nil
		}

		return s.tok(st, st+1, Operand), nil
	case '>':
		if s.peek(st+1) == '=' {
			return s.tok(st, st+2, Operand), nil
		}

		return s.tok(st, st+1, Operand), nil
	case ':':
		if s.peek(st+1) == '=' {
			return s.tok(st, st+2, Operand), nil
		}

		return t, s.errorf(st+1, "expected = after :")
	case '\'', '"':
		return s.quote(st)
	}

	return t, s.errorf(st, "invalid start to lexeme")
}

// Recover skips input up to the next whitespace boundary.
// It lets diagnostic tools continue after a lexical error.
func (s *Scanner) Recover() {
	for s.i < len(s.b) && !isSpace(s.b[s.i]) {
		s.i++
	}
}

func (s *Scanner) tok(st, end int, k Kind) Token {
	s.i = end

	return Token{Lexeme: string(s.b[st:end]), Kind: k}
}

func (s *Scanner) number(st int) (t Token, err error) {
	i := st
	for i < len(s.b) && isDigit(s.b[i]) {
		i++
	}

	if i < len(s.b) && isLetter(s.b[i]) {
		return t, s.errorf(i, "expected a digit")
	}

	return s.tok(st, i, Number), nil
}

func (s *Scanner) word(st int) (t Token, err error) {
	i := skipIdent(s.b, st+1)
	w := string(s.b[st:i])
	s.i = i

	switch {
	case w == "mod":
		return Token{Lexeme: "%", Kind: MathOperand}, nil
	case IsKeyword(w):
		return Token{Lexeme: w, Kind: Keyword}, nil
	}

	return Token{Lexeme: w, Kind: Identifier}, nil
}

func (s *Scanner) quote(st int) (t Token, err error) {
	q := s.b[st]

	i := st + 1
	for i < len(s.b) && s.b[i] != q {
		i++
	}

	if i == len(s.b) {
		return t, s.errorf(i, "missing end to quotation block")
	}

	s.i = i + 1

	return Token{Lexeme: string(s.b[st+1 : i]), Kind: QuoteExp}, nil
}

func (s *Scanner) skipSpaces(i int) (_ int, err error) {
	for i < len(s.b) {
		switch {
		case isSpace(s.b[i]):
			i++
		case s.b[i] == '/' && s.peek(i+1) == '/':
			i = skipLine(s.b, i)
		case s.b[i] == '/' && s.peek(i+1) == '*':
			i, err = s.skipComment(i + 2)
			if err != nil {
				return i, err
			}
		default:
			return i, nil
		}
	}

	return i, nil
}

func (s *Scanner) skipComment(i int) (int, error) {
	for i+1 < len(s.b) {
		if s.b[i] == '*' && s.b[i+1] == '/' {
			return i + 2, nil
		}

		i++
	}

	return len(s.b), s.errorf(len(s.b), "missing end to comment block")
}

func (s *Scanner) peek(i int) byte {
	if i < len(s.b) {
		return s.b[i]
	}

	return 0
}

func (s *Scanner) errorf(pos int, f string, args ...any) error {
	e := &Error{
		Pos: pos,
		Msg: fmt.Sprintf(f, args...),
	}

	if pos < len(s.b) {
		e.Char = s.b[pos]
	}

	s.i = pos

	return e
}

func (e *Error) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("%v at pos %d", e.Msg, e.Pos)
	}

	return fmt.Sprintf("%v: %q at pos %d", e.Msg, e.Char, e.Pos)
}

func (e *Error) Unwrap() error { return ErrLexical }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		i++
	}

	return i
}

func skipLine(b []byte, i int) int {
	for i < len(b) && b[i] != '\n' {
		i++
	}

	return i
}
