package scan

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	Token struct {
		Lexeme string
		Kind   Kind
	}
)

const (
	Identifier Kind = iota
	Number
	Keyword
	Operand
	MathOperand
	ParenExp
	QuoteExp
	EOL
	End
	WhiteSpace
	ThrowAway
	Comma
)

var kindNames = [...]string{
	Identifier:  "identifier",
	Number:      "number",
	Keyword:     "keyword",
	Operand:     "operand",
	MathOperand: "mathOperand",
	ParenExp:    "parenExp",
	QuoteExp:    "quoteExp",
	EOL:         "eoL",
	End:         "end",
	WhiteSpace:  "whiteSpace",
	ThrowAway:   "throwAway",
	Comma:       "comma",
}

var keywords = map[string]struct{}{
	"VAR":       {},
	"PROCEDURE": {},
	"BEGIN":     {},
	"END":       {},
	"IF":        {},
	"THEN":      {},
	"WHILE":     {},
	"DO":        {},
	"WRITELN":   {},
}

// EndToken is returned once the input is exhausted.
var EndToken = Token{Kind: End}

func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// SameKind reports whether both tokens belong to the same family.
// The literal text is not compared.
func (t Token) SameKind(x Token) bool {
	return t.Kind == x.Kind
}

func (t Token) Is(k Kind, lexeme string) bool {
	return t.Kind == k && t.Lexeme == lexeme
}

func (t Token) String() string {
	if t.Kind == End && t.Lexeme == "" {
		return "<end>"
	}

	return fmt.Sprintf("%q (%v)", t.Lexeme, t.Kind)
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if t.Kind == End && t.Lexeme == "" {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "%s:%s", t.Kind, t.Lexeme)
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}
