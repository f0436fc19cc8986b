package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, text string) (r []Token) {
	t.Helper()

	s := New([]byte(text))

	for {
		tk, err := s.Next()
		require.NoError(t, err)

		r = append(r, tk)

		if tk.Kind == End {
			return r
		}
	}
}

func TestScanProgram(t *testing.T) {
	r := scanAll(t, "VAR x, y;\nBEGIN x := 10 mod 3; WRITELN(x <= -y); END.")

	assert.Equal(t, []Token{
		{"VAR", Keyword},
		{"x", Identifier},
		{",", Comma},
		{"y", Identifier},
		{";", EOL},
		{"BEGIN", Keyword},
		{"x", Identifier},
		{":=", Operand},
		{"10", Number},
		{"%", MathOperand},
		{"3", Number},
		{";", EOL},
		{"WRITELN", Keyword},
		{"(", ParenExp},
		{"x", Identifier},
		{"<=", Operand},
		{"-", MathOperand},
		{"y", Identifier},
		{")", ParenExp},
		{";", EOL},
		{"END", Keyword},
		{".", End},
	}, r)
}

func TestScanOperators(t *testing.T) {
	r := scanAll(t, "< <= <> > >= = + - * / %")

	var lex []string
	for _, tk := range r[:len(r)-1] {
		lex = append(lex, tk.Lexeme)
	}

	assert.Equal(t, []string{"<", "<=", "<>", ">", ">=", "=", "+", "-", "*", "/", "%"}, lex)
	assert.Equal(t, EndToken, r[len(r)-1])
}

func TestScanComments(t *testing.T) {
	r := scanAll(t, "a // line comment\n/* block\ncomment */ b")

	assert.Equal(t, []Token{{"a", Identifier}, {"b", Identifier}, EndToken}, r)
}

func TestScanQuote(t *testing.T) {
	r := scanAll(t, `'hello world' "x"`)

	assert.Equal(t, []Token{{"hello world", QuoteExp}, {"x", QuoteExp}, EndToken}, r)
}

func TestScanEndIsSticky(t *testing.T) {
	s := New([]byte("x. y"))

	tk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, Token{"x", Identifier}, tk)
	assert.True(t, s.HasNext())

	tk, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, End, tk.Kind)
	assert.False(t, s.HasNext())

	for i := 0; i < 3; i++ {
		tk, err = s.Next()
		require.NoError(t, err)
		assert.Equal(t, EndToken, tk)
	}
}

func TestScanErrors(t *testing.T) {
	for _, tc := range []struct {
		Name string
		Text string
	}{
		{"bad_char", "x := 1 # 2"},
		{"digit_letter", "12ab"},
		{"colon", "x : 1"},
		{"open_comment", "x /* never closed"},
		{"open_quote", "'abc"},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			s := New([]byte(tc.Text))

			var err error
			for err == nil && s.HasNext() {
				_, err = s.Next()
			}

			assert.ErrorIs(t, err, ErrLexical)

			var e *Error
			assert.ErrorAs(t, err, &e)
		})
	}
}

func TestScanRecover(t *testing.T) {
	s := New([]byte("a #garbage b"))

	tk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", tk.Lexeme)

	_, err = s.Next()
	require.ErrorIs(t, err, ErrLexical)

	s.Recover()

	tk, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, Token{"b", Identifier}, tk)
}

func TestTokenSameKind(t *testing.T) {
	assert.True(t, Token{"BEGIN", Keyword}.SameKind(Token{"END", Keyword}))
	assert.False(t, Token{";", EOL}.SameKind(Token{";", Operand}))
	assert.Equal(t, "mathOperand", MathOperand.String())
	assert.Equal(t, "<end>", EndToken.String())
}
