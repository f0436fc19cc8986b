package compiler

import (
	"bytes"
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemantkunda/Compilers/compiler/asm"
	"github.com/hemantkunda/Compilers/compiler/ast"
	"github.com/hemantkunda/Compilers/compiler/format"
	"github.com/hemantkunda/Compilers/compiler/mips"
)

func interpret(t *testing.T, text string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	err := Interpret(context.Background(), []byte(text), &out)

	return out.String(), err
}

func simulate(t *testing.T, text string) (string, error) {
	t.Helper()

	ctx := context.Background()

	obj, err := Compile(ctx, []byte(text))
	require.NoError(t, err)

	var out bytes.Buffer

	err = mips.Run(ctx, obj, &out, mips.WithStepLimit(1_000_000))

	return out.String(), err
}

func TestScenarios(t *testing.T) {
	for _, tc := range []struct {
		name  string
		text  string
		out   string
		procs bool
	}{
		{name: "block", text: "BEGIN WRITELN(2 + 3 * 4); END.", out: "14\n"},
		{name: "assign", text: "x := 5; WRITELN(x - 2);", out: "3\n"},
		{name: "if_false", text: "IF 3 > 5 THEN WRITELN(1); WRITELN(2);", out: "2\n"},
		{name: "while", text: "x := 3; WHILE x <> 0 DO BEGIN WRITELN(x); x := x - 1; END;", out: "3\n2\n1\n"},
		{name: "min_int", text: "WRITELN(-2147483648); WRITELN(-2147483648 - 1);", out: "-2147483648\n2147483647\n"},
		{name: "procedure", text: "PROCEDURE add(a, b); add := a + b; WRITELN(add(2, 3));", out: "5\n", procs: true},
		{name: "nested_control", text: `
VAR i, j, s;
BEGIN
	s := 0;
	i := 0;
	WHILE i < 4 DO BEGIN
		j := 0;
		WHILE j < i DO BEGIN
			IF (i + j) % 2 = 1 THEN s := s + i * j;
			j := j + 1;
		END;
		i := i + 1;
	END;
	WRITELN(s);
	IF s >= 8 THEN WRITELN(-s);
	IF s < 8 THEN WRITELN(0);
END.
`, out: "8\n-8\n"},
	} {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			out, err := interpret(t, tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.out, out, "interpreted")

			if tc.procs {
				_, err = Compile(context.Background(), []byte(tc.text))
				assert.ErrorIs(t, err, ast.ErrUnsupported)

				return
			}

			out, err = simulate(t, tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.out, out, "compiled")
		})
	}
}

func TestDivideByZero(t *testing.T) {
	for _, text := range []string{
		"WRITELN(7 / 0);",
		"BEGIN x := 3; y := x - 3; WRITELN(x % y); END.",
	} {
		out, err := interpret(t, text)
		assert.ErrorIs(t, err, ast.ErrDivideByZero, text)
		assert.Empty(t, out, text)

		out, err = simulate(t, text)

		var ee *mips.ExitError
		if assert.ErrorAs(t, err, &ee, text) {
			assert.Equal(t, 1, ee.Code)
		}

		assert.Equal(t, "divide by zero\n", out, text)
	}
}

func TestCondValue(t *testing.T) {
	ctx := context.Background()

	pairs := [][2]int32{{1, 2}, {2, 2}, {3, 2}, {-4, 1}}

	for _, tc := range []struct {
		op   asm.Cond
		want string
	}{
		{op: asm.LT, want: "1\n0\n0\n1\n"},
		{op: asm.LE, want: "1\n1\n0\n1\n"},
		{op: asm.GT, want: "0\n0\n1\n0\n"},
		{op: asm.GE, want: "0\n1\n1\n0\n"},
		{op: asm.EQ, want: "0\n1\n0\n0\n"},
		{op: asm.NE, want: "1\n0\n1\n1\n"},
	} {
		var b ast.Block

		for _, p := range pairs {
			b.Stmts = append(b.Stmts, ast.Writeln{Value: &ast.Cond{
				Op:    tc.op,
				Left:  ast.Number{Value: p[0]},
				Right: ast.Number{Value: p[1]},
			}})
		}

		x := &ast.Program{Main: b}

		var out bytes.Buffer

		err := Exec(ctx, x, &out)
		require.NoError(t, err)
		assert.Equal(t, tc.want, out.String(), "interpreted %v", tc.op)

		obj, err := Generate(ctx, x)
		require.NoError(t, err)

		out.Reset()

		err = mips.Run(ctx, obj, &out)
		require.NoError(t, err, "%s", obj)
		assert.Equal(t, tc.want, out.String(), "compiled %v", tc.op)
	}
}

func TestRoundTripArith(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		x, val, ok := genExpr(r, 4)
		if !ok {
			continue
		}

		src, err := format.Format(context.Background(), []byte("WRITELN("), x)
		require.NoError(t, err)

		src = append(src, ");"...)

		want := strconv.FormatInt(int64(val), 10) + "\n"

		out, err := interpret(t, string(src))
		require.NoError(t, err, "%s", src)
		assert.Equal(t, want, out, "interpreted %s", src)

		out, err = simulate(t, string(src))
		require.NoError(t, err, "%s", src)
		assert.Equal(t, want, out, "compiled %s", src)
	}
}

func TestInterpretFile(t *testing.T) {
	err := InterpretFile(context.Background(), "testdata/does_not_exist.pas", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = CompileFile(context.Background(), "testdata/does_not_exist.pas")
	assert.Error(t, err)
}

// genExpr builds a random expression and computes its value directly.
// ok is false if evaluation divides by zero.
func genExpr(r *rand.Rand, depth int) (x ast.Expr, v int32, ok bool) {
	if depth == 0 || r.Intn(3) == 0 {
		v = int32(r.Intn(100))

		if r.Intn(4) == 0 {
			return ast.BinOp{Op: ast.Sub, Left: ast.Number{}, Right: ast.Number{Value: v}}, -v, true
		}

		return ast.Number{Value: v}, v, true
	}

	ops := []string{ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod}
	op := ops[r.Intn(len(ops))]

	l, lv, ok := genExpr(r, depth-1)
	if !ok {
		return nil, 0, false
	}

	rx, rv, ok := genExpr(r, depth-1)
	if !ok {
		return nil, 0, false
	}

	switch op {
	case ast.Add:
		v = lv + rv
	case ast.Sub:
		v = lv - rv
	case ast.Mul:
		v = lv * rv
	case ast.Div, ast.Mod:
		if rv == 0 {
			return nil, 0, false
		}

		if op == ast.Div {
			v = lv / rv
		} else {
			v = lv % rv
		}
	}

	return ast.BinOp{Op: op, Left: l, Right: rx}, v, true
}
