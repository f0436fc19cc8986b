package format

import (
	"context"
	"math"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/hemantkunda/Compilers/compiler/ast"
)

// Format appends source text of x to b.
// x is either *ast.Program, ast.Stmt or ast.Expr.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Program:
		return formatProgram(ctx, b, x, d)
	case ast.Stmt:
		return formatStmt(ctx, b, x, d, ";")
	case ast.Expr:
		return formatExpr(ctx, b, x, 0)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program, d int) (_ []byte, err error) {
	if len(x.Globals) != 0 {
		b = app(b, d, "VAR %s;\n", strings.Join(x.Globals, ", "))
	}

	for _, p := range x.Procs {
		b = app(b, d, "PROCEDURE %s(%s);\n", p.Name, strings.Join(p.Params, ", "))

		b, err = formatStmt(ctx, b, p.Body, d+1, ";")
		if err != nil {
			return nil, errors.Wrap(err, "procedure %v", p.Name)
		}
	}

	if len(x.Globals) != 0 || len(x.Procs) != 0 {
		b = append(b, '\n')
	}

	b, err = formatStmt(ctx, b, x.Main, d, ".")
	if err != nil {
		return nil, errors.Wrap(err, "main")
	}

	return b, nil
}

// formatStmt appends statement x ending it with term.
func formatStmt(ctx context.Context, b []byte, x ast.Stmt, d int, term string) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Assign:
		b = app(b, d, "%s := ", x.Name)

		b, err = formatExpr(ctx, b, x.Value, 0)
		if err != nil {
			return nil, errors.Wrap(err, "assign %v", x.Name)
		}

		b = app(b, 0, "%s\n", term)
	case ast.Writeln:
		b = app(b, d, "WRITELN(")

		b, err = formatExpr(ctx, b, x.Value, 0)
		if err != nil {
			return nil, errors.Wrap(err, "writeln")
		}

		b = app(b, 0, ")%s\n", term)
	case ast.If:
		b = app(b, d, "IF ")

		b, err = formatCond(ctx, b, x.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, " THEN\n"...)

		b, err = formatStmt(ctx, b, x.Body, d+1, term)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}
	case ast.While:
		b = app(b, d, "WHILE ")

		b, err = formatCond(ctx, b, x.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, " DO\n"...)

		b, err = formatStmt(ctx, b, x.Body, d+1, term)
		if err != nil {
			return nil, errors.Wrap(err, "do")
		}
	case ast.Block:
		b = app(b, d, "BEGIN\n")

		for i, s := range x.Stmts {
			b, err = formatStmt(ctx, b, s, d+1, ";")
			if err != nil {
				return nil, errors.Wrap(err, "statement %d", i)
			}
		}

		b = app(b, d, "END%s\n", term)
	case *ast.ProcDecl:
		b = app(b, d, "PROCEDURE %s(%s);\n", x.Name, strings.Join(x.Params, ", "))

		b, err = formatStmt(ctx, b, x.Body, d+1, term)
		if err != nil {
			return nil, errors.Wrap(err, "procedure %v", x.Name)
		}
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func formatCond(ctx context.Context, b []byte, x *ast.Cond) (_ []byte, err error) {
	b, err = formatExpr(ctx, b, x.Left, 0)
	if err != nil {
		return nil, errors.Wrap(err, "left")
	}

	b = app(b, 0, " %s ", x.Op)

	b, err = formatExpr(ctx, b, x.Right, 0)
	if err != nil {
		return nil, errors.Wrap(err, "right")
	}

	return b, nil
}

// formatExpr appends x parenthesized if it binds weaker than prec.
func formatExpr(ctx context.Context, b []byte, x ast.Expr, prec int) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Number:
		if x.Value == math.MinInt32 {
			b = app(b, 0, "(-%d)", -int64(x.Value))
			break
		}

		if x.Value < 0 {
			b = app(b, 0, "(0 - %d)", -int64(x.Value))
			break
		}

		b = app(b, 0, "%d", x.Value)
	case ast.Variable:
		b = append(b, x.Name...)
	case ast.Call:
		b = app(b, 0, "%s(", x.Name)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, a, 0)
			if err != nil {
				return nil, errors.Wrap(err, "%v: arg %d", x.Name, i)
			}
		}

		b = append(b, ')')
	case ast.BinOp:
		p := precedence(x.Op)
		if p == 0 {
			return nil, errors.New("unsupported operator: %q", x.Op)
		}

		if p < prec {
			b = append(b, '(')
		}

		b, err = formatExpr(ctx, b, x.Left, p)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %s ", x.Op)

		// operators are left associative
		b, err = formatExpr(ctx, b, x.Right, p+1)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		if p < prec {
			b = append(b, ')')
		}
	case *ast.Cond:
		return formatCond(ctx, b, x)
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func precedence(op string) int {
	switch op {
	case ast.Add, ast.Sub:
		return 1
	case ast.Mul, ast.Div, ast.Mod:
		return 2
	}

	return 0
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	if d > len(tabs) {
		d = len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)

	return b
}
