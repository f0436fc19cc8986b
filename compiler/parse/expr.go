package parse

import (
	"context"
	"math"
	"strconv"

	"tlog.app/go/errors"

	"github.com/hemantkunda/Compilers/compiler/asm"
	"github.com/hemantkunda/Compilers/compiler/ast"
	"github.com/hemantkunda/Compilers/compiler/scan"
)

// ParseExpr parses a single arithmetic expression.
func (p *Parser) ParseExpr(ctx context.Context) (ast.Expr, error) {
	return p.expr(ctx)
}

func (p *Parser) cond(ctx context.Context) (x *ast.Cond, err error) {
	x = &ast.Cond{}

	x.Left, err = p.expr(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "left")
	}

	op := asm.Cond(p.cur.Lexeme)

	if p.cur.Kind != scan.Operand || !op.Valid() {
		return nil, p.unexpected(tokRelation)
	}

	err = p.eat(ctx, tokRelation)
	if err != nil {
		return nil, err
	}

	x.Op = op

	x.Right, err = p.expr(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "right")
	}

	return x, nil
}

func (p *Parser) expr(ctx context.Context) (x ast.Expr, err error) {
	x, err = p.term(ctx)
	if err != nil {
		return nil, err
	}

	for p.cur.Is(scan.MathOperand, ast.Add) || p.cur.Is(scan.MathOperand, ast.Sub) {
		op := p.cur.Lexeme

		err = p.eat(ctx, p.cur)
		if err != nil {
			return nil, err
		}

		r, err := p.term(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "%v", op)
		}

		x = ast.BinOp{Op: op, Left: x, Right: r}
	}

	return x, nil
}

func (p *Parser) term(ctx context.Context) (x ast.Expr, err error) {
	x, err = p.factor(ctx)
	if err != nil {
		return nil, err
	}

	for p.cur.Is(scan.MathOperand, ast.Mul) || p.cur.Is(scan.MathOperand, ast.Div) || p.cur.Is(scan.MathOperand, ast.Mod) {
		op := p.cur.Lexeme

		err = p.eat(ctx, p.cur)
		if err != nil {
			return nil, err
		}

		r, err := p.factor(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "%v", op)
		}

		x = ast.BinOp{Op: op, Left: x, Right: r}
	}

	return x, nil
}

func (p *Parser) factor(ctx context.Context) (x ast.Expr, err error) {
	switch {
	case p.cur.Is(scan.MathOperand, ast.Sub):
		err = p.eat(ctx, p.cur)
		if err != nil {
			return nil, err
		}

		if p.minInt() {
			return ast.Number{Value: math.MinInt32}, p.eat(ctx, tokNumber)
		}

		f, err := p.factor(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "negate")
		}

		return ast.BinOp{Op: ast.Sub, Left: ast.Number{}, Right: f}, nil
	case p.cur.Is(scan.ParenExp, "("):
		err = p.eat(ctx, tokOpen)
		if err != nil {
			return nil, err
		}

		x, err = p.expr(ctx)
		if err != nil {
			return nil, err
		}

		err = p.eat(ctx, tokClose)
		if err != nil {
			return nil, err
		}

		return x, nil
	case p.cur.Kind == scan.Identifier:
		name, err := p.ident(ctx)
		if err != nil {
			return nil, err
		}

		if p.cur.Is(scan.ParenExp, "(") {
			return p.call(ctx, name)
		}

		p.global(name)

		return ast.Variable{Name: name}, nil
	case p.cur.Kind == scan.Number:
		return p.number(ctx)
	}

	return nil, p.unexpected(tokNumber)
}

func (p *Parser) call(ctx context.Context, name string) (x ast.Call, err error) {
	x.Name = name

	err = p.eat(ctx, tokOpen)
	if err != nil {
		return x, err
	}

	for !p.cur.Is(scan.ParenExp, ")") {
		if len(x.Args) != 0 {
			err = p.eat(ctx, tokComma)
			if err != nil {
				return x, err
			}
		}

		a, err := p.expr(ctx)
		if err != nil {
			return x, errors.Wrap(err, "%v: arg %d", name, len(x.Args))
		}

		x.Args = append(x.Args, a)
	}

	err = p.eat(ctx, tokClose)
	if err != nil {
		return x, err
	}

	return x, nil
}

func (p *Parser) number(ctx context.Context) (x ast.Number, err error) {
	v, err := strconv.ParseInt(p.cur.Lexeme, 10, 32)
	if err != nil {
		return x, p.errorf("number %v out of range", p.cur.Lexeme)
	}

	x.Value = int32(v)

	return x, p.eat(ctx, tokNumber)
}

// minInt reports whether the current token is the magnitude of math.MinInt32,
// which is only representable negated.
func (p *Parser) minInt() bool {
	if p.cur.Kind != scan.Number {
		return false
	}

	v, err := strconv.ParseInt(p.cur.Lexeme, 10, 64)

	return err == nil && v == -math.MinInt32
}
