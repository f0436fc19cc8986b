package parse

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/hemantkunda/Compilers/compiler/ast"
	"github.com/hemantkunda/Compilers/compiler/scan"
)

// ParseProgram parses optional VAR declarations, procedure declarations
// and the main part up to the terminating dot or the end of input.
// Several top level statements are collected into a Block.
func (p *Parser) ParseProgram(ctx context.Context) (x *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse program")
	defer tr.Finish("err", &err)

	x = &ast.Program{}

	if p.cur.Is(scan.Keyword, "VAR") {
		err = p.vars(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "var")
		}
	}

	for p.cur.Is(scan.Keyword, "PROCEDURE") {
		d, err := p.procDecl(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "procedure")
		}

		x.Procs = append(x.Procs, d)
	}

	var main []ast.Stmt

	for {
		st, err := p.ParseStatement(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "statement")
		}

		main = append(main, st)

		if p.Done() {
			break
		}
	}

	if len(main) == 1 {
		x.Main = main[0]
	} else {
		x.Main = ast.Block{Stmts: main}
	}

	err = p.eat(ctx, tokDot)
	if err != nil {
		return nil, err
	}

	x.Globals = p.globals

	tr.V("parse").Printw("program", "procs", len(x.Procs), "globals", x.Globals, "tokens", p.idx)

	return x, nil
}

func (p *Parser) vars(ctx context.Context) error {
	err := p.keyword(ctx, "VAR")
	if err != nil {
		return err
	}

	for {
		name, err := p.ident(ctx)
		if err != nil {
			return err
		}

		p.global(name)

		if p.cur.Kind != scan.Comma {
			break
		}

		err = p.eat(ctx, tokComma)
		if err != nil {
			return err
		}
	}

	return p.eat(ctx, tokSemicolon)
}

func (p *Parser) procDecl(ctx context.Context) (d *ast.ProcDecl, err error) {
	err = p.keyword(ctx, "PROCEDURE")
	if err != nil {
		return nil, err
	}

	d = &ast.ProcDecl{}

	d.Name, err = p.ident(ctx)
	if err != nil {
		return nil, err
	}

	d.Params, err = p.params(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "%v", d.Name)
	}

	err = p.eat(ctx, tokSemicolon)
	if err != nil {
		return nil, err
	}

	p.inProc = true
	defer func() { p.inProc = false }()

	d.Body, err = p.ParseStatement(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "%v", d.Name)
	}

	tlog.V("parse").Printw("procedure", "name", d.Name, "params", d.Params)

	return d, nil
}

func (p *Parser) params(ctx context.Context) (ps []string, err error) {
	err = p.eat(ctx, tokOpen)
	if err != nil {
		return nil, err
	}

	for !p.cur.Is(scan.ParenExp, ")") {
		if len(ps) != 0 {
			err = p.eat(ctx, tokComma)
			if err != nil {
				return nil, err
			}
		}

		name, err := p.ident(ctx)
		if err != nil {
			return nil, err
		}

		for _, q := range ps {
			if q == name {
				return nil, p.errorf("duplicate parameter %v", name)
			}
		}

		ps = append(ps, name)
	}

	err = p.eat(ctx, tokClose)
	if err != nil {
		return nil, err
	}

	return ps, nil
}

// ParseStatement parses a single statement.
func (p *Parser) ParseStatement(ctx context.Context) (ast.Stmt, error) {
	switch {
	case p.cur.Is(scan.Keyword, "IF"):
		return p.ifStmt(ctx)
	case p.cur.Is(scan.Keyword, "WHILE"):
		return p.whileStmt(ctx)
	case p.cur.Is(scan.Keyword, "WRITELN"):
		return p.writeln(ctx)
	case p.cur.Is(scan.Keyword, "BEGIN"):
		return p.block(ctx)
	case p.cur.Kind == scan.Identifier:
		return p.assign(ctx)
	}

	return nil, p.unexpected(tokStatement)
}

func (p *Parser) ifStmt(ctx context.Context) (x ast.If, err error) {
	err = p.keyword(ctx, "IF")
	if err != nil {
		return x, err
	}

	x.Cond, err = p.cond(ctx)
	if err != nil {
		return x, errors.Wrap(err, "if")
	}

	err = p.keyword(ctx, "THEN")
	if err != nil {
		return x, err
	}

	x.Body, err = p.ParseStatement(ctx)
	if err != nil {
		return x, errors.Wrap(err, "then")
	}

	return x, nil
}

func (p *Parser) whileStmt(ctx context.Context) (x ast.While, err error) {
	err = p.keyword(ctx, "WHILE")
	if err != nil {
		return x, err
	}

	x.Cond, err = p.cond(ctx)
	if err != nil {
		return x, errors.Wrap(err, "while")
	}

	err = p.keyword(ctx, "DO")
	if err != nil {
		return x, err
	}

	x.Body, err = p.ParseStatement(ctx)
	if err != nil {
		return x, errors.Wrap(err, "do")
	}

	return x, nil
}

func (p *Parser) writeln(ctx context.Context) (x ast.Writeln, err error) {
	err = p.keyword(ctx, "WRITELN")
	if err != nil {
		return x, err
	}

	err = p.eat(ctx, tokOpen)
	if err != nil {
		return x, err
	}

	x.Value, err = p.expr(ctx)
	if err != nil {
		return x, errors.Wrap(err, "writeln")
	}

	err = p.eat(ctx, tokClose)
	if err != nil {
		return x, err
	}

	return x, p.terminator(ctx)
}

func (p *Parser) block(ctx context.Context) (x ast.Block, err error) {
	err = p.keyword(ctx, "BEGIN")
	if err != nil {
		return x, err
	}

	x.Stmts = []ast.Stmt{}

	for !p.cur.Is(scan.Keyword, "END") && p.cur.Kind != scan.End {
		st, err := p.ParseStatement(ctx)
		if err != nil {
			return x, errors.Wrap(err, "block statement %d", len(x.Stmts))
		}

		x.Stmts = append(x.Stmts, st)
	}

	err = p.keyword(ctx, "END")
	if err != nil {
		return x, err
	}

	return x, p.terminator(ctx)
}

func (p *Parser) assign(ctx context.Context) (x ast.Assign, err error) {
	x.Name, err = p.ident(ctx)
	if err != nil {
		return x, err
	}

	p.global(x.Name)

	if !p.cur.Is(scan.Operand, tokAssign.Lexeme) {
		return x, p.unexpected(tokAssign)
	}

	err = p.eat(ctx, tokAssign)
	if err != nil {
		return x, err
	}

	x.Value, err = p.expr(ctx)
	if err != nil {
		return x, errors.Wrap(err, "assign %v", x.Name)
	}

	return x, p.terminator(ctx)
}
