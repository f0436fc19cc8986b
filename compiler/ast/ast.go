package ast

import (
	"context"
	"fmt"
	"strings"

	"github.com/hemantkunda/Compilers/compiler/asm"
)

type (
	// Expr is an integer valued node.
	// The set of implementations is closed.
	Expr interface {
		Eval(ctx context.Context, s Scope) (int32, error)
		Compile(ctx context.Context, e *asm.Emitter) error

		fmt.Stringer

		expr()
	}

	// Stmt is an executable node.
	// The set of implementations is closed.
	Stmt interface {
		Exec(ctx context.Context, s Scope) error
		Compile(ctx context.Context, e *asm.Emitter) error

		fmt.Stringer

		stmt()
	}

	Number struct {
		Value int32
	}

	Variable struct {
		Name string
	}

	BinOp struct {
		Op    string
		Left  Expr
		Right Expr
	}

	Call struct {
		Name string
		Args []Expr
	}

	// Cond compares two expressions. It evaluates to 1 or 0.
	Cond struct {
		Op    asm.Cond
		Left  Expr
		Right Expr
	}

	Assign struct {
		Name  string
		Value Expr
	}

	If struct {
		Cond *Cond
		Body Stmt
	}

	While struct {
		Cond *Cond
		Body Stmt
	}

	Block struct {
		Stmts []Stmt
	}

	Writeln struct {
		Value Expr
	}

	ProcDecl struct {
		Name   string
		Params []string
		Body   Stmt
	}

	Program struct {
		Globals []string
		Procs   []*ProcDecl
		Main    Stmt
	}
)

// Arithmetic operators.
const (
	Add = "+"
	Sub = "-"
	Mul = "*"
	Div = "/"
	Mod = "%"
)

func IsArith(op string) bool {
	switch op {
	case Add, Sub, Mul, Div, Mod:
		return true
	}

	return false
}

func (Number) expr()   {}
func (Variable) expr() {}
func (BinOp) expr()    {}
func (Call) expr()     {}
func (*Cond) expr()    {}

func (Assign) stmt()    {}
func (If) stmt()        {}
func (While) stmt()     {}
func (Block) stmt()     {}
func (Writeln) stmt()   {}
func (*ProcDecl) stmt() {}

func (x Number) String() string { return fmt.Sprintf("%d", x.Value) }

func (x Variable) String() string { return x.Name }

func (x BinOp) String() string {
	return fmt.Sprintf("(%v %s %v)", x.Left, x.Op, x.Right)
}

func (x Call) String() string {
	var b strings.Builder

	b.WriteString(x.Name)
	b.WriteByte('(')

	for i, a := range x.Args {
		if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(a.String())
	}

	b.WriteByte(')')

	return b.String()
}

func (x *Cond) String() string {
	return fmt.Sprintf("%v %s %v", x.Left, x.Op, x.Right)
}

func (x Assign) String() string { return fmt.Sprintf("%s := %v", x.Name, x.Value) }

func (x If) String() string { return fmt.Sprintf("IF %v THEN %v", x.Cond, x.Body) }

func (x While) String() string { return fmt.Sprintf("WHILE %v DO %v", x.Cond, x.Body) }

func (x Block) String() string { return fmt.Sprintf("BEGIN <%d statements> END", len(x.Stmts)) }

func (x Writeln) String() string { return fmt.Sprintf("WRITELN(%v)", x.Value) }

func (x *ProcDecl) String() string {
	return fmt.Sprintf("PROCEDURE %s(%s)", x.Name, strings.Join(x.Params, ", "))
}
