package ast

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/hemantkunda/Compilers/compiler/asm"
)

func (x Number) Eval(ctx context.Context, s Scope) (int32, error) {
	return x.Value, nil
}

func (x Variable) Eval(ctx context.Context, s Scope) (int32, error) {
	return s.Get(x.Name)
}

func (x BinOp) Eval(ctx context.Context, s Scope) (int32, error) {
	l, err := x.Left.Eval(ctx, s)
	if err != nil {
		return 0, err
	}

	r, err := x.Right.Eval(ctx, s)
	if err != nil {
		return 0, err
	}

	switch x.Op {
	case Add:
		return l + r, nil
	case Sub:
		return l - r, nil
	case Mul:
		return l * r, nil
	case Div, Mod:
		if r == 0 {
			return 0, ErrDivideByZero
		}

		if x.Op == Div {
			return l / r, nil
		}

		return l % r, nil
	default:
		return 0, errors.New("unsupported operator: %q", x.Op)
	}
}

// Eval calls the procedure.
// Arguments are evaluated in the caller scope, then bound to the parameters
// in a new frame chained to the caller frame. The frame also holds
// the return slot named after the procedure, initialized to zero.
// The call evaluates to the final value of the slot.
func (x Call) Eval(ctx context.Context, s Scope) (_ int32, err error) {
	d, err := s.Env.Proc(x.Name)
	if err != nil {
		return 0, err
	}

	if len(d.Params) != len(x.Args) {
		return 0, errors.Wrap(ErrArity, "%v: want %d, got %d", x.Name, len(d.Params), len(x.Args))
	}

	args := make([]int32, len(x.Args))

	for i, a := range x.Args {
		args[i], err = a.Eval(ctx, s)
		if err != nil {
			return 0, wrap(err, "%v: arg %d", x.Name, i)
		}
	}

	local, err := s.Enter()
	if err != nil {
		return 0, errors.Wrap(err, "call %v", x.Name)
	}

	defer local.Leave()

	tlog.V("call").Printw("call", "name", x.Name, "args", args, "frame", local.Frame)

	for i, p := range d.Params {
		local.Declare(p, args[i])
	}

	local.Declare(d.Name, 0)

	err = d.Body.Exec(ctx, local)
	if err != nil {
		return 0, wrap(err, "call %v", x.Name)
	}

	return local.Get(d.Name)
}

func (x *Cond) Eval(ctx context.Context, s Scope) (int32, error) {
	ok, err := x.Test(ctx, s)
	if err != nil || !ok {
		return 0, err
	}

	return 1, nil
}

// Test evaluates both sides and compares them.
func (x *Cond) Test(ctx context.Context, s Scope) (bool, error) {
	l, err := x.Left.Eval(ctx, s)
	if err != nil {
		return false, err
	}

	r, err := x.Right.Eval(ctx, s)
	if err != nil {
		return false, err
	}

	return compare(x.Op, l, r)
}

func (x Assign) Exec(ctx context.Context, s Scope) error {
	v, err := x.Value.Eval(ctx, s)
	if err != nil {
		return wrap(err, "assign %v", x.Name)
	}

	tlog.V("exec").Printw("assign", "name", x.Name, "val", v, "frame", s.Frame)

	s.Set(x.Name, v)

	return nil
}

func (x If) Exec(ctx context.Context, s Scope) error {
	ok, err := x.Cond.Test(ctx, s)
	if err != nil {
		return wrap(err, "if")
	}

	if !ok {
		return nil
	}

	return x.Body.Exec(ctx, s)
}

func (x While) Exec(ctx context.Context, s Scope) error {
	for {
		ok, err := x.Cond.Test(ctx, s)
		if err != nil {
			return wrap(err, "while")
		}

		if !ok {
			return nil
		}

		err = x.Body.Exec(ctx, s)
		if err != nil {
			return err
		}
	}
}

func (x Block) Exec(ctx context.Context, s Scope) error {
	for _, st := range x.Stmts {
		err := st.Exec(ctx, s)
		if err != nil {
			return err
		}
	}

	return nil
}

func (x Writeln) Exec(ctx context.Context, s Scope) error {
	v, err := x.Value.Eval(ctx, s)
	if err != nil {
		return wrap(err, "writeln")
	}

	_, err = fmt.Fprintf(s.Env.Out, "%d\n", v)
	if err != nil {
		return wrap(err, "write")
	}

	return nil
}

// Exec registers the declaration in the root procedure table.
func (x *ProcDecl) Exec(ctx context.Context, s Scope) error {
	s.Env.SetProc(x)

	return nil
}

// Exec runs the program on env.
// Use a fresh Env for every run: procedure declarations persist in it.
func (p *Program) Exec(ctx context.Context, env *Env) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "exec program", "procs", len(p.Procs))
	defer tr.Finish("err", &err)

	s := env.Root()

	for _, d := range p.Procs {
		err = d.Exec(ctx, s)
		if err != nil {
			return wrap(err, "declare %v", d.Name)
		}
	}

	return p.Main.Exec(ctx, s)
}

func compare(op asm.Cond, l, r int32) (bool, error) {
	switch op {
	case asm.LT:
		return l < r, nil
	case asm.LE:
		return l <= r, nil
	case asm.GT:
		return l > r, nil
	case asm.GE:
		return l >= r, nil
	case asm.EQ:
		return l == r, nil
	case asm.NE:
		return l != r, nil
	default:
		return false, errors.New("unsupported relation: %q", op)
	}
}

// wrap annotates err. Call depth errors are returned as is
// so runaway recursion reports a single frame.
func wrap(err error, f string, args ...any) error {
	if errors.Is(err, ErrCallDepth) {
		return err
	}

	return errors.Wrap(err, f, args...)
}
