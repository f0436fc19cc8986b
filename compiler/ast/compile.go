package ast

import (
	"context"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/hemantkunda/Compilers/compiler/asm"
)

// Labels of the runtime support code emitted with every program.
const (
	NewlineLabel   = "nl"
	DivZeroLabel   = "_divzero"
	DivZeroMessage = "_divzeromsg"

	varPrefix = "var"
)

// VarLabel is the data label of the global cell holding name.
func VarLabel(name string) string {
	return varPrefix + name
}

// Compile leaves the value in $v0.
func (x Number) Compile(ctx context.Context, e *asm.Emitter) error {
	e.Emit("li %v, %d", asm.V0, x.Value)

	return nil
}

func (x Variable) Compile(ctx context.Context, e *asm.Emitter) error {
	e.Emit("la %v, %s", asm.T0, VarLabel(x.Name))
	e.Emit("lw %v, (%v)", asm.V0, asm.T0)

	return nil
}

// Compile evaluates the left operand, saves it on the stack,
// evaluates the right one and combines them with the left in $t0.
func (x BinOp) Compile(ctx context.Context, e *asm.Emitter) (err error) {
	err = x.Left.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "left")
	}

	e.Push(asm.V0)

	err = x.Right.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "right")
	}

	e.Pop(asm.T0)

	switch x.Op {
	case Add:
		e.Emit("addu %v, %v, %v", asm.V0, asm.T0, asm.V0)
	case Sub:
		e.Emit("subu %v, %v, %v", asm.V0, asm.T0, asm.V0)
	case Mul:
		e.Emit("mult %v, %v", asm.T0, asm.V0)
		e.Emit("mflo %v", asm.V0)
	case Div, Mod:
		e.Emit("beq %v, %v, %s", asm.V0, asm.Zero, DivZeroLabel)
		e.Emit("div %v, %v", asm.T0, asm.V0)

		if x.Op == Div {
			e.Emit("mflo %v # quotient", asm.V0)
		} else {
			e.Emit("mfhi %v # remainder", asm.V0)
		}
	default:
		return errors.New("unsupported operator: %q", x.Op)
	}

	return nil
}

// Compile fails: procedures are executed by the interpreter only.
func (x Call) Compile(ctx context.Context, e *asm.Emitter) error {
	return errors.Wrap(ErrUnsupported, "call %v", x.Name)
}

// Compile materializes the condition as 1 or 0 in $v0.
func (x *Cond) Compile(ctx context.Context, e *asm.Emitter) error {
	id := e.NextLabel()
	no, end := id.Name("condfalse"), id.Name("condend")

	err := x.Branch(ctx, e, no)
	if err != nil {
		return err
	}

	e.Emit("li %v, 1", asm.V0)
	e.Emit("j %s", end)
	e.Label(no)
	e.Emit("li %v, 0", asm.V0)
	e.Label(end)

	return nil
}

// Branch jumps to target when the condition does NOT hold
// and falls through otherwise.
func (x *Cond) Branch(ctx context.Context, e *asm.Emitter, target string) (err error) {
	if !x.Op.Valid() {
		return errors.New("unsupported relation: %q", x.Op)
	}

	err = x.Left.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "left")
	}

	e.Push(asm.V0)

	err = x.Right.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "right")
	}

	e.Pop(asm.T0)

	e.Emit("%s %v, %v, %s # unless %v", asm.Branch(asm.Invert(x.Op)), asm.T0, asm.V0, target, x.Op)

	return nil
}

func (x Assign) Compile(ctx context.Context, e *asm.Emitter) error {
	err := x.Value.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "assign %v", x.Name)
	}

	e.Emit("la %v, %s", asm.T0, VarLabel(x.Name))
	e.Emit("sw %v, (%v)", asm.V0, asm.T0)

	return nil
}

func (x If) Compile(ctx context.Context, e *asm.Emitter) error {
	end := e.NextLabel().Name("endif")

	err := x.Cond.Branch(ctx, e, end)
	if err != nil {
		return errors.Wrap(err, "if")
	}

	err = x.Body.Compile(ctx, e)
	if err != nil {
		return err
	}

	e.Label(end)

	return nil
}

func (x While) Compile(ctx context.Context, e *asm.Emitter) error {
	id := e.NextLabel()
	loop, end := id.Name("while"), id.Name("endwhile")

	e.Label(loop)

	err := x.Cond.Branch(ctx, e, end)
	if err != nil {
		return errors.Wrap(err, "while")
	}

	err = x.Body.Compile(ctx, e)
	if err != nil {
		return err
	}

	e.Emit("j %s", loop)
	e.Label(end)

	return nil
}

func (x Block) Compile(ctx context.Context, e *asm.Emitter) error {
	for _, st := range x.Stmts {
		err := st.Compile(ctx, e)
		if err != nil {
			return err
		}
	}

	return nil
}

func (x Writeln) Compile(ctx context.Context, e *asm.Emitter) error {
	err := x.Value.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "writeln")
	}

	e.Emit("move %v, %v", asm.A0, asm.V0)
	e.Emit("li %v, %d", asm.V0, asm.SysPrintInt)
	e.Emit("syscall")
	e.Emit("li %v, %d", asm.V0, asm.SysPrintString)
	e.Emit("la %v, %s", asm.A0, NewlineLabel)
	e.Emit("syscall")

	return nil
}

// Compile emits nothing: declarations are only used by the interpreter.
func (x *ProcDecl) Compile(ctx context.Context, e *asm.Emitter) error {
	return nil
}

// Compile emits the whole program: text segment with the main statement,
// runtime support and the data segment with one word per global.
func (p *Program) Compile(ctx context.Context, e *asm.Emitter) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile program", "globals", len(p.Globals))
	defer tr.Finish("err", &err)

	e.Comment("Generated by the Pascal to MIPS compiler")
	e.Comment("globals: %s", strings.Join(p.Globals, ", "))
	e.Emit(".text")
	e.Emit(".globl main")
	e.Label("main")

	err = p.Main.Compile(ctx, e)
	if err != nil {
		return errors.Wrap(err, "main")
	}

	e.Emit("li %v, %d", asm.V0, asm.SysExit)
	e.Emit("syscall")

	e.Emit("")
	e.Label(DivZeroLabel)
	e.Emit("li %v, %d", asm.V0, asm.SysPrintString)
	e.Emit("la %v, %s", asm.A0, DivZeroMessage)
	e.Emit("syscall")
	e.Emit("li %v, 1", asm.A0)
	e.Emit("li %v, %d", asm.V0, asm.SysExit2)
	e.Emit("syscall")

	e.Emit("")
	e.Emit(".data")
	e.Label(NewlineLabel)
	e.Emit(`.asciiz "\n"`)
	e.Label(DivZeroMessage)
	e.Emit(`.asciiz "%v\n"`, ErrDivideByZero.Error())

	for _, v := range p.Globals {
		e.Label(VarLabel(v))
		e.Emit(".word 0")
	}

	if tr.If("dump_asm") {
		tr.Printw("assembly", "lines", e.Lines(), "text", e.Bytes())
	}

	return nil
}
