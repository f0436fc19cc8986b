package asm

import (
	"io"
	"os"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	// Emitter accumulates assembly text line by line.
	// Label lines are written as is, everything else is indented by a tab.
	Emitter struct {
		b []byte

		label Label
		lines int
	}
)

func New() *Emitter {
	return &Emitter{}
}

// Emit formats and appends one instruction line.
// Empty lines are not indented.
func (e *Emitter) Emit(f string, args ...any) {
	e.line(f != "", f, args...)
}

func (e *Emitter) line(indent bool, f string, args ...any) {
	if indent {
		e.b = append(e.b, '\t')
	}

	e.b = hfmt.Appendf(e.b, f, args...)
	e.b = append(e.b, '\n')
	e.lines++
}

// Comment appends a comment line.
func (e *Emitter) Comment(f string, args ...any) {
	e.Emit("# "+f, args...)
}

// Label appends label definition.
func (e *Emitter) Label(name string) {
	e.line(false, "%s:", name)
}

// Push stores reg on top of the stack.
func (e *Emitter) Push(reg Reg) {
	tlog.V("emit").Printw("push", "reg", reg, "line", e.lines, "from", loc.Caller(1))

	e.Emit("subu %v, %v, %d", SP, SP, WordSize)
	e.Emit("sw %v, (%v) # push %v", reg, SP, reg)
}

// Pop loads the top of the stack into reg.
func (e *Emitter) Pop(reg Reg) {
	tlog.V("emit").Printw("pop", "reg", reg, "line", e.lines, "from", loc.Caller(1))

	e.Emit("lw %v, (%v)", reg, SP)
	e.Emit("addu %v, %v, %d # pop %v", SP, SP, WordSize, reg)
}

// NextLabel returns a fresh label id. Ids are never reused.
func (e *Emitter) NextLabel() Label {
	e.label++

	return e.label
}

func (e *Emitter) Bytes() []byte { return e.b }

func (e *Emitter) Lines() int { return e.lines }

func (e *Emitter) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.b)

	return int64(n), err
}

// WriteFile persists the accumulated text.
func (e *Emitter) WriteFile(name string) error {
	err := os.WriteFile(name, e.b, 0o644)
	if err != nil {
		return errors.Wrap(err, "write %v", name)
	}

	return nil
}
