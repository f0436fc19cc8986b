package mips

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Machine executes an assembled Program.
	Machine struct {
		prog *Program

		regs   [32]int32
		hi, lo int32
		pc     int

		mem map[uint32]byte

		out io.Writer

		steps int
		limit int
	}

	Option func(m *Machine)

	ExitError struct {
		Code int
	}
)

const DefaultStepLimit = 10_000_000

var (
	ErrRuntime   = errors.New("runtime error")
	ErrExit      = errors.New("exit")
	ErrStepLimit = errors.New("step limit exceeded")
)

// WithStepLimit bounds the number of executed instructions.
// Zero or negative means no limit.
func WithStepLimit(n int) Option {
	return func(m *Machine) {
		m.limit = n
	}
}

// Run assembles text and executes it writing program output to w.
func Run(ctx context.Context, text []byte, w io.Writer, opts ...Option) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "simulate", "size", len(text))
	defer tr.Finish("err", &err)

	p, err := Assemble(text)
	if err != nil {
		return errors.Wrap(err, "assemble")
	}

	m := New(p, w, opts...)

	defer func() {
		tr.Printw("simulated", "steps", m.steps)
	}()

	return m.Run(ctx)
}

func New(p *Program, w io.Writer, opts ...Option) *Machine {
	m := &Machine{
		prog:  p,
		pc:    p.Entry,
		mem:   make(map[uint32]byte, len(p.Data)),
		out:   w,
		limit: DefaultStepLimit,
	}

	for i, b := range p.Data {
		m.mem[DataBase+uint32(i)] = b
	}

	m.regs[regSP] = int32(StackBase)

	for _, o := range opts {
		o(m)
	}

	return m
}

// Steps is the number of instructions executed so far.
func (m *Machine) Steps() int { return m.steps }

// Reg returns the value of register r.
func (m *Machine) Reg(r int) int32 { return m.regs[r] }

// Run executes instructions until the program exits.
// Exit through syscall 17 with a non-zero status returns *ExitError.
func (m *Machine) Run(ctx context.Context) (err error) {
	for {
		if m.steps&0xfff == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if m.limit > 0 && m.steps >= m.limit {
			return errors.Wrap(ErrStepLimit, "%d steps", m.steps)
		}

		exit, err := m.Step()
		if err != nil {
			return err
		}

		if exit {
			return nil
		}
	}
}

// Step executes a single instruction.
func (m *Machine) Step() (exit bool, err error) {
	if m.pc < 0 || m.pc >= len(m.prog.Text) {
		return false, errors.Wrap(ErrRuntime, "pc %d: out of text segment", m.pc)
	}

	in := &m.prog.Text[m.pc]

	m.pc++
	m.steps++

	if tlog.If("sim") {
		tlog.Printw("step", "pc", m.pc-1, "inst", in)
	}

	switch in.Op {
	case "nop":
	case "li", "la":
		m.set(in.Rd, in.Imm)
	case "move":
		m.set(in.Rd, m.regs[in.Rs])
	case "addu", "add", "addiu", "addi":
		m.set(in.Rd, m.regs[in.Rs]+m.operand(in))
	case "subu", "sub":
		m.set(in.Rd, m.regs[in.Rs]-m.operand(in))
	case "mult":
		r := int64(m.regs[in.Rs]) * int64(m.regs[in.Rt])

		m.lo = int32(r)
		m.hi = int32(r >> 32)
	case "div":
		d := m.regs[in.Rt]
		if d == 0 {
			return false, m.fault(in, "division by zero")
		}

		m.lo = m.regs[in.Rs] / d
		m.hi = m.regs[in.Rs] % d
	case "mflo":
		m.set(in.Rd, m.lo)
	case "mfhi":
		m.set(in.Rd, m.hi)
	case "lw":
		v, err := m.load(in)
		if err != nil {
			return false, err
		}

		m.set(in.Rt, v)
	case "sw":
		return false, m.store(in)
	case "beq", "bne", "blt", "ble", "bgt", "bge":
		if branch(in.Op, m.regs[in.Rs], m.regs[in.Rt]) {
			m.pc = in.Target
		}
	case "j", "b":
		m.pc = in.Target
	case "syscall":
		return m.syscall(in)
	default:
		return false, m.fault(in, "unsupported instruction")
	}

	return false, nil
}

func (m *Machine) syscall(in *Inst) (exit bool, err error) {
	a0 := m.regs[regA0]

	switch code := m.regs[regV0]; code {
	case 1:
		_, err = io.WriteString(m.out, strconv.FormatInt(int64(a0), 10))
	case 4:
		var s []byte

		s, err = m.cstring(in, uint32(a0))
		if err != nil {
			return false, err
		}

		_, err = m.out.Write(s)
	case 10:
		return true, nil
	case 17:
		if a0 != 0 {
			return true, &ExitError{Code: int(a0)}
		}

		return true, nil
	default:
		return false, m.fault(in, "unsupported syscall %d", code)
	}

	if err != nil {
		return false, errors.Wrap(err, "write")
	}

	return false, nil
}

func (m *Machine) operand(in *Inst) int32 {
	if in.UseImm {
		return in.Imm
	}

	return m.regs[in.Rt]
}

func (m *Machine) set(r int, v int32) {
	if r == regZero {
		return
	}

	m.regs[r] = v
}

func (m *Machine) addr(in *Inst) (uint32, error) {
	a := uint32(m.regs[in.Rs] + in.Imm)

	if a%4 != 0 {
		return 0, m.fault(in, "unaligned address %#x", a)
	}

	return a, nil
}

func (m *Machine) load(in *Inst) (int32, error) {
	a, err := m.addr(in)
	if err != nil {
		return 0, err
	}

	var v uint32

	for i := uint32(0); i < 4; i++ {
		v |= uint32(m.mem[a+i]) << (8 * i)
	}

	return int32(v), nil
}

func (m *Machine) store(in *Inst) error {
	a, err := m.addr(in)
	if err != nil {
		return err
	}

	v := uint32(m.regs[in.Rt])

	for i := uint32(0); i < 4; i++ {
		m.mem[a+i] = byte(v >> (8 * i))
	}

	return nil
}

func (m *Machine) cstring(in *Inst, a uint32) ([]byte, error) {
	var s []byte

	for {
		c, ok := m.mem[a]
		if !ok {
			return nil, m.fault(in, "string at %#x is not terminated", a)
		}

		if c == 0 {
			return s, nil
		}

		s = append(s, c)
		a++
	}
}

func (m *Machine) fault(in *Inst, f string, args ...any) error {
	return errors.Wrap(ErrRuntime, "line %d: %v: %s", in.Line, in.Op, fmt.Sprintf(f, args...))
}

func (in *Inst) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendFormat(b, "%d: %s %s", in.Line, in.Op, strings.Join(in.Args, ", "))
}

func branch(op string, a, b int32) bool {
	switch op {
	case "beq":
		return a == b
	case "bne":
		return a != b
	case "blt":
		return a < b
	case "ble":
		return a <= b
	case "bgt":
		return a > b
	case "bge":
		return a >= b
	}

	return false
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return ErrExit }
