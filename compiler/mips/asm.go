package mips

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	// Program is an assembled text and data segment.
	Program struct {
		Text []Inst
		Data []byte

		// Entry is the index of the first instruction to execute.
		Entry int

		TextLabels map[string]int
		DataLabels map[string]uint32
	}

	// Inst is a decoded instruction.
	// Operands are resolved during the second pass.
	Inst struct {
		Line int
		Op   string
		Args []string

		Rd, Rs, Rt int
		Imm        int32
		UseImm     bool
		Target     int
	}

	srcInst struct {
		line int
		op   string
		args []string
	}
)

// Memory layout.
const (
	DataBase  uint32 = 0x10010000
	StackBase uint32 = 0x7fffeffc
)

var ErrSyntax = errors.New("assembly error")

var regNames = map[string]int{
	"zero": 0, "at": 1, "v0": 2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11, "t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25, "k0": 26, "k1": 27,
	"gp": 28, "sp": 29, "fp": 30, "ra": 31,
}

const (
	regZero = 0
	regV0   = 2
	regA0   = 4
	regSP   = 29
)

// Assemble translates assembly text in two passes.
// The first one lays out data and records label positions,
// the second one resolves instruction operands.
func Assemble(text []byte) (p *Program, err error) {
	p = &Program{
		TextLabels: make(map[string]int),
		DataLabels: make(map[string]uint32),
	}

	src, err := p.pass1(text)
	if err != nil {
		return nil, err
	}

	err = p.pass2(src)
	if err != nil {
		return nil, err
	}

	if l, ok := p.TextLabels["main"]; ok {
		p.Entry = l
	}

	tlog.V("sim").Printw("assembled", "insts", len(p.Text), "data", len(p.Data), "labels", len(p.TextLabels)+len(p.DataLabels))

	return p, nil
}

func (p *Program) pass1(text []byte) (src []srcInst, err error) {
	data := false

	// data labels are bound to the next datum after its alignment
	var pending []string

	bind := func() {
		for _, name := range pending {
			p.DataLabels[name] = DataBase + uint32(len(p.Data))
		}

		pending = pending[:0]
	}

	s := bufio.NewScanner(bytes.NewReader(text))

	for line := 1; s.Scan(); line++ {
		l := strings.TrimSpace(stripComment(s.Text()))

		for {
			i := labelEnd(l)
			if i < 0 {
				break
			}

			name := l[:i]
			l = strings.TrimSpace(l[i+1:])

			if _, ok := p.TextLabels[name]; ok {
				return nil, p.errorf(line, "duplicate label %v", name)
			}
			if _, ok := p.DataLabels[name]; ok || slices.Contains(pending, name) {
				return nil, p.errorf(line, "duplicate label %v", name)
			}

			if data {
				pending = append(pending, name)
			} else {
				p.TextLabels[name] = len(src)
			}
		}

		if l == "" {
			continue
		}

		op, rest := l, ""
		if i := strings.IndexAny(l, " \t"); i >= 0 {
			op, rest = l[:i], l[i+1:]
		}

		args, err := splitArgs(rest)
		if err != nil {
			return nil, p.errorf(line, "%v", err)
		}

		switch op {
		case ".text":
			bind()
			data = false
		case ".data":
			data = true
		case ".globl", ".global":
		case ".word":
			if !data {
				return nil, p.errorf(line, ".word outside of data segment")
			}

			for len(p.Data)%4 != 0 {
				p.Data = append(p.Data, 0)
			}

			bind()

			for _, a := range args {
				v, err := parseImm(a)
				if err != nil {
					return nil, p.errorf(line, ".word: %v", err)
				}

				p.Data = binary.LittleEndian.AppendUint32(p.Data, uint32(v))
			}
		case ".asciiz":
			if !data {
				return nil, p.errorf(line, ".asciiz outside of data segment")
			}

			if len(args) != 1 {
				return nil, p.errorf(line, ".asciiz expects one string")
			}

			str, err := strconv.Unquote(args[0])
			if err != nil {
				return nil, p.errorf(line, ".asciiz: bad string %v", args[0])
			}

			bind()

			p.Data = append(p.Data, str...)
			p.Data = append(p.Data, 0)
		default:
			if data {
				return nil, p.errorf(line, "instruction %v in data segment", op)
			}

			src = append(src, srcInst{line: line, op: op, args: args})
		}
	}

	bind()

	return src, nil
}

func (p *Program) pass2(src []srcInst) (err error) {
	p.Text = make([]Inst, len(src))

	for i, s := range src {
		in := &p.Text[i]

		in.Line = s.line
		in.Op = s.op
		in.Args = s.args

		err = p.decode(in)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Program) decode(in *Inst) (err error) {
	a := in.Args

	want := func(n int) error {
		if len(a) != n {
			return p.errorf(in.Line, "%v expects %d operands, got %d", in.Op, n, len(a))
		}

		return nil
	}

	switch in.Op {
	case "nop", "syscall":
		return want(0)
	case "li":
		if err = want(2); err != nil {
			return err
		}

		in.Rd, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		in.Imm, err = parseImm(a[1])
		if err != nil {
			return p.errorf(in.Line, "li: %v", err)
		}
	case "la":
		if err = want(2); err != nil {
			return err
		}

		in.Rd, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		addr, ok := p.DataLabels[a[1]]
		if !ok {
			return p.errorf(in.Line, "undefined data label %v", a[1])
		}

		in.Imm = int32(addr)
	case "lw", "sw":
		if err = want(2); err != nil {
			return err
		}

		in.Rt, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		in.Imm, in.Rs, err = p.mem(in, a[1])
		if err != nil {
			return err
		}
	case "move", "mflo", "mfhi":
		n := 2
		if in.Op != "move" {
			n = 1
		}

		if err = want(n); err != nil {
			return err
		}

		in.Rd, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		if n == 2 {
			in.Rs, err = p.reg(in, a[1])
		}
	case "addu", "subu", "add", "sub", "addiu", "addi":
		if err = want(3); err != nil {
			return err
		}

		in.Rd, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		in.Rs, err = p.reg(in, a[1])
		if err != nil {
			return err
		}

		if strings.HasPrefix(a[2], "$") {
			in.Rt, err = p.reg(in, a[2])
			return err
		}

		in.UseImm = true

		in.Imm, err = parseImm(a[2])
		if err != nil {
			return p.errorf(in.Line, "%v: %v", in.Op, err)
		}
	case "mult", "div":
		if err = want(2); err != nil {
			return err
		}

		in.Rs, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		in.Rt, err = p.reg(in, a[1])
	case "beq", "bne", "blt", "ble", "bgt", "bge":
		if err = want(3); err != nil {
			return err
		}

		in.Rs, err = p.reg(in, a[0])
		if err != nil {
			return err
		}

		in.Rt, err = p.reg(in, a[1])
		if err != nil {
			return err
		}

		in.Target, err = p.target(in, a[2])
	case "j", "b":
		if err = want(1); err != nil {
			return err
		}

		in.Target, err = p.target(in, a[0])
	default:
		return p.errorf(in.Line, "unknown instruction %v", in.Op)
	}

	return err
}

func (p *Program) reg(in *Inst, s string) (int, error) {
	if !strings.HasPrefix(s, "$") {
		return 0, p.errorf(in.Line, "%v: register expected, got %v", in.Op, s)
	}

	name := s[1:]

	if r, ok := regNames[name]; ok {
		return r, nil
	}

	if r, err := strconv.Atoi(name); err == nil && r >= 0 && r < 32 {
		return r, nil
	}

	return 0, p.errorf(in.Line, "%v: unknown register %v", in.Op, s)
}

// mem parses off(reg) and (reg) operands.
func (p *Program) mem(in *Inst, s string) (off int32, r int, err error) {
	o, rest, ok := strings.Cut(s, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return 0, 0, p.errorf(in.Line, "%v: memory operand expected, got %v", in.Op, s)
	}

	if o = strings.TrimSpace(o); o != "" {
		off, err = parseImm(o)
		if err != nil {
			return 0, 0, p.errorf(in.Line, "%v: offset: %v", in.Op, err)
		}
	}

	r, err = p.reg(in, strings.TrimSpace(rest[:len(rest)-1]))

	return off, r, err
}

func (p *Program) target(in *Inst, s string) (int, error) {
	t, ok := p.TextLabels[s]
	if !ok {
		return 0, p.errorf(in.Line, "%v: undefined label %v", in.Op, s)
	}

	return t, nil
}

func (p *Program) errorf(line int, f string, args ...any) error {
	return errors.Wrap(ErrSyntax, "line %d: %v", line, errors.New(f, args...))
}

func parseImm(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil || v < -1<<31 || v > 1<<32-1 {
		return 0, errors.New("bad immediate %q", s)
	}

	return int32(v), nil
}

// labelEnd returns the index of the colon ending a leading label or -1.
func labelEnd(l string) int {
	i := 0

	for i < len(l) && (l[i] == '_' || l[i] == '.' || l[i] >= 'a' && l[i] <= 'z' || l[i] >= 'A' && l[i] <= 'Z' || i != 0 && l[i] >= '0' && l[i] <= '9') {
		i++
	}

	if i == 0 || i == len(l) || l[i] != ':' {
		return -1
	}

	return i
}

func stripComment(l string) string {
	q := false

	for i := 0; i < len(l); i++ {
		switch l[i] {
		case '\\':
			if q {
				i++
			}
		case '"':
			q = !q
		case '#':
			if !q {
				return l[:i]
			}
		}
	}

	return l
}

func splitArgs(s string) (args []string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if s[0] == '"' {
		return []string{s}, nil
	}

	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, errors.New("empty operand in %q", s)
		}

		args = append(args, a)
	}

	return args, nil
}
