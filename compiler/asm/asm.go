package asm

import "fmt"

type (
	Reg   string
	Cond  string
	Label int
)

// MIPS registers used by the code generator.
const (
	Zero Reg = "$zero"
	V0   Reg = "$v0"
	A0   Reg = "$a0"
	T0   Reg = "$t0"
	SP   Reg = "$sp"
)

// Relational operators of the source language.
const (
	LT Cond = "<"
	LE Cond = "<="
	GT Cond = ">"
	GE Cond = ">="
	EQ Cond = "="
	NE Cond = "<>"
)

// Syscall codes understood by SPIM.
const (
	SysPrintInt    = 1
	SysPrintString = 4
	SysExit        = 10
	SysExit2       = 17
)

const WordSize = 4

func (r Reg) String() string { return string(r) }

// Invert returns the condition which holds exactly when c does not.
func Invert(c Cond) Cond {
	switch c {
	case EQ:
		return NE
	case NE:
		return EQ
	case LT:
		return GE
	case GT:
		return LE
	case LE:
		return GT
	case GE:
		return LT
	default:
		panic(c)
	}
}

// Branch returns the conditional branch mnemonic taken when c holds.
func Branch(c Cond) string {
	switch c {
	case EQ:
		return "beq"
	case NE:
		return "bne"
	case LT:
		return "blt"
	case LE:
		return "ble"
	case GT:
		return "bgt"
	case GE:
		return "bge"
	default:
		panic(c)
	}
}

func (c Cond) Valid() bool {
	switch c {
	case EQ, NE, LT, LE, GT, GE:
		return true
	}

	return false
}

// Name builds the assembly label for id using prefix.
func (l Label) Name(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, int(l))
}
