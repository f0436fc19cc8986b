package mips

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleLayout(t *testing.T) {
	p, err := Assemble([]byte(`
# header
	.text
	.globl main
start:	nop
main:
	li $v0, 10 # exit
	syscall

	.data
msg:	.asciiz "hi"
cell:
	.word 7
`))
	require.NoError(t, err)

	assert.Len(t, p.Text, 3)
	assert.Equal(t, 0, p.TextLabels["start"])
	assert.Equal(t, 1, p.TextLabels["main"])
	assert.Equal(t, 1, p.Entry)

	assert.Equal(t, DataBase, p.DataLabels["msg"])
	assert.Equal(t, DataBase+4, p.DataLabels["cell"], "words are aligned")
	assert.Equal(t, []byte{'h', 'i', 0, 0, 7, 0, 0, 0}, p.Data)
}

func TestAssembleErrors(t *testing.T) {
	for _, text := range []string{
		"main:\n\tfoo $v0\n",
		"main:\n\tli $q0, 1\n",
		"main:\n\tj nowhere\n",
		"main:\n\tla $t0, nodata\n",
		"main:\nmain:\n",
		"main:\n\taddu $v0, $v0\n",
		".data\n\tli $v0, 1\n",
		".text\n\t.word 1\n",
	} {
		_, err := Assemble([]byte(text))
		assert.ErrorIs(t, err, ErrSyntax, "%q", text)
	}
}

func TestRunArith(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), []byte(`
	.text
main:
	li $t0, -7
	li $v0, 2
	div $t0, $v0
	mflo $a0
	li $v0, 1
	syscall
	la $a0, nl
	li $v0, 4
	syscall
	mfhi $a0
	li $v0, 1
	syscall
	la $a0, nl
	li $v0, 4
	syscall
	li $t0, 6
	li $v0, 7
	mult $t0, $v0
	mflo $a0
	subu $a0, $a0, 2
	addu $a0, $a0, $t0
	li $v0, 1
	syscall
	li $v0, 10
	syscall
	.data
nl:	.asciiz "\n"
`), &out)
	require.NoError(t, err)

	assert.Equal(t, "-3\n-1\n46", out.String())
}

func TestRunMemoryAndBranches(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), []byte(`
	.text
main:
	li $v0, 3
	la $t0, x
	sw $v0, ($t0)
loop:
	la $t0, x
	lw $v0, ($t0)
	subu $sp, $sp, 4
	sw $v0, ($sp)
	li $v0, 0
	lw $t0, ($sp)
	addu $sp, $sp, 4
	ble $t0, $v0, done
	move $a0, $t0
	li $v0, 1
	syscall
	subu $t0, $t0, 1
	la $v0, x
	sw $t0, 0($v0)
	j loop
done:
	li $zero, 5
	move $a0, $zero
	li $v0, 1
	syscall
	li $v0, 10
	syscall
	.data
x:	.word 0
`), &out)
	require.NoError(t, err)

	assert.Equal(t, "3210", out.String())
}

func TestRunExitStatus(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), []byte(`
main:
	li $a0, 3
	li $v0, 17
	syscall
`), &out)

	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Code)
	assert.ErrorIs(t, err, ErrExit)

	err = Run(context.Background(), []byte("main:\n\tli $a0, 0\n\tli $v0, 17\n\tsyscall\n"), &out)
	assert.NoError(t, err)
}

func TestRunFaults(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), []byte("main:\n\tli $t0, 1\n\tdiv $t0, $zero\n"), &out)
	assert.ErrorIs(t, err, ErrRuntime)

	err = Run(context.Background(), []byte("main:\n\tnop\n"), &out)
	assert.ErrorIs(t, err, ErrRuntime, "falling off the text segment")

	err = Run(context.Background(), []byte("main:\n\tli $t0, 2\n\tlw $v0, ($t0)\n"), &out)
	assert.ErrorIs(t, err, ErrRuntime, "unaligned load")

	err = Run(context.Background(), []byte("main:\n\tli $v0, 99\n\tsyscall\n"), &out)
	assert.ErrorIs(t, err, ErrRuntime, "unknown syscall")
}

func TestRunStepLimit(t *testing.T) {
	err := Run(context.Background(), []byte("main:\n\tj main\n"), nil, WithStepLimit(1000))
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, []byte("main:\n\tj main\n"), nil, WithStepLimit(0))
	assert.ErrorIs(t, err, context.Canceled)
}
