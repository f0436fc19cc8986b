package ast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSetGet(t *testing.T) {
	e := NewEnv(nil)
	root := e.Root()

	_, err := root.Get("x")
	assert.ErrorIs(t, err, ErrUndefinedVariable)
	assert.ErrorIs(t, err, ErrBinding)

	root.Set("x", 1)

	v, err := root.Get("x")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	local, err := root.Enter()
	require.NoError(t, err)

	local.Declare("a", 5)

	// nearest frame binding the name wins
	local.Set("a", 6)
	local.Set("x", 2)

	// unknown names land in the root frame
	local.Set("y", 3)

	v, err = root.Get("x")
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	v, err = root.Get("y")
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)

	v, err = local.Get("a")
	require.NoError(t, err)
	assert.Equal(t, int32(6), v)

	local.Leave()

	_, err = root.Get("a")
	assert.ErrorIs(t, err, ErrUndefinedVariable)
	assert.Equal(t, 1, e.Depth())
}

func TestEnvShadowing(t *testing.T) {
	e := NewEnv(nil)
	root := e.Root()

	root.Set("x", 1)

	local, err := root.Enter()
	require.NoError(t, err)

	local.Declare("x", 10)
	local.Set("x", 11)

	v, err := root.Get("x")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = local.Get("x")
	require.NoError(t, err)
	assert.Equal(t, int32(11), v)
}

func TestEnvFrameReuse(t *testing.T) {
	e := NewEnv(nil)
	root := e.Root()

	l1, err := root.Enter()
	require.NoError(t, err)

	l1.Declare("a", 1)
	l1.Leave()

	l2, err := root.Enter()
	require.NoError(t, err)

	assert.Equal(t, l1.Frame, l2.Frame)

	_, err = l2.Get("a")
	assert.ErrorIs(t, err, ErrUndefinedVariable, "stale binding leaked into reused frame")
}

func TestEnvPopNested(t *testing.T) {
	e := NewEnv(nil)

	l1, err := e.Root().Enter()
	require.NoError(t, err)

	_, err = l1.Enter()
	require.NoError(t, err)

	assert.Equal(t, 3, e.Depth())

	l1.Leave()
	assert.Equal(t, 1, e.Depth())

	e.Pop(Root)
	assert.Equal(t, 1, e.Depth())
}

func TestEnvDepth(t *testing.T) {
	e := NewEnv(nil)
	e.MaxDepth = 3

	s := e.Root()

	for i := 0; i < 3; i++ {
		var err error

		s, err = s.Enter()
		require.NoError(t, err, "level %d", i)
	}

	_, err := s.Enter()
	assert.ErrorIs(t, err, ErrCallDepth)
}

func TestEnvProcs(t *testing.T) {
	e := NewEnv(&bytes.Buffer{})

	_, err := e.Proc("f")
	assert.ErrorIs(t, err, ErrUndefinedProcedure)
	assert.ErrorIs(t, err, ErrBinding)

	d1 := &ProcDecl{Name: "f"}
	d2 := &ProcDecl{Name: "f", Params: []string{"a"}}

	e.SetProc(d1)
	e.SetProc(d2)

	d, err := e.Proc("f")
	require.NoError(t, err)
	assert.Same(t, d2, d)
}
