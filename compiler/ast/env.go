package ast

import (
	"io"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	// Frame addresses one scope in the Env arena.
	Frame int

	// Env is the interpreter state: an arena of scope frames
	// and the program wide procedure table.
	// Frames form a stack: a frame is only ever discarded
	// together with every frame created after it.
	Env struct {
		Out io.Writer

		MaxDepth int

		frames []frame
		procs  map[string]*ProcDecl
	}

	frame struct {
		parent Frame
		vars   map[string]int32
	}

	// Scope is a view of Env at a particular frame.
	Scope struct {
		Env   *Env
		Frame Frame
	}
)

const (
	Root Frame = 0

	noFrame Frame = -1
)

// MaxCallDepth bounds nested procedure calls.
const MaxCallDepth = 10000

func NewEnv(w io.Writer) *Env {
	return &Env{
		Out:      w,
		MaxDepth: MaxCallDepth,
		frames: []frame{{
			parent: noFrame,
			vars:   make(map[string]int32),
		}},
		procs: make(map[string]*ProcDecl),
	}
}

func (e *Env) Root() Scope {
	return Scope{Env: e, Frame: Root}
}

// Depth is the number of live frames including the root.
func (e *Env) Depth() int {
	return len(e.frames)
}

// Declare binds name in frame f unconditionally.
func (e *Env) Declare(f Frame, name string, v int32) {
	e.frames[f].vars[name] = v
}

// Set updates the nearest frame starting from f which already binds name.
// If there is no such frame name is defined in the root frame.
func (e *Env) Set(f Frame, name string, v int32) {
	for ; f != Root; f = e.frames[f].parent {
		if _, ok := e.frames[f].vars[name]; ok {
			break
		}
	}

	e.frames[f].vars[name] = v
}

// Get resolves name starting from frame f toward the root.
func (e *Env) Get(f Frame, name string) (int32, error) {
	for ; f != noFrame; f = e.frames[f].parent {
		if v, ok := e.frames[f].vars[name]; ok {
			return v, nil
		}
	}

	return 0, errors.Wrap(ErrUndefinedVariable, "%v", name)
}

// SetProc registers d in the root procedure table.
// A previous declaration under the same name is replaced.
func (e *Env) SetProc(d *ProcDecl) {
	e.procs[d.Name] = d
}

func (e *Env) Proc(name string) (*ProcDecl, error) {
	d, ok := e.procs[name]
	if !ok {
		return nil, errors.Wrap(ErrUndefinedProcedure, "%v", name)
	}

	return d, nil
}

// Push creates a new frame whose parent is par.
func (e *Env) Push(par Frame) (Frame, error) {
	n := len(e.frames)

	if e.MaxDepth > 0 && n > e.MaxDepth {
		return noFrame, errors.Wrap(ErrCallDepth, "%d frames", n)
	}

	if n < cap(e.frames) {
		e.frames = e.frames[:n+1]

		fr := &e.frames[n]
		fr.parent = par

		if fr.vars == nil {
			fr.vars = make(map[string]int32)
		} else {
			clear(fr.vars)
		}
	} else {
		e.frames = append(e.frames, frame{
			parent: par,
			vars:   make(map[string]int32),
		})
	}

	if tlog.If("frame") {
		tlog.Printw("push frame", "frame", n, "parent", par, "from", loc.Caller(1))
	}

	return Frame(n), nil
}

// Pop discards frame f and every frame above it.
// The root frame is never discarded.
func (e *Env) Pop(f Frame) {
	if f <= Root || int(f) >= len(e.frames) {
		return
	}

	tlog.V("frame").Printw("pop frame", "frame", f, "depth", len(e.frames))

	e.frames = e.frames[:f]
}

func (s Scope) Declare(name string, v int32) { s.Env.Declare(s.Frame, name, v) }

func (s Scope) Set(name string, v int32) { s.Env.Set(s.Frame, name, v) }

func (s Scope) Get(name string) (int32, error) { return s.Env.Get(s.Frame, name) }

// Enter returns a scope for a fresh frame chained to s.
func (s Scope) Enter() (Scope, error) {
	f, err := s.Env.Push(s.Frame)
	if err != nil {
		return Scope{}, err
	}

	return Scope{Env: s.Env, Frame: f}, nil
}

// Leave discards the scope frame.
func (s Scope) Leave() {
	s.Env.Pop(s.Frame)
}
