package ast

import "tlog.app/go/errors"

var (
	ErrBinding = errors.New("binding error")

	ErrUndefinedVariable  error = bindingError("undefined variable")
	ErrUndefinedProcedure error = bindingError("undefined procedure")
	ErrArity              error = bindingError("wrong number of arguments")
	ErrCallDepth          error = bindingError("call depth exceeded")

	ErrDivideByZero = errors.New("divide by zero")

	ErrUnsupported = errors.New("not supported by code generator")
)

type bindingError string

func (e bindingError) Error() string { return string(e) }

func (e bindingError) Unwrap() error { return ErrBinding }
