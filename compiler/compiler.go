package compiler

import (
	"context"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/hemantkunda/Compilers/compiler/asm"
	"github.com/hemantkunda/Compilers/compiler/ast"
	"github.com/hemantkunda/Compilers/compiler/parse"
)

func ParseFile(ctx context.Context, name string) (*ast.Program, error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, text)
}

func Parse(ctx context.Context, text []byte) (x *ast.Program, err error) {
	x, err = parse.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	return x, nil
}

func InterpretFile(ctx context.Context, name string, w io.Writer) error {
	text, err := readFile(ctx, name)
	if err != nil {
		return err
	}

	return Interpret(ctx, text, w)
}

// Interpret parses text and executes it writing program output to w.
func Interpret(ctx context.Context, text []byte, w io.Writer) (err error) {
	x, err := Parse(ctx, text)
	if err != nil {
		return err
	}

	return Exec(ctx, x, w)
}

// Exec runs x on a fresh environment.
func Exec(ctx context.Context, x *ast.Program, w io.Writer) (err error) {
	err = x.Exec(ctx, ast.NewEnv(w))
	if err != nil {
		return errors.Wrap(err, "exec")
	}

	return nil
}

func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := readFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return Compile(ctx, text)
}

// Compile translates program text into MIPS assembly text.
func Compile(ctx context.Context, text []byte) (obj []byte, err error) {
	x, err := Parse(ctx, text)
	if err != nil {
		return nil, err
	}

	return Generate(ctx, x)
}

// Generate emits assembly for an already parsed program.
func Generate(ctx context.Context, x *ast.Program) (obj []byte, err error) {
	e := asm.New()

	err = x.Compile(ctx, e)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return e.Bytes(), nil
}

func readFile(ctx context.Context, name string) ([]byte, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return text, nil
}
