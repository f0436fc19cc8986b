package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/kr/pretty"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/hemantkunda/Compilers/compiler"
	"github.com/hemantkunda/Compilers/compiler/format"
	"github.com/hemantkunda/Compilers/compiler/mips"
	"github.com/hemantkunda/Compilers/compiler/scan"
)

var errStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

func main() {
	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print the token stream, skipping over lexical errors",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse and print the syntax tree",
		Action:      parseAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("format", false, "print canonical source instead of the tree"),
		},
	}

	runCmd := &cli.Command{
		Name:        "run,interpret",
		Description: "interpret a program",
		Action:      runAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile a program to MIPS assembly",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "out.asm", "output file, - for stdout"),
		},
	}

	simCmd := &cli.Command{
		Name:        "sim",
		Description: "execute MIPS assembly produced by compile",
		Action:      simAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("steps", mips.DefaultStepLimit, "max instructions to execute, 0 for no limit"),
		},
	}

	app := &cli.Command{
		Name:        "pascal",
		Description: "pascal is an interpreter and MIPS compiler for a small Pascal subset",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics (exec, compile, emit, scan, parse, sim, frame)"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			tokensCmd,
			parseCmd,
			runCmd,
			compileCmd,
			simCmd,
		},
	}

	err := cli.Run(app, os.Args, os.Environ())
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "%s %v\n", errStyle.Render("error:"), err)

	var ee *mips.ExitError
	if errors.As(err, &ee) {
		os.Exit(ee.Code)
	}

	os.Exit(1)
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func tokensAct(c *cli.Command) (err error) {
	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		s := scan.New(text)

		for {
			tk, err := s.Next()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errStyle.Render("lexical:"), err)

				s.Recover()

				continue
			}

			fmt.Printf("%-12v %q\n", tk.Kind, tk.Lexeme)

			if tk.Kind == scan.End && !s.HasNext() {
				break
			}
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		x, err := compiler.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		if !c.Bool("format") {
			fmt.Printf("%# v\n", pretty.Formatter(x))
			continue
		}

		b, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		_, _ = os.Stdout.Write(b)
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		err = compiler.InterpretFile(ctx, a, os.Stdout)
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("expected exactly one source file")
	}

	obj, err := compiler.CompileFile(ctx, c.Args[0])
	if err != nil {
		return errors.Wrap(err, "compile %v", c.Args[0])
	}

	out := c.String("output")

	if out == "-" {
		_, err = os.Stdout.Write(obj)
		return err
	}

	err = os.WriteFile(out, obj, 0o644)
	if err != nil {
		return errors.Wrap(err, "write %v", out)
	}

	tlog.Printw("assembly written", "file", out, "size", len(obj))

	return nil
}

func simAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		err = mips.Run(ctx, text, os.Stdout, mips.WithStepLimit(c.Int("steps")))
		if err != nil {
			return errors.Wrap(err, "sim %v", a)
		}
	}

	return nil
}
