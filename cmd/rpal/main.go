/*
Rpal runs an RPAL program through the parse -> standardize -> flatten ->
execute pipeline and prints its result.

Usage:

	rpal [flags] [FILE]

The flags are:

	-ast
		Print the raw parse tree (AST-1) before evaluating.

	-st
		Print the standardized tree (AST-2) before evaluating.

	-tokens
		Print the token stream before parsing.

	-i, --interactive
		Start a read-eval-print loop instead of evaluating a file.

	-c, --command TEXT
		Evaluate the given RPAL source directly instead of reading a file.

	-o, --output FILE
		Write the "Result :" line to FILE instead of stdout.

	--config FILE
		Load interpreter settings from the given TOML file.

With no FILE, -c, or -i, source is read from stdin.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/spf13/pflag"

	"github.com/dekarrin/rpal"
	"github.com/dekarrin/rpal/internal/config"
	"github.com/dekarrin/rpal/internal/input"
	"github.com/dekarrin/rpal/internal/rpalerrors"
	"github.com/dekarrin/rpal/internal/version"
	"github.com/dekarrin/rpal/lex"
)

const diagnosticWrapWidth = 80

const (
	ExitSuccess = iota
	ExitSyntaxError
	ExitRuntimeError
	ExitInitError
)

var (
	returnCode      = ExitSuccess
	flagVersion     = pflag.BoolP("version", "v", false, "Give the current version of rpal and exit")
	flagAST         = pflag.Bool("ast", false, "Print the raw parse tree before evaluating")
	flagST          = pflag.Bool("st", false, "Print the standardized tree before evaluating")
	flagTokens      = pflag.Bool("tokens", false, "Print the token stream before parsing")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start a read-eval-print loop")
	flagCommand     = pflag.StringP("command", "c", "", "Evaluate the given RPAL source directly")
	flagOutput      = pflag.StringP("output", "o", "", "Write the Result line to FILE instead of stdout")
	flagConfig      = pflag.String("config", "", "Load interpreter settings from the given TOML file")
	flagNoCache     = pflag.Bool("no-cache", false, "Disable the .rpalc sidecar cache")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: loading config: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	out := os.Stdout
	if *flagOutput != "" {
		f, err := os.Create(*flagOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: opening output file: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		defer f.Close()
		out = f
	}

	in := &rpal.Interpreter{MaxSteps: cfg.MaxSteps, Output: os.Stdout}
	if !*flagNoCache && !cfg.DisableCache {
		in.Cache = &rpal.FileCache{}
	}

	switch {
	case *flagInteractive:
		runREPL(in)
	case *flagCommand != "":
		runOne(in, *flagCommand, out)
	case pflag.NArg() > 0:
		path := pflag.Arg(0)
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", path, err.Error())
			returnCode = ExitInitError
			return
		}
		in.CachePath = path
		runOne(in, string(src), out)
	default:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading stdin: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		runOne(in, string(src), out)
	}
}

func runOne(in *rpal.Interpreter, src string, out io.Writer) {
	if *flagTokens {
		toks, err := lex.Scan(src)
		if err != nil {
			reportSyntaxError(err)
			return
		}
		for _, t := range toks {
			fmt.Println(t.String())
		}
	}

	ast, err := in.Parse(src)
	if err != nil {
		reportSyntaxError(err)
		return
	}
	if *flagAST {
		fmt.Println(ast.String())
	}

	std, err := in.Standardize(src)
	if err != nil {
		reportSyntaxError(err)
		return
	}
	if *flagST {
		fmt.Println(std.String())
	}

	result, err := in.EvalString(src)
	if err != nil {
		reportRuntimeError(err)
		return
	}

	fmt.Fprintf(out, "Result : %s\n", result)
}

func runREPL(in *rpal.Interpreter) {
	var reader input.LineReader

	if isTerminal(os.Stdin) {
		r, err := input.NewInteractiveReader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: starting interactive input: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		reader = r
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	fmt.Println("rpal interactive mode. Ctrl-D to quit.")
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return
		}

		result, err := in.EvalString(line)
		if err != nil {
			reportRuntimeError(err)
			continue
		}
		fmt.Println(result)
	}
}

func reportSyntaxError(err error) {
	msg := rosed.Edit(rpalerrors.Diagnostic(err)).Wrap(diagnosticWrapWidth).String()
	fmt.Fprintf(os.Stderr, "SYNTAX ERROR: %s\n", msg)
	returnCode = ExitSyntaxError
}

func reportRuntimeError(err error) {
	msg := rosed.Edit(rpalerrors.Diagnostic(err)).Wrap(diagnosticWrapWidth).String()
	fmt.Fprintf(os.Stderr, "RUNTIME ERROR: %s\n", msg)
	returnCode = ExitRuntimeError
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
