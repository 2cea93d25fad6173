// Package rpal wires the parse -> standardize -> flatten -> execute
// pipeline together behind a single Interpreter type, mirroring the
// tunascript.Interpreter idiom: the zero value is ready for use, and each
// stage is also exposed on its own for callers that only need a prefix of
// the pipeline (a debug dump of the parse tree, say).
package rpal

import (
	"io"
	"log"

	"github.com/dekarrin/rpal/cache"
	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/cse"
	"github.com/dekarrin/rpal/flatten"
	"github.com/dekarrin/rpal/parser"
	"github.com/dekarrin/rpal/standardize"
	"github.com/dekarrin/rpal/syntax"
)

// Interpreter runs RPAL source through the full pipeline. The zero value is
// ready to use; MaxSteps, Output, and Cache are optional overrides of the
// built-in defaults.
type Interpreter struct {
	// MaxSteps overrides cse.DefaultMaxSteps for this interpreter's
	// Eval/EvalString calls; zero means use the default.
	MaxSteps int

	// Output receives the CSE machine's Print side effects; nil discards
	// them (the interpreter's own result is returned, not printed, unless
	// the caller's RPAL program calls Print itself).
	Output io.Writer

	// Cache, if non-nil, is consulted and populated around Flatten so that
	// repeated evaluation of unchanged source skips straight to execution.
	// CachePath must also be set for caching to take effect.
	Cache     *FileCache
	CachePath string
}

// FileCache is a thin marker type selecting the on-disk .rpalc sidecar
// cache; it carries no state of its own; all the bookkeeping lives in
// package cache, keyed by the path given to Interpreter.CachePath.
type FileCache struct{}

// Parse runs the lexer and parser, returning the raw AST-1 tree.
func (in *Interpreter) Parse(src string) (*syntax.Node, error) {
	return parser.Parse(src)
}

// Standardize runs Parse followed by the standardizer's 8 rewrite rules,
// returning the canonical AST-2 tree.
func (in *Interpreter) Standardize(src string) (*syntax.Node, error) {
	n, err := in.Parse(src)
	if err != nil {
		return nil, err
	}
	return standardize.Standardize(n)
}

// Flatten runs the full front end (parse, standardize, flatten) and
// returns the root Delta control block the CSE machine executes. When a
// file cache is configured, a fresh flatten is skipped in favor of a cached
// forest whose source hash matches.
func (in *Interpreter) Flatten(src string) (*control.Symbol, error) {
	if in.Cache != nil && in.CachePath != "" {
		hash := cache.HashSource(src)
		sidecar := cache.SidecarPath(in.CachePath)
		if d, ok, err := cache.Load(sidecar, hash); err == nil && ok {
			return d, nil
		}
		std, err := in.Standardize(src)
		if err != nil {
			return nil, err
		}
		d, err := flatten.Flatten(std)
		if err != nil {
			return nil, err
		}
		if err := cache.Save(sidecar, hash, d); err != nil {
			log.Printf("WARN  could not write cache %s: %s", sidecar, err.Error())
		}
		return d, nil
	}

	std, err := in.Standardize(src)
	if err != nil {
		return nil, err
	}
	return flatten.Flatten(std)
}

// Eval runs source through the entire pipeline and returns the CSE
// machine's final result value.
func (in *Interpreter) Eval(src string) (*control.Symbol, error) {
	d, err := in.Flatten(src)
	if err != nil {
		return nil, err
	}
	return cse.Execute(d, cse.Options{MaxSteps: in.MaxSteps, Output: in.Output})
}

// EvalString is Eval followed by rendering the result the way the
// interpreter's "Result :" line prints it.
func (in *Interpreter) EvalString(src string) (string, error) {
	v, err := in.Eval(src)
	if err != nil {
		return "", err
	}
	return cse.Sprint(v), nil
}
