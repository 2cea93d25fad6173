// Package cse implements the Control-Stack-Environment machine that
// executes a flattened Delta/B control forest (spec §4.4): a three-stack
// interpreter (control, value stack, environment list) dispatching on
// thirteen control-symbol shapes, most notably Gamma application (Lambda,
// Tup-indexing, Y*/Eta recursion unrolling, and primitive calls) and the
// Beta/B conditional-branch mechanism.
package cse

import (
	"io"

	"github.com/dekarrin/rpal/control"
	"github.com/dekarrin/rpal/internal/rpalerrors"
)

// DefaultMaxSteps bounds the main dispatch loop so a runaway program (an
// unconditionally recursive function with no base case, for instance)
// fails with a diagnosable error instead of hanging the host process.
const DefaultMaxSteps = 2_000_000

// Options configures a single Execute run.
type Options struct {
	// MaxSteps overrides DefaultMaxSteps; zero means use the default.
	MaxSteps int
	// Output receives Print's side-effecting writes; nil discards them.
	Output io.Writer
}

// Machine holds one run's mutable state. Execute builds a fresh Machine for
// each run and does not return it, so its state is not visible to callers,
// even after a step-limit error.
type Machine struct {
	control []*control.Symbol
	stack   []*control.Symbol
	envs    []*control.Environment
	current *control.Environment

	nextEnvIndex int
	steps        int
	maxSteps     int

	Output io.Writer
}

// Execute runs a flattened program's root Delta to completion and returns
// the resulting value (spec §4.4's final rule: "when control is empty, the
// top of the stack is the program's result").
func Execute(root *control.Symbol, opts Options) (*control.Symbol, error) {
	if root.Kind != control.KindDelta {
		return nil, rpalerrors.Runtimef("cse: root control block must be a Delta, got %s", root.Kind)
	}
	e0 := control.NewPrimitiveEnvironment()
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	m := &Machine{
		envs:         []*control.Environment{e0},
		current:      e0,
		nextEnvIndex: 1,
		maxSteps:     maxSteps,
		Output:       opts.Output,
	}
	m.pushControl(control.NewEnvMarker(0))
	m.pushControl(root)
	m.pushStack(control.NewEnvMarker(0))

	if err := m.run(); err != nil {
		return nil, err
	}
	if len(m.stack) == 0 {
		return nil, rpalerrors.Runtimef("cse: program terminated with an empty stack")
	}
	return m.stack[len(m.stack)-1], nil
}

func (m *Machine) run() error {
	for len(m.control) > 0 {
		m.steps++
		if m.steps > m.maxSteps {
			return rpalerrors.WrapRuntime(rpalerrors.ErrStepLimitExceeded, "exceeded %d evaluation steps", m.maxSteps)
		}
		sym := m.popControl()
		if err := m.step(sym); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) step(sym *control.Symbol) error {
	switch sym.Kind {
	case control.KindId:
		m.pushStack(m.current.Lookup(sym.Str))

	case control.KindLambda:
		sym.CapturedEnv = m.current.Index
		sym.CapturedEnvSet = true
		m.pushStack(sym)

	case control.KindGamma:
		return m.applyGamma()

	case control.KindEnv:
		return m.popEnvironment(sym)

	case control.KindUop:
		rand := m.popStack()
		result, err := applyUnary(sym.Str, rand)
		if err != nil {
			return err
		}
		m.pushStack(result)

	case control.KindBop:
		a := m.popStack()
		b := m.popStack()
		result, err := applyBinary(sym.Str, a, b)
		if err != nil {
			return err
		}
		m.pushStack(result)

	case control.KindBeta:
		cond := m.popStack()
		if cond.Kind != control.KindBool {
			return rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "conditional test must be a truth value, got %s", cond.Kind)
		}
		if cond.BoolVal {
			m.dropControlLast()
		} else {
			m.dropControlSecondToLast()
		}

	case control.KindTauMarker:
		n := sym.TauArity
		if len(m.stack) < n {
			return rpalerrors.Runtimef("cse: tau expected %d values on the stack, found %d", n, len(m.stack))
		}
		elems := make([]*control.Symbol, n)
		for i := 0; i < n; i++ {
			elems[i] = m.popStack()
		}
		m.pushStack(control.Tup(elems...))

	case control.KindDelta, control.KindB:
		m.pushControl(sym.Symbols...)

	default:
		// Int, Str, Bool, Dummy, Tup, Ystar literals, and anything else
		// encountered directly in control are pushed verbatim.
		m.pushStack(sym)
	}
	return nil
}

// applyGamma implements spec §4.4 rule 3: pop the function value off the
// stack and dispatch on its kind.
func (m *Machine) applyGamma() error {
	if len(m.stack) == 0 {
		return rpalerrors.Runtimef("cse: gamma applied with an empty stack")
	}
	f := m.popStack()
	switch f.Kind {
	case control.KindLambda:
		return m.applyLambda(f)

	case control.KindTup:
		idx := m.popStack()
		if idx.Kind != control.KindInt {
			return rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "tuple index must be an integer")
		}
		if idx.IntVal < 1 || idx.IntVal > len(f.Elements) {
			return rpalerrors.WrapRuntime(rpalerrors.ErrTupleIndex, "tuple index %d out of range for a %d-element tuple", idx.IntVal, len(f.Elements))
		}
		m.pushStack(f.Elements[idx.IntVal-1])
		return nil

	case control.KindYstar:
		l := m.popStack()
		if l.Kind != control.KindLambda {
			return rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "Y* must be applied to a function")
		}
		m.pushStack(control.NewEta(l))
		return nil

	case control.KindEta:
		m.pushControl(control.Gamma(), control.Gamma())
		m.pushStack(f)
		m.pushStack(f.EtaLambda)
		return nil

	case control.KindPrim:
		arg := m.popStack()
		next := f.WithArg(arg)
		return m.dispatchPrim(next)

	case control.KindId:
		if !isBuiltin(f.Str) {
			return rpalerrors.WrapRuntime(rpalerrors.ErrNotApplicable, "unbound identifier %q is not applicable", f.Str)
		}
		prim := control.NewPrim(f.Str, builtinArity[f.Str])
		arg := m.popStack()
		return m.dispatchPrim(prim.WithArg(arg))

	default:
		return rpalerrors.WrapRuntime(rpalerrors.ErrNotApplicable, "value of kind %s is not applicable", f.Kind)
	}
}

func (m *Machine) dispatchPrim(p *control.Symbol) error {
	if !p.Ready() {
		m.pushStack(p)
		return nil
	}
	result, err := m.applyBuiltin(p.PrimName, p.PrimArgs)
	if err != nil {
		return err
	}
	m.pushStack(result)
	return nil
}

// applyLambda implements spec §4.4 rule 3's Lambda branch: bind the
// argument(s), open a fresh environment, and splice the lambda's body onto
// control behind a matching environment-exit marker.
func (m *Machine) applyLambda(l *control.Symbol) error {
	if !l.CapturedEnvSet {
		return rpalerrors.Runtimef("cse: lambda applied before its captured environment was set")
	}
	parent := m.envByIndex(l.CapturedEnv)
	if parent == nil {
		return rpalerrors.Runtimef("cse: lambda's captured environment %d not found", l.CapturedEnv)
	}
	e := control.NewChild(m.nextEnvIndex, parent)
	m.nextEnvIndex++

	if len(l.Params) == 1 {
		e.Bind(l.Params[0], m.popStack())
	} else {
		tup := m.popStack()
		if tup.Kind != control.KindTup || len(tup.Elements) != len(l.Params) {
			return rpalerrors.WrapRuntime(rpalerrors.ErrTypeMismatch, "function of %d parameters applied to a mismatched argument", len(l.Params))
		}
		for i, name := range l.Params {
			e.Bind(name, tup.Elements[i])
		}
	}

	m.envs = append(m.envs, e)
	m.current = e
	marker := control.NewEnvMarker(e.Index)
	m.pushControl(marker)
	m.pushControl(l.Body)
	m.pushStack(marker)
	return nil
}

// popEnvironment implements spec §4.4 rule 4: an E(k) marker reaching the
// front of control means the frame it names is exiting. The value
// immediately beneath the top of the stack is that frame's own marker
// (pushed alongside it in applyLambda); it is discarded, leaving the
// frame's result on top.
func (m *Machine) popEnvironment(marker *control.Symbol) error {
	if len(m.stack) < 2 {
		return rpalerrors.Runtimef("cse: environment exit with fewer than 2 stack values")
	}
	n := len(m.stack)
	result := m.stack[n-1]
	m.stack = append(m.stack[:n-2], result)

	env := m.envByIndex(marker.EnvIndex)
	if env != nil {
		env.Removed = true
	}
	for i := len(m.envs) - 1; i >= 0; i-- {
		if !m.envs[i].Removed {
			m.current = m.envs[i]
			break
		}
	}
	return nil
}

func (m *Machine) envByIndex(idx int) *control.Environment {
	for _, e := range m.envs {
		if e.Index == idx {
			return e
		}
	}
	return nil
}

func (m *Machine) pushControl(s ...*control.Symbol) { m.control = append(m.control, s...) }

func (m *Machine) popControl() *control.Symbol {
	n := len(m.control) - 1
	s := m.control[n]
	m.control = m.control[:n]
	return s
}

func (m *Machine) dropControlLast() {
	m.control = m.control[:len(m.control)-1]
}

func (m *Machine) dropControlSecondToLast() {
	n := len(m.control)
	m.control = append(m.control[:n-2], m.control[n-1])
}

func (m *Machine) pushStack(s *control.Symbol) { m.stack = append(m.stack, s) }

func (m *Machine) popStack() *control.Symbol {
	n := len(m.stack) - 1
	s := m.stack[n]
	m.stack = m.stack[:n]
	return s
}
