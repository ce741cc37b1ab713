package interpreter

import (
	"strconv"

	"lazr/interpreter-go/pkg/runtime"
)

// Eval evaluates expr in env. Constants evaluate to themselves, symbols are
// looked up and forced, promises are forced and calls are applied.
func (i *Interpreter) Eval(expr runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	i.visible = true
	obj, ok := expr.RawObject()
	if !ok {
		return expr, nil
	}
	switch o := obj.(type) {
	case *runtime.Symbol:
		return i.evaluateSymbol(o, env)
	case *runtime.Call:
		return i.evaluateCall(o, env)
	case *runtime.Promise:
		return i.forcePromise(o, expr)
	case *runtime.DotArgs:
		return runtime.Null, runtime.Errorf(runtime.ErrUsage, "'...' used in an incorrect context")
	default:
		return expr, nil
	}
}

func (i *Interpreter) evaluateSymbol(sym *runtime.Symbol, env *runtime.Environment) (runtime.Value, error) {
	switch {
	case sym == runtime.MissingArg:
		return runtime.MissingArgValue, nil
	case sym == runtime.DotsSymbol:
		return runtime.Null, runtime.Errorf(runtime.ErrUsage, "'...' used in an incorrect context")
	case sym.IsDotDot():
		return i.evaluateDotDot(sym, env)
	}
	val, found := env.Lookup(sym)
	if found == nil {
		return runtime.Null, runtime.Errorf(runtime.ErrEvaluation, "object '%s' not found", sym.Name())
	}
	if val.IsMissingArg() {
		return runtime.Null, runtime.Errorf(runtime.ErrEvaluation, "argument \"%s\" is missing, with no default", sym.Name())
	}
	if p, ok := promiseOf(val); ok {
		return i.forcePromise(p, runtime.ObjectValue(sym))
	}
	return val, nil
}

// evaluateDotDot resolves ..N to the N-th element of `...`.
func (i *Interpreter) evaluateDotDot(sym *runtime.Symbol, env *runtime.Environment) (runtime.Value, error) {
	n, _ := strconv.Atoi(sym.Name()[2:])
	val, found := env.Lookup(runtime.DotsSymbol)
	if found == nil {
		return runtime.Null, runtime.Errorf(runtime.ErrUsage, "..%d used in an incorrect context, no ... to look in", n)
	}
	dots, ok := dotArgsOf(val)
	if !ok || n < 1 || n > len(dots.Args) {
		return runtime.Null, runtime.Errorf(runtime.ErrUsage, "the ... list does not contain %d elements", n)
	}
	elem := dots.Args[n-1].Value
	if elem.IsMissingArg() {
		return runtime.Null, runtime.Errorf(runtime.ErrEvaluation, "argument \"%s\" is missing, with no default", sym.Name())
	}
	return i.Eval(elem, env)
}

func (i *Interpreter) forcePromise(p *runtime.Promise, expr runtime.Value) (runtime.Value, error) {
	if p.Evaluated() {
		return p.Value(), nil
	}
	if err := i.enter(expr); err != nil {
		return runtime.Null, err
	}
	defer i.leave()
	return p.Force(i)
}

func promiseOf(v runtime.Value) (*runtime.Promise, bool) {
	obj, ok := v.RawObject()
	if !ok {
		return nil, false
	}
	p, ok := obj.(*runtime.Promise)
	return p, ok
}

func dotArgsOf(v runtime.Value) (*runtime.DotArgs, bool) {
	obj, ok := v.RawObject()
	if !ok {
		return nil, false
	}
	d, ok := obj.(*runtime.DotArgs)
	return d, ok
}

// force returns v with any promise forced.
func (i *Interpreter) force(v runtime.Value) (runtime.Value, error) {
	if p, ok := promiseOf(v); ok {
		return i.forcePromise(p, v)
	}
	return v, nil
}
