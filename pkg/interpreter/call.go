package interpreter

import (
	"lazr/interpreter-go/pkg/runtime"
)

// maxFastArgs bounds the argument count the builtin fast path accepts.
const maxFastArgs = 20

func (i *Interpreter) evaluateCall(call *runtime.Call, env *runtime.Environment) (runtime.Value, error) {
	fn, err := i.resolveFunction(call, env)
	if err != nil {
		return runtime.Null, i.attachContext(err, call)
	}
	callValue := runtime.ObjectValue(call)
	if err := i.enter(callValue); err != nil {
		return runtime.Null, err
	}
	defer i.leave()

	if b, ok := fn.(*Builtin); ok && b.fastPathEligible(call) {
		val, err := i.applyBuiltinFast(call, b, env)
		if err != nil {
			return runtime.Null, i.attachContext(err, call)
		}
		return val, nil
	}
	val, err := i.applyFunction(call, fn, env, runtime.NewArgListFromCall(call), nil)
	if err != nil {
		return runtime.Null, i.attachContext(err, call)
	}
	return val, nil
}

// EvaluateCall applies fn, already resolved from call, to args in the calling
// environment env. Closures receive args wrapped in promises; builtins
// receive them evaluated, or raw when the builtin is special.
func (i *Interpreter) EvaluateCall(call *runtime.Call, fn runtime.Object, env *runtime.Environment, args *runtime.ArgList) (runtime.Value, error) {
	if err := i.enter(runtime.ObjectValue(call)); err != nil {
		return runtime.Null, err
	}
	defer i.leave()
	val, err := i.applyFunction(call, fn, env, args, nil)
	if err != nil {
		return runtime.Null, i.attachContext(err, call)
	}
	return val, nil
}

func (i *Interpreter) applyFunction(call *runtime.Call, fn runtime.Object, env *runtime.Environment, args *runtime.ArgList, dispatch *dispatchContext) (runtime.Value, error) {
	switch f := fn.(type) {
	case *runtime.Closure:
		return i.applyClosure(call, f, env, args, dispatch)
	case *Builtin:
		return i.applyBuiltin(call, f, env, args)
	default:
		return runtime.Null, runtime.CallErrorf(runtime.ErrEvaluation, runtime.ObjectValue(call), "attempt to apply non-function")
	}
}

// resolveFunction finds the callee of call. A symbol head is looked up
// skipping bindings that are not functions; any other head is evaluated.
func (i *Interpreter) resolveFunction(call *runtime.Call, env *runtime.Environment) (runtime.Object, error) {
	head := call.Function()
	if sym, ok := head.Symbol(); ok && sym != runtime.MissingArg {
		fn, found, err := i.findFunction(sym, env)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, runtime.CallErrorf(runtime.ErrEvaluation, runtime.ObjectValue(call), "could not find function \"%s\"", sym.Name())
		}
		return fn, nil
	}
	val, err := i.Eval(head, env)
	if err != nil {
		return nil, err
	}
	if obj, ok := val.RawObject(); ok && isFunction(obj) {
		return obj, nil
	}
	return nil, runtime.CallErrorf(runtime.ErrEvaluation, runtime.ObjectValue(call), "attempt to apply non-function")
}

// findFunction walks the scope chain for the first function bound to sym,
// forcing promises on the way.
func (i *Interpreter) findFunction(sym *runtime.Symbol, env *runtime.Environment) (runtime.Object, bool, error) {
	for scope := env; scope != nil; scope = scope.Parent() {
		val, ok := scope.Frame().Binding(sym)
		if !ok || val.IsMissingArg() {
			continue
		}
		val, err := i.force(val)
		if err != nil {
			return nil, false, err
		}
		if obj, ok := val.RawObject(); ok && isFunction(obj) {
			return obj, true, nil
		}
	}
	return nil, false, nil
}

func isFunction(obj runtime.Object) bool {
	switch obj.(type) {
	case *runtime.Closure, *Builtin:
		return true
	}
	return false
}

// applyBuiltinFast evaluates the arguments of a fixed-arity builtin directly
// into a stack buffer, strictly left to right. The arity is checked before
// any argument is evaluated.
func (i *Interpreter) applyBuiltinFast(call *runtime.Call, b *Builtin, env *runtime.Environment) (runtime.Value, error) {
	args := call.Args()
	if len(args) > maxFastArgs {
		return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(call), "too many arguments, sorry")
	}
	if err := b.checkArity(call, len(args)); err != nil {
		return runtime.Null, err
	}
	var buf [maxFastArgs]runtime.Value
	for n, arg := range args {
		if arg.Value.IsMissingArg() {
			return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(call), "argument %d is empty", n+1)
		}
		val, err := i.Eval(arg.Value, env)
		if err != nil {
			return runtime.Null, err
		}
		buf[n] = val
	}
	i.stats.FastPathCalls++
	return b.impl(i, &builtinCall{call: call, env: env, values: buf[:len(args)]})
}

func (i *Interpreter) applyBuiltin(call *runtime.Call, b *Builtin, env *runtime.Environment, args *runtime.ArgList) (runtime.Value, error) {
	bc := &builtinCall{call: call, env: env, args: args}
	if b.Kind == BuiltinSpecial {
		if err := b.checkArity(call, args.Len()); err != nil {
			return runtime.Null, err
		}
		return b.impl(i, bc)
	}
	if args.Status() != runtime.ArgsEvaluated {
		if !b.Generic && !args.HasDots() {
			if err := b.checkArity(call, args.Len()); err != nil {
				return runtime.Null, err
			}
		}
		if err := args.Evaluate(i, env, runtime.MissingError); err != nil {
			return runtime.Null, err
		}
	}
	if b.Generic && args.Len() > 0 {
		val, dispatched, err := i.dispatchInternal(call, b, env, args)
		if err != nil || dispatched {
			return val, err
		}
	}
	bc.values = args.Values()
	if err := b.checkArity(call, len(bc.values)); err != nil {
		return runtime.Null, err
	}
	return b.impl(i, bc)
}

// applyClosure runs closure in a fresh execution environment. Arguments are
// wrapped in promises against env, matched to the formals, and any method
// dispatch bindings are added without overriding matched formals.
func (i *Interpreter) applyClosure(call *runtime.Call, closure *runtime.Closure, env *runtime.Environment, args *runtime.ArgList, dispatch *dispatchContext) (runtime.Value, error) {
	args = args.Clone()
	if err := args.WrapInPromises(i, env, call); err != nil {
		return runtime.Null, err
	}
	execEnv := runtime.NewEnvironment(closure.Env)
	mark := i.heap.Protect(execEnv, args)
	defer i.heap.Unprotect(mark)

	if err := i.matchArguments(call, closure, execEnv, args, dispatch == nil); err != nil {
		return runtime.Null, err
	}
	if dispatch != nil && dispatch.bindings != nil {
		dispatch.bindings.ImportInto(execEnv.Frame())
	}

	i.pushFrame(&callFrame{
		call:     call,
		closure:  closure,
		callEnv:  env,
		execEnv:  execEnv,
		args:     args,
		dispatch: dispatch,
	})
	defer i.popFrame()
	result, err := i.Eval(closure.Body, execEnv)
	if err != nil {
		ret, ok := err.(returnSignal)
		if !ok {
			return runtime.Null, i.attachContext(err, call)
		}
		if ret.target != execEnv {
			return runtime.Null, err
		}
		result = ret.value
	}
	i.monitorLeaks(result, execEnv)
	return result, nil
}

// monitorLeaks marks execEnv as leaked when the result of its activation
// still references it.
func (i *Interpreter) monitorLeaks(result runtime.Value, execEnv *runtime.Environment) {
	obj, ok := result.RawObject()
	if !ok {
		return
	}
	switch o := obj.(type) {
	case *runtime.Environment:
		if o == execEnv {
			execEnv.MarkLeaked()
		}
	case *runtime.Closure:
		if o.Env == execEnv {
			execEnv.MarkLeaked()
		}
	case *runtime.Promise:
		if o.Environment() == execEnv {
			execEnv.MarkLeaked()
		}
	}
}
