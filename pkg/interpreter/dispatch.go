package interpreter

import "lazr/interpreter-go/pkg/runtime"

var (
	genericSymbol = runtime.Intern(".Generic")
	classSymbol   = runtime.Intern(".Class")
)

// dispatchContext describes the method activation selected by UseMethod,
// NextMethod or internal dispatch of a generic builtin.
type dispatchContext struct {
	generic string
	classes []string
	// position is the index in classes of the running method; len(classes)
	// denotes the default method.
	position int
	call     *runtime.Call
	callEnv  *runtime.Environment
	// builtin is the primitive behind an internal generic, used when no
	// further closure method exists.
	builtin  *Builtin
	bindings *runtime.Frame
}

func (i *Interpreter) newDispatchContext(generic string, classes []string, position int, call *runtime.Call, callEnv *runtime.Environment, builtin *Builtin) *dispatchContext {
	ctx := &dispatchContext{
		generic:  generic,
		classes:  classes,
		position: position,
		call:     call,
		callEnv:  callEnv,
		builtin:  builtin,
		bindings: runtime.NewFrame(i.heap),
	}
	ctx.bindings.Bind(genericSymbol, runtime.Str(generic))
	remaining := []string{}
	if position < len(classes) {
		remaining = classes[position:]
	}
	ctx.bindings.Bind(classSymbol, stringVector(remaining))
	return ctx
}

// implicitClass returns the class vector used for dispatch on v.
func implicitClass(v runtime.Value) []string {
	switch v.Type() {
	case runtime.RealType:
		return []string{"double", "numeric"}
	case runtime.IntegerType:
		return []string{"integer", "numeric"}
	case runtime.LogicalType:
		return []string{"logical"}
	case runtime.StringType, runtime.CharType:
		return []string{"character"}
	case runtime.ListType:
		return []string{"list"}
	case runtime.ClosureType, runtime.BuiltinType, runtime.SpecialType:
		return []string{"function"}
	case runtime.NilType:
		return []string{"NULL"}
	case runtime.LanguageType:
		return []string{"call"}
	case runtime.SymbolType:
		return []string{"name"}
	case runtime.EnvironmentType:
		return []string{"environment"}
	default:
		return []string{v.Type().String()}
	}
}

// findMethod searches generic.<class> for the classes from start on, then
// generic.default. It returns the method and the class position it was
// found at.
func (i *Interpreter) findMethod(generic string, classes []string, start int, env *runtime.Environment) (runtime.Object, int, error) {
	for idx := start; idx < len(classes); idx++ {
		fn, found, err := i.findFunction(runtime.Intern(generic+"."+classes[idx]), env)
		if err != nil || found {
			return fn, idx, err
		}
	}
	fn, found, err := i.findFunction(runtime.Intern(generic+".default"), env)
	if err != nil || !found {
		return nil, len(classes), err
	}
	return fn, len(classes), nil
}

// useMethod dispatches the generic running in env on obj. The chosen method
// receives the generic's promises and the result is returned from the
// generic itself.
func (i *Interpreter) useMethod(bc *builtinCall, generic string, obj runtime.Value) (runtime.Value, error) {
	frame := i.frameFor(bc.env)
	if frame == nil {
		return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(bc.call), "UseMethod called from outside a function")
	}
	classes := implicitClass(obj)
	method, position, err := i.findMethod(generic, classes, 0, bc.env)
	if err != nil {
		return runtime.Null, err
	}
	if method == nil {
		return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(frame.call),
			"no applicable method for '%s' applied to an object of class \"%s\"", generic, classes[0])
	}
	ctx := i.newDispatchContext(generic, classes, position, frame.call, frame.callEnv, nil)
	val, err := i.applyFunction(frame.call, method, frame.callEnv, frame.args.Clone(), ctx)
	if err != nil {
		return runtime.Null, err
	}
	return runtime.Null, returnSignal{value: val, target: bc.env}
}

// nextMethod invokes the method after the running one. extra arguments are
// merged into the running method's arguments.
func (i *Interpreter) nextMethod(bc *builtinCall, extra []runtime.CallArg) (runtime.Value, error) {
	frame := i.frameFor(bc.env)
	if frame == nil || frame.dispatch == nil {
		return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(bc.call), "NextMethod called from outside a method dispatch")
	}
	ctx := frame.dispatch
	args := frame.args.Clone()
	args.Merge(extra)

	if ctx.position < len(ctx.classes) {
		method, position, err := i.findMethod(ctx.generic, ctx.classes, ctx.position+1, bc.env)
		if err != nil {
			return runtime.Null, err
		}
		if method != nil {
			next := i.newDispatchContext(ctx.generic, ctx.classes, position, ctx.call, ctx.callEnv, ctx.builtin)
			return i.applyFunction(ctx.call, method, ctx.callEnv, args, next)
		}
	}
	if ctx.builtin != nil {
		if err := args.Evaluate(i, ctx.callEnv, runtime.MissingError); err != nil {
			return runtime.Null, err
		}
		values := args.Values()
		if err := ctx.builtin.checkArity(ctx.call, len(values)); err != nil {
			return runtime.Null, err
		}
		return ctx.builtin.impl(i, &builtinCall{call: ctx.call, env: ctx.callEnv, args: args, values: values})
	}
	return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(bc.call), "no more methods for '%s'", ctx.generic)
}

// dispatchInternal looks for a closure method of the generic builtin b for
// the class of the first evaluated argument. When one exists, args are
// turned back into promises paired with the call's expressions and the
// method is applied.
func (i *Interpreter) dispatchInternal(call *runtime.Call, b *Builtin, env *runtime.Environment, args *runtime.ArgList) (runtime.Value, bool, error) {
	classes := implicitClass(args.At(0).Value())
	for idx, class := range classes {
		method, found, err := i.findFunction(runtime.Intern(b.Name+"."+class), env)
		if err != nil {
			return runtime.Null, false, err
		}
		if !found {
			continue
		}
		if err := args.WrapInPromises(i, env, call); err != nil {
			return runtime.Null, false, err
		}
		ctx := i.newDispatchContext(b.Name, classes, idx, call, env, b)
		val, err := i.applyFunction(call, method, env, args, ctx)
		return val, true, err
	}
	return runtime.Null, false, nil
}

func stringVector(items []string) runtime.Value {
	if len(items) == 1 {
		return runtime.Str(items[0])
	}
	elems := make([]*runtime.String, len(items))
	for idx, item := range items {
		elems[idx] = runtime.InternString(item)
	}
	return runtime.ObjectValue(&runtime.StringVector{Elems: elems})
}
