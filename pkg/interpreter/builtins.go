package interpreter

import (
	"fmt"
	"strings"

	"lazr/interpreter-go/pkg/runtime"
)

// BuiltinKind selects how a builtin receives its arguments.
type BuiltinKind uint8

const (
	// BuiltinEager builtins receive evaluated arguments.
	BuiltinEager BuiltinKind = iota
	// BuiltinSpecial builtins receive the raw argument expressions and the
	// calling environment.
	BuiltinSpecial
)

type builtinImpl func(i *Interpreter, bc *builtinCall) (runtime.Value, error)

// Builtin is a function implemented by the interpreter. Arity is the exact
// argument count, or -1 when any count is accepted.
type Builtin struct {
	Name    string
	Kind    BuiltinKind
	Arity   int
	Generic bool
	impl    builtinImpl
}

func (b *Builtin) Type() runtime.Type {
	if b.Kind == BuiltinSpecial {
		return runtime.SpecialType
	}
	return runtime.BuiltinType
}

func (b *Builtin) VisitReferents(runtime.Visitor) {}

func (b *Builtin) DetachReferents() {}

func (b *Builtin) fastPathEligible(call *runtime.Call) bool {
	return b.Kind == BuiltinEager && b.Arity >= 0 && !b.Generic && !call.HasDots()
}

func (b *Builtin) checkArity(call *runtime.Call, n int) error {
	if b.Arity < 0 || n == b.Arity {
		return nil
	}
	noun := "arguments"
	if n == 1 {
		noun = "argument"
	}
	return runtime.CallErrorf(runtime.ErrUsage, runtime.ObjectValue(call),
		"%d %s passed to '%s' which requires %d", n, noun, b.Name, b.Arity)
}

// builtinCall carries one builtin invocation. values is set for eager
// builtins; args holds the argument list when one was built.
type builtinCall struct {
	call   *runtime.Call
	env    *runtime.Environment
	args   *runtime.ArgList
	values []runtime.Value
}

func (bc *builtinCall) callValue() runtime.Value {
	return runtime.ObjectValue(bc.call)
}

// rawArgs returns the unevaluated argument expressions of a special.
func (bc *builtinCall) rawArgs() []runtime.CallArg {
	if bc.args != nil {
		return bc.args.List()
	}
	return bc.call.Args()
}

func (bc *builtinCall) errorf(format string, args ...any) error {
	return runtime.CallErrorf(runtime.ErrEvaluation, bc.callValue(), format, args...)
}

func (i *Interpreter) installBuiltins() {
	for _, b := range i.builtinTable() {
		i.base.Define(runtime.Intern(b.Name), runtime.ObjectValue(b))
	}
}

func (i *Interpreter) builtinTable() []*Builtin {
	special := func(name string, arity int, impl builtinImpl) *Builtin {
		return &Builtin{Name: name, Kind: BuiltinSpecial, Arity: arity, impl: impl}
	}
	eager := func(name string, arity int, impl builtinImpl) *Builtin {
		return &Builtin{Name: name, Kind: BuiltinEager, Arity: arity, impl: impl}
	}
	generic := func(b *Builtin) *Builtin {
		b.Generic = true
		return b
	}
	return []*Builtin{
		special("{", -1, builtinBlock),
		special("<-", 2, builtinAssign),
		special("=", 2, builtinAssign),
		special("quote", 1, builtinQuote),
		special("if", -1, builtinIf),
		special("function", 2, builtinFunction),
		special("return", -1, builtinReturn),
		special("missing", 1, builtinMissing),
		special("UseMethod", -1, builtinUseMethod),
		special("NextMethod", -1, builtinNextMethod),
		special("nargs", 0, builtinNargs),
		eager("force", 1, builtinIdentity),
		eager("identity", 1, builtinIdentity),
		eager("invisible", 1, builtinInvisible),
		eager("c", -1, builtinCombine),
		eager("list", -1, builtinList),
		generic(eager("length", 1, builtinLength)),
		eager("+", -1, arithmeticBuiltin(opAdd)),
		eager("-", -1, arithmeticBuiltin(opSub)),
		eager("*", 2, arithmeticBuiltin(opMul)),
		eager("/", 2, arithmeticBuiltin(opDiv)),
		eager("==", 2, comparisonBuiltin(opEq)),
		eager("<", 2, comparisonBuiltin(opLt)),
		eager(">", 2, comparisonBuiltin(opGt)),
		eager("!", 1, builtinNot),
		eager("cat", -1, builtinCat),
		eager("stop", -1, builtinStop),
		eager("warning", -1, builtinWarning),
		eager("gc", 0, builtinGC),
		eager("typeof", 1, builtinTypeof),
		eager("is.null", 1, builtinIsNull),
	}
}

func builtinBlock(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	result := runtime.Null
	for _, arg := range bc.rawArgs() {
		val, err := i.Eval(arg.Value, bc.env)
		if err != nil {
			return runtime.Null, err
		}
		result = val
	}
	return result, nil
}

func builtinAssign(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	if len(args) != 2 {
		return runtime.Null, bc.errorf("invalid assignment")
	}
	target, err := assignmentTarget(args[0].Value)
	if err != nil {
		return runtime.Null, runtime.CallErrorf(runtime.ErrEvaluation, bc.callValue(), "%s", err.Error())
	}
	val, err := i.Eval(args[1].Value, bc.env)
	if err != nil {
		return runtime.Null, err
	}
	bc.env.Define(target, val)
	i.visible = false
	return val, nil
}

func assignmentTarget(lhs runtime.Value) (*runtime.Symbol, error) {
	if sym, ok := lhs.Symbol(); ok && sym != runtime.MissingArg && sym != runtime.DotsSymbol {
		return sym, nil
	}
	if s, ok := lhs.Str(); ok {
		return runtime.Intern(s.Text()), nil
	}
	return nil, fmt.Errorf("invalid assignment target")
}

func builtinQuote(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	return args[0].Value, nil
}

func builtinIf(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	if len(args) < 2 || len(args) > 3 {
		return runtime.Null, bc.errorf("malformed if: %d arguments", len(args))
	}
	cond, err := i.Eval(args[0].Value, bc.env)
	if err != nil {
		return runtime.Null, err
	}
	truth, err := runtime.AsScalarLogicalNoNA(cond, bc.callValue())
	if err != nil {
		return runtime.Null, err
	}
	if truth {
		return i.Eval(args[1].Value, bc.env)
	}
	if len(args) == 3 {
		return i.Eval(args[2].Value, bc.env)
	}
	i.visible = false
	return runtime.Null, nil
}

func builtinFunction(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	formals := runtime.NewFormalList()
	if obj, ok := args[0].Value.RawObject(); ok {
		list, ok := obj.(*runtime.FormalList)
		if !ok {
			return runtime.Null, bc.errorf("invalid formal argument list for \"function\"")
		}
		formals = list
	} else if !args[0].Value.IsNull() {
		return runtime.Null, bc.errorf("invalid formal argument list for \"function\"")
	}
	return runtime.ObjectValue(&runtime.Closure{Formals: formals, Body: args[1].Value, Env: bc.env}), nil
}

func builtinReturn(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	val := runtime.Null
	switch len(args) {
	case 0:
	case 1:
		v, err := i.Eval(args[0].Value, bc.env)
		if err != nil {
			return runtime.Null, err
		}
		val = v
	default:
		return runtime.Null, bc.errorf("multi-argument returns are not permitted")
	}
	return runtime.Null, returnSignal{value: val, target: bc.env}
}

// builtinMissing reports whether a formal of the running closure was left
// unsupplied, including formals that fell back to their default.
func builtinMissing(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	expr := args[0].Value
	if s, ok := expr.Str(); ok {
		expr = runtime.Sym(s.Text())
	}
	sym, ok := expr.Symbol()
	if !ok {
		return runtime.Null, bc.errorf("invalid use of 'missing'")
	}
	binding, ok := bc.env.Frame().Binding(sym)
	if !ok {
		return runtime.Null, bc.errorf("'missing' can only be used for arguments")
	}
	if p, ok := promiseOf(binding); ok && p.Defaulted() {
		return runtime.BoolValue(true), nil
	}
	return runtime.BoolValue(runtime.IsMissingArgument(sym, bc.env)), nil
}

func builtinUseMethod(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	args := bc.rawArgs()
	if len(args) < 1 || len(args) > 2 {
		return runtime.Null, bc.errorf("'UseMethod' called with %d arguments", len(args))
	}
	genericVal, err := i.Eval(args[0].Value, bc.env)
	if err != nil {
		return runtime.Null, err
	}
	generic, ok := genericVal.Str()
	if !ok {
		return runtime.Null, bc.errorf("'generic' argument must be a character string")
	}
	var obj runtime.Value
	if len(args) == 2 {
		obj, err = i.Eval(args[1].Value, bc.env)
	} else {
		obj, err = i.dispatchObject(bc)
	}
	if err != nil {
		return runtime.Null, err
	}
	return i.useMethod(bc, generic.Text(), obj)
}

// dispatchObject evaluates the first formal of the closure running in the
// environment of bc.
func (i *Interpreter) dispatchObject(bc *builtinCall) (runtime.Value, error) {
	frame := i.frameFor(bc.env)
	if frame == nil || frame.closure.Formals == nil || len(frame.closure.Formals.Formals) == 0 {
		return runtime.Null, nil
	}
	first := frame.closure.Formals.Formals[0].Name
	if first == runtime.DotsSymbol {
		first = runtime.Intern("..1")
	}
	return i.evaluateSymbol(first, bc.env)
}

func builtinNextMethod(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	raw := bc.rawArgs()
	extra := make([]runtime.CallArg, 0, len(raw))
	for _, arg := range raw {
		if arg.Value.IsMissingArg() {
			continue
		}
		extra = append(extra, runtime.CallArg{
			Tag:   arg.Tag,
			Value: runtime.ObjectValue(runtime.NewPromise(arg.Value, bc.env)),
		})
	}
	return i.nextMethod(bc, extra)
}

func builtinNargs(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	frame := i.frameFor(bc.env)
	if frame == nil {
		return runtime.IntegerValue(0), nil
	}
	return runtime.IntegerValue(int32(frame.args.Len())), nil
}

func builtinIdentity(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	return bc.values[0], nil
}

func builtinInvisible(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	i.visible = false
	return bc.values[0], nil
}

func builtinList(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	list := &runtime.ListVector{Elems: append([]runtime.Value(nil), bc.values...)}
	if tags := bc.tags(); tags != nil {
		list.Names = make([]*runtime.String, len(tags))
		for idx, tag := range tags {
			name := ""
			if tag != nil {
				name = tag.Name()
			}
			list.Names[idx] = runtime.InternString(name)
		}
	}
	return runtime.ObjectValue(list), nil
}

// tags returns the argument tags, or nil when no argument is tagged.
func (bc *builtinCall) tags() []*runtime.Symbol {
	if bc.args == nil || !bc.args.HasTags() {
		return nil
	}
	return bc.args.Tags()
}

func builtinLength(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	return runtime.IntegerValue(int32(bc.values[0].Size())), nil
}

func builtinCat(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	sep := " "
	var parts []string
	tags := bc.tags()
	for idx, val := range bc.values {
		if tags != nil && tags[idx] != nil && tags[idx].Name() == "sep" {
			s, ok := val.Str()
			if !ok {
				return runtime.Null, bc.errorf("invalid 'sep' specification")
			}
			sep = s.Text()
			continue
		}
		items, err := catItems(val)
		if err != nil {
			return runtime.Null, runtime.CallErrorf(runtime.ErrEvaluation, bc.callValue(), "%s", err.Error())
		}
		parts = append(parts, items...)
	}
	fmt.Fprint(i.stdout, strings.Join(parts, sep))
	i.visible = false
	return runtime.Null, nil
}

func builtinStop(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	msg, err := conditionMessage(bc.values)
	if err != nil {
		return runtime.Null, err
	}
	call := runtime.Null
	if frame := i.frameFor(bc.env); frame != nil {
		call = runtime.ObjectValue(frame.call)
	}
	return runtime.Null, runtime.CallErrorf(runtime.ErrEvaluation, call, "%s", msg)
}

func builtinWarning(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	msg, err := conditionMessage(bc.values)
	if err != nil {
		return runtime.Null, err
	}
	i.Warn(msg)
	i.visible = false
	return runtime.Str(msg), nil
}

// conditionMessage pastes the arguments of stop and warning together.
func conditionMessage(values []runtime.Value) (string, error) {
	var b strings.Builder
	for _, val := range values {
		items, err := catItems(val)
		if err != nil {
			return "", err
		}
		for _, item := range items {
			b.WriteString(item)
		}
	}
	return b.String(), nil
}

func builtinGC(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	i.heap.RequestCollection()
	i.visible = false
	return runtime.IntegerValue(int32(i.heap.Len())), nil
}

func builtinTypeof(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	return runtime.Str(bc.values[0].Type().String()), nil
}

func builtinIsNull(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	return runtime.BoolValue(bc.values[0].IsNull()), nil
}
