// Package ast builds expression trees for the interpreter. Expressions are
// ordinary runtime values: symbols, constants and calls.
package ast

import "lazr/interpreter-go/pkg/runtime"

// Arg is one argument of a call under construction.
type Arg = runtime.CallArg

func NewSymbol(name string) runtime.Value {
	return runtime.Sym(name)
}

func NewString(text string) runtime.Value {
	return runtime.Str(text)
}

func NewNumber(value float64) runtime.Value {
	return runtime.RealValue(value)
}

func NewInteger(value int32) runtime.Value {
	return runtime.IntegerValue(value)
}

func NewLogical(value bool) runtime.Value {
	return runtime.BoolValue(value)
}

func NewNull() runtime.Value {
	return runtime.Null
}

// NewMissing is an empty argument, as in f(x, ).
func NewMissing() runtime.Value {
	return runtime.MissingArgValue
}

// NewDots is the `...` placeholder.
func NewDots() runtime.Value {
	return runtime.Dots
}

// NewArg is a positional argument.
func NewArg(value runtime.Value) Arg {
	return Arg{Value: value}
}

// NewNamedArg is a tagged argument, as in f(name = value).
func NewNamedArg(name string, value runtime.Value) Arg {
	return Arg{Tag: runtime.Intern(name), Value: value}
}

// NewCall builds a call whose head is fn.
func NewCall(fn runtime.Value, args ...Arg) runtime.Value {
	return runtime.ObjectValue(runtime.NewCall(fn, args...))
}

// NewNamedCall builds a call to the function called name with positional
// arguments.
func NewNamedCall(name string, args ...runtime.Value) runtime.Value {
	callArgs := make([]Arg, len(args))
	for i, a := range args {
		callArgs[i] = NewArg(a)
	}
	return NewCall(NewSymbol(name), callArgs...)
}

// NewFormal declares a parameter without a default.
func NewFormal(name string) runtime.Formal {
	return runtime.Formal{Name: runtime.Intern(name), Default: runtime.MissingArgValue}
}

// NewDefaultFormal declares a parameter with a default expression.
func NewDefaultFormal(name string, def runtime.Value) runtime.Formal {
	return runtime.Formal{Name: runtime.Intern(name), Default: def}
}

// NewFunction builds the expression function(formals) body.
func NewFunction(formals []runtime.Formal, body runtime.Value) runtime.Value {
	list := runtime.ObjectValue(runtime.NewFormalList(formals...))
	return NewCall(NewSymbol("function"), NewArg(list), NewArg(body))
}

// NewBlock builds { exprs... }.
func NewBlock(exprs ...runtime.Value) runtime.Value {
	return NewNamedCall("{", exprs...)
}

// NewAssign builds name <- value.
func NewAssign(name string, value runtime.Value) runtime.Value {
	return NewNamedCall("<-", NewSymbol(name), value)
}
