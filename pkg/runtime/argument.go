package runtime

// Argument is one actual argument of a call: an optional tag plus either a
// plain value or a promise. Copies of an Argument holding a promise share that
// promise, so forcing through any copy evaluates the expression once.
type Argument struct {
	tag     *Symbol
	value   Value
	promise *Promise
}

func NewArgument(tag *Symbol, value Value) Argument {
	return Argument{tag: tag, value: value}
}

func (a *Argument) Tag() *Symbol {
	return a.tag
}

func (a *Argument) SetTag(tag *Symbol) {
	a.tag = tag
}

// IsPromiseWrapped reports whether the argument holds a promise created by
// one of the Wrap methods.
func (a *Argument) IsPromiseWrapped() bool {
	return a.promise != nil
}

// Promise returns the wrapped promise, if any.
func (a *Argument) Promise() (*Promise, bool) {
	return a.promise, a.promise != nil
}

// Value returns the argument's value. A wrapped promise is returned as a
// promise object without being forced, and the argument then holds that
// object as a plain value.
func (a *Argument) Value() Value {
	if a.promise != nil {
		a.value = ObjectValue(a.promise)
		a.promise = nil
	}
	return a.value
}

// ForcedValue forces a wrapped promise, or a plain value that is itself a
// promise, and returns the result.
func (a *Argument) ForcedValue(ev Evaluator) (Value, error) {
	if a.promise != nil {
		return a.promise.Force(ev)
	}
	if obj, ok := a.value.RawObject(); ok {
		if p, ok := obj.(*Promise); ok {
			return p.Force(ev)
		}
	}
	return a.value, nil
}

// SetValue replaces the value and drops any promise.
func (a *Argument) SetValue(v Value) {
	a.value = v
	a.promise = nil
}

// WrapInPromise defers the current value as an expression evaluated in env.
func (a *Argument) WrapInPromise(env *Environment) {
	a.checkWrappable("WrapInPromise")
	a.promise = NewPromise(a.value, env)
	a.value = Null
}

// WrapInEvaluatedPromise records value as the already computed result of the
// current expression.
func (a *Argument) WrapInEvaluatedPromise(value Value) {
	a.checkWrappable("WrapInEvaluatedPromise")
	a.promise = NewEvaluatedPromise(a.value, value)
	a.value = Null
}

func (a *Argument) checkWrappable(op string) {
	if a.promise != nil {
		panic(invariantf("Argument.%s: argument is already wrapped", op))
	}
	if a.value.Is(DotsSymbol) {
		panic(invariantf("Argument.%s: '...' must be expanded first", op))
	}
}

func (a *Argument) VisitReferents(visit Visitor) {
	visitValue(a.value, visit)
	if a.promise != nil {
		visit(a.promise)
	}
}

func (a *Argument) DetachReferents() {
	a.value = Null
	a.promise = nil
}
