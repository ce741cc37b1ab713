package runtime

// Evaluator evaluates expressions on behalf of runtime objects that defer
// work, such as promises and argument lists.
type Evaluator interface {
	Eval(expr Value, env *Environment) (Value, error)
	Warn(message string)
}

// PromiseState tracks a promise through forcing.
type PromiseState uint8

const (
	PromiseUnforced PromiseState = iota
	PromiseUnderEvaluation
	PromiseInterrupted
	PromiseForced
)

func (s PromiseState) String() string {
	switch s {
	case PromiseUnforced:
		return "unforced"
	case PromiseUnderEvaluation:
		return "under_evaluation"
	case PromiseInterrupted:
		return "interrupted"
	case PromiseForced:
		return "forced"
	default:
		return "unknown"
	}
}

// Promise is a deferred evaluation of an expression in a captured
// environment. It is evaluated at most once; the environment is released
// as soon as a value is recorded.
type Promise struct {
	expr  Value
	env   *Environment
	value Value
	state PromiseState
	// defaulted marks a promise built from a formal's default expression.
	defaulted bool
}

// NewPromise defers evaluation of expr in env.
func NewPromise(expr Value, env *Environment) *Promise {
	return &Promise{expr: expr, env: env, value: Unbound}
}

// NewDefaultPromise defers a formal's default expression in the execution
// environment of the call.
func NewDefaultPromise(expr Value, env *Environment) *Promise {
	p := NewPromise(expr, env)
	p.defaulted = true
	return p
}

// NewEvaluatedPromise wraps an already computed value. expr is kept for
// substitution and diagnostics.
func NewEvaluatedPromise(expr, value Value) *Promise {
	return &Promise{expr: expr, value: value, state: PromiseForced}
}

func (p *Promise) Type() Type { return PromiseType }

func (p *Promise) VisitReferents(visit Visitor) {
	visitValue(p.expr, visit)
	visitValue(p.value, visit)
	if p.env != nil {
		visit(p.env)
	}
}

func (p *Promise) DetachReferents() {
	p.expr = Null
	p.value = Unbound
	p.env = nil
}

// Expression returns the deferred expression.
func (p *Promise) Expression() Value {
	return p.expr
}

// Environment returns the captured environment, or nil once forced.
func (p *Promise) Environment() *Environment {
	return p.env
}

func (p *Promise) State() PromiseState {
	return p.state
}

// Evaluated reports whether a value has been recorded.
func (p *Promise) Evaluated() bool {
	return p.state == PromiseForced
}

// Value returns the recorded value, or Unbound when not yet forced.
func (p *Promise) Value() Value {
	if p.state != PromiseForced {
		return Unbound
	}
	return p.value
}

// Defaulted reports whether the promise stands in for an argument that was
// not supplied.
func (p *Promise) Defaulted() bool {
	return p.defaulted
}

// Seen reports whether forcing has ever started.
func (p *Promise) Seen() bool {
	return p.state != PromiseUnforced
}

// Force evaluates the promise if needed and returns its value. A promise
// forced while it is already being forced is an error; a promise whose
// previous forcing failed is restarted with a warning.
func (p *Promise) Force(ev Evaluator) (Value, error) {
	switch p.state {
	case PromiseForced:
		return p.value, nil
	case PromiseInterrupted:
		ev.Warn("restarting interrupted promise evaluation")
	case PromiseUnderEvaluation:
		return Null, Errorf(ErrEvaluation,
			"promise already under evaluation: recursive default argument reference or earlier problems?")
	}

	p.state = PromiseUnderEvaluation
	completed := false
	defer func() {
		if !completed {
			p.state = PromiseInterrupted
		}
	}()
	val, err := ev.Eval(p.expr, p.env)
	if err != nil {
		return Null, err
	}
	completed = true
	p.setValue(val)
	return p.Value(), nil
}

func (p *Promise) setValue(val Value) {
	if val.IsUnbound() {
		p.state = PromiseUnforced
		return
	}
	p.value = val
	p.state = PromiseForced
	p.env = nil
}

// IsMissingSymbol reports whether the promise is an unforced reference to a
// symbol that is itself a missing argument in the captured environment. A
// chain that loops back on itself counts as missing.
func (p *Promise) IsMissingSymbol() bool {
	if p.state == PromiseForced || p.env == nil {
		return false
	}
	sym, ok := p.expr.Symbol()
	if !ok {
		return false
	}
	if p.state == PromiseUnderEvaluation {
		return true
	}
	prev := p.state
	p.state = PromiseUnderEvaluation
	defer func() { p.state = prev }()
	return IsMissingArgument(sym, p.env)
}

// IsMissingArgument reports whether sym is bound to a missing argument in
// env's own frame, following promises that merely forward another symbol.
func IsMissingArgument(sym *Symbol, env *Environment) bool {
	if env == nil || sym.IsDotDot() {
		return false
	}
	v, ok := env.frame.Binding(sym)
	if !ok {
		return false
	}
	if v.IsMissingArg() {
		return true
	}
	if obj, ok := v.RawObject(); ok {
		switch o := obj.(type) {
		case *Promise:
			return o.IsMissingSymbol()
		case *DotArgs:
			return sym == DotsSymbol && len(o.Args) == 0
		}
	}
	return false
}
