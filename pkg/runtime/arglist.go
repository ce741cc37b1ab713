package runtime

// ArgStatus is the stage an ArgList has reached. Lists only move forward,
// except that an evaluated list can be rebuilt as promises for dispatch.
type ArgStatus uint8

const (
	ArgsRaw ArgStatus = iota
	ArgsPromiseWrapped
	ArgsEvaluated
)

func (s ArgStatus) String() string {
	switch s {
	case ArgsRaw:
		return "raw"
	case ArgsPromiseWrapped:
		return "promise_wrapped"
	case ArgsEvaluated:
		return "evaluated"
	default:
		return "unknown"
	}
}

// MissingPolicy selects how evaluation treats missing arguments.
type MissingPolicy uint8

const (
	// MissingError raises "argument N is empty".
	MissingError MissingPolicy = iota
	// MissingKeep passes the missing sentinel through.
	MissingKeep
	// MissingDrop removes missing arguments from the list.
	MissingDrop
)

// ArgList is the ordered argument list of a call as it moves from raw
// expressions to promises or values.
type ArgList struct {
	args   []Argument
	status ArgStatus
}

// NewArgList builds an untagged list at the given stage.
func NewArgList(status ArgStatus, values ...Value) *ArgList {
	l := &ArgList{status: status, args: make([]Argument, len(values))}
	for i, v := range values {
		l.args[i] = NewArgument(nil, v)
	}
	return l
}

// NewTaggedArgList builds a list from tagged argument expressions.
func NewTaggedArgList(status ArgStatus, args []CallArg) *ArgList {
	l := &ArgList{status: status, args: make([]Argument, len(args))}
	for i, arg := range args {
		l.args[i] = NewArgument(arg.Tag, arg.Value)
	}
	return l
}

// NewArgListFromCall builds a raw list from the call's argument expressions.
func NewArgListFromCall(call *Call) *ArgList {
	return NewTaggedArgList(ArgsRaw, call.args)
}

func (l *ArgList) Status() ArgStatus {
	return l.status
}

func (l *ArgList) Len() int {
	return len(l.args)
}

// At returns the i-th argument for in-place inspection or update.
func (l *ArgList) At(i int) *Argument {
	return &l.args[i]
}

// Clone copies the list. Promises are shared with the original.
func (l *ArgList) Clone() *ArgList {
	out := &ArgList{status: l.status, args: make([]Argument, len(l.args))}
	copy(out.args, l.args)
	return out
}

// Values returns each argument's value without forcing promises.
func (l *ArgList) Values() []Value {
	out := make([]Value, len(l.args))
	for i := range l.args {
		out[i] = l.args[i].Value()
	}
	return out
}

// Tags returns each argument's tag, nil for untagged arguments.
func (l *ArgList) Tags() []*Symbol {
	out := make([]*Symbol, len(l.args))
	for i := range l.args {
		out[i] = l.args[i].tag
	}
	return out
}

// List converts the arguments to tagged call arguments.
func (l *ArgList) List() []CallArg {
	out := make([]CallArg, len(l.args))
	for i := range l.args {
		out[i] = CallArg{Tag: l.args[i].tag, Value: l.args[i].Value()}
	}
	return out
}

// HasDots reports whether any argument is the `...` placeholder.
func (l *ArgList) HasDots() bool {
	for i := range l.args {
		if l.args[i].promise == nil && l.args[i].value.Is(DotsSymbol) {
			return true
		}
	}
	return false
}

func (l *ArgList) HasTags() bool {
	for i := range l.args {
		if l.args[i].tag != nil {
			return true
		}
	}
	return false
}

func (l *ArgList) StripTags() {
	for i := range l.args {
		l.args[i].tag = nil
	}
}

// Tag2Symbol coerces a tag given as a symbol, a string or NULL to a symbol.
func Tag2Symbol(tag Value) (*Symbol, error) {
	if tag.IsNull() {
		return nil, nil
	}
	if sym, ok := tag.Symbol(); ok {
		return sym, nil
	}
	if s, ok := tag.Str(); ok {
		return Intern(s.Text()), nil
	}
	if obj, ok := tag.RawObject(); ok {
		if sv, ok := obj.(*StringVector); ok && len(sv.Elems) > 0 {
			return Intern(sv.Elems[0].Text()), nil
		}
	}
	return nil, Errorf(ErrUsage, "invalid tag of type '%s'", tag.Type())
}

func (l *ArgList) VisitReferents(visit Visitor) {
	for i := range l.args {
		l.args[i].VisitReferents(visit)
	}
}

func (l *ArgList) DetachReferents() {
	l.args = nil
}

// dottedArgs resolves the `...` binding visible from env. A nil result means
// the placeholder expands to nothing.
func dottedArgs(ev Evaluator, env *Environment) (*DotArgs, error) {
	binding, found := env.Lookup(DotsSymbol)
	if found == nil {
		return nil, nil
	}
	if obj, ok := binding.RawObject(); ok {
		if p, ok := obj.(*Promise); ok {
			forced, err := p.Force(ev)
			if err != nil {
				return nil, err
			}
			binding = forced
		}
	}
	if binding.IsNull() || binding.IsMissingArg() {
		return nil, nil
	}
	if obj, ok := binding.RawObject(); ok {
		if dots, ok := obj.(*DotArgs); ok {
			return dots, nil
		}
	}
	return nil, Errorf(ErrUsage, "'...' used in an incorrect context")
}

// transform applies fn to every argument, numbering them from one. A raw list
// containing `...` is rebuilt with the placeholder expanded in place.
func (l *ArgList) transform(ev Evaluator, env *Environment, fn func(arg *Argument, n int) error) error {
	if l.status != ArgsRaw || !l.HasDots() {
		for i := range l.args {
			if err := fn(&l.args[i], i+1); err != nil {
				return err
			}
		}
		return nil
	}
	expanded := make([]Argument, 0, len(l.args))
	n := 1
	for _, arg := range l.args {
		if arg.promise == nil && arg.value.Is(DotsSymbol) {
			dots, err := dottedArgs(ev, env)
			if err != nil {
				return err
			}
			if dots == nil {
				continue
			}
			for _, d := range dots.Args {
				expanded = append(expanded, NewArgument(d.Tag, d.Value))
				if err := fn(&expanded[len(expanded)-1], n); err != nil {
					return err
				}
				n++
			}
			continue
		}
		expanded = append(expanded, arg)
		if err := fn(&expanded[len(expanded)-1], n); err != nil {
			return err
		}
		n++
	}
	l.args = expanded
	return nil
}

// Evaluate evaluates every argument in env, expanding `...`, and moves the
// list to ArgsEvaluated.
func (l *ArgList) Evaluate(ev Evaluator, env *Environment, policy MissingPolicy) error {
	if l.status == ArgsEvaluated {
		panic(invariantf("ArgList.Evaluate: list is already evaluated"))
	}
	dropped := false
	err := l.transform(ev, env, func(arg *Argument, n int) error {
		v, err := evaluateSingleArgument(ev, arg.Value(), env, policy, n)
		if err != nil {
			return err
		}
		if v.IsMissingArg() && policy == MissingDrop {
			dropped = true
		}
		arg.SetValue(v)
		return nil
	})
	if err != nil {
		return err
	}
	if dropped {
		kept := l.args[:0]
		for _, arg := range l.args {
			if !arg.value.IsMissingArg() {
				kept = append(kept, arg)
			}
		}
		l.args = kept
	}
	l.status = ArgsEvaluated
	return nil
}

// EvaluateToArray evaluates the arguments into dst without changing the list
// and returns the filled slice. An already evaluated list is copied as is.
// MissingDrop is not supported.
func (l *ArgList) EvaluateToArray(ev Evaluator, env *Environment, dst []Value, policy MissingPolicy) ([]Value, error) {
	if policy == MissingDrop {
		panic(invariantf("ArgList.EvaluateToArray: MissingDrop is not supported"))
	}
	dst = dst[:0]
	if l.status == ArgsEvaluated {
		for i := range l.args {
			dst = append(dst, l.args[i].value)
		}
		return dst, nil
	}
	n := 1
	for i := range l.args {
		arg := &l.args[i]
		if l.status == ArgsRaw && arg.promise == nil && arg.value.Is(DotsSymbol) {
			dots, err := dottedArgs(ev, env)
			if err != nil {
				return dst, err
			}
			if dots == nil {
				continue
			}
			for _, d := range dots.Args {
				v, err := evaluateSingleArgument(ev, d.Value, env, policy, n)
				if err != nil {
					return dst, err
				}
				dst = append(dst, v)
				n++
			}
			continue
		}
		expr := arg.value
		if arg.promise != nil {
			expr = ObjectValue(arg.promise)
		}
		v, err := evaluateSingleArgument(ev, expr, env, policy, n)
		if err != nil {
			return dst, err
		}
		dst = append(dst, v)
		n++
	}
	return dst, nil
}

func evaluateSingleArgument(ev Evaluator, expr Value, env *Environment, policy MissingPolicy, n int) (Value, error) {
	if sym, ok := expr.Symbol(); ok {
		if sym == MissingArg {
			if policy == MissingError {
				return Null, Errorf(ErrUsage, "argument %d is empty", n)
			}
			return MissingArgValue, nil
		}
		if policy != MissingError && IsMissingArgument(sym, env) {
			return MissingArgValue, nil
		}
	}
	return ev.Eval(expr, env)
}

// WrapInPromises moves the list to ArgsPromiseWrapped. A raw list has each
// argument other than the missing sentinel deferred in env. An evaluated list
// is rebuilt from call's argument expressions, each paired with the value
// already computed for it. A list that is already promise-wrapped is left
// unchanged.
func (l *ArgList) WrapInPromises(ev Evaluator, env *Environment, call *Call) error {
	switch l.status {
	case ArgsPromiseWrapped:
		return nil
	case ArgsEvaluated:
		if call == nil {
			panic(invariantf("ArgList.WrapInPromises: evaluated list needs the originating call"))
		}
		values := l.args
		raw := NewArgListFromCall(call)
		err := raw.transform(ev, env, func(arg *Argument, n int) error {
			if n > len(values) {
				return Errorf(ErrUsage, "dispatch error")
			}
			arg.WrapInEvaluatedPromise(values[n-1].value)
			return nil
		})
		if err != nil {
			return err
		}
		if len(raw.args) != len(values) {
			return Errorf(ErrUsage, "dispatch error")
		}
		l.args = raw.args
		l.status = ArgsPromiseWrapped
		return nil
	}
	err := l.transform(ev, env, func(arg *Argument, n int) error {
		if !arg.value.IsMissingArg() {
			arg.WrapInPromise(env)
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.status = ArgsPromiseWrapped
	return nil
}

// Merge folds extra promise-wrapped arguments into the list. A tagged extra
// replaces the first argument carrying the same tag; the remaining extras are
// appended in order.
func (l *ArgList) Merge(extra []CallArg) {
	if l.status != ArgsPromiseWrapped {
		panic(invariantf("ArgList.Merge: list is %s, want %s", l.status, ArgsPromiseWrapped))
	}
	pending := append([]CallArg(nil), extra...)
	for i := range l.args {
		tag := l.args[i].tag
		if tag == nil {
			continue
		}
		for j, x := range pending {
			if x.Tag == tag {
				l.args[i].SetValue(x.Value)
				pending = append(pending[:j], pending[j+1:]...)
				break
			}
		}
	}
	for _, x := range pending {
		l.args = append(l.args, NewArgument(x.Tag, x.Value))
	}
}
