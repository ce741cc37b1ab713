package runtime

// CallArg is one argument expression of a call, optionally tagged.
type CallArg struct {
	Tag   *Symbol
	Value Value
}

// Call is an unevaluated function call expression.
type Call struct {
	fn    Value
	args  []CallArg
	cache any
}

func NewCall(fn Value, args ...CallArg) *Call {
	return &Call{fn: fn, args: args}
}

func (c *Call) Type() Type { return LanguageType }

func (c *Call) VisitReferents(visit Visitor) {
	visitValue(c.fn, visit)
	for _, arg := range c.args {
		visitValue(arg.Value, visit)
	}
}

func (c *Call) DetachReferents() {
	c.fn = Null
	c.args = nil
	c.cache = nil
}

// Function returns the head of the call.
func (c *Call) Function() Value {
	return c.fn
}

// Args returns the argument expressions. Callers must not modify the slice.
func (c *Call) Args() []CallArg {
	return c.args
}

// SetFunction replaces the head and drops any cached argument match.
func (c *Call) SetFunction(fn Value) {
	c.fn = fn
	c.cache = nil
}

// SetArgs replaces the arguments and drops any cached argument match.
func (c *Call) SetArgs(args []CallArg) {
	c.args = args
	c.cache = nil
}

// MatchCache returns the argument-matching plan cached by the evaluator.
func (c *Call) MatchCache() any {
	return c.cache
}

func (c *Call) SetMatchCache(cache any) {
	c.cache = cache
}

// HasDots reports whether any argument expression is `...`.
func (c *Call) HasDots() bool {
	for _, arg := range c.args {
		if arg.Value.Is(DotsSymbol) {
			return true
		}
	}
	return false
}

// Formal is one declared parameter of a closure. Default is MissingArgValue
// when the parameter has no default expression.
type Formal struct {
	Name    *Symbol
	Default Value
}

func (f Formal) HasDefault() bool {
	return !f.Default.IsMissingArg()
}

// FormalList is the parameter list of a closure.
type FormalList struct {
	Formals []Formal
}

func NewFormalList(formals ...Formal) *FormalList {
	return &FormalList{Formals: formals}
}

func (f *FormalList) Type() Type { return FormalsType }

func (f *FormalList) VisitReferents(visit Visitor) {
	for _, formal := range f.Formals {
		visitValue(formal.Default, visit)
	}
}

func (f *FormalList) DetachReferents() {
	f.Formals = nil
}

// DotsIndex returns the position of `...`, or -1.
func (f *FormalList) DotsIndex() int {
	for i, formal := range f.Formals {
		if formal.Name == DotsSymbol {
			return i
		}
	}
	return -1
}

// Closure is a user-defined function.
type Closure struct {
	Formals *FormalList
	Body    Value
	Env     *Environment
}

func (c *Closure) Type() Type { return ClosureType }

func (c *Closure) VisitReferents(visit Visitor) {
	if c.Formals != nil {
		visit(c.Formals)
	}
	visitValue(c.Body, visit)
	if c.Env != nil {
		visit(c.Env)
	}
}

func (c *Closure) DetachReferents() {
	c.Formals = nil
	c.Body = Null
	c.Env = nil
}
