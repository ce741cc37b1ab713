package runtime

// testEvaluator resolves symbols, forces promises and returns every other
// expression unchanged. Evaluating the symbol `boom` fails.
type testEvaluator struct {
	evals    int
	warnings []string
}

func (e *testEvaluator) Eval(expr Value, env *Environment) (Value, error) {
	e.evals++
	if sym, ok := expr.Symbol(); ok {
		if sym.Name() == "boom" {
			return Null, Errorf(ErrEvaluation, "boom")
		}
		v, found := env.Lookup(sym)
		if found == nil {
			return Null, Errorf(ErrEvaluation, "object '%s' not found", sym.Name())
		}
		if v.IsMissingArg() {
			return Null, Errorf(ErrEvaluation, "argument \"%s\" is missing, with no default", sym.Name())
		}
		return e.force(v)
	}
	return e.force(expr)
}

func (e *testEvaluator) force(v Value) (Value, error) {
	if obj, ok := v.RawObject(); ok {
		if p, ok := obj.(*Promise); ok {
			return p.Force(e)
		}
	}
	return v, nil
}

func (e *testEvaluator) Warn(message string) {
	e.warnings = append(e.warnings, message)
}
