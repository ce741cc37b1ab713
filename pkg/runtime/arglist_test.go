package runtime

import (
	"strings"
	"testing"
)

func realOf(t *testing.T, v Value) float64 {
	t.Helper()
	d, ok := v.Real()
	if !ok {
		t.Fatalf("expected real, got %s", v.Kind())
	}
	return d
}

func TestArgumentCopiesSharePromise(t *testing.T) {
	ev := &testEvaluator{}
	env := NewEnvironment(nil)
	env.Define(Intern("x"), RealValue(2))

	a := NewArgument(nil, Sym("x"))
	a.WrapInPromise(env)
	b := a

	if _, err := b.ForcedValue(ev); err != nil {
		t.Fatalf("force copy: %v", err)
	}
	v, err := a.ForcedValue(ev)
	if err != nil {
		t.Fatalf("force original: %v", err)
	}
	if realOf(t, v) != 2 || ev.evals != 1 {
		t.Fatalf("expected one evaluation shared by both copies, got %d", ev.evals)
	}
}

func TestArgumentValueBoxesPromiseWithoutForcing(t *testing.T) {
	ev := &testEvaluator{}
	a := NewArgument(Intern("n"), Sym("boom"))
	a.WrapInPromise(NewEnvironment(nil))

	v := a.Value()
	obj, ok := v.RawObject()
	if !ok {
		t.Fatalf("expected promise object")
	}
	if p, ok := obj.(*Promise); !ok || p.State() != PromiseUnforced {
		t.Fatalf("expected unforced promise, got %#v", obj)
	}
	if a.IsPromiseWrapped() || ev.evals != 0 {
		t.Fatalf("expected plain value holding the promise without evaluation")
	}
	if a.Tag() != Intern("n") {
		t.Fatalf("expected tag to survive")
	}
}

func TestArgumentWrapPreconditions(t *testing.T) {
	env := NewEnvironment(nil)
	expectInvariantPanic(t, func() {
		a := NewArgument(nil, RealValue(1))
		a.WrapInPromise(env)
		a.WrapInPromise(env)
	})
	expectInvariantPanic(t, func() {
		a := NewArgument(nil, Dots)
		a.WrapInEvaluatedPromise(RealValue(1))
	})
}

func TestArgumentSetValueDropsPromise(t *testing.T) {
	a := NewArgument(nil, Sym("x"))
	a.WrapInEvaluatedPromise(RealValue(9))
	a.SetValue(RealValue(1))
	if a.IsPromiseWrapped() || realOf(t, a.Value()) != 1 {
		t.Fatalf("expected plain value after SetValue")
	}
}

func dotsEnv(args ...DotArg) *Environment {
	env := NewEnvironment(nil)
	env.Define(DotsSymbol, ObjectValue(&DotArgs{Args: args}))
	return env
}

func TestArgListEvaluateExpandsDots(t *testing.T) {
	ev := &testEvaluator{}
	env := dotsEnv(
		DotArg{Tag: Intern("a"), Value: RealValue(2)},
		DotArg{Value: RealValue(3)},
	)
	args := NewArgList(ArgsRaw, RealValue(1), Dots, RealValue(4))
	if !args.HasDots() {
		t.Fatalf("expected raw list to report dots")
	}
	if err := args.Evaluate(ev, env, MissingError); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if args.Status() != ArgsEvaluated || args.Len() != 4 {
		t.Fatalf("expected 4 evaluated arguments, got %d (%s)", args.Len(), args.Status())
	}
	for i, want := range []float64{1, 2, 3, 4} {
		if got := realOf(t, args.At(i).Value()); got != want {
			t.Fatalf("arg %d: expected %v, got %v", i+1, want, got)
		}
	}
	if args.At(1).Tag() != Intern("a") {
		t.Fatalf("expected spliced tag to be kept")
	}
	expectInvariantPanic(t, func() { _ = args.Evaluate(ev, env, MissingError) })
}

func TestArgListDotsExpansionEdgeCases(t *testing.T) {
	ev := &testEvaluator{}
	cases := []struct {
		name string
		env  *Environment
		want int
	}{
		{"unbound", NewEnvironment(nil), 1},
		{"missing", func() *Environment {
			e := NewEnvironment(nil)
			e.Define(DotsSymbol, MissingArgValue)
			return e
		}(), 1},
		{"null", func() *Environment {
			e := NewEnvironment(nil)
			e.Define(DotsSymbol, Null)
			return e
		}(), 1},
		{"empty", dotsEnv(), 1},
	}
	for _, tc := range cases {
		args := NewArgList(ArgsRaw, Dots, RealValue(1))
		if err := args.Evaluate(ev, tc.env, MissingError); err != nil {
			t.Fatalf("%s: evaluate: %v", tc.name, err)
		}
		if args.Len() != tc.want {
			t.Fatalf("%s: expected %d arguments, got %d", tc.name, tc.want, args.Len())
		}
	}

	bad := NewEnvironment(nil)
	bad.Define(DotsSymbol, RealValue(1))
	err := NewArgList(ArgsRaw, Dots).Evaluate(ev, bad, MissingError)
	if err == nil || err.Error() != "'...' used in an incorrect context" {
		t.Fatalf("expected incorrect context error, got %v", err)
	}
}

func TestArgListMissingPolicies(t *testing.T) {
	ev := &testEvaluator{}
	env := NewEnvironment(nil)

	err := NewArgList(ArgsRaw, RealValue(1), MissingArgValue).Evaluate(ev, env, MissingError)
	if err == nil || err.Error() != "argument 2 is empty" {
		t.Fatalf("expected empty argument error, got %v", err)
	}

	kept := NewArgList(ArgsRaw, RealValue(1), MissingArgValue)
	if err := kept.Evaluate(ev, env, MissingKeep); err != nil {
		t.Fatalf("keep: %v", err)
	}
	if kept.Len() != 2 || !kept.At(1).Value().IsMissingArg() {
		t.Fatalf("expected missing sentinel to be kept")
	}

	dropped := NewArgList(ArgsRaw, MissingArgValue, RealValue(1), MissingArgValue)
	if err := dropped.Evaluate(ev, env, MissingDrop); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if dropped.Len() != 1 || realOf(t, dropped.At(0).Value()) != 1 {
		t.Fatalf("expected missing arguments to be dropped, got %d", dropped.Len())
	}
}

func TestArgListEvaluateToArrayLeavesListUntouched(t *testing.T) {
	ev := &testEvaluator{}
	env := dotsEnv(DotArg{Value: RealValue(5)})
	env.Define(Intern("x"), RealValue(6))
	args := NewArgList(ArgsRaw, Sym("x"), Dots)

	out, err := args.EvaluateToArray(ev, env, make([]Value, 0, 4), MissingError)
	if err != nil {
		t.Fatalf("evaluate to array: %v", err)
	}
	if len(out) != 2 || realOf(t, out[0]) != 6 || realOf(t, out[1]) != 5 {
		t.Fatalf("unexpected values %v", out)
	}
	if args.Status() != ArgsRaw || args.Len() != 2 {
		t.Fatalf("expected list to stay raw with 2 entries")
	}
	expectInvariantPanic(t, func() { _, _ = args.EvaluateToArray(ev, env, nil, MissingDrop) })
}

func TestArgListWrapInPromisesFromRaw(t *testing.T) {
	ev := &testEvaluator{}
	env := NewEnvironment(nil)
	args := NewArgList(ArgsRaw, Sym("x"), MissingArgValue)
	if err := args.WrapInPromises(ev, env, nil); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if args.Status() != ArgsPromiseWrapped {
		t.Fatalf("expected promise-wrapped status, got %s", args.Status())
	}
	if !args.At(0).IsPromiseWrapped() {
		t.Fatalf("expected first argument to be deferred")
	}
	if args.At(1).IsPromiseWrapped() || !args.At(1).Value().IsMissingArg() {
		t.Fatalf("expected missing sentinel to stay unwrapped")
	}
	if ev.evals != 0 {
		t.Fatalf("expected no evaluation while wrapping")
	}
	if err := args.WrapInPromises(ev, env, nil); err != nil {
		t.Fatalf("rewrap: %v", err)
	}
}

func TestArgListWrapInPromisesFromEvaluated(t *testing.T) {
	ev := &testEvaluator{}
	env := NewEnvironment(nil)
	call := NewCall(Sym("f"), CallArg{Value: Sym("boom")}, CallArg{Tag: Intern("k"), Value: Sym("y")})
	args := NewArgList(ArgsEvaluated, RealValue(1), RealValue(2))

	if err := args.WrapInPromises(ev, env, call); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if args.Status() != ArgsPromiseWrapped || args.Len() != 2 {
		t.Fatalf("expected 2 promise-wrapped arguments")
	}
	for i, want := range []float64{1, 2} {
		v, err := args.At(i).ForcedValue(ev)
		if err != nil || realOf(t, v) != want {
			t.Fatalf("arg %d: expected %v, got %v (%v)", i+1, want, v, err)
		}
	}
	if ev.evals != 0 {
		t.Fatalf("expected recorded values to be reused, got %d evaluations", ev.evals)
	}
	p, _ := args.At(0).Promise()
	if !p.Expression().Is(Intern("boom")) {
		t.Fatalf("expected promise to carry the call's expression")
	}
	if args.At(1).Tag() != Intern("k") {
		t.Fatalf("expected tag from the call")
	}

	short := NewArgList(ArgsEvaluated, RealValue(1))
	err := short.WrapInPromises(ev, env, call)
	if err == nil || !strings.Contains(err.Error(), "dispatch error") {
		t.Fatalf("expected dispatch error, got %v", err)
	}
	expectInvariantPanic(t, func() { _ = NewArgList(ArgsEvaluated).WrapInPromises(ev, env, nil) })
}

func TestArgListMerge(t *testing.T) {
	args := NewTaggedArgList(ArgsPromiseWrapped, []CallArg{
		{Value: RealValue(1)},
		{Tag: Intern("b"), Value: RealValue(2)},
	})
	args.Merge([]CallArg{
		{Tag: Intern("c"), Value: RealValue(30)},
		{Tag: Intern("b"), Value: RealValue(20)},
		{Value: RealValue(40)},
	})
	if args.Len() != 4 {
		t.Fatalf("expected 4 arguments after merge, got %d", args.Len())
	}
	want := []float64{1, 20, 30, 40}
	for i, w := range want {
		if got := realOf(t, args.At(i).Value()); got != w {
			t.Fatalf("arg %d: expected %v, got %v", i+1, w, got)
		}
	}
	if args.At(2).Tag() != Intern("c") || args.At(3).Tag() != nil {
		t.Fatalf("expected appended extras to keep their tags")
	}
	expectInvariantPanic(t, func() { NewArgList(ArgsRaw).Merge(nil) })
}

func TestArgListTags(t *testing.T) {
	args := NewTaggedArgList(ArgsRaw, []CallArg{{Tag: Intern("a"), Value: RealValue(1)}, {Value: RealValue(2)}})
	if !args.HasTags() {
		t.Fatalf("expected tags")
	}
	args.StripTags()
	if args.HasTags() {
		t.Fatalf("expected tags to be stripped")
	}
	sym, err := Tag2Symbol(Str("name"))
	if err != nil || sym != Intern("name") {
		t.Fatalf("expected string tag to coerce, got %v (%v)", sym, err)
	}
	if _, err := Tag2Symbol(RealValue(1)); err == nil {
		t.Fatalf("expected error for a numeric tag")
	}
}
