package runtime

import (
	"math"
	"strings"
	"testing"
)

func coercionSamples() []Value {
	return []Value{
		RealValue(0),
		RealValue(math.Copysign(0, -1)),
		RealValue(1.5),
		RealValue(-3),
		RealValue(math.NaN()),
		RealValue(NAReal()),
		RealValue(math.Inf(1)),
		RealValue(3e9),
		IntegerValue(0),
		IntegerValue(7),
		IntegerValue(NAInteger),
		LogicalValue(LogicalTrue),
		LogicalValue(LogicalFalse),
		LogicalValue(LogicalNA),
		Str("TRUE"),
		Str("F"),
		Str("12"),
		Str("nope"),
	}
}

// The inline scalar paths must agree with the generic vector paths.
func TestScalarCoercionsMatchBoxedObjects(t *testing.T) {
	for _, v := range coercionSamples() {
		boxed := v.Object()
		if got, want := AsScalarLogical(v), objectAsLogical(boxed); got != want {
			t.Fatalf("%s %#x: logical %d, boxed %d", v.Kind(), v.bits, got, want)
		}
		gotInt, gotOK := AsScalarInteger(v)
		wantInt, wantOK := objectAsInteger(boxed)
		if gotInt != wantInt || gotOK != wantOK {
			t.Fatalf("%s %#x: integer %d/%v, boxed %d/%v", v.Kind(), v.bits, gotInt, gotOK, wantInt, wantOK)
		}
		gotReal, wantReal := AsScalarReal(v), objectAsReal(boxed)
		if math.Float64bits(gotReal) != math.Float64bits(wantReal) && !(math.IsNaN(gotReal) && math.IsNaN(wantReal)) {
			t.Fatalf("%s %#x: real %v, boxed %v", v.Kind(), v.bits, gotReal, wantReal)
		}
	}
}

func TestRealZeroCoercions(t *testing.T) {
	zero := RealValue(0)
	if AsScalarLogical(zero) != LogicalFalse {
		t.Fatalf("expected FALSE for real zero")
	}
	if i, ok := AsScalarInteger(zero); i != 0 || !ok {
		t.Fatalf("expected 0 for real zero, got %d", i)
	}
	if AsScalarReal(zero) != 0 {
		t.Fatalf("expected 0.0 for real zero")
	}
}

func TestCoercionNASemantics(t *testing.T) {
	if AsScalarLogical(Null) != LogicalNA {
		t.Fatalf("expected NA logical for NULL")
	}
	if i, _ := AsScalarInteger(Null); i != NAInteger {
		t.Fatalf("expected NA integer for NULL")
	}
	if !IsNAReal(AsScalarReal(Null)) {
		t.Fatalf("expected NA real for NULL")
	}
	if !IsNAReal(AsScalarReal(IntegerValue(NAInteger))) {
		t.Fatalf("expected NA integer to coerce to NA real")
	}
	if AsScalarLogical(IntegerValue(NAInteger)) != LogicalNA {
		t.Fatalf("expected NA integer to coerce to NA logical")
	}
	if i, ok := AsScalarInteger(RealValue(3e9)); i != NAInteger || ok {
		t.Fatalf("expected out-of-range real to become NA with a warning flag, got %d/%v", i, ok)
	}
}

func TestAsScalarLogicalNoNA(t *testing.T) {
	call := ObjectValue(NewCall(Sym("if")))
	ok, err := AsScalarLogicalNoNA(RealValue(2), call)
	if err != nil || !ok {
		t.Fatalf("expected TRUE, got %v (%v)", ok, err)
	}
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "argument is of length zero"},
		{ObjectValue(&LogicalVector{}), "argument is of length zero"},
		{LogicalValue(LogicalNA), "missing value where TRUE/FALSE needed"},
		{Str("maybe"), "argument is not interpretable as logical"},
	}
	for _, tc := range cases {
		_, err := AsScalarLogicalNoNA(tc.v, call)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("expected %q, got %v", tc.want, err)
		}
		le, ok := AsLangError(err)
		if !ok || !le.Call.Is(call.obj) {
			t.Fatalf("expected error attributed to the call")
		}
	}
}
