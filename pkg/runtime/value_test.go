package runtime

import (
	"math"
	"testing"
)

func TestValueNullEncoding(t *testing.T) {
	if Null.bits != 0xe000000000000007 {
		t.Fatalf("expected NULL bits 0xe000000000000007, got %#x", Null.bits)
	}
	if !Null.IsNull() || Null.IsReal() {
		t.Fatalf("expected NULL to report only null, got %s", Null.Kind())
	}
	zero := RealValue(0)
	if zero.IsNull() || !zero.IsReal() {
		t.Fatalf("expected real zero to differ from NULL")
	}
	var unset Value
	if !unset.IsReal() {
		t.Fatalf("expected zero Value to be the real 0.0, got %s", unset.Kind())
	}
	if ObjectValue(nil) != Null {
		t.Fatalf("expected nil object to wrap as NULL")
	}
}

func TestValueScalarsRoundTrip(t *testing.T) {
	if l, ok := LogicalValue(LogicalNA).Logical(); !ok || l != LogicalNA {
		t.Fatalf("expected NA logical, got %v (ok=%v)", l, ok)
	}
	for _, i := range []int32{0, 42, -7, NAInteger, math.MaxInt32} {
		v := IntegerValue(i)
		if !v.IsInteger() {
			t.Fatalf("%d: expected integer kind, got %s", i, v.Kind())
		}
		if got, _ := v.Integer(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
	s := Str("hello")
	if got, ok := s.Str(); !ok || got.Text() != "hello" {
		t.Fatalf("expected string hello, got %v", got)
	}
	if Str("hello") != s {
		t.Fatalf("expected interned strings to compare identical")
	}
}

func TestRealValueBoxesReservedPatterns(t *testing.T) {
	inline := []float64{1, -1, 0.5, math.Pi, math.Inf(-1), -math.MaxFloat64}
	for _, d := range inline {
		v := RealValue(d)
		got, ok := v.Real()
		if !ok || math.Float64bits(got) != math.Float64bits(d) {
			t.Fatalf("%v: expected inline real, got kind %s", d, v.Kind())
		}
	}
	boxed := []float64{math.Copysign(0, -1), math.SmallestNonzeroFloat64, math.Inf(1), math.NaN(), NAReal(), 1e160, 1e250, -1e160}
	for _, d := range boxed {
		v := RealValue(d)
		obj, ok := v.RawObject()
		if !ok {
			t.Fatalf("%v: expected boxed real, got kind %s", d, v.Kind())
		}
		vec, ok := obj.(*RealVector)
		if !ok || len(vec.Elems) != 1 || math.Float64bits(vec.Elems[0]) != math.Float64bits(d) {
			t.Fatalf("%v: expected one-element RealVector, got %#v", d, obj)
		}
		if v.Type() != RealType {
			t.Fatalf("%v: expected double type, got %s", d, v.Type())
		}
	}
}

func TestValueObjectViewBoxesScalars(t *testing.T) {
	vec, ok := IntegerValue(5).Object().(*IntVector)
	if !ok || len(vec.Elems) != 1 || vec.Elems[0] != 5 {
		t.Fatalf("expected IntVector{5}, got %#v", vec)
	}
	if Null.Object() != nil {
		t.Fatalf("expected NULL to view as nil object")
	}
	env := NewEnvironment(nil)
	if ObjectValue(env).Object() != env {
		t.Fatalf("expected object view to return the same object")
	}
}

func TestValueSentinels(t *testing.T) {
	if !MissingArgValue.IsMissingArg() || MissingArgValue.IsUnbound() {
		t.Fatalf("expected missing sentinel")
	}
	if MissingArg == UnboundValue {
		t.Fatalf("sentinels must be distinct")
	}
	if Intern("") == MissingArg {
		t.Fatalf("interned empty name must not alias the missing sentinel")
	}
	if !Dots.Is(DotsSymbol) || Intern("...") != DotsSymbol {
		t.Fatalf("expected `...` to intern to the dots symbol")
	}
	if !Intern("..2").IsDotDot() || Intern("..x").IsDotDot() {
		t.Fatalf("unexpected IsDotDot result")
	}
}

func TestValueSize(t *testing.T) {
	cases := []struct {
		v    Value
		want int
	}{
		{Null, 0},
		{RealValue(1), 1},
		{Str("a"), 1},
		{ObjectValue(&RealVector{Elems: []float64{1, 2, 3}}), 3},
		{ObjectValue(&ListVector{}), 0},
	}
	for _, tc := range cases {
		if got := tc.v.Size(); got != tc.want {
			t.Fatalf("expected size %d, got %d", tc.want, got)
		}
	}
}
