package interpreter

import (
	"math"
	"strings"
	"testing"

	"lazr/interpreter-go/pkg/ast"
	"lazr/interpreter-go/pkg/runtime"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name string
		val  runtime.Value
		want string
	}{
		{"integral real", runtime.RealValue(3), "[1] 3"},
		{"shared decimals", runtime.ObjectValue(&runtime.RealVector{Elems: []float64{1.5, 2}}), "[1] 1.5 2.0"},
		{"scientific", runtime.RealValue(1e5), "[1] 1e+05"},
		{"seven digits", runtime.RealValue(1.0 / 3), "[1] 0.3333333"},
		{"negative", runtime.RealValue(-2.25), "[1] -2.25"},
		{"specials", runtime.ObjectValue(&runtime.RealVector{Elems: []float64{math.Inf(1), math.Inf(-1), math.NaN()}}), "[1]  Inf -Inf  NaN"},
		{"real NA", runtime.ObjectValue(&runtime.RealVector{Elems: []float64{1, runtime.NAReal()}}), "[1]  1 NA"},
		{"logical", runtime.BoolValue(true), "[1] TRUE"},
		{"null", runtime.Null, "NULL"},
		{"escaped string", runtime.Str(`a"b`), `[1] "a\"b"`},
		{"integer NA", runtime.ObjectValue(&runtime.IntVector{Elems: []int32{1, runtime.NAInteger}}), "[1]  1 NA"},
		{"empty real", runtime.ObjectValue(&runtime.RealVector{}), "numeric(0)"},
		{"empty integer", runtime.ObjectValue(&runtime.IntVector{}), "integer(0)"},
		{"empty list", runtime.ObjectValue(&runtime.ListVector{}), "list()"},
		{"symbol", runtime.Sym("x"), "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatValue(tc.val); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFormatList(t *testing.T) {
	list := &runtime.ListVector{
		Elems: []runtime.Value{runtime.RealValue(1), runtime.Str("b")},
		Names: []*runtime.String{runtime.InternString("a"), runtime.InternString("")},
	}
	want := "$a\n[1] 1\n\n[[2]]\n[1] \"b\""
	if got := FormatValue(runtime.ObjectValue(list)); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatNestedList(t *testing.T) {
	inner := &runtime.ListVector{Elems: []runtime.Value{runtime.RealValue(2)}}
	outer := &runtime.ListVector{
		Elems: []runtime.Value{runtime.ObjectValue(inner)},
		Names: []*runtime.String{runtime.InternString("x")},
	}
	want := "$x\n$x[[1]]\n[1] 2"
	if got := FormatValue(runtime.ObjectValue(outer)); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatWrapsLongVectors(t *testing.T) {
	elems := make([]int32, 30)
	for idx := range elems {
		elems[idx] = int32(idx + 1)
	}
	lines := strings.Split(FormatValue(runtime.ObjectValue(&runtime.IntVector{Elems: elems})), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], " [1]  1  2") {
		t.Fatalf("unexpected first row %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[26] 26 27") {
		t.Fatalf("unexpected second row %q", lines[1])
	}
	if strings.HasSuffix(lines[1], " ") {
		t.Fatalf("row has trailing padding: %q", lines[1])
	}
}

func TestDeparse(t *testing.T) {
	x := ast.NewSymbol("x")
	cases := []struct {
		name string
		expr runtime.Value
		want string
	}{
		{"call", ast.NewNamedCall("f", ast.NewNumber(1), ast.NewInteger(2), ast.NewString("a")), `f(1, 2L, "a")`},
		{"tagged", ast.NewCall(ast.NewSymbol("f"), ast.NewNamedArg("a", ast.NewNumber(1)), ast.NewArg(x)), "f(a = 1, x)"},
		{"binary", ast.NewNamedCall("+", x, ast.NewNumber(1)), "x + 1"},
		{"unary", ast.NewNamedCall("-", x), "-x"},
		{"if", ast.NewNamedCall("if", x, ast.NewNumber(1), ast.NewNumber(2)), "if (x) 1 else 2"},
		{"function", ast.NewFunction(
			[]runtime.Formal{ast.NewFormal("x"), ast.NewDefaultFormal("y", ast.NewNumber(2))},
			ast.NewNamedCall("+", x, ast.NewSymbol("y")),
		), "function(x, y = 2) x + y"},
		{"block", ast.NewBlock(x, ast.NewNumber(1)), "{\n    x\n    1\n}"},
		{"backquoted", ast.NewNamedCall("my fn", x), "`my fn`(x)"},
		{"missing arg", ast.NewNamedCall("f", ast.NewMissing()), "f()"},
		{"na integer", ast.NewInteger(runtime.NAInteger), "NA_integer_"},
		{"dotted name", ast.NewNamedCall("length.default", ast.NewDots()), "length.default(...)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Deparse(tc.expr); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDeparseBuiltin(t *testing.T) {
	interp := New()
	val, err := interp.GlobalEnvironment().Get(runtime.Intern("c"))
	if err != nil {
		t.Fatalf("lookup c: %v", err)
	}
	if got := Deparse(val); got != `.Primitive("c")` {
		t.Fatalf("unexpected deparse %q", got)
	}
}
