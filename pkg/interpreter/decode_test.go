package interpreter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lazr/interpreter-go/pkg/runtime"
)

func decodeSingle(t *testing.T, src string) runtime.Value {
	t.Helper()
	prog, err := DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("decode %q: %v", src, err)
	}
	if len(prog.Exprs) != 1 {
		t.Fatalf("expected one expression, got %d", len(prog.Exprs))
	}
	return prog.Exprs[0]
}

func TestDecodeScalars(t *testing.T) {
	cases := []struct {
		src  string
		kind runtime.ValueKind
		want string
	}{
		{"- 1", runtime.KindReal, "1"},
		{"- -2.5", runtime.KindReal, "-2.5"},
		{"- 3L", runtime.KindInteger, "3L"},
		{"- TRUE", runtime.KindLogical, "TRUE"},
		{"- false", runtime.KindLogical, "FALSE"},
		{"- NA", runtime.KindLogical, "NA"},
		{"- NA_integer_", runtime.KindInteger, "NA_integer_"},
		{"- NULL", runtime.KindNull, "NULL"},
		{"- ~", runtime.KindNull, "NULL"},
		{`- "text"`, runtime.KindString, `"text"`},
		{"- 'single'", runtime.KindString, `"single"`},
		{"- !str 12", runtime.KindString, `"12"`},
		{"- abc", runtime.KindObject, "abc"},
		{"- !sym TRUE", runtime.KindObject, "TRUE"},
		{"- [...]", runtime.KindObject, "...()"},
	}
	for _, tc := range cases {
		val := decodeSingle(t, tc.src)
		if val.Kind() != tc.kind {
			t.Fatalf("%s: expected kind %s, got %s", tc.src, tc.kind, val.Kind())
		}
		if got := Deparse(val); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestDecodeSpecialReals(t *testing.T) {
	for src, check := range map[string]func(float64) bool{
		"- Inf":      func(d float64) bool { return math.IsInf(d, 1) },
		"- -Inf":     func(d float64) bool { return math.IsInf(d, -1) },
		"- NaN":      func(d float64) bool { return math.IsNaN(d) && !runtime.IsNAReal(d) },
		"- NA_real_": runtime.IsNAReal,
	} {
		val := decodeSingle(t, src)
		if d := runtime.AsScalarReal(val); !check(d) {
			t.Fatalf("%s: unexpected value %s", src, Deparse(val))
		}
	}
}

func TestDecodeCalls(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"- [f, 1, x]", "f(1, x)"},
		{"- [f, {a: 1, b: \"s\"}, 2]", `f(a = 1, b = "s", 2)`},
		{"- [f, !missing \"\", 2]", "f(, 2)"},
		{"- [[g, 1], 2]", "g(1)(2)"},
		{"- [\"+\", x, [\"*\", y, 2]]", "x + y * 2"},
		{"- [function, [x, {y: 2}], x]", "function(x, y = 2) x"},
		{"- [function, {n: 1}, n]", "function(n = 1) n"},
		{"- [function, ~, 1]", "function() 1"},
		{"- [function, [...], [c, ...]]", "function(...) c(...)"},
	}
	for _, tc := range cases {
		if got := Deparse(decodeSingle(t, tc.src)); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestDecodeRecordsOrigins(t *testing.T) {
	src := "- [f, 1]\n- [g,\n   [h, 2]]\n"
	prog, err := DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(prog.Origins) != 3 {
		t.Fatalf("expected three recorded calls, got %d", len(prog.Origins))
	}
	lines := map[string]int{}
	for call, loc := range prog.Origins {
		lines[Deparse(runtime.ObjectValue(call))] = loc.Line
	}
	if lines["f(1)"] != 1 || lines["g(h(2))"] != 2 || lines["h(2)"] != 3 {
		t.Fatalf("unexpected origins %v", lines)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"not a sequence", "a: 1", "program must be a sequence of expressions"},
		{"bare mapping", "- {a: 1}", "a mapping is only valid as call arguments"},
		{"empty call", "- []", "empty call"},
		{"function shape", "- [function, [x]]", "function expects formals and a body"},
		{"repeated formal", "- [function, [x, x], 1]", "repeated formal argument 'x'"},
		{"bad formals", "- [function, 1, 1]", "invalid formal argument list"},
		{"yaml syntax", "- [f, 1", "program: parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeProgram([]byte(tc.src))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDecodeErrorsCarryLocation(t *testing.T) {
	_, err := DecodeProgram([]byte("- 1\n- {a: 1}\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected location in error, got %v", err)
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	prog, err := DecodeProgram(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(prog.Exprs) != 0 {
		t.Fatalf("expected no expressions, got %d", len(prog.Exprs))
	}
}

func TestDecodeProgramFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.yml")
	if err := os.WriteFile(path, []byte("- [f]\n"), 0o644); err != nil {
		t.Fatalf("write program: %v", err)
	}
	prog, err := DecodeProgramFile(path)
	if err != nil {
		t.Fatalf("decode file: %v", err)
	}
	if prog.Path != path {
		t.Fatalf("expected path %q, got %q", path, prog.Path)
	}
	for _, loc := range prog.Origins {
		if loc.Path != path || loc.Line != 1 {
			t.Fatalf("unexpected origin %+v", loc)
		}
	}
	if _, err := DecodeProgramFile(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
