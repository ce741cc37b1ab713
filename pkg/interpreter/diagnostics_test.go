package interpreter

import (
	"strings"
	"testing"

	"lazr/interpreter-go/pkg/driver"
)

func diagnoseSource(t *testing.T, src string) Diagnostic {
	t.Helper()
	interp, _ := newTestInterpreter(t, driver.DefaultConfig())
	_, err := runSource(t, interp, src)
	if err == nil {
		t.Fatalf("expected evaluation error")
	}
	return interp.BuildDiagnostic(err)
}

func TestDiagnosticAttributesClosureCall(t *testing.T) {
	diag := diagnoseSource(t, `
- ["<-", inner, [function, [], [stop, "bad"]]]
- ["<-", outer, [function, [], [inner]]]
- [outer]
`)
	if diag.Severity != driver.SeverityError || diag.Message != "bad" {
		t.Fatalf("unexpected diagnostic %+v", diag)
	}
	if got := Deparse(diag.Call); got != "inner()" {
		t.Fatalf("expected error attributed to inner(), got %q", got)
	}
	if diag.Location.Line != 2 {
		t.Fatalf("expected location on line 2, got %+v", diag.Location)
	}
	if len(diag.Notes) != 1 || diag.Notes[0].Message != "called from outer()" || diag.Notes[0].Location.Line != 3 {
		t.Fatalf("unexpected notes %+v", diag.Notes)
	}

	text := DescribeDiagnostic(diag)
	if !strings.HasPrefix(text, "error: line 2, column ") || !strings.Contains(text, "in inner(): bad") {
		t.Fatalf("unexpected description %q", text)
	}
	if !strings.Contains(text, "\nnote: line 3, column 3 called from outer()") {
		t.Fatalf("missing note in %q", text)
	}
}

func TestDiagnosticFallsBackToFailingCall(t *testing.T) {
	diag := diagnoseSource(t, `- [stop, "top"]`)
	if got := Deparse(diag.Call); got != `stop("top")` {
		t.Fatalf("expected the failing call, got %q", got)
	}
	if len(diag.Notes) != 0 {
		t.Fatalf("expected no notes at top level, got %+v", diag.Notes)
	}
	if got := DescribeDiagnostic(diag); got != `error: line 1, column 3: in stop("top"): top` {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestDiagnosticSkipsRepeatedCallSites(t *testing.T) {
	diag := diagnoseSource(t, `
- ["<-", f, [function, [n], [if, ["==", n, 0], [stop, "done"], [f, ["-", n, 1]]]]]
- [f, 3]
`)
	if got := Deparse(diag.Call); got != "f(n - 1)" {
		t.Fatalf("unexpected call %q", got)
	}
	if len(diag.Notes) != 1 || diag.Notes[0].Message != "called from f(3)" {
		t.Fatalf("unexpected notes %+v", diag.Notes)
	}
}

func TestDiagnosticTruncatesMultiLineCalls(t *testing.T) {
	diag := diagnoseSource(t, `
- [[function, [], ["{", [stop, "boom"]]]]
`)
	text := DescribeDiagnostic(diag)
	if !strings.Contains(text, "in function() { ...: boom") {
		t.Fatalf("unexpected description %q", text)
	}
}

func TestDescribeWarning(t *testing.T) {
	if got := DescribeDiagnostic(WarningDiagnostic(" careful ")); got != "warning: careful" {
		t.Fatalf("unexpected warning description %q", got)
	}
}
