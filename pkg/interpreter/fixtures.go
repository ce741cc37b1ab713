package interpreter

import (
	"bytes"
	"fmt"
	"strings"

	"lazr/interpreter-go/pkg/driver"
	"lazr/interpreter-go/pkg/runtime"
)

// FixtureOutcome is what running a fixture program produced.
type FixtureOutcome struct {
	Fixture  *driver.Fixture
	Result   runtime.Value
	Stdout   string
	Warnings []string
	Err      error
	Stats    Stats
}

// RunFixture loads the fixture in dir and runs its program in a fresh
// interpreter. The returned error covers loading and decoding only;
// evaluation errors are part of the outcome.
func RunFixture(dir string) (*FixtureOutcome, error) {
	fx, err := driver.LoadFixture(dir)
	if err != nil {
		return nil, err
	}
	prog, err := DecodeExpressions(fx.Program, fx.Path)
	if err != nil {
		return nil, err
	}
	var stdout bytes.Buffer
	interp := NewWithOptions(Options{Config: fx.Config, Stdout: &stdout})
	result, runErr := interp.Execute(prog)
	outcome := &FixtureOutcome{
		Fixture:  fx,
		Result:   result,
		Stdout:   stdout.String(),
		Warnings: interp.Warnings(),
		Stats:    interp.Stats(),
	}
	if runErr != nil {
		outcome.Err = fmt.Errorf("%s", DescribeDiagnostic(interp.BuildDiagnostic(runErr)))
	}
	return outcome, nil
}

// Mismatches compares the outcome against the fixture's expectations and
// describes every difference.
func (o *FixtureOutcome) Mismatches() []string {
	expect := o.Fixture.Expect
	var out []string
	if expect.Error != "" {
		if o.Err == nil {
			out = append(out, fmt.Sprintf("expected error containing %q, got result %s", expect.Error, FormatValue(o.Result)))
		} else if !strings.Contains(o.Err.Error(), expect.Error) {
			out = append(out, fmt.Sprintf("expected error containing %q, got %q", expect.Error, o.Err.Error()))
		}
	} else if o.Err != nil {
		out = append(out, fmt.Sprintf("unexpected error: %s", o.Err.Error()))
	}
	if expect.Result != nil && o.Err == nil {
		if got := FormatValue(o.Result); got != *expect.Result {
			out = append(out, fmt.Sprintf("expected result %q, got %q", *expect.Result, got))
		}
	}
	if expect.Stdout != nil {
		got := outputLines(o.Stdout)
		if !equalStrings(got, expect.Stdout) {
			out = append(out, fmt.Sprintf("expected stdout %q, got %q", expect.Stdout, got))
		}
	}
	if expect.Warnings != nil && !equalStrings(o.Warnings, expect.Warnings) {
		out = append(out, fmt.Sprintf("expected warnings %q, got %q", expect.Warnings, o.Warnings))
	}
	return out
}

func outputLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
