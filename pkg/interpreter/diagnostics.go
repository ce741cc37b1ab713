package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"lazr/interpreter-go/pkg/driver"
	"lazr/interpreter-go/pkg/runtime"
)

// maxDiagnosticNotes caps the enclosing calls listed under a diagnostic.
const maxDiagnosticNotes = 8

type diagnosticContext struct {
	call      *runtime.Call
	callStack []*runtime.Call
}

// diagnosticError attaches the call being evaluated, and the closure calls
// enclosing it, to an error on its way up the stack.
type diagnosticError struct {
	err     error
	context *diagnosticContext
}

func (e diagnosticError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e diagnosticError) Unwrap() error {
	return e.err
}

// DiagnosticNote points at one enclosing call.
type DiagnosticNote struct {
	Message  string
	Call     runtime.Value
	Location driver.DiagnosticLocation
}

// Diagnostic is the structured form of an evaluation error or warning.
type Diagnostic struct {
	Severity driver.DiagnosticSeverity
	Message  string
	Call     runtime.Value
	Location driver.DiagnosticLocation
	Notes    []DiagnosticNote
}

// attachContext records call and the current call stack on err unless an
// inner evaluation already did. Control signals pass through untouched.
func (i *Interpreter) attachContext(err error, call *runtime.Call) error {
	if err == nil || call == nil {
		return err
	}
	if _, ok := err.(returnSignal); ok {
		return err
	}
	if contextFromError(err) != nil {
		return err
	}
	return diagnosticError{
		err: err,
		context: &diagnosticContext{
			call:      call,
			callStack: i.snapshotCallStack(),
		},
	}
}

func contextFromError(err error) *diagnosticContext {
	var diagErr diagnosticError
	if errors.As(err, &diagErr) {
		return diagErr.context
	}
	return nil
}

// BuildDiagnostic converts an evaluation error into a Diagnostic. The
// attributed call is the one carried by the language error, falling back to
// the innermost call being evaluated.
func (i *Interpreter) BuildDiagnostic(err error) Diagnostic {
	diag := Diagnostic{
		Severity: driver.SeverityError,
		Message:  err.Error(),
		Call:     runtime.Null,
	}
	if le, ok := runtime.AsLangError(err); ok {
		diag.Message = le.Message
		diag.Call = le.Call
	}
	ctx := contextFromError(err)
	if ctx != nil && diag.Call.IsNull() {
		diag.Call = runtime.ObjectValue(ctx.call)
	}
	diag.Location = i.locationOf(diag.Call)
	if ctx == nil {
		return diag
	}
	for idx := len(ctx.callStack) - 1; idx >= 0 && len(diag.Notes) < maxDiagnosticNotes; idx-- {
		frameCall := runtime.ObjectValue(ctx.callStack[idx])
		if runtime.Identical(frameCall, diag.Call) {
			continue
		}
		diag.Notes = append(diag.Notes, DiagnosticNote{
			Message:  "called from " + Deparse(frameCall),
			Call:     frameCall,
			Location: i.locationOf(frameCall),
		})
	}
	return diag
}

// WarningDiagnostic wraps a recorded warning message.
func WarningDiagnostic(message string) Diagnostic {
	return Diagnostic{Severity: driver.SeverityWarning, Message: message, Call: runtime.Null}
}

// DescribeDiagnostic formats a diagnostic for CLI output.
func DescribeDiagnostic(diag Diagnostic) string {
	prefix := "error: "
	if diag.Severity == driver.SeverityWarning {
		prefix = "warning: "
	}
	var b strings.Builder
	b.WriteString(prefix)
	if loc := driver.FormatDiagnosticLocation(diag.Location); loc != "" {
		fmt.Fprintf(&b, "%s: ", loc)
	}
	if !diag.Call.IsNull() {
		fmt.Fprintf(&b, "in %s: ", firstLine(Deparse(diag.Call)))
	}
	b.WriteString(strings.TrimSpace(diag.Message))
	for _, note := range diag.Notes {
		if loc := driver.FormatDiagnosticLocation(note.Location); loc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", loc, firstLine(note.Message))
		} else {
			fmt.Fprintf(&b, "\nnote: %s", firstLine(note.Message))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if line, _, found := strings.Cut(s, "\n"); found {
		return line + " ..."
	}
	return s
}

func (i *Interpreter) locationOf(call runtime.Value) driver.DiagnosticLocation {
	obj, ok := call.RawObject()
	if !ok || i.origins == nil {
		return driver.DiagnosticLocation{}
	}
	c, ok := obj.(*runtime.Call)
	if !ok {
		return driver.DiagnosticLocation{}
	}
	return i.origins[c]
}
