package interpreter

import (
	"fmt"
	"io"
	"os"

	"lazr/interpreter-go/pkg/driver"
	"lazr/interpreter-go/pkg/runtime"
)

// Interpreter evaluates Lazr expressions against a global environment.
type Interpreter struct {
	heap   *runtime.Heap
	base   *runtime.Environment
	global *runtime.Environment
	config driver.Config

	stdout   io.Writer
	warnOut  io.Writer
	warnings []string
	echo     bool

	depth   int
	frames  []*callFrame
	visible bool

	topLevelEvals int
	stats         Stats
	origins       map[*runtime.Call]driver.DiagnosticLocation
}

// Stats counts evaluator events that tests and the CLI report on.
type Stats struct {
	MatchCacheHits   int
	MatchCacheMisses int
	FastPathCalls    int
	Collections      int
}

// Options configure a new interpreter. Nil writers default to os.Stdout and
// the writer chosen by Config.Warnings. With Echo set, RunProgram prints every
// visible top-level result to Stdout.
type Options struct {
	Config   driver.Config
	Stdout   io.Writer
	Warnings io.Writer
	Echo     bool
}

// New returns an interpreter with the default configuration.
func New() *Interpreter {
	return NewWithOptions(Options{Config: driver.DefaultConfig()})
}

// NewWithOptions returns an interpreter configured by opts.
func NewWithOptions(opts Options) *Interpreter {
	cfg := opts.Config
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = driver.DefaultMaxDepth
	}
	if cfg.Warnings == "" {
		cfg.Warnings = driver.WarningsStderr
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	warnOut := opts.Warnings
	if warnOut == nil {
		warnOut = cfg.WarningWriter(os.Stderr)
	}

	heap := runtime.NewHeap()
	base := runtime.NewGlobalEnvironment(heap)
	i := &Interpreter{
		heap:    heap,
		base:    base,
		global:  runtime.NewEnvironment(base),
		config:  cfg,
		stdout:  stdout,
		warnOut: warnOut,
		echo:    opts.Echo,
		visible: true,
	}
	heap.AddRoot(i.global)
	i.installBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// BaseEnvironment returns the environment holding the builtins.
func (i *Interpreter) BaseEnvironment() *runtime.Environment {
	return i.base
}

func (i *Interpreter) Heap() *runtime.Heap {
	return i.heap
}

func (i *Interpreter) Config() driver.Config {
	return i.config
}

func (i *Interpreter) Stats() Stats {
	return i.stats
}

// Visible reports whether the last top-level result should be printed.
func (i *Interpreter) Visible() bool {
	return i.visible
}

// Warn records a runtime warning and echoes it to the warning writer.
func (i *Interpreter) Warn(message string) {
	i.warnings = append(i.warnings, message)
	fmt.Fprintf(i.warnOut, "warning: %s\n", message)
}

// Warnings returns the warnings raised so far.
func (i *Interpreter) Warnings() []string {
	return append([]string(nil), i.warnings...)
}

// EvalTopLevel evaluates expr in the global environment. The call stack is
// reset afterwards so that a failed evaluation, including one that ran out
// of stack depth, leaves the interpreter usable.
func (i *Interpreter) EvalTopLevel(expr runtime.Value) (runtime.Value, error) {
	i.depth = 0
	i.frames = i.frames[:0]
	defer func() {
		i.depth = 0
		i.frames = i.frames[:0]
	}()
	i.topLevelEvals++
	val, err := i.Eval(expr, i.global)
	if err != nil {
		if _, ok := err.(returnSignal); ok {
			return runtime.Null, runtime.Errorf(runtime.ErrEvaluation, "no function to return from, jumping to top level")
		}
		return runtime.Null, err
	}
	return val, nil
}

// RunProgram evaluates exprs in order and returns the last value. Between
// top-level expressions the heap is collected when a collection was
// requested or the configured interval has elapsed.
func (i *Interpreter) RunProgram(exprs []runtime.Value) (runtime.Value, error) {
	var roots []runtime.Node
	for _, expr := range exprs {
		if n, ok := expr.Referent(); ok {
			roots = append(roots, n)
		}
	}
	mark := i.heap.Protect(roots...)
	defer i.heap.Unprotect(mark)

	last := runtime.Null
	for idx, expr := range exprs {
		if idx > 0 {
			i.maybeCollect(last)
		}
		val, err := i.EvalTopLevel(expr)
		if err != nil {
			return runtime.Null, err
		}
		if i.echo && i.visible {
			fmt.Fprintln(i.stdout, FormatValue(val))
		}
		last = val
	}
	return last, nil
}

// Execute runs a decoded program. Source positions of its calls are kept
// for diagnostics.
func (i *Interpreter) Execute(prog *Program) (runtime.Value, error) {
	if i.origins == nil {
		i.origins = make(map[*runtime.Call]driver.DiagnosticLocation, len(prog.Origins))
	}
	for call, loc := range prog.Origins {
		i.origins[call] = loc
	}
	return i.RunProgram(prog.Exprs)
}

// Collect runs a heap collection keeping keep alive, and returns the number
// of nodes swept.
func (i *Interpreter) Collect(keep runtime.Value) int {
	mark := i.heap.Protect()
	if n, ok := keep.Referent(); ok {
		i.heap.Protect(n)
	}
	swept := i.heap.Collect()
	i.heap.Unprotect(mark)
	i.stats.Collections++
	return swept
}

func (i *Interpreter) maybeCollect(last runtime.Value) {
	due := i.config.GCInterval > 0 && i.topLevelEvals%i.config.GCInterval == 0
	if !due && !i.heap.CollectionPending() {
		return
	}
	i.Collect(last)
}
