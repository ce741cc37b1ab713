package runtime

import (
	"fmt"
	"sort"
)

// Frame holds the bindings of one environment as compact heap slots.
type Frame struct {
	heap     *Heap
	bindings map[*Symbol]Managed
}

// NewFrame creates an empty frame whose slots live in heap.
func NewFrame(heap *Heap) *Frame {
	return newFrame(heap)
}

func newFrame(heap *Heap) *Frame {
	return &Frame{heap: heap, bindings: make(map[*Symbol]Managed)}
}

// Heap returns the heap owning the frame's slots.
func (f *Frame) Heap() *Heap {
	return f.heap
}

func (f *Frame) Len() int {
	return len(f.bindings)
}

// Bind inserts or overwrites a binding.
func (f *Frame) Bind(sym *Symbol, value Value) {
	f.bindings[sym] = f.heap.Manage(value)
}

// Binding returns the value bound to sym in this frame only.
func (f *Frame) Binding(sym *Symbol) (Value, bool) {
	slot, ok := f.bindings[sym]
	if !ok {
		return Unbound, false
	}
	return slot.Value(), true
}

// Symbols returns the bound symbols sorted by name.
func (f *Frame) Symbols() []*Symbol {
	syms := make([]*Symbol, 0, len(f.bindings))
	for sym := range f.bindings {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].name < syms[j].name })
	return syms
}

// ImportInto copies every binding of f into dst, skipping symbols dst already
// binds.
func (f *Frame) ImportInto(dst *Frame) {
	for _, sym := range f.Symbols() {
		if _, exists := dst.bindings[sym]; exists {
			continue
		}
		dst.bindings[sym] = dst.heap.Manage(f.bindings[sym].Value())
	}
}

func (f *Frame) visitReferents(visit Visitor) {
	for _, slot := range f.bindings {
		slot.VisitReferents(visit)
	}
}

// Environment provides lexical scoping for interpreter values.
type Environment struct {
	frame  *Frame
	parent *Environment
	leaked bool
}

// NewEnvironment creates a new environment nested under parent. The frame
// shares the parent's heap; a root environment gets a private heap.
func NewEnvironment(parent *Environment) *Environment {
	var heap *Heap
	if parent != nil {
		heap = parent.frame.heap
	} else {
		heap = NewHeap()
	}
	return &Environment{frame: newFrame(heap), parent: parent}
}

// NewGlobalEnvironment creates a root environment whose frame lives in heap.
// The environment is registered as a permanent heap root.
func NewGlobalEnvironment(heap *Heap) *Environment {
	env := &Environment{frame: newFrame(heap)}
	heap.AddRoot(env)
	return env
}

func (e *Environment) Type() Type { return EnvironmentType }

func (e *Environment) VisitReferents(visit Visitor) {
	if e.frame != nil {
		e.frame.visitReferents(visit)
	}
	if e.parent != nil {
		visit(e.parent)
	}
}

func (e *Environment) DetachReferents() {
	if e.frame != nil {
		for sym, slot := range e.frame.bindings {
			slot.DetachReferents()
			e.frame.bindings[sym] = slot
		}
	}
	e.parent = nil
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

func (e *Environment) Frame() *Frame {
	return e.frame
}

func (e *Environment) Heap() *Heap {
	return e.frame.heap
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(sym *Symbol, value Value) {
	e.frame.Bind(sym, value)
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(sym *Symbol, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.frame.bindings[sym]; ok {
			env.frame.Bind(sym, value)
			return nil
		}
	}
	return Errorf(ErrEvaluation, "object '%s' not found", sym.Name())
}

// Lookup searches outward through the scope chain. It returns Unbound and a
// nil environment when no scope binds sym.
func (e *Environment) Lookup(sym *Symbol) (Value, *Environment) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.frame.Binding(sym); ok {
			return v, env
		}
	}
	return Unbound, nil
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(sym *Symbol) (Value, error) {
	if v, env := e.Lookup(sym); env != nil {
		return v, nil
	}
	return Null, Errorf(ErrEvaluation, "object '%s' not found", sym.Name())
}

// Keys returns the bound names in sorted order.
func (e *Environment) Keys() []string {
	syms := e.frame.Symbols()
	keys := make([]string, len(syms))
	for i, sym := range syms {
		keys[i] = sym.name
	}
	return keys
}

// Extend creates a new child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// MarkLeaked records that a value escaping a call still references e.
func (e *Environment) MarkLeaked() {
	e.leaked = true
}

func (e *Environment) Leaked() bool {
	return e.leaked
}

func (e *Environment) String() string {
	return fmt.Sprintf("<environment: %p>", e)
}
