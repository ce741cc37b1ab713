package runtime

import (
	"strings"
	"sync"
)

// Symbol is an interned name. Symbols are compared by identity.
type Symbol struct {
	name string
}

func (s *Symbol) Type() Type                    { return SymbolType }
func (s *Symbol) VisitReferents(visit Visitor) {}
func (s *Symbol) DetachReferents()              {}

func (s *Symbol) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// IsDotDot reports whether s names an element of `...` such as `..1`.
func (s *Symbol) IsDotDot() bool {
	if s == nil || !strings.HasPrefix(s.name, "..") || len(s.name) < 3 {
		return false
	}
	for _, r := range s.name[2:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var symbolTable = struct {
	sync.Mutex
	byName map[string]*Symbol
}{byName: make(map[string]*Symbol)}

// Intern returns the unique symbol called name.
func Intern(name string) *Symbol {
	symbolTable.Lock()
	defer symbolTable.Unlock()
	if sym, ok := symbolTable.byName[name]; ok {
		return sym
	}
	sym := &Symbol{name: name}
	symbolTable.byName[name] = sym
	return sym
}

var (
	// MissingArg marks an argument slot that was not supplied.
	MissingArg = &Symbol{}
	// UnboundValue is returned by lookups that find no binding.
	UnboundValue = &Symbol{}
	// DotsSymbol is the variadic placeholder `...`.
	DotsSymbol = Intern("...")
)

// Value forms of the sentinels.
var (
	MissingArgValue = ObjectValue(MissingArg)
	Unbound         = ObjectValue(UnboundValue)
	Dots            = ObjectValue(DotsSymbol)
)

// Sym is shorthand for ObjectValue(Intern(name)).
func Sym(name string) Value {
	return ObjectValue(Intern(name))
}

var stringTable = struct {
	sync.RWMutex
	byText map[string]*String
	byID   []*String
}{byText: make(map[string]*String)}

// InternString returns the unique *String holding text.
func InternString(text string) *String {
	stringTable.RLock()
	s, ok := stringTable.byText[text]
	stringTable.RUnlock()
	if ok {
		return s
	}
	stringTable.Lock()
	defer stringTable.Unlock()
	if s, ok := stringTable.byText[text]; ok {
		return s
	}
	s = &String{id: uint32(len(stringTable.byID)), text: text}
	stringTable.byID = append(stringTable.byID, s)
	stringTable.byText[text] = s
	return s
}

// stringHandle is the aligned address stored in a Pointer2 word.
func stringHandle(s *String) uintptr {
	return uintptr(s.id+1) << 3
}

func stringByHandle(handle uintptr) *String {
	if handle == 0 {
		return nil
	}
	idx := int(handle>>3) - 1
	stringTable.RLock()
	defer stringTable.RUnlock()
	if idx < 0 || idx >= len(stringTable.byID) {
		panic(invariantf("unknown string handle %#x", handle))
	}
	return stringTable.byID[idx]
}
