package runtime

import "fmt"

// Type enumerates the kinds of heap object the interpreter manipulates.
type Type uint8

const (
	NilType Type = iota
	SymbolType
	FormalsType
	ClosureType
	EnvironmentType
	PromiseType
	LanguageType
	SpecialType
	BuiltinType
	CharType
	LogicalType
	IntegerType
	RealType
	StringType
	DotsType
	ListType
)

// String returns the name reported by typeof().
func (t Type) String() string {
	switch t {
	case NilType:
		return "NULL"
	case SymbolType:
		return "symbol"
	case FormalsType:
		return "pairlist"
	case ClosureType:
		return "closure"
	case EnvironmentType:
		return "environment"
	case PromiseType:
		return "promise"
	case LanguageType:
		return "language"
	case SpecialType:
		return "special"
	case BuiltinType:
		return "builtin"
	case CharType:
		return "char"
	case LogicalType:
		return "logical"
	case IntegerType:
		return "integer"
	case RealType:
		return "double"
	case StringType:
		return "character"
	case DotsType:
		return "..."
	case ListType:
		return "list"
	default:
		return fmt.Sprintf("type_%d", int(t))
	}
}

// Visitor is invoked once per referent during a collection walk.
type Visitor func(Node)

// Node is anything the Heap can trace.
type Node interface {
	VisitReferents(visit Visitor)
	DetachReferents()
}

// Object is a heap-allocated interpreter value.
type Object interface {
	Node
	Type() Type
}

// Logical is a three-valued truth value.
type Logical int32

const (
	LogicalFalse Logical = 0
	LogicalTrue  Logical = 1
	LogicalNA    Logical = -1 << 31
)

// NAInteger marks a missing integer.
const NAInteger int32 = -1 << 31

func LogicalOf(b bool) Logical {
	if b {
		return LogicalTrue
	}
	return LogicalFalse
}

// String is an interned character string. Equal texts share one *String.
type String struct {
	id   uint32
	text string
}

func (s *String) Type() Type                    { return CharType }
func (s *String) VisitReferents(visit Visitor) {}
func (s *String) DetachReferents()              {}

func (s *String) Text() string {
	if s == nil {
		return ""
	}
	return s.text
}

// LogicalVector, IntVector, RealVector, StringVector and ListVector are the
// plain vector types. A boxed scalar viewed as an Object becomes a vector of
// length one.
type LogicalVector struct{ Elems []Logical }

func (v *LogicalVector) Type() Type                    { return LogicalType }
func (v *LogicalVector) VisitReferents(visit Visitor) {}
func (v *LogicalVector) DetachReferents()              {}

type IntVector struct{ Elems []int32 }

func (v *IntVector) Type() Type                    { return IntegerType }
func (v *IntVector) VisitReferents(visit Visitor) {}
func (v *IntVector) DetachReferents()              {}

type RealVector struct{ Elems []float64 }

func (v *RealVector) Type() Type                    { return RealType }
func (v *RealVector) VisitReferents(visit Visitor) {}
func (v *RealVector) DetachReferents()              {}

type StringVector struct{ Elems []*String }

func (v *StringVector) Type() Type                    { return StringType }
func (v *StringVector) VisitReferents(visit Visitor) {}
func (v *StringVector) DetachReferents()              {}

// ListVector holds arbitrary values. Names is either nil or parallel to Elems.
type ListVector struct {
	Elems []Value
	Names []*String
}

func (v *ListVector) Type() Type { return ListType }

func (v *ListVector) VisitReferents(visit Visitor) {
	for _, elem := range v.Elems {
		visitValue(elem, visit)
	}
}

func (v *ListVector) DetachReferents() {
	v.Elems = nil
	v.Names = nil
}

// DotArg is one element captured by `...`.
type DotArg struct {
	Tag   *Symbol
	Value Value
}

// DotArgs is the value bound to `...` inside a closure activation.
type DotArgs struct {
	Args []DotArg
}

func (d *DotArgs) Type() Type { return DotsType }

func (d *DotArgs) VisitReferents(visit Visitor) {
	for _, arg := range d.Args {
		visitValue(arg.Value, visit)
	}
}

func (d *DotArgs) DetachReferents() {
	d.Args = nil
}

// Length reports the number of elements held by a vector-like object.
func Length(obj Object) int {
	switch o := obj.(type) {
	case nil:
		return 0
	case *LogicalVector:
		return len(o.Elems)
	case *IntVector:
		return len(o.Elems)
	case *RealVector:
		return len(o.Elems)
	case *StringVector:
		return len(o.Elems)
	case *ListVector:
		return len(o.Elems)
	case *DotArgs:
		return len(o.Args)
	case *Call:
		return len(o.args) + 1
	case *FormalList:
		return len(o.Formals)
	default:
		return 1
	}
}

func visitValue(v Value, visit Visitor) {
	v.VisitReferents(visit)
}
