package runtime

import "math"

// Value is the boxed interpreter value: a scalar held inline or a reference
// to a heap Object. Bits 60-63 of bits select the representation:
//
//	000x  heap object in obj (all-zero bits is the real 0.0)
//	0110  logical in the low 32 bits
//	0111  integer in the low 32 bits
//	100x  interned string in obj
//	1110  NULL
//	else  real, native format
//
// Reals whose bit pattern falls in one of the reserved rows are stored as a
// length-one RealVector instead. The zero Value is the real 0.0.
type Value struct {
	bits uint64
	obj  Object
}

// ValueKind is the representation currently held by a Value.
type ValueKind uint8

const (
	KindObject ValueKind = iota
	KindLogical
	KindInteger
	KindReal
	KindString
	KindNull
)

func (k ValueKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindLogical:
		return "logical"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

const (
	flagObject  uint64 = 0x0
	flagLogical uint64 = 0x6
	flagInteger uint64 = 0x7
	flagString  uint64 = 0x8
	flagNull    uint64 = 0xe

	objectBits uint64 = 1 << 3
	nullBits   uint64 = flagNull<<60 | 0x7
)

var valueKinds = [16]ValueKind{
	KindObject, KindObject, KindReal, KindReal,
	KindReal, KindReal, KindLogical, KindInteger,
	KindString, KindString, KindReal, KindReal,
	KindReal, KindReal, KindNull, KindReal,
}

// Null is the NULL value.
var Null = Value{bits: nullBits}

// Kind reports the representation held by v.
func (v Value) Kind() ValueKind {
	if v.bits == 0 {
		return KindReal
	}
	return valueKinds[v.bits>>60]
}

func LogicalValue(l Logical) Value {
	return Value{bits: flagLogical<<60 | uint64(uint32(l))}
}

func BoolValue(b bool) Value {
	return LogicalValue(LogicalOf(b))
}

func IntegerValue(i int32) Value {
	return Value{bits: flagInteger<<60 | uint64(uint32(i))}
}

// RealValue stores d inline when its bit pattern allows, otherwise it boxes d
// into a one-element RealVector.
func RealValue(d float64) Value {
	bits := math.Float64bits(d)
	if bits != 0 && valueKinds[bits>>60] != KindReal {
		return Value{bits: objectBits, obj: &RealVector{Elems: []float64{d}}}
	}
	return Value{bits: bits}
}

// StringValue wraps an interned string. A nil s yields NULL.
func StringValue(s *String) Value {
	if s == nil {
		return Null
	}
	return Value{bits: flagString << 60, obj: s}
}

// Str interns text and wraps it.
func Str(text string) Value {
	return StringValue(InternString(text))
}

// ObjectValue wraps a heap object. A nil obj yields NULL. Interned strings
// are stored in their compact form.
func ObjectValue(obj Object) Value {
	switch o := obj.(type) {
	case nil:
		return Null
	case *String:
		return StringValue(o)
	}
	return Value{bits: objectBits, obj: obj}
}

func (v Value) IsNull() bool    { return v.Kind() == KindNull }
func (v Value) IsLogical() bool { return v.Kind() == KindLogical }
func (v Value) IsInteger() bool { return v.Kind() == KindInteger }
func (v Value) IsReal() bool    { return v.Kind() == KindReal }
func (v Value) IsString() bool  { return v.Kind() == KindString }
func (v Value) IsObject() bool  { return v.Kind() == KindObject && v.obj != nil }

// Logical returns the inline logical, if any.
func (v Value) Logical() (Logical, bool) {
	if !v.IsLogical() {
		return 0, false
	}
	return Logical(int32(uint32(v.bits))), true
}

// Integer returns the inline integer, if any.
func (v Value) Integer() (int32, bool) {
	if !v.IsInteger() {
		return 0, false
	}
	return int32(uint32(v.bits)), true
}

// Real returns the inline real, if any. Boxed reals are not reported.
func (v Value) Real() (float64, bool) {
	if !v.IsReal() {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// Str returns the inline string, if any.
func (v Value) Str() (*String, bool) {
	if !v.IsString() {
		return nil, false
	}
	s, _ := v.obj.(*String)
	return s, s != nil
}

// RawObject returns the referenced heap object without boxing scalars.
func (v Value) RawObject() (Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	return v.obj, true
}

// Object views v as a heap object. Inline scalars are boxed into a fresh
// vector of length one; NULL yields nil.
func (v Value) Object() Object {
	switch v.Kind() {
	case KindObject:
		return v.obj
	case KindNull:
		return nil
	case KindLogical:
		l, _ := v.Logical()
		return &LogicalVector{Elems: []Logical{l}}
	case KindInteger:
		i, _ := v.Integer()
		return &IntVector{Elems: []int32{i}}
	case KindReal:
		d, _ := v.Real()
		return &RealVector{Elems: []float64{d}}
	case KindString:
		s, _ := v.Str()
		return &StringVector{Elems: []*String{s}}
	}
	return nil
}

// Type reports the object type v would have when boxed.
func (v Value) Type() Type {
	switch v.Kind() {
	case KindObject:
		return v.obj.Type()
	case KindLogical:
		return LogicalType
	case KindInteger:
		return IntegerType
	case KindReal:
		return RealType
	case KindString:
		return StringType
	default:
		return NilType
	}
}

// Symbol returns the referenced symbol, if v holds one.
func (v Value) Symbol() (*Symbol, bool) {
	sym, ok := v.obj.(*Symbol)
	return sym, ok && v.IsObject()
}

// Is reports whether v references exactly obj.
func (v Value) Is(obj Object) bool {
	return v.IsObject() && v.obj == obj
}

func (v Value) IsMissingArg() bool { return v.Is(MissingArg) }
func (v Value) IsUnbound() bool    { return v.Is(UnboundValue) }

// Identical compares representations: inline scalars by bits, objects and
// strings by identity.
func Identical(a, b Value) bool {
	return a.bits == b.bits && a.obj == b.obj
}

// Size reports the number of elements v holds when viewed as a vector.
func (v Value) Size() int {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindObject:
		return Length(v.obj)
	default:
		return 1
	}
}

// Referent returns the heap node v references, if any.
func (v Value) Referent() (Node, bool) {
	if v.IsObject() || v.IsString() {
		return v.obj, true
	}
	return nil, false
}

// VisitReferents reports the heap node v references, if any.
func (v Value) VisitReferents(visit Visitor) {
	if n, ok := v.Referent(); ok {
		visit(n)
	}
}

// DetachReferents drops v's reference, leaving NULL.
func (v *Value) DetachReferents() {
	*v = Null
}
