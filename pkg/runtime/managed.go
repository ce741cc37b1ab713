package runtime

import "runtime"

// Integer sub-tags used by Managed slots.
const (
	managedIntegerTag uint16 = 0
	managedLogicalTag uint16 = 1
)

// Managed is a compact value slot owned by a Heap. Storable reals, integers,
// logicals, interned strings and NULL are held inline in the Word; any other
// value is registered with the heap and held by handle.
type Managed struct {
	heap *Heap
	word Word
}

// Manage encodes v into a slot owned by h.
func (h *Heap) Manage(v Value) Managed {
	m := Managed{heap: h}
	switch v.Kind() {
	case KindNull:
		m.word = Pointer1Word(0, false)
	case KindLogical:
		l, _ := v.Logical()
		m.word = IntegerWord(managedLogicalTag, int32(l))
	case KindInteger:
		i, _ := v.Integer()
		m.word = IntegerWord(managedIntegerTag, i)
	case KindReal:
		d, _ := v.Real()
		if IsStorableDouble(d) {
			m.word = DoubleWord(d)
		} else {
			m.word = Pointer1Word(h.Handle(&RealVector{Elems: []float64{d}}), false)
		}
	case KindString:
		s, _ := v.Str()
		m.word = Pointer2Word(stringHandle(s))
	default:
		m.word = Pointer1Word(h.Handle(v.obj), false)
	}
	return m
}

// Word exposes the encoded representation.
func (m Managed) Word() Word {
	return m.word
}

// Value decodes the slot back into a boxed Value.
func (m Managed) Value() Value {
	switch m.word.StorageType() {
	case StorageDouble:
		d, _ := m.word.Double()
		return RealValue(d)
	case StorageInteger:
		if i, ok := m.word.Integer(managedIntegerTag); ok {
			return IntegerValue(i)
		}
		if l, ok := m.word.Integer(managedLogicalTag); ok {
			return LogicalValue(Logical(l))
		}
		panic(invariantf("managed: unknown integer sub-tag in %#x", uint64(m.word)))
	case StoragePointer2:
		return StringValue(stringByHandle(m.word.Pointer2()))
	case StoragePointer1Null:
		return Null
	default:
		return ObjectValue(m.Node().(Object))
	}
}

// IsNode reports whether the slot holds a heap reference, including NULL.
func (m Managed) IsNode() bool {
	return m.word.IsPointer1()
}

func (m Managed) IsNonNullNode() bool {
	return m.word.IsNonNullPointer1()
}

// Node resolves the referenced node, or nil for NULL.
func (m Managed) Node() Node {
	ptr, _ := m.word.Pointer1()
	if ptr == 0 {
		return nil
	}
	return m.heap.Lookup(ptr)
}

func (m Managed) IsString() bool {
	return m.word.IsPointer2()
}

// Referent returns the node the slot keeps alive, if any.
func (m Managed) Referent() (Node, bool) {
	if m.word.IsNonNullPointer1() {
		return m.Node(), true
	}
	if m.word.IsNonNullPointer2() {
		return stringByHandle(m.word.Pointer2()), true
	}
	return nil, false
}

// VisitReferents reports the node the slot references, if any.
func (m Managed) VisitReferents(visit Visitor) {
	if n, ok := m.Referent(); ok {
		visit(n)
	}
}

// DetachReferents clears the slot's edge. The referenced node is untouched.
func (m *Managed) DetachReferents() {
	m.word = Pointer1Word(0, false)
}

// EnsureReachable keeps the referenced node alive up to this point. Heap
// collections only run at safe points, so this only pins the node against
// the Go collector.
func (m Managed) EnsureReachable() {
	if n, ok := m.Referent(); ok {
		runtime.KeepAlive(n)
	}
}
