package runtime

import (
	"fmt"
	"math"
)

// Word is a 64-bit discriminated union capable of storing two kinds of
// pointer, 65536 kinds of 32-bit integer and most double values.
//
// Bits 59-63 select the variant:
//
//	x00xx  Pointer1, unless every bit is zero (a double holding +0).
//	       The payload is recovered by xor-ing bits 0-3 into bits 60-63 and
//	       clearing the low three bits. Bit 0 is a client flag.
//	x01xx  Double, native format.
//	x10xx  Double, native format.
//	x110x  Pointer2, recovered like Pointer1. No flag bit.
//	01110  Integer. Sub-tag in bits 32-47, value in bits 0-31.
//	11110  Pointer1 null.
//	x1111  Double, native format (includes +/-Inf and NaN).
//
// Pointer payloads are 8-byte aligned addresses. Within this package they are
// heap handles (see Heap) or interned-string handles, never Go pointers, so
// the Go collector does not need to see through a Word.
type Word uint64

// StorageType identifies which variant a Word currently holds.
type StorageType uint8

const (
	StorageInteger StorageType = iota
	StorageDouble
	StoragePointer1
	StoragePointer1Null
	StoragePointer2
)

func (s StorageType) String() string {
	switch s {
	case StorageInteger:
		return "integer"
	case StorageDouble:
		return "double"
	case StoragePointer1:
		return "pointer1"
	case StoragePointer1Null:
		return "pointer1_null"
	case StoragePointer2:
		return "pointer2"
	default:
		return fmt.Sprintf("unknown_storage_%d", int(s))
	}
}

const (
	pointer1NullTag uint64 = 0x1e << 59
	pointer2Tag     uint64 = 0xc << 59
	integerTag      uint64 = 0xe << 59

	integerTagMask uint64 = 0xffffffff00000000
	alignmentMask  uint64 = 0x7
)

const (
	pointer1NullWord = Word(pointer1NullTag ^ (pointer1NullTag >> 60))
	pointer2NullWord = Word(pointer2Tag ^ (pointer2Tag >> 60))
)

// Indexed by bits 59-63.
var wordStorageTypes = [32]StorageType{
	StoragePointer1, StoragePointer1, StoragePointer1, StoragePointer1,
	StorageDouble, StorageDouble, StorageDouble, StorageDouble,
	StorageDouble, StorageDouble, StorageDouble, StorageDouble,
	StoragePointer2, StoragePointer2, StorageInteger, StorageDouble,
	StoragePointer1, StoragePointer1, StoragePointer1, StoragePointer1,
	StorageDouble, StorageDouble, StorageDouble, StorageDouble,
	StorageDouble, StorageDouble, StorageDouble, StorageDouble,
	StoragePointer2, StoragePointer2, StoragePointer1Null, StorageDouble,
}

// StorageType reports the variant held by w.
func (w Word) StorageType() StorageType {
	if w == 0 {
		return StorageDouble
	}
	return wordStorageTypes[uint64(w)>>59]
}

// Pointer1Word encodes an aligned address together with a client flag.
// A zero address without the flag encodes the distinct Pointer1 null value.
func Pointer1Word(ptr uintptr, flag bool) Word {
	if ptr == 0 && !flag {
		return pointer1NullWord
	}
	bits := uint64(ptr)
	if bits&alignmentMask != 0 {
		panic(invariantf("Pointer1Word: address %#x is not 8-byte aligned", bits))
	}
	bits |= (bits >> 60) & 0xe
	if flag {
		bits |= 1
	}
	return Word(bits ^ (bits << 60))
}

// IsPointer1 reports whether w holds a Pointer1, including the null value.
func (w Word) IsPointer1() bool {
	st := w.StorageType()
	return st == StoragePointer1 || st == StoragePointer1Null
}

func (w Word) IsNonNullPointer1() bool {
	return w.StorageType() == StoragePointer1
}

func (w Word) isPointer1Null() bool {
	return w.StorageType() == StoragePointer1Null
}

// Pointer1 decodes the address and flag. Panics if w is not a Pointer1.
func (w Word) Pointer1() (uintptr, bool) {
	if !w.IsPointer1() {
		panic(invariantf("Word.Pointer1: word holds %s", w.StorageType()))
	}
	if w.isPointer1Null() {
		return 0, false
	}
	return w.recoverPointer(), uint64(w)&1 != 0
}

// Pointer2Word encodes an aligned address as the second, unflagged pointer kind.
func Pointer2Word(ptr uintptr) Word {
	bits := uint64(ptr)
	if bits&alignmentMask != 0 {
		panic(invariantf("Pointer2Word: address %#x is not 8-byte aligned", bits))
	}
	bits |= (bits ^ pointer2Tag) >> 60
	return Word(bits ^ (bits << 60))
}

func (w Word) IsPointer2() bool {
	return w.StorageType() == StoragePointer2
}

func (w Word) IsNonNullPointer2() bool {
	return w.IsPointer2() && w != pointer2NullWord
}

// Pointer2 decodes the address. Panics if w is not a Pointer2.
func (w Word) Pointer2() uintptr {
	if !w.IsPointer2() {
		panic(invariantf("Word.Pointer2: word holds %s", w.StorageType()))
	}
	return w.recoverPointer()
}

func (w Word) IsEitherPointer() bool {
	return w.IsPointer1() || w.IsPointer2()
}

func (w Word) IsEitherPointerNonNull() bool {
	return w.IsNonNullPointer1() || w.IsNonNullPointer2()
}

// EitherPointer decodes the address of either pointer kind.
func (w Word) EitherPointer() uintptr {
	if !w.IsEitherPointer() {
		panic(invariantf("Word.EitherPointer: word holds %s", w.StorageType()))
	}
	if w.isPointer1Null() {
		return 0
	}
	return w.recoverPointer()
}

func (w Word) recoverPointer() uintptr {
	bits := uint64(w)
	return uintptr((bits &^ alignmentMask) ^ (bits << 60))
}

// IntegerWord encodes value under the given sub-tag.
func IntegerWord(tag uint16, value int32) Word {
	return Word(makeIntegerTag(tag) | uint64(uint32(value)))
}

// IsInteger reports whether w holds an integer stored under tag.
func (w Word) IsInteger(tag uint16) bool {
	return uint64(w)&integerTagMask == makeIntegerTag(tag)
}

// Integer decodes an integer stored under tag. ok is false when w holds any
// other variant or an integer under a different tag.
func (w Word) Integer(tag uint16) (value int32, ok bool) {
	if !w.IsInteger(tag) {
		return 0, false
	}
	return int32(uint32(uint64(w))), true
}

func makeIntegerTag(tag uint16) uint64 {
	return integerTag | uint64(tag)<<32
}

// DoubleWord encodes d in its native format. d must satisfy IsStorableDouble.
func DoubleWord(d float64) Word {
	w := Word(math.Float64bits(d))
	if !w.IsDouble() {
		panic(invariantf("DoubleWord: %g collides with the pointer encoding", d))
	}
	return w
}

func (w Word) IsDouble() bool {
	return w.StorageType() == StorageDouble
}

// Double decodes a stored double. ok is false for the other variants.
func (w Word) Double() (value float64, ok bool) {
	if !w.IsDouble() {
		return 0, false
	}
	return math.Float64frombits(uint64(w)), true
}

// IsStorableDouble reports whether d survives a DoubleWord round trip. Very
// small and very large magnitudes share bit patterns with the pointer and
// integer variants and must be boxed instead.
func IsStorableDouble(d float64) bool {
	return Word(math.Float64bits(d)).IsDouble()
}
