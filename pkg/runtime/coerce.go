package runtime

import (
	"math"
	"strconv"
	"strings"
)

const naRealBits uint64 = 0x7ff00000000007a2

// NAReal returns the NaN payload that marks a missing real.
func NAReal() float64 {
	return math.Float64frombits(naRealBits)
}

// IsNAReal reports whether d carries the missing-real payload.
func IsNAReal(d float64) bool {
	return math.IsNaN(d) && uint32(math.Float64bits(d)) == 1954
}

// AsScalarLogical coerces the first element of v to a logical. NULL, empty
// vectors and NaN yield NA.
func AsScalarLogical(v Value) Logical {
	switch v.Kind() {
	case KindNull:
		return LogicalNA
	case KindLogical:
		l, _ := v.Logical()
		return l
	case KindInteger:
		i, _ := v.Integer()
		return logicalFromInt(i)
	case KindReal:
		d, _ := v.Real()
		return logicalFromReal(d)
	case KindString:
		s, _ := v.Str()
		return logicalFromString(s)
	}
	return objectAsLogical(v.obj)
}

// AsScalarLogicalNoNA coerces v to a Go bool for use as a condition. NA,
// NULL and zero-length values are errors attributed to call.
func AsScalarLogicalNoNA(v Value, call Value) (bool, error) {
	if v.IsNull() || v.Size() == 0 {
		return false, CallErrorf(ErrEvaluation, call, "argument is of length zero")
	}
	l := AsScalarLogical(v)
	if l == LogicalNA {
		if s, ok := scalarString(v); ok && !isNAString(s) {
			return false, CallErrorf(ErrEvaluation, call, "argument is not interpretable as logical")
		}
		return false, CallErrorf(ErrEvaluation, call, "missing value where TRUE/FALSE needed")
	}
	return l == LogicalTrue, nil
}

// AsScalarInteger coerces the first element of v to an integer. ok is false
// when a real outside the integer range was turned into NA.
func AsScalarInteger(v Value) (value int32, ok bool) {
	switch v.Kind() {
	case KindNull:
		return NAInteger, true
	case KindLogical:
		l, _ := v.Logical()
		return int32(l), true
	case KindInteger:
		i, _ := v.Integer()
		return i, true
	case KindReal:
		d, _ := v.Real()
		return integerFromReal(d)
	case KindString:
		s, _ := v.Str()
		return integerFromString(s)
	}
	return objectAsInteger(v.obj)
}

// AsScalarReal coerces the first element of v to a real.
func AsScalarReal(v Value) float64 {
	switch v.Kind() {
	case KindNull:
		return NAReal()
	case KindLogical:
		l, _ := v.Logical()
		return realFromInt(int32(l))
	case KindInteger:
		i, _ := v.Integer()
		return realFromInt(i)
	case KindReal:
		d, _ := v.Real()
		return d
	case KindString:
		s, _ := v.Str()
		return realFromString(s)
	}
	return objectAsReal(v.obj)
}

func logicalFromInt(i int32) Logical {
	if i == NAInteger {
		return LogicalNA
	}
	return LogicalOf(i != 0)
}

func logicalFromReal(d float64) Logical {
	if math.IsNaN(d) {
		return LogicalNA
	}
	return LogicalOf(d != 0)
}

func logicalFromString(s *String) Logical {
	switch s.Text() {
	case "TRUE", "true", "T", "True":
		return LogicalTrue
	case "FALSE", "false", "F", "False":
		return LogicalFalse
	}
	return LogicalNA
}

func integerFromReal(d float64) (int32, bool) {
	if math.IsNaN(d) {
		return NAInteger, true
	}
	if d >= 1<<31 || d <= -(1<<31) {
		return NAInteger, false
	}
	return int32(d), true
}

func integerFromString(s *String) (int32, bool) {
	d := realFromString(s)
	if math.IsNaN(d) {
		return NAInteger, true
	}
	return integerFromReal(d)
}

func realFromInt(i int32) float64 {
	if i == NAInteger {
		return NAReal()
	}
	return float64(i)
}

func realFromString(s *String) float64 {
	text := strings.TrimSpace(s.Text())
	switch text {
	case "NA", "":
		return NAReal()
	case "Inf":
		return math.Inf(1)
	case "-Inf":
		return math.Inf(-1)
	}
	d, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return NAReal()
	}
	return d
}

func isNAString(s *String) bool {
	return s.Text() == "NA"
}

func scalarString(v Value) (*String, bool) {
	if s, ok := v.Str(); ok {
		return s, true
	}
	if sv, ok := v.obj.(*StringVector); ok && v.IsObject() && len(sv.Elems) > 0 {
		return sv.Elems[0], true
	}
	return nil, false
}

func objectAsLogical(obj Object) Logical {
	switch o := obj.(type) {
	case *LogicalVector:
		if len(o.Elems) > 0 {
			return o.Elems[0]
		}
	case *IntVector:
		if len(o.Elems) > 0 {
			return logicalFromInt(o.Elems[0])
		}
	case *RealVector:
		if len(o.Elems) > 0 {
			return logicalFromReal(o.Elems[0])
		}
	case *StringVector:
		if len(o.Elems) > 0 {
			return logicalFromString(o.Elems[0])
		}
	}
	return LogicalNA
}

func objectAsInteger(obj Object) (int32, bool) {
	switch o := obj.(type) {
	case *LogicalVector:
		if len(o.Elems) > 0 {
			return int32(o.Elems[0]), true
		}
	case *IntVector:
		if len(o.Elems) > 0 {
			return o.Elems[0], true
		}
	case *RealVector:
		if len(o.Elems) > 0 {
			return integerFromReal(o.Elems[0])
		}
	case *StringVector:
		if len(o.Elems) > 0 {
			return integerFromString(o.Elems[0])
		}
	}
	return NAInteger, true
}

func objectAsReal(obj Object) float64 {
	switch o := obj.(type) {
	case *LogicalVector:
		if len(o.Elems) > 0 {
			return realFromInt(int32(o.Elems[0]))
		}
	case *IntVector:
		if len(o.Elems) > 0 {
			return realFromInt(o.Elems[0])
		}
	case *RealVector:
		if len(o.Elems) > 0 {
			return o.Elems[0]
		}
	case *StringVector:
		if len(o.Elems) > 0 {
			return realFromString(o.Elems[0])
		}
	}
	return NAReal()
}
