package interpreter

import (
	"fmt"
	"math"

	"lazr/interpreter-go/pkg/runtime"
)

// vectorMode orders the atomic modes by coercion rank.
type vectorMode uint8

const (
	modeNull vectorMode = iota
	modeLogical
	modeInteger
	modeReal
	modeString
	modeList
)

func modeOf(v runtime.Value) vectorMode {
	switch v.Type() {
	case runtime.NilType:
		return modeNull
	case runtime.LogicalType:
		return modeLogical
	case runtime.IntegerType:
		return modeInteger
	case runtime.RealType:
		return modeReal
	case runtime.StringType, runtime.CharType:
		return modeString
	default:
		return modeList
	}
}

func logicalsOf(v runtime.Value) []runtime.Logical {
	switch o := v.Object().(type) {
	case *runtime.LogicalVector:
		return o.Elems
	case *runtime.IntVector:
		out := make([]runtime.Logical, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.AsScalarLogical(runtime.IntegerValue(x))
		}
		return out
	case *runtime.RealVector:
		out := make([]runtime.Logical, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.AsScalarLogical(runtime.RealValue(x))
		}
		return out
	case *runtime.StringVector:
		out := make([]runtime.Logical, len(o.Elems))
		for idx, s := range o.Elems {
			out[idx] = runtime.AsScalarLogical(runtime.StringValue(s))
		}
		return out
	}
	return nil
}

func integersOf(v runtime.Value) []int32 {
	switch o := v.Object().(type) {
	case *runtime.LogicalVector:
		out := make([]int32, len(o.Elems))
		for idx, l := range o.Elems {
			out[idx] = int32(l)
		}
		return out
	case *runtime.IntVector:
		return o.Elems
	}
	return nil
}

func realsOf(v runtime.Value) []float64 {
	switch o := v.Object().(type) {
	case *runtime.LogicalVector:
		out := make([]float64, len(o.Elems))
		for idx, l := range o.Elems {
			out[idx] = runtime.AsScalarReal(runtime.LogicalValue(l))
		}
		return out
	case *runtime.IntVector:
		out := make([]float64, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.AsScalarReal(runtime.IntegerValue(x))
		}
		return out
	case *runtime.RealVector:
		return o.Elems
	}
	return nil
}

// stringsOf renders each element of an atomic vector as character data.
func stringsOf(v runtime.Value) []*runtime.String {
	switch o := v.Object().(type) {
	case *runtime.StringVector:
		return o.Elems
	case *runtime.LogicalVector:
		out := make([]*runtime.String, len(o.Elems))
		for idx, l := range o.Elems {
			out[idx] = runtime.InternString(formatLogical(l))
		}
		return out
	case *runtime.IntVector:
		out := make([]*runtime.String, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.InternString(formatInteger(x))
		}
		return out
	case *runtime.RealVector:
		out := make([]*runtime.String, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.InternString(formatReal(x))
		}
		return out
	}
	return nil
}

// listElems splits v into list elements: lists yield their elements, atomic
// vectors one value per element and anything else itself.
func listElems(v runtime.Value) []runtime.Value {
	switch o := v.Object().(type) {
	case nil:
		return nil
	case *runtime.ListVector:
		return o.Elems
	case *runtime.LogicalVector:
		out := make([]runtime.Value, len(o.Elems))
		for idx, l := range o.Elems {
			out[idx] = runtime.LogicalValue(l)
		}
		return out
	case *runtime.IntVector:
		out := make([]runtime.Value, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.IntegerValue(x)
		}
		return out
	case *runtime.RealVector:
		out := make([]runtime.Value, len(o.Elems))
		for idx, x := range o.Elems {
			out[idx] = runtime.RealValue(x)
		}
		return out
	case *runtime.StringVector:
		out := make([]runtime.Value, len(o.Elems))
		for idx, s := range o.Elems {
			out[idx] = runtime.StringValue(s)
		}
		return out
	}
	return []runtime.Value{v}
}

func logicalResult(elems []runtime.Logical) runtime.Value {
	if len(elems) == 1 {
		return runtime.LogicalValue(elems[0])
	}
	return runtime.ObjectValue(&runtime.LogicalVector{Elems: elems})
}

func integerResult(elems []int32) runtime.Value {
	if len(elems) == 1 {
		return runtime.IntegerValue(elems[0])
	}
	return runtime.ObjectValue(&runtime.IntVector{Elems: elems})
}

func realResult(elems []float64) runtime.Value {
	if len(elems) == 1 {
		return runtime.RealValue(elems[0])
	}
	return runtime.ObjectValue(&runtime.RealVector{Elems: elems})
}

func stringResult(elems []*runtime.String) runtime.Value {
	if len(elems) == 1 {
		return runtime.StringValue(elems[0])
	}
	return runtime.ObjectValue(&runtime.StringVector{Elems: elems})
}

func builtinCombine(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	mode := modeNull
	for _, val := range bc.values {
		if m := modeOf(val); m > mode {
			mode = m
		}
	}
	switch mode {
	case modeNull:
		return runtime.Null, nil
	case modeLogical:
		var out []runtime.Logical
		for _, val := range bc.values {
			out = append(out, logicalsOf(val)...)
		}
		return logicalResult(out), nil
	case modeInteger:
		var out []int32
		for _, val := range bc.values {
			out = append(out, integersOf(val)...)
		}
		return integerResult(out), nil
	case modeReal:
		var out []float64
		for _, val := range bc.values {
			out = append(out, realsOf(val)...)
		}
		return realResult(out), nil
	case modeString:
		var out []*runtime.String
		for _, val := range bc.values {
			out = append(out, stringsOf(val)...)
		}
		return stringResult(out), nil
	}
	list := &runtime.ListVector{}
	for _, val := range bc.values {
		list.Elems = append(list.Elems, listElems(val)...)
	}
	return runtime.ObjectValue(list), nil
}

type arithOp uint8

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
)

var arithSymbols = [...]string{opAdd: "+", opSub: "-", opMul: "*", opDiv: "/"}

func arithmeticBuiltin(op arithOp) builtinImpl {
	return func(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
		switch len(bc.values) {
		case 1:
			if op != opAdd && op != opSub {
				break
			}
			return unaryArithmetic(bc, op, bc.values[0])
		case 2:
			return binaryArithmetic(i, bc, op, bc.values[0], bc.values[1])
		}
		return runtime.Null, runtime.CallErrorf(runtime.ErrUsage, bc.callValue(),
			"operator '%s' needs one or two arguments", arithSymbols[op])
	}
}

func isNumericMode(m vectorMode) bool {
	return m == modeNull || m == modeLogical || m == modeInteger || m == modeReal
}

func unaryArithmetic(bc *builtinCall, op arithOp, x runtime.Value) (runtime.Value, error) {
	mode := modeOf(x)
	if !isNumericMode(mode) {
		return runtime.Null, bc.errorf("invalid argument to unary operator")
	}
	if mode == modeReal {
		xs := realsOf(x)
		out := make([]float64, len(xs))
		for idx, d := range xs {
			if op == opSub {
				d = -d
			}
			out[idx] = d
		}
		return realResult(out), nil
	}
	xs := integersOf(x)
	out := make([]int32, len(xs))
	for idx, v := range xs {
		if op == opSub && v != runtime.NAInteger {
			v = -v
		}
		out[idx] = v
	}
	return integerResult(out), nil
}

// recycleLength returns the result length of an elementwise operation and
// whether the shorter operand divides it evenly.
func recycleLength(nx, ny int) (int, bool) {
	if nx == 0 || ny == 0 {
		return 0, true
	}
	n := max(nx, ny)
	return n, n%nx == 0 && n%ny == 0
}

func binaryArithmetic(i *Interpreter, bc *builtinCall, op arithOp, x, y runtime.Value) (runtime.Value, error) {
	mx, my := modeOf(x), modeOf(y)
	if !isNumericMode(mx) || !isNumericMode(my) {
		return runtime.Null, bc.errorf("non-numeric argument to binary operator")
	}
	nx, ny := x.Size(), y.Size()
	n, even := recycleLength(nx, ny)
	if !even {
		i.Warn("longer object length is not a multiple of shorter object length")
	}
	if mx == modeReal || my == modeReal || op == opDiv {
		xs, ys := realsOf(x), realsOf(y)
		out := make([]float64, n)
		for idx := range out {
			out[idx] = realArith(op, xs[idx%nx], ys[idx%ny])
		}
		if n == 0 {
			return runtime.ObjectValue(&runtime.RealVector{}), nil
		}
		return realResult(out), nil
	}
	xs, ys := integersOf(x), integersOf(y)
	out := make([]int32, n)
	overflow := false
	for idx := range out {
		v, ok := intArith(op, xs[idx%nx], ys[idx%ny])
		if !ok {
			overflow = true
		}
		out[idx] = v
	}
	if overflow {
		i.Warn("NAs produced by integer overflow")
	}
	if n == 0 {
		return runtime.ObjectValue(&runtime.IntVector{}), nil
	}
	return integerResult(out), nil
}

func realArith(op arithOp, a, b float64) float64 {
	if runtime.IsNAReal(a) || runtime.IsNAReal(b) {
		return runtime.NAReal()
	}
	switch op {
	case opAdd:
		return a + b
	case opSub:
		return a - b
	case opMul:
		return a * b
	default:
		return a / b
	}
}

// intArith computes one integer operation. ok is false when the result
// overflowed into NA.
func intArith(op arithOp, a, b int32) (int32, bool) {
	if a == runtime.NAInteger || b == runtime.NAInteger {
		return runtime.NAInteger, true
	}
	var r int64
	switch op {
	case opAdd:
		r = int64(a) + int64(b)
	case opSub:
		r = int64(a) - int64(b)
	default:
		r = int64(a) * int64(b)
	}
	if r > math.MaxInt32 || r <= math.MinInt32 {
		return runtime.NAInteger, false
	}
	return int32(r), true
}

type compareOp uint8

const (
	opEq compareOp = iota
	opLt
	opGt
)

func comparisonBuiltin(op compareOp) builtinImpl {
	return func(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
		x, y := bc.values[0], bc.values[1]
		mx, my := modeOf(x), modeOf(y)
		if mx == modeList || my == modeList {
			return runtime.Null, bc.errorf("comparison is possible only for atomic types")
		}
		n, even := recycleLength(x.Size(), y.Size())
		if !even {
			i.Warn("longer object length is not a multiple of shorter object length")
		}
		out := make([]runtime.Logical, n)
		if mx == modeString || my == modeString {
			xs, ys := stringsOf(x), stringsOf(y)
			for idx := range out {
				out[idx] = compareStrings(op, xs[idx%len(xs)].Text(), ys[idx%len(ys)].Text())
			}
		} else {
			xs, ys := realsOf(x), realsOf(y)
			for idx := range out {
				out[idx] = compareReals(op, xs[idx%len(xs)], ys[idx%len(ys)])
			}
		}
		if n == 0 {
			return runtime.ObjectValue(&runtime.LogicalVector{}), nil
		}
		return logicalResult(out), nil
	}
}

func compareReals(op compareOp, a, b float64) runtime.Logical {
	if math.IsNaN(a) || math.IsNaN(b) {
		return runtime.LogicalNA
	}
	switch op {
	case opEq:
		return runtime.LogicalOf(a == b)
	case opLt:
		return runtime.LogicalOf(a < b)
	default:
		return runtime.LogicalOf(a > b)
	}
}

func compareStrings(op compareOp, a, b string) runtime.Logical {
	switch op {
	case opEq:
		return runtime.LogicalOf(a == b)
	case opLt:
		return runtime.LogicalOf(a < b)
	default:
		return runtime.LogicalOf(a > b)
	}
}

func builtinNot(i *Interpreter, bc *builtinCall) (runtime.Value, error) {
	x := bc.values[0]
	mode := modeOf(x)
	if !isNumericMode(mode) {
		return runtime.Null, bc.errorf("invalid argument type")
	}
	ls := logicalsOf(x)
	out := make([]runtime.Logical, len(ls))
	for idx, l := range ls {
		switch l {
		case runtime.LogicalNA:
			out[idx] = runtime.LogicalNA
		case runtime.LogicalFalse:
			out[idx] = runtime.LogicalTrue
		default:
			out[idx] = runtime.LogicalFalse
		}
	}
	if len(out) == 0 {
		return runtime.ObjectValue(&runtime.LogicalVector{}), nil
	}
	return logicalResult(out), nil
}

// catItems renders v the way cat prints it: strings unquoted, numbers in
// their shortest form.
func catItems(v runtime.Value) ([]string, error) {
	mode := modeOf(v)
	if mode == modeList {
		list, ok := v.Object().(*runtime.ListVector)
		if !ok {
			return nil, fmt.Errorf("argument of type '%s' cannot be handled by 'cat'", v.Type())
		}
		var out []string
		for _, elem := range list.Elems {
			items, err := catItems(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return out, nil
	}
	strs := stringsOf(v)
	out := make([]string, len(strs))
	for idx, s := range strs {
		out[idx] = s.Text()
	}
	return out, nil
}
