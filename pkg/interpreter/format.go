package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lazr/interpreter-go/pkg/runtime"
)

const (
	printWidth  = 80
	printDigits = 7
)

// FormatValue renders v the way the top level prints it.
func FormatValue(v runtime.Value) string {
	var b strings.Builder
	writeValue(&b, v, "")
	return strings.TrimRight(b.String(), "\n")
}

func writeValue(b *strings.Builder, v runtime.Value, prefix string) {
	if v.IsNull() {
		b.WriteString("NULL\n")
		return
	}
	switch o := v.Object().(type) {
	case *runtime.LogicalVector:
		items := make([]string, len(o.Elems))
		for idx, l := range o.Elems {
			items[idx] = formatLogical(l)
		}
		writeVector(b, "logical", items, true)
	case *runtime.IntVector:
		items := make([]string, len(o.Elems))
		for idx, x := range o.Elems {
			items[idx] = formatInteger(x)
		}
		writeVector(b, "integer", items, true)
	case *runtime.RealVector:
		writeVector(b, "numeric", formatReals(o.Elems), true)
	case *runtime.StringVector:
		items := make([]string, len(o.Elems))
		for idx, s := range o.Elems {
			items[idx] = quoteString(s.Text())
		}
		writeVector(b, "character", items, false)
	case *runtime.ListVector:
		writeList(b, o, prefix)
	case *runtime.Environment:
		b.WriteString(o.String())
		b.WriteString("\n")
	case *runtime.Promise:
		b.WriteString("<promise>\n")
	case *runtime.DotArgs:
		b.WriteString("<...>\n")
	default:
		b.WriteString(Deparse(v))
		b.WriteString("\n")
	}
}

// writeVector lays items out in rows no wider than printWidth, each row
// prefixed with the index of its first element.
func writeVector(b *strings.Builder, mode string, items []string, right bool) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s(0)\n", mode)
		return
	}
	width := 0
	for _, item := range items {
		width = max(width, len(item))
	}
	labelWidth := len(fmt.Sprintf("[%d]", len(items)))
	perRow := max(1, (printWidth-labelWidth)/(width+1))
	for start := 0; start < len(items); start += perRow {
		label := fmt.Sprintf("[%d]", start+1)
		b.WriteString(strings.Repeat(" ", labelWidth-len(label)))
		b.WriteString(label)
		end := min(start+perRow, len(items))
		for idx, item := range items[start:end] {
			b.WriteString(" ")
			pad := strings.Repeat(" ", width-len(item))
			switch {
			case right:
				b.WriteString(pad + item)
			case start+idx == end-1:
				b.WriteString(item)
			default:
				b.WriteString(item + pad)
			}
		}
		b.WriteString("\n")
	}
}

func writeList(b *strings.Builder, list *runtime.ListVector, prefix string) {
	if len(list.Elems) == 0 {
		b.WriteString("list()\n")
		return
	}
	for idx, elem := range list.Elems {
		tag := fmt.Sprintf("%s[[%d]]", prefix, idx+1)
		if list.Names != nil && list.Names[idx].Text() != "" {
			tag = prefix + "$" + deparseName(list.Names[idx].Text())
		}
		b.WriteString(tag)
		b.WriteString("\n")
		writeValue(b, elem, tag)
		b.WriteString("\n")
	}
}

func formatLogical(l runtime.Logical) string {
	switch l {
	case runtime.LogicalNA:
		return "NA"
	case runtime.LogicalFalse:
		return "FALSE"
	default:
		return "TRUE"
	}
}

func formatInteger(x int32) string {
	if x == runtime.NAInteger {
		return "NA"
	}
	return strconv.FormatInt(int64(x), 10)
}

// formatReal renders a single real with up to seven significant digits.
func formatReal(d float64) string {
	return formatReals([]float64{d})[0]
}

// formatReals renders reals with a shared layout: every finite element uses
// the same number of decimals, or the same mantissa width in scientific
// notation when that is narrower.
func formatReals(xs []float64) []string {
	out := make([]string, len(xs))
	decimals, sigDigits := 0, 1
	fixedWidth, sciWidth := 0, 0
	finite := false
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		finite = true
		sig, exp := significantDigits(x)
		sigDigits = max(sigDigits, sig)
		decimals = max(decimals, sig-1-exp)
	}
	if !finite {
		for idx, x := range xs {
			out[idx] = formatSpecialReal(x)
		}
		return out
	}
	decimals = min(decimals, 15)
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		fixedWidth = max(fixedWidth, len(strconv.FormatFloat(x, 'f', decimals, 64)))
		sciWidth = max(sciWidth, len(formatScientific(x, sigDigits-1)))
	}
	for idx, x := range xs {
		switch {
		case math.IsNaN(x) || math.IsInf(x, 0):
			out[idx] = formatSpecialReal(x)
		case fixedWidth <= sciWidth:
			out[idx] = strconv.FormatFloat(x, 'f', decimals, 64)
		default:
			out[idx] = formatScientific(x, sigDigits-1)
		}
	}
	return out
}

// significantDigits returns how many of the first printDigits significant
// digits of x are needed, and the decimal exponent of x.
func significantDigits(x float64) (int, int) {
	if x == 0 {
		return 1, 0
	}
	text := strconv.FormatFloat(math.Abs(x), 'e', printDigits-1, 64)
	mantissa, expText, _ := strings.Cut(text, "e")
	exp, _ := strconv.Atoi(expText)
	digits := strings.TrimRight(strings.Replace(mantissa, ".", "", 1), "0")
	return max(1, len(digits)), exp
}

func formatScientific(x float64, decimals int) string {
	text := strconv.FormatFloat(x, 'e', decimals, 64)
	mantissa, exp, _ := strings.Cut(text, "e")
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	for len(digits) < 2 {
		digits = "0" + digits
	}
	return mantissa + "e" + string(sign) + digits
}

func formatSpecialReal(x float64) string {
	switch {
	case runtime.IsNAReal(x):
		return "NA"
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	default:
		return "-Inf"
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"==": true, "<": true, ">": true, "<-": true, "=": true,
}

// Deparse renders an expression or value as source text.
func Deparse(v runtime.Value) string {
	var b strings.Builder
	deparseInto(&b, v, 0)
	return b.String()
}

func deparseInto(b *strings.Builder, v runtime.Value, indent int) {
	switch v.Kind() {
	case runtime.KindNull:
		b.WriteString("NULL")
		return
	case runtime.KindLogical:
		l, _ := v.Logical()
		b.WriteString(formatLogical(l))
		return
	case runtime.KindInteger:
		x, _ := v.Integer()
		if x == runtime.NAInteger {
			b.WriteString("NA_integer_")
			return
		}
		b.WriteString(formatInteger(x) + "L")
		return
	case runtime.KindReal:
		d, _ := v.Real()
		b.WriteString(deparseReal(d))
		return
	case runtime.KindString:
		s, _ := v.Str()
		b.WriteString(quoteString(s.Text()))
		return
	}
	obj, _ := v.RawObject()
	switch o := obj.(type) {
	case *runtime.Symbol:
		if o == runtime.MissingArg {
			return
		}
		b.WriteString(deparseName(o.Name()))
	case *runtime.Call:
		deparseCall(b, o, indent)
	case *runtime.Closure:
		b.WriteString("function(")
		deparseFormals(b, o.Formals, indent)
		b.WriteString(") ")
		deparseInto(b, o.Body, indent)
	case *runtime.FormalList:
		deparseFormals(b, o, indent)
	case *Builtin:
		fmt.Fprintf(b, ".Primitive(%s)", quoteString(o.Name))
	case *runtime.RealVector:
		if len(o.Elems) == 1 {
			b.WriteString(deparseReal(o.Elems[0]))
			return
		}
		items := make([]string, len(o.Elems))
		for idx, d := range o.Elems {
			items[idx] = deparseReal(d)
		}
		b.WriteString("c(" + strings.Join(items, ", ") + ")")
	case *runtime.Promise:
		deparseInto(b, o.Expression(), indent)
	case *runtime.Environment:
		b.WriteString(o.String())
	default:
		if obj == nil {
			b.WriteString("NULL")
			return
		}
		elems := listElems(v)
		items := make([]string, len(elems))
		for idx, elem := range elems {
			items[idx] = Deparse(elem)
		}
		head := "c("
		if _, ok := obj.(*runtime.ListVector); ok {
			head = "list("
		}
		b.WriteString(head + strings.Join(items, ", ") + ")")
	}
}

func deparseReal(d float64) string {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return formatSpecialReal(d)
	}
	return strconv.FormatFloat(d, 'g', 15, 64)
}

func deparseFormals(b *strings.Builder, formals *runtime.FormalList, indent int) {
	if formals == nil {
		return
	}
	for idx, formal := range formals.Formals {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(deparseName(formal.Name.Name()))
		if formal.HasDefault() {
			b.WriteString(" = ")
			deparseInto(b, formal.Default, indent)
		}
	}
}

func deparseCall(b *strings.Builder, call *runtime.Call, indent int) {
	args := call.Args()
	name := ""
	if sym, ok := call.Function().Symbol(); ok {
		name = sym.Name()
	}
	switch {
	case name == "{":
		b.WriteString("{\n")
		for _, arg := range args {
			b.WriteString(strings.Repeat("    ", indent+1))
			deparseInto(b, arg.Value, indent+1)
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat("    ", indent) + "}")
		return
	case name == "if" && (len(args) == 2 || len(args) == 3):
		b.WriteString("if (")
		deparseInto(b, args[0].Value, indent)
		b.WriteString(") ")
		deparseInto(b, args[1].Value, indent)
		if len(args) == 3 {
			b.WriteString(" else ")
			deparseInto(b, args[2].Value, indent)
		}
		return
	case name == "function" && len(args) == 2:
		b.WriteString("function(")
		if obj, ok := args[0].Value.RawObject(); ok {
			if formals, ok := obj.(*runtime.FormalList); ok {
				deparseFormals(b, formals, indent)
			}
		}
		b.WriteString(") ")
		deparseInto(b, args[1].Value, indent)
		return
	case binaryOperators[name] && len(args) == 2:
		deparseInto(b, args[0].Value, indent)
		b.WriteString(" " + name + " ")
		deparseInto(b, args[1].Value, indent)
		return
	case (name == "-" || name == "+" || name == "!") && len(args) == 1:
		b.WriteString(name)
		deparseInto(b, args[0].Value, indent)
		return
	}
	if name != "" {
		b.WriteString(deparseName(name))
	} else {
		deparseInto(b, call.Function(), indent)
	}
	b.WriteString("(")
	for idx, arg := range args {
		if idx > 0 {
			b.WriteString(", ")
		}
		if arg.Tag != nil {
			b.WriteString(deparseName(arg.Tag.Name()) + " = ")
		}
		deparseInto(b, arg.Value, indent)
	}
	b.WriteString(")")
}

// deparseName backquotes names that are not syntactic.
func deparseName(name string) string {
	if isSyntacticName(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

func isSyntacticName(name string) bool {
	if name == "" || name == "..." {
		return name == "..."
	}
	for idx, r := range name {
		switch {
		case r == '.' || r == '_' && idx > 0:
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if idx == 0 {
				return false
			}
		default:
			return false
		}
	}
	if name[0] == '.' && len(name) > 1 && name[1] >= '0' && name[1] <= '9' {
		return false
	}
	return true
}
