package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"lazr/interpreter-go/pkg/ast"
	"lazr/interpreter-go/pkg/driver"
	"lazr/interpreter-go/pkg/runtime"
)

// Program is a decoded sequence of top-level expressions together with the
// source position of every call in it.
type Program struct {
	Path    string
	Exprs   []runtime.Value
	Origins map[*runtime.Call]driver.DiagnosticLocation
}

var integerLiteral = regexp.MustCompile(`^-?[0-9]+L$`)

// DecodeProgram decodes a YAML document holding a sequence of expressions.
//
// Sequences are calls whose first element is the function. Plain scalars are
// numbers, logicals, NULL or symbols; quoted scalars are strings. A mapping
// inside a call supplies tagged arguments. The tags !sym, !str and !missing
// force a scalar to a symbol, a string or the empty argument.
func DecodeProgram(data []byte) (*Program, error) {
	return decodeProgram(data, "")
}

// DecodeProgramFile reads and decodes the program at path.
func DecodeProgramFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", path, err)
	}
	return decodeProgram(data, path)
}

func decodeProgram(data []byte, path string) (*Program, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Program{Path: path, Origins: map[*runtime.Call]driver.DiagnosticLocation{}}, nil
		}
		return nil, fmt.Errorf("program: parse: %w", err)
	}
	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	return DecodeExpressions(node, path)
}

// DecodeExpressions decodes a YAML sequence node into a program. path is
// only used for diagnostics.
func DecodeExpressions(node *yaml.Node, path string) (*Program, error) {
	d := &decoder{path: path, origins: make(map[*runtime.Call]driver.DiagnosticLocation)}
	prog := &Program{Path: path, Origins: d.origins}
	if node == nil {
		return prog, nil
	}
	node = resolveAlias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, d.errorf(node, "program must be a sequence of expressions")
	}
	for _, item := range node.Content {
		expr, err := d.expression(item)
		if err != nil {
			return nil, err
		}
		prog.Exprs = append(prog.Exprs, expr)
	}
	return prog, nil
}

type decoder struct {
	path    string
	origins map[*runtime.Call]driver.DiagnosticLocation
}

func (d *decoder) errorf(node *yaml.Node, format string, args ...any) error {
	loc := driver.FormatDiagnosticLocation(d.location(node))
	msg := fmt.Sprintf(format, args...)
	if loc == "" {
		return fmt.Errorf("program: %s", msg)
	}
	return fmt.Errorf("program: %s: %s", loc, msg)
}

func (d *decoder) location(node *yaml.Node) driver.DiagnosticLocation {
	return driver.DiagnosticLocation{Path: d.path, Line: node.Line, Column: node.Column}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func (d *decoder) expression(node *yaml.Node) (runtime.Value, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		return d.scalar(node)
	case yaml.SequenceNode:
		return d.call(node)
	case yaml.MappingNode:
		return runtime.Null, d.errorf(node, "a mapping is only valid as call arguments")
	default:
		return runtime.Null, d.errorf(node, "unsupported YAML node")
	}
}

func (d *decoder) scalar(node *yaml.Node) (runtime.Value, error) {
	switch node.Tag {
	case "!missing":
		return ast.NewMissing(), nil
	case "!sym":
		return ast.NewSymbol(node.Value), nil
	case "!str":
		return ast.NewString(node.Value), nil
	}
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return ast.NewString(node.Value), nil
	}
	return plainScalar(node.Value), nil
}

// plainScalar classifies an unquoted scalar.
func plainScalar(text string) runtime.Value {
	switch text {
	case "", "~", "null", "NULL":
		return ast.NewNull()
	case "TRUE", "true":
		return ast.NewLogical(true)
	case "FALSE", "false":
		return ast.NewLogical(false)
	case "NA":
		return runtime.LogicalValue(runtime.LogicalNA)
	case "NA_integer_":
		return ast.NewInteger(runtime.NAInteger)
	case "NA_real_":
		return ast.NewNumber(runtime.NAReal())
	case "Inf":
		return ast.NewNumber(math.Inf(1))
	case "-Inf":
		return ast.NewNumber(math.Inf(-1))
	case "NaN":
		return ast.NewNumber(math.NaN())
	case "...":
		return ast.NewDots()
	}
	if integerLiteral.MatchString(text) {
		if n, err := strconv.ParseInt(strings.TrimSuffix(text, "L"), 10, 32); err == nil {
			return ast.NewInteger(int32(n))
		}
	}
	if looksNumeric(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return ast.NewNumber(f)
		}
	}
	return ast.NewSymbol(text)
}

func looksNumeric(text string) bool {
	c := text[0]
	if c == '-' || c == '+' {
		if len(text) == 1 {
			return false
		}
		c = text[1]
	}
	return c >= '0' && c <= '9' || c == '.'
}

func (d *decoder) call(node *yaml.Node) (runtime.Value, error) {
	if len(node.Content) == 0 {
		return runtime.Null, d.errorf(node, "empty call")
	}
	headNode := resolveAlias(node.Content[0])
	var head runtime.Value
	if headNode.Kind == yaml.ScalarNode && headNode.Tag != "!missing" {
		head = ast.NewSymbol(headNode.Value)
	} else {
		h, err := d.expression(headNode)
		if err != nil {
			return runtime.Null, err
		}
		head = h
	}

	var args []ast.Arg
	if sym, ok := head.Symbol(); ok && sym.Name() == "function" {
		fnArgs, err := d.functionArgs(node)
		if err != nil {
			return runtime.Null, err
		}
		args = fnArgs
	} else {
		for _, item := range node.Content[1:] {
			item = resolveAlias(item)
			if item.Kind == yaml.MappingNode {
				tagged, err := d.taggedArgs(item)
				if err != nil {
					return runtime.Null, err
				}
				args = append(args, tagged...)
				continue
			}
			val, err := d.expression(item)
			if err != nil {
				return runtime.Null, err
			}
			args = append(args, ast.NewArg(val))
		}
	}

	call := runtime.NewCall(head, args...)
	d.origins[call] = d.location(node)
	return runtime.ObjectValue(call), nil
}

func (d *decoder) taggedArgs(node *yaml.Node) ([]ast.Arg, error) {
	args := make([]ast.Arg, 0, len(node.Content)/2)
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		key := resolveAlias(node.Content[idx])
		if key.Kind != yaml.ScalarNode {
			return nil, d.errorf(key, "argument names must be scalars")
		}
		val, err := d.expression(node.Content[idx+1])
		if err != nil {
			return nil, err
		}
		args = append(args, ast.NewNamedArg(key.Value, val))
	}
	return args, nil
}

// functionArgs decodes [function, formals, body]. Formals are a sequence of
// names and single-entry mappings name: default.
func (d *decoder) functionArgs(node *yaml.Node) ([]ast.Arg, error) {
	if len(node.Content) != 3 {
		return nil, d.errorf(node, "function expects formals and a body")
	}
	formalsNode := resolveAlias(node.Content[1])
	var formals []runtime.Formal
	switch formalsNode.Kind {
	case yaml.SequenceNode:
		for _, item := range formalsNode.Content {
			item = resolveAlias(item)
			switch item.Kind {
			case yaml.ScalarNode:
				formals = append(formals, ast.NewFormal(item.Value))
			case yaml.MappingNode:
				more, err := d.defaultFormals(item)
				if err != nil {
					return nil, err
				}
				formals = append(formals, more...)
			default:
				return nil, d.errorf(item, "invalid formal argument")
			}
		}
	case yaml.MappingNode:
		more, err := d.defaultFormals(formalsNode)
		if err != nil {
			return nil, err
		}
		formals = more
	case yaml.ScalarNode:
		if !plainScalar(formalsNode.Value).IsNull() {
			return nil, d.errorf(formalsNode, "invalid formal argument list")
		}
	default:
		return nil, d.errorf(formalsNode, "invalid formal argument list")
	}
	seen := make(map[string]bool, len(formals))
	for _, f := range formals {
		if seen[f.Name.Name()] {
			return nil, d.errorf(formalsNode, "repeated formal argument '%s'", f.Name.Name())
		}
		seen[f.Name.Name()] = true
	}
	body, err := d.expression(node.Content[2])
	if err != nil {
		return nil, err
	}
	list := runtime.ObjectValue(runtime.NewFormalList(formals...))
	return []ast.Arg{ast.NewArg(list), ast.NewArg(body)}, nil
}

func (d *decoder) defaultFormals(node *yaml.Node) ([]runtime.Formal, error) {
	var formals []runtime.Formal
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		key := resolveAlias(node.Content[idx])
		if key.Kind != yaml.ScalarNode {
			return nil, d.errorf(key, "formal names must be scalars")
		}
		def, err := d.expression(node.Content[idx+1])
		if err != nil {
			return nil, err
		}
		formals = append(formals, ast.NewDefaultFormal(key.Value, def))
	}
	return formals, nil
}
