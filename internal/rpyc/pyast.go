package rpyc

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pickle"
)

// errUnknownPyNode stops source generation at a python syntax node that
// legacy screens never produce.
var errUnknownPyNode = errors.New("unsupported python syntax node")

// pySource regenerates python source from the pickled syntax tree that
// legacy screens store in place of their code. Only the subset the
// screen compiler emits is supported.
func pySource(module pickle.Value) (string, error) {
	g := &pyGen{}
	if err := g.stmt(module); err != nil {
		return "", err
	}
	return g.buf.String(), nil
}

type pyGen struct {
	buf   strings.Builder
	depth int
}

func pyNode(v pickle.Value) (*pickle.Object, string) {
	obj, ok := v.(*pickle.Object)
	if !ok || obj.Class == nil {
		return nil, ""
	}
	if obj.Class.Module != "_ast" && obj.Class.Module != "ast" {
		return nil, ""
	}
	return obj, obj.Class.Name
}

func pyField(n *pickle.Object, name string) pickle.Value {
	v, _ := n.Attr(name)
	return v
}

func pyList(n *pickle.Object, name string) []pickle.Value {
	items, _ := pickle.AsList(pyField(n, name))
	return items
}

func (g *pyGen) line(s string) {
	g.buf.WriteString(strings.Repeat("    ", g.depth))
	g.buf.WriteString(s)
	g.buf.WriteByte('\n')
}

func (g *pyGen) body(stmts []pickle.Value) error {
	g.depth++
	defer func() { g.depth-- }()
	if len(stmts) == 0 {
		g.line("pass")
		return nil
	}
	for _, s := range stmts {
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *pyGen) stmt(v pickle.Value) error {
	n, kind := pyNode(v)
	switch kind {
	case "Module", "Interactive":
		for _, s := range pyList(n, "body") {
			if err := g.stmt(s); err != nil {
				return err
			}
		}
		return nil

	case "Assign":
		var targets []string
		for _, t := range pyList(n, "targets") {
			s, err := g.expr(t)
			if err != nil {
				return err
			}
			targets = append(targets, s)
		}
		value, err := g.expr(pyField(n, "value"))
		if err != nil {
			return err
		}
		g.line(strings.Join(targets, " = ") + " = " + value)
		return nil

	case "AugAssign":
		target, err := g.expr(pyField(n, "target"))
		if err != nil {
			return err
		}
		op, err := pyOperator(pyField(n, "op"))
		if err != nil {
			return err
		}
		value, err := g.expr(pyField(n, "value"))
		if err != nil {
			return err
		}
		g.line(target + " " + op + "= " + value)
		return nil

	case "Expr":
		value, err := g.expr(pyField(n, "value"))
		if err != nil {
			return err
		}
		g.line(value)
		return nil

	case "Pass":
		g.line("pass")
		return nil

	case "If":
		return g.ifStmt(n, "if")

	case "For":
		target, err := g.expr(pyField(n, "target"))
		if err != nil {
			return err
		}
		iter, err := g.expr(pyField(n, "iter"))
		if err != nil {
			return err
		}
		g.line("for " + target + " in " + iter + ":")
		if err := g.body(pyList(n, "body")); err != nil {
			return err
		}
		if orelse := pyList(n, "orelse"); len(orelse) > 0 {
			g.line("else:")
			return g.body(orelse)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", errUnknownPyNode, pickle.TypeName(v))
}

func (g *pyGen) ifStmt(n *pickle.Object, keyword string) error {
	test, err := g.expr(pyField(n, "test"))
	if err != nil {
		return err
	}
	g.line(keyword + " " + test + ":")
	if err := g.body(pyList(n, "body")); err != nil {
		return err
	}

	orelse := pyList(n, "orelse")
	if len(orelse) == 1 {
		if inner, kind := pyNode(orelse[0]); kind == "If" {
			return g.ifStmt(inner, "elif")
		}
	}
	if len(orelse) > 0 {
		g.line("else:")
		return g.body(orelse)
	}
	return nil
}

func (g *pyGen) exprs(values []pickle.Value) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, err := g.expr(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// operand renders a nested expression, parenthesized when it is itself
// an operator expression.
func (g *pyGen) operand(v pickle.Value) (string, error) {
	s, err := g.expr(v)
	if err != nil {
		return "", err
	}
	switch _, kind := pyNode(v); kind {
	case "BinOp", "BoolOp", "UnaryOp", "Compare", "IfExp", "Lambda":
		return "(" + s + ")", nil
	}
	return s, nil
}

func (g *pyGen) expr(v pickle.Value) (string, error) {
	n, kind := pyNode(v)
	switch kind {
	case "Name":
		s, _ := pickle.AsString(pyField(n, "id"))
		return s, nil

	case "Attribute":
		value, err := g.operand(pyField(n, "value"))
		if err != nil {
			return "", err
		}
		attr, _ := pickle.AsString(pyField(n, "attr"))
		return value + "." + attr, nil

	case "Str", "Bytes":
		return pyRepr(pyField(n, "s")), nil

	case "Num":
		return pyRepr(pyField(n, "n")), nil

	case "Constant", "NameConstant":
		return pyRepr(pyField(n, "value")), nil

	case "Tuple":
		elts, err := g.exprs(pyList(n, "elts"))
		if err != nil {
			return "", err
		}
		if len(elts) == 1 {
			return "(" + elts[0] + ",)", nil
		}
		return "(" + strings.Join(elts, ", ") + ")", nil

	case "List":
		elts, err := g.exprs(pyList(n, "elts"))
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(elts, ", ") + "]", nil

	case "Dict":
		keys, err := g.exprs(pyList(n, "keys"))
		if err != nil {
			return "", err
		}
		values, err := g.exprs(pyList(n, "values"))
		if err != nil {
			return "", err
		}
		if len(keys) != len(values) {
			return "", fmt.Errorf("%w: dict with %d keys and %d values", errUnknownPyNode, len(keys), len(values))
		}
		pairs := make([]string, len(keys))
		for i := range keys {
			pairs[i] = keys[i] + ": " + values[i]
		}
		return "{" + strings.Join(pairs, ", ") + "}", nil

	case "Call":
		return g.call(n)

	case "BinOp":
		left, err := g.operand(pyField(n, "left"))
		if err != nil {
			return "", err
		}
		op, err := pyOperator(pyField(n, "op"))
		if err != nil {
			return "", err
		}
		right, err := g.operand(pyField(n, "right"))
		if err != nil {
			return "", err
		}
		return left + " " + op + " " + right, nil

	case "UnaryOp":
		operand, err := g.operand(pyField(n, "operand"))
		if err != nil {
			return "", err
		}
		_, op := pyNode(pyField(n, "op"))
		switch op {
		case "Not":
			return "not " + operand, nil
		case "USub":
			return "-" + operand, nil
		case "UAdd":
			return "+" + operand, nil
		case "Invert":
			return "~" + operand, nil
		}
		return "", fmt.Errorf("%w: unary operator %s", errUnknownPyNode, op)

	case "BoolOp":
		_, op := pyNode(pyField(n, "op"))
		word := map[string]string{"And": " and ", "Or": " or "}[op]
		if word == "" {
			return "", fmt.Errorf("%w: boolean operator %s", errUnknownPyNode, op)
		}
		var parts []string
		for _, value := range pyList(n, "values") {
			s, err := g.operand(value)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, word), nil

	case "Compare":
		left, err := g.operand(pyField(n, "left"))
		if err != nil {
			return "", err
		}
		ops := pyList(n, "ops")
		comparators := pyList(n, "comparators")
		if len(ops) != len(comparators) {
			return "", fmt.Errorf("%w: comparison with %d operators and %d operands", errUnknownPyNode, len(ops), len(comparators))
		}
		out := left
		for i, op := range ops {
			word, err := pyComparison(op)
			if err != nil {
				return "", err
			}
			right, err := g.operand(comparators[i])
			if err != nil {
				return "", err
			}
			out += " " + word + " " + right
		}
		return out, nil

	case "Subscript":
		value, err := g.operand(pyField(n, "value"))
		if err != nil {
			return "", err
		}
		slice, err := g.slice(pyField(n, "slice"))
		if err != nil {
			return "", err
		}
		return value + "[" + slice + "]", nil

	case "IfExp":
		body, err := g.operand(pyField(n, "body"))
		if err != nil {
			return "", err
		}
		test, err := g.operand(pyField(n, "test"))
		if err != nil {
			return "", err
		}
		orelse, err := g.operand(pyField(n, "orelse"))
		if err != nil {
			return "", err
		}
		return body + " if " + test + " else " + orelse, nil

	case "Lambda":
		args, err := g.arguments(pyField(n, "args"))
		if err != nil {
			return "", err
		}
		body, err := g.expr(pyField(n, "body"))
		if err != nil {
			return "", err
		}
		if args == "" {
			return "lambda: " + body, nil
		}
		return "lambda " + args + ": " + body, nil
	}
	return "", fmt.Errorf("%w: %s", errUnknownPyNode, pickle.TypeName(v))
}

func (g *pyGen) call(n *pickle.Object) (string, error) {
	fn, err := g.operand(pyField(n, "func"))
	if err != nil {
		return "", err
	}
	args, err := g.exprs(pyList(n, "args"))
	if err != nil {
		return "", err
	}
	for _, kw := range pyList(n, "keywords") {
		k, _ := pyNode(kw)
		if k == nil {
			return "", fmt.Errorf("%w: keyword %s", errUnknownPyNode, pickle.TypeName(kw))
		}
		value, err := g.expr(pyField(k, "value"))
		if err != nil {
			return "", err
		}
		if name := pyField(k, "arg"); !pickle.IsNone(name) {
			s, _ := pickle.AsString(name)
			args = append(args, s+"="+value)
		} else {
			args = append(args, "**"+value)
		}
	}
	if star := pyField(n, "starargs"); !pickle.IsNone(star) {
		s, err := g.expr(star)
		if err != nil {
			return "", err
		}
		args = append(args, "*"+s)
	}
	if kwargs := pyField(n, "kwargs"); !pickle.IsNone(kwargs) {
		s, err := g.expr(kwargs)
		if err != nil {
			return "", err
		}
		args = append(args, "**"+s)
	}
	return fn + "(" + strings.Join(args, ", ") + ")", nil
}

func (g *pyGen) slice(v pickle.Value) (string, error) {
	n, kind := pyNode(v)
	switch kind {
	case "Index":
		return g.expr(pyField(n, "value"))
	case "Slice":
		var parts [3]string
		for i, field := range []string{"lower", "upper", "step"} {
			if f := pyField(n, field); !pickle.IsNone(f) {
				s, err := g.expr(f)
				if err != nil {
					return "", err
				}
				parts[i] = s
			}
		}
		if parts[2] != "" {
			return parts[0] + ":" + parts[1] + ":" + parts[2], nil
		}
		return parts[0] + ":" + parts[1], nil
	}
	// python 3.9 and later index with the bare expression.
	return g.expr(v)
}

func (g *pyGen) arguments(v pickle.Value) (string, error) {
	n, _ := pyNode(v)
	if n == nil {
		return "", nil
	}
	names, err := g.exprs(pyList(n, "args"))
	if err != nil {
		return "", err
	}
	defaults, err := g.exprs(pyList(n, "defaults"))
	if err != nil {
		return "", err
	}
	offset := len(names) - len(defaults)
	for i := range defaults {
		if offset+i >= 0 {
			names[offset+i] += "=" + defaults[i]
		}
	}
	if vararg := pyField(n, "vararg"); !pickle.IsNone(vararg) {
		s, _ := pickle.AsString(vararg)
		names = append(names, "*"+s)
	}
	if kwarg := pyField(n, "kwarg"); !pickle.IsNone(kwarg) {
		s, _ := pickle.AsString(kwarg)
		names = append(names, "**"+s)
	}
	return strings.Join(names, ", "), nil
}

var pyOperators = map[string]string{
	"Add": "+", "Sub": "-", "Mult": "*", "Div": "/", "Mod": "%", "Pow": "**",
	"FloorDiv": "//", "LShift": "<<", "RShift": ">>", "BitOr": "|",
	"BitXor": "^", "BitAnd": "&",
}

func pyOperator(v pickle.Value) (string, error) {
	_, kind := pyNode(v)
	if op, ok := pyOperators[kind]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: operator %s", errUnknownPyNode, kind)
}

var pyComparisons = map[string]string{
	"Eq": "==", "NotEq": "!=", "Lt": "<", "LtE": "<=", "Gt": ">", "GtE": ">=",
	"Is": "is", "IsNot": "is not", "In": "in", "NotIn": "not in",
}

func pyComparison(v pickle.Value) (string, error) {
	_, kind := pyNode(v)
	if op, ok := pyComparisons[kind]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: comparison %s", errUnknownPyNode, kind)
}

// pyRepr renders a literal the way python 2's repr does: byte strings
// plain, text strings with a u prefix.
func pyRepr(v pickle.Value) string {
	switch v := v.(type) {
	case nil, pickle.None:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case *big.Int:
		return v.String()
	case float64:
		return pyFloat(v)
	case pickle.Bytes:
		return quotePy(string(v), false)
	case string:
		return "u" + quotePy(v, true)
	}
	return pickle.TypeName(v)
}

func pyFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "1e1000"
	case math.IsInf(f, -1):
		return "-1e1000"
	case math.IsNaN(f):
		return "float('nan')"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// quotePy quotes s with single quotes unless it holds a single quote and
// no double quote. Text strings escape by code point, byte strings by
// byte.
func quotePy(s string, text bool) string {
	quote := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = '"'
	}

	var b strings.Builder
	b.WriteByte(quote)
	escape := func(r rune) {
		switch {
		case r == rune(quote) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x7f:
			b.WriteRune(r)
		case !text || r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	if text {
		for _, r := range s {
			escape(r)
		}
	} else {
		for i := 0; i < len(s); i++ {
			escape(rune(s[i]))
		}
	}
	b.WriteByte(quote)
	return b.String()
}
