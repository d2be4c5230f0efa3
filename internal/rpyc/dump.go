package rpyc

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pickle"
)

// Dump writes the raw object graph of an archive as an indented
// attribute tree: objects as `<module.Class .attr = value, ...>`,
// containers with one element per line.
func Dump(w io.Writer, v pickle.Value) error {
	d := &dumper{w: w, line: 1, indent: "    "}
	d.value(v)
	d.p("\n")
	return d.err
}

type dumper struct {
	w      io.Writer
	err    error
	line   int
	depth  int
	indent string

	// objects on the current path, for cycle detection
	passed      []any
	passedLines []int
}

func (d *dumper) p(s string) {
	if d.err != nil {
		return
	}
	d.line += strings.Count(s, "\n")
	_, d.err = io.WriteString(d.w, s)
}

// ind starts a new line, shifting the indentation by diff. Containers of
// zero or one element stay on one line.
func (d *dumper) ind(diff, n int) {
	if n >= 0 && n <= 1 {
		return
	}
	d.depth += diff
	d.p("\n" + strings.Repeat(d.indent, d.depth))
}

func identity(v pickle.Value) any {
	switch v := v.(type) {
	case *pickle.List, *pickle.Dict, *pickle.Set, *pickle.Object:
		return v
	}
	return nil
}

func (d *dumper) value(v pickle.Value) {
	if id := identity(v); id != nil {
		if i := slices.Index(d.passed, id); i >= 0 {
			d.p(fmt.Sprintf("<circular reference to object on line %d>", d.passedLines[i]))
			return
		}
		d.passed = append(d.passed, id)
		d.passedLines = append(d.passedLines, d.line)
		defer func() {
			d.passed = d.passed[:len(d.passed)-1]
			d.passedLines = d.passedLines[:len(d.passedLines)-1]
		}()
	}

	switch v := v.(type) {
	case nil, pickle.None:
		d.p("None")
	case bool:
		if v {
			d.p("True")
		} else {
			d.p("False")
		}
	case int64:
		d.p(strconv.FormatInt(v, 10))
	case *big.Int:
		d.p(v.String())
	case float64:
		d.p(pyFloat(v))
	case string:
		d.str(v, "")
	case pickle.Bytes:
		d.str(string(v), "b")
	case pickle.Tuple:
		d.seq("(", ")", v)
	case *pickle.List:
		d.seq("[", "]", v.Items)
	case *pickle.Set:
		if v.Frozen {
			d.seq("frozenset({", "})", v.Items)
		} else {
			d.seq("{", "}", v.Items)
		}
	case *pickle.Dict:
		d.dict(v.Entries)
	case *pickle.Global:
		d.p("<class " + v.String() + ">")
	case *pickle.Object:
		d.object(v)
	default:
		d.p(pickle.TypeName(v))
	}
}

func (d *dumper) seq(open, close string, items []pickle.Value) {
	d.p(open)
	d.ind(1, len(items))
	for i, item := range items {
		d.value(item)
		if i+1 != len(items) {
			d.p(",")
			d.ind(0, -1)
		}
	}
	d.ind(-1, len(items))
	d.p(close)
}

func (d *dumper) dict(entries []pickle.Entry) {
	d.p("{")
	d.ind(1, len(entries))
	for i, e := range entries {
		d.value(e.Key)
		d.p(": ")
		d.value(e.Value)
		if i+1 != len(entries) {
			d.p(",")
			d.ind(0, -1)
		}
	}
	d.ind(-1, len(entries))
	d.p("}")
}

// str prints a string literal; text spanning lines prints as a triple
// quoted block.
func (d *dumper) str(s, prefix string) {
	if !strings.Contains(s, "\n") {
		d.p(prefix + quotePy(s, prefix == ""))
		return
	}
	d.p(prefix + `"""`)
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			d.p("\n")
		}
		quoted := quotePy(line, prefix == "")
		d.p(quoted[1 : len(quoted)-1])
	}
	d.p(`"""`)
	d.ind(0, -1)
}

type dumpAttr struct {
	name  string
	value pickle.Value
}

// objectAttrs collects the public attributes of o, sorted by name.
func objectAttrs(o *pickle.Object) []dumpAttr {
	var attrs []dumpAttr
	add := func(entries []pickle.Entry) {
		for _, e := range entries {
			name, ok := pickle.AsString(e.Key)
			if !ok || strings.HasPrefix(name, "_") {
				continue
			}
			attrs = append(attrs, dumpAttr{name, e.Value})
		}
	}
	switch state := o.State.(type) {
	case *pickle.Dict:
		add(state.Entries)
	case pickle.Tuple:
		for _, part := range state {
			if dict, ok := part.(*pickle.Dict); ok {
				add(dict.Entries)
			}
		}
	}
	slices.SortStableFunc(attrs, func(a, b dumpAttr) int { return strings.Compare(a.name, b.name) })
	return attrs
}

func (d *dumper) object(o *pickle.Object) {
	// list and dict subclasses print as their contents
	if o.ListItems != nil {
		d.p("<class " + className(o) + ">")
		d.seq("[", "]", o.ListItems)
		return
	}
	if o.DictItems != nil {
		d.p("<class " + className(o) + ">")
		d.dict(o.DictItems)
		return
	}

	attrs := objectAttrs(o)
	// str subclasses such as PyExpr keep their text and location as
	// constructor arguments.
	var text pickle.Value
	if len(o.Args) > 0 && attrs == nil {
		if _, ok := pickle.AsString(o.Args[0]); ok {
			text = o.Args[0]
			if len(o.Args) >= 3 {
				attrs = []dumpAttr{{"filename", o.Args[1]}, {"linenumber", o.Args[2]}}
			}
		}
	}
	if attrs == nil && text == nil && o.State != nil {
		attrs = []dumpAttr{{"state", o.State}}
	}

	d.p("<" + className(o))
	if len(attrs) == 1 {
		d.p(" ")
	}
	d.ind(1, len(attrs))
	for i, a := range attrs {
		d.p("." + a.name + " = ")
		d.value(a.value)
		if i+1 != len(attrs) {
			d.p(",")
			d.ind(0, -1)
		}
	}
	d.ind(-1, len(attrs))
	d.p(">")

	if text != nil {
		d.p(" = ")
		d.value(text)
	}
}
