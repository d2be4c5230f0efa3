package decompiler

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// Legacy screens compile to python in which every statement starts with
// a header `_id = (_parent, index)`. The tree is rebuilt from those.
var (
	reSL1Header  = regexp.MustCompile(`_([0-9]+) = \(_([0-9]+|name), _?([0-9]+)\)`)
	reSL1Counter = regexp.MustCompile(`^ *_[0-9]+ = 0`)
	reSL1Call    = regexp.MustCompile(`^.*?\((.*)\)`)
	reSL1Kwarg   = regexp.MustCompile(`^[a-zA-Z0-9_]+ *=[^=]`)
)

type sl1Handler func(d *decompiler, code string)

type sl1Statement struct {
	prefix  string
	handler sl1Handler
}

// sl1Statements is ordered longest prefix first so `ui.textbutton` is not
// taken for `ui.text`.
var sl1Statements []sl1Statement

func init() {
	add := func(h sl1Handler, prefixes ...string) {
		for _, p := range prefixes {
			sl1Statements = append(sl1Statements, sl1Statement{p, h})
		}
	}
	add((*decompiler).printSL1If, "if")
	add((*decompiler).printSL1For, "for")
	add((*decompiler).printSL1Use, "renpy.use_screen")
	add((*decompiler).printSL1Default, "_scope.setdefault")
	add((*decompiler).printSL1Hotspot, "ui.hotspot_with_child")
	add((*decompiler).printSL1NoChild,
		"ui.add", "ui.imagebutton", "ui.input", "ui.key", "ui.label", "ui.text", "ui.null",
		"ui.mousearea", "ui.textbutton", "ui.timer", "ui.bar", "ui.vbar", "ui.hotbar")
	add((*decompiler).printSL1OneChild,
		"ui.button", "ui.frame", "ui.transform", "ui.viewport", "ui.window", "ui.drag")
	add((*decompiler).printSL1ManyChildren,
		"ui.fixed", "ui.grid", "ui.hbox", "ui.side", "ui.vbox", "ui.imagemap", "ui.draggroup")

	slices.SortStableFunc(sl1Statements, func(a, b sl1Statement) int {
		return len(b.prefix) - len(a.prefix)
	})
}

func (d *decompiler) printSL1Screen(screen *rpyast.SL1Screen) {
	d.writeIndent()
	d.write("screen " + screen.Name + paramString(screen.Parameters) + ":")

	d.depth++
	defer func() { d.depth-- }()
	start := d.buf.Len()

	if screen.Tag != "" {
		d.writeIndent()
		d.write("tag " + screen.Tag)
	}
	if screen.Zorder != "" && screen.Zorder != "0" {
		d.writeIndent()
		d.write("zorder " + pylex.Guard(screen.Zorder))
	}
	if screen.Modal != "" {
		d.writeIndent()
		d.write("modal " + pylex.Guard(screen.Modal))
	}
	if screen.Variant != "" && screen.Variant != "None" {
		d.writeIndent()
		d.write("variant " + pylex.Guard(screen.Variant))
	}

	switch {
	case !screen.HasCode:
		d.writeIndent()
		d.write("pass # Screen code not extracted")
	case d.opts.DecompileEmbeddedCode:
		var lines []string
		for _, line := range strings.Split(screen.Code, "\n") {
			if strings.TrimSpace(line) != "ui.close()" {
				lines = append(lines, line)
			}
		}
		d.printSL1Nodes(strings.Join(lines, "\n"), 0)
	default:
		d.writeIndent()
		d.write("python:")
		d.depth++
		for _, line := range strings.Split(strings.TrimRight(screen.Code, "\n"), "\n") {
			d.writeIndent()
			d.write(line)
		}
		d.depth--
	}

	if d.buf.Len() == start {
		d.writeIndent()
		d.write("pass")
	}
}

// sl1Header parses a statement header into its id, parent id and index.
func sl1Header(line string) (id, parent, index string, ok bool) {
	m := reSL1Header.FindStringSubmatch(line)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// printSL1Nodes prints the statements of one block. The first line is a
// header naming the block's parent; every sibling starts with a header
// with the same parent.
func (d *decompiler) printSL1Nodes(code string, extraIndent int) {
	header, _, found := strings.Cut(code, "\n")
	if !found {
		return
	}
	_, parent, _, ok := sl1Header(header)
	if !ok {
		d.printSL1Python(code)
		return
	}

	d.depth += extraIndent
	defer func() { d.depth -= extraIndent }()

	sibling := regexp.MustCompile(` *_[0-9]+ = \(_` + regexp.QuoteMeta(parent) + `, _?[0-9]+\) *\n?`)
	headers := sibling.FindAllStringIndex(code, -1)
	for i, h := range headers {
		end := len(code)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		d.printSL1Node(code[h[1]:end])
	}
}

func (d *decompiler) printSL1Node(code string) {
	// for loops add a counter line before the statement.
	if reSL1Counter.MatchString(code) {
		_, code, _ = strings.Cut(code, "\n")
	}

	trimmed := strings.TrimLeft(code, " \t\n")
	for _, st := range sl1Statements {
		if strings.HasPrefix(trimmed, st.prefix) {
			st.handler(d, code)
			return
		}
	}
	d.printSL1Python(code)
}

// printSL1Python is the fallback for code that is not a screen
// statement: a `$` line or a python block.
func (d *decompiler) printSL1Python(code string) {
	d.writeIndent()

	trimmed := strings.TrimSpace(code)
	if !strings.Contains(trimmed, "\n") {
		d.write("$ " + trimmed)
		return
	}

	lines := splitLines(code)
	codeIndent := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			codeIndent = len(line) - len(strings.TrimLeft(line, " \t"))
			break
		}
	}

	d.write("python:")
	d.depth++
	defer func() { d.depth-- }()
	for _, line := range lines {
		d.writeIndent()
		if len(line) >= codeIndent {
			line = line[codeIndent:]
		} else {
			line = strings.TrimLeft(line, " \t")
		}
		d.write(line)
	}
}

// printSL1Condition writes an if, elif or for header from its python
// line, dropping the parentheses the compiler adds.
func (d *decompiler) printSL1Condition(keyword, line string) {
	cond := line
	if i := strings.LastIndex(cond, ":"); i >= 0 {
		cond = cond[:i]
	}
	if _, after, ok := strings.Cut(cond, keyword); ok {
		cond = after
	}
	cond = strings.TrimSpace(cond)

	if keyword == "for" {
		variables, expression, _ := strings.Cut(cond, " in ")
		variables = strings.TrimSpace(variables)
		if strings.HasPrefix(variables, "(") && strings.HasSuffix(variables, ")") {
			variables = variables[1 : len(variables)-1]
		}
		cond = variables + " in " + expression
	} else if strings.HasPrefix(cond, "(") && strings.HasSuffix(cond, ")") {
		cond = cond[1 : len(cond)-1]
	}
	d.write(keyword + " " + cond + ":")
}

// printSL1Block prints the lines under an if branch or a for loop.
func (d *decompiler) printSL1Block(block []string) {
	switch {
	case len(block) > 2 && isSL1Header(block[0]) && isSL1Header(block[1]):
		d.printSL1Nodes(strings.Join(block[1:], "\n"), 1)
	case len(block) > 1 && isSL1Header(block[0]):
		d.printSL1Nodes(strings.Join(block, "\n"), 1)
	default:
		d.printSL1Pass()
	}
}

// printSL1Pass fills a block that would otherwise be empty.
func (d *decompiler) printSL1Pass() {
	d.depth++
	d.writeIndent()
	d.write("pass")
	d.depth--
}

// printSL1Children writes the children of a statement whose header ends
// in a colon, falling back to pass when the block has nothing in it.
func (d *decompiler) printSL1Children(block string, hasKeywords bool) {
	mark := d.buf.Len()
	d.printSL1Nodes(block, 1)
	if !hasKeywords && d.buf.Len() == mark {
		d.printSL1Pass()
	}
}

// splitLines splits code into lines; a final newline does not start an
// empty line.
func splitLines(code string) []string {
	return strings.Split(strings.TrimSuffix(code, "\n"), "\n")
}

func isSL1Header(line string) bool {
	_, _, _, ok := sl1Header(line)
	return ok
}

func (d *decompiler) printSL1If(code string) {
	lines := splitLines(code)
	// An if inside python code has no header below it.
	if len(lines) < 2 || !isSL1Header(lines[1]) {
		d.printSL1Python(code)
		return
	}

	d.writeIndent()
	ifIndent := len(lines[0]) - len(strings.TrimLeft(lines[0], " "))
	var current []string
	for i, line := range lines {
		rest := line
		if len(rest) >= ifIndent {
			rest = rest[ifIndent:]
		}
		switch {
		case i == 0:
			d.printSL1Condition("if", line)
		case strings.HasPrefix(rest, "elif"):
			d.printSL1Block(current)
			d.writeIndent()
			d.printSL1Condition("elif", line)
			current = nil
		case strings.HasPrefix(rest, "else"):
			d.printSL1Block(current)
			d.writeIndent()
			d.write("else:")
			current = nil
		case i == len(lines)-1:
			current = append(current, line)
			d.printSL1Block(current)
		default:
			current = append(current, line)
		}
	}
}

func (d *decompiler) printSL1For(code string) {
	lines := splitLines(code)
	if len(lines) < 2 || !isSL1Header(lines[1]) {
		d.printSL1Python(code)
		return
	}

	d.writeIndent()
	d.printSL1Condition("for", lines[0])
	// The last line advances the loop counter.
	d.printSL1Block(lines[1 : len(lines)-1])
}

func (d *decompiler) printSL1Use(code string) {
	args := parseSL1Args(strings.TrimSpace(code))
	args.kwargs = slices.DeleteFunc(args.kwargs, func(kw sl1Kwarg) bool {
		return kw.name == "_scope" || kw.name == "_name"
	})
	if len(args.positional) == 0 {
		d.printSL1Python(code)
		return
	}

	d.writeIndent()
	d.write("use " + unquoteScreenName(args.positional[0]))

	var list []string
	list = append(list, args.positional[1:]...)
	for _, kw := range args.kwargs {
		list = append(list, kw.name+"="+kw.value)
	}
	if args.star != "" {
		list = append(list, "*"+args.star)
	}
	if args.doubleStar != "" {
		list = append(list, "**"+args.doubleStar)
	}
	if len(list) > 0 {
		d.write("(" + strings.Join(list, ", ") + ")")
	}
}

// unquoteScreenName turns the string literal naming a used screen back
// into a name.
func unquoteScreenName(s string) string {
	s = strings.TrimLeft(s, "ubrUBR")
	return strings.Trim(s, `'"`)
}

func (d *decompiler) printSL1Default(code string) {
	args := parseSL1Args(strings.TrimSpace(code))
	if len(args.positional) < 2 {
		d.printSL1Python(code)
		return
	}
	d.writeIndent()
	d.write("default " + strings.Trim(args.positional[0], `'"`) + " = " + args.positional[1])
}

func (d *decompiler) printSL1Hotspot(code string) {
	line, block, _ := strings.Cut(strings.TrimLeft(code, "\n"), "\n")
	d.writeIndent()
	d.write("hotspot")
	hasKeywords := d.printSL1Arguments(parseSL1Args(line), true)
	d.printSL1Children(block, hasKeywords)
}

// sl1Name extracts `text` from `ui.text(...)`.
func sl1Name(line string) string {
	_, name, _ := strings.Cut(line, "ui.")
	name, _, _ = strings.Cut(name, "(")
	return name
}

func (d *decompiler) printSL1NoChild(code string) {
	line, _, _ := strings.Cut(strings.TrimLeft(code, "\n"), "\n")
	d.writeIndent()
	d.write(sl1Name(line))
	d.printSL1Arguments(parseSL1Args(line), false)
}

func (d *decompiler) printSL1OneChild(code string) {
	line, block, _ := strings.Cut(strings.TrimLeft(code, "\n"), "\n")
	d.writeIndent()
	d.write(sl1Name(line))
	hasKeywords := d.printSL1Arguments(parseSL1Args(line), true)

	// Displayables taking one child wrap several in a fixed.
	if first, rest, ok := strings.Cut(block, "\n"); ok && strings.Contains(first, "ui.child_or_fixed()") {
		block = rest
	}
	d.printSL1Children(block, hasKeywords)
}

func (d *decompiler) printSL1ManyChildren(code string) {
	line, block, _ := strings.Cut(strings.TrimLeft(code, "\n"), "\n")
	d.writeIndent()
	d.write(sl1Name(line))
	hasKeywords := d.printSL1Arguments(parseSL1Args(line), true)
	d.printSL1Children(block, hasKeywords)
}

// printSL1Arguments writes positional arguments on the statement line and
// keywords in a block. Keywords Ren'Py adds itself are dropped. It
// reports whether any keyword was written.
func (d *decompiler) printSL1Arguments(args sl1Args, multiline bool) bool {
	for _, a := range args.positional {
		if a != "" {
			d.write(" " + pylex.Guard(a))
		}
	}

	kwargs := slices.DeleteFunc(slices.Clone(args.kwargs), func(kw sl1Kwarg) bool {
		return (kw.name == "id" && strings.HasPrefix(kw.value, "_")) ||
			(kw.name == "scope" && kw.value == "_scope")
	})

	if !multiline && len(kwargs) == 0 {
		return false
	}
	d.write(":")
	d.depth++
	defer func() { d.depth-- }()
	for _, kw := range kwargs {
		d.writeIndent()
		d.write(fmt.Sprintf("%s %s", kw.name, pylex.Guard(kw.value)))
	}
	return len(kwargs) > 0
}

type sl1Kwarg struct {
	name  string
	value string
}

// sl1Args is a call's argument text split into its groups.
type sl1Args struct {
	positional []string
	kwargs     []sl1Kwarg
	star       string
	doubleStar string
}

// parseSL1Args splits the arguments of the call in s on top level commas,
// tracking brackets and string literals.
func parseSL1Args(s string) sl1Args {
	if m := reSL1Call.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	var parts []string
	var current strings.Builder
	stack := []rune{0}
	backslashes := 0
	for _, r := range s {
		top := stack[len(stack)-1]
		inString := top == '\'' || top == '"'
		switch {
		case r == '\'' || r == '"':
			if !inString {
				stack = append(stack, r)
			} else if r == top && backslashes%2 == 0 {
				stack = stack[:len(stack)-1]
			}
		case inString:
		case r == '[' || r == '(' || r == '{':
			stack = append(stack, r)
		case r == ']' || r == ')' || r == '}':
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}

		if r == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}

		if len(stack) == 1 && r == ',' {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	parts = append(parts, strings.TrimSpace(current.String()))

	var args sl1Args
	for _, part := range parts {
		switch {
		case reSL1Kwarg.MatchString(part):
			name, value, _ := strings.Cut(part, "=")
			args.kwargs = append(args.kwargs, sl1Kwarg{strings.TrimSpace(name), strings.TrimSpace(value)})
		case strings.HasPrefix(part, "**"):
			args.doubleStar = part[2:]
		case strings.HasPrefix(part, "*"):
			args.star = part[1:]
		default:
			args.positional = append(args.positional, part)
		}
	}
	return args
}
