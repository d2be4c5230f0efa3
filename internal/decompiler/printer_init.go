package decompiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// Default init priorities of statements that get an implicit init block.
const (
	screenPriority   = -500
	testcasePriority = 500
	imagePriority    = 500
	// Ren'Py before 6.99.12 put images at 990. Both are accepted when
	// deciding whether an init block was implicit.
	legacyImagePriority = 990
)

func (d *decompiler) printInit(c *stmtCursor, n rpyast.Node) error {
	init := n.(*rpyast.Init)

	outerInInit := d.inInit
	d.inInit = true
	defer func() { d.inInit = outerInInit }()

	if d.isImplicitInit(init) || d.isTranslateStringsInit(init) {
		return d.printBlock(c, init.Block, 0)
	}

	d.writeIndent()
	d.write("init")
	if init.Priority != d.initOffset {
		d.write(fmt.Sprintf(" %d", init.Priority-d.initOffset))
	}

	// The one line form only fits a child that starts on the init's own
	// line; advancing to a later one would break the line.
	if len(init.Block) == 1 && init.Line() >= init.Block[0].Line() {
		d.write(" ")
		d.skipIndentUntilWrite = true
		return d.printBlock(c, init.Block, 0)
	}
	d.write(":")
	return d.printBlock(c, init.Block, 1)
}

// isImplicitInit reports whether init is the wrapper the compiler adds
// around a single statement that always runs at init time.
func (d *decompiler) isImplicitInit(init *rpyast.Init) bool {
	if len(init.Block) != 1 || d.shouldComeBefore(init, init.Block[0]) {
		return false
	}

	priority := init.Priority - d.initOffset
	switch child := init.Block[0].(type) {
	case *rpyast.Define, *rpyast.Default, *rpyast.Transform:
		return true
	case *rpyast.Screen:
		return priority == screenPriority
	case *rpyast.Style:
		return priority == 0
	case *rpyast.Testcase:
		return priority == testcasePriority
	case *rpyast.UserStatement:
		return priority == 0 && strings.HasPrefix(child.Text, "layeredimage ")
	case *rpyast.Image:
		return priority == imagePriority || priority == legacyImagePriority
	}
	return false
}

// isTranslateStringsInit reports whether init only wraps translate
// strings of one language, which the compiler splits out of the script.
func (d *decompiler) isTranslateStringsInit(init *rpyast.Init) bool {
	if len(init.Block) == 0 || init.Priority != d.initOffset {
		return false
	}
	first, ok := init.Block[0].(*rpyast.TranslateString)
	if !ok {
		return false
	}
	for _, n := range init.Block[1:] {
		ts, ok := n.(*rpyast.TranslateString)
		if !ok || !sameLanguage(ts.Language, first.Language) {
			return false
		}
	}
	return true
}

// impliedPriority returns the ` N` priority suffix for a statement that
// sits alone in an init block with a non-default priority.
func (d *decompiler) impliedPriority(c *stmtCursor, n rpyast.Node) string {
	parent, ok := c.parentNode()
	if !ok {
		return ""
	}
	init, ok := parent.(*rpyast.Init)
	if !ok || init.Priority == d.initOffset || len(init.Block) != 1 || d.shouldComeBefore(init, n) {
		return ""
	}
	return fmt.Sprintf(" %d", init.Priority-d.initOffset)
}

// printDefine handles both define and default.
func (d *decompiler) printDefine(c *stmtCursor, n rpyast.Node) error {
	d.requireInit()

	var keyword, varname, store, operator string
	var code string
	var index *rpyast.PyCode
	switch n := n.(type) {
	case *rpyast.Define:
		keyword, varname, store, operator = "define", n.Varname, n.Store, n.Operator
		code, index = n.Code.Source, n.Index
	case *rpyast.Default:
		keyword, varname, store = "default", n.Varname, n.Store
		code = n.Code.Source
	}
	if operator == "" {
		operator = "="
	}

	d.writeIndent()
	d.write(keyword + d.impliedPriority(c, n) + " ")
	if store != "" && store != "store" {
		d.write(strings.TrimPrefix(store, "store.") + ".")
	}
	d.write(varname)
	if index != nil {
		d.write("[" + index.Source + "]")
	}
	d.write(" " + operator + " " + code)
	return nil
}

func (d *decompiler) printPython(_ *stmtCursor, n rpyast.Node) error {
	python := n.(*rpyast.Python)
	d.writeIndent()

	code := python.Code.Source
	if code != "" && code[0] != '\n' {
		d.write("$ " + code)
		return nil
	}

	d.write("python")
	if python.Early {
		d.write(" early")
	}
	if python.Hide {
		d.write(" hide")
	}
	if python.Store != "" && python.Store != "store" {
		d.write(" in " + strings.TrimPrefix(python.Store, "store."))
	}
	d.write(":")

	d.depth++
	defer func() { d.depth-- }()
	if code == "" {
		d.writeIndent()
		d.write("pass")
		return nil
	}
	d.writeLines(pylex.SplitLogicalLines(code[1:]))
	return nil
}

func (d *decompiler) printStyle(_ *stmtCursor, n rpyast.Node) error {
	style := n.(*rpyast.Style)
	d.requireInit()

	groups := map[int]*pylex.WordJoiner{
		style.Line(): pylex.NewWordJoiner(false, true),
	}
	group := func(line int) *pylex.WordJoiner {
		g, ok := groups[line]
		if !ok {
			g = pylex.NewWordJoiner(false, false)
			groups[line] = g
		}
		return g
	}

	// These carry no line of their own and stay on the header.
	header := groups[style.Line()]
	if style.Parent != "" {
		header.Append("is " + style.Parent)
	}
	if style.Clear {
		header.Append("clear")
	}
	if style.Take != "" {
		header.Append("take " + style.Take)
	}
	for _, name := range style.Delattr {
		header.Append("del " + name)
	}

	if style.Variant != nil {
		group(style.Variant.Linenumber).Append("variant " + style.Variant.Text)
	}
	for _, prop := range style.Properties {
		group(prop.Value.Linenumber).Append(prop.Name + " " + prop.Value.Text)
	}

	lines := make([]int, 0, len(groups))
	for line := range groups {
		lines = append(lines, line)
	}
	slices.Sort(lines)

	d.writeIndent()
	d.write("style " + style.Name)
	if first := groups[lines[0]].Join(); first != "" {
		d.write(" " + first)
	}
	if len(lines) == 1 {
		return nil
	}

	d.write(":")
	d.depth++
	defer func() { d.depth-- }()
	for _, line := range lines[1:] {
		d.advanceToLine(line)
		d.writeIndent()
		d.write(groups[line].Join())
	}
	return nil
}

func (d *decompiler) printUserStatement(_ *stmtCursor, n rpyast.Node) error {
	stmt := n.(*rpyast.UserStatement)
	d.writeIndent()
	d.write(stmt.Text)
	d.printLex(stmt.Block)
	return nil
}

// printLex writes the raw block lines a user statement parsed itself.
func (d *decompiler) printLex(block []rpyast.LexLine) {
	if len(block) == 0 {
		return
	}
	d.depth++
	defer func() { d.depth-- }()
	for _, line := range block {
		d.advanceToLine(line.Linenumber)
		d.writeIndent()
		d.write(line.Text)
		d.printLex(line.Block)
	}
}

func (d *decompiler) printRPY(_ *stmtCursor, n rpyast.Node) error {
	rpy := n.(*rpyast.RPY)
	d.writeIndent()
	d.write("rpy " + strings.Join(rpy.Rest, " "))
	return nil
}

// setBestInitOffset picks the init offset that saves the most priority
// annotations at top level, and schedules the `init offset` statement
// for the first blank line.
func (d *decompiler) setBestInitOffset(block []rpyast.Node) {
	votes := map[int]int{}
	var order []int
	for _, n := range block {
		init, ok := n.(*rpyast.Init)
		if !ok {
			continue
		}
		offset := init.Priority
		if len(init.Block) == 1 && !d.shouldComeBefore(init, init.Block[0]) {
			switch init.Block[0].(type) {
			case *rpyast.Screen:
				offset -= screenPriority
			case *rpyast.Testcase:
				offset -= testcasePriority
			case *rpyast.Image:
				offset -= imagePriority
			}
		}
		if _, seen := votes[offset]; !seen {
			order = append(order, offset)
		}
		votes[offset]++
	}
	if len(order) == 0 {
		return
	}

	winner := order[0]
	for _, offset := range order[1:] {
		if votes[offset] > votes[winner] {
			winner = offset
		}
	}
	// Only worth it if it saves more than one annotation.
	if votes[0]+1 < votes[winner] {
		d.setInitOffset(winner)
	}
}

func (d *decompiler) setInitOffset(offset int) {
	d.whenBlankLine(func(line int, final bool) bool {
		// At the end of the file it would apply to nothing.
		if final || line-d.linenumber <= 1 || d.depth > 0 {
			return true
		}
		if offset != d.initOffset {
			d.writeIndent()
			d.write(fmt.Sprintf("init offset = %d", offset))
		}
		d.initOffset = offset
		return false
	})
}

func sameLanguage(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
