package decompiler

import (
	"errors"
	"slices"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// errHasRejected aborts a speculative `has` rendering.
var errHasRejected = errors.New("has shorthand does not fit")

type slItemKind int

const (
	slKeywords slItemKind = iota
	slChild
	slTransform
)

// slItem is one line-ordered entry of a screen statement's block: a group
// of keywords sharing a line, a child statement, or an `at transform:`.
type slItem struct {
	line  int
	kind  slItemKind
	words []string
	child rpyast.SLNode
	atl   *rpyast.ATLBlock
}

func keywordWords(kw rpyast.SLKeyword) []string {
	if kw.Value == nil {
		return []string{kw.Name}
	}
	return []string{kw.Name, kw.Value.Text}
}

// orderContents merges the keywords, children and transform of a screen
// statement into line order. Keywords on the statement's own line are
// returned separately as the header when onHeader is set. extras must go
// on the header; anywhere may go on any line that has room.
func orderContents(block *rpyast.SLBlock, children []rpyast.SLNode, onHeader bool, start int,
	extras, anywhere []string,
) (header []string, rest []slItem) {
	var groups []slItem
	cur := slItem{line: start, kind: slKeywords}
	for _, kw := range block.Keywords {
		if line := kw.Line(); line > 0 && line > cur.line {
			groups = append(groups, cur)
			cur = slItem{line: line, kind: slKeywords}
		}
		cur.words = append(cur.words, keywordWords(kw)...)
	}
	groups = append(groups, cur)

	var somewhere []string
	if onHeader {
		header = append(slices.Clone(extras), groups[0].words...)
	} else {
		somewhere = append(slices.Clone(extras), groups[0].words...)
	}
	somewhere = append(somewhere, anywhere...)

	rest = groups[1:]
	for _, child := range children {
		rest = append(rest, slItem{line: child.Line(), kind: slChild, child: child})
	}
	if block.ATLTransform != nil {
		line := 0
		if !block.ATLTransform.NoBody {
			line = block.ATLTransform.Line() - 1
		}
		rest = append(rest, slItem{line: line, kind: slTransform, atl: block.ATLTransform})
	}

	// Unknown lines sort last.
	slices.SortStableFunc(rest, func(a, b slItem) int {
		switch {
		case a.line == b.line:
			return 0
		case a.line <= 0:
			return 1
		case b.line <= 0:
			return -1
		}
		return a.line - b.line
	})

	if len(somewhere) == 0 {
		return header, rest
	}
	return header, placeSomewhere(rest, somewhere, start)
}

// placeSomewhere puts keywords without a line into the block: with the
// last keyword line if there is one, otherwise on the first free line.
func placeSomewhere(rest []slItem, words []string, start int) []slItem {
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i].kind == slKeywords {
			rest[i].words = append(rest[i].words, words...)
			return rest
		}
	}

	prev := start
	for i, item := range rest {
		if prev > 0 && item.line > prev+1 {
			gap := slItem{line: prev + 1, kind: slKeywords, words: words}
			return slices.Insert(rest, i, gap)
		}
		if item.line > 0 {
			prev = item.line
		}
	}
	return append(rest, slItem{kind: slKeywords, words: words})
}

// printSLContents writes the header words and then the block. Inside a
// `has` the block continues at the current depth without a colon.
func (d *decompiler) printSLContents(header []string, rest []slItem, onHeader, hasBlock, needsColon bool) error {
	if len(header) > 0 {
		d.write(" " + strings.Join(header, " "))
	}
	if len(rest) == 0 {
		if needsColon {
			d.write(":")
		}
		return nil
	}

	if hasBlock {
		return d.printSLItems(rest)
	}
	if onHeader {
		d.write(":")
	}
	d.depth++
	defer func() { d.depth-- }()
	return d.printSLItems(rest)
}

func (d *decompiler) printSLItems(items []slItem) error {
	for _, item := range items {
		switch item.kind {
		case slKeywords:
			d.advanceToLine(item.line)
			d.writeIndent()
			d.write(strings.Join(item.words, " "))
		case slChild:
			if err := d.printSLNode(item.child); err != nil {
				return err
			}
		case slTransform:
			d.advanceToLine(item.line)
			d.writeIndent()
			d.write("at transform:")
			if err := d.printATL(item.atl); err != nil {
				return err
			}
		}
	}
	return nil
}

// tagWords places a screen's tag according to the options.
func (d *decompiler) tagWords(tag string) (extras, anywhere []string) {
	if tag == "" {
		return nil, nil
	}
	if d.opts.TagPlacement == TagOnHeader {
		return []string{"tag", tag}, nil
	}
	return nil, []string{"tag", tag}
}

func (d *decompiler) printSLScreen(screen *rpyast.SLScreen) error {
	d.writeIndent()
	d.write("screen " + screen.Name + paramString(screen.Parameters))

	extras, anywhere := d.tagWords(screen.Tag)
	header, rest := orderContents(&screen.SLBlock, screen.Children, true, screen.Line(), extras, anywhere)
	return d.printSLContents(header, rest, true, false, false)
}

func (d *decompiler) printSLNode(n rpyast.SLNode) error {
	d.advanceToLine(n.Line())

	switch n := n.(type) {
	case *rpyast.SLDisplayable:
		return d.printSLDisplayable(n, false)
	case *rpyast.SLIf:
		return d.printSLIf(n)
	case *rpyast.SLFor:
		return d.printSLFor(n)
	case *rpyast.SLBlock:
		return d.printSLBlock(n)
	case *rpyast.SLPython:
		d.writeIndent()
		code := n.Code.Source
		if !strings.HasPrefix(code, "\n") {
			d.write("$ " + code)
			return nil
		}
		d.write("python:")
		d.depth++
		d.writeLines(pylex.SplitLogicalLines(code[1:]))
		d.depth--
	case *rpyast.SLPass:
		d.writeIndent()
		d.write("pass")
	case *rpyast.SLUse:
		return d.printSLUse(n)
	case *rpyast.SLTransclude:
		d.writeIndent()
		d.write("transclude")
	case *rpyast.SLDefault:
		d.writeIndent()
		d.write("default " + n.Variable + " = " + n.Expression)
	default:
		d.printUnknown(nodeName(n))
	}
	return nil
}

// printSLBlock writes the body of a statement whose line already ends in
// a colon, or a pass when it is empty.
func (d *decompiler) printSLBlock(block *rpyast.SLBlock) error {
	if len(block.Keywords) == 0 && len(block.Children) == 0 && block.ATLTransform == nil {
		d.depth++
		d.writeIndent()
		d.write("pass")
		d.depth--
		return nil
	}
	_, rest := orderContents(block, block.Children, false, block.Line(), nil, nil)
	return d.printSLContents(nil, rest, false, false, false)
}

func (d *decompiler) printSLIf(n *rpyast.SLIf) error {
	keyword := "if"
	if n.ShowIf {
		keyword = "showif"
	}

	for _, entry := range n.Entries {
		d.advanceToLine(entry.Block.Line())
		d.writeIndent()
		if entry.Condition == nil {
			d.write("else:")
		} else {
			d.write(keyword + " " + *entry.Condition + ":")
			keyword = "elif"
		}
		if err := d.printSLBlock(entry.Block); err != nil {
			return err
		}
	}
	return nil
}

// printSLFor writes a for loop. Tuple targets compile to a loop over
// `_sl2_i` whose first statement unpacks it.
func (d *decompiler) printSLFor(n *rpyast.SLFor) error {
	variable := strings.TrimSpace(n.Variable)
	children := n.Children
	if variable == "_sl2_i" && len(children) > 0 {
		if unpack, ok := children[0].(*rpyast.SLPython); ok {
			variable = strings.TrimSpace(strings.TrimSuffix(unpack.Code.Source, "= _sl2_i"))
			children = children[1:]
		}
	}

	d.writeIndent()
	d.write("for " + variable + " ")
	if n.IndexExpression != "" {
		d.write("index " + n.IndexExpression + " ")
	}
	d.write("in " + n.Expression + ":")

	d.depth++
	defer func() { d.depth-- }()
	if len(children) == 0 {
		d.writeIndent()
		d.write("pass")
		return nil
	}
	for _, child := range children {
		if err := d.printSLNode(child); err != nil {
			return err
		}
	}
	return nil
}

func (d *decompiler) printSLUse(n *rpyast.SLUse) error {
	d.writeIndent()
	d.write("use ")
	args := argString(n.Args)
	if n.TargetIsExpr {
		d.write("expression " + n.Target)
		if args != "" {
			d.write(" pass ")
		}
	} else {
		d.write(n.Target)
	}
	d.write(args)
	if n.ID != "" {
		d.write(" id " + n.ID)
	}

	if n.Block == nil || (len(n.Block.Keywords) == 0 && len(n.Block.Children) == 0 && n.Block.ATLTransform == nil) {
		return nil
	}
	d.write(":")
	return d.printSLBlock(n.Block)
}

// displayableName resolves the statement keyword of a displayable. User
// registered displayables leave no name behind, so unless the options
// name them the style is used and the substitution is logged.
func (d *decompiler) displayableName(n *rpyast.SLDisplayable) DisplayableName {
	short := n.Displayable
	if i := strings.LastIndexByte(short, '.'); i >= 0 {
		short = short[i+1:]
	}
	if name, ok := d.opts.CustomDisplayableNames[n.Displayable]; ok {
		return name
	}
	if name, ok := d.opts.CustomDisplayableNames[short]; ok {
		return name
	}
	if name, ok := displayableNames[displayableKey{n.Displayable, n.Style}]; ok {
		return name
	}

	name := n.Style
	if name == "" {
		name = short
	}
	d.logf("encountered a user-defined displayable of type %q; the name of user-defined displayables "+
		"is not recorded, so %q was substituted. Check the matching renpy.register_sl_displayable call",
		n.Displayable, name)
	return DisplayableName{Name: name, Children: ChildrenMany}
}

func (d *decompiler) printSLDisplayable(n *rpyast.SLDisplayable, hasBlock bool) error {
	name := d.displayableName(n)

	d.writeIndent()
	d.write(name.Name)
	if len(n.Positional) > 0 {
		d.write(" " + strings.Join(n.Positional, " "))
	}

	var extras []string
	if n.Variable != "" {
		extras = []string{"as", n.Variable}
	}

	if !hasBlock && d.canUseHas(n, name) {
		saved := d.save()
		err := d.printSLHas(n, extras)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errHasRejected) {
			return err
		}
		d.restore(saved)
	}

	header, rest := orderContents(&n.SLBlock, n.Children, true, n.Line(), extras, nil)
	return d.printSLContents(header, rest, true, hasBlock, false)
}

// canUseHas reports whether the only child of n may be written as a
// `has` statement: it must take children itself and come after all of
// n's keywords and transform.
func (d *decompiler) canUseHas(n *rpyast.SLDisplayable, name DisplayableName) bool {
	if name.Children != ChildrenOne || len(n.Children) != 1 {
		return false
	}
	child, ok := n.Children[0].(*rpyast.SLDisplayable)
	if !ok || len(child.Children) == 0 {
		return false
	}
	if len(n.Keywords) > 0 && child.Line() <= n.Keywords[len(n.Keywords)-1].Line() {
		return false
	}
	if n.ATLTransform != nil && child.Line() <= n.ATLTransform.Line() {
		return false
	}
	return true
}

// printSLHas writes n with its only child as a `has` statement. It
// returns errHasRejected when the result would not keep the child on its
// own line.
func (d *decompiler) printSLHas(n *rpyast.SLDisplayable, extras []string) error {
	child := n.Children[0].(*rpyast.SLDisplayable)

	header, rest := orderContents(&n.SLBlock, nil, true, n.Line(), extras, nil)
	if err := d.printSLContents(header, rest, true, false, true); err != nil {
		return err
	}
	line := child.Line()
	if line > 0 && d.linenumber >= line {
		return errHasRejected
	}

	d.advanceToLine(line)
	d.depth++
	defer func() { d.depth-- }()
	d.writeIndent()
	d.write("has ")
	d.skipIndentUntilWrite = true

	outerBehind := d.mostLinesBehind
	d.mostLinesBehind = 0
	if err := d.printSLDisplayable(child, true); err != nil {
		return err
	}
	if d.mostLinesBehind > 0 {
		return errHasRejected
	}
	d.mostLinesBehind = outerBehind
	return nil
}
