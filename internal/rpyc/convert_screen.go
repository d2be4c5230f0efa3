package rpyc

import (
	"github.com/grindlemire/go-unrpyc/internal/pickle"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// screen converts the body of a screen statement, or returns nil when it
// is neither a structured nor a legacy screen.
func (c *converter) screen(v pickle.Value) rpyast.ScreenDef {
	o := c.object(v, "screen")
	if o == nil {
		return nil
	}
	switch {
	case o.Is(sl2Module, "SLScreen"):
		return &rpyast.SLScreen{
			SLBlock:    c.slBlock(o),
			Name:       c.str(o, "name"),
			Parameters: c.params(attr(o, "parameters")),
			Tag:        c.str(o, "tag"),
		}
	case o.Is(sl1Module, "ScreenLangScreen"):
		return c.sl1Screen(o)
	}
	return nil
}

func (c *converter) sl1Screen(o *pickle.Object) *rpyast.SL1Screen {
	screen := &rpyast.SL1Screen{
		Name:       c.str(o, "name"),
		Parameters: c.params(attr(o, "parameters")),
		Tag:        c.str(o, "tag"),
		Zorder:     c.exprText(attr(o, "zorder"), "ScreenLangScreen.zorder"),
		Modal:      c.exprText(attr(o, "modal"), "ScreenLangScreen.modal"),
		Variant:    c.exprText(attr(o, "variant"), "ScreenLangScreen.variant"),
	}

	code := attr(o, "code")
	if pickle.IsNone(code) {
		return screen
	}
	source, loc, _ := c.pyCodeParts(code, "ScreenLangScreen.code")
	screen.Loc = loc
	if s, ok := pickle.AsString(source); ok {
		screen.Code, screen.HasCode = s, true
		return screen
	}
	// The screen compiler stores a syntax tree rather than text. Screens
	// using syntax outside what it generates keep their code unextracted.
	if s, err := pySource(source); err == nil {
		screen.Code, screen.HasCode = s, true
	}
	return screen
}

// slBlock reads the fields every structured screen block shares.
func (c *converter) slBlock(o *pickle.Object) rpyast.SLBlock {
	block := rpyast.SLBlock{
		Loc:          c.tupleLoc(attr(o, "location")),
		ATLTransform: c.atlBlock(attr(o, "atl_transform")),
	}
	for _, item := range c.list(attr(o, "keyword"), "screen keywords") {
		pair := c.tuple(item, 2, "screen keyword")
		block.Keywords = append(block.Keywords, rpyast.SLKeyword{
			Name:  c.text(pair[0], "screen keyword name"),
			Value: c.pyExpr(pair[1], "screen keyword value"),
		})
	}
	for _, child := range c.list(attr(o, "children"), "screen children") {
		if n := c.slNode(child); n != nil {
			block.Children = append(block.Children, n)
		}
	}
	return block
}

func (c *converter) slBlockPtr(v pickle.Value) *rpyast.SLBlock {
	if pickle.IsNone(v) {
		return nil
	}
	o := c.object(v, "screen block")
	if o == nil {
		return nil
	}
	block := c.slBlock(o)
	return &block
}

func (c *converter) slNode(v pickle.Value) rpyast.SLNode {
	o := c.object(v, "screen statement")
	if o == nil {
		return nil
	}
	if o.Class.Module != sl2Module {
		return opaque(c, o)
	}

	loc := c.tupleLoc(attr(o, "location"))
	switch o.Class.Name {
	case "SLDisplayable":
		return c.slDisplayable(o)
	case "SLIf", "SLShowIf":
		n := &rpyast.SLIf{Loc: loc, ShowIf: o.Class.Name == "SLShowIf"}
		for _, item := range c.list(attr(o, "entries"), "screen if entries") {
			pair := c.tuple(item, 2, "screen if entry")
			entry := rpyast.SLIfEntry{Block: c.slBlockPtr(pair[1])}
			if !pickle.IsNone(pair[0]) {
				cond := c.exprText(pair[0], "screen if condition")
				entry.Condition = &cond
			}
			n.Entries = append(n.Entries, entry)
		}
		return n
	case "SLBlock":
		block := c.slBlock(o)
		return &block
	case "SLFor":
		return &rpyast.SLFor{
			SLBlock:         c.slBlock(o),
			Variable:        c.str(o, "variable"),
			Expression:      c.exprText(attr(o, "expression"), "SLFor.expression"),
			IndexExpression: c.exprText(attr(o, "index_expression"), "SLFor.index_expression"),
		}
	case "SLPython":
		return &rpyast.SLPython{Loc: loc, Code: c.pyCode(attr(o, "code"), "SLPython.code")}
	case "SLPass":
		return &rpyast.SLPass{Loc: loc}
	case "SLUse":
		target := attr(o, "target")
		_, isExpr := target.(*pickle.Object)
		return &rpyast.SLUse{
			Loc:          loc,
			Target:       c.exprText(target, "SLUse.target"),
			TargetIsExpr: isExpr,
			Args:         c.args(attr(o, "args")),
			ID:           c.exprText(attr(o, "id"), "SLUse.id"),
			Block:        c.slBlockPtr(attr(o, "block")),
		}
	case "SLTransclude":
		return &rpyast.SLTransclude{Loc: loc}
	case "SLDefault":
		return &rpyast.SLDefault{
			Loc:        loc,
			Variable:   c.str(o, "variable"),
			Expression: c.exprText(attr(o, "expression"), "SLDefault.expression"),
		}
	}
	return opaque(c, o)
}

func (c *converter) slDisplayable(o *pickle.Object) *rpyast.SLDisplayable {
	n := &rpyast.SLDisplayable{
		SLBlock:      c.slBlock(o),
		Style:        styleTag(attr(o, "style")),
		Positional:   c.exprTexts(attr(o, "positional"), "SLDisplayable.positional"),
		Variable:     c.str(o, "variable"),
		ChildOrFixed: pickle.AsBool(attr(o, "child_or_fixed")),
	}
	switch fn := attr(o, "displayable").(type) {
	case *pickle.Global:
		n.Displayable = fn.String()
	case *pickle.Object:
		// a class reference that went through a reduce
		n.Displayable = className(fn)
	default:
		c.fail("SLDisplayable.displayable is a %s, want a global", pickle.TypeName(fn))
	}
	return n
}

// testBlock converts the body of a testcase, which is wrapped in a test
// Block node.
func (c *converter) testBlock(v pickle.Value) []rpyast.TestNode {
	if o, ok := v.(*pickle.Object); ok && o.Is(testastModule, "Block") {
		v = attr(o, "block")
	}
	var out []rpyast.TestNode
	for _, item := range c.list(v, "test block") {
		if n := c.testNode(item); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (c *converter) testNode(v pickle.Value) rpyast.TestNode {
	if pickle.IsNone(v) {
		return nil
	}
	o := c.object(v, "test statement")
	if o == nil {
		return nil
	}
	if o.Class.Module != testastModule {
		return opaque(c, o)
	}

	loc := c.loc(o)
	switch o.Class.Name {
	case "Python":
		return &rpyast.TestPython{Loc: loc, Code: c.pyCode(attr(o, "code"), "test Python.code")}
	case "If":
		return &rpyast.TestIf{Loc: loc, Condition: c.exprText(attr(o, "condition"), "test If.condition"), Block: c.testBlock(attr(o, "block"))}
	case "Assert":
		return &rpyast.TestAssert{Loc: loc, Expr: c.exprText(attr(o, "expr"), "test Assert.expr")}
	case "Jump":
		return &rpyast.TestJump{Loc: loc, Target: c.str(o, "target")}
	case "Call":
		return &rpyast.TestCall{Loc: loc, Target: c.str(o, "target")}
	case "Action":
		return &rpyast.TestAction{Loc: loc, Expr: c.exprText(attr(o, "expr"), "test Action.expr")}
	case "Pause":
		return &rpyast.TestPause{Loc: loc, Expr: c.exprText(attr(o, "expr"), "test Pause.expr")}
	case "Label":
		return &rpyast.TestLabel{Loc: loc, Name: c.str(o, "name")}
	case "Type":
		return &rpyast.TestType{
			Loc:      loc,
			Keys:     c.strings(attr(o, "keys"), "test Type.keys"),
			Pattern:  c.optStr(o, "pattern"),
			Position: c.optExpr(o, "position"),
		}
	case "Drag":
		return &rpyast.TestDrag{
			Loc:     loc,
			Points:  c.exprText(attr(o, "points"), "test Drag.points"),
			Button:  c.integer(o, "button", 1),
			Pattern: c.optStr(o, "pattern"),
			Steps:   c.integer(o, "steps", 10),
		}
	case "Move":
		return &rpyast.TestMove{
			Loc:      loc,
			Position: c.exprText(attr(o, "position"), "test Move.position"),
			Pattern:  c.optStr(o, "pattern"),
		}
	case "Click":
		return &rpyast.TestClick{
			Loc:      loc,
			Pattern:  c.optStr(o, "pattern"),
			Button:   c.integer(o, "button", 1),
			Position: c.optExpr(o, "position"),
			Always:   pickle.AsBool(attr(o, "always")),
		}
	case "Scroll":
		return &rpyast.TestScroll{Loc: loc, Pattern: c.str(o, "pattern")}
	case "Until":
		return &rpyast.TestUntil{Loc: loc, Left: c.testNode(attr(o, "left")), Right: c.testNode(attr(o, "right"))}
	}
	return opaque(c, o)
}

func (c *converter) optExpr(o *pickle.Object, name string) *string {
	v := attr(o, name)
	if pickle.IsNone(v) {
		return nil
	}
	s := c.exprText(v, className(o)+"."+name)
	return &s
}
