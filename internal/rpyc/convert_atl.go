package rpyc

import (
	"github.com/grindlemire/go-unrpyc/internal/pickle"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// atlBlock converts a RawBlock. A block written as a bare colon has the
// empty location ("", 0).
func (c *converter) atlBlock(v pickle.Value) *rpyast.ATLBlock {
	if pickle.IsNone(v) {
		return nil
	}
	o := c.object(v, "ATL block")
	if o == nil {
		return nil
	}

	loc := c.tupleLoc(attr(o, "loc"))
	block := &rpyast.ATLBlock{Loc: loc, NoBody: loc == (rpyast.Loc{})}
	for _, s := range c.list(attr(o, "statements"), "ATL statements") {
		if n := c.atlNode(s); n != nil {
			block.Statements = append(block.Statements, n)
		}
	}
	return block
}

func (c *converter) atlBlocks(v pickle.Value, what string) []*rpyast.ATLBlock {
	var out []*rpyast.ATLBlock
	for _, item := range c.list(v, what) {
		out = append(out, c.atlBlock(item))
	}
	return out
}

func (c *converter) atlNode(v pickle.Value) rpyast.ATLNode {
	o := c.object(v, "ATL statement")
	if o == nil {
		return nil
	}
	if o.Class.Module != atlModule {
		return opaque(c, o)
	}

	loc := c.tupleLoc(attr(o, "loc"))
	switch o.Class.Name {
	case "RawBlock":
		return c.atlBlock(o)
	case "RawMultipurpose":
		return c.atlMultipurpose(o, loc)
	case "RawChild":
		return &rpyast.ATLChild{Loc: loc, Children: c.atlBlocks(attr(o, "children"), "RawChild.children")}
	case "RawChoice":
		choice := &rpyast.ATLChoice{Loc: loc}
		for _, item := range c.list(attr(o, "choices"), "RawChoice.choices") {
			pair := c.tuple(item, 2, "ATL choice")
			choice.Choices = append(choice.Choices, rpyast.ATLChoiceEntry{
				Chance: c.exprText(pair[0], "ATL choice chance"),
				Block:  c.atlBlock(pair[1]),
			})
		}
		return choice
	case "RawContainsExpr":
		return &rpyast.ATLContainsExpr{Loc: loc, Expression: c.exprText(attr(o, "expression"), "RawContainsExpr.expression")}
	case "RawEvent":
		return &rpyast.ATLEvent{Loc: loc, Name: c.str(o, "name")}
	case "RawFunction":
		return &rpyast.ATLFunction{Loc: loc, Expr: c.exprText(attr(o, "expr"), "RawFunction.expr")}
	case "RawOn":
		on := &rpyast.ATLOn{Loc: loc}
		handlers, ok := pickle.AsDict(attr(o, "handlers"))
		if !ok {
			c.fail("RawOn.handlers is a %s, want a dict", pickle.TypeName(attr(o, "handlers")))
		}
		for _, e := range handlers {
			on.Handlers = append(on.Handlers, rpyast.ATLHandler{
				Name:  c.text(e.Key, "ATL handler name"),
				Block: c.atlBlock(e.Value),
			})
		}
		return on
	case "RawParallel":
		return &rpyast.ATLParallel{Loc: loc, Blocks: c.atlBlocks(attr(o, "blocks"), "RawParallel.blocks")}
	case "RawRepeat":
		return &rpyast.ATLRepeat{Loc: loc, Repeats: c.exprText(attr(o, "repeats"), "RawRepeat.repeats")}
	case "RawTime":
		return &rpyast.ATLTime{Loc: loc, Time: c.exprText(attr(o, "time"), "RawTime.time")}
	}
	return opaque(c, o)
}

func (c *converter) atlMultipurpose(o *pickle.Object, loc rpyast.Loc) *rpyast.ATLMultipurpose {
	n := &rpyast.ATLMultipurpose{
		Loc:          loc,
		Warper:       c.str(o, "warper"),
		WarpFunction: c.exprText(attr(o, "warp_function"), "RawMultipurpose.warp_function"),
		Duration:     c.exprText(attr(o, "duration"), "RawMultipurpose.duration"),
		Revolution:   c.str(o, "revolution"),
		Circles:      c.exprText(attr(o, "circles"), "RawMultipurpose.circles"),
	}

	for _, item := range c.list(attr(o, "splines"), "RawMultipurpose.splines") {
		pair := c.tuple(item, 2, "ATL spline")
		n.Splines = append(n.Splines, rpyast.ATLSpline{
			Name:  c.text(pair[0], "ATL spline name"),
			Exprs: c.exprTexts(pair[1], "ATL spline knots"),
		})
	}
	for _, item := range c.list(attr(o, "properties"), "RawMultipurpose.properties") {
		pair := c.tuple(item, 2, "ATL property")
		n.Properties = append(n.Properties, rpyast.ATLProperty{
			Name:  c.text(pair[0], "ATL property name"),
			Value: c.exprText(pair[1], "ATL property value"),
		})
	}
	for _, item := range c.list(attr(o, "expressions"), "RawMultipurpose.expressions") {
		pair := c.tuple(item, 2, "ATL expression")
		n.Expressions = append(n.Expressions, rpyast.ATLExpression{
			Expr: c.exprText(pair[0], "ATL expression"),
			With: c.exprText(pair[1], "ATL expression with"),
		})
	}
	return n
}
