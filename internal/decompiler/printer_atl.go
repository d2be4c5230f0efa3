package decompiler

import (
	"slices"

	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// printATL writes the body of an ATL block. The `:` that opens it has
// already been written.
func (d *decompiler) printATL(block *rpyast.ATLBlock) error {
	d.depth++
	defer func() { d.depth-- }()

	if len(block.Statements) == 0 {
		// A colon with nothing after it compiles to a block without a
		// location; anything else needs a body to stay valid.
		if !block.NoBody {
			d.writeIndent()
			d.write("pass")
		}
		return nil
	}

	c := &atlCursor{block: block.Statements}
	for i, n := range block.Statements {
		c.index = i
		if err := d.printATLNode(c, n); err != nil {
			return err
		}
	}
	return nil
}

// advanceToATLBlock moves to the statement owning block. A block's
// location is its first body line, one below the statement.
func (d *decompiler) advanceToATLBlock(block *rpyast.ATLBlock) {
	if !block.NoBody {
		d.advanceToLine(block.Line() - 1)
	}
}

func (d *decompiler) printATLNode(c *atlCursor, n rpyast.ATLNode) error {
	if block, ok := n.(*rpyast.ATLBlock); ok {
		d.advanceToATLBlock(block)
	} else {
		d.advanceToLine(n.Line())
	}

	switch n := n.(type) {
	case *rpyast.ATLMultipurpose:
		d.printATLMultipurpose(n)
	case *rpyast.ATLBlock:
		d.writeIndent()
		d.write("block:")
		return d.printATL(n)
	case *rpyast.ATLChild:
		for _, child := range n.Children {
			d.advanceToATLBlock(child)
			d.writeIndent()
			d.write("contains:")
			if err := d.printATL(child); err != nil {
				return err
			}
		}
	case *rpyast.ATLChoice:
		for _, choice := range n.Choices {
			d.advanceToATLBlock(choice.Block)
			d.writeIndent()
			d.write("choice")
			if choice.Chance != "1.0" {
				d.write(" " + choice.Chance)
			}
			d.write(":")
			if err := d.printATL(choice.Block); err != nil {
				return err
			}
		}
		d.separateAdjacent(c, rpyast.ATLKindChoice)
	case *rpyast.ATLContainsExpr:
		d.writeIndent()
		d.write("contains " + n.Expression)
	case *rpyast.ATLEvent:
		d.writeIndent()
		d.write("event " + n.Name)
	case *rpyast.ATLFunction:
		d.writeIndent()
		d.write("function " + n.Expr)
	case *rpyast.ATLOn:
		handlers := slices.Clone(n.Handlers)
		slices.SortStableFunc(handlers, func(a, b rpyast.ATLHandler) int {
			return a.Block.Line() - b.Block.Line()
		})
		for _, h := range handlers {
			d.advanceToATLBlock(h.Block)
			d.writeIndent()
			d.write("on " + h.Name + ":")
			if err := d.printATL(h.Block); err != nil {
				return err
			}
		}
	case *rpyast.ATLParallel:
		for _, block := range n.Blocks {
			d.advanceToATLBlock(block)
			d.writeIndent()
			d.write("parallel:")
			if err := d.printATL(block); err != nil {
				return err
			}
		}
		d.separateAdjacent(c, rpyast.ATLKindParallel)
	case *rpyast.ATLRepeat:
		d.writeIndent()
		d.write("repeat")
		if n.Repeats != "" {
			d.write(" " + n.Repeats)
		}
	case *rpyast.ATLTime:
		d.writeIndent()
		d.write("time " + n.Time)
	default:
		d.printUnknown(nodeName(n))
	}
	return nil
}

// separateAdjacent writes a pass when the next sibling is of the same
// kind, since two adjacent choice or parallel statements would otherwise
// merge into one.
func (d *decompiler) separateAdjacent(c *atlCursor, kind rpyast.ATLKind) {
	if next, ok := c.peek(1); ok && next.ATLKind() == kind {
		d.writeIndent()
		d.write("pass")
	}
}

func (d *decompiler) printATLMultipurpose(n *rpyast.ATLMultipurpose) {
	duration := n.Duration
	if duration == "" {
		duration = "0"
	}

	warpWords := pylex.NewWordJoiner(false, false)
	switch {
	case n.WarpFunction != "":
		warpWords.Append("warp", n.WarpFunction, duration)
	case n.Warper != "":
		warpWords.Append(n.Warper, duration)
	case duration != "0":
		warpWords.Append("pause", duration)
	}
	warp := warpWords.Join()

	words := pylex.NewWordJoiner(warp != "" && warp[len(warp)-1] != ' ', true)
	words.Append(n.Revolution)
	if n.Circles != "" && n.Circles != "0" {
		words.Append("circles " + n.Circles)
	}

	splineWords := pylex.NewWordJoiner(false, false)
	for _, spline := range n.Splines {
		if len(spline.Exprs) == 0 {
			continue
		}
		splineWords.Append(spline.Name, spline.Exprs[len(spline.Exprs)-1])
		for _, knot := range spline.Exprs[:len(spline.Exprs)-1] {
			splineWords.Append("knot", knot)
		}
	}
	words.Append(splineWords.Join())

	propertyWords := pylex.NewWordJoiner(false, false)
	for _, prop := range n.Properties {
		propertyWords.Append(prop.Name, prop.Value)
	}
	words.Append(propertyWords.Join())

	// Consecutive expressions need a pass between them or they would be
	// read as one.
	expressionWords := pylex.NewWordJoiner(false, false)
	needsPass := len(n.Expressions) > 1
	for _, expr := range n.Expressions {
		expressionWords.Append(expr.Expr)
		if expr.With != "" {
			expressionWords.Append("with", expr.With)
		}
		if needsPass {
			expressionWords.Append("pass")
		}
	}
	words.Append(expressionWords.Join())

	if out := warp + words.Join(); out != "" {
		d.writeIndent()
		d.write(out)
		return
	}
	// A trailing comma compiles to an empty statement on the same line
	// as the previous one.
	d.write(",")
}
