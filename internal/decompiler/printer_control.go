package decompiler

import (
	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

func (d *decompiler) printLabel(c *stmtCursor, n rpyast.Node) error {
	label := n.(*rpyast.Label)

	// A call prints the label after it as its `from` clause.
	if prev, ok := c.peek(-1); ok && prev.Kind() == rpyast.KindCall {
		return nil
	}

	if len(label.Block) == 0 && label.Parameters == nil && d.labelsMenu(c, label) {
		d.labelInsideMenu = label
		return nil
	}

	d.advanceToLine(label.Line())
	d.writeIndent()

	// Whether this is an init label is only known once the body has been
	// printed, so remember where the header starts.
	mark := d.buf.Len()
	outerMissingInit := d.missingInit
	d.missingInit = false

	d.write("label " + label.Name + paramString(label.Parameters))
	if label.Hide {
		d.write(" hide")
	}
	d.write(":")
	err := d.printBlock(c, label.Block, 1)

	if d.missingInit {
		d.insertAt(mark, "init ")
	}
	d.missingInit = outerMissingInit
	return err
}

// labelsMenu reports whether an empty label names the menu that follows
// it, possibly with the menu's prompt in between.
func (d *decompiler) labelsMenu(c *stmtCursor, label *rpyast.Label) bool {
	next, ok := c.peek(1)
	if !ok {
		return false
	}
	if next.Kind() == rpyast.KindMenu && next.Line() == label.Line() {
		return true
	}

	menu, ok := c.peek(2)
	if !ok || menu.Kind() != rpyast.KindMenu || menu.Line() != label.Line() {
		return false
	}
	say := sayOf(next)
	return say != nil && d.sayBelongsToMenu(say, menu)
}

func (d *decompiler) printJump(_ *stmtCursor, n rpyast.Node) error {
	jump := n.(*rpyast.Jump)
	d.writeIndent()
	d.write("jump ")
	if jump.Expression {
		d.write("expression ")
	}
	d.write(jump.Target)
	return nil
}

// printCall writes a call together with the return label the compiler
// placed after it. The node after a call is always a Label or a Pass.
func (d *decompiler) printCall(c *stmtCursor, n rpyast.Node) error {
	call := n.(*rpyast.Call)

	words := pylex.NewWordJoiner(false, false)
	words.Append("call")
	if call.Expression {
		words.Append("expression")
	}
	words.Append(call.Label)
	if call.Arguments != nil {
		if call.Expression {
			words.Append("pass")
		}
		words.Append(argString(call.Arguments))
	}

	next, _ := c.peek(1)
	switch next := next.(type) {
	case *rpyast.Label:
		words.Append("from " + next.Name)
	case *rpyast.Pass:
	default:
		return newErrorf(call, "call to %s is not followed by a return label or pass", call.Label)
	}

	d.writeIndent()
	d.write(words.Join())
	return nil
}

func (d *decompiler) printReturn(c *stmtCursor, n rpyast.Node) error {
	ret := n.(*rpyast.Return)

	// The compiler appends a bare return to every file, on the line of
	// the last statement.
	if ret.Expression == nil && c.parent == nil && c.isLast() && ret.Line() > 0 {
		if prev, ok := c.peek(-1); ok && prev.Line() == ret.Line() {
			return nil
		}
	}

	d.advanceToLine(ret.Line())
	d.writeIndent()
	d.write("return")
	if ret.Expression != nil {
		d.write(" " + *ret.Expression)
	}
	return nil
}

func (d *decompiler) printIf(c *stmtCursor, n rpyast.Node) error {
	ifStmt := n.(*rpyast.If)

	keyword := "if"
	for i, entry := range ifStmt.Entries {
		if entry.Condition == nil && i == len(ifStmt.Entries)-1 {
			d.writeIndent()
			d.write("else:")
		} else {
			cond := "True"
			if entry.Condition != nil {
				cond = entry.Condition.Text
				d.advanceToLine(entry.Condition.Linenumber)
			}
			d.writeIndent()
			d.write(keyword + " " + cond + ":")
			keyword = "elif"
		}

		if err := d.printBlock(c, entry.Block, 1); err != nil {
			return err
		}
	}
	return nil
}

func (d *decompiler) printWhile(c *stmtCursor, n rpyast.Node) error {
	while := n.(*rpyast.While)
	d.writeIndent()
	d.write("while " + while.Condition.Text + ":")
	return d.printBlock(c, while.Block, 1)
}

func (d *decompiler) printPass(c *stmtCursor, n rpyast.Node) error {
	pass := n.(*rpyast.Pass)

	// Passes emitted after a call, or after a call and its return label,
	// are the compiler's and are already accounted for.
	if prev, ok := c.peek(-1); ok {
		if prev.Kind() == rpyast.KindCall {
			return nil
		}
		if call, ok := c.peek(-2); ok && call.Kind() == rpyast.KindCall &&
			prev.Kind() == rpyast.KindLabel && call.Line() == pass.Line() {
			return nil
		}
	}

	d.advanceToLine(pass.Line())
	d.writeIndent()
	d.write("pass")
	return nil
}

func (d *decompiler) printMenu(c *stmtCursor, n rpyast.Node) error {
	menu := n.(*rpyast.Menu)

	d.writeIndent()
	d.write("menu")
	if d.labelInsideMenu != nil {
		d.write(" " + d.labelInsideMenu.Name)
		d.labelInsideMenu = nil
	}
	d.write(argString(menu.Arguments))
	d.write(":")

	d.depth++
	defer func() { d.depth-- }()

	if menu.With != "" {
		d.writeIndent()
		d.write("with " + menu.With)
	}
	if menu.Set != "" {
		d.writeIndent()
		d.write("set " + menu.Set)
	}

	for _, item := range menu.Items {
		if item.Condition != nil && item.Condition.Linenumber > 0 {
			// The condition tells us the item's line, so the prompt goes
			// here only if it fits above it.
			if d.sayInsideMenu != nil && item.Condition.Linenumber > d.linenumber+1 {
				d.printSayInsideMenu()
			}
			d.advanceToLine(item.Condition.Linenumber)
			if err := d.printMenuItem(c, item); err != nil {
				return err
			}
			continue
		}

		if d.sayInsideMenu == nil {
			if err := d.printMenuItem(c, item); err != nil {
				return err
			}
			continue
		}

		// The item's line is unknown. Try the prompt here and back it out
		// if that pushes the item behind its original position.
		saved := d.save()
		d.mostLinesBehind = d.lastLinesBehind
		d.printSayInsideMenu()
		if err := d.printMenuItem(c, item); err != nil {
			return err
		}

		if d.mostLinesBehind > saved.lastLinesBehind {
			d.restore(saved)
			if err := d.printMenuItem(c, item); err != nil {
				return err
			}
		} else {
			d.mostLinesBehind = max(saved.mostLinesBehind, d.mostLinesBehind)
		}
	}

	// No room before any item, so the prompt goes last.
	if d.sayInsideMenu != nil {
		d.printSayInsideMenu()
	}
	return nil
}

func (d *decompiler) printSayInsideMenu() {
	d.writeIndent()
	d.write(sayCode(d.sayInsideMenu, true))
	d.sayInsideMenu = nil
}

func (d *decompiler) printMenuItem(c *stmtCursor, item rpyast.MenuItem) error {
	d.writeIndent()
	d.write(`"` + pylex.Escape(item.Label) + `"`)
	d.write(argString(item.Arguments))

	if item.Block == nil {
		return nil
	}
	if item.Condition != nil {
		d.write(" if " + item.Condition.Text)
	}
	d.write(":")
	return d.printBlock(c, item.Block, 1)
}
