package decompiler

import (
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// sayOf returns the dialogue of a Say or TranslateSay.
func sayOf(n rpyast.Node) *rpyast.Say {
	switch n := n.(type) {
	case *rpyast.Say:
		return n
	case *rpyast.TranslateSay:
		return &n.Say
	}
	return nil
}

// sayCode renders a say statement without indentation.
func sayCode(say *rpyast.Say, inMenu bool) string {
	var rv []string
	if say.Who != "" {
		rv = append(rv, say.Who)
	}
	rv = append(rv, say.Attributes...)
	if say.TemporaryAttributes != nil {
		rv = append(rv, "@")
		rv = append(rv, say.TemporaryAttributes...)
	}

	rv = append(rv, pylex.QuoteSay(say.What))

	if !say.Interact && !inMenu {
		rv = append(rv, "nointeract")
	}
	if say.Identifier != "" {
		rv = append(rv, "id", say.Identifier)
	}
	if say.Arguments != nil {
		rv = append(rv, argString(say.Arguments))
	}
	if say.With != "" {
		rv = append(rv, "with", say.With)
	}
	return strings.Join(rv, " ")
}

// sayBelongsToMenu reports whether say is the prompt of the menu after it.
func (d *decompiler) sayBelongsToMenu(say *rpyast.Say, next rpyast.Node) bool {
	menu, ok := next.(*rpyast.Menu)
	return ok && !say.Interact && say.Who != "" && say.With == "" &&
		say.Attributes == nil && len(menu.Items) > 0 && menu.Items[0].Block != nil &&
		!d.shouldComeBefore(say, menu)
}

func (d *decompiler) printSay(c *stmtCursor, n rpyast.Node) error {
	say := sayOf(n)
	if next, ok := c.peek(1); ok && d.sayBelongsToMenu(say, next) {
		d.sayInsideMenu = say
		return nil
	}
	d.writeIndent()
	d.write(sayCode(say, false))
	return nil
}

// printImSpec writes an image specification and reports whether a
// following clause needs a separating space.
func (d *decompiler) printImSpec(im *rpyast.ImSpec) bool {
	var begin string
	if im.Expression != "" {
		begin = "expression " + im.Expression
	} else {
		begin = strings.Join(im.Name, " ")
	}

	words := pylex.NewWordJoiner(begin != "" && !strings.HasSuffix(begin, " "), true)
	if im.Tag != "" {
		words.Append("as " + im.Tag)
	}
	if len(im.Behind) > 0 {
		words.Append("behind " + strings.Join(im.Behind, ", "))
	}
	if im.Layer != "" {
		words.Append("onlayer " + im.Layer)
	}
	if im.Zorder != "" {
		words.Append("zorder " + im.Zorder)
	}
	if len(im.AtList) > 0 {
		words.Append("at " + strings.Join(im.AtList, ", "))
	}

	d.write(begin + words.Join())
	return words.NeedsSpace
}

// printPairedWith attaches a pending postfix with clause to the directive
// just written.
func (d *decompiler) printPairedWith(needsSpace bool) {
	if d.pairMode != pairPending {
		return
	}
	if needsSpace {
		d.write(" ")
	}
	d.write("with " + d.pairExpr)
	d.pairMode = pairConsumed
}

// printTrailingATL writes the `:` and block of a statement's ATL.
func (d *decompiler) printTrailingATL(atl *rpyast.ATLBlock) error {
	if atl == nil {
		return nil
	}
	d.write(":")
	return d.printATL(atl)
}

func (d *decompiler) printScene(_ *stmtCursor, n rpyast.Node) error {
	scene := n.(*rpyast.Scene)
	d.writeIndent()
	d.write("scene")

	needsSpace := true
	if scene.ImSpec == nil {
		if scene.Layer != "" && scene.Layer != "master" {
			d.write(" onlayer " + scene.Layer)
		}
	} else {
		d.write(" ")
		needsSpace = d.printImSpec(scene.ImSpec)
	}

	d.printPairedWith(needsSpace)
	return d.printTrailingATL(scene.ATL)
}

func (d *decompiler) printShow(_ *stmtCursor, n rpyast.Node) error {
	show := n.(*rpyast.Show)
	d.writeIndent()
	d.write("show ")
	d.printPairedWith(d.printImSpec(&show.ImSpec))
	return d.printTrailingATL(show.ATL)
}

func (d *decompiler) printHide(_ *stmtCursor, n rpyast.Node) error {
	hide := n.(*rpyast.Hide)
	d.writeIndent()
	d.write("hide ")
	d.printPairedWith(d.printImSpec(&hide.ImSpec))
	return nil
}

func (d *decompiler) printShowLayer(_ *stmtCursor, n rpyast.Node) error {
	show := n.(*rpyast.ShowLayer)
	d.writeIndent()
	d.write("show layer " + show.Layer)
	if len(show.AtList) > 0 {
		d.write(" at " + strings.Join(show.AtList, ", "))
	}
	return d.printTrailingATL(show.ATL)
}

func (d *decompiler) printCamera(_ *stmtCursor, n rpyast.Node) error {
	camera := n.(*rpyast.Camera)
	d.writeIndent()
	d.write("camera")
	if camera.Layer != "" && camera.Layer != "master" {
		d.write(" " + camera.Layer)
	}
	if len(camera.AtList) > 0 {
		d.write(" at " + strings.Join(camera.AtList, ", "))
	}
	return d.printTrailingATL(camera.ATL)
}

// printWith handles both halves of a postfix with. The leading With
// carries Paired and must find its partner two statements later.
func (d *decompiler) printWith(c *stmtCursor, n rpyast.Node) error {
	with := n.(*rpyast.With)

	if with.Paired != nil {
		next, ok := c.peek(2)
		partner, isWith := next.(*rpyast.With)
		if !ok || !isWith || partner.Expr != *with.Paired {
			return newErrorf(with, "unmatched paired with %q", *with.Paired)
		}
		d.pairMode = pairPending
		d.pairExpr = *with.Paired
		return nil
	}

	switch d.pairMode {
	case pairPending:
		// Nothing picked the clause up; keep it on the statement above.
		d.write(" with " + with.Expr)
	case pairConsumed:
	default:
		d.advanceToLine(with.Line())
		d.writeIndent()
		d.write("with " + with.Expr)
	}
	d.pairMode = pairNone
	return nil
}

func (d *decompiler) printImage(_ *stmtCursor, n rpyast.Node) error {
	image := n.(*rpyast.Image)
	d.requireInit()
	d.writeIndent()
	d.write("image " + strings.Join(image.Name, " "))
	if image.Code != nil {
		d.write(" = " + image.Code.Source)
		return nil
	}
	return d.printTrailingATL(image.ATL)
}

func (d *decompiler) printTransform(c *stmtCursor, n rpyast.Node) error {
	transform := n.(*rpyast.Transform)
	d.requireInit()
	d.writeIndent()

	d.write("transform" + d.impliedPriority(c, transform) + " ")
	if transform.Store != "" && transform.Store != "store" {
		d.write(strings.TrimPrefix(transform.Store, "store.") + ".")
	}
	d.write(transform.Varname)
	d.write(paramString(transform.Parameters))
	return d.printTrailingATL(transform.ATL)
}
