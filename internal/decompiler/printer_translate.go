package decompiler

import (
	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// languageName is how a language is written; nil is the default language.
func languageName(lang *string) string {
	if lang == nil {
		return "None"
	}
	return *lang
}

func (d *decompiler) printTranslate(c *stmtCursor, n rpyast.Node) error {
	translate := n.(*rpyast.Translate)
	d.writeIndent()
	d.write("translate " + languageName(translate.Language) + " " + translate.Identifier + ":")
	return d.printBlock(c, translate.Block, 1)
}

// printTranslateString writes one old/new pair, opening a new
// `translate strings` block unless the previous sibling already did for
// the same language.
func (d *decompiler) printTranslateString(c *stmtCursor, n rpyast.Node) error {
	ts := n.(*rpyast.TranslateString)
	d.requireInit()

	prev, ok := c.peek(-1)
	prevTS, isTS := prev.(*rpyast.TranslateString)
	if !ok || !isTS || !sameLanguage(prevTS.Language, ts.Language) {
		d.writeIndent()
		d.write("translate " + languageName(ts.Language) + " strings:")
	}

	d.depth++
	defer func() { d.depth-- }()

	// The node's own line is the `old` line, not the block header.
	d.advanceToLine(ts.Line())
	d.writeIndent()
	d.write(`old "` + pylex.Escape(ts.Old) + `"`)

	d.advanceToLine(ts.NewLine)
	d.writeIndent()
	d.write(`new "` + pylex.Escape(ts.New) + `"`)
	return nil
}

// printTranslateBlock handles `translate <language> python|style`. The
// block counts as the init context of its only child.
func (d *decompiler) printTranslateBlock(c *stmtCursor, n rpyast.Node) error {
	tb := n.(*rpyast.TranslateBlock)
	// The child continues the header line, so the header goes where the
	// child starts.
	if len(tb.Block) > 0 {
		d.advanceToLine(tb.Block[0].Line())
	}
	d.writeIndent()
	d.write("translate " + languageName(tb.Language) + " ")
	d.skipIndentUntilWrite = true

	outerInInit := d.inInit
	defer func() { d.inInit = outerInInit }()
	if len(tb.Block) == 1 {
		switch tb.Block[0].Kind() {
		case rpyast.KindPython, rpyast.KindEarlyPython, rpyast.KindStyle:
			d.inInit = true
		}
	}
	return d.printBlock(c, tb.Block, 0)
}
