// Package decompiler turns decoded Ren'Py statement trees back into
// script source.
//
// Output goes through a single append-only printer. Statement handlers
// are looked up by node kind; the ATL, screen language and testcase
// printers share the same printer so line tracking is continuous.
package decompiler

import (
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// pairMode tracks a postfix `with` split into two With nodes around a
// scene, show or hide.
type pairMode int

const (
	pairNone pairMode = iota
	// pairPending: the leading With was seen, its expression is waiting
	// for the directive to pick it up.
	pairPending
	// pairConsumed: the directive printed the with clause.
	pairConsumed
)

// decompiler holds the state of one render. It is never shared between
// files.
type decompiler struct {
	printer
	opts Options

	pairMode pairMode
	pairExpr string

	sayInsideMenu   *rpyast.Say
	labelInsideMenu *rpyast.Label

	inInit      bool
	missingInit bool
	initOffset  int
}

// state is a snapshot of the printer plus the statement flags.
type state struct {
	snapshot
	pairMode        pairMode
	pairExpr        string
	sayInsideMenu   *rpyast.Say
	labelInsideMenu *rpyast.Label
	inInit          bool
	missingInit     bool
	initOffset      int
}

type stmtHandler func(d *decompiler, c *stmtCursor, n rpyast.Node) error

// stmtHandlers is filled in init because handlers recurse back into
// printNode, which reads the table.
var stmtHandlers [rpyast.NumKinds]stmtHandler

func init() {
	stmtHandlers = [rpyast.NumKinds]stmtHandler{
		rpyast.KindLabel:               (*decompiler).printLabel,
		rpyast.KindSay:                 (*decompiler).printSay,
		rpyast.KindTranslateSay:        (*decompiler).printSay,
		rpyast.KindScene:               (*decompiler).printScene,
		rpyast.KindShow:                (*decompiler).printShow,
		rpyast.KindShowLayer:           (*decompiler).printShowLayer,
		rpyast.KindCamera:              (*decompiler).printCamera,
		rpyast.KindHide:                (*decompiler).printHide,
		rpyast.KindWith:                (*decompiler).printWith,
		rpyast.KindJump:                (*decompiler).printJump,
		rpyast.KindCall:                (*decompiler).printCall,
		rpyast.KindReturn:              (*decompiler).printReturn,
		rpyast.KindIf:                  (*decompiler).printIf,
		rpyast.KindWhile:               (*decompiler).printWhile,
		rpyast.KindPass:                (*decompiler).printPass,
		rpyast.KindInit:                (*decompiler).printInit,
		rpyast.KindMenu:                (*decompiler).printMenu,
		rpyast.KindPython:              (*decompiler).printPython,
		rpyast.KindEarlyPython:         (*decompiler).printPython,
		rpyast.KindDefine:              (*decompiler).printDefine,
		rpyast.KindDefault:             (*decompiler).printDefine,
		rpyast.KindImage:               (*decompiler).printImage,
		rpyast.KindTransform:           (*decompiler).printTransform,
		rpyast.KindUserStatement:       (*decompiler).printUserStatement,
		rpyast.KindPostUserStatement:   (*decompiler).printNothing,
		rpyast.KindStyle:               (*decompiler).printStyle,
		rpyast.KindTranslate:           (*decompiler).printTranslate,
		rpyast.KindEndTranslate:        (*decompiler).printNothing,
		rpyast.KindTranslateString:     (*decompiler).printTranslateString,
		rpyast.KindTranslateBlock:      (*decompiler).printTranslateBlock,
		rpyast.KindTranslateEarlyBlock: (*decompiler).printTranslateBlock,
		rpyast.KindScreen:              (*decompiler).printScreen,
		rpyast.KindTestcase:            (*decompiler).printTestcase,
		rpyast.KindRPY:                 (*decompiler).printRPY,
	}
}

// Render decompiles a top level block. It returns the script text, which
// always ends with a newline, and one log entry per recoverable anomaly.
// A structural error aborts the render and is returned as an *Error.
func Render(block []rpyast.Node, opts Options) (string, []string, error) {
	d := newDecompiler(opts)
	if err := d.dump(block); err != nil {
		return "", d.log, err
	}
	return d.buf.String(), d.log, nil
}

func newDecompiler(opts Options) *decompiler {
	return &decompiler{
		printer: newPrinter(opts.Indent),
		opts:    opts,
	}
}

func (d *decompiler) dump(block []rpyast.Node) error {
	d.skipIndentUntilWrite = true

	// Without line fidelity the first statement goes on the first line
	// regardless of how far down the original started.
	if !d.opts.LineFidelity && len(block) > 0 && block[0].Line() > d.linenumber {
		d.linenumber = block[0].Line()
	}

	if d.opts.AssumeInitOffset {
		d.setBestInitOffset(block)
	}

	if err := d.printBlock(nil, block, 0); err != nil {
		return err
	}

	d.runBlankLineQueue(0, true)
	d.write("\n")

	if d.missingInit {
		d.logf("a statement that runs at init time was found outside of any init block")
	}
	return nil
}

func (d *decompiler) save() state {
	return state{
		snapshot:        d.snapshot(),
		pairMode:        d.pairMode,
		pairExpr:        d.pairExpr,
		sayInsideMenu:   d.sayInsideMenu,
		labelInsideMenu: d.labelInsideMenu,
		inInit:          d.inInit,
		missingInit:     d.missingInit,
		initOffset:      d.initOffset,
	}
}

func (d *decompiler) restore(s state) {
	d.rollback(s.snapshot)
	d.pairMode = s.pairMode
	d.pairExpr = s.pairExpr
	d.sayInsideMenu = s.sayInsideMenu
	d.labelInsideMenu = s.labelInsideMenu
	d.inInit = s.inInit
	d.missingInit = s.missingInit
	d.initOffset = s.initOffset
}

// printBlock prints nodes as the body of the node at parent, extraIndent
// levels deeper than the current depth.
func (d *decompiler) printBlock(parent *stmtCursor, nodes []rpyast.Node, extraIndent int) error {
	d.depth += extraIndent
	defer func() { d.depth -= extraIndent }()

	c := &stmtCursor{block: nodes, parent: parent}
	for i, n := range nodes {
		c.index = i
		if err := d.printNode(c, n); err != nil {
			return err
		}
	}
	return nil
}

func (d *decompiler) printNode(c *stmtCursor, n rpyast.Node) error {
	k := n.Kind()

	// These place themselves, or may print nothing at all.
	switch k {
	case rpyast.KindTranslateString, rpyast.KindWith, rpyast.KindLabel,
		rpyast.KindPass, rpyast.KindReturn:
	default:
		d.advanceToLine(n.Line())
	}

	var h stmtHandler
	if k >= 0 && k < rpyast.NumKinds {
		h = stmtHandlers[k]
	}
	if h == nil {
		d.printUnknown(nodeName(n))
		return nil
	}
	return h(d, c, n)
}

// shouldComeBefore reports whether line fidelity requires first to stay
// on an earlier line than second.
func (d *decompiler) shouldComeBefore(first, second located) bool {
	return d.opts.LineFidelity && first.Line() < second.Line()
}

func (d *decompiler) requireInit() {
	if !d.inInit {
		d.missingInit = true
	}
}

func (d *decompiler) printNothing(*stmtCursor, rpyast.Node) error {
	return nil
}
