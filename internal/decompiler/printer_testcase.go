package decompiler

import (
	"fmt"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/pylex"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

func (d *decompiler) printTestcase(_ *stmtCursor, n rpyast.Node) error {
	tc := n.(*rpyast.Testcase)
	d.requireInit()
	d.writeIndent()
	d.write("testcase " + tc.Label + ":")

	d.depth++
	defer func() { d.depth-- }()
	if len(tc.Test) == 0 {
		d.writeIndent()
		d.write("pass")
		return nil
	}
	d.printTestNodes(tc.Test)
	return nil
}

func (d *decompiler) printTestNodes(nodes []rpyast.TestNode) {
	for _, n := range nodes {
		d.printTestNode(n)
	}
}

func quoted(s string) string {
	return `"` + pylex.Escape(s) + `"`
}

func (d *decompiler) printTestNode(n rpyast.TestNode) {
	if n == nil {
		return
	}
	d.advanceToLine(n.Line())

	switch n := n.(type) {
	case *rpyast.TestPython:
		d.writeIndent()
		code := n.Code.Source
		if !strings.HasPrefix(code, "\n") {
			d.write("$ " + code)
			return
		}
		d.write("python:")
		d.depth++
		d.writeLines(pylex.SplitLogicalLines(code[1:]))
		d.depth--
	case *rpyast.TestIf:
		d.writeIndent()
		d.write("if " + n.Condition + ":")
		d.depth++
		d.printTestNodes(n.Block)
		d.depth--
	case *rpyast.TestAssert:
		d.writeIndent()
		d.write("assert " + n.Expr)
	case *rpyast.TestJump:
		d.writeIndent()
		d.write("jump " + n.Target)
	case *rpyast.TestCall:
		d.writeIndent()
		d.write("call " + n.Target)
	case *rpyast.TestAction:
		d.writeIndent()
		d.write("run " + n.Expr)
	case *rpyast.TestPause:
		d.writeIndent()
		d.write("pause " + n.Expr)
	case *rpyast.TestLabel:
		d.writeIndent()
		d.write("label " + n.Name)
	case *rpyast.TestType:
		d.writeIndent()
		// Single characters were typed as text, anything else is a key name.
		if len(n.Keys) > 0 && len([]rune(n.Keys[0])) == 1 {
			d.write("type " + quoted(strings.Join(n.Keys, "")))
		} else if len(n.Keys) > 0 {
			d.write("type " + n.Keys[0])
		}
		if n.Pattern != nil {
			d.write(" pattern " + quoted(*n.Pattern))
		}
		if n.Position != nil {
			d.write(" pos " + *n.Position)
		}
	case *rpyast.TestDrag:
		d.writeIndent()
		d.write("drag " + n.Points)
		if n.Button != 0 && n.Button != 1 {
			d.write(fmt.Sprintf(" button %d", n.Button))
		}
		if n.Pattern != nil {
			d.write(" pattern " + quoted(*n.Pattern))
		}
		if n.Steps != 0 && n.Steps != 10 {
			d.write(fmt.Sprintf(" steps %d", n.Steps))
		}
	case *rpyast.TestMove:
		d.writeIndent()
		d.write("move " + n.Position)
		if n.Pattern != nil {
			d.write(" pattern " + quoted(*n.Pattern))
		}
	case *rpyast.TestClick:
		d.writeIndent()
		if n.Pattern != nil {
			d.write(quoted(*n.Pattern))
		} else {
			d.write("click")
		}
		if n.Button != 0 && n.Button != 1 {
			d.write(fmt.Sprintf(" button %d", n.Button))
		}
		if n.Position != nil {
			d.write(" pos " + *n.Position)
		}
		if n.Always {
			d.write(" always")
		}
	case *rpyast.TestScroll:
		d.writeIndent()
		d.write("scroll " + quoted(n.Pattern))
	case *rpyast.TestUntil:
		// The right side cannot be moved to once the left is written.
		if n.Right != nil {
			d.advanceToLine(n.Right.Line())
		}
		d.printTestNode(n.Left)
		d.write(" until ")
		d.skipIndentUntilWrite = true
		d.printTestNode(n.Right)
	default:
		d.printUnknown(nodeName(n))
	}
}
