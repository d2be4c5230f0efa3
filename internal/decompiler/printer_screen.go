package decompiler

import "github.com/grindlemire/go-unrpyc/internal/rpyast"

// printScreen dispatches on the screen language generation.
func (d *decompiler) printScreen(_ *stmtCursor, n rpyast.Node) error {
	screen := n.(*rpyast.Screen)
	d.requireInit()

	switch s := screen.Screen.(type) {
	case *rpyast.SLScreen:
		return d.printSLScreen(s)
	case *rpyast.SL1Screen:
		d.printSL1Screen(s)
	default:
		d.printUnknown(nodeName(s))
	}
	return nil
}
