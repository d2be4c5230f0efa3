package decompiler

import "github.com/grindlemire/go-unrpyc/internal/rpyast"

// cursor is a position within a block, linked to the position of the
// statement that owns the block. Handlers use it for sibling lookahead.
type cursor[T any] struct {
	block  []T
	index  int
	parent *cursor[T]
}

// peek returns the sibling offset positions away from the current node.
func (c *cursor[T]) peek(offset int) (T, bool) {
	i := c.index + offset
	if i < 0 || i >= len(c.block) {
		var zero T
		return zero, false
	}
	return c.block[i], true
}

func (c *cursor[T]) isLast() bool {
	return c.index == len(c.block)-1
}

// parentNode returns the node whose block this cursor walks.
func (c *cursor[T]) parentNode() (T, bool) {
	if c.parent == nil {
		var zero T
		return zero, false
	}
	return c.parent.block[c.parent.index], true
}

type (
	stmtCursor = cursor[rpyast.Node]
	atlCursor  = cursor[rpyast.ATLNode]
)
