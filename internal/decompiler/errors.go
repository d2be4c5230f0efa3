package decompiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// ErrStructure reports a tree the compiler could not have produced, such
// as a paired with without its partner or a call with no return label.
var ErrStructure = errors.New("inconsistent statement structure")

// Error is a structural error tied to the statement that exposed it.
type Error struct {
	Line    int
	Node    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Node)
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap lets callers match every Error against ErrStructure.
func (e *Error) Unwrap() error {
	return ErrStructure
}

// located is anything carrying a line number.
type located interface {
	Line() int
}

func newErrorf(n located, format string, args ...any) *Error {
	return &Error{Line: n.Line(), Node: nodeName(n), Message: fmt.Sprintf(format, args...)}
}

// nodeName names a node for diagnostics.
func nodeName(n any) string {
	switch n := n.(type) {
	case *rpyast.Opaque:
		return n.QualifiedName()
	case rpyast.Node:
		return n.Kind().String()
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", n), "*rpyast.")
	}
}
