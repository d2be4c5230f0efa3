package rpyast

// TestKind identifies a testcase statement.
type TestKind int

const (
	TestKindUnknown TestKind = iota
	TestKindPython
	TestKindIf
	TestKindAssert
	TestKindJump
	TestKindCall
	TestKindAction
	TestKindPause
	TestKindLabel
	TestKindType
	TestKindDrag
	TestKindMove
	TestKindClick
	TestKindScroll
	TestKindUntil
)

// TestNode is one statement inside a testcase block.
type TestNode interface {
	TestKind() TestKind
	Line() int
}

type TestPython struct {
	Loc
	Code PyCode
}

type TestIf struct {
	Loc
	Condition string
	Block     []TestNode
}

type TestAssert struct {
	Loc
	Expr string
}

type TestJump struct {
	Loc
	Target string
}

type TestCall struct {
	Loc
	Target string
}

type TestAction struct {
	Loc
	Expr string
}

type TestPause struct {
	Loc
	Expr string
}

type TestLabel struct {
	Loc
	Name string
}

type TestType struct {
	Loc
	Keys     []string
	Pattern  *string
	Position *string
}

type TestDrag struct {
	Loc
	Points  string
	Button  int
	Pattern *string
	Steps   int
}

type TestMove struct {
	Loc
	Position string
	Pattern  *string
}

type TestClick struct {
	Loc
	Pattern  *string
	Button   int
	Position *string
	Always   bool
}

type TestScroll struct {
	Loc
	Pattern string
}

type TestUntil struct {
	Loc
	Left  TestNode
	Right TestNode
}

func (*TestPython) TestKind() TestKind { return TestKindPython }
func (*TestIf) TestKind() TestKind     { return TestKindIf }
func (*TestAssert) TestKind() TestKind { return TestKindAssert }
func (*TestJump) TestKind() TestKind   { return TestKindJump }
func (*TestCall) TestKind() TestKind   { return TestKindCall }
func (*TestAction) TestKind() TestKind { return TestKindAction }
func (*TestPause) TestKind() TestKind  { return TestKindPause }
func (*TestLabel) TestKind() TestKind  { return TestKindLabel }
func (*TestType) TestKind() TestKind   { return TestKindType }
func (*TestDrag) TestKind() TestKind   { return TestKindDrag }
func (*TestMove) TestKind() TestKind   { return TestKindMove }
func (*TestClick) TestKind() TestKind  { return TestKindClick }
func (*TestScroll) TestKind() TestKind { return TestKindScroll }
func (*TestUntil) TestKind() TestKind  { return TestKindUntil }
