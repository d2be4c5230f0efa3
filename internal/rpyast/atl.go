package rpyast

// ATLKind identifies an animation/transform language node.
type ATLKind int

const (
	ATLKindUnknown ATLKind = iota
	ATLKindMultipurpose
	ATLKindBlock
	ATLKindChild
	ATLKindChoice
	ATLKindContainsExpr
	ATLKindEvent
	ATLKindFunction
	ATLKindOn
	ATLKindParallel
	ATLKindRepeat
	ATLKindTime
)

// ATLNode is one ATL statement.
type ATLNode interface {
	ATLKind() ATLKind
	Line() int
}

// ATLBlock is a sequence of ATL statements. The compiler gives a block
// the position ("", 0) when a colon was followed by no block at all;
// NoBody records that marker.
type ATLBlock struct {
	Loc
	Statements []ATLNode
	NoBody     bool
}

type ATLSpline struct {
	Name  string
	Exprs []string
}

type ATLProperty struct {
	Name  string
	Value string
}

// ATLExpression is a displayable expression with an optional with clause.
type ATLExpression struct {
	Expr string
	With string
}

// ATLMultipurpose covers warps, pauses, property sets and displayable
// expressions. Empty Duration and Circles read as "0".
type ATLMultipurpose struct {
	Loc
	Warper       string
	WarpFunction string
	Duration     string
	Revolution   string
	Circles      string
	Splines      []ATLSpline
	Properties   []ATLProperty
	Expressions  []ATLExpression
}

type ATLChild struct {
	Loc
	Children []*ATLBlock
}

type ATLChoiceEntry struct {
	Chance string
	Block  *ATLBlock
}

type ATLChoice struct {
	Loc
	Choices []ATLChoiceEntry
}

type ATLContainsExpr struct {
	Loc
	Expression string
}

type ATLEvent struct {
	Loc
	Name string
}

type ATLFunction struct {
	Loc
	Expr string
}

type ATLHandler struct {
	Name  string
	Block *ATLBlock
}

type ATLOn struct {
	Loc
	Handlers []ATLHandler
}

type ATLParallel struct {
	Loc
	Blocks []*ATLBlock
}

// ATLRepeat with an empty Repeats loops forever.
type ATLRepeat struct {
	Loc
	Repeats string
}

type ATLTime struct {
	Loc
	Time string
}

func (*ATLBlock) ATLKind() ATLKind        { return ATLKindBlock }
func (*ATLMultipurpose) ATLKind() ATLKind { return ATLKindMultipurpose }
func (*ATLChild) ATLKind() ATLKind        { return ATLKindChild }
func (*ATLChoice) ATLKind() ATLKind       { return ATLKindChoice }
func (*ATLContainsExpr) ATLKind() ATLKind { return ATLKindContainsExpr }
func (*ATLEvent) ATLKind() ATLKind        { return ATLKindEvent }
func (*ATLFunction) ATLKind() ATLKind     { return ATLKindFunction }
func (*ATLOn) ATLKind() ATLKind           { return ATLKindOn }
func (*ATLParallel) ATLKind() ATLKind     { return ATLKindParallel }
func (*ATLRepeat) ATLKind() ATLKind       { return ATLKindRepeat }
func (*ATLTime) ATLKind() ATLKind         { return ATLKindTime }
