package rpyast

// SLKind identifies a structured screen language node.
type SLKind int

const (
	SLKindUnknown SLKind = iota
	SLKindBlock
	SLKindIf
	SLKindFor
	SLKindPython
	SLKindPass
	SLKindUse
	SLKindTransclude
	SLKindDefault
	SLKindDisplayable
)

// SLNode is one node of a structured screen.
type SLNode interface {
	SLKind() SLKind
	Line() int
}

// SLKeyword is a keyword argument. A nil Value is a bare flag keyword.
type SLKeyword struct {
	Name  string
	Value *PyExpr
}

// Line returns the line the keyword value was written on, 0 if unknown.
func (k SLKeyword) Line() int {
	if k.Value == nil {
		return 0
	}
	return k.Value.Linenumber
}

// SLBlock holds keywords, children and an optional `at transform:` block.
type SLBlock struct {
	Loc
	Keywords     []SLKeyword
	Children     []SLNode
	ATLTransform *ATLBlock
}

// SLScreen is a screen statement in the structured format.
type SLScreen struct {
	SLBlock
	Name       string
	Parameters *ParamInfo
	Tag        string
}

// SLIfEntry is one branch of an if or showif; a nil Condition is else.
type SLIfEntry struct {
	Condition *string
	Block     *SLBlock
}

type SLIf struct {
	Loc
	Entries []SLIfEntry
	ShowIf  bool
}

type SLFor struct {
	SLBlock
	Variable        string
	Expression      string
	IndexExpression string
}

type SLPython struct {
	Loc
	Code PyCode
}

type SLPass struct {
	Loc
}

type SLUse struct {
	Loc
	Target       string
	TargetIsExpr bool
	Args         *ArgInfo
	ID           string
	Block        *SLBlock
}

type SLTransclude struct {
	Loc
}

type SLDefault struct {
	Loc
	Variable   string
	Expression string
}

// SLDisplayable is a displayable statement. Displayable is the qualified
// name of the function or class the compiler bound; Style is its style
// tag, empty when none was recorded.
type SLDisplayable struct {
	SLBlock
	Displayable  string
	Style        string
	Positional   []string
	Variable     string
	ChildOrFixed bool
}

func (*SLBlock) SLKind() SLKind       { return SLKindBlock }
func (*SLIf) SLKind() SLKind          { return SLKindIf }
func (*SLFor) SLKind() SLKind         { return SLKindFor }
func (*SLPython) SLKind() SLKind      { return SLKindPython }
func (*SLPass) SLKind() SLKind        { return SLKindPass }
func (*SLUse) SLKind() SLKind         { return SLKindUse }
func (*SLTransclude) SLKind() SLKind  { return SLKindTransclude }
func (*SLDefault) SLKind() SLKind     { return SLKindDefault }
func (*SLDisplayable) SLKind() SLKind { return SLKindDisplayable }

func (*SLScreen) screenDef() {}

// SL1Screen is a screen from the legacy format, whose body was compiled
// to generated python.
type SL1Screen struct {
	Loc
	Name       string
	Parameters *ParamInfo
	Tag        string
	Zorder     string
	Modal      string
	Variant    string
	Code       string
	HasCode    bool
}

func (*SL1Screen) screenDef() {}
