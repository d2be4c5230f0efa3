package rpyast

// ParamKind mirrors python's inspect.Parameter kinds.
type ParamKind int

const (
	PositionalOnly ParamKind = iota
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

// Parameter is one formal parameter; Default is nil when absent.
type Parameter struct {
	Name    string
	Kind    ParamKind
	Default *string
}

// ParamInfo is the parameter list of a label, transform or screen.
type ParamInfo struct {
	Parameters []Parameter
}

// Argument is one actual argument. Name is empty for positional ones.
type Argument struct {
	Name          string
	Value         string
	Starred       bool
	DoubleStarred bool
}

// ArgInfo is the argument list of a call, say, menu or use.
type ArgInfo struct {
	Arguments []Argument
}
