package rpyast

// Label starts a named block.
type Label struct {
	Loc
	Name       string
	Parameters *ParamInfo
	Block      []Node
	Hide       bool
}

// Say is a line of dialogue. A nil Attributes slice means no attributes
// were given at all, which differs from an empty list. Identifier is only
// set when the script named it explicitly.
type Say struct {
	Loc
	Who                 string
	What                string
	With                string
	Interact            bool
	Attributes          []string
	TemporaryAttributes []string
	Identifier          string
	Arguments           *ArgInfo
}

// TranslateSay is a say statement that also carries its translation
// identifier.
type TranslateSay struct {
	Say
	Language *string
}

// ImSpec is the image specification shared by scene, show and hide.
type ImSpec struct {
	Name       []string
	Expression string
	Tag        string
	AtList     []string
	Layer      string
	Zorder     string
	Behind     []string
}

type Scene struct {
	Loc
	ImSpec *ImSpec
	Layer  string
	ATL    *ATLBlock
}

type Show struct {
	Loc
	ImSpec ImSpec
	ATL    *ATLBlock
}

type ShowLayer struct {
	Loc
	Layer  string
	AtList []string
	ATL    *ATLBlock
}

type Camera struct {
	Loc
	Layer  string
	AtList []string
	ATL    *ATLBlock
}

type Hide struct {
	Loc
	ImSpec ImSpec
}

// With is a transition. Paired is set on the synthetic pair that the
// compiler emits around a scene, show or hide carrying a with clause.
type With struct {
	Loc
	Expr   string
	Paired *string
}

type Jump struct {
	Loc
	Target     string
	Expression bool
}

type Call struct {
	Loc
	Label      string
	Expression bool
	Arguments  *ArgInfo
}

// Return with a nil Expression returns nothing.
type Return struct {
	Loc
	Expression *string
}

// IfEntry is one branch; a nil Condition is the else branch.
type IfEntry struct {
	Condition *PyExpr
	Block     []Node
}

type If struct {
	Loc
	Entries []IfEntry
}

type While struct {
	Loc
	Condition PyExpr
	Block     []Node
}

type Pass struct {
	Loc
}

type Init struct {
	Loc
	Priority int
	Block    []Node
}

// MenuItem is one menu choice. A nil Block makes the item a caption and a
// nil Condition means the choice is unconditional.
type MenuItem struct {
	Label     string
	Condition *PyExpr
	Block     []Node
	Arguments *ArgInfo
}

type Menu struct {
	Loc
	Items     []MenuItem
	Set       string
	With      string
	Arguments *ArgInfo
}

// Python is a python block; Early marks `python early`.
type Python struct {
	Loc
	Code  PyCode
	Hide  bool
	Store string
	Early bool
}

// Define binds a variable at init time.
type Define struct {
	Loc
	Varname  string
	Code     PyCode
	Store    string
	Operator string
	Index    *PyCode
}

// Default declares a variable default.
type Default struct {
	Loc
	Varname string
	Code    PyCode
	Store   string
}

type Image struct {
	Loc
	Name []string
	Code *PyCode
	ATL  *ATLBlock
}

type Transform struct {
	Loc
	Varname    string
	Store      string
	Parameters *ParamInfo
	ATL        *ATLBlock
}

// LexLine is one line of a user statement's raw block.
type LexLine struct {
	Filename   string
	Linenumber int
	Text       string
	Block      []LexLine
}

type UserStatement struct {
	Loc
	Text  string
	Block []LexLine
}

type PostUserStatement struct {
	Loc
}

type StyleProperty struct {
	Name  string
	Value PyExpr
}

type Style struct {
	Loc
	Name       string
	Parent     string
	Clear      bool
	Take       string
	Delattr    []string
	Variant    *PyExpr
	Properties []StyleProperty
}

type Translate struct {
	Loc
	Identifier string
	Language   *string
	Block      []Node
}

type EndTranslate struct {
	Loc
}

type TranslateString struct {
	Loc
	Language *string
	Old      string
	New      string
	NewLine  int
}

// TranslateBlock is `translate <language> python|style`; Early marks the
// early variant.
type TranslateBlock struct {
	Loc
	Language *string
	Block    []Node
	Early    bool
}

// ScreenDef is the body of a screen statement: *SLScreen or *SL1Screen.
type ScreenDef interface {
	screenDef()
}

type Screen struct {
	Loc
	Screen ScreenDef
}

type Testcase struct {
	Loc
	Label string
	Test  []TestNode
}

// RPY is an `rpy` directive such as `rpy python 3`.
type RPY struct {
	Loc
	Rest []string
}

func (*Label) Kind() Kind             { return KindLabel }
func (*Say) Kind() Kind               { return KindSay }
func (*TranslateSay) Kind() Kind      { return KindTranslateSay }
func (*Scene) Kind() Kind             { return KindScene }
func (*Show) Kind() Kind              { return KindShow }
func (*ShowLayer) Kind() Kind         { return KindShowLayer }
func (*Camera) Kind() Kind            { return KindCamera }
func (*Hide) Kind() Kind              { return KindHide }
func (*With) Kind() Kind              { return KindWith }
func (*Jump) Kind() Kind              { return KindJump }
func (*Call) Kind() Kind              { return KindCall }
func (*Return) Kind() Kind            { return KindReturn }
func (*If) Kind() Kind                { return KindIf }
func (*While) Kind() Kind             { return KindWhile }
func (*Pass) Kind() Kind              { return KindPass }
func (*Init) Kind() Kind              { return KindInit }
func (*Menu) Kind() Kind              { return KindMenu }
func (*Define) Kind() Kind            { return KindDefine }
func (*Default) Kind() Kind           { return KindDefault }
func (*Image) Kind() Kind             { return KindImage }
func (*Transform) Kind() Kind         { return KindTransform }
func (*UserStatement) Kind() Kind     { return KindUserStatement }
func (*PostUserStatement) Kind() Kind { return KindPostUserStatement }
func (*Style) Kind() Kind             { return KindStyle }
func (*Translate) Kind() Kind         { return KindTranslate }
func (*EndTranslate) Kind() Kind      { return KindEndTranslate }
func (*TranslateString) Kind() Kind   { return KindTranslateString }
func (*Screen) Kind() Kind            { return KindScreen }
func (*Testcase) Kind() Kind          { return KindTestcase }
func (*RPY) Kind() Kind               { return KindRPY }

func (p *Python) Kind() Kind {
	if p.Early {
		return KindEarlyPython
	}
	return KindPython
}

func (t *TranslateBlock) Kind() Kind {
	if t.Early {
		return KindTranslateEarlyBlock
	}
	return KindTranslateBlock
}
