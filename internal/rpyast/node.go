// Package rpyast defines the closed node model produced by the archive
// decoder and consumed by the decompiler. Nodes are read-only once built.
package rpyast

import "fmt"

// Kind identifies a statement node variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindLabel
	KindSay
	KindTranslateSay
	KindScene
	KindShow
	KindShowLayer
	KindCamera
	KindHide
	KindWith
	KindJump
	KindCall
	KindReturn
	KindIf
	KindWhile
	KindPass
	KindInit
	KindMenu
	KindPython
	KindEarlyPython
	KindDefine
	KindDefault
	KindImage
	KindTransform
	KindUserStatement
	KindPostUserStatement
	KindStyle
	KindTranslate
	KindEndTranslate
	KindTranslateString
	KindTranslateBlock
	KindTranslateEarlyBlock
	KindScreen
	KindTestcase
	KindRPY

	// NumKinds is the number of statement kinds, for tables indexed by Kind.
	NumKinds
)

var kindNames = [NumKinds]string{
	KindUnknown:             "Unknown",
	KindLabel:               "Label",
	KindSay:                 "Say",
	KindTranslateSay:        "TranslateSay",
	KindScene:               "Scene",
	KindShow:                "Show",
	KindShowLayer:           "ShowLayer",
	KindCamera:              "Camera",
	KindHide:                "Hide",
	KindWith:                "With",
	KindJump:                "Jump",
	KindCall:                "Call",
	KindReturn:              "Return",
	KindIf:                  "If",
	KindWhile:               "While",
	KindPass:                "Pass",
	KindInit:                "Init",
	KindMenu:                "Menu",
	KindPython:              "Python",
	KindEarlyPython:         "EarlyPython",
	KindDefine:              "Define",
	KindDefault:             "Default",
	KindImage:               "Image",
	KindTransform:           "Transform",
	KindUserStatement:       "UserStatement",
	KindPostUserStatement:   "PostUserStatement",
	KindStyle:               "Style",
	KindTranslate:           "Translate",
	KindEndTranslate:        "EndTranslate",
	KindTranslateString:     "TranslateString",
	KindTranslateBlock:      "TranslateBlock",
	KindTranslateEarlyBlock: "TranslateEarlyBlock",
	KindScreen:              "Screen",
	KindTestcase:            "Testcase",
	KindRPY:                 "RPY",
}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is one statement in a decoded block.
type Node interface {
	Kind() Kind
	// Line returns the source line the statement started on, or 0 when
	// the node carries no line number.
	Line() int
}

// Loc is the source position carried by most nodes.
type Loc struct {
	Filename   string
	Linenumber int
}

// Line returns the line number, 0 when unknown.
func (l Loc) Line() int { return l.Linenumber }

// PyExpr is an expression kept as source text.
type PyExpr struct {
	Text       string
	Filename   string
	Linenumber int
}

func (e PyExpr) String() string { return e.Text }

// Expr builds an unlocated expression.
func Expr(text string) *PyExpr { return &PyExpr{Text: text} }

// PyCode is a block of embedded python source.
type PyCode struct {
	Source     string
	Filename   string
	Linenumber int
	Mode       string
}

// Opaque stands in for any object the decoder could not map to a known
// variant. It satisfies every node interface so it can appear anywhere.
type Opaque struct {
	Loc
	Module string
	Name   string
}

func (*Opaque) Kind() Kind         { return KindUnknown }
func (*Opaque) ATLKind() ATLKind   { return ATLKindUnknown }
func (*Opaque) SLKind() SLKind     { return SLKindUnknown }
func (*Opaque) TestKind() TestKind { return TestKindUnknown }

// QualifiedName returns module.Name.
func (o *Opaque) QualifiedName() string {
	if o.Module == "" {
		return o.Name
	}
	return o.Module + "." + o.Name
}
