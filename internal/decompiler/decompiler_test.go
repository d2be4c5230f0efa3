package decompiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

func at(line int) rpyast.Loc {
	return rpyast.Loc{Filename: "game/script.rpy", Linenumber: line}
}

func str(s string) *string {
	return &s
}

func render(t *testing.T, block []rpyast.Node, opts Options) (string, []string) {
	t.Helper()
	out, log, err := Render(block, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return out, log
}

func TestRenderStatements(t *testing.T) {
	type tc struct {
		block []rpyast.Node
		want  string
	}

	tests := map[string]tc{
		"label with dialogue": {
			block: []rpyast.Node{
				&rpyast.Label{Loc: at(1), Name: "start", Block: []rpyast.Node{
					&rpyast.Say{Loc: at(2), Who: "eileen", What: "Hi.", Interact: true},
				}},
			},
			want: "label start:\n    eileen \"Hi.\"\n",
		},
		"call fused with its return label": {
			block: []rpyast.Node{
				&rpyast.Call{Loc: at(1), Label: "sub"},
				&rpyast.Label{Loc: at(1), Name: "sub_return"},
			},
			want: "call sub from sub_return\n",
		},
		"call followed by compiler pass": {
			block: []rpyast.Node{
				&rpyast.Call{Label: "sub"},
				&rpyast.Pass{},
			},
			want: "call sub\n",
		},
		"call expression with arguments": {
			block: []rpyast.Node{
				&rpyast.Call{Label: "target", Expression: true, Arguments: &rpyast.ArgInfo{
					Arguments: []rpyast.Argument{{Value: "1"}, {Name: "x", Value: "2"}},
				}},
				&rpyast.Pass{},
			},
			want: "call expression target pass (1, x=2)\n",
		},
		"jump expression": {
			block: []rpyast.Node{&rpyast.Jump{Target: "where", Expression: true}},
			want:  "jump expression where\n",
		},
		"say with attributes and arguments": {
			block: []rpyast.Node{
				&rpyast.Say{
					Who: "e", What: "Look  here", Interact: true,
					Attributes: []string{"happy"}, TemporaryAttributes: []string{"wave"},
					Identifier: "line_1", With: "dissolve",
				},
			},
			want: "e happy @ wave \"Look \\ here\" id line_1 with dissolve\n",
		},
		"narration without interaction": {
			block: []rpyast.Node{&rpyast.Say{What: "Hm."}},
			want:  "\"Hm.\" nointeract\n",
		},
		"paired with folds into show": {
			block: []rpyast.Node{
				&rpyast.With{Expr: "None", Paired: str("dissolve")},
				&rpyast.Show{ImSpec: rpyast.ImSpec{Name: []string{"eileen", "happy"}}},
				&rpyast.With{Expr: "dissolve"},
			},
			want: "show eileen happy with dissolve\n",
		},
		"standalone with": {
			block: []rpyast.Node{&rpyast.With{Expr: "fade"}},
			want:  "with fade\n",
		},
		"show with clauses and atl": {
			block: []rpyast.Node{
				&rpyast.Show{
					ImSpec: rpyast.ImSpec{Name: []string{"bg", "room"}, Tag: "x", AtList: []string{"left"}},
					ATL: &rpyast.ATLBlock{Statements: []rpyast.ATLNode{
						&rpyast.ATLMultipurpose{Properties: []rpyast.ATLProperty{{Name: "xalign", Value: "0.5"}}},
					}},
				},
			},
			want: "show bg room as x at left:\n    xalign 0.5\n",
		},
		"scene on master layer": {
			block: []rpyast.Node{&rpyast.Scene{Layer: "master"}},
			want:  "scene\n",
		},
		"scene expression on layer": {
			block: []rpyast.Node{&rpyast.Scene{ImSpec: &rpyast.ImSpec{Expression: "img", Layer: "overlay"}}},
			want:  "scene expression img onlayer overlay\n",
		},
		"hide": {
			block: []rpyast.Node{&rpyast.Hide{ImSpec: rpyast.ImSpec{Name: []string{"eileen"}}}},
			want:  "hide eileen\n",
		},
		"if elif else": {
			block: []rpyast.Node{
				&rpyast.If{Entries: []rpyast.IfEntry{
					{Condition: rpyast.Expr("x"), Block: []rpyast.Node{&rpyast.Pass{}}},
					{Condition: rpyast.Expr("y"), Block: []rpyast.Node{&rpyast.Return{}}},
					{Block: []rpyast.Node{&rpyast.Jump{Target: "end"}}},
				}},
			},
			want: "if x:\n    pass\nelif y:\n    return\nelse:\n    jump end\n",
		},
		"while": {
			block: []rpyast.Node{
				&rpyast.While{Condition: rpyast.PyExpr{Text: "True"}, Block: []rpyast.Node{&rpyast.Pass{}}},
			},
			want: "while True:\n    pass\n",
		},
		"python block": {
			block: []rpyast.Node{
				&rpyast.Python{Code: rpyast.PyCode{Source: "\nx = 1\ny = [1,\n    2]"}, Hide: true, Store: "store.mine"},
			},
			want: "python hide in mine:\n    x = 1\n    y = [1,\n    2]\n",
		},
		"one line python": {
			block: []rpyast.Node{&rpyast.Python{Code: rpyast.PyCode{Source: "x += 1"}}},
			want:  "$ x += 1\n",
		},
		"early python": {
			block: []rpyast.Node{&rpyast.Python{Code: rpyast.PyCode{Source: "\nimport os"}, Early: true}},
			want:  "python early:\n    import os\n",
		},
		"user statement with block": {
			block: []rpyast.Node{
				&rpyast.UserStatement{Text: "layeredimage eileen", Block: []rpyast.LexLine{
					{Text: "always:", Block: []rpyast.LexLine{{Text: `"eileen_base"`}}},
				}},
			},
			want: "layeredimage eileen\n    always:\n        \"eileen_base\"\n",
		},
		"rpy directive": {
			block: []rpyast.Node{&rpyast.RPY{Rest: []string{"python", "3"}}},
			want:  "rpy python 3\n",
		},
		"translate block": {
			block: []rpyast.Node{
				&rpyast.Translate{Identifier: "start_1234", Language: str("french"), Block: []rpyast.Node{
					&rpyast.Say{Who: "e", What: "Bonjour", Interact: true},
				}},
				&rpyast.EndTranslate{},
			},
			want: "translate french start_1234:\n    e \"Bonjour\"\n",
		},
		"translate strings share a header": {
			block: []rpyast.Node{
				&rpyast.Init{Block: []rpyast.Node{
					&rpyast.TranslateString{Language: str("french"), Old: "Yes", New: "Oui"},
					&rpyast.TranslateString{Language: str("french"), Old: "No", New: "Non"},
				}},
			},
			want: "translate french strings:\n    old \"Yes\"\n    new \"Oui\"\n    old \"No\"\n    new \"Non\"\n",
		},
		"translate python block": {
			block: []rpyast.Node{
				&rpyast.TranslateBlock{Language: str("french"), Block: []rpyast.Node{
					&rpyast.Python{Code: rpyast.PyCode{Source: "\nx = 1"}},
				}},
			},
			want: "translate french python:\n    x = 1\n",
		},
		"menu with caption and condition": {
			block: []rpyast.Node{
				&rpyast.Menu{Set: "seen", Items: []rpyast.MenuItem{
					{Label: "Pick one"},
					{Label: "Left", Condition: rpyast.Expr("can_go"), Block: []rpyast.Node{&rpyast.Pass{}}},
					{Label: "Say \"hi\"", Block: []rpyast.Node{&rpyast.Pass{}}},
				}},
			},
			want: "menu:\n    set seen\n    \"Pick one\"\n    \"Left\" if can_go:\n        pass\n    \"Say \\\"hi\\\"\":\n        pass\n",
		},
		"say folds into menu": {
			block: []rpyast.Node{
				&rpyast.Say{Who: "e", What: "Choose"},
				&rpyast.Menu{Items: []rpyast.MenuItem{
					{Label: "A", Block: []rpyast.Node{&rpyast.Pass{}}},
					{Label: "B", Block: []rpyast.Node{&rpyast.Pass{}}},
				}},
			},
			want: "menu:\n    e \"Choose\"\n    \"A\":\n        pass\n    \"B\":\n        pass\n",
		},
		"label names its menu": {
			block: []rpyast.Node{
				&rpyast.Label{Loc: at(1), Name: "choice"},
				&rpyast.Menu{Loc: at(1), Items: []rpyast.MenuItem{
					{Label: "A", Block: []rpyast.Node{&rpyast.Pass{}}},
				}},
			},
			want: "menu choice:\n    \"A\":\n        pass\n",
		},
		"label with parameters and hide": {
			block: []rpyast.Node{
				&rpyast.Label{Name: "greet", Hide: true, Parameters: &rpyast.ParamInfo{Parameters: []rpyast.Parameter{
					{Name: "who", Kind: rpyast.PositionalOrKeyword},
					{Name: "loud", Kind: rpyast.KeywordOnly, Default: str("False")},
				}}, Block: []rpyast.Node{&rpyast.Return{Expression: str("who")}}},
			},
			want: "label greet(who, *, loud=False) hide:\n    return who\n",
		},
		"init label": {
			block: []rpyast.Node{
				&rpyast.Label{Name: "setup", Block: []rpyast.Node{
					&rpyast.Define{Varname: "x", Code: rpyast.PyCode{Source: "1"}, Store: "store"},
				}},
			},
			want: "init label setup:\n    define x = 1\n",
		},
		"implicit init around define": {
			block: []rpyast.Node{
				&rpyast.Init{Block: []rpyast.Node{
					&rpyast.Define{Varname: "x", Code: rpyast.PyCode{Source: "1"}, Store: "store.audio", Operator: "+=", Index: &rpyast.PyCode{Source: "0"}},
				}},
			},
			want: "define audio.x[0] += 1\n",
		},
		"define keeps a non default priority": {
			block: []rpyast.Node{
				&rpyast.Init{Priority: 10, Block: []rpyast.Node{
					&rpyast.Default{Varname: "y", Code: rpyast.PyCode{Source: "2"}, Store: "store"},
				}},
			},
			want: "default 10 y = 2\n",
		},
		"explicit init with one statement": {
			block: []rpyast.Node{
				&rpyast.Init{Priority: 5, Block: []rpyast.Node{
					&rpyast.Python{Code: rpyast.PyCode{Source: "\nx = 1"}},
				}},
			},
			want: "init 5 python:\n    x = 1\n",
		},
		"explicit init block": {
			block: []rpyast.Node{
				&rpyast.Init{Block: []rpyast.Node{
					&rpyast.Python{Code: rpyast.PyCode{Source: "x = 1"}},
					&rpyast.Python{Code: rpyast.PyCode{Source: "y = 2"}},
				}},
			},
			want: "init:\n    $ x = 1\n    $ y = 2\n",
		},
		"image with code": {
			block: []rpyast.Node{
				&rpyast.Init{Priority: 500, Block: []rpyast.Node{
					&rpyast.Image{Name: []string{"bg", "room"}, Code: &rpyast.PyCode{Source: `"room.png"`}},
				}},
			},
			want: "image bg room = \"room.png\"\n",
		},
		"transform with parameters": {
			block: []rpyast.Node{
				&rpyast.Init{Block: []rpyast.Node{
					&rpyast.Transform{Varname: "slide", Store: "store", Parameters: &rpyast.ParamInfo{
						Parameters: []rpyast.Parameter{{Name: "x", Kind: rpyast.PositionalOrKeyword}},
					}, ATL: &rpyast.ATLBlock{Statements: []rpyast.ATLNode{
						&rpyast.ATLMultipurpose{Warper: "linear", Duration: "1.0", Properties: []rpyast.ATLProperty{{Name: "xpos", Value: "x"}}},
					}}},
				}},
			},
			want: "transform slide(x):\n    linear 1.0 xpos x\n",
		},
		"style": {
			block: []rpyast.Node{
				&rpyast.Init{Block: []rpyast.Node{
					&rpyast.Style{Loc: at(1), Name: "big", Parent: "default", Properties: []rpyast.StyleProperty{
						{Name: "size", Value: rpyast.PyExpr{Text: "40", Linenumber: 2}},
						{Name: "bold", Value: rpyast.PyExpr{Text: "True", Linenumber: 2}},
					}},
				}},
			},
			want: "style big is default:\n    size 40 bold True\n",
		},
		"show layer and camera": {
			block: []rpyast.Node{
				&rpyast.ShowLayer{Layer: "master", AtList: []string{"shake"}},
				&rpyast.Camera{Layer: "master", AtList: []string{"zoomed"}},
			},
			want: "show layer master at shake\ncamera at zoomed\n",
		},
		"testcase": {
			block: []rpyast.Node{
				&rpyast.Init{Priority: 500, Block: []rpyast.Node{
					&rpyast.Testcase{Label: "default", Test: []rpyast.TestNode{
						&rpyast.TestClick{Pattern: str("Start"), Button: 1},
						&rpyast.TestUntil{
							Left:  &rpyast.TestClick{},
							Right: &rpyast.TestLabel{Name: "end"},
						},
						&rpyast.TestType{Keys: []string{"h", "i"}},
						&rpyast.TestDrag{Points: "[(0, 0), (10, 10)]", Button: 1, Steps: 20},
						&rpyast.TestAssert{Expr: "done"},
					}},
				}},
			},
			want: "testcase default:\n    \"Start\"\n    click until label end\n    type \"hi\"\n    drag [(0, 0), (10, 10)] steps 20\n    assert done\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, _ := render(t, tt.block, DefaultOptions())
			if got != tt.want {
				t.Errorf("Render() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderLines(t *testing.T) {
	type tc struct {
		block []rpyast.Node
		want  string
	}

	tests := map[string]tc{
		"blank lines restore original positions": {
			block: []rpyast.Node{
				&rpyast.Say{Loc: at(1), Who: "e", What: "a", Interact: true},
				&rpyast.Say{Loc: at(4), Who: "e", What: "b", Interact: true},
			},
			want: "e \"a\"\n\n\ne \"b\"\n",
		},
		"first statement is not pushed down": {
			block: []rpyast.Node{
				&rpyast.Say{Loc: at(10), Who: "e", What: "a", Interact: true},
			},
			want: "e \"a\"\n",
		},
		"implicit trailing return is dropped": {
			block: []rpyast.Node{
				&rpyast.Pass{Loc: at(1)},
				&rpyast.Return{Loc: at(1)},
			},
			want: "pass\n",
		},
		"explicit trailing return is kept": {
			block: []rpyast.Node{
				&rpyast.Pass{Loc: at(1)},
				&rpyast.Return{Loc: at(2)},
			},
			want: "pass\nreturn\n",
		},
		"init child on a later line gets a block": {
			block: []rpyast.Node{
				&rpyast.Init{Loc: at(1), Block: []rpyast.Node{
					&rpyast.Python{Loc: at(2), Code: rpyast.PyCode{Source: "config.x = 1"}},
				}},
				&rpyast.Init{Loc: at(4), Priority: 5, Block: []rpyast.Node{
					&rpyast.Python{Loc: at(5), Code: rpyast.PyCode{Source: "y = 2"}},
				}},
			},
			want: "init:\n    $ config.x = 1\n\ninit 5:\n    $ y = 2\n",
		},
		"init child on the same line shares it": {
			block: []rpyast.Node{
				&rpyast.Init{Loc: at(3), Priority: 5, Block: []rpyast.Node{
					&rpyast.Python{Loc: at(3), Code: rpyast.PyCode{Source: "\nx = 1"}},
				}},
			},
			want: "init 5 python:\n    x = 1\n",
		},
		"translate block header moves to its child": {
			block: []rpyast.Node{
				&rpyast.Say{Loc: at(1), Who: "e", What: "a", Interact: true},
				&rpyast.TranslateBlock{Loc: at(3), Language: str("french"), Block: []rpyast.Node{
					&rpyast.Python{Loc: at(4), Code: rpyast.PyCode{Source: "\nx = 1"}},
				}},
			},
			want: "e \"a\"\n\n\ntranslate french python:\n    x = 1\n",
		},
		"translate block child on the same line": {
			block: []rpyast.Node{
				&rpyast.Say{Loc: at(1), Who: "e", What: "a", Interact: true},
				&rpyast.TranslateBlock{Loc: at(3), Language: str("french"), Block: []rpyast.Node{
					&rpyast.Python{Loc: at(3), Code: rpyast.PyCode{Source: "\nx = 1"}},
				}},
			},
			want: "e \"a\"\n\ntranslate french python:\n    x = 1\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, _ := render(t, tt.block, DefaultOptions())
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderStructureErrors(t *testing.T) {
	type tc struct {
		block []rpyast.Node
		node  string
	}

	tests := map[string]tc{
		"paired with without partner": {
			block: []rpyast.Node{
				&rpyast.With{Loc: at(3), Expr: "None", Paired: str("dissolve")},
				&rpyast.Show{ImSpec: rpyast.ImSpec{Name: []string{"e"}}},
			},
			node: "With",
		},
		"paired with partner mismatch": {
			block: []rpyast.Node{
				&rpyast.With{Expr: "None", Paired: str("dissolve")},
				&rpyast.Show{ImSpec: rpyast.ImSpec{Name: []string{"e"}}},
				&rpyast.With{Expr: "fade"},
			},
			node: "With",
		},
		"call without return label": {
			block: []rpyast.Node{
				&rpyast.Call{Label: "sub"},
				&rpyast.Say{What: "x", Interact: true},
			},
			node: "Call",
		},
		"call at end of block": {
			block: []rpyast.Node{&rpyast.Call{Label: "sub"}},
			node:  "Call",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, _, err := Render(tt.block, DefaultOptions())
			if err == nil {
				t.Fatalf("Render() = %q, want error", out)
			}
			if !errors.Is(err, ErrStructure) {
				t.Errorf("Render() error = %v, want ErrStructure", err)
			}
			var serr *Error
			if !errors.As(err, &serr) {
				t.Fatalf("Render() error type = %T, want *Error", err)
			}
			if serr.Node != tt.node {
				t.Errorf("Error.Node = %q, want %q", serr.Node, tt.node)
			}
			if out != "" {
				t.Errorf("Render() output = %q, want none on error", out)
			}
		})
	}
}

func TestPairedWithNeverStandalone(t *testing.T) {
	directives := map[string]rpyast.Node{
		"scene": &rpyast.Scene{ImSpec: &rpyast.ImSpec{Name: []string{"bg"}}},
		"show":  &rpyast.Show{ImSpec: rpyast.ImSpec{Name: []string{"bg"}}},
		"hide":  &rpyast.Hide{ImSpec: rpyast.ImSpec{Name: []string{"bg"}}},
	}

	for name, directive := range directives {
		t.Run(name, func(t *testing.T) {
			block := []rpyast.Node{
				&rpyast.With{Expr: "None", Paired: str("vpunch")},
				directive,
				&rpyast.With{Expr: "vpunch"},
				&rpyast.Say{What: "after", Interact: true},
			}
			got, _ := render(t, block, DefaultOptions())

			if n := strings.Count(got, "with vpunch"); n != 1 {
				t.Errorf("Render() has %d with clauses, want 1:\n%s", n, got)
			}
			for _, line := range strings.Split(got, "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), "with ") {
					t.Errorf("Render() has standalone with line %q", line)
				}
			}
			if !strings.HasPrefix(got, name+" bg with vpunch\n") {
				t.Errorf("Render() = %q, want %s with its clause", got, name)
			}
		})
	}
}

func TestRenderUnknownNode(t *testing.T) {
	block := []rpyast.Node{
		&rpyast.Opaque{Module: "renpy.ast", Name: "Frobnicate"},
		&rpyast.Say{What: "still here", Interact: true},
	}

	got, log := render(t, block, DefaultOptions())

	want := "pass # <<<COULD NOT DECOMPILE: Unknown AST node: renpy.ast.Frobnicate>>>\n\"still here\"\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if len(log) != 1 || !strings.Contains(log[0], "renpy.ast.Frobnicate") {
		t.Errorf("Render() log = %q, want one entry naming the node", log)
	}
}

func TestRenderMissingInitIsLogged(t *testing.T) {
	block := []rpyast.Node{
		&rpyast.Define{Varname: "x", Code: rpyast.PyCode{Source: "1"}, Store: "store"},
	}

	got, log := render(t, block, DefaultOptions())

	if got != "define x = 1\n" {
		t.Errorf("Render() = %q, want %q", got, "define x = 1\n")
	}
	if len(log) != 1 {
		t.Errorf("Render() log = %q, want one entry", log)
	}
}

func TestInitOffset(t *testing.T) {
	define := func(name string, line int) rpyast.Node {
		return &rpyast.Define{Loc: at(line), Varname: name, Code: rpyast.PyCode{Source: "0"}, Store: "store"}
	}
	block := []rpyast.Node{
		&rpyast.Say{Loc: at(1), What: "top", Interact: true},
		&rpyast.Init{Loc: at(4), Priority: 5, Block: []rpyast.Node{define("a", 4)}},
		&rpyast.Init{Loc: at(5), Priority: 5, Block: []rpyast.Node{define("b", 5)}},
		&rpyast.Init{Loc: at(6), Priority: 5, Block: []rpyast.Node{define("c", 6)}},
	}

	opts := DefaultOptions()
	opts.AssumeInitOffset = true
	got, _ := render(t, block, opts)

	want := "\"top\"\ninit offset = 5\n\ndefine a = 0\ndefine b = 0\ndefine c = 0\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	got, _ = render(t, block, DefaultOptions())
	want = "\"top\"\n\n\ndefine 5 a = 0\ndefine 5 b = 0\ndefine 5 c = 0\n"
	if got != want {
		t.Errorf("Render() without offset = %q, want %q", got, want)
	}
}

func TestSnapshotRollback(t *testing.T) {
	d := newDecompiler(DefaultOptions())
	d.write("label a:")
	d.depth = 1
	d.pairMode = pairPending
	saved := d.save()

	d.writeIndent()
	d.write("x\ny")
	d.depth = 3
	d.pairMode = pairConsumed
	d.logf("speculative")
	d.restore(saved)

	if got := d.buf.String(); got != "label a:" {
		t.Errorf("buffer after restore = %q, want %q", got, "label a:")
	}
	if d.linenumber != 1 || d.depth != 1 || d.pairMode != pairPending || len(d.log) != 0 {
		t.Errorf("state after restore = line %d depth %d pair %d log %d", d.linenumber, d.depth, d.pairMode, len(d.log))
	}
}
