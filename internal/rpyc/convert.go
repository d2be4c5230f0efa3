package rpyc

import (
	"fmt"
	"strconv"

	"github.com/grindlemire/go-unrpyc/internal/pickle"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

const (
	astModule     = "renpy.ast"
	atlModule     = "renpy.atl"
	sl2Module     = "renpy.sl2.slast"
	sl1Module     = "renpy.screenlang"
	testastModule = "renpy.test.testast"
)

// converter turns the pickled object graph into rpyast nodes. It keeps
// the first mismatch it finds and carries on with zero values, so one
// pass reports one error.
type converter struct {
	err error
}

func (c *converter) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
	}
}

func className(o *pickle.Object) string {
	if o.Class == nil {
		return "object"
	}
	return o.Class.String()
}

func attr(o *pickle.Object, name string) pickle.Value {
	v, _ := o.Attr(name)
	return v
}

func (c *converter) object(v pickle.Value, what string) *pickle.Object {
	o, ok := v.(*pickle.Object)
	if !ok || o.Class == nil {
		c.fail("%s is a %s, want an object", what, pickle.TypeName(v))
		return nil
	}
	return o
}

func (c *converter) text(v pickle.Value, what string) string {
	if pickle.IsNone(v) {
		return ""
	}
	s, ok := pickle.AsString(v)
	if !ok {
		c.fail("%s is a %s, want a string", what, pickle.TypeName(v))
	}
	return s
}

func (c *converter) str(o *pickle.Object, name string) string {
	return c.text(attr(o, name), className(o)+"."+name)
}

func (c *converter) optStr(o *pickle.Object, name string) *string {
	v := attr(o, name)
	if pickle.IsNone(v) {
		return nil
	}
	s := c.text(v, className(o)+"."+name)
	return &s
}

func (c *converter) integer(o *pickle.Object, name string, def int) int {
	v, ok := o.Attr(name)
	if !ok || pickle.IsNone(v) {
		return def
	}
	n, ok := pickle.AsInt(v)
	if !ok {
		c.fail("%s.%s is a %s, want an int", className(o), name, pickle.TypeName(v))
	}
	return int(n)
}

func (c *converter) strings(v pickle.Value, what string) []string {
	if pickle.IsNone(v) {
		return nil
	}
	items, ok := pickle.AsList(v)
	if !ok {
		c.fail("%s is a %s, want a sequence", what, pickle.TypeName(v))
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, c.text(item, what))
	}
	return out
}

func (c *converter) list(v pickle.Value, what string) []pickle.Value {
	if pickle.IsNone(v) {
		return nil
	}
	items, ok := pickle.AsList(v)
	if !ok {
		c.fail("%s is a %s, want a sequence", what, pickle.TypeName(v))
	}
	return items
}

// tuple unpacks a fixed-size sequence.
func (c *converter) tuple(v pickle.Value, n int, what string) []pickle.Value {
	items, ok := pickle.AsList(v)
	if !ok || len(items) < n {
		c.fail("%s is a %s, want a %d-tuple", what, pickle.TypeName(v), n)
		return make([]pickle.Value, n)
	}
	return items
}

func (c *converter) loc(o *pickle.Object) rpyast.Loc {
	return rpyast.Loc{
		Filename:   c.str(o, "filename"),
		Linenumber: c.integer(o, "linenumber", 0),
	}
}

// tupleLoc reads a (filename, line) location.
func (c *converter) tupleLoc(v pickle.Value) rpyast.Loc {
	items, ok := pickle.AsList(v)
	if !ok || len(items) < 2 {
		return rpyast.Loc{}
	}
	filename, _ := pickle.AsString(items[0])
	line, _ := pickle.AsInt(items[1])
	return rpyast.Loc{Filename: filename, Linenumber: int(line)}
}

// pyExpr reads an expression. Plain strings carry no location.
func (c *converter) pyExpr(v pickle.Value, what string) *rpyast.PyExpr {
	switch v := v.(type) {
	case nil, pickle.None:
		return nil
	case string, pickle.Bytes:
		s, _ := pickle.AsString(v)
		return &rpyast.PyExpr{Text: s}
	case *pickle.Object:
		e := &rpyast.PyExpr{}
		if len(v.Args) > 0 {
			e.Text = c.text(v.Args[0], what)
		}
		if len(v.Args) > 1 {
			e.Filename, _ = pickle.AsString(v.Args[1])
		}
		if len(v.Args) > 2 {
			n, _ := pickle.AsInt(v.Args[2])
			e.Linenumber = int(n)
		}
		if f, ok := v.Attr("filename"); ok {
			e.Filename, _ = pickle.AsString(f)
		}
		if l, ok := v.Attr("linenumber"); ok {
			n, _ := pickle.AsInt(l)
			e.Linenumber = int(n)
		}
		return e
	}
	c.fail("%s is a %s, want an expression", what, pickle.TypeName(v))
	return nil
}

func (c *converter) exprText(v pickle.Value, what string) string {
	if e := c.pyExpr(v, what); e != nil {
		return e.Text
	}
	return ""
}

func (c *converter) exprTexts(v pickle.Value, what string) []string {
	items := c.list(v, what)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, c.exprText(item, what))
	}
	return out
}

// pyCodeParts splits a code object into its source value, location and
// mode. Current versions pickle the state as (version, source,
// location, mode[, py]).
func (c *converter) pyCodeParts(v pickle.Value, what string) (pickle.Value, rpyast.Loc, string) {
	o := c.object(v, what)
	if o == nil {
		return nil, rpyast.Loc{}, ""
	}
	if st, ok := o.State.(pickle.Tuple); ok && len(st) >= 4 {
		if _, isInt := st[0].(int64); isInt {
			mode, _ := pickle.AsString(st[3])
			return st[1], c.tupleLoc(st[2]), mode
		}
	}
	return attr(o, "source"), c.tupleLoc(attr(o, "location")), c.str(o, "mode")
}

func (c *converter) pyCode(v pickle.Value, what string) rpyast.PyCode {
	source, loc, mode := c.pyCodeParts(v, what)
	code := rpyast.PyCode{
		Source:     c.text(source, what+".source"),
		Filename:   loc.Filename,
		Linenumber: loc.Linenumber,
		Mode:       mode,
	}
	if e, ok := source.(*pickle.Object); ok && code.Filename == "" {
		// the source of an expression code object is itself located.
		if pe := c.pyExpr(e, what); pe != nil {
			code.Filename, code.Linenumber = pe.Filename, pe.Linenumber
		}
	}
	return code
}

func (c *converter) optPyCode(v pickle.Value, what string) *rpyast.PyCode {
	if pickle.IsNone(v) {
		return nil
	}
	code := c.pyCode(v, what)
	return &code
}

// block converts a statement list.
func (c *converter) block(v pickle.Value) []rpyast.Node {
	items := c.list(v, "block")
	if items == nil {
		return nil
	}
	out := make([]rpyast.Node, 0, len(items))
	for _, item := range items {
		if n := c.node(item); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func opaque(c *converter, o *pickle.Object) *rpyast.Opaque {
	op := &rpyast.Opaque{Module: o.Class.Module, Name: o.Class.Name}
	if v, ok := o.Attr("linenumber"); ok {
		n, _ := pickle.AsInt(v)
		op.Linenumber = int(n)
		op.Filename, _ = pickle.AsString(attr(o, "filename"))
	} else if v, ok := o.Attr("loc"); ok {
		op.Loc = c.tupleLoc(v)
	} else if v, ok := o.Attr("location"); ok {
		op.Loc = c.tupleLoc(v)
	}
	return op
}

func (c *converter) node(v pickle.Value) rpyast.Node {
	o := c.object(v, "statement")
	if o == nil {
		return nil
	}
	if o.Class.Module != astModule {
		return opaque(c, o)
	}

	loc := c.loc(o)
	switch o.Class.Name {
	case "Label":
		return &rpyast.Label{
			Loc:        loc,
			Name:       c.str(o, "name"),
			Parameters: c.params(attr(o, "parameters")),
			Block:      c.block(attr(o, "block")),
			Hide:       pickle.AsBool(attr(o, "hide")),
		}
	case "Say":
		return c.say(o, loc)
	case "TranslateSay":
		return &rpyast.TranslateSay{Say: *c.say(o, loc), Language: c.optStr(o, "language")}
	case "Scene":
		scene := &rpyast.Scene{Loc: loc, Layer: c.str(o, "layer"), ATL: c.atlBlock(attr(o, "atl"))}
		if im := attr(o, "imspec"); !pickle.IsNone(im) {
			spec := c.imspec(im)
			scene.ImSpec = &spec
		}
		return scene
	case "Show":
		return &rpyast.Show{Loc: loc, ImSpec: c.imspec(attr(o, "imspec")), ATL: c.atlBlock(attr(o, "atl"))}
	case "ShowLayer":
		return &rpyast.ShowLayer{
			Loc:    loc,
			Layer:  c.str(o, "layer"),
			AtList: c.exprTexts(attr(o, "at_list"), "ShowLayer.at_list"),
			ATL:    c.atlBlock(attr(o, "atl")),
		}
	case "Camera":
		return &rpyast.Camera{
			Loc:    loc,
			Layer:  c.str(o, "layer"),
			AtList: c.exprTexts(attr(o, "at_list"), "Camera.at_list"),
			ATL:    c.atlBlock(attr(o, "atl")),
		}
	case "Hide":
		return &rpyast.Hide{Loc: loc, ImSpec: c.imspec(attr(o, "imspec"))}
	case "With":
		with := &rpyast.With{Loc: loc, Expr: c.exprText(attr(o, "expr"), "With.expr")}
		if p := attr(o, "paired"); !pickle.IsNone(p) {
			paired := c.exprText(p, "With.paired")
			with.Paired = &paired
		}
		return with
	case "Jump":
		return &rpyast.Jump{Loc: loc, Target: c.str(o, "target"), Expression: pickle.AsBool(attr(o, "expression"))}
	case "Call":
		return &rpyast.Call{
			Loc:        loc,
			Label:      c.str(o, "label"),
			Expression: pickle.AsBool(attr(o, "expression")),
			Arguments:  c.args(attr(o, "arguments")),
		}
	case "Return":
		return &rpyast.Return{Loc: loc, Expression: c.optStr(o, "expression")}
	case "If":
		return c.ifStmt(o, loc)
	case "While":
		cond := c.pyExpr(attr(o, "condition"), "While.condition")
		if cond == nil {
			cond = &rpyast.PyExpr{}
		}
		return &rpyast.While{Loc: loc, Condition: *cond, Block: c.block(attr(o, "block"))}
	case "Pass":
		return &rpyast.Pass{Loc: loc}
	case "Init":
		return &rpyast.Init{Loc: loc, Priority: c.integer(o, "priority", 0), Block: c.block(attr(o, "block"))}
	case "Menu":
		return c.menu(o, loc)
	case "Python", "EarlyPython":
		return &rpyast.Python{
			Loc:   loc,
			Code:  c.pyCode(attr(o, "code"), o.Class.Name+".code"),
			Hide:  pickle.AsBool(attr(o, "hide")),
			Store: c.store(o),
			Early: o.Class.Name == "EarlyPython",
		}
	case "Define":
		operator := c.str(o, "operator")
		if operator == "" {
			operator = "="
		}
		return &rpyast.Define{
			Loc:      loc,
			Varname:  c.str(o, "varname"),
			Code:     c.pyCode(attr(o, "code"), "Define.code"),
			Store:    c.store(o),
			Operator: operator,
			Index:    c.optPyCode(attr(o, "index"), "Define.index"),
		}
	case "Default":
		return &rpyast.Default{
			Loc:     loc,
			Varname: c.str(o, "varname"),
			Code:    c.pyCode(attr(o, "code"), "Default.code"),
			Store:   c.store(o),
		}
	case "Image":
		return &rpyast.Image{
			Loc:  loc,
			Name: c.strings(attr(o, "imgname"), "Image.imgname"),
			Code: c.optPyCode(attr(o, "code"), "Image.code"),
			ATL:  c.atlBlock(attr(o, "atl")),
		}
	case "Transform":
		return &rpyast.Transform{
			Loc:        loc,
			Varname:    c.str(o, "varname"),
			Store:      c.store(o),
			Parameters: c.params(attr(o, "parameters")),
			ATL:        c.atlBlock(attr(o, "atl")),
		}
	case "UserStatement":
		return &rpyast.UserStatement{Loc: loc, Text: c.str(o, "line"), Block: c.lexLines(attr(o, "block"))}
	case "PostUserStatement":
		return &rpyast.PostUserStatement{Loc: loc}
	case "Style":
		return c.style(o, loc)
	case "Translate":
		return &rpyast.Translate{
			Loc:        loc,
			Identifier: c.str(o, "identifier"),
			Language:   c.optStr(o, "language"),
			Block:      c.block(attr(o, "block")),
		}
	case "EndTranslate":
		return &rpyast.EndTranslate{Loc: loc}
	case "TranslateString":
		ts := &rpyast.TranslateString{
			Loc:      loc,
			Language: c.optStr(o, "language"),
			Old:      c.str(o, "old"),
			New:      c.str(o, "new"),
		}
		if newloc, ok := o.Attr("newloc"); ok {
			ts.NewLine = c.tupleLoc(newloc).Linenumber
		}
		return ts
	case "TranslateBlock", "TranslateEarlyBlock":
		return &rpyast.TranslateBlock{
			Loc:      loc,
			Language: c.optStr(o, "language"),
			Block:    c.block(attr(o, "block")),
			Early:    o.Class.Name == "TranslateEarlyBlock",
		}
	case "Screen":
		screen := c.screen(attr(o, "screen"))
		if screen == nil {
			return opaque(c, o)
		}
		return &rpyast.Screen{Loc: loc, Screen: screen}
	case "Testcase":
		return &rpyast.Testcase{Loc: loc, Label: c.str(o, "label"), Test: c.testBlock(attr(o, "test"))}
	case "RPY":
		return &rpyast.RPY{Loc: loc, Rest: c.strings(attr(o, "rest"), "RPY.rest")}
	}
	return opaque(c, o)
}

// store defaults to "store" for versions that predate named stores.
func (c *converter) store(o *pickle.Object) string {
	if s := c.str(o, "store"); s != "" {
		return s
	}
	return "store"
}

func (c *converter) say(o *pickle.Object, loc rpyast.Loc) *rpyast.Say {
	interact := true
	if v, ok := o.Attr("interact"); ok {
		interact = pickle.AsBool(v)
	}
	return &rpyast.Say{
		Loc:                 loc,
		Who:                 c.str(o, "who"),
		What:                c.str(o, "what"),
		With:                c.exprText(attr(o, "with_"), "Say.with_"),
		Interact:            interact,
		Attributes:          c.strings(attr(o, "attributes"), "Say.attributes"),
		TemporaryAttributes: c.strings(attr(o, "temporary_attributes"), "Say.temporary_attributes"),
		Identifier:          c.str(o, "identifier"),
		Arguments:           c.args(attr(o, "arguments")),
	}
}

// imspec reads the image specifier tuple, which grew from 3 to 6 to 7
// fields over time.
func (c *converter) imspec(v pickle.Value) rpyast.ImSpec {
	items, ok := pickle.AsList(v)
	if !ok {
		c.fail("imspec is a %s, want a tuple", pickle.TypeName(v))
		return rpyast.ImSpec{}
	}

	var spec rpyast.ImSpec
	switch len(items) {
	case 3:
		spec.Name = c.strings(items[0], "imspec name")
		spec.AtList = c.exprTexts(items[1], "imspec at list")
		spec.Layer = c.text(items[2], "imspec layer")
	case 6, 7:
		spec.Name = c.strings(items[0], "imspec name")
		spec.Expression = c.exprText(items[1], "imspec expression")
		spec.Tag = c.text(items[2], "imspec tag")
		spec.AtList = c.exprTexts(items[3], "imspec at list")
		spec.Layer = c.text(items[4], "imspec layer")
		spec.Zorder = c.exprText(items[5], "imspec zorder")
		if len(items) == 7 {
			spec.Behind = c.strings(items[6], "imspec behind")
		}
	default:
		c.fail("imspec has %d fields", len(items))
	}
	return spec
}

func (c *converter) ifStmt(o *pickle.Object, loc rpyast.Loc) *rpyast.If {
	entries := c.list(attr(o, "entries"), "If.entries")
	stmt := &rpyast.If{Loc: loc}
	for i, e := range entries {
		pair := c.tuple(e, 2, "If entry")
		entry := rpyast.IfEntry{Block: c.block(pair[1])}
		// The else branch carries the plain string "True" rather than an
		// expression object.
		_, isExpr := pair[0].(*pickle.Object)
		if isExpr || i+1 < len(entries) {
			entry.Condition = c.pyExpr(pair[0], "If condition")
		}
		stmt.Entries = append(stmt.Entries, entry)
	}
	return stmt
}

func (c *converter) menu(o *pickle.Object, loc rpyast.Loc) *rpyast.Menu {
	menu := &rpyast.Menu{
		Loc:       loc,
		Set:       c.exprText(attr(o, "set"), "Menu.set"),
		With:      c.exprText(attr(o, "with_"), "Menu.with_"),
		Arguments: c.args(attr(o, "arguments")),
	}
	itemArgs := c.list(attr(o, "item_arguments"), "Menu.item_arguments")
	for i, v := range c.list(attr(o, "items"), "Menu.items") {
		triple := c.tuple(v, 3, "menu item")
		item := rpyast.MenuItem{Label: c.text(triple[0], "menu item label")}
		if _, isExpr := triple[1].(*pickle.Object); isExpr {
			item.Condition = c.pyExpr(triple[1], "menu item condition")
		}
		if !pickle.IsNone(triple[2]) {
			item.Block = c.block(triple[2])
			if item.Block == nil {
				item.Block = []rpyast.Node{}
			}
		}
		if i < len(itemArgs) {
			item.Arguments = c.args(itemArgs[i])
		}
		menu.Items = append(menu.Items, item)
	}
	return menu
}

func (c *converter) lexLines(v pickle.Value) []rpyast.LexLine {
	var out []rpyast.LexLine
	for _, item := range c.list(v, "lexer block") {
		fields := c.tuple(item, 4, "lexer line")
		line, _ := pickle.AsInt(fields[1])
		out = append(out, rpyast.LexLine{
			Filename:   c.text(fields[0], "lexer line filename"),
			Linenumber: int(line),
			Text:       c.text(fields[2], "lexer line text"),
			Block:      c.lexLines(fields[3]),
		})
	}
	return out
}

func (c *converter) style(o *pickle.Object, loc rpyast.Loc) *rpyast.Style {
	style := &rpyast.Style{
		Loc:     loc,
		Name:    c.str(o, "style_name"),
		Parent:  c.str(o, "parent"),
		Clear:   pickle.AsBool(attr(o, "clear")),
		Take:    c.str(o, "take"),
		Delattr: c.strings(attr(o, "delattr"), "Style.delattr"),
		Variant: c.pyExpr(attr(o, "variant"), "Style.variant"),
	}
	props, _ := pickle.AsDict(attr(o, "properties"))
	for _, e := range props {
		value := c.pyExpr(e.Value, "style property")
		if value == nil {
			value = &rpyast.PyExpr{Text: "None"}
		}
		style.Properties = append(style.Properties, rpyast.StyleProperty{
			Name:  c.text(e.Key, "style property name"),
			Value: *value,
		})
	}
	return style
}

// paramPair reads a (name, default) pair.
func (c *converter) paramPair(v pickle.Value) (string, *string) {
	pair := c.tuple(v, 2, "parameter")
	name := c.text(pair[0], "parameter name")
	if pickle.IsNone(pair[1]) {
		return name, nil
	}
	def := c.exprText(pair[1], "parameter default")
	return name, &def
}

// params reads a parameter list in any of its three historical shapes:
// named pairs with positional bookkeeping, the same with positional-only
// and keyword-only lists, and a signature of kinded parameters.
func (c *converter) params(v pickle.Value) *rpyast.ParamInfo {
	if pickle.IsNone(v) {
		return nil
	}
	o := c.object(v, "parameters")
	if o == nil {
		return nil
	}

	info := &rpyast.ParamInfo{}
	add := func(name string, kind rpyast.ParamKind, def *string) {
		info.Parameters = append(info.Parameters, rpyast.Parameter{Name: name, Kind: kind, Default: def})
	}
	addStar := func(field string, kind rpyast.ParamKind) {
		if name := c.str(o, field); name != "" {
			add(name, kind, nil)
		}
	}

	if _, ok := o.Attr("positional_only"); ok {
		seen := map[string]bool{}
		for _, p := range c.list(attr(o, "positional_only"), "positional_only") {
			name, def := c.paramPair(p)
			seen[name] = true
			add(name, rpyast.PositionalOnly, def)
		}
		keywordOnly := c.list(attr(o, "keyword_only"), "keyword_only")
		for _, p := range keywordOnly {
			name, _ := c.paramPair(p)
			seen[name] = true
		}
		for _, p := range c.list(attr(o, "parameters"), "parameters") {
			if name, def := c.paramPair(p); !seen[name] {
				add(name, rpyast.PositionalOrKeyword, def)
			}
		}
		addStar("extrapos", rpyast.VarPositional)
		for _, p := range keywordOnly {
			name, def := c.paramPair(p)
			add(name, rpyast.KeywordOnly, def)
		}
		addStar("extrakw", rpyast.VarKeyword)
		return info
	}

	if _, ok := o.Attr("extrapos"); ok {
		positional := map[string]bool{}
		for _, name := range c.strings(attr(o, "positional"), "positional") {
			positional[name] = true
		}
		var keywordOnly []rpyast.Parameter
		for _, p := range c.list(attr(o, "parameters"), "parameters") {
			name, def := c.paramPair(p)
			if positional[name] {
				add(name, rpyast.PositionalOrKeyword, def)
			} else {
				keywordOnly = append(keywordOnly, rpyast.Parameter{Name: name, Kind: rpyast.KeywordOnly, Default: def})
			}
		}
		addStar("extrapos", rpyast.VarPositional)
		info.Parameters = append(info.Parameters, keywordOnly...)
		addStar("extrakw", rpyast.VarKeyword)
		return info
	}

	entries, ok := pickle.AsDict(attr(o, "parameters"))
	if !ok {
		c.fail("%s.parameters is a %s, want a dict", className(o), pickle.TypeName(attr(o, "parameters")))
		return info
	}
	for _, e := range entries {
		p := c.object(e.Value, "parameter")
		if p == nil {
			continue
		}
		kind := c.integer(p, "kind", int(rpyast.PositionalOrKeyword))
		if kind < int(rpyast.PositionalOnly) || kind > int(rpyast.VarKeyword) {
			c.fail("parameter kind %d", kind)
		}
		var def *string
		if d := attr(p, "default"); !pickle.IsNone(d) {
			s := c.exprText(d, "parameter default")
			def = &s
		}
		add(c.str(p, "name"), rpyast.ParamKind(kind), def)
	}
	return info
}

// args reads an argument list. Newer versions mark unpacked arguments
// by index; older ones keep a single *args and **kwargs at the end.
func (c *converter) args(v pickle.Value) *rpyast.ArgInfo {
	if pickle.IsNone(v) {
		return nil
	}
	o := c.object(v, "arguments")
	if o == nil {
		return nil
	}

	indexes := func(field string) map[int]bool {
		set := map[int]bool{}
		for _, item := range c.list(attr(o, field), field) {
			n, _ := pickle.AsInt(item)
			set[int(n)] = true
		}
		return set
	}
	starred := indexes("starred_indexes")
	doubleStarred := indexes("doublestarred_indexes")

	info := &rpyast.ArgInfo{}
	for i, a := range c.list(attr(o, "arguments"), "arguments") {
		pair := c.tuple(a, 2, "argument")
		info.Arguments = append(info.Arguments, rpyast.Argument{
			Name:          c.text(pair[0], "argument name"),
			Value:         c.exprText(pair[1], "argument value"),
			Starred:       starred[i],
			DoubleStarred: doubleStarred[i],
		})
	}
	if _, ok := o.Attr("starred_indexes"); !ok {
		if s := c.exprText(attr(o, "extrapos"), "extrapos"); s != "" {
			info.Arguments = append(info.Arguments, rpyast.Argument{Value: s, Starred: true})
		}
		if s := c.exprText(attr(o, "extrakw"), "extrakw"); s != "" {
			info.Arguments = append(info.Arguments, rpyast.Argument{Value: s, DoubleStarred: true})
		}
	}
	return info
}

// styleTag renders the style a displayable was compiled with. Some
// compilers record an int.
func styleTag(v pickle.Value) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case nil, pickle.None:
		return ""
	}
	s, _ := pickle.AsString(v)
	return s
}
