package decompiler

import (
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

// paramString renders a parameter list including its parentheses, or ""
// for a nil list. The `/` and bare `*` markers are inferred from the
// parameter kinds.
func paramString(info *rpyast.ParamInfo) string {
	if info == nil {
		return ""
	}

	const (
		positionalOnly = iota
		positionalOrKeyword
		keywordOnly
		varKeyword
	)

	var parts []string
	state := positionalOrKeyword
	withDefault := func(p rpyast.Parameter) string {
		if p.Default == nil {
			return p.Name
		}
		return p.Name + "=" + *p.Default
	}

	for _, p := range info.Parameters {
		if p.Kind == rpyast.PositionalOnly {
			state = positionalOnly
			parts = append(parts, withDefault(p))
			continue
		}
		if state == positionalOnly {
			state = positionalOrKeyword
			parts = append(parts, "/")
		}

		switch p.Kind {
		case rpyast.PositionalOrKeyword:
			parts = append(parts, withDefault(p))
		case rpyast.VarPositional:
			state = keywordOnly
			parts = append(parts, "*"+p.Name)
		case rpyast.KeywordOnly:
			if state == positionalOrKeyword {
				state = keywordOnly
				parts = append(parts, "*")
			}
			parts = append(parts, withDefault(p))
		case rpyast.VarKeyword:
			state = varKeyword
			parts = append(parts, "**"+p.Name)
		}
	}
	if state == positionalOnly {
		parts = append(parts, "/")
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

// argString renders an argument list including its parentheses, or ""
// for a nil list.
func argString(info *rpyast.ArgInfo) string {
	if info == nil {
		return ""
	}

	parts := make([]string, 0, len(info.Arguments))
	for _, a := range info.Arguments {
		switch {
		case a.Name != "":
			parts = append(parts, a.Name+"="+a.Value)
		case a.Starred:
			parts = append(parts, "*"+a.Value)
		case a.DoubleStarred:
			parts = append(parts, "**"+a.Value)
		default:
			parts = append(parts, a.Value)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
