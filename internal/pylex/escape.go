package pylex

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// reDoubleSpace matches a space that follows another space, which the
// script lexer would otherwise collapse.
var reDoubleSpace = regexp2.MustCompile(`(?<= ) `, regexp2.None)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
)

// Escape escapes s for use inside a double quoted menu caption or
// translation string.
func Escape(s string) string {
	return escaper.Replace(s)
}

var sayEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	`"`, `\"`,
)

// QuoteSay quotes dialogue text. Runs of spaces are kept by escaping every
// space after the first.
func QuoteSay(s string) string {
	s = sayEscaper.Replace(s)
	if out, err := reDoubleSpace.Replace(s, `\ `, -1, -1); err == nil {
		s = out
	}
	return `"` + s + `"`
}
