// Package pylex holds the small text utilities the decompiler needs to
// re-emit python expressions and code blocks: a restrictive simple
// expression recognizer, a logical line splitter and a word joiner.
package pylex

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// keywords can never start or continue a simple expression.
var keywords = map[string]bool{
	"$": true, "as": true, "at": true, "behind": true, "call": true,
	"expression": true, "hide": true, "if": true, "in": true, "image": true,
	"init": true, "jump": true, "menu": true, "onlayer": true, "python": true,
	"return": true, "scene": true, "set": true, "show": true, "with": true,
	"while": true, "zorder": true, "transform": true,
}

// All patterns are anchored with \G so they only match at the position
// handed to FindRunesMatchStartingAt.
var (
	reWhitespace = regexp2.MustCompile(`\G(?:\s+|\\\n)+`, regexp2.Singleline)
	reString     = regexp2.MustCompile(`\G(?:u?(?<a>"(?:"")?|'(?:'')?).*?(?<=[^\\])(?:\\\\)*\k<a>)`, regexp2.Singleline)
	reNumber     = regexp2.MustCompile(`\G(?:\+|-)?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`, regexp2.Singleline)
	reWord       = regexp2.MustCompile(`\G[a-zA-Z_\u00a0-\ufffd][0-9a-zA-Z_\u00a0-\ufffd]*`, regexp2.Singleline)
	reDot        = regexp2.MustCompile(`\G\.`, regexp2.Singleline)
	reComment    = regexp2.MustCompile(`\G[^\n]*`, regexp2.Singleline)
	reToken      = regexp2.MustCompile(`\G(?:\w+| +|.)`, regexp2.Singleline)
)

var closers = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// lexer walks a rune slice. It never evaluates anything; false negatives
// are harmless (the caller adds parentheses), false positives are not.
type lexer struct {
	src []rune
	pos int
}

func newLexer(s string) *lexer {
	return &lexer{src: []rune(s)}
}

// re matches pattern at the current position and advances past it.
func (l *lexer) re(pattern *regexp2.Regexp) (string, bool) {
	if l.pos >= len(l.src) {
		return "", false
	}
	m, err := pattern.FindRunesMatchStartingAt(l.src, l.pos)
	if err != nil || m == nil || m.Index != l.pos {
		return "", false
	}
	l.pos += m.Length
	return m.String(), true
}

func (l *lexer) skipWhitespace() {
	l.re(reWhitespace)
}

// eol eats whitespace and reports whether the input is exhausted.
func (l *lexer) eol() bool {
	l.skipWhitespace()
	return l.pos >= len(l.src)
}

func (l *lexer) match(pattern *regexp2.Regexp) (string, bool) {
	l.skipWhitespace()
	return l.re(pattern)
}

func (l *lexer) pythonString(clearWhitespace bool) bool {
	if clearWhitespace {
		_, ok := l.match(reString)
		return ok
	}
	_, ok := l.re(reString)
	return ok
}

// container consumes a bracketed group including nested groups and strings.
func (l *lexer) container() bool {
	if l.eol() {
		return false
	}
	closer, ok := closers[l.src[l.pos]]
	if !ok {
		return false
	}
	l.pos++

	for !l.eol() {
		if l.src[l.pos] == closer {
			l.pos++
			return true
		}
		if l.pythonString(true) || l.container() {
			continue
		}
		l.pos++
	}
	return false
}

func (l *lexer) number() bool {
	_, ok := l.match(reNumber)
	return ok
}

// name consumes a word that is not a keyword.
func (l *lexer) name() bool {
	start := l.pos
	word, ok := l.match(reWord)
	if !ok {
		return false
	}
	if keywords[word] {
		l.pos = start
		return false
	}
	return true
}

func (l *lexer) simpleExpression() bool {
	if l.eol() {
		return false
	}

	if !(l.pythonString(true) || l.number() || l.container() || l.name()) {
		return false
	}

	for !l.eol() {
		if _, ok := l.match(reDot); ok {
			if !l.name() {
				return false
			}
			continue
		}

		// calls, subscripts and slices
		if l.container() {
			continue
		}
		break
	}
	return l.eol()
}

// IsSimpleExpression reports whether s can be embedded in a statement
// without surrounding parentheses.
func IsSimpleExpression(s string) bool {
	return newLexer(s).simpleExpression()
}

// Guard returns s trimmed, parenthesized unless it is a simple expression.
func Guard(s string) string {
	s = strings.TrimSpace(s)
	if IsSimpleExpression(s) {
		return s
	}
	return "(" + s + ")"
}

// SplitLogicalLines splits python source into logical lines. Newlines
// inside brackets or strings, or escaped with a backslash, do not split.
// A trailing newline does not produce an empty final line.
func SplitLogicalLines(s string) []string {
	l := newLexer(s)
	var lines []string
	contained := 0
	start := 0

	for l.pos < len(l.src) {
		c := l.src[l.pos]

		if c == '\n' && contained == 0 && (l.pos == 0 || l.src[l.pos-1] != '\\') {
			lines = append(lines, string(l.src[start:l.pos]))
			l.pos++
			start = l.pos
			continue
		}

		switch {
		case c == '(' || c == '[' || c == '{':
			contained++
			l.pos++
			continue
		case (c == ')' || c == ']' || c == '}') && contained > 0:
			contained--
			l.pos++
			continue
		case c == '#':
			l.re(reComment)
			continue
		}

		if l.pythonString(false) {
			continue
		}
		if _, ok := l.re(reToken); !ok {
			l.pos++
		}
	}

	if l.pos != start {
		lines = append(lines, string(l.src[start:]))
	}
	return lines
}
