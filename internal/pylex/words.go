package pylex

import "strings"

// WordJoiner concatenates statement fragments with single spaces while
// keeping trailing whitespace that old compilers left on expressions.
type WordJoiner struct {
	words       []string
	NeedsSpace  bool
	reorderable bool
}

// NewWordJoiner returns a joiner. needsSpace controls whether the joined
// result starts with a space; reorderable allows moving the last fragment
// without trailing whitespace to the end.
func NewWordJoiner(needsSpace, reorderable bool) *WordJoiner {
	return &WordJoiner{NeedsSpace: needsSpace, reorderable: reorderable}
}

// Append adds fragments, ignoring empty ones.
func (w *WordJoiner) Append(words ...string) {
	for _, word := range words {
		if word != "" {
			w.words = append(w.words, word)
		}
	}
}

// Join returns the joined text and updates NeedsSpace for whatever is
// written after it.
func (w *WordJoiner) Join() string {
	if len(w.words) == 0 {
		return ""
	}

	if w.reorderable && endsWithSpace(w.words[len(w.words)-1]) {
		for i := len(w.words) - 1; i >= 0; i-- {
			if !endsWithSpace(w.words[i]) {
				word := w.words[i]
				w.words = append(w.words[:i], w.words[i+1:]...)
				w.words = append(w.words, word)
				break
			}
		}
	}

	last := len(w.words) - 1
	parts := make([]string, len(w.words))
	for i, word := range w.words {
		if i < last && endsWithSpace(word) {
			word = word[:len(word)-1]
		}
		parts[i] = word
	}

	var sb strings.Builder
	if w.NeedsSpace {
		sb.WriteByte(' ')
	}
	sb.WriteString(strings.Join(parts, " "))
	rv := sb.String()
	w.NeedsSpace = !endsWithSpace(rv)
	return rv
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ")
}
