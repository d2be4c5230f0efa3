package pylex

import (
	"reflect"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

func TestIsSimpleExpression(t *testing.T) {
	type tc struct {
		input string
		want  bool
	}

	tests := map[string]tc{
		"name":               {input: "foo", want: true},
		"dotted call":        {input: "foo.bar(1, 2)[0]", want: true},
		"string":             {input: "'hello'", want: true},
		"triple string":      {input: `"""a "b" c"""`, want: true},
		"number":             {input: "1.5", want: true},
		"signed number":      {input: "-1", want: true},
		"list":               {input: "[1, (2, 3)]", want: true},
		"surrounding spaces": {input: "  x  ", want: true},
		"binary operator":    {input: "a + b", want: false},
		"keyword":            {input: "if", want: false},
		"keyword after dot":  {input: "a.with", want: false},
		"two names":          {input: "not x", want: false},
		"unclosed":           {input: "(a, b", want: false},
		"empty":              {input: "", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := IsSimpleExpression(tt.input); got != tt.want {
				t.Errorf("IsSimpleExpression(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	type tc struct {
		input string
		want  string
	}

	tests := map[string]tc{
		"simple kept":      {input: " x ", want: "x"},
		"compound wraps":   {input: "a + b", want: "(a + b)"},
		"call kept":        {input: "f(a + b)", want: "f(a + b)"},
		"conditional wrap": {input: "a if b else c", want: "(a if b else c)"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Guard(tt.input); got != tt.want {
				t.Errorf("Guard(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitLogicalLines(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/logical_lines.txtar")
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}

	inputs := map[string]string{}
	wants := map[string][]string{}
	for _, f := range ar.Files {
		name, part, ok := strings.Cut(f.Name, "/")
		if !ok {
			t.Fatalf("bad fixture name %q", f.Name)
		}
		switch part {
		case "input":
			inputs[name] = string(f.Data)
		case "want":
			wants[name] = strings.Split(strings.TrimSuffix(string(f.Data), "\n"), "\n%%\n")
		}
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			got := SplitLogicalLines(input)
			if !reflect.DeepEqual(got, wants[name]) {
				t.Errorf("SplitLogicalLines mismatch:\ngot:  %q\nwant: %q", got, wants[name])
			}
		})
	}
}

func TestSplitLogicalLinesEdges(t *testing.T) {
	type tc struct {
		input string
		want  []string
	}

	tests := map[string]tc{
		"empty":             {input: "", want: nil},
		"no trailing":       {input: "a\nb", want: []string{"a", "b"}},
		"blank line kept":   {input: "a\n\nb\n", want: []string{"a", "", "b"}},
		"newline in string": {input: "s = 'x\\n'\ny", want: []string{"s = 'x\\n'", "y"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := SplitLogicalLines(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLogicalLines(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWordJoiner(t *testing.T) {
	type tc struct {
		needsSpace  bool
		reorderable bool
		words       []string
		want        string
		wantSpace   bool
	}

	tests := map[string]tc{
		"plain": {
			words:     []string{"a", "b"},
			want:      "a b",
			wantSpace: true,
		},
		"leading space": {
			needsSpace: true,
			words:      []string{"x"},
			want:       " x",
			wantSpace:  true,
		},
		"trailing spaces kept once": {
			words:     []string{"a ", "b "},
			want:      "a b ",
			wantSpace: false,
		},
		"reorder moves unspaced word last": {
			reorderable: true,
			words:       []string{"a", "b "},
			want:        "b a",
			wantSpace:   true,
		},
		"empty fragments ignored": {
			words:     []string{"", "a", ""},
			want:      "a",
			wantSpace: true,
		},
		"nothing": {
			needsSpace: true,
			want:       "",
			wantSpace:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewWordJoiner(tt.needsSpace, tt.reorderable)
			w.Append(tt.words...)
			if got := w.Join(); got != tt.want {
				t.Errorf("Join() = %q, want %q", got, tt.want)
			}
			if w.NeedsSpace != tt.wantSpace {
				t.Errorf("NeedsSpace = %v, want %v", w.NeedsSpace, tt.wantSpace)
			}
		})
	}
}

func TestEscaping(t *testing.T) {
	type tc struct {
		fn    func(string) string
		input string
		want  string
	}

	tests := map[string]tc{
		"escape quotes and newline": {fn: Escape, input: "say \"hi\"\n", want: `say \"hi\"\n`},
		"escape tab":                {fn: Escape, input: "a\tb", want: `a\tb`},
		"say quoted":                {fn: QuoteSay, input: `Hi.`, want: `"Hi."`},
		"say backslash":             {fn: QuoteSay, input: `a\b`, want: `"a\\b"`},
		"say double space":          {fn: QuoteSay, input: "a  b", want: `"a \ b"`},
		"say triple space":          {fn: QuoteSay, input: "a   b", want: `"a \ \ b"`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
