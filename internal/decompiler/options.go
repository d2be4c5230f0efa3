package decompiler

// TagPlacement controls where a screen's tag keyword is written.
type TagPlacement int

const (
	// TagInBlock writes `tag` inside the screen block, as Ren'Py 7.3
	// and later require.
	TagInBlock TagPlacement = iota
	// TagOnHeader writes `tag` on the screen statement line.
	TagOnHeader
)

// Arity is the number of children a screen displayable statement takes.
type Arity int

const (
	ChildrenNone Arity = iota
	ChildrenOne
	ChildrenMany
)

// DisplayableName is the statement name and child arity of a screen
// language displayable.
type DisplayableName struct {
	Name     string
	Children Arity
}

// Options configures a render. The zero value is usable; Indent defaults
// to four spaces.
type Options struct {
	// LineFidelity tries to place every statement on its original line.
	LineFidelity bool
	// DecompileEmbeddedCode recovers screen language from legacy screens
	// instead of emitting their generated python.
	DecompileEmbeddedCode bool
	TagPlacement          TagPlacement
	// AssumeInitOffset guesses an `init offset` statement from the
	// priorities of top level init blocks.
	AssumeInitOffset bool
	// CustomDisplayableNames maps user registered displayables, by name,
	// to the statement that created them.
	CustomDisplayableNames map[string]DisplayableName
	Indent                 string
}

// DefaultOptions returns the options the CLI starts from.
func DefaultOptions() Options {
	return Options{
		DecompileEmbeddedCode: true,
		Indent:                "    ",
	}
}
