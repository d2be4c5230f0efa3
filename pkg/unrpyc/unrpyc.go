// Package unrpyc decompiles compiled Ren'Py scripts (.rpyc and .rpymc)
// back into source.
package unrpyc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grindlemire/go-unrpyc/internal/debug"
	"github.com/grindlemire/go-unrpyc/internal/decompiler"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
	"github.com/grindlemire/go-unrpyc/internal/rpyc"
)

// Banner opens every decompiled file unless line fidelity is on, where
// it would push the first statement off its line.
const Banner = "# Decompiled by go-unrpyc"

type (
	Options         = decompiler.Options
	TagPlacement    = decompiler.TagPlacement
	DisplayableName = decompiler.DisplayableName
	Metadata        = rpyc.Metadata
	Node            = rpyast.Node
)

const (
	TagInBlock  = decompiler.TagInBlock
	TagOnHeader = decompiler.TagOnHeader
)

var (
	// ErrBadArchive means the input is not a compiled script.
	ErrBadArchive = rpyc.ErrBadArchive
	// ErrDecode means the archive holds something other than a script.
	ErrDecode = rpyc.ErrDecode
	// ErrStructure means the statements break an invariant of the
	// language, e.g. a with statement missing its pair.
	ErrStructure = decompiler.ErrStructure
)

// DefaultOptions returns the default render options.
func DefaultOptions() Options {
	return decompiler.DefaultOptions()
}

// Decompiler turns archives into source text.
type Decompiler struct {
	Options Options
	// NoBanner leaves out the Banner line.
	NoBanner bool
}

// New creates a Decompiler with default options.
func New() *Decompiler {
	return &Decompiler{Options: DefaultOptions()}
}

// Result is one decompiled file.
type Result struct {
	Metadata Metadata
	// Source is the script text. It always ends with a newline.
	Source string
	// Log holds one entry per recoverable anomaly met while rendering.
	Log []string
}

// Decompile decodes and renders one archive. filename is only used in
// errors.
func (d *Decompiler) Decompile(filename string, data []byte) (Result, error) {
	meta, block, err := rpyc.Decode(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filename, err)
	}
	debug.Log("%s: %s archive, %d top level statements", filename, meta.Format, len(block))

	source, log, err := d.Render(block)
	if err != nil {
		return Result{Metadata: meta, Log: log}, fmt.Errorf("%s: %w", filename, err)
	}
	return Result{Metadata: meta, Source: source, Log: log}, nil
}

// Render renders already decoded statements.
func (d *Decompiler) Render(block []Node) (string, []string, error) {
	source, log, err := decompiler.Render(block, d.Options)
	if err != nil {
		return "", log, err
	}
	if !d.NoBanner && !d.Options.LineFidelity {
		source = Banner + "\n" + source
	}
	return source, log, nil
}

// OutputPath names the source file for an archive: .rpymc becomes
// .rpym and everything else .rpy.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == ".rpymc" {
		return base + ".rpym"
	}
	return base + ".rpy"
}

// IsArchive reports whether path names a compiled script.
func IsArchive(path string) bool {
	switch filepath.Ext(path) {
	case ".rpyc", ".rpymc":
		return true
	}
	return false
}

// IsMalformed reports whether err means the input was not a usable
// archive, as opposed to a script the decompiler could not handle.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrBadArchive) || errors.Is(err, ErrDecode)
}
