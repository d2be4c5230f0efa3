package decompiler

import (
	"bytes"
	"fmt"
	"strings"
)

// blankLineFunc is deferred output that waits for a blank line. It is
// called with the line being advanced to, or with final set once the
// file is done, and returns whether it should stay queued.
type blankLineFunc func(line int, final bool) bool

// printer owns the output buffer and the line bookkeeping shared by every
// sub-language. It only ever appends, so a snapshot is a buffer length.
type printer struct {
	indent string
	depth  int
	buf    bytes.Buffer

	// linenumber is the line the last write ended on.
	linenumber int
	// skipIndentUntilWrite makes the next writeIndent a no-op so a child
	// can continue the parent's line.
	skipIndentUntilWrite bool

	lastLinesBehind int
	mostLinesBehind int

	blankLineQueue []blankLineFunc
	log            []string
}

// snapshot is everything needed to undo output back to a point.
type snapshot struct {
	mark                 int
	linenumber           int
	depth                int
	skipIndentUntilWrite bool
	lastLinesBehind      int
	mostLinesBehind      int
	blankLineQueue       []blankLineFunc
	logLen               int
}

func newPrinter(indent string) printer {
	if indent == "" {
		indent = "    "
	}
	return printer{indent: indent, linenumber: 1}
}

// write appends s and counts its newlines.
func (p *printer) write(s string) {
	p.linenumber += strings.Count(s, "\n")
	p.skipIndentUntilWrite = false
	p.buf.WriteString(s)
}

// writeIndent starts a new line at the current depth.
func (p *printer) writeIndent() {
	if !p.skipIndentUntilWrite {
		p.write("\n" + strings.Repeat(p.indent, p.depth))
	}
}

// writeLines writes code lines at the current depth. Empty lines stay
// empty instead of carrying indentation.
func (p *printer) writeLines(lines []string) {
	for _, line := range lines {
		if line == "" {
			p.write("\n")
			continue
		}
		p.writeIndent()
		p.write(line)
	}
}

// advanceToLine emits blank lines until the next writeIndent lands on
// line. It never moves backwards; how far behind we already are is kept
// in lastLinesBehind. Line 0 means unknown and is ignored.
func (p *printer) advanceToLine(line int) {
	if line <= 0 {
		return
	}
	p.runBlankLineQueue(line, false)

	ahead := 1
	if p.skipIndentUntilWrite {
		ahead = 0
	}
	p.lastLinesBehind = max(p.linenumber+ahead-line, 0)
	p.mostLinesBehind = max(p.lastLinesBehind, p.mostLinesBehind)

	if p.linenumber < line {
		// One short: the writeIndent that follows supplies the last
		// newline. Writing "" still clears skipIndentUntilWrite.
		p.write(strings.Repeat("\n", line-p.linenumber-1))
	}
}

// whenBlankLine queues f for the next line advance with room for it.
func (p *printer) whenBlankLine(f blankLineFunc) {
	p.blankLineQueue = append(p.blankLineQueue, f)
}

func (p *printer) runBlankLineQueue(line int, final bool) {
	if len(p.blankLineQueue) == 0 {
		return
	}
	// A fresh slice keeps earlier snapshots of the queue intact.
	var kept []blankLineFunc
	for _, f := range p.blankLineQueue {
		if f(line, final) {
			kept = append(kept, f)
		}
	}
	p.blankLineQueue = kept
}

func (p *printer) snapshot() snapshot {
	return snapshot{
		mark:                 p.buf.Len(),
		linenumber:           p.linenumber,
		depth:                p.depth,
		skipIndentUntilWrite: p.skipIndentUntilWrite,
		lastLinesBehind:      p.lastLinesBehind,
		mostLinesBehind:      p.mostLinesBehind,
		blankLineQueue:       p.blankLineQueue,
		logLen:               len(p.log),
	}
}

// rollback discards all output and log entries written since s.
func (p *printer) rollback(s snapshot) {
	p.buf.Truncate(s.mark)
	p.linenumber = s.linenumber
	p.depth = s.depth
	p.skipIndentUntilWrite = s.skipIndentUntilWrite
	p.lastLinesBehind = s.lastLinesBehind
	p.mostLinesBehind = s.mostLinesBehind
	p.blankLineQueue = s.blankLineQueue
	p.log = p.log[:s.logLen]
}

// insertAt splices s into the output at mark. s must not contain
// newlines.
func (p *printer) insertAt(mark int, s string) {
	tail := bytes.Clone(p.buf.Bytes()[mark:])
	p.buf.Truncate(mark)
	p.buf.WriteString(s)
	p.buf.Write(tail)
}

func (p *printer) logf(format string, args ...any) {
	p.log = append(p.log, fmt.Sprintf(format, args...))
}

// writeFailure logs msg and leaves a placeholder that still parses.
func (p *printer) writeFailure(msg string) {
	p.logf("%s", msg)
	p.writeIndent()
	p.write("pass # <<<COULD NOT DECOMPILE: " + msg + ">>>")
}

func (p *printer) printUnknown(what string) {
	p.writeFailure("Unknown AST node: " + what)
}
