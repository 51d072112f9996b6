// Package emit is the low-level node-to-text printer spec §4.12 and §5
// describe as mechanical: one rule per node kind, indentation tracking,
// and the scoped-swap idiom for temporarily redirecting output (e.g.
// rendering a sub-expression into its own buffer) or suppressing a
// statement's trailing terminator when it's embedded in an expression
// context, restoring the prior state on exit from that subtree.
package emit

import (
	"fmt"
	"io"
	"strings"
)

// Printer accumulates generated text against a current output writer,
// with an indent level and a terminator-suppression flag that codegen
// toggles around subtrees using the scoped-swap helpers below.
type Printer struct {
	out              io.Writer
	writerStack      []io.Writer
	indent           int
	suppressTerm     bool
	suppressTermPrev []bool
}

// New builds a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Swap installs w as the current output writer and returns a restore
// function that puts the previous writer back; used to render a subtree
// into its own buffer without threading it through every call.
func (p *Printer) Swap(w io.Writer) func() {
	p.writerStack = append(p.writerStack, p.out)
	p.out = w
	return func() {
		n := len(p.writerStack)
		p.out = p.writerStack[n-1]
		p.writerStack = p.writerStack[:n-1]
	}
}

// Indented runs fn with the indent level incremented by one, restoring
// it on return (including on panic, matching the scoped-swap discipline).
func (p *Printer) Indented(fn func()) {
	p.indent++
	defer func() { p.indent-- }()
	fn()
}

// SuppressTerminator runs fn with the trailing-terminator suppressed,
// restoring the previous flag on return — used when a statement is
// lowered in expression position (e.g. the body of a ternary-like
// construct) and must not print its own trailing semicolon.
func (p *Printer) SuppressTerminator(fn func()) {
	prev := p.suppressTerm
	p.suppressTerm = true
	defer func() { p.suppressTerm = prev }()
	fn()
}

// Suppressed reports whether the terminator is currently suppressed.
func (p *Printer) Suppressed() bool { return p.suppressTerm }

// Line writes one indented line, followed by a newline.
func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprint(p.out, strings.Repeat("  ", p.indent))
	fmt.Fprintf(p.out, format, args...)
	fmt.Fprintln(p.out)
}

// Stmt writes one indented statement, appending a terminator unless
// currently suppressed.
func (p *Printer) Stmt(format string, args ...interface{}) {
	fmt.Fprint(p.out, strings.Repeat("  ", p.indent))
	fmt.Fprintf(p.out, format, args...)
	if !p.suppressTerm {
		fmt.Fprint(p.out, ";")
	}
	fmt.Fprintln(p.out)
}

// Raw writes s verbatim, with no indentation or terminator handling.
func (p *Printer) Raw(s string) { fmt.Fprint(p.out, s) }
