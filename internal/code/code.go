// Package code implements the rope-like fragments the translator
// assembles emitted C from, plus the final width-aware writer.
// Fragments support constant-time append, prepend, and catenation;
// the expression-valued ones additionally carry an lvalue flag and a
// value type used by the semantic checks.
package code

import (
	"fmt"
	"io"

	"github.com/cwbudde/go-algol/internal/symtab"
)

type chunk struct {
	str  string
	next *chunk
}

// Frag is one piece of output code under construction. A muted
// fragment ignores every text operation, which is how first-pass
// parsing runs the same code paths without producing output.
type Frag struct {
	// Lval and Type carry expression semantics: Lval marks code that
	// designates a storage location (or, transiently, an assignment
	// chain); Type is one of symtab.Real, Int, Bool, Label, or 0.
	Lval bool
	Type symtab.Flags

	mute bool
	head *chunk
	tail *chunk
}

// New creates an empty fragment.
func New() *Frag { return &Frag{} }

// Muted creates a fragment that discards all text operations. Its
// Lval and Type fields still work, so first-pass code can run the
// emitting code paths unchanged.
func Muted() *Frag { return &Frag{mute: true} }

// Appendf formats text and places it after the fragment's content.
func (f *Frag) Appendf(format string, args ...any) {
	if f == nil || f.mute {
		return
	}
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	c := &chunk{str: s}
	if f.head == nil {
		f.head = c
	} else {
		f.tail.next = c
	}
	f.tail = c
}

// Prependf formats text and places it before the fragment's content.
func (f *Frag) Prependf(format string, args ...any) {
	if f == nil || f.mute {
		return
	}
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	c := &chunk{str: s, next: f.head}
	f.head = c
	if f.tail == nil {
		f.tail = c
	}
}

// Catenate appends the content of y to f. Afterwards y is void and
// must not be used again.
func (f *Frag) Catenate(y *Frag) {
	if f == nil || y == nil || f.mute {
		return
	}
	if f.head == nil {
		f.head = y.head
	} else {
		f.tail.next = y.head
	}
	if y.tail != nil {
		f.tail = y.tail
	}
	y.head, y.tail = nil, nil
}

// String joins the fragment into a plain string (test helper and small
// emissions; the driver streams through a Writer instead).
func (f *Frag) String() string {
	if f == nil {
		return ""
	}
	var n int
	for c := f.head; c != nil; c = c.next {
		n += len(c.str)
	}
	buf := make([]byte, 0, n)
	for c := f.head; c != nil; c = c.next {
		buf = append(buf, c.str...)
	}
	return string(buf)
}

// reader walks the fragment character by character.
type reader struct {
	cur *chunk
	pos int
}

const endOfCode = 0x1A

func (r *reader) next() byte {
	for {
		if r.cur == nil {
			return endOfCode
		}
		if r.pos < len(r.cur.str) {
			c := r.cur.str[r.pos]
			r.pos++
			return c
		}
		r.cur = r.cur.next
		r.pos = 0
	}
}

// Write streams the fragment to w, breaking lines that would exceed
// the width target. Breaks are inserted after newline, space, and the
// characters ( ) : , ; " — and inside string literals only between
// characters that do not continue an escape. Width must be in 50..255.
func Write(w io.Writer, f *Frag, width int) error {
	if width < 50 || width > 255 {
		return fmt.Errorf("code: invalid line width %d", width)
	}
	bw := &errWriter{w: w}
	r := &reader{cur: f.head}
	size := 0 // length of the current output line
	for {
		// accumulate the current piece of code
		var piece []byte
		var c byte
		for {
			c = r.next()
			if c == endOfCode {
				break
			}
			piece = append(piece, c)
			if c == '\n' || c == ' ' || c == '(' || c == ')' ||
				c == ':' || c == ',' || c == ';' || c == '"' {
				break
			}
		}
		// if the output line would become too long, break it first
		extra := 0
		if c == '\n' {
			extra = -1
		} else if c == '"' {
			extra = 6
		}
		if size+len(piece)+extra > width && size > 0 {
			bw.writeString("\n         ")
			size = 9
		}
		bw.write(piece)
		if c == '\n' {
			size = 0
		} else {
			size += len(piece)
		}
		if c == endOfCode {
			break
		}
		if c == '"' {
			// literal content: break only after a non-escape character
			for {
				oldc := c
				c = r.next()
				if c == endOfCode {
					return fmt.Errorf("code: unterminated string literal in output")
				}
				if size+2 > width && oldc != '\\' {
					bw.writeString("\"\n         \"")
					size = 10
				}
				bw.write([]byte{c})
				size++
				if oldc != '\\' && c == '"' {
					break
				}
			}
		}
	}
	return bw.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) write(p []byte) {
	if e.err != nil || len(p) == 0 {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *errWriter) writeString(s string) {
	e.write([]byte(s))
}
