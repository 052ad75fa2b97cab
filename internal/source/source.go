// Package source provides the line-oriented character source the
// lexical scanner reads from. The whole program text is kept in
// memory so both translation passes can scan the same buffer; source
// line numbers are 1-based.
package source

import (
	"strings"

	"github.com/cwbudde/go-algol/internal/errors"
)

// EOF is the sentinel character the scanner sees once the end of the
// input has been reached.
const EOF = 0x1A

// Reader supplies the source program line by line.
type Reader struct {
	rep       *errors.Reporter
	lines     []string
	unclosed  bool // last line had no terminating newline
	next      int  // index of the next line to hand out
	count     int  // number of the line most recently handed out
	eof       bool
}

// New creates a reader over the complete program text. The absence of
// a final newline is reported once, when the last line is read.
func New(input string, rep *errors.Reporter) *Reader {
	r := &Reader{rep: rep}
	if input == "" {
		return r
	}
	if strings.HasSuffix(input, "\n") {
		r.lines = strings.Split(input[:len(input)-1], "\n")
	} else {
		r.lines = strings.Split(input, "\n")
		r.unclosed = true
	}
	return r
}

// Line returns the 1-based number of the most recently read line.
func (r *Reader) Line() int { return r.count }

// EOF reports whether the end of the input has been reached.
func (r *Reader) EOF() bool { return r.eof }

// ReadLine returns the next source line with invalid control
// characters replaced by blanks, or ok=false at end of file.
// Carriage returns before the newline are stripped silently.
func (r *Reader) ReadLine() (line string, ok bool) {
	if r.next >= len(r.lines) {
		r.eof = true
		return "", false
	}
	line = r.lines[r.next]
	r.next++
	r.count++
	if r.unclosed && r.next == len(r.lines) {
		r.rep.Warningf(r.count, "missing final newline")
	}
	line = strings.TrimSuffix(line, "\r")
	if strings.IndexFunc(line, isBadControl) >= 0 {
		var sb strings.Builder
		for i := 0; i < len(line); i++ {
			c := line[i]
			if isBadControl(rune(c)) {
				r.rep.Errorf(r.count, "invalid control character 0x%02X", c)
				c = ' '
			}
			sb.WriteByte(c)
		}
		line = sb.String()
	}
	return line, true
}

func isBadControl(c rune) bool {
	return c < 0x20 && c != '\t'
}
