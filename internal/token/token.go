// Package token folds basic symbols into the tokens the parser
// consumes: identifiers, numeric and logical constants, character
// strings, and delimiters. It also maintains the three-slot window
// (previous, current, optional lookahead) required by the two-pass
// LL(2) grammar.
package token

import (
	"fmt"
	"io"

	"github.com/cwbudde/go-algol/internal/errors"
	"github.com/cwbudde/go-algol/internal/lexer"
)

// MaxImageLen is the cap on token image length; longer identifiers and
// constants are truncated with an error.
const MaxImageLen = 100

// Kind classifies a token.
type Kind int

const (
	UNDEF  Kind = iota // lookahead slot empty
	IDENT              // identifier
	INT                // integer constant
	REAL               // real constant
	FALSE              // logical constant false
	TRUE               // logical constant true
	STRING             // character string (including quotes)
	DELIM              // delimiter (basic symbol in Delim)
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case IDENT:
		return "ident"
	case INT:
		return "int"
	case REAL:
		return "real"
	case FALSE:
		return "false"
	case TRUE:
		return "true"
	case STRING:
		return "string"
	case DELIM:
		return "delim"
	}
	return "???"
}

// Token is one elementary syntactic unit of the source program.
type Token struct {
	Line  int          // source line where the token starts
	Kind  Kind         //
	Delim lexer.Symbol // basic symbol code, meaningful for DELIM only
	Image string       // textual image
}

// IsDelim reports whether the token is the given delimiter.
func (t Token) IsDelim(sym lexer.Symbol) bool {
	return t.Kind == DELIM && t.Delim == sym
}

// Window maintains the token window over the basic-symbol stream.
//
//	Prev()  the token preceding the current one
//	Cur()   the current token
//	Peek()  the token following the current one (scanned on demand)
type Window struct {
	scn  *lexer.Scanner
	rep  *errors.Reporter
	toks [3]Token
	dump io.Writer // pass-1 token dump sink (debug mode)
}

// NewWindow creates a window over scn and primes it on the first
// token. If dump is non-nil every scanned token is echoed to it.
func NewWindow(scn *lexer.Scanner, rep *errors.Reporter, dump io.Writer) *Window {
	w := &Window{scn: scn, rep: rep, dump: dump}
	w.toks[0] = Token{Kind: DELIM, Delim: lexer.EOF}
	w.toks[1] = Token{Kind: DELIM, Delim: lexer.EOF}
	w.toks[2] = Token{Kind: UNDEF}
	scn.Scan()
	w.Advance()
	return w
}

// Prev returns the token preceding the current one.
func (w *Window) Prev() Token { return w.toks[0] }

// Cur returns the current token.
func (w *Window) Cur() Token { return w.toks[1] }

// Peek scans the token following the current one on demand and
// returns it.
func (w *Window) Peek() Token {
	if w.toks[2].Kind == UNDEF {
		w.toks[2] = w.scan(w.toks[1])
	}
	return w.toks[2]
}

// Advance shifts the window one token: the current token becomes the
// previous one, and the lookahead (if cached) or a freshly scanned
// token becomes current.
func (w *Window) Advance() {
	w.toks[0] = w.toks[1]
	if w.toks[2].Kind != UNDEF {
		w.toks[1] = w.toks[2]
		w.toks[2] = Token{Kind: UNDEF}
	} else {
		w.toks[1] = w.scan(w.toks[0])
	}
}

// scan builds the next token. prev is the token preceding it in the
// stream; it decides whether a comment sequence after `end' or
// `comment' is in context.
func (w *Window) scan(prev Token) Token {
	s := w.scn
	// skip the optional comment sequence following an `end' symbol
	if prev.IsDelim(lexer.END) {
		some, warned := false, false
		for {
			if s.Sym == lexer.EOF || s.Sym == lexer.SEMICOLON ||
				s.Sym == lexer.ELSE || s.Sym == lexer.END {
				break
			}
			some = true
			if !(s.Sym == lexer.LETTER || s.Sym == lexer.DIGIT ||
				s.Sym == lexer.FALSE || s.Sym == lexer.TRUE) && !warned {
				w.rep.Warningf(s.Line(), "comment sequence following `end' contains delimiter(s)")
				warned = true
			}
			s.Scan()
		}
		if s.Sym == lexer.EOF && some {
			w.rep.Warningf(s.Line(), "comment sequence following `end' terminated by eof")
		}
	}
	// skip the optional comment sequence following a `comment' symbol
	{
		warned := false
		for s.Sym == lexer.COMMENT {
			if !(prev.IsDelim(lexer.SEMICOLON) || prev.IsDelim(lexer.BEGIN)) {
				if prev.IsDelim(lexer.EOF) {
					if !warned {
						w.rep.Warningf(s.Line(), "no symbols preceding delimiter `comment'")
						warned = true
					}
				} else {
					w.rep.Errorf(s.Line(), "delimiter `comment' in invalid position")
				}
			}
			// discard the comment sequence including the semicolon,
			// then scan the symbol that follows; it may be a comment
			// again
			s.SkipCommentTail()
			s.Scan()
		}
	}
	tok := w.build()
	if w.dump != nil {
		fmt.Fprintf(w.dump, "%6d: %-6s |%s|\n", tok.Line, tok.Kind, tok.Image)
	}
	return tok
}

// build assembles one token starting at the current basic symbol.
func (w *Window) build() Token {
	s := w.scn
	tok := Token{Line: s.Line()}
	var img []byte
	add := func(c byte) { img = append(img, c) }
	switch {
	case s.Sym == lexer.LETTER:
		// a letter begins an identifier (or letter string)
		tok.Kind = IDENT
		for s.Sym == lexer.LETTER || s.Sym == lexer.DIGIT {
			add(s.Ch)
			s.Scan()
		}
		if len(img) > MaxImageLen {
			img = img[:MaxImageLen]
			w.rep.Errorf(tok.Line, "identifier `%s...' too long", string(img))
		}
	case s.Sym == lexer.DIGIT, s.Sym == lexer.POINT, s.Sym == lexer.TEN:
		return w.number(tok, add, &img)
	case s.Sym == lexer.FALSE:
		tok.Kind = FALSE
		img = []byte("false")
		s.Scan()
	case s.Sym == lexer.TRUE:
		tok.Kind = TRUE
		img = []byte("true")
		s.Scan()
	case s.Sym == lexer.OPEN:
		// character string, kept with its enclosing quotes
		tok.Kind = STRING
		add('"')
		s.ScanStringTail(add)
		add('"')
		s.Scan() // symbol following the string
	default:
		tok.Kind = DELIM
		tok.Delim = s.Sym
		img = []byte(s.Sym.Image())
		s.Scan()
	}
	tok.Image = string(img)
	return tok
}

// number scans a numeric constant. The recognized forms are
//
//	digits
//	digits . digits
//	. digits
//	digits # [sign] digits
//	# [sign] digits
//	digits . digits # [sign] digits
//
// where # stands for the subscripted ten; its presence or a point
// makes the constant real.
func (w *Window) number(tok Token, add func(byte), img *[]byte) Token {
	s := w.scn
	tok.Kind = INT
	// integer part
	for s.Sym == lexer.DIGIT {
		add(s.Ch)
		s.Scan()
	}
	// fractional part
	if s.Sym == lexer.POINT {
		tok.Kind = REAL
		add('.')
		s.Scan()
		if s.Sym != lexer.DIGIT {
			if len(*img) == 1 {
				// nothing but a period so far; ignore it
				w.rep.Errorf(tok.Line, "invalid use of period")
				return w.build()
			}
			w.rep.Errorf(tok.Line, "real constant `%s' incomplete", string(*img))
		}
		for s.Sym == lexer.DIGIT {
			add(s.Ch)
			s.Scan()
		}
	}
	// optional decimal exponent part
	if s.Sym == lexer.TEN {
		tok.Kind = REAL
		add(lexer.TenChar)
		s.Scan()
		if s.Sym == lexer.PLUS {
			add('+')
			s.Scan()
		} else if s.Sym == lexer.MINUS {
			add('-')
			s.Scan()
		}
		if s.Sym != lexer.DIGIT {
			if len(*img) == 1 && (*img)[0] == lexer.TenChar {
				// a sole ten symbol with nothing after it; ignore it
				w.rep.Errorf(tok.Line, "invalid use of subscripted ten")
				return w.build()
			}
			w.rep.Errorf(tok.Line, "real constant `%s' incomplete", string(*img))
		}
		for s.Sym == lexer.DIGIT {
			add(s.Ch)
			s.Scan()
		}
	}
	if len(*img) > MaxImageLen {
		*img = (*img)[:MaxImageLen]
		w.rep.Errorf(tok.Line, "constant `%s...' too long", string(*img))
	}
	tok.Image = string(*img)
	return tok
}
