package token

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-algol/internal/errors"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/source"
)

func window(input string) (*Window, *errors.Reporter) {
	rep := errors.NewReporter("test", nil)
	scn := lexer.New(source.New(input, rep), rep)
	return NewWindow(scn, rep, nil), rep
}

func collect(t *testing.T, input string) ([]Token, *errors.Reporter) {
	t.Helper()
	w, rep := window(input)
	var toks []Token
	for {
		toks = append(toks, w.Cur())
		if w.Cur().IsDelim(lexer.EOF) {
			break
		}
		if len(toks) > 1000 {
			t.Fatal("window does not terminate")
		}
		w.Advance()
	}
	return toks, rep
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		image string
	}{
		{"alpha", IDENT, "alpha"},
		{"x15y", IDENT, "x15y"},
		{"123", INT, "123"},
		{"3.14", REAL, "3.14"},
		{".5", REAL, ".5"},
		{"1#6", REAL, "1#6"},
		{"2.5#-3", REAL, "2.5#-3"},
		{"#+7", REAL, "#+7"},
		{"true", TRUE, "true"},
		{"false", FALSE, "false"},
		{`"hello"`, STRING, `"hello"`},
		{"begin", DELIM, "begin"},
		{":=", DELIM, ":="},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, rep := collect(t, tt.input)
			if rep.ErrorCount() != 0 {
				t.Fatalf("unexpected errors: %v", rep.Diagnostics())
			}
			if toks[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v", toks[0].Kind, tt.kind)
			}
			if toks[0].Image != tt.image {
				t.Errorf("image = %q, want %q", toks[0].Image, tt.image)
			}
		})
	}
}

func TestNumberSplitting(t *testing.T) {
	// 1.5#2#3 is a real followed by another real
	toks, _ := collect(t, "1.5#2 #3")
	if toks[0].Kind != REAL || toks[0].Image != "1.5#2" {
		t.Errorf("first token = %v %q", toks[0].Kind, toks[0].Image)
	}
	if toks[1].Kind != REAL || toks[1].Image != "#3" {
		t.Errorf("second token = %v %q", toks[1].Kind, toks[1].Image)
	}
}

func TestIncompleteReal(t *testing.T) {
	_, rep := collect(t, "12. ;")
	if rep.ErrorCount() == 0 {
		t.Error("incomplete real constant not reported")
	}
}

func TestMultiPartString(t *testing.T) {
	toks, rep := collect(t, `"part one" "part two";`)
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics())
	}
	if toks[0].Kind != STRING {
		t.Fatalf("kind = %v, want STRING", toks[0].Kind)
	}
	if toks[0].Image != `"part onepart two"` {
		t.Errorf("image = %q", toks[0].Image)
	}
	if !toks[1].IsDelim(lexer.SEMICOLON) {
		t.Errorf("second token = %v", toks[1])
	}
}

func TestUnterminatedString(t *testing.T) {
	_, rep := collect(t, `"never closed`)
	if rep.ErrorCount() == 0 {
		t.Error("unterminated string not reported")
	}
}

func TestCommentAfterEnd(t *testing.T) {
	toks, rep := collect(t, "end this text is skipped until the semicolon ;")
	if !toks[0].IsDelim(lexer.END) {
		t.Fatalf("first token = %v", toks[0])
	}
	if !toks[1].IsDelim(lexer.SEMICOLON) {
		t.Errorf("second token = %v, want semicolon", toks[1])
	}
	if rep.WarningCount() != 0 {
		t.Errorf("unexpected warnings: %v", rep.Diagnostics())
	}
}

func TestCommentAfterEndWithDelimiter(t *testing.T) {
	_, rep := collect(t, "end of (program) ;")
	if rep.WarningCount() == 0 {
		t.Error("comment sequence with delimiters not warned about")
	}
}

func TestCommentAfterEndStopsAtEnd(t *testing.T) {
	toks, _ := collect(t, "end trailing words end")
	if !toks[1].IsDelim(lexer.END) {
		t.Errorf("second token = %v, want end", toks[1])
	}
}

func TestCommentDelimiter(t *testing.T) {
	toks, rep := collect(t, "begin comment anything at all here; x end")
	if rep.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rep.Diagnostics())
	}
	if !toks[0].IsDelim(lexer.BEGIN) {
		t.Fatalf("first token = %v", toks[0])
	}
	if toks[1].Kind != IDENT || toks[1].Image != "x" {
		t.Errorf("second token = %v %q, want ident x", toks[1].Kind, toks[1].Image)
	}
}

func TestCommentInInvalidPosition(t *testing.T) {
	_, rep := collect(t, "x comment oops; y")
	if rep.ErrorCount() == 0 {
		t.Error("misplaced comment delimiter not reported")
	}
}

func TestWindowPeekAndPrev(t *testing.T) {
	w, _ := window("a := 1")
	if w.Cur().Image != "a" {
		t.Fatalf("cur = %q", w.Cur().Image)
	}
	if p := w.Peek(); !p.IsDelim(lexer.ASSIGN) {
		t.Errorf("peek = %v, want :=", p)
	}
	w.Advance()
	if !w.Cur().IsDelim(lexer.ASSIGN) {
		t.Errorf("cur = %v, want :=", w.Cur())
	}
	if w.Prev().Image != "a" {
		t.Errorf("prev = %q, want a", w.Prev().Image)
	}
	w.Advance()
	if w.Cur().Kind != INT || w.Cur().Image != "1" {
		t.Errorf("cur = %v %q", w.Cur().Kind, w.Cur().Image)
	}
}

func TestLongIdentifierTruncated(t *testing.T) {
	name := strings.Repeat("a", MaxImageLen+10)
	toks, rep := collect(t, name)
	if rep.ErrorCount() == 0 {
		t.Error("overlong identifier not reported")
	}
	if len(toks[0].Image) != MaxImageLen {
		t.Errorf("image length = %d, want %d", len(toks[0].Image), MaxImageLen)
	}
}

func TestTokenLineNumbers(t *testing.T) {
	toks, _ := collect(t, "a\nb\n\nc\n")
	wantLines := []int{1, 2, 4}
	for i, want := range wantLines {
		if toks[i].Line != want {
			t.Errorf("token %d line = %d, want %d", i, toks[i].Line, want)
		}
	}
}
