package source

import (
	"testing"

	"github.com/cwbudde/go-algol/internal/errors"
)

func readAll(input string) ([]string, *errors.Reporter) {
	rep := errors.NewReporter("test", nil)
	r := New(input, rep)
	var lines []string
	for {
		line, ok := r.ReadLine()
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines, rep
}

func TestReadLines(t *testing.T) {
	lines, rep := readAll("one\ntwo\n\nthree\n")
	want := []string{"one", "two", "", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, lines[i], want[i])
		}
	}
	if rep.WarningCount() != 0 {
		t.Errorf("unexpected warnings: %v", rep.Diagnostics())
	}
}

func TestLineNumbers(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	r := New("a\nb\n", rep)
	if r.Line() != 0 {
		t.Errorf("initial line = %d, want 0", r.Line())
	}
	r.ReadLine()
	if r.Line() != 1 {
		t.Errorf("line = %d, want 1", r.Line())
	}
	r.ReadLine()
	if r.Line() != 2 {
		t.Errorf("line = %d, want 2", r.Line())
	}
	if r.EOF() {
		t.Error("EOF before reading past the last line")
	}
	if _, ok := r.ReadLine(); ok {
		t.Error("read past end of input")
	}
	if !r.EOF() {
		t.Error("EOF not reported")
	}
}

func TestMissingFinalNewline(t *testing.T) {
	_, rep := readAll("no newline here")
	if rep.WarningCount() != 1 {
		t.Errorf("got %d warnings, want 1", rep.WarningCount())
	}
}

func TestCarriageReturnStripped(t *testing.T) {
	lines, rep := readAll("dos line\r\n")
	if lines[0] != "dos line" {
		t.Errorf("line = %q", lines[0])
	}
	if rep.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", rep.Diagnostics())
	}
}

func TestControlCharacterReplaced(t *testing.T) {
	lines, rep := readAll("a\x01b\n")
	if lines[0] != "a b" {
		t.Errorf("line = %q, want %q", lines[0], "a b")
	}
	if rep.ErrorCount() != 1 {
		t.Errorf("got %d errors, want 1", rep.ErrorCount())
	}
}

func TestTabIsKept(t *testing.T) {
	lines, rep := readAll("a\tb\n")
	if lines[0] != "a\tb" {
		t.Errorf("line = %q", lines[0])
	}
	if rep.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", rep.Diagnostics())
	}
}

func TestEmptyInput(t *testing.T) {
	lines, rep := readAll("")
	if len(lines) != 0 {
		t.Errorf("got %d lines from empty input", len(lines))
	}
	if rep.WarningCount() != 0 {
		t.Errorf("unexpected warnings: %v", rep.Diagnostics())
	}
}
