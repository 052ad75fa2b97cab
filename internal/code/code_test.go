package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-algol/internal/symtab"
)

func TestAppendPrepend(t *testing.T) {
	f := New()
	f.Appendf("middle")
	f.Appendf(" %s", "tail")
	f.Prependf("head ")
	assert.Equal(t, "head middle tail", f.String())
}

func TestCatenate(t *testing.T) {
	x := New()
	x.Appendf("a")
	y := New()
	y.Appendf("b")
	y.Appendf("c")
	x.Catenate(y)
	x.Appendf("d")
	assert.Equal(t, "abcd", x.String())
	// the consumed fragment is void afterwards
	assert.Equal(t, "", y.String())
}

func TestCatenateIntoEmpty(t *testing.T) {
	x := New()
	y := New()
	y.Appendf("only")
	x.Catenate(y)
	assert.Equal(t, "only", x.String())
}

func TestMutedFragment(t *testing.T) {
	f := Muted()
	f.Appendf("discarded")
	f.Prependf("also discarded")
	assert.Equal(t, "", f.String())
	// semantic fields still work
	f.Lval = true
	f.Type = symtab.Real
	assert.True(t, f.Lval)
	assert.Equal(t, symtab.Real, f.Type)
}

func TestNilSafety(t *testing.T) {
	var f *Frag
	f.Appendf("x")
	f.Prependf("y")
	f.Catenate(New())
	assert.Equal(t, "", f.String())
}

func write(t *testing.T, f *Frag, width int) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, Write(&sb, f, width))
	return sb.String()
}

func TestWritePlain(t *testing.T) {
	f := New()
	f.Appendf("int x;\nint y;\n")
	assert.Equal(t, "int x;\nint y;\n", write(t, f, 72))
}

func TestWriteBreaksLongLines(t *testing.T) {
	f := New()
	f.Appendf("      x = ")
	for i := 0; i < 30; i++ {
		f.Appendf("aaaa + ")
	}
	f.Appendf("1;\n")
	out := write(t, f, 72)
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 72 {
			t.Errorf("line exceeds width: %q (%d)", line, len(line))
		}
	}
	// continuation lines are indented
	assert.Contains(t, out, "\n         ")
}

func TestWriteStringLiteralBreaks(t *testing.T) {
	f := New()
	f.Appendf("      s = \"%s\";\n", strings.Repeat("x", 120))
	out := write(t, f, 72)
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 73 { // a closing quote may land on the boundary
			t.Errorf("line exceeds width: %q (%d)", line, len(line))
		}
	}
	// the literal is split into adjacent C string constants
	assert.Contains(t, out, "\"\n         \"")
	// joining the pieces restores the original literal
	joined := strings.ReplaceAll(out, "\"\n         \"", "")
	assert.Contains(t, joined, strings.Repeat("x", 120))
}

func TestWriteRejectsBadWidth(t *testing.T) {
	assert.Error(t, Write(&strings.Builder{}, New(), 10))
	assert.Error(t, Write(&strings.Builder{}, New(), 1000))
}

func TestWriteKeepsEscapesTogether(t *testing.T) {
	f := New()
	f.Appendf("      s = \"%s\";\n", strings.Repeat("\\n", 80))
	out := write(t, f, 72)
	// a break may never separate a backslash from its escaped
	// character
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSuffix(line, "\"")
		if strings.HasSuffix(trimmed, "\\") {
			t.Errorf("escape split across lines: %q", line)
		}
	}
}
