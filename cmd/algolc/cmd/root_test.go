package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetFlags() {
	debugFlag = false
	errorMax = 0
	lineWidth = 72
	outputFile = ""
	noTimestamp = true
	noWarn = false
}

func TestTranslateFile(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	in := filepath.Join(dir, "prog.a60")
	out := filepath.Join(dir, "prog.c")
	if err := os.WriteFile(in, []byte("begin outinteger(1, 42) end\n"), 0644); err != nil {
		t.Fatal(err)
	}
	outputFile = out
	if err := translate(nil, []string{in}); err != nil {
		t.Fatalf("translate: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{`#include "algol.h"`, "int main(void)", "main_program_0();"} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q", want)
		}
	}
}

func TestTranslateReportsErrors(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.a60")
	if err := os.WriteFile(in, []byte("begin integer x; x := y end\n"), 0644); err != nil {
		t.Fatal(err)
	}
	outputFile = filepath.Join(dir, "bad.c")
	if err := translate(nil, []string{in}); err == nil {
		t.Error("translation of erroneous program succeeded")
	}
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{"errormax too large", func() { errorMax = 300 }},
		{"errormax negative", func() { errorMax = -1 }},
		{"linewidth too small", func() { lineWidth = 10 }},
		{"linewidth too large", func() { lineWidth = 999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			tt.setup()
			if err := translate(nil, nil); err == nil {
				t.Error("invalid flag value accepted")
			}
		})
	}
}
