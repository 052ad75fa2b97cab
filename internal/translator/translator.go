// Package translator implements the two-pass Algol 60 to C
// translator: recursive-descent parsing over the token window,
// identifier scoping on the first pass, semantic checking and
// syntax-directed C emission on the second.
//
// The same parsing methods drive both passes, gated by the pass flag:
// on the first pass output fragments are muted and only the block
// tree and identifier records are built; on the second pass the tree
// is walked in lockstep and code is assembled into a rope that is
// formatted and written at the end.
package translator

import (
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/go-algol/internal/builtins"
	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/errors"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/source"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// Options configures one translation.
type Options struct {
	InputName  string // source file name for diagnostics and banner
	OutputName string // output file name for the banner
	Version    string // translator version for the banner

	Debug       bool // dump pass-1 tokens and echo diagnostics into the output
	ErrorMax    int  // stop after this many errors; 0 = unlimited
	LineWidth   int  // output width target, 50..255; 0 = default 72
	NoTimestamp bool // suppress the timestamp in the output header
	NoWarn      bool // suppress warning messages

	// Now supplies the banner timestamp; nil means time.Now.
	Now func() time.Time
}

// Translator holds all state of one translation. It is not reusable.
type Translator struct {
	opts Options
	src  string
	out  io.Writer
	rep  *errors.Reporter

	tab *symtab.Table
	w   *token.Window

	emit       *code.Frag // final output code (root of the rope)
	secondPass bool

	labelCount int // suffix for auxiliary labels _gamma/_omega
	forCount   int // suffix for for-body routines _sigma
	thunkCount int // suffix for thunk routines _thunk

	// thunks for often used constants are generated only once
	thunkReal0 int
	thunkReal1 int
	thunkInt0  int
	thunkInt1  int
	thunkFalse int
	thunkTrue  int
}

// New creates a translator for the given source text. Diagnostics go
// to diag, the emitted C program to out.
func New(src string, out, diag io.Writer, opts Options) *Translator {
	if opts.LineWidth == 0 {
		opts.LineWidth = 72
	}
	if opts.InputName == "" {
		opts.InputName = "(stdin)"
	}
	if opts.OutputName == "" {
		opts.OutputName = "(stdout)"
	}
	rep := errors.NewReporter(opts.InputName, diag)
	rep.ErrorMax = opts.ErrorMax
	rep.NoWarn = opts.NoWarn
	return &Translator{opts: opts, src: src, out: out, rep: rep}
}

// Reporter exposes the diagnostic reporter (counts, collected
// diagnostics).
func (t *Translator) Reporter() *errors.Reporter { return t.rep }

// Translate runs both passes and writes the formatted C program.
// It returns a non-nil error if any diagnostic error survived either
// pass or the output could not be written.
func (t *Translator) Translate() (err error) {
	defer func() {
		if p := recover(); p != nil {
			switch b := p.(type) {
			case errors.Bailout:
				err = fmt.Errorf("translation terminated after %d errors", b.Count)
			case stopTranslation:
				err = fmt.Errorf("translation terminated")
			default:
				panic(p)
			}
		}
	}()

	// first pass: scope discovery
	t.secondPass = false
	t.tab = symtab.NewTable(t.rep)
	if t.opts.Debug {
		t.rep.Echo = t.out
		fmt.Fprintf(t.out, "#if 0 /* start of translator debug output */\n\n")
	}
	t.entireModule()
	if t.opts.Debug {
		fmt.Fprintf(t.out, "\n#endif /* end of translator debug output */\n\n")
		t.rep.Echo = nil
	}
	if n := t.rep.ErrorCount(); n != 0 {
		if n == 1 {
			return fmt.Errorf("one error detected on the first pass; translation terminated")
		}
		return fmt.Errorf("%d errors detected on the first pass; translation terminated", n)
	}

	// interlude: file prologue, prototypes, DSA structures
	t.secondPass = true
	t.rep.Quiet = true
	t.rep.Reset()
	t.tab.Rewind()
	t.emit = code.New()
	t.emitPrologue()
	t.emitPrototypes()
	t.emitDSACode()

	// second pass: semantic checks and code assembly
	if t.entireModule() {
		t.emitStartupCode()
	}
	if n := t.rep.ErrorCount(); n != 0 {
		if n == 1 {
			return fmt.Errorf("one error detected on the second pass; translation terminated")
		}
		return fmt.Errorf("%d errors detected on the second pass; translation terminated", n)
	}

	t.emit.Appendf("/* eof */\n")
	return code.Write(t.out, t.emit, t.opts.LineWidth)
}

// ---------------------------------------------------------------------
// token window helpers

// cur returns the current token.
func (t *Translator) cur() token.Token { return t.w.Cur() }

// delim reports whether the current token is the given delimiter.
func (t *Translator) delim(sym lexer.Symbol) bool { return t.w.Cur().IsDelim(sym) }

// peekDelim reports whether the lookahead token is one of the given
// delimiters.
func (t *Translator) peekDelim(syms ...lexer.Symbol) bool {
	p := t.w.Peek()
	for _, sym := range syms {
		if p.IsDelim(sym) {
			return true
		}
	}
	return false
}

// advance shifts the token window.
func (t *Translator) advance() { t.w.Advance() }

// line returns the source line of the current token.
func (t *Translator) line() int { return t.w.Cur().Line }

// image returns the image of the current token.
func (t *Translator) image() string { return t.w.Cur().Image }

func (t *Translator) errorf(format string, args ...any) {
	t.rep.Errorf(t.line(), format, args...)
}

func (t *Translator) warnf(format string, args ...any) {
	t.rep.Warningf(t.line(), format, args...)
}

// skipUntilSemicolon consumes tokens up to the next semicolon or end
// of file (error recovery inside declarations).
func (t *Translator) skipUntilSemicolon() {
	for !(t.delim(lexer.EOF) || t.delim(lexer.SEMICOLON)) {
		t.advance()
	}
}

// skipToSync consumes tokens up to the next synchronizing delimiter:
// semicolon, else, end, or end of file.
func (t *Translator) skipToSync() {
	for !(t.delim(lexer.EOF) || t.delim(lexer.SEMICOLON) ||
		t.delim(lexer.ELSE) || t.delim(lexer.END)) {
		t.advance()
	}
}

// ---------------------------------------------------------------------
// code helpers

// newCode creates a fragment: live on the second pass, muted on the
// first so the same code paths run on both.
func (t *Translator) newCode() *code.Frag {
	if t.secondPass {
		return code.New()
	}
	return code.Muted()
}

// emitSSN generates code to record source line number ssn in the DSA
// of the current procedure.
func (t *Translator) emitSSN(ssn int) *code.Frag {
	c := t.newCode()
	c.Appendf("      dsa_%d->line = %d;\n", t.tab.CurrentLevel(), ssn)
	return c
}

// emitDSAPointers generates code to initialize the DSA pointers used
// by thunks, switches, and for-body routines to reach identifiers of
// the enclosing procedures. The pointers are derived from global_dsa,
// which the caller assigns before invoking the routine.
func (t *Translator) emitDSAPointers() {
	level := t.tab.CurrentLevel()
	for b := t.tab.Current; b != nil; b = b.Surr {
		if b.Proc == nil {
			continue
		}
		t.emit.Appendf("      register struct dsa_%s_%d *dsa_%d = (void *)global_dsa->vector[%d];\n",
			b.Proc.Name, b.Proc.Block.Seqn, level, level)
		level--
	}
}

// toReal wraps an integer expression in an int2real conversion.
func (t *Translator) toReal(x *code.Frag) {
	if t.secondPass && x.Type == symtab.Int {
		x.Lval = false
		x.Type = symtab.Real
		x.Prependf("int2real(")
		x.Appendf(")")
	}
}

// toInt wraps a real expression in a real2int conversion (rounding,
// not truncating).
func (t *Translator) toInt(x *code.Frag) {
	if t.secondPass && x.Type == symtab.Real {
		x.Lval = false
		x.Type = symtab.Int
		x.Prependf("real2int(")
		x.Appendf(")")
	}
}

// ---------------------------------------------------------------------
// block entry and exit

// enterBlock opens a block: creation on the first pass, lockstep
// cursor advance plus entry code on the second. The generated code
// saves the stack top for the block's level and, if the block owns
// referenced labels, emits the setjmp dispatch used by non-local
// go to.
func (t *Translator) enterBlock(proc *symtab.Ident, line int) *code.Frag {
	c := t.newCode()
	b := t.tab.Enter(proc, line)
	if !t.secondPass {
		return c
	}
	kind := "local"
	if proc != nil {
		kind = "procedure"
	}
	level := t.tab.CurrentLevel()
	blevel := b.Level()
	c.Appendf("      /* start of %s block %d (level %d) at line %d */\n",
		kind, b.Seqn, blevel, b.Line)
	c.Appendf("      dsa_%d->old_top_%d = stack_top;\n", level, blevel)
	if b.HasUsedLabels() {
		c.Appendf("      /* jmp_buf must be of array type (ISO) */\n")
		c.Appendf("      switch (setjmp(&dsa_%d->jump_%d[0]))\n", level, blevel)
		c.Appendf("      {  case 0: break;\n")
		for id := b.First; id != nil; id = id.Next {
			if !(id.Flags == symtab.Label && id.UsedLine != 0) {
				continue
			}
			// local labels are numbered by the DSA emitter
			c.Appendf("         case %d: pop_stack(dsa_%d->new_top_%d); active_dsa = (struct dsa *)dsa_%d; goto %s_%d;\n",
				id.Dim, level, blevel, level, id.Name, b.Seqn)
		}
		c.Appendf("         default: fault(\"internal error on global go to\");\n")
		c.Appendf("      }\n")
	}
	return c
}

// leaveBlock closes the current block. On the second pass the
// generated code pops the stack back to the level saved at entry; on
// the first pass undeclared identifiers migrate outwards.
func (t *Translator) leaveBlock() *code.Frag {
	c := t.newCode()
	if t.secondPass {
		cur := t.tab.Current
		c.Appendf("      pop_stack(dsa_%d->old_top_%d);\n",
			t.tab.CurrentLevel(), cur.Level())
		c.Appendf("      /* end of block %d */\n", cur.Seqn)
	}
	t.tab.Leave()
	return c
}

// ---------------------------------------------------------------------
// prologue and startup

// emitPrologue writes the output file header: banner, optional
// timestamp, and the runtime include.
func (t *Translator) emitPrologue() {
	t.emit.Appendf("/* %s */\n", t.opts.OutputName)
	t.emit.Appendf("\n")
	t.emit.Appendf("/* generated by go-algol, version %s */\n", t.opts.Version)
	if !t.opts.NoTimestamp {
		now := time.Now
		if t.opts.Now != nil {
			now = t.opts.Now
		}
		t.emit.Appendf("/* %s */\n", now().Format("Mon Jan _2 15:04:05 2006"))
		t.emit.Appendf("/* source file: %s */\n", t.opts.InputName)
		t.emit.Appendf("/* object file: %s */\n", t.opts.OutputName)
	}
	t.emit.Appendf("\n")
	t.emit.Appendf("#include \"algol.h\"\n")
	t.emit.Appendf("\n")
}

// emitPrototypes emits forward declarations for every translated
// procedure and local switch, because a use may precede the
// declaration.
func (t *Translator) emitPrototypes() {
	for b := t.tab.First; b != nil; b = b.Next {
		if b.Proc != nil {
			t.emitProcHead(b.Proc, true)
		}
		for id := b.First; id != nil; id = id.Next {
			if id.Flags == symtab.Switch {
				t.emit.Appendf("static struct label %s_%d /* local switch */ (int);\n\n",
					id.Name, id.Block.Seqn)
			}
		}
	}
}

// emitStartupCode generates the C entry point calling the main
// program.
func (t *Translator) emitStartupCode() {
	t.emit.Appendf("int main(void)\n")
	t.emit.Appendf("{     /* Algol program startup code */\n")
	t.emit.Appendf("      main_program_0();\n")
	t.emit.Appendf("      return 0;\n")
	t.emit.Appendf("}\n\n")
}

// ---------------------------------------------------------------------
// module

// entireModule parses the whole translation unit: a sequence of
// precompiled procedure declarations and at most one main program
// (a labelled block or compound statement). It reports whether a
// main program was seen.
func (t *Translator) entireModule() bool {
	isMain := false
	// enter the outermost dummy block that holds declarations of all
	// external procedures, built-ins, and the main program
	t.enterBlock(nil, 0)
	// prime the scanner and the token window
	var dump io.Writer
	if t.opts.Debug && !t.secondPass {
		dump = t.out
	}
	rd := source.New(t.src, t.rep)
	scn := lexer.New(rd, t.rep)
	t.w = token.NewWindow(scn, t.rep, dump)
	// check for null program
	if t.delim(lexer.EOF) {
		t.errorf("null program not allowed")
		if !t.secondPass {
			builtins.Resolve(t.tab, t.rep)
		}
		t.tab.Leave()
		return false
	}
	for {
		if t.delim(lexer.EOF) {
			break
		}
		// the current unit may only be a labelled block or compound
		// statement representing the main program, or a declaration
		// of a (precompiled or code) procedure
		var flags symtab.Flags
		isMainUnit := false
		if t.delim(lexer.BEGIN) ||
			(t.cur().Kind == token.IDENT && t.peekDelim(lexer.COLON)) {
			if isMain {
				t.errorf("only one program allowed")
			}
			isMain = true
			isMainUnit = true
			flags = symtab.Proc
		} else {
			if t.delim(lexer.REAL) {
				flags = symtab.Real
				t.advance()
			} else if t.delim(lexer.INTEGER) {
				flags = symtab.Int
				t.advance()
			} else if t.delim(lexer.BOOLEAN) {
				flags = symtab.Bool
				t.advance()
			}
			if t.delim(lexer.PROCEDURE) {
				flags |= symtab.Proc
				t.advance()
			}
		}
		if flags&symtab.Proc == 0 {
			t.errorf("invalid start of program or precompiled procedure")
			t.skipUntilSemicolon()
			if t.delim(lexer.SEMICOLON) {
				t.advance()
			}
			continue
		}
		t.procedureDeclaration(flags, isMainUnit)
		// a procedure declaration is always followed by a semicolon;
		// after the main program the semicolon is optional
		if t.delim(lexer.SEMICOLON) {
			t.advance()
		} else if !t.delim(lexer.EOF) {
			t.errorf("equal number of 'begin' and 'end' brackets found")
			t.skipUntilSemicolon()
			if t.delim(lexer.SEMICOLON) {
				t.advance()
			}
		}
	}
	// resolve external references
	if !t.secondPass {
		builtins.Resolve(t.tab, t.rep)
	}
	// leave the outermost dummy block ignoring its code
	t.tab.Leave()
	return isMain
}
