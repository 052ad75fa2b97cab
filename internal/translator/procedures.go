package translator

import (
	"github.com/cwbudde/go-algol/internal/builtins"
	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// extComma parses the extended parameter delimiter: a comma, or the
// sequence ) <letter string> : ( which is equivalent to it. It
// reports whether the current context was a parameter delimiter.
func (t *Translator) extComma() bool {
	if t.delim(lexer.COMMA) {
		t.advance() // ,
		return true
	}
	if !t.delim(lexer.RIGHT) {
		return false
	}
	if t.w.Peek().Kind != token.IDENT {
		return false
	}
	// it is a parameter delimiter
	t.advance() // )
	for _, ch := range []byte(t.image()) {
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z') {
			t.errorf("invalid letter string in parameter delimiter")
			break
		}
	}
	t.advance() // letter string
	if t.delim(lexer.COLON) {
		t.advance() // :
	} else {
		t.errorf("missing colon in parameter delimiter")
	}
	if t.delim(lexer.LEFT) {
		t.advance() // (
	} else {
		t.errorf("missing left parenthesis in parameter delimiter")
	}
	return true
}

// formalsOf returns the first formal parameter of a local procedure,
// so the actual-formal correspondence can be checked while the actual
// parameter list is parsed.
func (t *Translator) formalsOf(proc *symtab.Ident) *symtab.Ident {
	for b := t.tab.First; b != nil; b = b.Next {
		if b.Proc == proc {
			return b.First
		}
	}
	return nil
}

// functionDesignator parses a function designator, or a procedure
// statement when stmt is set; the two are syntactically identical.
// The generated code has the form
//
//	get_xxx((global_dsa = ..., id(p1, ..., pn)))
//
// where global_dsa is first assigned to the DSA the callee roots its
// display in (the caller's for a local procedure, the argument pair's
// second pointer for a formal one).
func (t *Translator) functionDesignator(stmt bool) *code.Frag {
	c := t.newCode()
	proc := t.tab.Lookup(t.image(), false, t.line())
	if t.secondPass {
		if proc.Flags&symtab.Proc == 0 {
			t.errorf("invalid use of `%s' as procedure identifier", proc.Name)
		}
		c.Lval = false
		c.Type = proc.Flags.Type()
		if builtins.IsPseudo(proc) {
			t.errorf("invalid use of pseudo procedure `%s' in function designator", proc.Name)
		} else if proc.Flags&symtab.Proc != 0 && c.Type == 0 && !stmt {
			t.errorf("invalid use of typeless procedure `%s' in function designator", proc.Name)
		}
		switch c.Type {
		case symtab.Real:
			c.Appendf("get_real(")
		case symtab.Int:
			c.Appendf("get_int(")
		case symtab.Bool:
			c.Appendf("get_bool(")
		default:
			c.Appendf("(") // void
		}
		if proc.Flags&symtab.ByName != 0 {
			// formal procedure
			c.Appendf("(global_dsa = dsa_%d->%s_%d.arg2, (*(struct desc (*)())dsa_%d->%s_%d.arg1)(",
				symtab.DSALevel(proc), proc.Name, proc.Block.Seqn,
				symtab.DSALevel(proc), proc.Name, proc.Block.Seqn)
		} else {
			// local procedure
			c.Appendf("(global_dsa = (void *)dsa_%d, %s_%d(",
				t.tab.CurrentLevel(), proc.Name, proc.Block.Seqn)
		}
	}
	t.advance() // id
	dim := 0
	list := t.delim(lexer.LEFT)
	if list {
		// actual-formal checking is possible only for a known local
		// procedure whose formal list is available
		var arg *symtab.Ident
		if t.secondPass && proc.Flags&symtab.Proc != 0 &&
			proc.Flags&symtab.ByName == 0 {
			arg = t.formalsOf(proc)
		}
		t.advance() // (
		for {
			c.Catenate(t.actualParameter(arg))
			dim++
			if !t.extComma() {
				break
			}
			c.Appendf(", ")
			// an extended parameter delimiter means another actual
			// parameter is expected
			if t.secondPass && arg != nil {
				arg = arg.Next
			}
		}
		if !t.delim(lexer.RIGHT) {
			t.errorf("missing right parenthesis after actual parameter list")
		}
	}
	// check the number of actual parameters
	if proc.Dim < 0 {
		proc.Dim = dim
	}
	if t.secondPass && proc.Flags&symtab.Proc != 0 && proc.Dim != dim {
		if proc.Flags&symtab.ByName != 0 {
			t.errorf("number of parameters in function designator or procedure statement conflicts with earlier use of procedure `%s'", proc.Name)
		} else {
			t.errorf("number of parameters in function designator or procedure statement conflicts with declaration of procedure `%s' beginning at line %d",
				proc.Name, proc.DeclLine)
		}
	}
	if list && t.delim(lexer.RIGHT) {
		t.advance() // )
	}
	c.Appendf(")))")
	return c
}

// procedureStatement parses a procedure statement. It is handled by
// the function-designator method except for the pseudo procedures
// inline and print, which are expanded here.
func (t *Translator) procedureStatement() *code.Frag {
	proc := t.tab.Lookup(t.image(), false, t.line())
	if t.secondPass && proc.Name == "inline" && proc.Flags&symtab.Builtin != 0 {
		return t.inlineStatement()
	}
	if t.secondPass && proc.Name == "print" && proc.Flags&symtab.Builtin != 0 {
		return t.printStatement()
	}
	c := t.functionDesignator(true)
	c.Prependf("      ")
	c.Appendf(";\n")
	return c
}

// inlineStatement expands the pseudo procedure inline: its single
// string argument is inserted verbatim into the emitted C.
func (t *Translator) inlineStatement() *code.Frag {
	bad := func() *code.Frag {
		t.rep.Errorf(t.line(), "invalid use of pseudo procedure `inline'; translation terminated")
		panic(stopTranslation{})
	}
	t.advance() // id
	if !t.delim(lexer.LEFT) {
		return bad()
	}
	t.advance() // (
	if t.cur().Kind != token.STRING {
		return bad()
	}
	c := t.newCode()
	c.Appendf("      /* inline code */\n      ")
	// remove the enclosing quotes and the escaping backslashes
	img := t.image()
	var body []byte
	for i := 1; i < len(img)-1; i++ {
		if img[i] == '\\' {
			i++
			if i == len(img)-1 {
				break
			}
		}
		body = append(body, img[i])
	}
	c.Appendf("%s\n", string(body))
	t.advance() // string
	if !t.delim(lexer.RIGHT) || t.extComma() {
		return bad()
	}
	t.advance() // )
	return c
}

// printStatement expands the variadic pseudo procedure print. Each
// actual parameter is passed to the runtime print routine as a triple
// of a kind word, an optional identifier name, and its value: an
// argument pair for arrays and strings, the plain C expression otherwise.
func (t *Translator) printStatement() *code.Frag {
	t.advance() // id
	if !t.delim(lexer.LEFT) {
		t.errorf("invalid use of pseudo procedure `print'")
		return t.newCode()
	}
	t.advance() // (
	c := t.newCode()
	args := t.newCode()
	count := 0
	for {
		var id *symtab.Ident
		if t.cur().Kind == token.IDENT &&
			t.peekDelim(lexer.COMMA, lexer.RIGHT) {
			// the current actual parameter is an identifier
			id = t.tab.Lookup(t.image(), false, t.line())
		}
		var expr *code.Frag
		switch {
		case id != nil && id.Flags&symtab.Array != 0:
			expr = t.actualParameter(nil)
			args.Appendf(", 0x%04X, ", uint16(symtab.Array))
		case id != nil && id.Flags&symtab.String != 0:
			expr = t.actualParameter(nil)
			args.Appendf(", 0x%04X, ", uint16(symtab.String))
		case t.cur().Kind == token.STRING:
			expr = t.newCode()
			expr.Appendf("make_arg(")
			expr.Appendf("%s", t.image())
			expr.Appendf(", NULL)")
			args.Appendf(", 0x%04X, ", uint16(symtab.String))
			t.advance() // string
		default:
			// any other actual parameter is an expression; a simple
			// identifier keeps its name for the output
			expr = t.expression()
			args.Appendf(", 0x%04X, ", uint16(expr.Type))
		}
		if id != nil {
			args.Appendf("\"%s\", ", id.Name)
		} else {
			args.Appendf("NULL, ")
		}
		args.Catenate(expr)
		count++
		if !t.extComma() {
			break
		}
	}
	if !t.delim(lexer.RIGHT) {
		t.errorf("missing right parenthesis after actual parameter list")
	} else {
		t.advance() // )
	}
	c.Appendf("      print(%3d", count)
	c.Catenate(args)
	c.Appendf(");\n")
	return c
}

// stopTranslation aborts parsing for the unrecoverable inline misuse;
// it is recovered at the Translate boundary.
type stopTranslation struct{}
