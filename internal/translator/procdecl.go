package translator

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-algol/internal/builtins"
	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// emitProcHead emits the heading of a translated procedure. When
// proto is set a prototype (forward declaration) is produced instead,
// since a procedure may be used before its declaration appears.
func (t *Translator) emitProcHead(proc *symtab.Ident, proto bool) {
	if !t.secondPass {
		return
	}
	// the pseudo procedures need no output code
	if builtins.IsPseudo(proc) {
		return
	}
	// the procedure dummy block holds the formal parameters
	var b *symtab.Block
	for b = t.tab.First; b != nil; b = b.Next {
		if b.Proc == proc {
			break
		}
	}
	if b == nil {
		panic("translator: procedure block lost")
	}
	if proto {
		if proc.Block.Seqn == 0 {
			t.emit.Appendf("extern ")
		} else {
			t.emit.Appendf("static ")
		}
	}
	t.emit.Appendf("struct desc %s_%d", proc.Name, proc.Block.Seqn)
	if proc.Name == "main_program" {
		t.emit.Appendf(" /* program */")
	} else {
		kind := "local"
		switch {
		case proc.Flags&symtab.Code != 0:
			kind = "code"
		case proc.Flags&symtab.Builtin != 0:
			kind = "builtin"
		case proc.Block.Seqn == 0:
			kind = "precompiled"
		}
		typ := "void"
		switch {
		case proc.Flags&symtab.Real != 0:
			typ = "real"
		case proc.Flags&symtab.Int != 0:
			typ = "integer"
		case proc.Flags&symtab.Bool != 0:
			typ = "Boolean"
		}
		t.emit.Appendf(" /* %s %s procedure */", kind, typ)
	}
	if proc.Dim == 0 {
		t.emit.Appendf(" (void)")
	} else {
		t.emit.Appendf("\n")
		for id := b.First; id != nil; id = id.Next {
			open := " "
			if id == b.First {
				open = "("
			}
			t.emit.Appendf("%s     struct arg ", open)
			if proto {
				t.emit.Appendf("/* %s:", id.Name)
			} else {
				t.emit.Appendf("%s_%d /*", id.Name, b.Seqn)
			}
			t.emit.Appendf("%s", id.Flags.String())
			if id.Next == nil {
				t.emit.Appendf(" */\n)")
			} else {
				t.emit.Appendf(" */,\n")
			}
		}
	}
	if proto {
		t.emit.Appendf(";\n\n")
	} else {
		t.emit.Appendf("\n")
	}
}

// procedureDeclaration parses a procedure declaration, or the main
// program when isMain is set: a program is treated as a procedure
// named main_program with an implicit heading. The body of each
// procedure is enclosed in a dummy block because it may carry label
// declarations; a body consisting of the keyword `code' produces a
// prototype only.
func (t *Translator) procedureDeclaration(flags symtab.Flags, isMain bool) {
	var proc *symtab.Ident
	if !isMain {
		if t.cur().Kind == token.IDENT {
			proc = t.tab.Lookup(t.image(), true, t.line())
			t.advance() // id
		} else {
			name := fmt.Sprintf("p_%d", t.line())
			t.errorf("missing procedure identifier after `procedure'; dummy identifier `%s' used", name)
			proc = t.tab.Lookup(name, true, t.line())
		}
	} else {
		if t.tab.Current.Seqn != 0 {
			panic("translator: program block outside environmental block")
		}
		proc = t.tab.Lookup("main_program", true, t.line())
	}
	proc.Flags = flags
	// enter the dummy procedure block that holds the formal
	// parameters from the procedure heading
	prolog := t.enterBlock(proc, t.line())
	dim := 0
	if !isMain {
		dim = t.procedureHeading(proc)
	}
	// now the number of formal parameters is known
	proc.Dim = dim
	// a body consisting of `code' keeps only the prototype; we still
	// have to leave the dummy procedure block
	if t.delim(lexer.CODE) {
		if t.tab.Current.Surr.Seqn != 0 {
			t.errorf("invalid declaration of code procedure inside block")
		}
		proc.Flags |= symtab.Code
		t.leaveBlock()
		t.advance() // code
		if !t.delim(lexer.SEMICOLON) {
			t.errorf("missing semicolon after 'code'")
			t.skipUntilSemicolon()
		}
		// the semicolon itself is processed by the caller
		return
	}
	// generated code for internal procedures must precede the code of
	// the surrounding procedure, so nothing is emitted before the
	// whole declaration has been translated
	c := t.newCode()
	if t.secondPass {
		// enter the procedure: declare its DSA and the DSA pointers
		// of all enclosing procedures, initialize the standard
		// fields, and fill the display
		c.Appendf("{     struct dsa_%s_%d my_dsa;\n", proc.Name, proc.Block.Seqn)
		level := symtab.DSALevel(proc) + 1
		for b := t.tab.Current; b != nil; b = b.Surr {
			if b.Proc == nil {
				continue
			}
			c.Appendf("      register struct dsa_%s_%d *dsa_%d = ",
				b.Proc.Name, b.Proc.Block.Seqn, level)
			if b.Proc == proc {
				c.Appendf("&my_dsa;\n")
			} else {
				c.Appendf("(void *)global_dsa->vector[%d];\n", level)
			}
			level--
		}
		c.Appendf("      my_dsa.proc = \"%s\";\n", proc.Name)
		c.Appendf("      my_dsa.file = \"%s\";\n", escapeFileName(t.opts.InputName))
		c.Appendf("      my_dsa.line = %d;\n", proc.DeclLine)
		c.Appendf("      my_dsa.parent = active_dsa, active_dsa = (struct dsa *)&my_dsa;\n")
		for k := 0; k <= symtab.DSALevel(proc)+1; k++ {
			c.Appendf("      my_dsa.vector[%d] = (void *)dsa_%d;\n", k, k)
		}
		c.Catenate(prolog)
		// copy the formal parameters: by-value formals are evaluated
		// once and stored as plain locals, by-name formals keep their
		// argument pair, arrays keep the dope vector pointer
		for id := t.tab.Current.First; id != nil; id = id.Next {
			t.copyFormal(c, id)
		}
		// copying formal arrays called by value moves the stack top
		c.Appendf("      dsa_%d->new_top_%d = stack_top;\n",
			t.tab.CurrentLevel(), t.tab.Current.Level())
	}
	// the procedure body is always enclosed in a dummy block because
	// it may be a statement containing label declarations
	c.Catenate(t.enterBlock(nil, t.line()))
	c.Appendf("      dsa_%d->new_top_%d = stack_top;\n",
		t.tab.CurrentLevel(), t.tab.Current.Level())
	c.Catenate(t.labelList())
	// the main program must consist of a block or compound statement
	if isMain && !t.delim(lexer.BEGIN) {
		t.errorf("missing bracket 'begin'")
	}
	c.Catenate(t.statement())
	c.Catenate(t.leaveBlock())
	// leave the dummy procedure block
	c.Catenate(t.leaveBlock())
	if t.secondPass {
		// return from the procedure, delivering the value assigned
		// to the procedure identifier (if any)
		c.Appendf("      my_dsa.retval.lval = 0;\n")
		switch proc.Flags.Type() {
		case symtab.Real:
			c.Appendf("      my_dsa.retval.type = 'r';\n")
		case symtab.Int:
			c.Appendf("      my_dsa.retval.type = 'i';\n")
		case symtab.Bool:
			c.Appendf("      my_dsa.retval.type = 'b';\n")
		default: // typeless procedure
			c.Appendf("      my_dsa.retval.type = 0;\n")
		}
		c.Appendf("      active_dsa = my_dsa.parent;\n")
		c.Appendf("      return my_dsa.retval;\n")
		c.Appendf("}\n\n")
		// the declaration has been processed completely, so the
		// generated code can go to the final output now
		t.emitProcHead(proc, false)
		t.emit.Catenate(c)
	}
	// a procedure declaration must be followed by a semicolon; after
	// the main program it is optional
	if !isMain && !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after procedure declaration")
		t.skipUntilSemicolon()
	}
	if isMain && t.delim(lexer.SEMICOLON) {
		t.warnf("semicolon found after program")
	}
	// the semicolon itself is processed by the caller
}

// procedureHeading parses the formal parameter part, the value part,
// and the specification part of a procedure heading. It returns the
// number of formal parameters.
func (t *Translator) procedureHeading(proc *symtab.Ident) int {
	dim := 0
	if t.delim(lexer.LEFT) {
		t.advance() // (
		for {
			if t.cur().Kind != token.IDENT {
				t.errorf("missing formal parameter identifier")
				break
			}
			if !t.secondPass {
				id := t.tab.Lookup(t.image(), false, t.line())
				if id.Flags&symtab.ByName != 0 {
					t.errorf("formal parameter `%s' repeated in formal parameter list", id.Name)
				}
				id.Flags = symtab.ByName
				// the formal parameter list must not contain the
				// procedure identifier of the same heading (Modified
				// Report 5.4.3)
				if id.Name == proc.Name {
					t.errorf("formal parameter identifier `%s' is the same as procedure identifier", id.Name)
				}
			}
			dim++
			t.advance() // id
			if !t.extComma() {
				break
			}
		}
		if t.delim(lexer.RIGHT) {
			t.advance() // )
		} else {
			t.errorf("missing right parenthesis after formal parameter list")
		}
	}
	if !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after formal parameter part")
		t.skipUntilSemicolon()
	}
	if t.delim(lexer.SEMICOLON) {
		t.advance() // ;
	}
	// optional value part followed by the optional specification part
	if t.delim(lexer.VALUE) {
		t.valuePart()
	}
	for t.isSpecifier() {
		t.specification()
	}
	// a frequent mistake: the value part placed after specifications
	for t.delim(lexer.VALUE) {
		t.errorf("specification part precedes value part")
		t.valuePart()
		for t.isSpecifier() {
			t.specification()
		}
	}
	// every formal parameter must be specified
	if !t.secondPass {
		ok := true
		for id := t.tab.Current.First; id != nil; id = id.Next {
			if id.Flags&^(symtab.ByName|symtab.ByValue) == 0 {
				t.errorf("formal parameter `%s' not specified", id.Name)
				ok = false
			}
		}
		if !ok {
			t.errorf("specification part of procedure `%s' incomplete", proc.Name)
		}
	}
	return dim
}

// valuePart parses `value <identifier list> ;'.
func (t *Translator) valuePart() {
	for {
		t.advance() // value or ,
		if t.cur().Kind != token.IDENT {
			t.errorf("missing formal parameter identifier")
			break
		}
		if !t.secondPass {
			id := t.tab.Lookup(t.image(), false, t.line())
			if id.Flags == 0 {
				t.errorf("identifier `%s' missing from formal parameter list", id.Name)
			}
			if id.Flags&symtab.ByValue != 0 {
				t.errorf("formal parameter `%s' repeated in value part", id.Name)
			}
			id.Flags = symtab.ByValue
		}
		t.advance() // id
		if !t.delim(lexer.COMMA) {
			break
		}
	}
	if !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after value part")
		t.skipUntilSemicolon()
	}
	if t.delim(lexer.SEMICOLON) {
		t.advance() // ;
	}
}

// specification parses one specification of the specification part:
// a specifier followed by an identifier list and a semicolon.
func (t *Translator) specification() {
	var flags symtab.Flags
	switch {
	case t.delim(lexer.REAL), t.delim(lexer.INTEGER), t.delim(lexer.BOOLEAN):
		switch {
		case t.delim(lexer.REAL):
			flags = symtab.Real
		case t.delim(lexer.INTEGER):
			flags = symtab.Int
		default:
			flags = symtab.Bool
		}
		t.advance() // real, integer, Boolean
		if t.delim(lexer.ARRAY) {
			flags |= symtab.Array
			t.advance() // array
		} else if t.delim(lexer.PROCEDURE) {
			flags |= symtab.Proc
			t.advance() // procedure
		}
	case t.delim(lexer.LABEL):
		flags = symtab.Label
		t.advance() // label
	case t.delim(lexer.ARRAY):
		flags = symtab.Real | symtab.Array
		t.advance() // array
	case t.delim(lexer.SWITCH):
		flags = symtab.Switch
		t.advance() // switch
	case t.delim(lexer.PROCEDURE):
		flags = symtab.Proc
		t.advance() // procedure
	case t.delim(lexer.STRING):
		flags = symtab.String
		t.advance() // string
	}
	for {
		if t.cur().Kind != token.IDENT {
			t.errorf("missing formal parameter identifier")
			break
		}
		if !t.secondPass {
			id := t.tab.Lookup(t.image(), false, t.line())
			if id.Flags == 0 {
				t.errorf("identifier `%s' missing from formal parameter list", id.Name)
			}
			if id.Flags&^(symtab.ByName|symtab.ByValue) != 0 {
				t.errorf("formal parameter `%s' multiply specified", id.Name)
			}
			// a specification acts like a declaration
			id.DeclLine = t.line()
			id.UsedLine = 0
			id.Flags |= flags
			if id.Flags&symtab.ByValue != 0 &&
				id.Flags&(symtab.Switch|symtab.Proc|symtab.String) != 0 {
				t.errorf("invalid call by value of switch, procedure, or string `%s'", id.Name)
			}
		}
		t.advance() // id
		if !t.delim(lexer.COMMA) {
			break
		}
		t.advance() // ,
	}
	if !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after specification")
		t.skipUntilSemicolon()
	}
	if t.delim(lexer.SEMICOLON) {
		t.advance() // ;
	}
}

// isSpecifier reports whether the current token can begin a
// specification.
func (t *Translator) isSpecifier() bool {
	return t.delim(lexer.ARRAY) || t.delim(lexer.BOOLEAN) ||
		t.delim(lexer.INTEGER) || t.delim(lexer.LABEL) ||
		t.delim(lexer.PROCEDURE) || t.delim(lexer.REAL) ||
		t.delim(lexer.STRING) || t.delim(lexer.SWITCH)
}

// copyFormal emits the prologue code that captures one formal
// parameter into the fresh DSA.
func (t *Translator) copyFormal(c *code.Frag, id *symtab.Ident) {
	seqn := t.tab.Current.Seqn
	switch id.Flags {
	case symtab.Real | symtab.ByValue, symtab.Int | symtab.ByValue,
		symtab.Bool | symtab.ByValue, symtab.Label | symtab.ByValue:
		// a by-value scalar is evaluated once through its thunk
		get := "get_label"
		switch {
		case id.Flags&symtab.Real != 0:
			get = "get_real"
		case id.Flags&symtab.Int != 0:
			get = "get_int"
		case id.Flags&symtab.Bool != 0:
			get = "get_bool"
		}
		c.Appendf("      my_dsa.line = %d;\n", id.DeclLine)
		c.Appendf("      my_dsa.%s_%d = %s((global_dsa = %s_%d.arg2, (*(struct desc (*)(void))%s_%d.arg1)()));\n",
			id.Name, seqn, get, id.Name, seqn, id.Name, seqn)
	case symtab.Real | symtab.Array | symtab.ByValue,
		symtab.Int | symtab.Array | symtab.ByValue,
		symtab.Bool | symtab.Array | symtab.ByValue:
		// a by-value array is copied onto the stack
		cp := "copy_bool"
		switch {
		case id.Flags&symtab.Real != 0:
			cp = "copy_real"
		case id.Flags&symtab.Int != 0:
			cp = "copy_int"
		}
		c.Appendf("      my_dsa.line = %d;\n", id.DeclLine)
		c.Appendf("      my_dsa.%s_%d = %s(%s_%d);\n", id.Name, seqn, cp, id.Name, seqn)
	case symtab.Real | symtab.ByName, symtab.Int | symtab.ByName,
		symtab.Bool | symtab.ByName, symtab.Label | symtab.ByName,
		symtab.Switch | symtab.ByName,
		symtab.Real | symtab.Proc | symtab.ByName,
		symtab.Int | symtab.Proc | symtab.ByName,
		symtab.Bool | symtab.Proc | symtab.ByName,
		symtab.Proc | symtab.ByName:
		// the argument pair is stored as it came in
		c.Appendf("      my_dsa.%s_%d = %s_%d;\n", id.Name, seqn, id.Name, seqn)
	case symtab.Real | symtab.Array | symtab.ByName,
		symtab.Int | symtab.Array | symtab.ByName,
		symtab.Bool | symtab.Array | symtab.ByName,
		symtab.String | symtab.ByName:
		// only the first pointer (dope vector or string body) is kept
		c.Appendf("      my_dsa.%s_%d = %s_%d.arg1;\n", id.Name, seqn, id.Name, seqn)
	default:
		panic("translator: formal parameter with impossible flags")
	}
}

// escapeFileName renders the input file name as a C string literal
// body, truncated the way the DSA header expects it.
func escapeFileName(name string) string {
	var sb strings.Builder
	n := 0
	for i := 0; i < len(name) && n < 100; i++ {
		c := name[i]
		if c == '\\' || c == '"' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
		n++
	}
	if n < len(name) {
		sb.WriteString("...")
	}
	return sb.String()
}
