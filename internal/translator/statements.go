package translator

import (
	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// assignmentStatement parses the left-recursive chain
//
//	V := V := ... := E
//
// A destination must be a simple variable, a simple formal parameter,
// a typed procedure identifier (inside its own body), or a
// subscripted variable. Type coercion between real and integer is
// applied only at the final expression; mixed-type chains are an
// error. nested is set when the method is re-entered after a `:='.
func (t *Translator) assignmentStatement(nested bool) *code.Frag {
	var x *code.Frag
	if t.cur().Kind == token.IDENT && t.peekDelim(lexer.ASSIGN) {
		// the current context has the form id := ...
		id := t.tab.Lookup(t.image(), false, t.line())
		if !t.secondPass {
			t.advance() // id
			t.advance() // :=
			x = t.assignmentStatement(true)
		} else {
			x = t.assignToIdent(id)
		}
	} else {
		// the context either begins a left part which must be a
		// subscripted variable, or is the final expression
		x = t.expression()
		if t.delim(lexer.ASSIGN) {
			if t.secondPass && !x.Lval {
				t.errorf("invalid use of delimiter `:=' after expression in assignment statement")
			}
			t.advance() // :=
			y := t.assignmentStatement(true)
			if t.secondPass {
				// type conversion is allowed only for the final
				// expression
				if !y.Lval {
					if x.Type == symtab.Real && y.Type == symtab.Int {
						t.toReal(y)
					}
					if x.Type == symtab.Int && y.Type == symtab.Real {
						t.toInt(y)
					}
					if x.Type != y.Type {
						t.errorf("type of destination in left part of assignment statement incompatible with type of assigned expression")
					}
				} else if x.Type != y.Type {
					t.errorf("different types in left part list of assignment statement")
				}
				x.Lval = true // mark assignment statement
				x.Appendf(" = ")
				x.Catenate(y)
			}
		} else if t.secondPass {
			// final expression reached; it is allowed only after `:='
			if !nested {
				t.errorf("invalid use of expression")
			} else {
				if !(x.Type == symtab.Real || x.Type == symtab.Int ||
					x.Type == symtab.Bool) {
					t.errorf("invalid type of assigned expression in assignment statement")
					x.Type = symtab.Real
				}
				x.Lval = false
			}
		}
	}
	if !nested {
		x.Prependf("      ")
		x.Appendf(";\n")
	}
	return x
}

// assignToIdent handles the second-pass id := ... case of the
// assignment chain.
func (t *Translator) assignToIdent(id *symtab.Ident) *code.Frag {
	// the identifier must denote a simple variable, a simple formal
	// parameter, or a type procedure
	switch {
	case id.Flags&symtab.Label != 0:
		t.errorf("invalid use of label `%s' in left part of assignment statement", id.Name)
	case id.Flags&symtab.Array != 0:
		t.errorf("invalid use of array identifier `%s' in left part of assignment statement", id.Name)
	case id.Flags&symtab.Switch != 0:
		t.errorf("invalid use of switch identifier `%s' in left part of assignment statement", id.Name)
	case id.Flags&symtab.String != 0:
		t.errorf("invalid use of formal string `%s' in left part of assignment statement", id.Name)
	case id.Flags&symtab.Proc != 0:
		// assignment to a procedure identifier is allowed only inside
		// the body of that procedure, and the procedure must be typed
		in := false
		for b := t.tab.Current; b != nil; b = b.Surr {
			if b.Proc == id {
				in = true
				break
			}
		}
		if !in {
			t.errorf("invalid assignment to procedure identifier `%s' outside procedure declaration body", id.Name)
		}
		if id.Flags.Type() == 0 {
			t.errorf("invalid use of typeless procedure identifier `%s' in left part of assignment statement", id.Name)
		}
	}
	t.advance() // id
	t.advance() // :=
	x := t.assignmentStatement(true)
	// clear the lvalue flag if x is the final expression
	if !t.delim(lexer.ASSIGN) {
		x.Lval = false
	}
	if !x.Lval {
		// after := the final expression was detected
		if id.Flags&symtab.Real != 0 && x.Type == symtab.Int {
			t.toReal(x)
		}
		if id.Flags&symtab.Int != 0 && x.Type == symtab.Real {
			t.toInt(x)
		}
		if id.Flags.Type() != x.Type {
			t.errorf("type of identifier `%s' in left part of assignment statement incompatible with type of assigned expression", id.Name)
		}
	} else if id.Flags.Type() != x.Type {
		// another assignment follows; conversion is not allowed
		t.errorf("different types in left part list of assignment statement")
	}
	switch id.Flags {
	case symtab.Real, symtab.Real | symtab.Own, symtab.Real | symtab.ByValue,
		symtab.Int, symtab.Int | symtab.Own, symtab.Int | symtab.ByValue,
		symtab.Bool, symtab.Bool | symtab.Own, symtab.Bool | symtab.ByValue:
		x.Lval = true // mark assignment statement
		x.Type = id.Flags.Type()
		if id.Flags&symtab.Own != 0 {
			x.Prependf("%s_%d = ", id.Name, id.Block.Seqn)
		} else {
			x.Prependf("dsa_%d->%s_%d = ", symtab.DSALevel(id), id.Name, id.Block.Seqn)
		}
	case symtab.Real | symtab.ByName:
		x = t.setByName(id, x, "set_real", symtab.Real)
	case symtab.Int | symtab.ByName:
		x = t.setByName(id, x, "set_int", symtab.Int)
	case symtab.Bool | symtab.ByName:
		x = t.setByName(id, x, "set_bool", symtab.Bool)
	case symtab.Real | symtab.Proc, symtab.Int | symtab.Proc, symtab.Bool | symtab.Proc:
		x.Lval = true // mark assignment statement
		x.Type = id.Flags.Type()
		field := "bool_val"
		switch x.Type {
		case symtab.Real:
			field = "real_val"
		case symtab.Int:
			field = "int_val"
		}
		x.Prependf("dsa_%d->retval.u.%s = ", symtab.DSALevel(id)+1, field)
	default:
		// error diagnostics have been generated already
	}
	return x
}

// setByName wraps an assignment to a simple formal parameter called
// by name into the appropriate set_xxx runtime call; the call returns
// the assigned value so the chain can continue.
func (t *Translator) setByName(id *symtab.Ident, x *code.Frag, set string, typ symtab.Flags) *code.Frag {
	c := t.callByName(id)
	c.Prependf("%s(", set)
	c.Appendf(", ")
	c.Catenate(x)
	c.Appendf(")")
	c.Lval = true // mark assignment statement
	c.Type = typ
	return c
}

// goToStatement parses `go to <designational expression>'. When the
// operand is a label identifier declared in the current block a
// direct C goto is emitted; otherwise control transfers through the
// go_to runtime routine using the stored environment.
func (t *Translator) goToStatement() *code.Frag {
	t.advance() // go to
	if t.secondPass && t.cur().Kind == token.IDENT &&
		t.peekDelim(lexer.SEMICOLON, lexer.ELSE, lexer.END) {
		id := t.tab.Lookup(t.image(), false, t.line())
		if id.Flags&symtab.Label == 0 {
			t.errorf("invalid use identifier `%s' as a label in go to statement", id.Name)
		}
		if id.Flags == symtab.Label && id.Block == t.tab.Current {
			// go to a local label in the same block
			c := t.newCode()
			c.Appendf("      goto %s_%d;\n", id.Name, id.Block.Seqn)
			t.advance() // id
			return c
		}
	}
	c := t.expression()
	if t.secondPass {
		if c.Type != symtab.Label {
			t.errorf("expression following `go to' is not of label type")
		}
		c.Prependf("      go_to(")
		c.Appendf(");\n")
	}
	return c
}

// dummyStatement emits the code for an empty statement.
func (t *Translator) dummyStatement() *code.Frag {
	c := t.newCode()
	c.Appendf("      /* <dummy statement> */;\n")
	return c
}

// labelList parses the list of labels optionally preceding a
// statement, implicitly declaring each in the current block, and
// finishes with the source-line bookkeeping for the statement that
// follows.
func (t *Translator) labelList() *code.Frag {
	c := t.newCode()
	if t.delim(lexer.ELSE) || t.delim(lexer.END) || t.delim(lexer.SEMICOLON) {
		t.warnf("unlabelled dummy statement")
	}
	for {
		if t.cur().Kind == token.IDENT && t.peekDelim(lexer.COLON) {
			label := t.tab.Lookup(t.image(), true, t.line())
			label.Flags = symtab.Label // local label
			c.Appendf("%s_%d:\n", label.Name, label.Block.Seqn)
			t.advance() // id
			t.advance() // :
		} else if t.cur().Kind == token.INT && t.peekDelim(lexer.COLON) {
			// valid in the Revised Report, invalid in the Modified one
			t.errorf("invalid use unsigned integer `%s' as a label", t.image())
			t.advance() // integer
			t.advance() // :
		} else {
			break
		}
	}
	c.Catenate(t.emitSSN(t.line()))
	return c
}

// conditionalStatement parses
//
//	if E then S
//	if E then S1 else S2
//
// using forward skips to the auxiliary labels _gamma_n and _omega_n.
// The statement between then and else must not itself be a
// conditional or for statement.
func (t *Translator) conditionalStatement() *code.Frag {
	t.advance() // if
	c := t.expression()
	if !t.delim(lexer.THEN) {
		t.errorf("missing `then' delimiter")
	}
	if t.secondPass && c.Type != symtab.Bool {
		t.errorf("expression following `if' is not of Boolean type")
	}
	if t.delim(lexer.THEN) {
		t.advance() // then
	}
	thenPart := t.labelList()
	noElse := t.delim(lexer.IF) || t.delim(lexer.FOR)
	thenPart.Catenate(t.statement())
	if !t.delim(lexer.ELSE) {
		if t.secondPass {
			c.Prependf("      if (!(")
			t.labelCount++
			c.Appendf(")) goto _omega_%d;\n", t.labelCount)
			c.Catenate(thenPart)
			c.Appendf("_omega_%d:\n", t.labelCount)
		}
		return c
	}
	if noElse {
		t.errorf("invalid use of delimiter `else' after if or for statement")
	}
	t.advance() // else
	elsePart := t.labelList()
	elsePart.Catenate(t.statement())
	if t.secondPass {
		c.Prependf("      if (!(")
		t.labelCount++
		c.Appendf(")) goto _gamma_%d;\n", t.labelCount)
		c.Catenate(thenPart)
		c.Appendf("      goto _omega_%d;\n_gamma_%d:\n", t.labelCount, t.labelCount)
		c.Catenate(elsePart)
		c.Appendf("_omega_%d:\n", t.labelCount)
	}
	return c
}

// statement parses one unlabeled statement and dispatches to the
// specific parsing method.
func (t *Translator) statement() *code.Frag {
	var c *code.Frag
	switch {
	case t.delim(lexer.BEGIN):
		c = t.blockOrCompoundStatement()
	case t.cur().Kind == token.IDENT && t.peekDelim(lexer.ASSIGN, lexer.BEGSUB):
		c = t.assignmentStatement(false)
	case t.delim(lexer.GOTO):
		c = t.goToStatement()
	case t.delim(lexer.ELSE), t.delim(lexer.END), t.delim(lexer.SEMICOLON):
		c = t.dummyStatement()
	case t.delim(lexer.IF):
		c = t.conditionalStatement()
	case t.delim(lexer.FOR):
		c = t.forStatement()
	case t.cur().Kind == token.IDENT &&
		t.peekDelim(lexer.LEFT, lexer.ELSE, lexer.END, lexer.SEMICOLON):
		c = t.procedureStatement()
	case t.delim(lexer.EOF):
		t.errorf("unexpected eof")
		c = t.newCode()
	default:
		switch {
		case t.cur().Kind == token.IDENT:
			t.errorf("invalid use of identifier `%s'", t.image())
		case t.cur().Kind == token.INT, t.cur().Kind == token.REAL,
			t.cur().Kind == token.FALSE, t.cur().Kind == token.TRUE:
			t.errorf("invalid use of constant `%s'", t.image())
		case t.cur().Kind == token.STRING:
			t.errorf("invalid use of string")
		case t.isDeclaration():
			t.errorf("declarator `%s' in invalid position", t.image())
		default:
			t.errorf("invalid use of delimiter `%s'", t.image())
		}
		t.skipToSync()
		c = t.newCode()
	}
	// check the delimiter terminating the statement
	if !(t.delim(lexer.EOF) || t.delim(lexer.SEMICOLON) ||
		t.delim(lexer.ELSE) || t.delim(lexer.END)) {
		t.errorf("missing semicolon, `else', or `end' after statement")
		t.skipToSync()
	}
	// the delimiter itself is processed by the caller
	return c
}

// isDeclaration reports whether the current token begins a
// declaration.
func (t *Translator) isDeclaration() bool {
	return t.delim(lexer.ARRAY) || t.delim(lexer.BOOLEAN) ||
		t.delim(lexer.INTEGER) || t.delim(lexer.OWN) ||
		t.delim(lexer.PROCEDURE) || t.delim(lexer.REAL) ||
		t.delim(lexer.SWITCH)
}

// blockOrCompoundStatement parses an unlabelled block (begin with
// declarations) or compound statement (begin without).
func (t *Translator) blockOrCompoundStatement() *code.Frag {
	t.advance() // begin
	isBlock := t.isDeclaration()
	var c *code.Frag
	if isBlock {
		c = t.enterBlock(nil, t.line())
		for t.isDeclaration() {
			c.Catenate(t.declaration())
			// the semicolon following a declaration is checked by the
			// declaration methods themselves
			if t.delim(lexer.SEMICOLON) {
				t.advance() // ;
			}
		}
		// array declarations move the stack top, so the new top is
		// saved for non-local go to leading back into this block
		c.Appendf("      dsa_%d->new_top_%d = stack_top;\n",
			t.tab.CurrentLevel(), t.tab.Current.Level())
	} else {
		// no code is needed to enter a compound statement
		c = t.newCode()
	}
	for {
		c.Catenate(t.labelList())
		c.Catenate(t.statement())
		if t.delim(lexer.EOF) {
			t.errorf("missing `end' bracket")
			break
		} else if t.delim(lexer.ELSE) {
			t.errorf("invalid use of delimiter `else' outside if statement")
			t.advance() // else, ignored
		} else if t.delim(lexer.END) {
			break
		} else if t.delim(lexer.SEMICOLON) {
			// a semicolon means that the next statement is expected
			t.advance() // ;
		}
	}
	if isBlock {
		c.Catenate(t.leaveBlock())
	}
	if t.delim(lexer.END) {
		t.advance() // end
	}
	return c
}
