package translator

import (
	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// declaration parses one declaration and dispatches on the declarator:
//
//	<declaration> ::= <type declaration>
//	<declaration> ::= <array declaration>
//	<declaration> ::= <switch declaration>
//	<declaration> ::= <procedure declaration>
func (t *Translator) declaration() *code.Frag {
	var flags symtab.Flags
	switch {
	case t.delim(lexer.REAL) || t.delim(lexer.INTEGER) || t.delim(lexer.BOOLEAN):
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
	case t.delim(lexer.ARRAY):
		// an array without a type declarator is a real array
		flags = symtab.Real | symtab.Array
		t.advance() // array
	case t.delim(lexer.OWN):
		flags = symtab.Own
		t.advance() // own
		if t.delim(lexer.REAL) {
			flags |= symtab.Real
			t.advance() // real
		} else if t.delim(lexer.INTEGER) {
			flags |= symtab.Int
			t.advance() // integer
		} else if t.delim(lexer.BOOLEAN) {
			flags |= symtab.Bool
			t.advance() // Boolean
		}
		if t.delim(lexer.ARRAY) {
			if flags == symtab.Own {
				flags |= symtab.Real
			}
			flags |= symtab.Array
			t.advance() // array
		}
		if flags == symtab.Own {
			t.errorf("missing declarator after 'own'")
			flags |= symtab.Real
		}
	case t.delim(lexer.SWITCH):
		flags = symtab.Switch
		t.advance() // switch
	case t.delim(lexer.PROCEDURE):
		flags = symtab.Proc
		t.advance() // procedure
	default:
		panic("translator: declaration dispatched on a non-declarator")
	}
	switch {
	case flags&symtab.Array != 0:
		return t.arrayDeclaration(flags)
	case flags&symtab.Switch != 0:
		t.switchDeclaration()
		return t.newCode()
	case flags&symtab.Proc != 0:
		t.procedureDeclaration(flags, false)
		return t.newCode()
	default:
		t.typeDeclaration(flags)
		return t.newCode()
	}
}

// typeDeclaration parses `<type> <identifier list>' with an optional
// own qualifier. Own simple variables emit a static C variable
// initialized to the zero of the type.
func (t *Translator) typeDeclaration(flags symtab.Flags) {
	for {
		if t.cur().Kind != token.IDENT {
			t.errorf("missing simple variable identifier")
			break
		}
		id := t.tab.Lookup(t.image(), true, t.line())
		id.Flags = flags
		if flags&symtab.Own != 0 {
			switch {
			case flags&symtab.Real != 0:
				t.emit.Appendf("static double %s_%d = 0.0;\n\n", id.Name, id.Block.Seqn)
			case flags&symtab.Int != 0:
				t.emit.Appendf("static int %s_%d = 0;\n\n", id.Name, id.Block.Seqn)
			default:
				t.emit.Appendf("static bool %s_%d = false;\n\n", id.Name, id.Block.Seqn)
			}
		}
		t.advance() // id
		if !t.delim(lexer.COMMA) {
			break
		}
		t.advance() // ,
	}
	if !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after type declaration")
		t.skipUntilSemicolon()
	}
	// the semicolon itself is processed by the caller
}

// ownBound parses a bound expression of an own array, which is
// restricted to an optionally signed integer constant.
func (t *Translator) ownBound() *code.Frag {
	c := t.newCode()
	if t.delim(lexer.PLUS) {
		c.Appendf("+")
		t.advance() // +
	} else if t.delim(lexer.MINUS) {
		c.Appendf("-")
		t.advance() // -
	}
	if !(t.cur().Kind == token.INT &&
		t.peekDelim(lexer.COLON, lexer.COMMA, lexer.ENDSUB)) {
		t.errorf("invalid bound expression for own array")
	}
	expr := t.expression()
	if t.secondPass {
		c.Type = expr.Type
	}
	c.Catenate(expr)
	return c
}

// arrayDeclaration parses an array declaration. Arrays of the same
// segment share their shape: the last one is allocated with
// alloc_array (or own_array behind a first-entry guard), the earlier
// ones with alloc_same/own_same against the later dope vector. Bound
// expressions run with the Modified Report 5.2.4.2 check armed.
func (t *Translator) arrayDeclaration(flags symtab.Flags) *code.Frag {
	c := t.newCode()
	t.tab.InArrayBound = true
	defer func() { t.tab.InArrayBound = false }()
	typeTag := "b"
	switch {
	case flags&symtab.Real != 0:
		typeTag = "r"
	case flags&symtab.Int != 0:
		typeTag = "i"
	}
	for {
		// parse the current array segment
		var seg []*symtab.Ident
		for {
			if t.cur().Kind != token.IDENT {
				t.errorf("missing array identifier")
				t.skipUntilSemicolon()
				return c
			}
			if len(seg) >= 100 {
				t.errorf("too many identifiers in array segment")
				seg = seg[:0]
			}
			id := t.tab.Lookup(t.image(), true, t.line())
			id.Flags = flags
			seg = append(seg, id)
			t.advance() // id
			// the dope vector of an own array lives in static storage
			if flags&symtab.Own != 0 {
				t.emit.Appendf("static struct dv *%s_%d = NULL;\n\n", id.Name, id.Block.Seqn)
			}
			if !t.delim(lexer.COMMA) {
				break
			}
			t.advance() // ,
		}
		if !t.delim(lexer.BEGSUB) {
			t.errorf("missing left parenthesis after array segment")
			t.skipUntilSemicolon()
			return c
		}
		// allocate the last array of the segment
		last := seg[len(seg)-1]
		c.Catenate(t.emitSSN(last.DeclLine))
		if flags&symtab.Own != 0 {
			c.Appendf("      if (%s_%d == NULL) %s_%d = own_array",
				last.Name, last.Block.Seqn, last.Name, last.Block.Seqn)
		} else {
			c.Appendf("      dsa_%d->%s_%d = alloc_array",
				t.tab.CurrentLevel(), last.Name, last.Block.Seqn)
		}
		// the bound list determines the dimension of the array
		bounds := t.newCode()
		t.advance() // [
		dim := 0
		for {
			if dim == 9 {
				t.errorf("array dimension exceeds allowable maximum")
				dim = 0
			}
			dim++
			t.arrayBound(bounds, flags) // lower bound
			if !t.delim(lexer.COLON) {
				t.errorf("missing colon separating bound pair")
				t.skipUntilSemicolon()
				return c
			}
			bounds.Appendf(", ")
			t.advance() // :
			t.arrayBound(bounds, flags) // upper bound
			if !t.delim(lexer.COMMA) {
				break
			}
			bounds.Appendf(", ")
			t.advance() // ,
		}
		if !t.delim(lexer.ENDSUB) {
			t.errorf("missing right parenthesis after bound list")
			t.skipUntilSemicolon()
			return c
		}
		t.advance() // ]
		// now the dimension of every array of the segment is known
		for _, id := range seg {
			id.Dim = dim
		}
		c.Appendf("('%s', %d, ", typeTag, dim)
		c.Catenate(bounds)
		c.Appendf(");\n")
		// the other arrays of the segment share the allocated shape
		for i := len(seg) - 2; i >= 0; i-- {
			id := seg[i]
			proto := seg[i+1]
			c.Catenate(t.emitSSN(id.DeclLine))
			if flags&symtab.Own != 0 {
				c.Appendf("      if (%s_%d == NULL) %s_%d = own_same('%s', %s_%d);\n",
					id.Name, id.Block.Seqn, id.Name, id.Block.Seqn,
					typeTag, proto.Name, proto.Block.Seqn)
			} else {
				c.Appendf("      dsa_%d->%s_%d = alloc_same('%s', dsa_%d->%s_%d);\n",
					t.tab.CurrentLevel(), id.Name, id.Block.Seqn, typeTag,
					t.tab.CurrentLevel(), proto.Name, proto.Block.Seqn)
			}
		}
		// a comma after the segment opens the next one
		if !t.delim(lexer.COMMA) {
			break
		}
		t.advance() // ,
	}
	if !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after array declaration")
		t.skipUntilSemicolon()
	}
	// the semicolon itself is processed by the caller
	return c
}

// arrayBound parses one bound expression into bounds and coerces it
// to integer.
func (t *Translator) arrayBound(bounds *code.Frag, flags symtab.Flags) {
	var bound *code.Frag
	if flags&symtab.Own != 0 {
		bound = t.ownBound()
	} else {
		bound = t.expression()
	}
	if t.secondPass {
		if bound.Type == symtab.Real {
			t.toInt(bound)
		}
		if bound.Type != symtab.Int {
			t.errorf("bound expression is not of arithmetic type")
			bound.Type = symtab.Int
		}
	}
	bounds.Catenate(bound)
}

// switchDeclaration parses `switch <identifier> := <switch list>'.
// Because a switch may be passed as an actual parameter, the
// declaration is always compiled to a separate routine that takes the
// subscript value and returns the corresponding label value.
func (t *Translator) switchDeclaration() {
	if t.cur().Kind != token.IDENT {
		t.errorf("missing switch identifier")
		t.skipUntilSemicolon()
		return
	}
	id := t.tab.Lookup(t.image(), true, t.line())
	id.Flags = symtab.Switch
	t.advance() // id
	if !t.delim(lexer.ASSIGN) {
		t.errorf("missing `:=' after switch identifier")
		t.skipUntilSemicolon()
		return
	}
	t.advance() // :=
	t.emit.Appendf("static struct label %s_%d(int kase)\n", id.Name, id.Block.Seqn)
	t.emit.Appendf("{     /* switch declaration at line %d */\n", id.DeclLine)
	t.emitDSAPointers()
	t.emit.Catenate(t.emitSSN(id.DeclLine))
	t.emit.Appendf("      switch (kase)\n")
	dim := 0
	for {
		expr := t.expression()
		dim++
		if t.secondPass && expr.Type != symtab.Label {
			t.errorf("expression in switch list is not of label type")
			expr.Type = symtab.Label
		}
		open := " "
		if dim == 1 {
			open = "{"
		}
		t.emit.Appendf("      %s  case %d: dsa_%d->line = %d; return ",
			open, dim, t.tab.CurrentLevel(), t.line())
		t.emit.Catenate(expr)
		t.emit.Appendf(";\n")
		if !t.delim(lexer.COMMA) {
			break
		}
		t.advance() // ,
	}
	t.emit.Appendf("         default: fault(\"switch designator undefined\");\n")
	t.emit.Appendf("      }\n")
	t.emit.Appendf("      return make_label(NULL, 0);\n")
	t.emit.Appendf("}\n\n")
	if !t.delim(lexer.SEMICOLON) {
		t.errorf("missing semicolon after switch declaration")
		t.skipUntilSemicolon()
	}
	// the semicolon itself is processed by the caller
}
