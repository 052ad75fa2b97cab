package translator

import (
	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// actualParameter translates one actual parameter into the uniform
// two-pointer descriptor
//
//	make_arg(arg1, arg2)
//
// For a quoted string arg1 points at the string body and arg2 is
// null. For an array identifier arg1 is the dope vector and arg2 a
// character tag encoding the element type. A simple formal called by
// name is re-passed unchanged. A switch or procedure identifier
// passes the routine pointer and the caller's DSA. Everything else is
// an expression extruded into a thunk evaluated in the caller's
// environment; thunks for the common constants are shared.
//
// arg, when non-nil, is the corresponding formal parameter, used to
// check the actual-formal correspondence (second pass, local callee
// only).
func (t *Translator) actualParameter(arg *symtab.Ident) *code.Frag {
	c := t.newCode()
	if t.cur().Kind == token.STRING {
		// the corresponding formal parameter must be a string
		if t.secondPass && arg != nil && arg.Flags&symtab.String == 0 {
			t.errorf("string passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
				arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		} else {
			c.Appendf("make_arg(")
			c.Appendf("%s", t.image())
			c.Appendf(", NULL)")
		}
		t.advance() // string
		return c
	}
	// special cases when the actual parameter is a lone identifier;
	// on the first pass every such identifier is treated as an
	// expression since kinds are not known yet
	if t.cur().Kind == token.IDENT && t.peekDelim(lexer.COMMA, lexer.RIGHT) && t.secondPass {
		id := t.tab.Lookup(t.image(), false, t.line())
		switch {
		case id.Flags == symtab.Real|symtab.ByName ||
			id.Flags == symtab.Int|symtab.ByName ||
			id.Flags == symtab.Bool|symtab.ByName:
			// a simple formal called by name is re-passed: its own
			// argument pair goes through unchanged, no new thunk
			if t.checkSimpleByName(id, arg) {
				c.Appendf("dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
			}
			t.advance() // id
			return c
		case id.Flags&symtab.Array != 0:
			if t.checkArrayActual(id, arg) {
				if id.Flags&symtab.Own != 0 {
					c.Appendf("make_arg(%s_%d", id.Name, id.Block.Seqn)
				} else {
					c.Appendf("make_arg(dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
				}
				tag := byte('b')
				switch {
				case id.Flags&symtab.Real != 0:
					tag = 'r'
				case id.Flags&symtab.Int != 0:
					tag = 'i'
				}
				c.Appendf(", (void *)'%c')", tag)
			}
			t.advance() // id
			return c
		case id.Flags&symtab.Switch != 0:
			if arg != nil && arg.Flags&symtab.Switch == 0 {
				t.errorf("switch `%s' passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
					id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
			} else if id.Flags&symtab.ByName == 0 {
				// local switch
				c.Appendf("make_arg((void *)%s_%d, dsa_%d)",
					id.Name, id.Block.Seqn, t.tab.CurrentLevel())
			} else {
				// formal switch passes through unchanged
				c.Appendf("dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
			}
			t.advance() // id
			return c
		case id.Flags&symtab.Proc != 0:
			if t.checkProcActual(id, arg) {
				if id.Flags&symtab.ByName == 0 {
					// local procedure
					c.Appendf("make_arg((void *)%s_%d, dsa_%d)",
						id.Name, id.Block.Seqn, t.tab.CurrentLevel())
				} else {
					// formal procedure passes through unchanged
					c.Appendf("dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
				}
			}
			t.advance() // id
			return c
		case id.Flags&symtab.String != 0:
			// a formal string identifier is re-wrapped
			if arg != nil && arg.Flags&symtab.String == 0 {
				t.errorf("formal string passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
					arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
			} else {
				c.Appendf("make_arg(dsa_%d->%s_%d, NULL)",
					symtab.DSALevel(id), id.Name, id.Block.Seqn)
			}
			t.advance() // id
			return c
		}
		// in the other cases an identifier as actual parameter is
		// treated as an expression
	}
	t.expressionActual(c, arg)
	return c
}

// checkSimpleByName verifies that a re-passed by-name formal matches
// the kind and type of the corresponding formal parameter.
func (t *Translator) checkSimpleByName(id, arg *symtab.Ident) bool {
	if arg == nil {
		return true
	}
	if arg.Flags&^(symtab.Real|symtab.Int|symtab.Bool|symtab.ByValue|symtab.ByName) != 0 {
		t.errorf("formal parameter `%s' called by name and passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	actual, formal := id.Flags.Type(), arg.Flags.Type()
	if actual&(symtab.Real|symtab.Int) != 0 {
		// real and integer are compatible
		actual &^= symtab.Real | symtab.Int
		formal &^= symtab.Real | symtab.Int
	}
	if actual != formal {
		t.errorf("type of formal parameter `%s' called by name and passed as actual parameter conflicts with type of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	return true
}

// checkArrayActual verifies an array actual against an array formal
// of compatible type and dimension.
func (t *Translator) checkArrayActual(id, arg *symtab.Ident) bool {
	if arg == nil {
		return true
	}
	if arg.Flags&symtab.Array == 0 {
		t.errorf("array `%s' passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	actual, formal := id.Flags.Type(), arg.Flags.Type()
	if arg.Flags&symtab.ByValue != 0 {
		// a by-value array copy converts between the numeric types
		actual &^= symtab.Real | symtab.Int
		formal &^= symtab.Real | symtab.Int
	}
	if actual != formal {
		t.errorf("type of array `%s' passed as actual parameter conflicts with type of formal array `%s' as specified in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	if id.Dim >= 0 && arg.Dim >= 0 && id.Dim != arg.Dim {
		t.errorf("dimension of array `%s' passed as actual parameter not equal to dimension of formal array `%s' as implied in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	return true
}

// checkProcActual verifies a procedure actual against a formal
// procedure of compatible type and arity, or against a simple typed
// formal (an identifier of a type procedure with an empty formal part
// is in itself an expression).
func (t *Translator) checkProcActual(id, arg *symtab.Ident) bool {
	if arg == nil {
		return true
	}
	simple := arg.Flags&^(symtab.Real|symtab.Int|symtab.Bool|symtab.ByValue|symtab.ByName) == 0
	if !simple && arg.Flags&symtab.Proc == 0 {
		t.errorf("procedure `%s' passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	actual, formal := id.Flags.Type(), arg.Flags.Type()
	if actual&(symtab.Real|symtab.Int) != 0 {
		actual &^= symtab.Real | symtab.Int
		formal &^= symtab.Real | symtab.Int
	}
	if simple {
		// the actual procedure must be typed and have an empty
		// formal parameter part
		if id.Flags.Type() == 0 || id.Dim > 0 {
			t.errorf("procedure identifier `%s' that is not in itself a complete expression and passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
				id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
			return false
		}
		if actual != formal {
			t.errorf("procedure identifier `%s' that is in itself a complete expression and passed as actual parameter conflicts with type of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
				id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
			return false
		}
		return true
	}
	// deeper checking of formal procedures is sometimes impossible
	// and always expensive, so only type and arity are compared
	if actual != formal && formal != 0 {
		t.errorf("type of procedure `%s' passed as actual parameter conflicts with type of formal procedure `%s' as specified in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	if id.Dim >= 0 && arg.Dim >= 0 && id.Dim != arg.Dim {
		t.errorf("number of parameters of procedure `%s' passed as actual parameter not equal to number of parameters of formal procedure `%s' as implied in declaration of procedure `%s' beginning at line %d",
			id.Name, arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
		return false
	}
	return true
}

// expressionActual translates an expression actual parameter into a
// fresh thunk and emits the descriptor referring to it. Thunks for
// the constants 0, 1, 0.0, 1.0, false, and true are generated only
// once per translation.
func (t *Translator) expressionActual(c *code.Frag, arg *symtab.Ident) {
	needDSA := true
	var memo *int
	if (t.cur().Kind == token.REAL || t.cur().Kind == token.INT ||
		t.cur().Kind == token.FALSE || t.cur().Kind == token.TRUE) &&
		t.peekDelim(lexer.COMMA, lexer.RIGHT) {
		// a constant needs no DSA pointers in its thunk
		needDSA = false
		if t.secondPass {
			switch t.cur().Kind {
			case token.REAL:
				switch t.image() {
				case "0.0", ".0":
					memo = &t.thunkReal0
				case "1.0":
					memo = &t.thunkReal1
				}
			case token.INT:
				switch t.image() {
				case "0":
					memo = &t.thunkInt0
				case "1":
					memo = &t.thunkInt1
				}
			case token.FALSE:
				memo = &t.thunkFalse
			case token.TRUE:
				memo = &t.thunkTrue
			}
			if memo != nil && *memo != 0 {
				// the shared thunk exists already
				t.advance() // constant
				c.Appendf("make_arg((void *)_thunk_%d, dsa_%d)", *memo, t.tab.CurrentLevel())
				return
			}
			if memo != nil {
				*memo = t.thunkCount + 1
			}
		}
	}
	ssn := t.line()
	expr := t.expression()
	if !t.secondPass {
		return
	}
	if arg != nil {
		if arg.Flags&^(symtab.Real|symtab.Int|symtab.Bool|symtab.Label|symtab.ByValue|symtab.ByName) != 0 {
			t.errorf("expression passed as actual parameter conflicts with kind of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
				arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
			return
		}
		actual := expr.Type
		formal := arg.Flags & (symtab.Real | symtab.Int | symtab.Bool | symtab.Label)
		if actual&(symtab.Real|symtab.Int) != 0 {
			actual &^= symtab.Real | symtab.Int
			formal &^= symtab.Real | symtab.Int
		}
		if actual != formal {
			t.errorf("type of expression passed as actual parameter conflicts with type of formal parameter `%s' as specified in declaration of procedure `%s' beginning at line %d",
				arg.Name, arg.Block.Proc.Name, arg.Block.Proc.DeclLine)
			return
		}
	}
	// generate a thunk evaluating the expression in the caller's
	// environment; its result descriptor records the lvalue flag and
	// the type tag of the expression
	t.thunkCount++
	t.emit.Appendf("static struct desc _thunk_%d(void)\n", t.thunkCount)
	t.emit.Appendf("{     /* actual parameter at line %d */\n", ssn)
	t.emit.Appendf("      struct desc res;\n")
	if needDSA {
		t.emitDSAPointers()
		t.emit.Catenate(t.emitSSN(ssn))
	}
	lval := 0
	if expr.Lval {
		lval = 1
	}
	t.emit.Appendf("      res.lval = %d;\n", lval)
	switch expr.Type {
	case symtab.Real:
		t.emit.Appendf("      res.type = 'r';\n")
		if expr.Lval {
			t.emit.Appendf("      res.u.real_ptr = ")
		} else {
			t.emit.Appendf("      res.u.real_val = ")
		}
	case symtab.Int:
		t.emit.Appendf("      res.type = 'i';\n")
		if expr.Lval {
			t.emit.Appendf("      res.u.int_ptr = ")
		} else {
			t.emit.Appendf("      res.u.int_val = ")
		}
	case symtab.Bool:
		t.emit.Appendf("      res.type = 'b';\n")
		if expr.Lval {
			t.emit.Appendf("      res.u.bool_ptr = ")
		} else {
			t.emit.Appendf("      res.u.bool_val = ")
		}
	default: // label
		t.emit.Appendf("      res.type = 'l';\n")
		t.emit.Appendf("      res.u.label = ")
	}
	if expr.Lval {
		t.emit.Appendf("&(")
		t.emit.Catenate(expr)
		t.emit.Appendf(")")
	} else {
		t.emit.Catenate(expr)
	}
	t.emit.Appendf(";\n")
	t.emit.Appendf("      return res;\n")
	t.emit.Appendf("}\n")
	t.emit.Appendf("\n")
	c.Appendf("make_arg((void *)_thunk_%d, dsa_%d)", t.thunkCount, t.tab.CurrentLevel())
}
