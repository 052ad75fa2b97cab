package translator

import (
	"fmt"

	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// getVariable generates code reading the controlled variable, the
// same way it would be read inside an expression.
func (t *Translator) getVariable(id *symtab.Ident) *code.Frag {
	expr := t.newCode()
	if !t.secondPass {
		return expr
	}
	switch id.Flags {
	case symtab.Real, symtab.Real | symtab.Own, symtab.Real | symtab.ByValue,
		symtab.Int, symtab.Int | symtab.Own, symtab.Int | symtab.ByValue:
		expr.Lval = false
		expr.Type = id.Flags.Type()
		if id.Flags&symtab.Own != 0 {
			expr.Appendf("%s_%d", id.Name, id.Block.Seqn)
		} else {
			expr.Appendf("dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
		}
	case symtab.Real | symtab.ByName:
		expr.Lval = false
		expr.Type = symtab.Real
		expr.Appendf("get_real(")
		expr.Catenate(t.callByName(id))
		expr.Appendf(")")
	case symtab.Int | symtab.ByName:
		expr.Lval = false
		expr.Type = symtab.Int
		expr.Appendf("get_int(")
		expr.Catenate(t.callByName(id))
		expr.Appendf(")")
	default:
		// invalid controlled variable, diagnosed elsewhere
		expr.Appendf("???")
	}
	return expr
}

// setVariable generates code assigning expr to the controlled
// variable, the same way an assignment statement would.
func (t *Translator) setVariable(id *symtab.Ident, expr *code.Frag) *code.Frag {
	if !t.secondPass {
		return expr
	}
	if id.Flags&symtab.Real != 0 && expr.Type == symtab.Int {
		t.toReal(expr)
	}
	if id.Flags&symtab.Int != 0 && expr.Type == symtab.Real {
		t.toInt(expr)
	}
	switch id.Flags {
	case symtab.Real, symtab.Real | symtab.Own, symtab.Real | symtab.ByValue,
		symtab.Int, symtab.Int | symtab.Own, symtab.Int | symtab.ByValue:
		expr.Type = id.Flags.Type()
		if id.Flags&symtab.Own != 0 {
			expr.Prependf("%s_%d = ", id.Name, id.Block.Seqn)
		} else {
			expr.Prependf("dsa_%d->%s_%d = ", symtab.DSALevel(id), id.Name, id.Block.Seqn)
		}
	case symtab.Real | symtab.ByName:
		expr = t.setByName(id, expr, "set_real", symtab.Real)
	case symtab.Int | symtab.ByName:
		expr = t.setByName(id, expr, "set_int", symtab.Int)
	default:
		// invalid controlled variable, diagnosed elsewhere
		expr.Appendf("???")
	}
	expr.Prependf("      ")
	expr.Appendf(";\n")
	return expr
}

// forStatement parses
//
//	for V := <for list> do <label list> <statement>
//
// Each for-list element is an expression, a step-until element, or a
// while element. The statement following `do' is always extruded to a
// separate routine _sigma_k so that multi-element for lists can reuse
// it; the routine runs with global_dsa set to the DSA of the
// enclosing procedure.
func (t *Translator) forStatement() *code.Frag {
	c := t.newCode()
	count := 0
	if t.secondPass {
		t.forCount++
		count = t.forCount
	}
	t.advance() // for
	var id *symtab.Ident
	if t.cur().Kind == token.IDENT {
		id = t.tab.Lookup(t.image(), false, t.line())
		t.advance() // id
	} else {
		name := fmt.Sprintf("i_%d", t.line())
		t.errorf("missing controlled variable identifier after `for'; dummy identifier `%s' used", name)
		id = t.tab.Lookup(name, true, t.line())
		id.DeclLine = t.line()
		id.UsedLine = t.line()
		id.Flags = symtab.Real
	}
	if t.delim(lexer.BEGSUB) {
		t.errorf("subscripted controlled variable not allowed")
	}
	if t.delim(lexer.ASSIGN) {
		t.advance() // :=
	} else {
		t.errorf("missing ':=' after controlled variable identifier")
	}
	if t.secondPass {
		if id.Flags&(symtab.Label|symtab.Array|symtab.Switch|symtab.Proc|symtab.String) != 0 {
			t.errorf("invalid use of identifier `%s' as controlled variable", id.Name)
		} else if id.Flags&(symtab.Real|symtab.Int) == 0 {
			t.errorf("invalid type of controlled variable `%s'", id.Name)
		}
	}
	for {
		// translate the current for list element
		c.Catenate(t.emitSSN(t.line()))
		// V := expression
		expr := t.expression()
		if t.secondPass {
			if !(expr.Type == symtab.Real || expr.Type == symtab.Int) {
				t.errorf("invalid type of expression assigned to controlled variable")
				expr.Type = symtab.Real
			}
			// a while element repeats the assignment, so it needs an
			// auxiliary label in front of it
			if t.delim(lexer.WHILE) {
				t.labelCount++
				c.Appendf("_gamma_%d:\n", t.labelCount)
				c.Catenate(t.emitSSN(t.line()))
			}
			c.Catenate(t.setVariable(id, expr))
		}
		switch {
		case t.delim(lexer.COMMA), t.delim(lexer.DO):
			// arithmetic expression element: run the body once
			c.Appendf("      global_dsa = (void *)dsa_%d, _sigma_%d();\n",
				t.tab.CurrentLevel(), count)
		case t.delim(lexer.STEP):
			t.stepUntilElement(c, id, count)
		case t.delim(lexer.WHILE):
			t.whileElement(c, count)
		}
		if !t.delim(lexer.COMMA) {
			break
		}
		t.advance() // ,
	}
	// the statement following `do' is translated to a separate
	// routine
	if !t.delim(lexer.DO) {
		t.errorf("missing `do' delimiter after for list")
	}
	ssn := t.line()
	// enter the dummy block that encloses the do statement
	stmt := t.enterBlock(nil, t.line())
	stmt.Appendf("      dsa_%d->new_top_%d = stack_top;\n",
		t.tab.CurrentLevel(), t.tab.Current.Level())
	if t.delim(lexer.DO) {
		t.advance() // do
	}
	stmt.Catenate(t.labelList())
	stmt.Catenate(t.statement())
	stmt.Catenate(t.leaveBlock())
	t.emit.Appendf("static void _sigma_%d(void)\n", count)
	t.emit.Appendf("{     /* statement following 'do' at line %d */\n", ssn)
	t.emitDSAPointers()
	t.emit.Catenate(stmt)
	t.emit.Appendf("      return;\n")
	t.emit.Appendf("}\n")
	t.emit.Appendf("\n")
	return c
}

// stepUntilElement translates `A step B until C': B is evaluated each
// round into an auxiliary teta variable of matching numeric type, and
// the loop exits when (V - C) * sign(teta) > 0.
func (t *Translator) stepUntilElement(c *code.Frag, id *symtab.Ident, count int) {
	var teta *symtab.Ident
	// on the first pass the type of B is not known yet, so both an
	// integer and a real auxiliary variable are declared; the second
	// pass picks one. Possible nested for statements live inside the
	// dummy block enclosing the do statement, so teta variables of
	// different for statements never collide.
	if !t.secondPass {
		teta = t.tab.Lookup("teta_r", false, t.line())
		if teta.DeclLine == 0 {
			teta.DeclLine = t.line()
		}
		teta.Flags = symtab.Real
		teta = t.tab.Lookup("teta_i", false, t.line())
		if teta.DeclLine == 0 {
			teta.DeclLine = t.line()
		}
		teta.Flags = symtab.Int
	}
	t.advance() // step
	expr := t.expression()
	level := t.tab.CurrentLevel()
	if t.secondPass {
		switch expr.Type {
		case symtab.Real:
			teta = t.tab.Lookup("teta_r", false, 0)
		case symtab.Int:
			teta = t.tab.Lookup("teta_i", false, 0)
		default:
			t.errorf("expression following `step' is not of arithmetic type")
			teta = t.tab.Lookup("teta_r", false, 0)
		}
		t.labelCount++
		c.Appendf("_gamma_%d:\n", t.labelCount)
		// teta := B
		c.Appendf("      dsa_%d->%s_%d = ", level, teta.Name, teta.Block.Seqn)
		c.Catenate(expr)
		c.Appendf(";\n")
		c.Catenate(t.emitSSN(t.line()))
	}
	if t.delim(lexer.UNTIL) {
		t.advance() // until
	} else {
		t.errorf("missing `until' delimiter")
	}
	expr = t.expression()
	if t.secondPass {
		// convert C to the type of V
		if id.Flags&symtab.Real != 0 && expr.Type == symtab.Int {
			t.toReal(expr)
		}
		if id.Flags&symtab.Int != 0 && expr.Type == symtab.Real {
			t.toInt(expr)
		}
		if !(expr.Type == symtab.Real || expr.Type == symtab.Int) {
			t.errorf("expression following `until' is not of arithmetic type")
			expr.Type = symtab.Real
		}
		// if (V - C) * sign(teta) > 0 then the element is exhausted
		c.Appendf("      if ((")
		c.Catenate(t.getVariable(id))
		c.Appendf(" - (")
		c.Catenate(expr)
		if id.Flags&symtab.Real != 0 {
			c.Appendf(")) * (double)(")
		} else {
			c.Appendf(")) * (")
		}
		zero := "0"
		if teta.Flags&symtab.Real != 0 {
			zero = "0.0"
		}
		c.Appendf("dsa_%d->%s_%d < %s ? -1 : dsa_%d->%s_%d > %s ? +1 : 0",
			level, teta.Name, teta.Block.Seqn, zero,
			level, teta.Name, teta.Block.Seqn, zero)
		if id.Flags&symtab.Real != 0 {
			c.Appendf(") > 0.0) ")
		} else {
			c.Appendf(") > 0) ")
		}
		c.Appendf("goto _omega_%d;\n", t.labelCount)
	}
	c.Appendf("      global_dsa = (void *)dsa_%d, _sigma_%d();\n", level, count)
	// V := V + teta
	if t.secondPass {
		step := t.newCode()
		step.Lval = false
		step.Type = teta.Flags.Type()
		step.Appendf("dsa_%d->%s_%d", level, teta.Name, teta.Block.Seqn)
		if id.Flags&symtab.Real != 0 && teta.Flags&symtab.Int != 0 {
			t.toReal(step)
		}
		if id.Flags&symtab.Int != 0 && teta.Flags&symtab.Real != 0 {
			t.toInt(step)
		}
		step.Appendf(" + ")
		step.Catenate(t.getVariable(id))
		c.Catenate(t.setVariable(id, step))
	}
	c.Appendf("      goto _gamma_%d;\n", t.labelCount)
	c.Appendf("_omega_%d: /* element exhausted */\n", t.labelCount)
}

// whileElement translates `E while F': the assignment V := E has
// already been emitted under the _gamma label, so only the exit test
// and the loop jump remain.
func (t *Translator) whileElement(c *code.Frag, count int) {
	t.advance() // while
	expr := t.expression()
	if t.secondPass {
		if expr.Type != symtab.Bool {
			t.errorf("expression following `while' is not of Boolean type")
			expr.Type = symtab.Bool
		}
		c.Appendf("      if (!(")
		c.Catenate(expr)
		c.Appendf(")) goto _omega_%d;\n", t.labelCount)
	}
	c.Appendf("      global_dsa = (void *)dsa_%d, _sigma_%d();\n",
		t.tab.CurrentLevel(), count)
	c.Appendf("      goto _gamma_%d;\n", t.labelCount)
	c.Appendf("_omega_%d:\n", t.labelCount)
}
