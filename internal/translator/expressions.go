package translator

import (
	"strings"

	"github.com/cwbudde/go-algol/internal/code"
	"github.com/cwbudde/go-algol/internal/lexer"
	"github.com/cwbudde/go-algol/internal/symtab"
	"github.com/cwbudde/go-algol/internal/token"
)

// subscriptedVariable parses
//
//	<subscripted variable> ::= <identifier> [ <subscript list> ]
//
// and generates (*loc_xxx(dv, n, i1, ..., in)) where loc_xxx computes
// a pointer to the array element, dv is the dope vector (in the DSA
// for local and formal arrays, static for own arrays), and n is the
// number of subscripts.
func (t *Translator) subscriptedVariable() *code.Frag {
	c := t.newCode()
	arr := t.tab.Lookup(t.image(), false, t.line())
	if t.secondPass && arr.Flags&symtab.Array == 0 {
		t.errorf("invalid use of `%s' as array identifier", arr.Name)
	}
	if t.secondPass {
		c.Lval = true
		c.Type = arr.Flags.Type()
		loc := "loc_bool"
		switch c.Type {
		case symtab.Real:
			loc = "loc_real"
		case symtab.Int:
			loc = "loc_int"
		}
		if arr.Flags&symtab.Own != 0 {
			c.Appendf("(*%s(%s_%d", loc, arr.Name, arr.Block.Seqn)
		} else {
			c.Appendf("(*%s(dsa_%d->%s_%d", loc, symtab.DSALevel(arr), arr.Name, arr.Block.Seqn)
		}
	}
	t.advance() // id
	if !t.delim(lexer.BEGSUB) {
		panic("translator: subscripted variable without `['")
	}
	subs := t.newCode()
	dim := 0
	for {
		if dim == 9 {
			t.errorf("number of subscripts exceeds allowable maximum")
			dim = 0
		}
		t.advance() // [ or ,
		expr := t.expression()
		t.toInt(expr)
		if t.secondPass && expr.Type != symtab.Int {
			t.errorf("invalid type of subscript expression")
			expr.Type = symtab.Int
		}
		subs.Catenate(expr)
		dim++
		if !t.delim(lexer.COMMA) {
			break
		}
		subs.Appendf(", ")
	}
	if !t.delim(lexer.ENDSUB) {
		t.errorf("missing right parenthesis in subscripted variable")
	}
	// check the number of subscripts
	if arr.Dim < 0 {
		arr.Dim = dim
	}
	if t.secondPass && arr.Flags&symtab.Array != 0 && arr.Dim != dim {
		if arr.Flags&(symtab.ByValue|symtab.ByName) != 0 {
			t.errorf("number of subscripts in subscripted variable conflicts with earlier use of array `%s'", arr.Name)
		} else {
			t.errorf("number of subscripts in subscripted variable conflicts with declaration of array `%s' at line %d",
				arr.Name, arr.DeclLine)
		}
	}
	if t.delim(lexer.ENDSUB) {
		t.advance() // ]
	}
	c.Appendf(", %d, ", dim)
	c.Catenate(subs)
	c.Appendf("))")
	return c
}

// switchDesignator parses <identifier> [ <expression> ] where the
// identifier denotes a switch. The generated code assigns global_dsa
// and calls the routine representing the switch declaration (or, for
// a formal switch, the routine passed through the argument pair):
//
//	(global_dsa = ..., id(k))
func (t *Translator) switchDesignator() *code.Frag {
	var c *code.Frag
	swit := t.tab.Lookup(t.image(), false, t.line())
	// the first pass handles this context as a subscripted variable,
	// so only the second pass ever gets here
	if !t.secondPass || swit.Flags&symtab.Switch == 0 {
		panic("translator: switch designator outside second pass")
	}
	t.advance() // id
	if !t.delim(lexer.BEGSUB) {
		panic("translator: switch designator without `['")
	}
	dim := 0
	for {
		if dim == 1 {
			t.errorf("invalid number of subscripts in switch designator for `%s'", swit.Name)
		}
		t.advance() // [ or ,
		c = t.expression()
		t.toInt(c)
		if c.Type != symtab.Int {
			t.errorf("invalid type of subscript expression")
			c.Type = symtab.Int
		}
		dim++
		if !t.delim(lexer.COMMA) {
			break
		}
	}
	if !t.delim(lexer.ENDSUB) {
		panic("translator: switch designator without `]'")
	}
	t.advance() // ]
	c.Lval = false
	c.Type = symtab.Label
	if swit.Flags&symtab.ByName != 0 {
		// formal switch
		c.Prependf("(global_dsa = dsa_%d->%s_%d.arg2, (*(struct label (*)(int))dsa_%d->%s_%d.arg1)(",
			symtab.DSALevel(swit), swit.Name, swit.Block.Seqn,
			symtab.DSALevel(swit), swit.Name, swit.Block.Seqn)
	} else {
		// local switch
		c.Prependf("(global_dsa = (void *)dsa_%d, %s_%d(",
			t.tab.CurrentLevel(), swit.Name, swit.Block.Seqn)
	}
	c.Appendf("))")
	return c
}

// callByName generates the call of a formal parameter by name; the
// corresponding actual parameter is a thunk or a type procedure with
// an empty parameter part, and the result is always a struct desc:
//
//	(global_dsa = arg.arg2, arg.arg1())
func (t *Translator) callByName(id *symtab.Ident) *code.Frag {
	c := t.newCode()
	c.Appendf("(global_dsa = dsa_%d->%s_%d.arg2, (*(struct desc (*)(void))dsa_%d->%s_%d.arg1)())",
		symtab.DSALevel(id), id.Name, id.Block.Seqn,
		symtab.DSALevel(id), id.Name, id.Block.Seqn)
	return c
}

// normalizeReal converts the canonical image of a real constant into
// a C floating literal: leading zeros are removed (keeping one before
// a bare ten symbol), the ten symbol becomes `e', and a constant that
// begins with the ten symbol gets an explicit 1 mantissa.
func normalizeReal(image string) string {
	i := 0
	for i < len(image) && image[i] == '0' {
		i++
	}
	if i < len(image) && image[i] == lexer.TenChar && i > 0 {
		i--
	}
	s := image[i:]
	ten := strings.IndexByte(s, lexer.TenChar)
	if ten >= 0 {
		s = s[:ten] + "e" + s[ten+1:]
	}
	if ten == 0 {
		s = "1" + s
	}
	return s
}

// normalizeInt removes leading zeros so the C compiler cannot take
// the constant for an octal literal.
func normalizeInt(image string) string {
	i := 0
	for i < len(image) && image[i] == '0' {
		i++
	}
	if i == len(image) {
		i--
	}
	return image[i:]
}

// primary parses a primary expression: a constant, an identifier, a
// subscripted variable, a switch designator, a function designator,
// or a parenthesized expression.
func (t *Translator) primary() *code.Frag {
	var c *code.Frag
	switch {
	case t.cur().Kind == token.REAL:
		c = t.newCode()
		if t.secondPass {
			c.Lval = false
			c.Type = symtab.Real
			c.Appendf("%s", normalizeReal(t.image()))
		}
		t.advance()
	case t.cur().Kind == token.INT:
		c = t.newCode()
		if t.secondPass {
			c.Lval = false
			c.Type = symtab.Int
			c.Appendf("%s", normalizeInt(t.image()))
		}
		t.advance()
	case t.cur().Kind == token.FALSE, t.cur().Kind == token.TRUE:
		c = t.newCode()
		if t.secondPass {
			c.Lval = false
			c.Type = symtab.Bool
			if t.cur().Kind == token.FALSE {
				c.Appendf("false")
			} else {
				c.Appendf("true")
			}
		}
		t.advance()
	case t.cur().Kind == token.IDENT:
		id := t.tab.Lookup(t.image(), false, t.line())
		switch {
		case t.peekDelim(lexer.BEGSUB):
			// subscripted variable or switch designator; on the first
			// pass kinds are unknown and the subscripted-variable
			// route covers both
			if !t.secondPass || id.Flags&symtab.Switch == 0 {
				c = t.subscriptedVariable()
			} else {
				c = t.switchDesignator()
			}
		case t.peekDelim(lexer.LEFT):
			// function designator with a non-empty parameter part
			c = t.functionDesignator(false)
		default:
			// a plain identifier, or a function designator with an
			// empty parameter part (first pass: treated as a simple
			// variable)
			if t.secondPass && id.Flags&symtab.Proc != 0 {
				c = t.functionDesignator(false)
				break
			}
			c = t.newCode()
			if t.secondPass {
				t.identOperand(c, id)
			}
			t.advance() // id
		}
	case t.delim(lexer.LEFT):
		t.advance() // (
		c = t.expression()
		if t.delim(lexer.RIGHT) {
			t.advance() // )
		} else {
			t.errorf("missing right parenthesis after expression")
		}
		if t.secondPass {
			c.Lval = false
			c.Prependf("(")
			c.Appendf(")")
		}
	case t.cur().Kind == token.STRING:
		t.errorf("invalid use of string as expression operand")
		t.advance()
		c = t.newCode()
	default:
		t.errorf("invalid use of delimiter `%s' as expression operand", t.image())
		t.advance()
		c = t.newCode()
	}
	return c
}

// identOperand generates the code for a plain identifier used as an
// expression operand (second pass only).
func (t *Translator) identOperand(c *code.Frag, id *symtab.Ident) {
	switch id.Flags {
	case symtab.Real, symtab.Real | symtab.Own, symtab.Real | symtab.ByValue,
		symtab.Int, symtab.Int | symtab.Own, symtab.Int | symtab.ByValue,
		symtab.Bool, symtab.Bool | symtab.Own, symtab.Bool | symtab.ByValue:
		// simple local or own variable, or formal called by value
		c.Lval = true
		c.Type = id.Flags.Type()
		if id.Flags&symtab.Own != 0 {
			c.Appendf("%s_%d", id.Name, id.Block.Seqn)
		} else {
			c.Appendf("dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
		}
	case symtab.Real | symtab.ByName:
		c.Lval = false
		c.Type = symtab.Real
		c.Appendf("get_real(")
		c.Catenate(t.callByName(id))
		c.Appendf(")")
	case symtab.Int | symtab.ByName:
		c.Lval = false
		c.Type = symtab.Int
		c.Appendf("get_int(")
		c.Catenate(t.callByName(id))
		c.Appendf(")")
	case symtab.Bool | symtab.ByName:
		c.Lval = false
		c.Type = symtab.Bool
		c.Appendf("get_bool(")
		c.Catenate(t.callByName(id))
		c.Appendf(")")
	case symtab.Label:
		// local label: make the label value used by non-local go to
		c.Lval = false
		c.Type = symtab.Label
		c.Appendf("make_label(dsa_%d->jump_%d, %d)",
			symtab.DSALevel(id), id.Block.Level(), id.Dim)
	case symtab.Label | symtab.ByValue:
		c.Lval = false
		c.Type = symtab.Label
		c.Appendf("dsa_%d->%s_%d", symtab.DSALevel(id), id.Name, id.Block.Seqn)
	case symtab.Label | symtab.ByName:
		c.Lval = false
		c.Type = symtab.Label
		c.Appendf("get_label(")
		c.Catenate(t.callByName(id))
		c.Appendf(")")
	default:
		t.errorf("invalid use of identifier `%s' as expression operand", id.Name)
		c.Lval = false
		c.Type = symtab.Int
	}
}

// factor parses <factor> ::= <primary> | <factor> ^ <primary>.
// Exponentiation emits the runtime routines expi (integer base and
// exponent), expn (real base, integer exponent), or expr (real
// exponent).
func (t *Translator) factor() *code.Frag {
	x := t.primary()
	for t.delim(lexer.POWER) {
		if t.secondPass && !(x.Type == symtab.Int || x.Type == symtab.Real) {
			t.errorf("operand preceding `^' is not of arithmetic type")
			x.Type = symtab.Int
		}
		t.advance() // ^
		y := t.primary()
		if t.secondPass {
			if !(y.Type == symtab.Int || y.Type == symtab.Real) {
				t.errorf("operand following `^' is not of arithmetic type")
				y.Type = symtab.Int
			}
			x.Lval = false
			if y.Type == symtab.Real {
				t.toReal(x)
				x.Prependf("expr(")
			} else if x.Type == symtab.Real {
				x.Prependf("expn(")
			} else {
				x.Prependf("expi(")
			}
			x.Appendf(", ")
			x.Catenate(y)
			x.Appendf(")")
		}
	}
	return x
}

// term parses <term> with the operators *, /, and %. The result is
// real if any operand is real or the operator is /; the % operator
// requires integer operands.
func (t *Translator) term() *code.Frag {
	x := t.factor()
	for t.delim(lexer.TIMES) || t.delim(lexer.SLASH) || t.delim(lexer.INTDIV) {
		op := t.cur().Delim
		if t.secondPass {
			if !(x.Type == symtab.Int || x.Type == symtab.Real) {
				t.errorf("operand preceding `*', `/', or `%%' is not of arithmetic type")
				x.Type = symtab.Int
			}
			if op == lexer.INTDIV && x.Type != symtab.Int {
				t.errorf("operand preceding `%%' is not of integer type")
				x.Type = symtab.Int
			}
		}
		t.advance() // * or / or %
		y := t.factor()
		if t.secondPass {
			if !(y.Type == symtab.Int || y.Type == symtab.Real) {
				t.errorf("operand following `*', `/', or `%%' is not of arithmetic type")
				y.Type = symtab.Int
			}
			if op == lexer.INTDIV && y.Type != symtab.Int {
				t.errorf("operand following `%%' is not of integer type")
				y.Type = symtab.Int
			}
			x.Lval = false
			if x.Type == symtab.Real || op == lexer.SLASH || y.Type == symtab.Real {
				t.toReal(x)
				t.toReal(y)
			}
			if op == lexer.TIMES {
				x.Appendf(" * ")
			} else {
				x.Appendf(" / ")
			}
			x.Catenate(y)
		}
	}
	return x
}

// arithExpression parses unary and binary + and -.
func (t *Translator) arithExpression() *code.Frag {
	var x *code.Frag
	if t.delim(lexer.PLUS) || t.delim(lexer.MINUS) {
		op := t.cur().Delim
		t.advance() // + or -
		x = t.term()
		if t.secondPass {
			if !(x.Type == symtab.Int || x.Type == symtab.Real) {
				t.errorf("operand following unary `+' or `-' is not of arithmetic type")
				x.Type = symtab.Int
			}
			x.Lval = false
			if op == lexer.PLUS {
				x.Prependf("+")
			} else {
				x.Prependf("-")
			}
		}
	} else {
		x = t.term()
	}
	for t.delim(lexer.PLUS) || t.delim(lexer.MINUS) {
		op := t.cur().Delim
		if t.secondPass && !(x.Type == symtab.Int || x.Type == symtab.Real) {
			t.errorf("operand preceding `+' or `-' is not of arithmetic type")
			x.Type = symtab.Int
		}
		t.advance() // + or -
		y := t.term()
		if t.secondPass {
			if !(y.Type == symtab.Int || y.Type == symtab.Real) {
				t.errorf("operand following `+' or `-' is not of arithmetic type")
				y.Type = symtab.Int
			}
			x.Lval = false
			if x.Type == symtab.Real || y.Type == symtab.Real {
				t.toReal(x)
				t.toReal(y)
			}
			if op == lexer.PLUS {
				x.Appendf(" + ")
			} else {
				x.Appendf(" - ")
			}
			x.Catenate(y)
		}
	}
	return x
}

// relation parses an optional relational operator between arithmetic
// expressions. Relations emit runtime macros so both operands are
// always evaluated. A relation cannot itself be an operand of a
// relational operator; the invalid nesting is diagnosed but parsed.
func (t *Translator) relation() *code.Frag {
	nested := false
	x := t.arithExpression()
	for t.delim(lexer.LESS) || t.delim(lexer.NOTGREATER) ||
		t.delim(lexer.EQUAL) || t.delim(lexer.NOTLESS) ||
		t.delim(lexer.GREATER) || t.delim(lexer.NOTEQUAL) {
		op := t.cur().Delim
		if nested {
			t.errorf("invalid use of relational operator")
		}
		nested = true
		if t.secondPass && !(x.Type == symtab.Int || x.Type == symtab.Real) {
			t.errorf("operand preceding relational operator is not of arithmetic type")
			x.Type = symtab.Int
		}
		t.advance() // relational operator
		y := t.arithExpression()
		if t.secondPass {
			if !(y.Type == symtab.Int || y.Type == symtab.Real) {
				t.errorf("operand following relational operator is not of arithmetic type")
				y.Type = symtab.Int
			}
			if x.Type == symtab.Real || y.Type == symtab.Real {
				t.toReal(x)
				t.toReal(y)
			}
			x.Lval = false
			x.Type = symtab.Bool
			var macro string
			switch op {
			case lexer.LESS:
				macro = "less"
			case lexer.NOTGREATER:
				macro = "notgreater"
			case lexer.EQUAL:
				macro = "equal"
			case lexer.NOTLESS:
				macro = "notless"
			case lexer.GREATER:
				macro = "greater"
			default:
				macro = "notequal"
			}
			x.Prependf("%s(", macro)
			x.Appendf(", ")
			x.Catenate(y)
			x.Appendf(")")
		}
	}
	return x
}

// boolPrimary parses an optional logical negation.
func (t *Translator) boolPrimary() *code.Frag {
	if !t.delim(lexer.NOT) {
		return t.relation()
	}
	t.advance() // !
	x := t.relation()
	if t.secondPass {
		if x.Type != symtab.Bool {
			t.errorf("operand following `!' is not of Boolean type")
			x.Type = symtab.Bool
		}
		x.Lval = false
		x.Prependf("not(")
		x.Appendf(")")
	}
	return x
}

// binaryBool folds a left-associative Boolean operator into calls of
// the corresponding runtime macro.
func (t *Translator) binaryBool(sym lexer.Symbol, name, opText string,
	operand func() *code.Frag) *code.Frag {
	x := operand()
	for t.delim(sym) {
		if t.secondPass && x.Type != symtab.Bool {
			t.errorf("operand preceding `%s' is not of Boolean type", opText)
			x.Type = symtab.Bool
		}
		t.advance()
		y := operand()
		if t.secondPass {
			if y.Type != symtab.Bool {
				t.errorf("operand following `%s' is not of Boolean type", opText)
				y.Type = symtab.Bool
			}
			x.Lval = false
			x.Prependf("%s(", name)
			x.Appendf(", ")
			x.Catenate(y)
			x.Appendf(")")
		}
	}
	return x
}

func (t *Translator) boolFactor() *code.Frag {
	return t.binaryBool(lexer.AND, "and", "&", t.boolPrimary)
}

func (t *Translator) boolTerm() *code.Frag {
	return t.binaryBool(lexer.OR, "or", "|", t.boolFactor)
}

func (t *Translator) implication() *code.Frag {
	return t.binaryBool(lexer.IMPL, "impl", "->", t.boolTerm)
}

func (t *Translator) simpleExpr() *code.Frag {
	return t.binaryBool(lexer.EQUIV, "equiv", "==", t.implication)
}

// expression parses an expression of general kind:
//
//	<expression> ::= <simple expression>
//	<expression> ::= if <expression> then <simple expression>
//	                 else <expression>
//
// The conditional form emits ((condition) ? (sae) : (ae)); the result
// type upconverts to real when one branch is real and the other
// arithmetic.
func (t *Translator) expression() *code.Frag {
	if !t.delim(lexer.IF) {
		return t.simpleExpr()
	}
	t.advance() // if
	x := t.expression()
	if !t.delim(lexer.THEN) {
		t.errorf("missing `then' delimiter")
	}
	if t.secondPass && x.Type != symtab.Bool {
		t.errorf("expression following `if' is not of Boolean type")
	}
	if t.delim(lexer.THEN) {
		t.advance() // then
	}
	sae := t.simpleExpr() // expression before else
	if t.delim(lexer.ELSE) {
		t.advance() // else
	} else {
		t.errorf("missing `else' delimiter")
	}
	ae := t.expression() // expression after else
	if t.secondPass {
		if sae.Type == symtab.Int && ae.Type == symtab.Real {
			t.toReal(sae)
		}
		if sae.Type == symtab.Real && ae.Type == symtab.Int {
			t.toReal(ae)
		}
		if sae.Type != ae.Type {
			t.errorf("expressions before and after 'else' incompatible")
		}
		x.Lval = false
		x.Type = sae.Type
		x.Prependf("((")
		x.Appendf(") ? (")
		x.Catenate(sae)
		x.Appendf(") : (")
		x.Catenate(ae)
		x.Appendf("))")
	}
	return x
}
