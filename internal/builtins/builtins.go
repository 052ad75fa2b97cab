// Package builtins holds the catalog of standard procedures the
// translator knows about, and the end-of-pass-1 resolver that binds
// still-undeclared identifiers of the environmental block to them.
// The catalog is the ABI between the translator and the runtime
// library; the two must be kept in lockstep.
package builtins

import (
	"github.com/cwbudde/go-algol/internal/errors"
	"github.com/cwbudde/go-algol/internal/symtab"
)

// Formal describes one formal parameter of a built-in procedure.
type Formal struct {
	Name  string
	Flags symtab.Flags
}

// Proc describes one built-in procedure.
type Proc struct {
	Name    string
	Flags   symtab.Flags // type bits; Proc|Builtin are implied
	Dim     int          // number of formal parameters
	Formals []Formal
	Pseudo  bool // specially expanded by the translator
}

// Catalog lists every standard procedure of the reference language
// plus the two pseudo procedures. Further standard functions and
// procedures may be added here, but no additional ones may be
// regarded as part of the reference language.
var Catalog = []Proc{
	{Name: "abs", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "iabs", Flags: symtab.Int, Dim: 1,
		Formals: []Formal{{"E", symtab.Int | symtab.ByValue}}},
	{Name: "sign", Flags: symtab.Int, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "entier", Flags: symtab.Int, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "sqrt", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "sin", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "cos", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "arctan", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "ln", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "exp", Flags: symtab.Real, Dim: 1,
		Formals: []Formal{{"E", symtab.Real | symtab.ByValue}}},
	{Name: "stop", Dim: 0},
	{Name: "fault", Dim: 2, Formals: []Formal{
		{"str", symtab.String | symtab.ByName},
		{"r", symtab.Real | symtab.ByValue}}},
	{Name: "inchar", Dim: 3, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"str", symtab.String | symtab.ByName},
		{"int", symtab.Int | symtab.ByName}}},
	{Name: "outchar", Dim: 3, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"str", symtab.String | symtab.ByName},
		{"int", symtab.Int | symtab.ByValue}}},
	{Name: "length", Flags: symtab.Int, Dim: 1,
		Formals: []Formal{{"str", symtab.String | symtab.ByName}}},
	{Name: "outstring", Dim: 2, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"str", symtab.String | symtab.ByName}}},
	{Name: "outterminator", Dim: 1, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue}}},
	{Name: "ininteger", Dim: 2, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"int", symtab.Int | symtab.ByName}}},
	{Name: "outinteger", Dim: 2, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"int", symtab.Int | symtab.ByValue}}},
	{Name: "inreal", Dim: 2, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"re", symtab.Real | symtab.ByName}}},
	{Name: "outreal", Dim: 2, Formals: []Formal{
		{"channel", symtab.Int | symtab.ByValue},
		{"re", symtab.Real | symtab.ByValue}}},
	{Name: "maxreal", Flags: symtab.Real, Dim: 0},
	{Name: "minreal", Flags: symtab.Real, Dim: 0},
	{Name: "maxint", Flags: symtab.Int, Dim: 0},
	{Name: "epsilon", Flags: symtab.Real, Dim: 0},
	{Name: "inline", Dim: 1, Pseudo: true,
		Formals: []Formal{{"statement", symtab.String | symtab.ByName}}},
	{Name: "print", Dim: 0 /* special */, Pseudo: true},
}

// Find returns the catalog entry for name, or nil.
func Find(name string) *Proc {
	for i := range Catalog {
		if Catalog[i].Name == name {
			return &Catalog[i]
		}
	}
	return nil
}

// IsPseudo reports whether the identifier denotes one of the pseudo
// procedures inline or print.
func IsPseudo(id *symtab.Ident) bool {
	if id.Flags&symtab.Builtin == 0 {
		return false
	}
	return id.Name == "inline" || id.Name == "print"
}

// Resolve processes every undeclared identifier accumulated in the
// environmental block at the end of the first pass. Identifiers of
// standard procedures are declared as if a procedure declaration had
// been seen; anything else is an error. The environmental block must
// still be the current block of the table.
func Resolve(tab *symtab.Table, rep *errors.Reporter) {
	if !tab.FirstPass {
		panic("builtins: resolve called on second pass")
	}
	for id := tab.First.First; id != nil; id = id.Next {
		if id.Flags != 0 {
			continue // identifier has been declared
		}
		p := Find(id.Name)
		if p == nil {
			rep.Errorf(id.UsedLine, "identifier `%s' not declared (see line %d)",
				id.Name, id.UsedLine)
			continue
		}
		id.DeclLine = 0
		id.Flags = p.Flags | symtab.Proc | symtab.Builtin
		id.Dim = p.Dim
		b := tab.Enter(id, 1)
		b.Proc = id
		for _, formal := range p.Formals {
			arg := tab.Lookup(formal.Name, false, 0)
			arg.DeclLine = 1
			arg.UsedLine = 1
			arg.Flags = formal.Flags
		}
		tab.Leave()
		if p.Pseudo {
			rep.Warningf(id.UsedLine, "pseudo procedure `%s' used", p.Name)
		}
	}
}
