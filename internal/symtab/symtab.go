// Package symtab implements the block tree and identifier records of
// the translator. The tree is built during the first pass and walked
// in lockstep during the second; identifiers that are still undeclared
// when a block is left bubble up into the enclosing block, so at the
// end of the first pass every unresolved name sits in the outermost
// environmental block (number 0) where the built-in resolver decides
// its fate.
package symtab

import (
	"strings"

	"github.com/cwbudde/go-algol/internal/errors"
)

// Flags is the bitset of identifier properties.
type Flags uint16

const (
	Real    Flags = 1 << iota // real
	Int                       // integer
	Bool                      // Boolean
	Label                     // label
	Array                     // array
	Switch                    // switch
	Proc                      // procedure
	String                    // string (always a formal, by name)
	ByValue                   // formal parameter called by value
	ByName                    // formal parameter called by name
	Own                       // own
	Code                      // code procedure
	Builtin                   // built-in procedure
)

// Type extracts the value-type bits (real, integer, Boolean).
func (f Flags) Type() Flags { return f & (Real | Int | Bool) }

// Simple reports whether the flags describe a simple variable or a
// simple formal parameter (scalar, no array/switch/procedure/string
// qualifier).
func (f Flags) Simple() bool {
	return f&^(Real|Int|Bool|ByValue|ByName) == 0 && f.Type() != 0
}

// String renders the flag set the way it is spelled in emitted-code
// commentary: " by value real array" and so on.
func (f Flags) String() string {
	var sb strings.Builder
	if f&Own != 0 {
		sb.WriteString(" own")
	}
	if f&ByValue != 0 {
		sb.WriteString(" by value")
	}
	if f&ByName != 0 {
		sb.WriteString(" by name")
	}
	if f&Real != 0 {
		sb.WriteString(" real")
	}
	if f&Int != 0 {
		sb.WriteString(" integer")
	}
	if f&Bool != 0 {
		sb.WriteString(" Boolean")
	}
	if f&Label != 0 {
		sb.WriteString(" label")
	}
	if f&Array != 0 {
		sb.WriteString(" array")
	}
	if f&Switch != 0 {
		sb.WriteString(" switch")
	}
	if f&Proc != 0 {
		sb.WriteString(" procedure")
	}
	if f&String != 0 {
		sb.WriteString(" string")
	}
	return sb.String()
}

// Ident is the record kept for each identifier of the source program.
type Ident struct {
	Name     string
	DeclLine int    // line of declaration/specification (0 if none yet)
	UsedLine int    // line of first reference (0 if never)
	Flags    Flags  // zero until declared
	Dim      int    // subscripts, formals, or label ordinal; -1 unknown
	Block    *Block // block the identifier is localized in
	Next     *Ident
}

// Block is one actual or dummy block of the program. Dummy blocks
// represent procedures, procedure bodies, and the statement following
// `do'; the environmental block (number 0) encloses the whole module.
type Block struct {
	Seqn  int    // sequence number in first-encounter order
	Line  int    // source line where the block opens
	Proc  *Ident // procedure identifier iff this is a procedure block
	First *Ident // identifiers localized here, in declaration order
	Last  *Ident
	Surr  *Block // enclosing block
	Next  *Block // block with the next sequence number
}

// Level returns the depth of the block inside its procedure: the
// procedure block itself has level 0.
func (b *Block) Level() int {
	level := -1
	for ; b != nil; b = b.Surr {
		level++
		if b.Proc != nil {
			break
		}
	}
	return level
}

// ProcBlock returns the procedure block enclosing b (possibly b
// itself), or nil above the environmental block.
func (b *Block) ProcBlock() *Block {
	for ; b != nil; b = b.Surr {
		if b.Proc != nil {
			return b
		}
	}
	return nil
}

// Find returns the identifier with the given name localized in b, or
// nil.
func (b *Block) Find(name string) *Ident {
	for id := b.First; id != nil; id = id.Next {
		if id.Name == name {
			return id
		}
	}
	return nil
}

func (b *Block) add(id *Ident) {
	if b.First == nil {
		b.First = id
	} else {
		b.Last.Next = id
	}
	b.Last = id
}

// remove unlinks id from the block's identifier list.
func (b *Block) remove(id *Ident) {
	var pred *Ident
	for it := b.First; it != nil; it = it.Next {
		if it == id {
			if pred == nil {
				b.First = it.Next
			} else {
				pred.Next = it.Next
			}
			if b.Last == it {
				b.Last = pred
			}
			return
		}
		pred = it
	}
}

// HasUsedLabels reports whether the block localizes labels referenced
// in designational expressions (the condition for a setjmp dispatch
// header).
func (b *Block) HasUsedLabels() bool {
	for id := b.First; id != nil; id = id.Next {
		if id.Flags == Label && id.UsedLine != 0 {
			return true
		}
	}
	return false
}

// Table is the block tree together with the cursor state shared by
// both passes.
type Table struct {
	rep *errors.Reporter

	First   *Block // environmental block, number 0
	last    *Block
	Current *Block // currently open block

	// FirstPass selects between tree construction (pass 1) and
	// lockstep walking (pass 2).
	FirstPass bool

	// InArrayBound is set while a bound expression of an array
	// declaration is parsed; it arms the Modified Report 5.2.4.2
	// check in Lookup.
	InArrayBound bool
}

// NewTable creates an empty table for the first pass.
func NewTable(rep *errors.Reporter) *Table {
	return &Table{rep: rep, FirstPass: true}
}

// Rewind prepares the table for the second pass: the tree built on the
// first pass is kept and the cursor starts before the environmental
// block.
func (t *Table) Rewind() {
	t.FirstPass = false
	t.last = nil
	t.Current = nil
	t.InArrayBound = false
}

// Enter opens a block. On the first pass a fresh block is created and
// linked under the current one; on the second pass the cursor advances
// to the corresponding pass-1 block. proc is the procedure identifier
// for procedure blocks, line the source line where the block opens.
func (t *Table) Enter(proc *Ident, line int) *Block {
	if t.FirstPass {
		b := &Block{Line: line, Proc: proc, Surr: t.Current}
		if t.last != nil {
			b.Seqn = t.last.Seqn + 1
			t.last.Next = b
		} else {
			t.First = b
		}
		t.last = b
		t.Current = b
		return b
	}
	if t.last == nil {
		t.last = t.First
	} else {
		t.last = t.last.Next
	}
	if t.last == nil {
		panic("symtab: block tree exhausted on second pass")
	}
	t.Current = t.last
	return t.Current
}

// Leave closes the current block. On the first pass every identifier
// still undeclared (zero flags) migrates into the enclosing block; in
// the environmental block they stay for the resolver.
func (t *Table) Leave() *Block {
	old := t.Current
	if old == nil {
		panic("symtab: leave without matching enter")
	}
	t.Current = old.Surr
	if t.FirstPass && t.Current != nil {
		id := old.First
		for id != nil {
			next := id.Next
			if id.Flags == 0 {
				old.remove(id)
				it := t.Lookup(id.Name, false, id.UsedLine)
				if it.Dim < 0 {
					it.Dim = id.Dim
				}
			}
			id = next
		}
	}
	return old
}

// Lookup searches for an identifier by name.
//
// On the first pass only the current block is searched and missing
// names are created there, since in Algol 60 a declaration need not
// precede use. Declaring a name that already carries flags reports a
// multiple declaration. On the second pass the search walks outwards
// from the current block and must succeed; a hit in the current block
// while a bound expression is being parsed violates Modified Report
// 5.2.4.2.
func (t *Table) Lookup(name string, declaring bool, line int) *Ident {
	if t.FirstPass {
		id := t.Current.Find(name)
		if declaring && id != nil && id.Flags != 0 {
			t.rep.Errorf(line, "identifier `%s' multiply declared (see line %d)",
				id.Name, id.DeclLine)
			id = nil // as if it were not found
		}
		if id == nil {
			id = &Ident{Name: name, Dim: -1, Block: t.Current}
			t.Current.add(id)
		}
		if declaring {
			id.DeclLine = line
		} else if id.UsedLine == 0 {
			id.UsedLine = line
		}
		return id
	}
	for b := t.Current; ; b = b.Surr {
		if b == nil {
			panic("symtab: identifier `" + name + "' lost on second pass")
		}
		if id := b.Find(name); id != nil {
			if t.InArrayBound && !declaring && id.Block == t.Current {
				t.rep.Errorf(line, "identifier `%s' in bound expression declared in same program block as array", id.Name)
			}
			return id
		}
	}
}

// DSALevel returns the display level of the procedure owning the
// block the identifier is localized in. The outermost procedures
// (precompiled ones and the main program) have level 0.
func DSALevel(id *Ident) int {
	level := -1
	for b := id.Block; b != nil; b = b.Surr {
		if b.Proc != nil {
			level++
		}
	}
	return level
}

// CurrentLevel returns the display level of the procedure enclosing
// the current block.
func (t *Table) CurrentLevel() int {
	level := -1
	for b := t.Current; b != nil; b = b.Surr {
		if b.Proc != nil {
			level++
		}
	}
	return level
}
