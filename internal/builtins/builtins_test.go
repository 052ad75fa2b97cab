package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-algol/internal/errors"
	"github.com/cwbudde/go-algol/internal/symtab"
)

func TestCatalogShape(t *testing.T) {
	for _, p := range Catalog {
		t.Run(p.Name, func(t *testing.T) {
			if p.Name != "print" {
				assert.Len(t, p.Formals, p.Dim, "dimension must match formal count")
			}
			for _, f := range p.Formals {
				called := f.Flags & (symtab.ByValue | symtab.ByName)
				assert.NotZero(t, called, "formal %s must be by value or by name", f.Name)
				if f.Flags&symtab.String != 0 {
					assert.Equal(t, symtab.ByName, called, "strings are always by name")
				}
			}
		})
	}
}

func TestFind(t *testing.T) {
	require.NotNil(t, Find("entier"))
	assert.Equal(t, symtab.Int, Find("entier").Flags)
	assert.Nil(t, Find("nosuch"))
}

func TestResolveBindsBuiltin(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := symtab.NewTable(rep)
	tab.Enter(nil, 0)
	id := tab.Lookup("sqrt", false, 12)
	id.Dim = 1
	Resolve(tab, rep)
	assert.Equal(t, 0, rep.ErrorCount())
	assert.Equal(t, symtab.Real|symtab.Proc|symtab.Builtin, id.Flags)
	assert.Equal(t, 1, id.Dim)
	// a procedure block with the formal was synthesized
	var pb *symtab.Block
	for b := tab.First; b != nil; b = b.Next {
		if b.Proc == id {
			pb = b
		}
	}
	require.NotNil(t, pb)
	formal := pb.Find("E")
	require.NotNil(t, formal)
	assert.Equal(t, symtab.Real|symtab.ByValue, formal.Flags)
}

func TestResolveUndeclared(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := symtab.NewTable(rep)
	tab.Enter(nil, 0)
	tab.Lookup("mystery", false, 33)
	Resolve(tab, rep)
	require.Equal(t, 1, rep.ErrorCount())
	assert.Contains(t, rep.Diagnostics()[0].Message, "`mystery' not declared")
}

func TestResolveSkipsDeclared(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := symtab.NewTable(rep)
	tab.Enter(nil, 0)
	id := tab.Lookup("sqrt", true, 2)
	id.Flags = symtab.Real | symtab.Proc
	Resolve(tab, rep)
	assert.Equal(t, 0, rep.ErrorCount())
	assert.Equal(t, symtab.Real|symtab.Proc, id.Flags, "a user declaration shadows the builtin")
}

func TestResolvePseudoWarns(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := symtab.NewTable(rep)
	tab.Enter(nil, 0)
	tab.Lookup("print", false, 8)
	Resolve(tab, rep)
	assert.Equal(t, 0, rep.ErrorCount())
	assert.Equal(t, 1, rep.WarningCount())
}
