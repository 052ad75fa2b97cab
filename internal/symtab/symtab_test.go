package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-algol/internal/errors"
)

func TestBlockNumbering(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	env := tab.Enter(nil, 0)
	assert.Equal(t, 0, env.Seqn)
	b1 := tab.Enter(nil, 10)
	assert.Equal(t, 1, b1.Seqn)
	tab.Leave()
	b2 := tab.Enter(nil, 20)
	assert.Equal(t, 2, b2.Seqn)
	assert.Same(t, env, b2.Surr)
	tab.Leave()
	tab.Leave()
	assert.Nil(t, tab.Current)
}

func TestLookupCreatesOnFirstPass(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	tab.Enter(nil, 0)
	id := tab.Lookup("x", false, 7)
	require.NotNil(t, id)
	assert.Equal(t, Flags(0), id.Flags)
	assert.Equal(t, 7, id.UsedLine)
	assert.Equal(t, 0, id.DeclLine)
	assert.Equal(t, -1, id.Dim)
	// the same name resolves to the same record
	again := tab.Lookup("x", false, 9)
	assert.Same(t, id, again)
	assert.Equal(t, 7, id.UsedLine, "first use line must stick")
}

func TestMultiplyDeclared(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	tab.Enter(nil, 0)
	id := tab.Lookup("x", true, 3)
	id.Flags = Int
	tab.Lookup("x", true, 5)
	assert.Equal(t, 1, rep.ErrorCount())
}

func TestUndeclaredMigration(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	env := tab.Enter(nil, 0)
	tab.Enter(nil, 1)
	inner := tab.Lookup("f", false, 4)
	inner.Dim = 2
	decl := tab.Lookup("x", true, 4)
	decl.Flags = Real
	tab.Leave()
	// the undeclared f bubbled into the environmental block, keeping
	// its dimension; the declared x stayed behind
	migrated := env.Find("f")
	require.NotNil(t, migrated)
	assert.Equal(t, 2, migrated.Dim)
	assert.Equal(t, 4, migrated.UsedLine)
	assert.Nil(t, env.Find("x"))
}

func TestSecondPassLockstep(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	env := tab.Enter(nil, 0)
	a := tab.Enter(nil, 1)
	tab.Leave()
	b := tab.Enter(nil, 2)
	tab.Leave()
	tab.Leave()

	tab.Rewind()
	assert.False(t, tab.FirstPass)
	assert.Same(t, env, tab.Enter(nil, 0))
	assert.Same(t, a, tab.Enter(nil, 1))
	tab.Leave()
	assert.Same(t, b, tab.Enter(nil, 2))
}

func TestSecondPassScopeWalk(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	tab.Enter(nil, 0)
	outer := tab.Lookup("x", true, 1)
	outer.Flags = Real
	tab.Enter(nil, 2)
	inner := tab.Lookup("x", true, 3)
	inner.Flags = Int
	tab.Leave()
	tab.Leave()

	tab.Rewind()
	tab.Enter(nil, 0)
	assert.Same(t, outer, tab.Lookup("x", false, 5))
	tab.Enter(nil, 2)
	assert.Same(t, inner, tab.Lookup("x", false, 6))
}

func TestArrayBoundCheck(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	tab.Enter(nil, 0)
	n := tab.Lookup("n", true, 1)
	n.Flags = Int
	tab.Leave()

	tab.Rewind()
	tab.Enter(nil, 0)
	tab.InArrayBound = true
	tab.Lookup("n", false, 2)
	assert.Equal(t, 1, rep.ErrorCount(),
		"bound expression identifier declared in the same block must be reported")
}

func TestDSALevels(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	tab.Enter(nil, 0) // environmental block
	p := tab.Lookup("p", true, 1)
	p.Flags = Proc
	pb := tab.Enter(p, 1) // procedure block of p
	pb.Proc = p
	assert.Equal(t, -1, DSALevel(p), "p itself lives in the environmental block")
	assert.Equal(t, 0, tab.CurrentLevel())
	local := tab.Lookup("v", true, 2)
	local.Flags = Real
	assert.Equal(t, 0, DSALevel(local))

	q := tab.Lookup("q", true, 3)
	q.Flags = Proc
	qb := tab.Enter(q, 3)
	qb.Proc = q
	assert.Equal(t, 1, tab.CurrentLevel())
	assert.Equal(t, 0, qb.Level())
	assert.Equal(t, 0, DSALevel(q))
}

func TestBlockLevels(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	tab.Enter(nil, 0)
	p := tab.Lookup("p", true, 1)
	pb := tab.Enter(p, 1)
	assert.Equal(t, 0, pb.Level())
	body := tab.Enter(nil, 2)
	assert.Equal(t, 1, body.Level())
	inner := tab.Enter(nil, 3)
	assert.Equal(t, 2, inner.Level())
	assert.Same(t, pb, inner.ProcBlock())
}

func TestHasUsedLabels(t *testing.T) {
	rep := errors.NewReporter("test", nil)
	tab := NewTable(rep)
	b := tab.Enter(nil, 0)
	lab := tab.Lookup("L", true, 1)
	lab.Flags = Label
	assert.False(t, b.HasUsedLabels())
	lab.UsedLine = 5
	assert.True(t, b.HasUsedLabels())
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, " by value real", (Real | ByValue).String())
	assert.Equal(t, " own integer", (Int | Own).String())
	assert.Equal(t, " by name string", (String | ByName).String())
	assert.True(t, (Real | ByValue).Simple())
	assert.False(t, (Real | Array).Simple())
	assert.Equal(t, Int, (Int | Proc | Builtin).Type())
}
